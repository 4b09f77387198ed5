package settings

import (
	"fmt"
	"strconv"

	"github.com/julianstephens/ledger/internal/cli"
	"github.com/julianstephens/ledger/internal/constants"
	"github.com/julianstephens/ledger/internal/models"
)

// SettingKeys lists the keys accepted by settings get and set.
var SettingKeys = []string{
	constants.SettingTimezone,
	constants.SettingPatternGrouping,
	constants.SettingThemeSuggestions,
}

func valueOf(s models.Settings, key string) (string, bool) {
	switch key {
	case constants.SettingTimezone:
		return s.Timezone, true
	case constants.SettingPatternGrouping:
		return s.PatternGrouping, true
	case constants.SettingThemeSuggestions:
		return strconv.FormatBool(s.ThemeSuggestions), true
	}
	return "", false
}

type SettingsGetCmd struct {
	Key string `arg:"" optional:"" help:"Setting to show (timezone, pattern_grouping, theme_suggestions). Shows all when omitted."`
}

func (c *SettingsGetCmd) Run(ctx *cli.Context) error {
	settings := ctx.Journal.Settings(ctx.Background())

	if c.Key != "" {
		v, ok := valueOf(settings, c.Key)
		if !ok {
			return fmt.Errorf("unknown setting %q (valid: %v)", c.Key, SettingKeys)
		}
		ctx.Println(v)
		return nil
	}

	ctx.Println("Current Settings:")
	for _, key := range SettingKeys {
		v, _ := valueOf(settings, key)
		ctx.Printf("  %-18s %s\n", key+":", v)
	}
	return nil
}

type SettingsSetCmd struct {
	Key   string `arg:"" enum:"timezone,pattern_grouping,theme_suggestions" help:"Setting to change."`
	Value string `arg:"" help:"New value."`
}

func (c *SettingsSetCmd) Run(ctx *cli.Context) error {
	settings, err := ctx.Journal.SetSetting(ctx.Background(), c.Key, c.Value)
	if err != nil {
		return fmt.Errorf("failed to update setting: %w", err)
	}
	v, _ := valueOf(settings, c.Key)
	ctx.Printf("✓ %s set to %s\n", c.Key, v)
	return nil
}
