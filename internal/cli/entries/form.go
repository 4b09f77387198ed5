package entries

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/ledger/internal/models"
)

// EntryFormModel holds the values bound to the interactive entry form.
type EntryFormModel struct {
	Type       models.EntryType
	Affected   string
	Cost       string
	Reflection string
	Themes     string
}

// Input converts the form values into an EntryInput.
func (fm *EntryFormModel) Input() models.EntryInput {
	return models.EntryInput{
		Type:       fm.Type,
		Affected:   fm.Affected,
		Cost:       fm.Cost,
		Reflection: fm.Reflection,
		Themes:     splitThemes(fm.Themes),
	}
}

// NewEntryForm creates the form for recording an entry. suggestions feeds theme
// autocompletion and may be empty.
func NewEntryForm(fm *EntryFormModel, suggestions []string) *huh.Form {
	if fm.Type == "" {
		fm.Type = models.EntryBuilt
	}

	options := make([]huh.Option[models.EntryType], 0, len(models.EntryTypes))
	for _, t := range models.EntryTypes {
		options = append(options, huh.NewOption(t.Label(), t))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[models.EntryType]().
				Title("What did you do?").
				Options(options...).
				Value(&fm.Type),
			huh.NewText().
				Title("Who or what was affected?").
				Value(&fm.Affected),
			huh.NewText().
				Title("What did it cost you?").
				Value(&fm.Cost),
			huh.NewText().
				Title("Reflection").
				Value(&fm.Reflection),
			huh.NewInput().
				Title("Themes").
				Description("Comma separated").
				Suggestions(suggestions).
				Value(&fm.Themes).
				Validate(func(s string) error {
					for _, part := range strings.Split(s, ",") {
						if len([]rune(strings.TrimSpace(part))) > 64 {
							return fmt.Errorf("themes must be 64 characters or fewer")
						}
					}
					return nil
				}),
		),
	).WithTheme(huh.ThemeDracula())
}

// runForm is swapped out in tests.
var runForm = func(f *huh.Form) error {
	return f.Run()
}

func splitThemes(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return strings.Split(s, ",")
}
