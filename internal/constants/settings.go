package constants

const (
	SettingTimezone         = "timezone"
	SettingPatternGrouping  = "pattern_grouping"
	SettingThemeSuggestions = "theme_suggestions"

	GroupingWeek  = "week"
	GroupingMonth = "month"

	// Default Settings Values
	DefaultTimezone         = "Local" // Use system local timezone by default
	DefaultPatternGrouping  = GroupingWeek
	DefaultThemeSuggestions = true
)
