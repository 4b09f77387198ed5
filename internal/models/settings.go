package models

import "time"

// Settings represents user preferences persisted in the settings slot
type Settings struct {
	Timezone         string `json:"timezone"`         // IANA timezone name or "Local"
	PatternGrouping  string `json:"patternGrouping"`  // "week" or "month"
	ThemeSuggestions bool   `json:"themeSuggestions"` // offer known themes when tagging
}

// ReviewNote is a free-text reflection attached to one pattern period.
type ReviewNote struct {
	ID        string    `json:"id"`
	Period    string    `json:"period"` // period key, e.g. "2024-01" or "2024-01-07"
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
