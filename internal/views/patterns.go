package views

import (
	"sort"
	"strings"
	"time"

	"github.com/julianstephens/ledger/internal/constants"
	"github.com/julianstephens/ledger/internal/models"
)

// Bucket is one period of the pattern distribution.
type Bucket struct {
	// Key identifies the period for review notes: "2024-01" for months, the
	// Sunday's date ("2024-01-07") for weeks.
	Key   string
	Label string
	Start time.Time
	// Counts holds every entry type, zero included.
	Counts map[models.EntryType]int
	Total  int
}

// Count returns the number of entries of type t in the bucket.
func (b Bucket) Count(t models.EntryType) int {
	return b.Counts[t]
}

// periodStart returns the start of t's week (Sunday) or month in loc.
func periodStart(t time.Time, grouping string, loc *time.Location) time.Time {
	local := t.In(loc)
	y, m, d := local.Date()
	if grouping == constants.GroupingMonth {
		return time.Date(y, m, 1, 0, 0, 0, 0, loc)
	}
	return time.Date(y, m, d-int(local.Weekday()), 0, 0, 0, 0, loc)
}

func bucketKeyLabel(start time.Time, grouping string) (string, string) {
	if grouping == constants.GroupingMonth {
		return start.Format("2006-01"), start.Format(constants.MonthBucketFormat)
	}
	return start.Format(constants.DateFormat), start.Format(constants.WeekBucketFormat)
}

// Patterns groups entries into week (Sunday start) or month periods by CreatedAt,
// most recent period first. Unknown groupings fall back to weeks. Only periods
// with entries are returned.
func Patterns(entries []models.Entry, grouping string, loc *time.Location) []Bucket {
	loc = orLocal(loc)
	if grouping != constants.GroupingMonth {
		grouping = constants.GroupingWeek
	}

	byKey := make(map[string]*Bucket)
	for _, e := range entries {
		start := periodStart(e.CreatedAt, grouping, loc)
		key, label := bucketKeyLabel(start, grouping)
		b, ok := byKey[key]
		if !ok {
			b = &Bucket{Key: key, Label: label, Start: start, Counts: make(map[models.EntryType]int, len(models.EntryTypes))}
			for _, t := range models.EntryTypes {
				b.Counts[t] = 0
			}
			byKey[key] = b
		}
		b.Counts[e.Type]++
		b.Total++
	}

	out := make([]Bucket, 0, len(byKey))
	for _, b := range byKey {
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Start.After(out[j].Start)
	})
	return out
}

// PeriodKey returns the bucket key containing t.
func PeriodKey(t time.Time, grouping string, loc *time.Location) string {
	loc = orLocal(loc)
	if grouping != constants.GroupingMonth {
		grouping = constants.GroupingWeek
	}
	key, _ := bucketKeyLabel(periodStart(t, grouping, loc), grouping)
	return key
}

// TypeTotals counts entries per type across the whole collection.
func TypeTotals(entries []models.Entry) map[models.EntryType]int {
	totals := make(map[models.EntryType]int, len(models.EntryTypes))
	for _, t := range models.EntryTypes {
		totals[t] = 0
	}
	for _, e := range entries {
		totals[e.Type]++
	}
	return totals
}

type ThemeCount struct {
	Theme string
	Count int
}

// ThemeCounts tallies themes case-insensitively, most frequent first, ties by name.
// The first spelling seen is reported.
func ThemeCounts(entries []models.Entry) []ThemeCount {
	index := make(map[string]int)
	var out []ThemeCount
	for _, e := range entries {
		for _, th := range e.Themes {
			key := strings.ToLower(th)
			if i, ok := index[key]; ok {
				out[i].Count++
				continue
			}
			index[key] = len(out)
			out = append(out, ThemeCount{Theme: th, Count: 1})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return strings.ToLower(out[i].Theme) < strings.ToLower(out[j].Theme)
	})
	return out
}
