package views

import (
	"sort"
	"time"

	"github.com/julianstephens/ledger/internal/constants"
	"github.com/julianstephens/ledger/internal/models"
)

type ArchiveMonth struct {
	Year  int
	Month time.Month
	Label string
	// Entries are newest first. Empty months are kept.
	Entries []models.Entry
}

type ArchiveYear struct {
	Year   int
	Months []ArchiveMonth
	Total  int
}

type yearMonth struct {
	year  int
	month time.Month
}

func (ym yearMonth) before(o yearMonth) bool {
	return ym.year < o.year || (ym.year == o.year && ym.month < o.month)
}

func (ym yearMonth) next() yearMonth {
	if ym.month == time.December {
		return yearMonth{ym.year + 1, time.January}
	}
	return yearMonth{ym.year, ym.month + 1}
}

func monthOf(t time.Time, loc *time.Location) yearMonth {
	y, m, _ := t.In(loc).Date()
	return yearMonth{y, m}
}

// BuildArchive groups entries by year and month. Every month from the earliest
// entry through the current month is present, empty or not, so gaps stay visible.
// Years and months run newest first.
func BuildArchive(entries []models.Entry, now time.Time, loc *time.Location) []ArchiveYear {
	loc = orLocal(loc)
	if len(entries) == 0 {
		return []ArchiveYear{}
	}

	first := monthOf(entries[0].CreatedAt, loc)
	last := monthOf(now, loc)
	for _, e := range entries {
		ym := monthOf(e.CreatedAt, loc)
		if ym.before(first) {
			first = ym
		}
		if last.before(ym) {
			last = ym
		}
	}

	months := make(map[yearMonth]*ArchiveMonth)
	var order []yearMonth
	for ym := first; !last.before(ym); ym = ym.next() {
		label := time.Date(ym.year, ym.month, 1, 0, 0, 0, 0, loc).Format(constants.ArchiveMonthFormat)
		months[ym] = &ArchiveMonth{Year: ym.year, Month: ym.month, Label: label, Entries: []models.Entry{}}
		order = append(order, ym)
	}

	for _, e := range entries {
		m := months[monthOf(e.CreatedAt, loc)]
		m.Entries = append(m.Entries, e)
	}

	var years []ArchiveYear
	for i := len(order) - 1; i >= 0; i-- {
		m := months[order[i]]
		sort.SliceStable(m.Entries, func(a, b int) bool {
			return m.Entries[a].CreatedAt.After(m.Entries[b].CreatedAt)
		})
		if len(years) == 0 || years[len(years)-1].Year != m.Year {
			years = append(years, ArchiveYear{Year: m.Year})
		}
		y := &years[len(years)-1]
		y.Months = append(y.Months, *m)
		y.Total += len(m.Entries)
	}
	return years
}
