package views

import (
	"fmt"
	"time"

	"github.com/julianstephens/ledger/internal/constants"
)

// RelativeTime renders t relative to now: "Just now", "5m ago", "3h ago",
// "Yesterday", "4d ago", then a short absolute date. Hours are only used while t
// falls on the same calendar day as now. Future times render as "Just now".
func RelativeTime(t, now time.Time, loc *time.Location) string {
	loc = orLocal(loc)
	elapsed := now.Sub(t)

	switch {
	case elapsed < time.Minute:
		return "Just now"
	case elapsed < time.Hour:
		return fmt.Sprintf("%dm ago", int(elapsed.Minutes()))
	}

	switch days := daysBetween(t, now, loc); {
	case days <= 0:
		return fmt.Sprintf("%dh ago", int(elapsed.Hours()))
	case days == 1:
		return "Yesterday"
	case days < 7:
		return fmt.Sprintf("%dd ago", days)
	}

	local := t.In(loc)
	if local.Year() == now.In(loc).Year() {
		return local.Format(constants.ShortDateFormat)
	}
	return local.Format(constants.ShortDateYearFormat)
}

// Timestamp renders t in the absolute report format.
func Timestamp(t time.Time, loc *time.Location) string {
	return t.In(orLocal(loc)).Format(constants.TimestampFormat)
}
