package models

import "time"

// Retirable is implemented by records that are retired by timestamp rather than deleted.
type Retirable interface {
	RetiredAt() *time.Time
}

// Active filters out retired records, keeping order.
func Active[T Retirable](items []T) []T {
	out := make([]T, 0, len(items))
	for _, it := range items {
		if it.RetiredAt() == nil {
			out = append(out, it)
		}
	}
	return out
}

// ResponsibilityThread groups entries under a long-running concern.
// Closing is reversible; threads are never deleted.
type ResponsibilityThread struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	CreatedAt time.Time  `json:"createdAt"`
	ClosedAt  *time.Time `json:"closedAt,omitempty"`
}

func (t ResponsibilityThread) RetiredAt() *time.Time { return t.ClosedAt }

func (t ResponsibilityThread) IsOpen() bool { return t.ClosedAt == nil }

// EntryThreadLink associates one entry with one thread. The pair is unique.
type EntryThreadLink struct {
	EntryID  string `json:"entryId"`
	ThreadID string `json:"threadId"`
}

// LinkKey is the natural key of an EntryThreadLink.
type LinkKey struct {
	EntryID  string
	ThreadID string
}

func (l EntryThreadLink) Key() LinkKey {
	return LinkKey{EntryID: l.EntryID, ThreadID: l.ThreadID}
}
