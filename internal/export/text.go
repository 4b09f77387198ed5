package export

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/julianstephens/ledger/internal/constants"
	"github.com/julianstephens/ledger/internal/journal"
	"github.com/julianstephens/ledger/internal/models"
	"github.com/julianstephens/ledger/internal/views"
)

// report indexes a dataset for rendering.
type report struct {
	d   journal.Dataset
	now time.Time
	loc *time.Location

	entries        map[string]models.Entry
	contacts       map[string]models.TrustedContact
	threads        map[string]models.ResponsibilityThread
	threadEntries  map[string][]string
	entryThreads   map[string][]string
	sharesByEntry  map[string][]models.SharedEntry
	noteByShare    map[string]models.TrustedNote
	sharesByTarget map[string]int
}

func newReport(d journal.Dataset, now time.Time, loc *time.Location) *report {
	r := &report{
		d:              d,
		now:            now,
		loc:            loc,
		entries:        make(map[string]models.Entry),
		contacts:       make(map[string]models.TrustedContact),
		threads:        make(map[string]models.ResponsibilityThread),
		threadEntries:  make(map[string][]string),
		entryThreads:   make(map[string][]string),
		sharesByEntry:  make(map[string][]models.SharedEntry),
		noteByShare:    make(map[string]models.TrustedNote),
		sharesByTarget: make(map[string]int),
	}
	for _, e := range d.Entries {
		r.entries[e.ID] = e
	}
	for _, c := range d.TrustedContacts {
		r.contacts[c.ID] = c
	}
	for _, t := range d.Threads {
		r.threads[t.ID] = t
	}
	for _, l := range d.ThreadLinks {
		if _, ok := r.entries[l.EntryID]; !ok {
			continue
		}
		r.threadEntries[l.ThreadID] = append(r.threadEntries[l.ThreadID], l.EntryID)
		r.entryThreads[l.EntryID] = append(r.entryThreads[l.EntryID], l.ThreadID)
	}
	for _, s := range d.SharedEntries {
		r.sharesByEntry[s.EntryID] = append(r.sharesByEntry[s.EntryID], s)
		r.sharesByTarget[s.TrustedContactID]++
	}
	for _, n := range d.TrustedNotes {
		if _, dup := r.noteByShare[n.SharedEntryID]; !dup {
			r.noteByShare[n.SharedEntryID] = n
		}
	}
	return r
}

func (r *report) stamp(t time.Time) string {
	return views.Timestamp(t, r.loc)
}

// WriteText renders the dataset as a plain-text report: threads with their
// entries, every entry in full, then the trusted contacts.
func WriteText(w io.Writer, d journal.Dataset, now time.Time, loc *time.Location) error {
	if loc == nil {
		loc = time.Local
	}
	r := newReport(d, now, loc)
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "%s EXPORT\n", strings.ToUpper(constants.AppName))
	fmt.Fprintf(bw, "Exported %s\n", r.stamp(now))
	fmt.Fprintf(bw, "%d entries, %d threads, %d trusted hands\n\n", len(d.Entries), len(d.Threads), len(d.TrustedContacts))

	r.writeThreads(bw)
	r.writeEntries(bw)
	r.writeContacts(bw)

	return bw.Flush()
}

func section(w io.Writer, title string) {
	fmt.Fprintln(w, constants.ReportRule)
	fmt.Fprintln(w, title)
	fmt.Fprintln(w, constants.ReportRule)
	fmt.Fprintln(w)
}

func (r *report) writeThreads(w io.Writer) {
	section(w, "RESPONSIBILITY THREADS")
	if len(r.d.Threads) == 0 {
		fmt.Fprint(w, "(none)\n\n")
		return
	}

	for _, t := range r.d.Threads {
		status := "open"
		if t.ClosedAt != nil {
			status = "closed " + r.stamp(*t.ClosedAt)
		}
		fmt.Fprintf(w, "%s (%s)\n", t.Title, status)
		fmt.Fprintf(w, "  Started %s\n", r.stamp(t.CreatedAt))

		ids := r.threadEntries[t.ID]
		if len(ids) == 0 {
			fmt.Fprint(w, "  No entries\n\n")
			continue
		}
		fmt.Fprintf(w, "  %d %s:\n", len(ids), plural(len(ids), "entry", "entries"))
		// Keep collection order, newest first
		linked := make(map[string]bool, len(ids))
		for _, id := range ids {
			linked[id] = true
		}
		for _, e := range r.d.Entries {
			if linked[e.ID] {
				fmt.Fprintf(w, "  - %s, %s: %s\n", e.Type.Label(), r.stamp(e.CreatedAt), firstLine(e.Affected))
			}
		}
		fmt.Fprintln(w)
	}
}

func (r *report) writeEntries(w io.Writer) {
	section(w, "ENTRIES")
	if len(r.d.Entries) == 0 {
		fmt.Fprint(w, "(none)\n\n")
		return
	}

	for i, e := range r.d.Entries {
		if i > 0 {
			fmt.Fprintln(w, constants.ReportRule)
			fmt.Fprintln(w)
		}
		r.writeEntry(w, e)
	}
}

func (r *report) writeEntry(w io.Writer, e models.Entry) {
	fmt.Fprintf(w, "%s\n", strings.ToUpper(e.Type.Label()))
	fmt.Fprintf(w, "%s (%s)\n\n", views.RelativeTime(e.CreatedAt, r.now, r.loc), r.stamp(e.CreatedAt))
	fmt.Fprintf(w, "Affected: %s\n", e.Affected)
	fmt.Fprintf(w, "Cost: %s\n", e.Cost)
	fmt.Fprintf(w, "Reflection: %s\n", e.Reflection)

	if len(e.Themes) > 0 {
		fmt.Fprintf(w, "\nThemes: %s\n", strings.Join(e.Themes, ", "))
	}

	if ids := r.entryThreads[e.ID]; len(ids) > 0 {
		fmt.Fprintln(w, "\nResponsibilities:")
		for _, id := range ids {
			if t, ok := r.threads[id]; ok {
				fmt.Fprintf(w, "  - %s\n", t.Title)
			}
		}
	}

	if len(e.Attachments) > 0 {
		fmt.Fprintln(w, "\nAttachments:")
		for _, a := range e.Attachments {
			fmt.Fprintf(w, "  - %s (%s)\n", a.Filename, a.MimeType)
		}
	}

	if len(e.Addenda) > 0 {
		fmt.Fprintln(w, "\nNotes:")
		for _, a := range e.Addenda {
			fmt.Fprintf(w, "  [%s] %s\n", r.stamp(a.CreatedAt), a.Content)
		}
	}

	if shares := r.sharesByEntry[e.ID]; len(shares) > 0 {
		fmt.Fprintln(w, "\nShared with:")
		for _, s := range shares {
			name := "Unknown contact"
			if c, ok := r.contacts[s.TrustedContactID]; ok {
				name = c.DisplayName
			}
			fmt.Fprintf(w, "  - %s on %s\n", name, r.stamp(s.CreatedAt))
			fmt.Fprintf(w, "    Reason: %s\n", s.Reason)
			if n, ok := r.noteByShare[s.ID]; ok {
				fmt.Fprintf(w, "    Witness note (%s): %s\n", r.stamp(n.CreatedAt), n.Text)
			}
		}
	}
	fmt.Fprintln(w)
}

func (r *report) writeContacts(w io.Writer) {
	section(w, "TRUSTED HANDS")
	if len(r.d.TrustedContacts) == 0 {
		fmt.Fprintln(w, "(none)")
		return
	}

	for _, c := range r.d.TrustedContacts {
		status := "active"
		if c.RevokedAt != nil {
			status = "revoked " + r.stamp(*c.RevokedAt)
		}
		fmt.Fprintf(w, "%s (%s)\n", c.DisplayName, status)
		if c.ContactMethod != "" {
			fmt.Fprintf(w, "  Contact: %s\n", c.ContactMethod)
		}
		n := r.sharesByTarget[c.ID]
		fmt.Fprintf(w, "  Added %s, %d %s shared\n", r.stamp(c.CreatedAt), n, plural(n, "entry", "entries"))
	}
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return line
}
