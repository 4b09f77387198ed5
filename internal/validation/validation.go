package validation

import (
	"fmt"
	"sort"

	"github.com/julianstephens/ledger/internal/constants"
	"github.com/julianstephens/ledger/internal/journal"
	"github.com/julianstephens/ledger/internal/models"
)

// ConflictType represents the type of integrity problem
type ConflictType string

const (
	ConflictDuplicateID        ConflictType = "duplicate_id"
	ConflictInvalidEntryType   ConflictType = "invalid_entry_type"
	ConflictInvalidTimestamps  ConflictType = "invalid_timestamps"
	ConflictDanglingLink       ConflictType = "dangling_link"
	ConflictDuplicateLink      ConflictType = "duplicate_link"
	ConflictDanglingShare      ConflictType = "dangling_share"
	ConflictDanglingNote       ConflictType = "dangling_note"
	ConflictDuplicateNote      ConflictType = "duplicate_note"
	ConflictContactCapExceeded ConflictType = "contact_cap_exceeded"
	ConflictOrphanedFile       ConflictType = "orphaned_file"
	ConflictMissingFile        ConflictType = "missing_file"
)

type Severity string

const (
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Conflict represents one detected integrity problem
type Conflict struct {
	Type        ConflictType
	Severity    Severity
	Description string
	IDs         []string // records or URIs involved
}

// ValidationResult contains all detected conflicts
type ValidationResult struct {
	Conflicts []Conflict
}

// HasConflicts returns true if there are any conflicts
func (vr *ValidationResult) HasConflicts() bool {
	return len(vr.Conflicts) > 0
}

// HasErrors reports conflicts more serious than warnings
func (vr *ValidationResult) HasErrors() bool {
	for _, c := range vr.Conflicts {
		if c.Severity == SeverityError {
			return true
		}
	}
	return false
}

// OfType returns the conflicts of type t
func (vr *ValidationResult) OfType(t ConflictType) []Conflict {
	var out []Conflict
	for _, c := range vr.Conflicts {
		if c.Type == t {
			out = append(out, c)
		}
	}
	return out
}

// FormatReport returns a human-readable report of all conflicts
func (vr *ValidationResult) FormatReport() string {
	if !vr.HasConflicts() {
		return "No problems detected."
	}

	report := "Problems detected:\n"
	for _, c := range vr.Conflicts {
		report += fmt.Sprintf("- [%s] %s\n", c.Severity, c.Description)
	}
	return report
}

func (vr *ValidationResult) add(t ConflictType, sev Severity, ids []string, format string, args ...any) {
	vr.Conflicts = append(vr.Conflicts, Conflict{
		Type:        t,
		Severity:    sev,
		Description: fmt.Sprintf(format, args...),
		IDs:         ids,
	})
}

// Validator checks a dataset for broken references and violated limits
type Validator struct{}

func New() *Validator {
	return &Validator{}
}

// ValidateDataset checks references between collections and per-record rules.
// Shares that point at deleted entries are warnings since deleting an entry keeps
// its share history.
func (v *Validator) ValidateDataset(d journal.Dataset) ValidationResult {
	result := ValidationResult{Conflicts: []Conflict{}}

	entryIDs := idSet(&result, "entry", d.Entries, func(e models.Entry) string { return e.ID })
	threadIDs := idSet(&result, "thread", d.Threads, func(t models.ResponsibilityThread) string { return t.ID })
	contactIDs := idSet(&result, "trusted contact", d.TrustedContacts, func(c models.TrustedContact) string { return c.ID })
	shareIDs := idSet(&result, "share", d.SharedEntries, func(s models.SharedEntry) string { return s.ID })

	for _, e := range d.Entries {
		if !e.Type.Valid() {
			result.add(ConflictInvalidEntryType, SeverityError, []string{e.ID},
				"Entry %s has unknown type %q", e.ID, e.Type)
		}
		if e.UpdatedAt.Before(e.CreatedAt) {
			result.add(ConflictInvalidTimestamps, SeverityError, []string{e.ID},
				"Entry %s was updated before it was created", e.ID)
		}
	}

	seenLinks := make(map[models.LinkKey]bool)
	for _, l := range d.ThreadLinks {
		if seenLinks[l.Key()] {
			result.add(ConflictDuplicateLink, SeverityError, []string{l.EntryID, l.ThreadID},
				"Entry %s is linked to thread %s more than once", l.EntryID, l.ThreadID)
			continue
		}
		seenLinks[l.Key()] = true

		if !entryIDs[l.EntryID] {
			result.add(ConflictDanglingLink, SeverityError, []string{l.EntryID, l.ThreadID},
				"Thread link references missing entry %s", l.EntryID)
		}
		if !threadIDs[l.ThreadID] {
			result.add(ConflictDanglingLink, SeverityError, []string{l.EntryID, l.ThreadID},
				"Thread link references missing thread %s", l.ThreadID)
		}
	}

	for _, s := range d.SharedEntries {
		if !entryIDs[s.EntryID] {
			result.add(ConflictDanglingShare, SeverityWarning, []string{s.ID},
				"Share %s refers to deleted entry %s", s.ID, s.EntryID)
		}
		if !contactIDs[s.TrustedContactID] {
			result.add(ConflictDanglingShare, SeverityError, []string{s.ID},
				"Share %s refers to missing trusted contact %s", s.ID, s.TrustedContactID)
		}
	}

	notesPerShare := make(map[string][]string)
	for _, n := range d.TrustedNotes {
		if !shareIDs[n.SharedEntryID] {
			result.add(ConflictDanglingNote, SeverityError, []string{n.ID},
				"Witness note %s refers to missing share %s", n.ID, n.SharedEntryID)
		}
		notesPerShare[n.SharedEntryID] = append(notesPerShare[n.SharedEntryID], n.ID)
	}
	for _, shareID := range sortedKeys(notesPerShare) {
		if ids := notesPerShare[shareID]; len(ids) > 1 {
			result.add(ConflictDuplicateNote, SeverityError, ids,
				"Share %s has %d witness notes; only one is allowed", shareID, len(ids))
		}
	}

	if active := models.Active(d.TrustedContacts); len(active) > constants.MaxActiveContacts {
		ids := make([]string, len(active))
		for i, c := range active {
			ids[i] = c.ID
		}
		result.add(ConflictContactCapExceeded, SeverityError, ids,
			"%d trusted contacts are active; at most %d are allowed", len(active), constants.MaxActiveContacts)
	}

	return result
}

// ValidateAttachments compares attachment records against the content actually
// stored. stored lists every URI in the blob store; owns reports whether a URI
// belongs to that store, so records pointing elsewhere are not flagged.
func (v *Validator) ValidateAttachments(entries []models.Entry, stored []string, owns func(string) bool) ValidationResult {
	result := ValidationResult{Conflicts: []Conflict{}}

	present := make(map[string]bool, len(stored))
	for _, uri := range stored {
		present[uri] = true
	}

	referenced := make(map[string]bool)
	for _, e := range entries {
		for _, a := range e.Attachments {
			referenced[a.URI] = true
			if owns(a.URI) && !present[a.URI] {
				result.add(ConflictMissingFile, SeverityWarning, []string{e.ID, a.ID},
					"Attachment %s on entry %s has no stored content", a.Filename, e.ID)
			}
		}
	}

	for _, uri := range stored {
		if !referenced[uri] {
			result.add(ConflictOrphanedFile, SeverityWarning, []string{uri},
				"Stored file %s is not referenced by any entry", uri)
		}
	}
	return result
}

func idSet[T any](result *ValidationResult, kind string, items []T, id func(T) string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, it := range items {
		k := id(it)
		if set[k] {
			result.add(ConflictDuplicateID, SeverityError, []string{k}, "Duplicate %s id %s", kind, k)
			continue
		}
		set[k] = true
	}
	return set
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
