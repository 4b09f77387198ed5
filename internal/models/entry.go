package models

import (
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	lerrors "github.com/julianstephens/ledger/internal/errors"
)

type EntryType string

const (
	EntryBuilt   EntryType = "built"
	EntryHelped  EntryType = "helped"
	EntryLearned EntryType = "learned"
)

// EntryTypes lists the entry types in display order.
var EntryTypes = []EntryType{EntryBuilt, EntryHelped, EntryLearned}

var titleCaser = cases.Title(language.English)

// ParseEntryType accepts any casing of built, helped, or learned.
func ParseEntryType(s string) (EntryType, error) {
	t := EntryType(strings.ToLower(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", lerrors.ErrInvalidEntryType
	}
	return t, nil
}

func (t EntryType) Valid() bool {
	switch t {
	case EntryBuilt, EntryHelped, EntryLearned:
		return true
	}
	return false
}

// Label returns the display form ("Built").
func (t EntryType) Label() string {
	return titleCaser.String(string(t))
}

// Addendum is an append-only note on an entry. Never edited or removed.
type Addendum struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

// Attachment references file content held outside the collection.
type Attachment struct {
	ID        string    `json:"id"`
	Filename  string    `json:"filename"`
	MimeType  string    `json:"mimeType"`
	URI       string    `json:"uri"`
	Size      int64     `json:"size,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

type Entry struct {
	ID          string       `json:"id"`
	Type        EntryType    `json:"type"`
	Affected    string       `json:"affected"`
	Cost        string       `json:"cost"`
	Reflection  string       `json:"reflection"`
	Themes      []string     `json:"themes"`
	Attachments []Attachment `json:"attachments"`
	Addenda     []Addendum   `json:"addenda"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

// ApplyDefaults fills list fields that older records may lack.
func (e *Entry) ApplyDefaults() {
	if e.Themes == nil {
		e.Themes = []string{}
	}
	if e.Attachments == nil {
		e.Attachments = []Attachment{}
	}
	if e.Addenda == nil {
		e.Addenda = []Addendum{}
	}
}

// EntryInput carries the user-supplied fields for a new entry.
type EntryInput struct {
	Type       EntryType
	Affected   string
	Cost       string
	Reflection string
	Themes     []string
}

// EntryPatch carries a partial update. Nil fields are left unchanged.
type EntryPatch struct {
	Type       *EntryType
	Affected   *string
	Cost       *string
	Reflection *string
	Themes     *[]string
}

// Empty reports whether the patch changes nothing.
func (p EntryPatch) Empty() bool {
	return p.Type == nil && p.Affected == nil && p.Cost == nil && p.Reflection == nil && p.Themes == nil
}

// AttachmentInput is the metadata produced by a file picker or blob store.
type AttachmentInput struct {
	Filename string
	MimeType string
	URI      string
	Size     int64
}
