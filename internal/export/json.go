// Package export serializes the journal for backup and sharing: a lossless JSON
// document that can be imported again, and a plain-text report for reading.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/julianstephens/ledger/internal/constants"
	"github.com/julianstephens/ledger/internal/journal"
	"github.com/julianstephens/ledger/internal/models"
)

// Document is the JSON export format.
type Document struct {
	Entries         []models.Entry                `json:"entries"`
	Threads         []models.ResponsibilityThread `json:"threads"`
	ThreadLinks     []models.EntryThreadLink      `json:"threadLinks"`
	TrustedContacts []models.TrustedContact       `json:"trustedContacts"`
	SharedEntries   []models.SharedEntry          `json:"sharedEntries"`
	TrustedNotes    []models.TrustedNote          `json:"trustedNotes"`
	ExportedAt      time.Time                     `json:"exportedAt"`
	Version         string                        `json:"version"`
}

func NewDocument(d journal.Dataset, exportedAt time.Time) Document {
	return Document{
		Entries:         orEmpty(d.Entries),
		Threads:         orEmpty(d.Threads),
		ThreadLinks:     orEmpty(d.ThreadLinks),
		TrustedContacts: orEmpty(d.TrustedContacts),
		SharedEntries:   orEmpty(d.SharedEntries),
		TrustedNotes:    orEmpty(d.TrustedNotes),
		ExportedAt:      exportedAt,
		Version:         constants.ExportVersion,
	}
}

// Dataset returns the collections carried by the document.
func (doc Document) Dataset() journal.Dataset {
	return journal.Dataset{
		Entries:         orEmpty(doc.Entries),
		Threads:         orEmpty(doc.Threads),
		ThreadLinks:     orEmpty(doc.ThreadLinks),
		TrustedContacts: orEmpty(doc.TrustedContacts),
		SharedEntries:   orEmpty(doc.SharedEntries),
		TrustedNotes:    orEmpty(doc.TrustedNotes),
	}
}

// WriteJSON writes doc as indented JSON.
func WriteJSON(w io.Writer, doc Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("failed to write export: %w", err)
	}
	return nil
}

// ReadJSON parses an export document. Documents from a newer major version are refused.
func ReadJSON(r io.Reader) (Document, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return Document{}, fmt.Errorf("failed to parse export: %w", err)
	}
	if doc.Version == "" {
		return Document{}, fmt.Errorf("export has no version field")
	}
	if major(doc.Version) != major(constants.ExportVersion) {
		return Document{}, fmt.Errorf("unsupported export version %s (this build reads %s)", doc.Version, constants.ExportVersion)
	}
	for i := range doc.Entries {
		doc.Entries[i].ApplyDefaults()
	}
	return doc, nil
}

func major(v string) string {
	m, _, _ := strings.Cut(strings.TrimPrefix(v, "v"), ".")
	return m
}

func orEmpty[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
