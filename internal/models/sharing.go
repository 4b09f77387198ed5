package models

import "time"

// TrustedContact is a witness who may receive shared entries.
// Revocation is soft: the record stays and RevokedAt is set.
type TrustedContact struct {
	ID            string     `json:"id"`
	DisplayName   string     `json:"displayName"`
	ContactMethod string     `json:"contactMethod"`
	CreatedAt     time.Time  `json:"createdAt"`
	RevokedAt     *time.Time `json:"revokedAt,omitempty"`
}

func (c TrustedContact) RetiredAt() *time.Time { return c.RevokedAt }

func (c TrustedContact) IsActive() bool { return c.RevokedAt == nil }

// SharedEntry records one disclosure of one entry to one contact. Immutable.
type SharedEntry struct {
	ID               string    `json:"id"`
	EntryID          string    `json:"entryId"`
	TrustedContactID string    `json:"trustedContactId"`
	Reason           string    `json:"reason"`
	CreatedAt        time.Time `json:"createdAt"`
}

// TrustedNote is the single witness response allowed per share.
type TrustedNote struct {
	ID            string    `json:"id"`
	SharedEntryID string    `json:"sharedEntryId"`
	CreatedAt     time.Time `json:"createdAt"`
	Text          string    `json:"text"`
}
