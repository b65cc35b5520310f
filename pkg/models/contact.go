package models

import (
	"time"
)

// Contact is another party's public key plus trust metadata. Emails are
// not unique here, multiple contacts may share an address across
// fingerprints.
type Contact struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Name        string
	Email       string `gorm:"index"`
	Fingerprint string `gorm:"uniqueIndex"`

	PublicKey string `gorm:"type:text"`

	Algorithm string
	KeySize   string

	Trusted        bool
	LastVerifiedAt *time.Time
	Notes          string

	ExpiresAt *time.Time
	Revoked   bool
}

func (c *Contact) ShortFingerprint() string {
	if len(c.Fingerprint) <= 16 {
		return c.Fingerprint
	}
	return c.Fingerprint[len(c.Fingerprint)-16:]
}
