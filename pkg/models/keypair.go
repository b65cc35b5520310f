package models

import (
	"time"
)

// Keypair is a personal identity holding both halves of a PGP key pair.
type Keypair struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Name        string
	Email       string `gorm:"uniqueIndex"`
	Fingerprint string `gorm:"uniqueIndex"`

	// Armored key material, exactly as imported or generated
	PublicKey  string `gorm:"type:text"`
	PrivateKey string `gorm:"type:text"`

	PassphraseProtected bool
	Algorithm           string
	KeySize             string

	CanSign         bool
	CanEncrypt      bool
	CanCertify      bool
	CanAuthenticate bool

	ExpiresAt        *time.Time
	Revoked          bool
	RevocationReason string

	LastUsedAt *time.Time
	IsDefault  bool `gorm:"index"`
}

// ShortFingerprint is the last 16 hex characters, the way key ids are
// usually displayed.
func (k *Keypair) ShortFingerprint() string {
	if len(k.Fingerprint) <= 16 {
		return k.Fingerprint
	}
	return k.Fingerprint[len(k.Fingerprint)-16:]
}
