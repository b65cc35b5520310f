package manager

import (
	"time"

	"github.com/freetocompute/pgpkeeper/pkg/models"
	"github.com/freetocompute/pgpkeeper/pkg/pgp"
	"github.com/freetocompute/pgpkeeper/pkg/repositories"
	"github.com/freetocompute/pgpkeeper/pkg/session"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	// ErrKeyMismatch aborts an import before anything is persisted.
	ErrKeyMismatch = errors.New("public and private keys do not match")

	ErrNoDefaultKeypair = errors.New("no default keypair is configured")

	// ErrIncorrectPassphrase fails a decrypt or sign attempt; nothing is
	// cached on this path.
	ErrIncorrectPassphrase = errors.New("passphrase incorrect")

	ErrPassphraseTooShort = errors.New("passphrase must be at least 8 characters")

	ErrNotFound = errors.New("no such record")
)

// MinPassphraseLength applies to generated keys only; imported keys keep
// whatever protection they came with.
const MinPassphraseLength = 8

// SystemKeyring is the read-only view of the local OS keyring consumed
// by ImportFromSystemKeyring.
type SystemKeyring interface {
	IsAvailable() bool
	ExportPublic(fingerprint string) (string, error)
	ExportPrivate(fingerprint string) (string, error)
}

// Manager owns the keypair/contact lifecycle on top of the repositories
// and the pgp collaborator.
type Manager struct {
	keypairs repositories.IKeypairRepository
	contacts repositories.IContactRepository
	settings repositories.ISettingsRepository
	cache    *session.PassphraseCache
}

func NewManager(db *gorm.DB, cache *session.PassphraseCache) *Manager {
	return &Manager{
		keypairs: repositories.NewKeypairRepository(db),
		contacts: repositories.NewContactRepository(db),
		settings: repositories.NewSettingsRepository(db),
		cache:    cache,
	}
}

func (m *Manager) Keypairs() repositories.IKeypairRepository { return m.keypairs }
func (m *Manager) Contacts() repositories.IContactRepository { return m.contacts }
func (m *Manager) Settings() repositories.ISettingsRepository { return m.settings }

// ImportKeypair verifies that the two blobs belong together, extracts
// metadata (unlocking with the passphrase if one is given, empty means
// the key is not passphrase protected) and persists the keypair. A
// mismatch aborts before any insert.
func (m *Manager) ImportKeypair(displayName string, publicArmored string, privateArmored string, passphrase string, makeDefault bool) (*models.Keypair, error) {
	if !pgp.VerifyKeyPair(publicArmored, privateArmored) {
		return nil, ErrKeyMismatch
	}

	info, err := pgp.ExtractPrivateKeyInfo(privateArmored, passphrase)
	if err != nil {
		return nil, err
	}

	if displayName == "" {
		displayName = info.Name
	}

	keypair := &models.Keypair{
		Name:                displayName,
		Email:               info.Email,
		Fingerprint:         info.Fingerprint,
		PublicKey:           publicArmored,
		PrivateKey:          privateArmored,
		PassphraseProtected: info.PassphraseProtected,
		Algorithm:           info.Algorithm,
		KeySize:             info.KeySize,
		CanSign:             info.CanSign,
		CanEncrypt:          info.CanEncrypt,
		CanCertify:          info.CanCertify,
		CanAuthenticate:     info.CanAuthenticate,
		ExpiresAt:           info.ExpiresAt,
	}

	keypair, err = m.keypairs.Insert(keypair)
	if err != nil {
		return nil, err
	}

	logrus.Debugf("imported keypair %s (%s)", keypair.Fingerprint, keypair.Email)

	if makeDefault {
		if err := m.SetDefaultKeypair(keypair.ID); err != nil {
			return keypair, err
		}
		keypair.IsDefault = true
	}

	return keypair, nil
}

// GenerateKeypair creates a new passphrase-protected keypair. Generation
// always locks the key; the minimum-length policy applies here and only
// here.
func (m *Manager) GenerateKeypair(displayName string, name string, email string, passphrase string, makeDefault bool) (*models.Keypair, error) {
	if len(passphrase) < MinPassphraseLength {
		return nil, ErrPassphraseTooShort
	}

	publicArmored, privateArmored, err := pgp.GenerateKeypair(name, email, passphrase)
	if err != nil {
		return nil, err
	}

	return m.ImportKeypair(displayName, publicArmored, privateArmored, passphrase, makeDefault)
}

// ImportFromSystemKeyring exports both halves of the chosen key and then
// proceeds exactly as a paste import, including the match verification.
// The keyring is trusted but the export path is not.
func (m *Manager) ImportFromSystemKeyring(ring SystemKeyring, fingerprint string, displayName string, passphrase string, makeDefault bool) (*models.Keypair, error) {
	publicArmored, err := ring.ExportPublic(fingerprint)
	if err != nil {
		return nil, err
	}
	privateArmored, err := ring.ExportPrivate(fingerprint)
	if err != nil {
		return nil, err
	}
	return m.ImportKeypair(displayName, publicArmored, privateArmored, passphrase, makeDefault)
}

// SetDefaultKeypair makes id the single default. Idempotent; the
// at-most-one-default invariant holds after every call.
func (m *Manager) SetDefaultKeypair(id uint) error {
	err := m.keypairs.SetDefault(id)
	if err != nil && errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

func (m *Manager) GetDefaultKeypair() (*models.Keypair, error) {
	keypair, err := m.keypairs.GetDefault()
	if err != nil {
		return nil, err
	}
	if keypair == nil {
		return nil, ErrNoDefaultKeypair
	}
	return keypair, nil
}

func (m *Manager) HasDefaultKeypair() bool {
	keypair, err := m.keypairs.GetDefault()
	return err == nil && keypair != nil
}

func (m *Manager) RenameKeypair(id uint, name string) error {
	return m.keypairs.UpdateWhere("id", id, map[string]interface{}{"name": name})
}

// RevokeKeypair marks the keypair revoked. Revocation is a flag, not a
// deletion: a revoked keypair still decrypts old messages.
func (m *Manager) RevokeKeypair(id uint, reason string) error {
	return m.keypairs.UpdateWhere("id", id, map[string]interface{}{
		"revoked":           true,
		"revocation_reason": reason,
	})
}

// DeleteKeypair only acts when the caller confirmed. The bool reports
// whether a deletion actually happened, so callers can tell a cancelled
// delete from a confirmed one.
func (m *Manager) DeleteKeypair(id uint, confirmed bool) (bool, error) {
	if !confirmed {
		return false, nil
	}
	if err := m.keypairs.DeleteWhere("id", id); err != nil {
		return false, err
	}
	return true, nil
}

func (m *Manager) TouchKeypairUsed(id uint) {
	now := time.Now()
	if err := m.keypairs.UpdateWhere("id", id, map[string]interface{}{"last_used_at": &now}); err != nil {
		logrus.Warnf("could not stamp last-used on keypair %d: %v", id, err)
	}
}
