package manager

import (
	"github.com/freetocompute/pgpkeeper/pkg/models"
	"github.com/freetocompute/pgpkeeper/pkg/pgp"
)

// PassphraseFunc asks the user for a keypair's passphrase. It is only
// invoked when the session cache has no validated entry.
type PassphraseFunc func(keypair *models.Keypair) (string, error)

// sessionPassphrase resolves a usable passphrase for the keypair: cache
// hit first, otherwise prompt once and validate against the real private
// key. Only a validated passphrase is cached; a wrong one fails the whole
// operation and caches nothing.
func (m *Manager) sessionPassphrase(keypair *models.Keypair, prompt PassphraseFunc) (string, error) {
	if !keypair.PassphraseProtected {
		return "", nil
	}

	if passphrase, ok := m.cache.Get(keypair.Fingerprint); ok {
		return passphrase, nil
	}

	if prompt == nil {
		return "", ErrIncorrectPassphrase
	}

	passphrase, err := prompt(keypair)
	if err != nil {
		return "", err
	}

	if !pgp.ValidatePassphrase(keypair.PrivateKey, passphrase) {
		return "", ErrIncorrectPassphrase
	}

	m.cache.Put(keypair.Fingerprint, passphrase)
	return passphrase, nil
}

// Decrypt decrypts an armored message with the default keypair, going
// through the passphrase session flow.
func (m *Manager) Decrypt(armoredMessage string, prompt PassphraseFunc) (string, error) {
	keypair, err := m.GetDefaultKeypair()
	if err != nil {
		return "", err
	}

	passphrase, err := m.sessionPassphrase(keypair, prompt)
	if err != nil {
		return "", err
	}

	plaintext, err := pgp.DecryptMessage(keypair.PrivateKey, passphraseBytes(passphrase), armoredMessage)
	if err != nil {
		return "", err
	}

	m.TouchKeypairUsed(keypair.ID)
	return plaintext, nil
}

// EncryptToContact encrypts to a stored contact's public key, optionally
// signing with the default keypair.
func (m *Manager) EncryptToContact(fingerprint string, plaintext string, sign bool, prompt PassphraseFunc) (string, error) {
	contact, err := m.contacts.GetByFingerprint(fingerprint)
	if err != nil {
		return "", err
	}
	if contact == nil {
		return "", ErrNotFound
	}

	if !sign {
		return pgp.EncryptMessage(contact.PublicKey, plaintext)
	}

	keypair, err := m.GetDefaultKeypair()
	if err != nil {
		return "", err
	}

	passphrase, err := m.sessionPassphrase(keypair, prompt)
	if err != nil {
		return "", err
	}

	armored, err := pgp.EncryptAndSignMessage(contact.PublicKey, keypair.PrivateKey, passphraseBytes(passphrase), plaintext)
	if err != nil {
		return "", err
	}

	m.TouchKeypairUsed(keypair.ID)
	return armored, nil
}

// EncryptToSelf encrypts to the default keypair's own public key.
func (m *Manager) EncryptToSelf(plaintext string) (string, error) {
	keypair, err := m.GetDefaultKeypair()
	if err != nil {
		return "", err
	}

	armored, err := pgp.EncryptMessage(keypair.PublicKey, plaintext)
	if err != nil {
		return "", err
	}

	m.TouchKeypairUsed(keypair.ID)
	return armored, nil
}

func passphraseBytes(passphrase string) []byte {
	if passphrase == "" {
		return nil
	}
	return []byte(passphrase)
}
