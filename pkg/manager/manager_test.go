package manager

import (
	"testing"

	"github.com/freetocompute/pgpkeeper/pkg/database"
	"github.com/freetocompute/pgpkeeper/pkg/models"
	"github.com/freetocompute/pgpkeeper/pkg/pgp"
	"github.com/freetocompute/pgpkeeper/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testPassphrase = "correcthorse123"

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	db, err := database.CreateDatabaseWithPath(":memory:")
	require.NoError(t, err)
	return NewManager(db, session.NewPassphraseCache())
}

func generatePair(t *testing.T, name string, email string) (string, string) {
	t.Helper()
	publicArmored, privateArmored, err := pgp.GenerateKeypair(name, email, testPassphrase)
	require.NoError(t, err)
	return publicArmored, privateArmored
}

func countDefaults(t *testing.T, m *Manager) int {
	t.Helper()
	keypairs, err := m.Keypairs().List(nil)
	require.NoError(t, err)
	n := 0
	for _, kp := range keypairs {
		if kp.IsDefault {
			n++
		}
	}
	return n
}

func Test_ImportKeypair_MismatchPersistsNothing(t *testing.T) {
	m := newTestManager(t)

	alicePublic, _ := generatePair(t, "Alice", "alice@example.com")
	_, bobPrivate := generatePair(t, "Bob", "bob@example.com")

	_, err := m.ImportKeypair("", alicePublic, bobPrivate, testPassphrase, false)
	require.ErrorIs(t, err, ErrKeyMismatch)

	keypairs, err := m.Keypairs().List(nil)
	require.NoError(t, err)
	assert.Empty(t, keypairs, "a mismatched import must not persist anything")
}

func Test_ImportKeypair_Metadata(t *testing.T) {
	m := newTestManager(t)

	alicePublic, alicePrivate := generatePair(t, "Alice", "alice@example.com")
	keypair, err := m.ImportKeypair("Work identity", alicePublic, alicePrivate, testPassphrase, false)
	require.NoError(t, err)

	assert.Equal(t, "Work identity", keypair.Name)
	assert.Equal(t, "alice@example.com", keypair.Email)
	assert.True(t, keypair.PassphraseProtected)
	assert.NotEmpty(t, keypair.Fingerprint)
	assert.False(t, keypair.IsDefault)
}

func Test_ImportKeypair_WrongPassphrase(t *testing.T) {
	m := newTestManager(t)

	alicePublic, alicePrivate := generatePair(t, "Alice", "alice@example.com")
	_, err := m.ImportKeypair("", alicePublic, alicePrivate, "definitely wrong", false)
	require.ErrorIs(t, err, pgp.ErrInvalidPassphrase)

	keypairs, err := m.Keypairs().List(nil)
	require.NoError(t, err)
	assert.Empty(t, keypairs)
}

func Test_Generate_PassphrasePolicy(t *testing.T) {
	m := newTestManager(t)

	_, err := m.GenerateKeypair("", "Alice", "alice@example.com", "short", false)
	require.ErrorIs(t, err, ErrPassphraseTooShort)

	keypair, err := m.GenerateKeypair("", "Alice", "alice@example.com", testPassphrase, true)
	require.NoError(t, err)
	assert.True(t, keypair.PassphraseProtected, "generation always produces a protected key")
	assert.True(t, keypair.IsDefault)
}

func Test_SingleDefault_AfterEveryOperation(t *testing.T) {
	m := newTestManager(t)

	alicePublic, alicePrivate := generatePair(t, "Alice", "alice@example.com")
	bobPublic, bobPrivate := generatePair(t, "Bob", "bob@example.com")

	alice, err := m.ImportKeypair("", alicePublic, alicePrivate, testPassphrase, true)
	require.NoError(t, err)
	assert.Equal(t, 1, countDefaults(t, m))

	bob, err := m.ImportKeypair("", bobPublic, bobPrivate, testPassphrase, true)
	require.NoError(t, err)
	assert.Equal(t, 1, countDefaults(t, m))

	defaultKeypair, err := m.GetDefaultKeypair()
	require.NoError(t, err)
	assert.Equal(t, bob.ID, defaultKeypair.ID)

	require.NoError(t, m.SetDefaultKeypair(alice.ID))
	assert.Equal(t, 1, countDefaults(t, m))

	// setting the already-default keypair again is a no-op
	require.NoError(t, m.SetDefaultKeypair(alice.ID))
	assert.Equal(t, 1, countDefaults(t, m))
}

func Test_DeleteKeypair_ConfirmationGate(t *testing.T) {
	m := newTestManager(t)

	alicePublic, alicePrivate := generatePair(t, "Alice", "alice@example.com")
	alice, err := m.ImportKeypair("", alicePublic, alicePrivate, testPassphrase, false)
	require.NoError(t, err)

	deleted, err := m.DeleteKeypair(alice.ID, false)
	require.NoError(t, err)
	assert.False(t, deleted)

	keypairs, err := m.Keypairs().List(nil)
	require.NoError(t, err)
	assert.Len(t, keypairs, 1, "an unconfirmed delete must not touch the store")

	deleted, err = m.DeleteKeypair(alice.ID, true)
	require.NoError(t, err)
	assert.True(t, deleted)

	keypairs, err = m.Keypairs().List(nil)
	require.NoError(t, err)
	assert.Empty(t, keypairs)
}

func Test_RevokeKeypair_IsAFlagNotAnExit(t *testing.T) {
	m := newTestManager(t)

	alicePublic, alicePrivate := generatePair(t, "Alice", "alice@example.com")
	alice, err := m.ImportKeypair("", alicePublic, alicePrivate, testPassphrase, true)
	require.NoError(t, err)

	require.NoError(t, m.RevokeKeypair(alice.ID, "laptop stolen"))

	stored, err := m.Keypairs().GetByID(alice.ID)
	require.NoError(t, err)
	assert.True(t, stored.Revoked)
	assert.Equal(t, "laptop stolen", stored.RevocationReason)

	// a revoked keypair still decrypts old messages
	armored, err := m.EncryptToSelf("old message")
	require.NoError(t, err)
	plaintext, err := m.Decrypt(armored, func(*models.Keypair) (string, error) { return testPassphrase, nil })
	require.NoError(t, err)
	assert.Equal(t, "old message", plaintext)
}

func Test_Contact_TrustToggleTimestamps(t *testing.T) {
	m := newTestManager(t)

	bobPublic, _ := generatePair(t, "Bob", "bob@example.com")
	contact, err := m.ImportContact("", bobPublic)
	require.NoError(t, err)
	assert.False(t, contact.Trusted)
	assert.Nil(t, contact.LastVerifiedAt)

	require.NoError(t, m.SetContactTrusted(contact.ID, true))
	trusted, err := m.Contacts().GetByID(contact.ID)
	require.NoError(t, err)
	assert.True(t, trusted.Trusted)
	require.NotNil(t, trusted.LastVerifiedAt)
	verifiedAt := *trusted.LastVerifiedAt

	require.NoError(t, m.SetContactTrusted(contact.ID, false))
	untrusted, err := m.Contacts().GetByID(contact.ID)
	require.NoError(t, err)
	assert.False(t, untrusted.Trusted)
	require.NotNil(t, untrusted.LastVerifiedAt, "untrusting must not erase the verification event")
	assert.Equal(t, verifiedAt.Unix(), untrusted.LastVerifiedAt.Unix())
}

func Test_Decrypt_NoDefaultKeypair(t *testing.T) {
	m := newTestManager(t)

	_, err := m.Decrypt("anything", nil)
	require.ErrorIs(t, err, ErrNoDefaultKeypair)
	assert.False(t, m.HasDefaultKeypair())
}

func Test_Decrypt_SessionCachesValidatedPassphrase(t *testing.T) {
	m := newTestManager(t)

	alicePublic, alicePrivate := generatePair(t, "Alice", "alice@example.com")
	_, err := m.ImportKeypair("", alicePublic, alicePrivate, testPassphrase, true)
	require.NoError(t, err)

	armored, err := m.EncryptToSelf("hello")
	require.NoError(t, err)

	prompts := 0
	promptFn := func(*models.Keypair) (string, error) {
		prompts++
		return testPassphrase, nil
	}

	plaintext, err := m.Decrypt(armored, promptFn)
	require.NoError(t, err)
	assert.Equal(t, "hello", plaintext)
	assert.Equal(t, 1, prompts)

	// second decrypt in the same run reuses the cached passphrase
	plaintext, err = m.Decrypt(armored, promptFn)
	require.NoError(t, err)
	assert.Equal(t, "hello", plaintext)
	assert.Equal(t, 1, prompts, "a cached passphrase must not prompt again")
}

func Test_Decrypt_WrongPassphraseCachesNothing(t *testing.T) {
	m := newTestManager(t)

	alicePublic, alicePrivate := generatePair(t, "Alice", "alice@example.com")
	_, err := m.ImportKeypair("", alicePublic, alicePrivate, testPassphrase, true)
	require.NoError(t, err)

	armored, err := m.EncryptToSelf("hello")
	require.NoError(t, err)

	prompts := 0
	_, err = m.Decrypt(armored, func(*models.Keypair) (string, error) {
		prompts++
		return "wrong passphrase", nil
	})
	require.ErrorIs(t, err, ErrIncorrectPassphrase)
	assert.Equal(t, 1, prompts)
	assert.Equal(t, 0, m.cache.Len(), "a failed attempt must cache nothing")

	// a later attempt prompts again, the failure was not remembered
	plaintext, err := m.Decrypt(armored, func(*models.Keypair) (string, error) {
		prompts++
		return testPassphrase, nil
	})
	require.NoError(t, err)
	assert.Equal(t, "hello", plaintext)
	assert.Equal(t, 2, prompts)
}

func Test_EncryptToContact_SignedRoundTrip(t *testing.T) {
	m := newTestManager(t)

	alicePublic, alicePrivate := generatePair(t, "Alice", "alice@example.com")
	bobPublic, bobPrivate := generatePair(t, "Bob", "bob@example.com")

	_, err := m.ImportKeypair("", alicePublic, alicePrivate, testPassphrase, true)
	require.NoError(t, err)
	bob, err := m.ImportContact("", bobPublic)
	require.NoError(t, err)

	armored, err := m.EncryptToContact(bob.Fingerprint, "for bob", true, func(*models.Keypair) (string, error) {
		return testPassphrase, nil
	})
	require.NoError(t, err)

	plaintext, err := pgp.DecryptMessage(bobPrivate, []byte(testPassphrase), armored)
	require.NoError(t, err)
	assert.Equal(t, "for bob", plaintext)
}

func Test_EncryptToContact_UnknownRecipient(t *testing.T) {
	m := newTestManager(t)

	_, err := m.EncryptToContact("DOESNOTEXIST", "hello", false, nil)
	require.ErrorIs(t, err, ErrNotFound)
}

func Test_ImportFromSystemKeyring_VerifiesExportedPair(t *testing.T) {
	m := newTestManager(t)

	alicePublic, alicePrivate := generatePair(t, "Alice", "alice@example.com")
	_, bobPrivate := generatePair(t, "Bob", "bob@example.com")

	ring := &fakeKeyring{public: alicePublic, private: alicePrivate}
	keypair, err := m.ImportFromSystemKeyring(ring, "FPR", "", testPassphrase, false)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", keypair.Email)

	// inconsistent keyring export is caught by the same verification
	m2 := newTestManager(t)
	broken := &fakeKeyring{public: alicePublic, private: bobPrivate}
	_, err = m2.ImportFromSystemKeyring(broken, "FPR", "", testPassphrase, false)
	require.ErrorIs(t, err, ErrKeyMismatch)
}

type fakeKeyring struct {
	public  string
	private string
}

func (f *fakeKeyring) IsAvailable() bool                    { return true }
func (f *fakeKeyring) ExportPublic(string) (string, error)  { return f.public, nil }
func (f *fakeKeyring) ExportPrivate(string) (string, error) { return f.private, nil }
