package repositories

import (
	"testing"

	"github.com/freetocompute/pgpkeeper/pkg/database"
	"github.com/freetocompute/pgpkeeper/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.CreateDatabaseWithPath(":memory:")
	require.NoError(t, err)
	return db
}

func testKeypair(email string, fingerprint string) *models.Keypair {
	return &models.Keypair{
		Name:        "Test",
		Email:       email,
		Fingerprint: fingerprint,
		PublicKey:   "pub",
		PrivateKey:  "priv",
		Algorithm:   "EdDSA",
		KeySize:     "Curve25519",
		CanSign:     true,
		CanEncrypt:  true,
		CanCertify:  true,
	}
}

func Test_InsertKeypair_DuplicateEmail(t *testing.T) {
	repo := NewKeypairRepository(newTestDB(t))

	_, err := repo.Insert(testKeypair("a@example.com", "AAAA"))
	require.NoError(t, err)

	_, err = repo.Insert(testKeypair("a@example.com", "BBBB"))
	require.ErrorIs(t, err, ErrConstraintViolation)

	keypairs, err := repo.List(nil)
	require.NoError(t, err)
	assert.Len(t, keypairs, 1, "failed insert must leave the table unchanged")
}

func Test_InsertKeypair_DuplicateFingerprint(t *testing.T) {
	repo := NewKeypairRepository(newTestDB(t))

	_, err := repo.Insert(testKeypair("a@example.com", "AAAA"))
	require.NoError(t, err)

	_, err = repo.Insert(testKeypair("b@example.com", "AAAA"))
	require.ErrorIs(t, err, ErrConstraintViolation)

	keypairs, err := repo.List(nil)
	require.NoError(t, err)
	assert.Len(t, keypairs, 1)
}

func Test_BooleanFlags_RoundTrip(t *testing.T) {
	repo := NewKeypairRepository(newTestDB(t))

	keypair := testKeypair("a@example.com", "AAAA")
	keypair.CanAuthenticate = false
	keypair.PassphraseProtected = true
	_, err := repo.Insert(keypair)
	require.NoError(t, err)

	stored, err := repo.GetByFingerprint("AAAA")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.True(t, stored.CanSign)
	assert.True(t, stored.CanEncrypt)
	assert.True(t, stored.CanCertify)
	assert.False(t, stored.CanAuthenticate)
	assert.True(t, stored.PassphraseProtected)
	assert.False(t, stored.Revoked)
}

func Test_SetDefault_SingleDefaultInvariant(t *testing.T) {
	repo := NewKeypairRepository(newTestDB(t))

	first, err := repo.Insert(testKeypair("a@example.com", "AAAA"))
	require.NoError(t, err)
	second, err := repo.Insert(testKeypair("b@example.com", "BBBB"))
	require.NoError(t, err)

	require.NoError(t, repo.SetDefault(first.ID))
	require.NoError(t, repo.SetDefault(second.ID))

	countDefaults := func() int {
		keypairs, err := repo.List(nil)
		require.NoError(t, err)
		n := 0
		for _, kp := range keypairs {
			if kp.IsDefault {
				n++
			}
		}
		return n
	}

	assert.Equal(t, 1, countDefaults())

	defaultKeypair, err := repo.GetDefault()
	require.NoError(t, err)
	require.NotNil(t, defaultKeypair)
	assert.Equal(t, second.ID, defaultKeypair.ID)

	// idempotent
	require.NoError(t, repo.SetDefault(second.ID))
	assert.Equal(t, 1, countDefaults())
}

func Test_SetDefault_UnknownID(t *testing.T) {
	repo := NewKeypairRepository(newTestDB(t))
	err := repo.SetDefault(42)
	require.Error(t, err)
}

func Test_DeleteKeypair_ClearsSettingsPointer(t *testing.T) {
	db := newTestDB(t)
	keypairs := NewKeypairRepository(db)
	settings := NewSettingsRepository(db)

	keypair, err := keypairs.Insert(testKeypair("a@example.com", "AAAA"))
	require.NoError(t, err)

	_, err = settings.Get()
	require.NoError(t, err)
	require.NoError(t, keypairs.SetDefault(keypair.ID))

	current, err := settings.Get()
	require.NoError(t, err)
	require.NotNil(t, current.DefaultKeypairID)
	assert.Equal(t, keypair.ID, *current.DefaultKeypairID)

	require.NoError(t, keypairs.DeleteWhere("id", keypair.ID))

	current, err = settings.Get()
	require.NoError(t, err)
	assert.Nil(t, current.DefaultKeypairID, "deleting the default keypair must null the settings pointer")
}

func Test_UpdateWhere_NoMatchIsNotAnError(t *testing.T) {
	repo := NewKeypairRepository(newTestDB(t))
	err := repo.UpdateWhere("id", 999, map[string]interface{}{"name": "nobody"})
	require.NoError(t, err)
}

func Test_Settings_Singleton(t *testing.T) {
	db := newTestDB(t)
	repo := NewSettingsRepository(db)

	first, err := repo.Get()
	require.NoError(t, err)
	second, err := repo.Get()
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	require.NoError(t, repo.Update(map[string]interface{}{"auto_sign_messages": true}))

	var count int64
	require.NoError(t, db.Model(&models.Settings{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	err = repo.Delete()
	require.ErrorIs(t, err, ErrInvariantViolation)

	require.NoError(t, db.Model(&models.Settings{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	updated, err := repo.Get()
	require.NoError(t, err)
	assert.True(t, updated.AutoSignMessages)
}

func Test_Filter_Comparators(t *testing.T) {
	repo := NewContactRepository(newTestDB(t))

	seed := []struct{ name, email, fingerprint string }{
		{"Alice", "alice@example.com", "AAAA"},
		{"Bob", "bob@example.com", "BBBB"},
		{"Carol", "carol@other.org", "CCCC"},
	}
	for _, s := range seed {
		_, err := repo.Insert(&models.Contact{Name: s.name, Email: s.email, Fingerprint: s.fingerprint, PublicKey: "pub"})
		require.NoError(t, err)
	}

	equals, err := repo.List(Where("name", OpEquals, "Alice"))
	require.NoError(t, err)
	assert.Len(t, equals, 1)

	notEquals, err := repo.List(Where("name", OpNotEquals, "Alice"))
	require.NoError(t, err)
	assert.Len(t, notEquals, 2)

	contains, err := repo.List(Where("email", OpContains, "example.com"))
	require.NoError(t, err)
	assert.Len(t, contains, 2)

	notContains, err := repo.List(Where("email", OpNotContains, "example.com"))
	require.NoError(t, err)
	assert.Len(t, notContains, 1)

	all, err := repo.List(nil)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	none, err := repo.List(Where("name", OpEquals, "Mallory"))
	require.NoError(t, err)
	assert.Empty(t, none, "no match returns an empty set, not an error")
}

func Test_Contacts_SharedEmailAllowed(t *testing.T) {
	repo := NewContactRepository(newTestDB(t))

	_, err := repo.Insert(&models.Contact{Name: "Old key", Email: "alice@example.com", Fingerprint: "AAAA", PublicKey: "pub"})
	require.NoError(t, err)
	_, err = repo.Insert(&models.Contact{Name: "New key", Email: "alice@example.com", Fingerprint: "BBBB", PublicKey: "pub"})
	require.NoError(t, err)

	_, err = repo.Insert(&models.Contact{Name: "Dup", Email: "other@example.com", Fingerprint: "AAAA", PublicKey: "pub"})
	require.ErrorIs(t, err, ErrConstraintViolation)
}
