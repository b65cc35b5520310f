package pgp

import (
	"fmt"
	"strings"
	"time"

	"github.com/ProtonMail/go-crypto/openpgp/packet"
	"github.com/ProtonMail/gopenpgp/v2/crypto"
	"github.com/ProtonMail/gopenpgp/v2/helper"
	"github.com/pkg/errors"
)

var (
	ErrKeyParse          = errors.New("could not parse armored key")
	ErrInvalidPassphrase = errors.New("passphrase does not unlock this key")
)

// Sentinels used when a key carries no user id. Explicit fallback, not a
// failure path.
const (
	UnknownName  = "Unknown"
	UnknownEmail = "unknown@example.com"
)

// Generated keys use the gopenpgp x25519 profile. Algorithm choice is a
// fixed configuration, not user-selectable.
const generatedKeyType = "x25519"

// KeyInfo is the canonical metadata derived from an armored key blob.
type KeyInfo struct {
	Fingerprint string
	Name        string
	Email       string
	Algorithm   string
	KeySize     string

	CanSign         bool
	CanEncrypt      bool
	CanCertify      bool
	CanAuthenticate bool

	ExpiresAt *time.Time

	// Only meaningful for private keys: whether the material was
	// encrypted at rest.
	PassphraseProtected bool
}

// GenerateKeypair produces a fresh passphrase-locked keypair and returns
// both armored halves.
func GenerateKeypair(name string, email string, passphrase string) (string, string, error) {
	key, err := crypto.GenerateKey(name, email, generatedKeyType, 0)
	if err != nil {
		return "", "", errors.Wrap(err, "generating key")
	}
	defer key.ClearPrivateParams()

	publicArmored, err := key.GetArmoredPublicKey()
	if err != nil {
		return "", "", errors.Wrap(err, "armoring public key")
	}

	locked, err := key.Lock([]byte(passphrase))
	if err != nil {
		return "", "", errors.Wrap(err, "locking private key")
	}

	privateArmored, err := locked.Armor()
	if err != nil {
		return "", "", errors.Wrap(err, "armoring private key")
	}

	return publicArmored, privateArmored, nil
}

// ExtractPublicKeyInfo derives metadata from an armored public key.
func ExtractPublicKeyInfo(armored string) (*KeyInfo, error) {
	key, err := crypto.NewKeyFromArmored(armored)
	if err != nil {
		return nil, errors.Wrap(ErrKeyParse, err.Error())
	}
	return infoFromKey(key), nil
}

// ExtractPrivateKeyInfo derives metadata from an armored private key. For
// an encrypted key with no passphrase supplied, extraction still succeeds
// from the public packets alone. A supplied passphrase is verified by
// unlocking, failure is ErrInvalidPassphrase.
func ExtractPrivateKeyInfo(armored string, passphrase string) (*KeyInfo, error) {
	key, err := crypto.NewKeyFromArmored(armored)
	if err != nil {
		return nil, errors.Wrap(ErrKeyParse, err.Error())
	}
	if !key.IsPrivate() {
		return nil, errors.Wrap(ErrKeyParse, "armored blob is not a private key")
	}

	locked, err := key.IsLocked()
	if err != nil {
		return nil, errors.Wrap(ErrKeyParse, err.Error())
	}

	if locked && passphrase != "" {
		unlocked, err := key.Unlock([]byte(passphrase))
		if err != nil {
			return nil, errors.Wrap(ErrInvalidPassphrase, err.Error())
		}
		unlocked.ClearPrivateParams()
	}

	info := infoFromKey(key)
	info.PassphraseProtected = locked
	return info, nil
}

// VerifyKeyPair reports whether the two armored blobs are halves of the
// same key. Parse failures on either side yield false, never an error.
func VerifyKeyPair(publicArmored string, privateArmored string) bool {
	publicKey, err := crypto.NewKeyFromArmored(publicArmored)
	if err != nil {
		return false
	}
	privateKey, err := crypto.NewKeyFromArmored(privateArmored)
	if err != nil || !privateKey.IsPrivate() {
		return false
	}
	return publicKey.GetFingerprint() == privateKey.GetFingerprint()
}

// ValidatePassphrase attempts to unlock the private key. Never returns an
// error, a malformed key simply fails validation. An unprotected key
// validates against any passphrase since there is nothing to check.
func ValidatePassphrase(privateArmored string, passphrase string) bool {
	key, err := crypto.NewKeyFromArmored(privateArmored)
	if err != nil || !key.IsPrivate() {
		return false
	}
	locked, err := key.IsLocked()
	if err != nil {
		return false
	}
	if !locked {
		return true
	}
	unlocked, err := key.Unlock([]byte(passphrase))
	if err != nil {
		return false
	}
	unlocked.ClearPrivateParams()
	return true
}

// EncryptMessage encrypts plaintext to the given armored public key and
// returns the armored PGP message.
func EncryptMessage(publicArmored string, plaintext string) (string, error) {
	return helper.EncryptMessageArmored(publicArmored, plaintext)
}

// EncryptAndSignMessage encrypts to the recipient and signs with the
// sender's private key.
func EncryptAndSignMessage(publicArmored string, privateArmored string, passphrase []byte, plaintext string) (string, error) {
	return helper.EncryptSignMessageArmored(publicArmored, privateArmored, passphrase, plaintext)
}

// DecryptMessage decrypts an armored PGP message with the given private
// key. Pass a nil passphrase for an unprotected key.
func DecryptMessage(privateArmored string, passphrase []byte, armoredMessage string) (string, error) {
	return helper.DecryptMessageArmored(privateArmored, passphrase, armoredMessage)
}

func infoFromKey(key *crypto.Key) *KeyInfo {
	info := &KeyInfo{
		Fingerprint: strings.ToUpper(key.GetFingerprint()),
		Name:        UnknownName,
		Email:       UnknownEmail,
	}

	entity := key.GetEntity()
	if entity == nil {
		return info
	}

	identity := entity.PrimaryIdentity()
	if identity != nil && identity.UserId != nil {
		if identity.UserId.Name != "" {
			info.Name = identity.UserId.Name
		}
		if identity.UserId.Email != "" {
			info.Email = identity.UserId.Email
		}
	}

	if entity.PrimaryKey != nil {
		info.Algorithm, info.KeySize = describePublicKey(entity.PrimaryKey)
	}

	// Capability flags come from the primary self-signature when it
	// carries valid flags; otherwise fall back to conventional
	// primary-key defaults. Encryption capability considers subkeys.
	var selfSig *packet.Signature
	if identity != nil {
		selfSig = identity.SelfSignature
	}
	if selfSig != nil && selfSig.FlagsValid {
		info.CanSign = selfSig.FlagSign
		info.CanCertify = selfSig.FlagCertify
		info.CanAuthenticate = selfSig.FlagAuthenticate
	} else {
		info.CanSign = true
		info.CanCertify = true
	}
	_, encryptionKeyFound := entity.EncryptionKey(time.Now())
	info.CanEncrypt = encryptionKeyFound

	if selfSig != nil && selfSig.KeyLifetimeSecs != nil && *selfSig.KeyLifetimeSecs > 0 && entity.PrimaryKey != nil {
		expiry := entity.PrimaryKey.CreationTime.Add(time.Duration(*selfSig.KeyLifetimeSecs) * time.Second)
		info.ExpiresAt = &expiry
	}

	return info
}

func describePublicKey(publicKey *packet.PublicKey) (string, string) {
	algorithm := "Unknown"
	switch publicKey.PubKeyAlgo {
	case packet.PubKeyAlgoRSA, packet.PubKeyAlgoRSAEncryptOnly, packet.PubKeyAlgoRSASignOnly:
		algorithm = "RSA"
	case packet.PubKeyAlgoDSA:
		algorithm = "DSA"
	case packet.PubKeyAlgoElGamal:
		algorithm = "ElGamal"
	case packet.PubKeyAlgoECDSA:
		algorithm = "ECDSA"
	case packet.PubKeyAlgoECDH:
		algorithm = "ECDH"
	case packet.PubKeyAlgoEdDSA:
		algorithm = "EdDSA"
	}

	size := ""
	if bits, err := publicKey.BitLength(); err == nil {
		if algorithm == "EdDSA" {
			size = "Curve25519"
		} else {
			size = fmt.Sprintf("%d", bits)
		}
	}

	return algorithm, size
}
