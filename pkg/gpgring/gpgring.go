package gpgring

import (
	"bytes"
	"os/exec"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Keyring is a read-only view over the local gpg keyring, used as an
// import source. Exports may trigger gpg's own pinentry; that is gpg's
// business, not ours.
type Keyring struct {
	gpgBinary string
}

type Identity struct {
	Fingerprint string
	Name        string
	Email       string
}

func New() *Keyring {
	return &Keyring{gpgBinary: "gpg"}
}

func (k *Keyring) IsAvailable() bool {
	_, err := exec.LookPath(k.gpgBinary)
	return err == nil
}

// ListSecretKeyIdentities enumerates secret keys via the machine-readable
// colon format.
func (k *Keyring) ListSecretKeyIdentities() ([]Identity, error) {
	out, err := k.run("--list-secret-keys", "--with-colons", "--fingerprint")
	if err != nil {
		return nil, errors.Wrap(err, "listing gpg secret keys")
	}
	return parseColons(out), nil
}

func (k *Keyring) ExportPublic(fingerprint string) (string, error) {
	out, err := k.run("--armor", "--export", fingerprint)
	if err != nil {
		return "", errors.Wrap(err, "exporting public key from gpg")
	}
	if !strings.Contains(out, "BEGIN PGP PUBLIC KEY BLOCK") {
		return "", errors.Errorf("gpg exported nothing for %s", fingerprint)
	}
	return out, nil
}

func (k *Keyring) ExportPrivate(fingerprint string) (string, error) {
	out, err := k.run("--armor", "--export-secret-keys", fingerprint)
	if err != nil {
		return "", errors.Wrap(err, "exporting secret key from gpg")
	}
	if !strings.Contains(out, "BEGIN PGP PRIVATE KEY BLOCK") {
		return "", errors.Errorf("gpg exported no secret key for %s", fingerprint)
	}
	return out, nil
}

func (k *Keyring) run(args ...string) (string, error) {
	cmd := exec.Command(k.gpgBinary, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		logrus.Debugf("gpg %s: %s", strings.Join(args, " "), stderr.String())
		return "", err
	}
	return stdout.String(), nil
}

// parseColons walks sec/fpr/uid records. The fingerprint record follows
// its sec record; the first uid after a sec names the identity.
func parseColons(out string) []Identity {
	var identities []Identity
	var current *Identity

	for _, line := range strings.Split(out, "\n") {
		fields := strings.Split(line, ":")
		switch fields[0] {
		case "sec":
			if current != nil {
				identities = append(identities, *current)
			}
			current = &Identity{}
		case "fpr":
			if current != nil && current.Fingerprint == "" && len(fields) > 9 {
				current.Fingerprint = strings.ToUpper(fields[9])
			}
		case "uid":
			if current != nil && current.Name == "" && len(fields) > 9 {
				current.Name, current.Email = splitUserID(fields[9])
			}
		}
	}
	if current != nil {
		identities = append(identities, *current)
	}

	return identities
}

// splitUserID splits "Name (comment) <email>" into name and email.
func splitUserID(uid string) (string, string) {
	name := uid
	email := ""

	if open := strings.LastIndex(uid, "<"); open >= 0 {
		if close := strings.LastIndex(uid, ">"); close > open {
			email = uid[open+1 : close]
			name = strings.TrimSpace(uid[:open])
		}
	}
	if comment := strings.Index(name, " ("); comment >= 0 {
		name = name[:comment]
	}

	return name, email
}
