package manager

import (
	"time"

	"github.com/freetocompute/pgpkeeper/pkg/models"
	"github.com/freetocompute/pgpkeeper/pkg/pgp"
	"github.com/sirupsen/logrus"
)

// ImportContact stores another party's public key. New contacts start
// untrusted.
func (m *Manager) ImportContact(name string, publicArmored string) (*models.Contact, error) {
	info, err := pgp.ExtractPublicKeyInfo(publicArmored)
	if err != nil {
		return nil, err
	}

	if name == "" {
		name = info.Name
	}

	contact := &models.Contact{
		Name:        name,
		Email:       info.Email,
		Fingerprint: info.Fingerprint,
		PublicKey:   publicArmored,
		Algorithm:   info.Algorithm,
		KeySize:     info.KeySize,
		ExpiresAt:   info.ExpiresAt,
	}

	contact, err = m.contacts.Insert(contact)
	if err != nil {
		return nil, err
	}

	logrus.Debugf("imported contact %s (%s)", contact.Fingerprint, contact.Email)
	return contact, nil
}

func (m *Manager) RenameContact(id uint, name string) error {
	return m.contacts.UpdateWhere("id", id, map[string]interface{}{"name": name})
}

func (m *Manager) EditContactNotes(id uint, notes string) error {
	return m.contacts.UpdateWhere("id", id, map[string]interface{}{"notes": notes})
}

// SetContactTrusted toggles the trusted flag. The transition to trusted
// stamps last-verified-at; untrusting leaves the old stamp in place, a
// verification event is superseded, never erased.
func (m *Manager) SetContactTrusted(id uint, trusted bool) error {
	contact, err := m.contacts.GetByID(id)
	if err != nil {
		return err
	}
	if contact == nil {
		return ErrNotFound
	}

	fields := map[string]interface{}{"trusted": trusted}
	if trusted && !contact.Trusted {
		now := time.Now()
		fields["last_verified_at"] = &now
	}

	return m.contacts.UpdateWhere("id", id, fields)
}

// DeleteContact behaves like DeleteKeypair: no confirmation, no delete.
func (m *Manager) DeleteContact(id uint, confirmed bool) (bool, error) {
	if !confirmed {
		return false, nil
	}
	if err := m.contacts.DeleteWhere("id", id); err != nil {
		return false, err
	}
	return true, nil
}
