package repositories

import (
	goerrors "errors"
	"fmt"

	"github.com/freetocompute/pgpkeeper/pkg/models"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

type IContactRepository interface {
	List(filter *Filter) ([]models.Contact, error)
	GetByID(id uint) (*models.Contact, error)
	GetByFingerprint(fingerprint string) (*models.Contact, error)
	Insert(contact *models.Contact) (*models.Contact, error)
	UpdateWhere(matchField string, matchValue interface{}, fields map[string]interface{}) error
	DeleteWhere(matchField string, matchValue interface{}) error
}

type ContactRepository struct {
	db *gorm.DB
}

func NewContactRepository(db *gorm.DB) *ContactRepository {
	return &ContactRepository{db: db}
}

func (r *ContactRepository) List(filter *Filter) ([]models.Contact, error) {
	var contacts []models.Contact
	db := applyFilter(r.db, filter).Find(&contacts)
	if db.Error != nil {
		return nil, errors.Wrap(db.Error, "ContactRepository.List")
	}
	return contacts, nil
}

func (r *ContactRepository) GetByID(id uint) (*models.Contact, error) {
	return r.getOne("id", id)
}

func (r *ContactRepository) GetByFingerprint(fingerprint string) (*models.Contact, error) {
	return r.getOne("fingerprint", fingerprint)
}

func (r *ContactRepository) getOne(field string, value interface{}) (*models.Contact, error) {
	var contact models.Contact
	db := r.db.Where(fmt.Sprintf("%s = ?", field), value).Limit(1).Find(&contact)
	if db.Error != nil {
		return nil, errors.Wrap(db.Error, "ContactRepository.getOne")
	}
	if db.RowsAffected == 0 {
		return nil, nil
	}
	return &contact, nil
}

func (r *ContactRepository) Insert(contact *models.Contact) (*models.Contact, error) {
	if err := r.db.Create(contact).Error; err != nil {
		if goerrors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, errors.Wrap(ErrConstraintViolation, "ContactRepository.Insert")
		}
		return nil, errors.Wrap(err, "ContactRepository.Insert")
	}
	return contact, nil
}

func (r *ContactRepository) UpdateWhere(matchField string, matchValue interface{}, fields map[string]interface{}) error {
	db := r.db.Model(&models.Contact{}).
		Where(fmt.Sprintf("%s = ?", matchField), matchValue).
		Updates(fields)
	if db.Error != nil {
		return errors.Wrap(db.Error, "ContactRepository.UpdateWhere")
	}
	return nil
}

func (r *ContactRepository) DeleteWhere(matchField string, matchValue interface{}) error {
	db := r.db.Where(fmt.Sprintf("%s = ?", matchField), matchValue).Delete(&models.Contact{})
	if db.Error != nil {
		return errors.Wrap(db.Error, "ContactRepository.DeleteWhere")
	}
	return nil
}
