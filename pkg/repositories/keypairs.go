package repositories

import (
	goerrors "errors"
	"fmt"

	"github.com/freetocompute/pgpkeeper/pkg/models"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

type IKeypairRepository interface {
	List(filter *Filter) ([]models.Keypair, error)
	GetByID(id uint) (*models.Keypair, error)
	GetByFingerprint(fingerprint string) (*models.Keypair, error)
	Insert(keypair *models.Keypair) (*models.Keypair, error)
	UpdateWhere(matchField string, matchValue interface{}, fields map[string]interface{}) error
	DeleteWhere(matchField string, matchValue interface{}) error
	SetDefault(id uint) error
	GetDefault() (*models.Keypair, error)
}

type KeypairRepository struct {
	db *gorm.DB
}

func NewKeypairRepository(db *gorm.DB) *KeypairRepository {
	return &KeypairRepository{db: db}
}

func (r *KeypairRepository) List(filter *Filter) ([]models.Keypair, error) {
	var keypairs []models.Keypair
	db := applyFilter(r.db, filter).Find(&keypairs)
	if db.Error != nil {
		return nil, errors.Wrap(db.Error, "KeypairRepository.List")
	}
	return keypairs, nil
}

func (r *KeypairRepository) GetByID(id uint) (*models.Keypair, error) {
	return r.getOne("id", id)
}

func (r *KeypairRepository) GetByFingerprint(fingerprint string) (*models.Keypair, error) {
	return r.getOne("fingerprint", fingerprint)
}

func (r *KeypairRepository) getOne(field string, value interface{}) (*models.Keypair, error) {
	var keypair models.Keypair
	db := r.db.Where(fmt.Sprintf("%s = ?", field), value).Limit(1).Find(&keypair)
	if db.Error != nil {
		return nil, errors.Wrap(db.Error, "KeypairRepository.getOne")
	}
	if db.RowsAffected == 0 {
		return nil, nil
	}
	return &keypair, nil
}

func (r *KeypairRepository) Insert(keypair *models.Keypair) (*models.Keypair, error) {
	if err := r.db.Create(keypair).Error; err != nil {
		if goerrors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, errors.Wrap(ErrConstraintViolation, "KeypairRepository.Insert")
		}
		return nil, errors.Wrap(err, "KeypairRepository.Insert")
	}
	return keypair, nil
}

// UpdateWhere updates every row matching the equality predicate. Zero
// matched rows is not an error.
func (r *KeypairRepository) UpdateWhere(matchField string, matchValue interface{}, fields map[string]interface{}) error {
	db := r.db.Model(&models.Keypair{}).
		Where(fmt.Sprintf("%s = ?", matchField), matchValue).
		Updates(fields)
	if db.Error != nil {
		return errors.Wrap(db.Error, "KeypairRepository.UpdateWhere")
	}
	return nil
}

// DeleteWhere removes matching rows. Deleting a keypair referenced as the
// settings default clears that pointer, on-delete-set-null semantics.
func (r *KeypairRepository) DeleteWhere(matchField string, matchValue interface{}) error {
	var matches []models.Keypair
	if err := r.db.Where(fmt.Sprintf("%s = ?", matchField), matchValue).Find(&matches).Error; err != nil {
		return errors.Wrap(err, "KeypairRepository.DeleteWhere")
	}

	err := r.db.Transaction(func(tx *gorm.DB) error {
		for _, keypair := range matches {
			if err := tx.Model(&models.Settings{}).
				Where("default_keypair_id = ?", keypair.ID).
				Update("default_keypair_id", nil).Error; err != nil {
				return err
			}
		}
		return tx.Where(fmt.Sprintf("%s = ?", matchField), matchValue).Delete(&models.Keypair{}).Error
	})
	if err != nil {
		return errors.Wrap(err, "KeypairRepository.DeleteWhere")
	}
	return nil
}

// SetDefault makes id the single default keypair. Unset-all-then-set-one
// runs inside one transaction so the at-most-one-default invariant cannot
// transiently break. Idempotent.
func (r *KeypairRepository) SetDefault(id uint) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Keypair{}).
			Where("is_default = ?", true).
			Update("is_default", false).Error; err != nil {
			return err
		}
		db := tx.Model(&models.Keypair{}).
			Where("id = ?", id).
			Update("is_default", true)
		if db.Error != nil {
			return db.Error
		}
		if db.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		// Keep the settings pointer in step with the flag.
		return tx.Model(&models.Settings{}).
			Where("id > ?", 0).
			Update("default_keypair_id", id).Error
	})
	if err != nil {
		return errors.Wrap(err, "KeypairRepository.SetDefault")
	}
	return nil
}

func (r *KeypairRepository) GetDefault() (*models.Keypair, error) {
	return r.getOne("is_default", true)
}
