package repositories

import (
	"github.com/freetocompute/pgpkeeper/pkg/models"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

type ISettingsRepository interface {
	Get() (*models.Settings, error)
	Update(fields map[string]interface{}) error
	Delete() error
}

type SettingsRepository struct {
	db *gorm.DB
}

func NewSettingsRepository(db *gorm.DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// Get returns the singleton settings row, creating it on first use. The
// row is never inserted again and never deleted.
func (r *SettingsRepository) Get() (*models.Settings, error) {
	var settings models.Settings
	db := r.db.Limit(1).Find(&settings)
	if db.Error != nil {
		return nil, errors.Wrap(db.Error, "SettingsRepository.Get")
	}
	if db.RowsAffected == 0 {
		if err := r.db.Create(&settings).Error; err != nil {
			return nil, errors.Wrap(err, "SettingsRepository.Get")
		}
	}
	return &settings, nil
}

func (r *SettingsRepository) Update(fields map[string]interface{}) error {
	settings, err := r.Get()
	if err != nil {
		return err
	}
	db := r.db.Model(&models.Settings{}).
		Where("id = ?", settings.ID).
		Updates(fields)
	if db.Error != nil {
		return errors.Wrap(db.Error, "SettingsRepository.Update")
	}
	return nil
}

// Delete always refuses. The settings row is a singleton for the life of
// the database.
func (r *SettingsRepository) Delete() error {
	return errors.Wrap(ErrInvariantViolation, "settings row cannot be deleted")
}
