package database

import (
	"os"
	"path/filepath"

	"github.com/freetocompute/pgpkeeper/config"
	"github.com/freetocompute/pgpkeeper/pkg/models"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

func CreateDatabase() (*gorm.DB, error) {
	path := config.DatabasePath()
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		logrus.Error(err)
		return nil, err
	}
	return CreateDatabaseWithPath(path)
}

// CreateDatabaseWithPath opens (or creates) the sqlite database and runs
// migrations. TranslateError lets callers test for gorm.ErrDuplicatedKey
// instead of driver-specific constraint errors.
func CreateDatabaseWithPath(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})

	if err != nil {
		logrus.Error(err)
		return nil, err
	}

	if err := db.AutoMigrate(&models.Keypair{}, &models.Contact{}, &models.Settings{}); err != nil {
		logrus.Error(err)
		return nil, err
	}

	DB = db
	return db, nil
}
