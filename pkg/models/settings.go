package models

import (
	"time"
)

// Settings is a singleton row. It is created once on first use and can
// never be deleted.
type Settings struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time

	DefaultKeypairID *uint
	AutoSignMessages bool
	PreferInlinePGP  bool
	KeyserverURL     string
}
