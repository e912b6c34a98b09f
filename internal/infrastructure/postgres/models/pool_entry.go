package models

import "time"

type PoolEntryModel struct {
	ID            string `gorm:"primaryKey;type:uuid"`
	ParticipantID string `gorm:"index"`
	PackageID     string `gorm:"index"`
	Level         int
	SubLevel      int
	IsActive      bool `gorm:"index"`
	CreatedAt     time.Time
}

func (PoolEntryModel) TableName() string {
	return "pool_entries"
}
