package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type PurchaseModel struct {
	ID              string `gorm:"primaryKey;type:uuid"`
	ParticipantID   string `gorm:"index"`
	SponsorID       string
	PackageID       string
	Amount          decimal.Decimal `gorm:"type:numeric(30,8)"`
	Currency        string
	FirstEnrollment bool
	ProcessedAt     *time.Time `gorm:"index"`
	CreatedAt       time.Time
}

func (PurchaseModel) TableName() string {
	return "purchases"
}
