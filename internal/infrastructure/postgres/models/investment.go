package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type InvestmentModel struct {
	ID              string `gorm:"primaryKey;type:uuid"`
	ParticipantID   string `gorm:"index"`
	PackageID       string
	Principal       decimal.Decimal `gorm:"type:numeric(30,8)"`
	DailyRate       decimal.Decimal `gorm:"type:numeric(30,8)"`
	Currency        string
	Status          string          `gorm:"index:idx_investment_due"`
	AccruedInterest decimal.Decimal `gorm:"type:numeric(30,8)"`
	LastAccrualDate *time.Time      `gorm:"index:idx_investment_due"`
	StartAt         *time.Time
	EndAt           *time.Time `gorm:"index"`
	CreatedAt       time.Time
}

func (InvestmentModel) TableName() string {
	return "investments"
}
