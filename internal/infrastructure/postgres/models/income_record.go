package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// The unique index over (category, reference_id) is the storage-level
// idempotency guarantee: a replayed settlement hits a duplicate-key error
// instead of paying twice.
type IncomeRecordModel struct {
	ID                string `gorm:"primaryKey;type:uuid"`
	BeneficiaryID     string `gorm:"index"`
	OriginParticipant string
	Category          string          `gorm:"index:idx_income_idempotency,unique"`
	ReferenceID       string          `gorm:"index:idx_income_idempotency,unique"`
	Amount            decimal.Decimal `gorm:"type:numeric(30,8)"`
	Status            string
	RuleVersion       int
	CreatedAt         time.Time
}

func (IncomeRecordModel) TableName() string {
	return "income_records"
}
