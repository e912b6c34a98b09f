package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Ledger rows are append-only: inserted inside settlement transactions,
// never updated.
type LedgerEntryModel struct {
	ID              string `gorm:"primaryKey;type:uuid"`
	Code            string `gorm:"uniqueIndex"`
	FromParticipant string
	ToParticipant   string
	FromWallet      string `gorm:"index"`
	ToWallet        string `gorm:"index"`
	Category        string
	Amount          decimal.Decimal `gorm:"type:numeric(30,8)"`
	Currency        string
	ReferenceID     string `gorm:"index"`
	Description     string
	CreatedAt       time.Time `gorm:"index"`
}

func (LedgerEntryModel) TableName() string {
	return "ledger_entries"
}
