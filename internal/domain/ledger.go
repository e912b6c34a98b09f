package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// LedgerEntry is an immutable record of one monetary movement. Empty
// from/to fields denote the company side. Created once inside a settlement
// transaction, never updated or deleted.
type LedgerEntry struct {
	ID              string
	Code            string // short human-readable reference code
	FromParticipant string
	ToParticipant   string
	FromWallet      string
	ToWallet        string
	Category        IncomeCategory
	Amount          decimal.Decimal
	Currency        string
	ReferenceID     string
	Description     string
	CreatedAt       time.Time
}

type LedgerRepository interface {
	GetByReference(referenceID string) ([]*LedgerEntry, error)
	// GetByWallet returns entries touching the wallet, newest first.
	GetByWallet(walletID string, page, limit int) ([]*LedgerEntry, int64, error)
}
