package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Wallet is one balance bucket. ParticipantID empty marks a company wallet
// (the system counterparty of every double entry). Balance never goes
// negative; it is mutated only inside a settlement transaction paired with
// a ledger entry.
type Wallet struct {
	ID             string
	ParticipantID  string
	Category       WalletCategory
	Currency       string
	Balance        decimal.Decimal
	PendingBalance decimal.Decimal
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// WalletRef addresses a wallet by owner and bucket; the zero ParticipantID
// addresses the company wallet for the category.
type WalletRef struct {
	ParticipantID string
	Category      WalletCategory
}

type WalletRepository interface {
	// GetOrCreate returns the wallet for the ref, creating a zero-balance
	// row on first use.
	GetOrCreate(ref WalletRef, currency string) (*Wallet, error)
	GetByParticipant(participantID string) ([]*Wallet, error)
}
