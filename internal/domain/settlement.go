package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Posting moves Amount between two wallets. A nil Debit side credits money
// into existence from the company; a nil Credit side pays the company.
// Income, when set, records the receipt for the credit side and carries
// the idempotency key.
type Posting struct {
	Debit       *WalletRef
	Credit      *WalletRef
	Amount      decimal.Decimal
	Category    IncomeCategory
	ReferenceID string
	Description string
	Income      *IncomeRecord
}

// MarkKind tags the idempotency-marker update a settlement carries.
type MarkKind string

const (
	MarkPurchaseProcessed MarkKind = "PURCHASE_PROCESSED"
	MarkAccrualDate       MarkKind = "ACCRUAL_DATE"
	MarkInvestmentStatus  MarkKind = "INVESTMENT_STATUS"
)

// Mark is one marker/state update applied in the same transaction as the
// postings, so a replayed event observes either all side effects or none.
type Mark struct {
	Kind         MarkKind
	PurchaseID   string
	InvestmentID string
	AccrualDate  time.Time
	AccruedDelta decimal.Decimal
	// Status marks are compare-and-swap: the update matches PriorStatus
	// and the whole batch fails as a duplicate when another transition
	// already won.
	PriorStatus InvestmentStatus
	NewStatus   InvestmentStatus
}

// SettlementBatch is the atomic unit of one event's money movement: all
// postings, ledger entries, income records and marker updates commit
// together or not at all.
type SettlementBatch struct {
	Currency string
	Postings []Posting
	Marks    []Mark
}

// SettlementRepository applies a batch inside one database transaction
// with the touched wallet rows locked. Returns ErrInsufficientFunds when a
// debit exceeds the wallet balance and ErrDuplicateEvent when an income
// record's (category, reference) key already exists.
type SettlementRepository interface {
	Apply(batch *SettlementBatch) error
}
