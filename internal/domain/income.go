package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type IncomeStatus string

const (
	IncomePending  IncomeStatus = "PENDING"
	IncomePaid     IncomeStatus = "PAID"
	IncomeReversed IncomeStatus = "REVERSED"
)

// IncomeRecord is the denormalized receipt of one commission payment.
// (Category, ReferenceID) is the idempotency key of the settlement layer
// and is enforced by a unique constraint in storage.
type IncomeRecord struct {
	ID                string
	BeneficiaryID     string
	OriginParticipant string
	Category          IncomeCategory
	Amount            decimal.Decimal
	Status            IncomeStatus
	RuleVersion       int
	ReferenceID       string
	CreatedAt         time.Time
}

type IncomeRepository interface {
	Exists(category IncomeCategory, referenceID string) (bool, error)
	GetByBeneficiary(beneficiaryID string, page, limit int) ([]*IncomeRecord, int64, error)
}
