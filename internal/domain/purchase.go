package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Purchase is a confirmed package purchase, snapshotted so processing can
// be replayed safely. ProcessedAt is the idempotency marker, set only in
// the same transaction as the last side effect.
type Purchase struct {
	ID              string
	ParticipantID   string
	SponsorID       string
	PackageID       string
	Amount          decimal.Decimal
	Currency        string
	FirstEnrollment bool
	ProcessedAt     *time.Time
	CreatedAt       time.Time
}

type PurchaseRepository interface {
	Create(purchase *Purchase) error
	GetByID(purchaseID string) (*Purchase, error)
}
