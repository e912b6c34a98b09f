package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type InvestmentStatus string

const (
	InvestmentPending   InvestmentStatus = "PENDING"
	InvestmentActive    InvestmentStatus = "ACTIVE"
	InvestmentCompleted InvestmentStatus = "COMPLETED"
	InvestmentCancelled InvestmentStatus = "CANCELLED"
	InvestmentWithdrawn InvestmentStatus = "WITHDRAWN"
)

// CanTransition encodes the lifecycle: pending -> active -> completed,
// with side exits to cancelled (from pending/active) and withdrawn (from
// active).
func (s InvestmentStatus) CanTransition(to InvestmentStatus) bool {
	switch s {
	case InvestmentPending:
		return to == InvestmentActive || to == InvestmentCancelled
	case InvestmentActive:
		return to == InvestmentCompleted || to == InvestmentCancelled || to == InvestmentWithdrawn
	}
	return false
}

type Investment struct {
	ID              string
	ParticipantID   string
	PackageID       string
	Principal       decimal.Decimal
	DailyRate       decimal.Decimal // percent per day
	Currency        string
	Status          InvestmentStatus
	AccruedInterest decimal.Decimal
	// LastAccrualDate is a calendar date (UTC midnight), not a timestamp:
	// it tolerates multiple accrual runs per day.
	LastAccrualDate *time.Time
	StartAt         *time.Time
	EndAt           *time.Time
	CreatedAt       time.Time
}

type InvestmentRepository interface {
	Create(investment *Investment) error
	GetByID(investmentID string) (*Investment, error)
	UpdateStatus(investmentID string, status InvestmentStatus) error
	// FindDueAccruals returns active investments whose last accrual date
	// precedes the given day.
	FindDueAccruals(day time.Time, limit int) ([]*Investment, error)
	// FindDueMaturities returns active investments whose end date has
	// passed.
	FindDueMaturities(now time.Time, limit int) ([]*Investment, error)
}
