package distribution

import (
	"context"
	"time"

	"github.com/LavaJover/shvark-referral-service/internal/domain"
	"github.com/shopspring/decimal"
)

// Event is the snapshot a worker plans from. For purchases ReferenceID is
// the purchase id; for pool distributions it is the distribution-run id
// and Amount the distributable total.
type Event struct {
	ReferenceID   string
	ParticipantID string
	SponsorID     string
	PackageID     string
	Amount        decimal.Decimal
	At            time.Time
}

// Worker plans the postings of one income category. Plan runs before the
// money-moving transaction: it may read trees and rules, and may create
// tree nodes (non-financial), but never touches wallets or the ledger.
// The planned postings are applied atomically by the caller.
type Worker interface {
	Category() domain.IncomeCategory
	Plan(ctx context.Context, ev *Event) ([]domain.Posting, error)
}

// Table is the dispatch table: one worker per settleable category.
type Table map[domain.IncomeCategory]Worker

func NewTable(workers ...Worker) Table {
	table := make(Table, len(workers))
	for _, w := range workers {
		table[w.Category()] = w
	}
	return table
}

func ruleAmount(rule *domain.CommissionRule, base decimal.Decimal) decimal.Decimal {
	if rule.Kind == domain.AmountPercent {
		return domain.ApplyPercent(base, rule.Value)
	}
	return domain.RoundSettlement(rule.Value)
}
