package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type AmountKind string

const (
	AmountPercent AmountKind = "PERCENT"
	AmountFixed   AmountKind = "FIXED"
)

// CommissionRule is one append-only version of a payout rule. PackageID
// empty means the rule is the global fallback for its category. Level and
// SubLevel are 0 when the rule does not key on them. EffectiveFrom and
// EffectiveTo nil mean unbounded.
type CommissionRule struct {
	ID            string
	Category      IncomeCategory
	PackageID     string
	Level         int
	SubLevel      int
	Kind          AmountKind
	Value         decimal.Decimal
	IsActive      bool
	Version       int
	EffectiveFrom *time.Time
	EffectiveTo   *time.Time
	// ExtraParams carries rule-specific knobs, e.g. the company-pool slice
	// of a fasttrack rule ("pool_percent").
	ExtraParams map[string]string
	CreatedAt   time.Time
}

// EffectiveAt reports whether the rule's window covers the instant.
func (r *CommissionRule) EffectiveAt(at time.Time) bool {
	if r.EffectiveFrom != nil && at.Before(*r.EffectiveFrom) {
		return false
	}
	if r.EffectiveTo != nil && at.After(*r.EffectiveTo) {
		return false
	}
	return true
}

type RuleRepository interface {
	Create(rule *CommissionRule) error
	// Candidates returns active rules matching the category, level and
	// sub-level, for both the exact package and the global fallback.
	// Effective-window filtering and version selection are the resolver's
	// job.
	Candidates(category IncomeCategory, packageID string, level, subLevel int) ([]*CommissionRule, error)
	// Deactivate marks every active version of the tuple inactive; used
	// when a superseding version is appended.
	Deactivate(category IncomeCategory, packageID string, level, subLevel int) error
}
