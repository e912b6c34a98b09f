package distribution

import (
	"context"
	"errors"
	"fmt"

	"github.com/LavaJover/shvark-referral-service/internal/domain"
	"github.com/LavaJover/shvark-referral-service/internal/usecase/rules"
)

// PoolWorker splits a distributable amount among the package's active pool
// entries, a percentage per (level, sub-level) rule, debiting the company
// pool wallet. Each payout's idempotency key binds the distribution-run id
// to the entry, so a repeated run id is a no-op while distinct runs settle
// independently.
type PoolWorker struct {
	pools    domain.PoolRepository
	resolver *rules.Resolver
}

func NewPoolWorker(pools domain.PoolRepository, resolver *rules.Resolver) *PoolWorker {
	return &PoolWorker{pools: pools, resolver: resolver}
}

func (w *PoolWorker) Category() domain.IncomeCategory {
	return domain.CategoryPool
}

func (w *PoolWorker) Plan(ctx context.Context, ev *Event) ([]domain.Posting, error) {
	entries, err := w.pools.ActiveEntries(ev.PackageID)
	if err != nil {
		return nil, err
	}

	var postings []domain.Posting
	for _, entry := range entries {
		rule, err := w.resolver.Resolve(domain.CategoryPool, ev.PackageID, entry.Level, entry.SubLevel, ev.At)
		if err != nil {
			if errors.Is(err, domain.ErrRuleNotFound) {
				continue
			}
			return nil, err
		}

		amount := ruleAmount(rule, ev.Amount)
		if !amount.IsPositive() {
			continue
		}

		postings = append(postings, domain.Posting{
			Debit:       &domain.WalletRef{Category: domain.WalletPool},
			Credit:      &domain.WalletRef{ParticipantID: entry.ParticipantID, Category: domain.WalletPool},
			Amount:      amount,
			Category:    domain.CategoryPool,
			ReferenceID: ev.ReferenceID,
			Description: fmt.Sprintf("pool share level %d.%d of run %s", entry.Level, entry.SubLevel, ev.ReferenceID),
			Income: &domain.IncomeRecord{
				BeneficiaryID: entry.ParticipantID,
				Category:      domain.CategoryPool,
				Amount:        amount,
				Status:        domain.IncomePaid,
				RuleVersion:   rule.Version,
				ReferenceID:   fmt.Sprintf("%s:%s", ev.ReferenceID, entry.ID),
			},
		})
	}
	return postings, nil
}
