package distribution

import (
	"context"
	"errors"
	"fmt"

	"github.com/LavaJover/shvark-referral-service/internal/domain"
	"github.com/LavaJover/shvark-referral-service/internal/usecase/rules"
)

// LevelWorker pays each ancestor of the purchaser in the general tree one
// rule-resolved amount per level, nearest ancestor first, up to maxLevels.
type LevelWorker struct {
	trees     domain.TreeRepository
	resolver  *rules.Resolver
	maxLevels int
}

func NewLevelWorker(trees domain.TreeRepository, resolver *rules.Resolver, maxLevels int) *LevelWorker {
	return &LevelWorker{trees: trees, resolver: resolver, maxLevels: maxLevels}
}

func (w *LevelWorker) Category() domain.IncomeCategory {
	return domain.CategoryLevel
}

func (w *LevelWorker) Plan(ctx context.Context, ev *Event) ([]domain.Posting, error) {
	node, err := w.trees.GetByParticipant(domain.TreeNetwork, "", ev.ParticipantID)
	if err != nil {
		return nil, err
	}
	if node == nil {
		return nil, nil
	}

	ancestors, err := w.trees.Ancestors(node.ID, w.maxLevels)
	if err != nil {
		return nil, err
	}

	var postings []domain.Posting
	for i, ancestor := range ancestors {
		level := i + 1
		rule, err := w.resolver.Resolve(domain.CategoryLevel, ev.PackageID, level, 0, ev.At)
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

		reference := fmt.Sprintf("%s:%d", ev.ReferenceID, level)
		postings = append(postings, domain.Posting{
			Credit:      &domain.WalletRef{ParticipantID: ancestor.ParticipantID, Category: domain.WalletCommission},
			Amount:      amount,
			Category:    domain.CategoryLevel,
			ReferenceID: ev.ReferenceID,
			Description: fmt.Sprintf("level %d income from %s", level, ev.ParticipantID),
			Income: &domain.IncomeRecord{
				BeneficiaryID:     ancestor.ParticipantID,
				OriginParticipant: ev.ParticipantID,
				Category:          domain.CategoryLevel,
				Amount:            amount,
				Status:            domain.IncomePaid,
				RuleVersion:       rule.Version,
				ReferenceID:       reference,
			},
		})
	}
	return postings, nil
}
