package distribution

import (
	"context"
	"errors"
	"fmt"

	"github.com/LavaJover/shvark-referral-service/internal/domain"
	"github.com/LavaJover/shvark-referral-service/internal/usecase/rules"
	"github.com/shopspring/decimal"
)

// FasttrackWorker pays the purchaser's immediate sponsor a percentage of
// the purchase amount, optionally routing a rule-configured slice into the
// company pool wallet.
type FasttrackWorker struct {
	resolver *rules.Resolver
}

func NewFasttrackWorker(resolver *rules.Resolver) *FasttrackWorker {
	return &FasttrackWorker{resolver: resolver}
}

func (w *FasttrackWorker) Category() domain.IncomeCategory {
	return domain.CategoryFasttrack
}

func (w *FasttrackWorker) Plan(ctx context.Context, ev *Event) ([]domain.Posting, error) {
	if ev.SponsorID == "" {
		return nil, nil
	}

	rule, err := w.resolver.Resolve(domain.CategoryFasttrack, ev.PackageID, 0, 0, ev.At)
	if err != nil {
		if errors.Is(err, domain.ErrRuleNotFound) {
			return nil, nil
		}
		return nil, err
	}

	amount := ruleAmount(rule, ev.Amount)
	if !amount.IsPositive() {
		return nil, nil
	}

	postings := []domain.Posting{{
		Credit:      &domain.WalletRef{ParticipantID: ev.SponsorID, Category: domain.WalletFasttrack},
		Amount:      amount,
		Category:    domain.CategoryFasttrack,
		ReferenceID: ev.ReferenceID,
		Description: fmt.Sprintf("fasttrack income from %s", ev.ParticipantID),
		Income: &domain.IncomeRecord{
			BeneficiaryID:     ev.SponsorID,
			OriginParticipant: ev.ParticipantID,
			Category:          domain.CategoryFasttrack,
			Amount:            amount,
			Status:            domain.IncomePaid,
			RuleVersion:       rule.Version,
			ReferenceID:       ev.ReferenceID,
		},
	}}

	if raw, ok := rule.ExtraParams["pool_percent"]; ok {
		poolRate, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, fmt.Errorf("fasttrack rule %s: bad pool_percent %q: %w", rule.ID, raw, err)
		}
		slice := domain.ApplyPercent(ev.Amount, poolRate)
		if slice.IsPositive() {
			sliceRef := ev.ReferenceID + ":pool-slice"
			postings = append(postings, domain.Posting{
				Credit:      &domain.WalletRef{Category: domain.WalletPool},
				Amount:      slice,
				Category:    domain.CategoryFasttrack,
				ReferenceID: sliceRef,
				Description: fmt.Sprintf("company pool slice of purchase %s", ev.ReferenceID),
				// The company receipt carries its own idempotency key so
				// an overlapped rerun cannot credit the slice twice.
				Income: &domain.IncomeRecord{
					OriginParticipant: ev.ParticipantID,
					Category:          domain.CategoryFasttrack,
					Amount:            slice,
					Status:            domain.IncomePaid,
					RuleVersion:       rule.Version,
					ReferenceID:       sliceRef,
				},
			})
		}
	}

	return postings, nil
}
