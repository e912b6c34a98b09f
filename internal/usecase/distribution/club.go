package distribution

import (
	"context"
	"errors"
	"fmt"

	"github.com/LavaJover/shvark-referral-service/internal/domain"
	"github.com/LavaJover/shvark-referral-service/internal/usecase/placement"
	"github.com/LavaJover/shvark-referral-service/internal/usecase/rules"
)

// ClubWorker places the purchaser into the sponsor's club matrix (if not
// already there) and pays the sponsor the amount resolved for the node's
// matrix level. The placement itself is non-financial and idempotent, so
// it is safe before the settlement transaction.
type ClubWorker struct {
	placement *placement.Service
	resolver  *rules.Resolver
}

func NewClubWorker(placementService *placement.Service, resolver *rules.Resolver) *ClubWorker {
	return &ClubWorker{placement: placementService, resolver: resolver}
}

func (w *ClubWorker) Category() domain.IncomeCategory {
	return domain.CategoryClub
}

func (w *ClubWorker) Plan(ctx context.Context, ev *Event) ([]domain.Posting, error) {
	if ev.SponsorID == "" || ev.SponsorID == ev.ParticipantID {
		return nil, nil
	}

	node, err := w.placement.PlaceInClubMatrix(ctx, ev.ParticipantID, ev.SponsorID)
	if err != nil {
		if errors.Is(err, domain.ErrCapacityExhausted) {
			return nil, nil
		}
		return nil, err
	}
	level := node.Depth + 1

	rule, err := w.resolver.Resolve(domain.CategoryClub, ev.PackageID, level, 0, ev.At)
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

	return []domain.Posting{{
		Credit:      &domain.WalletRef{ParticipantID: ev.SponsorID, Category: domain.WalletClub},
		Amount:      amount,
		Category:    domain.CategoryClub,
		ReferenceID: ev.ReferenceID,
		Description: fmt.Sprintf("club matrix level %d income from %s", level, ev.ParticipantID),
		Income: &domain.IncomeRecord{
			BeneficiaryID:     ev.SponsorID,
			OriginParticipant: ev.ParticipantID,
			Category:          domain.CategoryClub,
			Amount:            amount,
			Status:            domain.IncomePaid,
			RuleVersion:       rule.Version,
			ReferenceID:       ev.ReferenceID,
		},
	}}, nil
}
