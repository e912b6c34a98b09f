package investment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/LavaJover/shvark-referral-service/internal/domain"
	"github.com/LavaJover/shvark-referral-service/internal/usecase/rules"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CreateInvestmentInput struct {
	ParticipantID string
	PackageID     string
	Principal     decimal.Decimal
	DailyRate     decimal.Decimal
	Currency      string
	TermDays      int
}

// Usecase drives the investment lifecycle. Activation is the only
// transition that moves money in: the principal leaves the investor's main
// wallet into the company main wallet, and the sponsor earns a one-time
// referral commission, all in one settlement.
type Usecase struct {
	Investments  domain.InvestmentRepository
	Participants domain.ParticipantRepository
	Settlements  domain.SettlementRepository
	Resolver     *rules.Resolver
}

func NewUsecase(investments domain.InvestmentRepository, participants domain.ParticipantRepository, settlements domain.SettlementRepository, resolver *rules.Resolver) *Usecase {
	return &Usecase{
		Investments:  investments,
		Participants: participants,
		Settlements:  settlements,
		Resolver:     resolver,
	}
}

func (uc *Usecase) Create(ctx context.Context, input *CreateInvestmentInput) (*domain.Investment, error) {
	if !input.Principal.IsPositive() {
		return nil, domain.ErrNegativeAmount
	}
	if _, err := uc.Participants.GetByID(input.ParticipantID); err != nil {
		return nil, err
	}

	end := time.Now().AddDate(0, 0, input.TermDays)
	investment := &domain.Investment{
		ID:              uuid.New().String(),
		ParticipantID:   input.ParticipantID,
		PackageID:       input.PackageID,
		Principal:       domain.RoundSettlement(input.Principal),
		DailyRate:       input.DailyRate,
		Currency:        input.Currency,
		Status:          domain.InvestmentPending,
		AccruedInterest: decimal.Zero,
		EndAt:           &end,
		CreatedAt:       time.Now(),
	}
	if err := uc.Investments.Create(investment); err != nil {
		return nil, err
	}
	return investment, nil
}

func (uc *Usecase) Activate(ctx context.Context, investmentID string) error {
	investment, err := uc.Investments.GetByID(investmentID)
	if err != nil {
		return err
	}
	if !investment.Status.CanTransition(domain.InvestmentActive) {
		if investment.Status == domain.InvestmentActive {
			return nil
		}
		return domain.ErrInvalidTransition
	}

	batch := &domain.SettlementBatch{
		Currency: investment.Currency,
		Postings: []domain.Posting{{
			Debit:       &domain.WalletRef{ParticipantID: investment.ParticipantID, Category: domain.WalletMain},
			Credit:      &domain.WalletRef{Category: domain.WalletMain},
			Amount:      investment.Principal,
			Category:    domain.CategoryPayout,
			ReferenceID: investment.ID + ":principal",
			Description: fmt.Sprintf("principal of investment %s", investment.ID),
			// The company-side receipt keys the principal move so two
			// overlapped activations cannot both debit the investor.
			Income: &domain.IncomeRecord{
				OriginParticipant: investment.ParticipantID,
				Category:          domain.CategoryPayout,
				Amount:            investment.Principal,
				Status:            domain.IncomePaid,
				ReferenceID:       investment.ID + ":principal",
			},
		}},
		Marks: []domain.Mark{{
			Kind:         domain.MarkInvestmentStatus,
			InvestmentID: investment.ID,
			PriorStatus:  investment.Status,
			NewStatus:    domain.InvestmentActive,
		}},
	}

	if posting, err := uc.referralPosting(investment); err != nil {
		return err
	} else if posting != nil {
		batch.Postings = append(batch.Postings, *posting)
	}

	if err := uc.Settlements.Apply(batch); err != nil {
		if errors.Is(err, domain.ErrDuplicateEvent) {
			return nil
		}
		return err
	}
	slog.Info("investment activated", "investment_id", investmentID, "principal", investment.Principal.String())
	return nil
}

func (uc *Usecase) Cancel(ctx context.Context, investmentID string) error {
	investment, err := uc.Investments.GetByID(investmentID)
	if err != nil {
		return err
	}
	if !investment.Status.CanTransition(domain.InvestmentCancelled) {
		return domain.ErrInvalidTransition
	}

	// Cancelling an active investment returns the principal; a pending one
	// has moved no money yet.
	if investment.Status == domain.InvestmentActive {
		return uc.exitWithPrincipal(investment, domain.InvestmentCancelled, ":cancel")
	}
	return uc.Investments.UpdateStatus(investment.ID, domain.InvestmentCancelled)
}

// Withdraw exits an active investment early: the principal comes back,
// interest accrued so far stays settled, no further accrual runs.
func (uc *Usecase) Withdraw(ctx context.Context, investmentID string) error {
	investment, err := uc.Investments.GetByID(investmentID)
	if err != nil {
		return err
	}
	if !investment.Status.CanTransition(domain.InvestmentWithdrawn) {
		return domain.ErrInvalidTransition
	}
	return uc.exitWithPrincipal(investment, domain.InvestmentWithdrawn, ":withdraw")
}

func (uc *Usecase) exitWithPrincipal(investment *domain.Investment, status domain.InvestmentStatus, refSuffix string) error {
	batch := &domain.SettlementBatch{
		Currency: investment.Currency,
		Postings: []domain.Posting{{
			Debit:       &domain.WalletRef{Category: domain.WalletMain},
			Credit:      &domain.WalletRef{ParticipantID: investment.ParticipantID, Category: domain.WalletMain},
			Amount:      investment.Principal,
			Category:    domain.CategoryPayout,
			ReferenceID: investment.ID + refSuffix,
			Description: fmt.Sprintf("principal return of %s", investment.ID),
			Income: &domain.IncomeRecord{
				BeneficiaryID: investment.ParticipantID,
				Category:      domain.CategoryPayout,
				Amount:        investment.Principal,
				Status:        domain.IncomePaid,
				ReferenceID:   investment.ID + refSuffix,
			},
		}},
		Marks: []domain.Mark{{
			Kind:         domain.MarkInvestmentStatus,
			InvestmentID: investment.ID,
			PriorStatus:  investment.Status,
			NewStatus:    status,
		}},
	}
	if err := uc.Settlements.Apply(batch); err != nil {
		if errors.Is(err, domain.ErrDuplicateEvent) {
			return nil
		}
		return err
	}
	return nil
}

func (uc *Usecase) referralPosting(investment *domain.Investment) (*domain.Posting, error) {
	participant, err := uc.Participants.GetByID(investment.ParticipantID)
	if err != nil {
		return nil, err
	}
	if participant.SponsorID == "" {
		return nil, nil
	}

	rule, err := uc.Resolver.Resolve(domain.CategoryReferral, investment.PackageID, 0, 0, time.Now())
	if err != nil {
		if errors.Is(err, domain.ErrRuleNotFound) {
			return nil, nil
		}
		return nil, err
	}

	amount := domain.RoundSettlement(rule.Value)
	if rule.Kind == domain.AmountPercent {
		amount = domain.ApplyPercent(investment.Principal, rule.Value)
	}
	if !amount.IsPositive() {
		return nil, nil
	}

	reference := investment.ID + ":referral"
	return &domain.Posting{
		Credit:      &domain.WalletRef{ParticipantID: participant.SponsorID, Category: domain.WalletCommission},
		Amount:      amount,
		Category:    domain.CategoryReferral,
		ReferenceID: reference,
		Description: fmt.Sprintf("referral commission on investment %s", investment.ID),
		Income: &domain.IncomeRecord{
			BeneficiaryID:     participant.SponsorID,
			OriginParticipant: investment.ParticipantID,
			Category:          domain.CategoryReferral,
			Amount:            amount,
			Status:            domain.IncomePaid,
			RuleVersion:       rule.Version,
			ReferenceID:       reference,
		},
	}, nil
}
