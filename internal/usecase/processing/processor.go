package processing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/LavaJover/shvark-referral-service/internal/domain"
	"github.com/LavaJover/shvark-referral-service/internal/infrastructure/metrics"
	"github.com/LavaJover/shvark-referral-service/internal/usecase/distribution"
	"github.com/LavaJover/shvark-referral-service/internal/usecase/placement"
	"github.com/shopspring/decimal"
)

// Processor orchestrates one triggering event end to end: idempotency
// check, placement, worker planning, and a single atomic settlement. All
// reads run before the money-moving transaction; every Process* method is
// safe to invoke more than once with the same identifier.
type Processor struct {
	Purchases    domain.PurchaseRepository
	Investments  domain.InvestmentRepository
	Incomes      domain.IncomeRepository
	Settlements  domain.SettlementRepository
	Placement    *placement.Service
	Workers      distribution.Table
	Publisher    domain.EventPublisher
	Metrics      *metrics.SettlementMetrics
	Clock        Clock
	Currency     string
}

// purchaseCategories is the order workers run for a confirmed purchase.
var purchaseCategories = []domain.IncomeCategory{
	domain.CategoryLevel,
	domain.CategoryFasttrack,
	domain.CategoryClub,
}

func (p *Processor) ProcessPurchase(ctx context.Context, purchaseID string) error {
	start := time.Now()
	purchase, err := p.Purchases.GetByID(purchaseID)
	if err != nil {
		return err
	}
	if purchase.ProcessedAt != nil {
		slog.Info("purchase already processed", "purchase_id", purchaseID)
		return nil
	}

	if purchase.FirstEnrollment {
		node, err := p.Placement.PlaceInNetwork(ctx, purchase.ParticipantID, purchase.SponsorID)
		if err != nil {
			return fmt.Errorf("placing %s: %w", purchase.ParticipantID, err)
		}
		if p.Metrics != nil {
			p.Metrics.RecordPlacementDepth(string(domain.TreeNetwork), node.Depth)
		}
	}

	ev := &distribution.Event{
		ReferenceID:   purchase.ID,
		ParticipantID: purchase.ParticipantID,
		SponsorID:     purchase.SponsorID,
		PackageID:     purchase.PackageID,
		Amount:        purchase.Amount,
		At:            p.Clock.Now(),
	}

	batch := &domain.SettlementBatch{
		Currency: purchase.Currency,
		Marks:    []domain.Mark{{Kind: domain.MarkPurchaseProcessed, PurchaseID: purchase.ID}},
	}
	for _, category := range purchaseCategories {
		worker, ok := p.Workers[category]
		if !ok {
			continue
		}
		postings, err := worker.Plan(ctx, ev)
		if err != nil {
			return fmt.Errorf("planning %s: %w", category, err)
		}
		postings, err = p.dropSettled(postings)
		if err != nil {
			return err
		}
		batch.Postings = append(batch.Postings, postings...)
	}

	if err := p.settle(batch, "purchase", start); err != nil {
		return err
	}
	slog.Info("purchase processed",
		"purchase_id", purchaseID,
		"postings", len(batch.Postings),
		"elapsed", time.Since(start))
	return nil
}

func (p *Processor) ProcessDailyAccrual(ctx context.Context, investmentID string) error {
	start := time.Now()
	investment, err := p.Investments.GetByID(investmentID)
	if err != nil {
		return err
	}
	if investment.Status != domain.InvestmentActive {
		return nil
	}

	today := DayOf(p.Clock.Now())
	if investment.LastAccrualDate != nil && !investment.LastAccrualDate.Before(today) {
		slog.Info("accrual already stamped", "investment_id", investmentID, "date", today.Format("2006-01-02"))
		return nil
	}

	interest := domain.ApplyPercent(investment.Principal, investment.DailyRate)
	if !interest.IsPositive() {
		return p.Settlements.Apply(&domain.SettlementBatch{
			Currency: investment.Currency,
			Marks: []domain.Mark{{
				Kind:         domain.MarkAccrualDate,
				InvestmentID: investment.ID,
				AccrualDate:  today,
				AccruedDelta: decimal.Zero,
			}},
		})
	}

	reference := fmt.Sprintf("%s:%s", investment.ID, today.Format("2006-01-02"))
	batch := &domain.SettlementBatch{
		Currency: investment.Currency,
		Postings: []domain.Posting{{
			Credit:      &domain.WalletRef{ParticipantID: investment.ParticipantID, Category: domain.WalletMain},
			Amount:      interest,
			Category:    domain.CategoryInterest,
			ReferenceID: reference,
			Description: fmt.Sprintf("daily interest on %s", investment.ID),
			Income: &domain.IncomeRecord{
				BeneficiaryID: investment.ParticipantID,
				Category:      domain.CategoryInterest,
				Amount:        interest,
				Status:        domain.IncomePaid,
				ReferenceID:   reference,
			},
		}},
		Marks: []domain.Mark{{
			Kind:         domain.MarkAccrualDate,
			InvestmentID: investment.ID,
			AccrualDate:  today,
			AccruedDelta: interest,
		}},
	}
	if err := p.settle(batch, "accrual", start); err != nil {
		return err
	}
	slog.Info("daily interest accrued",
		"investment_id", investmentID,
		"date", today.Format("2006-01-02"),
		"interest", interest.String())
	return nil
}

func (p *Processor) ProcessMaturity(ctx context.Context, investmentID string) error {
	start := time.Now()
	investment, err := p.Investments.GetByID(investmentID)
	if err != nil {
		return err
	}
	if investment.Status != domain.InvestmentActive {
		return nil
	}
	if investment.EndAt == nil || investment.EndAt.After(p.Clock.Now()) {
		return nil
	}

	reference := investment.ID + ":maturity"
	batch := &domain.SettlementBatch{
		Currency: investment.Currency,
		Postings: []domain.Posting{{
			// The company main wallet has held the principal since
			// activation; interest was settled day by day.
			Debit:       &domain.WalletRef{Category: domain.WalletMain},
			Credit:      &domain.WalletRef{ParticipantID: investment.ParticipantID, Category: domain.WalletMain},
			Amount:      investment.Principal,
			Category:    domain.CategoryPayout,
			ReferenceID: reference,
			Description: fmt.Sprintf("maturity payout of %s", investment.ID),
			Income: &domain.IncomeRecord{
				BeneficiaryID: investment.ParticipantID,
				Category:      domain.CategoryPayout,
				Amount:        investment.Principal,
				Status:        domain.IncomePaid,
				ReferenceID:   reference,
			},
		}},
		Marks: []domain.Mark{{
			Kind:         domain.MarkInvestmentStatus,
			InvestmentID: investment.ID,
			PriorStatus:  domain.InvestmentActive,
			NewStatus:    domain.InvestmentCompleted,
		}},
	}
	if err := p.settle(batch, "maturity", start); err != nil {
		return err
	}
	slog.Info("investment matured", "investment_id", investmentID, "principal", investment.Principal.String())
	return nil
}

// ProcessPoolDistribution splits amount among the package's active pool
// entries. The runID is the idempotency key: replaying a run settles
// nothing, distinct runs settle independently.
func (p *Processor) ProcessPoolDistribution(ctx context.Context, packageID string, amount decimal.Decimal, runID string) error {
	start := time.Now()
	worker, ok := p.Workers[domain.CategoryPool]
	if !ok {
		return fmt.Errorf("no pool worker registered")
	}

	postings, err := worker.Plan(ctx, &distribution.Event{
		ReferenceID: runID,
		PackageID:   packageID,
		Amount:      amount,
		At:          p.Clock.Now(),
	})
	if err != nil {
		return fmt.Errorf("planning pool run %s: %w", runID, err)
	}
	postings, err = p.dropSettled(postings)
	if err != nil {
		return err
	}
	if len(postings) == 0 {
		slog.Info("pool run settled nothing", "run_id", runID)
		return nil
	}

	batch := &domain.SettlementBatch{Currency: p.Currency, Postings: postings}
	if err := p.settle(batch, "pool", start); err != nil {
		return err
	}
	slog.Info("pool run distributed", "run_id", runID, "entries", len(postings))
	return nil
}

// dropSettled removes postings whose income record key already exists: the
// per-category replay guard of the distribution skeleton. The unique
// constraint remains the backstop under concurrency.
func (p *Processor) dropSettled(postings []domain.Posting) ([]domain.Posting, error) {
	kept := postings[:0]
	for _, posting := range postings {
		if posting.Income != nil {
			exists, err := p.Incomes.Exists(posting.Income.Category, posting.Income.ReferenceID)
			if err != nil {
				return nil, err
			}
			if exists {
				continue
			}
		}
		kept = append(kept, posting)
	}
	return kept, nil
}

func (p *Processor) settle(batch *domain.SettlementBatch, eventType string, start time.Time) error {
	err := p.Settlements.Apply(batch)
	if err != nil {
		// A duplicate key proves a prior run completed; success.
		if errors.Is(err, domain.ErrDuplicateEvent) {
			slog.Info("settlement already applied", "event_type", eventType)
			return nil
		}
		if p.Metrics != nil {
			p.Metrics.RecordError(eventType, errorType(err))
		}
		return err
	}

	if p.Metrics != nil {
		p.Metrics.RecordProcessed(eventType, time.Since(start).Seconds())
		for i := range batch.Postings {
			p.Metrics.RecordSettlement(string(batch.Postings[i].Category), batch.Currency,
				batch.Postings[i].Amount.InexactFloat64())
		}
	}
	p.publishSettled(batch)
	return nil
}

type settlementEvent struct {
	BeneficiaryID string `json:"beneficiary_id"`
	Category      string `json:"category"`
	Amount        string `json:"amount"`
	Currency      string `json:"currency"`
	ReferenceID   string `json:"reference_id"`
}

// publishSettled emits one event per receipt after commit. Publishing is
// best effort: failures are logged, never rolled back.
func (p *Processor) publishSettled(batch *domain.SettlementBatch) {
	if p.Publisher == nil {
		return
	}
	for i := range batch.Postings {
		income := batch.Postings[i].Income
		if income == nil {
			continue
		}
		event := settlementEvent{
			BeneficiaryID: income.BeneficiaryID,
			Category:      string(income.Category),
			Amount:        income.Amount.String(),
			Currency:      batch.Currency,
			ReferenceID:   income.ReferenceID,
		}
		go func(event settlementEvent) {
			raw, err := json.Marshal(event)
			if err != nil {
				return
			}
			if err := p.Publisher.Publish(domain.Message{Key: []byte(event.BeneficiaryID), Value: raw}); err != nil {
				slog.Error("failed to publish settlement event", "error", err.Error())
			}
		}(event)
	}
}

func errorType(err error) string {
	switch {
	case errors.Is(err, domain.ErrInsufficientFunds):
		return "insufficient_funds"
	case errors.Is(err, domain.ErrCapacityExhausted):
		return "capacity_exhausted"
	default:
		return "internal"
	}
}
