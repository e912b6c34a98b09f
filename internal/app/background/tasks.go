package background

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/LavaJover/shvark-referral-service/internal/domain"
	"github.com/LavaJover/shvark-referral-service/internal/usecase/processing"
)

const scanBatchSize = 500

// BackgroundTasks owns the periodic scanners and the purchase intake: each
// one only finds due work and enqueues jobs, the dispatcher does the rest.
type BackgroundTasks struct {
	Dispatcher  *Dispatcher
	Investments domain.InvestmentRepository
	Subscriber  domain.EventSubscriber
	Clock       processing.Clock
	ScanEvery   time.Duration
}

func NewBackgroundTasks(dispatcher *Dispatcher, investments domain.InvestmentRepository, subscriber domain.EventSubscriber, clock processing.Clock, scanEvery time.Duration) *BackgroundTasks {
	return &BackgroundTasks{
		Dispatcher:  dispatcher,
		Investments: investments,
		Subscriber:  subscriber,
		Clock:       clock,
		ScanEvery:   scanEvery,
	}
}

func (bt *BackgroundTasks) StartAll(ctx context.Context, purchaseTopic, groupID string) {
	go bt.startAccrualScan(ctx)
	go bt.startMaturityScan(ctx)
	if bt.Subscriber != nil {
		go bt.startPurchaseIntake(ctx, purchaseTopic, groupID)
	}
}

func (bt *BackgroundTasks) startAccrualScan(ctx context.Context) {
	ticker := time.NewTicker(bt.ScanEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			today := processing.DayOf(bt.Clock.Now())
			due, err := bt.Investments.FindDueAccruals(today, scanBatchSize)
			if err != nil {
				slog.Error("accrual scan failed", "error", err.Error())
				continue
			}
			for _, investment := range due {
				bt.Dispatcher.Enqueue(Job{Kind: JobAccrual, ID: investment.ID})
			}
		}
	}
}

func (bt *BackgroundTasks) startMaturityScan(ctx context.Context) {
	ticker := time.NewTicker(bt.ScanEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			due, err := bt.Investments.FindDueMaturities(bt.Clock.Now(), scanBatchSize)
			if err != nil {
				slog.Error("maturity scan failed", "error", err.Error())
				continue
			}
			for _, investment := range due {
				bt.Dispatcher.Enqueue(Job{Kind: JobMaturity, ID: investment.ID})
			}
		}
	}
}

type purchaseMessage struct {
	PurchaseID string `json:"purchase_id"`
}

func (bt *BackgroundTasks) startPurchaseIntake(ctx context.Context, topic, groupID string) {
	messages, err := bt.Subscriber.Subscribe(ctx, topic, groupID)
	if err != nil {
		slog.Error("purchase intake subscribe failed", "error", err.Error())
		return
	}

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-messages:
			if !ok {
				slog.Error("purchase intake channel closed")
				return
			}
			var event purchaseMessage
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				slog.Error("bad purchase message", "error", err.Error())
				continue
			}
			if event.PurchaseID == "" {
				continue
			}
			if err := bt.Dispatcher.EnqueueBlocking(ctx, Job{Kind: JobPurchase, ID: event.PurchaseID}); err != nil {
				return
			}
		}
	}
}
