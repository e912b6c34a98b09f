package background

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/LavaJover/shvark-referral-service/internal/usecase/processing"
)

type JobKind string

const (
	JobPurchase JobKind = "PURCHASE"
	JobAccrual  JobKind = "ACCRUAL"
	JobMaturity JobKind = "MATURITY"
)

type Job struct {
	Kind     JobKind
	ID       string
	Attempts int
}

// Dispatcher runs one processing unit per job on a bounded worker pool.
// Unrelated events may run in parallel; a failed job is requeued with
// linear backoff until maxAttempts. Requeueing is always safe: every
// processor operation is idempotent.
type Dispatcher struct {
	queue       chan Job
	processor   *processing.Processor
	workers     int
	maxAttempts int
	backoffBase time.Duration
}

func NewDispatcher(processor *processing.Processor, workers, maxAttempts int) *Dispatcher {
	if workers < 1 {
		workers = 1
	}
	return &Dispatcher{
		queue:       make(chan Job, 1024),
		processor:   processor,
		workers:     workers,
		maxAttempts: maxAttempts,
		backoffBase: 2 * time.Second,
	}
}

func (d *Dispatcher) Start(ctx context.Context) {
	for i := 0; i < d.workers; i++ {
		go d.runWorker(ctx)
	}
}

// Enqueue drops the job when the queue is full. Callers whose work is
// re-found by a periodic scan tolerate the drop.
func (d *Dispatcher) Enqueue(job Job) {
	select {
	case d.queue <- job:
	default:
		slog.Error("dispatch queue full, dropping job", "kind", job.Kind, "id", job.ID)
	}
}

// EnqueueBlocking waits for queue space. The purchase intake uses it
// because the broker offset is already committed by the time the job
// arrives here, so a drop would lose the purchase for good.
func (d *Dispatcher) EnqueueBlocking(ctx context.Context, job Job) error {
	select {
	case d.queue <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Dispatcher) runWorker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case job := <-d.queue:
			if err := d.process(ctx, job); err != nil {
				d.retry(job, err)
			}
		}
	}
}

func (d *Dispatcher) process(ctx context.Context, job Job) error {
	switch job.Kind {
	case JobPurchase:
		return d.processor.ProcessPurchase(ctx, job.ID)
	case JobAccrual:
		return d.processor.ProcessDailyAccrual(ctx, job.ID)
	case JobMaturity:
		return d.processor.ProcessMaturity(ctx, job.ID)
	default:
		return fmt.Errorf("unknown job kind: %s", job.Kind)
	}
}

func (d *Dispatcher) retry(job Job, err error) {
	job.Attempts++
	if job.Attempts >= d.maxAttempts {
		slog.Error("job exhausted retries",
			"kind", job.Kind, "id", job.ID, "attempts", job.Attempts, "error", err.Error())
		return
	}
	backoff := time.Duration(job.Attempts) * d.backoffBase
	slog.Error("job failed, requeueing",
		"kind", job.Kind, "id", job.ID, "attempt", job.Attempts, "backoff", backoff, "error", err.Error())
	time.AfterFunc(backoff, func() { d.Enqueue(job) })
}
