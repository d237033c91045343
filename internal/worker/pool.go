package worker

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	QueueInvoice = "jobs:invoice"
	QueueEmail   = "jobs:email"

	JobInvoice = "invoice"
	JobEmail   = "email"

	// MaxJobAttempts is how many times a failing job runs before the DLQ.
	MaxJobAttempts = 3

	popErrorBackoff = time.Second
)

// Job is the generic envelope for all async tasks.
type Job struct {
	Type     string          `json:"type"`
	Payload  json.RawMessage `json:"payload"`
	Attempts int             `json:"attempts"`
}

// Handler processes one job payload. A returned error requeues the job
// until MaxJobAttempts, then moves it to the DLQ.
type Handler interface {
	Process(ctx context.Context, payload json.RawMessage) error
}

// Dispatcher enqueues async jobs into Redis lists.
// The worker pool dequeues them via BRPOP.
type Dispatcher struct {
	rdb *redis.Client
}

func NewDispatcher(rdb *redis.Client) *Dispatcher {
	return &Dispatcher{rdb: rdb}
}

// EnqueueInvoice queues invoice rendering for a sale that became fully paid.
func (d *Dispatcher) EnqueueInvoice(ctx context.Context, saleID uint) error {
	return d.enqueue(ctx, QueueInvoice, Job{Type: JobInvoice}, InvoiceJobPayload{SaleID: saleID})
}

// EnqueueEmail queues delivery of a rendered invoice.
func (d *Dispatcher) EnqueueEmail(ctx context.Context, payload EmailJobPayload) error {
	return d.enqueue(ctx, QueueEmail, Job{Type: JobEmail}, payload)
}

func (d *Dispatcher) enqueue(ctx context.Context, queue string, job Job, payload any) error {
	if d == nil || d.rdb == nil {
		return errors.New("dispatcher: redis not configured")
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	job.Payload = data
	return d.push(ctx, queue, job)
}

func (d *Dispatcher) push(ctx context.Context, queue string, job Job) error {
	encoded, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return d.rdb.LPush(ctx, queue, encoded).Err()
}

// Pool consumes both queues with a fixed number of goroutines.
type Pool struct {
	rdb        *redis.Client
	dispatcher *Dispatcher
	handlers   map[string]Handler
}

// NewPool maps job types to their handlers.
func NewPool(rdb *redis.Client, invoice, email Handler) *Pool {
	return &Pool{
		rdb:        rdb,
		dispatcher: NewDispatcher(rdb),
		handlers:   map[string]Handler{JobInvoice: invoice, JobEmail: email},
	}
}

// Start launches numWorkers goroutines. Each blocks on BRPOP, so idle
// workers cost nothing; they exit when ctx is cancelled.
func (p *Pool) Start(ctx context.Context, numWorkers int) {
	for i := 0; i < numWorkers; i++ {
		go p.run(ctx, i)
	}
	log.Info().Msgf("worker pool started with %d workers", numWorkers)
}

func (p *Pool) run(ctx context.Context, id int) {
	for {
		select {
		case <-ctx.Done():
			log.Info().Msgf("worker %d shutting down", id)
			return
		default:
			// BRPOP waits up to 5s, then the loop re-checks ctx
			result, err := p.rdb.BRPop(ctx, 5*time.Second, Queues...).Result()
			if err != nil {
				if wait := popBackoff(err); wait > 0 {
					log.Warn().Err(err).Int("worker", id).Dur("backoff", wait).Msg("worker: redis pop failed")
					select {
					case <-ctx.Done():
					case <-time.After(wait):
					}
				}
				continue
			}
			if len(result) < 2 {
				continue
			}
			p.handle(ctx, result[0], result[1])
		}
	}
}

// popBackoff is how long a worker pauses after a failed BRPOP. Timeouts
// (redis.Nil) and cancellation retry at once; anything else means redis is
// unreachable.
func popBackoff(err error) time.Duration {
	if errors.Is(err, redis.Nil) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return 0
	}
	return popErrorBackoff
}

func (p *Pool) handle(ctx context.Context, queue, raw string) {
	var job Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		log.Error().Str("queue", queue).Err(err).Msg("failed to unmarshal job")
		return
	}
	h, ok := p.handlers[job.Type]
	if !ok || h == nil {
		log.Error().Str("queue", queue).Str("type", job.Type).Msg("no handler for job type")
		SendToDLQ(ctx, p.rdb, queue, job, "no handler registered")
		return
	}

	job.Attempts++
	err := h.Process(ctx, job.Payload)
	if err == nil {
		return
	}
	if job.Attempts >= MaxJobAttempts {
		SendToDLQ(ctx, p.rdb, queue, job, err.Error())
		return
	}
	log.Warn().Err(err).
		Str("type", job.Type).
		Int("attempt", job.Attempts).
		Msg("job failed, requeueing")
	if perr := p.dispatcher.push(ctx, queue, job); perr != nil {
		log.Error().Err(perr).Str("queue", queue).Msg("requeue failed")
	}
}
