package worker

// dlq.go: invoice and email jobs that keep failing are parked in
// dlq:<queue>. Operators list them through the jobs endpoints and replay
// them once the cause (SMTP outage, bad dealer e-mail) is fixed.

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const DLQPrefix = "dlq:"

// Queues lists every queue the pool consumes, in BRPOP priority order.
var Queues = []string{QueueInvoice, QueueEmail}

// DLQEntry is one parked job plus the reason it was given up on.
type DLQEntry struct {
	OriginalQueue string          `json:"original_queue"`
	JobType       string          `json:"job_type"`
	Payload       json.RawMessage `json:"payload"`
	Reason        string          `json:"reason"`
	FailedAt      time.Time       `json:"failed_at"`
	Attempts      int             `json:"attempts"`
}

// QueueStats reports pending and dead-lettered jobs of one queue.
type QueueStats struct {
	Queue   string `json:"queue"`
	Pending int64  `json:"pending"`
	Dead    int64  `json:"dead"`
}

// KnownQueue reports whether name is one of the pool's queues.
func KnownQueue(name string) bool {
	return slices.Contains(Queues, name)
}

// SendToDLQ parks a job that exhausted its attempts. With no redis client
// the entry is only logged.
func SendToDLQ(ctx context.Context, rdb *redis.Client, queue string, job Job, reason string) {
	entry := DLQEntry{
		OriginalQueue: queue,
		JobType:       job.Type,
		Payload:       job.Payload,
		Reason:        reason,
		FailedAt:      time.Now().UTC(),
		Attempts:      job.Attempts,
	}

	logger := log.Warn().
		Str("queue", queue).
		Str("job_type", job.Type).
		Str("reason", reason).
		Int("attempts", job.Attempts)

	if rdb == nil {
		logger.Msg("dlq: no redis client, dropping job")
		return
	}

	data, err := json.Marshal(entry)
	if err != nil {
		log.Error().Err(err).Str("queue", queue).Msg("dlq: failed to marshal entry")
		return
	}
	if err := rdb.LPush(ctx, DLQPrefix+queue, data).Err(); err != nil {
		log.Error().Err(err).Str("dlq_key", DLQPrefix+queue).Msg("dlq: push failed")
		return
	}
	logger.Msg("dlq: job parked")
}

// DLQLength returns the number of parked jobs of a queue.
func DLQLength(ctx context.Context, rdb *redis.Client, queue string) (int64, error) {
	return rdb.LLen(ctx, DLQPrefix+queue).Result()
}

// Stats reads the pending and parked depth of every queue in one pipeline.
func Stats(ctx context.Context, rdb *redis.Client) ([]QueueStats, error) {
	if rdb == nil {
		return nil, errors.New("dlq: redis not configured")
	}
	pipe := rdb.Pipeline()
	pending := make([]*redis.IntCmd, len(Queues))
	dead := make([]*redis.IntCmd, len(Queues))
	for i, q := range Queues {
		pending[i] = pipe.LLen(ctx, q)
		dead[i] = pipe.LLen(ctx, DLQPrefix+q)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, err
	}
	out := make([]QueueStats, len(Queues))
	for i, q := range Queues {
		out[i] = QueueStats{Queue: q, Pending: pending[i].Val(), Dead: dead[i].Val()}
	}
	return out, nil
}

// PeekDLQ returns up to limit parked jobs, newest first, without removing them.
func PeekDLQ(ctx context.Context, rdb *redis.Client, queue string, limit int64) ([]DLQEntry, error) {
	raw, err := rdb.LRange(ctx, DLQPrefix+queue, 0, limit-1).Result()
	if err != nil {
		return nil, err
	}
	entries := make([]DLQEntry, 0, len(raw))
	for _, r := range raw {
		var e DLQEntry
		if err := json.Unmarshal([]byte(r), &e); err != nil {
			log.Warn().Err(err).Str("queue", queue).Msg("dlq: skipping unreadable entry")
			continue
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// ReplayDLQ moves up to limit parked jobs, oldest first, back onto their
// queue with a fresh attempt budget. It returns how many were moved.
func ReplayDLQ(ctx context.Context, rdb *redis.Client, queue string, limit int) (int, error) {
	moved := 0
	for moved < limit {
		raw, err := rdb.RPop(ctx, DLQPrefix+queue).Result()
		if errors.Is(err, redis.Nil) {
			break
		}
		if err != nil {
			return moved, err
		}

		var e DLQEntry
		if err := json.Unmarshal([]byte(raw), &e); err != nil {
			log.Warn().Err(err).Str("queue", queue).Msg("dlq: discarding unreadable entry")
			continue
		}
		job, err := json.Marshal(Job{Type: e.JobType, Payload: e.Payload})
		if err != nil {
			return moved, err
		}
		if err := rdb.LPush(ctx, queue, job).Err(); err != nil {
			// put it back so nothing is lost
			_ = rdb.RPush(ctx, DLQPrefix+queue, raw).Err()
			return moved, fmt.Errorf("dlq: requeue %s: %w", queue, err)
		}
		moved++
	}
	if moved > 0 {
		log.Info().Str("queue", queue).Int("count", moved).Msg("dlq: jobs replayed")
	}
	return moved, nil
}
