package outbox

import (
	"context"
	"fmt"
	"math"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"

	"github.com/JoseGlez23/runX-API3/services/outbox-worker/internal/metrics"
	"github.com/JoseGlez23/runX-API3/shared/pkg/pg"
	"github.com/JoseGlez23/runX-API3/shared/pkg/rabbit"
)

type Publisher interface {
	Publish(ctx context.Context, routingKey string, body []byte, headers amqp.Table) error
}

// Runner relays order events written by the api into RabbitMQ. Rows are
// claimed with FOR UPDATE SKIP LOCKED so several workers can share a table.
type Runner struct {
	Log       zerolog.Logger
	DB        pg.Pool
	Publisher Publisher

	PollInterval time.Duration
	BatchSize    int
	MaxAttempts  int
	BackoffMax   time.Duration

	Now func() time.Time
}

type EventRow struct {
	ID        string
	OrderID   int64
	EventType string
	Payload   []byte
	Attempts  int
}

func (r *Runner) Run(ctx context.Context) {
	t := time.NewTicker(r.PollInterval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			r.Log.Info().Msg("outbox runner stopped")
			return
		case <-t.C:
			if err := r.Tick(ctx); err != nil {
				r.Log.Error().Err(err).Msg("outbox tick failed")
			}
		}
	}
}

// Tick relays one batch. Publish failures are recorded on the row and do not
// fail the tick; only store errors do.
func (r *Runner) Tick(ctx context.Context) error {
	if n, err := Pending(ctx, r.DB); err == nil {
		metrics.OutboxPending.Set(float64(n))
	}

	return pg.WithTx(ctx, r.DB, func(ctx context.Context, tx pg.DB) error {
		batch, err := r.claim(ctx, tx)
		if err != nil {
			return err
		}
		for _, e := range batch {
			if err := r.relay(ctx, tx, e); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *Runner) claim(ctx context.Context, tx pg.DB) ([]EventRow, error) {
	rows, err := tx.Query(ctx, `
		select id::text, order_id, event_type, payload::text, attempts
		from outbox_events
		where sent_at is null and next_attempt_at <= now()
		order by created_at
		limit $1
		for update skip locked
	`, r.BatchSize)
	if err != nil {
		return nil, fmt.Errorf("claim outbox batch: %w", err)
	}
	defer rows.Close()

	var batch []EventRow
	for rows.Next() {
		var e EventRow
		var payload string
		if err := rows.Scan(&e.ID, &e.OrderID, &e.EventType, &payload, &e.Attempts); err != nil {
			return nil, fmt.Errorf("scan outbox row: %w", err)
		}
		e.Payload = []byte(payload)
		batch = append(batch, e)
	}
	return batch, rows.Err()
}

func (r *Runner) relay(ctx context.Context, tx pg.DB, e EventRow) error {
	log := r.Log.With().Str("id", e.ID).Int64("orden_id", e.OrderID).Str("type", e.EventType).Logger()

	if e.Attempts >= r.MaxAttempts {
		metrics.OutboxDroppedTotal.Inc()
		log.Warn().Int("attempts", e.Attempts).Msg("outbox event dropped after max attempts")
		_, err := tx.Exec(ctx, `
			update outbox_events set last_error = $2, sent_at = now() where id = $1::uuid
		`, e.ID, "max attempts reached")
		return err
	}

	pubCtx, cancel := rabbit.WithTimeout(ctx)
	err := r.Publisher.Publish(pubCtx, e.EventType, e.Payload, amqp.Table{
		"x-outbox-id": e.ID,
		"x-order-id":  e.OrderID,
		"x-attempts":  int32(e.Attempts),
	})
	cancel()

	if err == nil {
		metrics.OutboxSentTotal.WithLabelValues(e.EventType).Inc()
		_, err := tx.Exec(ctx, `
			update outbox_events set sent_at = now(), last_error = null where id = $1::uuid
		`, e.ID)
		return err
	}

	metrics.OutboxPublishErrorsTotal.Inc()
	next := r.now().Add(Backoff(e.Attempts+1, r.BackoffMax))
	if _, err2 := tx.Exec(ctx, `
		update outbox_events
		set attempts = attempts + 1,
		    next_attempt_at = $2,
		    last_error = $3
		where id = $1::uuid
	`, e.ID, next, err.Error()); err2 != nil {
		return err2
	}
	log.Error().Err(err).Int("attempts", e.Attempts+1).Time("next", next).Msg("publish failed, retry scheduled")
	return nil
}

func (r *Runner) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

// Pending counts events that have not been sent or dropped yet.
func Pending(ctx context.Context, db pg.DB) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	var n int
	if err := db.QueryRow(ctx, `select count(*) from outbox_events where sent_at is null`).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// Backoff doubles per attempt, never below a second and never above max.
func Backoff(attempt int, max time.Duration) time.Duration {
	d := time.Duration(math.Pow(2, float64(attempt))) * time.Second
	if d > max {
		return max
	}
	if d < time.Second {
		return time.Second
	}
	return d
}
