package repo

import (
	"context"
	"encoding/json"

	"github.com/JoseGlez23/runX-API3/shared/pkg/pg"
)

type OutboxPG struct{}

// Enqueue writes an event into outbox_events on the given handle, normally
// the placement transaction.
func (o *OutboxPG) Enqueue(ctx context.Context, db pg.DB, eventID string, orderID int64, eventType string, payload any) error {
	b, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	_, err = db.Exec(ctx, `
		insert into outbox_events(
			id, order_id, event_type, payload,
			attempts, next_attempt_at, created_at
		)
		values ($1::uuid, $2, $3, $4::jsonb, 0, now(), now())
	`, eventID, orderID, eventType, string(b))
	return err
}
