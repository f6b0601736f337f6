package outbox

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type published struct {
	key     string
	body    string
	headers amqp.Table
}

type fakePublisher struct {
	sent []published
	fail map[string]error
}

func (f *fakePublisher) Publish(_ context.Context, key string, body []byte, headers amqp.Table) error {
	if err := f.fail[headers["x-outbox-id"].(string)]; err != nil {
		return err
	}
	f.sent = append(f.sent, published{key: key, body: string(body), headers: headers})
	return nil
}

func newRunner(t *testing.T, pub Publisher) (*Runner, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, mock.ExpectationsWereMet())
		mock.Close()
	})
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return &Runner{
		Log:         zerolog.Nop(),
		DB:          mock,
		Publisher:   pub,
		BatchSize:   50,
		MaxAttempts: 3,
		BackoffMax:  time.Minute,
		Now:         func() time.Time { return now },
	}, mock
}

func eventRows() *pgxmock.Rows {
	return pgxmock.NewRows([]string{"id", "order_id", "event_type", "payload", "attempts"})
}

func TestTick_PublishesAndMarksSent(t *testing.T) {
	pub := &fakePublisher{}
	r, mock := newRunner(t, pub)

	mock.ExpectQuery(`select count\(\*\) from outbox_events`).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectBegin()
	mock.ExpectQuery(`for update skip locked`).
		WithArgs(50).
		WillReturnRows(eventRows().AddRow("evt-1", int64(501), "orders.placed", `{"orderId":501}`, 0))
	mock.ExpectExec(`set sent_at = now\(\), last_error = null`).
		WithArgs("evt-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectCommit()

	require.NoError(t, r.Tick(context.Background()))

	require.Len(t, pub.sent, 1)
	assert.Equal(t, "orders.placed", pub.sent[0].key)
	assert.JSONEq(t, `{"orderId":501}`, pub.sent[0].body)
	assert.Equal(t, int64(501), pub.sent[0].headers["x-order-id"])
}

func TestTick_SchedulesRetryOnPublishFailure(t *testing.T) {
	pub := &fakePublisher{fail: map[string]error{"evt-1": errors.New("broker down")}}
	r, mock := newRunner(t, pub)

	mock.ExpectQuery(`select count\(\*\) from outbox_events`).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(2))
	mock.ExpectBegin()
	mock.ExpectQuery(`for update skip locked`).
		WithArgs(50).
		WillReturnRows(eventRows().
			AddRow("evt-1", int64(501), "orders.placed", `{}`, 1).
			AddRow("evt-2", int64(502), "orders.placed", `{}`, 0))
	mock.ExpectExec(`set attempts = attempts \+ 1`).
		WithArgs("evt-1", r.Now().Add(4*time.Second), "broker down").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec(`set sent_at = now\(\), last_error = null`).
		WithArgs("evt-2").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectCommit()

	require.NoError(t, r.Tick(context.Background()))
	require.Len(t, pub.sent, 1)
	assert.Equal(t, "evt-2", pub.sent[0].headers["x-outbox-id"])
}

func TestTick_DropsAfterMaxAttempts(t *testing.T) {
	pub := &fakePublisher{}
	r, mock := newRunner(t, pub)

	mock.ExpectQuery(`select count\(\*\) from outbox_events`).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectBegin()
	mock.ExpectQuery(`for update skip locked`).
		WithArgs(50).
		WillReturnRows(eventRows().AddRow("evt-1", int64(501), "orders.placed", `{}`, 3))
	mock.ExpectExec(`set last_error = \$2, sent_at = now\(\)`).
		WithArgs("evt-1", "max attempts reached").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectCommit()

	require.NoError(t, r.Tick(context.Background()))
	assert.Empty(t, pub.sent)
}

func TestTick_RollsBackOnStoreError(t *testing.T) {
	r, mock := newRunner(t, &fakePublisher{})

	mock.ExpectQuery(`select count\(\*\) from outbox_events`).
		WillReturnError(errors.New("db down"))
	mock.ExpectBegin()
	mock.ExpectQuery(`for update skip locked`).
		WithArgs(50).
		WillReturnError(errors.New("db down"))
	mock.ExpectRollback()

	require.Error(t, r.Tick(context.Background()))
}

func TestBackoff(t *testing.T) {
	assert.Equal(t, 2*time.Second, Backoff(1, time.Minute))
	assert.Equal(t, 8*time.Second, Backoff(3, time.Minute))
	assert.Equal(t, time.Minute, Backoff(10, time.Minute))
	assert.Equal(t, time.Second, Backoff(0, time.Minute))
}
