package kafka_test

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-mes/internal/messaging/kafka"
)

func TestOutboxRepositoryListPending(t *testing.T) {
	t.Run("carries the request id through to the drained event", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		t.Cleanup(func() { db.Close() })

		nextRetry := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
		rows := sqlmock.NewRows([]string{
			"id", "request_id", "aggregate_type", "aggregate_id",
			"event_type", "topic", "payload", "status", "retry_count", "next_retry_at",
		}).AddRow(
			"6f1c2a9e-0000-0000-0000-000000000001", "req-42", "hierarchy_node", "plant-1",
			"hierarchy_node.created", "mes.hierarchy.lifecycle.v1",
			[]byte(`{"level":"PLANT"}`), kafka.OutboxStatusPending, 0, nextRetry,
		)
		mock.ExpectQuery(`SELECT[\s\S]+request_id[\s\S]+FROM outbox_events`).
			WithArgs(kafka.OutboxStatusPending, kafka.OutboxStatusFailed, 50).
			WillReturnRows(rows)

		repo := kafka.NewOutboxRepository(db)
		events, err := repo.ListPending(context.Background(), 50)
		require.NoError(t, err)
		require.Len(t, events, 1)

		assert.Equal(t, "req-42", events[0].RequestID)
		assert.Equal(t, "hierarchy_node.created", events[0].EventType)
		assert.Equal(t, "mes.hierarchy.lifecycle.v1", events[0].Topic)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns events in row order", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		t.Cleanup(func() { db.Close() })

		nextRetry := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
		rows := sqlmock.NewRows([]string{
			"id", "request_id", "aggregate_type", "aggregate_id",
			"event_type", "topic", "payload", "status", "retry_count", "next_retry_at",
		}).AddRow(
			"6f1c2a9e-0000-0000-0000-000000000001", "", "user", "user-1",
			"user.created", "mes.personnel.lifecycle.v1",
			[]byte(`{}`), kafka.OutboxStatusPending, 0, nextRetry,
		).AddRow(
			"6f1c2a9e-0000-0000-0000-000000000002", "req-7", "user", "user-2",
			"user.created", "mes.personnel.lifecycle.v1",
			[]byte(`{}`), kafka.OutboxStatusFailed, 2, nextRetry,
		)
		mock.ExpectQuery(`FROM outbox_events`).
			WithArgs(kafka.OutboxStatusPending, kafka.OutboxStatusFailed, 50).
			WillReturnRows(rows)

		repo := kafka.NewOutboxRepository(db)
		events, err := repo.ListPending(context.Background(), 50)
		require.NoError(t, err)
		require.Len(t, events, 2)

		assert.Equal(t, "6f1c2a9e-0000-0000-0000-000000000001", events[0].ID)
		assert.Equal(t, "req-7", events[1].RequestID)
		assert.Equal(t, 2, events[1].RetryCount)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestOutboxRepositoryCreate(t *testing.T) {
	t.Run("persists the request id alongside the payload", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		t.Cleanup(func() { db.Close() })

		event := kafka.OutboxEvent{
			ID:            "6f1c2a9e-0000-0000-0000-000000000003",
			RequestID:     "req-99",
			AggregateType: "hierarchy_node",
			AggregateID:   "zone-1",
			EventType:     "hierarchy_node.renamed",
			Topic:         "mes.hierarchy.lifecycle.v1",
			Payload:       []byte(`{"level":"ZONE"}`),
			Status:        kafka.OutboxStatusPending,
		}

		mock.ExpectExec(`INSERT INTO outbox_events`).
			WithArgs(
				event.ID, event.RequestID, event.AggregateType,
				event.AggregateID, event.EventType, event.Topic, event.Payload, event.Status,
			).
			WillReturnResult(sqlmock.NewResult(0, 1))

		repo := kafka.NewOutboxRepository(db)
		require.NoError(t, repo.Create(context.Background(), event))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
