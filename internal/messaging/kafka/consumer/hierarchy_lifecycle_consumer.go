package consumer

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"go-mes/internal/ancestry"
	"go-mes/internal/events"
	"go-mes/internal/hierarchy"
)

// ConsumeHierarchyLifecycle drops cached reference data whenever the
// hierarchy changes shape. Events are idempotent deletes, so replays
// and duplicates are harmless.
func ConsumeHierarchyLifecycle(
	ctx context.Context,
	reader *kafkago.Reader,
	rdb *redis.Client,
	logger *zap.Logger,
) {
	log := logger.Named("kafka.consumer.hierarchy_lifecycle")
	log.Info("hierarchy lifecycle consumer started")

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Info("hierarchy lifecycle consumer stopped")
				return
			}
			log.Error("fetch hierarchy lifecycle message failed", zap.Error(err))
			continue
		}

		var event events.HierarchyNodeEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			log.Error("decode hierarchy lifecycle event failed", zap.Error(err))
			_ = reader.CommitMessages(ctx, msg)
			continue
		}

		if event.Level == string(ancestry.LevelPlant) {
			if err := rdb.Del(ctx, hierarchy.PlantOptionsKey).Err(); err != nil {
				log.Error("invalidate plant options cache failed",
					zap.String("node_id", event.NodeID),
					zap.Error(err),
				)
				continue
			}
		}

		if err := reader.CommitMessages(ctx, msg); err != nil {
			log.Error("commit hierarchy lifecycle message failed", zap.Error(err))
			continue
		}

		log.Info("hierarchy lifecycle event applied",
			zap.String("event_type", event.EventType),
			zap.String("level", event.Level),
			zap.String("node_id", event.NodeID),
		)
	}
}
