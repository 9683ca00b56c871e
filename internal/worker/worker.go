package worker

import (
	"context"
	"encoding/json"

	"github.com/segmentio/kafka-go"

	"todo-engine/internal/config"
	"todo-engine/internal/metrics"
	"todo-engine/internal/models"
	"todo-engine/internal/queue"
	"todo-engine/pkg/logger"
)

// GroupID is the consumer group shared by journal workers.
const GroupID = "todo-journal"

// Journal stores consumed events.
type Journal interface {
	Append(ctx context.Context, ev models.TodoEvent) error
}

// Invalidator drops cached collection snapshots.
type Invalidator interface {
	Invalidate(ctx context.Context)
}

// Worker consumes todo events, journals them and invalidates the snapshot cache.
type Worker struct {
	Journal Journal
	Cache   Invalidator
}

// Run starts the Kafka consumer. One consumer per process; scale by running more replicas.
func (w *Worker) Run(ctx context.Context) {
	cfg := config.Get()
	if len(cfg.KafkaBrokers) == 0 {
		logger.Info(ctx, "Worker disabled (no Kafka brokers)")
		return
	}
	topic := queue.Topic()
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  queue.Brokers(),
		Topic:    topic,
		GroupID:  GroupID,
		MinBytes: 1,
		MaxBytes: 10e6,
	})
	defer reader.Close()

	logger.Info(ctx, "Kafka consumer started", "topic", topic, "group", GroupID)
	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			logger.Error(ctx, "Worker fetch failed", "error", err)
			continue
		}
		if err := w.handleMessage(ctx, msg.Value); err != nil {
			logger.Error(ctx, "Worker handle failed", "error", err, "payload", string(msg.Value))
			// Commit anyway to avoid poison pill blocking the partition
			_ = reader.CommitMessages(ctx, msg)
			continue
		}
		if err := reader.CommitMessages(ctx, msg); err != nil {
			logger.Error(ctx, "Worker commit failed", "error", err)
		}
	}
}

func (w *Worker) handleMessage(ctx context.Context, payload []byte) (err error) {
	defer func() {
		metrics.EventsConsumedTotal.WithLabelValues(metrics.OutcomeOf(err)).Inc()
	}()
	var ev models.TodoEvent
	if err = json.Unmarshal(payload, &ev); err != nil {
		return err
	}
	switch ev.Action {
	case models.ActionCreated, models.ActionUpdated, models.ActionDeleted:
	default:
		logger.Debug(ctx, "Worker skipping unknown action", "action", ev.Action)
		return nil
	}
	if w.Journal != nil {
		if err = w.Journal.Append(ctx, ev); err != nil {
			return err
		}
	}
	if w.Cache != nil {
		w.Cache.Invalidate(ctx)
	}
	return nil
}
