package events

import (
	"context"

	"github.com/jackyeh168/saveforperks/src/internal/domain/shared"
	"github.com/jackyeh168/saveforperks/src/pkg/logger"
)

// LogPublisher 未設定 Redis 時使用：把事件寫進應用程式日誌
type LogPublisher struct {
	log logger.Logger
}

// NewLogPublisher 建立 publisher；log 為 nil 時使用全域 logger
func NewLogPublisher(log logger.Logger) *LogPublisher {
	if log == nil {
		log = logger.Get()
	}
	return &LogPublisher{log: log.With("component", "events")}
}

var _ shared.EventPublisher = (*LogPublisher)(nil)

func (p *LogPublisher) Publish(_ context.Context, event shared.DomainEvent) error {
	p.log.Info("domain event",
		FieldEventID, event.EventID(),
		FieldEventType, event.EventType(),
		FieldAggregateID, event.AggregateID(),
		FieldOccurredAt, event.OccurredAt(),
		FieldPayload, event.Payload(),
	)
	return nil
}

func (p *LogPublisher) PublishBatch(ctx context.Context, events []shared.DomainEvent) error {
	for _, event := range events {
		if err := p.Publish(ctx, event); err != nil {
			return err
		}
	}
	return nil
}
