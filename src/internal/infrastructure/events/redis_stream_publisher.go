package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/jackyeh168/saveforperks/src/internal/domain/shared"
)

// 串流訊息欄位
const (
	FieldEventID     = "event_id"
	FieldEventType   = "event_type"
	FieldAggregateID = "aggregate_id"
	FieldOccurredAt  = "occurred_at"
	FieldPayload     = "payload"
)

// RedisStreamPublisher 以 XADD 將領域事件寫入 Redis stream
type RedisStreamPublisher struct {
	client goredis.UniversalClient
	stream string
	maxLen int64
}

// NewRedisStreamPublisher 建立 publisher
// maxLen > 0 時以近似 MAXLEN 修剪串流
func NewRedisStreamPublisher(client goredis.UniversalClient, stream string, maxLen int64) *RedisStreamPublisher {
	return &RedisStreamPublisher{client: client, stream: stream, maxLen: maxLen}
}

var _ shared.EventPublisher = (*RedisStreamPublisher)(nil)

// Publish 發布單一事件
func (p *RedisStreamPublisher) Publish(ctx context.Context, event shared.DomainEvent) error {
	args, err := p.args(event)
	if err != nil {
		return err
	}
	if err := p.client.XAdd(ctx, args).Err(); err != nil {
		return fmt.Errorf("failed to publish %s to stream %s: %w", event.EventType(), p.stream, err)
	}
	return nil
}

// PublishBatch 以 pipeline 依序發布
func (p *RedisStreamPublisher) PublishBatch(ctx context.Context, events []shared.DomainEvent) error {
	if len(events) == 0 {
		return nil
	}

	batch := make([]*goredis.XAddArgs, 0, len(events))
	for _, event := range events {
		args, err := p.args(event)
		if err != nil {
			return err
		}
		batch = append(batch, args)
	}

	_, err := p.client.Pipelined(ctx, func(pipe goredis.Pipeliner) error {
		for _, args := range batch {
			pipe.XAdd(ctx, args)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to publish %d events to stream %s: %w", len(events), p.stream, err)
	}
	return nil
}

func (p *RedisStreamPublisher) args(event shared.DomainEvent) (*goredis.XAddArgs, error) {
	payload, err := json.Marshal(event.Payload())
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s payload: %w", event.EventType(), err)
	}

	args := &goredis.XAddArgs{
		Stream: p.stream,
		ID:     "*",
		Values: map[string]interface{}{
			FieldEventID:     event.EventID(),
			FieldEventType:   event.EventType(),
			FieldAggregateID: event.AggregateID(),
			FieldOccurredAt:  event.OccurredAt().UTC().Format(time.RFC3339Nano),
			FieldPayload:     string(payload),
		},
	}
	if p.maxLen > 0 {
		args.MaxLen = p.maxLen
		args.Approx = true
	}
	return args, nil
}
