package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/ruralpay/ledger/internal/models"
)

const DefaultPlanEventsQueue = "ledger:plan_events"

// PlanEvent is published after a plan operation's transaction has committed.
type PlanEvent struct {
	PlanID     string                  `json:"planId"`
	Operation  models.PostingOperation `json:"operation"`
	BatchIDs   []int64                 `json:"batchIds"`
	Clock      int64                   `json:"clock"`
	OccurredAt time.Time               `json:"occurredAt"`
}

type PlanEventPublisher interface {
	Publish(ctx context.Context, event PlanEvent) error
}

// RedisPlanEventPublisher appends events to a Redis list consumers can BLPOP from.
type RedisPlanEventPublisher struct {
	redis *redis.Client
	queue string
}

// NewPlanEventPublisher falls back to a no-op publisher when Redis is not available.
func NewPlanEventPublisher(client *redis.Client, queue string) PlanEventPublisher {
	if client == nil {
		return nopPlanEventPublisher{}
	}
	if queue == "" {
		queue = DefaultPlanEventsQueue
	}
	return &RedisPlanEventPublisher{redis: client, queue: queue}
}

func (p *RedisPlanEventPublisher) Publish(ctx context.Context, event PlanEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return p.redis.RPush(ctx, p.queue, data).Err()
}

type nopPlanEventPublisher struct{}

func (nopPlanEventPublisher) Publish(context.Context, PlanEvent) error { return nil }
