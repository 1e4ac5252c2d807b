package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

const (
	ChannelPrefix = "farmagro:events:"
	ChannelAll    = "farmagro:events:all"

	TableProducts        = "products"
	TableFarmers         = "farmers"
	TableBills           = "bills"
	TablePayments        = "payments"
	TableAccounts        = "customer_accounts"
	TableInterestCharges = "interest_charges"

	ActionInsert = "insert"
	ActionUpdate = "update"
	ActionDelete = "delete"
)

// ChangeEvent tells subscribers that something changed on a table. There is
// deliberately no row payload: listeners re-fetch whatever view they hold.
type ChangeEvent struct {
	Table     string    `json:"table"`
	Action    string    `json:"action"`
	RecordID  int64     `json:"record_id"`
	Timestamp time.Time `json:"timestamp"`
}

type Publisher struct {
	redis *redis.Client
}

func NewPublisher(redisClient *redis.Client) *Publisher {
	return &Publisher{redis: redisClient}
}

// Publish sends the event to the per-table channel and the firehose channel.
// A nil client (tests) makes it a no-op.
func (p *Publisher) Publish(ctx context.Context, table, action string, recordID int64) error {
	if p == nil || p.redis == nil {
		return nil
	}

	event := ChangeEvent{
		Table:     table,
		Action:    action,
		RecordID:  recordID,
		Timestamp: time.Now(),
	}

	eventJSON, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	channel := ChannelPrefix + table
	if err := p.redis.Publish(ctx, channel, eventJSON).Err(); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	if err := p.redis.Publish(ctx, ChannelAll, eventJSON).Err(); err != nil {
		return fmt.Errorf("failed to publish to all channel: %w", err)
	}

	return nil
}

// Subscribe opens a pub/sub subscription on the given tables, or the
// firehose channel when none are named.
func (p *Publisher) Subscribe(ctx context.Context, tables ...string) *redis.PubSub {
	if len(tables) == 0 {
		return p.redis.Subscribe(ctx, ChannelAll)
	}
	channels := make([]string, len(tables))
	for i, t := range tables {
		channels[i] = ChannelPrefix + t
	}
	return p.redis.Subscribe(ctx, channels...)
}
