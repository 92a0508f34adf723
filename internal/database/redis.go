package database

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/bhakthiseva/darshan-backend/internal/config"
	"github.com/bhakthiseva/darshan-backend/internal/models"
)

// NewRedisClient creates and verifies a Redis connection
func NewRedisClient(cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return client, nil
}

// BookingChannel is the per-booking pub/sub channel name
func BookingChannel(bookingID string) string {
	return "booking:events:" + bookingID
}

// BookingEventBus publishes booking status changes and lets the ticket view
// subscribe to a single booking's updates without polling.
type BookingEventBus struct {
	client *redis.Client
}

// NewBookingEventBus creates a new booking event bus
func NewBookingEventBus(client *redis.Client) *BookingEventBus {
	return &BookingEventBus{client: client}
}

// Publish sends a booking status change on the booking's channel
func (b *BookingEventBus) Publish(ctx context.Context, event models.BookingEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal booking event: %w", err)
	}

	if err := b.client.Publish(ctx, BookingChannel(event.BookingID), payload).Err(); err != nil {
		return fmt.Errorf("failed to publish booking event: %w", err)
	}

	return nil
}

// Subscribe registers interest in one booking's events. The returned channel
// closes when ctx is done; callers tear down by cancelling the context.
func (b *BookingEventBus) Subscribe(ctx context.Context, bookingID string) (<-chan models.BookingEvent, error) {
	sub := b.client.Subscribe(ctx, BookingChannel(bookingID))

	// Confirm the subscription is live before handing the channel out
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, fmt.Errorf("failed to subscribe to booking events: %w", err)
	}

	events := make(chan models.BookingEvent)
	go func() {
		defer close(events)
		defer sub.Close()

		msgs := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				var event models.BookingEvent
				if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
					continue
				}
				select {
				case events <- event:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return events, nil
}

// RedemptionGuard ensures a promo code's usage counter is incremented at most
// once per completed checkout, no matter how many times the client retries.
type RedemptionGuard struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedemptionGuard creates a new redemption guard
func NewRedemptionGuard(client *redis.Client) *RedemptionGuard {
	return &RedemptionGuard{client: client, ttl: 24 * time.Hour}
}

// Acquire returns true exactly once per order ID. The key expires after the
// TTL; by then the conditional SQL update is the remaining backstop.
func (g *RedemptionGuard) Acquire(ctx context.Context, orderID string) (bool, error) {
	ok, err := g.client.SetNX(ctx, "promo:redeemed:"+orderID, 1, g.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to acquire redemption guard: %w", err)
	}
	return ok, nil
}
