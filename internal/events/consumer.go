package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"

	"github.com/tanguyors/bali-pass-home/internal/helpers"
)

const (
	maxBackoff   = 30 * time.Second
	requeueDelay = time.Second
)

// ErrMalformedEvent marks payloads that can never be processed.
var ErrMalformedEvent = errors.New("malformed redemption event")

// RedemptionHandler processes one decoded event. Handlers must tolerate
// redelivery: an error requeues the message.
type RedemptionHandler func(ctx context.Context, ev RedemptionRecorded) error

type Consumer struct {
	url      string
	prefetch int
	handle   RedemptionHandler
	log      zerolog.Logger
}

func NewConsumer(url string, handle RedemptionHandler) *Consumer {
	return &Consumer{url: url, prefetch: 50, handle: handle, log: helpers.NewLogger("worker")}
}

// Run consumes until ctx is done, redialing with exponential backoff.
func (c *Consumer) Run(ctx context.Context) error {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(c.url)
		if err != nil {
			c.log.Warn().Err(err).Dur("retry_in", backoff).Str("event", "broker_dial_failed").Msg("Failed to dial broker")
			if !sleep(ctx, backoff) {
				return ctx.Err()
			}
			backoff = nextBackoff(backoff)
			continue
		}
		backoff = time.Second

		err = c.consume(ctx, conn)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.log.Warn().Err(err).Str("event", "consume_loop_ended").Msg("Consume loop ended, reconnecting")
		if !sleep(ctx, 2*time.Second) {
			return ctx.Err()
		}
	}
}

func (c *Consumer) consume(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(c.prefetch, 0, false); err != nil {
		c.log.Warn().Err(err).Msg("Set QoS failed")
	}
	if _, err := ch.QueueDeclare(QueueRedemptionRecorded, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	msgs, err := ch.Consume(QueueRedemptionRecorded, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	c.log.Info().Str("event", "consumer_started").Str("queue", QueueRedemptionRecorded).Msg("Consuming")
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			c.settle(ctx, d, c.Handle(ctx, d.Body))
		}
	}
}

// settle acks handled messages, drops malformed ones and requeues the rest
// after a short pause.
func (c *Consumer) settle(ctx context.Context, d amqp.Delivery, err error) {
	switch {
	case err == nil:
		_ = d.Ack(false)
	case errors.Is(err, ErrMalformedEvent):
		c.log.Error().Err(err).Str("event", "redemption_rejected").Msg("Dropping malformed message")
		_ = d.Nack(false, false)
	default:
		c.log.Warn().Err(err).Str("event", "redemption_requeued").Str("message_id", d.MessageId).Msg("Handle message failed, requeueing")
		sleep(ctx, requeueDelay)
		_ = d.Nack(false, true)
	}
}

// Handle decodes body and passes it to the handler.
func (c *Consumer) Handle(ctx context.Context, body []byte) error {
	var ev RedemptionRecorded
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}
	if ev.RedemptionID == "" || ev.PartnerID == "" {
		return fmt.Errorf("%w: missing redemption or partner id", ErrMalformedEvent)
	}
	return c.handle(ctx, ev)
}

func nextBackoff(d time.Duration) time.Duration {
	d *= 2
	if d > maxBackoff {
		return maxBackoff
	}
	return d
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
