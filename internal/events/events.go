// Package events carries domain events from the API to the worker over RabbitMQ.
package events

import (
	"context"
	"time"
)

// QueueRedemptionRecorded is a durable queue; routing key equals queue name.
const QueueRedemptionRecorded = "redemption.recorded"

type RedemptionRecorded struct {
	RedemptionID string    `json:"redemption_id"`
	UserID       string    `json:"user_id"`
	PassID       string    `json:"pass_id"`
	OfferID      string    `json:"offer_id"`
	PartnerID    string    `json:"partner_id"`
	RedeemedAt   time.Time `json:"redeemed_at"`
}

type Publisher interface {
	PublishRedemption(ctx context.Context, ev RedemptionRecorded) error
}

// Nop discards events. It stands in when no broker is configured.
type Nop struct{}

func (Nop) PublishRedemption(ctx context.Context, ev RedemptionRecorded) error { return nil }
