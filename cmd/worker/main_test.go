package main

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"github.com/tanguyors/bali-pass-home/internal/events"
	"github.com/tanguyors/bali-pass-home/internal/storage/redis"
)

func TestCountRedemption(t *testing.T) {
	mr := miniredis.RunT(t)
	client, err := redis.NewClient("redis://" + mr.Addr())
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	defer client.Close()

	stats := redis.NewPartnerStats(client)
	handle := countRedemption(stats)
	ev := events.RedemptionRecorded{
		RedemptionID: "red-1",
		PartnerID:    "partner-1",
		OfferID:      "offer-1",
		RedeemedAt:   time.Now(),
	}

	second := ev
	second.RedemptionID = "red-2"

	// red-1 is delivered twice
	for _, e := range []events.RedemptionRecorded{ev, ev, second} {
		if err := handle(context.Background(), e); err != nil {
			t.Fatalf("handle: %v", err)
		}
	}

	n, err := stats.RedemptionCount(context.Background(), "partner-1")
	if err != nil {
		t.Fatalf("RedemptionCount: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 redemptions, got %d", n)
	}
}

func TestCountRedemption_RedisErrorIsReturned(t *testing.T) {
	mr := miniredis.RunT(t)
	client, err := redis.NewClient("redis://" + mr.Addr())
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	defer client.Close()

	handle := countRedemption(redis.NewPartnerStats(client))
	mr.Close()

	err = handle(context.Background(), events.RedemptionRecorded{RedemptionID: "red-1", PartnerID: "partner-1"})
	if err == nil {
		t.Fatal("expected error so the event is requeued")
	}
	if errors.Is(err, events.ErrMalformedEvent) {
		t.Fatalf("transient failure must not look malformed: %v", err)
	}
}
