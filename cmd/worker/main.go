// Command worker consumes redemption events and maintains partner counters.
package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/tanguyors/bali-pass-home/internal/config"
	"github.com/tanguyors/bali-pass-home/internal/events"
	"github.com/tanguyors/bali-pass-home/internal/helpers"
	"github.com/tanguyors/bali-pass-home/internal/storage/redis"
)

var logger = helpers.NewLogger("worker")

type counter interface {
	RecordRedemption(ctx context.Context, partnerID, redemptionID string) (int64, bool, error)
}

func countRedemption(stats counter) events.RedemptionHandler {
	return func(ctx context.Context, ev events.RedemptionRecorded) error {
		n, counted, err := stats.RecordRedemption(ctx, ev.PartnerID, ev.RedemptionID)
		if err != nil {
			return err
		}
		if !counted {
			logger.Info().
				Str("event", "redemption_duplicate").
				Str("redemption_id", ev.RedemptionID).
				Str("partner_id", ev.PartnerID).
				Msg("Redemption already counted")
			return nil
		}
		logger.Info().
			Str("event", "redemption_counted").
			Str("redemption_id", ev.RedemptionID).
			Str("partner_id", ev.PartnerID).
			Str("offer_id", ev.OfferID).
			Int64("partner_redemptions", n).
			Msg("Redemption counted")
		return nil
	}
}

func main() {
	cfg := config.LoadConfig()
	helpers.ConfigureLogging(cfg.LogLevel)

	redisClient, err := redis.NewClient(cfg.RedisURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Error().Err(err).Msg("Error closing Redis client")
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	consumer := events.NewConsumer(cfg.AMQPURL, countRedemption(redis.NewPartnerStats(redisClient)))
	logger.Info().Str("queue", events.QueueRedemptionRecorded).Msg("Worker starting")
	if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error().Err(err).Msg("Worker stopped")
		return
	}
	logger.Info().Msg("Worker stopped")
}
