package jobs

import (
	"context"
	"time"

	"github.com/tanguyors/bali-pass-home/internal/helpers"
)

var expiryLogger = helpers.NewLogger("pass_expiry")

// Expirer flips lapsed passes to expired and reports how many changed.
type Expirer interface {
	ExpireDue(ctx context.Context) (int64, error)
}

type PassExpiryJob struct {
	expirer  Expirer
	interval time.Duration
	timeout  time.Duration
	stopChan chan struct{}
	doneChan chan struct{}
}

func NewPassExpiryJob(expirer Expirer, interval time.Duration) *PassExpiryJob {
	return &PassExpiryJob{
		expirer:  expirer,
		interval: interval,
		timeout:  time.Minute,
		stopChan: make(chan struct{}),
		doneChan: make(chan struct{}),
	}
}

func (j *PassExpiryJob) Start() {
	go j.run()
}

// Stop signals the job and waits for the current run to finish.
func (j *PassExpiryJob) Stop() {
	close(j.stopChan)
	<-j.doneChan
}

func (j *PassExpiryJob) run() {
	defer close(j.doneChan)

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	j.expire()

	for {
		select {
		case <-ticker.C:
			j.expire()
		case <-j.stopChan:
			expiryLogger.Info().Msg("Pass expiry job stopped")
			return
		}
	}
}

func (j *PassExpiryJob) expire() int64 {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	startTime := time.Now()
	expiryLogger.Info().
		Str("event", "pass_expiry_started").
		Msg("Expiring lapsed passes")

	n, err := j.expirer.ExpireDue(ctx)
	if err != nil {
		expiryLogger.Error().
			Str("event", "pass_expiry_error").
			Err(err).
			Msg("Failed to expire passes")
		return 0
	}

	expiryLogger.Info().
		Str("event", "pass_expiry_completed").
		Int64("passes_expired", n).
		Dur("duration_ms", time.Since(startTime)).
		Msg("Pass expiry completed")
	return n
}
