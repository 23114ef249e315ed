package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/mrmbilling/royalty-ledger/internal/domain"
	"github.com/rs/zerolog"
)

// DigestWorker mails the outstanding digest once a day at a fixed local time
type DigestWorker struct {
	digests *DigestService
	logger  zerolog.Logger
	hour    int
	minute  int
	now     func() time.Time
	stopCh  chan struct{}
	doneCh  chan struct{}
	mu      sync.Mutex
	running bool
}

// DigestWorkerConfig holds configuration for the digest worker
type DigestWorkerConfig struct {
	Hour   int
	Minute int
}

// DefaultDigestWorkerConfig sends at 09:00
func DefaultDigestWorkerConfig() DigestWorkerConfig {
	return DigestWorkerConfig{Hour: 9, Minute: 0}
}

// NewDigestWorker creates a new digest worker
func NewDigestWorker(digests *DigestService, logger zerolog.Logger, config DigestWorkerConfig) *DigestWorker {
	if config.Hour < 0 || config.Hour > 23 || config.Minute < 0 || config.Minute > 59 {
		config = DefaultDigestWorkerConfig()
	}

	return &DigestWorker{
		digests: digests,
		logger:  logger.With().Str("component", "digest_worker").Logger(),
		hour:    config.Hour,
		minute:  config.Minute,
		now:     time.Now,
	}
}

// Start begins the daily schedule. A stopped worker can be started again.
func (w *DigestWorker) Start(ctx context.Context) {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return
	}
	w.running = true
	w.stopCh = make(chan struct{})
	w.doneCh = make(chan struct{})
	stopCh, doneCh := w.stopCh, w.doneCh
	w.mu.Unlock()

	w.logger.Info().
		Int("hour", w.hour).
		Int("minute", w.minute).
		Time("next_run", w.nextRun(w.now())).
		Msg("Starting digest worker")

	go w.run(ctx, stopCh, doneCh)
}

// Stop gracefully stops the digest worker. Concurrent callers all wait for the run loop to exit.
func (w *DigestWorker) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	stopCh, doneCh := w.stopCh, w.doneCh
	w.stopCh = nil
	w.mu.Unlock()

	if stopCh == nil {
		<-doneCh
		return
	}

	w.logger.Info().Msg("Stopping digest worker")
	close(stopCh)
	<-doneCh
	w.logger.Info().Msg("Digest worker stopped")
}

func (w *DigestWorker) run(ctx context.Context, stopCh <-chan struct{}, doneCh chan struct{}) {
	defer close(doneCh)
	defer func() {
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
	}()

	for {
		now := w.now()
		timer := time.NewTimer(w.nextRun(now).Sub(now))

		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-stopCh:
			timer.Stop()
			return
		case <-timer.C:
			w.RunOnce(ctx)
		}
	}
}

// nextRun returns the first scheduled time strictly after now
func (w *DigestWorker) nextRun(now time.Time) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), w.hour, w.minute, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// RunOnce sends the digest for the configured financial year.
// An empty ledger is logged and skipped.
func (w *DigestWorker) RunOnce(ctx context.Context) {
	start := w.now()
	rendered, err := w.digests.Send(ctx, nil)
	switch {
	case errors.Is(err, domain.ErrNoDigestEntries):
		w.logger.Info().Msg("No entries for digest, skipping")
	case err != nil:
		w.logger.Error().Err(err).Msg("Failed to send outstanding digest")
	default:
		w.logger.Info().
			Int("clients", len(rendered.Digest.Lines)).
			Dur("elapsed", w.now().Sub(start)).
			Msg("Completed digest run")
	}
}

// IsRunning returns whether the worker is currently running
func (w *DigestWorker) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}
