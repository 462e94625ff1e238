package service

import (
	"context"
	"merchant-api/logger"
	"time"
)

const defaultPurgeInterval = time.Hour

// TokenPurger removes expired and invalidated tokens from the store.
type TokenPurger interface {
	PurgeExpired(ctx context.Context) (int64, error)
}

// TokenSweeper periodically purges dead verification tokens.
type TokenSweeper struct {
	purger   TokenPurger
	interval time.Duration
}

func NewTokenSweeper(purger TokenPurger, interval time.Duration) *TokenSweeper {
	if interval <= 0 {
		interval = defaultPurgeInterval
	}
	return &TokenSweeper{purger: purger, interval: interval}
}

// Run purges once right away and then on every tick until ctx is cancelled.
func (s *TokenSweeper) Run(ctx context.Context) {
	logger.Log.WithField("interval", s.interval.String()).Info("Token sweeper started")
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.sweep(ctx)
	for {
		select {
		case <-ctx.Done():
			logger.Log.Info("Token sweeper stopped")
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *TokenSweeper) sweep(ctx context.Context) {
	n, err := s.purger.PurgeExpired(ctx)
	if err != nil {
		if ctx.Err() == nil {
			logger.Log.WithError(err).Error("Failed to purge expired verification tokens")
		}
		return
	}
	if n > 0 {
		logger.Log.WithField("count", n).Info("Purged expired verification tokens")
	}
}
