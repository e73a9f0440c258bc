// Copyright (c) 2026 Identra. All rights reserved.
// Author: p.melnikov@identra.dev

package auth

import (
	"context"
	"log/slog"
	"time"
)

// # Expiry Sweeper

// Sweeper periodically removes refresh tokens whose validity window has elapsed.
//
// Expiry is enforced at validation time regardless of this worker; the sweep
// only reclaims storage. Failures are logged and retried on the next tick.
type Sweeper struct {
	tokenRepository RefreshTokenRepository
	interval        time.Duration
	logger          *slog.Logger
}

// NewSweeper constructs a [Sweeper] over the token repository.
func NewSweeper(tokenRepo RefreshTokenRepository, interval time.Duration, logger *slog.Logger) *Sweeper {
	return &Sweeper{
		tokenRepository: tokenRepo,
		interval:        interval,
		logger:          logger,
	}
}

// Run blocks, sweeping on every tick until ctx is cancelled.
// Call it from its own goroutine.
func (sweeper *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(sweeper.interval)
	defer ticker.Stop()

	sweeper.logger.Info("token_sweeper_started",
		slog.Duration("interval", sweeper.interval))

	for {
		select {
		case <-ticker.C:
			sweeper.sweep(ctx)
		case <-ctx.Done():
			sweeper.logger.Info("token_sweeper_stopped")
			return
		}
	}
}

func (sweeper *Sweeper) sweep(ctx context.Context) {
	deleted, err := sweeper.tokenRepository.DeleteExpired(ctx)
	if err != nil {
		sweeper.logger.Error("token_sweep_failed", slog.Any("error", err))
		return
	}

	if deleted > 0 {
		sweeper.logger.Info("token_sweep_completed", slog.Int64("deleted", deleted))
	}
}
