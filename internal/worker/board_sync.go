package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Refresher republishes the current bed board.
type Refresher interface {
	Refresh(ctx context.Context)
}

// BoardSyncWorker periodically pushes a full bed list to viewers, so a
// client that missed an event converges and the occupancy gauges track
// changes made directly in the database.
type BoardSyncWorker struct {
	refresher Refresher
	interval  time.Duration
	logger    zerolog.Logger
}

func NewBoardSyncWorker(refresher Refresher, interval time.Duration, logger zerolog.Logger) *BoardSyncWorker {
	return &BoardSyncWorker{
		refresher: refresher,
		interval:  interval,
		logger:    logger.With().Str("worker", "board_sync").Logger(),
	}
}

// Start blocks until ctx is cancelled. A non-positive interval returns
// immediately.
func (w *BoardSyncWorker) Start(ctx context.Context) {
	if w.interval <= 0 {
		w.logger.Info().Msg("board sync disabled")
		return
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.logger.Info().Dur("interval", w.interval).Msg("board sync started")
	for {
		select {
		case <-ctx.Done():
			w.logger.Info().Msg("board sync stopped")
			return
		case <-ticker.C:
			w.refresher.Refresh(ctx)
		}
	}
}
