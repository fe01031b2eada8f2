// Package feed produces telemetry snapshots for the engine: a synthetic
// generator for demos and benchmarks, a replay of recorded frames, and the
// pump that moves them into a latest-value Slot.
package feed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"

	"github.com/san-kum/quantviz/internal/telemetry"
)

var ErrNoFrames = errors.New("feed: replay has no frames")

// Source yields snapshots one at a time. io.EOF ends the stream.
type Source interface {
	Next() (*telemetry.Snapshot, error)
}

// Pump stores one snapshot from src into slot immediately and then every
// interval until ctx is done or the source ends.
func Pump(ctx context.Context, src Source, slot *Slot, interval time.Duration, log zerolog.Logger) error {
	if interval <= 0 {
		return fmt.Errorf("feed: interval must be positive, got %s", interval)
	}
	log = log.With().Str("component", "feed").Logger()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	sent := 0
	for {
		snap, err := src.Next()
		if errors.Is(err, io.EOF) {
			log.Info().Int("snapshots", sent).Msg("feed exhausted")
			return nil
		}
		if err != nil {
			return fmt.Errorf("feed: next snapshot: %w", err)
		}
		slot.Store(snap)
		sent++

		select {
		case <-ctx.Done():
			log.Debug().Int("snapshots", sent).Uint64("drops", slot.Drops()).Msg("feed stopped")
			return nil
		case <-ticker.C:
		}
	}
}
