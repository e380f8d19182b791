package export

import (
	"context"
	"fmt"
	"log/slog"

	"regdesk/pkg/platform/circuit"
	"regdesk/pkg/platform/sentinel"
)

// Syncer writes export rows to an external destination.
type Syncer interface {
	Sync(ctx context.Context, rows []FlatRow) error
}

// GuardedMirror stops calling a failing destination until its breaker
// cools down. Rejected calls return an error wrapping sentinel.ErrUnavailable.
type GuardedMirror struct {
	next    Syncer
	breaker *circuit.Breaker
	logger  *slog.Logger
}

func NewGuardedMirror(next Syncer, breaker *circuit.Breaker, logger *slog.Logger) *GuardedMirror {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &GuardedMirror{next: next, breaker: breaker, logger: logger}
}

func (g *GuardedMirror) Sync(ctx context.Context, rows []FlatRow) error {
	if !g.breaker.Allow() {
		return fmt.Errorf("%s circuit open: %w", g.breaker.Name(), sentinel.ErrUnavailable)
	}

	if err := g.next.Sync(ctx, rows); err != nil {
		if change := g.breaker.RecordFailure(); change.Opened {
			g.logger.WarnContext(ctx, "circuit opened", "circuit", g.breaker.Name(), "error", err)
		}
		return err
	}

	if change := g.breaker.RecordSuccess(); change.Closed {
		g.logger.InfoContext(ctx, "circuit closed", "circuit", g.breaker.Name())
	}
	return nil
}
