package telemetry

import (
	"context"
	"fmt"

	"ctchen222/Hotseat-Tic-Tac-Toe/internal/match"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "ctchen222/Hotseat-Tic-Tac-Toe/match"

// MatchMetrics counts applied moves and finished rounds.
type MatchMetrics struct {
	moves  metric.Int64Counter
	rounds metric.Int64Counter
}

// NewMatchMetrics registers the instruments on mp, or on the global provider when mp is nil.
func NewMatchMetrics(mp metric.MeterProvider) (*MatchMetrics, error) {
	if mp == nil {
		mp = otel.GetMeterProvider()
	}
	meter := mp.Meter(meterName)

	moves, err := meter.Int64Counter("tictactoe.moves",
		metric.WithDescription("Moves placed on the board"),
		metric.WithUnit("{move}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create moves counter: %w", err)
	}

	rounds, err := meter.Int64Counter("tictactoe.rounds",
		metric.WithDescription("Rounds finished, by outcome"),
		metric.WithUnit("{round}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create rounds counter: %w", err)
	}

	return &MatchMetrics{moves: moves, rounds: rounds}, nil
}

// Listener returns a match.Listener recording every result against ctx.
func (m *MatchMetrics) Listener(ctx context.Context) match.Listener {
	return match.ListenerFunc(func(res match.Result) {
		m.moves.Add(ctx, 1, metric.WithAttributes(attribute.String("mark", string(res.Mark))))
		if res.Terminal() {
			m.rounds.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", string(res.Outcome))))
		}
	})
}
