package hub

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"ctchen222/Hotseat-Tic-Tac-Toe/internal/events"
	"ctchen222/Hotseat-Tic-Tac-Toe/internal/room"

	"github.com/go-redis/redis/v8"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// subscribe waits for Redis to confirm the subscription so that events
// published right after a client joins are not lost.
func (h *Hub) subscribe(ctx context.Context, sessionID string) (*redis.PubSub, error) {
	channel := events.SessionChannel(sessionID)
	pubsub := h.rdb.Subscribe(ctx, channel)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("failed to subscribe to %s: %w", channel, err)
	}
	return pubsub, nil
}

func (h *Hub) runRoomUpdateSubscriber(ctx context.Context, r *room.Room, pubsub *redis.PubSub) {
	defer pubsub.Close()

	slog.InfoContext(ctx, "Starting subscriber for session", "session.id", r.ID)
	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			slog.Info("Stopping subscriber for session", "session.id", r.ID)
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			h.handleRoomUpdate(ctx, r, msg)
		}
	}
}

func (h *Hub) handleRoomUpdate(ctx context.Context, r *room.Room, msg *redis.Message) {
	ctx, span := tracer.Start(ctx, "hub.handleRoomUpdate", trace.WithAttributes(
		attribute.String("session.id", r.ID),
		attribute.String("redis.channel", msg.Channel),
	))
	defer span.End()

	var ev events.Event
	if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
		slog.ErrorContext(ctx, "Could not decode event", "session.id", r.ID, "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Could not decode event")
		return
	}
	r.Broadcast(ctx, ev)
}
