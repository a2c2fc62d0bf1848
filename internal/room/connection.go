package room

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"ctchen222/Hotseat-Tic-Tac-Toe/internal/events"
	"ctchen222/Hotseat-Tic-Tac-Toe/internal/game"
	"ctchen222/Hotseat-Tic-Tac-Toe/internal/repository"
	"ctchen222/Hotseat-Tic-Tac-Toe/internal/validator"
	"ctchen222/Hotseat-Tic-Tac-Toe/pkg/proto"

	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Broadcast sends an event to all connected clients in the room.
func (r *Room) Broadcast(ctx context.Context, ev events.Event) {
	ctx, span := tracer.Start(ctx, "room.Broadcast", trace.WithAttributes(
		attribute.String("session.id", r.ID),
		attribute.String("event.type", ev.Type),
	))
	defer span.End()

	data, err := json.Marshal(ev)
	if err != nil {
		slog.ErrorContext(ctx, "error marshalling event", "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Error marshalling event")
		return
	}

	for _, c := range r.Clients() {
		if err := c.write(websocket.TextMessage, data); err != nil {
			slog.ErrorContext(ctx, "error writing event to client", "client.id", c.ID, "error", err)
			span.RecordError(err)
			span.SetStatus(codes.Error, "Error writing event to client")
		}
	}
}

// Send delivers an event to one client.
func (r *Room) Send(ctx context.Context, c *Client, ev events.Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		slog.ErrorContext(ctx, "error marshalling event", "error", err)
		return
	}
	if err := c.write(websocket.TextMessage, data); err != nil {
		slog.WarnContext(ctx, "error writing event to client", "client.id", c.ID, "error", err)
	}
}

// ReadPump feeds messages from the client into HandleMessage until the
// connection fails or ctx ends. The connection is closed on return.
func (r *Room) ReadPump(ctx context.Context, c *Client) {
	ctx, span := tracer.Start(ctx, "room.ReadPump", trace.WithAttributes(
		attribute.String("client.id", c.ID),
		attribute.String("session.id", r.ID),
	))
	defer span.End()

	stop := context.AfterFunc(ctx, func() { _ = c.Close() })
	defer func() {
		stop()
		_ = c.Close()
		slog.InfoContext(ctx, "Client disconnected", "client.id", c.ID, "session.id", r.ID)
	}()

	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.WarnContext(ctx, "Client connection error", "client.id", c.ID, "session.id", r.ID, "error", err)
				span.RecordError(err)
				span.SetStatus(codes.Error, "Client connection error")
			}
			return
		}
		r.HandleMessage(ctx, c, msg)
	}
}

// HandleMessage handles a message from a client. It acts as a dispatcher.
func (r *Room) HandleMessage(ctx context.Context, c *Client, rawMessage []byte) {
	ctx, span := tracer.Start(ctx, "room.HandleMessage", trace.WithAttributes(
		attribute.String("client.id", c.ID),
		attribute.String("session.id", r.ID),
	))
	defer span.End()

	var message proto.ClientToServerMessage
	if err := json.Unmarshal(rawMessage, &message); err != nil {
		slog.WarnContext(ctx, "error unmarshalling message", "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Error unmarshalling message")
		r.sendError(ctx, c, "malformed message")
		return
	}

	if err := validator.GetValidator().Struct(message); err != nil {
		slog.WarnContext(ctx, "invalid message from client", "client.id", c.ID, "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Invalid message format")
		r.sendError(ctx, c, "invalid message")
		return
	}

	span.SetAttributes(attribute.String("message.type", message.Type))

	switch message.Type {
	case proto.TypeMove:
		r.handleMove(ctx, c, *message.Index)
	case proto.TypeSync:
		r.handleSync(ctx, c)
	}
}

// handleMove applies the move; the resulting event reaches every client
// through the publisher, so nothing is written here on success.
func (r *Room) handleMove(ctx context.Context, c *Client, index int) {
	_, err := r.game.Move(ctx, r.ID, index)
	switch {
	case err == nil:
	case errors.Is(err, game.ErrIndexOutOfRange):
		r.sendError(ctx, c, "cell index out of range")
	case errors.Is(err, repository.ErrSessionNotFound):
		r.sendError(ctx, c, "session not found")
	default:
		slog.ErrorContext(ctx, "move failed", "session.id", r.ID, "error", err)
		r.sendError(ctx, c, "move failed")
	}
}

func (r *Room) handleSync(ctx context.Context, c *Client) {
	snap, err := r.game.Get(ctx, r.ID)
	if err != nil {
		r.sendError(ctx, c, "session not found")
		return
	}
	ev, err := events.New(events.TypeState, events.StatePayload{State: events.StateOf(snap)})
	if err != nil {
		slog.ErrorContext(ctx, "error building state event", "error", err)
		return
	}
	r.Send(ctx, c, ev)
}

func (r *Room) sendError(ctx context.Context, c *Client, reason string) {
	ev, err := events.New(events.TypeError, events.ErrorPayload{Reason: reason})
	if err != nil {
		return
	}
	r.Send(ctx, c, ev)
}
