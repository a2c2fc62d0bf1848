package hub

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"ctchen222/Hotseat-Tic-Tac-Toe/internal/events"
	"ctchen222/Hotseat-Tic-Tac-Toe/internal/room"

	"github.com/go-redis/redis/v8"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("hub")

// Hub manages the rooms of this instance and routes published events to them.
// With Redis, events travel through one Pub/Sub channel per session so that
// any instance holding a view of the session can deliver them.
type Hub struct {
	mu         sync.Mutex
	localRooms map[string]*localRoom
	rdb        *redis.Client
}

type localRoom struct {
	room   *room.Room
	cancel context.CancelFunc
}

type Option func(*Hub)

// WithRedis routes events over Redis Pub/Sub.
func WithRedis(rdb *redis.Client) Option {
	return func(h *Hub) {
		h.rdb = rdb
	}
}

// NewHub creates a new hub.
func NewHub(opts ...Option) *Hub {
	h := &Hub{localRooms: make(map[string]*localRoom)}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Serve attaches conn to the session's room and blocks until the client
// goes away or ctx ends. The current state is sent first.
func (h *Hub) Serve(ctx context.Context, sessionID string, conn room.Connection, game room.Game) error {
	ctx, span := tracer.Start(ctx, "hub.Serve", trace.WithAttributes(
		attribute.String("session.id", sessionID),
	))
	defer span.End()

	c := room.NewClient(conn)
	r, err := h.join(ctx, sessionID, game, c)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to join room")
		_ = conn.Close()
		return err
	}

	slog.InfoContext(ctx, "Client joined room", "client.id", c.ID, "session.id", sessionID)

	r.HandleMessage(ctx, c, []byte(`{"type":"sync"}`))
	r.ReadPump(ctx, c)

	h.leave(sessionID, c)
	return nil
}

// Publish implements service.Publisher.
func (h *Hub) Publish(ctx context.Context, sessionID string, ev events.Event) error {
	ctx, span := tracer.Start(ctx, "hub.Publish", trace.WithAttributes(
		attribute.String("session.id", sessionID),
		attribute.String("event.type", ev.Type),
	))
	defer span.End()

	if h.rdb == nil {
		if r := h.lookup(sessionID); r != nil {
			r.Broadcast(ctx, ev)
		}
		return nil
	}

	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	if err := h.rdb.Publish(ctx, events.SessionChannel(sessionID), data).Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to publish event")
		return fmt.Errorf("failed to publish %s event: %w", ev.Type, err)
	}
	return nil
}

// RoomCount is the number of rooms with at least one local client.
func (h *Hub) RoomCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.localRooms)
}

// Close disconnects every client and drops every room.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, lr := range h.localRooms {
		for _, c := range lr.room.Clients() {
			_ = c.Close()
		}
		lr.cancel()
		lr.room.Close()
		delete(h.localRooms, id)
	}
}

// join adds c to the session's room, creating the room when needed. The
// client is added under h.mu so that a concurrent leave cannot close the room
// in between.
func (h *Hub) join(ctx context.Context, sessionID string, game room.Game, c *room.Client) (*room.Room, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if lr, ok := h.localRooms[sessionID]; ok {
		lr.room.AddClient(c)
		return lr.room, nil
	}

	r := room.NewRoom(sessionID, game)
	// The room outlives the request that created it.
	roomCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))

	if h.rdb != nil {
		pubsub, err := h.subscribe(roomCtx, sessionID)
		if err != nil {
			cancel()
			return nil, err
		}
		go h.runRoomUpdateSubscriber(roomCtx, r, pubsub)
	}
	go r.Run(roomCtx)

	r.AddClient(c)
	h.localRooms[sessionID] = &localRoom{room: r, cancel: cancel}
	slog.InfoContext(ctx, "Room created", "session.id", sessionID)
	return r, nil
}

func (h *Hub) leave(sessionID string, c *room.Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	lr, ok := h.localRooms[sessionID]
	if !ok {
		return
	}
	if lr.room.RemoveClient(c) > 0 {
		return
	}
	lr.cancel()
	lr.room.Close()
	delete(h.localRooms, sessionID)
	slog.Info("Room closed due to no clients", "session.id", sessionID)
}

func (h *Hub) lookup(sessionID string) *room.Room {
	h.mu.Lock()
	defer h.mu.Unlock()
	if lr, ok := h.localRooms[sessionID]; ok {
		return lr.room
	}
	return nil
}
