package room

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"ctchen222/Hotseat-Tic-Tac-Toe/internal/api/service"
	"ctchen222/Hotseat-Tic-Tac-Toe/internal/match"

	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel"
)

const heartbeatInterval = 10 * time.Second

var tracer = otel.Tracer("room")

// Game is the part of the match service a room drives.
type Game interface {
	Move(ctx context.Context, sessionID string, index int) (*service.MoveOutcome, error)
	Get(ctx context.Context, sessionID string) (match.Snapshot, error)
}

// Room holds every view connected to one session.
type Room struct {
	ID      string
	game    Game
	mu      sync.Mutex
	clients map[string]*Client
	Done    chan struct{}
	closed  bool
}

// NewRoom creates the room of a session.
func NewRoom(id string, game Game) *Room {
	return &Room{
		ID:      id,
		game:    game,
		clients: make(map[string]*Client),
		Done:    make(chan struct{}),
	}
}

// AddClient adds a client to the room.
func (r *Room) AddClient(c *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clients[c.ID] = c
}

// RemoveClient drops a client and reports how many are left.
func (r *Room) RemoveClient(c *Client) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.clients, c.ID)
	return len(r.clients)
}

// Clients returns a copy of the connected clients.
func (r *Room) Clients() []*Client {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*Client, 0, len(r.clients))
	for _, c := range r.clients {
		out = append(out, c)
	}
	return out
}

// Close stops the heartbeat. It is safe to call more than once.
func (r *Room) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.closed {
		r.closed = true
		close(r.Done)
	}
}

// Run pings every client until the room closes or ctx ends.
func (r *Room) Run(ctx context.Context) {
	pingTicker := time.NewTicker(heartbeatInterval)
	defer pingTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-r.Done:
			slog.Info("Room run goroutine stopping.", "session.id", r.ID)
			return
		case <-pingTicker.C:
			for _, c := range r.Clients() {
				if err := c.write(websocket.PingMessage, nil); err != nil {
					slog.Warn("Failed to send ping to client, assuming disconnect", "client.id", c.ID, "error", err)
				}
			}
		}
	}
}
