package repository

import (
	"context"
	"fmt"
	"sync"
	"time"
)

type memorySessionRepository struct {
	mu       sync.Mutex
	ttl      time.Duration
	now      func() time.Time
	sessions map[string]*Session
}

// NewMemorySessionRepository keeps sessions in process. Sessions idle for
// longer than ttl are dropped on the next access.
func NewMemorySessionRepository(ttl time.Duration) SessionRepository {
	return &memorySessionRepository{
		ttl:      ttl,
		now:      time.Now,
		sessions: make(map[string]*Session),
	}
}

func (r *memorySessionRepository) Create(ctx context.Context, s *Session) error {
	_, span := tracer.Start(ctx, "SessionRepository.Create")
	defer span.End()

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.lookup(s.ID); ok {
		return fmt.Errorf("session %s already exists", s.ID)
	}
	stored := *s
	r.sessions[s.ID] = &stored
	return nil
}

func (r *memorySessionRepository) Get(ctx context.Context, id string) (*Session, error) {
	_, span := tracer.Start(ctx, "SessionRepository.Get")
	defer span.End()

	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.lookup(id)
	if !ok {
		return nil, ErrSessionNotFound
	}
	out := *s
	return &out, nil
}

func (r *memorySessionRepository) Update(ctx context.Context, id string, fn UpdateFunc) (*Session, error) {
	_, span := tracer.Start(ctx, "SessionRepository.Update")
	defer span.End()

	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.lookup(id)
	if !ok {
		return nil, ErrSessionNotFound
	}

	working := *s
	if err := fn(&working); err != nil {
		return nil, err
	}
	working.ID = id
	working.UpdatedAt = r.now()
	r.sessions[id] = &working

	out := working
	return &out, nil
}

func (r *memorySessionRepository) Delete(ctx context.Context, id string) error {
	_, span := tracer.Start(ctx, "SessionRepository.Delete")
	defer span.End()

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.lookup(id); !ok {
		return ErrSessionNotFound
	}
	delete(r.sessions, id)
	return nil
}

// lookup must be called with mu held. Expired sessions are evicted.
func (r *memorySessionRepository) lookup(id string) (*Session, bool) {
	s, ok := r.sessions[id]
	if !ok {
		return nil, false
	}
	if r.ttl > 0 && r.now().Sub(lastTouched(s)) > r.ttl {
		delete(r.sessions, id)
		return nil, false
	}
	return s, true
}

func lastTouched(s *Session) time.Time {
	if s.UpdatedAt.After(s.CreatedAt) {
		return s.UpdatedAt
	}
	return s.CreatedAt
}
