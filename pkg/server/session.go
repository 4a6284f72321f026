package server

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/stargraph/pkg/engine"
	errs "github.com/matzehuels/stargraph/pkg/errors"
	"github.com/matzehuels/stargraph/pkg/scene"
)

var (
	// ErrSessionNotFound is returned for unknown or expired session ids.
	ErrSessionNotFound = errs.New(errs.ErrCodeSessionNotFound, "session not found")

	// ErrTooManySessions is returned when the registry is full.
	ErrTooManySessions = errs.New(errs.ErrCodeRateLimited, "too many open sessions")
)

// Event is one notification delivered on a session's event stream.
type Event struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// Session is one mounted engine and its subscribers.
type Session struct {
	ID      string
	Created time.Time

	doc   *scene.Document
	mount *scene.Mount
	loop  *engine.Loop

	mu       sync.Mutex
	lastSeen time.Time
	subs     map[int]chan Event
	nextSub  int
}

// Loop returns the loop driving the session's engine.
func (s *Session) Loop() *engine.Loop { return s.loop }

// Mount returns the container the engine is mounted into.
func (s *Session) Mount() *scene.Mount { return s.mount }

func (s *Session) touch() {
	s.mu.Lock()
	s.lastSeen = time.Now()
	s.mu.Unlock()
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

// Subscribe registers a listener for the session's notifications. The
// returned cancel function must be called to release it.
func (s *Session) Subscribe(buffer int) (<-chan Event, func()) {
	ch := make(chan Event, buffer)
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch
	s.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			if _, ok := s.subs[id]; ok {
				delete(s.subs, id)
				close(ch)
			}
			s.mu.Unlock()
		})
	}
}

// publish fans an event out without blocking; slow subscribers miss it.
func (s *Session) publish(typ string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	ev := Event{Type: typ, Data: data}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ch := range s.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

func (s *Session) close() {
	s.loop.Close()
	s.doc.RemoveMount(s.ID)
	s.mu.Lock()
	for id, ch := range s.subs {
		delete(s.subs, id)
		close(ch)
	}
	s.mu.Unlock()
}

// Registry owns every open session.
type Registry struct {
	cfg Config
	log *log.Logger

	// OnClickRepo, when set, is called on the session's loop goroutine for
	// every click-repo notification. It must not block.
	OnClickRepo func(*Session, engine.ClickRepo)

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewRegistry creates an empty registry.
func NewRegistry(cfg Config, logger *log.Logger) *Registry {
	cfg.setDefaults()
	if logger == nil {
		logger = log.Default()
	}
	return &Registry{cfg: cfg, log: logger, sessions: make(map[string]*Session)}
}

// Create mounts a new engine of the given size and starts its loop.
func (r *Registry) Create(w, h float64) (*Session, error) {
	if w <= 0 {
		w = DefaultWidth
	}
	if h <= 0 {
		h = DefaultHeight
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.sessions) >= r.cfg.MaxSessions {
		return nil, ErrTooManySessions
	}

	id := uuid.NewString()
	doc := scene.NewDocument()
	mount := doc.AddMount(id, w, h)
	e, err := engine.New(doc, "#"+id,
		engine.WithConfig(r.cfg.Engine),
		engine.WithLogger(r.log.With("session", id[:8])))
	if err != nil {
		return nil, err
	}

	now := time.Now()
	s := &Session{
		ID:       id,
		Created:  now,
		doc:      doc,
		mount:    mount,
		lastSeen: now,
		subs:     make(map[int]chan Event),
	}
	e.OnClickRepo(func(ev engine.ClickRepo) {
		s.publish(engine.EventClickRepo, ev)
		if r.OnClickRepo != nil {
			r.OnClickRepo(s, ev)
		}
	})
	e.OnClickUser(func(ev engine.ClickUser) { s.publish(engine.EventClickUser, ev) })
	s.loop = engine.StartLoop(context.Background(), e)

	r.sessions[id] = s
	r.log.Debug("session created", "id", id, "width", w, "height", h)
	return s, nil
}

// Get returns the session with the given id and marks it as used.
func (r *Registry) Get(id string) (*Session, error) {
	r.mu.RLock()
	s, ok := r.sessions[id]
	r.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	s.touch()
	return s, nil
}

// Delete closes and forgets a session.
func (r *Registry) Delete(id string) error {
	r.mu.Lock()
	s, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()
	if !ok {
		return ErrSessionNotFound
	}
	s.close()
	r.log.Debug("session closed", "id", id)
	return nil
}

// Len returns the number of open sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Sweep closes sessions idle for longer than the configured TTL and
// returns how many were closed.
func (r *Registry) Sweep(now time.Time) int {
	var stale []*Session
	r.mu.Lock()
	for id, s := range r.sessions {
		if now.Sub(s.idleSince()) > r.cfg.SessionTTL {
			stale = append(stale, s)
			delete(r.sessions, id)
		}
	}
	r.mu.Unlock()
	for _, s := range stale {
		s.close()
	}
	if len(stale) > 0 {
		r.log.Info("expired idle sessions", "count", len(stale))
	}
	return len(stale)
}

// Run sweeps idle sessions until ctx is cancelled.
func (r *Registry) Run(ctx context.Context) {
	interval := r.cfg.SessionTTL / 4
	if interval < time.Second {
		interval = time.Second
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			r.Sweep(now)
		}
	}
}

// Close closes every session.
func (r *Registry) Close() {
	r.mu.Lock()
	all := r.sessions
	r.sessions = make(map[string]*Session)
	r.mu.Unlock()
	for _, s := range all {
		s.close()
	}
}
