package engine

import (
	"context"
	"sync"
	"time"

	"github.com/matzehuels/stargraph/pkg/social"
	"github.com/matzehuels/stargraph/pkg/viewport"
)

// Loop owns an engine on a single goroutine. Ingestion, gestures, clicks,
// resizes and frame ticks are executed one at a time in submission order,
// so the engine itself needs no locking.
//
// Click callbacks run on the loop goroutine. A callback that wants to fetch
// data must do so on its own goroutine and submit the result with Ingest;
// calling Do from inside a callback deadlocks.
type Loop struct {
	e       *Engine
	frame   time.Duration
	onFrame func(*Engine)

	jobs    chan job
	wake    chan struct{}
	quit    chan struct{}
	stopped chan struct{}
	once    sync.Once

	mu      sync.Mutex
	resize  bool
	resizeW float64
	resizeH float64
}

type job struct {
	fn  func(*Engine) error
	err chan error
}

// LoopOption configures a Loop.
type LoopOption func(*Loop)

// WithFrameHook sets fn to run on the loop goroutine after every tick and
// every submitted job, typically to schedule a redraw.
func WithFrameHook(fn func(*Engine)) LoopOption {
	return func(l *Loop) { l.onFrame = fn }
}

// WithFrameInterval overrides the engine's configured tick period.
func WithFrameInterval(d time.Duration) LoopOption {
	return func(l *Loop) {
		if d > 0 {
			l.frame = d
		}
	}
}

// StartLoop starts a goroutine that owns e until ctx is cancelled or Close
// is called, at which point the engine is closed. Resize notifications from
// the engine's mount are routed through the loop; bursts are coalesced to
// the latest size.
func StartLoop(ctx context.Context, e *Engine, opts ...LoopOption) *Loop {
	l := &Loop{
		e:       e,
		frame:   e.cfg.FrameInterval,
		jobs:    make(chan job),
		wake:    make(chan struct{}, 1),
		quit:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
	if l.frame <= 0 {
		l.frame = FrameInterval
	}
	for _, opt := range opts {
		opt(l)
	}
	e.onResize = l.queueResize
	go l.run(ctx)
	return l
}

func (l *Loop) queueResize(w, h float64) {
	l.mu.Lock()
	l.resize, l.resizeW, l.resizeH = true, w, h
	l.mu.Unlock()
	select {
	case l.wake <- struct{}{}:
	default:
	}
}

func (l *Loop) run(ctx context.Context) {
	defer close(l.stopped)
	defer l.e.Close()

	var (
		ticker *time.Ticker
		tickC  <-chan time.Time
	)
	schedule := func() {
		switch alive := l.e.Alive(); {
		case alive && ticker == nil:
			ticker = time.NewTicker(l.frame)
			tickC = ticker.C
		case !alive && ticker != nil:
			ticker.Stop()
			ticker, tickC = nil, nil
		}
	}
	defer func() {
		if ticker != nil {
			ticker.Stop()
		}
	}()

	for {
		schedule()
		select {
		case <-ctx.Done():
			return
		case <-l.quit:
			return
		case j := <-l.jobs:
			if l.e.Closed() {
				j.err <- ErrClosed
				return
			}
			j.err <- j.fn(l.e)
		case <-l.wake:
			l.mu.Lock()
			pending, w, h := l.resize, l.resizeW, l.resizeH
			l.resize = false
			l.mu.Unlock()
			if pending {
				l.e.Resize(w, h)
			}
		case <-tickC:
			l.e.Tick()
		}
		if l.e.Closed() {
			return
		}
		if l.onFrame != nil {
			l.onFrame(l.e)
		}
	}
}

// Do runs fn on the loop goroutine and waits for it. It returns ErrClosed
// once the loop has stopped.
func (l *Loop) Do(ctx context.Context, fn func(*Engine) error) error {
	j := job{fn: fn, err: make(chan error, 1)}
	select {
	case l.jobs <- j:
	case <-l.stopped:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-j.err:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Ingest submits a query result.
func (l *Loop) Ingest(ctx context.Context, u *social.UserWithRepos) error {
	return l.Do(ctx, func(e *Engine) error {
		e.Ingest(u)
		return nil
	})
}

// Click submits a pointer click and reports whether it emitted an event.
func (l *Loop) Click(ctx context.Context, sx, sy float64) (bool, error) {
	var emitted bool
	err := l.Do(ctx, func(e *Engine) error {
		emitted = e.Click(sx, sy)
		return nil
	})
	return emitted, err
}

// ClickNode submits a click on a node's label.
func (l *Loop) ClickNode(ctx context.Context, id string) (bool, error) {
	var emitted bool
	err := l.Do(ctx, func(e *Engine) error {
		emitted = e.ClickNode(id)
		return nil
	})
	return emitted, err
}

// Apply submits a camera transform.
func (l *Loop) Apply(ctx context.Context, t viewport.Transform) (viewport.Change, error) {
	var c viewport.Change
	err := l.Do(ctx, func(e *Engine) error {
		c = e.Apply(t)
		return nil
	})
	return c, err
}

// Resize submits a viewport resize.
func (l *Loop) Resize(ctx context.Context, w, h float64) error {
	return l.Do(ctx, func(e *Engine) error {
		e.Resize(w, h)
		return nil
	})
}

// Snapshot reads the engine counters on the loop goroutine.
func (l *Loop) Snapshot(ctx context.Context) (Snapshot, error) {
	var s Snapshot
	err := l.Do(ctx, func(e *Engine) error {
		s = e.Snapshot()
		return nil
	})
	return s, err
}

// Done is closed once the loop has stopped and the engine is closed.
func (l *Loop) Done() <-chan struct{} { return l.stopped }

// Close stops the loop, closes the engine and waits for both.
func (l *Loop) Close() error {
	l.once.Do(func() { close(l.quit) })
	<-l.stopped
	return nil
}
