package engine

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/matzehuels/stargraph/pkg/viewport"
)

func TestLoopSerializesWork(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()
	l := StartLoop(ctx, e, WithFrameInterval(time.Millisecond))
	defer l.Close()

	repos := make(chan ClickRepo, 1)
	if err := l.Do(ctx, func(e *Engine) error {
		e.OnClickRepo(func(ev ClickRepo) { repos <- ev })
		return nil
	}); err != nil {
		t.Fatalf("Do: %v", err)
	}

	if err := l.Ingest(ctx, alice()); err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	emitted, err := l.ClickNode(ctx, "R1")
	if err != nil || !emitted {
		t.Fatalf("ClickNode = %v, %v", emitted, err)
	}
	select {
	case ev := <-repos:
		if ev.Username != "bob" {
			t.Errorf("username = %q", ev.Username)
		}
	case <-time.After(time.Second):
		t.Fatal("no click-repo event")
	}

	if _, err := l.Apply(ctx, viewport.Transform{K: 1}); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	snap, err := l.Snapshot(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if snap.Nodes != 2 || snap.State != "expanded" {
		t.Errorf("snapshot = %+v", snap)
	}
}

func TestLoopTicksUntilSettled(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()
	var frames atomic.Int64
	l := StartLoop(ctx, e,
		WithFrameInterval(time.Millisecond),
		WithFrameHook(func(*Engine) { frames.Add(1) }))
	defer l.Close()

	if err := l.Ingest(ctx, alice()); err != nil {
		t.Fatal(err)
	}
	deadline := time.Now().Add(5 * time.Second)
	for {
		snap, err := l.Snapshot(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if !snap.Alive {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("simulation still alive: %+v", snap)
		}
		time.Sleep(5 * time.Millisecond)
	}
	if frames.Load() < 100 {
		t.Errorf("frames = %d, want the simulation's ticks", frames.Load())
	}
}

func TestLoopResizeFromMount(t *testing.T) {
	e, m := newTestEngine(t)
	ctx := context.Background()
	l := StartLoop(ctx, e)
	defer l.Close()

	m.Resize(300, 200)
	m.Resize(1200, 900)

	deadline := time.Now().Add(time.Second)
	for {
		var w, h float64
		if err := l.Do(ctx, func(e *Engine) error {
			w, h = e.Viewport().Size()
			return nil
		}); err != nil {
			t.Fatal(err)
		}
		if w == 1200 && h == 900 {
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("viewport = %vx%v, want 1200x900", w, h)
		}
		time.Sleep(time.Millisecond)
	}
}

func TestLoopClose(t *testing.T) {
	e, m := newTestEngine(t)
	ctx := context.Background()
	l := StartLoop(ctx, e)

	if err := l.Close(); err != nil {
		t.Fatal(err)
	}
	if err := l.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
	select {
	case <-l.Done():
	default:
		t.Error("Done should be closed")
	}
	if !e.Closed() || m.HasSurface() {
		t.Error("closing the loop should close the engine")
	}
	if err := l.Ingest(ctx, alice()); !errors.Is(err, ErrClosed) {
		t.Errorf("Ingest after Close = %v, want ErrClosed", err)
	}
}

func TestLoopStopsWithContext(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx, cancel := context.WithCancel(context.Background())
	l := StartLoop(ctx, e)
	cancel()

	select {
	case <-l.Done():
	case <-time.After(time.Second):
		t.Fatal("loop did not stop on cancel")
	}
	if _, err := l.ClickNode(context.Background(), "U1"); !errors.Is(err, ErrClosed) {
		t.Errorf("err = %v, want ErrClosed", err)
	}
}

func TestLoopDoHonoursContext(t *testing.T) {
	e, _ := newTestEngine(t)
	l := StartLoop(context.Background(), e)
	defer l.Close()

	block := make(chan struct{})
	go l.Do(context.Background(), func(*Engine) error {
		<-block
		return nil
	})
	defer close(block)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	// The loop is busy, so this cannot be accepted before the deadline.
	time.Sleep(5 * time.Millisecond)
	if err := l.Do(ctx, func(*Engine) error { return nil }); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("err = %v, want deadline exceeded", err)
	}
}
