package workers

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/yoockh/yoorecord/internal/logger"
	"github.com/yoockh/yoorecord/internal/providers/stt"
)

type fakeSTT struct {
	delay   time.Duration
	err     error
	active  atomic.Int32
	maxSeen atomic.Int32
}

func (f *fakeSTT) Transcribe(ctx context.Context, audio []byte, _ stt.Options) (*stt.Result, error) {
	n := f.active.Add(1)
	defer f.active.Add(-1)
	for {
		m := f.maxSeen.Load()
		if n <= m || f.maxSeen.CompareAndSwap(m, n) {
			break
		}
	}

	select {
	case <-time.After(f.delay):
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	if f.err != nil {
		return nil, f.err
	}
	return &stt.Result{Segments: []stt.Segment{{Text: string(audio)}}}, nil
}

func (f *fakeSTT) Close() error { return nil }

func startPool(t *testing.T, p *TranscribePool) {
	t.Helper()
	p.Logger = logger.Discard()
	if err := p.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(p.Stop)
}

func TestPoolTranscribes(t *testing.T) {
	p := &TranscribePool{STT: &fakeSTT{}, NumWorkers: 1, QueueSize: 1}
	startPool(t, p)

	res, err := p.Transcribe(context.Background(), "a.wav", []byte("hello"))
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if res.Segments[0].Text != "hello" {
		t.Fatalf("res = %+v", res)
	}
}

func TestPoolBoundsConcurrency(t *testing.T) {
	engine := &fakeSTT{delay: 20 * time.Millisecond}
	p := &TranscribePool{STT: engine, NumWorkers: 2, QueueSize: 4}
	startPool(t, p)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := p.Transcribe(context.Background(), "x.wav", []byte("x")); err != nil {
				t.Errorf("Transcribe: %v", err)
			}
		}()
	}
	wg.Wait()

	if got := engine.maxSeen.Load(); got > 2 {
		t.Fatalf("max concurrent = %d, want <= 2", got)
	}
}

func TestPoolTimeout(t *testing.T) {
	p := &TranscribePool{STT: &fakeSTT{delay: time.Second}, NumWorkers: 1, Timeout: 10 * time.Millisecond}
	startPool(t, p)

	_, err := p.Transcribe(context.Background(), "slow.wav", []byte("x"))
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err = %v, want deadline exceeded", err)
	}
}

func TestPoolEngineError(t *testing.T) {
	boom := errors.New("model crashed")
	p := &TranscribePool{STT: &fakeSTT{err: boom}, NumWorkers: 1}
	startPool(t, p)

	_, err := p.Transcribe(context.Background(), "a.wav", []byte("x"))
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v", err)
	}
}

func TestPoolClosed(t *testing.T) {
	p := &TranscribePool{STT: &fakeSTT{}, NumWorkers: 1}
	startPool(t, p)
	p.Stop()

	if _, err := p.Transcribe(context.Background(), "a.wav", []byte("x")); !errors.Is(err, ErrPoolClosed) {
		t.Fatalf("err = %v", err)
	}
}

func TestPoolContextDone(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	p := &TranscribePool{STT: &fakeSTT{}, NumWorkers: 1, Logger: logger.Discard()}
	if err := p.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(p.Stop)
	cancel()

	done := make(chan error, 1)
	go func() {
		_, err := p.Transcribe(context.Background(), "late.wav", []byte("x"))
		done <- err
	}()

	select {
	case err := <-done:
		if !errors.Is(err, ErrPoolClosed) {
			t.Fatalf("err = %v, want ErrPoolClosed", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Transcribe blocked after the pool context ended")
	}
}

func TestPoolRequiresEngine(t *testing.T) {
	p := &TranscribePool{}
	if err := p.Start(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}
