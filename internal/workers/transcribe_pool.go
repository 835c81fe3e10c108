package workers

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yoockh/yoorecord/internal/providers/stt"
)

var ErrPoolClosed = errors.New("transcribe pool is closed")

type job struct {
	ctx   context.Context
	audio []byte
	name  string
	done  chan jobResult
}

type jobResult struct {
	res *stt.Result
	err error
}

// TranscribePool runs the speech-to-text engine on a fixed number of
// goroutines fed by a bounded queue. Submitters block while the queue is full.
type TranscribePool struct {
	STT        stt.Provider
	Options    stt.Options
	NumWorkers int
	QueueSize  int
	Timeout    time.Duration // per job, 0 = none

	Logger *logrus.Logger

	jobs     chan job
	runCtx   context.Context
	wg       sync.WaitGroup
	mu       sync.RWMutex
	closed   bool
	stopOnce sync.Once
}

func (p *TranscribePool) Start(ctx context.Context) error {
	if p.STT == nil {
		return errors.New("TranscribePool missing dependency: STT must be set")
	}
	if p.NumWorkers <= 0 {
		p.NumWorkers = 2
	}
	if p.QueueSize < 0 {
		p.QueueSize = 0
	}
	if p.Logger == nil {
		p.Logger = logrus.New()
	}

	p.runCtx = ctx
	p.jobs = make(chan job, p.QueueSize)
	for i := 0; i < p.NumWorkers; i++ {
		p.wg.Add(1)
		go p.runWorker(ctx, "w-"+strconv.Itoa(i+1))
	}
	return nil
}

// Stop stops accepting jobs and waits for queued ones to finish.
func (p *TranscribePool) Stop() {
	p.stopOnce.Do(func() {
		p.mu.Lock()
		p.closed = true
		if p.jobs != nil {
			close(p.jobs)
		}
		p.mu.Unlock()
		p.wg.Wait()
	})
}

// Transcribe queues audio and waits for the engine's answer.
func (p *TranscribePool) Transcribe(ctx context.Context, name string, audio []byte) (*stt.Result, error) {
	done := make(chan jobResult, 1)

	p.mu.RLock()
	if p.closed || p.jobs == nil || p.runCtx.Err() != nil {
		p.mu.RUnlock()
		return nil, ErrPoolClosed
	}
	select {
	case p.jobs <- job{ctx: ctx, audio: audio, name: name, done: done}:
		p.mu.RUnlock()
	case <-ctx.Done():
		p.mu.RUnlock()
		return nil, ctx.Err()
	case <-p.runCtx.Done():
		p.mu.RUnlock()
		return nil, ErrPoolClosed
	}

	select {
	case r := <-done:
		return r.res, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-p.runCtx.Done():
		// workers are gone; a job queued after the drain would never be answered
		select {
		case r := <-done:
			return r.res, r.err
		default:
			return nil, ErrPoolClosed
		}
	}
}

func (p *TranscribePool) runWorker(ctx context.Context, worker string) {
	defer p.wg.Done()

	for {
		select {
		case <-ctx.Done():
			p.drain(ErrPoolClosed)
			return
		case j, ok := <-p.jobs:
			if !ok {
				return
			}
			p.handle(worker, j)
		}
	}
}

func (p *TranscribePool) handle(worker string, j job) {
	if err := j.ctx.Err(); err != nil {
		j.done <- jobResult{err: err}
		return
	}

	ctx := j.ctx
	if p.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.Timeout)
		defer cancel()
	}

	log := p.Logger.WithFields(logrus.Fields{
		"worker":   worker,
		"filename": j.name,
		"bytes":    len(j.audio),
	})

	start := time.Now()
	res, err := p.STT.Transcribe(ctx, j.audio, p.Options)
	log = log.WithField("latency_ms", time.Since(start).Milliseconds())
	if err != nil {
		log.WithError(err).Error("stt failed")
	} else {
		log.Debug("stt done")
	}
	j.done <- jobResult{res: res, err: err}
}

// drain fails whatever is still queued once the pool context ends.
func (p *TranscribePool) drain(err error) {
	for {
		select {
		case j, ok := <-p.jobs:
			if !ok {
				return
			}
			j.done <- jobResult{err: err}
		default:
			return
		}
	}
}
