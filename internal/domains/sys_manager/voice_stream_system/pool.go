package voicestreamsystem

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
)

// Pool bounds the number of collaborator calls in flight across all sessions.
type Pool struct {
	sem      *semaphore.Weighted
	size     int64
	inflight atomic.Int64
}

func NewPool(size int) *Pool {
	if size <= 0 {
		size = 1
	}
	return &Pool{sem: semaphore.NewWeighted(int64(size)), size: int64(size)}
}

// Do runs fn on a pool slot. If ctx ends first Do returns ctx.Err() right
// away; the slot stays held until fn itself returns.
func (p *Pool) Do(ctx context.Context, fn func(context.Context) error) error {
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	p.inflight.Add(1)

	done := make(chan error, 1)
	go func() {
		defer func() {
			p.inflight.Add(-1)
			p.sem.Release(1)
		}()
		done <- fn(ctx)
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *Pool) InFlight() int64 { return p.inflight.Load() }

func (p *Pool) Size() int64 { return p.size }
