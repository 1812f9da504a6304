package rworker

import (
	"context"
	"sync"
)

// Job runs fn in its own goroutine once a slot of rate is free. The first
// error is kept in errCh, later ones are dropped. A job whose context is done
// before it gets a slot reports ctx.Err() instead of running.
func Job(ctx context.Context, wg *sync.WaitGroup, fn func() error, rate chan struct{}, errCh chan<- error) {
	wg.Add(1)
	go func() {
		defer wg.Done()
		select {
		case rate <- struct{}{}:
		case <-ctx.Done():
			report(errCh, ctx.Err())
			return
		}
		defer func() { <-rate }()
		if err := fn(); err != nil {
			report(errCh, err)
		}
	}()
}

func report(errCh chan<- error, err error) {
	select {
	case errCh <- err:
	default:
	}
}
