package flow

import (
	"context"
	"sync"
)

// userQueue serializes event handling per user id: events for one user run
// strictly in arrival order, so a double tap cannot interleave two
// transitions against the same session. Different users never block each
// other.
type userQueue struct {
	mu     sync.Mutex
	chains map[int64]chan struct{}
}

func newUserQueue() *userQueue {
	return &userQueue{chains: map[int64]chan struct{}{}}
}

func (q *userQueue) Run(ctx context.Context, userID int64, fn func(context.Context) error) error {
	q.mu.Lock()
	previous := q.chains[userID]
	next := make(chan struct{})
	q.chains[userID] = next
	q.mu.Unlock()

	if previous != nil {
		select {
		case <-previous:
		case <-ctx.Done():
			close(next)
			return ctx.Err()
		}
	}

	defer func() {
		close(next)
		q.mu.Lock()
		if q.chains[userID] == next {
			delete(q.chains, userID)
		}
		q.mu.Unlock()
	}()

	return fn(ctx)
}
