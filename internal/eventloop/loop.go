package eventloop

import (
	"context"

	"github.com/momentum-xyz/media-placer/internal/logger"

	"github.com/eapache/queue"
	"github.com/sasha-s/go-deadlock"
)

var log = logger.L()

// Loop runs posted tasks one at a time, in posting order, on a single goroutine.
type Loop struct {
	mu      *deadlock.Mutex
	pending *queue.Queue
	wake    chan struct{}
	done    chan struct{}
	closed  bool
}

func New() *Loop {
	return &Loop{
		mu:      new(deadlock.Mutex),
		pending: queue.New(),
		wake:    make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
}

// Post enqueues fn. It returns false once the loop is closed.
func (l *Loop) Post(fn func()) bool {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return false
	}
	l.pending.Add(fn)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
	return true
}

// Run executes tasks until ctx is done or Close is called. Tasks still queued at
// Close are drained first.
func (l *Loop) Run(ctx context.Context) {
	defer close(l.done)
	for {
		for {
			fn, ok := l.next()
			if !ok {
				break
			}
			l.exec(fn)
		}

		l.mu.Lock()
		closed := l.closed
		l.mu.Unlock()
		if closed {
			return
		}

		select {
		case <-ctx.Done():
			return
		case <-l.wake:
		}
	}
}

// Close stops accepting tasks and waits for Run to return.
func (l *Loop) Close() {
	l.mu.Lock()
	l.closed = true
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
	<-l.done
}

// Len is the number of tasks waiting.
func (l *Loop) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.pending.Length()
}

func (l *Loop) next() (func(), bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.pending.Length() == 0 {
		return nil, false
	}
	return l.pending.Remove().(func()), true
}

func (l *Loop) exec(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			log.Errorf("eventloop: task panicked: %v", r)
		}
	}()
	fn()
}
