package fetcher

import (
	"context"
	"sync"
	"time"
)

// DefaultDebounce is the quiet period before a search runs.
const DefaultDebounce = 300 * time.Millisecond

// WithDebounce sets the quiet period of a Debounced fetcher.
func WithDebounce(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.window = d
		}
	}
}

// Debounced runs a query-dependent load only after Set has not been called
// for the debounce window.
type Debounced[Q, T any] struct {
	*Fetcher[T]

	build  func(Q) LoadFunc[T]
	window time.Duration

	mu     sync.Mutex
	timer  *time.Timer
	seq    uint64
	closed bool
}

// NewDebounced creates an idle Debounced fetcher; nothing loads until Set.
func NewDebounced[Q, T any](ctx context.Context, build func(Q) LoadFunc[T], opts ...Option) *Debounced[Q, T] {
	o := buildOptions(opts)
	// The loader arrives with the first Set.
	inner := New[T](ctx, nil, WithLogger(o.logger), WithPollInterval(o.poll))
	return &Debounced[Q, T]{Fetcher: inner, build: build, window: o.window}
}

// Set schedules a load for q, replacing any pending one.
func (d *Debounced[Q, T]) Set(q Q) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.seq++
	seq, load := d.seq, d.build(q)
	d.timer = time.AfterFunc(d.window, func() { d.fire(seq, load) })
}

// fire runs the load scheduled by Set number seq. Stop cannot recall a
// callback that already fired, so a superseded one returns here. Reload
// runs unlocked because subscribers are notified synchronously and may
// call Set; a Set that lands after the check schedules its own reload,
// which supersedes this one.
func (d *Debounced[Q, T]) fire(seq uint64, load LoadFunc[T]) {
	d.mu.Lock()
	stale := d.closed || seq != d.seq
	d.mu.Unlock()
	if stale {
		return
	}
	d.Reload(load)
}

// Close stops the pending timer and closes the fetcher.
func (d *Debounced[Q, T]) Close() {
	d.mu.Lock()
	d.closed = true
	if d.timer != nil {
		d.timer.Stop()
	}
	d.mu.Unlock()
	d.Fetcher.Close()
}
