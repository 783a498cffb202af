// Package fetcher holds per-view request state: one loader, one in-flight
// request, and a status that moves idle -> loading -> success | error.
package fetcher

import (
	"context"
	"sync"
	"time"

	"github.com/wolfman30/clinicdesk/internal/apiclient"
	"github.com/wolfman30/clinicdesk/pkg/logging"
)

// Status is the fetch lifecycle state.
type Status string

const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// State is a snapshot handed to subscribers. Data keeps the last successful
// value while a reload is in flight or after a failure.
type State[T any] struct {
	Status     Status
	Data       T
	Err        string
	Pagination *apiclient.Pagination
}

// Loading reports whether a request is in flight.
func (s State[T]) Loading() bool { return s.Status == StatusLoading }

// LoadFunc performs one load. ctx is cancelled when the load is superseded or
// the fetcher is closed.
type LoadFunc[T any] func(ctx context.Context) (T, error)

type paged interface {
	PageInfo() *apiclient.Pagination
}

type options struct {
	autoFetch bool
	poll      time.Duration
	window    time.Duration
	logger    *logging.Logger
}

// Option configures a Fetcher or Debounced.
type Option func(*options)

// WithAutoFetch starts the first load from the constructor.
func WithAutoFetch(on bool) Option {
	return func(o *options) { o.autoFetch = on }
}

// WithPollInterval reloads every d until Close. Zero disables polling.
func WithPollInterval(d time.Duration) Option {
	return func(o *options) { o.poll = d }
}

// WithLogger sets the logger for load failures.
func WithLogger(l *logging.Logger) Option {
	return func(o *options) { o.logger = l }
}

func buildOptions(opts []Option) options {
	o := options{window: DefaultDebounce}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = logging.Default()
	}
	return o
}

// Fetcher runs a LoadFunc and tracks its result.
type Fetcher[T any] struct {
	mu       sync.Mutex
	load     LoadFunc[T]
	state    State[T]
	gen      uint64
	inflight context.CancelFunc
	closed   bool
	subs     map[int]func(State[T])
	nextSub  int

	notifyMu sync.Mutex

	ctx    context.Context
	stop   context.CancelFunc
	wg     sync.WaitGroup
	logger *logging.Logger
}

// New creates a Fetcher bound to ctx; cancelling ctx has the same effect as
// Close for in-flight loads.
func New[T any](ctx context.Context, load LoadFunc[T], opts ...Option) *Fetcher[T] {
	o := buildOptions(opts)
	lifecycle, stop := context.WithCancel(ctx)
	f := &Fetcher[T]{
		load:   load,
		state:  State[T]{Status: StatusIdle},
		subs:   make(map[int]func(State[T])),
		ctx:    lifecycle,
		stop:   stop,
		logger: o.logger,
	}
	if o.autoFetch {
		f.Refetch()
	}
	if o.poll > 0 {
		f.wg.Add(1)
		go f.pollLoop(o.poll)
	}
	return f
}

// State returns the current snapshot.
func (f *Fetcher[T]) State() State[T] {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Subscribe registers fn for state changes and returns its cancel func.
func (f *Fetcher[T]) Subscribe(fn func(State[T])) (unsubscribe func()) {
	f.mu.Lock()
	id := f.nextSub
	f.nextSub++
	f.subs[id] = fn
	f.mu.Unlock()
	return func() {
		f.mu.Lock()
		delete(f.subs, id)
		f.mu.Unlock()
	}
}

// Refetch starts a load, cancelling any load already in flight. The returned
// channel closes when this load has finished or been superseded.
func (f *Fetcher[T]) Refetch() <-chan struct{} {
	done := make(chan struct{})

	f.mu.Lock()
	if f.closed || f.load == nil {
		f.mu.Unlock()
		close(done)
		return done
	}
	if f.inflight != nil {
		f.inflight()
	}
	f.gen++
	gen := f.gen
	reqCtx, cancel := context.WithCancel(f.ctx)
	f.inflight = cancel
	load := f.load
	f.state.Status = StatusLoading
	f.state.Err = ""
	f.mu.Unlock()
	f.notify()

	go func() {
		defer close(done)
		defer cancel()
		data, err := load(reqCtx)
		f.finish(gen, data, err)
	}()
	return done
}

// Reload swaps the loader, as when the query it closes over changes, and
// refetches.
func (f *Fetcher[T]) Reload(load LoadFunc[T]) <-chan struct{} {
	f.mu.Lock()
	f.load = load
	f.mu.Unlock()
	return f.Refetch()
}

// ClearError drops the error message without refetching. Status, Data and
// Pagination are left as they are.
func (f *Fetcher[T]) ClearError() {
	f.mu.Lock()
	if f.state.Err == "" {
		f.mu.Unlock()
		return
	}
	f.state.Err = ""
	f.mu.Unlock()
	f.notify()
}

// Close cancels the in-flight load and polling. Results landing after Close
// are discarded and subscribers are not called again.
func (f *Fetcher[T]) Close() {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return
	}
	f.closed = true
	f.gen++
	f.subs = map[int]func(State[T]){}
	f.mu.Unlock()

	f.stop()
	f.wg.Wait()
}

func (f *Fetcher[T]) finish(gen uint64, data T, err error) {
	f.mu.Lock()
	if f.closed || gen != f.gen {
		f.mu.Unlock()
		return
	}
	f.inflight = nil
	if err != nil {
		f.state.Status = StatusError
		f.state.Err = apiclient.Message(err)
		f.mu.Unlock()
		f.logger.Warn("fetch failed", "error", err)
		f.notify()
		return
	}
	f.state = State[T]{Status: StatusSuccess, Data: data}
	if p, ok := any(data).(paged); ok {
		f.state.Pagination = p.PageInfo()
	}
	f.mu.Unlock()
	f.notify()
}

// notify delivers the latest state. Deliveries are serialized so a
// subscriber never sees an older state after a newer one.
func (f *Fetcher[T]) notify() {
	f.notifyMu.Lock()
	defer f.notifyMu.Unlock()

	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return
	}
	snapshot := f.state
	subs := make([]func(State[T]), 0, len(f.subs))
	for _, fn := range f.subs {
		subs = append(subs, fn)
	}
	f.mu.Unlock()

	for _, fn := range subs {
		fn(snapshot)
	}
}

func (f *Fetcher[T]) pollLoop(every time.Duration) {
	defer f.wg.Done()
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-f.ctx.Done():
			return
		case <-ticker.C:
			f.Refetch()
		}
	}
}
