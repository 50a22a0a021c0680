// Package fetch provides a declarative data-fetching primitive: a Fetcher
// hands a consumer {data, loading, error} for an endpoint and keeps those
// three fields coherent across overlapping loads.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/exclusive-store/storefront/internal/api"
)

// ErrNoData is the error a consumer observes when the underlying request
// failed. The request layer collapses every failure to nil, so no finer
// distinction reaches this level.
var ErrNoData = errors.New("no data returned")

// Requester is the request surface a Fetcher needs; *api.Client satisfies it.
type Requester interface {
	Request(ctx context.Context, path string, opts api.Options) any
}

// State is the consumer-facing snapshot. Loading is true exactly while a
// request is in flight; once settled, exactly one of Data and Err is set.
type State[T any] struct {
	Data    *T
	Loading bool
	Err     error
}

// Fetcher binds an endpoint response to a typed state. Each Load
// supersedes the previous one: a slow response from an earlier Load is
// discarded rather than clobbering state set by a newer one, and a closed
// Fetcher ignores any still-pending results.
type Fetcher[T any] struct {
	client Requester

	mu     sync.Mutex
	gen    uint64
	closed bool
	state  State[T]

	subMu   sync.Mutex
	nextSub int
	subs    map[int]func(State[T])
}

// New creates a Fetcher in the idle state.
func New[T any](client Requester) *Fetcher[T] {
	return &Fetcher[T]{
		client: client,
		subs:   make(map[int]func(State[T])),
	}
}

// Load issues a request and settles the state when it completes, unless a
// newer Load has started or the Fetcher was closed in the meantime. It
// blocks until the request finishes; run it in a goroutine to overlap
// loads.
func (f *Fetcher[T]) Load(ctx context.Context, path string, opts api.Options) {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return
	}
	f.gen++
	gen := f.gen
	f.state.Loading = true
	f.state.Err = nil
	snap := f.state
	f.mu.Unlock()
	f.notify(snap)

	doc := f.client.Request(ctx, path, opts)

	f.mu.Lock()
	if f.closed || gen != f.gen {
		// Superseded by a newer load, or torn down: discard.
		f.mu.Unlock()
		return
	}
	if doc == nil {
		f.state.Data = nil
		f.state.Err = ErrNoData
	} else {
		var value T
		if err := api.DecodeInto(doc, &value); err != nil {
			f.state.Data = nil
			f.state.Err = fmt.Errorf("decode response: %w", err)
		} else {
			f.state.Data = &value
			f.state.Err = nil
		}
	}
	f.state.Loading = false
	snap = f.state
	f.mu.Unlock()
	f.notify(snap)
}

// State returns the current snapshot.
func (f *Fetcher[T]) State() State[T] {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Subscribe registers fn to observe state transitions. The returned cancel
// function removes the subscription.
func (f *Fetcher[T]) Subscribe(fn func(State[T])) func() {
	f.subMu.Lock()
	id := f.nextSub
	f.nextSub++
	f.subs[id] = fn
	f.subMu.Unlock()
	return func() {
		f.subMu.Lock()
		delete(f.subs, id)
		f.subMu.Unlock()
	}
}

// Close tears the Fetcher down. Results of in-flight loads are discarded;
// subsequent Load calls are no-ops.
func (f *Fetcher[T]) Close() {
	f.mu.Lock()
	f.closed = true
	f.mu.Unlock()
}

func (f *Fetcher[T]) notify(snap State[T]) {
	f.subMu.Lock()
	fns := make([]func(State[T]), 0, len(f.subs))
	for _, fn := range f.subs {
		fns = append(fns, fn)
	}
	f.subMu.Unlock()
	for _, fn := range fns {
		fn(snap)
	}
}
