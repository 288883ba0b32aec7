package project

import (
	"context"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/stackforge/pkg/engine"
	errs "github.com/matzehuels/stackforge/pkg/errors"
	"github.com/matzehuels/stackforge/pkg/resolver"
)

// Saver persists a project after each accepted mutation.
type Saver interface {
	Put(ctx context.Context, p *Project) error
}

// Event is delivered to subscribers after every mutation, accepted or
// rejected.
type Event struct {
	Mutation resolver.Mutation
	Result   resolver.Result
	Project  *Project // snapshot after the mutation
}

// Listener receives binder events. ctx is the context of the Apply call
// that produced the event.
type Listener func(ctx context.Context, ev Event)

type notifyingKey struct{}

// Binder serialises mutations of one project. Each call to Apply runs the
// engine, commits an accepted result, persists it when a Saver is set, and
// notifies subscribers synchronously before returning.
//
// Listeners may read [Binder.Project] but must not call Apply. Any Apply
// made while subscribers are being notified fails with REENTRANT_MUTATION
// instead of feeding back into the binder.
type Binder struct {
	applyMu   sync.Mutex // serialises Apply, including notification
	notifying atomic.Bool

	mu      sync.Mutex // guards project
	eng     *engine.Engine
	project *Project
	saver   Saver
	logger  *log.Logger

	subsMu sync.Mutex
	subs   map[int]Listener
	nextID int
}

// BinderOption configures a Binder.
type BinderOption func(*Binder)

// WithSaver persists the project after every accepted mutation.
func WithSaver(s Saver) BinderOption {
	return func(b *Binder) { b.saver = s }
}

// WithBinderLogger sets the logger. A nil logger falls back to log.Default().
func WithBinderLogger(l *log.Logger) BinderOption {
	return func(b *Binder) {
		if l != nil {
			b.logger = l
		}
	}
}

// NewBinder binds p to eng. The binder takes ownership of p; use
// [Binder.Project] to read it.
func NewBinder(eng *engine.Engine, p *Project, opts ...BinderOption) *Binder {
	b := &Binder{
		eng:     eng,
		project: p,
		logger:  log.Default(),
		subs:    make(map[int]Listener),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Subscribe registers fn and returns a function that removes it.
func (b *Binder) Subscribe(fn Listener) (unsubscribe func()) {
	b.subsMu.Lock()
	defer b.subsMu.Unlock()
	id := b.nextID
	b.nextID++
	b.subs[id] = fn
	return func() {
		b.subsMu.Lock()
		defer b.subsMu.Unlock()
		delete(b.subs, id)
	}
}

// Project returns a snapshot of the bound project.
func (b *Binder) Project() *Project {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.project.Clone()
}

// Apply resolves m against the bound project. A rejected mutation leaves
// the project untouched and is reported through Result.Rejection. If saving
// fails the project keeps its previous configuration.
func (b *Binder) Apply(ctx context.Context, m resolver.Mutation) (resolver.Result, error) {
	if b.notifying.Load() || ctx.Value(notifyingKey{}) == b {
		return resolver.Result{}, errs.New(errs.ErrCodeReentrantMutation, "%s issued while notifying subscribers", m)
	}

	b.applyMu.Lock()
	defer b.applyMu.Unlock()

	res, snapshot, err := b.commit(ctx, m)
	if err != nil {
		return res, err
	}

	b.notifying.Store(true)
	defer b.notifying.Store(false)
	b.notify(context.WithValue(ctx, notifyingKey{}, b), Event{
		Mutation: m,
		Result:   res,
		Project:  snapshot,
	})
	return res, nil
}

// commit resolves m and, unless rejected, saves and installs the new
// project. It returns a snapshot of the project afterwards.
func (b *Binder) commit(ctx context.Context, m resolver.Mutation) (resolver.Result, *Project, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	res, err := b.eng.Resolve(ctx, b.project.Input(), m)
	if err != nil {
		return res, nil, err
	}
	if !res.Rejected() {
		next := b.project.Clone()
		next.Commit(res)
		if b.saver != nil {
			if err := b.saver.Put(ctx, next); err != nil {
				return res, nil, err
			}
		}
		b.project = next
		if len(res.Changes) > 0 {
			b.logger.Info("cascade applied", "project", next.Name, "summary", res.Summary())
		}
	}
	return res, b.project.Clone(), nil
}

func (b *Binder) notify(ctx context.Context, ev Event) {
	b.subsMu.Lock()
	ids := make([]int, 0, len(b.subs))
	for id := range b.subs {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	listeners := make([]Listener, 0, len(ids))
	for _, id := range ids {
		listeners = append(listeners, b.subs[id])
	}
	b.subsMu.Unlock()

	for _, fn := range listeners {
		fn(ctx, ev)
	}
}
