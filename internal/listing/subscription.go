package listing

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// Notifier signals that a collection changed. The returned channel is closed
// when ctx ends or the underlying stream stops.
type Notifier interface {
	Watch(ctx context.Context, collection string) (<-chan struct{}, error)
}

// Feed turns change signals for one collection into full snapshots.
type Feed[T any] struct {
	notifier   Notifier
	collection string
	fetch      FetchFunc[T]
	logger     *zap.Logger
}

func NewFeed[T any](notifier Notifier, collection string, fetch FetchFunc[T], logger *zap.Logger) *Feed[T] {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Feed[T]{notifier: notifier, collection: collection, fetch: fetch, logger: logger}
}

// Subscription is a standing listener. Unsubscribe must be called by its owner.
type Subscription struct {
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

// Subscribe delivers an initial snapshot and then a fresh one after every change.
// onSnapshot runs on the subscription goroutine and never after Unsubscribe returns.
func (f *Feed[T]) Subscribe(ctx context.Context, onSnapshot func([]T)) (*Subscription, error) {
	ctx, cancel := context.WithCancel(ctx)
	changes, err := f.notifier.Watch(ctx, f.collection)
	if err != nil {
		cancel()
		return nil, err
	}

	sub := &Subscription{cancel: cancel, done: make(chan struct{})}
	go func() {
		defer close(sub.done)
		f.deliver(ctx, onSnapshot)
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-changes:
				if !ok {
					return
				}
				f.deliver(ctx, onSnapshot)
			}
		}
	}()
	return sub, nil
}

func (f *Feed[T]) deliver(ctx context.Context, onSnapshot func([]T)) {
	items, err := f.fetch(ctx)
	if err != nil {
		if ctx.Err() == nil {
			f.logger.Warn("listing refresh failed", zap.String("collection", f.collection), zap.Error(err))
		}
		return
	}
	if ctx.Err() != nil {
		return
	}
	if items == nil {
		items = []T{}
	}
	onSnapshot(items)
}

// Unsubscribe detaches the listener and waits for its goroutine to exit.
// It is safe to call more than once.
func (s *Subscription) Unsubscribe() {
	s.once.Do(s.cancel)
	<-s.done
}

// Done is closed when the subscription has stopped for any reason.
func (s *Subscription) Done() <-chan struct{} { return s.done }
