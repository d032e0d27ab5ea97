package listing

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/akm12109/SDM-Admin/internal/domain"
	"github.com/akm12109/SDM-Admin/internal/repository"
)

type fakeNotifier struct {
	changes  chan struct{}
	watchErr error
}

func (f *fakeNotifier) Watch(ctx context.Context, collection string) (<-chan struct{}, error) {
	if f.watchErr != nil {
		return nil, f.watchErr
	}
	return f.changes, nil
}

type counterSource struct {
	mu    sync.Mutex
	items []string
	calls atomic.Int32
}

func (s *counterSource) add(item string) {
	s.mu.Lock()
	s.items = append(s.items, item)
	s.mu.Unlock()
}

func (s *counterSource) fetch(ctx context.Context) ([]string, error) {
	s.calls.Add(1)
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.items...), nil
}

func receive(t *testing.T, ch <-chan []string) []string {
	t.Helper()
	select {
	case got := <-ch:
		return got
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for snapshot")
		return nil
	}
}

func TestViewRefreshReplacesSnapshot(t *testing.T) {
	src := &counterSource{items: []string{"a"}}
	view := NewView(src.fetch)
	assert.Empty(t, view.Snapshot())

	got, err := view.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, got)

	src.add("b")
	got, err = view.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, got)
	assert.Equal(t, []string{"a", "b"}, view.Snapshot())
}

func TestViewLateRefreshDoesNotOverwriteNewer(t *testing.T) {
	firstStarted := make(chan struct{})
	releaseFirst := make(chan struct{})
	var calls atomic.Int32
	view := NewView(func(ctx context.Context) ([]string, error) {
		if calls.Add(1) == 1 {
			close(firstStarted)
			<-releaseFirst
			return []string{"old"}, nil
		}
		return []string{"old", "new"}, nil
	})

	firstDone := make(chan []string, 1)
	go func() {
		got, err := view.Refresh(context.Background())
		assert.NoError(t, err)
		firstDone <- got
	}()
	<-firstStarted

	got, err := view.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"old", "new"}, got)

	close(releaseFirst)
	// Each caller still gets the list it fetched.
	assert.Equal(t, []string{"old"}, <-firstDone)
	assert.Equal(t, []string{"old", "new"}, view.Snapshot())
}

func TestViewRefreshErrorKeepsSnapshot(t *testing.T) {
	fail := false
	view := NewView(func(ctx context.Context) ([]int, error) {
		if fail {
			return nil, errors.New("store down")
		}
		return []int{1, 2}, nil
	})
	_, err := view.Refresh(context.Background())
	require.NoError(t, err)

	fail = true
	_, err = view.Refresh(context.Background())
	assert.Error(t, err)
	assert.Equal(t, []int{1, 2}, view.Snapshot())
}

func TestFeedDeliversSnapshotsUntilUnsubscribed(t *testing.T) {
	notifier := &fakeNotifier{changes: make(chan struct{})}
	src := &counterSource{items: []string{"Ada"}}
	feed := NewFeed(notifier, domain.CollectionUsers, src.fetch, nil)

	snapshots := make(chan []string, 8)
	sub, err := feed.Subscribe(context.Background(), func(items []string) { snapshots <- items })
	require.NoError(t, err)

	assert.Equal(t, []string{"Ada"}, receive(t, snapshots))

	src.add("Grace")
	notifier.changes <- struct{}{}
	assert.Equal(t, []string{"Ada", "Grace"}, receive(t, snapshots))

	sub.Unsubscribe()
	sub.Unsubscribe()
	calls := src.calls.Load()

	select {
	case notifier.changes <- struct{}{}:
		t.Fatal("detached subscription still consuming changes")
	case <-time.After(50 * time.Millisecond):
	}
	assert.Equal(t, calls, src.calls.Load())
	assert.Len(t, snapshots, 0)
}

func TestFeedStopsWhenNotifierCloses(t *testing.T) {
	notifier := &fakeNotifier{changes: make(chan struct{})}
	src := &counterSource{}
	feed := NewFeed(notifier, domain.CollectionUsers, src.fetch, nil)

	sub, err := feed.Subscribe(context.Background(), func([]string) {})
	require.NoError(t, err)
	close(notifier.changes)

	select {
	case <-sub.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("subscription did not stop")
	}
	sub.Unsubscribe()
}

func TestFeedWatchError(t *testing.T) {
	feed := NewFeed(&fakeNotifier{watchErr: errors.New("no replica set")}, "users",
		func(ctx context.Context) ([]string, error) { return nil, nil }, nil)
	_, err := feed.Subscribe(context.Background(), func([]string) {})
	assert.Error(t, err)
}

type stubRepo struct {
	repository.RecordRepository[*domain.Event]
	deleteErr error
}

func (s *stubRepo) Create(ctx context.Context, rec *domain.Event) (primitive.ObjectID, error) {
	return primitive.NewObjectID(), nil
}

func (s *stubRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	return s.deleteErr
}

type publisherSpy struct {
	published []string
	err       error
}

func (p *publisherSpy) Publish(ctx context.Context, collection string) error {
	p.published = append(p.published, collection)
	return p.err
}

func TestPublishingAnnouncesSuccessfulWrites(t *testing.T) {
	spy := &publisherSpy{}
	repo := Publishing[*domain.Event](&stubRepo{deleteErr: repository.ErrNotFound}, spy, domain.CollectionEvents, nil)

	_, err := repo.Create(context.Background(), &domain.Event{Title: "Fair"})
	require.NoError(t, err)
	err = repo.Delete(context.Background(), primitive.NewObjectID())
	assert.ErrorIs(t, err, repository.ErrNotFound)

	assert.Equal(t, []string{domain.CollectionEvents}, spy.published)
}

func TestPublishingIgnoresPublishFailure(t *testing.T) {
	spy := &publisherSpy{err: errors.New("redis down")}
	repo := Publishing[*domain.Event](&stubRepo{}, spy, domain.CollectionEvents, nil)

	_, err := repo.Create(context.Background(), &domain.Event{Title: "Fair"})
	assert.NoError(t, err)
}

func TestPublishingNilPublisherReturnsRepo(t *testing.T) {
	inner := &stubRepo{}
	assert.Same(t, inner, Publishing[*domain.Event](inner, nil, domain.CollectionEvents, nil))
}
