package form

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/akm12109/SDM-Admin/internal/domain"
	"github.com/akm12109/SDM-Admin/internal/repository"
	"github.com/akm12109/SDM-Admin/internal/upload"
)

type memRepo[T domain.Record] struct {
	mu        sync.Mutex
	order     []primitive.ObjectID
	records   map[primitive.ObjectID]T
	createErr error
	creates   int
	gets      int
}

func newMemRepo[T domain.Record]() *memRepo[T] {
	return &memRepo[T]{records: map[primitive.ObjectID]T{}}
}

func (r *memRepo[T]) Create(ctx context.Context, rec T) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.creates++
	if r.createErr != nil {
		return primitive.NilObjectID, r.createErr
	}
	id := primitive.NewObjectID()
	rec.SetID(id)
	if s, ok := any(rec).(domain.Stamped); ok {
		s.SetCreatedAt(time.Now().UTC())
	}
	r.order = append(r.order, id)
	r.records[id] = rec
	return id, nil
}

func (r *memRepo[T]) List(ctx context.Context) ([]T, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]T, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.records[id])
	}
	return out, nil
}

func (r *memRepo[T]) GetByID(ctx context.Context, id primitive.ObjectID) (T, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.gets++
	rec, ok := r.records[id]
	if !ok {
		var zero T
		return zero, repository.ErrNotFound
	}
	return rec, nil
}

func (r *memRepo[T]) Update(ctx context.Context, id primitive.ObjectID, rec T) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.records[id]; !ok {
		return repository.ErrNotFound
	}
	rec.SetID(id)
	r.records[id] = rec
	return nil
}

func (r *memRepo[T]) Delete(ctx context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.records[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.records, id)
	for i, v := range r.order {
		if v == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

type blobStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	puts    int
	putErr  error
	started chan struct{}
	release chan struct{}
}

func newBlobStore() *blobStore {
	return &blobStore{objects: map[string][]byte{}}
}

func (s *blobStore) PutObject(ctx context.Context, key string, body io.Reader, size int64, contentType string) error {
	s.mu.Lock()
	s.puts++
	started, release := s.started, s.release
	s.mu.Unlock()
	if started != nil {
		close(started)
		<-release
	}
	buf := make([]byte, 4096)
	var data []byte
	for {
		n, err := body.Read(buf)
		data = append(data, buf[:n]...)
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
	}
	if s.putErr != nil {
		return s.putErr
	}
	s.mu.Lock()
	s.objects[key] = data
	s.mu.Unlock()
	return nil
}

func (s *blobStore) ObjectURL(key string) string { return "https://media.school.test/" + key }

func (s *blobStore) get(url string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, data := range s.objects {
		if s.ObjectURL(key) == url {
			return data, true
		}
	}
	return nil, false
}

func image(name string, size int) *domain.File {
	data := bytes.Repeat([]byte{0x89}, size)
	return &domain.File{Name: name, ContentType: "image/png", Size: int64(size), Body: io.NopCloser(bytes.NewReader(data))}
}

func collect(ch <-chan State) func() []State {
	var mu sync.Mutex
	var states []State
	done := make(chan struct{})
	go func() {
		defer close(done)
		for st := range ch {
			mu.Lock()
			states = append(states, st)
			mu.Unlock()
		}
	}()
	return func() []State {
		<-done
		mu.Lock()
		defer mu.Unlock()
		return states
	}
}

func TestHomeworkSubmission(t *testing.T) {
	store := newBlobStore()
	repo := newMemRepo[*domain.Homework]()
	c := NewController(HomeworkSpec(), upload.NewUploader(store, nil, nil), repo)

	ch, stop := c.Observe()
	states := collect(ch)

	due := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	file := image("algebra.png", 200*1024)
	res, err := c.Submit(context.Background(), &domain.Homework{Title: "Algebra Set 1", DueDate: due}, file)
	require.NoError(t, err)
	stop()

	require.Len(t, res.Listing, 1)
	hw := res.Listing[0]
	assert.Equal(t, "Algebra Set 1", hw.Title)
	assert.Equal(t, "2024-05-01T00:00:00Z", hw.DueDate.Format(time.RFC3339))
	assert.False(t, hw.CreatedAt.IsZero())
	data, ok := store.get(hw.PhotoURL)
	require.True(t, ok)
	assert.Len(t, data, 200*1024)

	var maxPercent, last float64
	for _, st := range states() {
		if st.Phase == PhaseUploading || st.Phase == PhaseWriting {
			assert.GreaterOrEqual(t, st.Percent, last)
			last = st.Percent
			if st.Percent > maxPercent {
				maxPercent = st.Percent
			}
		}
	}
	assert.Equal(t, 100.0, maxPercent)
	assert.Equal(t, PhaseIdle, c.State().Phase)
	assert.Empty(t, c.State().Error)
}

func TestSubmitMissingFieldDoesNoIO(t *testing.T) {
	store := newBlobStore()
	repo := newMemRepo[*domain.Teacher]()
	c := NewController(TeacherSpec(), upload.NewUploader(store, nil, nil), repo)

	_, err := c.Submit(context.Background(), &domain.Teacher{Name: "Jane Doe"}, image("jane.png", 10))
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "subject", vErr.Field)
	assert.Zero(t, store.puts)
	assert.Zero(t, repo.creates)
	// Back to idle, with the message kept for the admin.
	assert.Equal(t, PhaseIdle, c.State().Phase)
	assert.Contains(t, c.State().Error, "subject")
}

func TestSubmitMissingRequiredFile(t *testing.T) {
	store := newBlobStore()
	repo := newMemRepo[*domain.Event]()
	c := NewController(EventSpec(), upload.NewUploader(store, nil, nil), repo)

	_, err := c.Submit(context.Background(), &domain.Event{Title: "Sports day", Date: "2024-06-01"}, nil)
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "image", vErr.Field)
	assert.Zero(t, store.puts)
	assert.Zero(t, repo.creates)
}

func TestSubmitRejectsWrongContentType(t *testing.T) {
	c := NewController(SlideSpec(), upload.NewUploader(newBlobStore(), nil, nil), newMemRepo[*domain.Slide]())
	file := image("notes.pdf", 10)
	file.ContentType = "application/pdf"

	_, err := c.Submit(context.Background(), &domain.Slide{Title: "t", Description: "d"}, file)
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "image", vErr.Field)
}

func TestUploadFailureSkipsWrite(t *testing.T) {
	store := newBlobStore()
	store.putErr = errors.New("connection reset")
	repo := newMemRepo[*domain.Slide]()
	c := NewController(SlideSpec(), upload.NewUploader(store, nil, nil), repo)

	ch, stop := c.Observe()
	states := collect(ch)

	_, err := c.Submit(context.Background(), &domain.Slide{Title: "t", Description: "d"}, image("s.png", 64))
	var uErr *upload.UploadError
	require.ErrorAs(t, err, &uErr)
	assert.Zero(t, repo.creates)
	stop()

	var phases []Phase
	for _, st := range states() {
		phases = append(phases, st.Phase)
	}
	require.GreaterOrEqual(t, len(phases), 2)
	assert.Equal(t, []Phase{PhaseFailed, PhaseIdle}, phases[len(phases)-2:])
	assert.Equal(t, PhaseIdle, c.State().Phase)
	assert.NotEmpty(t, c.State().Error)
}

func TestWriteFailureLeavesBlob(t *testing.T) {
	store := newBlobStore()
	repo := newMemRepo[*domain.Event]()
	repo.createErr = errors.New("store unavailable")
	core, logs := observer.New(zap.ErrorLevel)
	c := NewController(EventSpec(), upload.NewUploader(store, nil, nil), repo, WithLogger[*domain.Event](zap.New(core)))

	_, err := c.Submit(context.Background(), &domain.Event{Title: "Fair", Date: "2024-06-01"}, image("f.png", 64))
	var wErr *WriteError
	require.ErrorAs(t, err, &wErr)
	require.Len(t, store.objects, 1)
	for key := range store.objects {
		assert.Equal(t, key, wErr.Key)
	}
	assert.True(t, strings.HasPrefix(wErr.Key, NamespaceEvents+"/"))

	entries := logs.FilterField(zap.String("key", wErr.Key)).All()
	require.Len(t, entries, 1)
	assert.Equal(t, zap.ErrorLevel, entries[0].Level)
}

func TestWriteFailureWithoutFileHasNoKey(t *testing.T) {
	repo := newMemRepo[*domain.Notice]()
	repo.createErr = errors.New("store unavailable")
	c := NewController(NoticeSpec(), upload.NewUploader(newBlobStore(), nil, nil), repo)

	_, err := c.Submit(context.Background(), &domain.Notice{Message: "hello"}, nil)
	var wErr *WriteError
	require.ErrorAs(t, err, &wErr)
	assert.Empty(t, wErr.Key)
}

func TestConcurrentSubmitIsBusy(t *testing.T) {
	store := newBlobStore()
	store.started = make(chan struct{})
	store.release = make(chan struct{})
	c := NewController(SlideSpec(), upload.NewUploader(store, nil, nil), newMemRepo[*domain.Slide]())

	errs := make(chan error, 1)
	go func() {
		_, err := c.Submit(context.Background(), &domain.Slide{Title: "a", Description: "b"}, image("a.png", 8))
		errs <- err
	}()
	<-store.started

	_, err := c.Submit(context.Background(), &domain.Slide{Title: "c", Description: "d"}, image("c.png", 8))
	assert.ErrorIs(t, err, ErrBusy)

	close(store.release)
	require.NoError(t, <-errs)
	assert.Equal(t, 1, store.puts)
}

func TestEditWithoutFileKeepsPhoto(t *testing.T) {
	store := newBlobStore()
	repo := newMemRepo[*domain.Teacher]()
	c := NewController(TeacherSpec(), upload.NewUploader(store, nil, nil), repo)
	ctx := context.Background()

	created, err := c.Submit(ctx, &domain.Teacher{Name: "Jane", Subject: "Math"}, image("jane.png", 32))
	require.NoError(t, err)
	id := created.Record.ID
	photo := created.Record.PhotoURL
	require.NotEmpty(t, photo)

	prefilled, err := c.Prefill(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Jane", prefilled.Name)
	assert.Equal(t, PhasePrefilled, c.State().Phase)
	assert.Equal(t, id.Hex(), c.State().EditingID)

	edit := &domain.Teacher{Name: "Jane Roe", Subject: "Physics"}
	res, err := c.SubmitEdit(ctx, id, edit, nil)
	require.NoError(t, err)
	require.Len(t, res.Listing, 1)
	assert.Equal(t, "Jane Roe", res.Listing[0].Name)
	assert.Equal(t, photo, res.Listing[0].PhotoURL)
	assert.Equal(t, 1, store.puts)

	// The same update again leaves the same state.
	_, err = c.SubmitEdit(ctx, id, &domain.Teacher{Name: "Jane Roe", Subject: "Physics"}, nil)
	require.NoError(t, err)
	got, _ := repo.GetByID(ctx, id)
	assert.Equal(t, "Physics", got.Subject)
	assert.Equal(t, photo, got.PhotoURL)
}

func TestEditLeavesOtherRecordsUnchanged(t *testing.T) {
	repo := newMemRepo[*domain.Teacher]()
	c := NewController(TeacherSpec(), upload.NewUploader(newBlobStore(), nil, nil), repo)
	ctx := context.Background()

	for _, tc := range []domain.Teacher{
		{Name: "Asha", Subject: "Math"},
		{Name: "Ben", Subject: "History"},
		{Name: "Chen", Subject: "Art"},
	} {
		_, err := c.Submit(ctx, &tc, nil)
		require.NoError(t, err)
	}
	before, err := c.List(ctx)
	require.NoError(t, err)
	require.Len(t, before, 3)
	snapshot := make([]domain.Teacher, len(before))
	for i, tc := range before {
		snapshot[i] = *tc
	}

	target := before[1].ID
	res, err := c.SubmitEdit(ctx, target, &domain.Teacher{Name: "Ben", Subject: "Geography"}, nil)
	require.NoError(t, err)

	require.Len(t, res.Listing, 3)
	for i, tc := range res.Listing {
		assert.Equal(t, snapshot[i].ID, tc.ID, "listing order changed at %d", i)
		if tc.ID == target {
			assert.Equal(t, "Geography", tc.Subject)
			assert.Equal(t, "Ben", tc.Name)
			continue
		}
		assert.Equal(t, snapshot[i], *tc)
	}
}

func TestEditFailingValidationDoesNoIO(t *testing.T) {
	store := newBlobStore()
	repo := newMemRepo[*domain.Teacher]()
	c := NewController(TeacherSpec(), upload.NewUploader(store, nil, nil), repo)

	_, err := c.SubmitEdit(context.Background(), primitive.NewObjectID(), &domain.Teacher{Name: "Jane"}, image("jane.png", 8))
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "subject", vErr.Field)
	assert.Zero(t, repo.gets)
	assert.Zero(t, store.puts)
}

func TestEditMissingRecord(t *testing.T) {
	c := NewController(TeacherSpec(), upload.NewUploader(newBlobStore(), nil, nil), newMemRepo[*domain.Teacher]())

	_, err := c.SubmitEdit(context.Background(), primitive.NewObjectID(), &domain.Teacher{Name: "a", Subject: "b"}, nil)
	var wErr *WriteError
	require.ErrorAs(t, err, &wErr)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestDeleteThenListExcludesRecord(t *testing.T) {
	repo := newMemRepo[*domain.Notice]()
	c := NewController(NoticeSpec(), upload.NewUploader(newBlobStore(), nil, nil), repo)
	ctx := context.Background()

	first, err := c.Submit(ctx, &domain.Notice{Message: "one"}, nil)
	require.NoError(t, err)
	_, err = c.Submit(ctx, &domain.Notice{Message: "two"}, nil)
	require.NoError(t, err)

	items, err := c.Delete(ctx, first.Record.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "two", items[0].Message)

	_, err = c.Delete(ctx, first.Record.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestClassFormResetsMeetingLink(t *testing.T) {
	c := NewController(ClassSpec(), upload.NewUploader(newBlobStore(), nil, nil), newMemRepo[*domain.Class]())
	start := time.Date(2024, 5, 2, 9, 0, 0, 0, time.UTC)

	_, err := c.Submit(context.Background(), &domain.Class{Subject: "Biology", StartTime: start, JitsiLink: "https://meet.jitsi.com/Bio"}, nil)
	require.NoError(t, err)

	blank, ok := c.State().Values.(*domain.Class)
	require.True(t, ok)
	assert.Equal(t, domain.DefaultJitsiLink, blank.JitsiLink)
	assert.Empty(t, blank.Subject)
}

func TestRegistryIsolatesOwners(t *testing.T) {
	reg := NewRegistry(func() *Controller[*domain.Notice] {
		return NewController(NoticeSpec(), nil, newMemRepo[*domain.Notice]())
	})
	assert.Same(t, reg.For("a"), reg.For("a"))
	assert.NotSame(t, reg.For("a"), reg.For("b"))
	assert.Equal(t, "notice", reg.Observable("a").Name())
}
