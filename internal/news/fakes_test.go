// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package news_test

import (
	"context"
	"iter"
	"math/rand/v2"
	"sort"
	"sync"
	"time"

	"github.com/taibuivan/epaper/internal/news"
	"github.com/taibuivan/epaper/internal/platform/apperr"
	"github.com/taibuivan/epaper/pkg/uuid"
)

// # Object store

type storedObject struct {
	content     []byte
	contentType string
}

type keyFailure struct {
	err       error
	remaining int
}

// memoryStore is an in-memory [news.ObjectStore] with scripted failures and
// optional random latency.
type memoryStore struct {
	mu       sync.Mutex
	objects  map[string]storedObject
	failures map[string]*keyFailure
	puts     map[string]int
	deleted  []string
	maxDelay time.Duration
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		objects:  map[string]storedObject{},
		failures: map[string]*keyFailure{},
		puts:     map[string]int{},
	}
}

// failKey makes the next times puts of key fail with err.
func (s *memoryStore) failKey(key string, err error, times int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[key] = &keyFailure{err: err, remaining: times}
}

func (s *memoryStore) Put(ctx context.Context, key string, content []byte, contentType string) (string, error) {
	if s.maxDelay > 0 {
		select {
		case <-time.After(time.Duration(rand.Int64N(int64(s.maxDelay)))):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.puts[key]++
	if failure, ok := s.failures[key]; ok && failure.remaining > 0 {
		failure.remaining--
		return "", failure.err
	}

	s.objects[key] = storedObject{content: append([]byte(nil), content...), contentType: contentType}
	return "https://cdn.test/" + key, nil
}

func (s *memoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, key)
	s.deleted = append(s.deleted, key)
	return nil
}

func (s *memoryStore) object(key string) *storedObject {
	s.mu.Lock()
	defer s.mu.Unlock()
	object, ok := s.objects[key]
	if !ok {
		return nil
	}
	return &object
}

func (s *memoryStore) keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]string, 0, len(s.objects))
	for key := range s.objects {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func (s *memoryStore) putCount(key string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.puts[key]
}

func (s *memoryStore) deletedKeys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := append([]string(nil), s.deleted...)
	sort.Strings(keys)
	return keys
}

// stallingStore accepts deletes but holds every Put until the caller gives up.
type stallingStore struct {
	*memoryStore
}

func (s stallingStore) Put(ctx context.Context, _ string, _ []byte, _ string) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
}

// gatheringStore holds every Put until want uploads are in flight together.
type gatheringStore struct {
	*memoryStore
	want    int
	mu      sync.Mutex
	arrived int
	all     chan struct{}
}

func newGatheringStore(want int) *gatheringStore {
	return &gatheringStore{memoryStore: newMemoryStore(), want: want, all: make(chan struct{})}
}

func (s *gatheringStore) Put(ctx context.Context, key string, content []byte, contentType string) (string, error) {
	s.mu.Lock()
	s.arrived++
	if s.arrived == s.want {
		close(s.all)
	}
	s.mu.Unlock()

	select {
	case <-s.all:
		return s.memoryStore.Put(ctx, key, content, contentType)
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// # Rasterizer

// fakeRasterizer yields the scripted pages, then the scripted error if any.
type fakeRasterizer struct {
	mu    sync.Mutex
	pages [][]byte
	err   error
	calls int
}

func pagesOf(n int) [][]byte {
	pages := make([][]byte, n)
	for i := range pages {
		pages[i] = []byte{byte('a' + i)}
	}
	return pages
}

func (r *fakeRasterizer) Pages(document []byte) iter.Seq2[[]byte, error] {
	r.mu.Lock()
	r.calls++
	r.mu.Unlock()

	return func(yield func([]byte, error) bool) {
		for _, page := range r.pages {
			if !yield(page, nil) {
				return
			}
		}
		if r.err != nil {
			yield(nil, r.err)
		}
	}
}

func (r *fakeRasterizer) callCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

// # Repository

// memoryRepository is an in-memory [news.Repository].
type memoryRepository struct {
	mu          sync.Mutex
	rows        []*news.Publication
	createCalls int
	createErr   error
	existsErr   error
	clock       func() time.Time
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{clock: time.Now}
}

func (r *memoryRepository) Create(_ context.Context, publication *news.Publication) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.createCalls++
	if r.createErr != nil {
		return "", r.createErr
	}

	stored := *publication
	stored.ID = uuid.New()
	stored.CreatedAt = r.clock()
	r.rows = append(r.rows, &stored)
	return stored.ID, nil
}

func (r *memoryRepository) ExistsByIdentityKey(_ context.Context, identityKey string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.existsErr != nil {
		return false, r.existsErr
	}
	for _, row := range r.rows {
		if row.IdentityKey == identityKey {
			return true, nil
		}
	}
	return false, nil
}

func (r *memoryRepository) FindByID(_ context.Context, id string) (*news.Publication, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, row := range r.rows {
		if row.ID == id {
			return row, nil
		}
	}
	return nil, errNotFound
}

func (r *memoryRepository) FindLatestByDate(_ context.Context, date time.Time) (*news.Publication, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var latest *news.Publication
	for _, row := range r.rows {
		if row.PublicationDate.Equal(date) && (latest == nil || !row.CreatedAt.Before(latest.CreatedAt)) {
			latest = row
		}
	}
	if latest == nil {
		return nil, errNotFound
	}
	return latest, nil
}

func (r *memoryRepository) List(_ context.Context, limit, offset int) ([]*news.Publication, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rows := append([]*news.Publication(nil), r.rows...)
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].PublicationDate.After(rows[j].PublicationDate)
	})

	if offset >= len(rows) {
		return []*news.Publication{}, len(rows), nil
	}
	end := min(offset+limit, len(rows))
	return rows[offset:end], len(rows), nil
}

func (r *memoryRepository) creates() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.createCalls
}

var errNotFound error = apperr.NotFound("Publication")

// # Locker

// memoryLocker is an in-process [news.KeyLocker].
type memoryLocker struct {
	mu         sync.Mutex
	held       map[string]bool
	acquireErr error
}

func newMemoryLocker() *memoryLocker {
	return &memoryLocker{held: map[string]bool{}}
}

func (l *memoryLocker) Acquire(_ context.Context, key string, _ time.Duration) (func(context.Context) error, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.acquireErr != nil {
		return nil, l.acquireErr
	}
	if l.held[key] {
		return nil, news.ErrLockHeld
	}
	l.held[key] = true

	return func(context.Context) error {
		l.mu.Lock()
		defer l.mu.Unlock()
		delete(l.held, key)
		return nil
	}, nil
}

func (l *memoryLocker) isHeld(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.held[key]
}
