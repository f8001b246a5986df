package puttingservice

import (
	"context"
	"strconv"
	"sync"
	"time"

	leaguedomain "github.com/Black-And-White-Club/frolf-club/app/modules/league/domain"
	leaguedb "github.com/Black-And-White-Club/frolf-club/app/modules/league/infrastructure/repositories"
)

// ------------------------
// Fake League Store
// ------------------------

// FakeStore records calls and delegates to an in-memory store unless a Func is set.
type FakeStore struct {
	mu    sync.Mutex
	trace []string
	inner *leaguedb.MemoryStore

	ReadFunc     func(ctx context.Context) (leaguedomain.League, error)
	CommitFunc   func(ctx context.Context, patch leaguedomain.Patch) (leaguedomain.League, error)
	TransactFunc func(ctx context.Context, fn leaguedb.TxFunc) (leaguedomain.League, error)
}

func NewFakeStore() *FakeStore {
	inner := leaguedb.NewMemoryStore("test-league", 3)
	_, _ = inner.Ensure(context.Background())
	return &FakeStore{trace: []string{}, inner: inner}
}

func (f *FakeStore) record(step string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.trace = append(f.trace, step)
}

func (f *FakeStore) Trace() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.trace...)
}

func (f *FakeStore) Ensure(ctx context.Context) (leaguedomain.League, error) {
	f.record("Ensure")
	return f.inner.Ensure(ctx)
}

func (f *FakeStore) Read(ctx context.Context) (leaguedomain.League, error) {
	f.record("Read")
	if f.ReadFunc != nil {
		return f.ReadFunc(ctx)
	}
	return f.inner.Read(ctx)
}

func (f *FakeStore) Commit(ctx context.Context, patch leaguedomain.Patch) (leaguedomain.League, error) {
	f.record("Commit")
	if f.CommitFunc != nil {
		return f.CommitFunc(ctx, patch)
	}
	return f.inner.Commit(ctx, patch)
}

func (f *FakeStore) Transact(ctx context.Context, fn leaguedb.TxFunc) (leaguedomain.League, error) {
	f.record("Transact")
	if f.TransactFunc != nil {
		return f.TransactFunc(ctx, fn)
	}
	return f.inner.Transact(ctx, fn)
}

var _ leaguedb.Store = (*FakeStore)(nil)

// ------------------------
// Test clock and IDs
// ------------------------

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func sequentialIDs(prefix string) leaguedomain.IDGenerator {
	var (
		mu sync.Mutex
		n  int
	)
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return prefix + "-" + strconv.Itoa(n)
	}
}

// ------------------------
// Fake Archive
// ------------------------

type archivedObject struct {
	Key         string
	Body        []byte
	ContentType string
}

type FakeArchive struct {
	mu      sync.Mutex
	objects []archivedObject

	PutFunc func(ctx context.Context, key string, body []byte, contentType string) error
}

func (f *FakeArchive) Put(ctx context.Context, key string, body []byte, contentType string) error {
	if f.PutFunc != nil {
		return f.PutFunc(ctx, key, body, contentType)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects = append(f.objects, archivedObject{Key: key, Body: body, ContentType: contentType})
	return nil
}

func (f *FakeArchive) Objects() []archivedObject {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]archivedObject(nil), f.objects...)
}

var _ ObjectStore = (*FakeArchive)(nil)
