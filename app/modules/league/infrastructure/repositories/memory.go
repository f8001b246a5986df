package leaguedb

import (
	"context"
	"fmt"
	"sync"

	leaguedomain "github.com/Black-And-White-Club/frolf-club/app/modules/league/domain"
)

// MemoryStore keeps the document in process. Used when no Postgres DSN is configured
// and in service tests.
type MemoryStore struct {
	mu          sync.Mutex
	leagueID    string
	doc         *leaguedomain.League
	version     int64
	maxAttempts int

	// beforeWrite runs between a transaction body and its version check. Tests use it
	// to inject a concurrent writer.
	beforeWrite func()
}

// NewMemoryStore creates an empty store for leagueID.
func NewMemoryStore(leagueID string, maxAttempts int) *MemoryStore {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	return &MemoryStore{leagueID: leagueID, maxAttempts: maxAttempts}
}

var _ Store = (*MemoryStore)(nil)

func (m *MemoryStore) Ensure(ctx context.Context) (leaguedomain.League, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.doc == nil {
		l := leaguedomain.NewLeague(m.leagueID)
		m.doc = &l
		m.version = 1
	}
	return m.doc.Clone(), nil
}

func (m *MemoryStore) Read(ctx context.Context) (leaguedomain.League, error) {
	l, _, err := m.snapshot()
	return l, err
}

func (m *MemoryStore) Commit(ctx context.Context, patch leaguedomain.Patch) (leaguedomain.League, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.doc == nil {
		return leaguedomain.League{}, ErrNotFound
	}
	if patch.Empty() {
		return m.doc.Clone(), nil
	}
	next := patch.Apply(*m.doc)
	m.doc = &next
	m.version++
	return next.Clone(), nil
}

func (m *MemoryStore) Transact(ctx context.Context, fn TxFunc) (leaguedomain.League, error) {
	for attempt := 1; attempt <= m.maxAttempts; attempt++ {
		snapshot, version, err := m.snapshot()
		if err != nil {
			return leaguedomain.League{}, err
		}

		patch, err := fn(snapshot)
		if err != nil {
			return leaguedomain.League{}, err
		}
		if patch.Empty() {
			return snapshot, nil
		}

		if m.beforeWrite != nil {
			m.beforeWrite()
		}

		m.mu.Lock()
		if m.version == version {
			next := patch.Apply(*m.doc)
			m.doc = &next
			m.version++
			m.mu.Unlock()
			return next.Clone(), nil
		}
		m.mu.Unlock()

		if err := ctx.Err(); err != nil {
			return leaguedomain.League{}, err
		}
	}
	return leaguedomain.League{}, fmt.Errorf("after %d attempts: %w", m.maxAttempts, ErrConflict)
}

// Version returns the number of writes applied, starting at 1 after Ensure.
func (m *MemoryStore) Version() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.version
}

func (m *MemoryStore) snapshot() (leaguedomain.League, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.doc == nil {
		return leaguedomain.League{}, 0, ErrNotFound
	}
	return m.doc.Clone(), m.version, nil
}
