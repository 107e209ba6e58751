package querytree

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	models "steptree/internal/domain/models/querytree"

	"github.com/google/uuid"
)

// FetchToken identifies one fetch-and-map attempt. Tokens grow monotonically
// in the order fetches start.
type FetchToken uint64

// SnapshotStore publishes tree snapshots atomically. Readers always see a
// complete snapshot; a fetch may only publish if no newer fetch has started
// since it obtained its token.
type SnapshotStore struct {
	current atomic.Pointer[models.Snapshot]
	issued  atomic.Uint64
	now     func() time.Time

	mu       sync.Mutex
	inflight map[FetchToken]struct{}
	settled  chan struct{} // closed and replaced whenever a fetch ends
}

// NewSnapshotStore creates an empty store
func NewSnapshotStore() *SnapshotStore {
	return &SnapshotStore{
		now:      time.Now,
		inflight: make(map[FetchToken]struct{}),
		settled:  make(chan struct{}),
	}
}

// Begin issues the token for a new fetch. Every token must be passed to
// Done once the fetch has ended, published or not.
func (s *SnapshotStore) Begin() FetchToken {
	s.mu.Lock()
	defer s.mu.Unlock()
	token := FetchToken(s.issued.Add(1))
	s.inflight[token] = struct{}{}
	return token
}

// Done marks the fetch for token as ended and wakes WaitNewer callers
func (s *SnapshotStore) Done(token FetchToken) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.inflight[token]; !ok {
		return
	}
	delete(s.inflight, token)
	close(s.settled)
	s.settled = make(chan struct{})
}

// WaitNewer blocks until every fetch that started after token has ended
func (s *SnapshotStore) WaitNewer(ctx context.Context, token FetchToken) error {
	for {
		s.mu.Lock()
		pending := false
		for t := range s.inflight {
			if t > token {
				pending = true
				break
			}
		}
		settled := s.settled
		s.mu.Unlock()

		if !pending {
			return nil
		}
		select {
		case <-settled:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// IsCurrent reports whether token belongs to the newest fetch started
func (s *SnapshotStore) IsCurrent(token FetchToken) bool {
	return uint64(token) == s.issued.Load()
}

// Publish swaps in a snapshot built from nodes. It returns false and leaves
// the current snapshot alone when a newer fetch has begun, or when a snapshot
// from a newer token is already published.
func (s *SnapshotStore) Publish(token FetchToken, nodes []models.TreeNode) (*models.Snapshot, bool) {
	if !s.IsCurrent(token) {
		return nil, false
	}

	next := &models.Snapshot{
		Version:    uuid.NewString(),
		Generation: uint64(token),
		BuiltAt:    s.now().UTC(),
		Nodes:      nodes,
	}

	for {
		prev := s.current.Load()
		if prev != nil && prev.Generation >= next.Generation {
			return nil, false
		}
		if s.current.CompareAndSwap(prev, next) {
			return next, true
		}
	}
}

// Load returns the published snapshot or nil if none exists yet
func (s *SnapshotStore) Load() *models.Snapshot {
	return s.current.Load()
}
