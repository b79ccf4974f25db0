package sessions

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/stratus-tools/bug-advisor/internal/utils"
)

// MemoryStore is the single-process fallback used when Redis is not
// configured. Expired sessions are dropped lazily on Get.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]Session
	now      func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]Session),
		now:      time.Now,
	}
}

func (s *MemoryStore) Create(ctx context.Context, username string, ttl time.Duration) (*Session, error) {
	sess := Session{
		Token:     uuid.NewString(),
		Username:  username,
		ExpiresAt: s.now().UTC().Add(ttl),
	}

	s.mu.Lock()
	s.sessions[sess.Token] = sess
	s.mu.Unlock()
	return &sess, nil
}

func (s *MemoryStore) Get(ctx context.Context, token string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[token]
	if !ok {
		return nil, utils.ErrNotFound
	}
	if !s.now().UTC().Before(sess.ExpiresAt) {
		delete(s.sessions, token)
		return nil, utils.ErrNotFound
	}
	return &sess, nil
}

func (s *MemoryStore) Delete(ctx context.Context, token string) error {
	s.mu.Lock()
	delete(s.sessions, token)
	s.mu.Unlock()
	return nil
}
