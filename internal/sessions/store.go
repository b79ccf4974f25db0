package sessions

import (
	"context"
	"time"
)

// Session is the opaque credential minted on admin login. The token is
// random; nothing is derivable from it without the store.
type Session struct {
	Token     string    `json:"token"`
	Username  string    `json:"username"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Store keeps live sessions keyed by token. Get must treat an expired
// session as absent; Delete is idempotent.
type Store interface {
	Create(ctx context.Context, username string, ttl time.Duration) (*Session, error)
	Get(ctx context.Context, token string) (*Session, error)
	Delete(ctx context.Context, token string) error
}
