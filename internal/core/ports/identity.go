package ports

import (
	"context"
	"time"

	"github.com/hirehub/jobboard/internal/core/domain"
)

// IdentityProvider issues and verifies session tokens. Failures are
// *domain.AuthError values.
type IdentityProvider interface {
	SignInWithPassword(ctx context.Context, clientID, email, password string) (*domain.ProviderSession, error)
	// SignInWithFederated exchanges the provider's ID token from a completed
	// consent flow.
	SignInWithFederated(ctx context.Context, clientID, idToken string) (*domain.ProviderSession, error)
	SignUp(ctx context.Context, clientID, email, password, displayName string) (*domain.ProviderSession, error)
	SignOut(ctx context.Context, token string) error
	// Verify is the current-identity accessor for a bearer token.
	Verify(ctx context.Context, token string) (*domain.ProviderSession, error)
	Refresh(ctx context.Context, token string) (*domain.ProviderSession, error)
}

// AccountRepository stores identity provider accounts.
type AccountRepository interface {
	FindByEmail(ctx context.Context, email string) (*domain.Account, error)
	FindByFederatedSubject(ctx context.Context, subject string) (*domain.Account, error)
	// Create returns domain.ErrUserExists on a duplicate email.
	Create(ctx context.Context, a *domain.Account) error
}

// TokenDenylist remembers revoked token ids until they would have expired.
type TokenDenylist interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// SessionStore keeps client session records.
type SessionStore interface {
	// Get returns domain.ErrSessionNotFound when the client has no record.
	Get(ctx context.Context, clientID string) (*domain.SessionRecord, error)
	Put(ctx context.Context, rec *domain.SessionRecord, ttl time.Duration) error
}

// AttemptLimiter counts sign-in attempts per key within a window.
type AttemptLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
	Reset(ctx context.Context, key string) error
}
