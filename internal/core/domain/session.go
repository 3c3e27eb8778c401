package domain

import "time"

// SessionState is the authentication state of one client.
type SessionState string

const (
	SessionUnauthenticated SessionState = "unauthenticated"
	SessionAuthenticating  SessionState = "authenticating"
	SessionAuthenticated   SessionState = "authenticated"
)

var sessionTransitions = map[SessionState][]SessionState{
	SessionUnauthenticated: {SessionAuthenticating, SessionUnauthenticated},
	SessionAuthenticating:  {SessionAuthenticated, SessionUnauthenticated, SessionAuthenticating},
	SessionAuthenticated:   {SessionUnauthenticated, SessionAuthenticating, SessionAuthenticated},
}

// CanTransitionTo reports whether a session may move from s to next.
// Unauthenticated → Unauthenticated keeps sign-out idempotent,
// Authenticating → Authenticating restarts an abandoned attempt and
// Authenticated → Authenticated is a token refresh.
func (s SessionState) CanTransitionTo(next SessionState) bool {
	for _, allowed := range sessionTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// SessionRecord is the server-side state of a client session.
type SessionRecord struct {
	ClientID  string       `json:"client_id"`
	State     SessionState `json:"state"`
	User      *User        `json:"user,omitempty"`
	Identity  *Identity    `json:"identity,omitempty"`
	Token     string       `json:"token,omitempty"`
	ExpiresAt time.Time    `json:"expires_at,omitempty"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// ProviderSession is what the identity provider returns on a successful
// sign-in: a bearer token bound to a client.
type ProviderSession struct {
	Token     string
	ClientID  string
	Identity  Identity
	IssuedAt  time.Time
	ExpiresAt time.Time
	IsNewUser bool
}

// SessionEventKind classifies observer notifications.
type SessionEventKind string

const (
	SessionSignedIn       SessionEventKind = "signed_in"
	SessionSignedOut      SessionEventKind = "signed_out"
	SessionTokenRefreshed SessionEventKind = "token_refreshed"
	SessionFailed         SessionEventKind = "failed"
)

// SessionEvent is delivered to session observers on every identity change.
type SessionEvent struct {
	Kind     SessionEventKind
	ClientID string
	State    SessionState
	User     *User
	At       time.Time
}
