package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/hirehub/jobboard/internal/core/domain"
	"github.com/hirehub/jobboard/internal/core/ports"
	"github.com/hirehub/jobboard/internal/pkg/metrics"
)

const defaultSessionTTL = 24 * time.Hour

// SessionGateway wraps the identity provider and owns the per-client session
// state machine. It is the only writer of session records.
type SessionGateway struct {
	idp        ports.IdentityProvider
	resolver   *ProfileResolver
	conn       ports.Connectivity
	sessions   ports.SessionStore
	limiter    ports.AttemptLimiter
	validate   *validator.Validate
	sessionTTL time.Duration
	log        zerolog.Logger

	mu        sync.Mutex
	observer  func(domain.SessionEvent)
	installed bool
}

// NewSessionGateway wires the gateway. conn must already be initialized.
// limiter may be nil to disable attempt limiting.
func NewSessionGateway(
	idp ports.IdentityProvider,
	resolver *ProfileResolver,
	conn ports.Connectivity,
	sessions ports.SessionStore,
	limiter ports.AttemptLimiter,
	sessionTTL time.Duration,
	log zerolog.Logger,
) *SessionGateway {
	if sessionTTL <= 0 {
		sessionTTL = defaultSessionTTL
	}
	return &SessionGateway{
		idp:        idp,
		resolver:   resolver,
		conn:       conn,
		sessions:   sessions,
		limiter:    limiter,
		validate:   validator.New(),
		sessionTTL: sessionTTL,
		log:        log,
	}
}

// Observe installs the session observer. Only one observer may be installed
// for the lifetime of the gateway; the returned function tears it down.
func (g *SessionGateway) Observe(fn func(domain.SessionEvent)) (func(), error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.installed {
		return nil, domain.ErrObserverInstalled
	}
	g.installed = true
	g.observer = fn
	return g.Shutdown, nil
}

// Shutdown removes the observer.
func (g *SessionGateway) Shutdown() {
	g.mu.Lock()
	g.observer = nil
	g.mu.Unlock()
}

func (g *SessionGateway) emit(kind domain.SessionEventKind, rec *domain.SessionRecord) {
	g.mu.Lock()
	fn := g.observer
	g.mu.Unlock()
	if fn == nil {
		return
	}
	fn(domain.SessionEvent{
		Kind:     kind,
		ClientID: rec.ClientID,
		State:    rec.State,
		User:     rec.User,
		At:       time.Now().UTC(),
	})
}

// SignInWithPassword signs in with email and password and creates a basic
// profile when none exists.
func (g *SessionGateway) SignInWithPassword(ctx context.Context, clientID, email, password string) (*ports.AuthSession, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return g.signIn(ctx, clientID, "password",
		func(ctx context.Context) (*domain.ProviderSession, error) {
			if err := g.checkAttempts(ctx, email); err != nil {
				return nil, err
			}
			ps, err := g.idp.SignInWithPassword(ctx, clientID, email, password)
			if err == nil && g.limiter != nil {
				if rerr := g.limiter.Reset(ctx, email); rerr != nil {
					g.log.Warn().Err(rerr).Msg("failed to reset sign-in attempts")
				}
			}
			return ps, err
		},
		func(ctx context.Context, ps *domain.ProviderSession) Resolution {
			return g.resolver.Ensure(ctx, ps.Identity, nil)
		},
	)
}

// SignInWithFederated completes a provider consent flow. First-time users get
// a profile seeded from the provider's name and photo.
func (g *SessionGateway) SignInWithFederated(ctx context.Context, clientID string, assertion ports.FederatedAssertion) (*ports.AuthSession, error) {
	return g.signIn(ctx, clientID, "federated",
		func(ctx context.Context) (*domain.ProviderSession, error) {
			if err := consentFlowError(assertion.Error); err != nil {
				return nil, err
			}
			if assertion.IDToken == "" {
				return nil, domain.ErrPopupClosed
			}
			return g.idp.SignInWithFederated(ctx, clientID, assertion.IDToken)
		},
		func(ctx context.Context, ps *domain.ProviderSession) Resolution {
			if !ps.IsNewUser {
				return g.resolver.Resolve(ctx, ps.Identity)
			}
			return g.resolver.Ensure(ctx, ps.Identity, &domain.Profile{
				Role:      domain.RoleJobSeeker,
				FullName:  ps.Identity.DisplayName,
				AvatarURL: ps.Identity.PhotoURL,
			})
		},
	)
}

// SignUp registers a new account. Email format and password strength are
// checked before the provider is called.
func (g *SessionGateway) SignUp(ctx context.Context, clientID string, in ports.RegisterInput) (*ports.AuthSession, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := g.validate.Var(in.Email, "required,email"); err != nil {
		metrics.AuthAttemptsTotal.WithLabelValues("signup", string(domain.AuthInvalidEmail)).Inc()
		return nil, domain.ErrInvalidEmail
	}
	if !domain.StrongPassword(in.Password) {
		metrics.AuthAttemptsTotal.WithLabelValues("signup", string(domain.AuthWeakPassword)).Inc()
		return nil, domain.ErrWeakPassword
	}
	seed, displayName, err := registrationProfile(in)
	if err != nil {
		return nil, err
	}

	return g.signIn(ctx, clientID, "signup",
		func(ctx context.Context) (*domain.ProviderSession, error) {
			return g.idp.SignUp(ctx, clientID, in.Email, in.Password, displayName)
		},
		func(ctx context.Context, ps *domain.ProviderSession) Resolution {
			return g.resolver.Ensure(ctx, ps.Identity, seed)
		},
	)
}

func registrationProfile(in ports.RegisterInput) (*domain.Profile, string, error) {
	switch in.Role {
	case domain.RoleEmployer:
		if strings.TrimSpace(in.CompanyName) == "" {
			return nil, "", fmt.Errorf("%w: company name is required", domain.ErrValidation)
		}
		return &domain.Profile{
			Role:            domain.RoleEmployer,
			CompanyName:     in.CompanyName,
			CompanyIndustry: in.CompanyIndustry,
			CompanySize:     in.CompanySize,
		}, in.CompanyName, nil
	case domain.RoleJobSeeker, "":
		if strings.TrimSpace(in.FullName) == "" {
			return nil, "", fmt.Errorf("%w: name is required", domain.ErrValidation)
		}
		return &domain.Profile{Role: domain.RoleJobSeeker, FullName: in.FullName}, in.FullName, nil
	default:
		return nil, "", fmt.Errorf("%w: unknown role %q", domain.ErrValidation, in.Role)
	}
}

// consentFlowError maps the client's consent flow error code.
func consentFlowError(code string) error {
	switch code {
	case "":
		return nil
	case string(domain.AuthPopupClosed), "cancelled-popup-request":
		return domain.ErrPopupClosed
	case string(domain.AuthPopupBlocked):
		return domain.ErrPopupBlocked
	case string(domain.AuthNetwork):
		return domain.ErrNetworkUnreachable
	default:
		return domain.NewAuthError(domain.AuthCode(code), nil)
	}
}

func (g *SessionGateway) checkAttempts(ctx context.Context, email string) error {
	if g.limiter == nil {
		return nil
	}
	ok, err := g.limiter.Allow(ctx, email)
	if err != nil {
		g.log.Warn().Err(err).Msg("attempt limiter unavailable, allowing sign-in")
		return nil
	}
	if !ok {
		return domain.ErrRateLimited
	}
	return nil
}

type providerCall func(ctx context.Context) (*domain.ProviderSession, error)
type profileStep func(ctx context.Context, ps *domain.ProviderSession) Resolution

// signIn drives Unauthenticated → Authenticating → Authenticated, falling
// back to Unauthenticated on any failure. Offline, the provider is never
// called.
func (g *SessionGateway) signIn(ctx context.Context, clientID, method string, call providerCall, resolve profileStep) (*ports.AuthSession, error) {
	rec, err := g.load(ctx, clientID)
	if err != nil {
		return nil, err
	}
	if err := g.transition(rec, domain.SessionAuthenticating); err != nil {
		return nil, err
	}
	if err := g.save(ctx, rec); err != nil {
		return nil, err
	}

	if !g.conn.IsOnline() {
		return nil, g.fail(ctx, rec, method, domain.ErrAuthOffline)
	}

	ps, err := call(ctx)
	if err != nil {
		return nil, g.fail(ctx, rec, method, err)
	}

	res := resolve(ctx, ps)
	return g.complete(ctx, rec, method, ps, res)
}

func (g *SessionGateway) complete(ctx context.Context, rec *domain.SessionRecord, method string, ps *domain.ProviderSession, res Resolution) (*ports.AuthSession, error) {
	if err := g.transition(rec, domain.SessionAuthenticated); err != nil {
		return nil, err
	}
	user := res.User
	identity := ps.Identity
	rec.User = &user
	rec.Identity = &identity
	rec.Token = ps.Token
	rec.ExpiresAt = ps.ExpiresAt
	if err := g.save(ctx, rec); err != nil {
		return nil, err
	}

	metrics.AuthAttemptsTotal.WithLabelValues(method, "ok").Inc()
	g.emit(domain.SessionSignedIn, rec)

	out := &ports.AuthSession{
		Token:     ps.Token,
		ExpiresAt: ps.ExpiresAt,
		State:     rec.State,
		User:      user,
	}
	if res.Warning != nil {
		out.Warning = "Signed in, but your profile could not be loaded or saved."
		g.log.Warn().Err(res.Warning).Str("uid", user.ID).Msg("partial sign-in")
	}
	g.log.Info().Str("uid", user.ID).Str("client_id", rec.ClientID).Str("method", method).Msg("signed in")
	return out, nil
}

func (g *SessionGateway) fail(ctx context.Context, rec *domain.SessionRecord, method string, cause error) error {
	err := normalizeAuthError(cause)

	if terr := g.transition(rec, domain.SessionUnauthenticated); terr == nil {
		rec.User, rec.Identity, rec.Token = nil, nil, ""
		if serr := g.save(context.WithoutCancel(ctx), rec); serr != nil {
			g.log.Warn().Err(serr).Str("client_id", rec.ClientID).Msg("failed to persist session failure")
		}
	}

	result := "error"
	var ae *domain.AuthError
	if errors.As(err, &ae) {
		result = string(ae.Code)
	}
	metrics.AuthAttemptsTotal.WithLabelValues(method, result).Inc()
	g.emit(domain.SessionFailed, rec)
	g.log.Warn().Err(err).Str("client_id", rec.ClientID).Str("method", method).Msg("sign-in failed")
	return err
}

// normalizeAuthError folds provider and transport failures into AuthErrors.
// Cancellation is returned untouched.
func normalizeAuthError(err error) error {
	var ae *domain.AuthError
	switch {
	case errors.As(err, &ae):
		return err
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	case errors.Is(err, domain.ErrOffline):
		return domain.NewAuthError(domain.AuthOffline, err)
	default:
		return domain.NewAuthError(domain.AuthNetwork, err)
	}
}

// SignOut clears the client's session. It succeeds locally even when the
// provider call fails and is a no-op for a signed-out client.
func (g *SessionGateway) SignOut(ctx context.Context, clientID string) error {
	rec, err := g.sessions.Get(ctx, clientID)
	if err != nil {
		if !errors.Is(err, domain.ErrSessionNotFound) {
			g.log.Warn().Err(err).Str("client_id", clientID).Msg("session lookup failed during sign-out")
		}
		rec = &domain.SessionRecord{ClientID: clientID, State: domain.SessionUnauthenticated}
	}
	wasSignedIn := rec.State != domain.SessionUnauthenticated

	if rec.Token != "" {
		if err := g.idp.SignOut(ctx, rec.Token); err != nil {
			g.log.Warn().Err(err).Str("client_id", clientID).Msg("provider sign-out failed, clearing local session")
		}
	}

	_ = g.transition(rec, domain.SessionUnauthenticated)
	rec.User, rec.Identity, rec.Token = nil, nil, ""
	rec.ExpiresAt = time.Time{}
	if err := g.save(ctx, rec); err != nil {
		g.log.Warn().Err(err).Str("client_id", clientID).Msg("failed to persist sign-out")
	}

	if wasSignedIn {
		g.emit(domain.SessionSignedOut, rec)
		g.log.Info().Str("client_id", clientID).Msg("signed out")
	}
	return nil
}

// Restore re-establishes a session from a bearer token. It reads the profile
// but never writes one.
func (g *SessionGateway) Restore(ctx context.Context, token string) (*ports.AuthSession, error) {
	ps, err := g.idp.Verify(ctx, token)
	if err != nil {
		metrics.AuthAttemptsTotal.WithLabelValues("restore", string(domain.AuthInvalidToken)).Inc()
		return nil, normalizeAuthError(err)
	}

	rec, err := g.load(ctx, ps.ClientID)
	if err != nil {
		return nil, err
	}
	// A token issued before the client signed out stays dead.
	if rec.State == domain.SessionUnauthenticated && !rec.UpdatedAt.IsZero() && !ps.IssuedAt.After(rec.UpdatedAt) {
		metrics.AuthAttemptsTotal.WithLabelValues("restore", string(domain.AuthInvalidToken)).Inc()
		return nil, domain.ErrInvalidToken
	}
	if rec.State == domain.SessionAuthenticated && rec.Token == token && rec.User != nil {
		return &ports.AuthSession{Token: token, ExpiresAt: rec.ExpiresAt, State: rec.State, User: *rec.User}, nil
	}

	if err := g.transition(rec, domain.SessionAuthenticating); err != nil {
		return nil, err
	}
	res := g.resolver.Resolve(ctx, ps.Identity)
	return g.complete(ctx, rec, "restore", ps, res)
}

// Authenticate resolves a bearer token to the session's user and client id.
func (g *SessionGateway) Authenticate(ctx context.Context, token string) (*domain.User, string, error) {
	ps, err := g.idp.Verify(ctx, token)
	if err != nil {
		return nil, "", normalizeAuthError(err)
	}

	rec, err := g.sessions.Get(ctx, ps.ClientID)
	switch {
	case errors.Is(err, domain.ErrSessionNotFound):
		s, rerr := g.Restore(ctx, token)
		if rerr != nil {
			return nil, "", rerr
		}
		return &s.User, ps.ClientID, nil
	case err != nil:
		return nil, "", fmt.Errorf("authenticate: %w", err)
	}

	if rec.State != domain.SessionAuthenticated || rec.Token != token || rec.User == nil {
		return nil, "", domain.ErrInvalidToken
	}
	return rec.User, ps.ClientID, nil
}

// Refresh rotates the client's token.
func (g *SessionGateway) Refresh(ctx context.Context, clientID string) (*ports.AuthSession, error) {
	rec, err := g.load(ctx, clientID)
	if err != nil {
		return nil, err
	}
	if rec.State != domain.SessionAuthenticated || rec.Token == "" {
		return nil, domain.ErrInvalidToken
	}
	if !g.conn.IsOnline() {
		return nil, domain.ErrAuthOffline
	}

	ps, err := g.idp.Refresh(ctx, rec.Token)
	if err != nil {
		metrics.AuthAttemptsTotal.WithLabelValues("refresh", "error").Inc()
		return nil, normalizeAuthError(err)
	}
	if err := g.transition(rec, domain.SessionAuthenticated); err != nil {
		return nil, err
	}
	rec.Token = ps.Token
	rec.ExpiresAt = ps.ExpiresAt
	if err := g.save(ctx, rec); err != nil {
		return nil, err
	}

	metrics.AuthAttemptsTotal.WithLabelValues("refresh", "ok").Inc()
	g.emit(domain.SessionTokenRefreshed, rec)
	return &ports.AuthSession{Token: ps.Token, ExpiresAt: ps.ExpiresAt, State: rec.State, User: *rec.User}, nil
}

// State returns the client's session state; unknown clients are
// Unauthenticated.
func (g *SessionGateway) State(ctx context.Context, clientID string) (domain.SessionState, error) {
	rec, err := g.load(ctx, clientID)
	if err != nil {
		return "", err
	}
	return rec.State, nil
}

// SetUser replaces the user cached on an authenticated session.
func (g *SessionGateway) SetUser(ctx context.Context, clientID string, user domain.User) error {
	rec, err := g.load(ctx, clientID)
	if err != nil {
		return err
	}
	if rec.State != domain.SessionAuthenticated {
		return domain.ErrSessionNotFound
	}
	rec.User = &user
	return g.save(ctx, rec)
}

func (g *SessionGateway) load(ctx context.Context, clientID string) (*domain.SessionRecord, error) {
	if clientID == "" {
		return nil, fmt.Errorf("%w: client id is required", domain.ErrValidation)
	}
	rec, err := g.sessions.Get(ctx, clientID)
	if errors.Is(err, domain.ErrSessionNotFound) {
		return &domain.SessionRecord{ClientID: clientID, State: domain.SessionUnauthenticated}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	return rec, nil
}

func (g *SessionGateway) transition(rec *domain.SessionRecord, next domain.SessionState) error {
	if !rec.State.CanTransitionTo(next) {
		return &domain.TransitionError{Entity: "session", From: string(rec.State), To: string(next)}
	}
	if rec.State != next {
		metrics.SessionTransitionsTotal.WithLabelValues(string(next)).Inc()
	}
	rec.State = next
	return nil
}

func (g *SessionGateway) save(ctx context.Context, rec *domain.SessionRecord) error {
	rec.UpdatedAt = time.Now().UTC()
	ttl := g.sessionTTL
	if !rec.ExpiresAt.IsZero() {
		if until := time.Until(rec.ExpiresAt); until > 0 {
			ttl = until
		}
	}
	if err := g.sessions.Put(ctx, rec, ttl); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}
