package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/hirehub/jobboard/internal/core/domain"
	"github.com/hirehub/jobboard/internal/core/ports"
)

const defaultTokenTTL = time.Hour

// Config binds the provider to a project. ProjectID is the issuer of every
// session token. Federated ID tokens are verified with FederatedSecret and,
// when set, must carry FederatedIssuer.
type Config struct {
	ProjectID       string
	SigningSecret   string
	FederatedSecret string
	FederatedIssuer string
	TokenTTL        time.Duration
	BcryptCost      int
}

type sessionClaims struct {
	Email    string `json:"email"`
	Name     string `json:"name,omitempty"`
	Picture  string `json:"picture,omitempty"`
	ClientID string `json:"client_id"`
	Provider string `json:"provider"`
	jwt.RegisteredClaims
}

type federatedClaims struct {
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
	jwt.RegisteredClaims
}

// Provider implements ports.IdentityProvider with bcrypt accounts and HS256
// session tokens.
type Provider struct {
	accounts ports.AccountRepository
	denylist ports.TokenDenylist
	cfg      Config
	log      zerolog.Logger
	now      func() time.Time
}

func NewProvider(accounts ports.AccountRepository, denylist ports.TokenDenylist, cfg Config, log zerolog.Logger) *Provider {
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = defaultTokenTTL
	}
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = bcrypt.DefaultCost
	}
	return &Provider{
		accounts: accounts,
		denylist: denylist,
		cfg:      cfg,
		log:      log.With().Str("component", "identity").Logger(),
		now:      time.Now,
	}
}

func (p *Provider) SignInWithPassword(ctx context.Context, clientID, email, password string) (*domain.ProviderSession, error) {
	acc, err := p.accounts.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if acc.PasswordHash == "" {
		return nil, domain.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(acc.PasswordHash), []byte(password)); err != nil {
		return nil, domain.ErrInvalidCredentials
	}
	return p.issue(clientID, acc.Identity(domain.ProviderPassword), false)
}

func (p *Provider) SignUp(ctx context.Context, clientID, email, password, displayName string) (*domain.ProviderSession, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), p.cfg.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := p.now().UTC()
	acc := &domain.Account{
		UID:          uuid.NewString(),
		Email:        email,
		PasswordHash: string(hash),
		DisplayName:  displayName,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := p.accounts.Create(ctx, acc); err != nil {
		return nil, err
	}
	p.log.Info().Str("uid", acc.UID).Msg("account created")
	return p.issue(clientID, acc.Identity(domain.ProviderPassword), true)
}

// SignInWithFederated verifies the external ID token and signs the subject
// in, creating the account on first use.
func (p *Provider) SignInWithFederated(ctx context.Context, clientID, idToken string) (*domain.ProviderSession, error) {
	claims := &federatedClaims{}
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if p.cfg.FederatedIssuer != "" {
		opts = append(opts, jwt.WithIssuer(p.cfg.FederatedIssuer))
	}
	if _, err := jwt.ParseWithClaims(idToken, claims, p.key(p.cfg.FederatedSecret), opts...); err != nil {
		return nil, domain.NewAuthError(domain.AuthInvalidToken, err)
	}
	if claims.Subject == "" || claims.Email == "" {
		return nil, domain.NewAuthError(domain.AuthInvalidToken, errors.New("subject and email are required"))
	}

	acc, err := p.accounts.FindByFederatedSubject(ctx, claims.Subject)
	switch {
	case err == nil:
		return p.issue(clientID, acc.Identity(domain.ProviderFederated), false)
	case !errors.Is(err, domain.ErrUserNotFound):
		return nil, err
	}

	now := p.now().UTC()
	acc = &domain.Account{
		UID:              uuid.NewString(),
		Email:            claims.Email,
		FederatedSubject: claims.Subject,
		DisplayName:      claims.Name,
		PhotoURL:         claims.Picture,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := p.accounts.Create(ctx, acc); err != nil {
		return nil, err
	}
	p.log.Info().Str("uid", acc.UID).Msg("federated account created")
	return p.issue(clientID, acc.Identity(domain.ProviderFederated), true)
}

// SignOut revokes the token until it would have expired. Already expired
// tokens need no revocation.
func (p *Provider) SignOut(ctx context.Context, token string) error {
	claims, err := p.parse(token, jwt.WithoutClaimsValidation())
	if err != nil {
		return err
	}
	if claims.ExpiresAt == nil {
		return nil
	}
	if err := p.denylist.Revoke(ctx, claims.ID, claims.ExpiresAt.Sub(p.now())); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

func (p *Provider) Verify(ctx context.Context, token string) (*domain.ProviderSession, error) {
	claims, err := p.parse(token)
	if err != nil {
		return nil, err
	}
	revoked, err := p.denylist.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("check revocation: %w", err)
	}
	if revoked {
		return nil, domain.NewAuthError(domain.AuthInvalidToken, errors.New("token revoked"))
	}
	ps := &domain.ProviderSession{
		Token:     token,
		ClientID:  claims.ClientID,
		Identity:  claims.identity(),
		ExpiresAt: claims.ExpiresAt.Time,
	}
	if claims.IssuedAt != nil {
		ps.IssuedAt = claims.IssuedAt.Time
	}
	return ps, nil
}

// Refresh exchanges a valid token for a new one and revokes the old.
func (p *Provider) Refresh(ctx context.Context, token string) (*domain.ProviderSession, error) {
	current, err := p.Verify(ctx, token)
	if err != nil {
		return nil, err
	}
	next, err := p.issue(current.ClientID, current.Identity, false)
	if err != nil {
		return nil, err
	}
	if err := p.SignOut(ctx, token); err != nil {
		p.log.Warn().Err(err).Str("uid", current.Identity.UID).Msg("failed to revoke refreshed token")
	}
	return next, nil
}

func (p *Provider) issue(clientID string, id domain.Identity, isNew bool) (*domain.ProviderSession, error) {
	now := p.now()
	exp := now.Add(p.cfg.TokenTTL)
	claims := sessionClaims{
		Email:    id.Email,
		Name:     id.DisplayName,
		Picture:  id.PhotoURL,
		ClientID: clientID,
		Provider: id.Provider,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   id.UID,
			Issuer:    p.cfg.ProjectID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(p.cfg.SigningSecret))
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	return &domain.ProviderSession{
		Token:     signed,
		ClientID:  clientID,
		Identity:  id,
		IssuedAt:  now,
		ExpiresAt: exp,
		IsNewUser: isNew,
	}, nil
}

func (p *Provider) parse(token string, extra ...jwt.ParserOption) (*sessionClaims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, domain.ErrInvalidToken
	}

	opts := append([]jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(p.cfg.ProjectID),
		jwt.WithTimeFunc(p.now),
		jwt.WithExpirationRequired(),
	}, extra...)

	claims := &sessionClaims{}
	if _, err := jwt.ParseWithClaims(token, claims, p.key(p.cfg.SigningSecret), opts...); err != nil {
		return nil, domain.NewAuthError(domain.AuthInvalidToken, err)
	}
	if claims.Subject == "" {
		return nil, domain.NewAuthError(domain.AuthInvalidToken, errors.New("missing subject"))
	}
	return claims, nil
}

func (p *Provider) key(secret string) jwt.Keyfunc {
	return func(*jwt.Token) (any, error) {
		return []byte(secret), nil
	}
}

func (c *sessionClaims) identity() domain.Identity {
	return domain.Identity{
		UID:         c.Subject,
		Email:       c.Email,
		DisplayName: c.Name,
		PhotoURL:    c.Picture,
		Provider:    c.Provider,
	}
}
