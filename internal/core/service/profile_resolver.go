package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/hirehub/jobboard/internal/core/domain"
	"github.com/hirehub/jobboard/internal/core/ports"
)

// Resolution is a resolved user plus a non-blocking warning when the profile
// could not be read or written.
type Resolution struct {
	User    domain.User
	Profile *domain.Profile
	Created bool
	Warning error
}

// ProfileResolver turns a provider identity into a User.
type ProfileResolver struct {
	profiles  ports.ProfileRepository
	companies ports.CompanyRepository
	conn      ports.Connectivity
	log       zerolog.Logger
}

func NewProfileResolver(profiles ports.ProfileRepository, companies ports.CompanyRepository, conn ports.Connectivity, log zerolog.Logger) *ProfileResolver {
	return &ProfileResolver{profiles: profiles, companies: companies, conn: conn, log: log}
}

// Resolve reads the profile and merges it over the identity. It never writes.
// Offline it returns the identity-only user without touching the store.
func (r *ProfileResolver) Resolve(ctx context.Context, id domain.Identity) Resolution {
	if !r.conn.IsOnline() {
		return Resolution{User: domain.MinimalUser(id)}
	}

	p, err := r.profiles.FindByID(ctx, id.UID)
	switch {
	case err == nil:
		return Resolution{User: p.MergeUser(id), Profile: p}
	case errors.Is(err, domain.ErrProfileNotFound):
		return Resolution{User: domain.MinimalUser(id)}
	default:
		r.log.Warn().Err(err).Str("uid", id.UID).Msg("profile lookup failed, using identity fields")
		return Resolution{User: domain.MinimalUser(id), Warning: fmt.Errorf("profile unavailable: %w", err)}
	}
}

// Ensure resolves the profile and creates it from seed when absent. A nil
// seed creates a basic job seeker profile from the identity.
func (r *ProfileResolver) Ensure(ctx context.Context, id domain.Identity, seed *domain.Profile) Resolution {
	res := r.Resolve(ctx, id)
	if res.Profile != nil || res.Warning != nil || !r.conn.IsOnline() {
		return res
	}

	now := time.Now().UTC()
	p := seed
	if p == nil {
		p = &domain.Profile{
			Role:      domain.RoleJobSeeker,
			FullName:  id.DisplayName,
			AvatarURL: id.PhotoURL,
		}
	}
	p.ID = id.UID
	p.Email = id.Email
	if p.Role == "" {
		p.Role = domain.RoleJobSeeker
	}
	p.CreatedAt = now
	p.UpdatedAt = now

	if err := r.profiles.Create(ctx, p); err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) {
			// Created concurrently by another sign-in of the same user.
			return r.Resolve(ctx, id)
		}
		r.log.Warn().Err(err).Str("uid", id.UID).Msg("failed to create profile")
		return Resolution{User: domain.MinimalUser(id), Warning: fmt.Errorf("profile not created: %w", err)}
	}

	r.log.Info().Str("uid", id.UID).Str("role", p.Role).Msg("profile created")
	res = Resolution{User: p.MergeUser(id), Profile: p, Created: true}

	if p.Role == domain.RoleEmployer && r.companies != nil {
		c := domain.CompanyFromProfile(p)
		c.CreatedAt = now
		c.UpdatedAt = now
		if err := r.companies.Create(ctx, c); err != nil && !errors.Is(err, domain.ErrAlreadyExists) {
			r.log.Warn().Err(err).Str("uid", id.UID).Msg("failed to create company record")
			res.Warning = fmt.Errorf("company record not created: %w", err)
		}
	}
	return res
}
