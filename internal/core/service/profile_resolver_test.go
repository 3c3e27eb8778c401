package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/hirehub/jobboard/internal/core/domain"
)

var testIdentity = domain.Identity{
	UID:         "u-1",
	Email:       "ada@example.com",
	DisplayName: "Ada Lovelace",
	PhotoURL:    "https://img.test/ada.png",
	Provider:    domain.ProviderPassword,
}

func TestProfileResolver_Resolve_OfflineTouchesNothing(t *testing.T) {
	profiles := newFakeProfiles(&domain.Profile{ID: "u-1", Role: domain.RoleEmployer, CompanyName: "Acme"})
	r := NewProfileResolver(profiles, newFakeCompanies(), offlineConn(), zerolog.Nop())

	start := time.Now()
	res := r.Resolve(context.Background(), testIdentity)
	if elapsed := time.Since(start); elapsed > 50*time.Millisecond {
		t.Errorf("expected immediate return, took %s", elapsed)
	}

	if profiles.calls != 0 {
		t.Errorf("expected zero store calls, got %d", profiles.calls)
	}
	want := domain.User{
		ID:        "u-1",
		Email:     "ada@example.com",
		Name:      "Ada Lovelace",
		Role:      domain.RoleJobSeeker,
		AvatarURL: "https://img.test/ada.png",
	}
	if res.User != want {
		t.Errorf("expected %+v, got %+v", want, res.User)
	}
	if res.Warning != nil {
		t.Errorf("expected no warning offline, got %v", res.Warning)
	}
}

func TestProfileResolver_Resolve_MergesStoredProfile(t *testing.T) {
	profiles := newFakeProfiles(&domain.Profile{
		ID:             "u-1",
		Role:           domain.RoleEmployer,
		CompanyName:    "Acme",
		CompanyLogoURL: "https://img.test/acme.png",
	})
	r := NewProfileResolver(profiles, newFakeCompanies(), onlineConn(), zerolog.Nop())

	res := r.Resolve(context.Background(), testIdentity)
	if res.User.Role != domain.RoleEmployer {
		t.Errorf("expected employer role, got %s", res.User.Role)
	}
	if res.User.Name != "Acme" || res.User.AvatarURL != "https://img.test/acme.png" {
		t.Errorf("expected company name and logo, got %+v", res.User)
	}
}

func TestProfileResolver_Resolve_MissingProfileDoesNotWrite(t *testing.T) {
	profiles := newFakeProfiles()
	r := NewProfileResolver(profiles, newFakeCompanies(), onlineConn(), zerolog.Nop())

	res := r.Resolve(context.Background(), testIdentity)
	if res.Profile != nil || res.Created {
		t.Errorf("expected no profile, got %+v", res)
	}
	if profiles.get("u-1") != nil {
		t.Error("expected resolve not to create a profile")
	}
}

func TestProfileResolver_Ensure_CreatesOnce(t *testing.T) {
	profiles := newFakeProfiles()
	r := NewProfileResolver(profiles, newFakeCompanies(), onlineConn(), zerolog.Nop())

	first := r.Ensure(context.Background(), testIdentity, nil)
	if !first.Created {
		t.Fatal("expected the profile to be created")
	}
	second := r.Ensure(context.Background(), testIdentity, nil)
	if second.Created {
		t.Error("expected the second call to reuse the profile")
	}
	if second.User != first.User {
		t.Errorf("expected the same user, got %+v and %+v", first.User, second.User)
	}
}

func TestProfileResolver_Ensure_CreateFailureIsWarning(t *testing.T) {
	profiles := newFakeProfiles()
	profiles.createErr = errors.New("permission denied")
	r := NewProfileResolver(profiles, newFakeCompanies(), onlineConn(), zerolog.Nop())

	res := r.Ensure(context.Background(), testIdentity, nil)
	if res.Warning == nil {
		t.Fatal("expected a warning")
	}
	if res.User.ID != "u-1" || res.User.Role != domain.RoleJobSeeker {
		t.Errorf("expected identity-only user, got %+v", res.User)
	}
}
