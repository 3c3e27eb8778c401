package domain

import "time"

const (
	RoleJobSeeker = "jobseeker"
	RoleEmployer  = "employer"
)

const (
	ProviderPassword  = "password"
	ProviderFederated = "federated"
)

// ValidRole reports whether role is one of the two account roles.
func ValidRole(role string) bool {
	return role == RoleJobSeeker || role == RoleEmployer
}

// Identity is what the identity provider knows about a signed-in principal.
type Identity struct {
	UID         string `json:"uid"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name,omitempty"`
	PhotoURL    string `json:"photo_url,omitempty"`
	Provider    string `json:"provider"`
}

// User is the normalized view of a signed-in actor, merged from the identity
// and the stored profile.
type User struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	Role      string `json:"role"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

// IsEmployer reports whether the user acts on behalf of a company.
func (u User) IsEmployer() bool { return u.Role == RoleEmployer }

// MinimalUser synthesizes a user from identity fields alone.
func MinimalUser(id Identity) User {
	return User{
		ID:        id.UID,
		Email:     id.Email,
		Name:      id.DisplayName,
		Role:      RoleJobSeeker,
		AvatarURL: id.PhotoURL,
	}
}

// Account is the identity provider's credential record.
type Account struct {
	UID              string    `json:"uid" bson:"_id"`
	Email            string    `json:"email" bson:"email"`
	PasswordHash     string    `json:"-" bson:"password_hash,omitempty"`
	FederatedSubject string    `json:"-" bson:"federated_subject,omitempty"`
	DisplayName      string    `json:"display_name,omitempty" bson:"display_name,omitempty"`
	PhotoURL         string    `json:"photo_url,omitempty" bson:"photo_url,omitempty"`
	CreatedAt        time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt        time.Time `json:"updated_at" bson:"updated_at"`
}

// Identity projects the account into a provider identity.
func (a *Account) Identity(provider string) Identity {
	return Identity{
		UID:         a.UID,
		Email:       a.Email,
		DisplayName: a.DisplayName,
		PhotoURL:    a.PhotoURL,
		Provider:    provider,
	}
}
