package domain

import "time"

// UnknownCompany is shown when an employer cannot be resolved.
const UnknownCompany = "Unknown Company"

// Company is the denormalized company record kept alongside employer profiles.
type Company struct {
	ID          string    `json:"id" bson:"_id"`
	Name        string    `json:"name" bson:"name"`
	LogoURL     string    `json:"logo_url,omitempty" bson:"logo_url,omitempty"`
	Industry    string    `json:"industry,omitempty" bson:"industry,omitempty"`
	Size        string    `json:"size,omitempty" bson:"size,omitempty"`
	Description string    `json:"description,omitempty" bson:"description,omitempty"`
	Website     string    `json:"website,omitempty" bson:"website,omitempty"`
	Location    string    `json:"location,omitempty" bson:"location,omitempty"`
	IsVerified  bool      `json:"is_verified" bson:"is_verified"`
	JobCount    int64     `json:"job_count" bson:"job_count"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" bson:"updated_at"`
}

// CompanyFromProfile builds the company record an employer profile implies.
func CompanyFromProfile(p *Profile) *Company {
	description := p.CompanyDescription
	if description == "" {
		description = p.Bio
	}
	return &Company{
		ID:          p.ID,
		Name:        p.CompanyName,
		LogoURL:     p.CompanyLogoURL,
		Industry:    p.CompanyIndustry,
		Size:        p.CompanySize,
		Description: description,
		Website:     p.CompanyWebsite,
		Location:    p.Location,
	}
}

// CompanyFields maps an employer profile update onto company record fields.
// Only defined values are included.
func CompanyFields(u *ProfileUpdate) map[string]any {
	out := make(map[string]any)
	set := func(key string, v *string) {
		if v != nil {
			out[key] = *v
		}
	}
	set("name", u.CompanyName)
	set("logo_url", u.CompanyLogoURL)
	set("industry", u.CompanyIndustry)
	set("size", u.CompanySize)
	set("website", u.CompanyWebsite)
	set("location", u.Location)
	switch {
	case u.CompanyDescription != nil:
		out["description"] = *u.CompanyDescription
	case u.Bio != nil:
		out["description"] = *u.Bio
	}
	return out
}
