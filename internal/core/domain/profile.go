package domain

import (
	"strings"
	"time"
)

// ExperienceEntry is one position in a job seeker's work history.
type ExperienceEntry struct {
	Title       string `json:"title" bson:"title"`
	Company     string `json:"company" bson:"company"`
	StartDate   string `json:"start_date,omitempty" bson:"start_date,omitempty"`
	EndDate     string `json:"end_date,omitempty" bson:"end_date,omitempty"`
	Current     bool   `json:"current,omitempty" bson:"current,omitempty"`
	Description string `json:"description,omitempty" bson:"description,omitempty"`
}

// EducationEntry is one degree in a job seeker's history.
type EducationEntry struct {
	Institution  string `json:"institution" bson:"institution"`
	Degree       string `json:"degree" bson:"degree"`
	FieldOfStudy string `json:"field_of_study,omitempty" bson:"field_of_study,omitempty"`
	StartDate    string `json:"start_date,omitempty" bson:"start_date,omitempty"`
	EndDate      string `json:"end_date,omitempty" bson:"end_date,omitempty"`
}

// Profile is the role-specific extension of a user, keyed by user id.
type Profile struct {
	ID                 string            `json:"id" bson:"_id"`
	Role               string            `json:"role" bson:"role"`
	Email              string            `json:"email" bson:"email"`
	FullName           string            `json:"full_name,omitempty" bson:"full_name,omitempty"`
	AvatarURL          string            `json:"avatar_url,omitempty" bson:"avatar_url,omitempty"`
	Title              string            `json:"title,omitempty" bson:"title,omitempty"`
	Bio                string            `json:"bio,omitempty" bson:"bio,omitempty"`
	Location           string            `json:"location,omitempty" bson:"location,omitempty"`
	Phone              string            `json:"phone,omitempty" bson:"phone,omitempty"`
	Website            string            `json:"website,omitempty" bson:"website,omitempty"`
	Skills             []string          `json:"skills,omitempty" bson:"skills,omitempty"`
	Experience         []ExperienceEntry `json:"experience,omitempty" bson:"experience,omitempty"`
	Education          []EducationEntry  `json:"education,omitempty" bson:"education,omitempty"`
	ResumeURL          string            `json:"resume_url,omitempty" bson:"resume_url,omitempty"`
	CompanyName        string            `json:"company_name,omitempty" bson:"company_name,omitempty"`
	CompanySize        string            `json:"company_size,omitempty" bson:"company_size,omitempty"`
	CompanyIndustry    string            `json:"company_industry,omitempty" bson:"company_industry,omitempty"`
	CompanyDescription string            `json:"company_description,omitempty" bson:"company_description,omitempty"`
	CompanyLogoURL     string            `json:"company_logo_url,omitempty" bson:"company_logo_url,omitempty"`
	CompanyWebsite     string            `json:"company_website,omitempty" bson:"company_website,omitempty"`
	CreatedAt          time.Time         `json:"created_at" bson:"created_at"`
	UpdatedAt          time.Time         `json:"updated_at" bson:"updated_at"`
}

// HasCompanyFields reports whether the profile carries enough company data to
// stand in for a company record.
func (p *Profile) HasCompanyFields() bool {
	return p.Role == RoleEmployer && p.CompanyName != ""
}

// MergeUser overlays stored profile fields on the identity. An unknown stored
// role keeps the job seeker default.
func (p *Profile) MergeUser(id Identity) User {
	u := MinimalUser(id)
	if ValidRole(p.Role) {
		u.Role = p.Role
	}
	if p.Email != "" && u.Email == "" {
		u.Email = p.Email
	}
	u.Name = firstNonEmpty(p.FullName, p.CompanyName, id.DisplayName)
	u.AvatarURL = firstNonEmpty(p.AvatarURL, p.CompanyLogoURL, id.PhotoURL)
	return u
}

// ProfileUpdate carries a partial profile write. Nil fields are left untouched.
type ProfileUpdate struct {
	FullName           *string
	AvatarURL          *string
	Title              *string
	Bio                *string
	Location           *string
	Phone              *string
	Website            *string
	Skills             *[]string
	Experience         *[]ExperienceEntry
	Education          *[]EducationEntry
	ResumeURL          *string
	CompanyName        *string
	CompanySize        *string
	CompanyIndustry    *string
	CompanyDescription *string
	CompanyLogoURL     *string
	CompanyWebsite     *string
}

const blobScheme = "blob:"

// IsBlobURL reports whether u points at a not-yet-uploaded local object.
func IsBlobURL(u string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(u)), blobScheme)
}

// DropBlobURLs clears image fields that still reference local objects and
// returns the names of the dropped fields.
func (u *ProfileUpdate) DropBlobURLs() []string {
	var dropped []string
	if u.AvatarURL != nil && IsBlobURL(*u.AvatarURL) {
		u.AvatarURL = nil
		dropped = append(dropped, "avatar_url")
	}
	if u.CompanyLogoURL != nil && IsBlobURL(*u.CompanyLogoURL) {
		u.CompanyLogoURL = nil
		dropped = append(dropped, "company_logo_url")
	}
	return dropped
}

// Fields returns the defined fields keyed by their stored name.
func (u *ProfileUpdate) Fields() map[string]any {
	out := make(map[string]any)
	setString := func(key string, v *string) {
		if v != nil {
			out[key] = *v
		}
	}
	setString("full_name", u.FullName)
	setString("avatar_url", u.AvatarURL)
	setString("title", u.Title)
	setString("bio", u.Bio)
	setString("location", u.Location)
	setString("phone", u.Phone)
	setString("website", u.Website)
	setString("resume_url", u.ResumeURL)
	setString("company_name", u.CompanyName)
	setString("company_size", u.CompanySize)
	setString("company_industry", u.CompanyIndustry)
	setString("company_description", u.CompanyDescription)
	setString("company_logo_url", u.CompanyLogoURL)
	setString("company_website", u.CompanyWebsite)
	if u.Skills != nil {
		out["skills"] = *u.Skills
	}
	if u.Experience != nil {
		out["experience"] = *u.Experience
	}
	if u.Education != nil {
		out["education"] = *u.Education
	}
	return out
}

// Apply writes the defined fields onto p.
func (u *ProfileUpdate) Apply(p *Profile) {
	apply := func(dst *string, v *string) {
		if v != nil {
			*dst = *v
		}
	}
	apply(&p.FullName, u.FullName)
	apply(&p.AvatarURL, u.AvatarURL)
	apply(&p.Title, u.Title)
	apply(&p.Bio, u.Bio)
	apply(&p.Location, u.Location)
	apply(&p.Phone, u.Phone)
	apply(&p.Website, u.Website)
	apply(&p.ResumeURL, u.ResumeURL)
	apply(&p.CompanyName, u.CompanyName)
	apply(&p.CompanySize, u.CompanySize)
	apply(&p.CompanyIndustry, u.CompanyIndustry)
	apply(&p.CompanyDescription, u.CompanyDescription)
	apply(&p.CompanyLogoURL, u.CompanyLogoURL)
	apply(&p.CompanyWebsite, u.CompanyWebsite)
	if u.Skills != nil {
		p.Skills = *u.Skills
	}
	if u.Experience != nil {
		p.Experience = *u.Experience
	}
	if u.Education != nil {
		p.Education = *u.Education
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
