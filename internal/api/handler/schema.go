package handler

import "time"

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// --- Jobs ---

type salaryRequest struct {
	Min        *int64 `json:"min,omitempty" validate:"omitempty,gte=0"`
	Max        *int64 `json:"max,omitempty" validate:"omitempty,gte=0"`
	Currency   string `json:"currency,omitempty" validate:"omitempty,len=3"`
	Negotiable bool   `json:"negotiable,omitempty"`
}

type rangeRequest struct {
	Min *int `json:"min,omitempty" validate:"omitempty,gte=0"`
	Max *int `json:"max,omitempty" validate:"omitempty,gte=0"`
}

// jobRequest is a job post or edit. SkillsText is the comma separated form
// sent by plain forms and is used when Skills is empty.
type jobRequest struct {
	Title               string        `json:"title"        validate:"required,max=200"`
	Description         string        `json:"description"  validate:"required"`
	Requirements        []string      `json:"requirements,omitempty"`
	Location            string        `json:"location,omitempty"`
	IsRemote            bool          `json:"is_remote,omitempty"`
	Type                string        `json:"type"         validate:"required,jobtype"`
	Category            string        `json:"category,omitempty"`
	Salary              salaryRequest `json:"salary"`
	Skills              []string      `json:"skills,omitempty"`
	SkillsText          string        `json:"skills_text,omitempty"`
	Experience          rangeRequest  `json:"experience"`
	Education           string        `json:"education,omitempty"`
	ApplicationDeadline *time.Time    `json:"application_deadline,omitempty"`
}

type jobStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=open closed"`
}

type jobListQuery struct {
	Search   string `query:"search"`
	Type     string `query:"type"     validate:"omitempty,jobtype"`
	Location string `query:"location"`
	Employer string `query:"employer_id"`
	Limit    int    `query:"limit"    validate:"omitempty,min=1,max=100"`
}

// --- Applications ---

type applyRequest struct {
	JobID       string `json:"job_id"       validate:"required"`
	ResumeURL   string `json:"resume_url"`
	CoverLetter string `json:"cover_letter" validate:"max=5000"`
}

type applicationStatusRequest struct {
	Status string `json:"status" validate:"required"`
	Notes  string `json:"notes,omitempty" validate:"max=2000"`
}

type coverLetterRequest struct {
	CoverLetter string `json:"cover_letter" validate:"max=5000"`
}

// --- Profile ---

type experienceRequest struct {
	Title       string `json:"title"`
	Company     string `json:"company"`
	StartDate   string `json:"start_date,omitempty"`
	EndDate     string `json:"end_date,omitempty"`
	Current     bool   `json:"current,omitempty"`
	Description string `json:"description,omitempty"`
}

type educationRequest struct {
	Institution  string `json:"institution"`
	Degree       string `json:"degree"`
	FieldOfStudy string `json:"field_of_study,omitempty"`
	StartDate    string `json:"start_date,omitempty"`
	EndDate      string `json:"end_date,omitempty"`
}

// profileUpdateRequest is a partial update: omitted fields stay untouched.
type profileUpdateRequest struct {
	FullName           *string              `json:"full_name,omitempty"`
	AvatarURL          *string              `json:"avatar_url,omitempty"`
	Title              *string              `json:"title,omitempty"`
	Bio                *string              `json:"bio,omitempty"`
	Location           *string              `json:"location,omitempty"`
	Phone              *string              `json:"phone,omitempty"`
	Website            *string              `json:"website,omitempty"`
	Skills             *[]string            `json:"skills,omitempty"`
	Experience         *[]experienceRequest `json:"experience,omitempty"`
	Education          *[]educationRequest  `json:"education,omitempty"`
	ResumeURL          *string              `json:"resume_url,omitempty"`
	CompanyName        *string              `json:"company_name,omitempty"`
	CompanySize        *string              `json:"company_size,omitempty"`
	CompanyIndustry    *string              `json:"company_industry,omitempty"`
	CompanyDescription *string              `json:"company_description,omitempty"`
	CompanyLogoURL     *string              `json:"company_logo_url,omitempty"`
	CompanyWebsite     *string              `json:"company_website,omitempty"`
}

// --- Companies ---

type companyListQuery struct {
	Industry string `query:"industry"`
	Size     string `query:"size"`
	Search   string `query:"search"`
}
