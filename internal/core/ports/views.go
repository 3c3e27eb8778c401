package ports

import (
	"time"

	"github.com/hirehub/jobboard/internal/core/domain"
)

// CompanySummary is the employer block attached to job list rows.
type CompanySummary struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	LogoURL string `json:"logo_url,omitempty"`
}

// CompanyData is the merged employer profile and company record.
type CompanyData struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	LogoURL     string `json:"logo_url,omitempty"`
	Industry    string `json:"industry,omitempty"`
	Size        string `json:"size,omitempty"`
	Description string `json:"description,omitempty"`
	Website     string `json:"website,omitempty"`
	Location    string `json:"location,omitempty"`
	IsVerified  bool   `json:"is_verified"`
	JobCount    int64  `json:"job_count"`
}

// Summary trims the company to its list form.
func (c CompanyData) Summary() CompanySummary {
	return CompanySummary{ID: c.ID, Name: c.Name, LogoURL: c.LogoURL}
}

// JobListItem is one row of a job list.
type JobListItem struct {
	Job        *domain.Job    `json:"job"`
	Company    CompanySummary `json:"company"`
	SalaryText string         `json:"salary_text"`
}

// JobDetail is the job page.
type JobDetail struct {
	Job            *domain.Job `json:"job"`
	CompanyData    CompanyData `json:"company_data"`
	SalaryText     string      `json:"salary_text"`
	HasApplied     bool        `json:"has_applied"`
	DeadlinePassed bool        `json:"deadline_passed"`
}

// ApplicantRow pairs an application with the applicant's profile.
type ApplicantRow struct {
	Application *domain.Application `json:"application"`
	Applicant   *domain.Profile     `json:"applicant"`
}

// SeekerApplicationRow is one row of the job seeker's application list.
type SeekerApplicationRow struct {
	ID             string    `json:"id"`
	JobID          string    `json:"job_id"`
	JobTitle       string    `json:"job_title"`
	JobType        string    `json:"job_type,omitempty"`
	JobLocation    string    `json:"job_location,omitempty"`
	JobStatus      string    `json:"job_status"`
	CompanyName    string    `json:"company_name"`
	CompanyLogoURL string    `json:"company_logo_url,omitempty"`
	Status         string    `json:"status"`
	CoverLetter    string    `json:"cover_letter,omitempty"`
	ResumeURL      string    `json:"resume_url"`
	AppliedAt      time.Time `json:"applied_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// CompanyPage is a company with its open jobs.
type CompanyPage struct {
	Company CompanyData   `json:"company"`
	Jobs    []JobListItem `json:"jobs"`
}
