package ports

import (
	"context"

	"github.com/hirehub/jobboard/internal/core/domain"
)

// JobFilter carries the job list query. Zero values mean "no filter".
type JobFilter struct {
	EmployerID string
	Search     string // case-insensitive title prefix
	// Type remote matches the is_remote flag rather than the type field.
	Type       domain.JobType
	Location   string // case-insensitive location prefix
	OpenOnly   bool
	Limit      int
}

// CompanyFilter carries the company directory query.
type CompanyFilter struct {
	Industry string
	Size     string
	Search   string // case-insensitive substring of name, description or industry
}

// ProfileRepository persists profiles keyed by user id.
type ProfileRepository interface {
	// FindByID returns domain.ErrProfileNotFound when absent.
	FindByID(ctx context.Context, id string) (*domain.Profile, error)
	// Create returns domain.ErrAlreadyExists when a profile with the id exists.
	Create(ctx context.Context, p *domain.Profile) error
	// Update sets the given fields; it returns domain.ErrProfileNotFound when absent.
	Update(ctx context.Context, id string, fields map[string]any) error
	// ListEmployers returns employer profiles that carry a company name.
	ListEmployers(ctx context.Context, filter CompanyFilter) ([]*domain.Profile, error)
}

// CompanyRepository persists company records keyed by employer id.
type CompanyRepository interface {
	FindByID(ctx context.Context, id string) (*domain.Company, error)
	Create(ctx context.Context, c *domain.Company) error
	Update(ctx context.Context, id string, fields map[string]any) error
	IncrementJobCount(ctx context.Context, id string, delta int64) error
}

// JobRepository persists job postings.
type JobRepository interface {
	Create(ctx context.Context, j *domain.Job) error
	FindByID(ctx context.Context, id string) (*domain.Job, error)
	FindByIdempotencyKey(ctx context.Context, employerID, key string) (*domain.Job, error)
	// List returns matching jobs, newest first.
	List(ctx context.Context, filter JobFilter) ([]*domain.Job, error)
	Update(ctx context.Context, id string, fields map[string]any) error
	// Delete returns domain.ErrJobNotFound when absent.
	Delete(ctx context.Context, id string) error
	IncrementViews(ctx context.Context, id string) error
	// AddApplication records the application id on the job and bumps its counter.
	AddApplication(ctx context.Context, jobID, applicationID string) error
}

// ApplicationRepository persists job applications.
type ApplicationRepository interface {
	// Create returns domain.ErrAlreadyApplied when the store rejects a second
	// application for the same (job, applicant) pair.
	Create(ctx context.Context, a *domain.Application) error
	FindByID(ctx context.Context, id string) (*domain.Application, error)
	Exists(ctx context.Context, jobID, applicantID string) (bool, error)
	// ListByJob returns the job's applications, newest first.
	ListByJob(ctx context.Context, jobID string) ([]*domain.Application, error)
	// ListByApplicant returns at most limit applications, newest first.
	ListByApplicant(ctx context.Context, applicantID string, limit int) ([]*domain.Application, error)
	// UpdateStatus sets the status and appends change to the history.
	UpdateStatus(ctx context.Context, id string, change domain.StatusChange) error
	Update(ctx context.Context, id string, fields map[string]any) error
}
