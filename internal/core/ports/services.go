package ports

import (
	"context"
	"time"

	"github.com/hirehub/jobboard/internal/core/domain"
)

// RegisterInput carries a sign-up request.
type RegisterInput struct {
	Email           string
	Password        string
	Role            string
	FullName        string
	CompanyName     string
	CompanyIndustry string
	CompanySize     string
}

// FederatedAssertion is the outcome of a provider consent flow: either an ID
// token or the flow's error code.
type FederatedAssertion struct {
	IDToken string
	Error   string
}

// AuthSession is returned by every successful sign-in.
type AuthSession struct {
	Token     string              `json:"token"`
	ExpiresAt time.Time           `json:"expires_at"`
	State     domain.SessionState `json:"state"`
	User      domain.User         `json:"user"`
	// Warning is set when sign-in succeeded but profile handling did not.
	Warning string `json:"warning,omitempty"`
}

// SessionService is the credential/session gateway.
type SessionService interface {
	SignInWithPassword(ctx context.Context, clientID, email, password string) (*AuthSession, error)
	SignInWithFederated(ctx context.Context, clientID string, assertion FederatedAssertion) (*AuthSession, error)
	SignUp(ctx context.Context, clientID string, in RegisterInput) (*AuthSession, error)
	SignOut(ctx context.Context, clientID string) error
	Restore(ctx context.Context, token string) (*AuthSession, error)
	Refresh(ctx context.Context, clientID string) (*AuthSession, error)
	Authenticate(ctx context.Context, token string) (*domain.User, string, error)
	State(ctx context.Context, clientID string) (domain.SessionState, error)
	SetUser(ctx context.Context, clientID string, user domain.User) error
}

// ViewService is the derived view assembler.
type ViewService interface {
	ListJobs(ctx context.Context, filter JobFilter) ([]JobListItem, error)
	GetJobDetail(ctx context.Context, jobID string, viewer *domain.User) (*JobDetail, error)
	ListEmployerJobs(ctx context.Context, employer domain.User) ([]JobListItem, error)
	ListJobApplicants(ctx context.Context, employer domain.User, jobID string) ([]ApplicantRow, error)
	ListMyApplications(ctx context.Context, applicant domain.User) ([]SeekerApplicationRow, error)
	ListCompanies(ctx context.Context, filter CompanyFilter) ([]CompanyData, error)
	GetCompany(ctx context.Context, id string) (*CompanyPage, error)
}

// JobInput carries a job post or edit.
type JobInput struct {
	Title               string
	Description         string
	Requirements        []string
	Location            string
	IsRemote            bool
	Type                string
	Category            string
	Salary              domain.Salary
	Skills              []string
	Experience          domain.Range
	Education           string
	ApplicationDeadline *time.Time
	IdempotencyKey      string
}

// ApplyInput carries a job application.
type ApplyInput struct {
	JobID       string
	ResumeURL   string
	CoverLetter string
}

// UploadInput carries one file.
type UploadInput struct {
	Kind        domain.FileKind
	FileName    string
	ContentType string
	Data        []byte
}

// ProfileResult is the outcome of a profile update.
type ProfileResult struct {
	User    domain.User     `json:"user"`
	Profile *domain.Profile `json:"profile,omitempty"`
	Warning string          `json:"warning,omitempty"`
}

// JobResult is the outcome of a job post, edit or deletion.
type JobResult struct {
	Job            *domain.Job `json:"job"`
	AlreadyExisted bool        `json:"already_existed,omitempty"`
	Warning        string      `json:"warning,omitempty"`
}

// ApplyResult is the outcome of an application submission.
type ApplyResult struct {
	Application *domain.Application `json:"application"`
	Warning     string              `json:"warning,omitempty"`
}

// UploadResult is the outcome of a file upload.
type UploadResult struct {
	File    domain.StoredFile `json:"file"`
	User    *domain.User      `json:"user,omitempty"`
	Warning string            `json:"warning,omitempty"`
}

// MutationService is the mutation coordinator.
type MutationService interface {
	UpdateProfile(ctx context.Context, user domain.User, upd domain.ProfileUpdate) (*ProfileResult, error)
	Upload(ctx context.Context, user domain.User, in UploadInput) (*UploadResult, error)
	ListFiles(ctx context.Context, user domain.User, kind domain.FileKind) ([]domain.StoredFile, error)
	DeleteFile(ctx context.Context, user domain.User, path string) error
	PostJob(ctx context.Context, employer domain.User, in JobInput) (*JobResult, error)
	UpdateJob(ctx context.Context, employer domain.User, jobID string, in JobInput) (*JobResult, error)
	SetJobStatus(ctx context.Context, employer domain.User, jobID string, status string) (*domain.Job, error)
	DeleteJob(ctx context.Context, employer domain.User, jobID string) (*JobResult, error)
	SubmitApplication(ctx context.Context, applicant domain.User, in ApplyInput) (*ApplyResult, error)
	SetApplicationStatus(ctx context.Context, employer domain.User, applicationID, status, notes string) (*domain.Application, error)
	UpdateCoverLetter(ctx context.Context, applicant domain.User, applicationID, coverLetter string) (*domain.Application, error)
}
