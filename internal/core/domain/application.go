package domain

import (
	"errors"
	"strings"
	"time"
)

// ApplicationStatus is the canonical review state of an application.
type ApplicationStatus string

const (
	AppNew          ApplicationStatus = "new"
	AppReviewing    ApplicationStatus = "reviewing"
	AppShortlisted  ApplicationStatus = "shortlisted"
	AppInterviewing ApplicationStatus = "interviewing"
	AppOffered      ApplicationStatus = "offered"
	AppHired        ApplicationStatus = "hired"
	AppRejected     ApplicationStatus = "rejected"
)

// applicationTransitions is the review pipeline. Hired and rejected are final.
var applicationTransitions = map[ApplicationStatus][]ApplicationStatus{
	AppNew:          {AppReviewing, AppShortlisted, AppRejected},
	AppReviewing:    {AppShortlisted, AppInterviewing, AppRejected},
	AppShortlisted:  {AppInterviewing, AppOffered, AppRejected},
	AppInterviewing: {AppOffered, AppHired, AppRejected},
	AppOffered:      {AppHired, AppRejected},
}

// CanTransitionTo reports whether an application may move from s to next.
func (s ApplicationStatus) CanTransitionTo(next ApplicationStatus) bool {
	for _, allowed := range applicationTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// statusAliases maps every label found in stored documents and client
// requests onto the canonical enum: the employer pipeline, the job seeker
// labels, and the capitalized labels of early documents.
var statusAliases = map[string]ApplicationStatus{
	"new":          AppNew,
	"submitted":    AppNew,
	"pending":      AppNew,
	"reviewing":    AppReviewing,
	"reviewed":     AppReviewing,
	"shortlisted":  AppShortlisted,
	"interviewing": AppInterviewing,
	"interviewed":  AppInterviewing,
	"offered":      AppOffered,
	"hired":        AppHired,
	"rejected":     AppRejected,
}

// ParseApplicationStatus translates any known label into the canonical enum.
func ParseApplicationStatus(s string) (ApplicationStatus, bool) {
	st, ok := statusAliases[strings.ToLower(strings.TrimSpace(s))]
	return st, ok
}

var seekerLabels = map[ApplicationStatus]string{
	AppNew:          "submitted",
	AppReviewing:    "reviewed",
	AppInterviewing: "interviewed",
}

// SeekerLabel renders the status in the job seeker's vocabulary.
func (s ApplicationStatus) SeekerLabel() string {
	if l, ok := seekerLabels[s]; ok {
		return l
	}
	return string(s)
}

var (
	ErrApplicationNotFound = errors.New("application not found")
	ErrAlreadyApplied      = errors.New("already applied to this job")
	ErrResumeRequired      = errors.New("a resume is required to apply")
)

// StatusChange records a single review transition.
type StatusChange struct {
	Status    ApplicationStatus `json:"status" bson:"status"`
	ChangedBy string            `json:"changed_by,omitempty" bson:"changed_by,omitempty"`
	Timestamp time.Time         `json:"timestamp" bson:"timestamp"`
	Notes     string            `json:"notes,omitempty" bson:"notes,omitempty"`
}

// Application links a job to a job seeker.
type Application struct {
	ID             string            `json:"id" bson:"_id"`
	JobID          string            `json:"job_id" bson:"job_id"`
	JobTitle       string            `json:"job_title" bson:"job_title"`
	CompanyID      string            `json:"company_id" bson:"company_id"`
	CompanyName    string            `json:"company_name" bson:"company_name"`
	ApplicantID    string            `json:"applicant_id" bson:"applicant_id"`
	ApplicantName  string            `json:"applicant_name" bson:"applicant_name"`
	ApplicantEmail string            `json:"applicant_email" bson:"applicant_email"`
	ResumeURL      string            `json:"resume_url" bson:"resume_url"`
	CoverLetter    string            `json:"cover_letter,omitempty" bson:"cover_letter,omitempty"`
	Status         ApplicationStatus `json:"status" bson:"status"`
	StatusHistory  []StatusChange    `json:"status_history" bson:"status_history"`
	CreatedAt      time.Time         `json:"created_at" bson:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at" bson:"updated_at"`
}
