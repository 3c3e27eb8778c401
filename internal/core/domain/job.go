package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// JobType is the employment arrangement of a posting.
type JobType string

const (
	JobFullTime   JobType = "full-time"
	JobPartTime   JobType = "part-time"
	JobContract   JobType = "contract"
	JobInternship JobType = "internship"
	JobRemote     JobType = "remote"
)

// ParseJobType accepts both the stored form and the display labels
// ("Full-time", "Part-time", ...).
func ParseJobType(s string) (JobType, bool) {
	t := JobType(strings.ToLower(strings.TrimSpace(s)))
	switch t {
	case JobFullTime, JobPartTime, JobContract, JobInternship, JobRemote:
		return t, true
	}
	return "", false
}

// JobStatus is the visibility state of a posting.
type JobStatus string

const (
	JobOpen   JobStatus = "open"
	JobClosed JobStatus = "closed"
)

var jobTransitions = map[JobStatus][]JobStatus{
	JobOpen:   {JobClosed},
	JobClosed: {JobOpen},
}

// CanTransitionTo reports whether a job may move from s to next.
func (s JobStatus) CanTransitionTo(next JobStatus) bool {
	for _, allowed := range jobTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// UntitledPosition is shown when a job cannot be resolved.
const UntitledPosition = "Untitled Position"

var (
	ErrJobNotFound    = errors.New("job not found")
	ErrInvalidJob     = errors.New("invalid job")
	ErrJobClosed      = errors.New("job is no longer accepting applications")
	ErrDeadlinePassed = errors.New("application deadline has passed")
)

// Salary is an optional range; nil bounds are undisclosed.
type Salary struct {
	Min        *int64 `json:"min,omitempty" bson:"min,omitempty"`
	Max        *int64 `json:"max,omitempty" bson:"max,omitempty"`
	Currency   string `json:"currency,omitempty" bson:"currency,omitempty"`
	Negotiable bool   `json:"negotiable,omitempty" bson:"negotiable,omitempty"`
}

var numberPrinter = message.NewPrinter(language.English)

// Format renders the range for display, e.g. "USD 50,000 - 80,000".
func (s Salary) Format() string {
	currency := s.Currency
	if currency == "" {
		currency = "USD"
	}

	var out string
	switch {
	case s.Min != nil && s.Max != nil:
		out = numberPrinter.Sprintf("%s %d - %d", currency, *s.Min, *s.Max)
	case s.Min != nil:
		out = numberPrinter.Sprintf("%s %d+", currency, *s.Min)
	case s.Max != nil:
		out = numberPrinter.Sprintf("Up to %s %d", currency, *s.Max)
	default:
		return "Not disclosed"
	}
	if s.Negotiable {
		out += " (Negotiable)"
	}
	return out
}

// Range bounds an integer requirement such as years of experience.
type Range struct {
	Min *int `json:"min,omitempty" bson:"min,omitempty"`
	Max *int `json:"max,omitempty" bson:"max,omitempty"`
}

// Job is an employer-owned posting.
type Job struct {
	ID                  string     `json:"id" bson:"_id"`
	EmployerID          string     `json:"employer_id" bson:"employer_id"`
	Title               string     `json:"title" bson:"title"`
	Description         string     `json:"description" bson:"description"`
	Requirements        []string   `json:"requirements,omitempty" bson:"requirements,omitempty"`
	Location            string     `json:"location" bson:"location"`
	IsRemote            bool       `json:"is_remote" bson:"is_remote"`
	Type                JobType    `json:"type" bson:"type"`
	Category            string     `json:"category,omitempty" bson:"category,omitempty"`
	Salary              Salary     `json:"salary" bson:"salary"`
	Skills              []string   `json:"skills,omitempty" bson:"skills,omitempty"`
	Experience          Range      `json:"experience" bson:"experience"`
	Education           string     `json:"education,omitempty" bson:"education,omitempty"`
	ApplicationDeadline *time.Time `json:"application_deadline,omitempty" bson:"application_deadline,omitempty"`
	Status              JobStatus  `json:"status" bson:"status"`
	IsFeatured          bool       `json:"is_featured" bson:"is_featured"`
	Views               int64      `json:"views" bson:"views"`
	ApplicationIDs      []string   `json:"application_ids" bson:"application_ids"`
	ApplicationCount    int64      `json:"application_count" bson:"application_count"`
	IdempotencyKey      string     `json:"-" bson:"idempotency_key,omitempty"`
	CreatedAt           time.Time  `json:"created_at" bson:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at" bson:"updated_at"`
}

// Validate checks the cross-field rules of a posting.
func (j *Job) Validate() error {
	if strings.TrimSpace(j.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidJob)
	}
	if _, ok := ParseJobType(string(j.Type)); !ok {
		return fmt.Errorf("%w: unknown type %q", ErrInvalidJob, j.Type)
	}
	if j.Salary.Min != nil && j.Salary.Max != nil && *j.Salary.Max < *j.Salary.Min {
		return fmt.Errorf("%w: maximum salary must be greater than or equal to minimum salary", ErrInvalidJob)
	}
	if j.Experience.Min != nil && j.Experience.Max != nil && *j.Experience.Max < *j.Experience.Min {
		return fmt.Errorf("%w: maximum experience must be greater than or equal to minimum experience", ErrInvalidJob)
	}
	return nil
}

// DeadlinePassed reports whether the application deadline lies before now.
// A posting without a deadline never expires.
func (j *Job) DeadlinePassed(now time.Time) bool {
	return j.ApplicationDeadline != nil && now.After(*j.ApplicationDeadline)
}

// SplitSkills turns a comma separated list into trimmed, non-empty entries.
func SplitSkills(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
