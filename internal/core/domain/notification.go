package domain

import "time"

const (
	EventApplicationSubmitted     = "application.submitted"
	EventApplicationStatusChanged = "application.status_changed"
)

// Notification is a domain event addressed to one user.
type Notification struct {
	Type        string            `json:"type"`
	RecipientID string            `json:"recipient_id"`
	JobID       string            `json:"job_id,omitempty"`
	Application string            `json:"application_id,omitempty"`
	Status      string            `json:"status,omitempty"`
	Message     string            `json:"message"`
	Data        map[string]string `json:"data,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
}
