package notify

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/hirehub/jobboard/internal/core/domain"
)

// LogNotifier writes notifications to the log. It is used when no broker is
// configured.
type LogNotifier struct {
	log zerolog.Logger
}

func NewLogNotifier(log zerolog.Logger) *LogNotifier {
	return &LogNotifier{log: log.With().Str("component", "notify").Logger()}
}

func (n *LogNotifier) Notify(_ context.Context, note domain.Notification) error {
	n.log.Info().
		Str("type", note.Type).
		Str("recipient", note.RecipientID).
		Str("job_id", note.JobID).
		Str("status", note.Status).
		Msg(note.Message)
	return nil
}
