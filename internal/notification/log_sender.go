package notification

import (
	"context"

	"bidding-engine/utils"
)

// LogSender writes notifications to the structured log instead of delivering them
type LogSender struct{}

// NewLogSender creates a LogSender
func NewLogSender() *LogSender {
	return &LogSender{}
}

// Notify logs the notification at info level
func (LogSender) Notify(ctx context.Context, participantID string, kind Kind, data Data) error {
	fields := map[string]any{
		"participant_id": participantID,
		"kind":           string(kind),
	}
	for k, v := range data {
		fields["data."+k] = v
	}
	utils.Info("notification", fields)
	return nil
}
