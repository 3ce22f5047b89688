package notification

import (
	"context"
	"fmt"
	"time"

	model "bidding-engine/internal/models"
	"bidding-engine/utils"
)

// DefaultMaxAttempts is how many failed sends a pending notice gets before the outbox stops retrying it
const DefaultMaxAttempts = 10

// NoticeWriter stages notices inside a store transaction
type NoticeWriter interface {
	CreateNotice(ctx context.Context, notice model.Notice) error
}

// Outbox holds committed notices until they are delivered
type Outbox interface {
	ListPendingNotices(ctx context.Context, cutoff time.Time, maxAttempts, limit int) ([]model.Notice, error)
	DeleteNotice(ctx context.Context, noticeID string) error
	RecordNoticeFailure(ctx context.Context, noticeID, reason string) error
}

// Stage writes msgs through tx so they commit or roll back with the change they report.
// The returned notices are handed to Deliver once the transaction has committed.
func Stage(ctx context.Context, tx NoticeWriter, msgs []Message, now time.Time) ([]model.Notice, error) {
	notices := make([]model.Notice, 0, len(msgs))
	for _, msg := range msgs {
		n := model.Notice{
			NoticeID:      utils.GenerateID(),
			ParticipantID: msg.ParticipantID,
			Kind:          string(msg.Kind),
			Data:          map[string]any(msg.Data),
			CreatedAt:     now.UTC(),
		}
		if err := tx.CreateNotice(ctx, n); err != nil {
			return nil, fmt.Errorf("notification: stage %s to %s: %w", msg.Kind, msg.ParticipantID, err)
		}
		notices = append(notices, n)
	}
	return notices, nil
}

func messageOf(n model.Notice) Message {
	return Message{ParticipantID: n.ParticipantID, Kind: Kind(n.Kind), Data: Data(n.Data)}
}

// Deliver sends committed notices. A delivered notice leaves the outbox; a failed one stays
// pending with the attempt counted. It returns how many failed.
func (d *Dispatcher) Deliver(ctx context.Context, outbox Outbox, notices []model.Notice) int {
	msgs := make([]Message, len(notices))
	for i, n := range notices {
		msgs[i] = messageOf(n)
	}
	errs := d.send(ctx, msgs)

	failed := 0
	for i, n := range notices {
		if errs[i] != nil {
			failed++
			if err := outbox.RecordNoticeFailure(ctx, n.NoticeID, errs[i].Error()); err != nil {
				utils.Warn("notification: failed to record send failure", map[string]any{
					"notice_id": n.NoticeID,
					"error":     err.Error(),
				})
			}
			continue
		}
		if err := outbox.DeleteNotice(ctx, n.NoticeID); err != nil {
			utils.Warn("notification: delivered notice not removed from outbox", map[string]any{
				"notice_id": n.NoticeID,
				"error":     err.Error(),
			})
		}
	}
	return failed
}

// Drain retries up to limit pending notices created before cutoff and returns how many were
// delivered and how many failed again.
func (d *Dispatcher) Drain(ctx context.Context, outbox Outbox, cutoff time.Time, limit int) (int, int, error) {
	pending, err := outbox.ListPendingNotices(ctx, cutoff, DefaultMaxAttempts, limit)
	if err != nil {
		return 0, 0, fmt.Errorf("notification: failed to list pending notices: %w", err)
	}
	if len(pending) == 0 {
		return 0, 0, nil
	}
	failed := d.Deliver(ctx, outbox, pending)
	return len(pending) - failed, failed, nil
}
