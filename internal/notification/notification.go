package notification

import (
	"context"
	"fmt"

	"bidding-engine/internal/biddingerrors"
	"bidding-engine/utils"

	"golang.org/x/sync/errgroup"
)

//go:generate mockgen -destination=mock_sender.go -package=notification bidding-engine/internal/notification Sender

// Kind names a notification template
type Kind string

const (
	KindOutbid              Kind = "bid-outbid"
	KindAutoBidAlert        Kind = "autobid-alert"
	KindAutoBidExhausted    Kind = "autobid-funds-exhausted"
	KindAutoBidFundsRelease Kind = "autobid-funds-released"
	KindAuctionWon          Kind = "auction-won"
	KindAuctionLost         Kind = "auction-lost"
)

// Data is the template payload of a notification
type Data map[string]any

// Sender delivers one notification to one participant
type Sender interface {
	Notify(ctx context.Context, participantID string, kind Kind, data Data) error
}

// Message is one queued notification
type Message struct {
	ParticipantID string
	Kind          Kind
	Data          Data
}

// Dispatcher makes every send best-effort: failures are logged and reported, never propagated
// into the caller's unit of work.
type Dispatcher struct {
	sender      Sender
	concurrency int
}

// NewDispatcher creates a Dispatcher that fans out at most concurrency sends at once
func NewDispatcher(sender Sender, concurrency int) *Dispatcher {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &Dispatcher{sender: sender, concurrency: concurrency}
}

// Send delivers one message, logging a failure as a warning
func (d *Dispatcher) Send(ctx context.Context, msg Message) error {
	if err := d.sender.Notify(ctx, msg.ParticipantID, msg.Kind, msg.Data); err != nil {
		utils.Warn("notification: send failed", map[string]any{
			"participant_id": msg.ParticipantID,
			"kind":           string(msg.Kind),
			"error":          err.Error(),
		})
		return fmt.Errorf("notification: %s to %s: %w: %v", msg.Kind, msg.ParticipantID, biddingerrors.ErrNotificationFailure, err)
	}
	return nil
}

// send delivers msgs concurrently and returns each message's error at its index
func (d *Dispatcher) send(ctx context.Context, msgs []Message) []error {
	errs := make([]error, len(msgs))

	var g errgroup.Group
	g.SetLimit(d.concurrency)
	for i, msg := range msgs {
		i, msg := i, msg
		g.Go(func() error {
			errs[i] = d.Send(ctx, msg)
			return nil
		})
	}
	_ = g.Wait()
	return errs
}
