package autobid

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"bidding-engine/internal/biddingerrors"
	model "bidding-engine/internal/models"
	"bidding-engine/internal/repository"

	"code.cloudfoundry.org/clock/fakeclock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestService(t *testing.T) (*Service, *repository.MemoryRepo, *fakeclock.FakeClock) {
	t.Helper()
	repo := repository.NewMemoryRepo()
	repo.AddAuction(model.Auction{
		AuctionID:     "auction-1",
		ItemID:        "item-1",
		Title:         "Vintage clock",
		StartingPrice: d(100),
		EndTime:       t0.Add(time.Hour),
	})
	clk := fakeclock.NewFakeClock(t0)
	return NewService(repo, clk), repo, clk
}

func TestService_SetConfig(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, _, clk := newTestService(t)

	cfg, err := svc.SetConfig(ctx, "user1", d(200), 80)
	require.NoError(t, err)
	require.Equal(t, model.AutoBidActive, cfg.Status)
	require.True(t, cfg.MaxBidAmount.Equal(d(200)))
	require.Equal(t, t0, cfg.CreatedAt)

	clk.Increment(time.Minute)
	cfg, err = svc.SetConfig(ctx, "user1", d(300), 50)
	require.NoError(t, err)
	require.True(t, cfg.MaxBidAmount.Equal(d(300)))
	require.Equal(t, 50, cfg.BidAlertPercentage)
	require.Equal(t, t0, cfg.CreatedAt)
	require.Equal(t, t0.Add(time.Minute), cfg.UpdatedAt)

	stored, err := svc.GetConfig(ctx, "user1")
	require.NoError(t, err)
	require.True(t, stored.MaxBidAmount.Equal(d(300)))

	invalid := []struct {
		name          string
		participantID string
		maxAmount     decimal.Decimal
		percentage    int
	}{
		{name: "empty_participant", participantID: "", maxAmount: d(100), percentage: 10},
		{name: "negative_amount", participantID: "user2", maxAmount: d(-5), percentage: 10},
		{name: "percentage_too_high", participantID: "user2", maxAmount: d(100), percentage: 101},
	}
	for _, tc := range invalid {
		_, err := svc.SetConfig(ctx, tc.participantID, tc.maxAmount, tc.percentage)
		require.ErrorIs(t, err, biddingerrors.ErrInvalidConfig, tc.name)
	}

	_, err = svc.GetConfig(ctx, "user2")
	require.ErrorIs(t, err, biddingerrors.ErrConfigNotFound)
}

func TestService_ToggleItem(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, repo, clk := newTestService(t)

	_, _, err := svc.ToggleItem(ctx, "user1", "auction-1")
	require.ErrorIs(t, err, biddingerrors.ErrConfigNotFound)

	_, err = svc.SetConfig(ctx, "user1", d(200), 80)
	require.NoError(t, err)

	cfg, enrolled, err := svc.ToggleItem(ctx, "user1", "auction-1")
	require.NoError(t, err)
	require.True(t, enrolled)
	require.Len(t, cfg.ActiveBids, 1)
	require.True(t, cfg.ActiveBids[0].AllocatedAmount.IsZero())

	cfg, enrolled, err = svc.ToggleItem(ctx, "user1", "auction-1")
	require.NoError(t, err)
	require.False(t, enrolled)
	require.Empty(t, cfg.ActiveBids)

	_, _, err = svc.ToggleItem(ctx, "user1", "missing")
	require.ErrorIs(t, err, biddingerrors.ErrAuctionNotFound)

	// enrolling after the end is refused, withdrawing is still allowed
	_, _, err = svc.ToggleItem(ctx, "user1", "auction-1")
	require.NoError(t, err)
	clk.Increment(2 * time.Hour)
	_, enrolled, err = svc.ToggleItem(ctx, "user1", "auction-1")
	require.NoError(t, err)
	require.False(t, enrolled)
	_, _, err = svc.ToggleItem(ctx, "user1", "auction-1")
	require.ErrorIs(t, err, biddingerrors.ErrAuctionEnded)

	require.NoError(t, repo.WithTransaction(ctx, func(ctx context.Context, tx repository.Tx) error {
		stored, err := tx.FindAutoBidConfig(ctx, "user1")
		require.NoError(t, err)
		require.Empty(t, stored.ActiveBids)
		return nil
	}))
}

// An enrolment committing while a settlement awards the auction makes the award retry,
// so the award always sees the new allocation and can release it.
func TestService_ToggleItemConflictsWithAward(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, repo, _ := newTestService(t)
	_, err := svc.SetConfig(ctx, "user1", d(200), 80)
	require.NoError(t, err)

	err = repo.WithTransaction(ctx, func(ctx context.Context, tx repository.Tx) error {
		auction, err := tx.FindAuction(ctx, "auction-1")
		if err != nil {
			return err
		}
		configs, err := tx.ListAutoBidConfigsForItem(ctx, auction.ItemID)
		if err != nil {
			return err
		}
		if len(configs) != 0 {
			return fmt.Errorf("expected no enrolled budgets, got %d", len(configs))
		}

		if _, enrolled, err := svc.ToggleItem(ctx, "user1", "auction-1"); err != nil || !enrolled {
			return fmt.Errorf("toggle: enrolled=%v err=%v", enrolled, err)
		}

		auction.Awarded = true
		return tx.UpdateAuction(ctx, &auction)
	})
	require.True(t, errors.Is(err, biddingerrors.ErrTransactionConflict), "got %v", err)

	var auction model.Auction
	require.NoError(t, repo.WithTransaction(ctx, func(ctx context.Context, tx repository.Tx) error {
		var err error
		auction, err = tx.FindAuction(ctx, "auction-1")
		return err
	}))
	require.False(t, auction.Awarded)
}

func TestService_SetStatus(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, repo, _ := newTestService(t)
	repo.AddAutoBidConfig(model.AutoBidConfig{
		ParticipantID:      "user1",
		MaxBidAmount:       d(200),
		BidAlertPercentage: 80,
		Status:             model.AutoBidActive,
		AlertSent:          true,
	})

	cfg, err := svc.SetStatus(ctx, "user1", model.AutoBidPaused)
	require.NoError(t, err)
	require.Equal(t, model.AutoBidPaused, cfg.Status)
	require.True(t, cfg.AlertSent)

	cfg, err = svc.SetStatus(ctx, "user1", model.AutoBidActive)
	require.NoError(t, err)
	require.Equal(t, model.AutoBidActive, cfg.Status)
	require.False(t, cfg.AlertSent)

	_, err = svc.SetStatus(ctx, "user1", model.AutoBidStatus("sleeping"))
	require.ErrorIs(t, err, biddingerrors.ErrInvalidConfig)

	_, err = svc.SetStatus(ctx, "nobody", model.AutoBidPaused)
	require.ErrorIs(t, err, biddingerrors.ErrConfigNotFound)
}
