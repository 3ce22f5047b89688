package escalation

import (
	"context"
	"errors"
	"testing"
	"time"

	"bidding-engine/internal/biddingerrors"
	model "bidding-engine/internal/models"
	"bidding-engine/internal/notification"
	"bidding-engine/internal/repository"

	"code.cloudfoundry.org/clock/fakeclock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func d(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func newFixture(t *testing.T) (*repository.MemoryRepo, *fakeclock.FakeClock) {
	t.Helper()
	repo := repository.NewMemoryRepo()
	repo.AddAuction(model.Auction{
		AuctionID:     "auction-1",
		ItemID:        "item-1",
		Title:         "Vintage Clock",
		StartingPrice: d(100),
		EndTime:       t0.Add(time.Hour),
		CreatedAt:     t0.Add(-time.Hour),
	})
	return repo, fakeclock.NewFakeClock(t0)
}

func addConfig(repo *repository.MemoryRepo, participant string, max int64, pct int, created time.Time) {
	repo.AddAutoBidConfig(model.AutoBidConfig{
		ParticipantID:      participant,
		MaxBidAmount:       d(max),
		BidAlertPercentage: pct,
		Status:             model.AutoBidActive,
		ActiveBids:         []model.ActiveBid{{ItemID: "item-1", AllocatedAmount: decimal.Zero}},
		CreatedAt:          created,
		UpdatedAt:          created,
	})
}

// bidAndResolve places a manual bid and escalates in the same transaction
func bidAndResolve(t *testing.T, repo *repository.MemoryRepo, r *Resolver, participant string, amount int64) (Outcome, error) {
	t.Helper()
	var out Outcome
	err := repo.WithTransaction(context.Background(), func(ctx context.Context, tx repository.Tx) error {
		auction, err := tx.FindAuction(ctx, "auction-1")
		if err != nil {
			return err
		}
		bid := model.Bid{
			BidID:         participant + "-manual-" + d(amount).String(),
			AuctionID:     auction.AuctionID,
			ItemID:        auction.ItemID,
			ParticipantID: participant,
			Amount:        d(amount),
			CreatedAt:     t0,
		}
		auction.Accept(&bid)
		if err := tx.CreateBid(ctx, bid); err != nil {
			return err
		}
		if err := tx.UpdateAuction(ctx, &auction); err != nil {
			return err
		}
		out, err = r.ResolveInTx(ctx, tx, auction.AuctionID, bid.Amount, participant)
		return err
	})
	return out, err
}

func committed(t *testing.T, repo *repository.MemoryRepo) (model.Auction, []model.Bid) {
	t.Helper()
	var (
		auction model.Auction
		bids    []model.Bid
	)
	err := repo.WithTransaction(context.Background(), func(ctx context.Context, tx repository.Tx) error {
		var err error
		if auction, err = tx.FindAuction(ctx, "auction-1"); err != nil {
			return err
		}
		bids, err = tx.ListBids(ctx, "auction-1")
		return err
	})
	require.NoError(t, err)
	return auction, bids
}

func config(t *testing.T, repo *repository.MemoryRepo, participant string) model.AutoBidConfig {
	t.Helper()
	var cfg model.AutoBidConfig
	err := repo.WithTransaction(context.Background(), func(ctx context.Context, tx repository.Tx) error {
		var err error
		cfg, err = tx.FindAutoBidConfig(ctx, participant)
		return err
	})
	require.NoError(t, err)
	return cfg
}

func countKind(notices []notification.Message, kind notification.Kind) int {
	n := 0
	for _, m := range notices {
		if m.Kind == kind {
			n++
		}
	}
	return n
}

func TestResolver_NoConfigs(t *testing.T) {
	t.Parallel()
	repo, clk := newFixture(t)
	r := NewResolver(repo, clk, Config{})

	out, err := bidAndResolve(t, repo, r, "A", 120)
	require.NoError(t, err)
	require.Empty(t, out.Placed)

	auction, bids := committed(t, repo)
	require.True(t, auction.CurrentPrice.Equal(d(120)))
	require.Len(t, bids, 1)
	require.Equal(t, bids[0].BidID, auction.HighestBidID)
}

func TestResolver_SingleCounterBid(t *testing.T) {
	t.Parallel()
	repo, clk := newFixture(t)
	addConfig(repo, "B", 150, 90, t0.Add(-time.Minute))
	r := NewResolver(repo, clk, Config{})

	out, err := bidAndResolve(t, repo, r, "A", 120)
	require.NoError(t, err)
	require.Len(t, out.Placed, 1)

	auction, bids := committed(t, repo)
	require.Len(t, bids, 2)
	require.Equal(t, "A", bids[0].ParticipantID)
	require.False(t, bids[0].IsAutoBid)
	require.Equal(t, "B", bids[1].ParticipantID)
	require.True(t, bids[1].IsAutoBid)
	require.True(t, bids[1].Amount.Equal(d(121)))
	require.True(t, auction.CurrentPrice.Equal(d(121)))
	require.Equal(t, bids[1].BidID, auction.HighestBidID)

	alloc := config(t, repo, "B").ActiveBids
	require.Len(t, alloc, 1)
	require.True(t, alloc[0].AllocatedAmount.Equal(d(121)))
}

func TestResolver_CeilingEqualToBid(t *testing.T) {
	t.Parallel()
	repo, clk := newFixture(t)
	addConfig(repo, "B", 121, 90, t0.Add(-time.Minute))
	r := NewResolver(repo, clk, Config{})

	out, err := bidAndResolve(t, repo, r, "A", 121)
	require.NoError(t, err)
	require.Empty(t, out.Placed)

	auction, bids := committed(t, repo)
	require.Len(t, bids, 1)
	require.True(t, auction.CurrentPrice.Equal(d(121)))

	cfg := config(t, repo, "B")
	require.True(t, cfg.ActiveBids[0].AllocatedAmount.IsZero())
	require.Equal(t, model.AutoBidActive, cfg.Status)
}

func TestResolver_AlertIsOneShot(t *testing.T) {
	t.Parallel()
	repo, clk := newFixture(t)
	addConfig(repo, "C", 200, 80, t0.Add(-time.Minute))
	r := NewResolver(repo, clk, Config{})

	out, err := bidAndResolve(t, repo, r, "A", 159)
	require.NoError(t, err)
	require.Len(t, out.Placed, 1)
	require.True(t, out.Placed[0].Amount.Equal(d(160)))
	require.Equal(t, 1, countKind(out.Notices, notification.KindAutoBidAlert))
	require.True(t, config(t, repo, "C").AlertSent)

	out, err = bidAndResolve(t, repo, r, "A", 170)
	require.NoError(t, err)
	require.Len(t, out.Placed, 1)
	require.True(t, out.Placed[0].Amount.Equal(d(171)))
	require.Zero(t, countKind(out.Notices, notification.KindAutoBidAlert))
}

func TestResolver_BiddingWarTerminates(t *testing.T) {
	t.Parallel()
	repo, clk := newFixture(t)
	addConfig(repo, "B", 150, 100, t0.Add(-2*time.Minute))
	addConfig(repo, "C", 140, 100, t0.Add(-time.Minute))
	r := NewResolver(repo, clk, Config{})

	out, err := bidAndResolve(t, repo, r, "A", 120)
	require.NoError(t, err)
	require.Len(t, out.Placed, 21)

	auction, bids := committed(t, repo)
	require.True(t, auction.CurrentPrice.Equal(d(141)))
	require.Equal(t, "B", bids[len(bids)-1].ParticipantID)

	for i := 1; i < len(bids); i++ {
		require.NotEqual(t, bids[i-1].ParticipantID, bids[i].ParticipantID, "consecutive bids by one participant at %d", i)
		require.True(t, bids[i].Amount.GreaterThan(bids[i-1].Amount))
	}

	// C spent its whole ceiling and is paused
	c := config(t, repo, "C")
	require.Equal(t, model.AutoBidPaused, c.Status)
	require.Equal(t, 1, countKind(out.Notices, notification.KindAutoBidExhausted))

	b := config(t, repo, "B")
	require.Equal(t, model.AutoBidActive, b.Status)
	require.True(t, b.ActiveBids[0].AllocatedAmount.LessThanOrEqual(b.MaxBidAmount))
}

func TestResolver_TiesGoToEarliestConfig(t *testing.T) {
	t.Parallel()
	repo, clk := newFixture(t)
	addConfig(repo, "late", 125, 100, t0.Add(-time.Minute))
	addConfig(repo, "early", 125, 100, t0.Add(-time.Hour))
	r := NewResolver(repo, clk, Config{})

	out, err := bidAndResolve(t, repo, r, "A", 120)
	require.NoError(t, err)
	require.NotEmpty(t, out.Placed)
	require.Equal(t, "early", out.Placed[0].ParticipantID)
}

func TestResolver_RoundLimitRollsBack(t *testing.T) {
	t.Parallel()
	repo, clk := newFixture(t)
	addConfig(repo, "B", 1000, 100, t0.Add(-2*time.Minute))
	addConfig(repo, "C", 1000, 100, t0.Add(-time.Minute))
	r := NewResolver(repo, clk, Config{MaxRounds: 5})

	_, err := bidAndResolve(t, repo, r, "A", 120)
	require.Error(t, err)
	require.True(t, errors.Is(err, biddingerrors.ErrEscalationLimit))

	auction, bids := committed(t, repo)
	require.Empty(t, bids)
	require.True(t, auction.CurrentPrice.Equal(d(100)))
}

func TestResolver_LongBiddingWarCompletes(t *testing.T) {
	t.Parallel()
	repo, clk := newFixture(t)
	addConfig(repo, "B", 20000, 100, t0.Add(-2*time.Minute))
	addConfig(repo, "C", 15000, 100, t0.Add(-time.Minute))
	r := NewResolver(repo, clk, Config{})

	out, err := bidAndResolve(t, repo, r, "A", 120)
	require.NoError(t, err)
	require.Len(t, out.Placed, 15001-120)

	auction, bids := committed(t, repo)
	require.True(t, auction.CurrentPrice.Equal(d(15001)), "got %s", auction.CurrentPrice)
	require.Len(t, bids, 1+len(out.Placed))
	require.Equal(t, "B", bids[len(bids)-1].ParticipantID)
	require.Equal(t, model.AutoBidPaused, config(t, repo, "C").Status)
}

func TestRoundBound(t *testing.T) {
	t.Parallel()

	active := func(max int64) model.AutoBidConfig {
		return model.AutoBidConfig{MaxBidAmount: d(max), Status: model.AutoBidActive}
	}
	paused := model.AutoBidConfig{MaxBidAmount: d(1000000), Status: model.AutoBidPaused}

	tests := []struct {
		name       string
		candidates []model.AutoBidConfig
		highest    decimal.Decimal
		increment  decimal.Decimal
		expected   int
	}{
		{name: "no_candidates", highest: d(100), increment: d(1), expected: 1},
		{name: "ceilings_below_price", candidates: []model.AutoBidConfig{active(50)}, highest: d(100), increment: d(1), expected: 2},
		{name: "highest_ceiling_counts", candidates: []model.AutoBidConfig{active(20000), active(15000)}, highest: d(120), increment: d(1), expected: 19880 + 3},
		{name: "partial_step_rounds_up", candidates: []model.AutoBidConfig{active(107)}, highest: d(100), increment: d(5), expected: 2 + 2},
		{name: "paused_ceiling_ignored", candidates: []model.AutoBidConfig{active(110), paused}, highest: d(100), increment: d(1), expected: 10 + 3},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tc.expected, roundBound(tc.candidates, tc.highest, tc.increment))
		})
	}
}

func TestResolver_SkipsPausedAndEnded(t *testing.T) {
	t.Parallel()

	t.Run("paused config", func(t *testing.T) {
		t.Parallel()
		repo, clk := newFixture(t)
		repo.AddAutoBidConfig(model.AutoBidConfig{
			ParticipantID:      "B",
			MaxBidAmount:       d(500),
			BidAlertPercentage: 50,
			Status:             model.AutoBidPaused,
			ActiveBids:         []model.ActiveBid{{ItemID: "item-1", AllocatedAmount: decimal.Zero}},
			CreatedAt:          t0,
		})
		out, err := bidAndResolve(t, repo, NewResolver(repo, clk, Config{}), "A", 120)
		require.NoError(t, err)
		require.Empty(t, out.Placed)
	})

	t.Run("auction over", func(t *testing.T) {
		t.Parallel()
		repo, clk := newFixture(t)
		addConfig(repo, "B", 500, 50, t0)
		clk.Increment(2 * time.Hour)
		out, err := bidAndResolve(t, repo, NewResolver(repo, clk, Config{}), "A", 120)
		require.NoError(t, err)
		require.Empty(t, out.Placed)
	})
}

func TestResolver_CustomIncrement(t *testing.T) {
	t.Parallel()
	repo, clk := newFixture(t)
	addConfig(repo, "B", 150, 100, t0)
	r := NewResolver(repo, clk, Config{Increment: d(5)})

	out, err := bidAndResolve(t, repo, r, "A", 120)
	require.NoError(t, err)
	require.Len(t, out.Placed, 1)
	require.True(t, out.Placed[0].Amount.Equal(d(125)))
}

func TestResolver_ResolveIsIdempotent(t *testing.T) {
	t.Parallel()
	repo, clk := newFixture(t)
	addConfig(repo, "B", 150, 100, t0)
	r := NewResolver(repo, clk, Config{})

	_, err := bidAndResolve(t, repo, r, "A", 120)
	require.NoError(t, err)
	before, beforeBids := committed(t, repo)

	out, err := r.Resolve(context.Background(), "auction-1")
	require.NoError(t, err)
	require.Empty(t, out.Placed)

	after, afterBids := committed(t, repo)
	require.True(t, before.CurrentPrice.Equal(after.CurrentPrice))
	require.Len(t, afterBids, len(beforeBids))
}

func TestResolver_ResolvePicksUpNewConfig(t *testing.T) {
	t.Parallel()
	repo, clk := newFixture(t)
	r := NewResolver(repo, clk, Config{})

	_, err := bidAndResolve(t, repo, r, "A", 120)
	require.NoError(t, err)

	addConfig(repo, "B", 150, 100, t0)
	out, err := r.Resolve(context.Background(), "auction-1")
	require.NoError(t, err)
	require.Len(t, out.Placed, 1)
	require.Equal(t, 1, countKind(out.Notices, notification.KindOutbid))
	require.Equal(t, "A", out.Notices[0].ParticipantID)

	_, err = r.Resolve(context.Background(), "missing")
	require.True(t, errors.Is(err, biddingerrors.ErrNotFound))
}

func TestOutbidNotices(t *testing.T) {
	t.Parallel()

	auction := model.Auction{Title: "Vintage Clock", CurrentPrice: d(123), EndTime: t0}
	chain := []model.Bid{
		{ParticipantID: "A"},
		{ParticipantID: "B"},
		{ParticipantID: "C"},
		{ParticipantID: "B"},
	}

	tests := []struct {
		name     string
		previous string
		chain    []model.Bid
		watchers []string
		expected []string
	}{
		{name: "lead_holders", previous: "Z", chain: chain, expected: []string{"Z", "A", "C"}},
		{name: "watchers_after_holders", previous: "Z", chain: chain, watchers: []string{"Y", "A", "B", "P"}, expected: []string{"Z", "A", "C", "Y", "P"}},
		{name: "no_chain", previous: "Z", watchers: []string{"Y"}},
		{name: "first_bid", chain: []model.Bid{{ParticipantID: "A"}}},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			var got []string
			for _, n := range OutbidNotices(auction, tc.previous, tc.chain, tc.watchers) {
				require.Equal(t, notification.KindOutbid, n.Kind)
				require.Equal(t, "123", n.Data["current_price"])
				got = append(got, n.ParticipantID)
			}
			require.Equal(t, tc.expected, got)
		})
	}
}

func TestResolver_ResolveNotifiesPausedWatchers(t *testing.T) {
	t.Parallel()
	repo, clk := newFixture(t)
	r := NewResolver(repo, clk, Config{})

	_, err := bidAndResolve(t, repo, r, "A", 120)
	require.NoError(t, err)

	repo.AddAutoBidConfig(model.AutoBidConfig{
		ParticipantID:      "P",
		MaxBidAmount:       d(500),
		BidAlertPercentage: 100,
		Status:             model.AutoBidPaused,
		ActiveBids:         []model.ActiveBid{{ItemID: "item-1", AllocatedAmount: decimal.Zero}},
		CreatedAt:          t0.Add(-time.Hour),
	})
	addConfig(repo, "B", 150, 100, t0)

	out, err := r.Resolve(context.Background(), "auction-1")
	require.NoError(t, err)
	require.Len(t, out.Placed, 1)

	var outbid []string
	for _, n := range out.Notices {
		if n.Kind == notification.KindOutbid {
			outbid = append(outbid, n.ParticipantID)
		}
	}
	require.Equal(t, []string{"A", "P"}, outbid)

	// every notice is staged in the outbox with the bids it reports
	require.Len(t, out.Pending, len(out.Notices))
	pending, err := repo.ListPendingNotices(context.Background(), t0.Add(time.Second), 0, 0)
	require.NoError(t, err)
	require.Len(t, pending, len(out.Notices))
}
