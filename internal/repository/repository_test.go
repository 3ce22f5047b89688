package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"bidding-engine/internal/biddingerrors"
	model "bidding-engine/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

// Helper to create a new Auction
func newAuction(auctionID string, endTime time.Time) model.Auction {
	return model.Auction{
		AuctionID:     auctionID,
		ItemID:        "item-" + auctionID,
		Title:         fmt.Sprintf("%s title", auctionID),
		StartingPrice: decimal.NewFromInt(50),
		EndTime:       endTime,
		CreatedAt:     t0,
	}
}

// appendBid records a bid on auctionID inside tx
func appendBid(ctx context.Context, tx Tx, auctionID, participantID string, amount int64) error {
	auction, err := tx.FindAuction(ctx, auctionID)
	if err != nil {
		return err
	}
	bid := model.Bid{
		BidID:         fmt.Sprintf("%s-%s-%d", auctionID, participantID, amount),
		AuctionID:     auctionID,
		ItemID:        auction.ItemID,
		ParticipantID: participantID,
		Amount:        decimal.NewFromInt(amount),
		CreatedAt:     t0,
	}
	auction.Accept(&bid)
	if err := tx.CreateBid(ctx, bid); err != nil {
		return err
	}
	return tx.UpdateAuction(ctx, &auction)
}

func TestMemoryRepo_CommitAndRollback(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := NewMemoryRepo()
	repo.AddAuction(newAuction("a1", t0.Add(time.Hour)))

	require.NoError(t, repo.WithTransaction(ctx, func(ctx context.Context, tx Tx) error {
		return appendBid(ctx, tx, "a1", "user1", 100)
	}))

	boom := errors.New("boom")
	err := repo.WithTransaction(ctx, func(ctx context.Context, tx Tx) error {
		if err := appendBid(ctx, tx, "a1", "user2", 200); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	require.NoError(t, repo.WithTransaction(ctx, func(ctx context.Context, tx Tx) error {
		auction, err := tx.FindAuction(ctx, "a1")
		require.NoError(t, err)
		require.True(t, auction.CurrentPrice.Equal(decimal.NewFromInt(100)))
		require.Equal(t, []string{"a1-user1-100"}, auction.BidIDs)
		require.Equal(t, "a1-user1-100", auction.HighestBidID)

		bids, err := tx.ListBids(ctx, "a1")
		require.NoError(t, err)
		require.Len(t, bids, 1)
		require.Equal(t, int64(1), bids[0].Seq)

		_, err = tx.FindBid(ctx, "a1-user2-200")
		require.ErrorIs(t, err, biddingerrors.ErrBidNotFound)
		return nil
	}))
}

func TestMemoryRepo_ReadsOwnWrites(t *testing.T) {
	t.Parallel()

	repo := NewMemoryRepo()
	repo.AddAuction(newAuction("a1", t0.Add(time.Hour)))

	require.NoError(t, repo.WithTransaction(context.Background(), func(ctx context.Context, tx Tx) error {
		require.NoError(t, appendBid(ctx, tx, "a1", "user1", 100))
		require.NoError(t, appendBid(ctx, tx, "a1", "user2", 110))

		auction, err := tx.FindAuction(ctx, "a1")
		require.NoError(t, err)
		require.Len(t, auction.BidIDs, 2)

		bids, err := tx.ListBids(ctx, "a1")
		require.NoError(t, err)
		require.Len(t, bids, 2)
		require.Equal(t, "user2", bids[1].ParticipantID)

		bid, err := tx.FindBid(ctx, auction.HighestBidID)
		require.NoError(t, err)
		require.Equal(t, "user2", bid.ParticipantID)
		return nil
	}))
}

func TestMemoryRepo_StaleReadConflicts(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := NewMemoryRepo()
	repo.AddAuction(newAuction("a1", t0.Add(time.Hour)))

	err := repo.WithTransaction(ctx, func(ctx context.Context, tx Tx) error {
		if _, err := tx.FindAuction(ctx, "a1"); err != nil {
			return err
		}

		// another writer commits in between
		require.NoError(t, repo.WithTransaction(ctx, func(ctx context.Context, other Tx) error {
			return appendBid(ctx, other, "a1", "user2", 130)
		}))

		return appendBid(ctx, tx, "a1", "user1", 120)
	})
	require.ErrorIs(t, err, biddingerrors.ErrTransactionConflict)

	require.NoError(t, repo.WithTransaction(ctx, func(ctx context.Context, tx Tx) error {
		bids, err := tx.ListBids(ctx, "a1")
		require.NoError(t, err)
		require.Len(t, bids, 1)
		require.Equal(t, "user2", bids[0].ParticipantID)
		return nil
	}))
}

func TestMemoryRepo_ConfigConflicts(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := NewMemoryRepo()
	repo.AddAutoBidConfig(model.AutoBidConfig{ParticipantID: "user1", MaxBidAmount: decimal.NewFromInt(100), Status: model.AutoBidActive})

	err := repo.WithTransaction(ctx, func(ctx context.Context, tx Tx) error {
		cfg, err := tx.FindAutoBidConfig(ctx, "user1")
		if err != nil {
			return err
		}

		require.NoError(t, repo.WithTransaction(ctx, func(ctx context.Context, other Tx) error {
			c, err := other.FindAutoBidConfig(ctx, "user1")
			if err != nil {
				return err
			}
			c.Status = model.AutoBidPaused
			return other.UpdateAutoBidConfig(ctx, &c)
		}))

		cfg.MaxBidAmount = decimal.NewFromInt(500)
		return tx.UpdateAutoBidConfig(ctx, &cfg)
	})
	require.ErrorIs(t, err, biddingerrors.ErrTransactionConflict)
}

func TestMemoryRepo_ConcurrentWritersNeverLoseUpdates(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := NewMemoryRepo()
	repo.AddAuction(newAuction("a1", t0.Add(time.Hour)))

	var wg sync.WaitGroup
	writers := 50
	errs := make(chan error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		i := i
		go func() {
			defer wg.Done()
			for {
				err := repo.WithTransaction(ctx, func(ctx context.Context, tx Tx) error {
					return appendBid(ctx, tx, "a1", fmt.Sprintf("user-%d", i), int64(100+i))
				})
				if !errors.Is(err, biddingerrors.ErrTransactionConflict) {
					errs <- err
					return
				}
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	require.NoError(t, repo.WithTransaction(ctx, func(ctx context.Context, tx Tx) error {
		auction, err := tx.FindAuction(ctx, "a1")
		require.NoError(t, err)
		require.Len(t, auction.BidIDs, writers)

		bids, err := tx.ListBids(ctx, "a1")
		require.NoError(t, err)
		require.Len(t, bids, writers)
		for i, b := range bids {
			require.Equal(t, int64(i+1), b.Seq)
		}
		require.Equal(t, bids[writers-1].BidID, auction.HighestBidID)
		return nil
	}))
}

func TestMemoryRepo_DeleteAuctionCascades(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := NewMemoryRepo()
	repo.AddAuction(newAuction("a1", t0.Add(time.Hour)))
	repo.AddAuction(newAuction("a2", t0.Add(time.Hour)))

	require.NoError(t, repo.WithTransaction(ctx, func(ctx context.Context, tx Tx) error {
		if err := appendBid(ctx, tx, "a1", "user1", 100); err != nil {
			return err
		}
		return appendBid(ctx, tx, "a2", "user1", 100)
	}))

	require.NoError(t, repo.WithTransaction(ctx, func(ctx context.Context, tx Tx) error {
		return tx.DeleteAuction(ctx, "a1")
	}))

	require.NoError(t, repo.WithTransaction(ctx, func(ctx context.Context, tx Tx) error {
		_, err := tx.FindAuction(ctx, "a1")
		require.ErrorIs(t, err, biddingerrors.ErrAuctionNotFound)
		_, err = tx.FindBid(ctx, "a1-user1-100")
		require.ErrorIs(t, err, biddingerrors.ErrBidNotFound)
		bids, err := tx.ListBids(ctx, "a1")
		require.NoError(t, err)
		require.Empty(t, bids)
		return nil
	}))

	auctions, err := repo.GetAuctionsByParticipant(ctx, "user1")
	require.NoError(t, err)
	require.Len(t, auctions, 1)
	require.Equal(t, "a2", auctions[0].AuctionID)

	err = repo.WithTransaction(ctx, func(ctx context.Context, tx Tx) error {
		return tx.DeleteAuction(ctx, "a1")
	})
	require.ErrorIs(t, err, biddingerrors.ErrNotFound)
}

func TestMemoryRepo_CreateAuction(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := NewMemoryRepo()

	tests := []struct {
		name    string
		auction model.Auction
		wantErr error
	}{
		{name: "valid_auction", auction: newAuction("a1", t0.Add(time.Hour))},
		{name: "duplicate_auction", auction: newAuction("a1", t0.Add(time.Hour)), wantErr: biddingerrors.ErrInvalidAuction},
		{name: "empty_auctionID", auction: newAuction("", t0.Add(time.Hour)), wantErr: biddingerrors.ErrInvalidAuction},
	}

	// sequential: the duplicate case depends on the first
	for _, tc := range tests {
		err := repo.WithTransaction(ctx, func(ctx context.Context, tx Tx) error {
			return tx.CreateAuction(ctx, tc.auction)
		})
		if tc.wantErr != nil {
			require.ErrorIs(t, err, tc.wantErr, tc.name)
		} else {
			require.NoError(t, err, tc.name)
		}
	}
}

func TestMemoryRepo_ListLapsedAuctions(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := NewMemoryRepo()
	repo.AddAuction(newAuction("late", t0.Add(-time.Minute)))
	repo.AddAuction(newAuction("early", t0.Add(-time.Hour)))
	repo.AddAuction(newAuction("exact", t0))
	repo.AddAuction(newAuction("open", t0.Add(time.Minute)))
	awarded := newAuction("awarded", t0.Add(-2*time.Hour))
	awarded.Awarded = true
	repo.AddAuction(awarded)

	tests := []struct {
		name  string
		limit int
		want  []string
	}{
		{name: "no_limit", limit: 0, want: []string{"early", "late", "exact"}},
		{name: "limited", limit: 2, want: []string{"early", "late"}},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			lapsed, err := repo.ListLapsedAuctions(ctx, t0, tc.limit)
			require.NoError(t, err)
			ids := make([]string, 0, len(lapsed))
			for _, a := range lapsed {
				ids = append(ids, a.AuctionID)
			}
			require.Equal(t, tc.want, ids)
		})
	}
}

func TestMemoryRepo_ListAutoBidConfigsForItem(t *testing.T) {
	t.Parallel()

	holding := func(participantID string, created time.Time, items ...string) model.AutoBidConfig {
		cfg := model.AutoBidConfig{ParticipantID: participantID, Status: model.AutoBidActive, CreatedAt: created}
		for _, item := range items {
			cfg.ActiveBids = append(cfg.ActiveBids, model.ActiveBid{ItemID: item})
		}
		return cfg
	}

	repo := NewMemoryRepo()
	repo.AddAutoBidConfig(holding("carol", t0.Add(time.Minute), "item-1"))
	repo.AddAutoBidConfig(holding("bob", t0, "item-1", "item-2"))
	repo.AddAutoBidConfig(holding("alice", t0, "item-1"))
	repo.AddAutoBidConfig(holding("dave", t0.Add(-time.Hour), "item-2"))

	require.NoError(t, repo.WithTransaction(context.Background(), func(ctx context.Context, tx Tx) error {
		configs, err := tx.ListAutoBidConfigsForItem(ctx, "item-1")
		require.NoError(t, err)
		ids := make([]string, 0, len(configs))
		for _, c := range configs {
			ids = append(ids, c.ParticipantID)
		}
		require.Equal(t, []string{"alice", "bob", "carol"}, ids)

		// a staged release is visible to the same transaction
		bob := configs[1]
		bob.ActiveBids = bob.ActiveBids[1:]
		require.NoError(t, tx.UpdateAutoBidConfig(ctx, &bob))

		configs, err = tx.ListAutoBidConfigsForItem(ctx, "item-1")
		require.NoError(t, err)
		require.Len(t, configs, 2)
		return nil
	}))
}

func TestMemoryRepo_Invoices(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := NewMemoryRepo()
	inv := model.Invoice{InvoiceID: "inv-1", AuctionID: "a1", ParticipantID: "user1", Amount: decimal.NewFromInt(10), CreatedAt: t0}

	require.NoError(t, repo.WithTransaction(ctx, func(ctx context.Context, tx Tx) error {
		return tx.CreateInvoice(ctx, inv)
	}))

	err := repo.WithTransaction(ctx, func(ctx context.Context, tx Tx) error {
		return tx.CreateInvoice(ctx, model.Invoice{InvoiceID: "inv-2", AuctionID: "a1"})
	})
	require.ErrorIs(t, err, biddingerrors.ErrDuplicateInvoice)

	missing, err := repo.ListInvoicesMissingDocument(ctx, 10)
	require.NoError(t, err)
	require.Len(t, missing, 1)

	require.NoError(t, repo.WithTransaction(ctx, func(ctx context.Context, tx Tx) error {
		current, err := tx.FindInvoice(ctx, "a1")
		if err != nil {
			return err
		}
		current.DocumentKey = "invoices/a1.pdf"
		return tx.UpdateInvoice(ctx, current)
	}))

	missing, err = repo.ListInvoicesMissingDocument(ctx, 10)
	require.NoError(t, err)
	require.Empty(t, missing)
}

func TestMemoryRepo_ParticipantsAndNoBids(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := NewMemoryRepo()
	repo.AddParticipant(model.Participant{ParticipantID: "user1", Name: "Ada", Email: "ada@example.com"})

	p, err := repo.FindParticipant(ctx, "user1")
	require.NoError(t, err)
	require.Equal(t, "ada@example.com", p.Email)

	_, err = repo.FindParticipant(ctx, "ghost")
	require.ErrorIs(t, err, biddingerrors.ErrNotFound)

	_, err = repo.GetAuctionsByParticipant(ctx, "user1")
	require.ErrorIs(t, err, biddingerrors.ErrNoBids)
}
