package bidding

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bidding-engine/internal/autobid"
	"bidding-engine/internal/biddingerrors"
	"bidding-engine/internal/escalation"
	"bidding-engine/internal/live"
	"bidding-engine/internal/models"
	"bidding-engine/internal/notification"
	"bidding-engine/internal/repository"
	"bidding-engine/utils"

	"code.cloudfoundry.org/clock"
	"github.com/shopspring/decimal"
)

const DefaultMaxRetries = 3

// Config tunes the BiddingService
type Config struct {
	MaxRetries int
}

// PlaceBidResult is the accepted manual bid together with the automatic bids it provoked
type PlaceBidResult struct {
	Bid      models.Bid     `json:"bid"`
	AutoBids []models.Bid   `json:"auto_bids"`
	Auction  models.Auction `json:"auction"`
}

// NewAuction describes an auction to open
type NewAuction struct {
	ItemID        string
	Title         string
	Description   string
	StartingPrice decimal.Decimal
	EndTime       time.Time
}

// BiddingService defines the business logic for auction bidding
type BiddingService struct {
	store       repository.LedgerStore
	resolver    *escalation.Resolver
	dispatcher  *notification.Dispatcher
	broadcaster live.Broadcaster
	clock       clock.Clock
	maxRetries  int
}

// NewBiddingService creates a new BiddingService instance
func NewBiddingService(
	store repository.LedgerStore,
	resolver *escalation.Resolver,
	dispatcher *notification.Dispatcher,
	broadcaster live.Broadcaster,
	clk clock.Clock,
	cfg Config,
) *BiddingService {
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = DefaultMaxRetries
	}
	return &BiddingService{
		store:       store,
		resolver:    resolver,
		dispatcher:  dispatcher,
		broadcaster: broadcaster,
		clock:       clk,
		maxRetries:  cfg.MaxRetries,
	}
}

// placement is what one committed PlaceBid transaction produced
type placement struct {
	result  PlaceBidResult
	pending []models.Notice
}

// PlaceBid validates and records a participant's bid, then lets auto-bidders answer it
// in the same transaction. Store conflicts are retried against fresh state.
func (s *BiddingService) PlaceBid(ctx context.Context, auctionID, participantID string, amount decimal.Decimal) (PlaceBidResult, error) {
	if auctionID == "" || participantID == "" {
		return PlaceBidResult{}, fmt.Errorf("service: %w - missing auctionID or participantID", biddingerrors.ErrInvalidBid)
	}
	if !amount.IsPositive() {
		return PlaceBidResult{}, fmt.Errorf("service: %w - non-positive bid amount", biddingerrors.ErrInvalidBid)
	}

	var (
		p   placement
		err error
	)
	for attempt := 0; attempt <= s.maxRetries; attempt++ {
		p, err = s.placeOnce(ctx, auctionID, participantID, amount)
		if !errors.Is(err, biddingerrors.ErrTransactionConflict) {
			break
		}
		utils.Warn("bid transaction conflict, retrying", map[string]any{
			"auction_id":     auctionID,
			"participant_id": participantID,
			"attempt":        attempt + 1,
		})
	}
	if err != nil {
		return PlaceBidResult{}, fmt.Errorf("service: failed to place bid on auction %s by %s: %w", auctionID, participantID, err)
	}

	s.afterCommit(ctx, p)

	utils.Info("bid placed", map[string]any{
		"auction_id":     auctionID,
		"participant_id": participantID,
		"amount":         amount.String(),
		"auto_bids":      len(p.result.AutoBids),
		"current_price":  p.result.Auction.CurrentPrice.String(),
	})
	return p.result, nil
}

func (s *BiddingService) placeOnce(ctx context.Context, auctionID, participantID string, amount decimal.Decimal) (placement, error) {
	var p placement
	err := s.store.WithTransaction(ctx, func(ctx context.Context, tx repository.Tx) error {
		auction, err := tx.FindAuction(ctx, auctionID)
		if err != nil {
			return err
		}

		now := s.clock.Now()
		if auction.Ended(now) {
			return fmt.Errorf("%w - ended at %s", biddingerrors.ErrAuctionEnded, auction.EndTime.Format(time.RFC3339))
		}
		if amount.LessThanOrEqual(auction.CurrentPrice) {
			return fmt.Errorf("%w - current price is %s", biddingerrors.ErrBidTooLow, auction.CurrentPrice.StringFixed(2))
		}

		previousHolder := ""
		if auction.HasBids() {
			high, err := tx.FindBid(ctx, auction.HighestBidID)
			if err != nil {
				return err
			}
			if high.ParticipantID == participantID {
				return biddingerrors.ErrAlreadyHighest
			}
			previousHolder = high.ParticipantID
		}

		if err := s.checkBudget(ctx, tx, participantID, auction.ItemID, amount); err != nil {
			return err
		}

		bid := models.Bid{
			BidID:         utils.GenerateID(),
			AuctionID:     auction.AuctionID,
			ItemID:        auction.ItemID,
			ParticipantID: participantID,
			Amount:        amount,
			CreatedAt:     now.UTC(),
		}
		auction.Accept(&bid)
		if err := tx.CreateBid(ctx, bid); err != nil {
			return err
		}
		if err := tx.UpdateAuction(ctx, &auction); err != nil {
			return err
		}

		out, err := s.resolver.ResolveInTx(ctx, tx, auctionID, amount, participantID)
		if err != nil {
			return err
		}

		watchers, err := escalation.Watchers(ctx, tx, out.Auction)
		if err != nil {
			return err
		}
		chain := append([]models.Bid{bid}, out.Placed...)
		msgs := append(escalation.OutbidNotices(out.Auction, previousHolder, chain, watchers), out.Notices...)
		pending, err := notification.Stage(ctx, tx, msgs, now)
		if err != nil {
			return err
		}

		p = placement{
			result: PlaceBidResult{
				Bid:      bid,
				AutoBids: out.Placed,
				Auction:  out.Auction,
			},
			pending: pending,
		}
		return nil
	})
	return p, err
}

// checkBudget rejects a manual bid above the ceiling of a budget that holds the item
func (s *BiddingService) checkBudget(ctx context.Context, tx repository.Tx, participantID, itemID string, amount decimal.Decimal) error {
	cfg, err := tx.FindAutoBidConfig(ctx, participantID)
	if errors.Is(err, biddingerrors.ErrConfigNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if autobid.NewBudget(&cfg).Holds(itemID) && amount.GreaterThan(cfg.MaxBidAmount) {
		return fmt.Errorf("%w - bid %s is above auto-bid ceiling %s", biddingerrors.ErrBudgetExceeded, amount.String(), cfg.MaxBidAmount.String())
	}
	return nil
}

// afterCommit publishes every accepted bid and delivers the staged notices. Nothing here can fail the bid.
func (s *BiddingService) afterCommit(ctx context.Context, p placement) {
	chain := append([]models.Bid{p.result.Bid}, p.result.AutoBids...)
	final := p.result.Auction

	for i, bid := range chain {
		s.broadcaster.Publish(final.AuctionID, live.Update{
			AuctionID:     final.AuctionID,
			ItemID:        final.ItemID,
			HighestBidder: bid.ParticipantID,
			BidCount:      len(final.BidIDs) - (len(chain) - 1 - i),
			CurrentPrice:  bid.Amount,
			Bid:           bid,
		})
	}

	if failed := s.dispatcher.Deliver(ctx, s.store, p.pending); failed > 0 {
		utils.Warn("some bid notifications failed, left pending", map[string]any{
			"auction_id": final.AuctionID,
			"failed":     failed,
			"total":      len(p.pending),
		})
	}
}

// Escalate re-runs auto-bidding on an auction, e.g. after budgets changed
func (s *BiddingService) Escalate(ctx context.Context, auctionID string) (PlaceBidResult, error) {
	if auctionID == "" {
		return PlaceBidResult{}, fmt.Errorf("service: %w - empty auction ID", biddingerrors.ErrInvalidBid)
	}

	out, err := s.resolver.Resolve(ctx, auctionID)
	if err != nil {
		return PlaceBidResult{}, fmt.Errorf("service: %w", err)
	}

	for i, bid := range out.Placed {
		s.broadcaster.Publish(auctionID, live.Update{
			AuctionID:     auctionID,
			ItemID:        out.Auction.ItemID,
			HighestBidder: bid.ParticipantID,
			BidCount:      len(out.Auction.BidIDs) - (len(out.Placed) - 1 - i),
			CurrentPrice:  bid.Amount,
			Bid:           bid,
		})
	}
	s.dispatcher.Deliver(ctx, s.store, out.Pending)

	return PlaceBidResult{AutoBids: out.Placed, Auction: out.Auction}, nil
}

// GetAuction returns the current state of an auction
func (s *BiddingService) GetAuction(ctx context.Context, auctionID string) (models.Auction, error) {
	if auctionID == "" {
		return models.Auction{}, fmt.Errorf("service: %w - empty auction ID", biddingerrors.ErrInvalidBid)
	}

	var auction models.Auction
	err := s.store.WithTransaction(ctx, func(ctx context.Context, tx repository.Tx) error {
		var err error
		auction, err = tx.FindAuction(ctx, auctionID)
		return err
	})
	if err != nil {
		return models.Auction{}, fmt.Errorf("service: failed to get auction %s: %w", auctionID, err)
	}
	return auction, nil
}

// GetBidsForItem returns all bids of an auction in the order they were placed
func (s *BiddingService) GetBidsForItem(ctx context.Context, auctionID string) ([]models.Bid, error) {
	if auctionID == "" {
		return nil, fmt.Errorf("service: %w - empty auction ID", biddingerrors.ErrInvalidBid)
	}

	var bids []models.Bid
	err := s.store.WithTransaction(ctx, func(ctx context.Context, tx repository.Tx) error {
		if _, err := tx.FindAuction(ctx, auctionID); err != nil {
			return err
		}
		var err error
		bids, err = tx.ListBids(ctx, auctionID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("service: failed to get bids for auction %s: %w", auctionID, err)
	}

	return bids, nil
}

// GetWinningBid returns the highest bid of an auction
func (s *BiddingService) GetWinningBid(ctx context.Context, auctionID string) (models.Bid, error) {
	if auctionID == "" {
		return models.Bid{}, fmt.Errorf("service: %w - empty auction ID", biddingerrors.ErrInvalidBid)
	}

	var winningBid models.Bid
	err := s.store.WithTransaction(ctx, func(ctx context.Context, tx repository.Tx) error {
		auction, err := tx.FindAuction(ctx, auctionID)
		if err != nil {
			return err
		}
		if !auction.HasBids() {
			return biddingerrors.ErrNoBids
		}
		winningBid, err = tx.FindBid(ctx, auction.HighestBidID)
		return err
	})
	if err != nil {
		return models.Bid{}, fmt.Errorf("service: failed to get winning bid for auction %s: %w", auctionID, err)
	}

	return winningBid, nil
}

// GetAuctionsByParticipant returns all auctions a participant has placed bids on
func (s *BiddingService) GetAuctionsByParticipant(ctx context.Context, participantID string) ([]models.Auction, error) {
	if participantID == "" {
		return nil, fmt.Errorf("service: %w - empty participant ID", biddingerrors.ErrInvalidBid)
	}

	auctions, err := s.store.GetAuctionsByParticipant(ctx, participantID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to get auctions for participant %s: %w", participantID, err)
	}

	return auctions, nil
}

// CreateAuction opens a new auction at its starting price
func (s *BiddingService) CreateAuction(ctx context.Context, in NewAuction) (models.Auction, error) {
	now := s.clock.Now().UTC()
	switch {
	case in.Title == "":
		return models.Auction{}, fmt.Errorf("service: %w - empty title", biddingerrors.ErrInvalidAuction)
	case in.StartingPrice.IsNegative():
		return models.Auction{}, fmt.Errorf("service: %w - negative starting price", biddingerrors.ErrInvalidAuction)
	case !in.EndTime.After(now):
		return models.Auction{}, fmt.Errorf("service: %w - end time must be in the future", biddingerrors.ErrInvalidAuction)
	}

	auction := models.Auction{
		AuctionID:     utils.GenerateID(),
		ItemID:        in.ItemID,
		Title:         in.Title,
		Description:   in.Description,
		StartingPrice: in.StartingPrice,
		CurrentPrice:  in.StartingPrice,
		EndTime:       in.EndTime.UTC(),
		BidIDs:        []string{},
		CreatedAt:     now,
	}
	if auction.ItemID == "" {
		auction.ItemID = utils.GenerateID()
	}

	err := s.store.WithTransaction(ctx, func(ctx context.Context, tx repository.Tx) error {
		return tx.CreateAuction(ctx, auction)
	})
	if err != nil {
		return models.Auction{}, fmt.Errorf("service: failed to create auction %q: %w", in.Title, err)
	}

	utils.Info("auction created", map[string]any{"auction_id": auction.AuctionID, "item_id": auction.ItemID})
	return auction, nil
}

// DeleteAuction removes an auction with its bids and frees every budget reserved on its item
func (s *BiddingService) DeleteAuction(ctx context.Context, auctionID string) error {
	if auctionID == "" {
		return fmt.Errorf("service: %w - empty auction ID", biddingerrors.ErrInvalidBid)
	}

	var pending []models.Notice
	err := s.store.WithTransaction(ctx, func(ctx context.Context, tx repository.Tx) error {
		var released []notification.Message
		auction, err := tx.FindAuction(ctx, auctionID)
		if err != nil {
			return err
		}

		configs, err := tx.ListAutoBidConfigsForItem(ctx, auction.ItemID)
		if err != nil {
			return err
		}
		for i := range configs {
			cfg := configs[i]
			budget := autobid.NewBudget(&cfg)
			amount, _ := budget.AllocationFor(auction.ItemID)
			budget.Release(auction.ItemID)
			cfg.UpdatedAt = s.clock.Now().UTC()
			if err := tx.UpdateAutoBidConfig(ctx, &cfg); err != nil {
				return err
			}
			released = append(released, notification.Message{
				ParticipantID: cfg.ParticipantID,
				Kind:          notification.KindAutoBidFundsRelease,
				Data: notification.Data{
					"title":           auction.Title,
					"released_amount": amount.String(),
				},
			})
		}

		if err := tx.DeleteAuction(ctx, auctionID); err != nil {
			return err
		}
		pending, err = notification.Stage(ctx, tx, released, s.clock.Now())
		return err
	})
	if err != nil {
		return fmt.Errorf("service: failed to delete auction %s: %w", auctionID, err)
	}

	s.dispatcher.Deliver(ctx, s.store, pending)
	utils.Info("auction deleted", map[string]any{"auction_id": auctionID, "released_budgets": len(pending)})
	return nil
}
