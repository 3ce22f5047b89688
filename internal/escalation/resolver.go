package escalation

import (
	"context"
	"fmt"
	"time"

	"bidding-engine/internal/autobid"
	"bidding-engine/internal/biddingerrors"
	model "bidding-engine/internal/models"
	"bidding-engine/internal/notification"
	"bidding-engine/internal/repository"
	"bidding-engine/utils"

	"code.cloudfoundry.org/clock"
	"github.com/shopspring/decimal"
)

var DefaultIncrement = decimal.NewFromInt(1)

// Config bounds one escalation run. MaxRounds is an optional hard cap on top of the bound
// derived from the budgets in play; zero means no cap.
type Config struct {
	MaxRounds int
	Increment decimal.Decimal
}

// Outcome is what one escalation run did. Notices are staged by the caller; Resolve stages
// them itself and returns them in Pending for delivery after commit.
type Outcome struct {
	Auction model.Auction
	Placed  []model.Bid
	Notices []notification.Message
	Pending []model.Notice
}

// Resolver places automatic counter-bids until no active budget can legally outbid
type Resolver struct {
	store     repository.LedgerStore
	clock     clock.Clock
	maxRounds int
	increment decimal.Decimal
}

// NewResolver creates a Resolver. A non-positive increment falls back to DefaultIncrement.
func NewResolver(store repository.LedgerStore, clk clock.Clock, cfg Config) *Resolver {
	if cfg.MaxRounds < 0 {
		cfg.MaxRounds = 0
	}
	if !cfg.Increment.IsPositive() {
		cfg.Increment = DefaultIncrement
	}
	return &Resolver{store: store, clock: clk, maxRounds: cfg.MaxRounds, increment: cfg.Increment}
}

// ResolveInTx runs the escalation inside tx, starting from highBid and never letting
// exclude bid first. The auction is re-read through tx so callers pass their staged state.
func (r *Resolver) ResolveInTx(ctx context.Context, tx repository.Tx, auctionID string, highBid decimal.Decimal, exclude string) (Outcome, error) {
	auction, err := tx.FindAuction(ctx, auctionID)
	if err != nil {
		return Outcome{}, err
	}

	out := Outcome{Auction: auction}
	highest := highBid
	lastBidder := exclude

	// only this loop writes the item's configs inside tx, so one read stays current
	candidates, err := tx.ListAutoBidConfigsForItem(ctx, auction.ItemID)
	if err != nil {
		return Outcome{}, err
	}
	limit := roundBound(candidates, highest, r.increment)
	if r.maxRounds > 0 && r.maxRounds < limit {
		limit = r.maxRounds
	}

	for round := 0; ; round++ {
		if round >= limit {
			utils.Error("escalation round limit exceeded", map[string]any{
				"auction_id": auctionID,
				"rounds":     round,
				"highest":    highest.String(),
			})
			return Outcome{}, fmt.Errorf("escalation: auction %s after %d rounds: %w", auctionID, round, biddingerrors.ErrEscalationLimit)
		}

		now := r.clock.Now()
		if now.After(auction.EndTime) {
			break
		}

		placed := false
		for i := range candidates {
			cfg := candidates[i]
			if cfg.Status != model.AutoBidActive || cfg.ParticipantID == lastBidder {
				continue
			}

			budget := autobid.NewBudget(&cfg)
			proposed := decimal.Min(highest.Add(r.increment), cfg.MaxBidAmount)
			if !proposed.GreaterThan(highest) || !budget.CanPlace(auction.ItemID, proposed) {
				continue
			}

			bid := model.Bid{
				BidID:         utils.GenerateID(),
				AuctionID:     auction.AuctionID,
				ItemID:        auction.ItemID,
				ParticipantID: cfg.ParticipantID,
				Amount:        proposed,
				IsAutoBid:     true,
				CreatedAt:     now.UTC(),
			}
			auction.Accept(&bid)
			if err := tx.CreateBid(ctx, bid); err != nil {
				return Outcome{}, err
			}
			if err := tx.UpdateAuction(ctx, &auction); err != nil {
				return Outcome{}, err
			}

			budget.SetAllocation(auction.ItemID, proposed)
			out.Notices = append(out.Notices, r.budgetNotices(budget, auction)...)
			cfg.UpdatedAt = now.UTC()
			if err := tx.UpdateAutoBidConfig(ctx, &cfg); err != nil {
				return Outcome{}, err
			}
			candidates[i] = cfg

			out.Placed = append(out.Placed, bid)
			highest = proposed
			lastBidder = cfg.ParticipantID
			placed = true
			break
		}
		if !placed {
			break
		}
	}

	out.Auction = auction
	return out, nil
}

// roundBound is how many rounds a cascade starting at highest can need. A placement either
// raises the price by a full increment or lands a budget on its ceiling, which each budget
// does at most once, plus one final round that places nothing.
func roundBound(candidates []model.AutoBidConfig, highest, increment decimal.Decimal) int {
	ceiling := highest
	for _, cfg := range candidates {
		if cfg.Status == model.AutoBidActive && cfg.MaxBidAmount.GreaterThan(ceiling) {
			ceiling = cfg.MaxBidAmount
		}
	}
	steps := ceiling.Sub(highest).Div(increment).Ceil().IntPart()
	return int(steps) + len(candidates) + 1
}

// budgetNotices pauses an exhausted budget and arms the one-shot alert, returning what to tell the owner
func (r *Resolver) budgetNotices(budget *autobid.Budget, auction model.Auction) []notification.Message {
	cfg := budget.Config()
	var notices []notification.Message

	if budget.Exhausted() {
		cfg.Status = model.AutoBidPaused
		notices = append(notices, notification.Message{
			ParticipantID: cfg.ParticipantID,
			Kind:          notification.KindAutoBidExhausted,
			Data: notification.Data{
				"title":           auction.Title,
				"max_bid_amount":  cfg.MaxBidAmount.String(),
				"total_allocated": budget.TotalAllocated().String(),
			},
		})
	}
	if !cfg.AlertSent && budget.AlertThresholdReached() {
		cfg.AlertSent = true
		notices = append(notices, notification.Message{
			ParticipantID: cfg.ParticipantID,
			Kind:          notification.KindAutoBidAlert,
			Data: notification.Data{
				"title":            auction.Title,
				"max_bid_amount":   cfg.MaxBidAmount.String(),
				"total_allocated":  budget.TotalAllocated().String(),
				"alert_percentage": cfg.BidAlertPercentage,
			},
		})
	}
	return notices
}

// Resolve re-runs escalation from the auction's current highest bid in its own transaction.
// Running it again on a settled cascade changes nothing.
func (r *Resolver) Resolve(ctx context.Context, auctionID string) (Outcome, error) {
	var out Outcome
	err := r.store.WithTransaction(ctx, func(ctx context.Context, tx repository.Tx) error {
		auction, err := tx.FindAuction(ctx, auctionID)
		if err != nil {
			return err
		}
		// escalation only ever answers a bid
		if auction.Awarded || !auction.HasBids() {
			out = Outcome{Auction: auction}
			return nil
		}

		high, err := tx.FindBid(ctx, auction.HighestBidID)
		if err != nil {
			return err
		}

		out, err = r.ResolveInTx(ctx, tx, auctionID, auction.CurrentPrice, high.ParticipantID)
		if err != nil {
			return err
		}
		watchers, err := Watchers(ctx, tx, out.Auction)
		if err != nil {
			return err
		}
		out.Notices = append(OutbidNotices(out.Auction, high.ParticipantID, out.Placed, watchers), out.Notices...)
		out.Pending, err = notification.Stage(ctx, tx, out.Notices, r.clock.Now())
		return err
	})
	if err != nil {
		return Outcome{}, fmt.Errorf("escalation: failed to resolve auction %s: %w", auctionID, err)
	}
	return out, nil
}

// Watchers lists everyone following an auction: its manual bidders in bid order, then every
// budget enrolled on its item, paused or not.
func Watchers(ctx context.Context, tx repository.Tx, auction model.Auction) ([]string, error) {
	bids, err := tx.ListBids(ctx, auction.AuctionID)
	if err != nil {
		return nil, err
	}
	configs, err := tx.ListAutoBidConfigsForItem(ctx, auction.ItemID)
	if err != nil {
		return nil, err
	}

	var watchers []string
	for _, b := range bids {
		if !b.IsAutoBid {
			watchers = append(watchers, b.ParticipantID)
		}
	}
	for _, cfg := range configs {
		watchers = append(watchers, cfg.ParticipantID)
	}
	return watchers, nil
}

// OutbidNotices tells everyone following the auction that a bid chain moved the price past them:
// previousHolder, each lead holder in the chain, then the watchers. The final holder is not
// notified and nobody is told twice.
func OutbidNotices(auction model.Auction, previousHolder string, chain []model.Bid, watchers []string) []notification.Message {
	if len(chain) == 0 {
		return nil
	}
	winner := chain[len(chain)-1].ParticipantID

	seen := map[string]bool{winner: true, "": true}
	recipients := make([]string, 0, len(chain)+len(watchers)+1)
	recipients = append(recipients, previousHolder)
	for _, b := range chain {
		recipients = append(recipients, b.ParticipantID)
	}
	recipients = append(recipients, watchers...)

	var notices []notification.Message
	for _, p := range recipients {
		if seen[p] {
			continue
		}
		seen[p] = true
		notices = append(notices, notification.Message{
			ParticipantID: p,
			Kind:          notification.KindOutbid,
			Data: notification.Data{
				"title":         auction.Title,
				"current_price": auction.CurrentPrice.String(),
				"end_time":      auction.EndTime.Format(time.RFC3339),
			},
		})
	}
	return notices
}
