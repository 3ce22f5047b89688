package autobid

import (
	"context"
	"errors"
	"fmt"

	"bidding-engine/internal/biddingerrors"
	model "bidding-engine/internal/models"
	"bidding-engine/internal/repository"

	"code.cloudfoundry.org/clock"
	"github.com/shopspring/decimal"
)

// Service manages participants' auto-bid configurations
type Service struct {
	store repository.LedgerStore
	clock clock.Clock
}

// NewService creates a new auto-bid config Service
func NewService(store repository.LedgerStore, clk clock.Clock) *Service {
	return &Service{store: store, clock: clk}
}

// SetConfig creates the participant's config or reconfigures the existing one
func (s *Service) SetConfig(ctx context.Context, participantID string, maxBidAmount decimal.Decimal, alertPercentage int) (model.AutoBidConfig, error) {
	if participantID == "" {
		return model.AutoBidConfig{}, fmt.Errorf("autobid: %w - empty participant ID", biddingerrors.ErrInvalidConfig)
	}
	if err := ValidateLimits(maxBidAmount, alertPercentage); err != nil {
		return model.AutoBidConfig{}, err
	}

	var saved model.AutoBidConfig
	err := s.store.WithTransaction(ctx, func(ctx context.Context, tx repository.Tx) error {
		now := s.clock.Now().UTC()
		cfg, err := tx.FindAutoBidConfig(ctx, participantID)
		if errors.Is(err, biddingerrors.ErrConfigNotFound) {
			saved = model.AutoBidConfig{
				ParticipantID:      participantID,
				MaxBidAmount:       maxBidAmount,
				BidAlertPercentage: alertPercentage,
				Status:             model.AutoBidActive,
				ActiveBids:         []model.ActiveBid{},
				CreatedAt:          now,
				UpdatedAt:          now,
			}
			return tx.CreateAutoBidConfig(ctx, saved)
		}
		if err != nil {
			return err
		}

		if err := NewBudget(&cfg).Reconfigure(maxBidAmount, alertPercentage); err != nil {
			return err
		}
		cfg.UpdatedAt = now
		if err := tx.UpdateAutoBidConfig(ctx, &cfg); err != nil {
			return err
		}
		saved = cfg
		return nil
	})
	if err != nil {
		return model.AutoBidConfig{}, fmt.Errorf("autobid: failed to set config for %s: %w", participantID, err)
	}
	return saved, nil
}

// GetConfig returns the participant's config
func (s *Service) GetConfig(ctx context.Context, participantID string) (model.AutoBidConfig, error) {
	var cfg model.AutoBidConfig
	err := s.store.WithTransaction(ctx, func(ctx context.Context, tx repository.Tx) error {
		var err error
		cfg, err = tx.FindAutoBidConfig(ctx, participantID)
		return err
	})
	if err != nil {
		return model.AutoBidConfig{}, fmt.Errorf("autobid: failed to get config for %s: %w", participantID, err)
	}
	return cfg, nil
}

// ToggleItem enrolls an open auction's item into the participant's auto-bidding with a zero
// allocation, or withdraws it and frees its allocation. It reports whether the item is now enrolled.
func (s *Service) ToggleItem(ctx context.Context, participantID, auctionID string) (model.AutoBidConfig, bool, error) {
	var (
		saved    model.AutoBidConfig
		enrolled bool
	)
	err := s.store.WithTransaction(ctx, func(ctx context.Context, tx repository.Tx) error {
		cfg, err := tx.FindAutoBidConfig(ctx, participantID)
		if err != nil {
			return err
		}
		auction, err := tx.FindAuction(ctx, auctionID)
		if err != nil {
			return err
		}

		budget := NewBudget(&cfg)
		if budget.Holds(auction.ItemID) {
			budget.Release(auction.ItemID)
			enrolled = false
		} else {
			if s.clock.Now().After(auction.EndTime) || auction.Awarded {
				return fmt.Errorf("autobid: auction %s: %w", auctionID, biddingerrors.ErrAuctionEnded)
			}
			// writing the auction makes enrolment conflict with a settlement awarding it concurrently
			if err := tx.UpdateAuction(ctx, &auction); err != nil {
				return err
			}
			budget.SetAllocation(auction.ItemID, decimal.Zero)
			enrolled = true
		}
		cfg.UpdatedAt = s.clock.Now().UTC()
		if err := tx.UpdateAutoBidConfig(ctx, &cfg); err != nil {
			return err
		}
		saved = cfg
		return nil
	})
	if err != nil {
		return model.AutoBidConfig{}, false, fmt.Errorf("autobid: failed to toggle auction %s for %s: %w", auctionID, participantID, err)
	}
	return saved, enrolled, nil
}

// SetStatus pauses or resumes auto-bidding. Resuming re-arms the budget alert.
func (s *Service) SetStatus(ctx context.Context, participantID string, status model.AutoBidStatus) (model.AutoBidConfig, error) {
	if status != model.AutoBidActive && status != model.AutoBidPaused {
		return model.AutoBidConfig{}, fmt.Errorf("autobid: %w - unknown status %q", biddingerrors.ErrInvalidConfig, status)
	}

	var saved model.AutoBidConfig
	err := s.store.WithTransaction(ctx, func(ctx context.Context, tx repository.Tx) error {
		cfg, err := tx.FindAutoBidConfig(ctx, participantID)
		if err != nil {
			return err
		}
		if status == model.AutoBidActive && cfg.Status != model.AutoBidActive {
			cfg.AlertSent = false
		}
		cfg.Status = status
		cfg.UpdatedAt = s.clock.Now().UTC()
		if err := tx.UpdateAutoBidConfig(ctx, &cfg); err != nil {
			return err
		}
		saved = cfg
		return nil
	})
	if err != nil {
		return model.AutoBidConfig{}, fmt.Errorf("autobid: failed to set status for %s: %w", participantID, err)
	}
	return saved, nil
}
