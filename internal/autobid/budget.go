package autobid

import (
	"fmt"

	"bidding-engine/internal/biddingerrors"
	model "bidding-engine/internal/models"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Budget answers allocation questions for one participant's AutoBidConfig.
// It mutates the wrapped config in place; persisting it is the caller's job.
type Budget struct {
	cfg *model.AutoBidConfig
}

// NewBudget wraps cfg
func NewBudget(cfg *model.AutoBidConfig) *Budget {
	return &Budget{cfg: cfg}
}

// Config returns the wrapped config
func (b *Budget) Config() *model.AutoBidConfig {
	return b.cfg
}

// TotalAllocated is the sum of every active allocation
func (b *Budget) TotalAllocated() decimal.Decimal {
	total := decimal.Zero
	for _, ab := range b.cfg.ActiveBids {
		total = total.Add(ab.AllocatedAmount)
	}
	return total
}

// AvailableFunds is the part of the ceiling not yet reserved
func (b *Budget) AvailableFunds() decimal.Decimal {
	return b.cfg.MaxBidAmount.Sub(b.TotalAllocated())
}

// AllocationFor returns the amount reserved for itemID and whether an entry exists
func (b *Budget) AllocationFor(itemID string) (decimal.Decimal, bool) {
	for _, ab := range b.cfg.ActiveBids {
		if ab.ItemID == itemID {
			return ab.AllocatedAmount, true
		}
	}
	return decimal.Zero, false
}

// Holds reports whether the budget has an entry for itemID
func (b *Budget) Holds(itemID string) bool {
	_, ok := b.AllocationFor(itemID)
	return ok
}

// CanPlace reports whether raising the allocation for itemID to amount stays within budget.
// Only the delta over the existing allocation for itemID is charged against available funds.
func (b *Budget) CanPlace(itemID string, amount decimal.Decimal) bool {
	if b.cfg.Status != model.AutoBidActive {
		return false
	}
	if amount.GreaterThan(b.cfg.MaxBidAmount) {
		return false
	}
	current, _ := b.AllocationFor(itemID)
	return b.AvailableFunds().Add(current).GreaterThanOrEqual(amount)
}

// SetAllocation upserts the allocation for itemID. Callers validate with CanPlace first.
func (b *Budget) SetAllocation(itemID string, amount decimal.Decimal) {
	for i := range b.cfg.ActiveBids {
		if b.cfg.ActiveBids[i].ItemID == itemID {
			b.cfg.ActiveBids[i].AllocatedAmount = amount
			return
		}
	}
	b.cfg.ActiveBids = append(b.cfg.ActiveBids, model.ActiveBid{ItemID: itemID, AllocatedAmount: amount})
}

// Release drops the entry for itemID and reports whether one existed
func (b *Budget) Release(itemID string) bool {
	for i, ab := range b.cfg.ActiveBids {
		if ab.ItemID == itemID {
			b.cfg.ActiveBids = append(b.cfg.ActiveBids[:i], b.cfg.ActiveBids[i+1:]...)
			return true
		}
	}
	return false
}

// Exhausted reports whether no funds remain
func (b *Budget) Exhausted() bool {
	return !b.AvailableFunds().IsPositive()
}

// AlertThresholdReached reports whether allocations reached BidAlertPercentage of the ceiling
func (b *Budget) AlertThresholdReached() bool {
	if !b.cfg.MaxBidAmount.IsPositive() {
		return false
	}
	threshold := b.cfg.MaxBidAmount.Mul(decimal.NewFromInt(int64(b.cfg.BidAlertPercentage)))
	return b.TotalAllocated().Mul(hundred).GreaterThanOrEqual(threshold)
}

// Reconfigure applies a new ceiling and alert percentage. When the new ceiling is below
// what is already reserved, every allocation is scaled by newMax/total and floored.
func (b *Budget) Reconfigure(newMax decimal.Decimal, alertPercentage int) error {
	if err := ValidateLimits(newMax, alertPercentage); err != nil {
		return err
	}

	total := b.TotalAllocated()
	if newMax.LessThan(total) && total.IsPositive() {
		for i := range b.cfg.ActiveBids {
			scaled := b.cfg.ActiveBids[i].AllocatedAmount.Mul(newMax).Div(total).Floor()
			b.cfg.ActiveBids[i].AllocatedAmount = scaled
		}
	}

	b.cfg.MaxBidAmount = newMax
	b.cfg.BidAlertPercentage = alertPercentage
	b.cfg.AlertSent = false
	return nil
}

// ValidateLimits checks the participant-supplied ceiling and alert percentage
func ValidateLimits(maxBidAmount decimal.Decimal, alertPercentage int) error {
	if maxBidAmount.IsNegative() {
		return fmt.Errorf("autobid: %w - max bid amount must not be negative", biddingerrors.ErrInvalidConfig)
	}
	if alertPercentage < 1 || alertPercentage > 100 {
		return fmt.Errorf("autobid: %w - alert percentage must be between 1 and 100", biddingerrors.ErrInvalidConfig)
	}
	return nil
}
