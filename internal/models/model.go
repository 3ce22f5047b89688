package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Participant represents a bidder known to the address book
type Participant struct {
	ParticipantID string `json:"participant_id" bson:"_id"`
	Name          string `json:"name" bson:"name"`
	Email         string `json:"email" bson:"email"`
}

// Auction represents the time-boxed sale of one item
type Auction struct {
	AuctionID     string          `json:"auction_id" bson:"_id"`
	ItemID        string          `json:"item_id" bson:"item_id"`
	Title         string          `json:"title" bson:"title"`
	Description   string          `json:"description" bson:"description"`
	StartingPrice decimal.Decimal `json:"starting_price" bson:"starting_price"`
	CurrentPrice  decimal.Decimal `json:"current_price" bson:"current_price"`
	EndTime       time.Time       `json:"end_time" bson:"end_time"`
	HighestBidID  string          `json:"highest_bid_id,omitempty" bson:"highest_bid_id"`
	BidIDs        []string        `json:"bid_ids" bson:"bid_ids"`
	Awarded       bool            `json:"awarded" bson:"awarded"`
	CreatedAt     time.Time       `json:"created_at" bson:"created_at"`
	Version       int64           `json:"-" bson:"version"`
}

// HasBids reports whether the auction has a highest bid
func (a Auction) HasBids() bool {
	return a.HighestBidID != ""
}

// Accept makes bid the auction's highest bid and assigns its position in the history
func (a *Auction) Accept(bid *Bid) {
	bid.Seq = int64(len(a.BidIDs) + 1)
	a.BidIDs = append(a.BidIDs, bid.BidID)
	a.HighestBidID = bid.BidID
	a.CurrentPrice = bid.Amount
}

// Ended reports whether bidding on the auction is closed at now
func (a Auction) Ended(now time.Time) bool {
	return a.Awarded || now.After(a.EndTime)
}

// Bid represents a manual or automatic bid on an auction. Bids are never mutated.
type Bid struct {
	BidID         string          `json:"bid_id" bson:"_id"`
	AuctionID     string          `json:"auction_id" bson:"auction_id"`
	ItemID        string          `json:"item_id" bson:"item_id"`
	ParticipantID string          `json:"participant_id" bson:"participant_id"`
	Amount        decimal.Decimal `json:"amount" bson:"amount"`
	IsAutoBid     bool            `json:"is_auto_bid" bson:"is_auto_bid"`
	CreatedAt     time.Time       `json:"created_at" bson:"created_at"`
	Seq           int64           `json:"-" bson:"seq"`
}

// AutoBidStatus is the on/off switch of a participant's auto-bidding
type AutoBidStatus string

const (
	AutoBidActive AutoBidStatus = "active"
	AutoBidPaused AutoBidStatus = "paused"
)

// ActiveBid is the amount reserved against a budget for one item
type ActiveBid struct {
	ItemID          string          `json:"item_id" bson:"item_id"`
	AllocatedAmount decimal.Decimal `json:"allocated_amount" bson:"allocated_amount"`
}

// AutoBidConfig is a participant's auto-bid budget. There is at most one per participant.
type AutoBidConfig struct {
	ParticipantID      string          `json:"participant_id" bson:"_id"`
	MaxBidAmount       decimal.Decimal `json:"max_bid_amount" bson:"max_bid_amount"`
	BidAlertPercentage int             `json:"bid_alert_percentage" bson:"bid_alert_percentage"`
	Status             AutoBidStatus   `json:"status" bson:"status"`
	AlertSent          bool            `json:"alert_sent" bson:"alert_sent"`
	ActiveBids         []ActiveBid     `json:"active_bids" bson:"active_bids"`
	CreatedAt          time.Time       `json:"created_at" bson:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at" bson:"updated_at"`
	Version            int64           `json:"-" bson:"version"`
}

// Clone returns a deep copy so callers can mutate allocations freely
func (c AutoBidConfig) Clone() AutoBidConfig {
	c.ActiveBids = append([]ActiveBid(nil), c.ActiveBids...)
	return c
}

// Invoice is the bill issued to the winner of a settled auction
type Invoice struct {
	InvoiceID     string          `json:"invoice_id" bson:"_id"`
	AuctionID     string          `json:"auction_id" bson:"auction_id"`
	ItemID        string          `json:"item_id" bson:"item_id"`
	ParticipantID string          `json:"participant_id" bson:"participant_id"`
	BidID         string          `json:"bid_id" bson:"bid_id"`
	Amount        decimal.Decimal `json:"amount" bson:"amount"`
	DocumentKey   string          `json:"document_key" bson:"document_key"`
	CreatedAt     time.Time       `json:"created_at" bson:"created_at"`
}

// Notice is a notification written in the same transaction as the change it reports.
// It stays pending until a send succeeds.
type Notice struct {
	NoticeID      string         `json:"notice_id" bson:"_id"`
	ParticipantID string         `json:"participant_id" bson:"participant_id"`
	Kind          string         `json:"kind" bson:"kind"`
	Data          map[string]any `json:"data" bson:"data"`
	Attempts      int            `json:"attempts" bson:"attempts"`
	LastError     string         `json:"last_error,omitempty" bson:"last_error,omitempty"`
	CreatedAt     time.Time      `json:"created_at" bson:"created_at"`
}
