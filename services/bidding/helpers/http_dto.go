package helpers

import (
	"time"

	model "bidding-engine/internal/models"

	"github.com/shopspring/decimal"
)

// Request/Response DTOs
type PlaceBidRequest struct {
	AuctionID     string          `json:"auction_id" binding:"required"`
	ParticipantID string          `json:"participant_id" binding:"required"`
	Amount        decimal.Decimal `json:"amount"`
}

type CreateAuctionRequest struct {
	ItemID        string          `json:"item_id"`
	Title         string          `json:"title" binding:"required"`
	Description   string          `json:"description"`
	StartingPrice decimal.Decimal `json:"starting_price"`
	EndTime       time.Time       `json:"end_time"`
}

type AutoBidConfigRequest struct {
	MaxBidAmount       decimal.Decimal `json:"max_bid_amount"`
	BidAlertPercentage int             `json:"bid_alert_percentage" binding:"required,min=1,max=100"`
}

type AutoBidStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=active paused"`
}

type BidResponse struct {
	BidID         string          `json:"bid_id"`
	AuctionID     string          `json:"auction_id"`
	ItemID        string          `json:"item_id"`
	ParticipantID string          `json:"participant_id"`
	Amount        decimal.Decimal `json:"amount"`
	IsAutoBid     bool            `json:"is_auto_bid"`
	CreatedAt     string          `json:"created_at"`
}

type AuctionResponse struct {
	AuctionID     string          `json:"auction_id"`
	ItemID        string          `json:"item_id"`
	Title         string          `json:"title"`
	Description   string          `json:"description"`
	StartingPrice decimal.Decimal `json:"starting_price"`
	CurrentPrice  decimal.Decimal `json:"current_price"`
	HighestBidID  string          `json:"highest_bid_id,omitempty"`
	BidCount      int             `json:"bid_count"`
	EndTime       string          `json:"end_time"`
	Awarded       bool            `json:"awarded"`
}

type PlaceBidResponse struct {
	Bid      BidResponse     `json:"bid"`
	AutoBids []BidResponse   `json:"auto_bids"`
	Auction  AuctionResponse `json:"auction"`
}

type AutoBidConfigResponse struct {
	ParticipantID      string            `json:"participant_id"`
	MaxBidAmount       decimal.Decimal   `json:"max_bid_amount"`
	BidAlertPercentage int               `json:"bid_alert_percentage"`
	Status             string            `json:"status"`
	ActiveBids         []model.ActiveBid `json:"active_bids"`
	TotalAllocated     decimal.Decimal   `json:"total_allocated"`
}

type ToggleResponse struct {
	Enrolled bool                  `json:"enrolled"`
	Config   AutoBidConfigResponse `json:"config"`
}

type InvoiceResponse struct {
	InvoiceID   string          `json:"invoice_id"`
	AuctionID   string          `json:"auction_id"`
	ItemID      string          `json:"item_id"`
	Amount      decimal.Decimal `json:"amount"`
	IssuedAt    string          `json:"issued_at"`
	DocumentURL string          `json:"document_url,omitempty"`
}

func ToBidResponse(b model.Bid) BidResponse {
	return BidResponse{
		BidID:         b.BidID,
		AuctionID:     b.AuctionID,
		ItemID:        b.ItemID,
		ParticipantID: b.ParticipantID,
		Amount:        b.Amount,
		IsAutoBid:     b.IsAutoBid,
		CreatedAt:     b.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func ToBidResponses(bids []model.Bid) []BidResponse {
	resp := make([]BidResponse, 0, len(bids))
	for _, b := range bids {
		resp = append(resp, ToBidResponse(b))
	}
	return resp
}

func ToAuctionResponse(a model.Auction) AuctionResponse {
	return AuctionResponse{
		AuctionID:     a.AuctionID,
		ItemID:        a.ItemID,
		Title:         a.Title,
		Description:   a.Description,
		StartingPrice: a.StartingPrice,
		CurrentPrice:  a.CurrentPrice,
		HighestBidID:  a.HighestBidID,
		BidCount:      len(a.BidIDs),
		EndTime:       a.EndTime.UTC().Format(time.RFC3339),
		Awarded:       a.Awarded,
	}
}

func ToAutoBidConfigResponse(cfg model.AutoBidConfig) AutoBidConfigResponse {
	total := decimal.Zero
	active := make([]model.ActiveBid, 0, len(cfg.ActiveBids))
	for _, ab := range cfg.ActiveBids {
		total = total.Add(ab.AllocatedAmount)
		active = append(active, ab)
	}
	return AutoBidConfigResponse{
		ParticipantID:      cfg.ParticipantID,
		MaxBidAmount:       cfg.MaxBidAmount,
		BidAlertPercentage: cfg.BidAlertPercentage,
		Status:             string(cfg.Status),
		ActiveBids:         active,
		TotalAllocated:     total,
	}
}
