package handler

import (
	"context"
	"errors"
	"net/http"

	model "bidding-engine/internal/models"
	"bidding-engine/services/bidding/helpers"
	"bidding-engine/utils"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type AutoBidServiceInterface interface {
	SetConfig(ctx context.Context, participantID string, maxBidAmount decimal.Decimal, alertPercentage int) (model.AutoBidConfig, error)
	GetConfig(ctx context.Context, participantID string) (model.AutoBidConfig, error)
	ToggleItem(ctx context.Context, participantID, auctionID string) (model.AutoBidConfig, bool, error)
	SetStatus(ctx context.Context, participantID string, status model.AutoBidStatus) (model.AutoBidConfig, error)
}

type AutoBidHandler struct {
	service AutoBidServiceInterface
}

func NewAutoBidHandler(service AutoBidServiceInterface) *AutoBidHandler {
	return &AutoBidHandler{service: service}
}

// SetConfigHandler handles PUT /users/:user_id/autobid
func (h *AutoBidHandler) SetConfigHandler(c *gin.Context) {
	userID := c.Param("user_id")

	var req helpers.AutoBidConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "SetConfigHandler", err)
		return
	}
	if req.MaxBidAmount.IsNegative() {
		helpers.HandleBindError(c, "SetConfigHandler", errors.New("max_bid_amount must not be negative"))
		return
	}

	cfg, err := h.service.SetConfig(c.Request.Context(), userID, req.MaxBidAmount, req.BidAlertPercentage)
	if err != nil {
		helpers.RespondError(c, "SetConfigHandler", err, map[string]any{"user_id": userID})
		return
	}

	utils.JSONResponse(c, http.StatusOK, helpers.ToAutoBidConfigResponse(cfg), "auto-bid config saved")
	helpers.LogSuccess("SetConfigHandler", "auto-bid config saved", map[string]any{
		"user_id":        userID,
		"max_bid_amount": cfg.MaxBidAmount.String(),
		"alert":          cfg.BidAlertPercentage,
	})
}

// GetConfigHandler handles GET /users/:user_id/autobid
func (h *AutoBidHandler) GetConfigHandler(c *gin.Context) {
	userID := c.Param("user_id")
	cfg, err := h.service.GetConfig(c.Request.Context(), userID)
	if err != nil {
		helpers.RespondError(c, "GetConfigHandler", err, map[string]any{"user_id": userID})
		return
	}

	utils.JSONResponse(c, http.StatusOK, helpers.ToAutoBidConfigResponse(cfg), "auto-bid config retrieved")
}

// ToggleAuctionHandler handles POST /users/:user_id/autobid/auctions/:auction_id
func (h *AutoBidHandler) ToggleAuctionHandler(c *gin.Context) {
	userID := c.Param("user_id")
	auctionID := c.Param("auction_id")

	cfg, enrolled, err := h.service.ToggleItem(c.Request.Context(), userID, auctionID)
	if err != nil {
		helpers.RespondError(c, "ToggleAuctionHandler", err, map[string]any{"user_id": userID, "auction_id": auctionID})
		return
	}

	message := "auction removed from auto-bidding"
	if enrolled {
		message = "auction enrolled in auto-bidding"
	}
	utils.JSONResponse(c, http.StatusOK, helpers.ToggleResponse{
		Enrolled: enrolled,
		Config:   helpers.ToAutoBidConfigResponse(cfg),
	}, message)
	helpers.LogSuccess("ToggleAuctionHandler", message, map[string]any{"user_id": userID, "auction_id": auctionID})
}

// SetStatusHandler handles PATCH /users/:user_id/autobid/status
func (h *AutoBidHandler) SetStatusHandler(c *gin.Context) {
	userID := c.Param("user_id")

	var req helpers.AutoBidStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "SetStatusHandler", err)
		return
	}

	cfg, err := h.service.SetStatus(c.Request.Context(), userID, model.AutoBidStatus(req.Status))
	if err != nil {
		helpers.RespondError(c, "SetStatusHandler", err, map[string]any{"user_id": userID, "status": req.Status})
		return
	}

	utils.JSONResponse(c, http.StatusOK, helpers.ToAutoBidConfigResponse(cfg), "auto-bid status updated")
	helpers.LogSuccess("SetStatusHandler", "auto-bid status updated", map[string]any{"user_id": userID, "status": req.Status})
}
