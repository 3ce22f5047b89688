package handler

import (
	"context"
	"net/http"

	model "bidding-engine/internal/models"
	"bidding-engine/services/bidding/helpers"
	"bidding-engine/utils"

	"github.com/gin-gonic/gin"
)

// LiveStreamer streams an auction's updates over an upgraded connection
type LiveStreamer interface {
	ServeWS(w http.ResponseWriter, r *http.Request, auctionID string) error
}

type auctionLookup interface {
	GetAuction(ctx context.Context, auctionID string) (model.Auction, error)
}

type LiveHandler struct {
	auctions auctionLookup
	streamer LiveStreamer
}

func NewLiveHandler(auctions BiddingServiceInterface, streamer LiveStreamer) *LiveHandler {
	return &LiveHandler{auctions: auctions, streamer: streamer}
}

// SubscribeHandler handles GET /auctions/:auction_id/live
func (h *LiveHandler) SubscribeHandler(c *gin.Context) {
	auctionID := c.Param("auction_id")
	if _, err := h.auctions.GetAuction(c.Request.Context(), auctionID); err != nil {
		helpers.RespondError(c, "SubscribeHandler", err, map[string]any{"auction_id": auctionID})
		return
	}

	if err := h.streamer.ServeWS(c.Writer, c.Request, auctionID); err != nil {
		// the upgrader already wrote the HTTP error
		utils.Warn("SubscribeHandler: websocket upgrade failed", map[string]any{
			"auction_id": auctionID,
			"error":      err.Error(),
		})
		return
	}
	utils.Debug("SubscribeHandler: live subscriber left", map[string]any{"auction_id": auctionID})
}
