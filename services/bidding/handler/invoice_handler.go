package handler

import (
	"context"
	"net/http"
	"time"

	model "bidding-engine/internal/models"
	"bidding-engine/services/bidding/helpers"
	"bidding-engine/utils"

	"github.com/gin-gonic/gin"
)

type InvoiceServiceInterface interface {
	InvoiceFor(ctx context.Context, participantID, auctionID string) (model.Invoice, error)
}

// DocumentLinker turns a stored document key into a time-limited download URL
type DocumentLinker interface {
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)
}

type InvoiceHandler struct {
	service InvoiceServiceInterface
	linker  DocumentLinker
	ttl     time.Duration
}

// NewInvoiceHandler creates an InvoiceHandler. linker may be nil when invoice documents are disabled.
func NewInvoiceHandler(service InvoiceServiceInterface, linker DocumentLinker, ttl time.Duration) *InvoiceHandler {
	return &InvoiceHandler{service: service, linker: linker, ttl: ttl}
}

// GetInvoiceHandler handles GET /users/:user_id/invoices/:auction_id
func (h *InvoiceHandler) GetInvoiceHandler(c *gin.Context) {
	userID := c.Param("user_id")
	auctionID := c.Param("auction_id")

	inv, err := h.service.InvoiceFor(c.Request.Context(), userID, auctionID)
	if err != nil {
		helpers.RespondError(c, "GetInvoiceHandler", err, map[string]any{"user_id": userID, "auction_id": auctionID})
		return
	}

	resp := helpers.InvoiceResponse{
		InvoiceID: inv.InvoiceID,
		AuctionID: inv.AuctionID,
		ItemID:    inv.ItemID,
		Amount:    inv.Amount,
		IssuedAt:  inv.CreatedAt.UTC().Format(time.RFC3339),
	}
	if inv.DocumentKey != "" && h.linker != nil {
		url, err := h.linker.PresignGet(c.Request.Context(), inv.DocumentKey, h.ttl)
		if err != nil {
			// the invoice itself is still valid without a link
			utils.Warn("GetInvoiceHandler: failed to presign document", map[string]any{
				"invoice_id": inv.InvoiceID,
				"error":      err.Error(),
			})
		} else {
			resp.DocumentURL = url
		}
	}

	utils.JSONResponse(c, http.StatusOK, resp, "invoice retrieved successfully")
	helpers.LogSuccess("GetInvoiceHandler", "invoice retrieved successfully", map[string]any{
		"invoice_id": inv.InvoiceID,
		"user_id":    userID,
	})
}
