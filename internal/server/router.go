package server

import (
	"net/http"
	"time"

	handler "bidding-engine/services/bidding/handler"
	"bidding-engine/utils"

	"github.com/gin-gonic/gin"
)

// Services are the collaborators the HTTP surface talks to
type Services struct {
	Bidding  handler.BiddingServiceInterface
	AutoBid  handler.AutoBidServiceInterface
	Invoices handler.InvoiceServiceInterface
	// Documents may be nil when invoice documents are disabled
	Documents   handler.DocumentLinker
	DocumentTTL time.Duration
	Live        handler.LiveStreamer
}

// SetupRouter configures all Gin routes for the application
func SetupRouter(s Services) *gin.Engine {
	router := gin.New() // New router without default middleware for full control over middleware and logging

	router.Use(gin.Recovery())          // recover from panics
	router.Use(RequestLoggerMiddleware) // custom request logging

	biddingHandler := handler.NewBiddingHandler(s.Bidding)
	autoBidHandler := handler.NewAutoBidHandler(s.AutoBid)
	invoiceHandler := handler.NewInvoiceHandler(s.Invoices, s.Documents, s.DocumentTTL)
	liveHandler := handler.NewLiveHandler(s.Bidding, s.Live)

	router.GET("/healthz", func(c *gin.Context) {
		utils.JSONResponse(c, http.StatusOK, gin.H{"ok": true}, "healthy")
	})

	bids := router.Group("/bids")
	{
		bids.POST("", biddingHandler.RecordBidHandler)
	}

	auctions := router.Group("/auctions")
	{
		auctions.POST("", biddingHandler.CreateAuctionHandler)
		auctions.GET("/:auction_id", biddingHandler.GetAuctionHandler)
		auctions.DELETE("/:auction_id", biddingHandler.DeleteAuctionHandler)
		auctions.GET("/:auction_id/bids", biddingHandler.GetBidsByAuctionHandler)
		auctions.GET("/:auction_id/winning", biddingHandler.GetWinningBidHandler)
		auctions.POST("/:auction_id/escalate", biddingHandler.EscalateHandler)
		auctions.GET("/:auction_id/live", liveHandler.SubscribeHandler)
	}

	users := router.Group("/users")
	{
		users.GET("/:user_id/auctions", biddingHandler.GetAuctionsByUserHandler)
		users.PUT("/:user_id/autobid", autoBidHandler.SetConfigHandler)
		users.GET("/:user_id/autobid", autoBidHandler.GetConfigHandler)
		users.POST("/:user_id/autobid/auctions/:auction_id", autoBidHandler.ToggleAuctionHandler)
		users.PATCH("/:user_id/autobid/status", autoBidHandler.SetStatusHandler)
		users.GET("/:user_id/invoices/:auction_id", invoiceHandler.GetInvoiceHandler)
	}

	return router
}
