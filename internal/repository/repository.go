package repository

import (
	"context"
	"time"

	model "bidding-engine/internal/models"
)

//go:generate mockgen -destination=mock_repository.go -package=repository bidding-engine/internal/repository LedgerStore

// LedgerStore defines the transactional storage interface for the auction system
type LedgerStore interface {
	// WithTransaction runs fn inside one unit of work. Reads made through tx observe a
	// snapshot; a commit that would overwrite a concurrently changed record fails with
	// biddingerrors.ErrTransactionConflict and nothing in fn is persisted.
	WithTransaction(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error

	ListLapsedAuctions(ctx context.Context, now time.Time, limit int) ([]model.Auction, error)
	GetAuctionsByParticipant(ctx context.Context, participantID string) ([]model.Auction, error)
	ListInvoicesMissingDocument(ctx context.Context, limit int) ([]model.Invoice, error)
	FindParticipant(ctx context.Context, participantID string) (model.Participant, error)

	// ListPendingNotices returns notices created before cutoff that have failed fewer than
	// maxAttempts times (any number when maxAttempts is 0), oldest first.
	ListPendingNotices(ctx context.Context, cutoff time.Time, maxAttempts, limit int) ([]model.Notice, error)
	DeleteNotice(ctx context.Context, noticeID string) error
	RecordNoticeFailure(ctx context.Context, noticeID, reason string) error
}

// Tx is the set of entity operations scoped to one transaction
type Tx interface {
	FindAuction(ctx context.Context, auctionID string) (model.Auction, error)
	CreateAuction(ctx context.Context, auction model.Auction) error
	UpdateAuction(ctx context.Context, auction *model.Auction) error
	DeleteAuction(ctx context.Context, auctionID string) error

	FindBid(ctx context.Context, bidID string) (model.Bid, error)
	CreateBid(ctx context.Context, bid model.Bid) error
	ListBids(ctx context.Context, auctionID string) ([]model.Bid, error)

	FindAutoBidConfig(ctx context.Context, participantID string) (model.AutoBidConfig, error)
	CreateAutoBidConfig(ctx context.Context, cfg model.AutoBidConfig) error
	UpdateAutoBidConfig(ctx context.Context, cfg *model.AutoBidConfig) error
	// ListAutoBidConfigsForItem returns every config holding an allocation on itemID,
	// ordered by creation time and then participant id.
	ListAutoBidConfigsForItem(ctx context.Context, itemID string) ([]model.AutoBidConfig, error)

	FindInvoice(ctx context.Context, auctionID string) (model.Invoice, error)
	CreateInvoice(ctx context.Context, invoice model.Invoice) error
	UpdateInvoice(ctx context.Context, invoice model.Invoice) error

	// CreateNotice stages a notification that becomes pending when the transaction commits
	CreateNotice(ctx context.Context, notice model.Notice) error
}
