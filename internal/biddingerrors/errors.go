package biddingerrors

import (
	"errors"
	"fmt"
)

// ErrNotFound is the parent of every lookup failure
var ErrNotFound = errors.New("not found")

// Repository-level errors
var (
	ErrAuctionNotFound     = fmt.Errorf("auction %w", ErrNotFound)
	ErrBidNotFound         = fmt.Errorf("bid %w", ErrNotFound)
	ErrConfigNotFound      = fmt.Errorf("auto-bid config %w", ErrNotFound)
	ErrInvoiceNotFound     = fmt.Errorf("invoice %w", ErrNotFound)
	ErrParticipantNotFound = fmt.Errorf("participant %w", ErrNotFound)
	ErrNoBids              = errors.New("no bids found for auction")
	ErrDuplicateInvoice    = errors.New("invoice already exists for auction")
	ErrTransactionConflict = errors.New("transaction conflict")
)

// business logic errors
var (
	ErrInvalidBid      = errors.New("invalid bid")
	ErrInvalidConfig   = errors.New("invalid auto-bid config")
	ErrInvalidAuction  = errors.New("invalid auction")
	ErrAuctionEnded    = errors.New("auction has ended")
	ErrBidTooLow       = errors.New("bid amount too low")
	ErrAlreadyHighest  = errors.New("participant already holds the highest bid")
	ErrBudgetExceeded  = errors.New("auto-bid budget exceeded")
	ErrEscalationLimit = errors.New("escalation round limit exceeded")
)

// side-effect errors, logged and never rolled back into a transaction
var (
	ErrNotificationFailure = errors.New("notification failed")
	ErrDocumentGeneration  = errors.New("document generation failed")
)
