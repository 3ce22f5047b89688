package settlement

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"bidding-engine/internal/autobid"
	"bidding-engine/internal/biddingerrors"
	"bidding-engine/internal/invoice"
	model "bidding-engine/internal/models"
	"bidding-engine/internal/notification"
	"bidding-engine/internal/repository"
	"bidding-engine/utils"

	"code.cloudfoundry.org/workpool"
)

const (
	DefaultWorkers            = 4
	DefaultMaxAuctionsPerTick = 500
)

// Config bounds one settlement scan
type Config struct {
	Workers            int
	MaxAuctionsPerTick int
}

// Report summarises one scan
type Report struct {
	Scanned              int `json:"scanned"`
	Settled              int `json:"settled"`
	Unsold               int `json:"unsold"`
	Skipped              int `json:"skipped"`
	Failed               int `json:"failed"`
	DocumentFailures     int `json:"document_failures"`
	NotificationFailures int `json:"notification_failures"`
}

func (r *Report) add(o outcome) {
	switch {
	case o.err != nil:
		r.Failed++
	case o.skipped:
		r.Skipped++
	case o.invoice == nil:
		r.Unsold++
	default:
		r.Settled++
	}
	if o.documentFailed {
		r.DocumentFailures++
	}
	r.NotificationFailures += o.notificationFailures
}

// outcome is the result of settling one auction
type outcome struct {
	auctionID            string
	skipped              bool
	invoice              *model.Invoice
	notices              []notification.Message
	pending              []model.Notice
	documentFailed       bool
	notificationFailures int
	err                  error
}

// Settler awards lapsed auctions, bills winners and frees losing budgets
type Settler struct {
	store      repository.LedgerStore
	documents  invoice.DocumentGenerator
	dispatcher *notification.Dispatcher
	workers    int
	limit      int
}

// NewSettler creates a Settler. documents may be nil, in which case invoices are issued without a document.
func NewSettler(store repository.LedgerStore, documents invoice.DocumentGenerator, dispatcher *notification.Dispatcher, cfg Config) *Settler {
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultWorkers
	}
	if cfg.MaxAuctionsPerTick <= 0 {
		cfg.MaxAuctionsPerTick = DefaultMaxAuctionsPerTick
	}
	return &Settler{
		store:      store,
		documents:  documents,
		dispatcher: dispatcher,
		workers:    cfg.Workers,
		limit:      cfg.MaxAuctionsPerTick,
	}
}

// SettleLapsedAuctions settles every auction that ended at or before now and is not awarded yet.
// Auctions are settled independently: one failing never blocks the others.
func (s *Settler) SettleLapsedAuctions(ctx context.Context, now time.Time) (Report, error) {
	auctions, err := s.store.ListLapsedAuctions(ctx, now, s.limit)
	if err != nil {
		return Report{}, fmt.Errorf("settlement: failed to list lapsed auctions: %w", err)
	}

	report := Report{Scanned: len(auctions)}
	if len(auctions) == 0 {
		return report, nil
	}

	pool, err := workpool.NewWorkPool(s.workers)
	if err != nil {
		return report, fmt.Errorf("settlement: failed to start work pool: %w", err)
	}
	defer pool.Stop()

	var (
		wg   sync.WaitGroup
		lock sync.Mutex
	)
	wg.Add(len(auctions))
	for _, a := range auctions {
		auctionID := a.AuctionID
		pool.Submit(func() {
			defer wg.Done()
			o := s.settle(ctx, auctionID, now)
			lock.Lock()
			report.add(o)
			lock.Unlock()
		})
	}
	wg.Wait()

	return report, nil
}

// settle runs one auction's transaction and then its side effects
func (s *Settler) settle(ctx context.Context, auctionID string, now time.Time) outcome {
	o, err := s.award(ctx, auctionID, now)
	if err != nil {
		level := utils.Error
		if errors.Is(err, biddingerrors.ErrTransactionConflict) || errors.Is(err, biddingerrors.ErrDuplicateInvoice) {
			level = utils.Warn
		}
		level("settlement: auction not settled, will retry next tick", map[string]any{
			"auction_id": auctionID,
			"error":      err.Error(),
		})
		return outcome{auctionID: auctionID, err: err}
	}
	if o.skipped {
		return o
	}

	if o.invoice != nil && o.invoice.DocumentKey == "" && s.documents != nil {
		if err := s.attachDocument(ctx, *o.invoice); err != nil {
			o.documentFailed = true
			utils.Warn("settlement: invoice document not generated", map[string]any{
				"auction_id": auctionID,
				"invoice_id": o.invoice.InvoiceID,
				"error":      err.Error(),
			})
		}
	}

	o.notificationFailures = s.dispatcher.Deliver(ctx, s.store, o.pending)

	fields := map[string]any{"auction_id": auctionID, "notices": len(o.notices)}
	if o.invoice != nil {
		fields["winner"] = o.invoice.ParticipantID
		fields["amount"] = o.invoice.Amount.String()
	}
	utils.Info("auction settled", fields)
	return o
}

// award marks the auction awarded, issues the invoice and releases losing allocations in one transaction
func (s *Settler) award(ctx context.Context, auctionID string, now time.Time) (outcome, error) {
	var o outcome
	err := s.store.WithTransaction(ctx, func(ctx context.Context, tx repository.Tx) error {
		o = outcome{auctionID: auctionID}

		auction, err := tx.FindAuction(ctx, auctionID)
		if err != nil {
			return err
		}
		if auction.Awarded || auction.EndTime.After(now) {
			o.skipped = true
			return nil
		}

		auction.Awarded = true
		if err := tx.UpdateAuction(ctx, &auction); err != nil {
			return err
		}

		winner := ""
		if auction.HasBids() {
			high, err := tx.FindBid(ctx, auction.HighestBidID)
			if err != nil {
				return err
			}
			winner = high.ParticipantID

			inv, err := s.issueInvoice(ctx, tx, auction, high, now)
			if err != nil {
				return err
			}
			o.invoice = &inv
			o.notices = append(o.notices, notification.Message{
				ParticipantID: winner,
				Kind:          notification.KindAuctionWon,
				Data: notification.Data{
					"title":      auction.Title,
					"amount":     high.Amount.String(),
					"invoice_id": inv.InvoiceID,
				},
			})
		}

		released, err := s.releaseLosers(ctx, tx, auction, winner, now)
		if err != nil {
			return err
		}
		o.notices = append(o.notices, released...)

		notified := map[string]bool{winner: true}
		for _, m := range released {
			notified[m.ParticipantID] = true
		}
		bids, err := tx.ListBids(ctx, auctionID)
		if err != nil {
			return err
		}
		for _, b := range bids {
			if b.IsAutoBid || notified[b.ParticipantID] {
				continue
			}
			notified[b.ParticipantID] = true
			o.notices = append(o.notices, notification.Message{
				ParticipantID: b.ParticipantID,
				Kind:          notification.KindAuctionLost,
				Data: notification.Data{
					"title":  auction.Title,
					"amount": auction.CurrentPrice.String(),
				},
			})
		}

		o.pending, err = notification.Stage(ctx, tx, o.notices, now)
		return err
	})
	if err != nil {
		return outcome{}, fmt.Errorf("settlement: auction %s: %w", auctionID, err)
	}
	return o, nil
}

// issueInvoice creates the winner's invoice, or returns the one a previous run already created
func (s *Settler) issueInvoice(ctx context.Context, tx repository.Tx, auction model.Auction, high model.Bid, now time.Time) (model.Invoice, error) {
	existing, err := tx.FindInvoice(ctx, auction.AuctionID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, biddingerrors.ErrInvoiceNotFound) {
		return model.Invoice{}, err
	}

	inv := model.Invoice{
		InvoiceID:     utils.GenerateID(),
		AuctionID:     auction.AuctionID,
		ItemID:        auction.ItemID,
		ParticipantID: high.ParticipantID,
		BidID:         high.BidID,
		Amount:        high.Amount,
		CreatedAt:     now.UTC(),
	}
	if err := tx.CreateInvoice(ctx, inv); err != nil {
		return model.Invoice{}, err
	}
	return inv, nil
}

// releaseLosers frees every allocation on the auction's item except the winner's
func (s *Settler) releaseLosers(ctx context.Context, tx repository.Tx, auction model.Auction, winner string, now time.Time) ([]notification.Message, error) {
	configs, err := tx.ListAutoBidConfigsForItem(ctx, auction.ItemID)
	if err != nil {
		return nil, err
	}

	var notices []notification.Message
	for i := range configs {
		cfg := configs[i]
		if cfg.ParticipantID == winner {
			continue
		}
		budget := autobid.NewBudget(&cfg)
		amount, _ := budget.AllocationFor(auction.ItemID)
		if !budget.Release(auction.ItemID) {
			continue
		}
		cfg.UpdatedAt = now.UTC()
		if err := tx.UpdateAutoBidConfig(ctx, &cfg); err != nil {
			return nil, err
		}
		notices = append(notices, notification.Message{
			ParticipantID: cfg.ParticipantID,
			Kind:          notification.KindAutoBidFundsRelease,
			Data: notification.Data{
				"title":           auction.Title,
				"released_amount": amount.String(),
			},
		})
	}
	return notices, nil
}

// attachDocument generates the invoice document and records its key unless another run already did
func (s *Settler) attachDocument(ctx context.Context, inv model.Invoice) error {
	data := invoice.Data{
		InvoiceID:     inv.InvoiceID,
		AuctionID:     inv.AuctionID,
		ItemID:        inv.ItemID,
		ParticipantID: inv.ParticipantID,
		BidID:         inv.BidID,
		Amount:        inv.Amount,
		IssuedAt:      inv.CreatedAt,
	}
	if p, err := s.store.FindParticipant(ctx, inv.ParticipantID); err == nil {
		data.ParticipantName = p.Name
	}
	err := s.store.WithTransaction(ctx, func(ctx context.Context, tx repository.Tx) error {
		auction, err := tx.FindAuction(ctx, inv.AuctionID)
		if err != nil {
			return err
		}
		data.Title = auction.Title
		return nil
	})
	if err != nil {
		return err
	}

	key, err := s.documents.Generate(ctx, data)
	if err != nil {
		return err
	}

	return s.store.WithTransaction(ctx, func(ctx context.Context, tx repository.Tx) error {
		current, err := tx.FindInvoice(ctx, inv.AuctionID)
		if err != nil {
			return err
		}
		if current.DocumentKey != "" {
			return nil
		}
		current.DocumentKey = key
		return tx.UpdateInvoice(ctx, current)
	})
}

// RegenerateMissingDocuments retries document generation for invoices that have none.
// It returns how many documents were attached.
func (s *Settler) RegenerateMissingDocuments(ctx context.Context) (int, error) {
	if s.documents == nil {
		return 0, nil
	}

	invoices, err := s.store.ListInvoicesMissingDocument(ctx, s.limit)
	if err != nil {
		return 0, fmt.Errorf("settlement: failed to list invoices without document: %w", err)
	}

	attached := 0
	for _, inv := range invoices {
		if err := ctx.Err(); err != nil {
			return attached, err
		}
		if err := s.attachDocument(ctx, inv); err != nil {
			utils.Warn("settlement: invoice document still missing", map[string]any{
				"auction_id": inv.AuctionID,
				"invoice_id": inv.InvoiceID,
				"error":      err.Error(),
			})
			continue
		}
		attached++
	}
	return attached, nil
}

// RetryPendingNotices re-sends notices created before now that an earlier delivery could not
// send. It returns how many were delivered.
func (s *Settler) RetryPendingNotices(ctx context.Context, now time.Time) (int, error) {
	delivered, failed, err := s.dispatcher.Drain(ctx, s.store, now, s.limit)
	if err != nil {
		return 0, fmt.Errorf("settlement: %w", err)
	}
	if failed > 0 {
		utils.Warn("settlement: notices still pending", map[string]any{"failed": failed})
	}
	return delivered, nil
}

// InvoiceFor returns the invoice issued to participantID for an auction. Invoices of other
// participants are reported as not found.
func (s *Settler) InvoiceFor(ctx context.Context, participantID, auctionID string) (model.Invoice, error) {
	var inv model.Invoice
	err := s.store.WithTransaction(ctx, func(ctx context.Context, tx repository.Tx) error {
		var err error
		inv, err = tx.FindInvoice(ctx, auctionID)
		if err != nil {
			return err
		}
		if inv.ParticipantID != participantID {
			return biddingerrors.ErrInvoiceNotFound
		}
		return nil
	})
	if err != nil {
		return model.Invoice{}, fmt.Errorf("settlement: failed to get invoice for auction %s: %w", auctionID, err)
	}
	return inv, nil
}
