package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"bidding-engine/internal/biddingerrors"
	model "bidding-engine/internal/models"
)

const (
	auctionKey = "auction:"
	configKey  = "config:"
	invoiceKey = "invoice:"
)

// MemoryRepo is a concurrency-safe in-memory implementation of LedgerStore.
// Transactions are optimistic: every record carries a version, reads are recorded
// and validated at commit time.
type MemoryRepo struct {
	mu            sync.RWMutex
	auctions      map[string]model.Auction       // key: auctionID
	bids          map[string]model.Bid           // key: bidID
	auctionBids   map[string][]string            // key: auctionID -> value: bidIDs in creation order
	userAuctions  map[string][]string            // key: participantID -> value: auctionIDs the participant has bid on
	configs       map[string]model.AutoBidConfig // key: participantID
	invoices      map[string]model.Invoice       // key: auctionID
	participants  map[string]model.Participant
	notices       map[string]model.Notice // key: noticeID
	versions      map[string]int64
	versionSerial int64
}

// NewMemoryRepo creates a new in-memory repository instance
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		auctions:     make(map[string]model.Auction),
		bids:         make(map[string]model.Bid),
		auctionBids:  make(map[string][]string),
		userAuctions: make(map[string][]string),
		configs:      make(map[string]model.AutoBidConfig),
		invoices:     make(map[string]model.Invoice),
		participants: make(map[string]model.Participant),
		notices:      make(map[string]model.Notice),
		versions:     make(map[string]int64),
	}
}

// WithTransaction runs fn against a private snapshot and commits its writes atomically
func (r *MemoryRepo) WithTransaction(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error {
	tx := newMemoryTx(r)
	if err := fn(ctx, tx); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("memory tx: %w", err)
	}
	return r.commit(tx)
}

func (r *MemoryRepo) commit(tx *memoryTx) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for key, seen := range tx.reads {
		if r.versions[key] != seen {
			return fmt.Errorf("memory tx: %s changed since read: %w", key, biddingerrors.ErrTransactionConflict)
		}
	}
	for auctionID := range tx.createdInvoices {
		if _, exists := r.invoices[auctionID]; exists {
			return fmt.Errorf("memory tx: invoice for auction %s: %w", auctionID, biddingerrors.ErrDuplicateInvoice)
		}
	}

	for auctionID, a := range tx.auctions {
		if a == nil {
			r.deleteAuctionLocked(auctionID)
		} else {
			r.auctions[auctionID] = cloneAuction(*a)
		}
		r.bump(auctionKey + auctionID)
	}
	for _, bid := range tx.newBids {
		if a, staged := tx.auctions[bid.AuctionID]; staged && a == nil {
			continue
		}
		r.bids[bid.BidID] = bid
		r.auctionBids[bid.AuctionID] = append(r.auctionBids[bid.AuctionID], bid.BidID)
		r.trackParticipant(bid.ParticipantID, bid.AuctionID)
	}
	for participantID, cfg := range tx.configs {
		r.configs[participantID] = cfg.Clone()
		r.bump(configKey + participantID)
	}
	for auctionID, inv := range tx.invoices {
		r.invoices[auctionID] = inv
		r.bump(invoiceKey + auctionID)
	}
	for _, n := range tx.newNotices {
		r.notices[n.NoticeID] = n
	}
	return nil
}

func (r *MemoryRepo) bump(key string) {
	r.versionSerial++
	r.versions[key] = r.versionSerial
}

func (r *MemoryRepo) deleteAuctionLocked(auctionID string) {
	delete(r.auctions, auctionID)
	for _, bidID := range r.auctionBids[auctionID] {
		delete(r.bids, bidID)
	}
	delete(r.auctionBids, auctionID)
	for participantID, ids := range r.userAuctions {
		kept := ids[:0]
		for _, id := range ids {
			if id != auctionID {
				kept = append(kept, id)
			}
		}
		r.userAuctions[participantID] = kept
	}
}

func (r *MemoryRepo) trackParticipant(participantID, auctionID string) {
	for _, id := range r.userAuctions[participantID] {
		if id == auctionID {
			return
		}
	}
	r.userAuctions[participantID] = append(r.userAuctions[participantID], auctionID)
}

// ListLapsedAuctions returns unawarded auctions whose end time is not after now, oldest first
func (r *MemoryRepo) ListLapsedAuctions(ctx context.Context, now time.Time, limit int) ([]model.Auction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	lapsed := make([]model.Auction, 0)
	for _, a := range r.auctions {
		if !a.Awarded && !a.EndTime.After(now) {
			lapsed = append(lapsed, cloneAuction(a))
		}
	}
	sort.Slice(lapsed, func(i, j int) bool {
		if lapsed[i].EndTime.Equal(lapsed[j].EndTime) {
			return lapsed[i].AuctionID < lapsed[j].AuctionID
		}
		return lapsed[i].EndTime.Before(lapsed[j].EndTime)
	})
	if limit > 0 && len(lapsed) > limit {
		lapsed = lapsed[:limit]
	}
	return lapsed, nil
}

// GetAuctionsByParticipant returns all auctions a participant has bid on
func (r *MemoryRepo) GetAuctionsByParticipant(ctx context.Context, participantID string) ([]model.Auction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	auctionIDs, ok := r.userAuctions[participantID]
	if !ok || len(auctionIDs) == 0 {
		return nil, fmt.Errorf("get auctions for participant %s: %w", participantID, biddingerrors.ErrNoBids)
	}

	auctions := make([]model.Auction, 0, len(auctionIDs))
	for _, id := range auctionIDs {
		if a, exists := r.auctions[id]; exists {
			auctions = append(auctions, cloneAuction(a))
		}
	}
	return auctions, nil
}

// ListInvoicesMissingDocument returns invoices whose billing document was never stored
func (r *MemoryRepo) ListInvoicesMissingDocument(ctx context.Context, limit int) ([]model.Invoice, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	missing := make([]model.Invoice, 0)
	for _, inv := range r.invoices {
		if inv.DocumentKey == "" {
			missing = append(missing, inv)
		}
	}
	sort.Slice(missing, func(i, j int) bool { return missing[i].CreatedAt.Before(missing[j].CreatedAt) })
	if limit > 0 && len(missing) > limit {
		missing = missing[:limit]
	}
	return missing, nil
}

// FindParticipant looks up an address book entry
func (r *MemoryRepo) FindParticipant(ctx context.Context, participantID string) (model.Participant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.participants[participantID]
	if !ok {
		return model.Participant{}, fmt.Errorf("find participant %s: %w", participantID, biddingerrors.ErrParticipantNotFound)
	}
	return p, nil
}

// ListPendingNotices returns notices created before cutoff with fewer than maxAttempts failures, oldest first
func (r *MemoryRepo) ListPendingNotices(ctx context.Context, cutoff time.Time, maxAttempts, limit int) ([]model.Notice, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	pending := make([]model.Notice, 0)
	for _, n := range r.notices {
		if n.CreatedAt.Before(cutoff) && (maxAttempts <= 0 || n.Attempts < maxAttempts) {
			pending = append(pending, n)
		}
	}
	sort.Slice(pending, func(i, j int) bool {
		if pending[i].CreatedAt.Equal(pending[j].CreatedAt) {
			return pending[i].NoticeID < pending[j].NoticeID
		}
		return pending[i].CreatedAt.Before(pending[j].CreatedAt)
	})
	if limit > 0 && len(pending) > limit {
		pending = pending[:limit]
	}
	return pending, nil
}

// DeleteNotice removes a delivered notice. Deleting an unknown notice is a no-op.
func (r *MemoryRepo) DeleteNotice(ctx context.Context, noticeID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.notices, noticeID)
	return nil
}

// RecordNoticeFailure counts a failed delivery attempt
func (r *MemoryRepo) RecordNoticeFailure(ctx context.Context, noticeID, reason string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	n, ok := r.notices[noticeID]
	if !ok {
		return fmt.Errorf("record failure of notice %s: %w", noticeID, biddingerrors.ErrNotFound)
	}
	n.Attempts++
	n.LastError = reason
	r.notices[noticeID] = n
	return nil
}

// AddParticipant adds an address book entry. This method is intended for seeding and tests.
func (r *MemoryRepo) AddParticipant(p model.Participant) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.participants[p.ParticipantID] = p
}

// AddAuction adds an auction outside of a transaction. This method is intended for seeding and tests.
func (r *MemoryRepo) AddAuction(a model.Auction) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a.CurrentPrice.IsZero() {
		a.CurrentPrice = a.StartingPrice
	}
	r.auctions[a.AuctionID] = cloneAuction(a)
	r.bump(auctionKey + a.AuctionID)
}

// AddAutoBidConfig adds a config outside of a transaction. This method is intended for seeding and tests.
func (r *MemoryRepo) AddAutoBidConfig(cfg model.AutoBidConfig) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.configs[cfg.ParticipantID] = cfg.Clone()
	r.bump(configKey + cfg.ParticipantID)
}

func holdsItem(cfg model.AutoBidConfig, itemID string) bool {
	for _, ab := range cfg.ActiveBids {
		if ab.ItemID == itemID {
			return true
		}
	}
	return false
}

func cloneAuction(a model.Auction) model.Auction {
	a.BidIDs = append([]string(nil), a.BidIDs...)
	return a
}

// memoryTx stages writes privately until commit
type memoryTx struct {
	repo            *MemoryRepo
	reads           map[string]int64
	auctions        map[string]*model.Auction // nil value marks a delete
	newBids         []model.Bid
	configs         map[string]model.AutoBidConfig
	invoices        map[string]model.Invoice
	createdInvoices map[string]bool
	newNotices      []model.Notice
}

func newMemoryTx(r *MemoryRepo) *memoryTx {
	return &memoryTx{
		repo:            r,
		reads:           make(map[string]int64),
		auctions:        make(map[string]*model.Auction),
		configs:         make(map[string]model.AutoBidConfig),
		invoices:        make(map[string]model.Invoice),
		createdInvoices: make(map[string]bool),
	}
}

// observe records the committed version of key the first time it is read. Caller holds the read lock.
func (tx *memoryTx) observe(key string) {
	if _, seen := tx.reads[key]; !seen {
		tx.reads[key] = tx.repo.versions[key]
	}
}

func (tx *memoryTx) FindAuction(ctx context.Context, auctionID string) (model.Auction, error) {
	if staged, ok := tx.auctions[auctionID]; ok {
		if staged == nil {
			return model.Auction{}, fmt.Errorf("find auction %s: %w", auctionID, biddingerrors.ErrAuctionNotFound)
		}
		return cloneAuction(*staged), nil
	}

	tx.repo.mu.RLock()
	defer tx.repo.mu.RUnlock()

	tx.observe(auctionKey + auctionID)
	a, ok := tx.repo.auctions[auctionID]
	if !ok {
		return model.Auction{}, fmt.Errorf("find auction %s: %w", auctionID, biddingerrors.ErrAuctionNotFound)
	}
	return cloneAuction(a), nil
}

// auctionExists reports whether auctionID is visible to tx without copying it
func (tx *memoryTx) auctionExists(auctionID string) bool {
	if staged, ok := tx.auctions[auctionID]; ok {
		return staged != nil
	}

	tx.repo.mu.RLock()
	defer tx.repo.mu.RUnlock()

	tx.observe(auctionKey + auctionID)
	_, ok := tx.repo.auctions[auctionID]
	return ok
}

func (tx *memoryTx) CreateAuction(ctx context.Context, auction model.Auction) error {
	if auction.AuctionID == "" {
		return fmt.Errorf("create auction: %w - empty auction ID", biddingerrors.ErrInvalidAuction)
	}
	if tx.auctionExists(auction.AuctionID) {
		return fmt.Errorf("create auction %s: %w - already exists", auction.AuctionID, biddingerrors.ErrInvalidAuction)
	}
	a := cloneAuction(auction)
	tx.auctions[auction.AuctionID] = &a
	return nil
}

// UpdateAuction stages auction without copying its bid ids. The staged slice is capped at its
// length, so a caller appending to its own copy never writes into it.
func (tx *memoryTx) UpdateAuction(ctx context.Context, auction *model.Auction) error {
	if !tx.auctionExists(auction.AuctionID) {
		return fmt.Errorf("update auction: find auction %s: %w", auction.AuctionID, biddingerrors.ErrAuctionNotFound)
	}
	auction.Version++
	a := *auction
	a.BidIDs = a.BidIDs[:len(a.BidIDs):len(a.BidIDs)]
	tx.auctions[auction.AuctionID] = &a
	return nil
}

func (tx *memoryTx) DeleteAuction(ctx context.Context, auctionID string) error {
	if !tx.auctionExists(auctionID) {
		return fmt.Errorf("delete auction: find auction %s: %w", auctionID, biddingerrors.ErrAuctionNotFound)
	}
	tx.auctions[auctionID] = nil
	return nil
}

func (tx *memoryTx) FindBid(ctx context.Context, bidID string) (model.Bid, error) {
	for _, b := range tx.newBids {
		if b.BidID == bidID {
			return b, nil
		}
	}

	tx.repo.mu.RLock()
	defer tx.repo.mu.RUnlock()

	b, ok := tx.repo.bids[bidID]
	if !ok {
		return model.Bid{}, fmt.Errorf("find bid %s: %w", bidID, biddingerrors.ErrBidNotFound)
	}
	return b, nil
}

func (tx *memoryTx) CreateBid(ctx context.Context, bid model.Bid) error {
	if bid.AuctionID == "" || bid.BidID == "" {
		return fmt.Errorf("create bid: %w - missing bid or auction ID", biddingerrors.ErrInvalidBid)
	}
	if !tx.auctionExists(bid.AuctionID) {
		return fmt.Errorf("create bid for auction %s: %w", bid.AuctionID, biddingerrors.ErrAuctionNotFound)
	}
	tx.newBids = append(tx.newBids, bid)
	return nil
}

func (tx *memoryTx) ListBids(ctx context.Context, auctionID string) ([]model.Bid, error) {
	bids := make([]model.Bid, 0)
	if staged, ok := tx.auctions[auctionID]; ok && staged == nil {
		return bids, nil
	}

	tx.repo.mu.RLock()
	for _, id := range tx.repo.auctionBids[auctionID] {
		bids = append(bids, tx.repo.bids[id])
	}
	tx.repo.mu.RUnlock()

	for _, b := range tx.newBids {
		if b.AuctionID == auctionID {
			bids = append(bids, b)
		}
	}
	return bids, nil
}

func (tx *memoryTx) FindAutoBidConfig(ctx context.Context, participantID string) (model.AutoBidConfig, error) {
	if staged, ok := tx.configs[participantID]; ok {
		return staged.Clone(), nil
	}

	tx.repo.mu.RLock()
	defer tx.repo.mu.RUnlock()

	tx.observe(configKey + participantID)
	cfg, ok := tx.repo.configs[participantID]
	if !ok {
		return model.AutoBidConfig{}, fmt.Errorf("find auto-bid config for %s: %w", participantID, biddingerrors.ErrConfigNotFound)
	}
	return cfg.Clone(), nil
}

func (tx *memoryTx) CreateAutoBidConfig(ctx context.Context, cfg model.AutoBidConfig) error {
	if _, err := tx.FindAutoBidConfig(ctx, cfg.ParticipantID); err == nil {
		return fmt.Errorf("create auto-bid config for %s: %w - already exists", cfg.ParticipantID, biddingerrors.ErrInvalidConfig)
	}
	tx.configs[cfg.ParticipantID] = cfg.Clone()
	return nil
}

func (tx *memoryTx) UpdateAutoBidConfig(ctx context.Context, cfg *model.AutoBidConfig) error {
	if _, err := tx.FindAutoBidConfig(ctx, cfg.ParticipantID); err != nil {
		return fmt.Errorf("update auto-bid config: %w", err)
	}
	cfg.Version++
	tx.configs[cfg.ParticipantID] = cfg.Clone()
	return nil
}

func (tx *memoryTx) ListAutoBidConfigsForItem(ctx context.Context, itemID string) ([]model.AutoBidConfig, error) {
	merged := make(map[string]model.AutoBidConfig)

	tx.repo.mu.RLock()
	for id, cfg := range tx.repo.configs {
		if _, staged := tx.configs[id]; staged || !holdsItem(cfg, itemID) {
			continue
		}
		tx.observe(configKey + id)
		merged[id] = cfg.Clone()
	}
	tx.repo.mu.RUnlock()

	for id, cfg := range tx.configs {
		if holdsItem(cfg, itemID) {
			merged[id] = cfg.Clone()
		}
	}

	configs := make([]model.AutoBidConfig, 0, len(merged))
	for _, cfg := range merged {
		configs = append(configs, cfg)
	}
	sort.Slice(configs, func(i, j int) bool {
		if configs[i].CreatedAt.Equal(configs[j].CreatedAt) {
			return configs[i].ParticipantID < configs[j].ParticipantID
		}
		return configs[i].CreatedAt.Before(configs[j].CreatedAt)
	})
	return configs, nil
}

func (tx *memoryTx) FindInvoice(ctx context.Context, auctionID string) (model.Invoice, error) {
	if staged, ok := tx.invoices[auctionID]; ok {
		return staged, nil
	}

	tx.repo.mu.RLock()
	defer tx.repo.mu.RUnlock()

	tx.observe(invoiceKey + auctionID)
	inv, ok := tx.repo.invoices[auctionID]
	if !ok {
		return model.Invoice{}, fmt.Errorf("find invoice for auction %s: %w", auctionID, biddingerrors.ErrInvoiceNotFound)
	}
	return inv, nil
}

func (tx *memoryTx) CreateInvoice(ctx context.Context, invoice model.Invoice) error {
	if _, err := tx.FindInvoice(ctx, invoice.AuctionID); err == nil {
		return fmt.Errorf("create invoice for auction %s: %w", invoice.AuctionID, biddingerrors.ErrDuplicateInvoice)
	}
	tx.invoices[invoice.AuctionID] = invoice
	tx.createdInvoices[invoice.AuctionID] = true
	return nil
}

func (tx *memoryTx) UpdateInvoice(ctx context.Context, invoice model.Invoice) error {
	if _, err := tx.FindInvoice(ctx, invoice.AuctionID); err != nil {
		return fmt.Errorf("update invoice: %w", err)
	}
	tx.invoices[invoice.AuctionID] = invoice
	return nil
}

func (tx *memoryTx) CreateNotice(ctx context.Context, notice model.Notice) error {
	if notice.NoticeID == "" || notice.ParticipantID == "" {
		return fmt.Errorf("create notice: %w - missing notice or participant ID", biddingerrors.ErrNotificationFailure)
	}
	tx.newNotices = append(tx.newNotices, notice)
	return nil
}
