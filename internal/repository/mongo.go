package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bidding-engine/internal/biddingerrors"
	model "bidding-engine/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readconcern"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"
)

const (
	auctionsColl     = "auctions"
	bidsColl         = "bids"
	configsColl      = "autobid_configs"
	invoicesColl     = "invoices"
	participantsColl = "users"
	noticesColl      = "notices"

	writeConflictCode = 112
)

// MongoRepo is a LedgerStore backed by MongoDB multi-document transactions.
// It requires a replica set or sharded cluster.
type MongoRepo struct {
	client *mongo.Client
	db     *mongo.Database
}

// NewMongoRepo connects to uri and returns a repository bound to database
func NewMongoRepo(ctx context.Context, uri, database string) (*MongoRepo, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri).SetRegistry(NewRegistry()))
	if err != nil {
		return nil, fmt.Errorf("mongo: connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("mongo: ping: %w", err)
	}
	return &MongoRepo{client: client, db: client.Database(database)}, nil
}

// Close disconnects the underlying client
func (r *MongoRepo) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}

// EnsureIndexes creates the indexes the engine relies on. Safe to call repeatedly.
func (r *MongoRepo) EnsureIndexes(ctx context.Context) error {
	indexes := map[string][]mongo.IndexModel{
		auctionsColl: {
			{Keys: bson.D{{Key: "awarded", Value: 1}, {Key: "end_time", Value: 1}}},
		},
		bidsColl: {
			{Keys: bson.D{{Key: "auction_id", Value: 1}, {Key: "seq", Value: 1}}},
			{Keys: bson.D{{Key: "participant_id", Value: 1}}},
		},
		configsColl: {
			{Keys: bson.D{{Key: "active_bids.item_id", Value: 1}, {Key: "created_at", Value: 1}}},
		},
		invoicesColl: {
			{Keys: bson.D{{Key: "auction_id", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "document_key", Value: 1}}},
		},
		noticesColl: {
			{Keys: bson.D{{Key: "created_at", Value: 1}, {Key: "attempts", Value: 1}}},
		},
	}
	for coll, models := range indexes {
		if _, err := r.db.Collection(coll).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("mongo: create indexes on %s: %w", coll, err)
		}
	}
	return nil
}

// WithTransaction runs fn inside a snapshot-isolated session transaction
func (r *MongoRepo) WithTransaction(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error {
	sess, err := r.client.StartSession()
	if err != nil {
		return fmt.Errorf("mongo: start session: %w", err)
	}
	defer sess.EndSession(ctx)

	txnOpts := options.Transaction().
		SetReadConcern(readconcern.Snapshot()).
		SetWriteConcern(writeconcern.Majority())

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc, &mongoTx{db: r.db})
	}, txnOpts)
	return mapMongoError(err)
}

// mapMongoError folds write conflicts and transient transaction failures into ErrTransactionConflict
func mapMongoError(err error) error {
	if err == nil || errors.Is(err, biddingerrors.ErrTransactionConflict) {
		return err
	}
	var se mongo.ServerError
	if errors.As(err, &se) && (se.HasErrorCode(writeConflictCode) || se.HasErrorLabel("TransientTransactionError")) {
		return fmt.Errorf("mongo: %v: %w", err, biddingerrors.ErrTransactionConflict)
	}
	return err
}

// ListLapsedAuctions returns unawarded auctions whose end time is not after now, oldest first
func (r *MongoRepo) ListLapsedAuctions(ctx context.Context, now time.Time, limit int) ([]model.Auction, error) {
	opts := options.Find().SetSort(bson.D{{Key: "end_time", Value: 1}, {Key: "_id", Value: 1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	cur, err := r.db.Collection(auctionsColl).Find(ctx, bson.M{
		"awarded":  false,
		"end_time": bson.M{"$lte": now},
	}, opts)
	if err != nil {
		return nil, fmt.Errorf("mongo: list lapsed auctions: %w", err)
	}
	auctions := make([]model.Auction, 0)
	if err := cur.All(ctx, &auctions); err != nil {
		return nil, fmt.Errorf("mongo: decode lapsed auctions: %w", err)
	}
	return auctions, nil
}

// GetAuctionsByParticipant returns all auctions a participant has bid on
func (r *MongoRepo) GetAuctionsByParticipant(ctx context.Context, participantID string) ([]model.Auction, error) {
	ids, err := r.db.Collection(bidsColl).Distinct(ctx, "auction_id", bson.M{"participant_id": participantID})
	if err != nil {
		return nil, fmt.Errorf("mongo: distinct auctions for %s: %w", participantID, err)
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("get auctions for participant %s: %w", participantID, biddingerrors.ErrNoBids)
	}
	cur, err := r.db.Collection(auctionsColl).Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, fmt.Errorf("mongo: find auctions for %s: %w", participantID, err)
	}
	auctions := make([]model.Auction, 0, len(ids))
	if err := cur.All(ctx, &auctions); err != nil {
		return nil, fmt.Errorf("mongo: decode auctions for %s: %w", participantID, err)
	}
	return auctions, nil
}

// ListInvoicesMissingDocument returns invoices whose billing document was never stored
func (r *MongoRepo) ListInvoicesMissingDocument(ctx context.Context, limit int) ([]model.Invoice, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	cur, err := r.db.Collection(invoicesColl).Find(ctx, bson.M{"document_key": ""}, opts)
	if err != nil {
		return nil, fmt.Errorf("mongo: list invoices missing document: %w", err)
	}
	invoices := make([]model.Invoice, 0)
	if err := cur.All(ctx, &invoices); err != nil {
		return nil, fmt.Errorf("mongo: decode invoices: %w", err)
	}
	return invoices, nil
}

// FindParticipant looks up an address book entry in the users collection
func (r *MongoRepo) FindParticipant(ctx context.Context, participantID string) (model.Participant, error) {
	var p model.Participant
	err := r.db.Collection(participantsColl).FindOne(ctx, bson.M{"_id": participantID}).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return model.Participant{}, fmt.Errorf("find participant %s: %w", participantID, biddingerrors.ErrParticipantNotFound)
	}
	if err != nil {
		return model.Participant{}, fmt.Errorf("mongo: find participant %s: %w", participantID, err)
	}
	return p, nil
}

// ListPendingNotices returns notices created before cutoff with fewer than maxAttempts failures, oldest first
func (r *MongoRepo) ListPendingNotices(ctx context.Context, cutoff time.Time, maxAttempts, limit int) ([]model.Notice, error) {
	filter := bson.M{"created_at": bson.M{"$lt": cutoff}}
	if maxAttempts > 0 {
		filter["attempts"] = bson.M{"$lt": maxAttempts}
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	cur, err := r.db.Collection(noticesColl).Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("mongo: list pending notices: %w", err)
	}
	notices := make([]model.Notice, 0)
	if err := cur.All(ctx, &notices); err != nil {
		return nil, fmt.Errorf("mongo: decode notices: %w", err)
	}
	return notices, nil
}

// DeleteNotice removes a delivered notice. Deleting an unknown notice is a no-op.
func (r *MongoRepo) DeleteNotice(ctx context.Context, noticeID string) error {
	if _, err := r.db.Collection(noticesColl).DeleteOne(ctx, bson.M{"_id": noticeID}); err != nil {
		return fmt.Errorf("mongo: delete notice %s: %w", noticeID, err)
	}
	return nil
}

// RecordNoticeFailure counts a failed delivery attempt
func (r *MongoRepo) RecordNoticeFailure(ctx context.Context, noticeID, reason string) error {
	res, err := r.db.Collection(noticesColl).UpdateOne(ctx, bson.M{"_id": noticeID}, bson.M{
		"$inc": bson.M{"attempts": 1},
		"$set": bson.M{"last_error": reason},
	})
	if err != nil {
		return fmt.Errorf("mongo: record failure of notice %s: %w", noticeID, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("record failure of notice %s: %w", noticeID, biddingerrors.ErrNotFound)
	}
	return nil
}

// mongoTx issues every operation with the session context it is handed
type mongoTx struct {
	db *mongo.Database
}

func (tx *mongoTx) findOne(ctx context.Context, coll string, filter bson.M, out any, notFound error) error {
	err := tx.db.Collection(coll).FindOne(ctx, filter).Decode(out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return notFound
	}
	if err != nil {
		return mapMongoError(err)
	}
	return nil
}

// replaceVersioned replaces the document only if nobody bumped its version since it was read
func (tx *mongoTx) replaceVersioned(ctx context.Context, coll, id string, version int64, doc any) error {
	res, err := tx.db.Collection(coll).ReplaceOne(ctx, bson.M{"_id": id, "version": version}, doc)
	if err != nil {
		return mapMongoError(err)
	}
	return staleVersion(res, coll, id, version)
}

// staleVersion reports a conflict when a version-guarded replace matched nothing
func staleVersion(res *mongo.UpdateResult, coll, id string, version int64) error {
	if res == nil || res.MatchedCount == 0 {
		return fmt.Errorf("mongo: %s %s version %d is stale: %w", coll, id, version, biddingerrors.ErrTransactionConflict)
	}
	return nil
}

func (tx *mongoTx) FindAuction(ctx context.Context, auctionID string) (model.Auction, error) {
	var a model.Auction
	if err := tx.findOne(ctx, auctionsColl, bson.M{"_id": auctionID}, &a,
		fmt.Errorf("find auction %s: %w", auctionID, biddingerrors.ErrAuctionNotFound)); err != nil {
		return model.Auction{}, err
	}
	return a, nil
}

func (tx *mongoTx) CreateAuction(ctx context.Context, auction model.Auction) error {
	if auction.BidIDs == nil {
		auction.BidIDs = []string{}
	}
	if _, err := tx.db.Collection(auctionsColl).InsertOne(ctx, auction); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("create auction %s: %w - already exists", auction.AuctionID, biddingerrors.ErrInvalidAuction)
		}
		return mapMongoError(err)
	}
	return nil
}

func (tx *mongoTx) UpdateAuction(ctx context.Context, auction *model.Auction) error {
	prev := auction.Version
	auction.Version++
	if err := tx.replaceVersioned(ctx, auctionsColl, auction.AuctionID, prev, auction); err != nil {
		auction.Version = prev
		return err
	}
	return nil
}

func (tx *mongoTx) DeleteAuction(ctx context.Context, auctionID string) error {
	res, err := tx.db.Collection(auctionsColl).DeleteOne(ctx, bson.M{"_id": auctionID})
	if err != nil {
		return mapMongoError(err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("delete auction %s: %w", auctionID, biddingerrors.ErrAuctionNotFound)
	}
	if _, err := tx.db.Collection(bidsColl).DeleteMany(ctx, bson.M{"auction_id": auctionID}); err != nil {
		return mapMongoError(err)
	}
	return nil
}

func (tx *mongoTx) FindBid(ctx context.Context, bidID string) (model.Bid, error) {
	var b model.Bid
	if err := tx.findOne(ctx, bidsColl, bson.M{"_id": bidID}, &b,
		fmt.Errorf("find bid %s: %w", bidID, biddingerrors.ErrBidNotFound)); err != nil {
		return model.Bid{}, err
	}
	return b, nil
}

func (tx *mongoTx) CreateBid(ctx context.Context, bid model.Bid) error {
	if _, err := tx.db.Collection(bidsColl).InsertOne(ctx, bid); err != nil {
		return mapMongoError(err)
	}
	return nil
}

func (tx *mongoTx) ListBids(ctx context.Context, auctionID string) ([]model.Bid, error) {
	cur, err := tx.db.Collection(bidsColl).Find(ctx, bson.M{"auction_id": auctionID},
		options.Find().SetSort(bson.D{{Key: "seq", Value: 1}}))
	if err != nil {
		return nil, mapMongoError(err)
	}
	bids := make([]model.Bid, 0)
	if err := cur.All(ctx, &bids); err != nil {
		return nil, mapMongoError(err)
	}
	return bids, nil
}

func (tx *mongoTx) FindAutoBidConfig(ctx context.Context, participantID string) (model.AutoBidConfig, error) {
	var cfg model.AutoBidConfig
	if err := tx.findOne(ctx, configsColl, bson.M{"_id": participantID}, &cfg,
		fmt.Errorf("find auto-bid config for %s: %w", participantID, biddingerrors.ErrConfigNotFound)); err != nil {
		return model.AutoBidConfig{}, err
	}
	return cfg, nil
}

func (tx *mongoTx) CreateAutoBidConfig(ctx context.Context, cfg model.AutoBidConfig) error {
	if cfg.ActiveBids == nil {
		cfg.ActiveBids = []model.ActiveBid{}
	}
	if _, err := tx.db.Collection(configsColl).InsertOne(ctx, cfg); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("create auto-bid config for %s: %w - already exists", cfg.ParticipantID, biddingerrors.ErrInvalidConfig)
		}
		return mapMongoError(err)
	}
	return nil
}

func (tx *mongoTx) UpdateAutoBidConfig(ctx context.Context, cfg *model.AutoBidConfig) error {
	prev := cfg.Version
	cfg.Version++
	if err := tx.replaceVersioned(ctx, configsColl, cfg.ParticipantID, prev, cfg); err != nil {
		cfg.Version = prev
		return err
	}
	return nil
}

func (tx *mongoTx) ListAutoBidConfigsForItem(ctx context.Context, itemID string) ([]model.AutoBidConfig, error) {
	cur, err := tx.db.Collection(configsColl).Find(ctx, bson.M{"active_bids.item_id": itemID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}}))
	if err != nil {
		return nil, mapMongoError(err)
	}
	configs := make([]model.AutoBidConfig, 0)
	if err := cur.All(ctx, &configs); err != nil {
		return nil, mapMongoError(err)
	}
	return configs, nil
}

func (tx *mongoTx) FindInvoice(ctx context.Context, auctionID string) (model.Invoice, error) {
	var inv model.Invoice
	if err := tx.findOne(ctx, invoicesColl, bson.M{"auction_id": auctionID}, &inv,
		fmt.Errorf("find invoice for auction %s: %w", auctionID, biddingerrors.ErrInvoiceNotFound)); err != nil {
		return model.Invoice{}, err
	}
	return inv, nil
}

func (tx *mongoTx) CreateInvoice(ctx context.Context, invoice model.Invoice) error {
	if _, err := tx.db.Collection(invoicesColl).InsertOne(ctx, invoice); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("create invoice for auction %s: %w", invoice.AuctionID, biddingerrors.ErrDuplicateInvoice)
		}
		return mapMongoError(err)
	}
	return nil
}

func (tx *mongoTx) UpdateInvoice(ctx context.Context, invoice model.Invoice) error {
	res, err := tx.db.Collection(invoicesColl).ReplaceOne(ctx, bson.M{"_id": invoice.InvoiceID}, invoice)
	if err != nil {
		return mapMongoError(err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("update invoice %s: %w", invoice.InvoiceID, biddingerrors.ErrInvoiceNotFound)
	}
	return nil
}

func (tx *mongoTx) CreateNotice(ctx context.Context, notice model.Notice) error {
	if _, err := tx.db.Collection(noticesColl).InsertOne(ctx, notice); err != nil {
		return mapMongoError(err)
	}
	return nil
}
