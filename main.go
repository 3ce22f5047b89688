package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"time"

	"bidding-engine/internal/autobid"
	bidding "bidding-engine/internal/biddingService"
	"bidding-engine/internal/biddingerrors"
	"bidding-engine/internal/config"
	"bidding-engine/internal/escalation"
	"bidding-engine/internal/invoice"
	"bidding-engine/internal/live"
	model "bidding-engine/internal/models"
	"bidding-engine/internal/notification"
	"bidding-engine/internal/repository"
	"bidding-engine/internal/server"
	"bidding-engine/internal/settlement"
	"bidding-engine/utils"

	"code.cloudfoundry.org/clock"
	"github.com/shopspring/decimal"
	"github.com/tedsuo/ifrit"
	"github.com/tedsuo/ifrit/grouper"
	"github.com/tedsuo/ifrit/sigmon"
)

func main() {
	configPath := flag.String("config", os.Getenv("CONFIG_PATH"), "path to the TOML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		utils.Fatal("failed to load config", map[string]any{"error": err.Error()})
	}
	if err := utils.SetLevel(cfg.Log.Level); err != nil {
		utils.Warn("unknown log level, keeping info", map[string]any{"level": cfg.Log.Level})
	}

	ctx := context.Background()
	clk := clock.NewClock()

	store, closeStore, err := openStore(ctx, cfg.Store)
	if err != nil {
		utils.Fatal("failed to open store", map[string]any{"driver": cfg.Store.Driver, "error": err.Error()})
	}
	defer closeStore()

	if cfg.Store.Seed {
		if err := prepopulateAuctions(ctx, store, clk.Now()); err != nil {
			utils.Warn("failed to seed auctions", map[string]any{"error": err.Error()})
		}
	}

	sender, err := newSender(cfg.Notification, store)
	if err != nil {
		utils.Fatal("failed to build notification sender", map[string]any{"error": err.Error()})
	}
	dispatcher := notification.NewDispatcher(sender, cfg.Notification.Concurrency)
	hub := live.NewHub(cfg.Live.BufferSize)

	services := server.Services{
		Live:        hub,
		DocumentTTL: cfg.Invoice.PresignTTL.Std(),
	}

	var documents invoice.DocumentGenerator
	if cfg.Invoice.Driver == "pdf" {
		objects, err := invoice.NewS3Store(ctx, invoice.S3Options{
			Bucket:   cfg.Invoice.Bucket,
			Region:   cfg.Invoice.Region,
			Endpoint: cfg.Invoice.Endpoint,
			Key:      cfg.Invoice.Key,
			Secret:   cfg.Invoice.Secret,
		})
		if err != nil {
			utils.Fatal("failed to build object store", map[string]any{"error": err.Error()})
		}
		generator, err := invoice.NewPDFGenerator(invoice.NewChromeRenderer(cfg.Invoice.RenderTimeout.Std()), objects, cfg.Invoice.Prefix)
		if err != nil {
			utils.Fatal("failed to build invoice generator", map[string]any{"error": err.Error()})
		}
		documents = generator
		services.Documents = objects
	}

	resolver := escalation.NewResolver(store, clk, escalation.Config{
		MaxRounds: cfg.Escalation.MaxRounds,
		Increment: cfg.Escalation.Increment,
	})
	settler := settlement.NewSettler(store, documents, dispatcher, settlement.Config{
		Workers:            cfg.Settlement.Workers,
		MaxAuctionsPerTick: cfg.Settlement.MaxAuctionsPerTick,
	})

	services.Bidding = bidding.NewBiddingService(store, resolver, dispatcher, hub, clk, bidding.Config{MaxRetries: cfg.Bidding.MaxRetries})
	services.AutoBid = autobid.NewService(store, clk)
	services.Invoices = settler

	router := server.SetupRouter(services)

	members := grouper.Members{
		{Name: "http", Runner: server.NewRunner(cfg.Server.Addr(), router, cfg.Server.ShutdownTimeout.Std())},
		{Name: "settlement", Runner: settlement.NewRunner(settler, clk, cfg.Settlement.Interval.Std())},
	}
	process := ifrit.Invoke(sigmon.New(grouper.NewOrdered(os.Interrupt, members)))

	utils.Info("auction server started", map[string]any{
		"addr":         cfg.Server.Addr(),
		"store":        cfg.Store.Driver,
		"notification": cfg.Notification.Driver,
		"invoice":      cfg.Invoice.Driver,
	})

	if err := <-process.Wait(); err != nil {
		utils.Error("auction server exited with error", map[string]any{"error": err.Error()})
		closeStore()
		os.Exit(1)
	}
	utils.Info("auction server stopped", nil)
}

// openStore returns the configured LedgerStore and a func releasing it
func openStore(ctx context.Context, cfg config.StoreConfig) (repository.LedgerStore, func(), error) {
	if cfg.Driver != "mongo" {
		repo := repository.NewMemoryRepo()
		for _, p := range sampleParticipants() {
			repo.AddParticipant(p)
		}
		return repo, func() {}, nil
	}

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	repo, err := repository.NewMongoRepo(connectCtx, cfg.MongoURI, cfg.Database)
	if err != nil {
		return nil, nil, err
	}
	if err := repo.EnsureIndexes(connectCtx); err != nil {
		_ = repo.Close(ctx)
		return nil, nil, err
	}
	return repo, func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = repo.Close(closeCtx)
	}, nil
}

// newSender returns the configured notification sender
func newSender(cfg config.NotificationConfig, store repository.LedgerStore) (notification.Sender, error) {
	if cfg.Driver != "resend" {
		return notification.NewLogSender(), nil
	}
	book := notification.ChainAddressBook{store, notification.StaticAddressBook(cfg.Recipients)}
	return notification.NewMailSender(cfg.ResendAPIKey, cfg.From, book)
}

func sampleParticipants() []model.Participant {
	return []model.Participant{
		{ParticipantID: "user1", Name: "Ada", Email: "ada@example.com"},
		{ParticipantID: "user2", Name: "Grace", Email: "grace@example.com"},
		{ParticipantID: "user3", Name: "Linus", Email: "linus@example.com"},
	}
}

// prepopulateAuctions opens sample auctions unless they already exist
func prepopulateAuctions(ctx context.Context, store repository.LedgerStore, now time.Time) error {
	auctions := []model.Auction{
		{AuctionID: "auction1", ItemID: "item1", Title: "title1", Description: "description1", StartingPrice: decimal.NewFromInt(100), EndTime: now.Add(24 * time.Hour)},
		{AuctionID: "auction2", ItemID: "item2", Title: "title2", Description: "description2", StartingPrice: decimal.NewFromInt(200), EndTime: now.Add(48 * time.Hour)},
		{AuctionID: "auction3", ItemID: "item3", Title: "title3", Description: "description3", StartingPrice: decimal.NewFromInt(150), EndTime: now.Add(72 * time.Hour)},
	}

	for _, a := range auctions {
		a.CurrentPrice = a.StartingPrice
		a.BidIDs = []string{}
		a.CreatedAt = now.UTC()
		err := store.WithTransaction(ctx, func(ctx context.Context, tx repository.Tx) error {
			if _, err := tx.FindAuction(ctx, a.AuctionID); err == nil {
				return nil
			} else if !errors.Is(err, biddingerrors.ErrAuctionNotFound) {
				return err
			}
			return tx.CreateAuction(ctx, a)
		})
		if err != nil {
			return err
		}
	}
	return nil
}
