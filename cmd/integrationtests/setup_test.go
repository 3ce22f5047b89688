package integrationtests

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"bidding-engine/internal/autobid"
	bidding "bidding-engine/internal/biddingService"
	"bidding-engine/internal/escalation"
	"bidding-engine/internal/live"
	model "bidding-engine/internal/models"
	"bidding-engine/internal/notification"
	"bidding-engine/internal/repository"
	"bidding-engine/internal/server"
	"bidding-engine/internal/settlement"

	"code.cloudfoundry.org/clock/fakeclock"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

var t0 = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

// recordingSender keeps every notification the engine sends
type recordingSender struct {
	mu   sync.Mutex
	sent []notification.Message
}

func (s *recordingSender) Notify(_ context.Context, participantID string, kind notification.Kind, data notification.Data) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, notification.Message{ParticipantID: participantID, Kind: kind, Data: data})
	return nil
}

// Kinds returns the kinds sent to participantID
func (s *recordingSender) Kinds(participantID string) []notification.Kind {
	s.mu.Lock()
	defer s.mu.Unlock()
	var kinds []notification.Kind
	for _, m := range s.sent {
		if m.ParticipantID == participantID {
			kinds = append(kinds, m.Kind)
		}
	}
	return kinds
}

// testEnv is a fully wired engine on an in-memory store and a fake clock
type testEnv struct {
	repo    *repository.MemoryRepo
	clock   *fakeclock.FakeClock
	router  *gin.Engine
	settler *settlement.Settler
	sender  *recordingSender
}

// SetupTestEnv wires every service behind the router, seeded with auctions.
func SetupTestEnv(auctions ...model.Auction) *testEnv {
	gin.SetMode(gin.TestMode)

	repo := repository.NewMemoryRepo()
	for _, a := range auctions {
		repo.AddAuction(a)
	}

	clk := fakeclock.NewFakeClock(t0)
	sender := &recordingSender{}
	dispatcher := notification.NewDispatcher(sender, 2)
	hub := live.NewHub(8)

	resolver := escalation.NewResolver(repo, clk, escalation.Config{})
	settler := settlement.NewSettler(repo, nil, dispatcher, settlement.Config{Workers: 2})

	router := server.SetupRouter(server.Services{
		Bidding:  bidding.NewBiddingService(repo, resolver, dispatcher, hub, clk, bidding.Config{}),
		AutoBid:  autobid.NewService(repo, clk),
		Invoices: settler,
		Live:     hub,
	})

	return &testEnv{repo: repo, clock: clk, router: router, settler: settler, sender: sender}
}

// openAuction is an auction on "item-"+id starting at 50 and closing an hour after t0
func openAuction(id string) model.Auction {
	return model.Auction{
		AuctionID:     id,
		ItemID:        "item-" + id,
		Title:         "title " + id,
		Description:   "description " + id,
		StartingPrice: decimal.NewFromInt(50),
		EndTime:       t0.Add(time.Hour),
		BidIDs:        []string{},
	}
}

// ExecuteRequestAndParse executes an HTTP request on the router and parses the JSON envelope
func ExecuteRequestAndParse(t *testing.T, router *gin.Engine, method, url string, body any) (map[string]any, *httptest.ResponseRecorder) {
	t.Helper()

	var reqBody []byte
	switch v := body.(type) {
	case nil:
	case []byte:
		reqBody = v
	case string:
		reqBody = []byte(v)
	default:
		var err error
		reqBody, err = json.Marshal(v)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, url, bytes.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	var resp map[string]any
	if w.Body.Len() > 0 {
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to unmarshal response: %v", err)
		}
	}
	return resp, w
}

// data returns the envelope's data object
func data(t *testing.T, resp map[string]any) map[string]any {
	t.Helper()
	d, ok := resp["data"].(map[string]any)
	if !ok {
		t.Fatalf("response has no data object: %v", resp)
	}
	return d
}
