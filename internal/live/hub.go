package live

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	model "bidding-engine/internal/models"
	"bidding-engine/utils"

	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"
)

//go:generate mockgen -destination=mock_broadcaster.go -package=live bidding-engine/internal/live Broadcaster

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// Broadcaster pushes auction updates to whoever is watching. Delivery is fire-and-forget.
type Broadcaster interface {
	Publish(auctionID string, payload any)
}

// Update is the payload pushed after every accepted bid
type Update struct {
	AuctionID     string          `json:"auction_id"`
	ItemID        string          `json:"item_id"`
	HighestBidder string          `json:"highest_bidder"`
	BidCount      int             `json:"bid_count"`
	CurrentPrice  decimal.Decimal `json:"current_price"`
	Bid           model.Bid       `json:"bid"`
}

// Hub fans out published payloads to per-auction subscribers
type Hub struct {
	mu         sync.RWMutex
	subs       map[string]map[chan []byte]struct{}
	bufferSize int
	upgrader   websocket.Upgrader
}

// NewHub creates a Hub whose subscribers buffer up to bufferSize messages before dropping
func NewHub(bufferSize int) *Hub {
	if bufferSize <= 0 {
		bufferSize = 16
	}
	return &Hub{
		subs:       make(map[string]map[chan []byte]struct{}),
		bufferSize: bufferSize,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// Publish encodes payload as JSON and hands it to every subscriber of auctionID.
// Slow subscribers miss messages rather than blocking the publisher.
func (h *Hub) Publish(auctionID string, payload any) {
	msg, err := json.Marshal(payload)
	if err != nil {
		utils.Warn("live: failed to encode update", map[string]any{"auction_id": auctionID, "error": err.Error()})
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for ch := range h.subs[auctionID] {
		select {
		case ch <- msg:
		default:
		}
	}
}

// Subscribe registers a listener for auctionID. The returned func unregisters it.
func (h *Hub) Subscribe(auctionID string) (<-chan []byte, func()) {
	ch := make(chan []byte, h.bufferSize)

	h.mu.Lock()
	if h.subs[auctionID] == nil {
		h.subs[auctionID] = make(map[chan []byte]struct{})
	}
	h.subs[auctionID][ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs[auctionID], ch)
			if len(h.subs[auctionID]) == 0 {
				delete(h.subs, auctionID)
			}
			h.mu.Unlock()
		})
	}
}

// Subscribers returns how many listeners auctionID has
func (h *Hub) Subscribers(auctionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[auctionID])
}

// ServeWS upgrades the request and streams auctionID's updates until the client goes away
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, auctionID string) error {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return fmt.Errorf("live: upgrade: %w", err)
	}
	defer conn.Close()

	updates, unsubscribe := h.Subscribe(auctionID)
	defer unsubscribe()

	// the read loop only exists to notice the peer closing
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		conn.SetReadLimit(512)
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case msg := <-updates:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return nil
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return nil
			}
		case <-closed:
			return nil
		case <-r.Context().Done():
			return nil
		}
	}
}
