package websocket

import (
	"fmt"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/partnerhub/partnerhub_backend/models"
	"github.com/partnerhub/partnerhub_backend/utils"
)

// Event types pushed to portal sessions
const (
	EventTypeLevelChange        = "level_change"
	EventTypeReferralCommission = "referral_commission"
)

// Notification represents a message sent over WebSocket
type Notification struct {
	Type         string      `json:"type"`
	Message      string      `json:"message"`
	Data         interface{} `json:"data,omitempty"`
	PartnerID    string      `json:"partnerId,omitempty"`
	RequiresAuth bool        `json:"requiresAuth,omitempty"`
}

// Client represents a connected WebSocket client
type Client struct {
	PartnerID     string
	Conn          *websocket.Conn
	Authenticated bool
}

// Hub maintains the set of active clients and pushes portal events
type Hub struct {
	clients                map[string]*Client
	unauthenticatedClients map[*Client]bool
	register               chan *Client
	unregister             chan *Client
	mu                     sync.RWMutex
}

// NewHub creates a new Hub instance
func NewHub() *Hub {
	return &Hub{
		clients:                make(map[string]*Client),
		unauthenticatedClients: make(map[*Client]bool),
		register:               make(chan *Client),
		unregister:             make(chan *Client),
	}
}

// Run starts the hub's event loop
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			if client.Authenticated && client.PartnerID != "" {
				h.clients[client.PartnerID] = client
			} else {
				h.unauthenticatedClients[client] = true
			}
			h.mu.Unlock()
		case client := <-h.unregister:
			h.mu.Lock()
			if client.Authenticated && client.PartnerID != "" {
				if _, ok := h.clients[client.PartnerID]; ok {
					delete(h.clients, client.PartnerID)
				}
			} else {
				delete(h.unauthenticatedClients, client)
			}
			client.Conn.Close()
			h.mu.Unlock()
		}
	}
}

// SendToPartner sends a message to a specific partner's session
func (h *Hub) SendToPartner(partnerID string, notification Notification) error {
	h.mu.RLock()
	client, ok := h.clients[partnerID]
	h.mu.RUnlock()

	if !ok {
		return fmt.Errorf("partner not connected")
	}

	return client.Conn.WriteJSON(notification)
}

// AuthenticateClient moves a client from unauthenticated to authenticated state
func (h *Hub) AuthenticateClient(client *Client, partnerID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.unauthenticatedClients[client]; ok {
		delete(h.unauthenticatedClients, client)
	}

	client.Authenticated = true
	client.PartnerID = partnerID

	h.clients[partnerID] = client
}

// NotifyLevelChange pushes a recomputed level to the partner's session. Best
// effort: a disconnected partner sees the new level on the next dashboard
// load.
func (h *Hub) NotifyLevelChange(partnerID string, level utils.LevelInfo) {
	h.SendToPartner(partnerID, Notification{
		Type:    EventTypeLevelChange,
		Message: "Your partner level has been updated",
		Data:    level,
	})
}

// NotifyReferralCommission tells a referring partner about a newly earned
// referral commission.
func (h *Hub) NotifyReferralCommission(referrerID string, rc *models.ReferralCommission) {
	h.SendToPartner(referrerID, Notification{
		Type:    EventTypeReferralCommission,
		Message: "You earned a referral commission",
		Data:    rc,
	})
}
