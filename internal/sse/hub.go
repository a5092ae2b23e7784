package sse

import (
	"fmt"
	"log"
	"sync"
)

// Event represents a Server-Sent Event
type Event struct {
	EventType string `json:"event"`
	Data      string `json:"data"`
}

// Client represents a connected SSE client
type Client struct {
	ID     string
	UserID string
	Events chan Event
}

// Hub manages all SSE client connections
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client
}

// GlobalHub is the singleton SSE Hub instance
var GlobalHub = NewHub()

// NewHub creates a new SSE Hub
func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]*Client),
	}
}

// Register adds a new client to the hub
func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[client.ID] = client
	log.Printf("[SSE] Client registered: id=%s user=%s (total: %d)", client.ID, client.UserID, len(h.clients))
}

// Unregister removes a client from the hub
func (h *Hub) Unregister(clientID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if client, ok := h.clients[clientID]; ok {
		close(client.Events)
		delete(h.clients, clientID)
		log.Printf("[SSE] Client unregistered: id=%s (total: %d)", clientID, len(h.clients))
	}
}

// Broadcast sends an event to all connected clients
func (h *Hub) Broadcast(event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, client := range h.clients {
		select {
		case client.Events <- event:
		default:
			log.Printf("[SSE] Client %s buffer full, skipping event", client.ID)
		}
	}
}

// PublishAlert 向所有在线客户端广播新建告警
func PublishAlert(lotID, alertID, severity, alertType string) {
	data := fmt.Sprintf(`{"production_lot_id":"%s","alert_id":"%s","severity":"%s","alert_type":"%s"}`,
		lotID, alertID, severity, alertType)
	GlobalHub.Broadcast(Event{
		EventType: "alert_created",
		Data:      data,
	})
	log.Printf("[SSE] Published alert_created: lot=%s alert=%s severity=%s", lotID, alertID, severity)
}

// PublishLotStatusChange 批次状态变化广播（用于监控看板实时刷新）
func PublishLotStatusChange(lotID, fromStatus, toStatus string) {
	data := fmt.Sprintf(`{"production_lot_id":"%s","from":"%s","to":"%s"}`, lotID, fromStatus, toStatus)
	GlobalHub.Broadcast(Event{
		EventType: "lot_status_changed",
		Data:      data,
	})
	log.Printf("[SSE] Published lot_status_changed: lot=%s %s -> %s", lotID, fromStatus, toStatus)
}
