package server

import (
	"context"
	"encoding/json"
	"strings"
	"sync"

	"keepsake/internal/feed"
	"keepsake/internal/services"
	"keepsake/pkg/events"
	"keepsake/pkg/logger"

	"github.com/google/uuid"
)

// Hub is the server half of the live message subscription. It tracks the
// space's connected clients and, on every message event, pushes the full
// current feed window (a snapshot, not a diff) to each of them.
type Hub struct {
	clients        map[uuid.UUID]map[string]*Client
	register       chan *Client
	unregister     chan *Client
	messageService *services.MessageService
	userService    *services.UserService
	broker         events.Subscriber
	logger         *logger.Logger
	mu             sync.RWMutex
	stopChan       chan struct{}
}

// SnapshotFrame is the wire envelope for a pushed feed window.
type SnapshotFrame struct {
	Type     string         `json:"type"`
	Messages []feed.Message `json:"messages"`
}

// EventFrame forwards non-snapshot events (presence, calendar, capsule).
type EventFrame struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

const maxConnectionsPerUser = 10

func NewHub(messageService *services.MessageService, userService *services.UserService, broker events.Subscriber, l *logger.Logger) *Hub {
	return &Hub{
		clients:        make(map[uuid.UUID]map[string]*Client),
		register:       make(chan *Client, 64),
		unregister:     make(chan *Client, 64),
		messageService: messageService,
		userService:    userService,
		broker:         broker,
		logger:         l,
		stopChan:       make(chan struct{}),
	}
}

func (h *Hub) Run() {
	if h.broker != nil {
		if err := h.broker.Subscribe(context.Background(), services.EventsChannel, h.handleEvent); err != nil {
			h.logger.Errorf("hub event subscription failed: %v", err)
		}
	}

	for {
		select {
		case client := <-h.register:
			h.handleRegister(client)

		case client := <-h.unregister:
			h.handleUnregister(client)

		case <-h.stopChan:
			return
		}
	}
}

func (h *Hub) handleRegister(client *Client) {
	h.mu.Lock()

	if h.clients[client.userID] == nil {
		h.clients[client.userID] = make(map[string]*Client)
	}
	if len(h.clients[client.userID]) >= maxConnectionsPerUser {
		for id, c := range h.clients[client.userID] {
			h.removeClient(c)
			delete(h.clients[client.userID], id)
			break
		}
	}
	h.clients[client.userID][client.clientID] = client
	h.mu.Unlock()

	h.logger.Infof("client connected user=%s client=%s", client.userID, client.clientID)

	go client.writePump()
	go client.readPump()

	// Initial snapshot so a fresh connection has the window immediately.
	h.pushSnapshotTo(client)
}

func (h *Hub) handleUnregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if userClients, ok := h.clients[client.userID]; ok {
		if _, ok := userClients[client.clientID]; ok {
			delete(userClients, client.clientID)
			h.removeClient(client)
			if len(userClients) == 0 {
				delete(h.clients, client.userID)
			}
			h.logger.Infof("client disconnected user=%s client=%s", client.userID, client.clientID)
		}
	}
}

func (h *Hub) removeClient(client *Client) {
	close(client.send)
	client.conn.Close()
}

// handleEvent reacts to broker events: message events refresh the window
// snapshot for everyone; other event types are forwarded as-is.
func (h *Hub) handleEvent(ctx context.Context, event events.Event) error {
	if strings.HasPrefix(event.Type, "message.") {
		h.pushSnapshotAll(ctx)
		return nil
	}

	data, err := json.Marshal(EventFrame{Type: event.Type, Payload: event.Payload})
	if err != nil {
		return err
	}
	h.broadcast(data)
	return nil
}

func (h *Hub) pushSnapshotAll(ctx context.Context) {
	frame, err := h.snapshotFrame(ctx)
	if err != nil {
		h.logger.Errorf("snapshot query failed: %v", err)
		return
	}
	h.broadcast(frame)
}

func (h *Hub) pushSnapshotTo(client *Client) {
	frame, err := h.snapshotFrame(context.Background())
	if err != nil {
		h.logger.Errorf("snapshot query failed: %v", err)
		return
	}
	select {
	case client.send <- frame:
	default:
		h.logger.Warnf("client send buffer full user=%s", client.userID)
	}
}

// snapshotFrame serializes the current window newest-first, as the
// reconciler on the other end expects.
func (h *Hub) snapshotFrame(ctx context.Context) ([]byte, error) {
	window, err := h.messageService.GetWindow(ctx)
	if err != nil {
		return nil, err
	}
	msgs := make([]feed.Message, 0, len(window))
	for _, m := range window {
		msgs = append(msgs, feed.FromEntity(m))
	}
	return json.Marshal(SnapshotFrame{Type: "snapshot", Messages: msgs})
}

func (h *Hub) broadcast(data []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, userClients := range h.clients {
		for _, client := range userClients {
			select {
			case client.send <- data:
			default:
				h.logger.Warnf("client send buffer full user=%s", client.userID)
			}
		}
	}
}

func (h *Hub) Stop() {
	close(h.stopChan)

	h.mu.Lock()
	defer h.mu.Unlock()

	for _, userClients := range h.clients {
		for _, client := range userClients {
			h.removeClient(client)
		}
	}
	h.clients = make(map[uuid.UUID]map[string]*Client)
}
