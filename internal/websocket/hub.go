package websocket

import (
	"snapshop-be/internal/pkg/logger"
)

type outbound struct {
	requestID string
	payload   []byte
}

// Hub routes search-progress frames to the clients following each request.
// All bookkeeping happens on the Run goroutine, so no locks are needed.
type Hub struct {
	byRequest map[string]map[*Client]bool

	register   chan *Client
	unregister chan *Client
	broadcast  chan outbound

	logger logger.ILogger
}

func NewHub(log logger.ILogger) *Hub {
	return &Hub{
		byRequest:  make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan outbound, 64),
		logger:     log,
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			if h.byRequest[client.RequestID] == nil {
				h.byRequest[client.RequestID] = make(map[*Client]bool)
			}
			h.byRequest[client.RequestID][client] = true
			h.logger.Info("websocket", "client subscribed", map[string]interface{}{
				"request_id": client.RequestID,
			})

		case client := <-h.unregister:
			if clients, ok := h.byRequest[client.RequestID]; ok {
				if clients[client] {
					delete(clients, client)
					close(client.Send)
				}
				if len(clients) == 0 {
					delete(h.byRequest, client.RequestID)
				}
			}

		case msg := <-h.broadcast:
			for client := range h.byRequest[msg.requestID] {
				select {
				case client.Send <- msg.payload:
				default:
					// Slow consumer: drop the connection, not the pipeline.
					delete(h.byRequest[msg.requestID], client)
					close(client.Send)
				}
			}
		}
	}
}

// Broadcast sends a frame to every client following the request. Safe to
// call from any goroutine; never blocks the caller.
func (h *Hub) Broadcast(requestID string, payload []byte) {
	h.broadcast <- outbound{requestID: requestID, payload: payload}
}

// Register attaches a client and starts its pumps.
func (h *Hub) Register(client *Client) {
	h.register <- client
	go client.writePump()
	client.readPump()
}
