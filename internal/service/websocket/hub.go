package websocket

import (
	"context"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	jsoniter "github.com/json-iterator/go"

	"helmetkiosk/internal/dto"
	"helmetkiosk/internal/logger"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	writeWait       = 5 * time.Second
	broadcastBuffer = 16
)

type registration struct {
	conn     *websocket.Conn
	greeting []byte
}

// HubService fans events out to every connected viewer. All writes to a
// connection happen on the Run goroutine.
type HubService struct {
	clients    map[*websocket.Conn]bool
	broadcast  chan []byte
	register   chan registration
	unregister chan *websocket.Conn
	done       chan struct{}
	closeOnce  sync.Once
	mutex      sync.RWMutex
	logger     *logger.Logger
}

func NewHubService(logger *logger.Logger) *HubService {
	return &HubService{
		clients:    make(map[*websocket.Conn]bool),
		broadcast:  make(chan []byte, broadcastBuffer),
		register:   make(chan registration),
		unregister: make(chan *websocket.Conn),
		done:       make(chan struct{}),
		logger:     logger,
	}
}

// Run serves registrations and broadcasts until ctx is cancelled, then
// closes every remaining connection.
func (h *HubService) Run(ctx context.Context) {
	defer h.shutdown()

	for {
		select {
		case <-ctx.Done():
			return

		case reg := <-h.register:
			h.mutex.Lock()
			h.clients[reg.conn] = true
			total := len(h.clients)
			h.mutex.Unlock()
			h.logger.Info("Viewer connected. Total: %d", total)

			if reg.greeting != nil {
				h.write(reg.conn, reg.greeting)
			}

		case conn := <-h.unregister:
			h.remove(conn)
			h.logger.Info("Viewer disconnected. Total: %d", h.GetClientCount())

		case message := <-h.broadcast:
			for _, conn := range h.snapshot() {
				h.write(conn, message)
			}
		}
	}
}

func (h *HubService) write(conn *websocket.Conn, message []byte) {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
		h.logger.Error("Error sending message: %v", err)
		h.remove(conn)
	}
}

func (h *HubService) remove(conn *websocket.Conn) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if _, ok := h.clients[conn]; ok {
		delete(h.clients, conn)
		conn.Close()
	}
}

func (h *HubService) snapshot() []*websocket.Conn {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	conns := make([]*websocket.Conn, 0, len(h.clients))
	for conn := range h.clients {
		conns = append(conns, conn)
	}
	return conns
}

func (h *HubService) shutdown() {
	h.closeOnce.Do(func() { close(h.done) })

	h.mutex.Lock()
	defer h.mutex.Unlock()
	for conn := range h.clients {
		conn.Close()
		delete(h.clients, conn)
	}
}

// Register adds a viewer. greeting, if not nil, is written to that viewer
// before any later broadcast.
func (h *HubService) Register(conn *websocket.Conn, greeting []byte) {
	select {
	case h.register <- registration{conn: conn, greeting: greeting}:
	case <-h.done:
		conn.Close()
	}
}

func (h *HubService) Unregister(conn *websocket.Conn) {
	select {
	case h.unregister <- conn:
	case <-h.done:
	}
}

// Broadcast queues message for every viewer. It never blocks after the hub
// has stopped; when the queue is full the message is dropped.
func (h *HubService) Broadcast(message []byte) {
	select {
	case <-h.done:
		return
	default:
	}

	select {
	case h.broadcast <- message:
	case <-h.done:
	default:
		h.logger.Warning("Broadcast queue full, dropping message")
	}
}

// Publish encodes an event envelope and broadcasts it.
func (h *HubService) Publish(eventType string, data interface{}) error {
	message, err := Encode(eventType, data)
	if err != nil {
		h.logger.Error("Failed to encode %s event: %v", eventType, err)
		return err
	}
	h.Broadcast(message)
	return nil
}

// Encode builds the JSON envelope for one event.
func Encode(eventType string, data interface{}) ([]byte, error) {
	return json.Marshal(dto.Event{Type: eventType, Data: data})
}

func (h *HubService) GetClientCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}
