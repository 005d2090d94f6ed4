package web

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/lcalzada-xor/wifitrack/internal/core/domain"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		origin := r.Header.Get("Origin")

		// Allow same-origin (no Origin header)
		if origin == "" {
			return true
		}

		allowedOrigins := []string{
			"http://localhost:8080",
			"http://127.0.0.1:8080",
			"http://[::1]:8080",
		}

		for _, allowed := range allowedOrigins {
			if origin == allowed {
				return true
			}
		}

		log.Printf("WebSocket: Rejected origin: %s", origin)
		return false
	},
}

// WSMessage is the envelope for every pushed frame.
type WSMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// SnapshotSource is the tracker surface the hub reads from. All methods are
// safe from any goroutine.
type SnapshotSource interface {
	Snapshot() domain.Snapshot
	SavedNetworkCount() int
	SavedSubscriptionCount() int
}

// WSManager pushes tracker changes to connected websocket clients. It
// implements ports.TrackerCallback, so its methods run on the tracker's
// listener goroutine.
type WSManager struct {
	Source  SnapshotSource
	clients map[string]*websocket.Conn
	mu      sync.Mutex
}

func NewWSManager(source SnapshotSource) *WSManager {
	return &WSManager{
		Source:  source,
		clients: make(map[string]*websocket.Conn),
	}
}

func (m *WSManager) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println("Upgrade error:", err)
		return
	}

	id := uuid.New().String()
	m.mu.Lock()
	m.clients[id] = conn
	m.mu.Unlock()

	log.Printf("WebSocket connected: client=%s", id)

	// Send the current snapshot immediately so the client doesn't wait for
	// the next reconciliation cycle.
	m.sendTo(conn, WSMessage{Type: "entries", Payload: m.Source.Snapshot()})

	// Clean up on disconnect
	go func() {
		defer conn.Close()
		defer func() {
			m.mu.Lock()
			delete(m.clients, id)
			m.mu.Unlock()
			log.Printf("WebSocket disconnected: client=%s", id)
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}
	}()
}

// OnEntriesChanged pushes the fresh snapshot to every client.
func (m *WSManager) OnEntriesChanged() {
	m.broadcast(WSMessage{Type: "entries", Payload: m.Source.Snapshot()})
}

// OnSavedNetworkCountChanged pushes the new saved-network count.
func (m *WSManager) OnSavedNetworkCountChanged() {
	m.broadcast(WSMessage{
		Type:    "saved_networks",
		Payload: map[string]int{"count": m.Source.SavedNetworkCount()},
	})
}

// OnSavedSubscriptionCountChanged pushes the new subscription count.
func (m *WSManager) OnSavedSubscriptionCountChanged() {
	m.broadcast(WSMessage{
		Type:    "saved_subscriptions",
		Payload: map[string]int{"count": m.Source.SavedSubscriptionCount()},
	})
}

func (m *WSManager) broadcast(msg WSMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Println("JSON marshal error:", err)
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for id, conn := range m.clients {
		conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			conn.Close()
			delete(m.clients, id)
		}
	}
}

func (m *WSManager) sendTo(conn *websocket.Conn, msg WSMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Println("JSON marshal error:", err)
		return
	}
	conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		conn.Close()
	}
}
