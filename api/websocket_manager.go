package api

import (
	"sync"

	"github.com/gorilla/websocket"
)

// lockedConn wraps a WebSocket connection with its own mutex so concurrent
// broadcasts never interleave writes on one connection.
type lockedConn struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

// WSConnectionManager tracks websocket clients subscribed to sync events.
type WSConnectionManager struct {
	mu          sync.RWMutex
	connections map[*websocket.Conn]*lockedConn
}

// NewWSConnectionManager creates an empty manager.
func NewWSConnectionManager() *WSConnectionManager {
	return &WSConnectionManager{
		connections: make(map[*websocket.Conn]*lockedConn),
	}
}

// Add registers a connection.
func (m *WSConnectionManager) Add(conn *websocket.Conn) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.connections[conn] = &lockedConn{conn: conn}
}

// Remove unregisters a connection.
func (m *WSConnectionManager) Remove(conn *websocket.Conn) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.connections, conn)
}

// Broadcast sends a JSON message to every connected client. Connections
// that fail to write are dropped.
func (m *WSConnectionManager) Broadcast(message any) {
	m.mu.RLock()
	conns := make([]*lockedConn, 0, len(m.connections))
	for _, lc := range m.connections {
		conns = append(conns, lc)
	}
	m.mu.RUnlock()

	for _, lc := range conns {
		lc.mu.Lock()
		err := lc.conn.WriteJSON(message)
		lc.mu.Unlock()

		if err != nil {
			m.Remove(lc.conn)
			lc.conn.Close()
		}
	}
}
