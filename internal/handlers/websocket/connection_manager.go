package websocket

import (
	"sync"
	"time"

	"github.com/xpanvictor/xarvis-voice/pkg/Logger"
)

// ConnectionManager tracks live websocket connections
type ConnectionManager struct {
	logger      *Logger.Logger
	connections map[string]*Connection
	mutex       sync.RWMutex
	closed      bool
}

// NewConnectionManager creates a new connection manager
func NewConnectionManager(logger *Logger.Logger) *ConnectionManager {
	return &ConnectionManager{
		logger:      logger,
		connections: make(map[string]*Connection),
	}
}

// RegisterConnection registers a new connection. It reports false once the
// manager has been closed.
func (cm *ConnectionManager) RegisterConnection(conn *Connection) bool {
	cm.mutex.Lock()
	defer cm.mutex.Unlock()

	if cm.closed {
		return false
	}
	cm.connections[conn.ID] = conn
	cm.logger.Infof("Registered connection %s (user: %s)", conn.ID, conn.UserID)
	return true
}

// UnregisterConnection removes a connection and closes it
func (cm *ConnectionManager) UnregisterConnection(id string) {
	cm.mutex.Lock()
	conn, exists := cm.connections[id]
	delete(cm.connections, id)
	cm.mutex.Unlock()

	if exists {
		cm.logger.Infof("Unregistering connection %s", id)
		conn.Close()
	}
}

// GetConnection retrieves a connection by session ID
func (cm *ConnectionManager) GetConnection(id string) (*Connection, bool) {
	cm.mutex.RLock()
	defer cm.mutex.RUnlock()

	conn, exists := cm.connections[id]
	return conn, exists
}

// GetConnectionCount returns the number of active connections
func (cm *ConnectionManager) GetConnectionCount() int {
	cm.mutex.RLock()
	defer cm.mutex.RUnlock()

	return len(cm.connections)
}

// Close shuts down every connection
func (cm *ConnectionManager) Close() error {
	cm.mutex.Lock()
	conns := make([]*Connection, 0, len(cm.connections))
	for _, conn := range cm.connections {
		conns = append(conns, conn)
	}
	cm.connections = make(map[string]*Connection)
	cm.closed = true
	cm.mutex.Unlock()

	for _, conn := range conns {
		conn.Close()
	}
	cm.logger.Infof("Connection manager closed (%d connections)", len(conns))
	return nil
}

// ConnectionStats describes one live connection
type ConnectionStats struct {
	SessionID   string    `json:"session_id"`
	UserID      string    `json:"user_id,omitempty"`
	ConnectedAt time.Time `json:"connected_at"`
	EventsSent  int64     `json:"events_sent"`
}

// Stats is the connection manager snapshot served on /ws/stats
type Stats struct {
	ActiveConnections int               `json:"active_connections"`
	Connections       []ConnectionStats `json:"connections"`
}

// GetStats returns connection manager statistics
func (cm *ConnectionManager) GetStats() Stats {
	cm.mutex.RLock()
	defer cm.mutex.RUnlock()

	stats := Stats{
		ActiveConnections: len(cm.connections),
		Connections:       make([]ConnectionStats, 0, len(cm.connections)),
	}
	for _, conn := range cm.connections {
		stats.Connections = append(stats.Connections, ConnectionStats{
			SessionID:   conn.ID,
			UserID:      conn.UserID,
			ConnectedAt: conn.ConnectedAt,
			EventsSent:  conn.Sent(),
		})
	}
	return stats
}
