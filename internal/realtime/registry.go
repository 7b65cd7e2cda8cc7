// Package realtime tracks live WebSocket sessions per user and fans
// notification events out to them.
package realtime

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// Conn is the minimal connection surface the registry needs. It is satisfied
// by *websocket.Conn from gorilla and by test doubles.
type Conn interface {
	WriteJSON(v interface{}) error
	Close() error
}

type connState struct {
	userID      string
	connectedAt time.Time

	// writeMu serialises writes to one connection; the registry lock is not
	// held across network sends.
	writeMu sync.Mutex
}

// Registry is the process-wide map of live connections keyed by user. It is
// an explicit component passed to its consumers, not a package singleton.
// All map mutations are guarded by a single mutex; sends happen outside it.
type Registry struct {
	mu        sync.Mutex
	userConns map[string]map[Conn]*connState
	states    map[Conn]*connState
	logger    *zap.Logger
}

// NewRegistry builds an empty connection registry.
func NewRegistry(logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		userConns: make(map[string]map[Conn]*connState),
		states:    make(map[Conn]*connState),
		logger:    logger,
	}
}

// Connect registers a connection under a user. A user may hold any number of
// concurrent connections.
func (r *Registry) Connect(conn Conn, userID string) {
	state := &connState{userID: userID, connectedAt: time.Now().UTC()}

	r.mu.Lock()
	if r.userConns[userID] == nil {
		r.userConns[userID] = make(map[Conn]*connState)
	}
	r.userConns[userID][conn] = state
	r.states[conn] = state
	total := len(r.userConns[userID])
	r.mu.Unlock()

	r.logger.Info("websocket connected",
		zap.String("user_id", userID),
		zap.Int("user_connections", total),
	)
}

// Disconnect removes a connection from the registry. Removing an unknown
// connection is a no-op. Empty per-user sets are deleted so the map does not
// grow unboundedly.
func (r *Registry) Disconnect(conn Conn) {
	r.mu.Lock()
	state, ok := r.states[conn]
	if !ok {
		r.mu.Unlock()
		return
	}
	delete(r.states, conn)
	if conns := r.userConns[state.userID]; conns != nil {
		delete(conns, conn)
		if len(conns) == 0 {
			delete(r.userConns, state.userID)
		}
	}
	r.mu.Unlock()

	r.logger.Info("websocket disconnected", zap.String("user_id", state.userID))
}

// SendToUser delivers message to every live connection of userID and returns
// how many deliveries succeeded. A failed send tears down only the failing
// connection; delivery to the user's other connections continues.
func (r *Registry) SendToUser(userID string, message interface{}) int {
	r.mu.Lock()
	targets := make([]struct {
		conn  Conn
		state *connState
	}, 0, len(r.userConns[userID]))
	for conn, state := range r.userConns[userID] {
		targets = append(targets, struct {
			conn  Conn
			state *connState
		}{conn, state})
	}
	r.mu.Unlock()

	sent := 0
	var failed []Conn
	for _, target := range targets {
		target.state.writeMu.Lock()
		err := target.conn.WriteJSON(message)
		target.state.writeMu.Unlock()
		if err != nil {
			r.logger.Warn("websocket send failed",
				zap.String("user_id", userID),
				zap.Error(err),
			)
			failed = append(failed, target.conn)
			continue
		}
		sent++
	}

	for _, conn := range failed {
		r.Disconnect(conn)
		_ = conn.Close()
	}

	return sent
}

// BroadcastToUsers delivers message to every connection of each listed user.
func (r *Registry) BroadcastToUsers(userIDs []string, message interface{}) int {
	total := 0
	for _, userID := range userIDs {
		total += r.SendToUser(userID, message)
	}
	return total
}

// BroadcastToAll delivers message to every connected user.
func (r *Registry) BroadcastToAll(message interface{}) int {
	r.mu.Lock()
	userIDs := make([]string, 0, len(r.userConns))
	for userID := range r.userConns {
		userIDs = append(userIDs, userID)
	}
	r.mu.Unlock()

	return r.BroadcastToUsers(userIDs, message)
}

// UserConnectionCount returns the number of live connections for a user.
func (r *Registry) UserConnectionCount(userID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.userConns[userID])
}

// TotalConnections returns the number of live connections across all users.
func (r *Registry) TotalConnections() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.states)
}
