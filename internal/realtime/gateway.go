package realtime

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/canteen-central/canteen-api/internal/models"
)

// Close codes mirrored from the legacy realtime endpoint so existing clients
// keep working.
const (
	closeCodeConnectionFailed = 4000
	closeCodeAuthFailed       = 4001
)

// TokenVerifier validates a bearer token and returns its claims.
type TokenVerifier interface {
	ValidateToken(token string) (*models.JWTClaims, error)
}

// Event is the wire envelope for realtime messages.
type Event struct {
	Type      string      `json:"type"`
	UserID    string      `json:"user_id,omitempty"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// Gateway upgrades HTTP requests to WebSocket sessions, authenticates them
// and hands the connection to the registry for the rest of its lifetime.
type Gateway struct {
	registry *Registry
	auth     TokenVerifier
	upgrader websocket.Upgrader
	logger   *zap.Logger
}

// NewGateway constructs the realtime gateway.
func NewGateway(registry *Registry, auth TokenVerifier, logger *zap.Logger) *Gateway {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Gateway{
		registry: registry,
		auth:     auth,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Cross-origin policy is enforced by the CORS layer in front.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		logger: logger,
	}
}

// Handle is the gin endpoint for realtime sessions. The token is read from
// the `token` query parameter or the Authorization header; authentication
// happens after the upgrade so failures surface as WebSocket close codes the
// client can observe.
func (g *Gateway) Handle(c *gin.Context) {
	conn, err := g.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		g.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	claims, err := g.authenticate(c)
	if err != nil {
		g.logger.Warn("websocket authentication failed", zap.Error(err))
		g.closeWith(conn, closeCodeAuthFailed, "Authentication failed")
		return
	}

	g.registry.Connect(conn, claims.UserID)
	defer func() {
		g.registry.Disconnect(conn)
		_ = conn.Close()
	}()

	if err := conn.WriteJSON(Event{
		Type:      "connection_established",
		UserID:    claims.UserID,
		Timestamp: time.Now().UTC(),
	}); err != nil {
		g.logger.Warn("failed to send connection greeting",
			zap.String("user_id", claims.UserID), zap.Error(err))
		g.closeWith(conn, closeCodeConnectionFailed, "Connection failed")
		return
	}

	g.readLoop(conn, claims.UserID)
}

func (g *Gateway) authenticate(c *gin.Context) (*models.JWTClaims, error) {
	token := c.Query("token")
	if token == "" {
		header := c.GetHeader("Authorization")
		if strings.HasPrefix(strings.ToLower(header), "bearer ") {
			token = header[len("bearer "):]
		}
	}
	if token == "" {
		return nil, errMissingToken
	}
	return g.auth.ValidateToken(token)
}

func (g *Gateway) readLoop(conn *websocket.Conn, userID string) {
	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				g.logger.Debug("websocket closed by client", zap.String("user_id", userID))
			} else {
				g.logger.Warn("websocket read error", zap.String("user_id", userID), zap.Error(err))
			}
			return
		}

		var msg struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal(raw, &msg); err != nil {
			g.logger.Warn("invalid websocket message", zap.String("user_id", userID))
			continue
		}

		switch msg.Type {
		case "ping":
			if err := conn.WriteJSON(Event{Type: "pong", Timestamp: time.Now().UTC()}); err != nil {
				g.logger.Warn("failed to answer ping", zap.String("user_id", userID), zap.Error(err))
				return
			}
		default:
			g.logger.Debug("unsupported websocket message type",
				zap.String("user_id", userID), zap.String("type", msg.Type))
		}
	}
}

func (g *Gateway) closeWith(conn *websocket.Conn, code int, reason string) {
	deadline := time.Now().Add(time.Second)
	_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, reason), deadline)
	_ = conn.Close()
}

type gatewayError string

func (e gatewayError) Error() string { return string(e) }

const errMissingToken = gatewayError("no authentication token provided")
