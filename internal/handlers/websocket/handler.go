package websocket

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	vss "github.com/xpanvictor/xarvis-voice/internal/domains/sys_manager/voice_stream_system"
	"github.com/xpanvictor/xarvis-voice/pkg/Logger"
)

const defaultReadLimit = 4 << 20

// WebSocketHandler serves the streaming voice protocol. Each connection owns
// exactly one stream session for its whole lifetime.
type WebSocketHandler struct {
	logger            *Logger.Logger
	vss               *vss.VSS
	connectionManager *ConnectionManager
	upgrader          websocket.Upgrader
	outboundQueue     int
	readLimit         int64
}

// NewWebSocketHandler creates a new WebSocket handler
func NewWebSocketHandler(v *vss.VSS, readLimit int64, logger *Logger.Logger) *WebSocketHandler {
	if readLimit <= 0 {
		readLimit = defaultReadLimit
	}
	return &WebSocketHandler{
		logger:            logger,
		vss:               v,
		connectionManager: NewConnectionManager(logger),
		outboundQueue:     v.Config().OutboundQueue,
		readLimit:         readLimit,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
		},
	}
}

// Connections exposes the live connection set, mainly for shutdown.
func (h *WebSocketHandler) Connections() *ConnectionManager {
	return h.connectionManager
}

// RegisterRoutes registers WebSocket routes. protected runs before the
// upgrade, so a rejected caller gets a plain HTTP error.
func (h *WebSocketHandler) RegisterRoutes(router gin.IRouter, protected ...gin.HandlerFunc) {
	chain := append(append([]gin.HandlerFunc{}, protected...), h.HandleVoiceWebSocket)

	ws := router.Group("/ws")
	{
		ws.GET("/voice", chain...)
		ws.GET("/stats", h.HandleStats)
	}
}

// HandleVoiceWebSocket upgrades the request and runs the session read loop
// until the client goes away.
func (h *WebSocketHandler) HandleVoiceWebSocket(c *gin.Context) {
	sessionID := c.Query("session_id")
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Errorf("WebSocket upgrade failed: %v", err)
		return
	}

	connection := newConnection(sessionID, c.GetString("userID"), conn, h.outboundQueue, h.logger)
	defer connection.Close()

	session, err := h.vss.Open(sessionID, vss.StreamSession, connection)
	if err != nil {
		h.logger.Warnf("session %s: open failed: %v", sessionID, err)
		connection.Emit(vss.Event{
			Type:      vss.EventError,
			SessionID: sessionID,
			Message:   err.Error(),
			Kind:      vss.KindConnection,
		})
		return
	}
	defer h.vss.End(sessionID)

	if !h.connectionManager.RegisterConnection(connection) {
		return
	}
	defer h.connectionManager.UnregisterConnection(sessionID)

	session.Connected()
	h.readLoop(connection, session)
}

func (h *WebSocketHandler) readLoop(connection *Connection, session *vss.ConversationSession) {
	conn := connection.conn
	conn.SetReadLimit(h.readLimit)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		messageType, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Warnf("session %s: connection lost: %v", session.ID(), err)
			} else {
				h.logger.Debugf("session %s: connection closed: %v", session.ID(), err)
			}
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))

		if messageType != websocket.TextMessage {
			session.ReportError(vss.ProtocolError("binary frames are not supported; send JSON text messages", nil))
			continue
		}

		var msg WSMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			session.ReportError(vss.ProtocolError("malformed message", err))
			continue
		}
		if !h.dispatch(session, msg) {
			return
		}
	}
}

// dispatch applies one inbound message. It reports false once the session is
// closed underneath the connection.
func (h *WebSocketHandler) dispatch(session *vss.ConversationSession, msg WSMessage) bool {
	var outcome vss.Outcome
	switch msg.Type {
	case MessageTypeAudio:
		var err error
		outcome, err = session.ReceiveAudio(msg.AudioBase64, msg.Format)
		if err != nil && !errors.Is(err, vss.ErrSessionClosed) {
			h.logger.Debugf("session %s: audio %s: %v", session.ID(), outcome, err)
		}
	case MessageTypeEndTurn:
		outcome = session.EndTurn()
	case MessageTypeInterrupt:
		outcome = session.Interrupt()
	case MessageTypeBotSpeechComplete:
		outcome = session.BotSpeechComplete()
	case MessageTypeStatus:
		if session.Closed() {
			return false
		}
		session.RequestStatus()
	default:
		session.ReportError(vss.ProtocolError(fmt.Sprintf("unknown message type %q", msg.Type), nil))
	}
	return outcome != vss.OutcomeClosed
}

// HandleStats returns connection statistics
func (h *WebSocketHandler) HandleStats(c *gin.Context) {
	c.JSON(http.StatusOK, h.connectionManager.GetStats())
}
