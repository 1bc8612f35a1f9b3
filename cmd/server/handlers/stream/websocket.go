// Package stream exposes the store event hubs over a WebSocket. A single
// connection receives both note and folder events as JSON frames.
package stream

import (
	"context"
	"time"

	"github.com/Abdulla090/knote/cmd/server/handlers/httperr"
	"github.com/Abdulla090/knote/internal/logger"
	"github.com/Abdulla090/knote/internal/services/folders"
	"github.com/Abdulla090/knote/internal/services/notes"
	"github.com/Abdulla090/knote/internal/services/stream"
	"github.com/Abdulla090/knote/internal/utils/identifier"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

const (
	// WSClosePolicyViolation represents WebSocket close code for policy violation
	WSClosePolicyViolation = 1008

	// WebSocket timeout constants
	wsWriteTimeout     = 10 * time.Second // Timeout for writing messages to WebSocket
	wsPingInterval     = 25 * time.Second // Interval for sending ping messages
	wsPingWriteTimeout = 5 * time.Second  // Timeout for writing ping messages

	parentCtxKey = "parentCtx"

	msgFailedToCloseWebSocketConnection = "failed to close WebSocket connection"
)

// WebSocketHandlers contains WebSocket-related handlers
type WebSocketHandlers struct {
	noteHub       *stream.Hub[notes.NoteEvent]
	folderHub     *stream.Hub[folders.FolderEvent]
	maxSessionSec int
}

// NewWebSocketHandlers creates new WebSocket handlers
func NewWebSocketHandlers(noteHub *stream.Hub[notes.NoteEvent], folderHub *stream.Hub[folders.FolderEvent], maxSessionSec int) *WebSocketHandlers {
	return &WebSocketHandlers{
		noteHub:       noteHub,
		folderHub:     folderHub,
		maxSessionSec: maxSessionSec,
	}
}

// WSUpgrade upgrades an HTTP connection to a WebSocket for event streaming
func (h *WebSocketHandlers) WSUpgrade(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		// Use Fiber's request-bound context so WSStream gets a *real* context.Context.
		c.Locals(parentCtxKey, c.UserContext())
		return c.Next()
	}

	logger.L().Warn("websocket upgrade required", "handler", "WSUpgrade", "path", c.Path())
	return httperr.Fail(httperr.E{
		Status:  400,
		Message: "WebSocket upgrade required",
	})
}

// WSStream forwards note and folder events to the client until the session
// deadline, a hub unsubscribe, or the client going away.
func (h *WebSocketHandlers) WSStream(c *websocket.Conn) {
	parentCtx, ok := c.Locals(parentCtxKey).(context.Context)
	if !ok {
		logger.L().Error(parentCtxKey + " not found in WebSocket context")
		h.closeConnection(c)
		return
	}

	connULID := identifier.NewULID()
	connID := connULID.String()

	ctx, cancelCtx := context.WithCancel(parentCtx)
	defer cancelCtx()

	noteSub, cancelNotes := h.noteHub.Subscribe(connULID)
	defer cancelNotes()
	folderSub, cancelFolders := h.folderHub.Subscribe(connULID)
	defer cancelFolders()

	logger.L().Info("WebSocket connection established", "conn_id", connID)

	sessionTimer := h.startSessionTimer(c, connID, cancelCtx)
	defer sessionTimer.Stop()

	ping := h.startKeepAlive(c, connID)
	defer ping.Stop()

	go h.forwardEvents(ctx, c, connID, noteSub, folderSub)

	h.handleIncomingMessages(c, connID)

	logger.L().Info("WebSocket connection closed", "conn_id", connID)
	cancelCtx()
}

// closeConnection safely closes the WebSocket connection
func (h *WebSocketHandlers) closeConnection(c *websocket.Conn) {
	if err := c.Close(); err != nil {
		logger.L().Error(msgFailedToCloseWebSocketConnection, "error", err)
	}
}

// startSessionTimer enforces the max session length.
func (h *WebSocketHandlers) startSessionTimer(c *websocket.Conn, connID string, cancelCtx context.CancelFunc) *time.Timer {
	return time.AfterFunc(time.Duration(h.maxSessionSec)*time.Second, func() {
		logger.L().Info("WebSocket session timeout", "conn_id", connID)
		if err := c.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(WSClosePolicyViolation, "session timeout")); err != nil {
			logger.L().Error("failed to send close message", "error", err, "conn_id", connID)
		}
		h.closeConnection(c)
		cancelCtx()
	})
}

// startKeepAlive starts the keep-alive ping mechanism
func (h *WebSocketHandlers) startKeepAlive(c *websocket.Conn, connID string) *time.Ticker {
	ping := time.NewTicker(wsPingInterval)
	go func() {
		for range ping.C {
			if h.sendPing(c, connID) != nil {
				return
			}
		}
	}()
	return ping
}

// sendPing sends a ping message to the client
func (h *WebSocketHandlers) sendPing(c *websocket.Conn, connID string) error {
	if err := c.SetWriteDeadline(time.Now().Add(wsPingWriteTimeout)); err != nil {
		logger.L().Error("failed to set write deadline", "error", err, "conn_id", connID)
		return err
	}
	if err := c.WriteMessage(websocket.PingMessage, nil); err != nil {
		logger.L().Warn("failed to write ping message", "error", err, "conn_id", connID)
		return err
	}
	return nil
}

// forwardEvents multiplexes both hub feeds onto the connection.
func (h *WebSocketHandlers) forwardEvents(ctx context.Context, c *websocket.Conn, connID string, noteSub *stream.Subscriber[notes.NoteEvent], folderSub *stream.Subscriber[folders.FolderEvent]) {
	defer func() {
		if r := recover(); r != nil {
			logger.L().Error("panic in WebSocket sender", "error", r, "conn_id", connID)
		}
	}()

	for {
		select {
		case event, ok := <-noteSub.Ch:
			if !ok {
				return
			}
			if h.writeEvent(c, connID, event) != nil {
				return
			}
		case event, ok := <-folderSub.Ch:
			if !ok {
				return
			}
			if h.writeEvent(c, connID, event) != nil {
				return
			}
		case <-noteSub.Done:
			return
		case <-folderSub.Done:
			return
		case <-ctx.Done():
			return
		}
	}
}

// writeEvent sends one event frame to the client
func (h *WebSocketHandlers) writeEvent(c *websocket.Conn, connID string, event any) error {
	if err := c.SetWriteDeadline(time.Now().Add(wsWriteTimeout)); err != nil {
		logger.L().Error("failed to set write deadline", "error", err, "conn_id", connID)
		return err
	}
	if err := c.WriteJSON(event); err != nil {
		logger.L().Error("failed to write WebSocket message", "error", err, "conn_id", connID)
		return err
	}
	return nil
}

// handleIncomingMessages drains client frames, answering pings, until the
// connection drops.
func (h *WebSocketHandlers) handleIncomingMessages(c *websocket.Conn, connID string) {
	for {
		messageType, _, err := c.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.L().Error("WebSocket error", "error", err, "conn_id", connID)
			}
			break
		}

		if messageType == websocket.PingMessage {
			if err := c.WriteMessage(websocket.PongMessage, nil); err != nil {
				logger.L().Error("failed to send pong", "error", err, "conn_id", connID)
				break
			}
		}
	}
}

// LogWSConnections logs every WebSocket upgrade attempt.
func LogWSConnections() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			logger.L().Info("WebSocket upgrade attempt", "ip", c.IP(), "path", c.Path())
		}
		return c.Next()
	}
}
