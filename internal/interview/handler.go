package interview

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/casely/casely/internal/cases"
	"github.com/casely/casely/internal/sessions"
)

const pauseTimeout = 5 * time.Second

// Handler is the connection gateway. It accepts an interview WebSocket,
// resolves the session and its case, and hands the connection to the engine,
// guaranteeing the disconnect transition and resource release on every exit
// path.
type Handler struct {
	sessions        sessions.SessionManager
	cases           cases.CaseStore
	engine          *Engine
	logger          *zap.Logger
	upgrader        websocket.Upgrader
	maxMessageBytes int64
	writeTimeout    time.Duration
}

// NewHandler creates a new interview connection handler
func NewHandler(sessionManager sessions.SessionManager, caseStore cases.CaseStore, engine *Engine, logger *zap.Logger, maxMessageBytes int64, writeTimeout time.Duration) *Handler {
	return &Handler{
		sessions: sessionManager,
		cases:    caseStore,
		engine:   engine,
		logger:   logger,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		maxMessageBytes: maxMessageBytes,
		writeTimeout:    writeTimeout,
	}
}

// Handle is the gin handler for GET /ws/interview/:sessionId.
func (h *Handler) Handle(c *gin.Context) {
	rawID := c.Param("sessionId")

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("WebSocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	wc := newWSConn(conn, h.maxMessageBytes, h.writeTimeout)
	ctx := c.Request.Context()

	sessionID, err := uuid.Parse(rawID)
	if err != nil {
		h.logger.Warn("Invalid session ID format", zap.String("session_id", rawID))
		h.reject(conn, wc, "Invalid session ID format")
		return
	}

	session, err := h.sessions.GetSession(ctx, sessionID)
	if err != nil {
		if sessions.IsNotFound(err) {
			h.logger.Warn("Session not found", zap.String("session_id", rawID))
			h.reject(conn, wc, "Session not found")
		} else {
			h.logger.Error("Failed to load session", zap.String("session_id", rawID), zap.Error(err))
			h.reject(conn, wc, "Failed to load session")
		}
		return
	}

	kase, err := h.cases.GetCase(ctx, session.CaseID)
	if err != nil {
		if cases.IsNotFound(err) {
			h.logger.Warn("Case not found for session",
				zap.String("session_id", rawID),
				zap.String("case_id", session.CaseID.String()))
			h.reject(conn, wc, "Case not found")
		} else {
			h.logger.Error("Failed to load case", zap.String("session_id", rawID), zap.Error(err))
			h.reject(conn, wc, "Failed to load case")
		}
		return
	}

	if err := h.runEngine(ctx, wc, session, kase); err != nil {
		// Transport failure: abrupt disconnect. An active session moves to
		// paused even though the client cannot acknowledge it.
		h.logger.Info("Client disconnected",
			zap.String("session_id", session.ID.String()),
			zap.Error(err))

		// The request context died with the connection.
		pauseCtx, cancel := context.WithTimeout(context.Background(), pauseTimeout)
		defer cancel()
		if err := h.sessions.PauseIfActive(pauseCtx, session.ID); err != nil {
			h.logger.Error("Failed to pause session on disconnect",
				zap.String("session_id", session.ID.String()),
				zap.Error(err))
		}
	}
}

// runEngine shields the gateway from anything the engine loop throws.
func (h *Handler) runEngine(ctx context.Context, wc Conn, session *sessions.Session, kase *cases.Case) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			h.logger.Error("Engine panic",
				zap.String("session_id", session.ID.String()),
				zap.Any("panic", rec))
			_ = wc.WriteEvent(ErrorEvent(fmt.Sprintf("internal error: %v", rec)))
			err = nil
		}
	}()
	return h.engine.Run(ctx, wc, session, kase)
}

// reject emits a typed error event and closes with a policy-violation code.
// No session state is mutated and no retry is invited.
func (h *Handler) reject(conn *websocket.Conn, wc Conn, message string) {
	_ = wc.WriteEvent(ErrorEvent(message))
	_ = conn.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.ClosePolicyViolation, message),
		time.Now().Add(h.writeTimeout),
	)
}
