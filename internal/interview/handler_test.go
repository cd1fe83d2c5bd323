package interview

import (
	"context"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/casely/casely/internal/cases"
	"github.com/casely/casely/internal/responder"
	"github.com/casely/casely/internal/sessions"
	"github.com/casely/casely/internal/transcript"
)

type gatewayFixture struct {
	server   *httptest.Server
	sessions *sessions.SessionService
	cases    *cases.InMemoryStore
	turns    *transcript.InMemoryStore
}

func newGatewayFixture(t *testing.T) *gatewayFixture {
	t.Helper()

	sessionSvc := sessions.NewSessionService(sessions.NewInMemoryStore())
	caseStore := cases.NewInMemoryStore()
	turns := transcript.NewInMemoryStore()
	logger := zap.NewNop()

	engine := NewEngine(sessionSvc, turns, responder.NewPlaceholder(), logger)
	handler := NewHandler(sessionSvc, caseStore, engine, logger, 65536, 5*time.Second)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/ws/interview/:sessionId", handler.Handle)

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	return &gatewayFixture{
		server:   server,
		sessions: sessionSvc,
		cases:    caseStore,
		turns:    turns,
	}
}

func (f *gatewayFixture) dial(t *testing.T, sessionID string) *websocket.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(f.server.URL, "http") + "/ws/interview/" + sessionID
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func (f *gatewayFixture) newSession(t *testing.T, problemStatement string) *sessions.Session {
	t.Helper()

	kase := &cases.Case{
		ID:        uuid.New(),
		Title:     "Declining profits",
		Content:   map[string]any{"problem_statement": problemStatement},
		CreatedAt: time.Now(),
	}
	require.NoError(t, f.cases.CreateCase(context.Background(), kase))

	session, err := f.sessions.CreateSession(context.Background(), &sessions.CreateSessionRequest{
		UserID: uuid.New(),
		CaseID: kase.ID,
	})
	require.NoError(t, err)
	return session
}

func readEvent(t *testing.T, conn *websocket.Conn) *OutboundEvent {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var ev OutboundEvent
	require.NoError(t, conn.ReadJSON(&ev))
	return &ev
}

func TestGatewayRejectsMalformedSessionID(t *testing.T) {
	f := newGatewayFixture(t)

	conn := f.dial(t, "not-a-uuid")

	ev := readEvent(t, conn)
	assert.Equal(t, EventError, ev.Type)
	assert.Equal(t, "Invalid session ID format", ev.Error)

	_, _, err := conn.ReadMessage()
	var closeErr *websocket.CloseError
	require.True(t, errors.As(err, &closeErr))
	assert.Equal(t, websocket.ClosePolicyViolation, closeErr.Code)
}

func TestGatewayRejectsUnknownSession(t *testing.T) {
	f := newGatewayFixture(t)

	conn := f.dial(t, uuid.New().String())

	ev := readEvent(t, conn)
	assert.Equal(t, EventError, ev.Type)
	assert.Equal(t, "Session not found", ev.Error)
}

func TestGatewayRejectsMissingCase(t *testing.T) {
	f := newGatewayFixture(t)

	// Session pointing at a case that does not exist.
	session, err := f.sessions.CreateSession(context.Background(), &sessions.CreateSessionRequest{
		UserID: uuid.New(),
		CaseID: uuid.New(),
	})
	require.NoError(t, err)

	conn := f.dial(t, session.ID.String())

	ev := readEvent(t, conn)
	assert.Equal(t, EventError, ev.Type)
	assert.Equal(t, "Case not found", ev.Error)
}

func TestGatewayFullInterview(t *testing.T) {
	f := newGatewayFixture(t)
	session := f.newSession(t, "Your client's profits dropped 20%.")

	conn := f.dial(t, session.ID.String())

	greeting := readEvent(t, conn)
	assert.Equal(t, EventAgentMessage, greeting.Type)
	assert.Contains(t, greeting.Text, "Your client's profits dropped 20%.")

	require.NoError(t, conn.WriteJSON(&InboundEvent{Type: EventUserMessage, Text: "Can I ask a clarifying question?"}))

	reply := readEvent(t, conn)
	assert.Equal(t, EventAgentMessage, reply.Type)
	assert.NotEmpty(t, reply.Text)

	require.NoError(t, conn.WriteJSON(&InboundEvent{Type: EventEndSession}))

	ended := readEvent(t, conn)
	assert.Equal(t, EventSessionEnded, ended.Type)

	loaded, err := f.sessions.GetSession(context.Background(), session.ID)
	require.NoError(t, err)
	assert.Equal(t, sessions.StatusEnded, loaded.Status)
	assert.NotNil(t, loaded.EndedAt)

	count, err := f.turns.CountTurns(context.Background(), session.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestGatewayResume(t *testing.T) {
	f := newGatewayFixture(t)
	session := f.newSession(t, "P")

	_, _, err := f.turns.AppendExchange(context.Background(), session.ID, "old q", "old a")
	require.NoError(t, err)

	conn := f.dial(t, session.ID.String())

	greeting := readEvent(t, conn)
	assert.Equal(t, EventAgentMessage, greeting.Type)
	assert.Equal(t, "Welcome back! Let's continue where we left off.", greeting.Text)
}

func TestGatewayPausesActiveSessionOnAbruptDisconnect(t *testing.T) {
	f := newGatewayFixture(t)
	session := f.newSession(t, "P")

	conn := f.dial(t, session.ID.String())
	_ = readEvent(t, conn)

	require.NoError(t, conn.Close())

	require.Eventually(t, func() bool {
		loaded, err := f.sessions.GetSession(context.Background(), session.ID)
		return err == nil && loaded.Status == sessions.StatusPaused
	}, 2*time.Second, 10*time.Millisecond)

	loaded, err := f.sessions.GetSession(context.Background(), session.ID)
	require.NoError(t, err)
	assert.Nil(t, loaded.EndedAt)
}

func TestGatewayDisconnectLeavesEndedSessionAlone(t *testing.T) {
	f := newGatewayFixture(t)
	session := f.newSession(t, "P")

	ended, err := f.sessions.EndSession(context.Background(), session.ID)
	require.NoError(t, err)

	conn := f.dial(t, session.ID.String())
	_ = readEvent(t, conn)
	require.NoError(t, conn.Close())

	// Give the disconnect path time to run, then confirm nothing moved.
	time.Sleep(200 * time.Millisecond)

	loaded, err := f.sessions.GetSession(context.Background(), session.ID)
	require.NoError(t, err)
	assert.Equal(t, sessions.StatusEnded, loaded.Status)
	require.NotNil(t, loaded.EndedAt)
	assert.Equal(t, ended.EndedAt.Unix(), loaded.EndedAt.Unix())
}

func TestGatewayClosesOnMalformedFrame(t *testing.T) {
	f := newGatewayFixture(t)
	session := f.newSession(t, "P")

	conn := f.dial(t, session.ID.String())
	_ = readEvent(t, conn)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("{not json")))

	ev := readEvent(t, conn)
	assert.Equal(t, EventError, ev.Type)
	assert.Equal(t, "Invalid message format", ev.Error)
}
