package interview

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/casely/casely/internal/cases"
	"github.com/casely/casely/internal/responder"
	"github.com/casely/casely/internal/sessions"
	"github.com/casely/casely/internal/transcript"
)

// State is the engine's position in the connection protocol.
type State int

const (
	// StateGreeting is the transient entry state before the first emission.
	StateGreeting State = iota
	// StateOpen is the steady state, receiving and sending events.
	StateOpen
	// StateClosed is terminal; no further events are processed.
	StateClosed
)

const sessionEndedMessage = "Interview ended successfully"

// Engine drives one interview conversation over one connection. Dependencies
// are injected at construction so tests can substitute the transcript store
// and the responder.
type Engine struct {
	sessions  sessions.SessionManager
	turns     transcript.Store
	responder responder.Responder
	logger    *zap.Logger
}

// NewEngine creates a new conversation engine
func NewEngine(sessionManager sessions.SessionManager, turns transcript.Store, r responder.Responder, logger *zap.Logger) *Engine {
	return &Engine{
		sessions:  sessionManager,
		turns:     turns,
		responder: r,
		logger:    logger,
	}
}

// run is the per-connection protocol state carried through each transition
// instead of living in ambient variables.
type run struct {
	conn    Conn
	session *sessions.Session
	kase    *cases.Case
	state   State
}

// Run owns the connection for its lifetime. It returns nil on a deliberate
// close (end_session or a protocol violation the engine reported itself) and
// the transport error on an abrupt disconnect. Events within the connection
// are processed strictly sequentially.
func (e *Engine) Run(ctx context.Context, conn Conn, session *sessions.Session, kase *cases.Case) error {
	r := &run{
		conn:    conn,
		session: session,
		kase:    kase,
		state:   StateGreeting,
	}

	if err := e.greet(ctx, r); err != nil {
		return err
	}

	for r.state == StateOpen {
		ev, err := r.conn.ReadEvent(ctx)
		if err != nil {
			if errors.Is(err, ErrMalformedEvent) {
				e.logger.Warn("Closing on malformed event",
					zap.String("session_id", r.session.ID.String()),
					zap.Error(err))
				_ = r.conn.WriteEvent(ErrorEvent("Invalid message format"))
				r.state = StateClosed
				return nil
			}
			// Abrupt disconnect while suspended in the read.
			return err
		}

		switch ev.Type {
		case EventUserMessage:
			if err := e.handleUserMessage(ctx, r, ev.Text); err != nil {
				return err
			}
		case EventEndSession:
			if err := e.handleEndSession(ctx, r); err != nil {
				return err
			}
		default:
			// Unrecognized events are dropped without a reply.
			e.logger.Debug("Ignoring unrecognized event",
				zap.String("session_id", r.session.ID.String()),
				zap.String("type", ev.Type))
		}
	}

	return nil
}

// greet inspects the transcript to decide new-vs-resume framing, emits the
// opening message and moves the run to the open state.
func (e *Engine) greet(ctx context.Context, r *run) error {
	count, err := e.turns.CountTurns(ctx, r.session.ID)
	if err != nil {
		_ = r.conn.WriteEvent(ErrorEvent("Failed to load conversation"))
		return fmt.Errorf("failed to count turns: %w", err)
	}

	var text string
	if count == 0 {
		text = fmt.Sprintf(
			"Hello! Let's begin your case interview.\n\n%s\n\nTake a moment to think, and when you're ready, let me know if you have any clarifying questions.",
			r.kase.ProblemStatement(),
		)
	} else {
		// Resume. Prior turns are not replayed; the client fetches them via
		// the session snapshot endpoint if it needs to.
		text = "Welcome back! Let's continue where we left off."
	}

	if err := r.conn.WriteEvent(AgentMessage(text)); err != nil {
		return err
	}

	e.logger.Info("Interview connection opened",
		zap.String("session_id", r.session.ID.String()),
		zap.Int("turn_count", count))

	r.state = StateOpen
	return nil
}

// handleUserMessage processes one exchange: respond, persist the pair
// atomically, stamp activity, then emit. A responder or storage failure emits
// a generic error event and leaves the connection open; the transcript is
// left exactly as it was.
func (e *Engine) handleUserMessage(ctx context.Context, r *run, text string) error {
	history, err := e.turns.ListTurns(ctx, r.session.ID)
	if err != nil {
		e.logger.Error("Failed to load turn history",
			zap.String("session_id", r.session.ID.String()),
			zap.Error(err))
		return r.conn.WriteEvent(ErrorEvent("Failed to load conversation history"))
	}

	conv := responder.Context{
		SessionID: r.session.ID,
		Case:      r.kase.Content,
		History:   history,
	}

	reply, err := e.respond(ctx, text, conv)
	if err != nil {
		e.logger.Error("Responder failed",
			zap.String("session_id", r.session.ID.String()),
			zap.Error(err))
		return r.conn.WriteEvent(ErrorEvent("Failed to generate a response"))
	}

	userIndex, assistantIndex, err := e.turns.AppendExchange(ctx, r.session.ID, text, reply)
	if err != nil {
		e.logger.Error("Failed to append exchange",
			zap.String("session_id", r.session.ID.String()),
			zap.Error(err))
		return r.conn.WriteEvent(ErrorEvent("Failed to save the exchange"))
	}

	if err := e.sessions.TouchActive(ctx, r.session.ID); err != nil {
		// The exchange is already durable; a failed activity stamp is not
		// worth failing the turn over.
		e.logger.Warn("Failed to update session activity",
			zap.String("session_id", r.session.ID.String()),
			zap.Error(err))
	} else {
		r.session.Status = sessions.StatusActive
	}

	e.logger.Info("Exchange recorded",
		zap.String("session_id", r.session.ID.String()),
		zap.Int("user_index", userIndex),
		zap.Int("assistant_index", assistantIndex))

	return r.conn.WriteEvent(AgentMessage(reply))
}

// respond invokes the responder, converting a panic into an error so a
// crashing implementation cannot take the connection down mid-exchange.
func (e *Engine) respond(ctx context.Context, text string, conv responder.Context) (reply string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("responder panicked: %v", rec)
		}
	}()
	return e.responder.Respond(ctx, text, conv)
}

// handleEndSession terminates the session and the loop. This is the only
// event that deliberately ends the loop.
func (e *Engine) handleEndSession(ctx context.Context, r *run) error {
	ended, err := e.sessions.EndSession(ctx, r.session.ID)
	if err != nil {
		var se *sessions.SessionError
		if errors.As(err, &se) && se.Type == sessions.SessionErrorTypeInvalidTransition {
			// Already ended on an earlier connection; confirm and close
			// rather than strand the client.
			e.logger.Warn("End requested for already ended session",
				zap.String("session_id", r.session.ID.String()))
		} else {
			e.logger.Error("Failed to end session",
				zap.String("session_id", r.session.ID.String()),
				zap.Error(err))
			return r.conn.WriteEvent(ErrorEvent("Failed to end the session"))
		}
	} else {
		r.session.Status = ended.Status
		r.session.EndedAt = ended.EndedAt
	}

	if err := r.conn.WriteEvent(SessionEnded(sessionEndedMessage)); err != nil {
		return err
	}

	e.logger.Info("Interview ended",
		zap.String("session_id", r.session.ID.String()))

	r.state = StateClosed
	return nil
}
