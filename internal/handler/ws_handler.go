package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/prepwise/prepwise-backend/internal/exam"
	"github.com/prepwise/prepwise-backend/internal/middleware"
	"github.com/prepwise/prepwise-backend/internal/service"
	ws "github.com/prepwise/prepwise-backend/internal/websocket"
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// An empty allow-list permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// WSHandler streams a live exam session: countdown ticks out, taker
// actions in, all on one connection.
type WSHandler struct {
	sessionService *service.SessionService
	log            zerolog.Logger
	upgrader       websocket.Upgrader
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(sessionService *service.SessionService, log zerolog.Logger, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		sessionService: sessionService,
		log:            log.With().Str("component", "ws_handler").Logger(),
		upgrader:       buildUpgrader(allowedOrigins),
	}
}

// ExamStream godoc
// WS /ws/v1/exams/stream
// Upgrades to WebSocket. Pushes a tick every second and answers taker
// actions in-line. All writes happen on this goroutine; the reader
// goroutine only feeds the message channel.
func (h *WSHandler) ExamStream(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	session, err := h.sessionService.Get(claims.UserID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no active exam session"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	wsLog := h.log.With().Int("user_id", claims.UserID).Logger()
	wsLog.Info().Msg("Taker connected")

	msgs := make(chan ws.RequestPayload)
	done := make(chan struct{})

	go func() {
		defer close(done)
		for {
			var msg ws.RequestPayload
			if err := ws.ReadJSON(conn, &msg); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					wsLog.Warn().Err(err).Msg("Unexpected close")
				} else {
					wsLog.Debug().Msg("Connection closed")
				}
				return
			}
			select {
			case msgs <- msg:
			case <-done:
				return
			}
		}
	}()

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	graded := session.Submitted()

	for {
		select {
		case <-done:
			return

		case <-ticker.C:
			st := session.Snapshot()
			if err := ws.WriteTyped(conn, ws.TickResponse{
				Event:     ws.EventTick,
				Remaining: st.TimeRemaining,
				Clock:     st.Clock,
				Submitted: st.Submitted,
			}); err != nil {
				return
			}
			// The countdown hitting zero grades the attempt without a
			// client action; push the result as soon as it appears.
			if st.Submitted && !graded {
				graded = true
				if result, ok := session.Result(); ok {
					if err := ws.WriteTyped(conn, ws.GradedResponse{Event: ws.EventGraded, Result: result}); err != nil {
						return
					}
				}
			}

		case msg := <-msgs:
			if err := h.handleAction(conn, session, &msg, &graded); err != nil {
				return
			}
		}
	}
}

// handleAction applies one taker action and writes its reply. A non-nil
// error means the connection is unusable.
func (h *WSHandler) handleAction(conn *websocket.Conn, session *exam.Session, msg *ws.RequestPayload, graded *bool) error {
	switch msg.Action {
	case ws.ActionAnswer:
		if err := session.RecordAnswer(msg.QID, msg.Option); err != nil {
			return ws.WriteError(conn, err.Error())
		}
		return ws.WriteTyped(conn, ws.SavedResponse{
			Event:  ws.EventSaved,
			QID:    msg.QID,
			Option: msg.Option,
		})

	case ws.ActionFlag:
		if err := session.ToggleFlag(msg.QID); err != nil {
			return ws.WriteError(conn, err.Error())
		}
		return ws.WriteTyped(conn, ws.FlaggedResponse{
			Event:   ws.EventFlagged,
			QID:     msg.QID,
			Flagged: session.Flagged(msg.QID),
		})

	case ws.ActionGoto:
		if msg.Index == nil {
			return ws.WriteError(conn, "index is required")
		}
		session.GoTo(*msg.Index)
		return h.writeMoved(conn, session)

	case ws.ActionSubject:
		session.SelectSubject(msg.SubjectID)
		return h.writeMoved(conn, session)

	case ws.ActionSubmit:
		result := session.Submit()
		*graded = true
		return ws.WriteTyped(conn, ws.GradedResponse{Event: ws.EventGraded, Result: result})

	case ws.ActionPing:
		return ws.WriteTyped(conn, ws.PongResponse{Event: ws.EventPong})

	default:
		return ws.WriteError(conn, "unknown action: "+string(msg.Action))
	}
}

func (h *WSHandler) writeMoved(conn *websocket.Conn, session *exam.Session) error {
	active := session.ActiveSubject()
	return ws.WriteTyped(conn, ws.MovedResponse{
		Event:         ws.EventMoved,
		ActiveSubject: active,
		Index:         session.Cursor(active),
	})
}
