package http

import (
	"encoding/json"
	"net/http"
	"time"

	"careerpath-service/internal/app"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

const wsWriteTimeout = 10 * time.Second

// WSHandler streams committed team events to websocket clients.
type WSHandler struct {
	service  *app.TeamService
	upgrader websocket.Upgrader
	log      zerolog.Logger
}

// NewWSHandler accepts upgrades from the given origins; an empty list allows any origin.
func NewWSHandler(service *app.TeamService, allowedOrigins []string, log zerolog.Logger) *WSHandler {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = true
	}
	return &WSHandler{
		service: service,
		log:     log.With().Str("component", "ws").Logger(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return len(allowed) == 0 || origin == "" || allowed[origin]
			},
		},
	}
}

type inboundMessage struct {
	Type string `json:"type"`
}

type outboundMessage struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// ServeTeamEvents upgrades the request and forwards events of one team until
// the client disconnects. Clients may send {"type":"ping"}.
func (h *WSHandler) ServeTeamEvents(c *gin.Context) {
	teamID := c.Param("id")
	ctx := c.Request.Context()

	team, err := h.service.GetTeam(ctx, teamID)
	if err != nil {
		failErr(c, h.log, err)
		return
	}
	events, cancel, err := h.service.Subscribe(ctx, teamID)
	if err != nil {
		failErr(c, h.log, err)
		return
	}
	defer cancel()

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn().Err(err).Str("team_id", teamID).Msg("ws upgrade failed")
		return
	}
	defer conn.Close()

	send := make(chan outboundMessage, 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	eventsDone := make(chan struct{})

	// Only this goroutine writes to conn.
	go func() {
		defer close(writerDone)
		for msg := range send {
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := conn.WriteJSON(msg); err != nil {
				h.log.Debug().Err(err).Str("team_id", teamID).Msg("ws write failed")
				return
			}
		}
	}()

	go func() {
		defer close(eventsDone)
		for {
			select {
			case event, ok := <-events:
				if !ok {
					return
				}
				select {
				case send <- outboundMessage{Type: string(event.Type), Payload: event}:
				case <-closeSignals:
					return
				}
			case <-closeSignals:
				return
			}
		}
	}()

	send <- outboundMessage{Type: "snapshot", Payload: team}

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			break
		}
		var inbound inboundMessage
		if err := json.Unmarshal(raw, &inbound); err != nil {
			h.trySend(send, outboundMessage{Type: "error", Payload: errorPayload{Message: "invalid message"}})
			continue
		}
		switch inbound.Type {
		case "ping":
			h.trySend(send, outboundMessage{Type: "pong", Payload: gin.H{"teamId": teamID, "at": time.Now().UTC()}})
		default:
			h.trySend(send, outboundMessage{Type: "error", Payload: errorPayload{Message: "unsupported message type"}})
		}
	}

	close(closeSignals)
	<-eventsDone
	close(send)
	<-writerDone
}

// trySend drops the reply rather than block the reader when the writer is stuck.
func (h *WSHandler) trySend(send chan<- outboundMessage, msg outboundMessage) {
	select {
	case send <- msg:
	default:
	}
}
