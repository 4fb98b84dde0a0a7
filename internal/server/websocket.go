package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/coder/websocket"
	"github.com/go-chi/chi/v5"
	"github.com/spigell/ai-interviewer/internal/interview"
	"github.com/spigell/ai-interviewer/internal/logger"
	"go.uber.org/zap"
)

// inboundMessage is what a connected client sends over the push channel.
// Clients bind with the session id as their client id, so inbound messages
// drive the same engine operations as the HTTP endpoints.
type inboundMessage struct {
	Type string `json:"type"`
	Data struct {
		SessionID string `json:"session_id"`
		Message   string `json:"message"`
	} `json:"data"`
}

// ServeWS upgrades the connection, binds it to the client id and serves the
// message loop until the client disconnects.
func (h *Handler) ServeWS(hub *Hub, notifier *Notifier) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		clientID := chi.URLParam(r, "clientID")

		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			OriginPatterns: []string{"*"},
		})
		if err != nil {
			h.logger.Error("websocket accept failed", zap.String("client_id", clientID), zap.Error(err))
			return
		}
		defer func() {
			if closeErr := conn.Close(websocket.StatusNormalClosure, "session ended"); closeErr != nil {
				h.logger.Debug("websocket close", zap.String("client_id", clientID), zap.Error(closeErr))
			}
		}()

		hub.Bind(clientID, conn)
		defer hub.Unbind(clientID, conn)

		h.logger.Info("websocket client connected", zap.String("client_id", clientID))

		ctx := r.Context()
		if !hub.Send(ctx, clientID, pushMessage{Type: "connection_ack"}) {
			return
		}

		for {
			_, data, err := conn.Read(ctx)
			if err != nil {
				status := websocket.CloseStatus(err)
				if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway || errors.Is(err, context.Canceled) {
					h.logger.Info("websocket client disconnected", zap.String("client_id", clientID))
				} else {
					h.logger.Debug("websocket read failed", zap.String("client_id", clientID), zap.Error(err))
				}
				return
			}

			var inbound inboundMessage
			if err := json.Unmarshal(data, &inbound); err != nil || inbound.Type != "message" {
				h.logger.Debug("ignoring malformed inbound message", zap.String("client_id", clientID))
				continue
			}

			h.handleInbound(ctx, hub, notifier, clientID, inbound)
		}
	}
}

func (h *Handler) handleInbound(ctx context.Context, hub *Hub, notifier *Notifier, clientID string, inbound inboundMessage) {
	sessionID := inbound.Data.SessionID
	if sessionID == "" || inbound.Data.Message == "" {
		hub.Send(ctx, clientID, pushMessage{Type: "message", Data: "invalid message format"})
		return
	}

	result, err := h.engine.SendMessage(ctx, sessionID, inbound.Data.Message)
	if err != nil {
		if errors.Is(err, interview.ErrSessionNotFound) {
			hub.Send(ctx, clientID, pushMessage{Type: "message", Data: "interview session not found"})
			return
		}
		logger.WithSession(h.logger, sessionID).Error("websocket message processing failed", zap.Error(err))
		hub.Send(ctx, clientID, pushMessage{Type: "message", Data: "something went wrong, please try again"})
		return
	}

	notifier.Notify(ctx, clientID, result.Message)
}
