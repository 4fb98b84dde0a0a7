// Package server exposes the interview engine over HTTP and a websocket push
// channel.
package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/spigell/ai-interviewer/internal/interview"
	"go.uber.org/zap"
)

// Handler realizes the gateway operations on top of the engine.
type Handler struct {
	engine   *interview.Engine
	notifier *Notifier
	logger   *zap.Logger
}

func NewHandler(engine *interview.Engine, notifier *Notifier, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{engine: engine, notifier: notifier, logger: logger}
}

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"error": "failed to encode response"}`, http.StatusInternalServerError)
	}
}

// Error writes a JSON error response.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}

type startInterviewRequest struct {
	Position      string                `json:"position"`
	CandidateName string                `json:"candidate_name"`
	CustomStages  []interview.StageSpec `json:"custom_stages,omitempty"`
}

type messageRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

func (h *Handler) StartInterview(w http.ResponseWriter, r *http.Request) {
	var req startInterviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.engine.StartInterview(r.Context(), req.Position, req.CandidateName, req.CustomStages)
	if err != nil {
		h.writeEngineError(w, err)
		return
	}

	if h.notifier != nil {
		h.notifier.NotifyAsync(result.SessionID, result.Message)
	}

	JSON(w, http.StatusOK, result)
}

func (h *Handler) SendMessage(w http.ResponseWriter, r *http.Request) {
	var req messageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.engine.SendMessage(r.Context(), req.SessionID, req.Message)
	if err != nil {
		h.writeEngineError(w, err)
		return
	}

	if h.notifier != nil {
		h.notifier.NotifyAsync(result.SessionID, result.Message)
	}

	JSON(w, http.StatusOK, result)
}

func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	session, err := h.engine.GetSession(chi.URLParam(r, "sessionID"))
	if err != nil {
		h.writeEngineError(w, err)
		return
	}
	JSON(w, http.StatusOK, session)
}

func (h *Handler) PopMessage(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session_id")

	msg, err := h.engine.PopNextMessage(sessionID)
	if err != nil {
		h.writeEngineError(w, err)
		return
	}
	// msg is nil when the transcript is drained; serialized as JSON null.
	JSON(w, http.StatusOK, msg)
}

func (h *Handler) Status(w http.ResponseWriter, _ *http.Request) {
	JSON(w, http.StatusOK, map[string]string{"status": "online"})
}

func (h *Handler) Welcome(w http.ResponseWriter, _ *http.Request) {
	JSON(w, http.StatusOK, map[string]string{"message": "Welcome to the Interview Simulator API"})
}

func (h *Handler) writeEngineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, interview.ErrValidation):
		Error(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, interview.ErrSessionNotFound):
		Error(w, http.StatusNotFound, "interview session not found")
	default:
		h.logger.Error("engine operation failed", zap.Error(err))
		Error(w, http.StatusBadGateway, "generation failed")
	}
}
