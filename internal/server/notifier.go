package server

import (
	"context"
	"encoding/base64"
	"time"

	"github.com/spigell/ai-interviewer/internal/tts"
	"go.uber.org/zap"
)

const notifyTimeout = 30 * time.Second

type pushMessage struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

// Notifier delivers bot utterances to a bound push channel as synthesized
// audio, degrading to plain text when synthesis fails. It runs after the
// engine has committed its state transition and never fails the caller.
type Notifier struct {
	hub    *Hub
	synth  tts.Synthesizer
	logger *zap.Logger
}

func NewNotifier(hub *Hub, synth tts.Synthesizer, logger *zap.Logger) *Notifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Notifier{hub: hub, synth: synth, logger: logger}
}

// Notify pushes the utterance to the session's channel, if any is bound.
func (n *Notifier) Notify(ctx context.Context, sessionID, text string) {
	if n.hub.Conn(sessionID) == nil {
		// No channel bound is not an error; delivery is simply skipped.
		return
	}

	ctx, cancel := context.WithTimeout(ctx, notifyTimeout)
	defer cancel()

	if n.synth != nil {
		audio, err := n.synth.Synthesize(ctx, text)
		if err == nil {
			if n.hub.Send(ctx, sessionID, pushMessage{
				Type: "audio",
				Data: base64.StdEncoding.EncodeToString(audio),
			}) {
				return
			}
		} else {
			n.logger.Warn("audio synthesis failed, falling back to text",
				zap.String("session_id", sessionID),
				zap.Error(err),
			)
		}
	}

	n.hub.Send(ctx, sessionID, pushMessage{Type: "message", Data: text})
}

// NotifyAsync runs Notify in the background, detached from the request.
func (n *Notifier) NotifyAsync(sessionID, text string) {
	go n.Notify(context.Background(), sessionID, text)
}
