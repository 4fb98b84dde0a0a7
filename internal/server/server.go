package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/spigell/ai-interviewer/internal/middleware"
	"go.uber.org/zap"
)

// Options configures the gateway router.
type Options struct {
	AllowedOrigins []string
}

// NewRouter wires the gateway routes. The websocket route is exempt from the
// request timeout since connections are long-lived.
func NewRouter(handler *Handler, hub *Hub, notifier *Notifier, logger *zap.Logger, opts Options) http.Handler {
	if len(opts.AllowedOrigins) == 0 {
		opts.AllowedOrigins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(requestLogger(logger))
	r.Use(middleware.CORS(opts.AllowedOrigins))

	r.Group(func(r chi.Router) {
		r.Use(chimiddleware.Timeout(2 * time.Minute))

		r.Get("/", handler.Welcome)
		r.Get("/status", handler.Status)
		r.Post("/start-interview", handler.StartInterview)
		r.Post("/send-message", handler.SendMessage)
		r.Get("/interview/{sessionID}", handler.GetSession)
		r.Get("/get-message", handler.PopMessage)
	})

	r.Get("/ws/{clientID}", handler.ServeWS(hub, notifier))

	return r
}

func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			logger.Debug("http request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("duration", time.Since(start)),
			)
		})
	}
}
