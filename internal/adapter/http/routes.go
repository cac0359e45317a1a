package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	cfotel "github.com/Strob0t/lukthan/internal/adapter/otel"
	"github.com/Strob0t/lukthan/internal/config"
)

// NewRouter mounts the mirror API and, when ws is non-nil, the live event
// socket at /ws.
func NewRouter(h *Handlers, ws http.HandlerFunc, cfg config.Mirror, serviceName string, log *slog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(Logger(log))
	r.Use(CORS(cfg.CORSOrigin))
	r.Use(SecurityHeaders)
	r.Use(cfotel.HTTPMiddleware(serviceName))

	r.Get("/health", h.Health)
	if ws != nil {
		r.Get("/ws", ws)
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/conversation", h.GetConversation)
		r.Get("/settings", h.GetSettings)
		r.With(NewRateLimiter(cfg.WriteRate, cfg.WriteBurst).Handler).Patch("/settings", h.PatchSettings)
		r.Get("/history", h.ListHistory)
		r.Get("/history/{id}", h.GetHistorySession)
	})
	return r
}
