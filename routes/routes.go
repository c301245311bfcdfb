package routes

import (
	"net/http"
	"time"

	_ "github.com/Dosada05/esports-arena/docs"
	"github.com/Dosada05/esports-arena/handlers"
	"github.com/Dosada05/esports-arena/middleware"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"
)

type Options struct {
	JWTSecret      string
	AllowedOrigins []string
}

type Handlers struct {
	Health    *handlers.HealthHandler
	WebSocket *handlers.WebSocketHandler
	Chat      *handlers.ChatHandler
	Relay     *handlers.RelayHandler
	ICE       *handlers.ICEHandler
	Stats     *handlers.StatsHandler
	Dashboard *handlers.DashboardHandler
}

func SetupRoutes(router chi.Router, opts Options, h Handlers) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"Retry-After"},
		AllowCredentials: !allowsAnyOrigin(opts.AllowedOrigins),
		MaxAge:           300,
	}))

	authenticate := middleware.Authenticate(opts.JWTSecret)
	adminOnly := middleware.RequireRole(middleware.RoleAdmin)

	router.Get("/healthz", h.Health.Healthz)
	router.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	// Сокет без таймаута: время жизни соединения управляется пинг-понгом.
	router.With(authenticate).Get("/ws", h.WebSocket.ServeWs)

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(chiMiddleware.Timeout(30 * time.Second))
		r.Use(authenticate)

		r.Route("/rooms/{room}", func(r chi.Router) {
			r.Get("/messages", h.Chat.History)
			r.Post("/messages", h.Chat.PostMessage)
			r.Get("/members", h.Relay.Members)

			r.Group(func(r chi.Router) {
				r.Use(adminOnly)
				r.Delete("/messages/{id}", h.Chat.DeleteMessage)
				r.Post("/archive", h.Chat.Archive)
			})
		})

		r.Get("/streams", h.Relay.LiveStreams)
		r.Get("/webrtc/ice-servers", h.ICE.ICEServers)
		r.Get("/stats/valorant/{region}/{name}/{tag}", h.Stats.ValorantPlayer)

		r.With(adminOnly).Get("/admin/dashboard", h.Dashboard.Stats)
	})

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":"the requested resource could not be found"}` + "\n"))
	})
}

// Браузеры отвергают credentials вместе с Access-Control-Allow-Origin: *.
func allowsAnyOrigin(origins []string) bool {
	for _, o := range origins {
		if o == "*" {
			return true
		}
	}
	return false
}
