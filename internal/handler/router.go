/*
Package handler wires the HTTP surface: route registration, middleware stack,
and the transport endpoints (REST, WebSocket, SSE).
*/
package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"golang.org/x/time/rate"

	"webchat/internal/pkg/auth/jwt"
	"webchat/internal/pkg/limiter"
	"webchat/internal/pkg/logx"
)

// Router assembles the application routes with the shared middleware stack.
func Router(deps *AppDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logx.RequestLogger())
	r.Use(middleware.Recoverer)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   deps.Config.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	})
	r.Use(corsHandler.Handler)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	// One token per 5 seconds with a small burst keeps credential stuffing and
	// reconnect storms in check without bothering normal clients.
	authLimiter := limiter.NewIPRateLimiter(rate.Limit(0.2), 5)
	connLimiter := limiter.NewIPRateLimiter(rate.Limit(0.2), 5)

	r.Route("/api", func(api chi.Router) {
		api.Use(jwt.IdentityExtractorMiddleware(deps.Config.JWTSecret))

		api.Route("/auth", func(auth chi.Router) {
			auth.Use(authLimiter.Middleware)
			auth.Post("/register", HandleRegister(deps))
			auth.Post("/login", HandleLogin(deps))
		})

		api.Route("/chat", func(chatRoutes chi.Router) {
			chatRoutes.Get("/messages", HandleRecentMessages(deps))
			chatRoutes.Get("/roster", HandleRoster(deps))
			chatRoutes.Post("/send", HandleSendMessage(deps))
		})

		api.Route("/user", func(user chi.Router) {
			user.Post("/avatar/presign", HandlePresignAvatarUpload(deps))
			user.Put("/avatar", HandleConfirmAvatar(deps))
			user.Get("/avatar", HandleAvatarURL(deps))
		})

		api.Get("/events", HandleEventStream(deps))
	})

	r.Get("/ws", HandleWebSocket(deps, connLimiter))

	return r
}
