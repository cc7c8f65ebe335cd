/*
Package handler provides the HTTP handlers and routing setup for the chat server.

This file defines the main Router, applying necessary middleware like logging, CORS,
and IP-based rate limiting before delegating requests to specific handlers (REST and WebSocket).
*/
package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/rs/cors"
	"golang.org/x/time/rate"

	"guildchat/internal/pkg/auth/jwt"
	"guildchat/internal/pkg/limiter"
	"guildchat/internal/pkg/logx"
	"guildchat/internal/pkg/resp"
)

const (
	AuthRate  = 0.2
	AuthBurst = 5
	WSRate    = 0.5
	WSBurst   = 10
)

// Router sets up the main HTTP routing table (chi.Router) for the application.
// It initializes IP-based rate limiters, configures CORS, and applies global and per-route middleware.
func Router(deps *AppDeps) http.Handler {
	authLimiter := limiter.NewIPRateLimiter(rate.Limit(AuthRate), AuthBurst)
	wsLimiter := limiter.NewIPRateLimiter(rate.Limit(WSRate), WSBurst)

	r := chi.NewRouter()

	allowedOrigins := make(map[string]struct{})
	for _, origin := range deps.Config.AllowedOrigins {
		allowedOrigins[origin] = struct{}{}
	}

	wsUpgrader := websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin: func(r *http.Request) bool {
			if deps.Config.IsDevelopment() {
				return true
			}

			origin := r.Header.Get("Origin")
			if _, ok := allowedOrigins[origin]; ok {
				return true
			}

			logx.Warn("WebSocket connection rejected: Origin not allowed.", "origin", origin)
			return false
		},
	}

	corsAllowedOrigins := []string{}
	if deps.Config.IsDevelopment() {
		corsAllowedOrigins = []string{"*"}
	} else if len(deps.Config.AllowedOrigins) > 0 {
		corsAllowedOrigins = deps.Config.AllowedOrigins
	}

	c := cors.New(cors.Options{
		AllowedOrigins:   corsAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{},
		AllowCredentials: true,
		MaxAge:           300,
	})
	r.Use(c.Handler)

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logx.RequestLogger())
	r.Use(middleware.Recoverer)
	r.Use(jwt.IdentityExtractorMiddleware(deps.Config.JWTSecret))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		resp.RespondSuccess(w, r, map[string]any{
			"status":   "ok",
			"service":  "Guildchat Server",
			"sessions": deps.Manager.SessionCount(),
		})
	})

	r.Route("/api", func(api chi.Router) {
		api.Route("/auth", func(auth chi.Router) {
			auth.With(authLimiter.Middleware).Post("/register", HandleRegister(deps))
			auth.With(authLimiter.Middleware).Post("/login", HandleLogin(deps))
			auth.With(requireAuth(deps)).Post("/logout", HandleLogout(deps))
		})

		api.Group(func(p chi.Router) {
			p.Use(requireAuth(deps))

			p.Get("/users", HandleListUsers(deps))
			p.Get("/users/{id}", HandleGetUser(deps))
			p.Put("/users/{id}", HandleUpdateUser(deps))

			p.Get("/servers", HandleListServers(deps))
			p.Post("/servers", HandleCreateServer(deps))
			p.Get("/servers/{id}", HandleGetServer(deps))
			p.Put("/servers/{id}", HandleUpdateServer(deps))
			p.Post("/servers/{id}/join", HandleJoinServer(deps))
			p.Post("/servers/{id}/channels", HandleCreateChannel(deps))

			p.Get("/messages/{channelId}", HandleGetMessages(deps))
			p.Post("/messages/{channelId}", HandlePostMessage(deps))

			p.Post("/friends/request", HandleSendFriendRequest(deps))
			p.Post("/friends/request/{fromUserId}/respond", HandleRespondFriendRequest(deps))

			p.Post("/files/presign-upload", HandlePresignUploadURL(deps))
			p.Get("/files/presign-download", HandlePresignDownloadURL(deps))
			p.Delete("/files", HandleDeleteFile(deps))
		})
	})

	r.With(wsLimiter.Middleware).Get("/ws", HandleWebSocket(deps, wsUpgrader))

	return r
}
