package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/askgita/askgita/internal/logging"
	"github.com/askgita/askgita/internal/server/answer"
	"github.com/askgita/askgita/internal/server/chats"
	"github.com/askgita/askgita/internal/server/config"
	"github.com/askgita/askgita/internal/server/repositories/redis"
	"github.com/askgita/askgita/internal/server/users"
)

// NewRouter creates and configures the HTTP router
func NewRouter(cfg *config.Config, userService *users.Service, chatService *chats.Service,
	answerService *answer.Service, limiter *redis.RateLimiter, log logging.Logger) http.Handler {

	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	// CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-User-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	authn := NewAuthenticator([]byte(cfg.SecretKey))
	guestLimit := NewGuestRateLimit(limiter)

	authHandler := NewAuthHandler(userService, chatService)
	chatHandler := NewChatHandler(answerService, chatService, log)
	historyHandler := NewHistoryHandler(chatService)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
			OK(w, map[string]any{"status": "ok"})
		})

		// Chat accepts guests; identification is optional and guests are
		// rate limited per IP.
		r.Group(func(r chi.Router) {
			r.Use(authn.Optional)
			r.Use(guestLimit.Limit)
			r.Post("/chat", chatHandler.Chat)
		})

		r.Route("/auth", func(r chi.Router) {
			r.Post("/otp/send", authHandler.SendOTP)
			r.Post("/otp/verify", authHandler.VerifyOTP)
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
			r.Post("/logout", authHandler.Logout)

			r.Group(func(r chi.Router) {
				r.Use(authn.Required)
				r.Get("/profile", authHandler.Profile)
				r.Put("/profile", authHandler.UpdateProfile)
				r.Post("/delete/otp", authHandler.SendDeleteOTP)
				r.Post("/delete", authHandler.DeleteAccount)
			})
		})

		r.Route("/history", func(r chi.Router) {
			r.Use(authn.Required)
			r.Get("/", historyHandler.List)
			r.Delete("/", historyHandler.DeleteAll)
			r.Get("/{chatID}", historyHandler.Get)
			r.Delete("/{chatID}", historyHandler.Delete)
		})
	})

	return r
}
