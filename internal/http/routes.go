package http

import (
	"context"
	"errors"

	"membership_webapp/internal/config"
	"membership_webapp/internal/http/handlers"
	"membership_webapp/internal/http/middleware"
	"membership_webapp/internal/service"
	"membership_webapp/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Deps is everything the router wires together.
type Deps struct {
	Handler *handlers.Handler
	Health  *handlers.HealthHandler
	Limiter *middleware.RateLimiter
	Hub     *ws.Hub
	Config  *config.Config
}

// RegisterRoutes mounts the API on r. ctx bounds the lifetime of
// websocket feed connections.
func RegisterRoutes(ctx context.Context, r *gin.Engine, d Deps) {
	h := d.Handler
	cfg := d.Config
	rl := d.Limiter

	r.HandleMethodNotAllowed = true
	r.NoMethod(handlers.MethodNotAllowed)
	r.NoRoute(handlers.NotFound)

	// Health checks (no rate limiting)
	r.GET("/health", d.Health.Health)
	r.GET("/healthz", d.Health.Liveness)
	r.GET("/readyz", d.Health.Readiness)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// webhook deliveries are not rate limited
	r.POST("/tip-webhook", h.TipWebhook)

	auth := middleware.JWT(h.Auth)
	authRL := rl.PerIP("auth", cfg.AuthRateLimit, cfg.AuthRateWindow)
	uploadRL := rl.PerUser("upload", cfg.UploadRateLimit, cfg.UploadRateWindow)

	api := r.Group("/api")
	api.POST("/tip-webhook", h.TipWebhook)
	api.GET("/health", d.Health.Health)

	api.Use(rl.PerIP("api", cfg.APIRateLimit, cfg.APIRateWindow))
	{
		// Auth
		api.POST("/authenticate-user", authRL, h.AuthenticateUser)
		api.POST("/register-user", authRL, h.RegisterUser)
		api.POST("/register-users", authRL, h.RegisterUser)
		api.POST("/send-username-reminder", authRL, h.SendUsernameReminder)
		api.POST("/logout", auth, h.Logout)
		api.GET("/me", auth, h.Me)

		// Checkout
		api.GET("/paypal-config", h.PayPalConfig)

		// Media
		api.POST("/upload-photo", auth, uploadRL, h.UploadPhoto)
		api.POST("/upload-video", auth, uploadRL, h.UploadVideo)

		// Content gate
		api.GET("/content/access", auth, h.ContentAccess)
		api.GET("/users/:username/videos", middleware.OptionalJWT(h.Auth), h.UserVideos)

		// Referrals
		api.GET("/referrals", auth, h.MyReferrals)

		// Jackpot
		api.GET("/jackpot", h.JackpotSummary)
		api.GET("/jackpot/me", auth, h.MyJackpot)
	}

	// Realtime jackpot feed
	r.GET("/ws/jackpot", ws.HandleFeed(ctx, d.Hub, feedVerifier(h.Auth), cfg.CORS))
}

var errSessionEnded = errors.New("session ended")

func feedVerifier(auth *service.AuthService) ws.TokenVerifier {
	return func(ctx context.Context, token string) (int64, error) {
		claims, err := service.ParseJWT(token)
		if err != nil {
			return 0, err
		}
		live, err := auth.CheckSession(ctx, claims)
		if err != nil {
			return 0, err
		}
		if !live {
			return 0, errSessionEnded
		}
		return claims.UserID, nil
	}
}
