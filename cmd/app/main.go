package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"membership_webapp/internal/config"
	"membership_webapp/internal/db"
	"membership_webapp/internal/domain"
	httpServer "membership_webapp/internal/http"
	"membership_webapp/internal/http/handlers"
	"membership_webapp/internal/http/middleware"
	"membership_webapp/internal/logger"
	"membership_webapp/internal/mail"
	"membership_webapp/internal/migrations"
	"membership_webapp/internal/paypal"
	"membership_webapp/internal/repository"
	"membership_webapp/internal/service"
	"membership_webapp/internal/storage"
	"membership_webapp/internal/ws"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
)

var version = "dev"

func main() {
	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.LogJSON)
	service.InitJWT(cfg.JWTSecret)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.MigrateOnStart {
		if err := migrations.Up(cfg.DatabaseURL); err != nil {
			logger.Fatal("migrations failed", "error", err)
		}
	}

	dbPool := db.Connect(cfg.DatabaseURL)
	defer dbPool.Close()

	rdb := db.ConnectRedis(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if rdb != nil {
		defer rdb.Close()
	}

	store, err := storage.NewS3Storage(ctx, storage.S3Options{
		Endpoint:  cfg.S3.Endpoint,
		Region:    cfg.S3.Region,
		Bucket:    cfg.S3.Bucket,
		AccessKey: cfg.S3.AccessKey,
		SecretKey: cfg.S3.SecretKey,
		PublicURL: cfg.S3.PublicURL,
	})
	if err != nil {
		logger.Fatal("storage init failed", "error", err)
	}

	var mailer service.Mailer
	if cfg.Email.APIKey != "" {
		mailer = mail.NewClient(cfg.Email.APIURL, cfg.Email.APIKey, cfg.Email.From)
	} else {
		logger.Warn("EMAIL_API_KEY not set; username reminders disabled")
	}

	users := repository.NewUserRepository(dbPool)
	audit := service.NewAuditService(dbPool)
	authSvc := service.NewAuthService(users, service.NewSessionStore(rdb), mailer, audit)
	tipSvc := service.NewTipService(service.NewPgLedger(dbPool), audit, cfg.DrawZone)
	tipSvc.SetTicketCap(cfg.TipTicketCap)
	mediaSvc := service.NewMediaService(users, store, audit)
	jackpotSvc := service.NewJackpotService(repository.NewTicketRepository(dbPool), cfg.DrawZone)

	h := &handlers.Handler{
		Auth:      authSvc,
		Tips:      tipSvc,
		Media:     mediaSvc,
		Jackpot:   jackpotSvc,
		Users:     users,
		Referrals: repository.NewReferralRepository(dbPool),
		Audit:     audit,
		PayPal: handlers.PayPalPublic{
			ClientID:    cfg.PayPal.ClientID,
			Environment: cfg.PayPal.Environment,
		},
	}
	if cfg.PayPal.WebhookID != "" {
		h.Webhook = paypal.NewClient(cfg.PayPal.Environment, cfg.PayPal.ClientID, cfg.PayPal.ClientSecret, cfg.PayPal.WebhookID)
	} else {
		logger.Warn("PAYPAL_WEBHOOK_ID not set; tip webhooks are accepted without signature verification")
	}

	var redisPing handlers.Pinger
	if rdb != nil {
		redisPing = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	}
	health := handlers.NewHealthHandler(dbPool.Ping, redisPing, version)

	hub := ws.NewHub(func(ctx context.Context, topic string, userID int64) (any, error) {
		if topic == ws.TopicMyTickets {
			return jackpotSvc.ForUser(ctx, userID)
		}
		return jackpotSvc.Current(ctx)
	})

	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger())

	httpServer.RegisterRoutes(ctx, r, httpServer.Deps{
		Handler: h,
		Health:  health,
		Limiter: middleware.NewRateLimiter(rdb),
		Hub:     hub,
		Config:  cfg,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           httpServer.WithCORS(r, cfg.CORS),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("server started", "port", cfg.AppPort, "version", version)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		return ws.NewListener(cfg.DatabaseURL, domain.JackpotChannel, hub).Run(gctx)
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Fatal("server stopped with error", "error", err)
	}
	logger.Info("server exited")
}
