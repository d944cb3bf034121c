package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/slidewise/slidewise-server/ai"
	"github.com/slidewise/slidewise-server/config"
	"github.com/slidewise/slidewise-server/controllers"
	"github.com/slidewise/slidewise-server/middleware"
	"github.com/slidewise/slidewise-server/routes"
	"github.com/slidewise/slidewise-server/services"
	"github.com/slidewise/slidewise-server/store"
	"github.com/slidewise/slidewise-server/store/memory"
	"github.com/slidewise/slidewise-server/utils"
)

// backend is what both store drivers provide.
type backend interface {
	store.Stores
	store.TxRunner
	store.Pinger
}

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		slog.ErrorContext(ctx, "failed to load config", "error", err)
		os.Exit(1)
	}

	telemetry, err := config.SetupTelemetry(ctx, cfg.OTel)
	if err != nil {
		os.Stderr.WriteString("failed to initialize otel: " + err.Error() + "\n")
		os.Exit(1)
	}

	config.SetupLogger(cfg)
	slog.InfoContext(ctx, "slidewise starting", "env", cfg.Env, "store", cfg.StoreDriver, "otel", telemetry != nil)

	var db backend
	switch cfg.StoreDriver {
	case "memory":
		slog.WarnContext(ctx, "using in-memory store, data is lost on restart")
		db = memory.New()
	default:
		gdb, err := config.ConnectDB(cfg)
		if err != nil {
			slog.ErrorContext(ctx, "failed to connect to database", "error", err)
			os.Exit(1)
		}
		db = store.NewGormStores(gdb)
	}

	tokens, err := utils.NewTokenIssuer(cfg.TokenSecret, cfg.TokenTTL)
	if err != nil {
		slog.ErrorContext(ctx, "failed to create token issuer", "error", err)
		os.Exit(1)
	}

	var generator services.ContentGenerator = ai.Disabled{}
	if client, err := ai.New(ai.Config{
		APIKey:     cfg.AI.APIKey,
		BaseURL:    cfg.AI.BaseURL,
		Model:      cfg.AI.Model,
		ImageModel: cfg.AI.ImageModel,
		Timeout:    cfg.AI.Timeout,
		Referer:    cfg.AI.Referer,
		Title:      cfg.AI.Title,
		Structured: cfg.AI.Structured,
	}); err != nil {
		slog.WarnContext(ctx, "AI content service disabled", "error", err)
	} else {
		generator = client
	}

	var files services.FileStore
	uploadDir := ""
	if cfg.Storage.UseSupabase() {
		files = utils.NewSupabaseStorage(cfg.Storage.SupabaseURL, cfg.Storage.SupabaseKey, cfg.Storage.SupabaseBucket)
	} else {
		uploadDir = cfg.Storage.UploadDir
		files = utils.NewLocalStorage(uploadDir, cfg.Storage.PublicBaseURL)
	}

	workspaceSvc := services.NewWorkspaceService(db, cfg.InvitationTTL)
	authSvc := services.NewAuthService(db, db, tokens, workspaceSvc)

	authLimiter := middleware.NewIPRateLimiter(middleware.RateLimit{PerMinute: cfg.RateLimitAuthPerMin, Burst: 5})
	defer authLimiter.Stop()
	aiLimiter := middleware.NewIPRateLimiter(middleware.RateLimit{PerMinute: cfg.RateLimitAIPerMin, Burst: 3})
	defer aiLimiter.Stop()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.OTel.Enabled() {
		r.Use(otelgin.Middleware(cfg.OTel.ServiceName))
	}
	r.Use(middleware.Recovery())
	r.Use(middleware.Logger())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", middleware.TokenHeader},
		ExposeHeaders:    []string{"Content-Length", middleware.TokenHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	if err := r.SetTrustedProxies(nil); err != nil {
		panic(err)
	}

	routes.SetupRoutes(r, routes.Deps{
		Auth:          authSvc,
		AuthLimiter:   authLimiter,
		AILimiter:     aiLimiter,
		UploadDir:     uploadDir,
		Health:        controllers.NewHealthController(db),
		Accounts:      controllers.NewAuthController(authSvc),
		Users:         controllers.NewUserController(services.NewUserService(db, files)),
		Workspaces:    controllers.NewWorkspaceController(workspaceSvc),
		Invitations:   controllers.NewInvitationController(services.NewInvitationService(db, db, cfg.InvitationTTL)),
		Presentations: controllers.NewPresentationController(services.NewPresentationService(db, generator)),
	})

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      cfg.AI.Timeout + 30*time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		slog.InfoContext(ctx, "http server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.ErrorContext(ctx, "http server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.InfoContext(ctx, "shutting down...")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.ErrorContext(shutdownCtx, "http server shutdown error", "error", err)
	}
	if err := telemetry.Shutdown(shutdownCtx); err != nil {
		slog.ErrorContext(shutdownCtx, "otel shutdown error", "error", err)
	}

	slog.InfoContext(shutdownCtx, "shutdown complete")
}
