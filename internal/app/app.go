package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	_ "taskflow/docs"
	"taskflow/internal/config"
	"taskflow/internal/handlers"
	"taskflow/internal/logger"
	"taskflow/internal/metrics"
	"taskflow/internal/middleware"
	"taskflow/internal/pdf"
	"taskflow/internal/repositories"
	"taskflow/internal/routes"
	"taskflow/internal/services"
	"taskflow/internal/utils"
)

// Store bundles the repositories of the configured driver.
type Store struct {
	Users repositories.UserRepository
	Tasks repositories.TaskRepository
	DB    *sql.DB // nil for the memory driver
}

func (s *Store) Close() error {
	if s.DB == nil {
		return nil
	}
	return s.DB.Close()
}

// OpenStore connects to the configured database and, for postgres with
// auto_migrate, applies pending migrations.
func OpenStore(ctx context.Context, cfg config.DatabaseConfig) (*Store, error) {
	if cfg.Driver == config.DriverMemory {
		logger.Warn("[db] using in-memory store, data is lost on exit")
		mem := repositories.NewMemoryStore()
		return &Store{Users: mem.Users(), Tasks: mem.Tasks()}, nil
	}

	db, err := repositories.Open(ctx, cfg.DSN, repositories.DBOptions{
		MaxOpenConns: cfg.MaxOpenConns,
		MaxIdleConns: cfg.MaxIdleConns,
	})
	if err != nil {
		return nil, err
	}
	if cfg.AutoMigrate {
		if err := repositories.Migrate(ctx, db); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	return &Store{
		Users: repositories.NewUserRepository(db),
		Tasks: repositories.NewTaskRepository(db),
		DB:    db,
	}, nil
}

// Services are the domain services built from a store and config.
type Services struct {
	Auth  services.AuthService
	Users services.UserService
	Tasks services.TaskService
}

func NewServices(cfg *config.Config, store *Store, m *metrics.Metrics) (*Services, error) {
	ttl, err := cfg.TokenTTL()
	if err != nil {
		return nil, err
	}
	tokens, err := utils.NewTokenManager(cfg.JWT.Secret, ttl)
	if err != nil {
		return nil, err
	}

	var mailer services.EmailService
	if cfg.Email.Enabled() {
		mailer = services.NewEmailService(
			cfg.Email.SMTPHost,
			cfg.Email.SMTPPort,
			cfg.Email.SMTPUser,
			cfg.Email.SMTPPassword,
			cfg.Email.FromEmail,
		)
	} else {
		logger.Info("[email] SMTP not configured, notifications disabled")
	}

	auth := services.NewAuthService(tokens)
	opts := []services.TaskServiceOption{services.WithTaskMetrics(m)}
	if mailer != nil {
		opts = append(opts, services.WithTaskMailer(mailer))
	}
	return &Services{
		Auth:  auth,
		Users: services.NewUserService(store.Users, auth, mailer, m),
		Tasks: services.NewTaskService(store.Tasks, store.Users, opts...),
	}, nil
}

// NewRouter builds the gin engine with every route and middleware.
func NewRouter(cfg *config.Config, svc *Services, m *metrics.Metrics, fontPath string) (*gin.Engine, error) {
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}
	if err := handlers.RegisterValidators(); err != nil {
		return nil, err
	}

	var authLimiter gin.HandlerFunc
	if !cfg.RateLimit.Disabled {
		var err error
		authLimiter, err = middleware.RateLimit(cfg.RateLimit.AuthRate, m)
		if err != nil {
			return nil, err
		}
	}

	router := gin.New()
	// nil disables X-Forwarded-For handling, so ClientIP is the socket peer.
	if err := router.SetTrustedProxies(cfg.Server.TrustedProxies); err != nil {
		return nil, fmt.Errorf("trusted proxies: %w", err)
	}
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(logger.Default(), m))
	router.Use(middleware.CORS(cfg.Server.AllowedOrigins))

	routes.SetupRoutes(router, routes.Deps{
		Auth:          svc.Auth,
		Metrics:       m,
		AuthLimiter:   authLimiter,
		AuthHandler:   handlers.NewAuthHandler(svc.Users),
		TaskHandler:   handlers.NewTaskHandler(svc.Tasks, pdf.NewReportGenerator(fontPath)),
		ReportHandler: handlers.NewReportHandler(svc.Tasks, svc.Users),
	})
	return router, nil
}

// Run serves HTTP until ctx is cancelled, then shuts down gracefully.
func Run(ctx context.Context, cfg *config.Config, fontPath string) error {
	store, err := OpenStore(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("[db] close failed", "err", err)
		}
	}()

	m := metrics.New()
	svc, err := NewServices(cfg, store, m)
	if err != nil {
		return err
	}
	router, err := NewRouter(cfg, svc, m, fontPath)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.ListenAddr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		logger.Info("[server] listening", "addr", srv.Addr, "driver", cfg.Database.Driver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	timeout, err := cfg.ShutdownTimeout()
	if err != nil {
		return err
	}
	logger.Info("[server] shutting down", "timeout", timeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
