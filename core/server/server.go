package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go-musician-booking/core/cache"
	"go-musician-booking/core/config"
	"go-musician-booking/core/constants"
	"go-musician-booking/core/database"
	"go-musician-booking/core/logger"
	"go-musician-booking/core/middleware"
	"go-musician-booking/core/queue"
	"go-musician-booking/core/saga"
	"go-musician-booking/core/storage"
	"go-musician-booking/core/telemetry"
	"go-musician-booking/modules/activity"
	"go-musician-booking/modules/availability"
	"go-musician-booking/modules/booking"
	"go-musician-booking/modules/contract"
	contractService "go-musician-booking/modules/contract/service"
	"go-musician-booking/modules/deadletter"
	"go-musician-booking/modules/invitation"
	"go-musician-booking/modules/invoice"
	"go-musician-booking/modules/musician"
	"go-musician-booking/modules/notification"
	notificationService "go-musician-booking/modules/notification/service"
	"go-musician-booking/modules/planner"
	plannerService "go-musician-booking/modules/planner/service"
	"go-musician-booking/modules/synchronizer"

	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
)

// infra is everything Run opens and must close on the way out.
type infra struct {
	db      *database.Database
	cache   *cache.RedisCache
	queue   *queue.Client
	workers *queue.Server
}

func (i *infra) close() {
	if i.workers != nil {
		i.workers.Shutdown()
	}
	if i.queue != nil {
		if err := i.queue.Close(); err != nil {
			logger.Error("Server:Close:Queue:Error:", err)
		}
	}
	if i.cache != nil {
		if err := i.cache.Close(); err != nil {
			logger.Error("Server:Close:Cache:Error:", err)
		}
	}
	if i.db != nil {
		if err := i.db.Close(); err != nil {
			logger.Error("Server:Close:Database:Error:", err)
		}
	}
}

func Run() error {
	cfg, err := config.Init()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger.Init(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Server:Run:Start", "env", cfg.Server.Env, "port", cfg.Server.Port)

	ctx := context.Background()
	res := &infra{}
	defer res.close()

	shutdownTracing, err := telemetry.SetupTracing(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.OTLPEndpoint)
	if err != nil {
		logger.Warn("Server:Run:Tracing:Disabled", "error", err)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			logger.Error("Server:Close:Tracing:Error:", err)
		}
	}()

	repos, err := openRepositories(ctx, cfg, res)
	if err != nil {
		return err
	}

	if cfg.Redis.Addr != "" {
		rc, err := cache.NewRedisCache(ctx, cache.RedisConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			logger.Warn("Server:Run:Cache:Disabled", "error", err)
		} else {
			res.cache = rc
		}
	}

	queueCfg := queue.RedisConfig{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB}
	sagaOpts := saga.Options{
		MaxAttempts: cfg.Saga.MaxAttempts,
		Backoff:     cfg.Saga.Backoff,
		ReplayDelay: cfg.Saga.ReplayDelay,
	}
	if cfg.Queue.Enabled && cfg.Redis.Addr != "" {
		res.queue = queue.NewClient(queueCfg)
		sagaOpts.Queue = res.queue
	}
	runner := saga.NewRunner(repos.sagas, sagaOpts)

	e := echo.New()
	e.HideBanner = true
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.RequestID())
	e.Use(echoMiddleware.CORS())
	e.Use(echoMiddleware.ContextTimeout(constants.DefaultRequestTimeout))

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	if cfg.Telemetry.MetricsEnabled {
		e.GET("/metrics", echo.WrapHandler(telemetry.Handler()))
	}

	api := e.Group("/api/v1")
	public := api.Group("/public")
	private := api.Group("/private")
	mw := middleware.NewMiddleware()

	activitySvc := activity.Init(private, repos.activity, repos.tx, mw)
	availabilitySvc := availability.Init(private, repos.availability, repos.tx, activitySvc, mw)
	musicianSvc := musician.Init(private, repos.musicians, mw)
	plannerSvc := planner.Init(private, repos.planners, mw)
	bookingSvc := booking.Init(private, repos.bookings, activitySvc, mw)
	notificationSvc := notification.Init(private, repos.notifications, mw)

	reconciler := synchronizer.Init(repos.availability, activitySvc, repos.tx, runner,
		bookingSvc, repos.contracts, repos.links)
	availabilitySvc.AddClaimSource(bookingSvc)
	availabilitySvc.AddClaimSource(repos.contracts)
	availabilitySvc.AddClaimSource(repos.links)

	fees := plannerService.NewFeeResolver(repos.musicians)
	contract.Init(public, private, contractService.Dependencies{
		Contracts: repos.contracts,
		Links:     repos.links,
		Musicians: musicianSvc,
		Bookings:  bookingSvc,
		Planner:   plannerSvc,
		Tx:        repos.tx,
		Sync:      reconciler,
		Activity:  activitySvc,
		Runner:    runner,
		Mailer:    newMailer(cfg.SMTP),
		Artifacts: newArtifactStore(cfg.S3),
		Notifier:  notificationSvc,
		Guard:     newResponseGuard(res.cache, cfg.Throttle),
		Options: contractService.Options{
			TermsAndConditions: cfg.Contract.TermsAndConditions,
			ResponseBaseURL:    cfg.Contract.ResponseBaseURL,
			NotifyEmail:        cfg.Contract.NotifyEmail,
		},
	}, plannerSvc, fees, mw)

	invoice.Init(private, repos.invoices, plannerSvc, fees, repos.tx, activitySvc, mw)
	invitation.Init(private, repos.invitations, bookingSvc, availabilitySvc, notificationSvc, repos.tx, activitySvc, mw)
	deadletter.Init(private, runner, mw)

	// Replay tasks are registered after every module has added its steps.
	if res.queue != nil {
		res.workers = queue.NewServer(queueCfg, cfg.Queue.Concurrency)
		res.workers.Handle(constants.TaskSagaReplay, runner.HandleReplayTask)
		if err := res.workers.Start(); err != nil {
			return fmt.Errorf("start queue workers: %w", err)
		}
		logger.Info("Server:Run:Workers:Started", "concurrency", cfg.Queue.Concurrency)
	}

	return serve(e, fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port))
}

func openRepositories(ctx context.Context, cfg *config.Config, res *infra) (*repositories, error) {
	if cfg.Database.InMemory {
		logger.Warn("Server:Run:Database:InMemory")
		return memoryRepositories(), nil
	}

	db, err := database.InitDB(database.DatabaseConfig{
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
		DBName:   cfg.Database.Name,
		SSLMode:  cfg.Database.SSLMode,
	})
	if err != nil {
		return nil, err
	}
	res.db = db

	if cfg.Database.AutoMigrate {
		if err := db.Migrate(ctx); err != nil {
			return nil, fmt.Errorf("migrate: %w", err)
		}
	}
	return postgresRepositories(db), nil
}

func newMailer(cfg config.SMTPConfig) notificationService.EmailDispatcher {
	if !cfg.Configured() {
		logger.Warn("Server:Run:SMTP:NotConfigured", "mode", "mock")
		return notificationService.MockDispatcher{}
	}
	return notificationService.NewSMTPDispatcher(notificationService.SMTPConfig{
		Host:     cfg.Host,
		Port:     cfg.Port,
		Username: cfg.Username,
		Password: cfg.Password,
		From:     cfg.From,
	})
}

func newArtifactStore(cfg config.S3Config) storage.ArtifactStore {
	if cfg.Bucket == "" {
		return storage.NoopStore{}
	}
	return storage.NewS3Store(storage.S3Config{
		Region:          cfg.Region,
		Bucket:          cfg.Bucket,
		Endpoint:        cfg.Endpoint,
		AccessKeyID:     cfg.AccessKeyID,
		SecretAccessKey: cfg.SecretAccessKey,
	})
}

func newResponseGuard(rc *cache.RedisCache, cfg config.ThrottleConfig) *contractService.ResponseGuard {
	if rc == nil {
		return nil
	}
	return contractService.NewResponseGuard(rc, cfg.RespondLimit, cfg.RespondWindow)
}

func serve(e *echo.Echo, addr string) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info("Server:Serve:Listening", "addr", addr)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("listen: %w", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stop:
		logger.Info("Server:Serve:Signal", "signal", sig.String())
	case err := <-errCh:
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logger.Info("Server:Serve:Stopped")
	return nil
}
