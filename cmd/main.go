package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/KotFed0t/vc_portfolio_dashboard/config"
	"github.com/KotFed0t/vc_portfolio_dashboard/data"
	"github.com/KotFed0t/vc_portfolio_dashboard/data/cache"
	"github.com/KotFed0t/vc_portfolio_dashboard/data/repository/postgres"
	"github.com/KotFed0t/vc_portfolio_dashboard/data/session"
	"github.com/KotFed0t/vc_portfolio_dashboard/internal/externalApi/cloudStorageApi/googleDriveApi"
	"github.com/KotFed0t/vc_portfolio_dashboard/internal/externalApi/supabaseAuthApi"
	"github.com/KotFed0t/vc_portfolio_dashboard/internal/model"
	"github.com/KotFed0t/vc_portfolio_dashboard/internal/reportGenerator/xslsxGenerator"
	"github.com/KotFed0t/vc_portfolio_dashboard/internal/scheduler"
	"github.com/KotFed0t/vc_portfolio_dashboard/internal/service/authService"
	"github.com/KotFed0t/vc_portfolio_dashboard/internal/service/portfolioService"
	"github.com/KotFed0t/vc_portfolio_dashboard/internal/tgbot"
	"github.com/KotFed0t/vc_portfolio_dashboard/internal/transport/rest"
	"github.com/KotFed0t/vc_portfolio_dashboard/internal/transport/telegram"
	"github.com/redis/go-redis/v9"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg := config.MustLoad()

	setupLogger(cfg)

	slog.Debug("config loaded", slog.String("httpAddr", cfg.HTTP.Addr), slog.String("bucketing", cfg.Metrics.Bucketing))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pgClient, err := data.NewPostgresClient(ctx, cfg)
	if err != nil {
		slog.Error("can't start postgres", slog.String("err", err.Error()))
		os.Exit(1)
	}
	defer pgClient.Close()

	pgRepo := postgres.NewPostgres(cfg, pgClient)

	redisClient, err := data.NewRedisClient(ctx, cfg)
	if err != nil {
		slog.Error("can't start redis", slog.String("err", err.Error()))
		os.Exit(1)
	}
	defer redisClient.Close()

	redisCache := cache.NewRedisCache(redisClient, cfg)
	redisSession := session.NewRedisSession(redisClient, cfg)

	authSrv := authService.New(cfg, supabaseAuthApi.New(cfg), redisSession, pgRepo)
	unsubscribe := authSrv.OnAuthStateChange(func(ctx context.Context, event model.AuthEvent, sess model.Session) {
		if event != model.SignedOut {
			return
		}
		if err := redisCache.FlushScope(ctx, sess.ID); err != nil {
			slog.Warn("can't flush query cache of closed session", slog.String("err", err.Error()))
		}
	})
	defer unsubscribe()

	var opts []portfolioService.Option
	if cfg.GoogleDrive.Enabled {
		drive, err := googleDriveApi.New(ctx, cfg)
		if err != nil {
			slog.Error("can't start google drive client", slog.String("err", err.Error()))
			os.Exit(1)
		}
		opts = append(opts, portfolioService.WithFileStorage(drive))
	} else {
		slog.Warn("google drive is disabled, uploads and report exports are unavailable")
	}
	portfolioSrv := portfolioService.New(cfg, pgRepo, redisCache, xslsxGenerator.New(), opts...)

	sched, err := scheduler.New()
	if err != nil {
		slog.Error("can't create scheduler", slog.String("err", err.Error()))
		os.Exit(1)
	}
	err = sched.Register(
		scheduler.Job{
			Name:             "refresh portfolio summary",
			Fn:               portfolioSrv.RefreshPortfolioSummary,
			Interval:         cfg.Jobs.RefreshSummaryInterval,
			StartImmediately: true,
		},
		scheduler.Job{
			Name:    "cleanup reports",
			Fn:      portfolioSrv.CleanupReports,
			Crontab: cfg.Jobs.CleanupReportsCrontab,
		},
	)
	if err != nil {
		slog.Error("can't register jobs", slog.String("err", err.Error()))
		os.Exit(1)
	}
	sched.Start()
	defer sched.Stop()

	if cfg.Telegram.Enabled {
		tgController := telegram.NewController(portfolioSrv, redisSession)
		tgBot, err := tgbot.New(cfg, tgController)
		if err != nil {
			os.Exit(1)
		}
		tgBot.Start()
		defer tgBot.Stop()
	}

	router := rest.NewRouter(cfg, rest.Deps{
		Auth:      authSrv,
		Portfolio: portfolioSrv,
		Health: map[string]rest.Pinger{
			"postgres": pgRepo,
			"redis":    redisPinger{redisClient},
		},
	})

	srv := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      router,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("http server starting", slog.String("addr", cfg.HTTP.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		slog.Info("shutdown requested")
	case err := <-errCh:
		slog.Error("http server failed", slog.String("err", err.Error()))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("http server shutdown error", slog.String("err", err.Error()))
	}
}

type redisPinger struct {
	client *redis.Client
}

func (p redisPinger) Ping(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}

func setupLogger(cfg *config.Config) {
	var logLevel slog.Level

	switch cfg.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warning":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(log)
}
