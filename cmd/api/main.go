package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"lendit/internal/api"
	"lendit/internal/cache"
	"lendit/internal/config"
	"lendit/internal/database"
	"lendit/internal/domain"
	"lendit/internal/events"
	"lendit/internal/logging"
	"lendit/internal/metrics"
	"lendit/internal/models"
	"lendit/internal/notify"
	"lendit/internal/service"
	"lendit/internal/worker"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v2"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	cfg, logger, closer, err := loadConfigAndLogger()
	if err != nil {
		return err
	}
	if closer != nil {
		defer (func() { _ = closer.Close() })()
	}

	db, err := database.NewDB(cfg.Database.Path)
	if err != nil {
		logger.Error().Err(err).Str("db_path", cfg.Database.Path).Msg("init database")
		return err
	}
	defer db.Close()

	if err := seedDatabase(db, &logger); err != nil {
		return err
	}

	viewCache, redisClient := initCache(cfg, &logger)
	if redisClient != nil {
		defer (func() { _ = cache.Close(redisClient) })()
	}

	bus := events.NewEventBus()
	if cfg.Telegram.Enabled {
		notifier, err := notify.NewTelegramNotifier(cfg.Telegram, &logger)
		if err != nil {
			logger.Warn().Err(err).Msg("telegram init failed, continuing without notifications")
		} else {
			notifier.Subscribe(bus)
			logger.Info().Int64("chat_id", cfg.Telegram.ChatID).Msg("telegram notifications enabled")
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var exporter api.Exporter
	if cfg.Exports.Enabled {
		exportWorker := worker.NewExportWorker(db, cfg.Exports, worker.RetryPolicy{}, &logger)
		go exportWorker.Start(ctx)
		exporter = exportWorker
	}

	if cfg.Backup.Enabled {
		backup := database.NewBackupService(cfg.Database.Path, cfg.Backup, &logger)
		go backup.Start(ctx)
	}

	userService := service.NewUserService(db, &logger)
	itemService := service.NewItemService(db, db, db, db, db, viewCache, cfg.Cache.TTL, bus, &logger)
	bookingService := service.NewBookingService(db, db, db, viewCache, bus, &logger)
	requestService := service.NewRequestService(db, db, db, &logger)

	httpServer := api.NewHTTPServer(cfg.API, userService, itemService, bookingService, requestService, exporter, &logger)

	var healthServer *api.HealthServer
	if cfg.API.GRPC.Enabled {
		healthServer, err = api.NewHealthServer(cfg.API.GRPC, &logger)
		if err != nil {
			logger.Error().Err(err).Msg("create health server")
			return err
		}
	}

	startMetrics(ctx, cfg, &logger)

	return startServers(ctx, httpServer, healthServer, cfg, &logger)
}

func loadConfigAndLogger() (*config.Config, zerolog.Logger, io.Closer, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, zerolog.Logger{}, nil, fmt.Errorf("load config: %w", err)
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return nil, zerolog.Logger{}, nil, fmt.Errorf("init logger: %w", err)
	}
	logger := baseLogger.With().Str("component", "api-main").Logger()

	return cfg, logger, closer, nil
}

type seedData struct {
	Users []struct {
		Name  string `yaml:"name"`
		Email string `yaml:"email"`
	} `yaml:"users"`
	Items []models.Item `yaml:"items"`
}

// seedDatabase наполняет пустую базу стартовыми пользователями и вещами.
// Owner ID в файле ссылается на порядковый номер пользователя в списке.
func seedDatabase(db *database.DB, logger *zerolog.Logger) error {
	seedPath := os.Getenv("SEED_PATH")
	if seedPath == "" {
		seedPath = "configs/seed.yaml"
	}
	data, err := os.ReadFile(seedPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read seed file: %w", err)
	}

	ctx := context.Background()
	existing, err := db.ListUsers(ctx)
	if err != nil {
		return fmt.Errorf("check existing users: %w", err)
	}
	if len(existing) > 0 {
		logger.Debug().Str("seed_path", seedPath).Msg("database is not empty, seed skipped")
		return nil
	}

	var seed seedData
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return fmt.Errorf("parse seed file: %w", err)
	}

	ownerIDs := make([]int64, 0, len(seed.Users))
	for _, u := range seed.Users {
		user := &models.User{Name: u.Name, Email: u.Email}
		if err := db.CreateUser(ctx, user); err != nil {
			return fmt.Errorf("seed user %q: %w", u.Email, err)
		}
		ownerIDs = append(ownerIDs, user.ID)
	}

	for i := range seed.Items {
		item := seed.Items[i]
		ordinal := int(item.OwnerID)
		if ordinal < 1 || ordinal > len(ownerIDs) {
			return fmt.Errorf("seed item %q references unknown owner %d", item.Name, item.OwnerID)
		}
		item.OwnerID = ownerIDs[ordinal-1]
		if err := db.CreateItem(ctx, &item); err != nil {
			return fmt.Errorf("seed item %q: %w", item.Name, err)
		}
	}

	logger.Info().Int("users", len(seed.Users)).Int("items", len(seed.Items)).Msg("database seeded")
	return nil
}

func initCache(cfg *config.Config, logger *zerolog.Logger) (domain.ViewCache, *redis.Client) {
	memory := cache.NewMemoryViewCache()
	if !cfg.Redis.Enabled {
		return memory, nil
	}

	client := cache.NewRedisClient(cfg.Redis)
	if err := cache.Ping(context.Background(), client); err != nil {
		logger.Warn().Err(err).Str("addr", cfg.Redis.Address).Msg("redis unavailable, falling back to memory cache")
	} else {
		logger.Info().Str("addr", cfg.Redis.Address).Msg("redis connected")
	}

	return cache.NewFailoverViewCache(cache.NewRedisViewCache(client), memory, logger), client
}

func startMetrics(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) {
	if !cfg.Monitoring.PrometheusEnabled {
		return
	}

	metrics.Register()
	go startMetricsServer(ctx, cfg.Monitoring.PrometheusPort, logger)
}

func startServers(
	ctx context.Context,
	httpServer *api.HTTPServer,
	healthServer *api.HealthServer,
	cfg *config.Config,
	logger *zerolog.Logger,
) error {
	if healthServer != nil {
		go func() {
			if err := healthServer.Serve(); err != nil {
				logger.Error().Err(err).Msg("health server stopped")
			}
		}()
		healthServer.SetServing(true)
	}

	go func() {
		if err := httpServer.Start(); err != nil {
			logger.Error().Err(err).Msg("http server stopped")
		}
	}()

	logger.Info().Int("http_port", cfg.API.HTTP.Port).Msg("API server started")

	<-ctx.Done()
	logger.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.API.HTTP.ShutdownTimeout)
	defer cancel()

	if healthServer != nil {
		healthServer.SetServing(false)
		healthServer.Shutdown(shutdownCtx)
	}
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http server shutdown")
	}

	logger.Info().Msg("API server stopped")
	return nil
}

func startMetricsServer(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("metrics server error")
	}
}
