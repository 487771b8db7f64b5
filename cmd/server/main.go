package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"golang.org/x/sync/errgroup"

	httpapi "weighbridge-server/internal/api/http"
	"weighbridge-server/internal/api/ws"
	"weighbridge-server/internal/config"
	"weighbridge-server/internal/jobs"
	"weighbridge-server/internal/logger"
	"weighbridge-server/internal/metrics"
	"weighbridge-server/internal/realtime"
	"weighbridge-server/internal/repository/postgres"
	"weighbridge-server/internal/scale"
	"weighbridge-server/internal/scheduler"
	"weighbridge-server/internal/security"
	"weighbridge-server/internal/service"
	"weighbridge-server/internal/storage"
)

const (
	dbConnectAttempts = 10
	dbConnectDelay    = 2 * time.Second
	shutdownTimeout   = 10 * time.Second
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting Weighbridge Server...", "log_level", cfg.Log.Level, "log_format", cfg.Log.Format)
	logger.Info("Server configuration", "address", cfg.GetServerAddress(), "timezone", cfg.Server.Timezone)
	logger.Info("Database configuration", "host", cfg.Database.Host, "port", cfg.Database.Port, "database", cfg.Database.Database, "user", cfg.Database.User)
	logger.Info("Device configuration", "port", cfg.Device.Port, "baud_rate", cfg.Device.BaudRate, "simulate", cfg.Device.Simulate)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize Database
	db, err := openDatabase(ctx, cfg)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := postgres.Migrate(ctx, db); err != nil {
		logger.Error("Failed to migrate database schema", "error", err)
		log.Fatalf("Failed to migrate database schema: %v", err)
	}
	store := postgres.NewStore(db)
	defer store.Close()

	// Initialize Storage
	images, err := storage.NewLocalImageStore(cfg.Storage.UploadDir)
	if err != nil {
		logger.Error("Failed to initialize image storage", "error", err, "upload_dir", cfg.Storage.UploadDir)
		log.Fatalf("Failed to initialize image storage: %v", err)
	}

	// Initialize Security
	loginChecker, err := security.NewSecretChecker(cfg.Admin.LoginPassword)
	if err != nil {
		log.Fatalf("Failed to initialize admin login: %v", err)
	}
	actionChecker, err := security.NewSecretChecker(cfg.Admin.ActionSecret)
	if err != nil {
		log.Fatalf("Failed to initialize admin action secret: %v", err)
	}

	m := metrics.New()

	// Realtime fan-out
	hub := realtime.NewHub(m)
	pub := realtime.NewPublisher(hub)

	// Weight indicator. A device that fails to open leaves the weight at zero;
	// operators can pick another port from the admin page.
	var opener scale.Opener = scale.SerialOpener{BaudRate: cfg.Device.BaudRate}
	devicePath := cfg.Device.Port
	if cfg.Device.Simulate {
		opener = scale.SimulatedOpener{}
		devicePath = scale.SimulatedPath
	}
	adapter := scale.NewAdapter(opener, m)
	adapter.Subscribe(pub.WeightChanged)
	if err := adapter.Open(devicePath); err != nil {
		logger.Warn("Weight device unavailable, continuing without live weight", "device", devicePath, "error", err)
	}
	defer adapter.Close()

	// Initialize Services
	snapshots := service.NewSnapshots(store.PendingRepository, store.CompletedRepository, pub)
	weighmentSvc := service.NewWeighmentService(
		store.PendingRepository,
		store.CompletedRepository,
		images,
		pub,
		service.WithLocation(cfg.Location()),
		service.WithMetrics(m),
		service.WithSnapshots(snapshots),
	)
	adminSvc := service.NewAdminService(
		loginChecker,
		actionChecker,
		store.AdminRepository,
		snapshots,
	)
	deviceSvc := service.NewDeviceService(adapter, pub)

	// Initialize handlers
	gateway := ws.NewGateway(weighmentSvc, adminSvc, hub, adapter, m)
	apiHandler := httpapi.NewAPIHandler(adminSvc, deviceSvc, store.AdminRepository, hub, httpapi.ServerInfo{
		Host:    cfg.Server.Host,
		Port:    cfg.Server.Port,
		BaseURL: cfg.GetBaseURL(),
	})
	router := httpapi.NewRouter(httpapi.RouterConfig{
		API:       apiHandler,
		Images:    images,
		WebSocket: gateway,
		Metrics:   m,
		WebRoot:   cfg.Server.WebRoot,
		AccessLog: os.Stdout,
	})

	// Bind before starting anything else so a busy port fails fast.
	lis, err := net.Listen("tcp", cfg.GetServerAddress())
	if err != nil {
		logger.Error("Failed to listen", "error", err, "address", cfg.GetServerAddress())
		log.Fatalf("Failed to listen on %s (is another instance running?): %v", cfg.GetServerAddress(), err)
	}

	srv := &http.Server{
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Day-start jobs
	jobRunner := jobs.NewJobRunner(&jobs.Services{Weighment: weighmentSvc, Admin: adminSvc}, cfg)
	cronScheduler := scheduler.NewScheduler(jobRunner)
	cronScheduler.Start()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("HTTP server listening", "address", cfg.GetServerAddress(), "base_url", cfg.GetBaseURL())
		if err := srv.Serve(lis); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		cronScheduler.Stop()
		hub.Close()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("Server stopped. Goodbye!")
}

// openDatabase retries the initial ping so the server can start alongside its database.
func openDatabase(ctx context.Context, cfg *config.Config) (*sql.DB, error) {
	logger.Debug("Connecting to database...", "connection_string", fmt.Sprintf("%s@%s:%d/%s", cfg.Database.User, cfg.Database.Host, cfg.Database.Port, cfg.Database.Database))
	db, err := sql.Open("postgres", cfg.GetDatabaseConnectionString())
	if err != nil {
		return nil, err
	}

	for attempt := 1; ; attempt++ {
		err = db.PingContext(ctx)
		if err == nil {
			logger.Info("Database connection established", "attempt", attempt)
			return db, nil
		}
		if attempt == dbConnectAttempts {
			break
		}
		logger.Warn("Database not ready, retrying", "attempt", attempt, "error", err)
		select {
		case <-ctx.Done():
			db.Close()
			return nil, ctx.Err()
		case <-time.After(dbConnectDelay):
		}
	}
	db.Close()
	return nil, fmt.Errorf("database unreachable after %d attempts: %w", dbConnectAttempts, err)
}
