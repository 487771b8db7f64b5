package main

import (
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/lib/pq"

	"weighbridge-server/internal/config"
	"weighbridge-server/internal/jobs"
	"weighbridge-server/internal/logger"
	"weighbridge-server/internal/realtime"
	"weighbridge-server/internal/repository/postgres"
	"weighbridge-server/internal/scheduler"
	"weighbridge-server/internal/security"
	"weighbridge-server/internal/service"
	"weighbridge-server/internal/storage"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	runOnce := flag.String("run-once", "", "Run a specific job once and exit (e.g., 'reset-serials', 'day-rollover', 'all-daily')")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting Weighbridge Cronjob Runner...", "log_level", cfg.Log.Level)

	// Initialize Database
	logger.Info("Connecting to database...", "host", cfg.Database.Host, "port", cfg.Database.Port)
	db, err := sql.Open("postgres", cfg.GetDatabaseConnectionString())
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Test database connection
	if err := db.Ping(); err != nil {
		logger.Error("Failed to ping database", "error", err)
		log.Fatalf("Failed to ping database: %v", err)
	}
	logger.Info("Database connection established")

	// Initialize Repositories
	store := postgres.NewStore(db)

	images, err := storage.NewLocalImageStore(cfg.Storage.UploadDir)
	if err != nil {
		log.Fatalf("Failed to initialize image storage: %v", err)
	}
	loginChecker, err := security.NewSecretChecker(cfg.Admin.LoginPassword)
	if err != nil {
		log.Fatalf("Failed to initialize admin login: %v", err)
	}
	actionChecker, err := security.NewSecretChecker(cfg.Admin.ActionSecret)
	if err != nil {
		log.Fatalf("Failed to initialize admin action secret: %v", err)
	}

	// This process has no sessions of its own; connected operators pick up
	// changes on their next server broadcast.
	pub := realtime.NewPublisher(realtime.NewHub(nil))

	snapshots := service.NewSnapshots(store.PendingRepository, store.CompletedRepository, pub)

	// Initialize Services
	jobServices := &jobs.Services{
		Weighment: service.NewWeighmentService(
			store.PendingRepository,
			store.CompletedRepository,
			images,
			pub,
			service.WithLocation(cfg.Location()),
			service.WithSnapshots(snapshots),
		),
		Admin: service.NewAdminService(
			loginChecker,
			actionChecker,
			store.AdminRepository,
			snapshots,
		),
	}

	// Initialize Job Runner
	jobRunner := jobs.NewJobRunner(jobServices, cfg)

	// Check if running a single job
	if *runOnce != "" {
		logger.Info("Running job once", "job", *runOnce)
		runJobOnce(jobRunner, *runOnce)
		logger.Info("Job execution completed", "job", *runOnce)
		return
	}

	// Initialize Scheduler
	cronScheduler := scheduler.NewScheduler(jobRunner)

	// Start scheduler
	cronScheduler.Start()
	logger.Info("Cronjob scheduler is running. Press Ctrl+C to stop.")

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	// Graceful shutdown
	logger.Info("Shutting down cronjob scheduler...")
	cronScheduler.Stop()
	logger.Info("Cronjob scheduler stopped. Goodbye!")
}

// runJobOnce runs a specific job once and exits
func runJobOnce(jobRunner *jobs.JobRunner, jobName string) {
	switch jobName {
	case "reset-serials":
		jobRunner.ResetSerials()
	case "day-rollover":
		jobRunner.DayRollover()
	case "all-daily":
		jobRunner.RunAllDailyJobs()
	default:
		logger.Error("Unknown job name", "job", jobName)
		fmt.Printf("Available jobs:\n")
		fmt.Printf("  - reset-serials\n")
		fmt.Printf("  - day-rollover\n")
		fmt.Printf("  - all-daily\n")
		os.Exit(1)
	}
}
