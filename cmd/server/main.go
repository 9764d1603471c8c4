package main

import (
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/fm-dev-mx/real-estate-insights/config"
	"github.com/fm-dev-mx/real-estate-insights/internal/api"
	"github.com/fm-dev-mx/real-estate-insights/internal/database"
	"github.com/fm-dev-mx/real-estate-insights/internal/fixes"
	"github.com/fm-dev-mx/real-estate-insights/internal/ingest"
	"github.com/fm-dev-mx/real-estate-insights/internal/processor"
	"github.com/fm-dev-mx/real-estate-insights/internal/queue"
	"github.com/fm-dev-mx/real-estate-insights/internal/scheduler"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	// Local overrides are optional; the environment wins either way
	if err := godotenv.Load(); err == nil {
		logger.Info("Loaded environment from .env file")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.WithError(err).Fatal("Failed to load configuration")
	}

	for _, dir := range []string{
		filepath.Dir(cfg.Paths.DatabasePath),
		cfg.Paths.InventoryDir,
		cfg.Paths.DocumentDir,
		cfg.Paths.ReportDir,
	} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			logger.WithError(err).Fatalf("Failed to create directory %s", dir)
		}
	}

	logger.Infof("Using database at: %s", cfg.Paths.DatabasePath)
	db, err := database.NewDatabase(cfg.Paths.DatabasePath, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize database")
	}
	defer db.Close()

	logger.Info("Running database migrations...")
	if err := db.RunMigrations(); err != nil {
		logger.WithError(err).Fatal("Failed to run database migrations")
	}

	// Second handle on the same file for the batch upsert path
	gormDB, err := gorm.Open(sqlite.Open(cfg.Paths.DatabasePath), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		logger.WithError(err).Fatal("Failed to open gorm connection")
	}

	propertyQueue := queue.NewPropertyQueue(cfg.BatchProcessing.QueueSize, logger)
	batchProcessor := processor.NewBatchProcessor(gormDB, propertyQueue, cfg, logger)
	batchProcessor.Start()
	propertyQueue.Start()

	pipeline := ingest.NewPipeline(propertyQueue, cfg, logger)

	ingestScheduler := scheduler.NewScheduler(pipeline, cfg.Ingestion.ScanIntervalMinutes, logger)
	ingestScheduler.Start()

	workflow := fixes.NewWorkflow(db, fixes.StubExtractor{}, cfg.Paths.DocumentDir, logger)

	router := gin.Default()
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept"},
		MaxAge:       12 * time.Hour,
	}))

	api.SetupRoutes(router, db, workflow, pipeline, cfg, logger)

	go func() {
		logger.Infof("Starting server on port %s", cfg.Server.Port)
		if err := router.Run(":" + cfg.Server.Port); err != nil {
			logger.WithError(err).Fatal("Server failed to start")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down")
	ingestScheduler.Stop()
	propertyQueue.Close()
	batchProcessor.Stop()
}
