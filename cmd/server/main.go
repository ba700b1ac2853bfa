package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Skufu/healthdesk/internal/chat"
	"github.com/Skufu/healthdesk/internal/config"
	"github.com/Skufu/healthdesk/internal/db"
	"github.com/Skufu/healthdesk/internal/faq"
	"github.com/Skufu/healthdesk/internal/lexical"
	"github.com/Skufu/healthdesk/internal/logging"
	"github.com/Skufu/healthdesk/internal/metrics"
	"github.com/Skufu/healthdesk/internal/risk"
	"github.com/Skufu/healthdesk/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	gin.SetMode(cfg.GinMode)

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer logger.Sync()

	ctx := context.Background()
	var database *db.DB
	if cfg.EnableDB {
		database, err = db.New(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Fatal("database connection failed", zap.Error(err))
		}
		defer database.Close()

		if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
			logger.Fatal("database migration failed", zap.Error(err))
		}
	}

	deps := initialize(ctx, cfg, database, logger)
	router := server.NewRouter(deps)
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	logger.Info("server listening", zap.String("port", cfg.Port))
	waitForShutdown(srv, logger)
}

// initialize loads the FAQ corpus, builds the lexical index and loads the
// classifier. It runs to completion before the server accepts requests.
// Failures disable the affected capability instead of stopping the process.
func initialize(ctx context.Context, cfg *config.Config, database *db.DB, logger *zap.Logger) server.Deps {
	deps := server.Deps{
		Logger:           logger,
		StaticRoot:       cfg.StaticRoot,
		CORSOrigins:      cfg.CORSOrigins,
		MaxMessageLength: cfg.MaxMessageLength,
	}
	if database != nil {
		deps.DB = database
	}

	entries, err := loadCorpus(ctx, cfg, database)
	if err != nil {
		logger.Error("faq corpus not loaded", zap.String("source", cfg.FAQSource), zap.Error(err))
	}

	var searcher chat.Searcher
	index, err := lexical.Build(entries)
	if err != nil {
		logger.Error("faq index not built; chatbot limited to greetings and fallback", zap.Error(err))
	} else {
		searcher = index
		deps.IndexReady = true
		deps.FAQCount = index.Len()
		logger.Info("faq index built",
			zap.Int("entries", index.Len()),
			zap.Int("vocabulary", index.VocabularySize()),
		)
	}
	metrics.FAQEntries.Set(float64(deps.FAQCount))
	deps.Matcher = chat.NewMatcher(searcher, chat.RandomSelector{})

	var classifier risk.Classifier
	model, err := risk.LoadModel(cfg.ModelPath)
	if err != nil {
		logger.Warn("risk model not loaded; /predict will return 503", zap.String("path", cfg.ModelPath), zap.Error(err))
	} else {
		classifier = model
		logger.Info("risk model loaded", zap.String("path", cfg.ModelPath))
	}
	deps.Assessor = risk.NewAssessor(classifier)

	return deps
}

func loadCorpus(ctx context.Context, cfg *config.Config, database *db.DB) ([]faq.Entry, error) {
	if cfg.FAQSource == config.FAQSourcePostgres && database != nil {
		ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		return database.FAQEntries(ctx)
	}
	return faq.Load(cfg.FAQPath)
}

func waitForShutdown(srv *http.Server, logger *zap.Logger) {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}
