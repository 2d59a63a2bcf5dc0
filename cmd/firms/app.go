package main

import (
	"context"
	"fmt"
	"io"

	"github.com/JustJay7/fir-manager/internal/ai"
	"github.com/JustJay7/fir-manager/internal/api"
	"github.com/JustJay7/fir-manager/internal/cache"
	"github.com/JustJay7/fir-manager/internal/config"
	"github.com/JustJay7/fir-manager/internal/database"
	"github.com/JustJay7/fir-manager/internal/directory"
	"github.com/JustJay7/fir-manager/internal/events"
	"github.com/JustJay7/fir-manager/internal/fir"
	"github.com/JustJay7/fir-manager/internal/legal"
	"github.com/JustJay7/fir-manager/internal/notify"
	"github.com/JustJay7/fir-manager/internal/records"
	"github.com/JustJay7/fir-manager/internal/report"
	"github.com/JustJay7/fir-manager/internal/storage"
	"github.com/JustJay7/fir-manager/pkg/logger"
	"gorm.io/gorm"
)

// base is what every command needs: configuration, logging and the database
type base struct {
	cfg *config.Config
	log *logger.Logger
	db  *gorm.DB
}

func openBase() (*base, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	log, err := logger.NewLogger(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	db, err := database.Initialize(cfg.DatabaseDriver, cfg.DSN())
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return &base{cfg: cfg, log: log, db: db}, nil
}

func (b *base) close() {
	if sqlDB, err := b.db.DB(); err == nil {
		sqlDB.Close()
	}
	b.log.Sync()
}

// services is the fully wired application
type services struct {
	deps    api.Deps
	firs    *fir.Service
	closers map[string]io.Closer
}

func wire(ctx context.Context, b *base) (*services, error) {
	cfg, log := b.cfg, b.log

	var publisher events.Publisher = events.Nop{}
	if len(cfg.KafkaBrokers) > 0 {
		publisher = events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, log)
		log.Info("Publishing FIR events", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
	}

	store, err := openStore(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	catalog := legal.DefaultCatalog()
	if cfg.LegalCatalogPath != "" {
		if catalog, err = legal.LoadCatalog(cfg.LegalCatalogPath); err != nil {
			return nil, err
		}
	}

	aiService := ai.New(ctx, ai.Options{
		BaseURL:      cfg.AIServiceURL,
		TranslateURL: cfg.TranslateURL,
		Timeout:      cfg.AITimeout,
	}, log.With("component", "ai"))

	notifier := notify.New(b.db, publisher, log)
	dashboards := cache.New[*fir.Dashboard](cfg.CacheSize, cfg.CacheTTL)
	firs := fir.NewService(b.db, notifier, publisher, dashboards, log)

	recorder := records.NewRecorder(b.db, records.Options{
		Store:         store,
		Transcriber:   aiService,
		Extractor:     aiService,
		Notifier:      notifier,
		MaxUploadSize: cfg.MaxUploadSize,
	}, log)

	generator := legal.NewGenerator(b.db, aiService, aiService, catalog, cfg.TargetLanguage, publisher, log)

	closers := map[string]io.Closer{
		"ai service":      aiService,
		"event publisher": publisher,
	}

	deps := api.Deps{
		DB:       b.db,
		FIRs:     firs,
		Records:  recorder,
		Legal:    generator,
		Notifier: notifier,
		Stations: directory.Stations(b.db, log),
		Users:    directory.Users(b.db, log),
		AI:       aiService,
		Logger:   log,
	}
	if cfg.PDFEnabled {
		pdf := report.NewPDFRenderer(cfg.PDFBrowserPath, 0, log.With("component", "pdf"))
		deps.PDF = pdf
		closers["pdf renderer"] = pdf
	}

	return &services{deps: deps, firs: firs, closers: closers}, nil
}

func openStore(ctx context.Context, cfg *config.Config, log *logger.Logger) (storage.Store, error) {
	if cfg.StorageBackend == "s3" {
		client, err := storage.NewS3Client(ctx)
		if err != nil {
			return nil, err
		}
		log.Info("Storing evidence in S3", "bucket", cfg.S3Bucket, "prefix", cfg.S3Prefix)
		return storage.NewS3(client, cfg.S3Bucket, cfg.S3Prefix, log), nil
	}
	return storage.NewLocal(cfg.MediaRoot, log)
}
