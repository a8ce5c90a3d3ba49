package main

import (
	"fmt"
	"log"

	"tripfolio/internal/config"
	"tripfolio/internal/email/noop"
	"tripfolio/internal/email/ses"
	"tripfolio/internal/extractor"
	"tripfolio/internal/extractor/claude"
	"tripfolio/internal/extractor/gemini"
	"tripfolio/internal/handler"
	"tripfolio/internal/normalize"
	"tripfolio/internal/port"
	"tripfolio/internal/repository/postgres"
	"tripfolio/internal/router"
	"tripfolio/internal/service"
	s3storage "tripfolio/internal/storage/s3"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	db, err := postgres.NewDB(&cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	// Initialize repositories
	tripRepo := postgres.NewTripRepo(db)

	// Initialize storage
	s3Client, err := s3storage.NewS3Client(&cfg.S3)
	if err != nil {
		return fmt.Errorf("failed to initialize S3 client: %w", err)
	}

	// Initialize extraction providers
	extractor.RegisterProvider("claude", func(c *config.ExtractorProviderConfig) (port.DocumentExtractor, error) {
		return claude.NewExtractor(c), nil
	})
	extractor.RegisterProvider("gemini", func(c *config.ExtractorProviderConfig) (port.DocumentExtractor, error) {
		return gemini.NewExtractor(c), nil
	})

	docExtractor, err := buildExtractor(&cfg.Extractor)
	if err != nil {
		return fmt.Errorf("failed to initialize extractor: %w", err)
	}

	emailSender, err := buildEmailSender(&cfg.Email)
	if err != nil {
		return fmt.Errorf("failed to initialize email sender: %w", err)
	}

	// Initialize pipeline components
	dispatcher := extractor.NewDispatcher(docExtractor, cfg.Ingest.BatchSize)
	normalizer := normalize.NewNormalizer(normalize.NewFilenameNameExtractor())
	linker := service.NewAttachmentLinker(s3Client, cfg.S3.Bucket)

	// Initialize services
	ingestSvc := service.NewIngestService(tripRepo, dispatcher, normalizer, linker, emailSender, cfg.Ingest.MaxDocuments)
	tripSvc := service.NewTripService(tripRepo, s3Client, cfg.S3.Bucket, cfg.S3.PresignExpiry)

	// Initialize handlers
	ingestH := handler.NewIngestHandler(ingestSvc, cfg.S3.MaxFileSizeMB)
	tripH := handler.NewTripHandler(tripSvc)
	healthH := handler.NewHealthHandler(db)

	// Setup router
	r := router.Setup(ingestH, tripH, healthH, cfg.CORS.AllowedOrigins)

	log.Printf("Server starting on %s", cfg.Server.Port)
	if err := r.Run(cfg.Server.Port); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}

	return nil
}

// buildExtractor wires the primary provider, adding the secondary behind a
// rate-limit-aware fallback when one is configured.
func buildExtractor(cfg *config.ExtractorConfig) (port.DocumentExtractor, error) {
	primary, err := extractor.NewExtractor(&cfg.Primary)
	if err != nil {
		return nil, err
	}

	secondaryCfg := cfg.SecondaryConfig()
	if secondaryCfg == nil {
		return primary, nil
	}

	secondary, err := extractor.NewExtractor(secondaryCfg)
	if err != nil {
		return nil, err
	}

	log.Printf("extraction fallback enabled: %s -> %s", cfg.Primary.Provider, secondaryCfg.Provider)
	return extractor.NewFallbackExtractor(
		[]port.DocumentExtractor{primary, secondary},
		[]string{cfg.Primary.Provider, secondaryCfg.Provider},
	), nil
}

func buildEmailSender(cfg *config.EmailConfig) (port.EmailSender, error) {
	switch cfg.Provider {
	case "ses":
		return ses.NewSESSender(cfg.Region, cfg.FromAddress, cfg.FromName)
	default:
		return noop.NewNoopSender(), nil
	}
}
