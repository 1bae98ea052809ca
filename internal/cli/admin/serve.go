package admin

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/spf13/cobra"

	"github.com/veridex-labs/veridex/internal/api/handlers"
	"github.com/veridex-labs/veridex/internal/config"
	"github.com/veridex-labs/veridex/internal/database"
	"github.com/veridex-labs/veridex/internal/jobs"
	"github.com/veridex-labs/veridex/internal/ocr"
	"github.com/veridex-labs/veridex/internal/parser"
	"github.com/veridex-labs/veridex/internal/repository"
	"github.com/veridex-labs/veridex/internal/server"
	"github.com/veridex-labs/veridex/internal/service"
	"github.com/veridex-labs/veridex/internal/telemetry"
	"github.com/veridex-labs/veridex/internal/vectorindex"
)

// ServeCmd returns the serve command
func ServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		Long:  "Start the veridex API server on the specified port",
		RunE:  runServe,
	}

	cmd.Flags().StringP("port", "p", "8080", "Port to listen on")
	cmd.Flags().Bool("no-migrate", false, "Skip automatic database migrations on startup")

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize Sentry with tracing if SENTRY_DSN is set
	if dsn := os.Getenv("SENTRY_DSN"); dsn != "" {
		environment := os.Getenv("ENVIRONMENT")
		if environment == "" {
			environment = "development"
		}

		// Default to 10% sampling in production, 100% in development
		sampleRate := 0.1
		if environment == "development" {
			sampleRate = 1.0
		}

		shutdownTelemetry, err := telemetry.Init(telemetry.Config{
			DSN:              dsn,
			Environment:      environment,
			TracesSampleRate: sampleRate,
		})
		if err != nil {
			log.Printf("telemetry init failed (continuing without tracing): %v", err)
		} else {
			defer shutdownTelemetry()
		}
	}

	portFlag, _ := cmd.Flags().GetString("port")
	if portFlag != "" && portFlag != "8080" {
		cfg.Port = portFlag
	}

	var docs service.DocumentStoreInterface
	var mirror service.ChunkMirrorInterface
	if cfg.HasDatabase() {
		pool, err := database.NewPool(ctx, cfg.DatabaseURL, database.Config{
			MaxConns: cfg.DBMaxConns,
			MinConns: cfg.DBMinConns,
		})
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer pool.Close()
		log.Println("connected to database")

		noMigrate, _ := cmd.Flags().GetBool("no-migrate")
		if !noMigrate {
			if err := runMigrations(cfg.DatabaseURL); err != nil {
				return fmt.Errorf("failed to run migrations: %w", err)
			}
		}

		docs = repository.NewDocumentRepository(pool)
		mirror = repository.NewChunkMirrorRepository(pool)
	} else {
		log.Println("no DATABASE_URL set, document records are in-memory only")
		docs = repository.NewMemoryDocumentRepository()
	}

	provider, err := buildProvider(cfg)
	if err != nil {
		return err
	}
	log.Printf("embedding provider: %s (dimension %d)", cfg.EmbeddingBackend(), provider.Dimension())

	ix, err := buildIndex(ctx, cfg, provider.Dimension())
	if err != nil {
		return err
	}

	registry := parser.NewRegistry(ocr.NewEngine(cfg.HasOCR()))

	ingestSvc := service.NewIngestService(registry, provider, ix, docs, mirror, service.ChunkingConfig{
		MaxChars: cfg.ChunkMaxChars,
		Overlap:  cfg.ChunkOverlap,
	})
	searchSvc := service.NewSearchService(provider, ix)
	adminSvc := service.NewAdminService(docs, ix)

	var snapshotter *jobs.Snapshotter
	if ix.Persistent() && cfg.SnapshotInterval > 0 {
		snapshotter = jobs.NewSnapshotter(ix, time.Duration(cfg.SnapshotInterval)*time.Second)
		go snapshotter.Run(ctx)
	}

	router := server.NewRouter(server.RouterConfig{
		DocumentHandler: handlers.NewDocumentHandler(ingestSvc, adminSvc),
		SearchHandler:   handlers.NewSearchHandler(searchSvc),
		AdminHandler:    handlers.NewAdminHandler(adminSvc),
		MaxBodyBytes:    cfg.MaxUploadBytes,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Printf("starting server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("shutting down...")

	if snapshotter != nil {
		snapshotter.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	// final snapshot so nothing indexed since the last poll is lost
	if ix.Persistent() && ix.Dirty() {
		if err := ix.Save(shutdownCtx); err != nil {
			log.Printf("final snapshot failed: %v", err)
		}
	}

	log.Println("server exited")
	return nil
}

func runMigrations(databaseURL string) error {
	// Create a sql.DB connection for golang-migrate
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database for migrations: %w", err)
	}
	defer db.Close()

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		"file://migrations",
		"postgres",
		driver,
	)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	err = m.Up()
	if err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil && err != migrate.ErrNilVersion {
		return fmt.Errorf("failed to get migration version: %w", err)
	}

	if err == migrate.ErrNilVersion {
		log.Println("migrations: database is up to date (no migrations applied)")
	} else if dirty {
		return fmt.Errorf("migration version %d is dirty - manual intervention required", version)
	} else if err == migrate.ErrNoChange {
		log.Printf("migrations: database is up to date (version %d)", version)
	} else {
		log.Printf("migrations: applied successfully (version %d)", version)
	}

	return nil
}

// buildIndex constructs the vector index with persistence and restores the
// latest snapshot. A corrupt snapshot is logged and skipped; the server
// starts with an empty index rather than refusing to boot.
func buildIndex(ctx context.Context, cfg *config.Config, dim int) (*vectorindex.Index, error) {
	persistence := &vectorindex.Persistence{Dir: cfg.IndexDir}

	if cfg.HasS3() {
		s3Client, err := storageClient(ctx, cfg)
		if err != nil {
			return nil, err
		}
		persistence.Remote = s3Client
		log.Printf("S3 snapshot mirror enabled (bucket %q)", cfg.S3Bucket)
	}

	ix, err := vectorindex.New(dim,
		vectorindex.WithPersistence(persistence),
		vectorindex.WithOverfetchMultiplier(cfg.OverfetchMultiplier),
	)
	if err != nil {
		return nil, err
	}

	if err := ix.Load(ctx); err != nil {
		log.Printf("snapshot load failed, starting with empty index: %v", err)
	} else if ix.Len() > 0 {
		log.Printf("restored %d chunks from snapshot", ix.Len())
	}
	return ix, nil
}
