package main

import (
	"context"
	"flag"
	"log"
	"os"

	"steptree/internal/config"
	models "steptree/internal/domain/models/querytree"
	"steptree/internal/repository/postgres"
	pgquerytree "steptree/internal/repository/postgres/querytree"
	"steptree/internal/seed"

	"github.com/joho/godotenv"
)

func main() {
	// Parse command-line flags
	dropTables := flag.Bool("drop-tables", false, "Drop all tables before seeding (fresh start)")
	schemaOnly := flag.Bool("schema-only", false, "Only set up schema, don't seed steps")
	clearData := flag.Bool("clear-data", false, "Clear all steps, substeps and tasks (keep schema)")
	fixturePath := flag.String("fixture", "", "YAML file with the step hierarchy (default: built-in sample)")
	flag.Parse()

	// Load .env file
	_ = godotenv.Load()

	// Load configuration
	cfg := config.Load()

	// SAFETY: Prevent destructive operations in production
	if cfg.Environment == "prod" && (*dropTables || *clearData) {
		log.Fatalf("🚫 BLOCKED: Cannot run destructive operations (--drop-tables or --clear-data) in production environment")
	}

	if cfg.DatabaseURL == "" {
		log.Fatalf("DATABASE_URL is required")
	}

	logger, closer, err := config.NewLogger(cfg, "seed")
	if err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}
	defer closer.Close()

	if *clearData {
		log.Printf("🧹 Clearing data only (environment: %s, prefix: %s)", cfg.Environment, cfg.TablePrefix)
	} else if *schemaOnly {
		log.Printf("🏗️  Setting up schema only (environment: %s, prefix: %s)", cfg.Environment, cfg.TablePrefix)
	} else {
		log.Printf("🌱 Seeding database (environment: %s, prefix: %s)", cfg.Environment, cfg.TablePrefix)
	}

	// Create database connection pool
	ctx := context.Background()
	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	repoConfig := &postgres.RepositoryConfig{
		Pool:   pool,
		Tables: postgres.NewTableNames(cfg.TablePrefix),
		Logger: logger,
	}

	// Drop tables if requested
	if *dropTables {
		log.Println("🗑️  Dropping all tables...")
		if err := pgquerytree.DropSchema(ctx, repoConfig); err != nil {
			log.Fatalf("Failed to drop tables: %v", err)
		}
		log.Println("✅ Tables dropped")
	}

	// Run schema to ensure tables exist
	log.Println("📋 Ensuring database schema is up to date...")
	if err := pgquerytree.EnsureSchema(ctx, repoConfig); err != nil {
		log.Fatalf("Failed to run schema: %v", err)
	}
	log.Println("✅ Schema ready")

	if *schemaOnly {
		log.Println("✅ Schema setup complete (schema-only mode)")
		return
	}

	stepRepo := pgquerytree.NewStepRepository(repoConfig)
	txManager := postgres.NewTransactionManager(repoConfig)

	var steps []models.Step
	if !*clearData {
		steps, err = loadSteps(*fixturePath)
		if err != nil {
			log.Fatalf("Failed to load fixture: %v", err)
		}
	}

	// ReplaceAll with no steps leaves the tables empty
	err = txManager.ExecTx(ctx, func(ctx context.Context) error {
		return stepRepo.ReplaceAll(ctx, steps)
	})
	if err != nil {
		log.Fatalf("Failed to write steps: %v", err)
	}

	if *clearData {
		log.Println("✅ Data cleared successfully")
		return
	}

	for i, step := range steps {
		taskCount := 0
		for _, sub := range step.Substeps {
			taskCount += len(sub.Tasks)
		}
		log.Printf("✅ Seeded step %d/%d: %s (substeps: %d, tasks: %d)",
			i+1, len(steps), step.ID, len(step.Substeps), taskCount)
	}

	log.Println("🎉 Seeding complete!")
}

func loadSteps(path string) ([]models.Step, error) {
	if path == "" {
		return seed.DefaultSteps()
	}
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}
	return seed.LoadSteps(path)
}
