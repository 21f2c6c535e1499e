package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/buildtrack/buildtrack/internal/app/config"
	"github.com/buildtrack/buildtrack/internal/infrastructure/database"
	"github.com/buildtrack/buildtrack/internal/infrastructure/database/models"
	"github.com/buildtrack/buildtrack/pkg/logger"
)

var log = logger.NewWithLevel(logger.ParseLevel(os.Getenv("LOG_LEVEL")))

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// openDB loads the configuration and connects to its database. The caller must defer db.Close().
func openDB() (*database.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	log.Info("Connecting to database", "url", maskDatabaseURL(cfg.GetDatabaseURL()))
	db, err := database.New(cfg.GetDatabaseURL())
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}
	return db, nil
}

// withDB runs fn against a freshly opened database.
func withDB(fn func(db *database.DB) error) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()
		return fn(db)
	}
}

var rootCmd = &cobra.Command{
	Use:          "migrate",
	Short:        "Manage the BuildTrack database schema",
	SilenceUsage: true,
}

var upCmd = &cobra.Command{
	Use:   "up",
	Short: "Create or update all tables and indexes",
	RunE:  withDB(runMigrations),
}

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Drop all tables and recreate them",
	RunE:  withDB(resetDatabase),
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show which tables exist",
	RunE:  withDB(migrationStatus),
}

var seedFile string

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed users, vendors, properties and milestones",
	RunE: withDB(func(db *database.DB) error {
		fixtures, err := loadFixtures(seedFile)
		if err != nil {
			return err
		}
		return seedDatabase(db, fixtures)
	}),
}

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Check connectivity and the PostgreSQL features the schema needs",
	RunE:  withDB(verifyDatabase),
}

func init() {
	seedCmd.Flags().StringVarP(&seedFile, "file", "f", "", "YAML fixture file (built-in defaults when empty)")
	rootCmd.AddCommand(upCmd, resetCmd, statusCmd, seedCmd, verifyCmd)
}

func runMigrations(db *database.DB) error {
	log.Info("Running database migrations...")

	if err := db.AutoMigrate(models.GetAllModels()...); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	if err := createIndexes(db); err != nil {
		return err
	}

	log.Info("Database migrations completed successfully")
	return nil
}

func resetDatabase(db *database.DB) error {
	log.Info("Resetting database...")

	// Dependents first so foreign keys never block a drop.
	all := models.GetAllModels()
	for i := len(all) - 1; i >= 0; i-- {
		if err := db.Migrator().DropTable(all[i]); err != nil {
			return fmt.Errorf("dropping table: %w", err)
		}
	}

	if err := runMigrations(db); err != nil {
		return err
	}

	log.Info("Database reset completed")
	return nil
}

func migrationStatus(db *database.DB) error {
	missing := 0
	for _, model := range models.GetAllModels() {
		stmt := db.Model(model).Statement
		if err := stmt.Parse(model); err != nil {
			return fmt.Errorf("parsing model: %w", err)
		}
		status := "exists"
		if !db.Migrator().HasTable(model) {
			status = "missing"
			missing++
		}
		fmt.Printf("%-24s %s\n", stmt.Schema.Table, status)
	}

	if missing > 0 {
		fmt.Printf("\n%d table(s) missing, run `migrate up`\n", missing)
	}
	return nil
}

func createIndexes(db *database.DB) error {
	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_documents_property_latest ON documents(property_id, is_latest_version)",
		"CREATE INDEX IF NOT EXISTS idx_documents_created_at ON documents(created_at)",
		"CREATE INDEX IF NOT EXISTS idx_activities_property_created ON activities(property_id, created_at)",
		"CREATE INDEX IF NOT EXISTS idx_audit_logs_created_at ON audit_logs(created_at)",
		"CREATE INDEX IF NOT EXISTS idx_document_shares_expires_at ON document_shares(expires_at)",
	}
	if db.IsPostgres() {
		indexes = append(indexes,
			"CREATE INDEX IF NOT EXISTS idx_documents_text_gin ON documents USING gin(to_tsvector('english', name || ' ' || coalesce(description, '')))",
		)
	}

	for _, indexSQL := range indexes {
		if err := db.Exec(indexSQL).Error; err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}

	return nil
}
