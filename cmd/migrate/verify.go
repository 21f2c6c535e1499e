package main

import (
	"fmt"
	"net/url"

	"github.com/buildtrack/buildtrack/internal/infrastructure/database"
)

// verifyDatabase checks that the configured database is reachable and, for
// PostgreSQL (Supabase included), that the schema can be created there.
func verifyDatabase(db *database.DB) error {
	if err := db.Ping(); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	fmt.Println("✓ database reachable")

	if !db.IsPostgres() {
		fmt.Println("✓ SQLite database, nothing else to check")
		return nil
	}

	var version string
	if err := db.Raw("SELECT version()").Scan(&version).Error; err != nil {
		return fmt.Errorf("reading server version: %w", err)
	}
	fmt.Printf("✓ %s\n", version)

	checks := []struct {
		name  string
		query string
	}{
		{"uuid generation", "SELECT gen_random_uuid()"},
		{"jsonb", `SELECT '{"ok": true}'::jsonb`},
		{"full text search", "SELECT to_tsvector('english', 'framing inspection')"},
	}
	failed := 0
	for _, check := range checks {
		var out string
		if err := db.Raw(check.query).Scan(&out).Error; err != nil {
			fmt.Printf("✗ %s: %v\n", check.name, err)
			failed++
			continue
		}
		fmt.Printf("✓ %s\n", check.name)
	}

	const scratch = "buildtrack_verify_scratch"
	if err := db.Exec("CREATE TABLE IF NOT EXISTS " + scratch + " (id UUID PRIMARY KEY)").Error; err != nil {
		fmt.Printf("✗ create table: %v\n", err)
		failed++
	} else {
		db.Exec("DROP TABLE IF EXISTS " + scratch)
		fmt.Println("✓ create table")
	}

	var hasAuthSchema bool
	if err := db.Raw("SELECT EXISTS(SELECT 1 FROM information_schema.schemata WHERE schema_name = 'auth')").Scan(&hasAuthSchema).Error; err == nil && hasAuthSchema {
		fmt.Println("✓ Supabase auth schema detected")
	}

	if sqlDB, err := db.DB.DB(); err == nil {
		stats := sqlDB.Stats()
		fmt.Printf("  pool: max_open=%d open=%d in_use=%d idle=%d\n",
			stats.MaxOpenConnections, stats.OpenConnections, stats.InUse, stats.Idle)
	}

	if failed > 0 {
		return fmt.Errorf("%d check(s) failed", failed)
	}
	return nil
}

// maskDatabaseURL hides the password of a connection URL.
func maskDatabaseURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.User == nil {
		return raw
	}
	if _, ok := u.User.Password(); ok {
		u.User = url.UserPassword(u.User.Username(), "***")
	}
	return u.String()
}
