package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/kapu/ai-demo-hub/internal/service/database"
	"github.com/kapu/ai-demo-hub/internal/util"
	"go.uber.org/zap"
)

// CLI flags (defaults come from the same env vars the server reads)
var (
	dryRun  = flag.Bool("dry-run", false, "Print the schema without touching the database")
	dbHost  = flag.String("db-host", "", "PostgreSQL host (POSTGRES_HOST)")
	dbPort  = flag.Int("db-port", 0, "PostgreSQL port (POSTGRES_PORT)")
	dbUser  = flag.String("db-user", "", "PostgreSQL user (POSTGRES_USER)")
	dbPass  = flag.String("db-pass", "", "PostgreSQL password (POSTGRES_PASSWORD)")
	dbName  = flag.String("db-name", "", "PostgreSQL database (POSTGRES_DB)")
	verbose = flag.Bool("verbose", false, "Debug logging")
)

func main() {
	_ = godotenv.Load()
	flag.Parse()

	level := "info"
	if *verbose {
		level = "debug"
	}
	logger, err := util.NewLogger(level, "")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if *dryRun {
		if err := printSchema(os.Stdout); err != nil {
			logger.Error("Failed to print schema", zap.Error(err))
			os.Exit(1)
		}
		return
	}

	cfg := postgresConfig(os.Getenv)

	postgres, err := database.NewPostgresService(cfg, logger)
	if err != nil {
		logger.Error("Failed to connect", zap.Error(err))
		os.Exit(1)
	}
	defer postgres.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := postgres.Migrate(ctx); err != nil {
		logger.Error("Migration failed", zap.Error(err))
		os.Exit(1)
	}
	logger.Info("Migration complete", zap.String("database", cfg.Database))
}

// postgresConfig resolves each setting from its flag, then the environment, then a default.
func postgresConfig(getenv func(string) string) database.PostgresConfig {
	return database.PostgresConfig{
		Host:     util.FirstNonEmpty(*dbHost, getenv("POSTGRES_HOST"), "localhost"),
		Port:     pickInt(*dbPort, getenv("POSTGRES_PORT"), 5432),
		User:     util.FirstNonEmpty(*dbUser, getenv("POSTGRES_USER"), "demo"),
		Password: util.FirstNonEmpty(*dbPass, getenv("POSTGRES_PASSWORD"), ""),
		Database: util.FirstNonEmpty(*dbName, getenv("POSTGRES_DB"), "ai_demo_hub"),
	}
}

func printSchema(w io.Writer) error {
	for _, stmt := range database.Schema {
		if _, err := fmt.Fprintln(w, stmt+";"); err != nil {
			return err
		}
	}
	return nil
}

func pickInt(flagValue int, envValue string, fallback int) int {
	if flagValue > 0 {
		return flagValue
	}
	if n, err := strconv.Atoi(envValue); err == nil && n > 0 {
		return n
	}
	return fallback
}
