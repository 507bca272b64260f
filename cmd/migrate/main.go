package main

import (
	"database/sql"
	"flag"
	"fmt"
	"os"

	"ms-cinema/internal/database/migrations"
	"ms-cinema/internal/logger"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

const usage = `usage: migrate [-dsn DSN] <command>

commands:
  up          apply every migration, sample data included
  schema      apply schema migrations only
  down        revert every migration
  to N        migrate to version N
  version     print the applied version`

func main() {
	_ = godotenv.Load()

	dsn := flag.String("dsn", os.Getenv("POSTGRES_DSN"), "Postgres connection string")
	flag.Usage = func() { fmt.Fprintln(os.Stderr, usage) }
	flag.Parse()

	log, err := logger.NewLogger(logger.Options{Service: "cinema-migrate", MinLevel: logger.INFO})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}
	if *dsn == "" {
		log.Fatal("CONFIG", "POSTGRES_DSN not set")
	}

	sqldb, err := sql.Open("postgres", *dsn)
	if err != nil {
		log.Fatal("DATABASE", fmt.Sprintf("Failed to open database: %v", err))
	}
	if err := sqldb.Ping(); err != nil {
		log.Fatal("DATABASE", fmt.Sprintf("Failed to connect to database: %v", err))
	}

	runner, err := migrations.Open(sqldb, log)
	if err != nil {
		log.Fatal("MIGRATE", err.Error())
	}

	err = run(runner, flag.Args(), log)
	if closeErr := runner.Close(); closeErr != nil {
		log.Warn("MIGRATE", closeErr.Error())
	}
	if err != nil {
		log.Fatal("MIGRATE", err.Error())
	}
}

func run(runner *migrations.Runner, args []string, log *logger.Logger) error {
	switch args[0] {
	case "up":
		if err := runner.Up(); err != nil {
			return err
		}
	case "schema":
		if err := runner.To(migrations.SchemaVersion); err != nil {
			return err
		}
	case "down":
		if err := runner.Down(); err != nil {
			return err
		}
	case "to":
		if len(args) < 2 {
			return fmt.Errorf("to needs a version")
		}
		var version uint
		if _, err := fmt.Sscanf(args[1], "%d", &version); err != nil {
			return fmt.Errorf("invalid version %q: %w", args[1], err)
		}
		if err := runner.To(version); err != nil {
			return err
		}
	case "version":
	default:
		return fmt.Errorf("unknown command %q", args[0])
	}

	version, dirty, err := runner.Version()
	if err != nil {
		return err
	}
	log.Info("MIGRATE", fmt.Sprintf("Schema version %d (dirty=%t)", version, dirty))
	return nil
}
