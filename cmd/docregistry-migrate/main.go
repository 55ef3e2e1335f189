package main

import (
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"

	// The sqlite driver is registered by
	// golang-migrate/migrate/v4/database/sqlite via modernc.org/sqlite.
	_ "github.com/lib/pq" // PostgreSQL driver

	"github.com/complyforge/docregistry/internal/migrate"
)

func main() {
	driver := flag.String("driver", "postgres", "Database driver (postgres|sqlite)")
	dsn := flag.String("dsn", "", "Database connection string")
	showVersion := flag.Bool("version", false, "Print the current migration version and exit")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [OPTIONS]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Document registry schema migration tool.\n\n")
		fmt.Fprintf(os.Stderr, "OPTIONS:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nEXAMPLES:\n\n")
		fmt.Fprintf(os.Stderr, "  PostgreSQL:\n")
		fmt.Fprintf(os.Stderr, "    %s -driver=postgres -dsn=\"host=localhost user=postgres password=postgres dbname=docregistry port=5432 sslmode=disable\"\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  SQLite:\n")
		fmt.Fprintf(os.Stderr, "    %s -driver=sqlite -dsn=\"docregistry.db\"\n\n", os.Args[0])
	}

	flag.Parse()

	if *dsn == "" {
		log.Fatal("Error: -dsn flag is required\n\nRun with -help for usage information.")
	}
	if *driver != "postgres" && *driver != "sqlite" {
		log.Fatalf("Error: unsupported driver %q (must be 'postgres' or 'sqlite')\n", *driver)
	}

	sqlDB, err := sql.Open(*driver, *dsn)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v\n", err)
	}
	defer sqlDB.Close()

	if err := sqlDB.Ping(); err != nil {
		log.Fatalf("Failed to ping database: %v\n", err)
	}

	if *showVersion {
		v, dirty, err := migrate.GetMigrationVersion(sqlDB, *driver)
		if err != nil {
			log.Fatalf("Failed to read migration version: %v\n", err)
		}
		fmt.Printf("version=%d dirty=%t\n", v, dirty)
		return
	}

	log.Printf("Running migrations...")
	if err := migrate.RunMigrations(sqlDB, *driver); err != nil {
		log.Fatalf("Migration failed: %v\n", err)
	}
	log.Printf("All migrations completed successfully")
}
