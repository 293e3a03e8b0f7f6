// Package main is a small CLI for managing the assessments database schema.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/epiverse/bcrat/internal/config"
	"github.com/epiverse/bcrat/internal/database"
)

func main() {
	migrationsPath := flag.String("path", "migrations", "directory containing migration files")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: migrate [-path dir] <up|down|version>")
		os.Exit(2)
	}
	command := flag.Arg(0)

	configManager, err := config.NewManager()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{})

	runner, err := database.NewMigrationRunner(configManager.GetDatabaseConnectionString(), *migrationsPath, logger)
	if err != nil {
		log.Fatalf("Failed to create migration runner: %v", err)
	}
	defer runner.Close()

	switch command {
	case "up":
		err = runner.Up()
	case "down":
		err = runner.Down()
	case "version":
		var ver uint
		var dirty bool
		ver, dirty, err = runner.Version()
		if err == nil {
			logger.WithFields(logrus.Fields{
				"version": ver,
				"dirty":   dirty,
			}).Info("Current migration version")
		}
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n", command)
		os.Exit(2)
	}
	if err != nil {
		log.Fatalf("Migration command failed: %v", err)
	}
}
