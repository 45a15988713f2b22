// neacloud - NEA SMART 2.0 cloud client
//
// Connects to the vendor cloud with an account's credentials, mirrors
// the installation state locally and keeps it live over the push
// channel. Runs until interrupted.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/nerrad567/neacloud/internal/controller"
	"github.com/nerrad567/neacloud/internal/infrastructure/config"
	"github.com/nerrad567/neacloud/internal/infrastructure/logging"
	"github.com/nerrad567/neacloud/internal/session"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

func main() {
	// Create a context that cancels on interrupt signals (Ctrl+C, SIGTERM)
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
// Returning an error allows main to handle exit codes consistently.
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting neacloud",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	// Load configuration. The built-in defaults carry the production
	// endpoints, so a missing file is not an error.
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	// Account credentials come from the environment only; they never
	// belong in the config file.
	email := os.Getenv("NEACLOUD_EMAIL")
	password := os.Getenv("NEACLOUD_PASSWORD")
	if email == "" || password == "" {
		return errors.New("NEACLOUD_EMAIL and NEACLOUD_PASSWORD must be set")
	}

	sess := session.New(cfg, email, password)
	sess.SetLogger(log)

	ctrl := controller.NewWithSession(sess)
	ctrl.SetLogger(log)

	log.Info("connecting", "account", email)
	if err := ctrl.Connect(ctx); err != nil {
		return fmt.Errorf("connecting: %w", err)
	}
	defer func() {
		log.Info("disconnecting")
		ctrl.Disconnect()
	}()

	// Log a one-line inventory once the first snapshot lands.
	go func() {
		select {
		case <-sess.Ready():
		case <-ctx.Done():
			return
		}
		installs := ctrl.GetInstallations()
		zones := ctrl.GetZones()
		log.Info("state ready",
			"installations", len(installs),
			"zones", len(zones),
		)
		for _, z := range zones {
			if temp, tempErr := ctrl.GetTemperature(z.Number); tempErr == nil {
				log.Info("zone", "number", z.Number, "name", z.Name, "temperature_c", temp)
			}
		}
	}()

	log.Info("initialisation complete, waiting for shutdown signal")

	// Wait for shutdown signal
	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")

	if sessErr := sess.Err(); sessErr != nil {
		return fmt.Errorf("session ended: %w", sessErr)
	}

	log.Info("neacloud stopped")
	return nil
}

// loadConfig reads the config file named by NEACLOUD_CONFIG, falling
// back to the default path, falling back to built-in defaults when no
// file exists at the default path.
func loadConfig() (*config.Config, error) {
	path := os.Getenv("NEACLOUD_CONFIG")
	if path != "" {
		return config.Load(path)
	}
	if _, err := os.Stat(defaultConfigPath); err == nil {
		return config.Load(defaultConfigPath)
	}
	return config.Default(), nil
}
