package commands

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"

	"github.com/unifyhub/core/internal/adapters/recordstore"
	"github.com/unifyhub/core/internal/infrastructure/config"
	"github.com/unifyhub/core/internal/infrastructure/database"
	"github.com/unifyhub/core/internal/infrastructure/logger"
	"github.com/unifyhub/core/internal/infrastructure/server"
)

// NewServeCommand creates the serve command
func NewServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the UnifyHub API server",
		Long:  "Start the UnifyHub API server with all configured routes and middleware",
		Run: func(cmd *cobra.Command, args []string) {
			runServer()
		},
	}
}

// NewMigrateCommand creates the migrate command with subcommands
func NewMigrateCommand() *cobra.Command {
	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database migration commands",
		Long:  "Manage database migrations (up, down, version)",
	}

	migrateCmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Run all up migrations",
		Run: func(cmd *cobra.Command, args []string) {
			runMigration("up", 0)
		},
	})

	migrateCmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Run all down migrations",
		Run: func(cmd *cobra.Command, args []string) {
			runMigration("down", 0)
		},
	})

	migrateCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print current migration version",
		Run: func(cmd *cobra.Command, args []string) {
			showMigrationVersion()
		},
	})

	return migrateCmd
}

// NewHashKeyCommand creates the hash-key command. The printed hash goes
// into the API_KEY_HASH environment variable; the plain key is what
// dashboard clients exchange for a JWT.
func NewHashKeyCommand() *cobra.Command {
	hashCmd := &cobra.Command{
		Use:   "hash-key",
		Short: "Hash an API key for configuration",
		Run: func(cmd *cobra.Command, args []string) {
			key, _ := cmd.Flags().GetString("key")
			if key == "" {
				log.Fatal("API key is required")
			}
			hashKey(key)
		},
	}

	hashCmd.Flags().String("key", "", "API key to hash (required)")
	return hashCmd
}

// NewSeedCommand creates the seed command. Starter records give a fresh
// install something to show on the dashboard.
func NewSeedCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Insert starter records into the database",
		Long:  "Insert starter messages, events, tasks, projects, rules and connections (postgres store mode only)",
		Run: func(cmd *cobra.Command, args []string) {
			runSeed()
		},
	}
}

// NewVersionCommand creates the version command
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print UnifyHub version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("UnifyHub Core v1.0.0")
		},
	}
}

func runServer() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger, err := logger.New(cfg.Logger)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer appLogger.Sync()

	srv, err := server.New(cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize server", "error", err)
	}

	appLogger.Info("Starting UnifyHub API server",
		"port", cfg.Server.Port,
		"environment", cfg.App.Environment,
		"store_mode", cfg.Store.Mode,
	)

	go func() {
		if err := srv.Start(fmt.Sprintf(":%d", cfg.Server.Port)); err != nil {
			appLogger.Error("Server stopped", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Fatal("Server shutdown failed", "error", err)
	}
}

func runMigration(direction string, steps int) {
	m := newMigrator()

	var err error
	switch direction {
	case "up":
		if steps > 0 {
			err = m.Steps(steps)
		} else {
			err = m.Up()
		}
	case "down":
		if steps > 0 {
			err = m.Steps(-steps)
		} else {
			err = m.Down()
		}
	}

	if err != nil && err != migrate.ErrNoChange {
		log.Fatalf("Migration failed: %v", err)
	}

	if err == migrate.ErrNoChange {
		fmt.Println("No migrations to run")
	} else {
		fmt.Printf("Migration %s completed successfully\n", direction)
	}
}

func showMigrationVersion() {
	m := newMigrator()

	version, dirty, err := m.Version()
	if err != nil {
		log.Fatalf("Failed to get migration version: %v", err)
	}

	fmt.Printf("Current migration version: %d\n", version)
	fmt.Printf("Dirty: %t\n", dirty)
}

func newMigrator() *migrate.Migrate {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if cfg.Store.Mode != "postgres" {
		log.Fatal("Migrations only apply to the postgres store mode")
	}

	db, err := database.New(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	driver, err := postgres.WithInstance(db.DB.DB, &postgres.Config{})
	if err != nil {
		log.Fatalf("Failed to create migration driver: %v", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		"file://migrations",
		"postgres",
		driver,
	)
	if err != nil {
		log.Fatalf("Failed to create migration instance: %v", err)
	}

	return m
}

func runSeed() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if cfg.Store.Mode != "postgres" {
		log.Fatal("Seeding only applies to the postgres store mode")
	}

	db, err := database.New(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	store := recordstore.NewPostgresStore(db.DB)
	ctx := context.Background()

	for _, table := range recordstore.Tables() {
		records := seedRecords(table)
		if len(records) == 0 {
			continue
		}

		resp, err := store.Create(ctx, table, records)
		if err != nil {
			log.Fatalf("Failed to seed %s: %v", table, err)
		}

		created := 0
		for _, result := range resp.Results {
			if result.Success {
				created++
			}
		}
		fmt.Printf("%s: created %d of %d records\n", table, created, len(records))
	}
}

// seedRecords returns starter rows for one table. Composite fields use the
// same encodings the repository layer writes: comma lists for labels and
// attendees, JSON for linked items, rule definitions and settings.
func seedRecords(table string) []map[string]string {
	now := time.Now().UTC()
	day := 24 * time.Hour
	stamp := func(t time.Time) string { return t.Format(time.RFC3339) }

	switch table {
	case recordstore.TableMessage:
		return []map[string]string{
			{"from": "Sarah Chen", "subject": "Q3 planning deck", "preview": "Attached the latest revision ahead of tomorrow's review.", "service": "gmail", "timestamp": stamp(now.Add(-2 * time.Hour)), "read": "false", "labels": "work"},
			{"from": "Deploy Bot", "subject": "Build 412 is live", "preview": "Production deploy finished without errors.", "service": "slack", "timestamp": stamp(now.Add(-26 * time.Hour)), "read": "true", "labels": "work,deploys"},
			{"from": "Marco Ruiz", "subject": "Invoice #2041", "preview": "Payment is due by the end of the month.", "service": "outlook", "timestamp": stamp(now.Add(-3 * day)), "read": "false", "labels": "finance"},
		}
	case recordstore.TableEvent:
		return []map[string]string{
			{"title": "Sprint review", "service": "google", "start": stamp(now.Add(day)), "end": stamp(now.Add(day + time.Hour)), "location": "Room 2", "attendees": "Sarah Chen,Marco Ruiz", "project_id": "1"},
			{"title": "Dentist", "service": "apple", "start": stamp(now.Add(4 * day)), "end": stamp(now.Add(4*day + 30*time.Minute)), "location": "", "attendees": "", "project_id": ""},
		}
	case recordstore.TableTask:
		return []map[string]string{
			{"title": "Review planning deck", "description": "Comments back to Sarah before the sprint review", "priority": "high", "status": "pending", "due_date": stamp(now.Add(day)), "service": "asana", "project_id": "1"},
			{"title": "Pay invoice #2041", "description": "", "priority": "medium", "status": "pending", "due_date": stamp(now.Add(6 * day)), "service": "todoist", "project_id": ""},
			{"title": "Archive old deploy channels", "description": "", "priority": "low", "status": "completed", "due_date": "", "service": "todoist", "project_id": ""},
		}
	case recordstore.TableProject:
		return []map[string]string{
			{"name": "Q3 Planning", "color": "#6366f1", "linked_items": `[{"type":"task","title":"Review planning deck"},{"type":"event","title":"Sprint review"}]`, "created": stamp(now.Add(-10 * day)), "progress": "40"},
		}
	case recordstore.TableRule:
		return []map[string]string{
			{"name": "File invoices", "conditions": `[{"field":"subject","operator":"contains","value":"invoice"}]`, "actions": `[{"type":"add_label","value":"finance"}]`, "enabled": "true", "last_run": ""},
			{"name": "Mute deploy noise", "conditions": `[{"field":"sender","operator":"equals","value":"Deploy Bot"}]`, "actions": `[{"type":"mark_as_read","value":""}]`, "enabled": "false", "last_run": ""},
		}
	case recordstore.TableServiceConnection:
		return []map[string]string{
			{"service_id": "gmail", "status": "connected", "last_sync": stamp(now.Add(-time.Hour)), "settings": "{}"},
			{"service_id": "slack", "status": "connected", "last_sync": stamp(now.Add(-2 * time.Hour)), "settings": "{}"},
		}
	}
	return nil
}

func hashKey(key string) {
	hash, err := bcrypt.GenerateFromPassword([]byte(key), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("Failed to hash API key: %v", err)
	}

	fmt.Println("Set this value as API_KEY_HASH:")
	fmt.Println(string(hash))
}
