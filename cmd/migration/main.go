package main

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/riskibarqy/volley-sync/db"
	"github.com/riskibarqy/volley-sync/internal/app"
	"github.com/riskibarqy/volley-sync/internal/config"
	"github.com/spf13/cobra"
)

var migrationsDir string

var rootCmd = &cobra.Command{
	Use:           "migration",
	Short:         "migration manages the execution log schema.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	rootCmd.PersistentFlags().StringVar(&migrationsDir, "dir", strings.TrimSpace(os.Getenv("MIGRATIONS_DIR")),
		"Read migrations from this directory instead of the embedded set.")
	rootCmd.AddCommand(upCmd, downCmd, versionCmd, forceCmd, gotoCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var upCmd = &cobra.Command{
	Use:   "up",
	Short: "Applies every pending migration.",
	Args:  cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		return withMigrator(func(m *migrate.Migrate) error {
			if err := ignoreNoChange(m.Up()); err != nil {
				return err
			}
			log.Printf("migrations applied")
			return nil
		})
	},
}

var downCmd = &cobra.Command{
	Use:   "down [steps]",
	Short: "Rolls back the given number of migrations (default 1).",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		steps, err := parseSteps(args)
		if err != nil {
			return err
		}
		return withMigrator(func(m *migrate.Migrate) error {
			if err := ignoreNoChange(m.Steps(-steps)); err != nil {
				return err
			}
			log.Printf("rolled back %d migration(s)", steps)
			return nil
		})
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Prints the current schema version.",
	Args:  cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		return withMigrator(func(m *migrate.Migrate) error {
			version, dirty, err := m.Version()
			if errors.Is(err, migrate.ErrNilVersion) {
				fmt.Println("version: none")
				fmt.Println("dirty: false")
				return nil
			}
			if err != nil {
				return fmt.Errorf("read version: %w", err)
			}
			fmt.Printf("version: %d\n", version)
			fmt.Printf("dirty: %t\n", dirty)
			return nil
		})
	},
}

var forceCmd = &cobra.Command{
	Use:   "force <version>",
	Short: "Sets the schema version without running migrations.",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		version, err := parseVersion(args[0])
		if err != nil {
			return err
		}
		return withMigrator(func(m *migrate.Migrate) error {
			if err := m.Force(version); err != nil {
				return fmt.Errorf("force version %d: %w", version, err)
			}
			log.Printf("forced version to %d", version)
			return nil
		})
	},
}

var gotoCmd = &cobra.Command{
	Use:     "goto <version>",
	Aliases: []string{"migrate"},
	Short:   "Migrates up or down to the given version.",
	Args:    cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		target, err := parseTarget(args[0])
		if err != nil {
			return err
		}
		return withMigrator(func(m *migrate.Migrate) error {
			if err := ignoreNoChange(m.Migrate(target)); err != nil {
				return err
			}
			log.Printf("migrated to version %d", target)
			return nil
		})
	},
}

func withMigrator(fn func(m *migrate.Migrate) error) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	m, err := newMigrator(app.PostgresDSN(cfg))
	if err != nil {
		return err
	}
	defer closeMigrator(m)

	return fn(m)
}

func newMigrator(dbURL string) (*migrate.Migrate, error) {
	if strings.TrimSpace(migrationsDir) != "" {
		abs, err := filepath.Abs(migrationsDir)
		if err != nil {
			return nil, fmt.Errorf("resolve migrations dir: %w", err)
		}
		m, err := migrate.New("file://"+filepath.ToSlash(abs), dbURL)
		if err != nil {
			return nil, fmt.Errorf("create migrator: %w", err)
		}
		return m, nil
	}

	source, err := iofs.New(db.Migrations, "migrations")
	if err != nil {
		return nil, fmt.Errorf("open embedded migrations: %w", err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", source, dbURL)
	if err != nil {
		return nil, fmt.Errorf("create migrator: %w", err)
	}
	return m, nil
}

func parseSteps(args []string) (int, error) {
	if len(args) == 0 {
		return 1, nil
	}

	steps, err := strconv.Atoi(strings.TrimSpace(args[0]))
	if err != nil {
		return 0, fmt.Errorf("invalid down steps %q: %w", args[0], err)
	}
	if steps <= 0 {
		return 0, fmt.Errorf("down steps must be > 0")
	}
	return steps, nil
}

func parseVersion(raw string) (int, error) {
	value, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid version %q: %w", raw, err)
	}
	if value < 0 {
		return 0, fmt.Errorf("version must be >= 0")
	}
	if value > int64(^uint(0)>>1) {
		return 0, fmt.Errorf("version is too large for this platform")
	}
	return int(value), nil
}

func parseTarget(raw string) (uint, error) {
	value, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid target version %q: %w", raw, err)
	}
	return uint(value), nil
}

func ignoreNoChange(err error) error {
	if errors.Is(err, migrate.ErrNoChange) {
		log.Printf("no migration changes")
		return nil
	}
	return err
}

func closeMigrator(m *migrate.Migrate) {
	srcErr, dbErr := m.Close()
	if srcErr != nil {
		log.Printf("close migration source: %v", srcErr)
	}
	if dbErr != nil {
		log.Printf("close migration db: %v", dbErr)
	}
}
