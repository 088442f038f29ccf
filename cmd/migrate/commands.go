package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/rentledger/backend/internal/infrastructure/migration"
	"go.uber.org/zap"
)

const defaultMigrationsPath = "migrations"

var errNeedsConfirm = errors.New("destructive command, pass -confirm")

// env is what a command runs against. migrator is nil for commands that
// only touch the migrations directory.
type env struct {
	log      *zap.Logger
	path     string
	out      io.Writer
	migrator *migration.Migrator
}

type command struct {
	args    string
	help    string
	needsDB bool
	run     func(e *env, args []string) error
}

// commandOrder is the order commands are listed in the usage text
var commandOrder = []string{"up", "down", "step", "goto", "version", "status", "force", "drop", "create", "list"}

var commands = map[string]command{
	"up": {
		help:    "Apply all pending migrations",
		needsDB: true,
		run:     func(e *env, _ []string) error { return e.migrator.Up() },
	},
	"down": {
		args:    "-confirm",
		help:    "Roll back all migrations (deletes all ledger data)",
		needsDB: true,
		run: func(e *env, args []string) error {
			if !hasConfirm(args) {
				return errNeedsConfirm
			}
			return e.migrator.Down()
		},
	},
	"step": {
		args:    "<n>",
		help:    "Apply n migrations (negative rolls back)",
		needsDB: true,
		run: func(e *env, args []string) error {
			n, err := intArg(args, "step count")
			if err != nil {
				return err
			}
			return e.migrator.Steps(n)
		},
	},
	"goto": {
		args:    "<version>",
		help:    "Migrate up or down to a specific version",
		needsDB: true,
		run: func(e *env, args []string) error {
			v, err := intArg(args, "version")
			if err != nil {
				return err
			}
			if v < 0 {
				return fmt.Errorf("version must not be negative")
			}
			return e.migrator.GoTo(uint(v))
		},
	},
	"version": {
		help:    "Show the applied schema version",
		needsDB: true,
		run: func(e *env, _ []string) error {
			version, dirty, err := e.migrator.Version()
			if err != nil {
				return err
			}
			if version == 0 {
				e.log.Info("No migrations applied")
				return nil
			}
			e.log.Info("Current migration version", zap.Uint("version", version), zap.Bool("dirty", dirty))
			return nil
		},
	},
	"status": {
		help:    "Show applied and pending migrations",
		needsDB: true,
		run: func(e *env, _ []string) error {
			status, err := e.migrator.Status()
			if err != nil {
				return err
			}
			e.log.Info("Migration status",
				zap.Uint("version", status.Version),
				zap.Bool("dirty", status.Dirty),
				zap.Int("applied", len(status.Applied)),
				zap.Int("pending", len(status.Pending)))
			for _, f := range status.Pending {
				fmt.Fprintf(e.out, "  pending  %06d  %s\n", f.Version, f.Name)
			}
			return nil
		},
	},
	"force": {
		args:    "<version>",
		help:    "Mark a version as applied and clean (after fixing a failed run)",
		needsDB: true,
		run: func(e *env, args []string) error {
			v, err := intArg(args, "version")
			if err != nil {
				return err
			}
			return e.migrator.Force(v)
		},
	},
	"drop": {
		args:    "-confirm",
		help:    "Drop every table, including schema_migrations",
		needsDB: true,
		run: func(e *env, args []string) error {
			if !hasConfirm(args) {
				return errNeedsConfirm
			}
			return e.migrator.Drop()
		},
	},
	"create": {
		args: "<name> [desc]",
		help: "Create a new up/down migration pair",
		run: func(e *env, args []string) error {
			if len(args) == 0 {
				return fmt.Errorf("migration name required")
			}
			description := ""
			if len(args) > 1 {
				description = args[1]
			}
			mf, err := migration.CreateMigration(e.path, args[0], description)
			if err != nil {
				return err
			}
			e.log.Info("Migration created",
				zap.Uint64("version", mf.Version),
				zap.String("up_file", mf.UpPath),
				zap.String("down_file", mf.DownPath))
			return nil
		},
	},
	"list": {
		help: "List migrations on disk",
		run: func(e *env, _ []string) error {
			files, err := migration.ListMigrations(e.path)
			if err != nil {
				return err
			}
			if len(files) == 0 {
				fmt.Fprintln(e.out, "no migrations found")
				return nil
			}
			for _, f := range files {
				fmt.Fprintf(e.out, "  %06d  %s\n", f.Version, f.Name)
			}
			return nil
		},
	},
}

func intArg(args []string, what string) (int, error) {
	if len(args) == 0 {
		return 0, fmt.Errorf("%s required", what)
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", what, args[0])
	}
	return n, nil
}

// resolveMigrationsPath falls back to ./migrations, then to the repository
// root relative to the binary.
func resolveMigrationsPath(path string) (string, error) {
	if path == "" {
		path = defaultMigrationsPath
		if _, err := os.Stat(path); err != nil {
			if execPath, err := os.Executable(); err == nil {
				candidate := filepath.Join(filepath.Dir(execPath), "..", "..", defaultMigrationsPath)
				if _, err := os.Stat(candidate); err == nil {
					path = candidate
				}
			}
		}
	}
	return filepath.Abs(path)
}

func hasConfirm(args []string) bool {
	for _, arg := range args {
		if arg == "-confirm" || arg == "--confirm" {
			return true
		}
	}
	return false
}

func printUsage() {
	w := os.Stderr
	fmt.Fprintln(w, "Rent ledger schema migrations")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:\n  migrate [flags] <command> [arguments]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	for _, name := range commandOrder {
		c := commands[name]
		fmt.Fprintf(w, "  %-22s %s\n", name+" "+c.args, c.help)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "  -path string          Path to migrations directory (default: ./migrations)")
	fmt.Fprintln(w, "  -log-level string     debug, info, warn, error (default: info)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Connection settings come from RENT_DATABASE_HOST, RENT_DATABASE_PORT,")
	fmt.Fprintln(w, "RENT_DATABASE_USER, RENT_DATABASE_PASSWORD, RENT_DATABASE_DBNAME and")
	fmt.Fprintln(w, "RENT_DATABASE_SSLMODE.")
}
