package main

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	_ "github.com/lib/pq"
	"github.com/ryznreal/offers/internal/infrastructure/config"
	"github.com/ryznreal/offers/internal/infrastructure/logger"
	"github.com/ryznreal/offers/internal/infrastructure/migration"
	"github.com/ryznreal/offers/migrations"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const defaultMigrationsPath = "migrations"

type options struct {
	configPath     string
	migrationsPath string
	logLevel       string
}

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Offers database migration tool",
		Long: `Runs the Postgres schema migrations of the offers service.

Migrations are read from the binary itself unless --path points at a
directory. The connection comes from config.toml and OFFERS_DATABASE_*
environment variables.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "Config file path (default: ./config.toml)")
	cmd.PersistentFlags().StringVar(&opts.migrationsPath, "path", "", "Read migrations from this directory instead of the embedded set")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")

	cmd.AddCommand(
		migrateCmd(opts, "up", "Apply all pending migrations", cobra.NoArgs,
			func(m *migration.Migrator, _ *zap.Logger, _ []string) error {
				return m.Up()
			}),
		migrateCmd(opts, "down", "Roll back all migrations", cobra.NoArgs,
			func(m *migration.Migrator, _ *zap.Logger, _ []string) error {
				return m.Down()
			}),
		migrateCmd(opts, "step <n>", "Apply n migrations (positive=up, negative=down)", cobra.ExactArgs(1),
			func(m *migration.Migrator, _ *zap.Logger, args []string) error {
				n, err := strconv.Atoi(args[0])
				if err != nil {
					return fmt.Errorf("invalid step count %q", args[0])
				}
				return m.Steps(n)
			}),
		migrateCmd(opts, "goto <version>", "Migrate to a specific version", cobra.ExactArgs(1),
			func(m *migration.Migrator, _ *zap.Logger, args []string) error {
				version, err := strconv.ParseUint(args[0], 10, 32)
				if err != nil {
					return fmt.Errorf("invalid version %q", args[0])
				}
				return m.GoTo(uint(version))
			}),
		migrateCmd(opts, "version", "Show current migration version", cobra.NoArgs,
			func(m *migration.Migrator, log *zap.Logger, _ []string) error {
				version, dirty, err := m.Version()
				if err != nil {
					return err
				}
				if version == 0 {
					log.Info("No migrations applied")
					return nil
				}
				log.Info("Current migration version",
					zap.Uint("version", version),
					zap.Bool("dirty", dirty),
				)
				return nil
			}),
		migrateCmd(opts, "force <version>", "Force set migration version (use with caution)", cobra.ExactArgs(1),
			func(m *migration.Migrator, _ *zap.Logger, args []string) error {
				version, err := strconv.Atoi(args[0])
				if err != nil {
					return fmt.Errorf("invalid version %q", args[0])
				}
				return m.Force(version)
			}),
		createCmd(opts),
		listCmd(opts),
	)
	return cmd
}

// migrateCmd builds a subcommand that needs a database connection
func migrateCmd(
	opts *options,
	use, short string,
	args cobra.PositionalArgs,
	run func(m *migration.Migrator, log *zap.Logger, args []string) error,
) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  args,
		RunE: func(cmd *cobra.Command, args []string) error {
			log, err := newLogger(opts.logLevel)
			if err != nil {
				return err
			}
			defer func() {
				_ = log.Sync()
			}()

			cfg, err := loadConfig(opts.configPath)
			if err != nil {
				return err
			}

			db, err := sql.Open("postgres", cfg.Database.DSN())
			if err != nil {
				return fmt.Errorf("failed to open database: %w", err)
			}
			if err := db.Ping(); err != nil {
				_ = db.Close()
				return fmt.Errorf("failed to ping database: %w", err)
			}

			src := migration.FromFS(migrations.FS)
			if opts.migrationsPath != "" {
				abs, err := filepath.Abs(opts.migrationsPath)
				if err != nil {
					_ = db.Close()
					return err
				}
				src = migration.FromDir(abs)
			}

			m, err := migration.New(db, src, log)
			if err != nil {
				_ = db.Close()
				return err
			}
			defer func() {
				if err := m.Close(); err != nil {
					log.Warn("Failed to close migrator", zap.Error(err))
				}
			}()

			log.Info("Migration CLI started",
				zap.String("command", cmd.Name()),
				zap.Stringer("source", src),
			)
			return run(m, log, args)
		},
	}
}

func createCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "create <name> [description]",
		Short: "Create a new migration file pair",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			log, err := newLogger(opts.logLevel)
			if err != nil {
				return err
			}
			defer func() {
				_ = log.Sync()
			}()

			description := ""
			if len(args) > 1 {
				description = args[1]
			}
			mf, err := migration.CreateMigration(dirOrDefault(opts.migrationsPath), args[0], description)
			if err != nil {
				return err
			}
			log.Info("Migration created successfully",
				zap.String("version", mf.Version),
				zap.String("up_file", mf.UpPath),
				zap.String("down_file", mf.DownPath),
			)
			return nil
		},
	}
}

func listCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List available migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := migration.ListMigrations(dirOrDefault(opts.migrationsPath))
			if err != nil {
				return err
			}
			if len(list) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No migrations found")
				return nil
			}
			for _, name := range list {
				fmt.Fprintln(cmd.OutOrStdout(), "  -", name)
			}
			return nil
		},
	}
}

func newLogger(level string) (*zap.Logger, error) {
	log, err := logger.New(&logger.Config{
		Level:      level,
		Format:     "console",
		Output:     "stdout",
		TimeFormat: "2006-01-02 15:04:05",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return log, nil
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	return config.Load()
}

// dirOrDefault resolves the directory create and list work on; the
// embedded set is read-only so they always need one on disk
func dirOrDefault(path string) string {
	if path != "" {
		return path
	}
	return defaultMigrationsPath
}
