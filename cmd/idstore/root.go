package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/ar0311/identity-docstore/internal/config"
	"github.com/ar0311/identity-docstore/internal/docstore"
	"github.com/ar0311/identity-docstore/internal/platform/logger"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

// application is what every command runs against once the root command's
// pre-run has loaded configuration and opened the backend.
type application struct {
	cfg      *config.Config
	logger   *slog.Logger
	backend  docstore.Backend
	identity identityCommands
	// metrics is set when store metrics are collected for this run.
	metrics *prometheus.Registry
}

// Close releases the backend and then writes the collected metrics, if
// any. It is safe to call more than once.
func (a *application) Close() error {
	if a == nil {
		return nil
	}
	var errs []error
	if a.backend != nil {
		errs = append(errs, a.backend.Close())
		a.backend = nil
	}
	if a.metrics != nil {
		errs = append(errs, writeMetrics(a.cfg.Metrics.Textfile, a.metrics))
		a.metrics = nil
	}
	return errors.Join(errs...)
}

type rootOptions struct {
	configFile  string
	envFile     string
	metricsFile string
}

func newRootCmd(app *application) *cobra.Command {
	var opts rootOptions

	root := &cobra.Command{
		Use:           "idstore",
		Short:         "Manage users and roles in the identity document store",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return app.init(cmd, opts)
		},
	}

	root.PersistentFlags().StringVar(&opts.configFile, "config", "", "config file (default ./idstore.yaml)")
	root.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "dotenv file loaded before configuration")
	root.PersistentFlags().StringVar(&opts.metricsFile, "metrics-file", "",
		"write store metrics in Prometheus text format to this file on exit (enables metrics)")

	root.AddCommand(
		newMigrateCmd(app),
		newDriversCmd(),
		newUserCmd(app),
		newRoleCmd(app),
	)
	return root
}

// init loads .env, configuration and logging, then opens the backend.
// Commands that only need configuration skip the backend via the
// skipBackend annotation.
func (a *application) init(cmd *cobra.Command, opts rootOptions) error {
	if err := loadEnvFile(opts.envFile, cmd.Flags().Changed("env-file")); err != nil {
		return err
	}

	cfg, err := config.LoadFrom(opts.configFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if cmd.Flags().Changed("metrics-file") {
		cfg.Metrics.Enabled = true
		cfg.Metrics.Textfile = opts.metricsFile
		if err := config.Validate(cfg); err != nil {
			return err
		}
	}
	a.cfg = cfg

	log, err := logger.SetupWithWriter(cfg.Log, cmd.ErrOrStderr())
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}
	a.logger = log.With(slog.String("command", cmd.CommandPath()))

	if _, skip := cmd.Annotations[skipBackend]; skip {
		return nil
	}

	var (
		reg        *prometheus.Registry
		registerer prometheus.Registerer
	)
	if cfg.Metrics.Enabled {
		reg = prometheus.NewRegistry()
		registerer = reg
	}
	backend, err := openBackend(cmd.Context(), cfg, a.logger, registerer)
	if err != nil {
		return err
	}
	a.backend = backend
	a.metrics = reg

	a.identity, err = newIdentityCommands(cfg, backend, a.logger)
	if err != nil {
		_ = backend.Close()
		a.backend = nil
		return err
	}
	return nil
}

// skipBackend marks commands that run without opening the store.
const skipBackend = "idstore/skip-backend"

// loadEnvFile loads path into the environment. A missing default file is
// fine; a missing file named on the command line is not.
func loadEnvFile(path string, explicit bool) error {
	if path == "" {
		return nil
	}
	err := godotenv.Load(path)
	if err == nil {
		return nil
	}
	if !explicit && errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("failed to load env file %s: %w", path, err)
}

func newDriversCmd() *cobra.Command {
	return &cobra.Command{
		Use:         "drivers",
		Short:       "List the registered store drivers",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{skipBackend: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range docstore.Drivers() {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
}
