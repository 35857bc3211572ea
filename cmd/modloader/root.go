package main

import (
	"github.com/GriffinCanCode/modloader/internal/infrastructure/config"
	"github.com/GriffinCanCode/modloader/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/modloader/internal/logging"
	"github.com/GriffinCanCode/modloader/internal/sandbox"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

// Version is set at build time.
var Version = "0.1.0"

// app carries the ambient services built once per invocation.
type app struct {
	cfg     *config.Config
	logger  *logging.Logger
	metrics *monitoring.Metrics

	logLevel string
	dev      bool
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "modloader",
		Short: "modloader - isolated CommonJS module loader",
		Long: `modloader evaluates CommonJS-style JavaScript modules in a sandbox.

Each module runs once inside a (module, exports, require) wrapper and only
whitelisted host globals are visible to it.`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "help" || cmd.Name() == "completion" {
				return nil
			}
			return a.setup(cmd)
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Log level (debug|info|warn|error)")
	rootCmd.PersistentFlags().BoolVar(&a.dev, "dev", false, "Development mode (colored console logs, debug level)")

	_ = rootCmd.RegisterFlagCompletionFunc("log-level", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return []string{"debug", "info", "warn", "error"}, cobra.ShellCompDirectiveNoFileComp
	})

	rootCmd.AddCommand(newRunCmd(a))
	rootCmd.AddCommand(newDepsCmd(a))

	return rootCmd
}

// setup loads env config, applies flag overrides and builds logger and metrics.
func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	flags := cmd.Root().PersistentFlags()
	if flags.Changed("dev") {
		cfg.Logging.Development = a.dev
		if a.dev && !flags.Changed("log-level") {
			cfg.Logging.Level = "debug"
		}
	}
	if flags.Changed("log-level") {
		cfg.Logging.Level = a.logLevel
	}

	logCfg := logging.DefaultConfig()
	logCfg.Level = cfg.Logging.Level
	logCfg.Development = cfg.Logging.Development
	logCfg.Output = cmd.ErrOrStderr()
	logger, err := logging.New(logCfg)
	if err != nil {
		return err
	}

	a.cfg = cfg
	a.logger = logger
	if cfg.Metrics.Enabled {
		a.metrics = monitoring.NewMetrics(prometheus.NewRegistry())
	}
	return nil
}

// sandboxConfig maps loader settings onto the sandbox, letting a non-empty
// manifest whitelist replace the configured one.
func (a *app) sandboxConfig(whitelist []string) sandbox.Config {
	sb := sandbox.DefaultConfig()
	sb.Whitelist = a.cfg.Loader.Whitelist
	sb.Timeout = a.cfg.Loader.Timeout
	sb.MaxCallStackSize = a.cfg.Loader.MaxCallStackSize
	sb.EnableConsole = a.cfg.Loader.EnableConsole
	if len(whitelist) > 0 {
		sb.Whitelist = whitelist
	}
	return sb
}
