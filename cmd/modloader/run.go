package main

import (
	"errors"
	"fmt"

	"github.com/GriffinCanCode/modloader/internal/loader"
	"github.com/GriffinCanCode/modloader/internal/logging"
	"github.com/GriffinCanCode/modloader/internal/source"
	"github.com/bytedance/sonic"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const defaultManifest = "modloader.yaml"

func newRunCmd(a *app) *cobra.Command {
	var (
		manifestPath string
		entry        string
		stats        bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Load a module and print its exports",
		Long: `Load the entry module of a manifest and print its exports as JSON.

Functions are rendered as "[Function: name]" placeholders. The entry defaults
to the manifest's entry field.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, err := source.LoadManifest(manifestPath)
			if err != nil {
				return err
			}
			if entry == "" {
				entry = m.Entry
			}
			if entry == "" {
				return errors.New("no entry module: pass --entry or set entry in the manifest")
			}

			provider, err := m.Provider()
			if err != nil {
				return err
			}

			reg, err := loader.New(a.sandboxConfig(m.Whitelist),
				loader.WithLogger(a.logger),
				loader.WithMetrics(a.metrics),
				loader.WithProvider(provider),
			)
			if err != nil {
				return err
			}

			exports, err := reg.Load(cmd.Context(), entry)
			if err != nil {
				return err
			}

			out, err := sonic.ConfigStd.MarshalIndent(loader.Snapshot(exports), "", "  ")
			if err != nil {
				return fmt.Errorf("failed to encode exports: %w", err)
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), string(out))

			a.logger.Info("entry loaded",
				zap.String("entry", entry),
				zap.Int("modules", reg.Len()),
				logging.Registry(reg.ID().String()),
			)

			if stats && a.metrics != nil {
				s := a.metrics.Snapshot()
				_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "modules: %d cached, %d misses, %d hits, %d errors, %.3fs executing\n",
					s.Cached, s.Misses, s.Hits, s.Errors, s.TotalDuration)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&manifestPath, "manifest", "m", defaultManifest, "Path to the manifest (.yaml, .yml or .toml)")
	cmd.Flags().StringVarP(&entry, "entry", "e", "", "Module id to load (default: manifest entry)")
	cmd.Flags().BoolVar(&stats, "stats", false, "Print loader statistics to stderr")

	return cmd
}
