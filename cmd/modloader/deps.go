package main

import (
	"fmt"
	"strings"

	"github.com/GriffinCanCode/modloader/internal/source"
	"github.com/bytedance/sonic"
	"github.com/spf13/cobra"
)

func newDepsCmd(a *app) *cobra.Command {
	var (
		manifestPath string
		asJSON       bool
	)

	cmd := &cobra.Command{
		Use:   "deps",
		Short: "Show the static require graph",
		Long: `List every module of a manifest with the literal require() calls found
in its source. Modules are not executed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, err := source.LoadManifest(manifestPath)
			if err != nil {
				return err
			}
			provider, err := m.Provider()
			if err != nil {
				return err
			}
			ids, err := m.IDs()
			if err != nil {
				return err
			}

			graph := make(map[string][]string, len(ids))
			for _, id := range ids {
				src, err := provider.Source(cmd.Context(), id)
				if err != nil {
					return fmt.Errorf("module %s: %w", id, err)
				}
				graph[id] = source.ParseRequire(src)
			}
			a.logger.Debug("require graph built")

			out := cmd.OutOrStdout()
			if asJSON {
				data, err := sonic.ConfigStd.MarshalIndent(graph, "", "  ")
				if err != nil {
					return fmt.Errorf("failed to encode graph: %w", err)
				}
				_, _ = fmt.Fprintln(out, string(data))
				return nil
			}

			for _, id := range ids {
				deps := graph[id]
				if len(deps) == 0 {
					_, _ = fmt.Fprintf(out, "%s\n", id)
					continue
				}
				_, _ = fmt.Fprintf(out, "%s <- %s\n", id, strings.Join(deps, ", "))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&manifestPath, "manifest", "m", defaultManifest, "Path to the manifest (.yaml, .yml or .toml)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the graph as JSON")

	return cmd
}
