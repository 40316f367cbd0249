package main

import (
	"errors"
	"fmt"

	"github.com/quantmind-br/manifestctl/internal/app"
	"github.com/quantmind-br/manifestctl/internal/output"
	"github.com/quantmind-br/manifestctl/pkg/version"
	"github.com/spf13/cobra"
)

// errValidationFailed is returned by validate when any manifest is invalid.
// The results have already been printed.
var errValidationFailed = errors.New("validation failed")

func (c *cli) newShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <manifest>",
		Short: "Print a manifest resolved for the target",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.run(cmd, false, func(o *app.Orchestrator, w *output.Writer) error {
				m, err := o.Resolve(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return w.WriteManifest(m)
			})
		},
	}
}

func (c *cli) newDepsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "deps <manifest>",
		Short: "List the dependencies of a manifest for the target",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.run(cmd, false, func(o *app.Orchestrator, w *output.Writer) error {
				m, err := o.Resolve(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return w.WriteList(m.Dependencies)
			})
		},
	}
}

func (c *cli) newDefinesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "defines <manifest>",
		Short: "Print the cmake defines of a manifest for the target",
		Long: `Print the cmake defines of a manifest for the target. Text output is one
-DNAME=VALUE argument per line, ready to pass to cmake.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.run(cmd, false, func(o *app.Orchestrator, w *output.Writer) error {
				m, err := o.Resolve(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return w.WriteDefines(m)
			})
		},
	}
}

func (c *cli) newValidateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate [manifest...]",
		Short: "Check manifests against the schema",
		Long: `Parse and resolve the named manifests, or every manifest in the source,
and report errors and warnings. Exits non-zero when any manifest is invalid.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			showProgress, _ := cmd.Flags().GetBool("progress")
			return c.run(cmd, showProgress, func(o *app.Orchestrator, w *output.Writer) error {
				results, summary, err := o.Validate(cmd.Context(), args)
				if err != nil {
					return err
				}
				if err := w.WriteValidation(results, summary); err != nil {
					return err
				}
				if summary.Invalid > 0 {
					return errValidationFailed
				}
				return nil
			})
		},
	}
	cmd.Flags().String("report", "", "Write a JSON validation report to this path")
	cmd.Flags().Bool("progress", false, "Show a progress bar on stderr")
	_ = c.v.BindPFlag("output.report", cmd.Flags().Lookup("report"))
	return cmd
}

func (c *cli) newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the manifests in the source",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.run(cmd, false, func(o *app.Orchestrator, w *output.Writer) error {
				names, err := o.List(cmd.Context())
				if err != nil {
					return err
				}
				return w.WriteList(names)
			})
		},
	}
}

func (c *cli) newCacheCmd() *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the resolved manifest cache",
	}

	cacheCmd.AddCommand(&cobra.Command{
		Use:   "stats",
		Short: "Print cache statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.run(cmd, false, func(o *app.Orchestrator, w *output.Writer) error {
				stats, err := o.CacheStats()
				if err != nil {
					return err
				}
				return w.WriteStats(stats)
			})
		},
	}, &cobra.Command{
		Use:   "clear",
		Short: "Remove every cached manifest",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.run(cmd, false, func(o *app.Orchestrator, w *output.Writer) error {
				if err := o.ClearCache(); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "cache cleared")
				return nil
			})
		},
	})
	return cacheCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.Full())
		},
	}
}
