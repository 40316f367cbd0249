package main

import (
	"fmt"

	"github.com/quantmind-br/manifestctl/internal/app"
	"github.com/quantmind-br/manifestctl/internal/config"
	"github.com/quantmind-br/manifestctl/internal/output"
	"github.com/quantmind-br/manifestctl/internal/utils"
	"github.com/quantmind-br/manifestctl/pkg/version"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// cli holds the state shared by the commands of one root command
type cli struct {
	v       *viper.Viper
	cfgFile string
	verbose bool
	noCache bool
}

func newRootCmd() *cobra.Command {
	c := &cli{v: viper.New()}

	rootCmd := &cobra.Command{
		Use:   version.Name,
		Short: "Inspect and resolve fbcode_builder build manifests",
		Long: `manifestctl reads the sectioned build manifests used by fbcode_builder,
checks them against the manifest schema and resolves their os- and
test-conditional sections for a target platform.`,
		Version:       version.Short(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&c.cfgFile, "config", "", "config file (default is ~/.manifestctl/config.yaml)")
	flags.StringP("manifests-dir", "m", config.DefaultManifestsDir, "Directory containing manifests")
	flags.String("git-rev", "", "Read manifests at this git revision instead of the work tree")
	flags.String("os", "", "Target operating system (default is the running system)")
	flags.String("distro", "", "Target distribution")
	flags.String("distro-version", "", "Target distribution version")
	flags.Bool("test", false, "Resolve for a build with tests enabled")
	flags.Bool("shared-libs", false, "Resolve for a shared library build")
	flags.StringP("format", "f", config.DefaultOutputFormat, "Output format (text, json, yaml)")
	flags.IntP("workers", "j", config.DefaultWorkers, "Number of concurrent workers")
	flags.Bool("no-cache", false, "Disable the resolved manifest cache")
	flags.BoolVarP(&c.verbose, "verbose", "v", false, "Verbose output")

	_ = c.v.BindPFlag("manifests.directory", flags.Lookup("manifests-dir"))
	_ = c.v.BindPFlag("manifests.git_rev", flags.Lookup("git-rev"))
	_ = c.v.BindPFlag("target.os", flags.Lookup("os"))
	_ = c.v.BindPFlag("target.distro", flags.Lookup("distro"))
	_ = c.v.BindPFlag("target.distro_version", flags.Lookup("distro-version"))
	_ = c.v.BindPFlag("target.test", flags.Lookup("test"))
	_ = c.v.BindPFlag("target.shared_libs", flags.Lookup("shared-libs"))
	_ = c.v.BindPFlag("output.format", flags.Lookup("format"))
	_ = c.v.BindPFlag("concurrency.workers", flags.Lookup("workers"))

	rootCmd.AddCommand(
		c.newShowCmd(),
		c.newDepsCmd(),
		c.newDefinesCmd(),
		c.newValidateCmd(),
		c.newListCmd(),
		c.newCacheCmd(),
		newVersionCmd(),
	)
	return rootCmd
}

// loadConfig reads the configuration with flag overrides applied
func (c *cli) loadConfig(cmd *cobra.Command) (*config.Config, error) {
	noCache, _ := cmd.Flags().GetBool("no-cache")
	c.noCache = noCache

	cfg, err := config.LoadFrom(c.v, c.cfgFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// orchestrator builds an orchestrator logging to the command's stderr
func (c *cli) orchestrator(cmd *cobra.Command, cfg *config.Config, progress bool) (*app.Orchestrator, error) {
	logger := utils.NewLogger(utils.LoggerOptions{
		Level:   cfg.Logging.Level,
		Format:  cfg.Logging.Format,
		Output:  cmd.ErrOrStderr(),
		Verbose: c.verbose,
	})

	opts := app.OrchestratorOptions{
		Config:  cfg,
		Verbose: c.verbose,
		NoCache: c.noCache,
		Logger:  logger,
	}
	if progress {
		opts.Progress = cmd.ErrOrStderr()
	}

	o, err := app.NewOrchestrator(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create orchestrator: %w", err)
	}
	return o, nil
}

func (c *cli) writer(cmd *cobra.Command, cfg *config.Config) (*output.Writer, error) {
	format, err := output.ParseFormat(cfg.Output.Format)
	if err != nil {
		return nil, err
	}
	return output.NewWriter(output.WriterOptions{Out: cmd.OutOrStdout(), Format: format}), nil
}

// run loads the configuration, opens an orchestrator and hands both to fn
func (c *cli) run(cmd *cobra.Command, progress bool, fn func(*app.Orchestrator, *output.Writer) error) error {
	cfg, err := c.loadConfig(cmd)
	if err != nil {
		return err
	}
	w, err := c.writer(cmd, cfg)
	if err != nil {
		return err
	}
	o, err := c.orchestrator(cmd, cfg, progress)
	if err != nil {
		return err
	}
	defer o.Close()
	return fn(o, w)
}
