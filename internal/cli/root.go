// Package cli provides the command-line interface for dbt-lineage.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/dbt-lineage/internal/cli/commands"
	"github.com/leapstack-labs/dbt-lineage/internal/cli/config"
	"github.com/leapstack-labs/dbt-lineage/internal/cli/output"
)

var (
	cfgFile string
	cfg     *config.Config
)

// Version information (set at build time).
var (
	Version   = "0.1.0"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

// configKey is used to store config in context.
type configKey struct{}

// rendererKey is used to store renderer in context.
type rendererKey struct{}

// NewRootCmd creates and returns the root command.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "dbt-lineage [MODEL]",
		Short: "Visualize and analyze a dbt project's dependency graph",
		Long: `dbt-lineage discovers a dbt project's models, sources, seeds, snapshots,
exposures, and tests, assembles them into a typed dependency graph, and
renders a focused view of it as ASCII, DOT, JSON, Mermaid, SVG, or HTML —
or drives an interactive terminal explorer over the same graph.`,
		Version: Version,
		Args:    cobra.MaximumNArgs(1),
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
				return nil
			}

			var err error
			cfg, err = config.Load(cfgFile, cmd.Root().PersistentFlags())
			if err != nil {
				return err
			}

			ctx := context.WithValue(cmd.Context(), configKey{}, cfg)

			mode := output.Mode(cfg.OutputFormat)
			renderer := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), mode)
			ctx = context.WithValue(ctx, rendererKey{}, renderer)
			ctx = config.WithLogger(ctx, config.NewLogger(cfg.Verbose))
			cmd.SetContext(ctx)

			if cfg.Verbose {
				if configFile := config.GetConfigFileUsed(); configFile != "" {
					fmt.Fprintf(os.Stderr, "Using config file: %s\n", configFile)
				}
			}

			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			focus := ""
			if len(args) == 1 {
				focus = args[0]
			}
			return commands.RunFocus(cmd, focus)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.SetVersionTemplate(`{{.Name}} {{.Version}}
`)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./dbt-lineage.yaml)")
	rootCmd.PersistentFlags().StringP("project-dir", "p", ".", "dbt project directory")
	rootCmd.PersistentFlags().IntP("upstream-depth", "u", 0, "upstream hops to include around the focus node")
	rootCmd.PersistentFlags().IntP("downstream-depth", "d", -1, "downstream hops to include around the focus node (-1 = unbounded)")
	rootCmd.PersistentFlags().BoolP("interactive", "i", false, "launch the interactive terminal explorer")
	rootCmd.PersistentFlags().StringP("output", "o", "auto", "output format (auto|text|markdown|json|ascii|dot|mermaid|svg|html)")
	rootCmd.PersistentFlags().StringP("selector", "s", "", "comma-separated selector expression (tag:X, path:Y, or a bare name)")
	rootCmd.PersistentFlags().String("manifest", "", "path to a compiled manifest.json to merge in addition to the filesystem scan")
	rootCmd.PersistentFlags().Bool("include-tests", false, "include test nodes")
	rootCmd.PersistentFlags().Bool("include-seeds", false, "include seed nodes")
	rootCmd.PersistentFlags().Bool("include-snapshots", false, "include snapshot nodes")
	rootCmd.PersistentFlags().Bool("include-exposures", false, "include exposure nodes")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output")

	_ = rootCmd.RegisterFlagCompletionFunc("output", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"auto", "text", "markdown", "json", "ascii", "dot", "mermaid", "svg", "html"}, cobra.ShellCompDirectiveNoFileComp
	})

	rootCmd.AddCommand(commands.NewVersionCommand(Version))
	rootCmd.AddCommand(commands.NewImpactCommand())
	rootCmd.AddCommand(commands.NewDiffCommand())
	rootCmd.AddCommand(commands.NewServeCommand())
	rootCmd.AddCommand(NewCompletionCommand())

	return rootCmd
}

// Execute runs the root command and returns its error, if any, for the
// caller to translate into a process exit code.
func Execute() error {
	rootCmd := NewRootCmd()
	return rootCmd.Execute()
}

// GetConfig retrieves the config from the command context.
func GetConfig(ctx context.Context) *config.Config {
	if c, ok := ctx.Value(configKey{}).(*config.Config); ok {
		return c
	}
	return &config.Config{ProjectDir: config.DefaultProjectDir, OutputFormat: config.DefaultOutput}
}

// GetRenderer retrieves the renderer from the command context.
func GetRenderer(ctx context.Context) *output.Renderer {
	if r, ok := ctx.Value(rendererKey{}).(*output.Renderer); ok {
		return r
	}
	return output.NewRenderer(os.Stdout, os.Stderr, output.ModeAuto)
}

// NewCompletionCommand creates the completion command.
func NewCompletionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `To load completions:

Bash:
  $ source <(dbt-lineage completion bash)

Zsh:
  $ dbt-lineage completion zsh > "${fpath[1]}/_dbt-lineage"

Fish:
  $ dbt-lineage completion fish | source

PowerShell:
  PS> dbt-lineage completion powershell | Out-String | Invoke-Expression
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(os.Stdout)
			case "zsh":
				return cmd.Root().GenZshCompletion(os.Stdout)
			case "fish":
				return cmd.Root().GenFishCompletion(os.Stdout, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(os.Stdout)
			}
			return nil
		},
	}
	return cmd
}
