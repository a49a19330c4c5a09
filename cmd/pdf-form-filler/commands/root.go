package commands

import (
	"fmt"
	"io"
	"log"
	"os"
	"runtime"

	"github.com/a3tai/pdf-form-filler/internal/config"
	"github.com/a3tai/pdf-form-filler/internal/taxforms"
	"github.com/spf13/cobra"
)

var (
	version   = "dev"
	buildTime = "unknown"
	gitCommit = "unknown"
)

// SetVersion sets the build information reported by the CLI
func SetVersion(v, built, commit string) {
	version = v
	buildTime = built
	gitCommit = commit
}

// Execute runs the command line with os.Args
func Execute() error {
	return NewRootCmd().Execute()
}

// NewRootCmd builds the command tree
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "pdf-form-filler",
		Short: "Fill IRS tax form templates",
		Long: `Fills the IRS W-9, W-8BEN and W-8BEN-E templates from JSON values and
writes finalized, non-editable PDFs.

The same operations are available to AI agents through the Model Context
Protocol with the serve command.`,
		Version:      version,
		SilenceUsage: true,
	}

	// Diagnostics go to stderr so stdout stays usable for PDFs and MCP
	rootCmd.SetOut(os.Stderr)
	rootCmd.SetErr(os.Stderr)

	config.RegisterFlags(rootCmd.PersistentFlags(), config.DefaultConfig())

	rootCmd.AddCommand(
		newFillCmd(),
		newCheckCmd(),
		newFieldsCmd(),
		newServeCmd(),
		newVersionCmd(),
	)
	return rootCmd
}

// loadConfig resolves the configuration for cmd and sets up logging
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return nil, err
	}
	if version != "dev" {
		cfg.Version = version
	}
	setupLogging(cfg, cmd.ErrOrStderr())

	if cfg.IsDebug() {
		log.Printf("Starting with configuration: %s", cfg.String())
	}
	return cfg, nil
}

// newService loads the configuration and creates the form service
func newService(cmd *cobra.Command) (*taxforms.Service, *config.Config, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}
	service, err := taxforms.NewService(cfg, log.Default())
	if err != nil {
		return nil, nil, err
	}
	return service, cfg, nil
}

// setupLogging sends log output to w, silencing everything but errors
// unless debug logging is enabled
func setupLogging(cfg *config.Config, w io.Writer) {
	switch cfg.LogLevel {
	case "debug":
		log.SetOutput(w)
		log.SetFlags(log.LstdFlags | log.Lshortfile)
	case "info", "warn":
		log.SetOutput(w)
		log.SetFlags(log.LstdFlags)
	default:
		log.SetOutput(io.Discard)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			printVersion(cmd.OutOrStdout())
		},
	}
}

// printVersion prints version information
func printVersion(w io.Writer) {
	fmt.Fprintf(w, "PDF Form Filler\n")
	fmt.Fprintf(w, "Version: %s\n", version)
	fmt.Fprintf(w, "Build Time: %s\n", buildTime)
	fmt.Fprintf(w, "Git Commit: %s\n", gitCommit)
	fmt.Fprintf(w, "Built with: %s\n", runtime.Version())
}
