/*
Package commands implements the configusage command line: the root command
with its persistent flags, the report command and the version command.
*/
package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/ajdepersio/ConfigUsageReport/internal/config"
	"github.com/ajdepersio/ConfigUsageReport/pkg/logger"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

// Options holds command-line options that apply to all commands
type Options struct {
	Config     *config.Config
	ConfigPath string
	Verbose    int
	NoProgress bool
	NoColor    bool

	Log logger.Logger

	// Fs and Stdout are replaced in tests
	Fs     afero.Fs
	Stdout io.Writer
	Stderr io.Writer
}

// NewRootCommand creates the root command for the application
func NewRootCommand() *cobra.Command {
	return newRootCommand(&Options{
		Fs:     afero.NewOsFs(),
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	})
}

func newRootCommand(opts *Options) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "configusage [command] [flags]",
		Short: "Report where configuration codes are used in source code",
		Long: `configusage finds every source file that references a known configuration
code as <code>.Name and writes a report with one row per code and one column
per file extension.

Configuration is read from defaults, an optional YAML file (--config) and
CONFIGUSAGE_* environment variables. Flags override all of them.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initializeCommand(cmd, opts)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.SetOut(opts.Stdout)
	rootCmd.SetErr(opts.Stderr)

	rootCmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "",
		"YAML config file")
	rootCmd.PersistentFlags().CountVarP(&opts.Verbose, "verbose", "v",
		"verbose output (can be used multiple times)")
	rootCmd.PersistentFlags().BoolVar(&opts.NoProgress, "no-progress", false,
		"disable progress reporting")
	rootCmd.PersistentFlags().BoolVar(&opts.NoColor, "no-color", false,
		"disable colored output")

	rootCmd.AddCommand(
		newReportCommand(opts),
		newVersionCommand(opts),
	)

	return rootCmd
}

// initializeCommand loads configuration and creates the logger
func initializeCommand(cmd *cobra.Command, opts *Options) error {
	cfg, err := config.LoadFs(opts.Fs, opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Override config with command line flags
	if cmd.Flags().Changed("verbose") {
		cfg.Verbose = opts.Verbose
	}
	cfg.NoProgress = cfg.NoProgress || opts.NoProgress
	cfg.NoColor = cfg.NoColor || opts.NoColor

	opts.Config = &cfg
	opts.Log = logger.NewLogger(logger.Config{
		Verbosity: cfg.Verbose,
		Output:    opts.Stderr,
	})

	opts.Log.WithFields(logger.Fields{
		"verbosity": cfg.Verbose,
		"command":   cmd.Name(),
		"config":    opts.ConfigPath,
	}).Debug("Initializing command")

	return nil
}
