package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"samplefetch/config"
	"samplefetch/internal/registry"
	"samplefetch/internal/runner"
	"samplefetch/internal/s3client"
	"samplefetch/pkg/utils"
)

var (
	cfg      *config.Config
	exitCode int
)

var rootCmd = &cobra.Command{
	Use:   "samplefetch [name]",
	Short: "Download and extract sample code from a sample registry",
	Long: `samplefetch lists the samples published by a sample registry, shows the
details of a single sample, and downloads a sample's zip archive into a local
folder, overwriting files that already exist there.

Without a name every available sample is listed. With a name the sample is
downloaded into a folder named after it unless --folder is given.
The registry address is taken from REGISTRY_URL (.env file or environment)
unless overridden with --registry.`,
	Example: `  # List the available samples
  samplefetch

  # Show a sample's details
  samplefetch console --details

  # Download a sample into ./console
  samplefetch console

  # Download into a specific folder
  samplefetch console --folder ./my-app

  # Use a different registry
  samplefetch --registry https://samples.example.com/Samples`,
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runSamples,
}

// Execute runs the root command and returns the process exit code.
func Execute(config *config.Config) (int, error) {
	cfg = config
	exitCode = runner.ExitOK

	if err := rootCmd.Execute(); err != nil {
		return 1, err
	}
	return exitCode, nil
}

func init() {
	rootCmd.Flags().StringP("folder", "f", "", "Folder to write the sample to")
	rootCmd.Flags().Bool("details", false, "Show a sample project's details")
	rootCmd.Flags().StringP("registry", "r", "", "Override the registry URL from config")
	rootCmd.Flags().Int("timeout", 0, "Timeout in seconds for each registry request (default: REGISTRY_TIMEOUT or 30)")
	rootCmd.Flags().String("log-level", "", "Log level: trace, debug, info, warn, error (default: LOG_LEVEL or info)")
	rootCmd.Flags().BoolP("verbose", "v", false, "Enable debug logging")
}

func runSamples(cmd *cobra.Command, args []string) error {
	var name string
	if len(args) > 0 {
		name = args[0]
	}
	folder, _ := cmd.Flags().GetString("folder")
	details, _ := cmd.Flags().GetBool("details")

	logger := NewLogger(cmd.ErrOrStderr(), getLogLevel(cmd), isVerbose(cmd))
	if cfg.EnvFileLoaded {
		logger.Debug().Msg("Loaded configuration from .env")
	}

	client, err := registry.New(getRegistryURL(cmd),
		registry.WithTimeout(getTimeout(cmd)),
		registry.WithObjectSource(s3client.NewLazy(cfg)),
	)
	if err != nil {
		return fmt.Errorf("failed to create registry client: %w", err)
	}

	r := runner.New(client, logger)
	r.Out = cmd.OutOrStdout()
	r.Err = cmd.ErrOrStderr()
	r.ErrorColor = utils.NewErrorColor(r.Err)

	exitCode = r.Run(context.Background(), runner.Options{
		Name:    name,
		Folder:  folder,
		Details: details,
	})
	return nil
}

func getRegistryURL(cmd *cobra.Command) string {
	registryURL, _ := cmd.Flags().GetString("registry")
	if registryURL != "" {
		return registryURL
	}
	return cfg.RegistryURL
}

func getTimeout(cmd *cobra.Command) time.Duration {
	seconds, _ := cmd.Flags().GetInt("timeout")
	if seconds > 0 {
		return time.Duration(seconds) * time.Second
	}
	return cfg.Timeout
}

func getLogLevel(cmd *cobra.Command) string {
	level, _ := cmd.Flags().GetString("log-level")
	if level != "" {
		return level
	}
	return cfg.LogLevel
}

func isVerbose(cmd *cobra.Command) bool {
	verbose, _ := cmd.Flags().GetBool("verbose")
	return verbose
}
