// Samsungtv-remote controls Samsung Smart TVs over the network.
//
// It supports the legacy binary remote protocol (2008-2013 models, TCP
// port 55000) and the websocket remote protocol (2014+ models), plus
// UPnP control of volume, channels, sources, picture settings, and
// media playback. TVs are found via SSDP and mDNS discovery.
//
// Usage:
//
//	samsungtv-remote [command] [flags]
//
// Running without arguments launches the interactive remote pad.
// See 'samsungtv-remote --help' for available commands.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/muurk/samsungtv/internal/logging"
	"github.com/muurk/samsungtv/internal/version"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "samsungtv-remote",
	Short: "Samsung Smart TV remote control",
	Long: `Control Samsung Smart TVs from the command line.

Supports the legacy binary remote protocol (2008-2013 models) and the
websocket remote protocol (2014+ models). Volume, channels, sources,
picture settings, and media playback go over UPnP when the TV exposes
the corresponding services.

If no command is specified, the interactive remote pad will launch.`,
	Version: version.Version,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// Initialize logging from environment variable (silent by default)
		// Set SAMSUNGTV_LOG_LEVEL=debug to see detailed logs
		if err := logging.InitializeFromEnv(); err != nil {
			// Ignore error, GetLogger will create fallback logger
			_ = err
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		// Default behavior: run the remote pad when no subcommand provided
		return runPad(cmd, args)
	},
}

func init() {
	// Disable automatic completion command generation
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("samsungtv-remote %s (commit: %s)\n", version.Version, version.Commit)
	},
}
