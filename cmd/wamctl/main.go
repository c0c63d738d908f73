// Wamctl is a command line controller for Samsung WAM networked audio
// speakers.
//
// It provides speaker discovery, playback and volume control, URL
// streaming and multiroom group management over the speakers' TCP
// control API. No Samsung account or cloud service is involved; all
// communication stays on the local network.
//
// Usage:
//
//	wamctl [command] [flags]
//
// See 'wamctl --help' for available commands.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/soundmesh/wam/internal/logging"
	"github.com/soundmesh/wam/internal/version"
)

func main() {
	if err := logging.InitializeFromEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer logging.Sync()

	if err := rootCmd.Execute(); err != nil {
		logging.Sync()
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "wamctl",
	Short: "Samsung WAM Speaker Controller",
	Long: `A command line controller for Samsung WAM networked audio speakers.

Provides speaker discovery, playback and volume control, URL streaming
and multiroom group management over the local network. Speakers can be
addressed by IP address or by a nickname from the wamctl config file.

Set WAM_LOG_LEVEL=debug to see the wire traffic.`,
	Version:       version.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("wamctl %s\n", version.Full())
	},
}
