// Package main provides the entry point for the rcmdr CLI.
//
// rcmdr is an interactive front-end for rclone: it navigates local and
// remote storage, transfers files, and serves storage over HTTP, WebDAV
// or FTP with one supervised rclone process per target.
package main

import (
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/rcmdr/cli/internal/ui"
)

// Version information set at build time via ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "rcmdr",
	Short: "Interactive rclone front-end for transfers and serving",
	Long: `rcmdr drives rclone interactively.

Browse local folders or any configured rclone remote with a numbered
listing, select files with ranges (1,3-5), then upload, download, sync,
or expose the selection over HTTP, WebDAV or FTP — one supervised rclone
server per target, ports allocated from a single base port.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		debug, _ := cmd.Flags().GetBool("debug")
		if debug {
			log.SetLevel(log.DebugLevel)
			log.Debug("Debug logging enabled")
		}
	},
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "Suppress interactive pickers and non-essential output")

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(uploadCmd)
	rootCmd.AddCommand(downloadCmd)
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(serveRemoteCmd)
	rootCmd.AddCommand(serveLocalCmd)
	rootCmd.AddCommand(remotesCmd)
	rootCmd.AddCommand(flagsCmd)
}

// versionCmd shows version information.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		ui.PrintInfo("Version: %s", version)
		ui.PrintInfo("Commit: %s", commit)
		ui.PrintInfo("Built: %s", date)
	},
}

func main() {
	Execute()
}
