// firms runs the FIR management service.
//
// Usage:
//
//	firms serve
//	firms migrate
//	firms overdue
//	firms seed-admin --username=<name> [--full-name=<name>] [--email=<addr>]
//
// Configuration comes from the environment and an optional .env file.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// version is set at build time via -ldflags.
var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "firms",
	Short: "Police FIR management service",
	Long:  "firms registers First Information Reports, tracks their investigation\nworkflow and serves the HTTP API used by station officers and admins.",
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(overdueCmd)
	rootCmd.AddCommand(seedAdminCmd)
	rootCmd.Version = version
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
