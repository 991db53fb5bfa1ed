package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/metamon-dev/metamon/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const banner = `
  ╔╦╗╔═╗╔╦╗╔═╗╔╦╗╔═╗╔╗╔
  ║║║║╣  ║ ╠═╣║║║║ ║║║║
  ╩ ╩╚═╝ ╩ ╩ ╩╩ ╩╚═╝╝╚╝
`

func main() {
	rootCmd := &cobra.Command{
		Use:   "metamon-router",
		Short: "Route table tooling for Metamon applications",
		Long: `Metamon's route table toolchain.

Scan page files into a route table, validate it, generate the
routes.json manifest, and serve it all during development:

  • File-based routing with [name] parameters
  • Conservative conflict detection at registration
  • Deterministic routes.json manifests
  • Hot reload development server`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Add commands
	rootCmd.AddCommand(
		initCmd(),
		checkCmd(),
		listCmd(),
		resolveCmd(),
		genCmd(),
		devCmd(),
		versionCmd(),
	)

	// Execute
	if err := rootCmd.Execute(); err != nil {
		errors.PrintError(err)
		os.Exit(1)
	}
}

// printBanner prints the Metamon ASCII art banner.
func printBanner() {
	fmt.Print(banner)
}

// success prints a success message.
func success(format string, args ...any) {
	fmt.Printf("\033[32m✓\033[0m %s\n", fmt.Sprintf(format, args...))
}

// info prints an info message.
func info(format string, args ...any) {
	fmt.Printf("  %s\n", fmt.Sprintf(format, args...))
}

// warn prints a warning message.
func warn(format string, args ...any) {
	fmt.Printf("\033[33m⚠\033[0m %s\n", fmt.Sprintf(format, args...))
}

// errorMsg prints an error message.
func errorMsg(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "\033[31m✗\033[0m %s\n", fmt.Sprintf(format, args...))
}
