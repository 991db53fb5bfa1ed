package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/metamon-dev/metamon/internal/config"
	"github.com/metamon-dev/metamon/internal/dev"
)

func devCmd() *cobra.Command {
	var (
		port        int
		host        string
		openBrowser bool
	)

	cmd := &cobra.Command{
		Use:   "dev",
		Short: "Start the development server",
		Long: `Start the development server with hot reload.

The dev server watches the pages directory, rebuilds the route
table on change, and automatically refreshes connected browsers.

Features:
  • Route table rebuild on page change
  • Error overlay in browser
  • Route inspection under /_metamon

Examples:
  metamon-router dev
  metamon-router dev --port=8080
  metamon-router dev --host=0.0.0.0`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDev(port, host, openBrowser)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "Port to run on (default from metamon.json)")
	cmd.Flags().StringVarP(&host, "host", "H", "", "Host to bind to (default from metamon.json)")
	cmd.Flags().BoolVarP(&openBrowser, "open", "o", false, "Open browser on start")

	return cmd
}

func runDev(port int, host string, openBrowser bool) error {
	// Load config
	cfg, err := config.LoadFromWorkingDir()
	if err != nil {
		return err
	}

	// Apply command-line overrides
	if port > 0 {
		cfg.Dev.Port = port
	}
	if host != "" {
		cfg.Dev.Host = host
	}
	if openBrowser {
		cfg.Dev.OpenBrowser = true
	}

	// Print banner
	printBanner()
	fmt.Println("  dev")
	fmt.Println()

	// Create server
	server, err := dev.NewServer(dev.ServerOptions{
		Config: cfg,
		OnRebuild: func(count int) {
			success("Route table ready (%d routes)", count)
		},
	})
	if err != nil {
		return err
	}

	// Handle signals
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigCh
		fmt.Println("\n\n  Shutting down...")
		cancel()
	}()

	info("Serving %s", cfg.DevURL())
	fmt.Println()

	// Open browser if requested
	if cfg.Dev.OpenBrowser {
		go openURL(cfg.DevURL())
	}

	// Start server
	return server.Start(ctx)
}

// openURL opens a URL in the default browser.
func openURL(url string) {
	var cmd *exec.Cmd

	switch {
	case commandExists("xdg-open"):
		cmd = exec.Command("xdg-open", url)
	case commandExists("open"):
		cmd = exec.Command("open", url)
	case commandExists("start"):
		cmd = exec.Command("cmd", "/c", "start", url)
	default:
		return
	}

	cmd.Start()
}

// commandExists checks if a command exists in PATH.
func commandExists(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}
