package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/metamon-dev/metamon/internal/config"
	"github.com/metamon-dev/metamon/internal/errors"
	"github.com/metamon-dev/metamon/pkg/pages"
)

// starterPage is the page scaffolded for new projects. The router never
// parses page contents; only the file path matters.
const starterPage = `<template>
  <h1>Welcome to Metamon</h1>
</template>
`

func initCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init [dir]",
		Short: "Scaffold a Metamon project",
		Long: `Create a metamon.json and a pages directory with a starter page.

Examples:
  metamon-router init
  metamon-router init my-app
  metamon-router init --force`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}
			return runInit(dir, force)
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite an existing metamon.json")

	return cmd
}

func runInit(dir string, force bool) error {
	if config.Exists(dir) && !force {
		return errors.Newf(errors.CategoryConfig,
			"%s already contains a %s (use --force to overwrite)", dir, config.ConfigFileName)
	}

	projectDir, err := filepath.Abs(dir)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(projectDir, 0755); err != nil {
		return err
	}

	cfg := config.New()
	cfg.Name = filepath.Base(projectDir)
	if err := cfg.SaveTo(filepath.Join(projectDir, config.ConfigFileName)); err != nil {
		return err
	}
	success("Created %s", config.ConfigFileName)

	pagesDir := filepath.Join(projectDir, cfg.Paths.Pages)
	if err := os.MkdirAll(pagesDir, 0755); err != nil {
		return err
	}

	indexPath := filepath.Join(pagesDir, "index"+pages.Extension)
	if _, err := os.Stat(indexPath); os.IsNotExist(err) {
		if err := os.WriteFile(indexPath, []byte(starterPage), 0644); err != nil {
			return err
		}
		success("Created %s", filepath.Join(cfg.Paths.Pages, "index"+pages.Extension))
	}

	fmt.Println()
	info("Next steps:")
	info("  metamon-router check")
	info("  metamon-router dev")
	fmt.Println()

	return nil
}
