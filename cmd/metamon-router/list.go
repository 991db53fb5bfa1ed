package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/metamon-dev/metamon/pkg/manifest"
	"github.com/metamon-dev/metamon/pkg/router"
)

func listCmd() *cobra.Command {
	var (
		pagesDir string
		jsonOut  bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the route table",
		Long: `Scan the pages directory and print the resulting route table in
registration order.

Examples:
  metamon-router list
  metamon-router list --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(pagesDir, jsonOut)
		},
	}

	cmd.Flags().StringVar(&pagesDir, "pages", "", "Pages directory (default from metamon.json)")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Machine-readable output")

	return cmd
}

func runList(pagesDir string, jsonOut bool) error {
	_, _, pageList, err := scanProject(pagesDir)
	if err != nil {
		return err
	}

	table := router.NewTable()
	if err := manifest.RegisterAll(table, pageList, manifest.ContinueOnError()); err != nil {
		warn("Some routes did not register; run 'metamon-router check' for details")
	}

	if jsonOut {
		out, err := json.MarshalIndent(manifest.FromTable(table), "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	}

	fmt.Println()
	for _, route := range table.All() {
		kind := "static"
		if route.Dynamic {
			kind = "dynamic"
		}
		component := ""
		if target, ok := route.Target.(manifest.Target); ok {
			component = target.Component
		}
		fmt.Printf("  %-32s %-24s %s\n", route.Pattern, component, kind)
	}
	fmt.Println()
	info("%d routes (%d dynamic)", table.Len(), table.DynamicLen())

	return nil
}
