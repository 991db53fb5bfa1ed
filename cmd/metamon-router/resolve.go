package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/metamon-dev/metamon/internal/errors"
	"github.com/metamon-dev/metamon/pkg/manifest"
	"github.com/metamon-dev/metamon/pkg/router"
)

func resolveCmd() *cobra.Command {
	var (
		pagesDir string
		jsonOut  bool
	)

	cmd := &cobra.Command{
		Use:   "resolve <path>",
		Short: "Resolve a path against the route table",
		Long: `Build the route table from the pages directory and resolve a URL
path against it, printing the matched pattern and captured
parameters.

The exit code is non-zero when no route matches.

Examples:
  metamon-router resolve /user/42
  metamon-router resolve "/search?q=go" --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runResolve(pagesDir, args[0], jsonOut)
		},
	}

	cmd.Flags().StringVar(&pagesDir, "pages", "", "Pages directory (default from metamon.json)")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Machine-readable output")

	return cmd
}

type resolveResult struct {
	Path    string            `json:"path"`
	Pattern string            `json:"pattern"`
	Params  map[string]string `json:"params"`
	Query   map[string]string `json:"query"`
}

func runResolve(pagesDir, path string, jsonOut bool) error {
	_, _, pageList, err := scanProject(pagesDir)
	if err != nil {
		return err
	}

	table := router.NewTable()
	if err := manifest.RegisterAll(table, pageList, manifest.ContinueOnError()); err != nil && !jsonOut {
		warn("Some routes did not register; run 'metamon-router check' for details")
	}

	match, ok := table.Resolve(path)
	if !ok {
		return errors.New("M062").
			WithDetail(fmt.Sprintf("No registered route matches %q.", path)).
			WithSuggestion("Run 'metamon-router list' to see the route table")
	}

	if jsonOut {
		out, err := json.MarshalIndent(resolveResult{
			Path:    path,
			Pattern: match.Config.Pattern,
			Params:  match.Params,
			Query:   match.Query,
		}, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	}

	fmt.Println()
	success("%s matches %s", path, match.Config.Pattern)
	if target, ok := match.Config.Target.(manifest.Target); ok && target.Component != "" {
		info("Component: %s", target.Component)
	}
	for _, name := range match.Config.ParamNames {
		info("Param %s = %q", name, match.Params[name])
	}
	for key, value := range match.Query {
		info("Query %s = %q", key, value)
	}
	fmt.Println()

	return nil
}
