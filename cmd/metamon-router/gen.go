package main

import (
	stderrors "errors"

	"github.com/spf13/cobra"

	"github.com/metamon-dev/metamon/internal/errors"
	"github.com/metamon-dev/metamon/pkg/manifest"
	"github.com/metamon-dev/metamon/pkg/router"
)

func genCmd() *cobra.Command {
	var (
		pagesDir string
		output   string
	)

	cmd := &cobra.Command{
		Use:   "gen",
		Short: "Generate the routes.json manifest",
		Long: `Scan the pages directory and generate the routes.json manifest.

The output is deterministic: running it multiple times produces
identical output unless the routes change. Generation fails on the
first invalid or conflicting route; run 'metamon-router check' for
the full list.

Examples:
  metamon-router gen
  metamon-router gen --output=dist/routes.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGen(pagesDir, output)
		},
	}

	cmd.Flags().StringVar(&pagesDir, "pages", "", "Pages directory (default from metamon.json)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default from metamon.json)")

	return cmd
}

func runGen(pagesDir, output string) error {
	cfg, root, pageList, err := scanProject(pagesDir)
	if err != nil {
		return err
	}

	info("Scanning %s...", root)
	info("Found %d pages", len(pageList))

	table := router.NewTable()
	if err := manifest.RegisterAll(table, pageList); err != nil {
		var failure *manifest.RegisterError
		if stderrors.As(err, &failure) {
			return codedRegisterError(failure)
		}
		return err
	}

	if output == "" {
		if cfg != nil {
			output = cfg.ManifestPath()
		} else {
			output = manifest.DefaultFileName
		}
	}

	if err := manifest.FromTable(table).Write(output); err != nil {
		return errors.New("M061").Wrap(err)
	}

	success("Wrote %s (%d routes)", output, table.Len())
	return nil
}
