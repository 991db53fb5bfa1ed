package main

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/metamon-dev/metamon/internal/config"
	"github.com/metamon-dev/metamon/internal/errors"
	"github.com/metamon-dev/metamon/pkg/manifest"
	"github.com/metamon-dev/metamon/pkg/pages"
	"github.com/metamon-dev/metamon/pkg/routepath"
	"github.com/metamon-dev/metamon/pkg/router"
)

func checkCmd() *cobra.Command {
	var (
		pagesDir string
		jsonOut  bool
	)

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Validate the route table",
		Long: `Scan the pages directory, build the route table, and report every
problem found.

Checks:
  • Pattern syntax (balanced brackets, named parameters)
  • Exact duplicate patterns
  • Dynamic pattern conflicts (same segment count, parameters in
    the same positions)

The exit code is non-zero when any problem is found.

Examples:
  metamon-router check
  metamon-router check --pages=src/pages
  metamon-router check --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(pagesDir, jsonOut)
		},
	}

	cmd.Flags().StringVar(&pagesDir, "pages", "", "Pages directory (default from metamon.json)")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Machine-readable output")

	return cmd
}

type checkProblem struct {
	coded  *errors.MetamonError
	source string
}

type checkProblemJSON struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Pattern string `json:"pattern,omitempty"`
	Detail  string `json:"detail,omitempty"`
	Source  string `json:"source,omitempty"`
}

type checkReport struct {
	Pages    int                `json:"pages"`
	Routes   int                `json:"routes"`
	Problems []checkProblemJSON `json:"problems"`
}

func runCheck(pagesDir string, jsonOut bool) error {
	_, root, pageList, err := scanProject(pagesDir)
	if err != nil {
		return err
	}

	if !jsonOut {
		info("Scanning %s...", root)
		info("Found %d pages", len(pageList))
	}

	table := router.NewTable()
	problems := collectProblems(table, pageList)

	if jsonOut {
		report := checkReport{
			Pages:    len(pageList),
			Routes:   table.Len(),
			Problems: []checkProblemJSON{},
		}
		for _, p := range problems {
			report.Problems = append(report.Problems, checkProblemJSON{
				Code:    p.coded.Code,
				Message: p.coded.Message,
				Pattern: p.coded.Pattern,
				Detail:  p.coded.Detail,
				Source:  p.source,
			})
		}
		out, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
	} else {
		for _, p := range problems {
			fmt.Println()
			fmt.Print(p.coded.Format())
		}
		fmt.Println()
	}

	if len(problems) > 0 {
		return errors.New("M060").
			WithDetail(fmt.Sprintf("%d problem(s) across %d pages.", len(problems), len(pageList)))
	}

	if !jsonOut {
		success("%d routes registered, no problems", table.Len())
	}
	return nil
}

// collectProblems registers every page into table and gathers each
// failure plus any diagnostic sweep finding as a coded problem.
func collectProblems(table *router.Table, pageList []manifest.Page) []checkProblem {
	var problems []checkProblem

	err := manifest.RegisterAll(table, pageList, manifest.ContinueOnError())
	var multi *manifest.MultiRegisterError
	if stderrors.As(err, &multi) {
		for i := range multi.Errors {
			failure := &multi.Errors[i]
			problems = append(problems, checkProblem{
				coded:  codedRegisterError(failure),
				source: failure.Page.Target.Source,
			})
		}
	}

	for _, issue := range table.Validate() {
		problems = append(problems, checkProblem{coded: codedIssue(issue)})
	}

	return problems
}

// codedRegisterError converts a registration failure into a coded error
// carrying the offending pattern and its source file.
func codedRegisterError(failure *manifest.RegisterError) *errors.MetamonError {
	code := "M001"
	switch {
	case stderrors.Is(failure.Err, router.ErrExactRouteConflict):
		code = "M005"
	case stderrors.Is(failure.Err, router.ErrDynamicRouteConflict):
		code = "M006"
	case stderrors.Is(failure.Err, routepath.ErrUnbalancedBrackets),
		stderrors.Is(failure.Err, routepath.ErrNestedBrackets):
		code = "M002"
	case stderrors.Is(failure.Err, routepath.ErrEmptyParamName):
		code = "M003"
	}

	coded := errors.New(code).
		WithPattern(failure.Page.Pattern).
		Wrap(failure.Err)

	var reg *router.RegistrationError
	if stderrors.As(failure.Err, &reg) && reg.Conflict != "" {
		coded = coded.WithDetail(fmt.Sprintf("Conflicts with %q.", reg.Conflict))
	}
	if src := failure.Page.Target.Source; src != "" {
		coded = coded.WithSuggestion("Check " + src)
	}
	return coded
}

// codedIssue converts a diagnostic sweep finding into a coded error.
func codedIssue(issue router.Issue) *errors.MetamonError {
	code := "M001"
	if issue.Type == router.IssueDynamicConflict {
		code = "M006"
	}

	coded := errors.New(code).WithDetail(issue.Message)
	if len(issue.Patterns) > 0 {
		coded = coded.WithPattern(issue.Patterns[0])
	}
	return coded
}

// scanProject loads the project and scans its pages directory. The
// --pages override works without a metamon.json; the returned config is
// nil in that case.
func scanProject(pagesDir string) (*config.Config, string, []manifest.Page, error) {
	var cfg *config.Config
	if pagesDir == "" {
		loaded, err := config.LoadFromWorkingDir()
		if err != nil {
			return nil, "", nil, err
		}
		cfg = loaded
		pagesDir = cfg.PagesPath()
	}

	if _, err := os.Stat(pagesDir); err != nil {
		return nil, "", nil, errors.New("M030").
			WithDetail("Looked for " + pagesDir).
			WithSuggestion("Run 'metamon-router init' to scaffold a project")
	}

	pageList, err := pages.NewScanner(pagesDir).Scan()
	if err != nil {
		return nil, "", nil, errors.New("M031").Wrap(err)
	}
	return cfg, pagesDir, pageList, nil
}
