package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/Mike-Gough/raml-enforcer/internal/adapters/outbound/config"
	"github.com/Mike-Gough/raml-enforcer/internal/adapters/outbound/gitinfo"
	"github.com/Mike-Gough/raml-enforcer/internal/adapters/outbound/parser"
	"github.com/Mike-Gough/raml-enforcer/internal/adapters/outbound/scanner"
	"github.com/Mike-Gough/raml-enforcer/internal/adapters/outbound/schemas"
	"github.com/Mike-Gough/raml-enforcer/internal/adapters/outbound/tui"
	"github.com/Mike-Gough/raml-enforcer/internal/application"
	"github.com/Mike-Gough/raml-enforcer/internal/domain"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

type lintFlags struct {
	configPath string
	jsonOutput bool
	noSchemas  bool
	verbose    bool
	quiet      bool

	noColor           bool
	noIncludes        bool
	noWarnings        bool
	noErrors          bool
	throwOnWarnings   bool
	noThrowOnWarnings bool
	noThrowOnErrors   bool
	noWarnOldVersion  bool
	noBodyStatuses    []int
}

// lintDeps are the outbound adapters the lint command drives.
type lintDeps struct {
	config  domain.ConfigLoader
	scanner domain.FileScanner
	git     domain.GitInfo
}

func defaultLintDeps() lintDeps {
	return lintDeps{config: config.New(), scanner: scanner.New(), git: gitinfo.New()}
}

func newLintCmd() *cobra.Command {
	var f lintFlags
	deps := defaultLintDeps()

	cmd := &cobra.Command{
		Use:   "raml-enforcer [options] <file...>",
		Short: "Lint RAML and OpenAPI contracts",
		Long: "raml-enforcer checks API contracts for structural validity and authoring quality, " +
			"prints every issue it finds and exits non-zero when the configured thresholds are crossed.",
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				_ = cmd.Help()
				return &ExitError{Code: 1}
			}
			return runLint(cmd, args, f, deps)
		},
	}

	fl := cmd.Flags()
	fl.BoolVar(&f.noColor, "no-color", false, "Do not use color in output")
	fl.BoolVar(&f.noIncludes, "no-includes", false, "Do not report issues located in included files")
	fl.BoolVar(&f.noWarnings, "no-warnings", false, "Do not report warnings")
	fl.BoolVar(&f.noErrors, "no-errors", false, "Do not report errors")
	fl.BoolVar(&f.throwOnWarnings, "throw-on-warnings", false, "Exit with code 1 when warnings occur")
	fl.BoolVar(&f.noThrowOnWarnings, "no-throw-on-warnings", false, "Do not exit with code 1 when warnings occur")
	fl.BoolVar(&f.noThrowOnErrors, "no-throw-on-errors", false, "Do not exit with code 1 when errors occur")
	fl.BoolVar(&f.noWarnOldVersion, "no-warn-old-raml-version", false, "Do not warn about RAML 0.8 documents")
	fl.IntSliceVar(&f.noBodyStatuses, "no-body-status", nil, "Response codes that must not return a payload (default 204)")
	fl.StringVar(&f.configPath, "config", config.DefaultFile, "Path of the config file")
	fl.BoolVar(&f.jsonOutput, "json", false, "Output outcomes as JSON")
	fl.BoolVar(&f.noSchemas, "no-schemas", false, "Do not export payload schemas")
	fl.BoolVar(&f.verbose, "verbose", false, "Log debug output to stderr")
	fl.BoolVar(&f.quiet, "quiet", false, "Only print issue lines")

	return cmd
}

func runLint(cmd *cobra.Command, args []string, f lintFlags, deps lintDeps) error {
	opts, err := resolveOptions(cmd, f, deps.config)
	if err != nil {
		return err
	}

	files, err := deps.scanner.Expand(args)
	if err != nil {
		return fmt.Errorf("expanding arguments: %w", err)
	}
	if len(files) == 0 {
		return fmt.Errorf("no API documents found in %s", strings.Join(args, ", "))
	}

	var writer domain.SchemaWriter
	if !f.noSchemas {
		writer = schemas.NewOS()
	}
	svc := application.NewLintService(parser.New(), writer, newLogger(cmd.ErrOrStderr(), f.verbose))

	out := cmd.OutOrStdout()
	reporter := tui.NewReporter(out, opts.Color && !f.jsonOutput)
	var report func(domain.ValidationOutcome)
	if !f.jsonOutput {
		if !f.quiet {
			fmt.Fprint(out, reporter.Parameters(opts))
		}
		report = func(o domain.ValidationOutcome) { fmt.Fprint(out, reporter.Outcome(o)) }
	}

	result, err := svc.Run(cmd.Context(), files, opts, report)
	if err != nil {
		return err
	}

	if f.jsonOutput {
		if len(files) > 0 {
			if hash, err := deps.git.CommitHash(files[0]); err == nil {
				result.Commit = hash
			}
		}
		if err := renderJSON(out, result); err != nil {
			return err
		}
	} else if !f.quiet {
		fmt.Fprint(out, reporter.Exit(result.ExitCode))
	}

	if result.ExitCode != 0 {
		return &ExitError{Code: result.ExitCode}
	}
	return nil
}

// resolveOptions layers defaults, the config file and the flags the user set.
func resolveOptions(cmd *cobra.Command, f lintFlags, loader domain.ConfigLoader) (domain.Options, error) {
	opts, err := loader.Load(f.configPath)
	if err != nil {
		return domain.Options{}, fmt.Errorf("loading config: %w", err)
	}

	changed := cmd.Flags().Changed
	negated := func(name string, dst *bool, set bool) {
		if changed(name) {
			*dst = !set
		}
	}
	negated("no-color", &opts.Color, f.noColor)
	negated("no-includes", &opts.ReportIncludes, f.noIncludes)
	negated("no-warnings", &opts.ReportWarnings, f.noWarnings)
	negated("no-errors", &opts.ReportErrors, f.noErrors)
	if changed("throw-on-warnings") {
		opts.ThrowOnWarnings = f.throwOnWarnings
	}
	negated("no-throw-on-warnings", &opts.ThrowOnWarnings, f.noThrowOnWarnings)
	negated("no-throw-on-errors", &opts.ThrowOnErrors, f.noThrowOnErrors)
	negated("no-warn-old-raml-version", &opts.WarnOldRAMLVersion, f.noWarnOldVersion)
	if changed("no-body-status") {
		opts.NoBodyStatuses = f.noBodyStatuses
	}

	if err := opts.Validate(); err != nil {
		return domain.Options{}, fmt.Errorf("invalid options: %w", err)
	}
	return opts, nil
}

func newLogger(w io.Writer, verbose bool) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(w)
	log.SetLevel(logrus.WarnLevel)
	if verbose {
		log.SetLevel(logrus.DebugLevel)
	}
	return log
}

func renderJSON(w io.Writer, result application.RunResult) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}
