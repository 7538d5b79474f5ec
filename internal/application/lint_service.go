package application

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/Mike-Gough/raml-enforcer/internal/domain"
	"github.com/Mike-Gough/raml-enforcer/internal/domain/rules"
	"github.com/Mike-Gough/raml-enforcer/internal/domain/verdict"
	"github.com/sirupsen/logrus"
)

// RunResult is the outcome of linting a set of files.
type RunResult struct {
	Outcomes []domain.ValidationOutcome `json:"files"`
	verdict.Summary
	Passed   bool   `json:"passed"`
	Commit   string `json:"commit,omitempty"`
	ExitCode int    `json:"-"`
}

// LintService runs the per-file pipeline: parse, structural report, rule
// walk, suppression, then the verdict over all files.
type LintService struct {
	parser domain.DocumentParser
	writer domain.SchemaWriter
	log    *logrus.Logger
}

// NewLintService creates a LintService. A nil writer disables schema export;
// a nil logger discards log output.
func NewLintService(parser domain.DocumentParser, writer domain.SchemaWriter, log *logrus.Logger) *LintService {
	if log == nil {
		log = logrus.New()
		log.SetOutput(io.Discard)
	}
	s := &LintService{parser: parser, log: log}
	if writer != nil {
		s.writer = &loggedWriter{next: writer, log: log}
	}
	return s
}

// LintFile lints one file. A document that cannot be parsed yields a single
// violation and no error. The returned error is a *domain.WriteError when a
// schema export failed; the outcome then holds the issues found before it.
func (s *LintService) LintFile(ctx context.Context, file string, opts domain.Options) (domain.ValidationOutcome, error) {
	file = strings.TrimPrefix(file, "file://")
	outcome := domain.ValidationOutcome{File: file}
	s.log.Debugf("linting %s", file)

	doc, err := s.parser.Parse(ctx, file)
	if err != nil {
		var pe *domain.ParseError
		if !errors.As(err, &pe) {
			pe = &domain.ParseError{File: file, Message: err.Error()}
		}
		s.log.Warnf("cannot parse %s: %s", file, pe.Message)

		// The failure belongs to the file being linted even when it points
		// into an include, so include suppression does not apply.
		keep := opts
		keep.ReportIncludes = true
		failure := domain.Issue{Source: pe.Location(), Message: pe.Message, Severity: domain.SeverityViolation}
		outcome.Issues = verdict.Filter(file, []domain.Issue{failure}, keep)
		return outcome, nil
	}

	report, err := s.parser.Validate(ctx, doc)
	if err != nil {
		return outcome, fmt.Errorf("validating %s: %w", file, err)
	}
	issues := make([]domain.Issue, 0, len(report.Results))
	for _, entry := range report.Results {
		issues = append(issues, domain.Issue{Source: entry.Source, Message: entry.Message, Severity: entry.Severity})
	}

	walker := rules.NewWalker(file, opts, s.writer)
	found, walkErr := walker.WalkDocument(ctx, doc)
	issues = append(issues, found...)
	outcome.Issues = verdict.Filter(file, issues, opts)

	stats := walker.Stats()
	s.log.Debugf("%s: %d endpoints, %d operations, %d payloads, %d issues",
		file, stats.Endpoints, stats.Operations, stats.Payloads, len(outcome.Issues))

	if walkErr != nil {
		s.log.Errorf("%v", walkErr)
		return outcome, walkErr
	}
	return outcome, nil
}

// Run lints files strictly in order, handing each outcome to report before
// the next file starts. A schema write failure stops the run.
func (s *LintService) Run(ctx context.Context, files []string, opts domain.Options, report func(domain.ValidationOutcome)) (RunResult, error) {
	var result RunResult
	for _, file := range files {
		outcome, err := s.LintFile(ctx, file, opts)
		result.Outcomes = append(result.Outcomes, outcome)
		result.Summary = result.Summary.Add(verdict.Count(outcome.Issues))
		if report != nil {
			report(outcome)
		}
		if err != nil {
			return result, err
		}
	}

	result.ExitCode = verdict.ExitCode(result.Summary, opts)
	result.Passed = result.ExitCode == 0
	return result, nil
}

// loggedWriter records each exported schema at debug level.
type loggedWriter struct {
	next domain.SchemaWriter
	log  *logrus.Logger
}

func (w *loggedWriter) WriteSchema(ctx context.Context, file string, p domain.Payload) (string, error) {
	path, err := w.next.WriteSchema(ctx, file, p)
	if err != nil {
		return path, err
	}
	w.log.Debugf("wrote schema %s", path)
	return path, nil
}
