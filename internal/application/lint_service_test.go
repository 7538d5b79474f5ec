package application

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/Mike-Gough/raml-enforcer/internal/adapters/outbound/parser"
	"github.com/Mike-Gough/raml-enforcer/internal/adapters/outbound/schemas"
	"github.com/Mike-Gough/raml-enforcer/internal/domain"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const apis = "../../testdata/apis"

func fixture(name string) string { return filepath.Join(apis, name) }

type failingWriter struct{}

func (failingWriter) WriteSchema(_ context.Context, file string, p domain.Payload) (string, error) {
	return "", &domain.WriteError{File: file, Path: p.ID(), Err: errors.New("disk full")}
}

func messages(outcome domain.ValidationOutcome) []string {
	out := make([]string, 0, len(outcome.Issues))
	for _, issue := range outcome.Issues {
		out = append(out, issue.Severity.Level()+" "+issue.Message)
	}
	return out
}

func TestLintFile_ReportsQualityIssuesInOrder(t *testing.T) {
	svc := NewLintService(parser.New(), nil, nil)

	outcome, err := svc.LintFile(context.Background(), fixture("users.raml"), domain.DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, fixture("users.raml"), outcome.File)
	assert.Equal(t, []string{
		"WARN operation DELETE /users/{id} should have a description",
		"WARN endpoint /users/Profile should be in lower case",
		"ERROR endpoint /users/Profile must have a description",
	}, messages(outcome))

	assert.Equal(t, domain.Location{File: fixture("users.raml"), Line: 19, Column: 5}, outcome.Issues[0].Source)
	assert.Equal(t, domain.Location{File: fixture("users.raml"), Line: 22, Column: 3}, outcome.Issues[1].Source)
}

func TestLintFile_ExportsSchemas(t *testing.T) {
	fs := memfs.New()
	svc := NewLintService(parser.New(), schemas.New(fs), nil)

	_, err := svc.LintFile(context.Background(), fixture("users.raml"), domain.DefaultOptions())
	require.NoError(t, err)

	dir, err := filepath.Abs(filepath.Join(apis, schemas.Dir))
	require.NoError(t, err)
	entries, err := fs.ReadDir(dir)
	require.NoError(t, err)

	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.ElementsMatch(t, []string{
		"users_users_get_200_application_json.schema",
		"users_users_Profile_get_200_application_json.schema",
	}, names)
}

func TestLintFile_ExportIsIdempotent(t *testing.T) {
	fs := memfs.New()
	svc := NewLintService(parser.New(), schemas.New(fs), nil)
	dir, err := filepath.Abs(filepath.Join(apis, schemas.Dir))
	require.NoError(t, err)
	path := filepath.Join(dir, "users_users_get_200_application_json.schema")

	first, err := svc.LintFile(context.Background(), fixture("users.raml"), domain.DefaultOptions())
	require.NoError(t, err)
	firstSchema, err := util.ReadFile(fs, path)
	require.NoError(t, err)

	second, err := svc.LintFile(context.Background(), fixture("users.raml"), domain.DefaultOptions())
	require.NoError(t, err)
	secondSchema, err := util.ReadFile(fs, path)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, firstSchema, secondSchema)
}

func TestLintFile_ParseFailureIsSingleViolation(t *testing.T) {
	log, hook := logtest.NewNullLogger()
	svc := NewLintService(parser.New(), nil, log)

	outcome, err := svc.LintFile(context.Background(), fixture("unsupported.raml"), domain.DefaultOptions())
	require.NoError(t, err)
	require.Len(t, outcome.Issues, 1)
	assert.Equal(t, domain.SeverityViolation, outcome.Issues[0].Severity)
	assert.Equal(t, "unsupported RAML version 2.0", outcome.Issues[0].Message)
	assert.Equal(t, 1, outcome.Issues[0].Source.Line)

	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
}

func TestLintFile_IncludeFailureIgnoresIncludeSuppression(t *testing.T) {
	opts := domain.DefaultOptions()
	opts.ReportIncludes = false
	svc := NewLintService(parser.New(), nil, nil)

	outcome, err := svc.LintFile(context.Background(), fixture("broken-include.raml"), opts)
	require.NoError(t, err)
	require.Len(t, outcome.Issues, 1)
	assert.Contains(t, outcome.Issues[0].Message, "cannot include")
}

func TestLintFile_StructuralAndQualityIssuesTogether(t *testing.T) {
	svc := NewLintService(parser.New(), nil, nil)

	outcome, err := svc.LintFile(context.Background(), fixture("untitled.raml"), domain.DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, []string{
		"ERROR title is required",
		"WARN API should specify a title",
	}, messages(outcome))
}

func TestLintFile_DeprecatedVersion(t *testing.T) {
	svc := NewLintService(parser.New(), nil, nil)

	outcome, err := svc.LintFile(context.Background(), fixture("legacy.raml"), domain.DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, []string{
		"WARN RAML 0.8 is deprecated, use RAML 1.0",
		"WARN API should specify a description",
	}, messages(outcome))

	opts := domain.DefaultOptions()
	opts.WarnOldRAMLVersion = false
	outcome, err = svc.LintFile(context.Background(), fixture("legacy.raml"), opts)
	require.NoError(t, err)
	assert.Equal(t, []string{"WARN API should specify a description"}, messages(outcome))
}

func TestLintFile_ReportIncludesOffDropsIncludedIssues(t *testing.T) {
	svc := NewLintService(parser.New(), nil, nil)

	all, err := svc.LintFile(context.Background(), fixture("orders.raml"), domain.DefaultOptions())
	require.NoError(t, err)
	require.Equal(t, []string{
		"ERROR endpoint /orders must have a description",
		"WARN operation GET /orders should have a description",
	}, messages(all))

	opts := domain.DefaultOptions()
	opts.ReportIncludes = false
	own, err := svc.LintFile(context.Background(), fixture("orders.raml"), opts)
	require.NoError(t, err)
	assert.Empty(t, own.Issues)
}

func TestLintFile_WriteFailureKeepsEarlierIssues(t *testing.T) {
	log, hook := logtest.NewNullLogger()
	svc := NewLintService(parser.New(), failingWriter{}, log)

	outcome, err := svc.LintFile(context.Background(), fixture("users.raml"), domain.DefaultOptions())
	var we *domain.WriteError
	require.ErrorAs(t, err, &we)
	assert.Empty(t, outcome.Issues, "the first export happens before any issue is found")
	assert.Equal(t, logrus.ErrorLevel, hook.LastEntry().Level)
}

func TestRun_AggregatesAcrossFiles(t *testing.T) {
	svc := NewLintService(parser.New(), nil, nil)
	var reported []string

	result, err := svc.Run(context.Background(),
		[]string{fixture("legacy.raml"), fixture("users.raml")},
		domain.DefaultOptions(),
		func(o domain.ValidationOutcome) { reported = append(reported, filepath.Base(o.File)) })
	require.NoError(t, err)

	assert.Equal(t, []string{"legacy.raml", "users.raml"}, reported)
	assert.Equal(t, 1, result.Violations)
	assert.Equal(t, 4, result.Warnings)
	assert.Equal(t, 1, result.ExitCode)
	assert.False(t, result.Passed)
}

func TestRun_WarningsOnlyPassUnlessThrowing(t *testing.T) {
	svc := NewLintService(parser.New(), nil, nil)
	files := []string{fixture("legacy.raml")}

	result, err := svc.Run(context.Background(), files, domain.DefaultOptions(), nil)
	require.NoError(t, err)
	assert.Equal(t, 0, result.ExitCode)
	assert.True(t, result.Passed)

	opts := domain.DefaultOptions()
	opts.ThrowOnWarnings = true
	result, err = svc.Run(context.Background(), files, opts, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, result.ExitCode)
}

func TestRun_SuppressedErrorsDoNotCount(t *testing.T) {
	opts := domain.DefaultOptions()
	opts.ReportErrors = false
	svc := NewLintService(parser.New(), nil, nil)

	result, err := svc.Run(context.Background(), []string{fixture("users.raml")}, opts, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Violations)
	assert.Equal(t, 2, result.Warnings)
	assert.Equal(t, 0, result.ExitCode)
}

func TestRun_ParseFailureContinuesWithNextFile(t *testing.T) {
	svc := NewLintService(parser.New(), nil, nil)

	result, err := svc.Run(context.Background(),
		[]string{fixture("malformed.raml"), fixture("legacy.raml")}, domain.DefaultOptions(), nil)
	require.NoError(t, err)
	require.Len(t, result.Outcomes, 2)
	assert.Len(t, result.Outcomes[0].Issues, 1)
	assert.Len(t, result.Outcomes[1].Issues, 2)
	assert.Equal(t, 1, result.ExitCode)
}

func TestRun_WriteFailureStopsRun(t *testing.T) {
	svc := NewLintService(parser.New(), failingWriter{}, nil)

	result, err := svc.Run(context.Background(),
		[]string{fixture("users.raml"), fixture("legacy.raml")}, domain.DefaultOptions(), nil)
	require.Error(t, err)
	assert.Len(t, result.Outcomes, 1)
}

func TestRun_SiblingContractsExportSeparately(t *testing.T) {
	dir := t.TempDir()
	contract := func(title string) string {
		return "#%RAML 1.0\ntitle: " + title + "\ndescription: Items\n" +
			"/items:\n  description: Items\n  get:\n    description: List\n    responses:\n" +
			"      200:\n        body:\n          application/json:\n" +
			"            displayName: " + title + "\n            type: object\n"
	}
	a := filepath.Join(dir, "a.raml")
	b := filepath.Join(dir, "b.raml")
	require.NoError(t, os.WriteFile(a, []byte(contract("fromA")), 0o644))
	require.NoError(t, os.WriteFile(b, []byte(contract("fromB")), 0o644))

	fs := memfs.New()
	svc := NewLintService(parser.New(), schemas.New(fs), nil)
	_, err := svc.Run(context.Background(), []string{a, b}, domain.DefaultOptions(), nil)
	require.NoError(t, err)

	out, err := filepath.Abs(filepath.Join(dir, schemas.Dir))
	require.NoError(t, err)
	fromA, err := util.ReadFile(fs, filepath.Join(out, "a_items_get_200_application_json.schema"))
	require.NoError(t, err)
	fromB, err := util.ReadFile(fs, filepath.Join(out, "b_items_get_200_application_json.schema"))
	require.NoError(t, err)
	assert.Contains(t, string(fromA), `"title": "fromA"`)
	assert.Contains(t, string(fromB), `"title": "fromB"`)
}
