// Package verdict folds lint issues into a pass/fail decision.
package verdict

import (
	"path/filepath"

	"github.com/Mike-Gough/raml-enforcer/internal/domain"
)

// Summary counts issues by severity.
type Summary struct {
	Violations int `json:"violations"`
	Warnings   int `json:"warnings"`
}

// Add returns the sum of two summaries.
func (s Summary) Add(other Summary) Summary {
	return Summary{
		Violations: s.Violations + other.Violations,
		Warnings:   s.Warnings + other.Warnings,
	}
}

// Filter drops the issues the options say must not be reported. Suppressed
// issues are removed before counting, so they never influence the outcome.
// file is the document under direct validation; with ReportIncludes off,
// issues located in any other file are dropped.
func Filter(file string, issues []domain.Issue, opts domain.Options) []domain.Issue {
	kept := make([]domain.Issue, 0, len(issues))
	for _, issue := range issues {
		if !opts.ReportIncludes && !sameFile(issue.Source.File, file) {
			continue
		}
		switch issue.Severity {
		case domain.SeverityWarning:
			if !opts.ReportWarnings {
				continue
			}
		case domain.SeverityViolation:
			if !opts.ReportErrors {
				continue
			}
		}
		kept = append(kept, issue)
	}
	return kept
}

// Count tallies issues by severity.
func Count(issues []domain.Issue) Summary {
	var s Summary
	for _, issue := range issues {
		switch issue.Severity {
		case domain.SeverityViolation:
			s.Violations++
		case domain.SeverityWarning:
			s.Warnings++
		}
	}
	return s
}

// Failed applies the threshold table:
//
//	violations > 0 && ThrowOnErrors   -> fail
//	warnings   > 0 && ThrowOnWarnings -> fail
//	otherwise                         -> pass
func Failed(s Summary, opts domain.Options) bool {
	violating := s.Violations > 0 && opts.ThrowOnErrors
	warning := s.Warnings > 0 && opts.ThrowOnWarnings
	return violating || warning
}

// ExitCode maps a summary to the process exit code.
func ExitCode(s Summary, opts domain.Options) int {
	if Failed(s, opts) {
		return 1
	}
	return 0
}

// Aggregate counts the issues and decides the exit code in one step.
func Aggregate(issues []domain.Issue, opts domain.Options) (int, Summary) {
	s := Count(issues)
	return ExitCode(s, opts), s
}

func sameFile(a, b string) bool {
	if a == b {
		return true
	}
	return filepath.Clean(a) == filepath.Clean(b)
}
