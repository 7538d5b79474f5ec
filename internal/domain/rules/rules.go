package rules

import (
	"strings"

	"github.com/Mike-Gough/raml-enforcer/internal/domain"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// VersionRAML08 is the dialect reported by documents starting with "#%RAML 0.8".
const VersionRAML08 = "RAML 0.8"

// CheckAPI applies the document-level rules: deprecated dialect, title, description.
func CheckAPI(doc domain.Document, opts domain.Options) []domain.Issue {
	var issues []domain.Issue
	src := doc.Source()

	if opts.WarnOldRAMLVersion && doc.Version() == VersionRAML08 {
		issues = append(issues, domain.NewWarning(src, "RAML 0.8 is deprecated, use RAML 1.0"))
	}
	if isBlank(doc.Title()) {
		issues = append(issues, domain.NewWarning(src, "API should specify a title"))
	}
	if isBlank(doc.Description()) {
		issues = append(issues, domain.NewWarning(src, "API should specify a description"))
	}
	return issues
}

// CheckEndpoint applies the endpoint rules using the accumulated path from the root.
func CheckEndpoint(lower cases.Caser, ep domain.Endpoint, path string) []domain.Issue {
	var issues []domain.Issue
	src := ep.Source()

	if lower.String(path) != path {
		issues = append(issues, domain.NewWarning(src, "endpoint %s should be in lower case", path))
	}
	if isBlank(ep.Description()) {
		issues = append(issues, domain.NewViolation(src, "endpoint %s must have a description", path))
	}
	return issues
}

// CheckOperation applies the operation rules.
func CheckOperation(op domain.Operation, path string) []domain.Issue {
	if isBlank(op.Description()) {
		return []domain.Issue{domain.NewWarning(op.Source(), "operation %s %s should have a description", methodName(op), path)}
	}
	return nil
}

// CheckResponse decides a response on (payloads empty?, status in no-body set?).
// Payloads returned are to be exported; they are only non-nil in the
// "has payload, body allowed" branch.
func CheckResponse(op domain.Operation, resp domain.Response, path string, noBody map[string]bool) ([]domain.Issue, []domain.Payload) {
	payloads := resp.Payloads()
	empty := len(payloads) == 0
	bodyless := noBody[resp.StatusCode()]
	src := resp.Source()

	switch {
	case empty && !bodyless:
		return []domain.Issue{domain.NewViolation(src, "response %s of %s %s must have a response payload",
			resp.StatusCode(), methodName(op), path)}, nil
	case !empty && bodyless:
		return []domain.Issue{domain.NewViolation(src, "response %s of %s %s must not return a payload",
			resp.StatusCode(), methodName(op), path)}, nil
	case !empty && !bodyless:
		return nil, payloads
	default:
		return nil, nil
	}
}

// NewLowerCaser returns the caser used by the lower-case path rule.
// Casers hold state, so each walker gets its own.
func NewLowerCaser() cases.Caser {
	return cases.Lower(language.Und)
}

func methodName(op domain.Operation) string {
	return strings.ToUpper(op.Method())
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
