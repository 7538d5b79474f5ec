package domain

import "fmt"

// Options controls which issues are reported and which of them fail the run.
// Resolved once at startup and passed by value afterwards.
type Options struct {
	ReportIncludes     bool  `json:"report_includes"`
	ReportWarnings     bool  `json:"report_warnings"`
	ReportErrors       bool  `json:"report_errors"`
	ThrowOnWarnings    bool  `json:"throw_on_warnings"`
	ThrowOnErrors      bool  `json:"throw_on_errors"`
	WarnOldRAMLVersion bool  `json:"warn_old_raml_version"`
	Color              bool  `json:"color"`
	NoBodyStatuses     []int `json:"no_body_status_codes"`
}

// DefaultNoBodyStatuses lists the response codes that must not carry a payload.
var DefaultNoBodyStatuses = []int{204}

// DefaultOptions returns the options used when neither config nor flags say otherwise.
func DefaultOptions() Options {
	return Options{
		ReportIncludes:     true,
		ReportWarnings:     true,
		ReportErrors:       true,
		ThrowOnWarnings:    false,
		ThrowOnErrors:      true,
		WarnOldRAMLVersion: true,
		Color:              true,
		NoBodyStatuses:     append([]int(nil), DefaultNoBodyStatuses...),
	}
}

// NoBodyStatusSet returns the no-body status codes keyed by their textual form,
// which is how response codes appear in API documents.
func (o Options) NoBodyStatusSet() map[string]bool {
	set := make(map[string]bool, len(o.NoBodyStatuses))
	for _, code := range o.NoBodyStatuses {
		set[fmt.Sprintf("%d", code)] = true
	}
	return set
}

// Validate checks the options for invalid values.
func (o Options) Validate() error {
	for _, code := range o.NoBodyStatuses {
		if code < 100 || code > 599 {
			return fmt.Errorf("no_body_status_codes: %d is not an HTTP status code", code)
		}
	}
	return nil
}
