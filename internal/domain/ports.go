package domain

import "context"

// Document is the read-only view of a parsed API contract.
type Document interface {
	Source() Location
	// Version is the document dialect, e.g. "RAML 1.0", "RAML 0.8" or "OpenAPI 3.1.0".
	Version() string
	Title() string
	Description() string
	Endpoints() []Endpoint
}

// Endpoint is a node of the API path hierarchy.
type Endpoint interface {
	Source() Location
	// Path is the relative segment of this endpoint, e.g. "/users" or "/{id}".
	Path() string
	Description() string
	Children() []Endpoint
	Operations() []Operation
}

// Operation is an HTTP method declared on an endpoint.
type Operation interface {
	Source() Location
	Method() string
	Description() string
	Request() []Payload
	Responses() []Response
}

// Response is a declared response of an operation.
type Response interface {
	Source() Location
	StatusCode() string
	Payloads() []Payload
}

// Payload is a request or response body bound to a schema.
type Payload interface {
	Source() Location
	// ID is a URL-escaped identifier unique within the document.
	ID() string
	MediaType() string
	// JSONSchema renders the payload schema as a JSON document.
	JSONSchema() ([]byte, error)
}

// ReportEntry is a structural finding produced by the parser's own validation.
type ReportEntry struct {
	Source   Location
	Message  string
	Severity Severity
}

// ValidationReport collects the structural findings for one document.
type ValidationReport struct {
	Results []ReportEntry
}

// DocumentParser turns a file into a Document and validates its structure.
// Parse returns a *ParseError when no Document could be produced.
type DocumentParser interface {
	Parse(ctx context.Context, file string) (Document, error)
	Validate(ctx context.Context, doc Document) (ValidationReport, error)
}

// SchemaWriter persists a payload schema next to the file it came from.
// It returns the path written, or a *WriteError.
type SchemaWriter interface {
	WriteSchema(ctx context.Context, file string, payload Payload) (string, error)
}

// ConfigLoader reads Options from a config file.
type ConfigLoader interface {
	Load(path string) (Options, error)
}

// FileScanner expands command-line arguments into the contract files to lint.
type FileScanner interface {
	Expand(args []string) ([]string, error)
}

// GitInfo provides information about the repository containing a path.
type GitInfo interface {
	CommitHash(path string) (string, error)
}
