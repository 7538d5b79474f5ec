package parser

import (
	"bytes"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/Mike-Gough/raml-enforcer/internal/domain"
	oasjson "github.com/speakeasy-api/openapi/json"
	"gopkg.in/yaml.v3"
)

// The node types below are the read-only views handed to the rule set.
// Both readers build them; nothing mutates them after a Parse returns.

type document struct {
	src         domain.Location
	version     string
	title       string
	description string
	endpoints   []domain.Endpoint
	report      domain.ValidationReport
}

func (d *document) Source() domain.Location      { return d.src }
func (d *document) Version() string              { return d.version }
func (d *document) Title() string                { return d.title }
func (d *document) Description() string          { return d.description }
func (d *document) Endpoints() []domain.Endpoint { return d.endpoints }

type endpoint struct {
	src         domain.Location
	path        string
	fullPath    string
	description string
	children    []domain.Endpoint
	operations  []domain.Operation
}

func (e *endpoint) Source() domain.Location        { return e.src }
func (e *endpoint) Path() string                   { return e.path }
func (e *endpoint) Description() string            { return e.description }
func (e *endpoint) Children() []domain.Endpoint    { return e.children }
func (e *endpoint) Operations() []domain.Operation { return e.operations }

type operation struct {
	src         domain.Location
	method      string
	description string
	request     []domain.Payload
	responses   []domain.Response
}

func (o *operation) Source() domain.Location      { return o.src }
func (o *operation) Method() string               { return o.method }
func (o *operation) Description() string          { return o.description }
func (o *operation) Request() []domain.Payload    { return o.request }
func (o *operation) Responses() []domain.Response { return o.responses }

type response struct {
	src      domain.Location
	status   string
	payloads []domain.Payload
}

func (r *response) Source() domain.Location    { return r.src }
func (r *response) StatusCode() string         { return r.status }
func (r *response) Payloads() []domain.Payload { return r.payloads }

type payload struct {
	src       domain.Location
	id        string
	mediaType string
	// schema is already in JSON Schema shape; nil renders as an empty schema.
	schema *yaml.Node
}

func (p *payload) Source() domain.Location { return p.src }
func (p *payload) ID() string              { return p.id }
func (p *payload) MediaType() string       { return p.mediaType }

// JSONSchema renders the schema node as indented JSON, keeping key order.
func (p *payload) JSONSchema() ([]byte, error) {
	if p.schema == nil {
		return []byte("{}\n"), nil
	}
	var buf bytes.Buffer
	if err := oasjson.YAMLToJSON(p.schema, 2, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// payloadID builds "<document><path>/<method>/<status>/<media type>" with
// every segment escaped, so the identifier decodes back to readable segments.
// The document name keeps exports of sibling contracts apart.
func payloadID(document, fullPath, method, status, mediaType string) string {
	segments := []string{document + fullPath, strings.ToLower(method), status, mediaType}
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return strings.Join(segments, "/")
}

// documentName is the root document's base name without its extension.
func documentName(file string) string {
	base := filepath.Base(file)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func location(file string, n *yaml.Node) domain.Location {
	if n == nil {
		return domain.Location{File: file}
	}
	return domain.Location{File: file, Line: n.Line, Column: n.Column}
}

var httpMethods = map[string]bool{
	"get": true, "put": true, "post": true, "delete": true, "options": true,
	"head": true, "patch": true, "trace": true, "connect": true, "query": true,
}
