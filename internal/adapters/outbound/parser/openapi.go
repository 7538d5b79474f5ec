package parser

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/Mike-Gough/raml-enforcer/internal/domain"
	"github.com/speakeasy-api/openapi/openapi"
	"github.com/speakeasy-api/openapi/sequencedmap"
	"github.com/speakeasy-api/openapi/validation"
	"gopkg.in/yaml.v3"
)

// OpenAPIParser reads OpenAPI 3.x documents. Structural validation is the
// library's own; its findings become report entries.
type OpenAPIParser struct{}

func NewOpenAPIParser() *OpenAPIParser { return &OpenAPIParser{} }

func (p *OpenAPIParser) Parse(ctx context.Context, file string) (domain.Document, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, &domain.ParseError{File: file, Message: fmt.Sprintf("reading file: %v", err)}
	}
	defer f.Close()

	api, validationErrs, err := openapi.Unmarshal(ctx, f)
	if err != nil {
		return nil, &domain.ParseError{File: file, Message: err.Error()}
	}

	doc := &document{
		src:         domain.Location{File: file},
		version:     "OpenAPI " + api.GetOpenAPI(),
		title:       api.Info.GetTitle(),
		description: api.Info.GetDescription(),
		report:      domain.ValidationReport{Results: reportEntries(file, validationErrs)},
	}
	doc.endpoints = buildEndpoints(file, api)
	return doc, nil
}

func (p *OpenAPIParser) Validate(_ context.Context, doc domain.Document) (domain.ValidationReport, error) {
	return reportOf(doc)
}

func reportEntries(file string, errs []error) []domain.ReportEntry {
	entries := make([]domain.ReportEntry, 0, len(errs))
	for _, err := range errs {
		var vErr *validation.Error
		if !errors.As(err, &vErr) {
			entries = append(entries, domain.ReportEntry{
				Source:   domain.Location{File: file},
				Message:  err.Error(),
				Severity: domain.SeverityViolation,
			})
			continue
		}

		src := domain.Location{File: file}
		if line := vErr.GetLineNumber(); line > 0 {
			src.Line = line
			src.Column = vErr.GetColumnNumber()
		}
		if vErr.DocumentLocation != "" {
			src.File = vErr.DocumentLocation
		}

		severity := domain.SeverityWarning
		if vErr.Severity == validation.SeverityError {
			severity = domain.SeverityViolation
		}

		msg := err.Error()
		if vErr.UnderlyingError != nil {
			msg = vErr.UnderlyingError.Error()
		}
		entries = append(entries, domain.ReportEntry{Source: src, Message: msg, Severity: severity})
	}
	return entries
}

// buildEndpoints nests the flat OpenAPI path map: each path becomes a child
// of the longest declared path that prefixes it on a segment boundary.
// Shallower paths are placed first so parents exist before their children.
func buildEndpoints(file string, api *openapi.OpenAPI) []domain.Endpoint {
	if api.Paths == nil {
		return nil
	}

	type entry struct {
		path string
		item *openapi.PathItem
		key  *yaml.Node
	}
	var entries []entry
	for path, ref := range api.Paths.All() {
		item := ref.GetObject()
		if item == nil {
			continue
		}
		entries = append(entries, entry{path: path, item: item, key: item.GetRootNode()})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return strings.Count(entries[i].path, "/") < strings.Count(entries[j].path, "/")
	})

	var roots []domain.Endpoint
	built := make(map[string]*endpoint)
	for _, e := range entries {
		ep := &endpoint{
			src:         location(file, e.key),
			fullPath:    e.path,
			description: e.item.GetDescription(),
			operations:  buildOperations(file, e.path, e.item),
		}
		if parent := nearestParent(built, e.path); parent != nil {
			ep.path = strings.TrimPrefix(e.path, parent.fullPath)
			parent.children = append(parent.children, ep)
		} else {
			ep.path = e.path
			roots = append(roots, ep)
		}
		built[e.path] = ep
	}
	return roots
}

func nearestParent(built map[string]*endpoint, path string) *endpoint {
	for i := strings.LastIndex(path, "/"); i > 0; i = strings.LastIndex(path[:i], "/") {
		if parent, ok := built[path[:i]]; ok {
			return parent
		}
	}
	return nil
}

func buildOperations(file, path string, item *openapi.PathItem) []domain.Operation {
	if item.Len() == 0 {
		return nil
	}

	var ops []domain.Operation
	for method, op := range item.All() {
		if op == nil {
			continue
		}
		o := &operation{
			src:         location(file, op.GetRootNode()),
			method:      string(method),
			description: op.GetDescription(),
		}
		if body := op.GetRequestBody().GetObject(); body != nil {
			o.request = mediaPayloads(file, path, string(method), "request", body.GetContent())
		}
		o.responses = buildResponses(file, path, string(method), op.GetResponses())
		ops = append(ops, o)
	}
	return ops
}

func buildResponses(file, path, method string, responses *openapi.Responses) []domain.Response {
	if responses == nil {
		return nil
	}

	var out []domain.Response
	add := func(status string, ref *openapi.ReferencedResponse) {
		resp := &response{src: domain.Location{File: file}, status: status}
		if r := ref.GetObject(); r != nil {
			resp.src = location(file, r.GetRootNode())
			resp.payloads = mediaPayloads(file, path, method, status, r.GetContent())
		}
		out = append(out, resp)
	}
	for status, ref := range responses.All() {
		add(status, ref)
	}
	if def := responses.GetDefault(); def != nil {
		add("default", def)
	}
	return out
}

func mediaPayloads(file, path, method, status string, content *sequencedmap.Map[string, *openapi.MediaType]) []domain.Payload {
	if content == nil {
		return nil
	}

	var payloads []domain.Payload
	for mediaType, media := range content.All() {
		p := &payload{
			src:       domain.Location{File: file},
			id:        payloadID(documentName(file), path, method, status, mediaType),
			mediaType: mediaType,
		}
		if media != nil {
			root := media.GetRootNode()
			p.src = location(file, root)
			p.schema = lookup(root, "schema")
		}
		payloads = append(payloads, p)
	}
	return payloads
}
