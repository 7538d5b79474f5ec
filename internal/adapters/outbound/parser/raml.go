package parser

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/Mike-Gough/raml-enforcer/internal/domain"
	"gopkg.in/yaml.v3"
)

const includeTag = "!include"

// RAMLParser reads RAML 0.8 and 1.0 API definitions.
type RAMLParser struct{}

func NewRAMLParser() *RAMLParser { return &RAMLParser{} }

// Parse reads file, resolving !include references relative to the file that
// declares them. Nodes coming from an included file carry that file as source.
func (p *RAMLParser) Parse(_ context.Context, file string) (domain.Document, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, &domain.ParseError{File: file, Message: fmt.Sprintf("reading file: %v", err)}
	}
	version, err := ramlVersion(file, data)
	if err != nil {
		return nil, err
	}
	root, err := decodeYAML(file, data)
	if err != nil {
		return nil, err
	}
	if root.Kind != yaml.MappingNode {
		return nil, &domain.ParseError{File: file, Line: root.Line, Column: root.Column, Message: "RAML document root must be a map"}
	}

	r := &ramlReader{root: documentName(file), types: newTypeConverter()}
	doc, err := r.readDocument(&origin{file: file}, version, root)
	if err != nil {
		return nil, err
	}
	doc.report = domain.ValidationReport{Results: r.report}
	return doc, nil
}

// Validate returns the structural findings gathered while reading.
func (p *RAMLParser) Validate(_ context.Context, doc domain.Document) (domain.ValidationReport, error) {
	return reportOf(doc)
}

// ramlVersion reads the "#%RAML <version>" header line.
func ramlVersion(file string, data []byte) (string, error) {
	line, _ := bufio.NewReader(bytes.NewReader(data)).ReadString('\n')
	fields := strings.Fields(strings.TrimPrefix(strings.TrimSpace(line), "#%"))
	if len(fields) < 2 || fields[0] != "RAML" {
		return "", &domain.ParseError{File: file, Line: 1, Column: 1, Message: "missing #%RAML header"}
	}
	if fields[1] != "0.8" && fields[1] != "1.0" {
		return "", &domain.ParseError{File: file, Line: 1, Column: 1, Message: fmt.Sprintf("unsupported RAML version %s", fields[1])}
	}
	if len(fields) > 2 {
		return "", &domain.ParseError{File: file, Line: 1, Column: 1,
			Message: fmt.Sprintf("RAML %s fragment cannot be linted on its own", fields[2])}
	}
	return "RAML " + fields[1], nil
}

// origin is a file in the chain of includes leading to the node being read.
type origin struct {
	file   string
	parent *origin
}

// within reports whether path is already being read further up the chain.
func (o *origin) within(path string) bool {
	path = filepath.Clean(path)
	for ; o != nil; o = o.parent {
		if filepath.Clean(o.file) == path {
			return true
		}
	}
	return false
}

func (o *origin) at(n *yaml.Node) domain.Location {
	return location(o.file, n)
}

type ramlReader struct {
	root      string
	report    []domain.ReportEntry
	mediaType string
	types     *typeConverter
}

func (r *ramlReader) violation(src domain.Location, format string, args ...any) {
	r.report = append(r.report, domain.ReportEntry{
		Source:   src,
		Message:  fmt.Sprintf(format, args...),
		Severity: domain.SeverityViolation,
	})
}

// resolve follows an !include tag, returning the origin the node now belongs
// to. A file that includes itself, directly or through other files, is a
// ParseError; the same file included from unrelated places is fine.
func (r *ramlReader) resolve(o *origin, n *yaml.Node) (*origin, *yaml.Node, error) {
	if n == nil || n.Tag != includeTag {
		return o, n, nil
	}

	target := n.Value
	if !filepath.IsAbs(target) {
		target = filepath.Join(filepath.Dir(o.file), target)
	}
	if o.within(target) {
		return nil, nil, &domain.ParseError{File: o.file, Line: n.Line, Column: n.Column,
			Message: fmt.Sprintf("include cycle: %s is already being included", n.Value)}
	}
	data, err := os.ReadFile(target)
	if err != nil {
		return nil, nil, &domain.ParseError{File: o.file, Line: n.Line, Column: n.Column,
			Message: fmt.Sprintf("cannot include %s: %v", n.Value, err)}
	}

	included := &origin{file: target, parent: o}
	switch strings.ToLower(filepath.Ext(target)) {
	case ".raml", ".yaml", ".yml", ".json":
		node, err := decodeYAML(target, data)
		if err != nil {
			return nil, nil, err
		}
		return r.resolve(included, node)
	default:
		return included, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: string(data), Line: 1, Column: 1}, nil
	}
}

func (r *ramlReader) readDocument(o *origin, version string, root *yaml.Node) (*document, error) {
	doc := &document{src: domain.Location{File: o.file}, version: version}
	r.mediaType = "application/json"

	// Named types may be declared after the resources that use them.
	for _, p := range pairs(root) {
		switch p.key.Value {
		case "types", "schemas":
			if err := r.readTypes(o, p.value); err != nil {
				return nil, err
			}
		case "mediaType":
			if mt := scalarValue(p.value); mt != "" {
				r.mediaType = mt
			}
		}
	}

	hasTitle := false
	for _, p := range pairs(root) {
		key := p.key.Value
		switch {
		case key == "title":
			hasTitle = true
			_, v, err := r.resolve(o, p.value)
			if err != nil {
				return nil, err
			}
			doc.title = scalarValue(v)
		case key == "description":
			_, v, err := r.resolve(o, p.value)
			if err != nil {
				return nil, err
			}
			doc.description = scalarValue(v)
		case strings.HasPrefix(key, "/"):
			ep, err := r.readEndpoint(o, p.key, p.value, key)
			if err != nil {
				return nil, err
			}
			doc.endpoints = append(doc.endpoints, ep)
		}
	}

	if !hasTitle {
		r.violation(doc.src, "title is required")
	}
	return doc, nil
}

// readTypes registers named declarations. RAML 1.0 "types" is a map; RAML 0.8
// "schemas" is a list of single-entry maps.
func (r *ramlReader) readTypes(o *origin, value *yaml.Node) error {
	o, value, err := r.resolve(o, value)
	if err != nil {
		return err
	}

	groups := []*yaml.Node{value}
	if value != nil && value.Kind == yaml.SequenceNode {
		groups = value.Content
	}
	for _, group := range groups {
		groupOrigin, group, err := r.resolve(o, group)
		if err != nil {
			return err
		}
		for _, p := range pairs(group) {
			declOrigin, decl, err := r.resolve(groupOrigin, p.value)
			if err != nil {
				return err
			}
			if decl, err = r.resolveSchema(declOrigin, decl); err != nil {
				return err
			}
			r.types.declare(p.key.Value, decl)
		}
	}
	return nil
}

func (r *ramlReader) readEndpoint(o *origin, key, value *yaml.Node, fullPath string) (*endpoint, error) {
	ep := &endpoint{src: o.at(key), path: key.Value, fullPath: fullPath}

	valueOrigin, value, err := r.resolve(o, value)
	if err != nil {
		return nil, err
	}
	if valueOrigin != o {
		ep.src = valueOrigin.at(value)
	}
	if isNull(value) {
		return ep, nil
	}
	if value.Kind != yaml.MappingNode {
		r.violation(valueOrigin.at(value), "resource %s must be a map, got %s", fullPath, describe(value))
		return ep, nil
	}

	for _, p := range pairs(value) {
		k := p.key.Value
		switch {
		case k == "description":
			_, v, err := r.resolve(valueOrigin, p.value)
			if err != nil {
				return nil, err
			}
			ep.description = scalarValue(v)
		case strings.HasPrefix(k, "/"):
			child, err := r.readEndpoint(valueOrigin, p.key, p.value, fullPath+k)
			if err != nil {
				return nil, err
			}
			ep.children = append(ep.children, child)
		case httpMethods[k]:
			op, err := r.readOperation(valueOrigin, p.key, p.value, fullPath)
			if err != nil {
				return nil, err
			}
			ep.operations = append(ep.operations, op)
		}
	}
	return ep, nil
}

func (r *ramlReader) readOperation(o *origin, key, value *yaml.Node, fullPath string) (*operation, error) {
	op := &operation{src: o.at(key), method: key.Value}

	valueOrigin, value, err := r.resolve(o, value)
	if err != nil {
		return nil, err
	}
	if valueOrigin != o {
		op.src = valueOrigin.at(value)
	}
	if isNull(value) {
		return op, nil
	}
	if value.Kind != yaml.MappingNode {
		r.violation(valueOrigin.at(value), "method %s %s must be a map, got %s",
			strings.ToUpper(key.Value), fullPath, describe(value))
		return op, nil
	}

	for _, p := range pairs(value) {
		switch p.key.Value {
		case "description":
			_, v, err := r.resolve(valueOrigin, p.value)
			if err != nil {
				return nil, err
			}
			op.description = scalarValue(v)
		case "body":
			payloads, err := r.readBody(valueOrigin, p.value, fullPath, key.Value, "request")
			if err != nil {
				return nil, err
			}
			op.request = payloads
		case "responses":
			responses, err := r.readResponses(valueOrigin, p.value, fullPath, key.Value)
			if err != nil {
				return nil, err
			}
			op.responses = responses
		}
	}
	return op, nil
}

func (r *ramlReader) readResponses(o *origin, value *yaml.Node, fullPath, method string) ([]domain.Response, error) {
	o, value, err := r.resolve(o, value)
	if err != nil {
		return nil, err
	}

	var responses []domain.Response
	for _, p := range pairs(value) {
		status := p.key.Value
		if _, err := strconv.Atoi(status); err != nil {
			r.violation(o.at(p.key), "response code %q of %s %s is not a number",
				status, strings.ToUpper(method), fullPath)
			continue
		}
		resp := &response{src: o.at(p.key), status: status}

		respOrigin, respValue, err := r.resolve(o, p.value)
		if err != nil {
			return nil, err
		}
		if body := lookup(respValue, "body"); body != nil {
			payloads, err := r.readBody(respOrigin, body, fullPath, method, status)
			if err != nil {
				return nil, err
			}
			resp.payloads = payloads
		}
		responses = append(responses, resp)
	}
	return responses, nil
}

// readBody returns one payload per media type declared in a body node. A body
// that declares a type directly uses the document's default media type.
func (r *ramlReader) readBody(o *origin, body *yaml.Node, fullPath, method, status string) ([]domain.Payload, error) {
	o, body, err := r.resolve(o, body)
	if err != nil {
		return nil, err
	}
	if isNull(body) {
		return nil, nil
	}

	bodyPairs := pairs(body)
	if body.Kind != yaml.MappingNode || !declaresMediaTypes(bodyPairs) {
		return []domain.Payload{&payload{
			src:       o.at(body),
			id:        payloadID(r.root, fullPath, method, status, r.mediaType),
			mediaType: r.mediaType,
			schema:    r.types.jsonSchemaFor(body),
		}}, nil
	}

	var payloads []domain.Payload
	for _, p := range bodyPairs {
		declOrigin, decl, err := r.resolve(o, p.value)
		if err != nil {
			return nil, err
		}
		if decl, err = r.resolveSchema(declOrigin, decl); err != nil {
			return nil, err
		}
		payloads = append(payloads, &payload{
			src:       o.at(p.key),
			id:        payloadID(r.root, fullPath, method, status, p.key.Value),
			mediaType: p.key.Value,
			schema:    r.types.jsonSchemaFor(decl),
		})
	}
	return payloads, nil
}

// resolveSchema inlines an included "schema" or "type" value of a body declaration.
func (r *ramlReader) resolveSchema(o *origin, decl *yaml.Node) (*yaml.Node, error) {
	for i, p := range pairs(decl) {
		if (p.key.Value == "schema" || p.key.Value == "type") && p.value.Tag == includeTag {
			_, v, err := r.resolve(o, p.value)
			if err != nil {
				return nil, err
			}
			decl.Content[2*i+1] = v
		}
	}
	return decl, nil
}

func declaresMediaTypes(ps []pair) bool {
	for _, p := range ps {
		if strings.Contains(p.key.Value, "/") {
			return true
		}
	}
	return false
}
