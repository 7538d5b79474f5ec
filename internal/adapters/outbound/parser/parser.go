// Package parser reads RAML and OpenAPI definitions into the domain's
// read-only document tree.
package parser

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/Mike-Gough/raml-enforcer/internal/domain"
	"gopkg.in/yaml.v3"
)

// Dispatcher picks a reader by looking at the document's content.
type Dispatcher struct {
	raml    *RAMLParser
	openapi *OpenAPIParser
}

func New() *Dispatcher {
	return &Dispatcher{raml: NewRAMLParser(), openapi: NewOpenAPIParser()}
}

func (d *Dispatcher) Parse(ctx context.Context, file string) (domain.Document, error) {
	file = strings.TrimPrefix(file, "file://")

	data, err := os.ReadFile(file)
	if err != nil {
		return nil, &domain.ParseError{File: file, Message: fmt.Sprintf("reading file: %v", err)}
	}

	first, _ := bufio.NewReader(bytes.NewReader(data)).ReadString('\n')
	if strings.HasPrefix(strings.TrimSpace(first), "#%RAML") {
		return d.raml.Parse(ctx, file)
	}

	var head struct {
		OpenAPI string `yaml:"openapi"`
		Swagger string `yaml:"swagger"`
	}
	if err := yaml.Unmarshal(data, &head); err != nil {
		return nil, yamlParseError(file, err)
	}
	switch {
	case head.OpenAPI != "":
		return d.openapi.Parse(ctx, file)
	case head.Swagger != "":
		return nil, &domain.ParseError{File: file, Message: "Swagger 2.0 documents are not supported"}
	default:
		return nil, &domain.ParseError{File: file, Message: "unrecognised API document: expected a #%RAML header or an openapi field"}
	}
}

func (d *Dispatcher) Validate(_ context.Context, doc domain.Document) (domain.ValidationReport, error) {
	return reportOf(doc)
}

func reportOf(doc domain.Document) (domain.ValidationReport, error) {
	d, ok := doc.(*document)
	if !ok {
		return domain.ValidationReport{}, fmt.Errorf("document %T was not produced by this parser", doc)
	}
	return d.report, nil
}
