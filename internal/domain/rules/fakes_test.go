package rules_test

import (
	"context"
	"errors"
	"net/url"

	"github.com/Mike-Gough/raml-enforcer/internal/domain"
)

type fakeDoc struct {
	version, title, description string
	endpoints                   []domain.Endpoint
}

func (d *fakeDoc) Source() domain.Location      { return domain.Location{File: "api.raml"} }
func (d *fakeDoc) Version() string              { return d.version }
func (d *fakeDoc) Title() string                { return d.title }
func (d *fakeDoc) Description() string          { return d.description }
func (d *fakeDoc) Endpoints() []domain.Endpoint { return d.endpoints }

type fakeEndpoint struct {
	path, description string
	line              int
	children          []domain.Endpoint
	operations        []domain.Operation
}

func (e *fakeEndpoint) Source() domain.Location {
	return domain.Location{File: "api.raml", Line: e.line, Column: 1}
}
func (e *fakeEndpoint) Path() string                  { return e.path }
func (e *fakeEndpoint) Description() string           { return e.description }
func (e *fakeEndpoint) Children() []domain.Endpoint   { return e.children }
func (e *fakeEndpoint) Operations() []domain.Operation { return e.operations }

type fakeOperation struct {
	method, description string
	request             []domain.Payload
	responses           []domain.Response
}

func (o *fakeOperation) Source() domain.Location     { return domain.Location{File: "api.raml"} }
func (o *fakeOperation) Method() string              { return o.method }
func (o *fakeOperation) Description() string         { return o.description }
func (o *fakeOperation) Request() []domain.Payload   { return o.request }
func (o *fakeOperation) Responses() []domain.Response { return o.responses }

type fakeResponse struct {
	status   string
	payloads []domain.Payload
}

func (r *fakeResponse) Source() domain.Location   { return domain.Location{File: "api.raml"} }
func (r *fakeResponse) StatusCode() string        { return r.status }
func (r *fakeResponse) Payloads() []domain.Payload { return r.payloads }

type fakePayload struct {
	id   string
	file string
}

func (p *fakePayload) Source() domain.Location { return domain.Location{File: p.file} }
func (p *fakePayload) ID() string              { return url.PathEscape(p.id) }
func (p *fakePayload) MediaType() string       { return "application/json" }
func (p *fakePayload) JSONSchema() ([]byte, error) {
	return []byte(`{"type":"object"}`), nil
}

// recordingWriter remembers every payload it was asked to write.
type recordingWriter struct {
	written []string
	failOn  string
}

func (w *recordingWriter) WriteSchema(_ context.Context, file string, p domain.Payload) (string, error) {
	if w.failOn != "" && p.ID() == url.PathEscape(w.failOn) {
		return "", &domain.WriteError{File: file, Path: "schemas/x.schema", Err: errors.New("disk full")}
	}
	w.written = append(w.written, p.ID())
	return "schemas/" + p.ID() + ".schema", nil
}

func payload(id string) *fakePayload { return &fakePayload{id: id, file: "api.raml"} }

func okResponse(status string, ids ...string) *fakeResponse {
	r := &fakeResponse{status: status}
	for _, id := range ids {
		r.payloads = append(r.payloads, payload(id))
	}
	return r
}
