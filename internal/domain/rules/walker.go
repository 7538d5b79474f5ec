package rules

import (
	"context"

	"github.com/Mike-Gough/raml-enforcer/internal/domain"
	"golang.org/x/text/cases"
)

// Stats counts the nodes a walker evaluated rules on.
type Stats struct {
	Endpoints  int `json:"endpoints"`
	Operations int `json:"operations"`
	Payloads   int `json:"payloads"`
}

// Walker traverses one document's endpoint tree depth-first, pre-order,
// applying the rule set at every node. A Walker is used for a single file.
type Walker struct {
	file   string
	opts   domain.Options
	noBody map[string]bool
	sink   domain.SchemaWriter
	lower  cases.Caser
	stats  Stats
}

// NewWalker creates a walker for file. A nil sink disables schema export.
func NewWalker(file string, opts domain.Options, sink domain.SchemaWriter) *Walker {
	return &Walker{
		file:   file,
		opts:   opts,
		noBody: opts.NoBodyStatusSet(),
		sink:   sink,
		lower:  NewLowerCaser(),
	}
}

// Stats returns the counts gathered so far.
func (w *Walker) Stats() Stats { return w.stats }

// WalkDocument applies the API rules and then walks every root endpoint.
// On a schema write failure it returns the issues found so far together with
// the *domain.WriteError.
func (w *Walker) WalkDocument(ctx context.Context, doc domain.Document) ([]domain.Issue, error) {
	issues := CheckAPI(doc, w.opts)
	for _, ep := range doc.Endpoints() {
		found, err := w.Walk(ctx, ep, ep.Path())
		issues = append(issues, found...)
		if err != nil {
			return issues, err
		}
	}
	return issues, nil
}

// Walk applies the endpoint, operation and response rules to ep and then
// recurses into its children, appending each child's segment to path.
func (w *Walker) Walk(ctx context.Context, ep domain.Endpoint, path string) ([]domain.Issue, error) {
	w.stats.Endpoints++
	issues := CheckEndpoint(w.lower, ep, path)

	for _, op := range ep.Operations() {
		found, err := w.walkOperation(ctx, op, path)
		issues = append(issues, found...)
		if err != nil {
			return issues, err
		}
	}

	for _, child := range ep.Children() {
		found, err := w.Walk(ctx, child, path+child.Path())
		issues = append(issues, found...)
		if err != nil {
			return issues, err
		}
	}
	return issues, nil
}

func (w *Walker) walkOperation(ctx context.Context, op domain.Operation, path string) ([]domain.Issue, error) {
	w.stats.Operations++
	issues := CheckOperation(op, path)

	if err := w.export(ctx, op.Request()); err != nil {
		return issues, err
	}

	for _, resp := range op.Responses() {
		found, extract := CheckResponse(op, resp, path, w.noBody)
		issues = append(issues, found...)
		if err := w.export(ctx, extract); err != nil {
			return issues, err
		}
	}
	return issues, nil
}

// export writes payload schemas one at a time, in declaration order.
func (w *Walker) export(ctx context.Context, payloads []domain.Payload) error {
	for _, p := range payloads {
		w.stats.Payloads++
		if w.sink == nil {
			continue
		}
		origin := p.Source().File
		if origin == "" {
			origin = w.file
		}
		if _, err := w.sink.WriteSchema(ctx, origin, p); err != nil {
			return err
		}
	}
	return nil
}
