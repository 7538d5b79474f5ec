package parser

import (
	"strings"

	"gopkg.in/yaml.v3"
)

const draft07 = "http://json-schema.org/draft-07/schema#"

// typeConverter turns RAML body declarations into JSON Schema nodes,
// inlining the document's named types and schemas where they are referenced.
type typeConverter struct {
	decls map[string]*yaml.Node
	// active holds the names being inlined; a reference back to one of them
	// is left as a titled placeholder so recursive types terminate.
	active map[string]bool
}

func newTypeConverter() *typeConverter {
	return &typeConverter{decls: map[string]*yaml.Node{}, active: map[string]bool{}}
}

func (c *typeConverter) declare(name string, decl *yaml.Node) {
	if decl != nil {
		c.decls[name] = decl
	}
}

// named returns the schema of a declared type, or false when name is not
// declared or is already being inlined.
func (c *typeConverter) named(name string) (*yaml.Node, bool) {
	decl, ok := c.decls[name]
	if !ok || c.active[name] {
		return nil, false
	}
	c.active[name] = true
	defer delete(c.active, name)

	if embedded := c.embeddedSchema(decl); embedded != nil {
		return embedded, true
	}
	return c.convertType(decl), true
}

// jsonSchemaFor converts a body declaration. Declarations that already carry
// a JSON schema (RAML 0.8 "schema", or a JSON "type") are used verbatim;
// RAML 1.0 type declarations are mapped facet by facet.
func (c *typeConverter) jsonSchemaFor(decl *yaml.Node) *yaml.Node {
	if decl == nil {
		return withDialect(mapNode())
	}
	if embedded := c.embeddedSchema(decl); embedded != nil {
		return embedded
	}
	return withDialect(c.convertType(decl))
}

func (c *typeConverter) embeddedSchema(decl *yaml.Node) *yaml.Node {
	candidates := []*yaml.Node{decl}
	if decl.Kind == yaml.MappingNode {
		if lookup(decl, "$schema") != nil {
			return decl
		}
		// An included JSON file arrives already decoded. Under "schema" it is
		// always JSON Schema; under "type" only when it names a dialect.
		s := lookup(decl, "schema")
		if s != nil && s.Kind == yaml.MappingNode {
			return s
		}
		if s != nil && s.Kind == yaml.ScalarNode {
			if schema, ok := c.named(strings.TrimSpace(s.Value)); ok {
				return schema
			}
		}
		if t := lookup(decl, "type"); t != nil && lookup(t, "$schema") != nil {
			return t
		}
		candidates = []*yaml.Node{s, lookup(decl, "type")}
	}
	for _, cand := range candidates {
		text := strings.TrimSpace(scalarValue(cand))
		if !strings.HasPrefix(text, "{") {
			continue
		}
		var doc yaml.Node
		if err := yaml.Unmarshal([]byte(text), &doc); err != nil || len(doc.Content) == 0 {
			continue
		}
		return doc.Content[0]
	}
	return nil
}

// withDialect returns schema with a leading $schema key. The node is copied,
// so declarations shared between payloads are left untouched.
func withDialect(schema *yaml.Node) *yaml.Node {
	if schema.Kind != yaml.MappingNode || lookup(schema, "$schema") != nil {
		return schema
	}
	out := *schema
	out.Content = append([]*yaml.Node{strNode("$schema"), strNode(draft07)}, schema.Content...)
	return &out
}

// facets copied unchanged from a RAML type declaration.
var passthroughFacets = map[string]bool{
	"description": true, "enum": true, "pattern": true, "format": true, "default": true,
	"minLength": true, "maxLength": true, "minimum": true, "maximum": true, "multipleOf": true,
	"minItems": true, "maxItems": true, "uniqueItems": true,
	"minProperties": true, "maxProperties": true, "additionalProperties": true,
}

func (c *typeConverter) convertType(decl *yaml.Node) *yaml.Node {
	if decl.Kind == yaml.ScalarNode {
		return c.typeExpression(decl.Value)
	}
	if decl.Kind != yaml.MappingNode {
		return mapNode()
	}

	out := mapNode()
	for _, p := range pairs(decl) {
		switch key := p.key.Value; {
		case key == "type":
			c.mergeType(out, p.value)
		case key == "properties":
			c.convertProperties(out, p.value)
		case key == "items":
			setKey(out, "items", c.convertType(p.value))
		case key == "displayName":
			setKey(out, "title", sanitize(p.value))
		case passthroughFacets[key]:
			setKey(out, key, sanitize(p.value))
		}
	}
	if lookup(out, "type") == nil && lookup(out, "properties") != nil {
		out.Content = append([]*yaml.Node{strNode("type"), strNode("object")}, out.Content...)
	}
	return out
}

func (c *typeConverter) mergeType(out, value *yaml.Node) {
	switch value.Kind {
	case yaml.ScalarNode:
		for _, p := range pairs(c.typeExpression(value.Value)) {
			setKey(out, p.key.Value, p.value)
		}
	case yaml.MappingNode:
		for _, p := range pairs(c.convertType(value)) {
			setKey(out, p.key.Value, p.value)
		}
	case yaml.SequenceNode:
		all := seqNode()
		for _, item := range value.Content {
			all.Content = append(all.Content, c.convertType(item))
		}
		setKey(out, "allOf", all)
	}
}

func (c *typeConverter) convertProperties(out, props *yaml.Node) {
	converted := mapNode()
	required := seqNode()
	for _, p := range pairs(props) {
		name := p.key.Value
		optional := strings.HasSuffix(name, "?")
		name = strings.TrimSuffix(name, "?")
		if r := lookup(p.value, "required"); r != nil && r.Value == "false" {
			optional = true
		}
		converted.Content = append(converted.Content, strNode(name), c.convertType(p.value))
		if !optional {
			required.Content = append(required.Content, strNode(name))
		}
	}
	setKey(out, "properties", converted)
	if len(required.Content) > 0 {
		setKey(out, "required", required)
	}
}

// typeExpression maps a RAML type expression such as "string", "User[]" or
// "string | nil" to a schema.
func (c *typeConverter) typeExpression(expr string) *yaml.Node {
	expr = strings.TrimSpace(expr)
	if strings.Contains(expr, "|") {
		alts := seqNode()
		for _, alt := range strings.Split(expr, "|") {
			alts.Content = append(alts.Content, c.typeExpression(alt))
		}
		return mapNode(strNode("anyOf"), alts)
	}
	if strings.HasSuffix(expr, "[]") {
		return mapNode(strNode("type"), strNode("array"),
			strNode("items"), c.typeExpression(strings.TrimSuffix(expr, "[]")))
	}

	switch expr {
	case "string", "number", "integer", "boolean", "object", "array":
		return mapNode(strNode("type"), strNode(expr))
	case "nil":
		return mapNode(strNode("type"), strNode("null"))
	case "any", "":
		return mapNode()
	case "date-only":
		return mapNode(strNode("type"), strNode("string"), strNode("format"), strNode("date"))
	case "time-only":
		return mapNode(strNode("type"), strNode("string"), strNode("format"), strNode("time"))
	case "datetime", "datetime-only":
		return mapNode(strNode("type"), strNode("string"), strNode("format"), strNode("date-time"))
	case "file":
		return mapNode(strNode("type"), strNode("string"), strNode("contentEncoding"), strNode("binary"))
	default:
		if schema, ok := c.named(expr); ok {
			return schema
		}
		// Unknown or recursive names keep the name for readers.
		return mapNode(strNode("type"), strNode("object"), strNode("title"), strNode(expr))
	}
}

// sanitize drops custom tags so the JSON renderer sees plain values.
func sanitize(n *yaml.Node) *yaml.Node {
	if n.Kind == yaml.ScalarNode && strings.HasPrefix(n.Tag, "!") && !strings.HasPrefix(n.Tag, "!!") {
		c := *n
		c.Tag = "!!str"
		return &c
	}
	return n
}
