package ast

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/funvibe/still/internal/token"
	"gopkg.in/yaml.v3"
)

// Decode reads a syntax tree serialized by the parser.
//
// Every node is a mapping whose first known key selects its kind
// (`{call: f, arguments: [x]}`), an expression or pattern may also be a bare
// name, and a type may be a bare constructor name. Ranges come from an
// explicit `range: "line:col-line:col"` entry, or else from the YAML position
// of the node itself.
func Decode(file string, data []byte) (*Program, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("%s: %w", file, err)
	}
	program := &Program{File: file}
	if root.Kind == 0 {
		return program, nil
	}
	doc := &root
	if doc.Kind == yaml.DocumentNode && len(doc.Content) > 0 {
		doc = doc.Content[0]
	}

	list := doc
	if doc.Kind == yaml.MappingNode {
		if name := lookup(doc, "file"); name != nil && name.Value != "" {
			program.File = name.Value
		}
		list = lookup(doc, "declarations")
		if list == nil {
			return program, nil
		}
	}
	if list.Kind != yaml.SequenceNode {
		return nil, fmt.Errorf("%s:%d: declarations must be a list", file, list.Line)
	}

	d := decoder{file: program.File}
	for _, item := range list.Content {
		decl, err := d.declaration(item)
		if err != nil {
			return nil, err
		}
		program.Declarations = append(program.Declarations, decl)
	}
	return program, nil
}

type decoder struct {
	file string
}

func (d *decoder) errorf(node *yaml.Node, format string, args ...any) error {
	return fmt.Errorf("%s:%d:%d: %s", d.file, node.Line, node.Column, fmt.Sprintf(format, args...))
}

func lookup(node *yaml.Node, key string) *yaml.Node {
	if node == nil || node.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == key {
			return node.Content[i+1]
		}
	}
	return nil
}

func isNull(node *yaml.Node) bool {
	return node == nil || (node.Kind == yaml.ScalarNode && node.Tag == "!!null")
}

// kind returns the first key of node that is one of kinds.
func kind(node *yaml.Node, kinds ...string) (string, *yaml.Node) {
	if node.Kind != yaml.MappingNode {
		return "", nil
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		key := node.Content[i].Value
		for _, k := range kinds {
			if key == k {
				return k, node.Content[i+1]
			}
		}
	}
	return "", nil
}

func (d *decoder) rangeOf(node *yaml.Node) (token.Range, error) {
	if explicit := lookup(node, "range"); explicit != nil {
		return parseRange(explicit.Value)
	}
	return positionRange(node), nil
}

func positionRange(node *yaml.Node) token.Range {
	width := utf8.RuneCountInString(node.Value)
	if node.Kind != yaml.ScalarNode || width == 0 {
		width = 1
	}
	return token.Range{
		Start: token.Position{Line: node.Line, Column: node.Column},
		End:   token.Position{Line: node.Line, Column: node.Column + width},
	}
}

func parseRange(text string) (token.Range, error) {
	start, end, ok := strings.Cut(text, "-")
	if !ok {
		return token.Range{}, fmt.Errorf("malformed range %q", text)
	}
	s, err := parsePosition(start)
	if err != nil {
		return token.Range{}, err
	}
	e, err := parsePosition(end)
	if err != nil {
		return token.Range{}, err
	}
	return token.Range{Start: s, End: e}, nil
}

func parsePosition(text string) (token.Position, error) {
	lineText, columnText, ok := strings.Cut(strings.TrimSpace(text), ":")
	if !ok {
		return token.Position{}, fmt.Errorf("malformed position %q", text)
	}
	line, err := strconv.Atoi(lineText)
	if err != nil {
		return token.Position{}, fmt.Errorf("malformed line in %q: %w", text, err)
	}
	column, err := strconv.Atoi(columnText)
	if err != nil {
		return token.Position{}, fmt.Errorf("malformed column in %q: %w", text, err)
	}
	return token.Position{Line: line, Column: column}, nil
}

func (d *decoder) identifier(node *yaml.Node) *Identifier {
	if isNull(node) || node.Value == "" {
		return nil
	}
	return &Identifier{Range: positionRange(node), Value: node.Value}
}

func (d *decoder) identifiers(node *yaml.Node) ([]*Identifier, error) {
	if isNull(node) {
		return nil, nil
	}
	if node.Kind != yaml.SequenceNode {
		return nil, d.errorf(node, "expected a list of names")
	}
	ids := make([]*Identifier, 0, len(node.Content))
	for _, item := range node.Content {
		ids = append(ids, d.identifier(item))
	}
	return ids, nil
}

func documentation(node *yaml.Node) string {
	if doc := lookup(node, "documentation"); doc != nil {
		return doc.Value
	}
	return ""
}

// --- Declarations ---

func (d *decoder) declaration(node *yaml.Node) (Declaration, error) {
	rng, err := d.rangeOf(node)
	if err != nil {
		return nil, d.errorf(node, "%v", err)
	}
	k, value := kind(node, "choice", "alias", "variable", "error")
	switch k {
	case "choice":
		params, err := d.identifiers(lookup(node, "parameters"))
		if err != nil {
			return nil, err
		}
		decl := &ChoiceTypeDeclaration{
			Range:         rng,
			Documentation: documentation(node),
			Name:          d.identifier(value),
			Parameters:    params,
		}
		variants := lookup(node, "variants")
		if !isNull(variants) {
			if variants.Kind != yaml.MappingNode {
				return nil, d.errorf(variants, "variants must be a mapping from variant name to payload")
			}
			for i := 0; i+1 < len(variants.Content); i += 2 {
				key, payload := variants.Content[i], variants.Content[i+1]
				variant := &Variant{Range: positionRange(key), Name: d.identifier(key)}
				if !isNull(payload) {
					if variant.Value, err = d.typ(payload); err != nil {
						return nil, err
					}
				}
				decl.Variants = append(decl.Variants, variant)
			}
		}
		return decl, nil
	case "alias":
		params, err := d.identifiers(lookup(node, "parameters"))
		if err != nil {
			return nil, err
		}
		decl := &TypeAliasDeclaration{
			Range:         rng,
			Documentation: documentation(node),
			Name:          d.identifier(value),
			Parameters:    params,
		}
		if t := lookup(node, "type"); !isNull(t) {
			if decl.Type, err = d.typ(t); err != nil {
				return nil, err
			}
		}
		return decl, nil
	case "variable":
		decl := &VariableDeclaration{
			Range:         rng,
			Documentation: documentation(node),
			Name:          d.identifier(value),
		}
		if result := lookup(node, "result"); !isNull(result) {
			if decl.Result, err = d.expression(result); err != nil {
				return nil, err
			}
		}
		return decl, nil
	case "error":
		return &ErrorDeclaration{Range: rng, Text: value.Value}, nil
	}
	return nil, d.errorf(node, "unknown declaration kind")
}

// --- Types ---

func (d *decoder) optionalType(node *yaml.Node) (Type, error) {
	if isNull(node) {
		return nil, nil
	}
	return d.typ(node)
}

func (d *decoder) types(node *yaml.Node) ([]Type, error) {
	if isNull(node) {
		return nil, nil
	}
	if node.Kind != yaml.SequenceNode {
		return nil, d.errorf(node, "expected a list of types")
	}
	result := make([]Type, 0, len(node.Content))
	for _, item := range node.Content {
		t, err := d.typ(item)
		if err != nil {
			return nil, err
		}
		result = append(result, t)
	}
	return result, nil
}

func (d *decoder) typ(node *yaml.Node) (Type, error) {
	if node.Kind == yaml.ScalarNode {
		return &TypeConstruct{Range: positionRange(node), Name: d.identifier(node)}, nil
	}
	rng, err := d.rangeOf(node)
	if err != nil {
		return nil, d.errorf(node, "%v", err)
	}
	k, value := kind(node, "var", "function", "construct", "record", "parenthesized", "comment")
	switch k {
	case "var":
		return &TypeVariable{Range: rng, Name: value.Value}, nil
	case "function":
		inputs, err := d.types(value)
		if err != nil {
			return nil, err
		}
		output, err := d.optionalType(lookup(node, "output"))
		if err != nil {
			return nil, err
		}
		return &TypeFunction{Range: rng, Inputs: inputs, Output: output}, nil
	case "construct":
		args, err := d.types(lookup(node, "arguments"))
		if err != nil {
			return nil, err
		}
		return &TypeConstruct{Range: rng, Name: d.identifier(value), Arguments: args}, nil
	case "record":
		record := &TypeRecord{Range: rng}
		if !isNull(value) {
			if value.Kind != yaml.MappingNode {
				return nil, d.errorf(value, "record fields must be a mapping")
			}
			for i := 0; i+1 < len(value.Content); i += 2 {
				key := value.Content[i]
				fieldType, err := d.optionalType(value.Content[i+1])
				if err != nil {
					return nil, err
				}
				record.Fields = append(record.Fields, &TypeField{
					Range: positionRange(key),
					Name:  d.identifier(key),
					Value: fieldType,
				})
			}
		}
		return record, nil
	case "parenthesized":
		inner, err := d.optionalType(value)
		if err != nil {
			return nil, err
		}
		return &TypeParenthesized{Range: rng, Inner: inner}, nil
	case "comment":
		inner, err := d.optionalType(lookup(node, "type"))
		if err != nil {
			return nil, err
		}
		return &TypeWithComment{Range: rng, Comment: value.Value, Type: inner}, nil
	}
	return nil, d.errorf(node, "unknown type kind")
}

// --- Patterns ---

func (d *decoder) optionalPattern(node *yaml.Node) (Pattern, error) {
	if isNull(node) {
		return nil, nil
	}
	return d.pattern(node)
}

func (d *decoder) pattern(node *yaml.Node) (Pattern, error) {
	if node.Kind == yaml.ScalarNode {
		if node.Value == "_" {
			return &PatternIgnored{Range: positionRange(node)}, nil
		}
		return &PatternVariable{Range: positionRange(node), Name: node.Value}, nil
	}
	rng, err := d.rangeOf(node)
	if err != nil {
		return nil, d.errorf(node, "%v", err)
	}
	k, value := kind(node, "typed", "int", "char", "string", "variant", "record", "parenthesized", "comment")
	switch k {
	case "typed":
		t, err := d.optionalType(value)
		if err != nil {
			return nil, err
		}
		inner, err := d.optionalPattern(lookup(node, "pattern"))
		if err != nil {
			return nil, err
		}
		return &PatternTyped{Range: rng, Type: t, Pattern: inner}, nil
	case "int":
		return &PatternInt{Range: rng, Value: value.Value}, nil
	case "char":
		r, err := d.char(value)
		if err != nil {
			return nil, err
		}
		return &PatternChar{Range: rng, Value: r}, nil
	case "string":
		return &PatternString{Range: rng, Value: value.Value}, nil
	case "variant":
		payload, err := d.optionalPattern(lookup(node, "value"))
		if err != nil {
			return nil, err
		}
		return &PatternVariant{Range: rng, Name: d.identifier(value), Value: payload}, nil
	case "record":
		record := &PatternRecord{Range: rng}
		if !isNull(value) {
			if value.Kind != yaml.MappingNode {
				return nil, d.errorf(value, "record pattern fields must be a mapping")
			}
			for i := 0; i+1 < len(value.Content); i += 2 {
				key := value.Content[i]
				inner, err := d.optionalPattern(value.Content[i+1])
				if err != nil {
					return nil, err
				}
				record.Fields = append(record.Fields, &PatternField{Range: positionRange(key), Name: d.identifier(key), Value: inner})
			}
		}
		return record, nil
	case "parenthesized":
		inner, err := d.optionalPattern(value)
		if err != nil {
			return nil, err
		}
		return &PatternParenthesized{Range: rng, Inner: inner}, nil
	case "comment":
		inner, err := d.optionalPattern(lookup(node, "pattern"))
		if err != nil {
			return nil, err
		}
		return &PatternWithComment{Range: rng, Comment: value.Value, Pattern: inner}, nil
	}
	return nil, d.errorf(node, "unknown pattern kind")
}

func (d *decoder) char(node *yaml.Node) (rune, error) {
	r, size := utf8.DecodeRuneInString(node.Value)
	if r == utf8.RuneError || size != len(node.Value) {
		return 0, d.errorf(node, "char literal must be exactly one character, got %q", node.Value)
	}
	return r, nil
}

// --- Expressions ---

func (d *decoder) optionalExpression(node *yaml.Node) (Expression, error) {
	if isNull(node) {
		return nil, nil
	}
	return d.expression(node)
}

func (d *decoder) expressions(node *yaml.Node) ([]Expression, error) {
	if isNull(node) {
		return nil, nil
	}
	if node.Kind != yaml.SequenceNode {
		return nil, d.errorf(node, "expected a list of expressions")
	}
	result := make([]Expression, 0, len(node.Content))
	for _, item := range node.Content {
		e, err := d.expression(item)
		if err != nil {
			return nil, err
		}
		result = append(result, e)
	}
	return result, nil
}

func (d *decoder) recordFields(node *yaml.Node) ([]*RecordField, error) {
	if isNull(node) {
		return nil, nil
	}
	if node.Kind != yaml.MappingNode {
		return nil, d.errorf(node, "record fields must be a mapping")
	}
	var fields []*RecordField
	for i := 0; i+1 < len(node.Content); i += 2 {
		key := node.Content[i]
		value, err := d.optionalExpression(node.Content[i+1])
		if err != nil {
			return nil, err
		}
		fields = append(fields, &RecordField{Range: positionRange(key), Name: d.identifier(key), Value: value})
	}
	return fields, nil
}

func (d *decoder) expression(node *yaml.Node) (Expression, error) {
	if node.Kind == yaml.ScalarNode {
		return &Reference{Range: positionRange(node), Name: node.Value}, nil
	}
	rng, err := d.rangeOf(node)
	if err != nil {
		return nil, d.errorf(node, "%v", err)
	}
	k, value := kind(node,
		"int", "dec", "char", "string", "reference", "variant", "call", "lambda", "match",
		"let", "vec", "record", "access", "update", "typed", "parenthesized", "comment")
	switch k {
	case "int":
		return &IntegerLiteral{Range: rng, Value: value.Value}, nil
	case "dec":
		return &DecimalLiteral{Range: rng, Value: value.Value}, nil
	case "char":
		r, err := d.char(value)
		if err != nil {
			return nil, err
		}
		return &CharLiteral{Range: rng, Value: r}, nil
	case "string":
		return &StringLiteral{Range: rng, Value: value.Value}, nil
	case "reference":
		return &Reference{Range: rng, Name: value.Value}, nil
	case "variant":
		payload, err := d.optionalExpression(lookup(node, "value"))
		if err != nil {
			return nil, err
		}
		return &VariantConstruct{Range: rng, Name: d.identifier(value), Value: payload}, nil
	case "call":
		called, err := d.expression(value)
		if err != nil {
			return nil, err
		}
		args, err := d.expressions(lookup(node, "arguments"))
		if err != nil {
			return nil, err
		}
		return &Call{Range: rng, Called: called, Arguments: args}, nil
	case "lambda":
		lambda := &Lambda{Range: rng}
		if !isNull(value) {
			if value.Kind != yaml.SequenceNode {
				return nil, d.errorf(value, "lambda parameters must be a list")
			}
			for _, item := range value.Content {
				p, err := d.pattern(item)
				if err != nil {
					return nil, err
				}
				lambda.Parameters = append(lambda.Parameters, p)
			}
		}
		if lambda.Result, err = d.optionalExpression(lookup(node, "result")); err != nil {
			return nil, err
		}
		return lambda, nil
	case "match":
		matched, err := d.expression(value)
		if err != nil {
			return nil, err
		}
		match := &Match{Range: rng, Matched: matched}
		cases := lookup(node, "cases")
		if !isNull(cases) {
			if cases.Kind != yaml.SequenceNode {
				return nil, d.errorf(cases, "match cases must be a list")
			}
			for _, item := range cases.Content {
				caseRange, err := d.rangeOf(item)
				if err != nil {
					return nil, d.errorf(item, "%v", err)
				}
				pattern, err := d.optionalPattern(lookup(item, "pattern"))
				if err != nil {
					return nil, err
				}
				result, err := d.optionalExpression(lookup(item, "result"))
				if err != nil {
					return nil, err
				}
				match.Cases = append(match.Cases, &MatchCase{Range: caseRange, Pattern: pattern, Result: result})
			}
		}
		return match, nil
	case "let":
		v, err := d.optionalExpression(lookup(node, "value"))
		if err != nil {
			return nil, err
		}
		result, err := d.optionalExpression(lookup(node, "result"))
		if err != nil {
			return nil, err
		}
		return &Let{Range: rng, Name: d.identifier(value), Value: v, Result: result}, nil
	case "vec":
		elements, err := d.expressions(value)
		if err != nil {
			return nil, err
		}
		return &VecLiteral{Range: rng, Elements: elements}, nil
	case "record":
		fields, err := d.recordFields(value)
		if err != nil {
			return nil, err
		}
		return &RecordLiteral{Range: rng, Fields: fields}, nil
	case "access":
		record, err := d.expression(value)
		if err != nil {
			return nil, err
		}
		return &RecordAccess{Range: rng, Record: record, Field: d.identifier(lookup(node, "field"))}, nil
	case "update":
		record, err := d.expression(value)
		if err != nil {
			return nil, err
		}
		fields, err := d.recordFields(lookup(node, "fields"))
		if err != nil {
			return nil, err
		}
		return &RecordUpdate{Range: rng, Record: record, Fields: fields}, nil
	case "typed":
		t, err := d.optionalType(value)
		if err != nil {
			return nil, err
		}
		inner, err := d.optionalExpression(lookup(node, "expression"))
		if err != nil {
			return nil, err
		}
		return &Typed{Range: rng, Type: t, Expression: inner}, nil
	case "parenthesized":
		inner, err := d.optionalExpression(value)
		if err != nil {
			return nil, err
		}
		return &Parenthesized{Range: rng, Inner: inner}, nil
	case "comment":
		inner, err := d.optionalExpression(lookup(node, "expression"))
		if err != nil {
			return nil, err
		}
		return &WithComment{Range: rng, Comment: value.Value, Expression: inner}, nil
	}
	return nil, d.errorf(node, "unknown expression kind")
}
