package codegen

import (
	"strconv"

	"github.com/funvibe/still/internal/analyzer"
	"github.com/funvibe/still/internal/ast"
	"github.com/funvibe/still/internal/config"
	"github.com/funvibe/still/internal/diagnostics"
	"github.com/funvibe/still/internal/rust"
	"github.com/funvibe/still/internal/symbols"
	"github.com/funvibe/still/internal/token"
	"github.com/funvibe/still/internal/typesystem"
)

// lowerExpr lowers e. expected is the type the context wants, or nil; it
// only guides annotations and never overrides what e says about itself.
func (g *Generator) lowerExpr(e ast.Expression, expected typesystem.Type, scope *Scope) rust.Expr {
	switch expr := e.(type) {
	case nil:
		return rust.Todo()
	case *ast.IntegerLiteral, *ast.DecimalLiteral, *ast.CharLiteral, *ast.StringLiteral:
		return lowerLiteral(expr)
	case *ast.Reference:
		return g.lowerReference(expr, expected, scope)
	case *ast.VariantConstruct:
		return g.lowerVariantConstruct(expr, expected, scope)
	case *ast.Call:
		return g.lowerCall(expr, expected, scope)
	case *ast.Lambda:
		return g.lowerLambda(expr, expected, scope)
	case *ast.Match:
		return g.lowerMatch(expr, expected, scope)
	case *ast.Let:
		return g.lowerLet(expr, expected, scope)
	case *ast.VecLiteral:
		return g.lowerVec(expr, expected, scope)
	case *ast.RecordLiteral:
		return g.lowerRecord(expr, expected, scope)
	case *ast.RecordAccess:
		return g.lowerRecordAccess(expr, scope)
	case *ast.RecordUpdate:
		return g.lowerRecordUpdate(expr, expected, scope)
	case *ast.Typed:
		if expr.Expression == nil {
			g.errs.Errorf(diagnostics.ErrS002, expr.Range, "this type annotation is missing its expression")
			return rust.Todo()
		}
		if expr.Type != nil {
			expected = g.analyzer.ResolveType(expr.Type, nil)
		}
		return g.lowerExpr(expr.Expression, expected, scope)
	case *ast.Parenthesized:
		return g.lowerExpr(expr.Inner, expected, scope)
	case *ast.WithComment:
		return g.lowerExpr(expr.Expression, expected, scope)
	}
	return rust.Todo()
}

func lowerLiteral(e ast.Expression) rust.Expr {
	switch lit := e.(type) {
	case *ast.IntegerLiteral:
		return &rust.Lit{Text: lit.Value}
	case *ast.DecimalLiteral:
		return &rust.Lit{Text: decimal(lit.Value)}
	case *ast.CharLiteral:
		return &rust.Lit{Text: charLiteral(lit.Value)}
	case *ast.StringLiteral:
		return &rust.CallExpr{Func: &rust.Ident{Name: "Str::Slice"}, Args: []rust.Expr{&rust.Lit{Text: stringLiteral(lit.Value)}}}
	}
	return rust.Todo()
}

func (g *Generator) infer(e ast.Expression, scope *Scope) typesystem.Type {
	return g.analyzer.InferExpression(e, scope)
}

// readBinding decides between copy, move and clone for one read of a local.
func (g *Generator) readBinding(b *binding, ref *ast.Reference) rust.Expr {
	name := &rust.Ident{Name: b.RustName}
	switch {
	case b.Copy && b.Reference:
		return &rust.DerefExpr{Inner: name}
	case b.Copy:
		return name
	case b.Reference:
		return clone(name)
	case g.fn.moves[ref.Range] && b.Depth == g.fn.depth:
		return name
	}
	return clone(name)
}

func (g *Generator) lowerReference(ref *ast.Reference, expected typesystem.Type, scope *Scope) rust.Expr {
	if b := scope.Lookup(ref.Name); b != nil {
		return g.readBinding(b, ref)
	}
	info, ok := g.tables.Variables[ref.Name]
	if !ok {
		g.errs.Errorf(diagnostics.ErrN004, ref.Range, "I could not find a variable named %s", ref.Name)
		return rust.Todo()
	}
	if info.Kind == symbols.KindFunction {
		return g.functionValue(info, expected, ref)
	}
	return g.constantValue(info)
}

func (g *Generator) constantValue(info *symbols.VariableDeclarationInfo) rust.Expr {
	name := &rust.Ident{Name: info.RustName}
	if g.constItems[info.Name] {
		return name
	}
	var args []rust.Expr
	if info.HasAllocatorParameter {
		args = append(args, allocatorIdent())
	}
	return &rust.CallExpr{Func: name, Args: args}
}

// functionValue wraps a top-level function in an allocated closure so it
// can be passed around like any other function value.
func (g *Generator) functionValue(info *symbols.VariableDeclarationInfo, expected typesystem.Type, ref *ast.Reference) rust.Expr {
	fnType, ok := expected.(typesystem.Function)
	declared, known := info.Type.(typesystem.Function)
	if !ok || (known && len(fnType.Inputs) != len(declared.Inputs)) {
		fnType, ok = declared, known
	}
	if !ok {
		g.errs.Errorf(diagnostics.ErrT001, ref.Range,
			"I could not determine the type of %s, so I cannot use it as a value here", ref.Name)
		return rust.Todo()
	}
	params := make([]rust.Parameter, len(fnType.Inputs))
	inputs := make([]rust.Type, len(fnType.Inputs))
	var args []rust.Expr
	if info.HasAllocatorParameter {
		args = append(args, allocatorIdent())
	}
	for i, in := range fnType.Inputs {
		name := "argument·" + strconv.Itoa(i)
		inputs[i] = g.annotationType(in)
		params[i] = rust.Parameter{Name: name, Type: inputs[i]}
		args = append(args, &rust.Ident{Name: name})
	}
	closure := &rust.ClosureExpr{
		Move:       true,
		Parameters: params,
		Body:       &rust.CallExpr{Func: &rust.Ident{Name: info.RustName}, Args: args},
	}
	return &rust.CastExpr{
		Inner: allocate(closure),
		Type:  &rust.DynFnType{Lifetime: config.LifetimeName, Inputs: inputs, Output: g.annotationType(fnType.Output)},
	}
}

func (g *Generator) lowerVariantConstruct(vc *ast.VariantConstruct, expected typesystem.Type, scope *Scope) rust.Expr {
	if vc.Name == nil {
		g.errs.Errorf(diagnostics.ErrS001, vc.Range, "this variant is missing its name")
		return rust.Todo()
	}
	choice, variant, ok := g.tables.ChoiceOfVariant(vc.Name.Value)
	if !ok {
		g.errs.Errorf(diagnostics.ErrN004, vc.Name.Range, "I could not find a variant named %s", vc.Name.Value)
		return rust.Todo()
	}
	path := &rust.Ident{Name: choiceName(choice) + "::" + variant.Name}
	if !variant.HasPayload {
		if vc.Value != nil {
			g.errs.Errorf(diagnostics.ErrA003, vc.Range,
				"the variant %s has no payload, so remove the value after it", variant.Name)
		}
		return path
	}
	if vc.Value == nil {
		g.errs.Errorf(diagnostics.ErrA003, vc.Range,
			"the variant %s carries a %s, but no value was given", variant.Name, describeType(variant.Value))
		return &rust.CallExpr{Func: path, Args: []rust.Expr{rust.Todo()}}
	}
	value := g.lowerExpr(vc.Value, payloadType(choice, variant, expected), scope)
	if variant.ConstructsRecursiveType {
		value = allocate(value)
	}
	return &rust.CallExpr{Func: path, Args: []rust.Expr{value}}
}

// payloadType is the variant's payload type with the choice's parameters
// replaced by the arguments of matched, when matched is that choice.
func payloadType(choice *symbols.ChoiceTypeInfo, variant *symbols.VariantInfo, matched typesystem.Type) typesystem.Type {
	construct, ok := matched.(typesystem.ChoiceConstruct)
	if !ok || construct.Name != choice.Name {
		return variant.Value
	}
	subst := make(map[string]typesystem.Type, len(choice.Parameters))
	for i, param := range choice.Parameters {
		if i < len(construct.Arguments) {
			subst[param] = construct.Arguments[i]
		}
	}
	return typesystem.Substitute(variant.Value, subst)
}

func describeType(t typesystem.Type) string {
	if t == nil {
		return "value"
	}
	return t.String()
}

func (g *Generator) lowerCall(call *ast.Call, expected typesystem.Type, scope *Scope) rust.Expr {
	argTypes := g.argumentTypes(call, expected, scope)
	args := make([]rust.Expr, len(call.Arguments))
	for i, arg := range call.Arguments {
		args[i] = g.lowerExpr(arg, argTypes[i], scope)
	}

	called := ast.UnwrapExpression(call.Called)
	ref, isRef := called.(*ast.Reference)
	if isRef {
		if b := scope.Lookup(ref.Name); b != nil {
			return &rust.CallExpr{Func: &rust.Ident{Name: b.RustName}, Args: args}
		}
		if info, ok := g.tables.Variables[ref.Name]; ok {
			if info.Kind != symbols.KindFunction {
				return &rust.CallExpr{Func: g.constantValue(info), Args: args}
			}
			g.checkArity(info, call, ref)
			if info.HasAllocatorParameter {
				args = append([]rust.Expr{allocatorIdent()}, args...)
			}
			return &rust.CallExpr{Func: &rust.Ident{Name: info.RustName}, Args: args}
		}
	}
	return &rust.CallExpr{Func: g.lowerExpr(call.Called, nil, scope), Args: args}
}

// argumentTypes specializes the callee's parameter types with what the
// arguments and the expected result reveal.
func (g *Generator) argumentTypes(call *ast.Call, expected typesystem.Type, scope *Scope) []typesystem.Type {
	types := make([]typesystem.Type, len(call.Arguments))
	fn, ok := g.infer(call.Called, scope).(typesystem.Function)
	if !ok {
		return types
	}
	bindings := make(map[string]typesystem.Type)
	for i, arg := range call.Arguments {
		if i < len(fn.Inputs) {
			analyzer.Bind(fn.Inputs[i], g.infer(arg, scope), bindings)
		}
	}
	analyzer.Bind(fn.Output, expected, bindings)
	for i := range types {
		if i < len(fn.Inputs) {
			types[i] = typesystem.Substitute(fn.Inputs[i], bindings)
		}
	}
	return types
}

func (g *Generator) checkArity(info *symbols.VariableDeclarationInfo, call *ast.Call, ref *ast.Reference) {
	want := -1
	if decl, ok := g.analyzer.Variable(info.Name); ok && !info.Builtin {
		if lambda, isLambda := ast.AsLambda(decl.Result); isLambda {
			want = len(lambda.Parameters)
		}
	} else if fn, isFn := info.Type.(typesystem.Function); isFn {
		want = len(fn.Inputs)
	}
	if want < 0 || want == len(call.Arguments) {
		return
	}
	g.errs.Errorf(diagnostics.ErrA002, ref.Range,
		"%s takes %s, but it is called with %d", info.Name, plural(want, "argument"), len(call.Arguments))
}

func plural(n int, word string) string {
	if n == 1 {
		return "1 " + word
	}
	return strconv.Itoa(n) + " " + word + "s"
}

func (g *Generator) lowerLambda(lambda *ast.Lambda, expected typesystem.Type, scope *Scope) rust.Expr {
	g.checkLambdaParameters(lambda)
	name := g.nextClosureName()
	fnExpected, _ := expected.(typesystem.Function)

	captured := g.captures(lambda, scope)
	inner := scope
	var stmts []rust.Stmt
	for _, c := range captured {
		b := scope.Lookup(c)
		if b.Copy {
			continue
		}
		stmts = append(stmts, &rust.LetStmt{Pattern: &rust.IdentPat{Name: b.RustName}, Value: g.captureValue(b)})
		owned := *b
		owned.Reference = false
		inner = inner.With(c, &owned)
	}

	g.fn.depth++
	params, matches, inputs, inner := g.lowerParameters(lambda.Parameters, fnExpected.Inputs, inner)
	output := fnExpected.Output
	if output == nil {
		output = g.infer(lambda.Result, inner)
	}
	var body rust.Expr
	if lambda.Result == nil {
		g.errs.Errorf(diagnostics.ErrS002, lambda.Range, "this lambda is missing its result")
		body = rust.Todo()
	} else {
		body = g.lowerRegion(lambda.Result, output, inner)
	}
	body = wrapParameterMatches(body, matches)
	g.fn.depth--

	rustInputs := make([]rust.Type, len(inputs))
	for i, in := range inputs {
		rustInputs[i] = g.annotationType(in)
		params[i].Type = rustInputs[i]
	}
	closure := &rust.ClosureExpr{Move: true, Parameters: params, Body: body}
	cast := &rust.CastExpr{
		Inner: allocate(closure),
		Type:  &rust.DynFnType{Lifetime: config.LifetimeName, Inputs: rustInputs, Output: g.annotationType(output)},
	}
	var value rust.Expr = cast
	if len(stmts) > 0 {
		value = &rust.Block{Stmts: stmts, Result: cast}
	}
	g.hoist(&rust.LetStmt{Pattern: &rust.IdentPat{Name: name}, Value: value})
	return &rust.Ident{Name: name}
}

func (g *Generator) checkLambdaParameters(lambda *ast.Lambda) {
	if len(lambda.Parameters) == 0 {
		g.errs.Errorf(diagnostics.ErrS005, lambda.Range, "a lambda needs at least one parameter")
	}
}

// captureValue is the owned copy a closure takes of an outer binding.
func (g *Generator) captureValue(b *binding) rust.Expr {
	return clone(&rust.Ident{Name: b.RustName})
}

// captures lists the locals of scope a lambda reads, sorted.
func (g *Generator) captures(lambda *ast.Lambda, scope *Scope) []string {
	found := nameSet{}
	localReferences(lambda, nameSet{}, func(name string) {
		if scope.Lookup(name) != nil {
			found[name] = true
		}
	})
	return found.sorted()
}

// localReferences visits every reference of e that is not bound inside e.
func localReferences(e ast.Expression, bound nameSet, visit func(string)) {
	switch expr := e.(type) {
	case *ast.Reference:
		if !bound[expr.Name] {
			visit(expr.Name)
		}
	case *ast.Lambda:
		inner := bound
		for _, p := range expr.Parameters {
			inner = inner.with(analyzer.PatternVariables(p)...)
		}
		localReferences(expr.Result, inner, visit)
	case *ast.Match:
		localReferences(expr.Matched, bound, visit)
		for _, c := range expr.Cases {
			if c != nil {
				localReferences(c.Result, bound.with(analyzer.PatternVariables(c.Pattern)...), visit)
			}
		}
	case *ast.Let:
		localReferences(expr.Value, bound, visit)
		if expr.Name != nil {
			bound = bound.with(expr.Name.Value)
		}
		localReferences(expr.Result, bound, visit)
	default:
		forEachChild(e, func(child ast.Expression) { localReferences(child, bound, visit) })
	}
}

// forEachChild visits the direct subexpressions of the node kinds that do
// not bind names.
func forEachChild(e ast.Expression, visit func(ast.Expression)) {
	switch expr := e.(type) {
	case *ast.VariantConstruct:
		visit(expr.Value)
	case *ast.Call:
		visit(expr.Called)
		for _, arg := range expr.Arguments {
			visit(arg)
		}
	case *ast.VecLiteral:
		for _, el := range expr.Elements {
			visit(el)
		}
	case *ast.RecordLiteral:
		for _, f := range expr.Fields {
			if f != nil {
				visit(f.Value)
			}
		}
	case *ast.RecordAccess:
		visit(expr.Record)
	case *ast.RecordUpdate:
		visit(expr.Record)
		for _, f := range expr.Fields {
			if f != nil {
				visit(f.Value)
			}
		}
	case *ast.Typed:
		visit(expr.Expression)
	case *ast.Parenthesized:
		visit(expr.Inner)
	case *ast.WithComment:
		visit(expr.Expression)
	}
}

func (g *Generator) lowerMatch(m *ast.Match, expected typesystem.Type, scope *Scope) rust.Expr {
	if len(m.Cases) == 0 {
		g.errs.Errorf(diagnostics.ErrS007, m.Range, "this match has no cases")
		return rust.Todo()
	}
	if expected == nil {
		expected = g.infer(m, scope)
	}
	matchedType := g.infer(m.Matched, scope)

	var scrutinee rust.Expr
	inPlace := false
	if ref, ok := ast.UnwrapExpression(m.Matched).(*ast.Reference); ok {
		if b := scope.Lookup(ref.Name); b != nil && b.Reference {
			scrutinee = &rust.Ident{Name: b.RustName}
			inPlace = true
		}
	}
	if scrutinee == nil {
		if m.Matched == nil {
			g.errs.Errorf(diagnostics.ErrS002, m.Range, "this match is missing the value to match on")
		}
		scrutinee = g.lowerExpr(m.Matched, nil, scope)
	}

	result := &rust.MatchExpr{Scrutinee: scrutinee}
	for _, c := range m.Cases {
		if c == nil || c.Pattern == nil {
			rng := m.Range
			if c != nil {
				rng = c.Range
			}
			g.errs.Errorf(diagnostics.ErrS007, rng, "this case is missing its pattern")
			continue
		}
		pattern, guards, caseScope := g.lowerPattern(c.Pattern, matchedType, scope, inPlace)
		var body rust.Expr
		if c.Result == nil {
			g.errs.Errorf(diagnostics.ErrS002, c.Range, "this case is missing its result")
			body = rust.Todo()
		} else {
			body = g.lowerRegion(c.Result, expected, caseScope)
		}
		result.Arms = append(result.Arms, rust.Arm{Pattern: pattern, Guard: joinGuards(guards), Body: body})
	}
	return result
}

func joinGuards(guards []rust.Expr) rust.Expr {
	var joined rust.Expr
	for _, guard := range guards {
		if joined == nil {
			joined = guard
		} else {
			joined = &rust.BinaryExpr{Left: joined, Op: "&&", Right: guard}
		}
	}
	return joined
}

func (g *Generator) lowerLet(let *ast.Let, expected typesystem.Type, scope *Scope) rust.Expr {
	if let.Name == nil {
		g.errs.Errorf(diagnostics.ErrS001, let.Range, "this let is missing the name to bind")
		return g.lowerRegion(let.Result, expected, scope)
	}
	name := let.Name.Value
	var value rust.Expr
	if let.Value == nil {
		g.errs.Errorf(diagnostics.ErrS002, let.Range, "the let %s is missing its value", name)
		value = rust.Todo()
	} else {
		value = g.lowerExpr(let.Value, nil, scope)
	}
	valueType := g.infer(let.Value, scope)
	g.checkShadowing(name, let.Name.Range, scope)
	b := &binding{Type: valueType, Copy: g.isCopy(valueType), Depth: g.fn.depth, RustName: identifier(name)}

	var result rust.Expr
	if let.Result == nil {
		g.errs.Errorf(diagnostics.ErrS002, let.Range, "the let %s is missing the expression it is used in", name)
		result = rust.Todo()
	} else {
		result = g.lowerRegion(let.Result, expected, scope.With(name, b))
	}
	stmts := []rust.Stmt{&rust.LetStmt{Pattern: &rust.IdentPat{Name: b.RustName}, Value: value}}
	if block, ok := result.(*rust.Block); ok {
		return &rust.Block{Stmts: append(stmts, block.Stmts...), Result: block.Result}
	}
	return &rust.Block{Stmts: stmts, Result: result}
}

func (g *Generator) checkShadowing(name string, rng token.Range, scope *Scope) {
	if scope.Lookup(name) != nil {
		g.errs.Errorf(diagnostics.ErrN003, rng,
			"the local %s is already bound in an enclosing scope; choose a different name", name)
		return
	}
	if info, ok := g.tables.Variables[name]; ok {
		what := "top-level variable"
		if info.Builtin {
			what = "built-in operation"
		}
		g.errs.Errorf(diagnostics.ErrN003, rng,
			"the local %s has the same name as a %s; choose a different name", name, what)
	}
}

func (g *Generator) lowerVec(v *ast.VecLiteral, expected typesystem.Type, scope *Scope) rust.Expr {
	var element typesystem.Type
	if construct, ok := expected.(typesystem.ChoiceConstruct); ok && construct.Name == config.VecTypeName && len(construct.Arguments) == 1 {
		element = construct.Arguments[0]
	}
	if len(v.Elements) == 0 {
		if element == nil {
			g.errs.Errorf(diagnostics.ErrS006, v.Range,
				"I cannot tell the element type of this empty vec; add a type annotation")
			return rust.Todo()
		}
		elementType := g.annotationType(element)
		if _, unknown := elementType.(*rust.InferredType); unknown {
			g.errs.Errorf(diagnostics.ErrS006, v.Range,
				"this empty vec has elements of type %s, which is not a type parameter of %s; add a type annotation",
				element, g.fn.name)
			return rust.Todo()
		}
		return &rust.CallExpr{
			Func: &rust.TurbofishExpr{Base: "Vec", Arguments: []rust.Type{elementType}, Member: "from_vec"},
			Args: []rust.Expr{&rust.CallExpr{Func: &rust.Ident{Name: "std::vec::Vec::new"}}},
		}
	}
	if element == nil {
		element = g.infer(v.Elements[0], scope)
	}
	elements := make([]rust.Expr, len(v.Elements))
	for i, el := range v.Elements {
		elements[i] = g.lowerExpr(el, element, scope)
	}
	return &rust.CallExpr{Func: &rust.Ident{Name: "Vec::from_array"}, Args: []rust.Expr{&rust.ArrayExpr{Elements: elements}}}
}

// recordFields collects the named fields, reporting duplicates.
func (g *Generator) recordFields(fields []*ast.RecordField) ([]*ast.RecordField, []string) {
	seen := make(map[string]bool, len(fields))
	var kept []*ast.RecordField
	var names []string
	for _, f := range fields {
		if f == nil || f.Name == nil {
			continue
		}
		if seen[f.Name.Value] {
			g.errs.Errorf(diagnostics.ErrN001, f.Name.Range, "the field %s appears twice", f.Name.Value)
			continue
		}
		seen[f.Name.Value] = true
		kept = append(kept, f)
		names = append(names, f.Name.Value)
	}
	return kept, names
}

func (g *Generator) lowerFieldValue(f *ast.RecordField, expected typesystem.Type, scope *Scope) rust.FieldInit {
	init := rust.FieldInit{Name: identifier(f.Name.Value)}
	if f.Value == nil {
		g.errs.Errorf(diagnostics.ErrS002, f.Range, "the field %s is missing its value", f.Name.Value)
		init.Value = rust.Todo()
	} else {
		init.Value = g.lowerExpr(f.Value, expected, scope)
	}
	return init
}

// lowerRecord keeps the source field order, which is the evaluation order
// the last-use analysis assumed.
func (g *Generator) lowerRecord(r *ast.RecordLiteral, expected typesystem.Type, scope *Scope) rust.Expr {
	fields, names := g.recordFields(r.Fields)
	if len(names) == 0 {
		return &rust.StructExpr{Path: "Blank"}
	}
	expectedRecord, _ := expected.(typesystem.Record)
	result := &rust.StructExpr{Path: g.records.Register(names)}
	for _, f := range fields {
		result.Fields = append(result.Fields, g.lowerFieldValue(f, expectedRecord.Fields[f.Name.Value], scope))
	}
	return result
}

func (g *Generator) lowerRecordAccess(access *ast.RecordAccess, scope *Scope) rust.Expr {
	if access.Field == nil {
		g.errs.Errorf(diagnostics.ErrS001, access.Range, "this field access is missing the field name")
		return rust.Todo()
	}
	recordType, known := g.infer(access.Record, scope).(typesystem.Record)
	var fieldType typesystem.Type
	if known {
		if len(recordType.Fields) > 0 {
			g.records.Register(recordType.FieldNames())
		}
		var has bool
		if fieldType, has = recordType.Fields[access.Field.Value]; !has {
			g.errs.Errorf(diagnostics.ErrN005, access.Field.Range,
				"the record %s has no field %s", recordType, access.Field.Value)
			return rust.Todo()
		}
	}
	field := identifier(access.Field.Value)

	// A local record is read in place: only the field is copied or cloned.
	if ref, ok := ast.UnwrapExpression(access.Record).(*ast.Reference); ok && fieldType != nil {
		if b := scope.Lookup(ref.Name); b != nil {
			read := &rust.FieldExpr{Receiver: &rust.Ident{Name: b.RustName}, Field: field}
			movable := !b.Reference && g.fn.moves[ref.Range] && b.Depth == g.fn.depth
			if g.isCopy(fieldType) || movable {
				return read
			}
			return clone(read)
		}
	}
	return &rust.FieldExpr{Receiver: g.lowerExpr(access.Record, nil, scope), Field: field}
}

func (g *Generator) lowerRecordUpdate(update *ast.RecordUpdate, expected typesystem.Type, scope *Scope) rust.Expr {
	recordType, ok := g.infer(update.Record, scope).(typesystem.Record)
	if !ok {
		recordType, ok = expected.(typesystem.Record)
	}
	if !ok {
		g.errs.Errorf(diagnostics.ErrT001, update.Range,
			"I could not determine the type of the record being updated; add a type annotation")
		return rust.Todo()
	}
	fields, _ := g.recordFields(update.Fields)
	path := "Blank"
	if len(recordType.Fields) > 0 {
		path = g.records.Register(recordType.FieldNames())
	}
	result := &rust.StructExpr{Path: path}
	for _, f := range fields {
		fieldType, has := recordType.Fields[f.Name.Value]
		if !has {
			g.errs.Errorf(diagnostics.ErrN005, f.Name.Range, "the record %s has no field %s", recordType, f.Name.Value)
			continue
		}
		result.Fields = append(result.Fields, g.lowerFieldValue(f, fieldType, scope))
	}
	result.Base = g.lowerExpr(update.Record, recordType, scope)
	return result
}
