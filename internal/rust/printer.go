package rust

import (
	"bytes"
	"strings"
)

// Print serializes a file. The output is valid but unformatted beyond
// indentation; run rustfmt over it for the usual layout.
func Print(file *File) string {
	p := NewCodePrinter()
	p.PrintFile(file)
	return p.String()
}

// CodePrinter writes items with four-space indentation.
type CodePrinter struct {
	buf    bytes.Buffer
	indent int
}

func NewCodePrinter() *CodePrinter {
	return &CodePrinter{}
}

func (p *CodePrinter) String() string {
	return p.buf.String()
}

func (p *CodePrinter) write(s string) {
	p.buf.WriteString(s)
}

func (p *CodePrinter) writeln() {
	p.buf.WriteByte('\n')
}

func (p *CodePrinter) writeIndent() {
	for i := 0; i < p.indent; i++ {
		p.buf.WriteString("    ")
	}
}

// line writes one indented line.
func (p *CodePrinter) line(s string) {
	p.writeIndent()
	p.write(s)
	p.writeln()
}

func (p *CodePrinter) PrintFile(file *File) {
	for _, attr := range file.InnerAttributes {
		p.line("#![" + attr + "]")
	}
	for _, use := range file.Uses {
		p.line("use " + use + ";")
	}
	for _, item := range file.Items {
		p.writeln()
		p.PrintItem(item)
	}
}

func (p *CodePrinter) PrintItem(item Item) {
	switch it := item.(type) {
	case *Struct:
		p.printStruct(it)
	case *Enum:
		p.printEnum(it)
	case *Fn:
		p.printFn(it)
	case *Const:
		p.documentation(it.Documentation)
		p.writeIndent()
		p.write("pub const " + it.Name + ": ")
		p.printType(it.Type)
		p.write(" = ")
		p.printExpr(it.Value)
		p.write(";")
		p.writeln()
	case *Impl:
		p.printImpl(it)
	}
}

func (p *CodePrinter) documentation(doc string) {
	if doc == "" {
		return
	}
	for _, l := range strings.Split(strings.TrimRight(doc, "\n"), "\n") {
		p.line(strings.TrimRight("/// "+l, " "))
	}
}

func (p *CodePrinter) attributes(attrs []string) {
	for _, attr := range attrs {
		p.line("#[" + attr + "]")
	}
}

func (p *CodePrinter) printStruct(s *Struct) {
	p.attributes(s.Attributes)
	p.writeIndent()
	p.write("pub struct " + s.Name)
	p.printGenerics(s.Generics)
	if len(s.Fields) == 0 {
		p.write(" {}")
		p.writeln()
		return
	}
	p.write(" {")
	p.writeln()
	p.indent++
	for _, f := range s.Fields {
		p.writeIndent()
		p.write("pub " + f.Name + ": ")
		p.printType(f.Type)
		p.write(",")
		p.writeln()
	}
	p.indent--
	p.line("}")
}

func (p *CodePrinter) printEnum(e *Enum) {
	p.documentation(e.Documentation)
	p.attributes(e.Attributes)
	p.writeIndent()
	p.write("pub enum " + e.Name)
	p.printGenerics(e.Generics)
	p.write(" {")
	p.writeln()
	p.indent++
	for _, v := range e.Variants {
		p.writeIndent()
		p.write(v.Name)
		if v.Payload != nil {
			p.write("(")
			p.printType(v.Payload)
			p.write(")")
		}
		p.write(",")
		p.writeln()
	}
	p.indent--
	p.line("}")
}

func (p *CodePrinter) printFn(f *Fn) {
	p.documentation(f.Documentation)
	p.writeIndent()
	if f.Public {
		p.write("pub ")
	}
	p.write("fn " + f.Name)
	p.printGenerics(f.Generics)
	p.write("(")
	p.printParameters(f.Parameters)
	p.write(")")
	if f.Output != nil {
		p.write(" -> ")
		p.printType(f.Output)
	}
	p.printWhere(f.Generics.Where)
	p.write(" ")
	p.printBlock(f.Body)
	p.writeln()
}

func (p *CodePrinter) printImpl(impl *Impl) {
	p.writeIndent()
	p.write("impl")
	p.printGenerics(impl.Generics)
	p.write(" " + impl.Trait + " for ")
	p.printType(impl.For)
	p.printWhere(impl.Generics.Where)
	p.write(" {")
	p.writeln()
	p.indent++
	for _, assoc := range impl.Associated {
		p.writeIndent()
		p.write("type " + assoc.Name)
		if len(assoc.Params) > 0 {
			p.write("<" + strings.Join(assoc.Params, ", ") + ">")
		}
		p.write(" = ")
		p.printType(assoc.Value)
		p.printWhere(assoc.Where)
		p.write(";")
		p.writeln()
	}
	for _, fn := range impl.Fns {
		p.printFn(fn)
	}
	p.indent--
	p.line("}")
}

func (p *CodePrinter) printGenerics(g Generics) {
	if g.IsEmpty() {
		return
	}
	parts := append([]string(nil), g.Lifetimes...)
	for _, param := range g.Params {
		if len(param.Bounds) == 0 {
			parts = append(parts, param.Name)
		} else {
			parts = append(parts, param.Name+": "+strings.Join(param.Bounds, " + "))
		}
	}
	p.write("<" + strings.Join(parts, ", ") + ">")
}

func (p *CodePrinter) printWhere(where []string) {
	if len(where) > 0 {
		p.write(" where " + strings.Join(where, ", "))
	}
}

func (p *CodePrinter) printParameters(params []Parameter) {
	for i, param := range params {
		if i > 0 {
			p.write(", ")
		}
		p.write(param.Name)
		if param.Type != nil {
			p.write(": ")
			p.printType(param.Type)
		}
	}
}

// --- Types ---

// TypeString renders a type on its own.
func TypeString(t Type) string {
	p := NewCodePrinter()
	p.printType(t)
	return p.String()
}

func (p *CodePrinter) printType(t Type) {
	switch typ := t.(type) {
	case nil, *InferredType:
		p.write("_")
	case *PathType:
		p.write(typ.Path)
		if len(typ.Lifetimes)+len(typ.Arguments) == 0 {
			return
		}
		p.write("<")
		p.write(strings.Join(typ.Lifetimes, ", "))
		for i, arg := range typ.Arguments {
			if i > 0 || len(typ.Lifetimes) > 0 {
				p.write(", ")
			}
			p.printType(arg)
		}
		p.write(">")
	case *RefType:
		p.write("&")
		if typ.Lifetime != "" {
			p.write(typ.Lifetime + " ")
		}
		p.printType(typ.Inner)
	case *DynFnType:
		p.write("&")
		if typ.Lifetime != "" {
			p.write(typ.Lifetime + " ")
		}
		p.write("dyn Fn(")
		for i, in := range typ.Inputs {
			if i > 0 {
				p.write(", ")
			}
			p.printType(in)
		}
		p.write(") -> ")
		p.printType(typ.Output)
	case *ImplType:
		p.write("impl " + typ.Bounds)
	case *QualifiedType:
		if typ.Trait == "" {
			p.printType(typ.Self)
		} else {
			p.write("<")
			p.printType(typ.Self)
			p.write(" as " + typ.Trait + ">")
		}
		p.write("::" + typ.Name)
		if len(typ.Lifetimes) > 0 {
			p.write("<" + strings.Join(typ.Lifetimes, ", ") + ">")
		}
	}
}

// --- Expressions ---

// ExprString renders an expression on its own, at indentation zero.
func ExprString(e Expr) string {
	p := NewCodePrinter()
	p.printExpr(e)
	return p.String()
}

// simple expressions can be a call target or method receiver without parentheses
func simple(e Expr) bool {
	switch e.(type) {
	case *Ident, *Lit, *CallExpr, *MethodCallExpr, *FieldExpr, *TurbofishExpr, *MacroExpr, *ArrayExpr, *CastExpr:
		return true
	}
	return false
}

func (p *CodePrinter) printOperand(e Expr) {
	if simple(e) {
		p.printExpr(e)
		return
	}
	p.write("(")
	p.printExpr(e)
	p.write(")")
}

func (p *CodePrinter) printArgs(args []Expr) {
	p.write("(")
	for i, arg := range args {
		if i > 0 {
			p.write(", ")
		}
		p.printExpr(arg)
	}
	p.write(")")
}

func (p *CodePrinter) printExpr(e Expr) {
	switch ex := e.(type) {
	case nil:
		p.write("todo!()")
	case *Ident:
		p.write(ex.Name)
	case *Lit:
		p.write(ex.Text)
	case *CallExpr:
		p.printOperand(ex.Func)
		p.printArgs(ex.Args)
	case *MethodCallExpr:
		p.printOperand(ex.Receiver)
		p.write("." + ex.Method)
		p.printArgs(ex.Args)
	case *TurbofishExpr:
		p.write(ex.Base + "::<")
		for i, arg := range ex.Arguments {
			if i > 0 {
				p.write(", ")
			}
			p.printType(arg)
		}
		p.write(">::" + ex.Member)
	case *FieldExpr:
		p.printOperand(ex.Receiver)
		p.write("." + ex.Field)
	case *DerefExpr:
		p.write("*")
		p.printOperand(ex.Inner)
	case *RefExpr:
		p.write("&")
		p.printOperand(ex.Inner)
	case *BinaryExpr:
		p.printOperand(ex.Left)
		p.write(" " + ex.Op + " ")
		p.printOperand(ex.Right)
	case *StructExpr:
		p.write(ex.Path + " {")
		for i, f := range ex.Fields {
			if i > 0 {
				p.write(",")
			}
			p.write(" " + f.Name + ": ")
			p.printExpr(f.Value)
		}
		if ex.Base != nil {
			if len(ex.Fields) > 0 {
				p.write(",")
			}
			p.write(" ..")
			p.printOperand(ex.Base)
		}
		p.write(" }")
	case *ArrayExpr:
		p.write("[")
		for i, el := range ex.Elements {
			if i > 0 {
				p.write(", ")
			}
			p.printExpr(el)
		}
		p.write("]")
	case *ClosureExpr:
		if ex.Move {
			p.write("move ")
		}
		p.write("|")
		p.printParameters(ex.Parameters)
		p.write("|")
		if ex.Output != nil {
			p.write(" -> ")
			p.printType(ex.Output)
			p.write(" ")
			body, ok := ex.Body.(*Block)
			if !ok {
				body = &Block{Result: ex.Body}
			}
			p.printBlock(body)
			return
		}
		p.write(" ")
		p.printExpr(ex.Body)
	case *CastExpr:
		p.write("(")
		p.printOperand(ex.Inner)
		p.write(" as ")
		p.printType(ex.Type)
		p.write(")")
	case *MatchExpr:
		p.printMatch(ex)
	case *MacroExpr:
		p.write(ex.Name + "!")
		p.printArgs(ex.Args)
	case *Block:
		p.printBlock(ex)
	}
}

func (p *CodePrinter) printMatch(m *MatchExpr) {
	p.write("match ")
	if _, isStruct := m.Scrutinee.(*StructExpr); isStruct {
		p.write("(")
		p.printExpr(m.Scrutinee)
		p.write(")")
	} else {
		p.printExpr(m.Scrutinee)
	}
	p.write(" {")
	p.writeln()
	p.indent++
	for _, arm := range m.Arms {
		p.writeIndent()
		p.printPattern(arm.Pattern)
		if arm.Guard != nil {
			p.write(" if ")
			p.printExpr(arm.Guard)
		}
		p.write(" => ")
		if block, ok := arm.Body.(*Block); ok {
			p.printBlock(block)
		} else {
			p.printExpr(arm.Body)
			p.write(",")
		}
		p.writeln()
	}
	p.indent--
	p.writeIndent()
	p.write("}")
}

// printBlock writes a braced block. The opening brace goes on the current
// line, the closing one is left without a trailing newline.
func (p *CodePrinter) printBlock(b *Block) {
	if b == nil {
		b = &Block{}
	}
	p.write("{")
	p.writeln()
	p.indent++
	for _, stmt := range b.Stmts {
		p.writeIndent()
		switch s := stmt.(type) {
		case *LetStmt:
			p.write("let ")
			p.printPattern(s.Pattern)
			if s.Type != nil {
				p.write(": ")
				p.printType(s.Type)
			}
			p.write(" = ")
			p.printExpr(s.Value)
			p.write(";")
		case *ExprStmt:
			p.printExpr(s.Expr)
			p.write(";")
		}
		p.writeln()
	}
	if b.Result != nil {
		p.writeIndent()
		p.printExpr(b.Result)
		p.writeln()
	}
	p.indent--
	p.writeIndent()
	p.write("}")
}

// --- Patterns ---

func (p *CodePrinter) printPattern(pat Pattern) {
	switch pt := pat.(type) {
	case nil, *WildPat:
		p.write("_")
	case *IdentPat:
		p.write(pt.Name)
	case *LitPat:
		p.write(pt.Text)
	case *PathPat:
		p.write(pt.Path)
	case *TupleStructPat:
		p.write(pt.Path + "(")
		for i, el := range pt.Elements {
			if i > 0 {
				p.write(", ")
			}
			p.printPattern(el)
		}
		p.write(")")
	case *StructPat:
		p.write(pt.Path + " {")
		for i, f := range pt.Fields {
			if i > 0 {
				p.write(",")
			}
			p.write(" " + f.Name + ": ")
			p.printPattern(f.Pattern)
		}
		if pt.Rest {
			if len(pt.Fields) > 0 {
				p.write(",")
			}
			p.write(" ..")
		}
		p.write(" }")
	}
}
