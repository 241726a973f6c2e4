// Package rust is the output-language item model the code generator builds,
// and the printer that serializes it.
package rust

// File is one generated module.
type File struct {
	// InnerAttributes are printed as #![...] before anything else.
	InnerAttributes []string
	Uses            []string
	Items           []Item
}

// Item is a top-level definition.
type Item interface {
	itemNode()
}

// GenericParam is a type parameter with its trait bounds.
type GenericParam struct {
	Name   string
	Bounds []string
}

type Generics struct {
	Lifetimes []string
	Params    []GenericParam
	Where     []string
}

func (g Generics) IsEmpty() bool {
	return len(g.Lifetimes) == 0 && len(g.Params) == 0
}

type Struct struct {
	Attributes []string
	Name       string
	Generics   Generics
	Fields     []Field
}

type Field struct {
	Name string
	Type Type
}

type Enum struct {
	Documentation string
	Attributes    []string
	Name          string
	Generics      Generics
	Variants      []EnumVariant
}

// EnumVariant has at most one payload.
type EnumVariant struct {
	Name    string
	Payload Type
}

type Fn struct {
	Documentation string
	Public        bool
	Name          string
	Generics      Generics
	Parameters    []Parameter
	Output        Type
	Body          *Block
}

// Parameter is a function or closure parameter. A nil Type prints the name
// alone, which is how receivers like `self` are written.
type Parameter struct {
	Name string
	Type Type
}

type Const struct {
	Documentation string
	Name          string
	Type          Type
	Value         Expr
}

// Impl is a trait implementation.
type Impl struct {
	Generics   Generics
	Trait      string
	For        Type
	Associated []AssociatedType
	Fns        []*Fn
}

// AssociatedType is `type Name<Params> = Value where ...;`.
type AssociatedType struct {
	Name   string
	Params []string
	Where  []string
	Value  Type
}

func (*Struct) itemNode() {}
func (*Enum) itemNode()   {}
func (*Fn) itemNode()     {}
func (*Const) itemNode()  {}
func (*Impl) itemNode()   {}

// --- Types ---

type Type interface {
	typeNode()
}

// PathType is a named type with optional lifetime and type arguments: Vec<'a, Int>.
type PathType struct {
	Path      string
	Lifetimes []string
	Arguments []Type
}

// RefType is &'lifetime Inner.
type RefType struct {
	Lifetime string
	Inner    Type
}

// DynFnType is a borrowed closure trait object: &'a dyn Fn(I) -> O.
type DynFnType struct {
	Lifetime string
	Inputs   []Type
	Output   Type
}

// ImplType is an anonymous `impl Bounds` argument type.
type ImplType struct {
	Bounds string
}

// QualifiedType is an associated-type projection: <Self as Trait>::Name<Lifetimes>.
// With an empty Trait it prints Self::Name.
type QualifiedType struct {
	Self      Type
	Trait     string
	Name      string
	Lifetimes []string
}

// InferredType is `_`.
type InferredType struct{}

func (*PathType) typeNode()      {}
func (*RefType) typeNode()       {}
func (*DynFnType) typeNode()     {}
func (*ImplType) typeNode()      {}
func (*QualifiedType) typeNode() {}
func (*InferredType) typeNode()  {}

// Named is shorthand for a PathType without arguments.
func Named(path string) *PathType {
	return &PathType{Path: path}
}

// --- Expressions ---

type Expr interface {
	exprNode()
}

// Ident is a variable or a path such as Shape::Circle.
type Ident struct {
	Name string
}

// Lit is a literal in its final spelling.
type Lit struct {
	Text string
}

type CallExpr struct {
	Func Expr
	Args []Expr
}

type MethodCallExpr struct {
	Receiver Expr
	Method   string
	Args     []Expr
}

// TurbofishExpr is Base::<Arguments>::Member.
type TurbofishExpr struct {
	Base      string
	Arguments []Type
	Member    string
}

type FieldExpr struct {
	Receiver Expr
	Field    string
}

type DerefExpr struct {
	Inner Expr
}

type RefExpr struct {
	Inner Expr
}

type BinaryExpr struct {
	Left  Expr
	Op    string
	Right Expr
}

type StructExpr struct {
	Path   string
	Fields []FieldInit
	Base   Expr
}

type FieldInit struct {
	Name  string
	Value Expr
}

type ArrayExpr struct {
	Elements []Expr
}

type ClosureExpr struct {
	Move       bool
	Parameters []Parameter
	// Output, when set, forces the body to print as a block.
	Output Type
	Body   Expr
}

type CastExpr struct {
	Inner Expr
	Type  Type
}

type MatchExpr struct {
	Scrutinee Expr
	Arms      []Arm
}

type Arm struct {
	Pattern Pattern
	Guard   Expr
	Body    Expr
}

// MacroExpr is name!(args).
type MacroExpr struct {
	Name string
	Args []Expr
}

// Block is { stmts; result }.
type Block struct {
	Stmts  []Stmt
	Result Expr
}

func (*Ident) exprNode()          {}
func (*Lit) exprNode()            {}
func (*CallExpr) exprNode()       {}
func (*MethodCallExpr) exprNode() {}
func (*TurbofishExpr) exprNode()  {}
func (*FieldExpr) exprNode()      {}
func (*DerefExpr) exprNode()      {}
func (*RefExpr) exprNode()        {}
func (*BinaryExpr) exprNode()     {}
func (*StructExpr) exprNode()     {}
func (*ArrayExpr) exprNode()      {}
func (*ClosureExpr) exprNode()    {}
func (*CastExpr) exprNode()       {}
func (*MatchExpr) exprNode()      {}
func (*MacroExpr) exprNode()      {}
func (*Block) exprNode()          {}

// Todo is the placeholder for code that could not be generated.
func Todo() Expr {
	return &MacroExpr{Name: "todo"}
}

// --- Statements ---

type Stmt interface {
	stmtNode()
}

type LetStmt struct {
	Pattern Pattern
	Type    Type
	Value   Expr
}

type ExprStmt struct {
	Expr Expr
}

func (*LetStmt) stmtNode()  {}
func (*ExprStmt) stmtNode() {}

// --- Patterns ---

type Pattern interface {
	patternNode()
}

type IdentPat struct {
	Name string
}

type WildPat struct{}

type LitPat struct {
	Text string
}

// PathPat is a payload-less variant: Opt::Absent.
type PathPat struct {
	Path string
}

type TupleStructPat struct {
	Path     string
	Elements []Pattern
}

type StructPat struct {
	Path   string
	Fields []FieldPat
	Rest   bool
}

type FieldPat struct {
	Name    string
	Pattern Pattern
}

func (*IdentPat) patternNode()       {}
func (*WildPat) patternNode()        {}
func (*LitPat) patternNode()         {}
func (*PathPat) patternNode()        {}
func (*TupleStructPat) patternNode() {}
func (*StructPat) patternNode()      {}
