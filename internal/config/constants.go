package config

// SourceFileExt is the extension of serialized syntax trees handed over by the parser.
const SourceFileExt = ".still.yaml"

// SourceFileExtensions are all recognized input extensions.
var SourceFileExtensions = []string{".still.yaml", ".still.yml", ".still.json"}

// OutputFileExt is the extension of generated files.
const OutputFileExt = ".rs"

// Version of the compiler.
var Version = "0.4.0"

// RuntimeAPIVersion is the version of the runtime support library whose
// items the generated code refers to.
const RuntimeAPIVersion = "0.4.0"

// DefaultRuntimeModule is where generated code imports the runtime from.
const DefaultRuntimeModule = "crate::still_core"

// Built-in type names
const (
	IntTypeName            = "int"
	DecTypeName            = "dec"
	ChrTypeName            = "chr"
	StrTypeName            = "str"
	UntTypeName            = "unt"
	VecTypeName            = "vec"
	OptTypeName            = "opt"
	OrderTypeName          = "order"
	ContinueOrExitTypeName = "continue_or_exit"
)

// Built-in variant names
const (
	PresentVariantName  = "Present"
	AbsentVariantName   = "Absent"
	LessVariantName     = "Less"
	EqualVariantName    = "Equal"
	GreaterVariantName  = "Greater"
	ContinueVariantName = "Continue"
	ExitVariantName     = "Exit"
)

// Names the generated code uses for itself.
const (
	AllocatorParameterName = "allocator"
	AllocTraitName         = "Alloc"
	LifetimeName           = "'a"
	ClosurePrefix          = "closure·"
	OwnedTypeSuffix        = "_Owned"
	RecordNameSeparator    = "·"
)

// ReservedNames are not built-in declarations but still cannot be declared,
// since their generated spelling collides with a runtime item.
var ReservedNames = []string{"blank", "alloc", "allocator", "still_into_owned", "owned_to_still", "box"}
