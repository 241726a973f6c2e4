package codegen

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

var rustKeywords = map[string]bool{
	"as": true, "async": true, "await": true, "break": true, "const": true, "continue": true,
	"dyn": true, "else": true, "enum": true, "extern": true, "false": true, "fn": true,
	"for": true, "if": true, "impl": true, "in": true, "let": true, "loop": true,
	"match": true, "mod": true, "move": true, "mut": true, "pub": true, "ref": true,
	"return": true, "static": true, "struct": true, "trait": true, "true": true,
	"type": true, "unsafe": true, "use": true, "where": true, "while": true,
	"abstract": true, "become": true, "box": true, "do": true, "final": true, "gen": true,
	"macro": true, "override": true, "priv": true, "try": true, "typeof": true,
	"unsized": true, "virtual": true, "yield": true,
}

// cannot be raw identifiers
var rustPathKeywords = map[string]bool{"self": true, "Self": true, "super": true, "crate": true}

// identifier returns name spelled as a Rust identifier.
func identifier(name string) string {
	if rustPathKeywords[name] {
		return name + "_"
	}
	if rustKeywords[name] {
		return "r#" + name
	}
	return name
}

// capitalize uppercases the first letter: key_pressed becomes Key_pressed.
func capitalize(name string) string {
	r, size := utf8.DecodeRuneInString(name)
	if r == utf8.RuneError {
		return name
	}
	return string(unicode.ToUpper(r)) + name[size:]
}

func typeParameterName(name string) string {
	return identifier(capitalize(name))
}

// decimal gives integral decimals a fractional part so Rust reads them as floats.
func decimal(text string) string {
	if strings.ContainsAny(text, ".eE") || strings.HasPrefix(text, "0x") {
		return text
	}
	return text + ".0"
}

func charLiteral(r rune) string {
	return "'" + escapeRune(r, '\'') + "'"
}

func stringLiteral(s string) string {
	var sb strings.Builder
	sb.WriteByte('"')
	for _, r := range s {
		sb.WriteString(escapeRune(r, '"'))
	}
	sb.WriteByte('"')
	return sb.String()
}

func escapeRune(r rune, quote rune) string {
	switch r {
	case '\\':
		return `\\`
	case '\n':
		return `\n`
	case '\r':
		return `\r`
	case '\t':
		return `\t`
	case 0:
		return `\0`
	case quote:
		return `\` + string(r)
	}
	if !unicode.IsPrint(r) {
		return fmt.Sprintf(`\u{%x}`, r)
	}
	return string(r)
}
