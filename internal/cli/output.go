package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"

	"github.com/funvibe/still/internal/config"
	"github.com/funvibe/still/internal/diagnostics"
)

const (
	ansiRed   = "\x1b[1;31m"
	ansiReset = "\x1b[0m"
)

// useColor decides whether diagnostics written to w are colored.
func useColor(mode string, w io.Writer) bool {
	switch mode {
	case config.ColorAlways:
		return true
	case config.ColorNever:
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	if !isatty.IsTerminal(f.Fd()) && !isatty.IsCygwinTerminal(f.Fd()) {
		return false
	}
	return os.Getenv("TERM") != "dumb" && os.Getenv("NO_COLOR") == ""
}

func printDiagnostics(w io.Writer, ds []*diagnostics.Diagnostic, color bool) {
	for _, d := range ds {
		if color {
			fmt.Fprintf(w, "%s:%d:%d: %s[%s]%s %s\n",
				d.File, d.Range.Start.Line, d.Range.Start.Column, ansiRed, d.Code, ansiReset, d.Message)
			continue
		}
		fmt.Fprintln(w, d.Error())
	}
}
