// Package render draws reports for the terminal: tables, section banners,
// summary blocks, the billing overview and trend charts.
package render

import (
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/j-veylop/cursor-usage/internal/ui/styles"
)

// DefaultWidth is used when the output is not a terminal.
const DefaultWidth = 100

// Options controls table layout.
type Options struct {
	// Width caps the rendered width; zero means unlimited.
	Width int
	// Compact drops the outer border and column rules and shortens long cells.
	Compact bool
}

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// TerminalWidth returns the column count of f, or DefaultWidth when f is
// not a terminal.
func TerminalWidth(f *os.File) int {
	if !IsTerminal(f) {
		return DefaultWidth
	}
	w, _, err := term.GetSize(int(f.Fd()))
	if err != nil || w <= 0 {
		return DefaultWidth
	}
	return w
}

// printer remembers the first write error so callers check once.
type printer struct {
	w   io.Writer
	err error
}

func (p *printer) println(s string) {
	if p.err != nil {
		return
	}
	_, p.err = io.WriteString(p.w, s+"\n")
}

func (p *printer) printf(format string, args ...any) {
	p.println(fmt.Sprintf(format, args...))
}

func rule(width int) string {
	if width <= 0 {
		width = DefaultWidth
	}
	return strings.Repeat("=", width)
}

// Warning prints msg as a highlighted single line.
func Warning(w io.Writer, msg string) error {
	p := &printer{w: w}
	p.println(styles.WarningTextStyle.Render(msg))
	return p.err
}
