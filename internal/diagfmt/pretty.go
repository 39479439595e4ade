package diagfmt

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"fortio.org/safecast"
	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"vsharp/internal/diag"
	"vsharp/internal/source"
)

type palette struct {
	sev    map[diag.Severity]*color.Color
	code   *color.Color
	gutter *color.Color
	caret  *color.Color
	note   *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		sev: map[diag.Severity]*color.Color{
			diag.SevError:   color.New(color.FgRed, color.Bold),
			diag.SevWarning: color.New(color.FgYellow, color.Bold),
			diag.SevInfo:    color.New(color.FgCyan, color.Bold),
		},
		code:   color.New(color.Bold),
		gutter: color.New(color.FgBlue),
		caret:  color.New(color.FgRed, color.Bold),
		note:   color.New(color.FgCyan),
	}
	all := append([]*color.Color{p.code, p.gutter, p.caret, p.note}, p.sev[diag.SevError], p.sev[diag.SevWarning], p.sev[diag.SevInfo])
	for _, c := range all {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

// Pretty prints bag.Items() in order (call bag.Sort first):
//
//	<path>:<line>:<col>: <SEV> <CODE>: <message>
//
// followed by the source line with the span underlined as ^~~~ and, when
// enabled, the notes in the same format.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) error {
	p := newPalette(opts.Color)
	for _, d := range bag.Items() {
		if err := prettyOne(w, d, fs, opts, p); err != nil {
			return err
		}
	}
	return nil
}

func prettyOne(w io.Writer, d diag.Diagnostic, fs *source.FileSet, opts PrettyOpts, p palette) error {
	sev := p.sev[d.Severity]
	if sev == nil {
		sev = p.code
	}
	var sb strings.Builder
	if f := located(fs, d); f != nil {
		start, _ := fs.Resolve(d.Primary)
		fmt.Fprintf(&sb, "%s:%d:%d: ", formatPath(f.Path, opts.PathMode, opts.BaseDir), start.Line, start.Col)
	}
	fmt.Fprintf(&sb, "%s %s: %s\n", sev.Sprint(d.Severity), p.code.Sprint(d.Code.ID()), d.Message)
	if located(fs, d) != nil {
		snippet(&sb, fs, d.Primary, int(opts.Context), p)
	}
	if opts.ShowNotes {
		for _, n := range d.Notes {
			fmt.Fprintf(&sb, "  %s %s", p.note.Sprint("note:"), n.Msg)
			if f := fs.Get(n.Span.File); f != nil {
				start, _ := fs.Resolve(n.Span)
				fmt.Fprintf(&sb, " (%s:%d:%d)", formatPath(f.Path, opts.PathMode, opts.BaseDir), start.Line, start.Col)
			}
			sb.WriteString("\n")
		}
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

// located returns the file of d's primary span. Build diagnostics with an
// empty span carry no location.
func located(fs *source.FileSet, d diag.Diagnostic) *source.File {
	if fs == nil {
		return nil
	}
	if d.Primary.Start == 0 && d.Primary.End == 0 && d.Code >= diag.BldForgeNotFinalized {
		return nil
	}
	return fs.Get(d.Primary.File)
}

func snippet(sb *strings.Builder, fs *source.FileSet, span source.Span, context int, p palette) {
	f := fs.Get(span.File)
	start, end := fs.Resolve(span)
	first := max(1, int(start.Line)-context)
	last := min(int(start.Line)+context, len(f.LineIdx)+1)
	width := len(strconv.Itoa(last))
	for line := first; line <= last; line++ {
		n, err := safecast.Conv[uint32](line)
		if err != nil {
			panic(fmt.Errorf("line number overflow: %w", err))
		}
		text := f.GetLine(n)
		fmt.Fprintf(sb, "%s %s\n", p.gutter.Sprintf("%*d |", width, line), strings.ReplaceAll(text, "\t", "    "))
		if n == start.Line {
			fmt.Fprintf(sb, "%s %s\n", p.gutter.Sprintf("%*s |", width, ""), p.caret.Sprint(underline(text, start, end)))
		}
	}
}

// underline builds the marker for [start, end) on text. Columns are byte
// based; the marker is aligned by display width so wide runes and tabs line
// up with the source.
func underline(text string, start, end source.LineCol) string {
	from := clampCol(text, start.Col)
	to := len(text)
	if end.Line == start.Line {
		to = clampCol(text, end.Col)
	}
	pad := displayWidth(text[:from])
	n := max(1, displayWidth(text[from:max(from, to)]))
	return strings.Repeat(" ", pad) + "^" + strings.Repeat("~", n-1)
}

func clampCol(text string, col uint32) int {
	i := int(col) - 1
	return min(max(i, 0), len(text))
}

func displayWidth(s string) int {
	return runewidth.StringWidth(strings.ReplaceAll(s, "\t", "    "))
}
