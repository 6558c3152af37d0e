package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"nesc/internal/diag"
	"nesc/internal/source"
)

type palette struct {
	sev   map[diag.Severity]*color.Color
	code  *color.Color
	gut   *color.Color
	caret *color.Color
	note  *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		sev: map[diag.Severity]*color.Color{
			diag.SevError:   color.New(color.FgRed, color.Bold),
			diag.SevWarning: color.New(color.FgYellow, color.Bold),
			diag.SevInfo:    color.New(color.FgCyan, color.Bold),
		},
		code:  color.New(color.Bold),
		gut:   color.New(color.FgBlue),
		caret: color.New(color.FgGreen, color.Bold),
		note:  color.New(color.FgCyan),
	}
	all := []*color.Color{p.code, p.gut, p.caret, p.note}
	for _, c := range p.sev {
		all = append(all, c)
	}
	for _, c := range all {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

func (p palette) severity(s diag.Severity) *color.Color {
	if c, ok := p.sev[s]; ok {
		return c
	}
	return p.code
}

// Pretty renders diagnostics for humans. Items are printed in bag order, so
// callers usually Sort first. Each diagnostic is
//
//	<path>:<line>:<col>: <SEV> <CODE>: <Message>
//
// followed by the source line with a ^~~~ underline under the span and, if
// enabled, its notes in the same shape.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) {
	p := newPalette(opts.Color)
	for i, d := range bag.Items() {
		if i > 0 {
			fmt.Fprintln(w)
		}
		f := fs.Get(d.Primary.File)
		start, _ := fs.Resolve(d.Primary)
		fmt.Fprintf(w, "%s:%d:%d: %s %s: %s\n",
			formatPath(f, fs, opts.PathMode), start.Line, start.Col,
			p.severity(d.Severity).Sprint(d.Severity.String()),
			p.code.Sprint(d.Code.ID()),
			d.Message)
		if f != nil {
			writeSnippet(w, fs, f, d.Primary, opts, p)
		}
		if !opts.ShowNotes {
			continue
		}
		for _, n := range d.Notes {
			nf := fs.Get(n.Span.File)
			ns, _ := fs.Resolve(n.Span)
			fmt.Fprintf(w, "  %s %s:%d:%d: %s\n",
				p.note.Sprint("note:"), formatPath(nf, fs, opts.PathMode), ns.Line, ns.Col, n.Msg)
			if nf != nil {
				writeSnippet(w, fs, nf, n.Span, PrettyOpts{Width: opts.Width}, p)
			}
		}
	}
}

func writeSnippet(w io.Writer, fs *source.FileSet, f *source.File, sp source.Span, opts PrettyOpts, p palette) {
	start, end := fs.Resolve(sp)
	if start.Line == 0 {
		return
	}
	ctx := uint32(max(opts.Context, 0))
	first := start.Line - min(ctx, start.Line-1)
	last := start.Line + ctx
	gutter := len(fmt.Sprint(last))

	for ln := first; ln <= last; ln++ {
		text := f.GetLine(ln)
		if ln > start.Line && text == "" && ln > uint32(len(f.LineIdx)) {
			break
		}
		if opts.Width > 0 {
			text = runewidth.Truncate(text, int(opts.Width), "…")
		}
		fmt.Fprintf(w, "%s %s\n", p.gut.Sprintf("%*d |", gutter, ln), text)
		if ln != start.Line {
			continue
		}
		endCol := end.Col
		if end.Line != start.Line {
			endCol = uint32(len(text)) + 1
		}
		fmt.Fprintf(w, "%s %s\n", p.gut.Sprintf("%*s |", gutter, ""), underline(text, start.Col, endCol, p))
	}
}

// underline builds the marker row for the byte columns [from, to) of line,
// keeping tabs so the caret lines up with the rendered text.
func underline(line string, from, to uint32, p palette) string {
	if from < 1 {
		from = 1
	}
	lo := min(int(from-1), len(line))
	hi := max(min(int(to-1), len(line)), lo)

	var pad strings.Builder
	for _, r := range line[:lo] {
		if r == '\t' {
			pad.WriteByte('\t')
			continue
		}
		pad.WriteString(strings.Repeat(" ", runewidth.RuneWidth(r)))
	}
	width := runewidth.StringWidth(line[lo:hi])
	marker := "^"
	if width > 1 {
		marker += strings.Repeat("~", width-1)
	}
	return pad.String() + p.caret.Sprint(marker)
}

// Short prints one line per diagnostic without source context.
func Short(w io.Writer, bag *diag.Bag, fs *source.FileSet, mode PathMode) {
	for _, d := range bag.Items() {
		start, _ := fs.Resolve(d.Primary)
		fmt.Fprintf(w, "%s:%d:%d: %s %s: %s\n",
			formatPath(fs.Get(d.Primary.File), fs, mode), start.Line, start.Col,
			d.Severity, d.Code.ID(), d.Message)
	}
}

// Summary prints the "N error(s), M warning(s)" trailer.
func Summary(w io.Writer, bag *diag.Bag) {
	var errs, warns int
	for _, d := range bag.Items() {
		switch d.Severity {
		case diag.SevError:
			errs++
		case diag.SevWarning:
			warns++
		}
	}
	fmt.Fprintf(w, "%d error(s), %d warning(s)\n", errs, warns)
}
