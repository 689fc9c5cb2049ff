// Package memdump renders evaluator memory state as aligned text tables.
// Presentation only: nothing here mutates blocks or pointers.
package memdump

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/andrea010901/interp"
)

// Options control dump rendering.
type Options struct {
	// Color enables ANSI color codes in the output.
	Color bool
}

const (
	ansiReset = "\x1b[0m"
	ansiGreen = "\x1b[32m"
	ansiRed   = "\x1b[31m"
	ansiDim   = "\x1b[2m"
)

func (o Options) paint(code, s string) string {
	if !o.Color {
		return s
	}
	return code + s + ansiReset
}

// Block renders a block's layout and per-subobject state as a table.
func Block(b *interp.Block, opts Options) string {
	var sb strings.Builder

	status := "live"
	if b.IsReclaimed() {
		status = "reclaimed"
	} else if b.IsDead() {
		status = "dead"
	}
	if status == "live" {
		status = opts.paint(ansiGreen, status)
	} else {
		status = opts.paint(ansiRed, status)
	}
	fmt.Fprintf(&sb, "block #%d %s (%s, %d pointers)\n", b.ID(), b.Desc(), status, b.NumPointers())

	subs := b.Subobjects()
	if len(subs) == 0 {
		return sb.String()
	}

	header := []string{"OFFSET", "KIND", "NAME", "TYPE", "INIT", "ACTIVE"}
	rows := make([][]string, 0, len(subs))
	for _, s := range subs {
		name := s.Name
		if s.Index >= 0 {
			name = fmt.Sprintf("[%d]", s.Index)
		}
		name = strings.Repeat("  ", s.Depth) + name

		typ := ""
		if s.IsPrim {
			typ = s.Prim.String()
		} else if s.Desc != nil {
			typ = s.Desc.String()
		}

		init := "-"
		if s.Initialized {
			init = opts.paint(ansiGreen, "yes")
		}
		active := "-"
		if s.Active {
			active = "yes"
		}
		rows = append(rows, []string{
			fmt.Sprintf("%d", s.Base), s.Kind.String(), name, typ, init, active,
		})
	}

	writeTable(&sb, header, rows, opts)
	return sb.String()
}

// Pointer renders a pointer's encoding and the introspection surface the
// evaluator keys diagnostics on.
func Pointer(p *interp.Pointer, opts Options) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "pointer %s\n", p)
	if p.IsZero() {
		return sb.String()
	}

	flag := func(name string, v bool) string {
		if v {
			return name
		}
		return opts.paint(ansiDim, "!"+name)
	}
	flags := []string{
		flag("live", p.IsLive()),
		flag("root", p.IsRoot()),
		flag("field", p.IsField()),
		flag("array-elem", p.IsArrayElement()),
		flag("one-past-end", p.IsOnePastEnd()),
	}
	if !p.IsElementPastEnd() {
		flags = append(flags,
			flag("initialized", p.IsInitialized()),
			flag("active", p.IsActive()),
		)
	}
	fmt.Fprintf(&sb, "  flags: %s\n", strings.Join(flags, " "))
	if !p.IsElementPastEnd() {
		fmt.Fprintf(&sb, "  offset: byte=%d logical=%d index=%d\n",
			p.GetByteOffset(), p.GetOffset(), p.GetIndex())
	}
	fmt.Fprintf(&sb, "  names: %s\n", p.DiagnosticString(nil))
	return sb.String()
}

// writeTable renders rows under a header with columns padded to the
// widest cell. Widths are display widths, not byte counts.
func writeTable(sb *strings.Builder, header []string, rows [][]string, opts Options) {
	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = runewidth.StringWidth(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if w := runewidth.StringWidth(stripANSI(cell)); w > widths[i] {
				widths[i] = w
			}
		}
	}

	writeRow := func(cells []string, dim bool) {
		for i, cell := range cells {
			if i > 0 {
				sb.WriteString("  ")
			}
			pad := widths[i] - runewidth.StringWidth(stripANSI(cell))
			if dim {
				cell = opts.paint(ansiDim, cell)
			}
			sb.WriteString(cell)
			sb.WriteString(strings.Repeat(" ", pad))
		}
		sb.WriteByte('\n')
	}
	writeRow(header, true)
	for _, row := range rows {
		writeRow(row, false)
	}
}

// stripANSI removes color escapes for width computation.
func stripANSI(s string) string {
	for {
		i := strings.Index(s, "\x1b[")
		if i < 0 {
			return s
		}
		j := strings.IndexByte(s[i:], 'm')
		if j < 0 {
			return s
		}
		s = s[:i] + s[i+j+1:]
	}
}
