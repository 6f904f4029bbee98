// Disassembly formatter (component J): renders a decoded instruction
// vector as aligned text. Adapted from the teacher's format.go, which
// laid out assembly source into label/mnemonic/operand/comment columns;
// the column model survives, re-targeted at decoded instructions with an
// optional cross-reference annotation column instead of user comments.
package tools

import (
	"fmt"
	"strings"

	"github.com/machoscope/machoscope/disasm"
)

// FormatStyle selects between the aligned column layout and a compact
// one-field-per-line mode.
type FormatStyle int

const (
	FormatDefault FormatStyle = iota
	FormatCompact
)

// FormatOptions controls the formatter's column layout and whether
// incoming-reference counts are annotated.
type FormatOptions struct {
	Style          FormatStyle
	BytesColumn    int
	MnemonicColumn int
	OperandColumn  int
	AnnotateRefs   bool
}

// DefaultFormatOptions lays instructions out in aligned columns with
// reference annotation enabled.
func DefaultFormatOptions() *FormatOptions {
	return &FormatOptions{
		Style:          FormatDefault,
		BytesColumn:    11,
		MnemonicColumn: 36,
		OperandColumn:  44,
		AnnotateRefs:   true,
	}
}

// CompactFormatOptions renders only each instruction's FullDisasm string,
// one per line, suitable for embedding in the header emitter's companion
// listing or a JSON API response.
func CompactFormatOptions() *FormatOptions {
	return &FormatOptions{Style: FormatCompact}
}

// Formatter renders a decoded instruction vector as text.
type Formatter struct {
	options *FormatOptions
	xref    *XRefIndex
}

// NewFormatter builds a Formatter. A nil xref disables reference
// annotation even if options.AnnotateRefs is set.
func NewFormatter(options *FormatOptions, xref *XRefIndex) *Formatter {
	if options == nil {
		options = DefaultFormatOptions()
	}
	return &Formatter{options: options, xref: xref}
}

// Format renders every instruction in order, one line each.
func (f *Formatter) Format(instructions []disasm.Instruction) string {
	var b strings.Builder
	for _, inst := range instructions {
		f.formatInstruction(&b, inst)
	}
	return b.String()
}

func (f *Formatter) formatInstruction(b *strings.Builder, inst disasm.Instruction) {
	if f.options.Style == FormatCompact {
		b.WriteString(inst.FullDisasm)
		b.WriteString("\n")
		return
	}

	line := strings.Builder{}
	fmt.Fprintf(&line, "%08x:", inst.Address)
	line.WriteString(" ")
	line.WriteString(hexBytes(inst.RawBytes))
	padToColumn(&line, f.options.BytesColumn+len(fmt.Sprintf("%08x: ", inst.Address)))
	line.WriteString(inst.Mnemonic)
	if inst.Operands != "" {
		padToColumn(&line, f.options.MnemonicColumn)
		line.WriteString(inst.Operands)
	}

	if f.options.AnnotateRefs && f.xref != nil {
		if refs := f.xref.ReferencesTo(inst.Address); len(refs) > 0 {
			padToColumn(&line, f.options.OperandColumn)
			fmt.Fprintf(&line, "; %d refs", len(refs))
		}
	}

	b.WriteString(line.String())
	b.WriteString("\n")
}

func hexBytes(raw []byte) string {
	parts := make([]string, len(raw))
	for i, b := range raw {
		parts[i] = fmt.Sprintf("%02x", b)
	}
	return strings.Join(parts, " ")
}

func padToColumn(sb *strings.Builder, column int) {
	if sb.Len() < column {
		sb.WriteString(strings.Repeat(" ", column-sb.Len()))
	} else {
		sb.WriteString(" ")
	}
}

// FormatString is a convenience wrapper around the default column layout
// with no reference annotation, for callers with no XRefIndex handy.
func FormatString(instructions []disasm.Instruction) string {
	return NewFormatter(DefaultFormatOptions(), nil).Format(instructions)
}

// FormatCompactString renders the compact, FullDisasm-only layout.
func FormatCompactString(instructions []disasm.Instruction) string {
	return NewFormatter(CompactFormatOptions(), nil).Format(instructions)
}
