package tools

import (
	"strings"
	"testing"

	"github.com/machoscope/machoscope/disasm"
)

func sample() []disasm.Instruction {
	ctx := disasm.DefaultContext()
	return []disasm.Instruction{
		disasm.DecodeAArch64(0x14000002, 0x1000, ctx),
		disasm.DecodeAArch64(0xD65F03C0, 0x1004, ctx),
	}
}

func TestFormat_DefaultLayoutContainsAddressAndMnemonic(t *testing.T) {
	out := FormatString(sample())
	if !strings.Contains(out, "00001000:") {
		t.Fatalf("missing zero-padded address column: %q", out)
	}
	if !strings.Contains(out, "B") || !strings.Contains(out, "RET") {
		t.Fatalf("missing decoded mnemonics: %q", out)
	}
}

func TestFormat_CompactLayoutIsFullDisasmOnly(t *testing.T) {
	insts := sample()
	out := FormatCompactString(insts)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != len(insts) {
		t.Fatalf("got %d lines, want %d", len(lines), len(insts))
	}
	for i, line := range lines {
		if line != insts[i].FullDisasm {
			t.Fatalf("line %d = %q, want %q", i, line, insts[i].FullDisasm)
		}
	}
}

func TestFormat_AnnotatesIncomingReferences(t *testing.T) {
	ctx := disasm.DefaultContext()
	insts := []disasm.Instruction{
		disasm.DecodeAArch64(0x14000002, 0x1000, ctx), // B -> 0x1008
		disasm.DecodeAArch64(0xD503201F, 0x1004, ctx), // NOP
		disasm.DecodeAArch64(0xD65F03C0, 0x1008, ctx), // RET, the branch target
	}
	idx := BuildXRefIndex(insts)
	out := NewFormatter(DefaultFormatOptions(), idx).Format(insts)
	if !strings.Contains(out, "; 1 refs") {
		t.Fatalf("expected a 1-ref annotation on the branch target, got: %q", out)
	}
}
