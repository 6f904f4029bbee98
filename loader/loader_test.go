package loader

import (
	"testing"

	"github.com/machoscope/machoscope/disasm"
	"github.com/machoscope/machoscope/macho"
)

func TestArchFromConfig(t *testing.T) {
	cases := map[string]macho.Arch{
		"arm64":  macho.ArchAArch64,
		"x86_64": macho.ArchX86_64,
		"":       macho.ArchUnknown,
		"bogus":  macho.ArchUnknown,
	}
	for in, want := range cases {
		if got := archFromConfig(in); got != want {
			t.Errorf("archFromConfig(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestToDisasmArch(t *testing.T) {
	cases := map[macho.Arch]disasm.Arch{
		macho.ArchAArch64: disasm.ArchAArch64,
		macho.ArchX86_64:  disasm.ArchX86_64,
		macho.ArchUnknown: disasm.ArchUnknown,
	}
	for in, want := range cases {
		if got := toDisasmArch(in); got != want {
			t.Errorf("toDisasmArch(%v) = %v, want %v", in, got, want)
		}
	}
}
