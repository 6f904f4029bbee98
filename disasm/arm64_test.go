package disasm

import "testing"

func TestDecodeAArch64_Scenarios(t *testing.T) {
	ctx := DefaultContext()

	t.Run("S1 unconditional branch", func(t *testing.T) {
		inst := DecodeAArch64(0x14000002, 0x1000, ctx)
		if inst.Mnemonic != "B" {
			t.Fatalf("mnemonic = %q, want B", inst.Mnemonic)
		}
		if inst.BranchType != BranchUnconditional {
			t.Fatalf("branch_type = %v, want unconditional", inst.BranchType)
		}
		if !inst.HasBranch || !inst.UpdatesPC {
			t.Fatalf("has_branch/updates_pc not set")
		}
		if inst.BranchTarget != 0x1008 {
			t.Fatalf("branch_target = %#x, want 0x1008", inst.BranchTarget)
		}
	})

	t.Run("S2 branch with link", func(t *testing.T) {
		inst := DecodeAArch64(0x94000003, 0x1000, ctx)
		if inst.Mnemonic != "BL" {
			t.Fatalf("mnemonic = %q, want BL", inst.Mnemonic)
		}
		if inst.BranchType != BranchCall {
			t.Fatalf("branch_type = %v, want call", inst.BranchType)
		}
		if !inst.RegsWritten.Has(RegLR) {
			t.Fatalf("BL did not set bit 30 of regs_written")
		}
		if inst.BranchTarget != 0x100C {
			t.Fatalf("branch_target = %#x, want 0x100C", inst.BranchTarget)
		}
	})

	t.Run("S3 return", func(t *testing.T) {
		inst := DecodeAArch64(0xD65F03C0, 0x4000, ctx)
		if inst.Mnemonic != "RET" {
			t.Fatalf("mnemonic = %q, want RET", inst.Mnemonic)
		}
		if inst.BranchType != BranchReturn || !inst.IsFunctionEnd {
			t.Fatalf("RET did not set branch_type=return/is_function_end")
		}
	})

	t.Run("S4 prologue", func(t *testing.T) {
		inst := DecodeAArch64(0xA9BF7BFD, 0x2000, ctx)
		if inst.Mnemonic != "STP" {
			t.Fatalf("mnemonic = %q, want STP", inst.Mnemonic)
		}
		if !inst.IsFunctionStart {
			t.Fatalf("STP X29,X30,[SP,#-16]! did not mark is_function_start")
		}
	})

	t.Run("S5 nop", func(t *testing.T) {
		inst := DecodeAArch64(0xD503201F, 0x8000, ctx)
		if inst.Mnemonic != "NOP" {
			t.Fatalf("mnemonic = %q, want NOP", inst.Mnemonic)
		}
		if inst.Category != CategorySystem {
			t.Fatalf("category = %v, want system", inst.Category)
		}
		if inst.HasBranch {
			t.Fatalf("NOP must not set has_branch")
		}
	})
}

func TestDecodeAArch64_NeverInvalid(t *testing.T) {
	ctx := DefaultContext()
	words := []uint32{0x14000002, 0x94000003, 0xD65F03C0, 0xA9BF7BFD, 0xD503201F, 0x00000000, 0xFFFFFFFF}
	for _, w := range words {
		inst := DecodeAArch64(w, 0x1000, ctx)
		if !inst.IsValid {
			t.Fatalf("word %#x: is_valid = false", w)
		}
		if inst.Mnemonic == "" {
			t.Fatalf("word %#x: empty mnemonic", w)
		}
	}
}

func TestDecodeAArch64_BranchTargetInvariant(t *testing.T) {
	ctx := DefaultContext()
	inst := DecodeAArch64(0x14000002, 0x1000, ctx)
	if inst.HasBranchTarget && inst.BranchOffset != 0 {
		if inst.BranchTarget != uint32(int64(inst.Address)+int64(inst.BranchOffset)) {
			t.Fatalf("branch_target invariant violated")
		}
	}
}

func TestDecodeAArch64_Determinism(t *testing.T) {
	ctx := DefaultContext()
	a := DecodeAArch64(0x14000002, 0x1000, ctx)
	b := DecodeAArch64(0x14000002, 0x1000, ctx)
	if a.FullDisasm != b.FullDisasm || a.Mnemonic != b.Mnemonic || a.Operands != b.Operands {
		t.Fatalf("decoding the same word/address twice produced different records")
	}
}

func TestDecodeAArch64_CompareFlagsAlwaysNZCV(t *testing.T) {
	ctx := DefaultContext()
	// CMP W0, #1 -> SUBS WZR, W0, #1: sf=0,op=1,S=1,imm12=1,rn=0,rd=31
	word := uint32(0)
	word |= 0 << 31 // sf
	word |= 1 << 30 // op=SUB
	word |= 1 << 29 // S
	word |= 0b10001 << 24
	word |= 1 << 10 // imm12=1
	word |= 0 << 5  // rn=0
	word |= 31      // rd=31 (XZR)
	inst := DecodeAArch64(word, 0x1000, ctx)
	if inst.Mnemonic != "CMP" {
		t.Fatalf("mnemonic = %q, want CMP", inst.Mnemonic)
	}
	if inst.FlagsWritten != FlagsNZCV {
		t.Fatalf("flags_written = %#x, want 0xF", inst.FlagsWritten)
	}
}

func TestDecodeAArch64_UnknownWordFallsBackToWord(t *testing.T) {
	ctx := DefaultContext()
	// A word unlikely to match any recognized family: all reserved top bits.
	inst := DecodeAArch64(0x00000001, 0x1000, ctx)
	if inst.Category != CategoryUnknown {
		t.Fatalf("expected unknown category fallback, got %v (%s)", inst.Category, inst.Mnemonic)
	}
	if inst.Mnemonic != ".word" {
		t.Fatalf("mnemonic = %q, want .word fallback", inst.Mnemonic)
	}
	if !inst.IsValid {
		t.Fatalf("fallback record must still be is_valid")
	}
}

func TestDecodeAArch64_OrrToMovAlias(t *testing.T) {
	ctx := DefaultContext()
	// ORR X2, XZR, X3 -> MOV X2, X3: sf=1,opc=01,N=0,Rm=3,imm6=0,Rn=31,Rd=2
	word := uint32(1<<31) | uint32(0b01<<29) | uint32(0b01010<<24) | uint32(3<<16) | uint32(31<<5) | 2
	inst := DecodeAArch64(word, 0x1000, ctx)
	if inst.Mnemonic != "MOV" {
		t.Fatalf("mnemonic = %q, want MOV alias", inst.Mnemonic)
	}
}
