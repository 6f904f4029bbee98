package debugger

import (
	"testing"

	"github.com/machoscope/machoscope/disasm"
)

func sampleInstruction() disasm.Instruction {
	return disasm.Instruction{
		Address:         0x1000,
		Mnemonic:        "BL",
		Operands:        "#0x2000",
		FullDisasm:      "0x1000: BL #0x2000",
		Category:        disasm.CategoryBranch,
		HasBranch:       true,
		BranchType:      disasm.BranchCall,
		IsFunctionStart: true,
	}
}

func TestCompileFilter_EmptyMatchesEverything(t *testing.T) {
	pred, err := CompileFilter("")
	if err != nil {
		t.Fatalf("CompileFilter(\"\") error: %v", err)
	}
	if !pred(sampleInstruction(), 0) {
		t.Fatal("empty filter should match everything")
	}
}

func TestCompileFilter_MnemonicEquality(t *testing.T) {
	pred, err := CompileFilter("mnemonic == BL")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !pred(sampleInstruction(), 0) {
		t.Fatal("expected match on mnemonic == BL")
	}
	inst := sampleInstruction()
	inst.Mnemonic = "NOP"
	if pred(inst, 0) {
		t.Fatal("expected no match for NOP")
	}
}

func TestCompileFilter_AddressRangeAnd(t *testing.T) {
	pred, err := CompileFilter("address >= 0x1000 && address < 0x2000")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !pred(sampleInstruction(), 0) {
		t.Fatal("0x1000 should fall in [0x1000, 0x2000)")
	}
	inst := sampleInstruction()
	inst.Address = 0x3000
	if pred(inst, 0) {
		t.Fatal("0x3000 should not match")
	}
}

func TestCompileFilter_Or(t *testing.T) {
	pred, err := CompileFilter(`mnemonic == NOP || mnemonic == BL`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !pred(sampleInstruction(), 0) {
		t.Fatal("expected BL to match via ||")
	}
}

func TestCompileFilter_Not(t *testing.T) {
	pred, err := CompileFilter("!is_function_start")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pred(sampleInstruction(), 0) {
		t.Fatal("IsFunctionStart=true should fail !is_function_start")
	}
}

func TestCompileFilter_BareBoolField(t *testing.T) {
	pred, err := CompileFilter("is_function_start")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !pred(sampleInstruction(), 0) {
		t.Fatal("bare boolean field should mean == true")
	}
}

func TestCompileFilter_OperandContains(t *testing.T) {
	pred, err := CompileFilter(`operand ~ "2000"`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !pred(sampleInstruction(), 0) {
		t.Fatal("expected substring match on operand")
	}
}

func TestCompileFilter_RefsThreshold(t *testing.T) {
	pred, err := CompileFilter("refs > 1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pred(sampleInstruction(), 1) {
		t.Fatal("refs=1 should not satisfy refs > 1")
	}
	if !pred(sampleInstruction(), 2) {
		t.Fatal("refs=2 should satisfy refs > 1")
	}
}

func TestCompileFilter_Parentheses(t *testing.T) {
	pred, err := CompileFilter("(mnemonic == BL || mnemonic == B) && refs == 0")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !pred(sampleInstruction(), 0) {
		t.Fatal("expected grouped expression to match")
	}
}

func TestCompileFilter_UnknownField(t *testing.T) {
	if _, err := CompileFilter("bogus == 1"); err == nil {
		t.Fatal("expected error for unknown field")
	}
}

func TestCompileFilter_SyntaxError(t *testing.T) {
	if _, err := CompileFilter("mnemonic ==="); err == nil {
		t.Fatal("expected syntax error")
	}
}
