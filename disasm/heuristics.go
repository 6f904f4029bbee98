package disasm

import "strings"

// applyHeuristics marks function boundaries per the AArch64 ABI convention
// of spilling the frame pointer (x29) and link register (x30) as a pair at
// entry and restoring them at exit.
func applyHeuristics(inst *Instruction, ctx *Context) {
	if inst.Mnemonic == "RET" {
		inst.IsFunctionEnd = true
	}

	if !ctx.PrologueEpilogueHeuristics {
		return
	}

	if inst.Mnemonic == "STP" && strings.Contains(inst.Operands, "X29") &&
		strings.Contains(inst.Operands, "X30") && strings.Contains(inst.Operands, "#-") {
		inst.IsFunctionStart = true
	}

	if inst.Mnemonic == "LDP" && strings.Contains(inst.Operands, "X29") &&
		strings.Contains(inst.Operands, "X30") {
		inst.IsFunctionEnd = true
	}
}
