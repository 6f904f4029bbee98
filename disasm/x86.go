package disasm

import "fmt"

// legacyPrefixes is the byte set a variable-length x86-64 instruction may be
// preceded by; none of them affect the trivial decoding below beyond being
// consumed so the reported length is still correct.
var legacyPrefixes = map[byte]bool{
	0xF0: true, 0xF2: true, 0xF3: true,
	0x2E: true, 0x36: true, 0x3E: true, 0x26: true, 0x64: true, 0x65: true,
	0x66: true, 0x67: true,
}

// knownOpcodes maps a handful of common single/two-byte opcodes to a
// mnemonic and the number of bytes the instruction occupies beyond the
// opcode byte(s) itself. This is deliberately small: the base spec treats
// x86-64 as a thin, fallback-heavy decoder, not a full ISA implementation.
var knownOpcodes = map[byte]struct {
	mnemonic string
	operands int
}{
	0x55: {"PUSH RBP", 0},
	0x5D: {"POP RBP", 0},
	0xC3: {"RET", 0},
	0xC9: {"LEAVE", 0},
	0x90: {"NOP", 0},
	0xE8: {"CALL", 4},
	0xE9: {"JMP", 4},
	0xEB: {"JMP", 1},
	0xCC: {"INT3", 0},
}

// DecodeX86_64 decodes a single x86-64 instruction starting at code[0],
// returning the populated record. Like the AArch64 decoder, it never
// fails: unrecognized bytes degrade to a single-byte `.byte` record.
func DecodeX86_64(code []byte, addr uint32, ctx *Context) Instruction {
	inst := Instruction{
		Address: addr,
		Arch:    ArchX86_64,
		IsValid: true,
	}
	if len(code) == 0 {
		inst.Mnemonic = ".byte"
		inst.Length = 0
		inst.compose()
		return inst
	}

	offset := 0
	for offset < len(code) && legacyPrefixes[code[offset]] {
		offset++
	}
	if offset >= len(code) {
		offset = len(code) - 1
	}

	opcode := code[offset]
	length := offset + 1

	if known, ok := knownOpcodes[opcode]; ok {
		length += known.operands
		if length > len(code) {
			length = len(code)
		}
		inst.Mnemonic = known.mnemonic
		switch opcode {
		case 0xE8:
			inst.Category = CategoryBranch
			inst.HasBranch = true
			inst.BranchType = BranchCall
			inst.UpdatesPC = true
		case 0xE9, 0xEB:
			inst.Category = CategoryBranch
			inst.HasBranch = true
			inst.BranchType = BranchUnconditional
			inst.UpdatesPC = true
		case 0xC3:
			inst.Category = CategoryBranch
			inst.BranchType = BranchReturn
			inst.IsFunctionEnd = true
		default:
			inst.Category = CategoryDataProcessing
		}
		if inst.HasBranch && length <= len(code) {
			imm := decodeLittleEndianSigned(code[offset+1 : length])
			inst.HasBranchTarget = true
			inst.BranchOffset = imm + int32(length)
			inst.BranchTarget = uint32(int64(addr) + int64(inst.BranchOffset))
			inst.Operands = fmt.Sprintf("%#x", inst.BranchTarget)
		}
	} else {
		inst.Mnemonic = ".byte"
		inst.Operands = fmt.Sprintf("%#02x", opcode)
		inst.Category = CategoryUnknown
	}

	inst.Length = length
	inst.RawBytes = append([]byte(nil), code[:length]...)
	inst.compose()
	return inst
}

func decodeLittleEndianSigned(b []byte) int32 {
	var v uint32
	for i := len(b) - 1; i >= 0; i-- {
		v = (v << 8) | uint32(b[i])
	}
	switch len(b) {
	case 1:
		return signExtend(v, 8)
	case 2:
		return signExtend(v, 16)
	case 4:
		return signExtend(v, 32)
	default:
		return int32(v)
	}
}
