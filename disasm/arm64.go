package disasm

import "fmt"

// DecodeAArch64 decodes a single 32-bit AArch64 instruction word at the
// given virtual address. It never fails: an unrecognized word degrades to
// a `.word` record with Category == CategoryUnknown.
func DecodeAArch64(word uint32, addr uint32, ctx *Context) Instruction {
	inst := Instruction{
		Address:  addr,
		Arch:     ArchAArch64,
		RawBytes: []byte{byte(word), byte(word >> 8), byte(word >> 16), byte(word >> 24)},
		Length:   4,
		IsValid:  true,
	}

	switch {
	case decodeUnconditionalBranchImm(word, &inst):
	case decodePCRelAddr(word, &inst):
	case decodeUnconditionalBranchReg(word, &inst):
	case decodeLoadStorePair(word, &inst):
	case decodeAddSubImmediate(word, &inst):
	case decodeMoveWideImmediate(word, &inst):
	case decodeConditionalBranch(word, &inst):
	case decodeCompareBranch(word, &inst):
	case decodeTestBranch(word, &inst):
	case decodeLoadStoreUnsignedOrLiteral(word, &inst):
	case decodeLoadStoreUnscaled(word, &inst):
	case decodeLogicalShiftedReg(word, &inst):
	case decodeBitfield(word, &inst):
	case decodeDataProcessing3Source(word, &inst):
	case decodeDataProcessing2Source(word, &inst):
	case decodeAddSubShiftedReg(word, &inst):
	case decodeConditionalCompare(word, &inst):
	case decodeSystem(word, &inst):
	case decodeFMOV(word, &inst):
	default:
		inst.Category = CategoryUnknown
		inst.Mnemonic = ".word"
		inst.Operands = fmt.Sprintf("%#010x", word)
	}

	inst.compose()
	applyHeuristics(&inst, ctx)
	return inst
}

// --- Unconditional branch (immediate): B, BL ---

func decodeUnconditionalBranchImm(word uint32, inst *Instruction) bool {
	if extract(word, 30, 26) != 0b00101 {
		return false
	}
	isBL := bit(word, 31) == 1
	imm26 := extract(word, 25, 0)
	offset := signExtend(imm26, 26) << 2

	inst.Category = CategoryBranch
	inst.HasBranch = true
	inst.HasBranchTarget = true
	inst.BranchOffset = offset
	inst.BranchTarget = uint32(int64(inst.Address) + int64(offset))
	inst.UpdatesPC = true
	inst.Operands = fmt.Sprintf("%#x", inst.BranchTarget)

	if isBL {
		inst.Mnemonic = "BL"
		inst.BranchType = BranchCall
		inst.RegsWritten = inst.RegsWritten.Set(RegLR)
	} else {
		inst.Mnemonic = "B"
		inst.BranchType = BranchUnconditional
	}
	return true
}

// --- PC-relative addressing: ADR, ADRP ---

func decodePCRelAddr(word uint32, inst *Instruction) bool {
	if extract(word, 28, 24) != 0b10000 {
		return false
	}
	isADRP := bit(word, 31) == 1
	immlo := extract(word, 30, 29)
	immhi := extract(word, 23, 5)
	rd := extract(word, 4, 0)
	imm := signExtend((immhi<<2)|immlo, 21)

	inst.Category = CategoryDataProcessing
	inst.RegsWritten = inst.RegsWritten.Set(uint8(rd))
	inst.HasBranchTarget = true

	if isADRP {
		inst.Mnemonic = "ADRP"
		base := inst.Address &^ 0xFFF
		inst.BranchTarget = uint32(int64(base) + int64(imm)<<12)
	} else {
		inst.Mnemonic = "ADR"
		inst.BranchTarget = uint32(int64(inst.Address) + int64(imm))
	}
	inst.Operands = fmt.Sprintf("%s, %#x", regName(rd, true, false), inst.BranchTarget)
	return true
}

// --- Unconditional branch (register): BR, BLR, RET ---

func decodeUnconditionalBranchReg(word uint32, inst *Instruction) bool {
	if extract(word, 31, 25) != 0b1101011 || extract(word, 20, 16) != 0b11111 ||
		extract(word, 15, 10) != 0 || extract(word, 4, 0) != 0 {
		return false
	}
	opc := extract(word, 24, 21)
	rn := extract(word, 9, 5)

	inst.Category = CategoryBranch
	inst.HasBranch = true
	inst.UpdatesPC = true
	inst.RegsRead = inst.RegsRead.Set(uint8(rn))
	inst.Operands = regName(rn, true, false)

	switch opc {
	case 0b0000:
		inst.Mnemonic = "BR"
		inst.BranchType = BranchUnconditional
	case 0b0001:
		inst.Mnemonic = "BLR"
		inst.BranchType = BranchCall
		inst.RegsWritten = inst.RegsWritten.Set(RegLR)
	case 0b0010:
		inst.Mnemonic = "RET"
		inst.BranchType = BranchReturn
		inst.IsFunctionEnd = true
		if rn == 30 {
			inst.Operands = "X30"
		}
	default:
		return false
	}
	return true
}

// --- Load/store pair: LDP, STP ---

func decodeLoadStorePair(word uint32, inst *Instruction) bool {
	if extract(word, 29, 27) != 0b101 || bit(word, 26) != 0 {
		return false
	}
	opc := extract(word, 31, 30)
	if opc == 0b01 {
		return false // LDPSW/STGP (opc=01) are not decoded; the word falls through to .word
	}
	indexKind := extract(word, 25, 23)
	if indexKind != 0b001 && indexKind != 0b010 && indexKind != 0b011 {
		return false
	}
	isLoad := bit(word, 22) == 1
	sf := opc == 0b10
	imm7 := extract(word, 21, 15)
	scale := 4
	if sf {
		scale = 8
	}
	imm := signExtend(imm7, 7) * int32(scale)
	rt2 := extract(word, 14, 10)
	rn := extract(word, 9, 5)
	rt := extract(word, 4, 0)

	inst.Category = CategoryLoadStore
	inst.RegsRead = inst.RegsRead.Set(uint8(rn))

	var suffix string
	switch indexKind {
	case 0b001:
		suffix = "]"
		if imm != 0 {
			suffix = fmt.Sprintf("], #%d", imm)
		} else {
			suffix = "]"
		}
		inst.Operands = fmt.Sprintf("%s, %s, [%s%s", regName(rt, sf, false), regName(rt2, sf, false), regName(rn, sf, true), suffix)
	case 0b011:
		inst.Operands = fmt.Sprintf("%s, %s, [%s, #%d]!", regName(rt, sf, false), regName(rt2, sf, false), regName(rn, sf, true), imm)
	default: // 0b010 signed offset, no writeback
		if imm != 0 {
			inst.Operands = fmt.Sprintf("%s, %s, [%s, #%d]", regName(rt, sf, false), regName(rt2, sf, false), regName(rn, sf, true), imm)
		} else {
			inst.Operands = fmt.Sprintf("%s, %s, [%s]", regName(rt, sf, false), regName(rt2, sf, false), regName(rn, sf, true))
		}
	}

	if isLoad {
		inst.Mnemonic = "LDP"
		inst.RegsWritten = inst.RegsWritten.Set(uint8(rt)).Set(uint8(rt2))
	} else {
		inst.Mnemonic = "STP"
		inst.RegsRead = inst.RegsRead.Set(uint8(rt)).Set(uint8(rt2))
	}
	if indexKind != 0b010 {
		inst.RegsWritten = inst.RegsWritten.Set(uint8(rn))
	}
	return true
}

// --- Add/sub immediate ---

func decodeAddSubImmediate(word uint32, inst *Instruction) bool {
	if extract(word, 28, 24) != 0b10001 {
		return false
	}
	sf := bit(word, 31) == 1
	isSub := bit(word, 30) == 1
	setFlags := bit(word, 29) == 1
	shift := extract(word, 23, 22)
	imm12 := extract(word, 21, 10)
	rn := extract(word, 9, 5)
	rd := extract(word, 4, 0)

	imm := imm12
	if shift == 0b01 {
		imm <<= 12
	}

	inst.Category = CategoryDataProcessing
	inst.RegsRead = inst.RegsRead.Set(uint8(rn))

	mnemonic := "ADD"
	if isSub {
		mnemonic = "SUB"
	}
	if setFlags {
		inst.FlagsWritten = FlagsNZCV
		if rd == 31 {
			if isSub {
				mnemonic = "CMP"
			} else {
				mnemonic = "CMN"
			}
			inst.Mnemonic = mnemonic
			inst.Operands = fmt.Sprintf("%s, #%d", regName(rn, sf, true), imm)
			return true
		}
		mnemonic += "S"
	}
	inst.Mnemonic = mnemonic
	inst.RegsWritten = inst.RegsWritten.Set(uint8(rd))
	inst.Operands = fmt.Sprintf("%s, %s, #%d", regName(rd, sf, true), regName(rn, sf, true), imm)
	return true
}

// --- Move wide immediate: MOVZ, MOVN, MOVK ---

func decodeMoveWideImmediate(word uint32, inst *Instruction) bool {
	if extract(word, 28, 23) != 0b100101 {
		return false
	}
	sf := bit(word, 31) == 1
	opc := extract(word, 30, 29)
	if opc == 0b01 {
		return false
	}
	hw := extract(word, 22, 21)
	imm16 := extract(word, 20, 5)
	rd := extract(word, 4, 0)
	shift := hw * 16

	inst.Category = CategoryDataProcessing
	inst.RegsWritten = inst.RegsWritten.Set(uint8(rd))

	switch opc {
	case 0b00:
		inst.Mnemonic = "MOVN"
	case 0b10:
		inst.Mnemonic = "MOVZ"
	case 0b11:
		inst.Mnemonic = "MOVK"
		inst.RegsRead = inst.RegsRead.Set(uint8(rd))
	}
	if shift != 0 {
		inst.Operands = fmt.Sprintf("%s, #%#x, LSL #%d", regName(rd, sf, false), imm16, shift)
	} else {
		inst.Operands = fmt.Sprintf("%s, #%#x", regName(rd, sf, false), imm16)
	}
	return true
}

// --- Conditional branch: B.cond ---

func decodeConditionalBranch(word uint32, inst *Instruction) bool {
	if extract(word, 31, 24) != 0b01010100 || bit(word, 4) != 0 {
		return false
	}
	imm19 := extract(word, 23, 5)
	cond := Cond(extract(word, 3, 0))
	offset := signExtend(imm19, 19) << 2

	inst.Category = CategoryBranch
	inst.HasBranch = true
	inst.HasBranchTarget = true
	inst.BranchType = BranchConditional
	inst.UpdatesPC = true
	inst.BranchOffset = offset
	inst.BranchTarget = uint32(int64(inst.Address) + int64(offset))
	inst.Mnemonic = "B." + cond.String()
	inst.Operands = fmt.Sprintf("%#x", inst.BranchTarget)
	return true
}

// --- Compare and branch: CBZ, CBNZ ---

func decodeCompareBranch(word uint32, inst *Instruction) bool {
	if extract(word, 30, 25) != 0b011010 {
		return false
	}
	sf := bit(word, 31) == 1
	isNZ := bit(word, 24) == 1
	imm19 := extract(word, 23, 5)
	rt := extract(word, 4, 0)
	offset := signExtend(imm19, 19) << 2

	inst.Category = CategoryBranch
	inst.HasBranch = true
	inst.HasBranchTarget = true
	inst.BranchType = BranchConditional
	inst.UpdatesPC = true
	inst.BranchOffset = offset
	inst.BranchTarget = uint32(int64(inst.Address) + int64(offset))
	inst.RegsRead = inst.RegsRead.Set(uint8(rt))

	if isNZ {
		inst.Mnemonic = "CBNZ"
	} else {
		inst.Mnemonic = "CBZ"
	}
	inst.Operands = fmt.Sprintf("%s, %#x", regName(rt, sf, false), inst.BranchTarget)
	return true
}

// --- Test and branch: TBZ, TBNZ ---

func decodeTestBranch(word uint32, inst *Instruction) bool {
	if extract(word, 30, 25) != 0b011011 {
		return false
	}
	b5 := bit(word, 31)
	isNZ := bit(word, 24) == 1
	b40 := extract(word, 23, 19)
	imm14 := extract(word, 18, 5)
	rt := extract(word, 4, 0)
	bitPos := (b5 << 5) | b40
	offset := signExtend(imm14, 14) << 2

	inst.Category = CategoryBranch
	inst.HasBranch = true
	inst.HasBranchTarget = true
	inst.BranchType = BranchConditional
	inst.UpdatesPC = true
	inst.BranchOffset = offset
	inst.BranchTarget = uint32(int64(inst.Address) + int64(offset))
	inst.RegsRead = inst.RegsRead.Set(uint8(rt))

	if isNZ {
		inst.Mnemonic = "TBNZ"
	} else {
		inst.Mnemonic = "TBZ"
	}
	inst.Operands = fmt.Sprintf("%s, #%d, %#x", regName(rt, b5 == 1, false), bitPos, inst.BranchTarget)
	return true
}

// --- Load/store register (unsigned immediate), plus the literal (PC-relative) form ---

func decodeLoadStoreUnsignedOrLiteral(word uint32, inst *Instruction) bool {
	if extract(word, 29, 27) == 0b011 && bit(word, 26) == 0 && extract(word, 25, 24) == 0b00 {
		return decodeLoadLiteral(word, inst)
	}
	if extract(word, 29, 27) != 0b111 || bit(word, 26) != 0 || extract(word, 25, 24) != 0b01 {
		return false
	}
	size := extract(word, 31, 30)
	opc := extract(word, 23, 22)
	if opc > 0b01 {
		return false // signed-load variants not modeled
	}
	isLoad := opc == 0b01
	imm12 := extract(word, 21, 10)
	rn := extract(word, 9, 5)
	rt := extract(word, 4, 0)

	scale := uint32(1) << size
	offset := imm12 * scale
	sf := size == 0b11

	inst.Category = CategoryLoadStore
	inst.RegsRead = inst.RegsRead.Set(uint8(rn))
	if offset != 0 {
		inst.Operands = fmt.Sprintf("%s, [%s, #%d]", regName(rt, sf, false), regName(rn, true, true), offset)
	} else {
		inst.Operands = fmt.Sprintf("%s, [%s]", regName(rt, sf, false), regName(rn, true, true))
	}

	if isLoad {
		inst.Mnemonic = "LDR"
		inst.RegsWritten = inst.RegsWritten.Set(uint8(rt))
	} else {
		inst.Mnemonic = "STR"
		inst.RegsRead = inst.RegsRead.Set(uint8(rt))
	}
	return true
}

func decodeLoadLiteral(word uint32, inst *Instruction) bool {
	opc := extract(word, 31, 30)
	if opc == 0b11 {
		return false // PRFM literal, not modeled
	}
	imm19 := extract(word, 23, 5)
	rt := extract(word, 4, 0)
	offset := signExtend(imm19, 19) << 2
	target := uint32(int64(inst.Address) + int64(offset))

	inst.Category = CategoryLoadStore
	inst.Mnemonic = "LDR"
	inst.HasBranchTarget = true
	inst.BranchTarget = target
	inst.RegsWritten = inst.RegsWritten.Set(uint8(rt))
	inst.Operands = fmt.Sprintf("%s, %#x", regName(rt, opc != 0b00, false), target)
	return true
}

// --- Load/store unscaled immediate: LDUR, STUR ---

func decodeLoadStoreUnscaled(word uint32, inst *Instruction) bool {
	if extract(word, 29, 27) != 0b111 || bit(word, 26) != 0 ||
		extract(word, 25, 24) != 0b00 || extract(word, 11, 10) != 0b00 {
		return false
	}
	size := extract(word, 31, 30)
	opc := extract(word, 23, 22)
	if opc > 0b01 {
		return false
	}
	isLoad := opc == 0b01
	imm9 := extract(word, 20, 12)
	rn := extract(word, 9, 5)
	rt := extract(word, 4, 0)
	offset := signExtend(imm9, 9)
	sf := size == 0b11

	inst.Category = CategoryLoadStore
	inst.RegsRead = inst.RegsRead.Set(uint8(rn))
	if offset != 0 {
		inst.Operands = fmt.Sprintf("%s, [%s, #%d]", regName(rt, sf, false), regName(rn, true, true), offset)
	} else {
		inst.Operands = fmt.Sprintf("%s, [%s]", regName(rt, sf, false), regName(rn, true, true))
	}

	if isLoad {
		inst.Mnemonic = "LDUR"
		inst.RegsWritten = inst.RegsWritten.Set(uint8(rt))
	} else {
		inst.Mnemonic = "STUR"
		inst.RegsRead = inst.RegsRead.Set(uint8(rt))
	}
	return true
}

// --- Logical shifted register: AND, ORR, EOR, ANDS (+ BIC/ORN/EON/BICS), and the ORR->MOV alias ---

func decodeLogicalShiftedReg(word uint32, inst *Instruction) bool {
	if extract(word, 28, 24) != 0b01010 {
		return false
	}
	sf := bit(word, 31) == 1
	opc := extract(word, 30, 29)
	negated := bit(word, 21) == 1
	rm := extract(word, 20, 16)
	imm6 := extract(word, 15, 10)
	rn := extract(word, 9, 5)
	rd := extract(word, 4, 0)

	inst.Category = CategoryDataProcessing
	inst.RegsRead = inst.RegsRead.Set(uint8(rm))
	inst.RegsWritten = inst.RegsWritten.Set(uint8(rd))

	// Alias: ORR Xd, XZR, Xm (no shift) -> MOV Xd, Xm.
	if opc == 0b01 && !negated && rn == 31 && imm6 == 0 {
		inst.Mnemonic = "MOV"
		inst.Operands = fmt.Sprintf("%s, %s", regName(rd, sf, false), regName(rm, sf, false))
		return true
	}

	inst.RegsRead = inst.RegsRead.Set(uint8(rn))
	names := [4]string{"AND", "ORR", "EOR", "ANDS"}
	negNames := [4]string{"BIC", "ORN", "EON", "BICS"}
	mnemonic := names[opc]
	if negated {
		mnemonic = negNames[opc]
	}
	inst.Mnemonic = mnemonic
	if opc == 0b11 {
		inst.FlagsWritten = FlagsNZCV
	}
	if imm6 != 0 {
		inst.Operands = fmt.Sprintf("%s, %s, %s, LSL #%d", regName(rd, sf, false), regName(rn, sf, false), regName(rm, sf, false), imm6)
	} else {
		inst.Operands = fmt.Sprintf("%s, %s, %s", regName(rd, sf, false), regName(rn, sf, false), regName(rm, sf, false))
	}
	return true
}

// --- Bitfield: SBFM, BFM, UBFM ---

func decodeBitfield(word uint32, inst *Instruction) bool {
	if extract(word, 28, 23) != 0b100110 {
		return false
	}
	sf := bit(word, 31) == 1
	opc := extract(word, 30, 29)
	if opc == 0b11 {
		return false
	}
	immr := extract(word, 21, 16)
	imms := extract(word, 15, 10)
	rn := extract(word, 9, 5)
	rd := extract(word, 4, 0)

	inst.Category = CategoryDataProcessing
	inst.RegsRead = inst.RegsRead.Set(uint8(rn))
	inst.RegsWritten = inst.RegsWritten.Set(uint8(rd))
	if opc == 0b01 {
		inst.RegsRead = inst.RegsRead.Set(uint8(rd))
	}

	names := map[uint32]string{0b00: "SBFM", 0b01: "BFM", 0b10: "UBFM"}
	inst.Mnemonic = names[opc]
	inst.Operands = fmt.Sprintf("%s, %s, #%d, #%d", regName(rd, sf, false), regName(rn, sf, false), immr, imms)
	return true
}

// --- Data-processing (3 source): MADD, MSUB, the MUL alias, SMADDL, SMSUBL, SMULH.
// UMADDL, UMSUBL, UMULH and the SMULL/UMULL aliases are not decoded. ---

func decodeDataProcessing3Source(word uint32, inst *Instruction) bool {
	if extract(word, 28, 24) != 0b11011 {
		return false
	}
	sf := bit(word, 31) == 1
	op31 := extract(word, 23, 21)
	o0 := bit(word, 15)
	rm := extract(word, 20, 16)
	ra := extract(word, 14, 10)
	rn := extract(word, 9, 5)
	rd := extract(word, 4, 0)

	inst.Category = CategoryDataProcessing
	inst.RegsRead = inst.RegsRead.Set(uint8(rm)).Set(uint8(rn))
	inst.RegsWritten = inst.RegsWritten.Set(uint8(rd))

	switch op31 {
	case 0b000:
		if ra == 31 && o0 == 0 {
			inst.Mnemonic = "MUL"
			inst.Operands = fmt.Sprintf("%s, %s, %s", regName(rd, sf, false), regName(rn, sf, false), regName(rm, sf, false))
			return true
		}
		if o0 == 0 {
			inst.Mnemonic = "MADD"
		} else {
			inst.Mnemonic = "MSUB"
		}
		inst.RegsRead = inst.RegsRead.Set(uint8(ra))
		inst.Operands = fmt.Sprintf("%s, %s, %s, %s", regName(rd, sf, false), regName(rn, sf, false), regName(rm, sf, false), regName(ra, sf, false))
		return true
	case 0b010:
		inst.Mnemonic = "SMULH"
		inst.Operands = fmt.Sprintf("%s, %s, %s", regName(rd, true, false), regName(rn, true, false), regName(rm, true, false))
		return true
	case 0b001:
		if o0 == 0 {
			inst.Mnemonic = "SMADDL"
		} else {
			inst.Mnemonic = "SMSUBL"
		}
		inst.RegsRead = inst.RegsRead.Set(uint8(ra))
		inst.Operands = fmt.Sprintf("%s, %s, %s, %s", regName(rd, true, false), regName(rn, false, false), regName(rm, false, false), regName(ra, true, false))
		return true
	default:
		return false
	}
}

// --- Data-processing (2 source): LSLV, LSRV, ASRV, RORV, UDIV, SDIV ---

func decodeDataProcessing2Source(word uint32, inst *Instruction) bool {
	if extract(word, 30, 21) != 0b0011010110 {
		return false
	}
	sf := bit(word, 31) == 1
	rm := extract(word, 20, 16)
	opcode := extract(word, 15, 10)
	rn := extract(word, 9, 5)
	rd := extract(word, 4, 0)

	names := map[uint32]string{
		0b000010: "UDIV",
		0b000011: "SDIV",
		0b001000: "LSLV",
		0b001001: "LSRV",
		0b001010: "ASRV",
		0b001011: "RORV",
	}
	mnemonic, ok := names[opcode]
	if !ok {
		return false
	}

	inst.Category = CategoryDataProcessing
	inst.Mnemonic = mnemonic
	inst.RegsRead = inst.RegsRead.Set(uint8(rn)).Set(uint8(rm))
	inst.RegsWritten = inst.RegsWritten.Set(uint8(rd))
	inst.Operands = fmt.Sprintf("%s, %s, %s", regName(rd, sf, false), regName(rn, sf, false), regName(rm, sf, false))
	return true
}

// --- Add/sub shifted register, plus the CMP/CMN alias when Rd == XZR ---

func decodeAddSubShiftedReg(word uint32, inst *Instruction) bool {
	if extract(word, 28, 24) != 0b01011 || bit(word, 21) != 0 {
		return false
	}
	sf := bit(word, 31) == 1
	isSub := bit(word, 30) == 1
	setFlags := bit(word, 29) == 1
	shiftType := extract(word, 23, 22)
	rm := extract(word, 20, 16)
	imm6 := extract(word, 15, 10)
	rn := extract(word, 9, 5)
	rd := extract(word, 4, 0)

	inst.Category = CategoryDataProcessing
	inst.RegsRead = inst.RegsRead.Set(uint8(rn)).Set(uint8(rm))

	shiftNames := [4]string{"LSL", "LSR", "ASR", "RSVD"}
	var shiftSuffix string
	if imm6 != 0 {
		shiftSuffix = fmt.Sprintf(", %s #%d", shiftNames[shiftType], imm6)
	}

	if setFlags {
		inst.FlagsWritten = FlagsNZCV
		if rd == 31 {
			mnemonic := "CMN"
			if isSub {
				mnemonic = "CMP"
			}
			inst.Mnemonic = mnemonic
			inst.Operands = fmt.Sprintf("%s, %s%s", regName(rn, sf, true), regName(rm, sf, false), shiftSuffix)
			return true
		}
	}

	mnemonic := "ADD"
	if isSub {
		mnemonic = "SUB"
	}
	if setFlags {
		mnemonic += "S"
	}
	inst.Mnemonic = mnemonic
	inst.RegsWritten = inst.RegsWritten.Set(uint8(rd))
	inst.Operands = fmt.Sprintf("%s, %s, %s%s", regName(rd, sf, false), regName(rn, sf, false), regName(rm, sf, false), shiftSuffix)
	return true
}

// --- Conditional compare: CCMP, CCMN (register and immediate operand forms) ---

func decodeConditionalCompare(word uint32, inst *Instruction) bool {
	if extract(word, 29, 21) != 0b111010010 || bit(word, 10) != 0 || bit(word, 4) != 0 {
		return false
	}
	sf := bit(word, 31) == 1
	isCCMP := bit(word, 30) == 1
	isImm := bit(word, 11) == 1
	rn := extract(word, 9, 5)
	cond := Cond(extract(word, 15, 12))
	nzcv := extract(word, 3, 0)

	inst.Category = CategoryDataProcessing
	inst.FlagsWritten = FlagsNZCV
	inst.RegsRead = inst.RegsRead.Set(uint8(rn))

	if isCCMP {
		inst.Mnemonic = "CCMP"
	} else {
		inst.Mnemonic = "CCMN"
	}

	var operand string
	if isImm {
		imm5 := extract(word, 20, 16)
		operand = fmt.Sprintf("#%d", imm5)
	} else {
		rm := extract(word, 20, 16)
		inst.RegsRead = inst.RegsRead.Set(uint8(rm))
		operand = regName(rm, sf, false)
	}
	inst.Operands = fmt.Sprintf("%s, %s, #%#x, %s", regName(rn, sf, true), operand, nzcv, cond)
	return true
}

// --- System: NOP/HINT, barriers DSB/DMB/ISB, MRS/MSR ---

func decodeSystem(word uint32, inst *Instruction) bool {
	if extract(word, 31, 22) != 0b1101010100 {
		return false
	}
	inst.Category = CategorySystem

	// Hint space: op0=000, op1=011, CRn=0010.
	if extract(word, 21, 19) == 0b000 && extract(word, 18, 16) == 0b011 &&
		extract(word, 15, 12) == 0b0010 && extract(word, 4, 0) == 0b11111 {
		op2 := extract(word, 7, 5)
		names := map[uint32]string{0: "NOP", 1: "YIELD", 2: "WFE", 3: "WFI", 4: "SEV", 5: "SEVL"}
		mnemonic, ok := names[op2]
		if !ok {
			mnemonic = "HINT"
			inst.Operands = fmt.Sprintf("#%d", op2)
		}
		inst.Mnemonic = mnemonic
		return true
	}

	// Barriers: op0=000, op1=011, CRn=0011.
	if extract(word, 21, 19) == 0b000 && extract(word, 18, 16) == 0b011 &&
		extract(word, 15, 12) == 0b0011 && extract(word, 4, 0) == 0b11111 {
		crm := extract(word, 11, 8)
		opc := extract(word, 7, 5)
		switch opc {
		case 0b110:
			inst.Mnemonic = "ISB"
		case 0b101:
			inst.Mnemonic = "DMB"
			inst.Operands = fmt.Sprintf("#%d", crm)
		case 0b100:
			inst.Mnemonic = "DSB"
			inst.Operands = fmt.Sprintf("#%d", crm)
		default:
			return false
		}
		return true
	}

	// MRS (L=1) / MSR (L=0) to/from a system register.
	if bit(word, 20) == 1 {
		l := bit(word, 21)
		op0 := 2 + bit(word, 19)
		op1 := extract(word, 18, 16)
		crn := extract(word, 15, 12)
		crm := extract(word, 11, 8)
		op2 := extract(word, 7, 5)
		rt := extract(word, 4, 0)
		sysreg := fmt.Sprintf("S%d_%d_c%d_c%d_%d", op0, op1, crn, crm, op2)
		if l == 1 {
			inst.Mnemonic = "MRS"
			inst.RegsWritten = inst.RegsWritten.Set(uint8(rt))
			inst.Operands = fmt.Sprintf("%s, %s", regName(rt, true, false), sysreg)
		} else {
			inst.Mnemonic = "MSR"
			inst.RegsRead = inst.RegsRead.Set(uint8(rt))
			inst.Operands = fmt.Sprintf("%s, %s", sysreg, regName(rt, true, false))
		}
		return true
	}

	return false
}

// --- FMOV (register, scalar SIMD&FP to/from general, simplified) ---

func decodeFMOV(word uint32, inst *Instruction) bool {
	if extract(word, 31, 24) != 0b00011110 || extract(word, 14, 10) != 0b10000 {
		return false
	}
	isGPtoFP := bit(word, 16) == 1
	rn := extract(word, 9, 5)
	rd := extract(word, 4, 0)

	inst.Category = CategorySIMD
	inst.Mnemonic = "FMOV"
	if isGPtoFP {
		inst.RegsRead = inst.RegsRead.Set(uint8(rn))
		inst.Operands = fmt.Sprintf("D%d, %s", rd, regName(rn, true, false))
	} else {
		inst.RegsWritten = inst.RegsWritten.Set(uint8(rd))
		inst.Operands = fmt.Sprintf("%s, D%d", regName(rd, true, false), rn)
	}
	return true
}
