package disasm

// Cond is an AArch64 4-bit condition code, as used by B.cond and CCMP/CCMN.
type Cond uint8

const (
	CondEQ Cond = iota // 0000 Equal (Z==1)
	CondNE             // 0001 Not equal (Z==0)
	CondCS             // 0010 Carry set / HS
	CondCC             // 0011 Carry clear / LO
	CondMI             // 0100 Negative
	CondPL             // 0101 Positive or zero
	CondVS             // 0110 Overflow set
	CondVC             // 0111 Overflow clear
	CondHI             // 1000 Unsigned higher
	CondLS             // 1001 Unsigned lower or same
	CondGE             // 1010 Signed >=
	CondLT             // 1011 Signed <
	CondGT             // 1100 Signed >
	CondLE             // 1101 Signed <=
	CondAL             // 1110 Always
	CondNV             // 1111 Always (reserved alias of AL)
)

func (c Cond) String() string {
	names := [...]string{
		"EQ", "NE", "CS", "CC", "MI", "PL", "VS", "VC",
		"HI", "LS", "GE", "LT", "GT", "LE", "AL", "NV",
	}
	if int(c) < len(names) {
		return names[c]
	}
	return "??"
}
