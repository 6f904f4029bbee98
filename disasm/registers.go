package disasm

import "strconv"

// regName renders register index n (0-31) using the X-register names for a
// 64-bit context (sf) or W-register names for 32-bit. When allowSP is true,
// index 31 renders as the stack pointer; otherwise it renders as the zero
// register, matching the two AArch64 conventions for register 31.
func regName(n uint32, sf, allowSP bool) string {
	if n == 31 {
		if allowSP {
			if sf {
				return "SP"
			}
			return "WSP"
		}
		if sf {
			return "XZR"
		}
		return "WZR"
	}
	if sf {
		return "X" + strconv.Itoa(int(n))
	}
	return "W" + strconv.Itoa(int(n))
}
