// Binary linter (component K): walks a Mach-O collaborator's output and
// reports structural oddities without ever failing the analysis. Adapted
// from the teacher's lint.go, which checked assembly source for undefined
// labels, unreachable code, and register-usage issues under the same
// report-don't-fail posture kept here.
package tools

import (
	"fmt"

	"github.com/machoscope/machoscope/disasm"
	"github.com/machoscope/machoscope/macho"
)

// LintLevel is the severity of a single finding.
type LintLevel int

const (
	LintWarning LintLevel = iota
	LintInfo
)

func (l LintLevel) String() string {
	switch l {
	case LintWarning:
		return "warning"
	default:
		return "info"
	}
}

// LintIssue is one advisory finding attached to the analysis result.
// Never aborts analysis; it is pure reporting.
type LintIssue struct {
	Level   LintLevel
	Message string
	Code    string
}

func (i LintIssue) String() string {
	return fmt.Sprintf("%s: %s [%s]", i.Level, i.Message, i.Code)
}

// LintMachO reports on: a missing __TEXT,__text section, an unrecognized
// cputype, an empty symbol table, a big-endian image, and an AArch64
// __TEXT,__text section whose size (from the section header) isn't a
// multiple of 4. Never returns an error: the result is always an advisory
// list, possibly empty.
func LintMachO(c *macho.Collaborator) []LintIssue {
	var issues []LintIssue

	if _, ok := c.FindSection("__TEXT", "__text"); !ok {
		issues = append(issues, LintIssue{
			Level:   LintWarning,
			Message: "no __TEXT,__text section found",
			Code:    "MISSING_TEXT_SECTION",
		})
	}

	if c.Architecture() == macho.ArchUnknown {
		issues = append(issues, LintIssue{
			Level:   LintWarning,
			Message: fmt.Sprintf("unrecognized cputype %v", c.CPUType()),
			Code:    "UNKNOWN_CPUTYPE",
		})
	}

	if len(c.Symbols()) == 0 {
		issues = append(issues, LintIssue{
			Level:   LintInfo,
			Message: "symbol table is empty",
			Code:    "EMPTY_SYMTAB",
		})
	}

	if sec, ok := c.FindSection("__TEXT", "__text"); ok && c.Architecture() == macho.ArchAArch64 {
		if sec.Size%4 != 0 {
			issues = append(issues, LintIssue{
				Level:   LintWarning,
				Message: fmt.Sprintf("__TEXT,__text size %d is not a multiple of 4; the final instruction word would be truncated", sec.Size),
				Code:    "TRUNCATED_CODE_SECTION",
			})
		}
	}

	if c.BigEndian() {
		issues = append(issues, LintIssue{
			Level:   LintWarning,
			Message: "image byte order is big-endian; unexpected on any current Apple platform",
			Code:    "UNEXPECTED_BIG_ENDIAN",
		})
	}

	return issues
}

// LintFatMismatch reports the one linter condition that arises before a
// Collaborator even exists: a fat binary with no slice matching the
// caller's requested architecture. Called by the orchestrator when
// macho.Open itself fails with that specific error.
func LintFatMismatch(requested disasm.Arch) LintIssue {
	return LintIssue{
		Level:   LintWarning,
		Message: fmt.Sprintf("fat binary has no slice matching requested architecture %v", requested),
		Code:    "FAT_ARCH_MISMATCH",
	}
}
