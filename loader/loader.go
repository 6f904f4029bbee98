// Package loader is the Analysis Orchestrator (component L): it
// sequences the Mach-O collaborator, the code loader, the per-architecture
// disassembly driver, the runtime scanner, the type-reconstruction API,
// and the cross-reference builder into one immutable Result. Grounded on
// the teacher's loader/loader.go, which did the analogous job of turning
// a parsed program into a live VM — here a parsed binary becomes a static
// analysis result instead of a running machine.
package loader

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/machoscope/machoscope/config"
	"github.com/machoscope/machoscope/disasm"
	"github.com/machoscope/machoscope/header"
	"github.com/machoscope/machoscope/macho"
	"github.com/machoscope/machoscope/runtime"
	"github.com/machoscope/machoscope/tools"
	"github.com/machoscope/machoscope/typeinfo"
)

// Result bundles every engine's output for one analyzed binary. Built by
// exactly one goroutine and never mutated after Analyze returns it; safe
// to read concurrently from many goroutines (the API server's job
// handlers, the interactive explorer) afterward.
type Result struct {
	Path         string
	Architecture disasm.Arch
	Instructions []disasm.Instruction
	Runtime      runtime.Result
	Types        []typeinfo.ReconstructedType
	Sections     []macho.Section
	XRef         *tools.XRefIndex
	LintIssues   []tools.LintIssue
	HeaderText   string
}

// Analyze runs the full G→A→D→E→H→I pipeline over the Mach-O at path.
// Returns an error only when the file cannot be opened as Mach-O at all;
// a fat binary with no slice matching the requested architecture degrades
// to a Result with no instructions and a LintFatMismatch finding instead
// of aborting, matching every other stage's degrade-and-report policy.
func Analyze(ctx context.Context, path string, cfg *config.Config) (*Result, error) {
	wantArch := archFromConfig(cfg.Disassembly.ForceArch)

	collaborator, err := macho.Open(path, wantArch)
	if err != nil {
		var mismatch *macho.ErrNoMatchingSlice
		if errors.As(err, &mismatch) {
			return &Result{
				Path:       path,
				LintIssues: []tools.LintIssue{tools.LintFatMismatch(toDisasmArch(mismatch.Requested))},
			}, nil
		}
		return nil, fmt.Errorf("loader: %w", err)
	}
	defer collaborator.Close()

	result := &Result{
		Path:         path,
		Architecture: toDisasmArch(collaborator.Architecture()),
		Sections:     collaborator.Sections(),
		LintIssues:   tools.LintMachO(collaborator),
	}

	if err := ctx.Err(); err != nil {
		return result, nil
	}

	decodeCtx := &disasm.Context{PrologueEpilogueHeuristics: cfg.Disassembly.PrologueEpilogueHeuristics}
	if section, err := disasm.LoadSection(collaborator, "__TEXT", "__text"); err == nil {
		driver := disasm.NewDriver(result.Architecture, section, decodeCtx)
		driver.Run()
		result.Instructions = driver.Instructions
	}

	if err := ctx.Err(); err != nil {
		return result, nil
	}

	scanBuf, scoped := runtime.BuildScopeBuffer(collaborator)
	if !cfg.Scanner.SectionScoped || !scoped {
		if whole, readErr := os.ReadFile(path); readErr == nil {
			scanBuf = whole
		}
	}
	result.Runtime = runtime.Scan(scanBuf, runtime.Options{
		EnableFallback: cfg.Scanner.EnableFallback,
		SwiftVersion:   collaborator.SwiftVersion(),
	})

	if err := ctx.Err(); err != nil {
		return result, nil
	}

	result.Types = typeinfo.ClassifyAll(toTypeinfoSymbols(collaborator.Symbols()))
	result.XRef = tools.BuildXRefIndex(result.Instructions)
	result.HeaderText = header.Generate(path, result.Runtime)

	return result, nil
}

func archFromConfig(forceArch string) macho.Arch {
	switch forceArch {
	case "arm64":
		return macho.ArchAArch64
	case "x86_64":
		return macho.ArchX86_64
	default:
		return macho.ArchUnknown
	}
}

func toDisasmArch(a macho.Arch) disasm.Arch {
	switch a {
	case macho.ArchAArch64:
		return disasm.ArchAArch64
	case macho.ArchX86_64:
		return disasm.ArchX86_64
	default:
		return disasm.ArchUnknown
	}
}

func toTypeinfoSymbols(syms []macho.Symbol) []typeinfo.Symbol {
	out := make([]typeinfo.Symbol, len(syms))
	for i, s := range syms {
		out[i] = typeinfo.Symbol{Name: s.Name, Address: s.Address}
	}
	return out
}
