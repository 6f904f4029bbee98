// Package api exposes the Analysis Orchestrator over HTTP: submit a binary
// path, poll or stream a job's progress, and fetch its finished result as
// JSON. Adapted from the teacher's api package, which exposed a live VM
// session over the same mux+session-manager+broadcaster shape; here a
// "session" is a one-shot analysis job instead of a long-lived machine.
package api

import (
	"time"

	"github.com/machoscope/machoscope/loader"
	"github.com/machoscope/machoscope/runtime"
	"github.com/machoscope/machoscope/tools"
	"github.com/machoscope/machoscope/typeinfo"
)

// SubmitJobRequest requests analysis of the Mach-O at Path.
type SubmitJobRequest struct {
	Path     string `json:"path"`
	ForceArch string `json:"forceArch,omitempty"`
}

// SubmitJobResponse is returned immediately on submission; the job runs in
// its own goroutine and is polled or streamed for completion.
type SubmitJobResponse struct {
	JobID     string    `json:"jobId"`
	CreatedAt time.Time `json:"createdAt"`
}

// JobStatusResponse reports a job's current lifecycle state and, once
// complete, its result.
type JobStatusResponse struct {
	JobID     string          `json:"jobId"`
	Path      string          `json:"path"`
	State     string          `json:"state"` // "running", "done", "failed"
	Error     string          `json:"error,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
	Result    *AnalysisResult `json:"result,omitempty"`
}

// AnalysisResult is the JSON projection of a loader.Result.
type AnalysisResult struct {
	Path         string            `json:"path"`
	Architecture string            `json:"architecture"`
	Instructions []InstructionDTO  `json:"instructions"`
	Runtime      RuntimeSummary    `json:"runtime"`
	Types        []TypeDTO         `json:"types"`
	LintIssues   []LintIssueDTO    `json:"lintIssues"`
	HeaderText   string            `json:"headerText"`
}

// InstructionDTO is one decoded instruction.
type InstructionDTO struct {
	Address    uint32 `json:"address"`
	Mnemonic   string `json:"mnemonic"`
	Operands   string `json:"operands"`
	FullDisasm string `json:"disasm"`
	Category   string `json:"category"`
	HasBranch  bool   `json:"hasBranch"`
	BranchType string `json:"branchType,omitempty"`
	Refs       int    `json:"refs"`
}

// RuntimeSummary is the JSON projection of a runtime.Result.
type RuntimeSummary struct {
	Classes      []ClassDTO    `json:"classes"`
	Categories   []CategoryDTO `json:"categories"`
	Protocols    []ProtocolDTO `json:"protocols"`
	UsedFallback bool          `json:"usedFallback"`
}

// ClassDTO is one discovered Objective-C/Swift class.
type ClassDTO struct {
	Name            string   `json:"name"`
	SuperclassName  string   `json:"superclassName"`
	IsSwift         bool     `json:"isSwift"`
	IsMetaclass     bool     `json:"isMetaclass"`
	Ivars           []string `json:"ivars,omitempty"`
	InstanceMethods []string `json:"instanceMethods,omitempty"`
	ClassMethods    []string `json:"classMethods,omitempty"`
}

// CategoryDTO is one discovered category.
type CategoryDTO struct {
	ClassName       string   `json:"className"`
	CategoryName    string   `json:"categoryName"`
	InstanceMethods []string `json:"instanceMethods,omitempty"`
	ClassMethods    []string `json:"classMethods,omitempty"`
}

// ProtocolDTO is one discovered protocol.
type ProtocolDTO struct {
	Name    string   `json:"name"`
	Methods []string `json:"methods,omitempty"`
}

// TypeDTO is one reconstructed type record.
type TypeDTO struct {
	Name       string  `json:"name"`
	Address    uint64  `json:"address"`
	Size       uint32  `json:"size"`
	Category   string  `json:"category"`
	Confidence float64 `json:"confidence"`
}

// LintIssueDTO is one lint finding.
type LintIssueDTO struct {
	Level   string `json:"level"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// ErrorResponse is the JSON error envelope for every non-2xx response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    int    `json:"code,omitempty"`
}

// ToAnalysisResult projects a loader.Result into its JSON DTO.
func ToAnalysisResult(r *loader.Result) *AnalysisResult {
	out := &AnalysisResult{
		Path:         r.Path,
		Architecture: r.Architecture.String(),
		HeaderText:   r.HeaderText,
	}

	out.Instructions = make([]InstructionDTO, len(r.Instructions))
	for i, inst := range r.Instructions {
		refs := 0
		if r.XRef != nil {
			refs = len(r.XRef.ReferencesTo(inst.Address))
		}
		branchType := ""
		if inst.HasBranch {
			branchType = inst.BranchType.String()
		}
		out.Instructions[i] = InstructionDTO{
			Address:    inst.Address,
			Mnemonic:   inst.Mnemonic,
			Operands:   inst.Operands,
			FullDisasm: inst.FullDisasm,
			Category:   inst.Category.String(),
			HasBranch:  inst.HasBranch,
			BranchType: branchType,
			Refs:       refs,
		}
	}

	out.Runtime = toRuntimeSummary(r.Runtime)
	out.Types = toTypeDTOs(r.Types)
	out.LintIssues = toLintIssueDTOs(r.LintIssues)

	return out
}

func toRuntimeSummary(rt runtime.Result) RuntimeSummary {
	summary := RuntimeSummary{UsedFallback: rt.UsedFallback}
	for _, c := range rt.Classes {
		summary.Classes = append(summary.Classes, ClassDTO{
			Name:            c.Name,
			SuperclassName:  c.SuperclassName,
			IsSwift:         c.IsSwift,
			IsMetaclass:     c.IsMetaclass,
			Ivars:           c.Ivars,
			InstanceMethods: c.InstanceMethods,
			ClassMethods:    c.ClassMethods,
		})
	}
	for _, c := range rt.Categories {
		summary.Categories = append(summary.Categories, CategoryDTO{
			ClassName:       c.ClassName,
			CategoryName:    c.CategoryName,
			InstanceMethods: c.InstanceMethods,
			ClassMethods:    c.ClassMethods,
		})
	}
	for _, p := range rt.Protocols {
		summary.Protocols = append(summary.Protocols, ProtocolDTO{Name: p.Name, Methods: p.Methods})
	}
	return summary
}

func toTypeDTOs(types []typeinfo.ReconstructedType) []TypeDTO {
	out := make([]TypeDTO, len(types))
	for i, t := range types {
		out[i] = TypeDTO{
			Name:       t.Name,
			Address:    t.Address,
			Size:       t.Size,
			Category:   t.Category.String(),
			Confidence: t.Confidence,
		}
	}
	return out
}

func toLintIssueDTOs(issues []tools.LintIssue) []LintIssueDTO {
	out := make([]LintIssueDTO, len(issues))
	for i, issue := range issues {
		out[i] = LintIssueDTO{Level: issue.Level.String(), Message: issue.Message, Code: issue.Code}
	}
	return out
}
