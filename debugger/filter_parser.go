package debugger

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/machoscope/machoscope/disasm"
)

// Predicate reports whether an instruction passes a compiled filter
// expression. refs is the number of incoming cross-references resolved by
// the caller (tools.XRefIndex.ReferencesTo), since the filter language has
// no access to the index itself.
type Predicate func(inst disasm.Instruction, refs int) bool

// FilterParser parses a boolean filter expression into a Predicate using
// precedence climbing over ||, && and a unary !, with comparisons as the
// leaves.
type FilterParser struct {
	tokens []FilterToken
	pos    int
}

// NewFilterParser creates a parser over an already-tokenized expression.
func NewFilterParser(tokens []FilterToken) *FilterParser {
	return &FilterParser{tokens: tokens}
}

// CompileFilter lexes and parses expr in one step.
func CompileFilter(expr string) (Predicate, error) {
	if strings.TrimSpace(expr) == "" {
		return func(disasm.Instruction, int) bool { return true }, nil
	}
	tokens, err := NewFilterLexer(expr).TokenizeAll()
	if err != nil {
		return nil, err
	}
	p := NewFilterParser(tokens)
	pred, err := p.Parse()
	if err != nil {
		return nil, fmt.Errorf("filter expression: %w", err)
	}
	return pred, nil
}

func (p *FilterParser) current() FilterToken {
	if p.pos >= len(p.tokens) {
		return FilterToken{Type: FilterTokenEOF}
	}
	return p.tokens[p.pos]
}

func (p *FilterParser) advance() { p.pos++ }

// Parse parses the full expression and checks it consumes every token.
func (p *FilterParser) Parse() (Predicate, error) {
	pred, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if p.current().Type != FilterTokenEOF {
		return nil, fmt.Errorf("unexpected token %q", p.current().Value)
	}
	return pred, nil
}

func (p *FilterParser) parseOr() (Predicate, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.current().Type == FilterTokenOr {
		p.advance()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		l, r := left, right
		left = func(inst disasm.Instruction, refs int) bool { return l(inst, refs) || r(inst, refs) }
	}
	return left, nil
}

func (p *FilterParser) parseAnd() (Predicate, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.current().Type == FilterTokenAnd {
		p.advance()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		l, r := left, right
		left = func(inst disasm.Instruction, refs int) bool { return l(inst, refs) && r(inst, refs) }
	}
	return left, nil
}

func (p *FilterParser) parseUnary() (Predicate, error) {
	if p.current().Type == FilterTokenNot {
		p.advance()
		inner, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return func(inst disasm.Instruction, refs int) bool { return !inner(inst, refs) }, nil
	}
	return p.parsePrimary()
}

func (p *FilterParser) parsePrimary() (Predicate, error) {
	if p.current().Type == FilterTokenLParen {
		p.advance()
		pred, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if p.current().Type != FilterTokenRParen {
			return nil, fmt.Errorf("expected ')', got %q", p.current().Value)
		}
		p.advance()
		return pred, nil
	}
	return p.parseComparison()
}

// boolean field with no operator: "is_function_start" alone means == true.
var boolFields = map[string]bool{
	"is_function_start": true,
	"is_function_end":   true,
	"is_valid":          true,
	"is_branch":         true,
	"updates_pc":        true,
}

func (p *FilterParser) parseComparison() (Predicate, error) {
	field := p.current()
	if field.Type != FilterTokenIdent {
		return nil, fmt.Errorf("expected field name, got %q", field.Value)
	}
	p.advance()

	if boolFields[field.Value] {
		if !isComparisonOperator(p.current().Type) {
			return fieldPredicate(field.Value, "==", "true")
		}
	}

	opTok := p.current()
	if !isComparisonOperator(opTok.Type) {
		return nil, fmt.Errorf("expected comparison operator after %q, got %q", field.Value, opTok.Value)
	}
	p.advance()

	valTok := p.current()
	if valTok.Type != FilterTokenIdent && valTok.Type != FilterTokenNumber && valTok.Type != FilterTokenString {
		return nil, fmt.Errorf("expected value after operator, got %q", valTok.Value)
	}
	p.advance()

	return fieldPredicate(field.Value, opTok.Value, valTok.Value)
}

func isComparisonOperator(t FilterTokenType) bool {
	switch t {
	case FilterTokenEq, FilterTokenNe, FilterTokenLt, FilterTokenLe, FilterTokenGt, FilterTokenGe, FilterTokenContains:
		return true
	default:
		return false
	}
}

// fieldPredicate builds the leaf comparison "field op value".
func fieldPredicate(field, op, value string) (Predicate, error) {
	switch field {
	case "address", "addr":
		n, err := parseUintValue(value)
		if err != nil {
			return nil, err
		}
		return numericPredicate(op, func(inst disasm.Instruction, _ int) uint64 { return uint64(inst.Address) }, n)

	case "refs":
		n, err := parseUintValue(value)
		if err != nil {
			return nil, err
		}
		return numericPredicate(op, func(_ disasm.Instruction, refs int) uint64 { return uint64(refs) }, n)

	case "mnemonic":
		return stringPredicate(op, func(inst disasm.Instruction, _ int) string { return inst.Mnemonic }, value)

	case "operand", "operands":
		return stringPredicate(op, func(inst disasm.Instruction, _ int) string { return inst.Operands }, value)

	case "disasm":
		return stringPredicate(op, func(inst disasm.Instruction, _ int) string { return inst.FullDisasm }, value)

	case "category":
		return stringPredicate(op, func(inst disasm.Instruction, _ int) string { return inst.Category.String() }, value)

	case "branch_type", "branch":
		return stringPredicate(op, func(inst disasm.Instruction, _ int) string { return inst.BranchType.String() }, value)

	case "is_branch":
		return boolPredicate(op, value, func(inst disasm.Instruction, _ int) bool { return inst.HasBranch })

	case "is_function_start":
		return boolPredicate(op, value, func(inst disasm.Instruction, _ int) bool { return inst.IsFunctionStart })

	case "is_function_end":
		return boolPredicate(op, value, func(inst disasm.Instruction, _ int) bool { return inst.IsFunctionEnd })

	case "is_valid":
		return boolPredicate(op, value, func(inst disasm.Instruction, _ int) bool { return inst.IsValid })

	case "updates_pc":
		return boolPredicate(op, value, func(inst disasm.Instruction, _ int) bool { return inst.UpdatesPC })

	default:
		return nil, fmt.Errorf("unknown field %q", field)
	}
}

func parseUintValue(s string) (uint64, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if strings.HasPrefix(s, "0x") {
		return strconv.ParseUint(s[2:], 16, 64)
	}
	return strconv.ParseUint(s, 10, 64)
}

func numericPredicate(op string, get func(disasm.Instruction, int) uint64, want uint64) (Predicate, error) {
	var cmp func(uint64, uint64) bool
	switch op {
	case "==":
		cmp = func(a, b uint64) bool { return a == b }
	case "!=":
		cmp = func(a, b uint64) bool { return a != b }
	case "<":
		cmp = func(a, b uint64) bool { return a < b }
	case "<=":
		cmp = func(a, b uint64) bool { return a <= b }
	case ">":
		cmp = func(a, b uint64) bool { return a > b }
	case ">=":
		cmp = func(a, b uint64) bool { return a >= b }
	default:
		return nil, fmt.Errorf("operator %q not valid for a numeric field", op)
	}
	return func(inst disasm.Instruction, refs int) bool { return cmp(get(inst, refs), want) }, nil
}

func stringPredicate(op string, get func(disasm.Instruction, int) string, want string) (Predicate, error) {
	switch op {
	case "==":
		return func(inst disasm.Instruction, refs int) bool {
			return strings.EqualFold(get(inst, refs), want)
		}, nil
	case "!=":
		return func(inst disasm.Instruction, refs int) bool {
			return !strings.EqualFold(get(inst, refs), want)
		}, nil
	case "~":
		return func(inst disasm.Instruction, refs int) bool {
			return strings.Contains(strings.ToLower(get(inst, refs)), strings.ToLower(want))
		}, nil
	default:
		return nil, fmt.Errorf("operator %q not valid for a text field", op)
	}
}

func boolPredicate(op, value string, get func(disasm.Instruction, int) bool) (Predicate, error) {
	if op != "==" && op != "!=" {
		return nil, fmt.Errorf("operator %q not valid for a boolean field", op)
	}
	want := strings.EqualFold(value, "true")
	return func(inst disasm.Instruction, refs int) bool {
		got := get(inst, refs)
		if op == "!=" {
			return got != want
		}
		return got == want
	}, nil
}
