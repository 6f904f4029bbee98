package debugger

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/machoscope/machoscope/disasm"
	"github.com/machoscope/machoscope/loader"
)

// Explorer is the interactive, read-only text UI over one loader.Result
// (component P). Unlike the teacher's TUI, which drove a live VM forward
// one instruction at a time, the explorer only ever reads an already
// completed analysis: there is nothing to step, continue, or break at.
type Explorer struct {
	Result *Result

	App   *tview.Application
	Pages *tview.Pages

	MainLayout *tview.Flex

	DisassemblyView *tview.TextView
	RuntimeView     *tview.TextView
	TypesView       *tview.TextView
	LintView        *tview.TextView
	OutputView      *tview.TextView
	CommandInput    *tview.InputField

	History *CommandHistory

	filter       Predicate
	filterSource string
	cursor       int // index into Result.Instructions of the focused row
}

// Result is a type alias of loader.Result, the full analysis result the
// explorer renders, so a *loader.Result can be passed in directly.
type Result = loader.Result

// NewExplorer builds an Explorer over an already-computed analysis result.
func NewExplorer(result *Result) *Explorer {
	e := &Explorer{
		Result:  result,
		App:     tview.NewApplication(),
		History: NewCommandHistory(),
		filter:  func(disasm.Instruction, int) bool { return true },
	}
	e.initializeViews()
	e.buildLayout()
	e.setupKeyBindings()
	return e
}

func (e *Explorer) initializeViews() {
	e.DisassemblyView = tview.NewTextView().SetDynamicColors(true).SetScrollable(true).SetWrap(false)
	e.DisassemblyView.SetBorder(true).SetTitle(fmt.Sprintf(" Disassembly (%s) ", e.Result.Architecture))

	e.RuntimeView = tview.NewTextView().SetDynamicColors(true).SetScrollable(true).SetWrap(false)
	e.RuntimeView.SetBorder(true).SetTitle(" Objective-C / Swift Runtime ")

	e.TypesView = tview.NewTextView().SetDynamicColors(true).SetScrollable(true).SetWrap(false)
	e.TypesView.SetBorder(true).SetTitle(" Reconstructed Types ")

	e.LintView = tview.NewTextView().SetDynamicColors(true).SetScrollable(true).SetWrap(true)
	e.LintView.SetBorder(true).SetTitle(" Lint ")

	e.OutputView = tview.NewTextView().SetDynamicColors(true).SetScrollable(true).SetWrap(true)
	e.OutputView.SetBorder(true).SetTitle(" Output ")

	e.CommandInput = tview.NewInputField().SetLabel("> ").SetFieldWidth(0)
	e.CommandInput.SetBorder(true).SetTitle(" Command ")
	e.CommandInput.SetDoneFunc(e.handleCommand)
}

func (e *Explorer) buildLayout() {
	leftPanel := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(e.DisassemblyView, 0, 1, false)

	rightPanel := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(e.RuntimeView, 0, 2, false).
		AddItem(e.TypesView, 0, 2, false).
		AddItem(e.LintView, 0, 1, false)

	mainContent := tview.NewFlex().SetDirection(tview.FlexColumn).
		AddItem(leftPanel, 0, 2, false).
		AddItem(rightPanel, 0, 1, false)

	e.MainLayout = tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(mainContent, 0, 4, false).
		AddItem(e.OutputView, 8, 0, false).
		AddItem(e.CommandInput, 3, 0, true)

	e.Pages = tview.NewPages().AddPage("main", e.MainLayout, true, true)
}

func (e *Explorer) setupKeyBindings() {
	e.App.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyF1:
			e.executeCommand("help")
			return nil
		case tcell.KeyCtrlC:
			e.App.Stop()
			return nil
		case tcell.KeyCtrlL:
			e.RefreshAll()
			return nil
		case tcell.KeyUp:
			if prev := e.History.Previous(); prev != "" {
				e.CommandInput.SetText(prev)
			}
			return nil
		case tcell.KeyDown:
			e.CommandInput.SetText(e.History.Next())
			return nil
		}
		return event
	})
}

func (e *Explorer) handleCommand(key tcell.Key) {
	if key != tcell.KeyEnter {
		return
	}
	cmd := e.CommandInput.GetText()
	if cmd == "" {
		return
	}
	e.executeCommand(cmd)
	e.CommandInput.SetText("")
}

// executeCommand dispatches one command line. Every command is read-only:
// it changes what the explorer displays, never the underlying Result.
func (e *Explorer) executeCommand(cmd string) {
	e.History.Add(cmd)
	fields := strings.Fields(cmd)
	if len(fields) == 0 {
		return
	}

	switch strings.ToLower(fields[0]) {
	case "help":
		e.writeOutput(helpText)

	case "filter":
		expr := strings.TrimSpace(strings.TrimPrefix(cmd, fields[0]))
		pred, err := CompileFilter(expr)
		if err != nil {
			e.writeOutput(fmt.Sprintf("[red]filter error:[white] %v\n", err))
			break
		}
		e.filter = pred
		e.filterSource = expr
		e.writeOutput(fmt.Sprintf("[green]filter applied:[white] %s\n", expr))

	case "clear":
		e.filter = func(disasm.Instruction, int) bool { return true }
		e.filterSource = ""
		e.writeOutput("filter cleared\n")

	case "goto":
		if len(fields) < 2 {
			e.writeOutput("[red]usage:[white] goto <address>\n")
			break
		}
		addr, err := strconv.ParseUint(strings.TrimPrefix(strings.ToLower(fields[1]), "0x"), 16, 32)
		if err != nil {
			e.writeOutput(fmt.Sprintf("[red]invalid address:[white] %v\n", err))
			break
		}
		if idx, ok := e.findInstructionIndex(uint32(addr)); ok {
			e.cursor = idx
			e.writeOutput(fmt.Sprintf("moved to %#08x\n", addr))
		} else {
			e.writeOutput(fmt.Sprintf("no instruction at %#08x\n", addr))
		}

	case "header":
		e.writeOutput(e.Result.HeaderText + "\n")

	case "quit", "exit":
		e.App.Stop()
		return

	default:
		e.writeOutput(fmt.Sprintf("[red]unknown command:[white] %s (try 'help')\n", fields[0]))
	}

	e.RefreshAll()
}

const helpText = `Commands:
  filter <expr>   narrow the disassembly view (e.g. filter mnemonic == BL)
  clear           remove the active filter
  goto <addr>     move the cursor to an address (hex, with or without 0x)
  header          print the generated Objective-C header to the output view
  quit            leave the explorer
`

func (e *Explorer) writeOutput(text string) {
	_, _ = e.OutputView.Write([]byte(text))
	e.OutputView.ScrollToEnd()
}

func (e *Explorer) findInstructionIndex(addr uint32) (int, bool) {
	for i, inst := range e.Result.Instructions {
		if inst.Address == addr {
			return i, true
		}
	}
	return 0, false
}

// RefreshAll redraws every panel from the current Result and filter.
func (e *Explorer) RefreshAll() {
	e.updateDisassemblyView()
	e.updateRuntimeView()
	e.updateTypesView()
	e.updateLintView()
	e.App.Draw()
}

func (e *Explorer) updateDisassemblyView() {
	var b strings.Builder
	shown := 0
	for _, inst := range e.Result.Instructions {
		refs := 0
		if e.Result.XRef != nil {
			refs = len(e.Result.XRef.ReferencesTo(inst.Address))
		}
		if !e.filter(inst, refs) {
			continue
		}
		marker := "  "
		if inst.Address == e.cursorAddress() {
			marker = "->"
		}
		line := fmt.Sprintf("%s %s", marker, inst.FullDisasm)
		if refs > 0 {
			line += fmt.Sprintf("  [yellow]; %d refs[white]", refs)
		}
		b.WriteString(line)
		b.WriteByte('\n')
		shown++
	}
	if shown == 0 {
		b.WriteString("[yellow]no instructions match the active filter[white]")
	}
	e.DisassemblyView.SetText(b.String())
	if e.filterSource != "" {
		e.DisassemblyView.SetTitle(fmt.Sprintf(" Disassembly (filter: %s) ", e.filterSource))
	} else {
		e.DisassemblyView.SetTitle(fmt.Sprintf(" Disassembly (%s) ", e.Result.Architecture))
	}
}

func (e *Explorer) cursorAddress() uint32 {
	if e.cursor < 0 || e.cursor >= len(e.Result.Instructions) {
		return 0
	}
	return e.Result.Instructions[e.cursor].Address
}

func (e *Explorer) updateRuntimeView() {
	var b strings.Builder
	rt := e.Result.Runtime
	if rt.UsedFallback {
		b.WriteString("[yellow]no symbol-level ObjC metadata found; showing string-analysis fallback[white]\n\n")
	}
	fmt.Fprintf(&b, "[yellow]Classes (%d)[white]\n", len(rt.Classes))
	for _, c := range rt.Classes {
		suffix := ""
		if c.IsSwift {
			suffix += " [blue]swift[white]"
		}
		if c.IsMetaclass {
			suffix += " [green]meta[white]"
		}
		fmt.Fprintf(&b, "  %s : %s%s\n", c.Name, c.SuperclassName, suffix)
	}
	fmt.Fprintf(&b, "\n[yellow]Categories (%d)[white]\n", len(rt.Categories))
	for _, c := range rt.Categories {
		fmt.Fprintf(&b, "  %s(%s)\n", c.ClassName, c.CategoryName)
	}
	fmt.Fprintf(&b, "\n[yellow]Protocols (%d)[white]\n", len(rt.Protocols))
	for _, p := range rt.Protocols {
		fmt.Fprintf(&b, "  %s\n", p.Name)
	}
	e.RuntimeView.SetText(b.String())
}

func (e *Explorer) updateTypesView() {
	var b strings.Builder
	for _, t := range e.Result.Types {
		fmt.Fprintf(&b, "%#08x  %-8s %-40s size=%-4d conf=%.2f\n", t.Address, t.Category, t.Name, t.Size, t.Confidence)
	}
	if len(e.Result.Types) == 0 {
		b.WriteString("[yellow]no symbols to classify[white]")
	}
	e.TypesView.SetText(b.String())
}

func (e *Explorer) updateLintView() {
	var b strings.Builder
	for _, issue := range e.Result.LintIssues {
		color := "yellow"
		if issue.Level.String() == "info" {
			color = "white"
		}
		fmt.Fprintf(&b, "[%s]%s[white]\n", color, issue.String())
	}
	if len(e.Result.LintIssues) == 0 {
		b.WriteString("[green]no issues found[white]")
	}
	e.LintView.SetText(b.String())
}

// Run starts the explorer's event loop. Blocks until the user quits.
func (e *Explorer) Run() error {
	e.RefreshAll()
	e.writeOutput(fmt.Sprintf("[green]machoscope explorer[white] — %s\n", e.Result.Path))
	e.writeOutput("Type 'help' for the command list, Ctrl+C to quit.\n\n")
	return e.App.SetRoot(e.Pages, true).SetFocus(e.CommandInput).Run()
}

// Stop stops the explorer's event loop.
func (e *Explorer) Stop() {
	e.App.Stop()
}
