package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/machoscope/machoscope/api"
	"github.com/machoscope/machoscope/config"
	"github.com/machoscope/machoscope/debugger"
	"github.com/machoscope/machoscope/loader"
	"github.com/machoscope/machoscope/macho"
	"github.com/machoscope/machoscope/tools"
)

// Version information - can be overridden at build time with:
// go build -ldflags "-X main.Version=v1.2.3"
var (
	Version = "dev"     // Version number (set by git tag at build time)
	Commit  = "unknown" // Git commit hash
	Date    = "unknown" // Build date
)

func main() {
	var (
		showVersion  = flag.Bool("version", false, "Show version information")
		showHelp     = flag.Bool("help", false, "Show help information")
		serveMode    = flag.Bool("serve", false, "Start HTTP API server mode")
		listenAddr   = flag.String("addr", "", "API server listen address (used with -serve, default from config)")
		exploreMode  = flag.Bool("explore", false, "Open the interactive explorer TUI after analysis")
		forceArch    = flag.String("arch", "", "Force architecture (arm64, x86_64); default: auto-detect")
		outputFormat = flag.String("format", "", "Output format: text or json (default from config)")
		compact      = flag.Bool("compact", false, "Use compact one-line-per-instruction disassembly layout")
		headerOnly   = flag.Bool("header-only", false, "Print only the generated runtime header and exit")
		lintOnly     = flag.Bool("lint-only", false, "Print only lint findings and exit")
		sectionsOnly = flag.Bool("sections", false, "Print the section table and exit")
		configPath   = flag.String("config", "", "Path to config file (default: platform config directory)")
	)

	flag.Parse()

	if *showVersion {
		fmt.Printf("machoscope %s\n", Version)
		if Commit != "unknown" {
			fmt.Printf("Commit: %s\n", Commit)
		}
		if Date != "unknown" {
			fmt.Printf("Built: %s\n", Date)
		}
		os.Exit(0)
	}

	if *showHelp {
		printHelp()
		os.Exit(0)
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if *forceArch != "" {
		cfg.Disassembly.ForceArch = *forceArch
	}
	if *outputFormat != "" {
		cfg.Output.Format = *outputFormat
	}

	if *serveMode {
		addr := cfg.API.ListenAddr
		if *listenAddr != "" {
			addr = *listenAddr
		}
		runServer(addr, cfg)
		return
	}

	if flag.NArg() == 0 {
		printHelp()
		os.Exit(0)
	}

	path := flag.Arg(0)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "Error: file not found: %s\n", path)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	result, err := loader.Analyze(ctx, path, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Analysis error: %v\n", err)
		os.Exit(1)
	}

	if *exploreMode {
		explorer := debugger.NewExplorer(result)
		if err := explorer.Run(); err != nil {
			fmt.Fprintf(os.Stderr, "Explorer error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if *headerOnly {
		fmt.Print(result.HeaderText)
		return
	}

	if *lintOnly {
		printLintIssues(result.LintIssues)
		return
	}

	if *sectionsOnly {
		printSections(result.Sections)
		return
	}

	printAnalysis(result, cfg, *compact)
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFrom(path)
	}
	return config.Load()
}

func runServer(addr string, cfg *config.Config) {
	server := api.NewServer(addr, cfg)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// sync.Once makes performShutdown safe to call more than once; only
	// the signal path calls it, since a server start failure exits the
	// process directly.
	var shutdownOnce sync.Once
	performShutdown := func() {
		shutdownOnce.Do(func() {
			fmt.Println("\nShutting down API server...")

			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			if err := server.Shutdown(ctx); err != nil {
				fmt.Fprintf(os.Stderr, "Error during shutdown: %v\n", err)
				os.Exit(1)
			}

			fmt.Println("API server stopped")
			os.Exit(0)
		})
	}

	go func() {
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			fmt.Fprintf(os.Stderr, "API server error: %v\n", err)
			os.Exit(1)
		}
	}()

	<-sigChan
	performShutdown()
}

func printAnalysis(result *loader.Result, cfg *config.Config, compact bool) {
	if cfg.Output.Format == "json" {
		printJSON(result)
		return
	}

	fmt.Printf("machoscope: %s (%s)\n", result.Path, result.Architecture)
	fmt.Println()

	options := tools.DefaultFormatOptions()
	if compact {
		options = tools.CompactFormatOptions()
	}
	options.AnnotateRefs = cfg.Output.AnnotateRefs

	formatter := tools.NewFormatter(options, result.XRef)
	fmt.Print(formatter.Format(result.Instructions))

	if len(result.Runtime.Classes) > 0 || len(result.Runtime.Categories) > 0 || len(result.Runtime.Protocols) > 0 {
		fmt.Println()
		fmt.Printf("Runtime: %d classes, %d categories, %d protocols\n",
			len(result.Runtime.Classes), len(result.Runtime.Categories), len(result.Runtime.Protocols))
	}

	if len(result.Types) > 0 {
		fmt.Println()
		fmt.Printf("Reconstructed types: %d\n", len(result.Types))
	}

	if len(result.LintIssues) > 0 {
		fmt.Println()
		printLintIssues(result.LintIssues)
	}

	if result.XRef != nil {
		fmt.Println()
		fmt.Print(result.XRef.Report())
	}
}

func printLintIssues(issues []tools.LintIssue) {
	if len(issues) == 0 {
		fmt.Println("No lint issues found")
		return
	}
	fmt.Println("Lint findings:")
	for _, issue := range issues {
		fmt.Printf("  %s\n", issue)
	}
}

func printSections(sections []macho.Section) {
	if len(sections) == 0 {
		fmt.Println("No sections found")
		return
	}
	fmt.Printf("%-12s %-20s %-12s %s\n", "Segment", "Section", "Address", "Size")
	for _, s := range sections {
		fmt.Printf("%-12s %-20s %#010x   %d\n", s.Segment, s.Name, s.Addr, s.Size)
	}
}

func printJSON(result *loader.Result) {
	dto := api.ToAnalysisResult(result)
	if err := writeJSONTo(os.Stdout, dto); err != nil {
		fmt.Fprintf(os.Stderr, "Error encoding JSON: %v\n", err)
		os.Exit(1)
	}
}

func writeJSONTo(w io.Writer, v interface{}) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

func printHelp() {
	fmt.Printf(`machoscope %s

Usage: machoscope [options] <macho-file>
       machoscope -serve [-addr :8787]

Options:
  -help              Show this help message
  -version           Show version information
  -serve             Start HTTP API server mode (no binary path required)
  -addr ADDR         API server listen address (default from config, e.g. :8787)
  -explore           Open the interactive explorer TUI after analysis
  -arch ARCH         Force architecture: arm64 or x86_64 (default: auto-detect)
  -format FMT        Output format: text or json (default from config)
  -compact           Use compact one-line-per-instruction disassembly layout
  -header-only       Print only the generated runtime header and exit
  -lint-only         Print only lint findings and exit
  -sections          Print the section table and exit
  -config FILE       Path to config file (default: platform config directory)

Examples:
  # Disassemble and analyze a binary, print to stdout
  machoscope /path/to/binary

  # Start the API server for frontends
  machoscope -serve
  machoscope -serve -addr :9000

  # Open the interactive explorer
  machoscope -explore /path/to/binary

  # Force architecture on a fat binary
  machoscope -arch arm64 /path/to/binary

  # Emit JSON instead of text
  machoscope -format json /path/to/binary > result.json

  # Just print the generated Objective-C header
  machoscope -header-only /path/to/binary

  # List segments and sections
  machoscope -sections /path/to/binary
`, Version)
}
