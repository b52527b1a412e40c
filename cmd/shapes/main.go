// Command shapes is the shape DSL CLI entry point.
package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/dmitrycvs/C-DSL/pkg/config"
	"github.com/dmitrycvs/C-DSL/pkg/diagnostics"
	"github.com/dmitrycvs/C-DSL/pkg/evaluator"
	"github.com/dmitrycvs/C-DSL/pkg/formatter"
	"github.com/dmitrycvs/C-DSL/pkg/runtime"
)

// Exit codes.
const (
	exitOK      = 0
	exitUsage   = 1
	exitInvalid = 2
	exitRuntime = 3
	exitIO      = 4
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: shapes <command> [options]")
		fmt.Fprintln(os.Stderr, "commands: run, check, fmt, trace, repl, help")
		os.Exit(exitUsage)
	}

	cmd := os.Args[1]
	switch cmd {
	case "run":
		os.Exit(cmdRun(os.Args[2:]))
	case "check":
		os.Exit(cmdCheck(os.Args[2:]))
	case "fmt":
		os.Exit(cmdFmt(os.Args[2:]))
	case "trace":
		os.Exit(cmdTrace(os.Args[2:]))
	case "repl":
		os.Exit(cmdRepl(os.Args[2:]))
	case "help", "--help", "-h":
		os.Exit(cmdHelp(os.Args[2:]))
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		os.Exit(exitUsage)
	}
}

// cliFlags holds every option any command accepts. Each command reads the
// ones it needs.
type cliFlags struct {
	file       string
	configPath string
	logLevel   string
	format     string
	out        string
	tracePath  string
	pretty     *bool
	write      bool
	json       bool
	text       bool
	index      bool
}

// valueFlags take an argument.
var valueFlags = map[string]bool{
	"--config":    true,
	"--log-level": true,
	"--format":    true,
	"--out":       true,
	"--trace":     true,
}

func parseFlags(args []string) (*cliFlags, error) {
	f := &cliFlags{}
	for i := 0; i < len(args); i++ {
		arg := args[i]
		name, value, hasValue := strings.Cut(arg, "=")
		if valueFlags[name] && !hasValue {
			if i+1 >= len(args) {
				return nil, fmt.Errorf("%s requires a value", name)
			}
			i++
			value, hasValue = args[i], true
		}
		switch name {
		case "--config":
			f.configPath = value
		case "--log-level":
			f.logLevel = value
		case "--format":
			f.format = value
		case "--out":
			f.out = value
		case "--trace":
			f.tracePath = value
		case "--pretty":
			t := true
			f.pretty = &t
		case "--no-pretty":
			v := false
			f.pretty = &v
		case "--write":
			f.write = true
		case "--json":
			f.json = true
		case "--text":
			f.text = true
		case "--index":
			f.index = true
		default:
			if strings.HasPrefix(arg, "-") && arg != "-" {
				return nil, fmt.Errorf("unknown flag: %s", arg)
			}
			if f.file != "" {
				return nil, fmt.Errorf("unexpected argument: %s", arg)
			}
			f.file = arg
		}
		if hasValue && !valueFlags[name] && strings.HasPrefix(arg, "-") {
			return nil, fmt.Errorf("%s does not take a value", name)
		}
	}
	return f, nil
}

// env is the resolved configuration shared by the commands.
type env struct {
	cfg    *config.Config
	logger *slog.Logger
	pretty bool
	format string
}

// setup loads the configuration and builds the logger. On failure it has
// already reported the problem and returns the exit code.
func setup(f *cliFlags) (*env, int) {
	pretty := term.IsTerminal(int(os.Stderr.Fd()))
	if f.pretty != nil {
		pretty = *f.pretty
	}

	cwd, err := os.Getwd()
	if err != nil {
		cwd = "."
	}
	cfg, err := config.Load(f.configPath, cwd)
	if err != nil {
		var cerr *config.Error
		if errors.As(err, &cerr) {
			printDiags(os.Stderr, []diagnostics.Diagnostic{cerr.Diagnostic()}, pretty)
		} else {
			fmt.Fprintln(os.Stderr, err)
		}
		return nil, exitIO
	}
	if f.pretty == nil && cfg.Output.Pretty != nil {
		pretty = *cfg.Output.Pretty
	}

	levelName := cfg.Log.Level
	if f.logLevel != "" {
		levelName = f.logLevel
	}
	level, err := config.ParseLevel(levelName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err)
		return nil, exitUsage
	}

	format := cfg.Output.Format
	if f.format != "" {
		format = f.format
	}
	switch format {
	case "text", "json", "svg":
	default:
		fmt.Fprintf(os.Stderr, "error: --format must be text, json or svg, got %q\n", format)
		return nil, exitUsage
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	if cfg.Path != "" {
		logger.Debug("config loaded", "path", cfg.Path)
	}
	return &env{cfg: cfg, logger: logger, pretty: pretty, format: format}, exitOK
}

func cmdCheck(args []string) int {
	f, err := parseFlags(args)
	if err != nil || f.file == "" {
		usage(err, "usage: shapes check <file> [--pretty]")
		return exitUsage
	}
	e, code := setup(f)
	if code != exitOK {
		return code
	}

	source, filename, code := readSource(f.file, e.pretty)
	if code != exitOK {
		return code
	}

	rt := runtime.New(runtime.WithLogger(e.logger))
	diags := rt.Check(source, filename)
	if len(diags) > 0 {
		printDiags(os.Stderr, diags, e.pretty)
	}
	if len(diagnostics.Errors(diags)) > 0 {
		return exitInvalid
	}

	if e.pretty {
		fmt.Println("No errors found.")
	} else {
		fmt.Println("[]")
	}
	return exitOK
}

func cmdFmt(args []string) int {
	f, err := parseFlags(args)
	if err != nil || f.file == "" {
		usage(err, "usage: shapes fmt <file> [--write]")
		return exitUsage
	}
	e, code := setup(f)
	if code != exitOK {
		return code
	}

	source, filename, code := readSource(f.file, e.pretty)
	if code != exitOK {
		return code
	}

	rt := runtime.New(runtime.WithLogger(e.logger))
	formatted, fmtErr := rt.Format(source, filename)
	if fmtErr != nil {
		return reportError(fmtErr, e.pretty)
	}

	if formatter.HasComments(source) {
		e.logger.Warn("comments are not preserved by the formatter", "file", filename)
	}

	if f.write && f.file != "-" {
		if err := os.WriteFile(f.file, []byte(formatted), 0o644); err != nil {
			diag := diagnostics.MakeDiag(diagnostics.EIO, fmt.Sprintf("cannot write file: %s", err), nil, "")
			printDiags(os.Stderr, []diagnostics.Diagnostic{diag}, e.pretty)
			return exitIO
		}
		return exitOK
	}
	fmt.Print(formatted)
	return exitOK
}

func usage(err error, text string) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err)
	}
	fmt.Fprintln(os.Stderr, text)
}

func readSource(file string, pretty bool) (string, string, int) {
	if file == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error reading stdin: %s\n", err)
			return "", "", exitIO
		}
		return string(data), "<stdin>", exitOK
	}

	source, err := os.ReadFile(file)
	if err != nil {
		diag := diagnostics.MakeDiag(diagnostics.EIO, fmt.Sprintf("cannot read file: %s", file), nil, "")
		printDiags(os.Stderr, []diagnostics.Diagnostic{diag}, pretty)
		return "", "", exitIO
	}
	return string(source), file, exitOK
}

func printDiags(w io.Writer, diags []diagnostics.Diagnostic, pretty bool) {
	fmt.Fprintln(w, diagnostics.FormatDiagnostics(diags, pretty))
}

// reportError prints a parse, validation or runtime error and returns the
// matching exit code.
func reportError(err error, pretty bool) int {
	var diagErr *runtime.DiagnosticError
	if errors.As(err, &diagErr) {
		printDiags(os.Stderr, diagnostics.Errors(diagErr.Diagnostics), pretty)
		return exitInvalid
	}
	var rtErr *evaluator.RuntimeError
	if errors.As(err, &rtErr) {
		printDiags(os.Stderr, []diagnostics.Diagnostic{rtErr.Diagnostic()}, pretty)
		return exitCodeForDiag(rtErr.Code)
	}
	fmt.Fprintln(os.Stderr, err.Error())
	return exitIO
}

func exitCodeForDiag(code string) int {
	switch code {
	case diagnostics.ELex, diagnostics.EParse, diagnostics.EDupParam, diagnostics.EPolygonVertices:
		return exitInvalid
	case diagnostics.EIO, diagnostics.EConfig, diagnostics.EAst:
		return exitIO
	default:
		return exitRuntime
	}
}
