package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
	"golang.org/x/term"

	"github.com/dmitrycvs/C-DSL/pkg/diagnostics"
	"github.com/dmitrycvs/C-DSL/pkg/evaluator"
	"github.com/dmitrycvs/C-DSL/pkg/geometry"
	"github.com/dmitrycvs/C-DSL/pkg/render"
	"github.com/dmitrycvs/C-DSL/pkg/runtime"
)

const (
	historyFile = ".shapes_history"
	promptMain  = "shapes> "
	promptCont  = "   ...> "
	replBanner  = "shapes REPL. Type :help for commands, :quit to exit."
)

// palette colours REPL output when stdout is a terminal.
type palette struct{ on bool }

func (p palette) wrap(code, s string) string {
	if !p.on {
		return s
	}
	return "\x1b[" + code + "m" + s + "\x1b[0m"
}

func (p palette) red(s string) string    { return p.wrap("31", s) }
func (p palette) yellow(s string) string { return p.wrap("33", s) }
func (p palette) cyan(s string) string   { return p.wrap("36", s) }

func cmdRepl(args []string) int {
	f, err := parseFlags(args)
	if err != nil || f.file != "" {
		usage(err, "usage: shapes repl [--config <path>] [--log-level <level>]")
		return exitUsage
	}
	e, code := setup(f)
	if code != exitOK {
		return code
	}
	colors := palette{on: term.IsTerminal(int(os.Stdout.Fd()))}

	fmt.Println(replBanner)

	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	if hf, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(hf)
		_ = hf.Close()
	}
	defer func() {
		if hf, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(hf)
			_ = hf.Close()
		}
	}()

	text := render.NewText(os.Stdout)
	st := &replState{drawn: render.NewRecorder(), canvas: e.cfg.RenderCanvas(), colors: colors}
	rt := runtime.New(
		runtime.WithRenderer(render.Multi(text, st.drawn)),
		runtime.WithStdout(orderedWriter{w: os.Stdout, r: text}),
		runtime.WithLogger(e.logger),
		runtime.WithBudget(e.cfg.ExecBudget()),
		runtime.WithRunID("repl"),
	)
	session := rt.NewSession()
	st.session = session

	for {
		src, ok := readCompleteInput(ln, session)
		if !ok {
			fmt.Println()
			break
		}
		trimmed := strings.TrimSpace(src)
		if trimmed == "" {
			continue
		}
		ln.AppendHistory(strings.ReplaceAll(src, "\n", " "))

		if strings.HasPrefix(trimmed, ":") {
			if quit := replCommand(os.Stdout, st, trimmed); quit {
				break
			}
			continue
		}

		evalLine(session, text, src, e.pretty, colors)
	}
	return exitOK
}

// evalLine runs one input. Ctrl-C during a long run cancels only that input.
func evalLine(session *runtime.Session, text *render.Text, src string, pretty bool, colors palette) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	res, err := session.Eval(ctx, src)
	if flushErr := text.Flush(); flushErr != nil {
		fmt.Fprintln(os.Stderr, colors.red(flushErr.Error()))
	}
	if res != nil {
		for _, w := range res.Warnings {
			fmt.Fprintln(os.Stderr, colors.yellow(diagnostics.FormatDiagnostic(w, pretty)))
		}
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, colors.red(errorText(err, pretty)))
		return
	}
	if res.Returned {
		fmt.Println(colors.cyan(evaluator.ValueToJSONString(res.Value)))
	}
}

func errorText(err error, pretty bool) string {
	var diagErr *runtime.DiagnosticError
	if errors.As(err, &diagErr) {
		return diagnostics.FormatDiagnostics(diagErr.Diagnostics, pretty)
	}
	var rtErr *evaluator.RuntimeError
	if errors.As(err, &rtErr) {
		return diagnostics.FormatDiagnostic(rtErr.Diagnostic(), pretty)
	}
	return err.Error()
}

// replState is what ':' commands can see.
type replState struct {
	session *runtime.Session
	drawn   *render.Recorder // every draw so far, for :save
	canvas  render.Canvas
	colors  palette
}

// replCommand handles a ':' command and reports whether to exit.
func replCommand(w io.Writer, st *replState, cmd string) bool {
	fields := strings.Fields(cmd)
	colors := st.colors
	switch strings.ToLower(fields[0]) {
	case ":quit", ":q", ":exit":
		return true
	case ":vars":
		vars, err := st.session.Vars()
		if err != nil {
			fmt.Fprintln(w, colors.red(err.Error()))
			return false
		}
		fmt.Fprintln(w, string(vars))
	case ":shapes":
		for _, name := range st.session.ShapeNames() {
			s, _ := st.session.Shape(name)
			fmt.Fprintln(w, colors.cyan(describeShape(name, s)))
		}
	case ":fns":
		fmt.Fprintln(w, strings.Join(st.session.FunctionNames(), "\n"))
	case ":save":
		if len(fields) != 2 {
			fmt.Fprintln(w, "usage: :save <file.svg>")
			return false
		}
		if err := saveSVG(fields[1], st.drawn, st.canvas); err != nil {
			fmt.Fprintln(w, colors.red(err.Error()))
			return false
		}
		fmt.Fprintf(w, "saved %d draws to %s\n", len(st.drawn.Commands), fields[1])
	case ":help":
		fmt.Fprintln(w, ":vars         show variables as JSON")
		fmt.Fprintln(w, ":shapes       list shapes and their geometry")
		fmt.Fprintln(w, ":fns          list user functions")
		fmt.Fprintln(w, ":save <file>  write everything drawn so far as SVG")
		fmt.Fprintln(w, ":quit         exit")
	default:
		fmt.Fprintln(w, "unknown command. Type :help for a list.")
	}
	return false
}

// saveSVG replays the recorded draws into an SVG document at path.
func saveSVG(path string, drawn *render.Recorder, canvas render.Canvas) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := writeSVG(file, drawn, canvas); err != nil {
		_ = file.Close()
		return err
	}
	return file.Close()
}

func writeSVG(w io.Writer, drawn *render.Recorder, canvas render.Canvas) error {
	svg := render.NewSVG(w, canvas)
	drawn.Replay(svg)
	return svg.Flush()
}

// describeShape renders a shape the way the text renderer draws it.
func describeShape(name string, s geometry.Shape) string {
	var b strings.Builder
	t := render.NewText(&b)
	render.Shape(t, name, s)
	_ = t.Flush()
	return strings.TrimPrefix(strings.TrimSpace(b.String()), "draw ")
}

// readCompleteInput reads lines until they form a complete input. ok is false
// at end of input.
func readCompleteInput(ln *liner.State, session *runtime.Session) (string, bool) {
	var b strings.Builder
	for {
		prompt := promptMain
		if b.Len() > 0 {
			prompt = promptCont
		}
		line, err := ln.Prompt(prompt)
		if errors.Is(err, io.EOF) {
			return "", false
		}
		if errors.Is(err, liner.ErrPromptAborted) {
			return "", true
		}
		if err != nil {
			return "", false
		}

		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)

		src := b.String()
		if strings.HasPrefix(strings.TrimSpace(src), ":") || !session.Incomplete(src) {
			return src, true
		}
	}
}
