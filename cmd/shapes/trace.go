package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/dmitrycvs/C-DSL/pkg/diagnostics"
	"github.com/dmitrycvs/C-DSL/pkg/evaluator"
)

// TraceSummary aggregates a JSONL trace written by `shapes run --trace`.
type TraceSummary struct {
	RunID          string         `json:"runId"`
	TotalEvents    int            `json:"totalEvents"`
	Statements     int            `json:"statements"`
	FnCalls        int            `json:"fnCalls"`
	FnsByName      map[string]int `json:"fnsByName"`
	Draws          int            `json:"draws"`
	DrawsByKind    map[string]int `json:"drawsByKind"`
	Warnings       int            `json:"warnings"`
	BudgetExceeded int            `json:"budgetExceeded"`
	StartTime      string         `json:"startTime,omitempty"`
	EndTime        string         `json:"endTime,omitempty"`
	DurationMs     float64        `json:"durationMs"`
}

func cmdTrace(args []string) int {
	f, err := parseFlags(args)
	if err != nil || f.file == "" {
		usage(err, "usage: shapes trace <file.jsonl> [--json|--text]")
		return exitUsage
	}

	file, err := os.Open(f.file)
	if err != nil {
		diag := diagnostics.MakeDiag(diagnostics.EIO, fmt.Sprintf("cannot read file: %s", f.file), nil, "")
		printDiags(os.Stderr, []diagnostics.Diagnostic{diag}, false)
		return exitIO
	}
	defer file.Close()

	summary, err := computeTraceSummary(file)
	if err != nil {
		diag := diagnostics.MakeDiag(diagnostics.EIO, fmt.Sprintf("cannot read trace: %s", err), nil, "")
		printDiags(os.Stderr, []diagnostics.Diagnostic{diag}, false)
		return exitIO
	}

	if f.text {
		printTraceSummaryText(os.Stdout, summary)
		return exitOK
	}
	b, _ := json.Marshal(summary)
	fmt.Println(string(b))
	return exitOK
}

func computeTraceSummary(r io.Reader) (*TraceSummary, error) {
	summary := &TraceSummary{
		FnsByName:   make(map[string]int),
		DrawsByKind: make(map[string]int),
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var event evaluator.TraceEvent
		if err := json.Unmarshal([]byte(line), &event); err != nil {
			continue // skip invalid lines
		}

		summary.TotalEvents++
		if summary.RunID == "" {
			summary.RunID = event.RunID
		}

		switch event.Event {
		case evaluator.TraceRunStart:
			if summary.StartTime == "" {
				summary.StartTime = event.Timestamp
			}
		case evaluator.TraceRunEnd:
			summary.EndTime = event.Timestamp
		case evaluator.TraceStmtStart:
			summary.Statements++
		case evaluator.TraceFnCallStart:
			summary.FnCalls++
			if name, ok := event.Data["fn"].(string); ok {
				summary.FnsByName[name]++
			}
		case evaluator.TraceDraw:
			summary.Draws++
			if kind, ok := event.Data["kind"].(string); ok {
				summary.DrawsByKind[kind]++
			}
		case evaluator.TraceWarning:
			summary.Warnings++
		case evaluator.TraceBudgetExceeded:
			summary.BudgetExceeded++
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	if summary.StartTime != "" && summary.EndTime != "" {
		start, err1 := time.Parse(time.RFC3339Nano, summary.StartTime)
		end, err2 := time.Parse(time.RFC3339Nano, summary.EndTime)
		if err1 == nil && err2 == nil {
			summary.DurationMs = float64(end.Sub(start).Milliseconds())
		}
	}

	return summary, nil
}

func printTraceSummaryText(w io.Writer, s *TraceSummary) {
	fmt.Fprintf(w, "Run: %s\n", s.RunID)
	fmt.Fprintf(w, "Events: %d\n", s.TotalEvents)
	fmt.Fprintf(w, "Statements: %d\n", s.Statements)
	fmt.Fprintf(w, "Calls: %d\n", s.FnCalls)
	for _, name := range sortedKeys(s.FnsByName) {
		fmt.Fprintf(w, "  %s: %d\n", name, s.FnsByName[name])
	}
	fmt.Fprintf(w, "Draws: %d\n", s.Draws)
	for _, kind := range sortedKeys(s.DrawsByKind) {
		fmt.Fprintf(w, "  %s: %d\n", kind, s.DrawsByKind[kind])
	}
	fmt.Fprintf(w, "Warnings: %d\n", s.Warnings)
	if s.BudgetExceeded > 0 {
		fmt.Fprintf(w, "Budget exceeded: %d\n", s.BudgetExceeded)
	}
	if s.DurationMs > 0 {
		fmt.Fprintf(w, "Duration: %.0fms\n", s.DurationMs)
	}
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
