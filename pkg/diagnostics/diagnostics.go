// Package diagnostics defines diagnostic types for parse, validation and runtime errors.
package diagnostics

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dmitrycvs/C-DSL/pkg/ast"
)

// Diagnostic code constants.
const (
	ELex              = "E_LEX"
	EParse            = "E_PARSE"
	EAst              = "E_AST"
	EArith            = "E_ARITH"
	EType             = "E_TYPE"
	EArgs             = "E_ARGS"
	EBudget           = "E_BUDGET"
	ECancelled        = "E_CANCELLED"
	ECallDepth        = "E_CALL_DEPTH"
	EDupParam         = "E_DUP_PARAM"
	EPolygonVertices  = "E_POLYGON_VERTICES"
	EIO               = "E_IO"
	EConfig           = "E_CONFIG"
	WUnknownFn        = "W_UNKNOWN_FN"
	WUnknownShape     = "W_UNKNOWN_SHAPE"
	WUnsupportedShape = "W_UNSUPPORTED_SHAPE_OP"
)

// Severity distinguishes diagnostics that stop a run from advisory ones.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Diagnostic represents a parse, validation, or runtime diagnostic.
type Diagnostic struct {
	Code     string    `json:"code"`
	Severity Severity  `json:"severity"`
	Message  string    `json:"message"`
	Span     *ast.Span `json:"span,omitempty"`
	Hint     string    `json:"hint,omitempty"`
}

// MakeDiag creates a new error Diagnostic.
func MakeDiag(code, message string, span *ast.Span, hint string) Diagnostic {
	return Diagnostic{
		Code:     code,
		Severity: SeverityError,
		Message:  message,
		Span:     span,
		Hint:     hint,
	}
}

// MakeWarning creates a new warning Diagnostic.
func MakeWarning(code, message string, span *ast.Span) Diagnostic {
	return Diagnostic{
		Code:     code,
		Severity: SeverityWarning,
		Message:  message,
		Span:     span,
	}
}

// IsError reports whether the diagnostic blocks execution.
func (d Diagnostic) IsError() bool {
	return d.Severity != SeverityWarning
}

// Errors returns only the blocking diagnostics.
func Errors(diags []Diagnostic) []Diagnostic {
	var out []Diagnostic
	for _, d := range diags {
		if d.IsError() {
			out = append(out, d)
		}
	}
	return out
}

// FormatDiagnostic formats a single diagnostic for display.
func FormatDiagnostic(d Diagnostic, pretty bool) string {
	if !pretty {
		b, _ := json.Marshal(d)
		return string(b)
	}
	loc := "<unknown>"
	if d.Span != nil {
		loc = fmt.Sprintf("%s:%d:%d", d.Span.File, d.Span.StartLine, d.Span.StartCol)
	}
	label := "error"
	if d.Severity == SeverityWarning {
		label = "warning"
	}
	out := fmt.Sprintf("%s[%s]: %s\n  --> %s", label, d.Code, d.Message, loc)
	if d.Hint != "" {
		out += fmt.Sprintf("\n  hint: %s", d.Hint)
	}
	return out
}

// FormatDiagnostics formats a slice of diagnostics for display.
func FormatDiagnostics(diags []Diagnostic, pretty bool) string {
	if !pretty {
		b, _ := json.Marshal(diags)
		return string(b)
	}
	parts := make([]string, len(diags))
	for i, d := range diags {
		parts[i] = FormatDiagnostic(d, true)
	}
	return strings.Join(parts, "\n\n")
}
