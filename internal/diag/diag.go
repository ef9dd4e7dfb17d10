// Package diag is the compiler's only logging surface: an ordered
// diagnostic accumulator with source positions, mirroring
// internal/handler. There is no separate structured-logging library in
// this repository — every phase reports through this accumulator,
// exactly as internal/handler routes every warning and error through
// its Handler rather than a logger.
package diag

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"

	"github.com/chtl-lang/chtl/internal/loc"
)

// Diagnostic is one reported message (spec.md §4.J).
type Diagnostic struct {
	Severity   loc.Severity
	Code       loc.DiagnosticCode
	Range      loc.Range
	Phase      loc.Phase
	Message    string
	Suggestion string
}

func (d Diagnostic) String() string {
	pos := d.Range.Loc
	file := pos.File
	if file == "" {
		file = "<input>"
	}
	return fmt.Sprintf("%s:%d:%d: %s: %s", file, pos.Line, pos.Column, d.Severity, d.Message)
}

// Handler accumulates diagnostics for a single compilation run and enforces
// the MaxErrors / fatal halting policy described in spec.md §4.J and §7.
type Handler struct {
	MaxErrors int // 0 means unlimited

	diagnostics []Diagnostic
	errorCount  int
	fatal       bool
	seen        map[string]bool // de-duplicated by (position, message) per spec.md §7
}

func NewHandler() *Handler {
	return &Handler{seen: make(map[string]bool)}
}

// Report records a diagnostic. It returns false once a fatal error has been
// recorded or MaxErrors has been exceeded, signaling callers to stop the
// pipeline (spec.md §4.J, §7).
func (h *Handler) Report(d Diagnostic) bool {
	key := fmt.Sprintf("%d:%d:%s", d.Range.Loc.Line, d.Range.Loc.Column, d.Message)
	if h.seen[key] {
		return !h.fatal
	}
	h.seen[key] = true
	h.diagnostics = append(h.diagnostics, d)

	switch d.Severity {
	case loc.SeverityError:
		h.errorCount++
	case loc.SeverityFatal:
		h.fatal = true
	}

	if h.fatal {
		return false
	}
	if h.MaxErrors > 0 && h.errorCount > h.MaxErrors {
		h.diagnostics = append(h.diagnostics, Diagnostic{
			Severity: loc.SeverityFatal,
			Code:     loc.FATAL_MAX_ERRORS,
			Phase:    d.Phase,
			Message:  fmt.Sprintf("error count exceeded maxErrors (%d)", h.MaxErrors),
		})
		h.fatal = true
		return false
	}
	return true
}

func (h *Handler) Errorf(phase loc.Phase, r loc.Range, code loc.DiagnosticCode, format string, args ...interface{}) bool {
	return h.Report(Diagnostic{Severity: loc.SeverityError, Code: code, Range: r, Phase: phase, Message: fmt.Sprintf(format, args...)})
}

func (h *Handler) Warnf(phase loc.Phase, r loc.Range, code loc.DiagnosticCode, format string, args ...interface{}) {
	h.Report(Diagnostic{Severity: loc.SeverityWarning, Code: code, Range: r, Phase: phase, Message: fmt.Sprintf(format, args...)})
}

func (h *Handler) Fatalf(phase loc.Phase, r loc.Range, code loc.DiagnosticCode, format string, args ...interface{}) {
	h.Report(Diagnostic{Severity: loc.SeverityFatal, Code: code, Range: r, Phase: phase, Message: fmt.Sprintf(format, args...)})
}

func (h *Handler) HasErrors() bool {
	return h.errorCount > 0 || h.fatal
}

func (h *Handler) IsFatal() bool { return h.fatal }

func (h *Handler) All() []Diagnostic { return h.diagnostics }

func (h *Handler) ErrorCount() int { return h.errorCount }

func (h *Handler) ByPhase(phase loc.Phase) []Diagnostic {
	var out []Diagnostic
	for _, d := range h.diagnostics {
		if d.Phase == phase {
			out = append(out, d)
		}
	}
	return out
}

// Summary counts messages by severity (spec.md §7 "a final summary lists
// counts by severity").
type Summary struct {
	Errors, Warnings, Infos, Hints int
}

func (h *Handler) Summarize() Summary {
	var s Summary
	for _, d := range h.diagnostics {
		switch d.Severity {
		case loc.SeverityError, loc.SeverityFatal:
			s.Errors++
		case loc.SeverityWarning:
			s.Warnings++
		case loc.SeverityInfo:
			s.Infos++
		default:
			s.Hints++
		}
	}
	return s
}

// Print writes every diagnostic as "file:line:col: kind: message" (spec.md
// §7), colorizing the severity label only when w is a terminal.
func (h *Handler) Print(w io.Writer) {
	color := false
	if f, ok := w.(*os.File); ok {
		color = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	for _, d := range h.diagnostics {
		fmt.Fprintln(w, formatDiagnostic(d, color))
		if d.Suggestion != "" {
			fmt.Fprintf(w, "  help: %s\n", d.Suggestion)
		}
	}
	s := h.Summarize()
	fmt.Fprintf(w, "%d error(s), %d warning(s)\n", s.Errors, s.Warnings)
}

func formatDiagnostic(d Diagnostic, color bool) string {
	if !color {
		return d.String()
	}
	sev := d.Severity.String()
	code := 33
	switch d.Severity {
	case loc.SeverityError, loc.SeverityFatal:
		code = 31
	case loc.SeverityWarning:
		code = 33
	case loc.SeverityInfo:
		code = 36
	}
	pos := d.Range.Loc
	file := pos.File
	if file == "" {
		file = "<input>"
	}
	return fmt.Sprintf("%s:%d:%d: \x1b[%dm%s\x1b[0m: %s", file, pos.Line, pos.Column, code, sev, d.Message)
}
