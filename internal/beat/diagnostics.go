package beat

import (
	"fmt"
	"sort"
	"strings"

	"github.com/samber/lo"
)

type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return fmt.Sprintf("Severity(%d)", int(s))
	}
}

// Diagnostic is one positioned problem found while compiling an expression.
// Pos and End are byte columns into the source line, End exclusive.
type Diagnostic struct {
	Pos      int
	End      int
	Message  string
	Severity Severity
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s at column %d: %s", d.Severity, d.Pos, d.Message)
}

// Diagnostics is the failure result of Compile. It is never empty when
// returned as an error.
type Diagnostics []Diagnostic

func (ds Diagnostics) Error() string {
	return strings.Join(lo.Map(ds, func(d Diagnostic, _ int) string {
		return d.String()
	}), "; ")
}

// Errors returns the subset with SeverityError.
func (ds Diagnostics) Errors() Diagnostics {
	return lo.Filter(ds, func(d Diagnostic, _ int) bool {
		return d.Severity == SeverityError
	})
}

// diagnostics is the shared sink the lexer and parser both report into, so a
// single pass yields one unified list.
type diagnostics struct {
	list []Diagnostic
}

func (d *diagnostics) errorf(pos, end int, format string, args ...any) {
	d.record(Diagnostic{Pos: pos, End: end, Message: fmt.Sprintf(format, args...), Severity: SeverityError})
}

func (d *diagnostics) warnf(pos, end int, format string, args ...any) {
	d.record(Diagnostic{Pos: pos, End: end, Message: fmt.Sprintf(format, args...), Severity: SeverityWarning})
}

func (d *diagnostics) record(diag Diagnostic) {
	// One malformed lexeme tends to be reported from several angles; keep the
	// first report for a given column and message.
	for _, existing := range d.list {
		if existing.Pos == diag.Pos && existing.Message == diag.Message {
			return
		}
	}
	d.list = append(d.list, diag)
}

func (d *diagnostics) reportedAt(pos int) bool {
	for _, diag := range d.list {
		if diag.Pos == pos {
			return true
		}
	}
	return false
}

func (d *diagnostics) hasErrors() bool {
	for _, diag := range d.list {
		if diag.Severity == SeverityError {
			return true
		}
	}
	return false
}

// sorted returns the diagnostics ordered by column, keeping insertion order
// for ties.
func (d *diagnostics) sorted() Diagnostics {
	out := make(Diagnostics, len(d.list))
	copy(out, d.list)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Pos < out[j].Pos
	})
	return out
}
