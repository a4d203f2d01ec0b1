// Package beat compiles single-line, C-flavored integer expressions over the
// time variable t into programs that generate one unsigned 8-bit audio sample
// per tick.
//
// Compile is a total function: it returns either a usable Program or a
// non-empty Diagnostics list, never a partial tree and never a panic. A
// Program is immutable and its Sample method is pure, stateless and
// allocation-free, so it can be called once per output sample from a
// latency-sensitive loop and swapped out atomically when the source changes.
package beat

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/k0kubun/pp"
)

var compileDebugLog = false

func init() {
	if v, err := strconv.ParseBool(os.Getenv("BYTEBEAT_EXPRESSION_DEBUG")); v && err == nil {
		compileDebugLog = true
	}
}

// Program is a compiled bytebeat expression.
type Program struct {
	source   string
	root     node
	warnings Diagnostics
}

// Compile parses source and returns an evaluable Program. On failure the
// returned error is always a Diagnostics value holding every problem found
// in one pass, ordered by source column. Blank source compiles to a silent
// program.
func Compile(source string) (*Program, error) {
	if strings.TrimSpace(source) == "" {
		return &Program{source: source}, nil
	}

	var diags diagnostics
	tokens := tokenize(source, &diags)
	p := &parser{tokens: tokens, diags: &diags}
	root := p.parse()

	if compileDebugLog {
		pp.Println(source)
		log.Println(render(root))
	}

	if diags.hasErrors() {
		// Partial trees assembled during recovery are discarded, not served.
		return nil, diags.sorted()
	}

	return &Program{
		source:   source,
		root:     root,
		warnings: diags.sorted(),
	}, nil
}

// Sample evaluates the program at time t and truncates the 32-bit result to
// its low 8 bits. The truncation happens exactly once, here.
func (p *Program) Sample(t int32) uint8 {
	if p == nil || p.root == nil {
		return 0
	}
	return uint8(p.root.eval(t))
}

// Source returns the expression text the program was compiled from.
func (p *Program) Source() string {
	return p.source
}

// Warnings returns non-fatal diagnostics recorded during compilation, such
// as literals that wrap in 32-bit arithmetic.
func (p *Program) Warnings() Diagnostics {
	return p.warnings
}

func (p *Program) String() string {
	return p.source
}
