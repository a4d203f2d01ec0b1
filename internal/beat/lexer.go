package beat

import "math"

// lexer scans a single line of bytebeat source into tokens. It never fails:
// input it cannot tokenize becomes TokenError tokens (reported into the
// shared diagnostics sink) and scanning continues with the next byte, so the
// stream always ends with TokenEOF.
type lexer struct {
	source string
	index  int
	diags  *diagnostics
}

func tokenize(source string, diags *diagnostics) []Token {
	l := &lexer{source: source, diags: diags}
	var tokens []Token
	for {
		tok := l.next()
		tokens = append(tokens, tok)
		if tok.Kind == TokenEOF {
			return tokens
		}
	}
}

func (l *lexer) next() Token {
	for l.index < len(l.source) && (l.source[l.index] == ' ' || l.source[l.index] == '\t') {
		l.index++
	}
	if l.index == len(l.source) {
		return Token{Kind: TokenEOF, Pos: l.index, End: l.index}
	}

	start := l.index
	c := l.source[l.index]
	switch {
	case c == '\n' || c == '\r':
		// The grammar is strictly single-line; reject instead of silently
		// consuming so the column report stays meaningful.
		l.index++
		l.diags.errorf(start, start+1, "expression must be a single line")
		return Token{Kind: TokenError, Text: l.source[start:l.index], Pos: start, End: l.index}

	case c >= '0' && c <= '9':
		return l.lexNumber()

	case isIdentStart(c):
		for l.index < len(l.source) && isIdentCont(l.source[l.index]) {
			l.index++
		}
		return Token{Kind: TokenIdent, Text: l.source[start:l.index], Pos: start, End: l.index}
	}

	l.index++
	switch c {
	case '+':
		return l.operator(OpAdd, start)
	case '-':
		return l.operator(OpSub, start)
	case '*':
		return l.operator(OpMul, start)
	case '/':
		return l.operator(OpDiv, start)
	case '%':
		return l.operator(OpMod, start)
	case '^':
		return l.operator(OpBitXor, start)
	case '~':
		return l.operator(OpBitNot, start)
	case '?':
		return l.operator(OpQuestion, start)
	case ':':
		return l.operator(OpColon, start)
	case '(':
		return l.operator(OpLParen, start)
	case ')':
		return l.operator(OpRParen, start)
	case '&':
		if l.accept('&') {
			return l.operator(OpLogAnd, start)
		}
		return l.operator(OpBitAnd, start)
	case '|':
		if l.accept('|') {
			return l.operator(OpLogOr, start)
		}
		return l.operator(OpBitOr, start)
	case '!':
		if l.accept('=') {
			return l.operator(OpNe, start)
		}
		return l.operator(OpLogNot, start)
	case '<':
		if l.accept('<') {
			return l.operator(OpShiftLeft, start)
		}
		if l.accept('=') {
			return l.operator(OpLe, start)
		}
		return l.operator(OpLt, start)
	case '>':
		if l.accept('>') {
			return l.operator(OpShiftRight, start)
		}
		if l.accept('=') {
			return l.operator(OpGe, start)
		}
		return l.operator(OpGt, start)
	case '=':
		if l.accept('=') {
			return l.operator(OpEq, start)
		}
		l.diags.errorf(start, l.index, "'=' is not an operator here (did you mean '==')")
		return Token{Kind: TokenError, Text: "=", Pos: start, End: l.index}
	}

	l.diags.errorf(start, l.index, "unexpected character %q", string(c))
	return Token{Kind: TokenError, Text: l.source[start:l.index], Pos: start, End: l.index}
}

func (l *lexer) operator(op Operator, start int) Token {
	return Token{Kind: TokenOperator, Op: op, Pos: start, End: l.index}
}

func (l *lexer) accept(c byte) bool {
	if l.index < len(l.source) && l.source[l.index] == c {
		l.index++
		return true
	}
	return false
}

// lexNumber scans an integer literal with C base syntax: 0x/0X hex, 0b/0B
// binary, leading 0 octal, plain decimal. Values wrap into int32 with
// two's-complement truncation; a literal that loses bits is reported as a
// warning, not rejected.
func (l *lexer) lexNumber() Token {
	start := l.index
	base := 10
	if l.source[l.index] == '0' {
		l.index++
		if l.index < len(l.source) {
			switch c := l.source[l.index]; {
			case c == 'x' || c == 'X':
				base = 16
				l.index++
			case c == 'b' || c == 'B':
				base = 2
				l.index++
			case c >= '0' && c <= '9':
				base = 8
			}
		}
		if base == 10 {
			return Token{Kind: TokenNumber, Value: 0, Base: 10, Pos: start, End: l.index}
		}
	}

	digitsStart := l.index
	var acc uint64
	truncated := false
	for l.index < len(l.source) {
		d, ok := digitValue(l.source[l.index], base)
		if !ok {
			break
		}
		acc = acc*uint64(base) + uint64(d)
		if acc > math.MaxUint32 {
			truncated = true
			acc &= math.MaxUint32
		}
		l.index++
	}

	if l.index == digitsStart {
		// 0x with no hex digits, 0b2, 089 and the like. Swallow the whole
		// alphanumeric run so one bad literal yields one diagnostic.
		for l.index < len(l.source) && isIdentCont(l.source[l.index]) {
			l.index++
		}
		text := l.source[start:l.index]
		l.diags.errorf(start, l.index, "invalid base %d literal %q", base, text)
		return Token{Kind: TokenError, Text: text, Pos: start, End: l.index}
	}

	value := int32(uint32(acc))
	if truncated || (base == 10 && acc > math.MaxInt32) {
		l.diags.warnf(start, l.index, "literal %q wraps to %d in 32-bit arithmetic", l.source[start:l.index], value)
	}
	return Token{Kind: TokenNumber, Value: value, Base: base, Pos: start, End: l.index}
}

func digitValue(c byte, base int) (int, bool) {
	var v int
	switch {
	case c >= '0' && c <= '9':
		v = int(c - '0')
	case c >= 'a' && c <= 'f':
		v = int(c-'a') + 10
	case c >= 'A' && c <= 'F':
		v = int(c-'A') + 10
	default:
		return 0, false
	}
	if v >= base {
		return 0, false
	}
	return v, true
}

func isIdentStart(c byte) bool {
	return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') || c == '_'
}

func isIdentCont(c byte) bool {
	return isIdentStart(c) || ('0' <= c && c <= '9')
}
