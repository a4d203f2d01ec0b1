package beat

// Precedence-climbing parser over the token stream. The ladder matches the
// reference C compiler exactly; getting it wrong makes classic bytebeat codes
// sound subtly broken, so the binding powers below are the single most
// important table in this package.
//
// The parser never aborts. Where it cannot make sense of a token it reports
// into the shared diagnostics sink, resynchronizes at the next token that can
// start or continue an expression, and keeps going so every independent
// problem on the line surfaces in one pass. Subtrees built during recovery
// are placeholders; Compile discards the whole tree when any error was
// recorded.

var infixBindingPower = map[Operator]uint8{
	OpQuestion:   1,
	OpLogOr:      2,
	OpLogAnd:     3,
	OpBitOr:      4,
	OpBitXor:     5,
	OpBitAnd:     6,
	OpEq:         7,
	OpNe:         7,
	OpLt:         8,
	OpLe:         8,
	OpGt:         8,
	OpGe:         8,
	OpShiftLeft:  9,
	OpShiftRight: 9,
	OpAdd:        10,
	OpSub:        10,
	OpMul:        11,
	OpDiv:        11,
	OpMod:        11,
}

// Prefix operators bind tighter than any infix operator.
const prefixBindingPower uint8 = 12

type parser struct {
	tokens []Token
	index  int
	diags  *diagnostics
}

func (p *parser) current() Token {
	return p.tokens[p.index]
}

func (p *parser) advance() {
	if p.index < len(p.tokens)-1 {
		p.index++
	}
}

// parse consumes the whole token stream. Tokens left over after the root
// expression are themselves diagnosed, so input like "1) + (2" reports both
// problems in one pass.
func (p *parser) parse() node {
	root := p.parseExpr(0)
	for p.current().Kind != TokenEOF {
		tok := p.current()
		if tok.Kind == TokenError {
			// Already reported by the lexer.
			p.advance()
			continue
		}

		if tok.Kind == TokenOperator {
			switch tok.Op {
			case OpRParen:
				// parsePrimary may already have complained about this column.
				if !p.diags.reportedAt(tok.Pos) {
					p.diags.errorf(tok.Pos, tok.End, "unmatched ')'")
				}
				p.advance()
				continue

			case OpColon:
				p.diags.errorf(tok.Pos, tok.End, "':' without a matching '?'")
				p.advance()
				// Swallow the would-be else branch so problems inside it are
				// still reported.
				p.parseExpr(0)
				continue

			case OpQuestion:
				// Continuation after something already diagnosed, e.g. a
				// stray ')'. Walk the branches without piling on.
				p.advance()
				p.parseExpr(0)
				if cur := p.current(); cur.Kind == TokenOperator && cur.Op == OpColon {
					p.advance()
					p.parseExpr(0)
				}
				continue
			}

			if _, isInfix := infixBindingPower[tok.Op]; isInfix {
				// Likewise: "t) * 2" has already been diagnosed at the ')';
				// keep checking the right-hand side quietly.
				p.advance()
				p.parseExpr(0)
				continue
			}
		}

		p.diags.errorf(tok.Pos, tok.End, "expected operator, found %s", describeToken(tok))
		// Parse and discard so problems inside the remainder still surface.
		p.parseExpr(0)
	}
	return root
}

func (p *parser) parseExpr(minBP uint8) node {
	left := p.parsePrimary()

	for {
		tok := p.current()
		switch tok.Kind {
		case TokenEOF:
			return left

		case TokenError:
			// Already reported by the lexer. If an expression continues past
			// the bad lexeme, pretend it was an operator so the right-hand
			// side is still checked; otherwise hand control back up.
			p.advance()
			if p.startsExpression(p.current()) {
				right := p.parseExpr(minBP)
				left = &binaryNode{op: OpAdd, left: left, right: right}
				continue
			}
			return left

		case TokenOperator:
			// handled below

		default:
			// A primary where an operator should be, e.g. "1 2". Report it,
			// skip the token, and keep scanning so later independent errors
			// on the line are found too.
			p.diags.errorf(tok.Pos, tok.End, "expected operator, found %s", describeToken(tok))
			p.advance()
			continue
		}

		if tok.Op == OpQuestion {
			bp := infixBindingPower[OpQuestion]
			if bp < minBP {
				return left
			}
			p.advance()
			then := p.parseExpr(0)
			if cur := p.current(); cur.Kind == TokenOperator && cur.Op == OpColon {
				p.advance()
				// Same binding power on the right makes ?: right-associative.
				els := p.parseExpr(bp)
				left = &ternaryNode{cond: left, then: then, els: els}
			} else {
				p.diags.errorf(cur.Pos, cur.End, "expected ':' in ternary expression, found %s", describeToken(cur))
				left = &ternaryNode{cond: left, then: then, els: literalNode(0)}
			}
			continue
		}

		bp, isInfix := infixBindingPower[tok.Op]
		if !isInfix {
			// ')' or ':' closing an enclosing construct, or a stray operator
			// the caller will diagnose.
			return left
		}
		if bp < minBP {
			return left
		}
		p.advance()
		right := p.parseExpr(bp + 1)
		left = &binaryNode{op: tok.Op, left: left, right: right}
	}
}

func (p *parser) parsePrimary() node {
	for {
		tok := p.current()
		switch tok.Kind {
		case TokenNumber:
			p.advance()
			return literalNode(tok.Value)

		case TokenIdent:
			p.advance()
			if tok.Text == "t" {
				return timeNode{}
			}
			// Accepted syntactically to keep recovery simple, but it must
			// not silently reach evaluation.
			p.diags.errorf(tok.Pos, tok.End, "unknown variable %q (only \"t\" is defined)", tok.Text)
			return literalNode(0)

		case TokenError:
			// Already reported by the lexer; stand in a placeholder so the
			// surrounding expression is still checked.
			p.advance()
			return literalNode(0)

		case TokenEOF:
			p.diags.errorf(tok.Pos, tok.End, "unexpected end of expression")
			return literalNode(0)

		case TokenOperator:
			switch tok.Op {
			case OpLParen:
				p.advance()
				inner := p.parseExpr(0)
				if cur := p.current(); cur.Kind == TokenOperator && cur.Op == OpRParen {
					p.advance()
				} else {
					p.diags.errorf(tok.Pos, tok.End, "unclosed '(': expected matching ')'")
				}
				return inner

			case OpSub, OpLogNot, OpBitNot:
				p.advance()
				return &unaryNode{op: tok.Op, operand: p.parseExpr(prefixBindingPower)}

			case OpAdd:
				// Unary plus is a no-op, as in C.
				p.advance()
				return p.parseExpr(prefixBindingPower)

			case OpRParen:
				// Leave the ')' for whichever construct owns it.
				p.diags.errorf(tok.Pos, tok.End, "expected expression before ')'")
				return literalNode(0)
			}

			p.diags.errorf(tok.Pos, tok.End, "expected expression, found %s", describeToken(tok))
			p.advance()
			if !p.synchronize() {
				return literalNode(0)
			}
			continue
		}
	}
}

// synchronize skips forward to the next token that can legally start an
// expression, bounding the error cascade from a single malformed
// subexpression. It reports whether such a token was found; a ')' or EOF
// stops the scan without consuming, since the enclosing construct owns those.
func (p *parser) synchronize() bool {
	for {
		tok := p.current()
		switch tok.Kind {
		case TokenEOF:
			return false
		case TokenNumber, TokenIdent:
			return true
		case TokenOperator:
			switch tok.Op {
			case OpLParen, OpSub, OpLogNot, OpBitNot:
				return true
			case OpRParen:
				return false
			}
		}
		p.advance()
	}
}

func (p *parser) startsExpression(tok Token) bool {
	switch tok.Kind {
	case TokenNumber, TokenIdent:
		return true
	case TokenOperator:
		switch tok.Op {
		case OpLParen, OpAdd, OpSub, OpLogNot, OpBitNot:
			return true
		}
	}
	return false
}
