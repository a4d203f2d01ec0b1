package beat

import "fmt"

type TokenKind int

const (
	TokenNumber TokenKind = iota
	TokenIdent
	TokenOperator
	// TokenError carries input the lexer could not tokenize. The lexer has
	// already reported it; the parser only has to skip over it.
	TokenError
	TokenEOF
)

func (k TokenKind) String() string {
	switch k {
	case TokenNumber:
		return "number"
	case TokenIdent:
		return "identifier"
	case TokenOperator:
		return "operator"
	case TokenError:
		return "error"
	case TokenEOF:
		return "end of expression"
	default:
		return fmt.Sprintf("TokenKind(%d)", int(k))
	}
}

type Operator int

const (
	OpAdd Operator = iota
	OpSub
	OpMul
	OpDiv
	OpMod
	OpBitAnd
	OpBitOr
	OpBitXor
	OpBitNot
	OpShiftLeft
	OpShiftRight
	OpLogAnd
	OpLogOr
	OpLogNot
	OpEq
	OpNe
	OpLt
	OpLe
	OpGt
	OpGe
	OpQuestion
	OpColon
	OpLParen
	OpRParen
)

var operatorText = map[Operator]string{
	OpAdd:        "+",
	OpSub:        "-",
	OpMul:        "*",
	OpDiv:        "/",
	OpMod:        "%",
	OpBitAnd:     "&",
	OpBitOr:      "|",
	OpBitXor:     "^",
	OpBitNot:     "~",
	OpShiftLeft:  "<<",
	OpShiftRight: ">>",
	OpLogAnd:     "&&",
	OpLogOr:      "||",
	OpLogNot:     "!",
	OpEq:         "==",
	OpNe:         "!=",
	OpLt:         "<",
	OpLe:         "<=",
	OpGt:         ">",
	OpGe:         ">=",
	OpQuestion:   "?",
	OpColon:      ":",
	OpLParen:     "(",
	OpRParen:     ")",
}

func (o Operator) String() string {
	if s, ok := operatorText[o]; ok {
		return s
	}
	return fmt.Sprintf("Operator(%d)", int(o))
}

// Token is one lexeme of a bytebeat expression. Pos and End are byte columns
// into the source line; End points one past the last byte so Pos..End-1 is
// the underline range for diagnostics.
type Token struct {
	Kind  TokenKind
	Op    Operator // valid when Kind == TokenOperator
	Value int32    // valid when Kind == TokenNumber
	Base  int      // literal base (2, 8, 10, 16) when Kind == TokenNumber
	Text  string   // lexeme for TokenIdent and TokenError
	Pos   int
	End   int
}

func describeToken(tok Token) string {
	switch tok.Kind {
	case TokenNumber:
		return fmt.Sprintf("number %d", tok.Value)
	case TokenIdent:
		return fmt.Sprintf("identifier %q", tok.Text)
	case TokenOperator:
		return fmt.Sprintf("%q", tok.Op.String())
	case TokenError:
		return fmt.Sprintf("%q", tok.Text)
	default:
		return tok.Kind.String()
	}
}
