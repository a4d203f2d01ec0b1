package beat

import (
	"fmt"
	"strconv"
)

// node is one vertex of a compiled expression tree. Trees are built once by
// the parser and never mutated afterwards, so a *Program can be handed to
// another goroutine with a plain atomic swap.
//
// eval runs in the audio hot path: implementations must not allocate and must
// not fail.
type node interface {
	eval(t int32) int32
}

type literalNode int32

func (n literalNode) eval(int32) int32 {
	return int32(n)
}

// timeNode is the single free variable t.
type timeNode struct{}

func (timeNode) eval(t int32) int32 {
	return t
}

type unaryNode struct {
	op      Operator // OpSub, OpLogNot or OpBitNot
	operand node
}

type binaryNode struct {
	op          Operator
	left, right node
}

type ternaryNode struct {
	cond, then, els node
}

// render formats a tree as an s-expression for debug output and structural
// assertions in tests.
func render(n node) string {
	switch n := n.(type) {
	case nil:
		return "nil"
	case literalNode:
		return strconv.FormatInt(int64(n), 10)
	case timeNode:
		return "t"
	case *unaryNode:
		return fmt.Sprintf("(%s %s)", n.op, render(n.operand))
	case *binaryNode:
		return fmt.Sprintf("(%s %s %s)", n.op, render(n.left), render(n.right))
	case *ternaryNode:
		return fmt.Sprintf("(?: %s %s %s)", render(n.cond), render(n.then), render(n.els))
	default:
		return fmt.Sprintf("unknown(%T)", n)
	}
}
