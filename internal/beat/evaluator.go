package beat

// Arithmetic follows the reference C compiler for 32-bit signed integers:
// two's-complement wraparound on + - *, truncation toward zero for / and %,
// shift counts masked to the low five bits with >> sign-extending, and
// comparison/logical operators yielding 0 or 1. The single deviation is that
// division and modulo by zero evaluate to 0 instead of faulting; the sample
// loop runs in a context where aborting is not an option.

func (n *unaryNode) eval(t int32) int32 {
	v := n.operand.eval(t)
	switch n.op {
	case OpSub:
		return -v
	case OpLogNot:
		return boolToInt32(v == 0)
	case OpBitNot:
		return ^v
	}
	// The parser only builds unary nodes for the three prefix operators.
	return 0
}

func (n *binaryNode) eval(t int32) int32 {
	switch n.op {
	case OpLogAnd:
		if n.left.eval(t) == 0 {
			return 0
		}
		return boolToInt32(n.right.eval(t) != 0)
	case OpLogOr:
		if n.left.eval(t) != 0 {
			return 1
		}
		return boolToInt32(n.right.eval(t) != 0)
	}

	l := n.left.eval(t)
	r := n.right.eval(t)
	switch n.op {
	case OpAdd:
		return l + r
	case OpSub:
		return l - r
	case OpMul:
		return l * r
	case OpDiv:
		if r == 0 {
			return 0
		}
		return l / r
	case OpMod:
		if r == 0 {
			return 0
		}
		return l % r
	case OpBitAnd:
		return l & r
	case OpBitOr:
		return l | r
	case OpBitXor:
		return l ^ r
	case OpShiftLeft:
		return l << (uint32(r) & 31)
	case OpShiftRight:
		return l >> (uint32(r) & 31)
	case OpEq:
		return boolToInt32(l == r)
	case OpNe:
		return boolToInt32(l != r)
	case OpLt:
		return boolToInt32(l < r)
	case OpLe:
		return boolToInt32(l <= r)
	case OpGt:
		return boolToInt32(l > r)
	case OpGe:
		return boolToInt32(l >= r)
	}
	return 0
}

func (n *ternaryNode) eval(t int32) int32 {
	if n.cond.eval(t) != 0 {
		return n.then.eval(t)
	}
	return n.els.eval(t)
}

func boolToInt32(b bool) int32 {
	if b {
		return 1
	}
	return 0
}
