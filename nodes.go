package safecalc

import (
	"strconv"
	"strings"
)

// node is a node in the abstract syntax tree of an expression. Which fields
// are meaningful depends on kind.
type node struct {
	kind nodeKind

	// name is the identifier for nodeName and nodeCall, or the source text
	// of a nodeNum.
	name string
	// num is the value of a nodeNum.
	num float64

	// args are the arguments of a nodeCall.
	args []*node

	left  *node
	right *node
}

type nodeKind int8

const (
	nodeNone nodeKind = iota

	nodeNum  // push num
	nodeName // push lookup(name)
	nodeCall // evaluate args, push call(name, args)

	nodeNeg // evaluate left, then negate
	nodeAdd // evaluate left, add right
	nodeSub // evaluate left, sub right
	nodeMul // evaluate left, mul right
	nodeDiv // evaluate left, div by right
	nodePow // evaluate left, exp by right
)

var nodeKindNames = [...]string{
	nodeNone: "None",
	nodeNum:  "Num",
	nodeName: "Name",
	nodeCall: "Call",
	nodeNeg:  "Neg",
	nodeAdd:  "Add",
	nodeSub:  "Sub",
	nodeMul:  "Mul",
	nodeDiv:  "Div",
	nodePow:  "Pow",
}

func (k nodeKind) String() string {
	if k < 0 || int(k) >= len(nodeKindNames) {
		return "nodeKind(" + strconv.Itoa(int(k)) + ")"
	}
	return nodeKindNames[k]
}

func (n *node) String() string {
	var b strings.Builder
	n.fmt(&b)
	return b.String()
}

// fmt writes n fully parenthesized. The output parses to the same tree.
func (n *node) fmt(b *strings.Builder) {
	b.WriteByte('(')
	defer b.WriteByte(')')
	switch n.kind {
	case nodeNone:
		// Invalid nodes use invalid characters.
		b.WriteByte('$')
		if n.left != nil {
			n.left.fmt(b)
		}
		b.WriteByte('#')
		if n.right != nil {
			n.right.fmt(b)
		}
		b.WriteByte('$')
	case nodeNum, nodeName:
		b.WriteString(n.name)
	case nodeCall:
		b.WriteString(n.name)
		b.WriteByte('(')
		for i, arg := range n.args {
			if i > 0 {
				b.WriteString(", ")
			}
			arg.fmt(b)
		}
		b.WriteByte(')')
	case nodeNeg:
		b.WriteByte('-')
		n.left.fmt(b)
	case nodeAdd:
		n.left.fmt(b)
		b.WriteString(" + ")
		n.right.fmt(b)
	case nodeSub:
		n.left.fmt(b)
		b.WriteString(" - ")
		n.right.fmt(b)
	case nodeMul:
		n.left.fmt(b)
		b.WriteString(" * ")
		n.right.fmt(b)
	case nodeDiv:
		n.left.fmt(b)
		b.WriteString(" / ")
		n.right.fmt(b)
	case nodePow:
		n.left.fmt(b)
		b.WriteString(" ^ ")
		n.right.fmt(b)
	default:
		panic("safecalc: invalid node kind " + n.kind.String() + " after writing " + b.String())
	}
}
