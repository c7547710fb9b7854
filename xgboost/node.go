package xgboost

// Node is a decoded tree node: either a Leaf or a Split.
type Node interface {
	isNode()
}

// Leaf is a terminal node contributing Value to the margin.
type Leaf struct {
	Value float32
}

// Split is an internal node. A present feature goes Left when its value is
// strictly below Threshold and Right otherwise; a missing feature goes to
// Default, which is always Left or Right.
type Split struct {
	Feature   uint32
	Threshold float32
	Left      int
	Right     int
	Default   int
}

func (Leaf) isNode()  {}
func (Split) isNode() {}

// DefaultLeft reports whether missing values are routed to the left child.
func (s Split) DefaultLeft() bool {
	return s.Default == s.Left
}

const (
	leafMarker      = -1
	defaultFlagBit  = 31
	splitIndexMask  = 1<<defaultFlagBit - 1
	nodeRecordBytes = 20
)

// node is the flat in-memory record walked by traversal. value holds the
// leaf value for leaves and the split threshold otherwise.
type node struct {
	left    int32
	right   int32
	def     int32
	feature uint32
	value   float32
}

func (n *node) isLeaf() bool {
	return n.left == leafMarker
}

// newNode resolves the packed split index of a node record. With the top bit
// set the default child is left, with it clear the default child is right.
func newNode(left, right int32, splitIndex uint32, value float32) node {
	def := right
	if splitIndex>>defaultFlagBit != 0 {
		def = left
	}
	return node{
		left:    left,
		right:   right,
		def:     def,
		feature: splitIndex & splitIndexMask,
		value:   value,
	}
}

func (n *node) export() Node {
	if n.isLeaf() {
		return Leaf{Value: n.value}
	}
	return Split{
		Feature:   n.feature,
		Threshold: n.value,
		Left:      int(n.left),
		Right:     int(n.right),
		Default:   int(n.def),
	}
}
