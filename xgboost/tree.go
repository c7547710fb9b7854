package xgboost

import (
	"fmt"

	"github.com/YuminosukeSato/gbtree/pkg/errors"
)

// Tree is one boosting round. Node 0 is the root.
type Tree struct {
	nodes []node
	// maxFeature is the largest split feature over all internal nodes, -1
	// for a single-leaf tree.
	maxFeature int
}

// NumNodes returns the number of node records, including unreachable ones.
func (t *Tree) NumNodes() int {
	return len(t.nodes)
}

// Node returns node id as a Leaf or a Split.
func (t *Tree) Node(id int) Node {
	return t.nodes[id].export()
}

// LeafIndex walks the tree for f and returns the id of the leaf reached.
func (t *Tree) LeafIndex(f *FVec) int {
	nid := int32(0)
	n := &t.nodes[0]
	for !n.isLeaf() {
		fv := f.data[n.feature]
		switch {
		case fv == 0:
			nid = n.def
		case fv < n.value:
			nid = n.left
		default:
			nid = n.right
		}
		n = &t.nodes[nid]
	}
	return int(nid)
}

// LeafValue returns the value stored at leaf id.
func (t *Tree) LeafValue(id int) float32 {
	return t.nodes[id].value
}

// validate checks that every node reachable from the root has in-range
// children and is reached exactly once, so LeafIndex always terminates.
func (t *Tree) validate(section string, offset int) error {
	n := int32(len(t.nodes))
	seen := make([]bool, n)
	stack := []int32{0}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen[id] {
			return errors.NewMalformedModelError(section, offset,
				fmt.Sprintf("node %d is reachable more than once", id))
		}
		seen[id] = true

		nd := &t.nodes[id]
		if nd.isLeaf() {
			continue
		}
		for _, child := range [2]int32{nd.left, nd.right} {
			if child < 0 || child >= n {
				return errors.NewMalformedModelError(section, offset,
					fmt.Sprintf("node %d has child %d outside [0, %d)", id, child, n))
			}
			stack = append(stack, child)
		}
	}
	return nil
}
