package xgboost

import (
	"encoding/binary"
	"math"

	"github.com/YuminosukeSato/gbtree/pkg/log"
)

// testNode mirrors a 20-byte node record.
type testNode struct {
	parent int32
	left   int32
	right  int32
	split  uint32
	value  float32
}

func leaf(v float32) testNode {
	return testNode{parent: -1, left: leafMarker, right: leafMarker, value: v}
}

func split(feature uint32, threshold float32, left, right int32, defaultLeft bool) testNode {
	idx := feature
	if defaultLeft {
		idx |= 1 << defaultFlagBit
	}
	return testNode{parent: -1, left: left, right: right, split: idx, value: threshold}
}

type testTree struct {
	nodes          []testNode
	sizeLeafVector int32
	leafVector     []float32
}

// testModel serializes a model in the binary layout Load reads.
type testModel struct {
	baseScore       float32
	objective       string
	booster         string
	numTrees        int32 // 0 means len(trees)
	numFeatures     int32
	numOutputGroups int32
	trees           []testTree
}

// stumpTree splits on feature at threshold into leaves lo and hi, sending
// missing values left.
func stumpTree(feature uint32, threshold, lo, hi float32) testTree {
	return testTree{nodes: []testNode{
		split(feature, threshold, 1, 2, true),
		leaf(lo),
		leaf(hi),
	}}
}

func stumpModel() testModel {
	return testModel{
		baseScore:       0.5,
		objective:       "binary:logistic",
		booster:         "gbtree",
		numFeatures:     2,
		numOutputGroups: 1,
		trees:           []testTree{stumpTree(0, 0.5, 1.0, 2.0)},
	}
}

// headerSize is the byte length of everything before the first tree.
func (m testModel) headerSize() int {
	return 4 + learnerReservedBytes +
		8 + len(m.objective) + 8 + len(m.booster) +
		4 + gbtreePadAfterNumTrees + 4 + gbtreeSkipAfterNumFeature + 4 + gbtreeReservedBytes
}

func (m testModel) encode(order binary.AppendByteOrder) []byte {
	var b []byte
	f32 := func(v float32) { b = order.AppendUint32(b, math.Float32bits(v)) }
	i32 := func(v int32) { b = order.AppendUint32(b, uint32(v)) }
	pad := func(n int) { b = append(b, make([]byte, n)...) }
	str := func(s string) {
		b = order.AppendUint64(b, uint64(len(s)))
		b = append(b, s...)
	}

	f32(m.baseScore)
	pad(learnerReservedBytes)
	str(m.objective)
	str(m.booster)

	numTrees := m.numTrees
	if numTrees == 0 {
		numTrees = int32(len(m.trees))
	}
	i32(numTrees)
	pad(gbtreePadAfterNumTrees)
	i32(m.numFeatures)
	pad(gbtreeSkipAfterNumFeature)
	i32(m.numOutputGroups)
	pad(gbtreeReservedBytes)

	for _, t := range m.trees {
		pad(treeSkipBeforeNumNodes)
		i32(int32(len(t.nodes)))
		pad(treeSkipAfterNumNodes)
		i32(t.sizeLeafVector)
		pad(treeReservedBytes)
		for _, n := range t.nodes {
			i32(n.parent)
			i32(n.left)
			i32(n.right)
			b = order.AppendUint32(b, n.split)
			f32(n.value)
		}
		for range t.nodes {
			// loss_chg, sum_hess, base_weight, leaf_child_cnt
			f32(1.5)
			f32(3)
			f32(-0.25)
			i32(0)
		}
		if t.sizeLeafVector != 0 {
			b = order.AppendUint64(b, uint64(len(t.leafVector)))
			for _, v := range t.leafVector {
				f32(v)
			}
		}
	}
	return b
}

// le encodes little-endian and loads with the matching option, so tests do
// not depend on the host byte order.
func (m testModel) le() []byte {
	return m.encode(binary.LittleEndian)
}

func loadLE(buf []byte, opts ...Option) (*Model, error) {
	return Load(buf, append([]Option{WithByteOrder(binary.LittleEndian), WithLogger(log.Discard())}, opts...)...)
}
