package xgboost

// Model is a decoded tree ensemble. It is immutable after Load and safe for
// concurrent predictions as long as each goroutine uses its own FVec.
type Model struct {
	baseScore       float32
	objective       string
	booster         string
	numFeatures     int
	numOutputGroups int
	trees           []Tree
	maxFeature      int
	size            int
}

// NumTrees returns the number of trees in boosting order.
func (m *Model) NumTrees() int {
	return len(m.trees)
}

// NumFeatures returns the declared input dimensionality. It sizes feature
// vectors and is not enforced during traversal.
func (m *Model) NumFeatures() int {
	return m.numFeatures
}

// BaseScore returns the global bias stored in the model. Predictions do not
// add it.
func (m *Model) BaseScore() float32 {
	return m.baseScore
}

// ObjectiveName returns the object-type tag, e.g. "binary:logistic".
func (m *Model) ObjectiveName() string {
	return m.objective
}

// BoosterName returns the model-type tag, e.g. "gbtree".
func (m *Model) BoosterName() string {
	return m.booster
}

// NumOutputGroups returns the declared number of output groups. Only raw
// single-margin prediction is supported.
func (m *Model) NumOutputGroups() int {
	return m.numOutputGroups
}

// Tree returns tree i in boosting order.
func (m *Model) Tree(i int) *Tree {
	return &m.trees[i]
}

// NewFVec allocates a feature vector sized for the model: at least
// NumFeatures slots, and more if a split reads a feature past it.
func (m *Model) NewFVec() *FVec {
	return NewFVec(m.fvecLen())
}

// fvecLen covers the declared feature count and every split feature.
func (m *Model) fvecLen() int {
	return max(m.numFeatures, m.maxFeature+1)
}

// limit maps a tree limit to the number of trees to evaluate. Zero or a
// negative limit selects every tree; limits past the end are clamped.
func (m *Model) limit(treeLimit int) int {
	if treeLimit <= 0 || treeLimit > len(m.trees) {
		return len(m.trees)
	}
	return treeLimit
}

// PredictLeaf writes, for each of the first treeLimit trees, the id of the
// leaf f reaches into out. treeLimit 0 means all trees. out must hold at
// least that many entries.
func (m *Model) PredictLeaf(f *FVec, treeLimit int, out []uint32) {
	n := m.limit(treeLimit)
	for i := 0; i < n; i++ {
		out[i] = uint32(m.trees[i].LeafIndex(f))
	}
}

// PredictValue returns the sum of the leaf values f reaches in the first
// treeLimit trees, in boosting order. treeLimit 0 means all trees. The result
// is the raw margin: no base score, no objective transform.
func (m *Model) PredictValue(f *FVec, treeLimit int) float32 {
	n := m.limit(treeLimit)
	var sum float32
	for i := 0; i < n; i++ {
		t := &m.trees[i]
		sum += t.LeafValue(t.LeafIndex(f))
	}
	return sum
}
