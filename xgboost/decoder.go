package xgboost

import (
	"encoding/binary"
	"fmt"
	"math"
	"unicode/utf8"

	"github.com/YuminosukeSato/gbtree/pkg/errors"
	"github.com/YuminosukeSato/gbtree/pkg/log"
)

// Reserved and padding regions of the binary layout. They carry nothing today
// but every later offset depends on their sizes.
const (
	learnerReservedBytes = 33 * 4 // after base_score

	gbtreePadAfterNumTrees    = 4
	gbtreeSkipAfterNumFeature = 12
	gbtreeReservedBytes       = 33 * 4 // after num_output_group

	treeSkipBeforeNumNodes = 4
	treeSkipAfterNumNodes  = 12
	treeReservedBytes      = 31 * 4 // after size_leaf_vector

	nodeStatBytes = 3*4 + 4 // loss_chg, sum_hess, base_weight, leaf_child_cnt
)

// reader walks a buffer front to back. The first failed read records a
// MalformedModelError and turns every later read into a no-op returning zero,
// so callers check err once per section.
type reader struct {
	buf     []byte
	off     int
	base    int // absolute offset of buf[0], for error reporting
	order   binary.ByteOrder
	section string
	err     error
}

func newReader(buf []byte, base int, order binary.ByteOrder, section string) *reader {
	return &reader{buf: buf, base: base, order: order, section: section}
}

func (r *reader) remaining() int {
	return len(r.buf) - r.off
}

func (r *reader) fail(field, reason string) {
	if r.err == nil {
		r.err = errors.NewMalformedModelError(r.section+"."+field, r.base+r.off, reason)
	}
}

func (r *reader) take(field string, n int) []byte {
	if r.err != nil {
		return nil
	}
	if n < 0 || n > r.remaining() {
		r.fail(field, fmt.Sprintf("need %d bytes, %d left", n, r.remaining()))
		return nil
	}
	b := r.buf[r.off : r.off+n]
	r.off += n
	return b
}

func (r *reader) skip(field string, n int) {
	r.take(field, n)
}

func (r *reader) uint32(field string) uint32 {
	b := r.take(field, 4)
	if b == nil {
		return 0
	}
	return r.order.Uint32(b)
}

func (r *reader) int32(field string) int32 {
	return int32(r.uint32(field))
}

func (r *reader) float32(field string) float32 {
	return math.Float32frombits(r.uint32(field))
}

func (r *reader) uint64(field string) uint64 {
	b := r.take(field, 8)
	if b == nil {
		return 0
	}
	return r.order.Uint64(b)
}

// string reads a u64 length followed by that many UTF-8 bytes.
func (r *reader) string(field string) string {
	n := r.uint64(field + ".len")
	if r.err != nil {
		return ""
	}
	if n > uint64(r.remaining()) {
		r.fail(field, fmt.Sprintf("string length %d exceeds %d remaining bytes", n, r.remaining()))
		return ""
	}
	b := r.take(field, int(n))
	if !utf8.Valid(b) {
		r.fail(field, "invalid UTF-8")
		return ""
	}
	return string(b)
}

// header is everything before the first tree section.
type header struct {
	baseScore       float32
	objective       string
	booster         string
	numTrees        int32
	numFeatures     int32
	numOutputGroups int32
}

func decodeHeader(r *reader, logger log.Logger) (header, error) {
	var h header

	r.section = "learner_param"
	h.baseScore = r.float32("base_score")
	r.skip("reserved", learnerReservedBytes)

	r.section = "tags"
	h.objective = r.string("name_obj")
	h.booster = r.string("name_gbm")

	r.section = "gbtree_param"
	h.numTrees = r.int32("num_trees")
	if r.err == nil && h.numTrees <= 0 {
		r.off -= 4
		r.fail("num_trees", fmt.Sprintf("must be positive, got %d", h.numTrees))
	}
	r.skip("pad", gbtreePadAfterNumTrees)
	h.numFeatures = r.int32("num_features")
	if r.err == nil && h.numFeatures <= 0 {
		r.off -= 4
		r.fail("num_features", fmt.Sprintf("must be positive, got %d", h.numFeatures))
	}
	r.skip("pad", gbtreeSkipAfterNumFeature)
	h.numOutputGroups = r.int32("num_output_group")
	r.skip("reserved", gbtreeReservedBytes)
	if r.err != nil {
		return header{}, r.err
	}

	logger.Debug("decoded model header",
		log.BaseScoreKey, h.baseScore,
		log.ObjectiveKey, h.objective,
		log.BoosterKey, h.booster,
		log.NumTreesKey, h.numTrees,
		log.FeaturesKey, h.numFeatures,
		log.OutputGroupsKey, h.numOutputGroups,
	)
	if h.numOutputGroups > 1 {
		errors.Warn(errors.NewIgnoredSectionWarning("gbtree_param.num_output_group",
			fmt.Sprintf("model declares %d output groups, predictions sum every tree into one margin", h.numOutputGroups), 0))
	}
	return h, nil
}

// decodeTree parses one tree section from the start of buf and returns the
// tree together with the number of bytes it occupied. base is the absolute
// offset of buf[0] in the model buffer.
func decodeTree(buf []byte, base, index int, cfg *loadConfig) (Tree, int, error) {
	section := fmt.Sprintf("tree[%d]", index)
	r := newReader(buf, base, cfg.order, section+".param")

	r.skip("pad", treeSkipBeforeNumNodes)
	numNodes := r.int32("num_nodes")
	r.skip("pad", treeSkipAfterNumNodes)
	sizeLeafVector := r.int32("size_leaf_vector")
	r.skip("reserved", treeReservedBytes)
	if r.err != nil {
		return Tree{}, 0, r.err
	}
	if numNodes <= 0 {
		return Tree{}, 0, errors.NewMalformedModelError(section+".num_nodes", base+4,
			fmt.Sprintf("must be positive, got %d", numNodes))
	}
	cfg.logger.Debug("decoded tree header",
		log.TreeIndexKey, index,
		log.NumNodesKey, numNodes,
		log.LeafVectorKey, sizeLeafVector,
	)

	// Check the whole node block up front so a bogus count cannot drive a
	// huge allocation.
	r.section = section + ".nodes"
	if int(numNodes) > r.remaining()/nodeRecordBytes {
		r.fail("records", fmt.Sprintf("%d nodes need %d bytes, %d left",
			numNodes, int64(numNodes)*nodeRecordBytes, r.remaining()))
		return Tree{}, 0, r.err
	}
	nodes := make([]node, numNodes)
	maxFeature := -1
	for i := range nodes {
		nodes[i] = decodeNode(r.take("record", nodeRecordBytes), cfg.order)
		if !nodes[i].isLeaf() {
			maxFeature = max(maxFeature, int(nodes[i].feature))
		}
	}

	r.section = section + ".stats"
	if int(numNodes) > r.remaining()/nodeStatBytes {
		r.fail("records", fmt.Sprintf("%d stats need %d bytes, %d left",
			numNodes, int64(numNodes)*nodeStatBytes, r.remaining()))
		return Tree{}, 0, r.err
	}
	r.skip("records", int(numNodes)*nodeStatBytes)

	if sizeLeafVector != 0 {
		r.section = section + ".leaf_vector"
		n := r.uint64("len")
		if r.err == nil && n > 0 {
			if n > uint64(r.remaining()/4) {
				r.fail("data", fmt.Sprintf("%d floats exceed %d remaining bytes", n, r.remaining()))
			} else {
				r.skip("data", int(n)*4)
				errors.Warn(errors.NewIgnoredSectionWarning(section+".leaf_vector",
					"multi-value leaf vectors are not interpreted", int(n)*4))
			}
		}
	}
	if r.err != nil {
		return Tree{}, 0, r.err
	}

	t := Tree{nodes: nodes, maxFeature: maxFeature}
	if cfg.validate {
		if err := t.validate(section+".nodes", base); err != nil {
			return Tree{}, 0, err
		}
	}
	return t, r.off, nil
}

// decodeNode decodes one 20-byte node record:
// parent, cleft, cright (int32), split index (uint32), value (float32).
func decodeNode(b []byte, order binary.ByteOrder) node {
	_ = b[nodeRecordBytes-1]
	// b[0:4] is the parent id; traversal never walks upwards.
	left := int32(order.Uint32(b[4:8]))
	right := int32(order.Uint32(b[8:12]))
	splitIndex := order.Uint32(b[12:16])
	value := math.Float32frombits(order.Uint32(b[16:20]))
	return newNode(left, right, splitIndex, value)
}

// decodeModel parses a complete model buffer.
func decodeModel(buf []byte, cfg *loadConfig) (*Model, error) {
	r := newReader(buf, 0, cfg.order, "")
	h, err := decodeHeader(r, cfg.logger)
	if err != nil {
		return nil, err
	}

	trees := make([]Tree, 0, min(int(h.numTrees), r.remaining()/minTreeBytes+1))
	off := r.off
	maxFeature := -1
	for i := 0; i < int(h.numTrees); i++ {
		t, n, err := decodeTree(buf[off:], off, i, cfg)
		if err != nil {
			return nil, err
		}
		trees = append(trees, t)
		maxFeature = max(maxFeature, t.maxFeature)
		off += n
	}
	if maxFeature >= int(h.numFeatures) {
		cfg.logger.Debug("split feature beyond declared feature count",
			log.FeaturesKey, h.numFeatures,
			log.MaxSplitFeatureKey, maxFeature,
		)
	}

	return &Model{
		baseScore:       h.baseScore,
		objective:       h.objective,
		booster:         h.booster,
		numFeatures:     int(h.numFeatures),
		numOutputGroups: int(h.numOutputGroups),
		trees:           trees,
		maxFeature:      maxFeature,
		size:            off,
	}, nil
}

// minTreeBytes is the smallest possible tree section: the tree parameters
// plus one node record and its statistics.
const minTreeBytes = treeSkipBeforeNumNodes + 4 + treeSkipAfterNumNodes + 4 + treeReservedBytes +
	nodeRecordBytes + nodeStatBytes
