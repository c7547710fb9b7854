package xgboost

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/YuminosukeSato/gbtree/dataset/libsvm"
	"github.com/YuminosukeSato/gbtree/pkg/log"
)

// randomMatrix draws rows x cols standard normal values and zeroes about a
// fifth of them so the missing path is exercised.
func randomMatrix(rows, cols int) *mat.Dense {
	normal := distuv.Normal{Mu: 0, Sigma: 1}
	uniform := distuv.Uniform{Min: 0, Max: 1}
	X := mat.NewDense(rows, cols, nil)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			if uniform.Rand() < 0.2 {
				continue
			}
			X.Set(i, j, normal.Rand())
		}
	}
	return X
}

func sequentialMargins(m *Model, X mat.Matrix, limit int) []float64 {
	rows, cols := X.Dims()
	out := make([]float64, rows)
	f := NewFVec(max(cols, m.NumFeatures()))
	row := make([]float64, cols)
	for i := 0; i < rows; i++ {
		mat.Row(row, i, X)
		f.Fill(row)
		out[i] = float64(m.PredictValue(f, limit))
	}
	return out
}

func TestPredictor_PredictBatch(t *testing.T) {
	m, err := loadLE(threeTreeModel().le())
	require.NoError(t, err)

	X := randomMatrix(500, 2)
	want := sequentialMargins(m, X, 0)

	for _, threads := range []int{1, 3, 8} {
		p := NewPredictor(m, WithNumThreads(threads), WithParallelThreshold(16),
			WithPredictorLogger(log.Discard()))
		got, err := p.PredictBatch(X)
		require.NoError(t, err)
		assert.Equal(t, want, got.RawVector().Data, "threads=%d", threads)
	}
}

func TestPredictor_TreeLimit(t *testing.T) {
	m, err := loadLE(threeTreeModel().le())
	require.NoError(t, err)

	X := mat.NewDense(2, 2, []float64{
		0.9, 0.1,
		0.2, 0.7,
	})
	p := NewPredictor(m, WithTreeLimit(2), WithPredictorLogger(log.Discard()))
	assert.Equal(t, 2, p.TreeLimit())

	got, err := p.PredictBatch(X)
	require.NoError(t, err)
	assert.Equal(t, []float64{22, 11}, got.RawVector().Data)

	leaves, err := p.PredictLeafBatch(X)
	require.NoError(t, err)
	r, c := leaves.Dims()
	assert.Equal(t, 2, r)
	assert.Equal(t, 2, c)
	assert.Equal(t, []float64{2, 2, 1, 1}, leaves.RawMatrix().Data)
}

func TestPredictor_NaNIsMissing(t *testing.T) {
	tm := stumpModel()
	tm.trees[0].nodes[0] = split(0, 0.5, 1, 2, false)
	m, err := loadLE(tm.le())
	require.NoError(t, err)

	X := mat.NewDense(3, 1, []float64{math.NaN(), 0, 0.1})
	got, err := NewPredictor(m, WithPredictorLogger(log.Discard())).PredictBatch(X)
	require.NoError(t, err)
	assert.Equal(t, []float64{2, 2, 1}, got.RawVector().Data)
}

func TestPredictor_NarrowInput(t *testing.T) {
	// Fewer columns than the model declares: the absent features are missing.
	m, err := loadLE(threeTreeModel().le())
	require.NoError(t, err)

	X := mat.NewDense(1, 1, []float64{0.9})
	got, err := NewPredictor(m, WithPredictorLogger(log.Discard())).PredictBatch(X)
	require.NoError(t, err)
	assert.Equal(t, []float64{2 + 20 + 100}, got.RawVector().Data)
}

func TestPredictor_PredictRecords(t *testing.T) {
	m, err := loadLE(threeTreeModel().le())
	require.NoError(t, err)

	input := strings.Join([]string{
		"1 0:0.9 1:0.1",
		"0 1:0.7",
		"# comment",
		"",
		"1 qid:3 0:0.2 5:4",
	}, "\n")
	records, err := libsvm.Parse(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, records, 3)

	p := NewPredictor(m, WithNumThreads(2), WithParallelThreshold(1), WithPredictorLogger(log.Discard()))
	got, err := p.PredictRecords(records)
	require.NoError(t, err)
	// Row 2 sets index 5, past NumFeatures, which no split reads.
	assert.Equal(t, []float32{122, 1 + 10 + 200, 1 + 10 + 100}, got)
}

func TestPredictor_NilModel(t *testing.T) {
	p := NewPredictor(nil, WithPredictorLogger(log.Discard()))
	_, err := p.PredictBatch(mat.NewDense(1, 1, nil))
	assert.Error(t, err)
	_, err = p.PredictLeafBatch(mat.NewDense(1, 1, nil))
	assert.Error(t, err)
	_, err = p.PredictRecords(nil)
	assert.Error(t, err)
}

func TestPredictor_LogsBatch(t *testing.T) {
	m, err := loadLE(stumpModel().le())
	require.NoError(t, err)
	logger, _ := log.NewTestLogger(log.LevelDebug)

	p := NewPredictor(m, WithNumThreads(2), WithPredictorLogger(logger))
	_, err = p.PredictBatch(randomMatrix(10, 2))
	require.NoError(t, err)

	assert.True(t, logger.ContainsMessage("batch predicted"))
	assert.True(t, logger.ContainsField(log.SamplesKey, float64(10)))
	assert.True(t, logger.ContainsField(log.WorkersKey, float64(2)))
	assert.True(t, logger.ContainsField(log.OperationKey, log.OperationPredictValue))
}

func BenchmarkPredictor_PredictBatch(b *testing.B) {
	tm := stumpModel()
	tm.trees = nil
	for i := 0; i < 100; i++ {
		tm.trees = append(tm.trees, stumpTree(uint32(i%2), float32(i%7)/7, float32(i), -float32(i)))
	}
	m, err := loadLE(tm.le())
	require.NoError(b, err)

	X := randomMatrix(10000, 2)
	p := NewPredictor(m, WithPredictorLogger(log.Discard()))

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := p.PredictBatch(X); err != nil {
			b.Fatal(err)
		}
	}
}

func TestPredictor_SplitFeaturePastDeclaredCount(t *testing.T) {
	tm := stumpModel()
	tm.numFeatures = 2
	tm.trees = []testTree{stumpTree(5, 0.5, 1, 2)}
	m, err := loadLE(tm.le())
	require.NoError(t, err)
	assert.Equal(t, 6, m.NewFVec().Len())

	p := NewPredictor(m, WithNumThreads(4), WithParallelThreshold(1), WithPredictorLogger(log.Discard()))

	records := []libsvm.Record{
		{Indices: []uint32{0}, Values: []float32{1}},
		{Indices: []uint32{5}, Values: []float32{0.9}},
	}
	got, err := p.PredictRecords(records)
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 2}, got)

	X := mat.NewDense(3, 2, []float64{
		1, 1,
		0, 0,
		0.2, 3,
	})
	margins, err := p.PredictBatch(X)
	require.NoError(t, err)
	// Feature 5 is never present in a two-column row, so every row takes the default.
	assert.Equal(t, []float64{1, 1, 1}, margins.RawVector().Data)

	leaves, err := p.PredictLeafBatch(X)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 1, 1}, leaves.RawMatrix().Data)
}

func TestPredictor_EmptyBatch(t *testing.T) {
	m, err := loadLE(stumpModel().le())
	require.NoError(t, err)
	p := NewPredictor(m, WithPredictorLogger(log.Discard()))

	margins, err := p.PredictBatch(&mat.Dense{})
	require.NoError(t, err)
	assert.Equal(t, 0, margins.Len())

	leaves, err := p.PredictLeafBatch(&mat.Dense{})
	require.NoError(t, err)
	r, _ := leaves.Dims()
	assert.Equal(t, 0, r)

	got, err := p.PredictRecords(nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}
