package xgboost

import (
	"runtime"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/gbtree/core/parallel"
	"github.com/YuminosukeSato/gbtree/dataset/libsvm"
	"github.com/YuminosukeSato/gbtree/pkg/errors"
	"github.com/YuminosukeSato/gbtree/pkg/log"
)

// Predictor scores many rows against one Model, splitting rows across
// goroutines. Each worker owns its FVec, so a Predictor is safe for
// concurrent use.
type Predictor struct {
	model      *Model
	numThreads int
	treeLimit  int
	threshold  int
	logger     log.Logger
}

// PredictorOption configures a Predictor.
type PredictorOption func(*Predictor)

// WithNumThreads sets the number of worker goroutines. n <= 0 means
// runtime.NumCPU().
func WithNumThreads(n int) PredictorOption {
	return func(p *Predictor) {
		if n <= 0 {
			n = runtime.NumCPU()
		}
		p.numThreads = n
	}
}

// WithTreeLimit evaluates only the first k trees. 0 means all trees.
func WithTreeLimit(k int) PredictorOption {
	return func(p *Predictor) {
		p.treeLimit = k
	}
}

// WithParallelThreshold keeps batches of at most rows rows on the calling
// goroutine.
func WithParallelThreshold(rows int) PredictorOption {
	return func(p *Predictor) {
		p.threshold = rows
	}
}

// WithPredictorLogger sets the logger for batch diagnostics.
func WithPredictorLogger(logger log.Logger) PredictorOption {
	return func(p *Predictor) {
		p.logger = logger
	}
}

// NewPredictor creates a Predictor for model.
func NewPredictor(model *Model, opts ...PredictorOption) *Predictor {
	p := &Predictor{
		model:      model,
		numThreads: runtime.NumCPU(),
		threshold:  64,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = log.GetLogger()
	}
	p.logger = p.logger.With(log.ComponentKey, "xgboost.predictor")
	return p
}

// TreeLimit returns the number of trees each prediction evaluates.
func (p *Predictor) TreeLimit() int {
	return p.model.limit(p.treeLimit)
}

func (p *Predictor) checkModel(op string) error {
	if p.model == nil {
		return errors.NewValidationError("model", op+" requires a loaded model", nil)
	}
	return nil
}

// fvecSize covers the input width, the declared feature count and the
// largest split feature, so a dense row always fits and traversal never
// reads past the vector.
func (p *Predictor) fvecSize(cols int) int {
	return max(cols, p.model.fvecLen())
}

// PredictBatch returns the raw margin for every row of X. Zero and NaN
// entries are treated as missing.
func (p *Predictor) PredictBatch(X mat.Matrix) (*mat.VecDense, error) {
	if err := p.checkModel("PredictBatch"); err != nil {
		return nil, err
	}
	rows, cols := X.Dims()
	if rows == 0 {
		return &mat.VecDense{}, nil
	}
	out := make([]float64, rows)
	limit := p.TreeLimit()
	start := time.Now()

	parallel.ParallelizeWithThreshold(rows, p.threshold, p.numThreads, func(lo, hi int) {
		f := NewFVec(p.fvecSize(cols))
		row := make([]float64, cols)
		for i := lo; i < hi; i++ {
			mat.Row(row, i, X)
			f.Fill(row)
			out[i] = float64(p.model.PredictValue(f, limit))
		}
	})

	p.logBatch(log.OperationPredictValue, rows, limit, start)
	return mat.NewVecDense(rows, out), nil
}

// PredictLeafBatch returns a rows x TreeLimit() matrix of leaf ids.
func (p *Predictor) PredictLeafBatch(X mat.Matrix) (*mat.Dense, error) {
	if err := p.checkModel("PredictLeafBatch"); err != nil {
		return nil, err
	}
	rows, cols := X.Dims()
	if rows == 0 {
		return &mat.Dense{}, nil
	}
	limit := p.TreeLimit()
	out := mat.NewDense(rows, limit, nil)
	start := time.Now()

	parallel.ParallelizeWithThreshold(rows, p.threshold, p.numThreads, func(lo, hi int) {
		f := NewFVec(p.fvecSize(cols))
		row := make([]float64, cols)
		leaves := make([]uint32, limit)
		for i := lo; i < hi; i++ {
			mat.Row(row, i, X)
			f.Fill(row)
			p.model.PredictLeaf(f, limit, leaves)
			for j, id := range leaves {
				// Rows are disjoint per worker, so Set does not race.
				out.Set(i, j, float64(id))
			}
		}
	})

	p.logBatch(log.OperationPredictLeaf, rows, limit, start)
	return out, nil
}

// PredictRecords returns the raw margin for each sparse record. Each worker
// sets a record, predicts, and resets exactly the indices it set.
func (p *Predictor) PredictRecords(records []libsvm.Record) ([]float32, error) {
	if err := p.checkModel("PredictRecords"); err != nil {
		return nil, err
	}
	size := p.model.fvecLen()
	for _, rec := range records {
		size = max(size, rec.MaxIndex()+1)
	}
	out := make([]float32, len(records))
	limit := p.TreeLimit()
	start := time.Now()

	parallel.ParallelizeWithThreshold(len(records), p.threshold, p.numThreads, func(lo, hi int) {
		f := NewFVec(size)
		for i := lo; i < hi; i++ {
			rec := &records[i]
			f.Set(rec.Indices, rec.Values)
			out[i] = p.model.PredictValue(f, limit)
			f.Reset(rec.Indices)
		}
	})

	p.logBatch(log.OperationPredictBatch, len(records), limit, start)
	return out, nil
}

func (p *Predictor) logBatch(op string, rows, limit int, start time.Time) {
	p.logger.Debug("batch predicted",
		log.OperationKey, op,
		log.SamplesKey, rows,
		log.TreeLimitKey, limit,
		log.WorkersKey, p.numThreads,
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)
}
