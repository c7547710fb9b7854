package xgboost

import "math"

// FVec is a dense feature vector for one prediction. Index i is missing when
// its value is exactly 0. Zero is both a real value and the missing marker in
// this model format, and traversal follows that convention.
//
// An FVec is mutable and must not be shared between goroutines that predict
// concurrently. Allocate one per worker and reuse it with Set and Reset.
type FVec struct {
	data []float32
}

// NewFVec allocates numFeatures slots, all missing.
func NewFVec(numFeatures int) *FVec {
	return &FVec{data: make([]float32, numFeatures)}
}

// Set assigns values[k] to slot indices[k]. len(values) must be at least
// len(indices) and every index must be below Len.
func (f *FVec) Set(indices []uint32, values []float32) {
	for k, idx := range indices {
		f.data[idx] = values[k]
	}
}

// Reset marks the given slots missing again. Passing the indices of the last
// Set restores the all-missing state without reallocating.
func (f *FVec) Reset(indices []uint32) {
	for _, idx := range indices {
		f.data[idx] = 0
	}
}

// IsMissing reports whether slot i holds the missing marker.
func (f *FVec) IsMissing(i int) bool {
	return f.data[i] == 0
}

// Value returns slot i.
func (f *FVec) Value(i int) float32 {
	return f.data[i]
}

// Len returns the number of slots.
func (f *FVec) Len() int {
	return len(f.data)
}

// Fill copies a dense row into the leading slots. NaN is stored as missing.
// Slots past len(row) are left untouched.
func (f *FVec) Fill(row []float64) {
	for i, v := range row {
		if math.IsNaN(v) {
			f.data[i] = 0
			continue
		}
		f.data[i] = float32(v)
	}
}

// Clear marks every slot missing.
func (f *FVec) Clear() {
	clear(f.data)
}
