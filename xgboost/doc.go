// Package xgboost decodes binary XGBoost tree-ensemble models and evaluates
// them on feature vectors.
//
// A model buffer is decoded once with Load (or LoadFromBlob for files and
// object stores) into an immutable Model. Predictions walk each tree from
// the root: a missing feature follows the node's default child, otherwise a
// value strictly below the threshold goes left and anything else goes right.
// PredictValue returns the raw margin, the float32 sum of the reached leaf
// values, without the base score or any objective transform.
//
// A feature value of exactly 0 is treated as missing. This mirrors how the
// model format is consumed in practice, and it means a genuine zero cannot
// be distinguished from an absent feature.
//
// Basic usage:
//
//	model, err := xgboost.Load(buf, xgboost.WithByteOrder(binary.LittleEndian))
//	if err != nil {
//	    return err
//	}
//	f := model.NewFVec()
//	f.Set([]uint32{0, 3}, []float32{0.7, 12})
//	margin := model.PredictValue(f, 0)
//	f.Reset([]uint32{0, 3})
//
// For batches, Predictor splits rows across goroutines and accepts gonum
// matrices or parsed LIBSVM records.
package xgboost
