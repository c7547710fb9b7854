// Package log defines standard attribute keys for model loading and inference.
//
// Keys follow a hierarchical naming convention ("model.num_trees",
// "data.features") so decoder and predictor logs can be filtered uniformly.
package log

// Model and operation context.
const (
	// ModelNameKey identifies the model artifact (file name or blob key).
	ModelNameKey = "model.name"

	// SourceKey identifies where the model bytes came from.
	// Examples: "file:///models/ctr.bin", "s3://bucket/ctr.bin.zst"
	SourceKey = "model.source"

	// OperationKey specifies the operation being performed.
	// Standard values: "load", "predict_leaf", "predict_value", "predict_batch"
	OperationKey = "ml.operation"

	// ComponentKey identifies which package is logging.
	ComponentKey = "ml.component"

	// PhaseKey indicates the model lifecycle phase.
	PhaseKey = "ml.phase"
)

// Decoded model header.
const (
	// BaseScoreKey is the global bias stored in the learner parameters.
	BaseScoreKey = "model.base_score"

	// ObjectiveKey is the object-type tag string.
	ObjectiveKey = "model.objective"

	// BoosterKey is the model-type tag string.
	BoosterKey = "model.booster"

	// NumTreesKey is the number of trees in the ensemble.
	NumTreesKey = "model.num_trees"

	// OutputGroupsKey is the declared number of output groups.
	OutputGroupsKey = "model.output_groups"

	// MaxSplitFeatureKey is the largest feature index any split reads.
	MaxSplitFeatureKey = "model.max_split_feature"

	// TreeIndexKey is the position of a tree in boosting order.
	TreeIndexKey = "tree.index"

	// NumNodesKey is the node count of a single tree.
	NumNodesKey = "tree.num_nodes"

	// LeafVectorKey is the declared multi-value leaf vector size of a tree.
	LeafVectorKey = "tree.size_leaf_vector"

	// OffsetKey is a byte offset into the model buffer.
	OffsetKey = "decode.offset"

	// ByteOrderKey is the byte order the decoder read with.
	ByteOrderKey = "decode.byte_order"
)

// Data shape.
const (
	// SamplesKey indicates the number of rows in a batch.
	SamplesKey = "data.samples"

	// FeaturesKey indicates the declared input dimensionality.
	FeaturesKey = "data.features"

	// DataSizeKey indicates a buffer size in bytes.
	DataSizeKey = "data.size_bytes"
)

// Performance.
const (
	// DurationMsKey records the execution time of an operation in milliseconds.
	DurationMsKey = "perf.duration_ms"

	// TreeLimitKey records how many trees a prediction evaluated.
	TreeLimitKey = "preds.tree_limit"

	// WorkersKey records the number of goroutines used by a batch.
	WorkersKey = "perf.workers"
)

// Error context.
const (
	// ErrorCodeKey provides a structured error code for programmatic handling.
	ErrorCodeKey = "error.code"

	// ErrorTypeKey categorizes the error.
	ErrorTypeKey = "error.type"
)

// Standard attribute values.
const (
	OperationLoad         = "load"
	OperationPredictLeaf  = "predict_leaf"
	OperationPredictValue = "predict_value"
	OperationPredictBatch = "predict_batch"

	PhaseLoading   = "loading"
	PhaseInference = "inference"

	ErrorMalformedModel = "MALFORMED_MODEL"
	ErrorSourceRead     = "SOURCE_READ"
)
