// Package inference defines the thin contract around an external translation
// engine. The engine itself — the library that actually runs the forward
// pass over model weights — is an external collaborator out of scope for
// this repository; only the load/translate/release boundary lives here.
//
// The loading style (construct from a directory, expose one thread-safe
// call, explicit release) is the classic shape for a long-lived native
// model handle: loaded once and shared across many concurrent callers via
// a handle returned from Load.
package inference

import "context"

// DeviceType selects the compute device an Adapter runs on.
type DeviceType string

const (
	DeviceCPU  DeviceType = "cpu"
	DeviceGPU  DeviceType = "gpu"
	DeviceAuto DeviceType = "auto"
)

// LoadOptions configures how an Adapter is constructed from an artifact
// directory.
type LoadOptions struct {
	// Device selects the compute device.
	Device DeviceType

	// ComputeType is the precision tag forwarded to the engine (e.g.
	// "default", "int8", "float16").
	ComputeType string

	// InterThreads is the number of concurrent translations the loaded
	// engine may run.
	InterThreads int

	// IntraThreads is the number of threads used within a single
	// translation call.
	IntraThreads int
}

// Params is the per-call translation configuration forwarded to the engine
// unchanged.
type Params struct {
	BeamSize          int
	Patience          int
	LengthPenalty     float64
	CoveragePenalty   float64
	RepetitionPenalty float64
	MaxDecodingLength int
}

// Hypothesis carries the top token sequence produced by the engine for one
// input sequence.
type Hypothesis struct {
	Tokens []string
}

// Adapter is the contract a [ModelRunner] drives. Loading and releasing are
// blocking and must happen off any latency-sensitive caller path; the
// orchestrator/runner machinery in this repository only ever calls them from
// background goroutines. TranslateBatch is assumed thread-safe for
// concurrent calls, though a single runner serializes calls through its
// batcher to benefit from true batching.
type Adapter interface {
	// TranslateBatch runs one forward pass over sequences — each a
	// pre-tokenized source sentence — and returns one Hypothesis per input,
	// in order.
	TranslateBatch(ctx context.Context, sequences [][]string, params Params) ([]Hypothesis, error)

	// Release frees any resources (device memory, file handles) held by the
	// adapter. Safe to call once; subsequent calls are no-ops.
	Release() error
}

// Loader constructs an [Adapter] from an artifact directory. Production
// wiring plugs in a CTranslate2-class engine binding; tests use
// [inference/mock].
type Loader func(ctx context.Context, artifactDir string, opts LoadOptions) (Adapter, error)
