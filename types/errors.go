package types

import "errors"

// Error taxonomy for the pipeline. Stages wrap these with fmt.Errorf("...: %w")
// so callers can classify failures with errors.Is.
var (
	// ErrRemoteProcessing — the remote model reported a failed job
	ErrRemoteProcessing = errors.New("remote processing failed")

	// ErrGenerationIncomplete — an operation completed with no usable result
	ErrGenerationIncomplete = errors.New("generation completed without a result")

	// ErrExtraction — a frame write produced a missing or empty file
	ErrExtraction = errors.New("frame extraction produced no usable image")

	// ErrParse — a model response was not valid JSON or missed the expected shape
	ErrParse = errors.New("response is not parseable")

	// ErrPipeline — a stage-level fatal condition (no prompts, no clips, ...)
	ErrPipeline = errors.New("pipeline failure")
)
