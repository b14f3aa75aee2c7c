package pipeline

import "errors"

var (
	// ErrUnsupportedMedia is returned when the input does not declare a video/ or image/
	// MIME type, or cannot be decoded as one. State is left untouched.
	ErrUnsupportedMedia = errors.New("unsupported media")
	// ErrMediaMetadata aborts a run whose video duration is not a finite positive number.
	ErrMediaMetadata = errors.New("unreadable media metadata")
	// ErrSeekTimeout aborts a run when a seek does not settle within the configured bound.
	ErrSeekTimeout = errors.New("seek did not settle")
	// ErrRunAlreadyInProgress rejects StartRun while a run is active.
	ErrRunAlreadyInProgress = errors.New("run already in progress")
	// ErrNoSubmission rejects StartRun when nothing has been submitted.
	ErrNoSubmission = errors.New("no media submitted")
	// ErrNotComplete is returned when a report or Wait finds no completed analysis.
	ErrNotComplete = errors.New("no completed analysis")
	// ErrRunAborted reports a run superseded by Clear or a newer submission.
	ErrRunAborted = errors.New("run aborted")
	// ErrUnknownDemoAsset is returned for a demo ID missing from the catalog.
	ErrUnknownDemoAsset = errors.New("unknown demo asset")
	// ErrSequenceConsumed is yielded when a frame sequence is ranged over a second time.
	ErrSequenceConsumed = errors.New("frame sequence already consumed")
)
