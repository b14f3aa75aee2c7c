package entity

import (
	"errors"
	"fmt"
)

type HiddenDataType string

const (
	HiddenDataNone   HiddenDataType = "None"
	HiddenDataText   HiddenDataType = "Text"
	HiddenDataBinary HiddenDataType = "Binary"
)

// Region is an axis-aligned rectangle in source pixel space.
type Region struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

type VideoFindings struct {
	TotalFrames       int `json:"total_frames"`
	ProcessedFrames   int `json:"processed_frames"`
	DetectedFaceCount int `json:"detected_face_count"`
}

type ImageFindings struct {
	HiddenDataType   HiddenDataType `json:"hidden_data_type"`
	ExtractedPayload string         `json:"extracted_payload,omitempty"`
	HiddenRegions    []Region       `json:"hidden_regions"`
}

// AnalysisResult is the terminal outcome of a run. Exactly one of Video or Image is set,
// matching Kind.
type AnalysisResult struct {
	Kind              MediaKind      `json:"kind"`
	Verdict           bool           `json:"verdict"`
	ConfidencePercent float64        `json:"confidence_percent"`
	Video             *VideoFindings `json:"video,omitempty"`
	Image             *ImageFindings `json:"image,omitempty"`
}

var ErrInvalidResult = errors.New("invalid analysis result")

// Validate checks the output contract of the classification stage.
func (r AnalysisResult) Validate() error {
	if r.ConfidencePercent < 0 || r.ConfidencePercent > 100 {
		return fmt.Errorf("%w: confidence %.1f out of range", ErrInvalidResult, r.ConfidencePercent)
	}

	switch r.Kind {
	case MediaKindVideo:
		if r.Video == nil || r.Image != nil {
			return fmt.Errorf("%w: video result must carry video findings only", ErrInvalidResult)
		}
	case MediaKindImage:
		if r.Image == nil || r.Video != nil {
			return fmt.Errorf("%w: image result must carry image findings only", ErrInvalidResult)
		}
		if (len(r.Image.HiddenRegions) == 0) == r.Verdict {
			return fmt.Errorf("%w: hidden regions must be present iff hidden data was found", ErrInvalidResult)
		}
		if (r.Image.ExtractedPayload != "") != r.Verdict {
			return fmt.Errorf("%w: payload must be present iff hidden data was found", ErrInvalidResult)
		}
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidResult, r.Kind)
	}
	return nil
}

// VerdictLabel is the human-facing status line of the verdict.
func (r AnalysisResult) VerdictLabel() string {
	switch {
	case r.Kind == MediaKindImage && r.Verdict:
		return "HIDDEN DATA DETECTED"
	case r.Kind == MediaKindImage:
		return "NO HIDDEN DATA FOUND"
	case r.Verdict:
		return "DEEPFAKE DETECTED"
	default:
		return "AUTHENTIC CONTENT"
	}
}
