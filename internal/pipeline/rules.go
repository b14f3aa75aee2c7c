package pipeline

import (
	"math"
	"strings"

	"github.com/tharunkumardeveloper/truthlensai/internal/domain/entity"
)

const (
	DefaultDeepfakeMarker = "dee1.mp4"
	DefaultGenuineMarker  = "og1.mp4"
)

// VideoRules keys the verdict on the submission's display name so demo assets always
// reproduce the same labelled outcome. Anything unmatched gets the baseline.
type VideoRules struct {
	DeepfakeMarker     string
	GenuineMarker      string
	Baseline           float64
	DeepfakeConfidence float64
	GenuineConfidence  float64
	MaxFaces           int
	Rand               Rand
}

func DefaultVideoRules(rnd Rand) VideoRules {
	return VideoRules{
		DeepfakeMarker:     DefaultDeepfakeMarker,
		GenuineMarker:      DefaultGenuineMarker,
		Baseline:           87,
		DeepfakeConfidence: 91,
		GenuineConfidence:  94,
		MaxFaces:           5,
		Rand:               rnd,
	}
}

func (v VideoRules) Decide(sub *entity.MediaSubmission, frames []entity.SampleFrame) entity.AnalysisResult {
	verdict, confidence := true, v.Baseline

	name := strings.ToLower(sub.DisplayName)
	switch {
	case v.DeepfakeMarker != "" && strings.Contains(name, strings.ToLower(v.DeepfakeMarker)):
		verdict, confidence = true, v.DeepfakeConfidence
	case v.GenuineMarker != "" && strings.Contains(name, strings.ToLower(v.GenuineMarker)):
		verdict, confidence = false, v.GenuineConfidence
	}

	faces := 1
	if v.Rand != nil && v.MaxFaces > 1 {
		faces += v.Rand.IntN(v.MaxFaces)
	}

	return entity.AnalysisResult{
		Kind:              entity.MediaKindVideo,
		Verdict:           verdict,
		ConfidencePercent: roundTenth(confidence),
		Video: &entity.VideoFindings{
			TotalFrames:       len(frames),
			ProcessedFrames:   len(frames),
			DetectedFaceCount: faces,
		},
	}
}

var HiddenPayloads = []string{
	"Secret message hidden in image",
	"Classified data embedded",
	"Hidden coordinates: 40.7128, -74.0060",
	"Contact: agent@example.com",
	"Meeting at midnight",
}

// HiddenRegionShapes are the rectangles attached to every positive image result.
var HiddenRegionShapes = []entity.Region{
	{X: 20, Y: 30, Width: 60, Height: 40},
	{X: 150, Y: 80, Width: 80, Height: 50},
}

// ImageRules draws a biased coin for hidden data and a confidence in [70,100].
type ImageRules struct {
	HiddenProbability float64
	Rand              Rand
}

func DefaultImageRules(rnd Rand) ImageRules {
	return ImageRules{HiddenProbability: 0.6, Rand: rnd}
}

func (r ImageRules) Decide(_ *entity.MediaSubmission, _ []entity.SampleFrame) entity.AnalysisResult {
	rnd := r.Rand
	if rnd == nil {
		rnd = DefaultRand()
	}

	hidden := rnd.Float64() < r.HiddenProbability
	confidence := roundTenth(70 + rnd.Float64()*30)

	findings := &entity.ImageFindings{
		HiddenDataType: entity.HiddenDataNone,
		HiddenRegions:  []entity.Region{},
	}
	if hidden {
		findings.HiddenDataType = entity.HiddenDataBinary
		if rnd.Float64() > 0.5 {
			findings.HiddenDataType = entity.HiddenDataText
		}
		findings.ExtractedPayload = HiddenPayloads[rnd.IntN(len(HiddenPayloads))]
		findings.HiddenRegions = append(findings.HiddenRegions, HiddenRegionShapes...)
	}

	return entity.AnalysisResult{
		Kind:              entity.MediaKindImage,
		Verdict:           hidden,
		ConfidencePercent: confidence,
		Image:             findings,
	}
}

func roundTenth(v float64) float64 {
	return min(max(math.Round(v*10)/10, 0), 100)
}
