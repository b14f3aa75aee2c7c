package pipeline

import (
	"fmt"
	"strings"
	"time"

	"github.com/tharunkumardeveloper/truthlensai/internal/domain/entity"
)

const (
	ProductName    = "TruthLens"
	ProductVersion = "2.1.0"
	reportIDLength = 9
	base36         = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
)

// ReportOptions carries the non-result inputs of a report. The random source only feeds
// the cosmetic report id and processing-time figure.
type ReportOptions struct {
	Now  time.Time
	Rand Rand
}

// RiskLabel is the qualitative tier of a confidence value.
func RiskLabel(confidence float64) string {
	switch {
	case confidence > 80:
		return "HIGH CONFIDENCE"
	case confidence > 60:
		return "MODERATE CONFIDENCE"
	default:
		return "LOW CONFIDENCE"
	}
}

func kindLabel(kind entity.MediaKind) string {
	if kind == entity.MediaKindImage {
		return "Steganography"
	}
	return "Deepfake"
}

// ReportFileName is the deterministic base name of a report artifact, without extension.
func ReportFileName(kind entity.MediaKind, date time.Time) string {
	return fmt.Sprintf("%s_%s_Report_%s", ProductName, kindLabel(kind), date.UTC().Format(time.DateOnly))
}

// Synthesize turns a completed state into a report. It has no side effects.
func Synthesize(state entity.PipelineState, opts ReportOptions) (entity.Report, error) {
	if state.Phase != entity.PhaseComplete || state.Result == nil {
		return entity.Report{}, ErrNotComplete
	}
	if opts.Now.IsZero() {
		opts.Now = time.Now()
	}
	if opts.Rand == nil {
		opts.Rand = DefaultRand()
	}

	result := *state.Result
	name := ""
	if state.Submission != nil {
		name = state.Submission.DisplayName
	}
	processingSeconds := 15 + opts.Rand.IntN(25)
	reportID := randomID(opts.Rand)

	report := entity.Report{
		ID:          reportID,
		Kind:        result.Kind,
		Title:       strings.ToUpper(ProductName) + " AI",
		GeneratedAt: opts.Now.UTC(),
		FileBase:    ReportFileName(result.Kind, opts.Now),
		Footer: []string{
			fmt.Sprintf("Generated by %s AI v%s", ProductName, ProductVersion),
			"Report ID: " + reportID,
		},
	}

	results := entity.ReportSection{
		Heading: "DETECTION RESULTS",
		Lines: []string{
			"Status: " + result.VerdictLabel(),
			fmt.Sprintf("Confidence Level: %.1f%%", result.ConfidencePercent),
			"Risk Assessment: " + RiskLabel(result.ConfidencePercent),
		},
	}

	switch result.Kind {
	case entity.MediaKindImage:
		report.Subtitle = "STEGANOGRAPHY ANALYSIS REPORT"
		report.Sections = []entity.ReportSection{
			analysisInfo(opts.Now, "Image File", name, "Demo Image"),
			results,
			imageDetails(result, processingSeconds),
			{Heading: "ANALYSIS METHODOLOGY", Lines: imageMethodology, Bullets: true},
			imageIndicators(result.Verdict),
		}
	default:
		report.Subtitle = "DEEPFAKE DETECTION REPORT"
		report.Sections = []entity.ReportSection{
			analysisInfo(opts.Now, "Video File", name, "Demo Video"),
			results,
			videoDetails(result, processingSeconds),
			{Heading: "ANALYSIS METHODOLOGY", Lines: videoMethodology, Bullets: true},
			videoIndicators(result.Verdict),
		}
	}

	return report, nil
}

func analysisInfo(now time.Time, label, name, fallback string) entity.ReportSection {
	if name == "" {
		name = fallback
	}
	return entity.ReportSection{
		Heading: "ANALYSIS INFORMATION",
		Lines: []string{
			"Analysis Date: " + now.UTC().Format(time.DateTime) + " UTC",
			label + ": " + name,
		},
	}
}

func videoDetails(result entity.AnalysisResult, processingSeconds int) entity.ReportSection {
	var v entity.VideoFindings
	if result.Video != nil {
		v = *result.Video
	}
	return entity.ReportSection{
		Heading: "TECHNICAL DETAILS",
		Lines: []string{
			fmt.Sprintf("Total Frames Analyzed: %d", v.TotalFrames),
			fmt.Sprintf("Processed Frames: %d", v.ProcessedFrames),
			fmt.Sprintf("Faces Detected: %d", v.DetectedFaceCount),
			fmt.Sprintf("Processing Time: %d seconds", processingSeconds),
		},
	}
}

func imageDetails(result entity.AnalysisResult, processingSeconds int) entity.ReportSection {
	var img entity.ImageFindings
	if result.Image != nil {
		img = *result.Image
	}
	lines := []string{
		"Hidden Data Type: " + string(img.HiddenDataType),
		fmt.Sprintf("Hidden Regions: %d", len(img.HiddenRegions)),
	}
	for i, r := range img.HiddenRegions {
		lines = append(lines, fmt.Sprintf("Region %d: %dx%d at (%d, %d)", i+1, r.Width, r.Height, r.X, r.Y))
	}
	if img.ExtractedPayload != "" {
		lines = append(lines, "Extracted Payload: "+img.ExtractedPayload)
	}
	lines = append(lines, fmt.Sprintf("Processing Time: %d seconds", processingSeconds))
	return entity.ReportSection{Heading: "TECHNICAL DETAILS", Lines: lines}
}

var videoMethodology = []string{
	"Facial Landmark Detection: Advanced neural networks analyzed facial features",
	"Temporal Consistency: Frame-by-frame analysis for temporal artifacts",
	"Pixel-level Analysis: Deep learning models examined pixel patterns",
	"Biometric Verification: Cross-referenced facial biometrics across frames",
}

var imageMethodology = []string{
	"Pixel Pattern Analysis: Statistical analysis of pixel value distributions",
	"Bit-plane Inspection: Least significant bit variations checked per channel",
	"Frequency Analysis: Transform-domain anomalies searched for embedded signals",
	"Payload Extraction: Candidate regions decoded and validated",
}

func videoIndicators(verdict bool) entity.ReportSection {
	if verdict {
		return entity.ReportSection{
			Heading: "DEEPFAKE INDICATORS FOUND",
			Bullets: true,
			Lines: []string{
				"Inconsistent facial landmarks detected",
				"Temporal artifacts in eye movement patterns",
				"Unnatural skin texture variations",
				"Compression artifacts suggesting manipulation",
			},
		}
	}
	return entity.ReportSection{
		Heading: "AUTHENTICITY INDICATORS",
		Bullets: true,
		Lines: []string{
			"Consistent facial landmarks throughout video",
			"Natural temporal flow and movement patterns",
			"Uniform compression characteristics",
			"No detected manipulation artifacts",
		},
	}
}

func imageIndicators(verdict bool) entity.ReportSection {
	if verdict {
		return entity.ReportSection{
			Heading: "STEGANOGRAPHY INDICATORS FOUND",
			Bullets: true,
			Lines: []string{
				"Irregular least significant bit distribution",
				"Localized noise inconsistent with sensor patterns",
				"Frequency-domain anomalies in flagged regions",
				"Recoverable embedded payload",
			},
		}
	}
	return entity.ReportSection{
		Heading: "CLEAN IMAGE INDICATORS",
		Bullets: true,
		Lines: []string{
			"Natural least significant bit distribution",
			"Noise consistent with camera sensor patterns",
			"No frequency-domain anomalies",
			"No recoverable embedded payload",
		},
	}
}

func randomID(rnd Rand) string {
	var b strings.Builder
	b.Grow(reportIDLength)
	for range reportIDLength {
		b.WriteByte(base36[rnd.IntN(len(base36))])
	}
	return b.String()
}
