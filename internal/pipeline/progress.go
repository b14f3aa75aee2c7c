package pipeline

const (
	// SamplingShare is the slice of overall progress owned by the sampling stage.
	SamplingShare    = 70.0
	CompleteProgress = 100.0
)

// Aggregate maps the stage contributions onto one overall percentage. Sampling reports
// values already scaled to [0,70]; classification reports values in [70,100] once it
// has started and 0 before.
func Aggregate(sampling, classification float64) float64 {
	if classification >= SamplingShare {
		return min(classification, CompleteProgress)
	}
	return min(max(sampling, 0), SamplingShare)
}
