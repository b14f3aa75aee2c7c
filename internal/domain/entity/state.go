package entity

type Phase string

const (
	PhaseIdle     Phase = "IDLE"
	PhaseReady    Phase = "READY"
	PhaseRunning  Phase = "RUNNING"
	PhaseComplete Phase = "COMPLETE"
	PhaseCleared  Phase = "CLEARED"
)

// PipelineState is a snapshot of the controller's state machine. Snapshots handed out by
// the controller own their Frames slice; the frame payloads themselves are shared.
type PipelineState struct {
	Phase      Phase
	Generation uint64
	Submission *MediaSubmission
	Progress   float64
	Frames     []SampleFrame
	Result     *AnalysisResult
	// LastError is the error that aborted the most recent run, if any.
	LastError error
}

func (s PipelineState) Clone() PipelineState {
	out := s
	if s.Frames != nil {
		out.Frames = make([]SampleFrame, len(s.Frames))
		copy(out.Frames, s.Frames)
	}
	return out
}
