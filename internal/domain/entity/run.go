package entity

import (
	"time"

	"github.com/google/uuid"
)

type RunStatus string

const (
	RunStatusPending    RunStatus = "PENDING"
	RunStatusProcessing RunStatus = "PROCESSING"
	RunStatusCompleted  RunStatus = "COMPLETED"
	RunStatusFailed     RunStatus = "FAILED"
)

type AnalysisRun struct {
	ID           uuid.UUID
	UserID       string
	MediaKey     string
	Kind         MediaKind
	DisplayName  string
	Status       RunStatus
	FrameCount   int
	Verdict      *bool
	Confidence   *float64
	ReportKeys   []string
	ArchiveKey   string
	Attempt      int
	MaxAttempts  int
	ErrorMessage string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	CompletedAt  *time.Time
}

func NewAnalysisRun(userID, mediaKey, displayName string, maxAttempts int) *AnalysisRun {
	now := time.Now().UTC()
	return &AnalysisRun{
		ID:          uuid.New(),
		UserID:      userID,
		MediaKey:    mediaKey,
		DisplayName: displayName,
		Status:      RunStatusPending,
		MaxAttempts: maxAttempts,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func (r *AnalysisRun) MarkProcessing() {
	r.Status = RunStatusProcessing
	r.Attempt++
	r.ErrorMessage = ""
	r.UpdatedAt = time.Now().UTC()
}

func (r *AnalysisRun) MarkCompleted(result AnalysisResult, frameCount int, reportKeys []string, archiveKey string) {
	now := time.Now().UTC()
	verdict := result.Verdict
	confidence := result.ConfidencePercent

	r.Status = RunStatusCompleted
	r.Kind = result.Kind
	r.FrameCount = frameCount
	r.Verdict = &verdict
	r.Confidence = &confidence
	r.ReportKeys = reportKeys
	r.ArchiveKey = archiveKey
	r.UpdatedAt = now
	r.CompletedAt = &now
}

func (r *AnalysisRun) MarkFailed(errMsg string) {
	r.Status = RunStatusFailed
	r.ErrorMessage = errMsg
	r.UpdatedAt = time.Now().UTC()
}

func (r *AnalysisRun) CanRetry() bool {
	return r.Attempt < r.MaxAttempts
}
