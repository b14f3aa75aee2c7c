package entity

import "github.com/google/uuid"

// AnalysisRequestMessage is the inbound message from the analysis request queue.
// When DemoAsset is set, MediaKey and MIMEType are ignored.
type AnalysisRequestMessage struct {
	RunID       uuid.UUID `json:"run_id"`
	UserID      string    `json:"user_id"`
	MediaKey    string    `json:"media_key"`
	MIMEType    string    `json:"mime_type"`
	DisplayName string    `json:"display_name"`
	DemoAsset   string    `json:"demo_asset,omitempty"`
	FileSize    int64     `json:"file_size"`
	UserEmail   string    `json:"user_email"`
}

// AnalysisStatusMessage is published on every pipeline state change and when a run
// reaches a terminal status.
type AnalysisStatusMessage struct {
	RunID         uuid.UUID `json:"run_id"`
	UserID        string    `json:"user_id"`
	Status        RunStatus `json:"status"`
	Phase         Phase     `json:"phase,omitempty"`
	Progress      float64   `json:"progress"`
	FramesSampled int       `json:"frames_sampled"`
	Verdict       *bool     `json:"verdict,omitempty"`
	Confidence    *float64  `json:"confidence,omitempty"`
	ReportKeys    []string  `json:"report_keys,omitempty"`
	ArchiveKey    string    `json:"archive_key,omitempty"`
	ErrorMessage  string    `json:"error_message,omitempty"`
	Attempt       int       `json:"attempt"`
	MaxAttempts   int       `json:"max_attempts"`
}
