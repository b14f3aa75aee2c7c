package entity

import "time"

type ReportSection struct {
	Heading string
	Lines   []string
	Bullets bool
}

// Report is the structured document synthesized from a completed run. It is never
// persisted by the pipeline; renderers turn it into a downloadable artifact.
type Report struct {
	ID          string
	Kind        MediaKind
	Title       string
	Subtitle    string
	GeneratedAt time.Time
	FileBase    string
	Sections    []ReportSection
	Footer      []string
}
