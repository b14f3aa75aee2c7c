package entity

// SampleFrame is one captured thumbnail. Produced only by the sampler and never modified
// afterwards; ImageData is shared by reference between snapshots.
type SampleFrame struct {
	Index            int     `json:"index"`
	TimestampSeconds float64 `json:"timestamp_seconds"`
	Width            int     `json:"width"`
	Height           int     `json:"height"`
	ImageData        []byte  `json:"-"`
	Placeholder      bool    `json:"placeholder,omitempty"`
}
