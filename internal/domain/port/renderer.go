package port

import (
	"io"

	"github.com/tharunkumardeveloper/truthlensai/internal/domain/entity"
)

// ReportRenderer serializes a synthesized report into one downloadable format.
type ReportRenderer interface {
	Extension() string
	ContentType() string
	Render(w io.Writer, report entity.Report) error
}
