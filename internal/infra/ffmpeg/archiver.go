package ffmpeg

import (
	"archive/zip"
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/tharunkumardeveloper/truthlensai/internal/domain/entity"
)

const manifestName = "manifest.json"

type FrameArchiver struct{}

func NewFrameArchiver() *FrameArchiver {
	return &FrameArchiver{}
}

// CreateArchive writes the thumbnails as frame_NNNN.jpg plus a manifest of their indices
// and timestamps.
func (a *FrameArchiver) CreateArchive(ctx context.Context, frames []entity.SampleFrame, outputPath string) error {
	zipFile, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("create zip file: %w", err)
	}
	defer zipFile.Close()

	zipWriter := zip.NewWriter(zipFile)

	for _, frame := range frames {
		select {
		case <-ctx.Done():
			zipWriter.Close()
			return ctx.Err()
		default:
		}

		if err := addFrameToZip(zipWriter, frame); err != nil {
			zipWriter.Close()
			return fmt.Errorf("add frame %d to zip: %w", frame.Index, err)
		}
	}

	manifest, err := zipWriter.Create(manifestName)
	if err != nil {
		zipWriter.Close()
		return fmt.Errorf("create manifest: %w", err)
	}
	if err := json.NewEncoder(manifest).Encode(frames); err != nil {
		zipWriter.Close()
		return fmt.Errorf("write manifest: %w", err)
	}

	return zipWriter.Close()
}

func FrameFileName(frame entity.SampleFrame) string {
	return fmt.Sprintf("frame_%04d.jpg", frame.Index)
}

func addFrameToZip(zw *zip.Writer, frame entity.SampleFrame) error {
	writer, err := zw.CreateHeader(&zip.FileHeader{
		Name:   FrameFileName(frame),
		Method: zip.Store,
	})
	if err != nil {
		return err
	}
	_, err = writer.Write(frame.ImageData)
	return err
}
