package ffmpeg

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/tharunkumardeveloper/truthlensai/internal/domain/port"
	"go.uber.org/zap"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

var errReleased = errors.New("media handle released")

type Opener struct {
	ffmpegPath  string
	ffprobePath string
	logger      *zap.Logger
}

func NewOpener(ffmpegPath, ffprobePath string, logger *zap.Logger) *Opener {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	if ffprobePath == "" {
		ffprobePath = "ffprobe"
	}
	return &Opener{ffmpegPath: ffmpegPath, ffprobePath: ffprobePath, logger: logger}
}

func (o *Opener) OpenVideo(_ context.Context, path string) (port.VideoHandle, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat video: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("stat video: %s is a directory", path)
	}
	return &videoHandle{opener: o, path: path}, nil
}

func (o *Opener) OpenImage(_ context.Context, path string) (port.StillHandle, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open image: %w", err)
	}
	defer f.Close()

	img, format, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	o.logger.Debug("image decoded",
		zap.String("path", path),
		zap.String("format", format),
		zap.Int("width", img.Bounds().Dx()),
		zap.Int("height", img.Bounds().Dy()),
	)
	return &stillHandle{img: img}, nil
}

type videoHandle struct {
	opener   *Opener
	path     string
	released atomic.Bool

	mu       sync.Mutex
	duration float64
	current  image.Image
}

func (v *videoHandle) Duration(ctx context.Context) (float64, error) {
	if v.released.Load() {
		return 0, errReleased
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.duration > 0 {
		return v.duration, nil
	}

	cmd := exec.CommandContext(ctx, v.opener.ffprobePath,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		v.path,
	)
	output, err := cmd.Output()
	if err != nil {
		return 0, fmt.Errorf("ffprobe: %w", err)
	}

	durationStr := strings.TrimSpace(string(output))
	duration, err := strconv.ParseFloat(durationStr, 64)
	if err != nil {
		return 0, fmt.Errorf("parse duration: %w", err)
	}
	v.duration = duration
	return duration, nil
}

// Seek decodes the frame at the given position. It returns once ffmpeg has produced the
// frame, which is the point the seek counts as settled.
func (v *videoHandle) Seek(ctx context.Context, seconds float64) error {
	if v.released.Load() {
		return errReleased
	}

	cmd := exec.CommandContext(ctx, v.opener.ffmpegPath,
		"-v", "error",
		"-ss", strconv.FormatFloat(seconds, 'f', 3, 64),
		"-i", v.path,
		"-frames:v", "1",
		"-f", "image2pipe",
		"-vcodec", "png",
		"pipe:1",
	)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	output, err := cmd.Output()
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if err != nil {
		return fmt.Errorf("ffmpeg error: %w, output: %s", err, stderr.String())
	}
	if len(output) == 0 {
		return fmt.Errorf("no frame at %.3fs", seconds)
	}

	img, _, err := image.Decode(bytes.NewReader(output))
	if err != nil {
		return fmt.Errorf("decode frame: %w", err)
	}

	v.mu.Lock()
	v.current = img
	v.mu.Unlock()
	return nil
}

func (v *videoHandle) Capture(_ context.Context, width, height, quality int) ([]byte, error) {
	if v.released.Load() {
		return nil, errReleased
	}
	v.mu.Lock()
	img := v.current
	v.mu.Unlock()
	if img == nil {
		return nil, errors.New("capture before seek")
	}
	return Thumbnail(img, width, height, quality)
}

func (v *videoHandle) Release() error {
	v.released.Store(true)
	v.mu.Lock()
	v.current = nil
	v.mu.Unlock()
	return nil
}

type stillHandle struct {
	img      image.Image
	released atomic.Bool
}

func (s *stillHandle) Bounds() (int, int) {
	b := s.img.Bounds()
	return b.Dx(), b.Dy()
}

func (s *stillHandle) Capture(_ context.Context, width, height, quality int) ([]byte, error) {
	if s.released.Load() {
		return nil, errReleased
	}
	return Thumbnail(s.img, width, height, quality)
}

func (s *stillHandle) Release() error {
	s.released.Store(true)
	return nil
}

// Thumbnail scales img to exactly width x height and encodes it as JPEG.
func Thumbnail(img image.Image, width, height, quality int) ([]byte, error) {
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("encode thumbnail: %w", err)
	}
	return buf.Bytes(), nil
}
