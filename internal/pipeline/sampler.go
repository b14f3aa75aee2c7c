package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"iter"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tharunkumardeveloper/truthlensai/internal/domain/entity"
	"github.com/tharunkumardeveloper/truthlensai/internal/domain/port"
	"go.uber.org/zap"
)

const (
	MinSampleFrames   = 8
	MaxSampleFrames   = 20
	SamplesPerSecond  = 2
	fallbackMinFrames = 8
	fallbackMaxFrames = 19
)

// ProgressFunc receives the overall run progress contributed by a stage.
type ProgressFunc func(percent float64)

type SamplerConfig struct {
	ThumbWidth    int
	ThumbHeight   int
	JPEGQuality   int
	SeekTimeout   time.Duration
	SettleDelay   time.Duration
	FallbackDelay time.Duration
}

func DefaultSamplerConfig() SamplerConfig {
	return SamplerConfig{
		ThumbWidth:    200,
		ThumbHeight:   150,
		JPEGQuality:   80,
		SeekTimeout:   5 * time.Second,
		SettleDelay:   100 * time.Millisecond,
		FallbackDelay: 200 * time.Millisecond,
	}
}

type Sampler struct {
	cfg    SamplerConfig
	sleep  Sleeper
	rnd    Rand
	logger *zap.Logger

	placeholderOnce sync.Once
	placeholder     []byte
}

func NewSampler(cfg SamplerConfig, sleep Sleeper, rnd Rand, logger *zap.Logger) *Sampler {
	if sleep == nil {
		sleep = Sleep
	}
	if rnd == nil {
		rnd = DefaultRand()
	}
	if cfg.SeekTimeout <= 0 {
		cfg.SeekTimeout = DefaultSamplerConfig().SeekTimeout
	}
	return &Sampler{cfg: cfg, sleep: sleep, rnd: rnd, logger: logger}
}

// FrameCount is two samples per second of source, floored at 8 and capped at 20.
func FrameCount(duration float64) int {
	n := int(math.Floor(duration * SamplesPerSecond))
	return min(max(n, MinSampleFrames), MaxSampleFrames)
}

// Sample returns a lazy, single-use sequence of frames for the submission. A failure is
// yielded once as the final element. Ranging over the sequence a second time yields
// ErrSequenceConsumed.
func (s *Sampler) Sample(ctx context.Context, sub *entity.MediaSubmission, progress ProgressFunc) iter.Seq2[entity.SampleFrame, error] {
	if progress == nil {
		progress = func(float64) {}
	}
	var consumed atomic.Bool

	return func(yield func(entity.SampleFrame, error) bool) {
		if !consumed.CompareAndSwap(false, true) {
			yield(entity.SampleFrame{}, ErrSequenceConsumed)
			return
		}

		switch h := sub.Handle.(type) {
		case port.VideoHandle:
			s.sampleVideo(ctx, h, progress, yield)
		case port.StillHandle:
			s.sampleStill(ctx, h, progress, yield)
		default:
			if sub.Kind == entity.MediaKindImage {
				s.sampleFallback(ctx, 1, progress, yield)
				return
			}
			n := fallbackMinFrames + s.rnd.IntN(fallbackMaxFrames-fallbackMinFrames+1)
			s.sampleFallback(ctx, n, progress, yield)
		}
	}
}

func (s *Sampler) sampleVideo(ctx context.Context, h port.VideoHandle, progress ProgressFunc, yield func(entity.SampleFrame, error) bool) {
	duration, err := h.Duration(ctx)
	if err != nil {
		yield(entity.SampleFrame{}, fmt.Errorf("%w: %v", ErrMediaMetadata, err))
		return
	}
	if math.IsNaN(duration) || math.IsInf(duration, 0) || duration <= 0 {
		yield(entity.SampleFrame{}, fmt.Errorf("%w: duration %v", ErrMediaMetadata, duration))
		return
	}

	n := FrameCount(duration)
	step := duration / float64(n)
	s.logger.Debug("sampling video", zap.Float64("duration", duration), zap.Int("frames", n))

	for i := 0; i < n; i++ {
		ts := step * float64(i)
		if err := s.seek(ctx, h, ts); err != nil {
			yield(entity.SampleFrame{}, err)
			return
		}

		data, err := h.Capture(ctx, s.cfg.ThumbWidth, s.cfg.ThumbHeight, s.cfg.JPEGQuality)
		if err != nil {
			yield(entity.SampleFrame{}, fmt.Errorf("capture at %.2fs: %w", ts, err))
			return
		}

		frame := entity.SampleFrame{
			Index:            i,
			TimestampSeconds: ts,
			Width:            s.cfg.ThumbWidth,
			Height:           s.cfg.ThumbHeight,
			ImageData:        data,
		}
		if !yield(frame, nil) {
			return
		}
		progress(float64(i+1) / float64(n) * SamplingShare)

		if err := s.sleep(ctx, s.cfg.SettleDelay); err != nil {
			yield(entity.SampleFrame{}, err)
			return
		}
	}
}

// seek suspends until the handle reports the seek settled. The wait is bounded even when
// the handle ignores ctx.
func (s *Sampler) seek(ctx context.Context, h port.VideoHandle, ts float64) error {
	seekCtx, cancel := context.WithTimeout(ctx, s.cfg.SeekTimeout)
	defer cancel()

	settled := make(chan error, 1)
	go func() { settled <- h.Seek(seekCtx, ts) }()

	select {
	case err := <-settled:
		if err == nil {
			return nil
		}
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			return fmt.Errorf("seek to %.2fs: %w", ts, ErrSeekTimeout)
		}
		return fmt.Errorf("seek to %.2fs: %w", ts, err)
	case <-seekCtx.Done():
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("seek to %.2fs after %s: %w", ts, s.cfg.SeekTimeout, ErrSeekTimeout)
	}
}

func (s *Sampler) sampleStill(ctx context.Context, h port.StillHandle, progress ProgressFunc, yield func(entity.SampleFrame, error) bool) {
	data, err := h.Capture(ctx, s.cfg.ThumbWidth, s.cfg.ThumbHeight, s.cfg.JPEGQuality)
	if err != nil {
		yield(entity.SampleFrame{}, fmt.Errorf("capture still: %w", err))
		return
	}
	frame := entity.SampleFrame{
		Width:     s.cfg.ThumbWidth,
		Height:    s.cfg.ThumbHeight,
		ImageData: data,
	}
	if !yield(frame, nil) {
		return
	}
	progress(SamplingShare)
}

// sampleFallback synthesizes placeholder frames at fixed delays when there is no real media
// to seek. Progress is reported exactly as for real sampling.
func (s *Sampler) sampleFallback(ctx context.Context, n int, progress ProgressFunc, yield func(entity.SampleFrame, error) bool) {
	s.logger.Debug("sampling placeholder frames", zap.Int("frames", n))
	data, err := s.placeholderImage()
	if err != nil {
		yield(entity.SampleFrame{}, fmt.Errorf("encode placeholder: %w", err))
		return
	}

	for i := 0; i < n; i++ {
		if err := s.sleep(ctx, s.cfg.FallbackDelay); err != nil {
			yield(entity.SampleFrame{}, err)
			return
		}
		frame := entity.SampleFrame{
			Index:            i,
			TimestampSeconds: float64(i) / SamplesPerSecond,
			Width:            s.cfg.ThumbWidth,
			Height:           s.cfg.ThumbHeight,
			ImageData:        data,
			Placeholder:      true,
		}
		if !yield(frame, nil) {
			return
		}
		progress(float64(i+1) / float64(n) * SamplingShare)
	}
}

func (s *Sampler) placeholderImage() ([]byte, error) {
	var err error
	s.placeholderOnce.Do(func() {
		img := image.NewRGBA(image.Rect(0, 0, s.cfg.ThumbWidth, s.cfg.ThumbHeight))
		draw.Draw(img, img.Bounds(), &image.Uniform{C: color.RGBA{R: 40, G: 40, B: 48, A: 255}}, image.Point{}, draw.Src)

		var buf bytes.Buffer
		if err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: s.cfg.JPEGQuality}); err == nil {
			s.placeholder = buf.Bytes()
		}
	})
	if err != nil {
		return nil, err
	}
	if s.placeholder == nil {
		return nil, errors.New("placeholder unavailable")
	}
	return s.placeholder, nil
}
