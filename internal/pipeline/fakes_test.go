package pipeline

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tharunkumardeveloper/truthlensai/internal/domain/entity"
	"github.com/tharunkumardeveloper/truthlensai/internal/domain/port"
	"go.uber.org/zap"
)

type fakeVideo struct {
	duration    float64
	durationErr error
	// hang makes Seek ignore ctx and never settle.
	hang bool
	// gate, when set, holds every seek until closed or ctx is done.
	gate        chan struct{}
	seekStarted chan struct{}

	mu       sync.Mutex
	seeks    []float64
	position float64
	released atomic.Int32
}

func (v *fakeVideo) Duration(context.Context) (float64, error) {
	return v.duration, v.durationErr
}

func (v *fakeVideo) Seek(ctx context.Context, seconds float64) error {
	if v.seekStarted != nil {
		select {
		case v.seekStarted <- struct{}{}:
		default:
		}
	}
	if v.hang {
		select {}
	}
	if v.gate != nil {
		select {
		case <-v.gate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	v.seeks = append(v.seeks, seconds)
	v.position = seconds
	return nil
}

func (v *fakeVideo) Capture(_ context.Context, width, height, _ int) ([]byte, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return []byte(fmt.Sprintf("jpeg@%.2f/%dx%d", v.position, width, height)), nil
}

func (v *fakeVideo) Release() error {
	v.released.Add(1)
	return nil
}

type fakeStill struct {
	released atomic.Int32
}

func (s *fakeStill) Bounds() (int, int) { return 400, 300 }

func (s *fakeStill) Capture(context.Context, int, int, int) ([]byte, error) {
	return []byte("still"), nil
}

func (s *fakeStill) Release() error {
	s.released.Add(1)
	return nil
}

type fakeOpener struct {
	videos map[string]*fakeVideo
	stills map[string]*fakeStill
}

func (o *fakeOpener) OpenVideo(_ context.Context, path string) (port.VideoHandle, error) {
	if v, ok := o.videos[path]; ok {
		return v, nil
	}
	return nil, errors.New("no such video")
}

func (o *fakeOpener) OpenImage(_ context.Context, path string) (port.StillHandle, error) {
	if s, ok := o.stills[path]; ok {
		return s, nil
	}
	return nil, errors.New("no such image")
}

type fakeCatalog map[string]port.DemoAsset

func (c fakeCatalog) Lookup(id string) (port.DemoAsset, bool) {
	a, ok := c[id]
	return a, ok
}

var testCatalog = fakeCatalog{
	"deepfake-video": {ID: "deepfake-video", Kind: entity.MediaKindVideo, DisplayName: "demo-deepfake-video.mp4", MIMEType: "video/mp4"},
	"stego-image":    {ID: "stego-image", Kind: entity.MediaKindImage, DisplayName: "demo-image.jpg", MIMEType: "image/jpeg"},
}

func seeded(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

func testSamplerConfig() SamplerConfig {
	cfg := DefaultSamplerConfig()
	cfg.SeekTimeout = 50 * time.Millisecond
	return cfg
}

func newTestController(opener *fakeOpener, seed uint64) *Controller {
	log := zap.NewNop()
	rnd := seeded(seed)
	loader := NewMediaLoader(opener, testCatalog, log)
	sampler := NewSampler(testSamplerConfig(), NoSleep, rnd, log)
	classifier := NewClassifier(
		Flow{Steps: VideoSteps(), Strategy: DefaultVideoRules(rnd)},
		Flow{Steps: ImageSteps(), Strategy: DefaultImageRules(rnd)},
		NoSleep,
		log,
	)
	return NewController(loader, sampler, classifier, log)
}
