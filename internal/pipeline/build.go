package pipeline

import (
	"github.com/tharunkumardeveloper/truthlensai/internal/domain/port"
	"go.uber.org/zap"
)

// Options configures a controller assembled by New. Zero values fall back to the
// production defaults: real sleeps, the global random source, the default markers.
type Options struct {
	Sampler        SamplerConfig
	DeepfakeMarker string
	GenuineMarker  string
	Sleep          Sleeper
	Rand           Rand
}

// New wires a loader, sampler and classifier into a fresh controller.
func New(opener port.MediaOpener, demos port.DemoCatalog, opts Options, logger *zap.Logger) *Controller {
	if opts.Sampler == (SamplerConfig{}) {
		opts.Sampler = DefaultSamplerConfig()
	}
	if opts.Sleep == nil {
		opts.Sleep = Sleep
	}
	if opts.Rand == nil {
		opts.Rand = DefaultRand()
	}

	video := DefaultVideoRules(opts.Rand)
	if opts.DeepfakeMarker != "" {
		video.DeepfakeMarker = opts.DeepfakeMarker
	}
	if opts.GenuineMarker != "" {
		video.GenuineMarker = opts.GenuineMarker
	}

	classifier := NewClassifier(
		Flow{Steps: VideoSteps(), Strategy: video},
		Flow{Steps: ImageSteps(), Strategy: DefaultImageRules(opts.Rand)},
		opts.Sleep,
		logger,
	)
	return NewController(
		NewMediaLoader(opener, demos, logger),
		NewSampler(opts.Sampler, opts.Sleep, opts.Rand, logger),
		classifier,
		logger,
	)
}
