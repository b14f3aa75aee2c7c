package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/tharunkumardeveloper/truthlensai/internal/domain/entity"
	"go.uber.org/zap"
)

// DecisionStrategy produces the verdict for a run. Implementations must be safe to call
// from multiple runs at once.
type DecisionStrategy interface {
	Decide(sub *entity.MediaSubmission, frames []entity.SampleFrame) entity.AnalysisResult
}

// Step is one named artificial delay of the classification stage. Progress is the overall
// percentage reported once the step has elapsed.
type Step struct {
	Name     string
	Delay    time.Duration
	Progress float64
}

type Flow struct {
	Steps    []Step
	Strategy DecisionStrategy
}

func VideoSteps() []Step {
	return []Step{
		{Name: "temporal analysis", Delay: 1000 * time.Millisecond, Progress: 85},
		{Name: "verdict", Delay: 500 * time.Millisecond, Progress: CompleteProgress},
	}
}

func ImageSteps() []Step {
	return EvenSteps(800*time.Millisecond,
		"pattern analysis",
		"bit-plane check",
		"frequency check",
		"extraction",
		"validation",
	)
}

// EvenSteps spreads the named steps evenly over the classification range.
func EvenSteps(delay time.Duration, names ...string) []Step {
	steps := make([]Step, len(names))
	span := CompleteProgress - SamplingShare
	for i, name := range names {
		steps[i] = Step{
			Name:     name,
			Delay:    delay,
			Progress: SamplingShare + float64(i+1)/float64(len(names))*span,
		}
	}
	return steps
}

type Classifier struct {
	flows  map[entity.MediaKind]Flow
	sleep  Sleeper
	logger *zap.Logger
}

func NewClassifier(video, image Flow, sleep Sleeper, logger *zap.Logger) *Classifier {
	if sleep == nil {
		sleep = Sleep
	}
	return &Classifier{
		flows: map[entity.MediaKind]Flow{
			entity.MediaKindVideo: video,
			entity.MediaKindImage: image,
		},
		sleep:  sleep,
		logger: logger,
	}
}

func (c *Classifier) Classify(ctx context.Context, frames []entity.SampleFrame, sub *entity.MediaSubmission, progress ProgressFunc) (entity.AnalysisResult, error) {
	flow, ok := c.flows[sub.Kind]
	if !ok || flow.Strategy == nil {
		return entity.AnalysisResult{}, fmt.Errorf("%w: no classifier for kind %q", ErrUnsupportedMedia, sub.Kind)
	}
	if progress == nil {
		progress = func(float64) {}
	}

	for _, step := range flow.Steps {
		if err := c.sleep(ctx, step.Delay); err != nil {
			return entity.AnalysisResult{}, err
		}
		c.logger.Debug("classification step done", zap.String("step", step.Name), zap.Float64("progress", step.Progress))
		progress(step.Progress)
	}

	result := flow.Strategy.Decide(sub, frames)
	if err := result.Validate(); err != nil {
		return entity.AnalysisResult{}, fmt.Errorf("classify %s: %w", sub.DisplayName, err)
	}
	return result, nil
}
