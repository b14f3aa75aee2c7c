package pipeline

import (
	"context"
	"errors"
	"sync"

	"github.com/tharunkumardeveloper/truthlensai/internal/domain/entity"
	"go.uber.org/zap"
)

type stage int

const (
	stageSampling stage = iota
	stageClassification
)

// Controller owns the state machine of a single analysis session. All mutations go
// through its methods; a run's callbacks carry the generation they were started with and
// are dropped once a newer submission, run or clear has moved the generation on.
type Controller struct {
	loader     *MediaLoader
	sampler    *Sampler
	classifier *Classifier
	logger     *zap.Logger

	mu             sync.Mutex
	state          entity.PipelineState
	generation     uint64
	sampling       float64
	classification float64
	cancelRun      context.CancelFunc
	done           chan struct{}
	subscribers    map[int]chan entity.PipelineState
	nextSub        int
}

func NewController(loader *MediaLoader, sampler *Sampler, classifier *Classifier, logger *zap.Logger) *Controller {
	return &Controller{
		loader:      loader,
		sampler:     sampler,
		classifier:  classifier,
		logger:      logger,
		state:       entity.PipelineState{Phase: entity.PhaseIdle},
		subscribers: make(map[int]chan entity.PipelineState),
	}
}

// SubmitMedia loads the input and makes it the active submission. An invalid input leaves
// the state untouched. A previous submission is released and any run on it is abandoned.
func (c *Controller) SubmitMedia(ctx context.Context, input MediaInput) error {
	sub, err := c.loader.Load(ctx, input)
	if err != nil {
		return err
	}

	c.mu.Lock()
	prev := c.state.Submission
	c.abortRunLocked()
	c.generation++
	c.state = entity.PipelineState{
		Phase:      entity.PhaseReady,
		Generation: c.generation,
		Submission: sub,
	}
	c.publishLocked()
	c.mu.Unlock()

	c.logger.Debug("media submitted", zap.String("name", sub.DisplayName), zap.String("kind", string(sub.Kind)))
	c.release(prev)
	return nil
}

// StartRun begins sampling and classification of the active submission in the background.
// The run lives until it completes, fails, is superseded, or ctx is done.
func (c *Controller) StartRun(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.state.Phase {
	case entity.PhaseRunning:
		return ErrRunAlreadyInProgress
	case entity.PhaseReady, entity.PhaseComplete:
	default:
		return ErrNoSubmission
	}

	c.generation++
	gen := c.generation
	sub := c.state.Submission

	runCtx, cancel := context.WithCancel(ctx)
	c.cancelRun = cancel
	c.done = make(chan struct{})
	c.sampling, c.classification = 0, 0
	c.state = entity.PipelineState{
		Phase:      entity.PhaseRunning,
		Generation: gen,
		Submission: sub,
		Frames:     []entity.SampleFrame{},
	}
	c.publishLocked()

	go c.run(runCtx, gen, sub)
	return nil
}

// Clear abandons any run, releases the active submission and returns to Idle.
func (c *Controller) Clear() {
	c.mu.Lock()
	prev := c.state.Submission
	c.abortRunLocked()
	c.generation++
	c.state = entity.PipelineState{Phase: entity.PhaseCleared, Generation: c.generation}
	c.publishLocked()
	c.state = entity.PipelineState{Phase: entity.PhaseIdle, Generation: c.generation}
	c.publishLocked()
	c.mu.Unlock()

	c.release(prev)
}

func (c *Controller) Snapshot() entity.PipelineState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Clone()
}

// Wait blocks until the current run ends and returns the resulting state. The error is
// nil only when the run completed.
func (c *Controller) Wait(ctx context.Context) (entity.PipelineState, error) {
	c.mu.Lock()
	done := c.done
	c.mu.Unlock()

	if done == nil {
		snap := c.Snapshot()
		if snap.Phase == entity.PhaseComplete {
			return snap, nil
		}
		if snap.LastError != nil {
			return snap, snap.LastError
		}
		return snap, ErrNotComplete
	}

	select {
	case <-done:
	case <-ctx.Done():
		return c.Snapshot(), ctx.Err()
	}

	snap := c.Snapshot()
	switch {
	case snap.Phase == entity.PhaseComplete:
		return snap, nil
	case snap.LastError != nil:
		return snap, snap.LastError
	default:
		return snap, ErrRunAborted
	}
}

// Subscribe streams state snapshots. Slow subscribers only miss intermediate states: the
// newest snapshot always replaces an unread one.
func (c *Controller) Subscribe(buffer int) (<-chan entity.PipelineState, func()) {
	if buffer < 1 {
		buffer = 1
	}
	ch := make(chan entity.PipelineState, buffer)

	c.mu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subscribers[id] = ch
	c.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			c.mu.Lock()
			delete(c.subscribers, id)
			close(ch)
			c.mu.Unlock()
		})
	}
}

// Synthesize builds the report of the completed run.
func (c *Controller) Synthesize(opts ReportOptions) (entity.Report, error) {
	return Synthesize(c.Snapshot(), opts)
}

func (c *Controller) run(ctx context.Context, gen uint64, sub *entity.MediaSubmission) {
	log := c.logger.With(zap.Uint64("generation", gen), zap.String("media", sub.DisplayName))
	log.Debug("run started")

	frames := make([]entity.SampleFrame, 0, MaxSampleFrames)
	onSampling := func(p float64) { c.reportProgress(gen, stageSampling, p) }
	for frame, err := range c.sampler.Sample(ctx, sub, onSampling) {
		if err != nil {
			c.fail(gen, err)
			return
		}
		if !c.appendFrame(gen, frame) {
			log.Debug("stale run stopped during sampling")
			return
		}
		frames = append(frames, frame)
	}

	onClassification := func(p float64) { c.reportProgress(gen, stageClassification, p) }
	result, err := c.classifier.Classify(ctx, frames, sub, onClassification)
	if err != nil {
		c.fail(gen, err)
		return
	}
	c.complete(gen, result)
}

func (c *Controller) currentLocked(gen uint64) bool {
	return gen == c.generation && c.state.Phase == entity.PhaseRunning
}

func (c *Controller) appendFrame(gen uint64, frame entity.SampleFrame) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.currentLocked(gen) {
		return false
	}
	c.state.Frames = append(c.state.Frames, frame)
	c.publishLocked()
	return true
}

func (c *Controller) reportProgress(gen uint64, st stage, value float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.currentLocked(gen) {
		return
	}

	switch st {
	case stageSampling:
		c.sampling = value
	case stageClassification:
		c.classification = value
	}

	overall := Aggregate(c.sampling, c.classification)
	if overall <= c.state.Progress {
		return
	}
	c.state.Progress = overall
	c.publishLocked()
}

func (c *Controller) fail(gen uint64, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.currentLocked(gen) {
		c.logger.Debug("discarding failure of stale run", zap.Uint64("generation", gen), zap.Error(err))
		return
	}

	c.finishRunLocked()
	c.state = entity.PipelineState{
		Phase:      entity.PhaseReady,
		Generation: gen,
		Submission: c.state.Submission,
		LastError:  err,
	}
	c.publishLocked()

	c.logger.Warn("run failed", zap.Uint64("generation", gen), zap.Error(err))
}

func (c *Controller) complete(gen uint64, result entity.AnalysisResult) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.currentLocked(gen) {
		c.logger.Debug("discarding result of stale run", zap.Uint64("generation", gen))
		return
	}

	c.finishRunLocked()
	c.state = entity.PipelineState{
		Phase:      entity.PhaseComplete,
		Generation: gen,
		Submission: c.state.Submission,
		Progress:   CompleteProgress,
		Frames:     c.state.Frames,
		Result:     &result,
	}
	c.publishLocked()

	c.logger.Debug("run complete",
		zap.Uint64("generation", gen),
		zap.Bool("verdict", result.Verdict),
		zap.Float64("confidence", result.ConfidencePercent),
		zap.Int("frames", len(c.state.Frames)),
	)
}

func (c *Controller) abortRunLocked() {
	if c.state.Phase == entity.PhaseRunning {
		c.logger.Debug("abandoning run", zap.Uint64("generation", c.generation))
	}
	c.finishRunLocked()
}

func (c *Controller) finishRunLocked() {
	if c.cancelRun != nil {
		c.cancelRun()
		c.cancelRun = nil
	}
	if c.done != nil {
		close(c.done)
		c.done = nil
	}
}

func (c *Controller) publishLocked() {
	snap := c.state.Clone()
	for _, ch := range c.subscribers {
		select {
		case ch <- snap:
			continue
		default:
		}
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- snap:
		default:
		}
	}
}

func (c *Controller) release(sub *entity.MediaSubmission) {
	if sub == nil || sub.Handle == nil {
		return
	}
	if err := sub.Handle.Release(); err != nil && !errors.Is(err, context.Canceled) {
		c.logger.Warn("release media", zap.String("name", sub.DisplayName), zap.Error(err))
	}
}
