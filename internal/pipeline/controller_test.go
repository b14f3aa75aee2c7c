package pipeline

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tharunkumardeveloper/truthlensai/internal/domain/entity"
)

func drain(ch <-chan entity.PipelineState, unsubscribe func()) []entity.PipelineState {
	unsubscribe()
	var states []entity.PipelineState
	for s := range ch {
		states = append(states, s)
	}
	return states
}

func TestControllerCompletesVideoRun(t *testing.T) {
	video := &fakeVideo{duration: 10}
	c := newTestController(&fakeOpener{videos: map[string]*fakeVideo{"/in/dee1.mp4": video}}, 1)
	ctx := context.Background()

	require.NoError(t, c.SubmitMedia(ctx, FileInput{Name: "dee1.mp4", MIMEType: "video/mp4", Path: "/in/dee1.mp4"}))
	assert.Equal(t, entity.PhaseReady, c.Snapshot().Phase)

	updates, unsubscribe := c.Subscribe(1024)
	require.NoError(t, c.StartRun(ctx))

	final, err := c.Wait(ctx)
	require.NoError(t, err)
	assert.Equal(t, entity.PhaseComplete, final.Phase)
	assert.Equal(t, CompleteProgress, final.Progress)
	require.Len(t, final.Frames, 20)
	require.NotNil(t, final.Result)
	assert.True(t, final.Result.Verdict)
	assert.Equal(t, 91.0, final.Result.ConfidencePercent)
	assert.Equal(t, 20, final.Result.Video.TotalFrames)

	states := drain(updates, unsubscribe)
	require.NotEmpty(t, states)
	assert.Equal(t, entity.PhaseRunning, states[0].Phase)
	assert.Equal(t, entity.PhaseComplete, states[len(states)-1].Phase)

	last, frames := 0.0, 0
	for _, s := range states {
		assert.GreaterOrEqual(t, s.Progress, last)
		assert.GreaterOrEqual(t, len(s.Frames), frames)
		last, frames = s.Progress, len(s.Frames)
	}
	assert.Equal(t, 100.0, last)
}

func TestControllerImageRunHonoursInvariants(t *testing.T) {
	for seed := uint64(0); seed < 25; seed++ {
		still := &fakeStill{}
		c := newTestController(&fakeOpener{stills: map[string]*fakeStill{"/in/a.png": still}}, seed)
		ctx := context.Background()

		require.NoError(t, c.SubmitMedia(ctx, FileInput{Name: "a.png", MIMEType: "image/png", Path: "/in/a.png"}))
		require.NoError(t, c.StartRun(ctx))
		final, err := c.Wait(ctx)
		require.NoError(t, err)

		res := final.Result
		require.NotNil(t, res)
		assert.Len(t, final.Frames, 1)
		assert.Equal(t, res.Verdict, len(res.Image.HiddenRegions) == 2)
		assert.Equal(t, res.Verdict, res.Image.ExtractedPayload != "")
		assert.GreaterOrEqual(t, res.ConfidencePercent, 0.0)
		assert.LessOrEqual(t, res.ConfidencePercent, 100.0)
	}
}

func TestControllerDemoRunUsesFallback(t *testing.T) {
	c := newTestController(&fakeOpener{}, 4)
	ctx := context.Background()

	require.NoError(t, c.SubmitMedia(ctx, DemoInput{AssetID: "deepfake-video"}))
	require.NoError(t, c.StartRun(ctx))
	final, err := c.Wait(ctx)
	require.NoError(t, err)

	assert.GreaterOrEqual(t, len(final.Frames), 8)
	assert.LessOrEqual(t, len(final.Frames), 19)
	assert.True(t, final.Result.Verdict)
	assert.Equal(t, 87.0, final.Result.ConfidencePercent)
}

func TestControllerRejectsUnsupportedMedia(t *testing.T) {
	video := &fakeVideo{duration: 4}
	c := newTestController(&fakeOpener{videos: map[string]*fakeVideo{"/v.mp4": video}}, 1)
	ctx := context.Background()

	require.NoError(t, c.SubmitMedia(ctx, FileInput{Name: "v.mp4", MIMEType: "video/mp4", Path: "/v.mp4"}))
	before := c.Snapshot()

	err := c.SubmitMedia(ctx, FileInput{Name: "notes.pdf", MIMEType: "application/pdf", Path: "/notes.pdf"})
	assert.ErrorIs(t, err, ErrUnsupportedMedia)
	err = c.SubmitMedia(ctx, DemoInput{AssetID: "nope"})
	assert.ErrorIs(t, err, ErrUnknownDemoAsset)

	after := c.Snapshot()
	assert.Equal(t, before.Phase, after.Phase)
	assert.Equal(t, before.Generation, after.Generation)
	assert.Same(t, before.Submission, after.Submission)
	assert.Zero(t, video.released.Load())
}

func TestControllerStartRunRequiresSubmission(t *testing.T) {
	c := newTestController(&fakeOpener{}, 1)
	assert.ErrorIs(t, c.StartRun(context.Background()), ErrNoSubmission)
	assert.Equal(t, entity.PhaseIdle, c.Snapshot().Phase)
}

func TestControllerRejectsConcurrentRun(t *testing.T) {
	video := &fakeVideo{duration: 10, gate: make(chan struct{}), seekStarted: make(chan struct{}, 1)}
	c := newTestController(&fakeOpener{videos: map[string]*fakeVideo{"/v.mp4": video}}, 1)
	ctx := context.Background()

	require.NoError(t, c.SubmitMedia(ctx, FileInput{Name: "v.mp4", MIMEType: "video/mp4", Path: "/v.mp4"}))
	require.NoError(t, c.StartRun(ctx))
	<-video.seekStarted

	before := c.Snapshot()
	assert.ErrorIs(t, c.StartRun(ctx), ErrRunAlreadyInProgress)
	after := c.Snapshot()
	assert.Equal(t, entity.PhaseRunning, after.Phase)
	assert.Equal(t, before.Generation, after.Generation)

	close(video.gate)
	_, err := c.Wait(ctx)
	require.NoError(t, err)
}

func TestControllerClearDuringRunIsInert(t *testing.T) {
	video := &fakeVideo{duration: 10, gate: make(chan struct{}), seekStarted: make(chan struct{}, 1)}
	c := newTestController(&fakeOpener{videos: map[string]*fakeVideo{"/v.mp4": video}}, 1)
	ctx := context.Background()

	require.NoError(t, c.SubmitMedia(ctx, FileInput{Name: "v.mp4", MIMEType: "video/mp4", Path: "/v.mp4"}))
	updates, unsubscribe := c.Subscribe(1024)
	require.NoError(t, c.StartRun(ctx))
	<-video.seekStarted

	c.Clear()
	close(video.gate)

	_, err := c.Wait(ctx)
	assert.ErrorIs(t, err, ErrNotComplete)

	assert.Never(t, func() bool {
		return c.Snapshot().Phase != entity.PhaseIdle
	}, 150*time.Millisecond, 5*time.Millisecond)
	assert.Equal(t, int32(1), video.released.Load())

	for _, s := range drain(updates, unsubscribe) {
		assert.NotEqual(t, entity.PhaseComplete, s.Phase)
	}
}

func TestControllerWaitReportsAbortWhenCleared(t *testing.T) {
	video := &fakeVideo{duration: 10, gate: make(chan struct{}), seekStarted: make(chan struct{}, 1)}
	c := newTestController(&fakeOpener{videos: map[string]*fakeVideo{"/v.mp4": video}}, 1)
	ctx := context.Background()

	require.NoError(t, c.SubmitMedia(ctx, FileInput{Name: "v.mp4", MIMEType: "video/mp4", Path: "/v.mp4"}))
	require.NoError(t, c.StartRun(ctx))
	<-video.seekStarted

	waited := make(chan error, 1)
	go func() {
		_, err := c.Wait(ctx)
		waited <- err
	}()

	time.Sleep(50 * time.Millisecond)
	c.Clear()

	select {
	case err := <-waited:
		assert.ErrorIs(t, err, ErrRunAborted)
	case <-time.After(time.Second):
		t.Fatal("wait did not return after clear")
	}
}

func TestControllerReplacingSubmissionReleasesPrevious(t *testing.T) {
	first := &fakeVideo{duration: 10, gate: make(chan struct{}), seekStarted: make(chan struct{}, 1)}
	second := &fakeVideo{duration: 4}
	c := newTestController(&fakeOpener{videos: map[string]*fakeVideo{"/1.mp4": first, "/2.mp4": second}}, 1)
	ctx := context.Background()

	require.NoError(t, c.SubmitMedia(ctx, FileInput{Name: "1.mp4", MIMEType: "video/mp4", Path: "/1.mp4"}))
	require.NoError(t, c.StartRun(ctx))
	<-first.seekStarted

	require.NoError(t, c.SubmitMedia(ctx, FileInput{Name: "2.mp4", MIMEType: "video/mp4", Path: "/2.mp4"}))
	close(first.gate)

	snap := c.Snapshot()
	assert.Equal(t, entity.PhaseReady, snap.Phase)
	assert.Equal(t, "2.mp4", snap.Submission.DisplayName)
	assert.Empty(t, snap.Frames)
	assert.Nil(t, snap.Result)
	assert.Equal(t, int32(1), first.released.Load())

	require.NoError(t, c.StartRun(ctx))
	final, err := c.Wait(ctx)
	require.NoError(t, err)
	assert.Equal(t, "2.mp4", final.Submission.DisplayName)
	assert.Len(t, final.Frames, 8)

	c.Clear()
	c.Clear()
	assert.Equal(t, int32(1), first.released.Load())
	assert.Equal(t, int32(1), second.released.Load())
}

func TestControllerSeekTimeoutRevertsToReady(t *testing.T) {
	video := &fakeVideo{duration: 6, hang: true}
	c := newTestController(&fakeOpener{videos: map[string]*fakeVideo{"/v.mp4": video}}, 1)
	ctx := context.Background()

	require.NoError(t, c.SubmitMedia(ctx, FileInput{Name: "v.mp4", MIMEType: "video/mp4", Path: "/v.mp4"}))
	require.NoError(t, c.StartRun(ctx))

	final, err := c.Wait(ctx)
	assert.ErrorIs(t, err, ErrSeekTimeout)
	assert.Equal(t, entity.PhaseReady, final.Phase)
	assert.Empty(t, final.Frames)
	assert.Nil(t, final.Result)
	assert.ErrorIs(t, final.LastError, ErrSeekTimeout)
	assert.NotNil(t, final.Submission)
}

func TestControllerMetadataErrorRevertsToReady(t *testing.T) {
	video := &fakeVideo{duration: 0}
	c := newTestController(&fakeOpener{videos: map[string]*fakeVideo{"/v.mp4": video}}, 1)
	ctx := context.Background()

	require.NoError(t, c.SubmitMedia(ctx, FileInput{Name: "v.mp4", MIMEType: "video/mp4", Path: "/v.mp4"}))
	require.NoError(t, c.StartRun(ctx))

	final, err := c.Wait(ctx)
	assert.ErrorIs(t, err, ErrMediaMetadata)
	assert.Equal(t, entity.PhaseReady, final.Phase)
}

func TestControllerRerunFromComplete(t *testing.T) {
	video := &fakeVideo{duration: 4}
	c := newTestController(&fakeOpener{videos: map[string]*fakeVideo{"/og1.mp4": video}}, 1)
	ctx := context.Background()

	require.NoError(t, c.SubmitMedia(ctx, FileInput{Name: "og1.mp4", MIMEType: "video/mp4", Path: "/og1.mp4"}))
	require.NoError(t, c.StartRun(ctx))
	first, err := c.Wait(ctx)
	require.NoError(t, err)

	require.NoError(t, c.StartRun(ctx))
	second, err := c.Wait(ctx)
	require.NoError(t, err)

	assert.Greater(t, second.Generation, first.Generation)
	assert.False(t, second.Result.Verdict)
	assert.Equal(t, 94.0, second.Result.ConfidencePercent)
	assert.Len(t, second.Frames, 8)
}

func TestControllerSynthesizeRequiresCompleteRun(t *testing.T) {
	c := newTestController(&fakeOpener{}, 1)
	_, err := c.Synthesize(ReportOptions{})
	assert.ErrorIs(t, err, ErrNotComplete)
}
