package usecase

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/tharunkumardeveloper/truthlensai/internal/domain/entity"
	"github.com/tharunkumardeveloper/truthlensai/internal/domain/port"
	"github.com/tharunkumardeveloper/truthlensai/internal/infra/metrics"
	"github.com/tharunkumardeveloper/truthlensai/internal/infra/tracing"
	"github.com/tharunkumardeveloper/truthlensai/internal/pipeline"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

const archiveName = "frames.zip"

type AnalyzeMediaUseCase struct {
	repo      port.RunRepository
	storage   port.MediaStorage
	opener    port.MediaOpener
	demos     port.DemoCatalog
	archiver  port.FrameArchiver
	renderers []port.ReportRenderer
	publisher port.StatusPublisher
	dlq       port.DLQPublisher
	notifier  port.FailureNotifier
	logger    *zap.Logger
	cfg       AnalyzeMediaConfig
}

type AnalyzeMediaConfig struct {
	TempDir    string
	MaxRetries int
	Pipeline   pipeline.Options
	// Now stamps reports. Defaults to time.Now.
	Now func() time.Time
}

func NewAnalyzeMediaUseCase(
	repo port.RunRepository,
	storage port.MediaStorage,
	opener port.MediaOpener,
	demos port.DemoCatalog,
	archiver port.FrameArchiver,
	renderers []port.ReportRenderer,
	publisher port.StatusPublisher,
	dlq port.DLQPublisher,
	notifier port.FailureNotifier,
	logger *zap.Logger,
	cfg AnalyzeMediaConfig,
) *AnalyzeMediaUseCase {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &AnalyzeMediaUseCase{
		repo:      repo,
		storage:   storage,
		opener:    opener,
		demos:     demos,
		archiver:  archiver,
		renderers: renderers,
		publisher: publisher,
		dlq:       dlq,
		notifier:  notifier,
		logger:    logger,
		cfg:       cfg,
	}
}

// Execute handles one raw request. A nil return acks the message: the run either completed
// or failed permanently. A non-nil return asks the consumer to requeue it.
func (uc *AnalyzeMediaUseCase) Execute(ctx context.Context, rawMsg []byte) error {
	tracer := tracing.Tracer()
	ctx, span := tracer.Start(ctx, "AnalyzeMediaUseCase.Execute")
	defer span.End()

	totalTimer := time.Now()

	var msg entity.AnalysisRequestMessage
	if err := json.Unmarshal(rawMsg, &msg); err != nil {
		uc.logger.Error("failed to unmarshal message", zap.Error(err), zap.ByteString("body", rawMsg))
		_ = uc.dlq.PublishToDLQ(ctx, rawMsg, "unmarshal_error: "+err.Error())
		return nil
	}
	if msg.RunID == uuid.Nil {
		uc.logger.Error("message without run id", zap.ByteString("body", rawMsg))
		_ = uc.dlq.PublishToDLQ(ctx, rawMsg, "invalid_message: missing run_id")
		return nil
	}

	span.SetAttributes(
		attribute.String("run.id", msg.RunID.String()),
		attribute.String("run.media_key", msg.MediaKey),
		attribute.String("run.demo_asset", msg.DemoAsset),
	)

	log := uc.logger.With(zap.String("run_id", msg.RunID.String()), zap.String("media", mediaName(msg)))

	run, err := uc.repo.FindByID(ctx, msg.RunID)
	if err != nil {
		run = entity.NewAnalysisRun(msg.UserID, msg.MediaKey, mediaName(msg), uc.cfg.MaxRetries)
		run.ID = msg.RunID
		if err := uc.repo.Create(ctx, run); err != nil {
			log.Error("failed to create run record", zap.Error(err))
			return fmt.Errorf("create run: %w", err)
		}
	}

	if !run.CanRetry() {
		log.Warn("run exhausted retries, sending to DLQ")
		_ = uc.handlePermanentFailure(ctx, run, msg, rawMsg, "max retries exceeded")
		return nil
	}

	run.MarkProcessing()
	if err := uc.repo.Update(ctx, run); err != nil {
		log.Error("failed to update run to PROCESSING", zap.Error(err))
		return fmt.Errorf("update run: %w", err)
	}
	uc.publishStatus(ctx, run, nil, log)

	metrics.ActiveRuns.Inc()
	defer metrics.ActiveRuns.Dec()

	if err := uc.analyze(ctx, run, msg, rawMsg, log); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	metrics.RunsProcessedTotal.WithLabelValues("completed").Inc()
	metrics.RunStageDuration.WithLabelValues("total").Observe(time.Since(totalTimer).Seconds())
	return nil
}

func (uc *AnalyzeMediaUseCase) analyze(
	ctx context.Context,
	run *entity.AnalysisRun,
	msg entity.AnalysisRequestMessage,
	rawMsg []byte,
	log *zap.Logger,
) error {
	tracer := tracing.Tracer()

	workDir := filepath.Join(uc.cfg.TempDir, run.ID.String())
	if err := os.MkdirAll(workDir, 0755); err != nil {
		return fmt.Errorf("create workdir: %w", err)
	}
	defer os.RemoveAll(workDir)

	fetchStart := time.Now()
	fetchCtx, spanFetch := tracer.Start(ctx, "fetch_media")
	input, err := uc.fetchMedia(fetchCtx, msg, workDir)
	spanFetch.End()
	if err != nil {
		log.Error("failed to fetch media", zap.Error(err))
		return uc.handleRetryableFailure(ctx, run, msg, rawMsg, "fetch_media: "+err.Error(), log)
	}
	metrics.RunStageDuration.WithLabelValues("fetch").Observe(time.Since(fetchStart).Seconds())

	pipeStart := time.Now()
	pipeCtx, spanPipe := tracer.Start(ctx, "run_pipeline")
	ctrl := pipeline.New(uc.opener, uc.demos, uc.cfg.Pipeline, log)
	defer ctrl.Clear()
	state, err := uc.runPipeline(pipeCtx, ctrl, run, input, log)
	spanPipe.End()
	if err != nil {
		log.Warn("pipeline failed", zap.Error(err))
		if errors.Is(err, pipeline.ErrSeekTimeout) {
			metrics.SeekTimeoutsTotal.Inc()
		}
		if IsPermanent(err) {
			return uc.handlePermanentFailure(ctx, run, msg, rawMsg, "run_pipeline: "+err.Error())
		}
		return uc.handleRetryableFailure(ctx, run, msg, rawMsg, "run_pipeline: "+err.Error(), log)
	}
	metrics.RunStageDuration.WithLabelValues("pipeline").Observe(time.Since(pipeStart).Seconds())
	metrics.FramesSampledTotal.Add(float64(len(state.Frames)))

	renderStart := time.Now()
	renderCtx, spanRender := tracer.Start(ctx, "render_report")
	artifacts, err := uc.renderArtifacts(renderCtx, ctrl, state, run, workDir)
	spanRender.End()
	if err != nil {
		log.Error("failed to render report", zap.Error(err))
		return uc.handleRetryableFailure(ctx, run, msg, rawMsg, "render_report: "+err.Error(), log)
	}
	metrics.RunStageDuration.WithLabelValues("render").Observe(time.Since(renderStart).Seconds())

	uploadStart := time.Now()
	uploadCtx, spanUpload := tracer.Start(ctx, "upload_artifacts")
	err = uc.uploadArtifacts(uploadCtx, artifacts)
	spanUpload.End()
	if err != nil {
		log.Error("failed to upload artifacts", zap.Error(err))
		return uc.handleRetryableFailure(ctx, run, msg, rawMsg, "upload_artifacts: "+err.Error(), log)
	}
	metrics.RunStageDuration.WithLabelValues("upload").Observe(time.Since(uploadStart).Seconds())

	if state.Submission != nil && state.Submission.DisplayName != "" {
		run.DisplayName = state.Submission.DisplayName
	}
	run.MarkCompleted(*state.Result, len(state.Frames), artifacts.reportKeys(), artifacts.archiveKey)
	if err := uc.repo.Update(ctx, run); err != nil {
		log.Error("failed to update run to COMPLETED", zap.Error(err))
		return fmt.Errorf("update run completed: %w", err)
	}

	uc.publishStatus(ctx, run, &state, log)

	log.Info("run completed successfully",
		zap.Int("frame_count", len(state.Frames)),
		zap.Bool("verdict", state.Result.Verdict),
		zap.Float64("confidence", state.Result.ConfidencePercent),
		zap.Strings("report_keys", run.ReportKeys),
	)
	return nil
}

func (uc *AnalyzeMediaUseCase) fetchMedia(ctx context.Context, msg entity.AnalysisRequestMessage, workDir string) (pipeline.MediaInput, error) {
	if msg.DemoAsset != "" {
		return pipeline.DemoInput{AssetID: msg.DemoAsset}, nil
	}

	name := mediaName(msg)
	localPath := filepath.Join(workDir, "input"+filepath.Ext(name))
	if err := uc.storage.DownloadMedia(ctx, msg.MediaKey, localPath); err != nil {
		return nil, err
	}
	return pipeline.FileInput{Name: name, MIMEType: msg.MIMEType, Path: localPath}, nil
}

// runPipeline drives the controller through one run while streaming its progress as
// status messages.
func (uc *AnalyzeMediaUseCase) runPipeline(
	ctx context.Context,
	ctrl *pipeline.Controller,
	run *entity.AnalysisRun,
	input pipeline.MediaInput,
	log *zap.Logger,
) (entity.PipelineState, error) {
	updates, unsubscribe := ctrl.Subscribe(1)
	forwarded := make(chan struct{})
	go func() {
		defer close(forwarded)
		for state := range updates {
			if state.Phase != entity.PhaseRunning {
				continue
			}
			uc.publishStatus(ctx, run, &state, log)
		}
	}()
	defer func() {
		unsubscribe()
		<-forwarded
	}()

	if err := ctrl.SubmitMedia(ctx, input); err != nil {
		return entity.PipelineState{}, err
	}
	if err := ctrl.StartRun(ctx); err != nil {
		return entity.PipelineState{}, err
	}
	return ctrl.Wait(ctx)
}

type artifact struct {
	key         string
	path        string
	contentType string
	report      bool
}

type artifactSet struct {
	items      []artifact
	archiveKey string
}

func (a artifactSet) reportKeys() []string {
	keys := make([]string, 0, len(a.items))
	for _, it := range a.items {
		if it.report {
			keys = append(keys, it.key)
		}
	}
	return keys
}

func (uc *AnalyzeMediaUseCase) renderArtifacts(ctx context.Context, ctrl *pipeline.Controller, state entity.PipelineState, run *entity.AnalysisRun, workDir string) (artifactSet, error) {
	report, err := ctrl.Synthesize(pipeline.ReportOptions{Now: uc.cfg.Now(), Rand: uc.cfg.Pipeline.Rand})
	if err != nil {
		return artifactSet{}, fmt.Errorf("synthesize report: %w", err)
	}

	prefix := path.Join(run.UserID, run.ID.String())
	var set artifactSet
	for _, r := range uc.renderers {
		var buf bytes.Buffer
		if err := r.Render(&buf, report); err != nil {
			return artifactSet{}, fmt.Errorf("render %s: %w", r.Extension(), err)
		}
		name := report.FileBase + r.Extension()
		localPath := filepath.Join(workDir, name)
		if err := os.WriteFile(localPath, buf.Bytes(), 0644); err != nil {
			return artifactSet{}, fmt.Errorf("write %s: %w", name, err)
		}
		set.items = append(set.items, artifact{
			key:         path.Join(prefix, name),
			path:        localPath,
			contentType: r.ContentType(),
			report:      true,
		})
	}

	archivePath := filepath.Join(workDir, archiveName)
	if err := uc.archiver.CreateArchive(ctx, state.Frames, archivePath); err != nil {
		return artifactSet{}, fmt.Errorf("archive frames: %w", err)
	}
	set.archiveKey = path.Join(prefix, archiveName)
	set.items = append(set.items, artifact{key: set.archiveKey, path: archivePath, contentType: "application/zip"})
	return set, nil
}

func (uc *AnalyzeMediaUseCase) uploadArtifacts(ctx context.Context, set artifactSet) error {
	for _, it := range set.items {
		if err := uc.uploadFile(ctx, it); err != nil {
			return err
		}
	}
	return nil
}

func (uc *AnalyzeMediaUseCase) uploadFile(ctx context.Context, it artifact) error {
	f, err := os.Open(it.path)
	if err != nil {
		return fmt.Errorf("open %s: %w", it.path, err)
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat %s: %w", it.path, err)
	}
	if it.report {
		return uc.storage.UploadReport(ctx, it.key, f, stat.Size(), it.contentType)
	}
	return uc.storage.UploadArchive(ctx, it.key, f, stat.Size())
}

func (uc *AnalyzeMediaUseCase) handleRetryableFailure(
	ctx context.Context,
	run *entity.AnalysisRun,
	msg entity.AnalysisRequestMessage,
	rawMsg []byte,
	errMsg string,
	log *zap.Logger,
) error {
	run.MarkFailed(errMsg)
	_ = uc.repo.Update(ctx, run)

	if !run.CanRetry() {
		return uc.handlePermanentFailure(ctx, run, msg, rawMsg, errMsg)
	}

	metrics.RetryTotal.WithLabelValues(strconv.Itoa(run.Attempt)).Inc()
	uc.publishStatus(ctx, run, nil, log)

	return fmt.Errorf("retryable failure (attempt %d/%d): %s", run.Attempt, run.MaxAttempts, errMsg)
}

func (uc *AnalyzeMediaUseCase) handlePermanentFailure(
	ctx context.Context,
	run *entity.AnalysisRun,
	msg entity.AnalysisRequestMessage,
	rawMsg []byte,
	errMsg string,
) error {
	run.MarkFailed(errMsg)
	_ = uc.repo.Update(ctx, run)

	_ = uc.dlq.PublishToDLQ(ctx, rawMsg, errMsg)

	uc.publishStatus(ctx, run, nil, uc.logger)

	metrics.RunsProcessedTotal.WithLabelValues("dlq").Inc()

	if msg.UserEmail != "" {
		_ = uc.notifier.NotifyFailure(ctx, msg.UserEmail, run.ID.String(), mediaName(msg), errMsg)
	}

	return nil
}

func (uc *AnalyzeMediaUseCase) publishStatus(ctx context.Context, run *entity.AnalysisRun, state *entity.PipelineState, log *zap.Logger) {
	if err := uc.publisher.PublishStatus(ctx, StatusMessage(run, state)); err != nil {
		log.Error("failed to publish status", zap.Error(err))
	}
}

// StatusMessage merges the persisted run with an optional pipeline snapshot.
func StatusMessage(run *entity.AnalysisRun, state *entity.PipelineState) entity.AnalysisStatusMessage {
	msg := entity.AnalysisStatusMessage{
		RunID:         run.ID,
		UserID:        run.UserID,
		Status:        run.Status,
		FramesSampled: run.FrameCount,
		Verdict:       run.Verdict,
		Confidence:    run.Confidence,
		ReportKeys:    run.ReportKeys,
		ArchiveKey:    run.ArchiveKey,
		ErrorMessage:  run.ErrorMessage,
		Attempt:       run.Attempt,
		MaxAttempts:   run.MaxAttempts,
	}
	if run.Status == entity.RunStatusCompleted {
		msg.Progress = pipeline.CompleteProgress
	}
	if state != nil {
		msg.Phase = state.Phase
		msg.Progress = state.Progress
		msg.FramesSampled = len(state.Frames)
	}
	return msg
}

// IsPermanent reports whether retrying the same request cannot succeed.
func IsPermanent(err error) bool {
	return errors.Is(err, pipeline.ErrUnsupportedMedia) ||
		errors.Is(err, pipeline.ErrMediaMetadata) ||
		errors.Is(err, pipeline.ErrUnknownDemoAsset)
}

func mediaName(msg entity.AnalysisRequestMessage) string {
	switch {
	case msg.DisplayName != "":
		return msg.DisplayName
	case msg.MediaKey != "":
		return path.Base(msg.MediaKey)
	default:
		return msg.DemoAsset
	}
}
