package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tharunkumardeveloper/truthlensai/internal/domain/entity"
	"github.com/tharunkumardeveloper/truthlensai/internal/domain/port"
	"github.com/tharunkumardeveloper/truthlensai/internal/infra/demo"
	"github.com/tharunkumardeveloper/truthlensai/internal/infra/ffmpeg"
	"github.com/tharunkumardeveloper/truthlensai/internal/infra/report"
	"github.com/tharunkumardeveloper/truthlensai/internal/pipeline"
	"go.uber.org/zap"
)

var fixedNow = time.Date(2026, 10, 19, 9, 30, 0, 0, time.UTC)

type fakeRepo struct {
	mu   sync.Mutex
	runs map[uuid.UUID]entity.AnalysisRun
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{runs: make(map[uuid.UUID]entity.AnalysisRun)}
}

func (r *fakeRepo) Create(_ context.Context, run *entity.AnalysisRun) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs[run.ID] = *run
	return nil
}

func (r *fakeRepo) Update(_ context.Context, run *entity.AnalysisRun) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.runs[run.ID]; !ok {
		return errors.New("not found")
	}
	r.runs[run.ID] = *run
	return nil
}

func (r *fakeRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.AnalysisRun, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	run, ok := r.runs[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return &run, nil
}

func (r *fakeRepo) get(id uuid.UUID) entity.AnalysisRun {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.runs[id]
}

type upload struct {
	contentType string
	data        []byte
}

type fakeStorage struct {
	downloadErr error

	mu      sync.Mutex
	uploads map[string]upload
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{uploads: make(map[string]upload)}
}

func (s *fakeStorage) DownloadMedia(_ context.Context, key string, dest string) error {
	if s.downloadErr != nil {
		return s.downloadErr
	}
	return os.WriteFile(dest, []byte("media:"+key), 0o644)
}

func (s *fakeStorage) UploadReport(_ context.Context, key string, r io.Reader, _ int64, contentType string) error {
	return s.put(key, r, contentType)
}

func (s *fakeStorage) UploadArchive(_ context.Context, key string, r io.Reader, _ int64) error {
	return s.put(key, r, "application/zip")
}

func (s *fakeStorage) put(key string, r io.Reader, contentType string) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.uploads[key] = upload{contentType: contentType, data: data}
	return nil
}

type fakeVideo struct {
	duration float64
	pos      float64
}

func (v *fakeVideo) Duration(context.Context) (float64, error) { return v.duration, nil }

func (v *fakeVideo) Seek(_ context.Context, seconds float64) error {
	v.pos = seconds
	return nil
}

func (v *fakeVideo) Capture(context.Context, int, int, int) ([]byte, error) {
	return []byte(fmt.Sprintf("frame@%.2f", v.pos)), nil
}

func (v *fakeVideo) Release() error { return nil }

type fakeOpener struct {
	duration float64
}

func (o fakeOpener) OpenVideo(context.Context, string) (port.VideoHandle, error) {
	return &fakeVideo{duration: o.duration}, nil
}

func (o fakeOpener) OpenImage(context.Context, string) (port.StillHandle, error) {
	return nil, errors.New("images are not decodable here")
}

type dlqEntry struct {
	body   []byte
	reason string
}

type fakeBus struct {
	mu       sync.Mutex
	statuses []entity.AnalysisStatusMessage
	dlq      []dlqEntry
}

func (b *fakeBus) PublishStatus(_ context.Context, msg entity.AnalysisStatusMessage) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.statuses = append(b.statuses, msg)
	return nil
}

func (b *fakeBus) PublishToDLQ(_ context.Context, msg []byte, reason string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.dlq = append(b.dlq, dlqEntry{body: msg, reason: reason})
	return nil
}

func (b *fakeBus) snapshot() ([]entity.AnalysisStatusMessage, []dlqEntry) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]entity.AnalysisStatusMessage(nil), b.statuses...), append([]dlqEntry(nil), b.dlq...)
}

type notification struct {
	to, runID, media, errMsg string
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []notification
}

func (n *fakeNotifier) NotifyFailure(_ context.Context, to, runID, media, errMsg string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, notification{to: to, runID: runID, media: media, errMsg: errMsg})
	return nil
}

type harness struct {
	uc       *AnalyzeMediaUseCase
	repo     *fakeRepo
	storage  *fakeStorage
	bus      *fakeBus
	notifier *fakeNotifier
}

func newHarness(tempDir string, opener port.MediaOpener, maxRetries int) *harness {
	h := &harness{
		repo:     newFakeRepo(),
		storage:  newFakeStorage(),
		bus:      &fakeBus{},
		notifier: &fakeNotifier{},
	}
	renderers, err := report.ForFormats([]string{"markdown", "html"})
	if err != nil {
		panic(err)
	}
	h.uc = NewAnalyzeMediaUseCase(
		h.repo, h.storage, opener, demo.Default(), ffmpeg.NewFrameArchiver(), renderers,
		h.bus, h.bus, h.notifier,
		zap.NewNop(),
		AnalyzeMediaConfig{
			TempDir:    tempDir,
			MaxRetries: maxRetries,
			Pipeline: pipeline.Options{
				Sleep: pipeline.NoSleep,
				Rand:  rand.New(rand.NewPCG(11, 13)),
			},
			Now: func() time.Time { return fixedNow },
		},
	)
	return h
}
