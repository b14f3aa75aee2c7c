package pipeline

import (
	"context"
	"fmt"
	"sync"

	"github.com/tharunkumardeveloper/truthlensai/internal/domain/entity"
	"github.com/tharunkumardeveloper/truthlensai/internal/domain/port"
	"go.uber.org/zap"
)

// MediaInput is either a FileInput or a DemoInput.
type MediaInput interface {
	isMediaInput()
}

// FileInput is a user-provided file on local disk with its declared MIME type.
type FileInput struct {
	Name     string
	MIMEType string
	Path     string
}

// DemoInput references a bundled demo asset by its stable identifier.
type DemoInput struct {
	AssetID string
}

func (FileInput) isMediaInput() {}
func (DemoInput) isMediaInput() {}

type MediaLoader struct {
	opener port.MediaOpener
	demos  port.DemoCatalog
	logger *zap.Logger
}

func NewMediaLoader(opener port.MediaOpener, demos port.DemoCatalog, logger *zap.Logger) *MediaLoader {
	return &MediaLoader{opener: opener, demos: demos, logger: logger}
}

// Load turns an input into a submission whose handle releases at most once.
func (l *MediaLoader) Load(ctx context.Context, input MediaInput) (*entity.MediaSubmission, error) {
	switch in := input.(type) {
	case FileInput:
		return l.loadFile(ctx, in)
	case DemoInput:
		return l.loadDemo(ctx, in)
	default:
		return nil, fmt.Errorf("%w: unknown input %T", ErrUnsupportedMedia, input)
	}
}

func (l *MediaLoader) loadFile(ctx context.Context, in FileInput) (*entity.MediaSubmission, error) {
	kind, ok := entity.KindForMIME(in.MIMEType)
	if !ok {
		return nil, fmt.Errorf("%w: mime type %q", ErrUnsupportedMedia, in.MIMEType)
	}

	handle, err := l.open(ctx, kind, in.Path)
	if err != nil {
		return nil, err
	}

	l.logger.Debug("media loaded",
		zap.String("name", in.Name),
		zap.String("kind", string(kind)),
		zap.String("mime_type", in.MIMEType),
	)

	return &entity.MediaSubmission{
		Kind:        kind,
		DisplayName: in.Name,
		MIMEType:    in.MIMEType,
		Handle:      handle,
	}, nil
}

func (l *MediaLoader) loadDemo(ctx context.Context, in DemoInput) (*entity.MediaSubmission, error) {
	if l.demos == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownDemoAsset, in.AssetID)
	}
	asset, ok := l.demos.Lookup(in.AssetID)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownDemoAsset, in.AssetID)
	}

	sub := &entity.MediaSubmission{
		Kind:        asset.Kind,
		DisplayName: asset.DisplayName,
		MIMEType:    asset.MIMEType,
		DemoAsset:   asset.ID,
	}
	if asset.Path == "" {
		l.logger.Debug("demo asset has no bundled media", zap.String("asset", asset.ID))
		return sub, nil
	}

	handle, err := l.open(ctx, asset.Kind, asset.Path)
	if err != nil {
		return nil, err
	}
	sub.Handle = handle
	return sub, nil
}

func (l *MediaLoader) open(ctx context.Context, kind entity.MediaKind, path string) (entity.SourceHandle, error) {
	switch kind {
	case entity.MediaKindVideo:
		h, err := l.opener.OpenVideo(ctx, path)
		if err != nil {
			return nil, fmt.Errorf("%w: open video: %v", ErrUnsupportedMedia, err)
		}
		return &videoSource{VideoHandle: h}, nil
	case entity.MediaKindImage:
		h, err := l.opener.OpenImage(ctx, path)
		if err != nil {
			return nil, fmt.Errorf("%w: open image: %v", ErrUnsupportedMedia, err)
		}
		return &stillSource{StillHandle: h}, nil
	default:
		return nil, fmt.Errorf("%w: kind %q", ErrUnsupportedMedia, kind)
	}
}

type videoSource struct {
	port.VideoHandle
	once sync.Once
	err  error
}

func (v *videoSource) Release() error {
	v.once.Do(func() { v.err = v.VideoHandle.Release() })
	return v.err
}

type stillSource struct {
	port.StillHandle
	once sync.Once
	err  error
}

func (s *stillSource) Release() error {
	s.once.Do(func() { s.err = s.StillHandle.Release() })
	return s.err
}
