package pipeline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tharunkumardeveloper/truthlensai/internal/domain/entity"
	"github.com/tharunkumardeveloper/truthlensai/internal/domain/port"
	"go.uber.org/zap"
)

func TestLoaderFileInput(t *testing.T) {
	video := &fakeVideo{duration: 3}
	loader := NewMediaLoader(&fakeOpener{videos: map[string]*fakeVideo{"/v.webm": video}}, testCatalog, zap.NewNop())

	sub, err := loader.Load(context.Background(), FileInput{Name: "v.webm", MIMEType: "video/webm", Path: "/v.webm"})
	require.NoError(t, err)
	assert.Equal(t, entity.MediaKindVideo, sub.Kind)
	assert.Equal(t, "v.webm", sub.DisplayName)
	assert.False(t, sub.IsDemo())

	_, isVideo := sub.Handle.(port.VideoHandle)
	assert.True(t, isVideo)

	require.NoError(t, sub.Handle.Release())
	require.NoError(t, sub.Handle.Release())
	assert.Equal(t, int32(1), video.released.Load())
}

func TestLoaderRejectsMissingOrForeignMIME(t *testing.T) {
	loader := NewMediaLoader(&fakeOpener{}, testCatalog, zap.NewNop())
	for _, mt := range []string{"", "text/plain", "application/octet-stream", "audio/mpeg"} {
		_, err := loader.Load(context.Background(), FileInput{Name: "x", MIMEType: mt, Path: "/x"})
		assert.ErrorIs(t, err, ErrUnsupportedMedia, mt)
	}
}

func TestLoaderUndecodableFile(t *testing.T) {
	loader := NewMediaLoader(&fakeOpener{}, testCatalog, zap.NewNop())
	_, err := loader.Load(context.Background(), FileInput{Name: "x.png", MIMEType: "image/png", Path: "/missing.png"})
	assert.ErrorIs(t, err, ErrUnsupportedMedia)
}

func TestLoaderDemoBypassesMIMECheck(t *testing.T) {
	loader := NewMediaLoader(&fakeOpener{}, testCatalog, zap.NewNop())

	sub, err := loader.Load(context.Background(), DemoInput{AssetID: "stego-image"})
	require.NoError(t, err)
	assert.Equal(t, entity.MediaKindImage, sub.Kind)
	assert.Equal(t, "demo-image.jpg", sub.DisplayName)
	assert.True(t, sub.IsDemo())
	assert.Nil(t, sub.Handle)

	_, err = loader.Load(context.Background(), DemoInput{AssetID: "missing"})
	assert.ErrorIs(t, err, ErrUnknownDemoAsset)
}

func TestLoaderDemoWithBundledMedia(t *testing.T) {
	video := &fakeVideo{duration: 8}
	catalog := fakeCatalog{"bundled": {ID: "bundled", Kind: entity.MediaKindVideo, DisplayName: "dee1.mp4", MIMEType: "video/mp4", Path: "/assets/dee1.mp4"}}
	loader := NewMediaLoader(&fakeOpener{videos: map[string]*fakeVideo{"/assets/dee1.mp4": video}}, catalog, zap.NewNop())

	sub, err := loader.Load(context.Background(), DemoInput{AssetID: "bundled"})
	require.NoError(t, err)
	require.NotNil(t, sub.Handle)
	assert.Equal(t, "bundled", sub.DemoAsset)
}
