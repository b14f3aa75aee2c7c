package demo

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tharunkumardeveloper/truthlensai/internal/domain/entity"
	"github.com/tharunkumardeveloper/truthlensai/internal/domain/port"
	"gopkg.in/yaml.v3"
)

type assetFile struct {
	Assets []assetEntry `yaml:"assets"`
}

type assetEntry struct {
	ID          string `yaml:"id"`
	Kind        string `yaml:"kind"`
	DisplayName string `yaml:"display_name"`
	MIMEType    string `yaml:"mime_type"`
	Path        string `yaml:"path"`
}

type Catalog struct {
	assets map[string]port.DemoAsset
}

// Default returns the built-in assets. None has bundled bytes, so both fall back to
// placeholder sampling.
func Default() *Catalog {
	return newCatalog([]port.DemoAsset{
		{
			ID:          "deepfake-video",
			Kind:        entity.MediaKindVideo,
			DisplayName: "demo-deepfake-video.mp4",
			MIMEType:    "video/mp4",
		},
		{
			ID:          "stego-image",
			Kind:        entity.MediaKindImage,
			DisplayName: "demo-image.jpg",
			MIMEType:    "image/jpeg",
		},
	})
}

// LoadCatalog reads a YAML asset list. Relative asset paths resolve against the catalog
// file's directory. An empty path yields the default catalog.
func LoadCatalog(path string) (*Catalog, error) {
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read demo catalog: %w", err)
	}

	var file assetFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse demo catalog: %w", err)
	}

	base := filepath.Dir(path)
	assets := make([]port.DemoAsset, 0, len(file.Assets))
	for i, e := range file.Assets {
		if e.ID == "" {
			return nil, fmt.Errorf("demo asset %d: missing id", i)
		}
		asset := port.DemoAsset{
			ID:          e.ID,
			DisplayName: e.DisplayName,
			MIMEType:    e.MIMEType,
			Path:        e.Path,
		}
		switch {
		case e.Kind != "":
			asset.Kind = entity.MediaKind(strings.ToUpper(e.Kind))
		default:
			kind, ok := entity.KindForMIME(e.MIMEType)
			if !ok {
				return nil, fmt.Errorf("demo asset %q: cannot infer kind from mime type %q", e.ID, e.MIMEType)
			}
			asset.Kind = kind
		}
		if asset.Kind != entity.MediaKindVideo && asset.Kind != entity.MediaKindImage {
			return nil, fmt.Errorf("demo asset %q: unknown kind %q", e.ID, e.Kind)
		}
		if asset.DisplayName == "" {
			asset.DisplayName = e.ID
		}
		if asset.Path != "" && !filepath.IsAbs(asset.Path) {
			asset.Path = filepath.Join(base, asset.Path)
		}
		assets = append(assets, asset)
	}
	return newCatalog(assets), nil
}

func newCatalog(assets []port.DemoAsset) *Catalog {
	c := &Catalog{assets: make(map[string]port.DemoAsset, len(assets))}
	for _, a := range assets {
		c.assets[a.ID] = a
	}
	return c
}

func (c *Catalog) Lookup(id string) (port.DemoAsset, bool) {
	a, ok := c.assets[id]
	return a, ok
}
