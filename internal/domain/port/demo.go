package port

import "github.com/tharunkumardeveloper/truthlensai/internal/domain/entity"

// DemoAsset is a bundled, pre-validated media asset. Path is empty when no real media is
// bundled for the asset.
type DemoAsset struct {
	ID          string
	Kind        entity.MediaKind
	DisplayName string
	MIMEType    string
	Path        string
}

type DemoCatalog interface {
	Lookup(id string) (DemoAsset, bool)
}
