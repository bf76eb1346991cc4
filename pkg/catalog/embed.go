package catalog

import (
	_ "embed"
	"fmt"
	"sync"
)

//go:embed types.yaml
var bundledTypes []byte

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
)

// Default returns the catalog built from the bundled types.yaml. The bundle
// is part of the binary, so a parse failure is a build defect and panics.
func Default() *Catalog {
	defaultOnce.Do(func() {
		c, err := Parse(bundledTypes)
		if err != nil {
			panic(fmt.Sprintf("catalog: bundled types.yaml is invalid: %v", err))
		}
		defaultCatalog = c
	})
	return defaultCatalog
}
