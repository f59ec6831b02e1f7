package ports

import (
	"context"

	"yangstage/internal/types"
)

// SchemaCataloguePort looks up modules advertised by a device.
//
// ListSchemas queries the device at most once per instance; later calls
// return the memoized catalogue.
type SchemaCataloguePort interface {
	ListSchemas(ctx context.Context) (types.SchemaCatalogue, error)

	// ResolveSchema returns (content, true, nil) on hit, (zero, false, nil)
	// when the identifier is not in the catalogue, or (zero, false, err) on
	// failure.  No content request is issued on a miss.
	ResolveSchema(ctx context.Context, identifier string) (types.SchemaContent, bool, error)
}
