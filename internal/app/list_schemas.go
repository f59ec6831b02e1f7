package app

import (
	"context"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog/log"

	"yangstage/internal/adapters"
	"yangstage/internal/types"
)

// ListSchemas returns the schema catalogue advertised by the device.
func (s Service) ListSchemas(ctx context.Context, req ListSchemasRequest) (ListSchemasResult, error) {
	patterns, err := normalizePatterns(req.Match)
	if err != nil {
		return ListSchemasResult{}, err
	}
	ctx = runContext(ctx, s.NewRunID())
	dispatcher, err := s.Dial(ctx, req.Device, s.Decoder)
	if err != nil {
		return ListSchemasResult{}, err
	}
	defer func() {
		if err := dispatcher.Close(); err != nil {
			log.Ctx(ctx).Debug().Err(err).Msg("closing device session failed")
		}
	}()
	catalogue, err := adapters.NewSchemaCatalogueAdapter(dispatcher, s.Decoder).ListSchemas(ctx)
	if err != nil {
		return ListSchemasResult{}, err
	}
	return ListSchemasResult{Schemas: filterSchemas(catalogue.Schemas, patterns)}, nil
}

func normalizePatterns(patterns []string) ([]string, error) {
	var out []string
	for _, pattern := range patterns {
		pattern = strings.TrimSpace(pattern)
		if pattern == "" {
			continue
		}
		if !doublestar.ValidatePattern(pattern) {
			return nil, errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg("invalid schema pattern: " + pattern)
		}
		out = append(out, pattern)
	}
	return out, nil
}

func filterSchemas(schemas []types.SchemaDescriptor, patterns []string) []types.SchemaDescriptor {
	if len(patterns) == 0 {
		return schemas
	}
	var out []types.SchemaDescriptor
	for _, schema := range schemas {
		for _, pattern := range patterns {
			if ok, _ := doublestar.Match(pattern, schema.Identifier); ok {
				out = append(out, schema)
				break
			}
		}
	}
	return out
}
