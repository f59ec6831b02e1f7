package adapters

import (
	"os"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"gopkg.in/yaml.v3"

	"yangstage/internal/ports"
)

// DataFileAdapter loads the configuration payload from a YAML file.
type DataFileAdapter struct{}

func NewDataFileAdapter() DataFileAdapter {
	return DataFileAdapter{}
}

func (a DataFileAdapter) LoadData(path string) (map[string]any, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("failed to read data file: " + path).
			WithCause(err)
	}
	var doc yaml.Node
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("failed to parse data file: " + path).
			WithCause(err)
	}
	if len(doc.Content) == 0 || doc.Content[0].Kind != yaml.MappingNode {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("data file must contain a mapping: " + path)
	}
	data := map[string]any{}
	if err := doc.Content[0].Decode(&data); err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("failed to decode data file: " + path).
			WithCause(err)
	}
	return data, nil
}

var _ ports.DataPayloadPort = DataFileAdapter{}
