package app

import "yangstage/internal/types"

const DefaultSearchPath = "~/.yangstage/yang"

type CreateConfigRequest struct {
	Device               types.DeviceConfig
	Schemas              []string
	DataPath             string
	SearchPath           string
	OutputDir            string
	Compiler             string
	CompilerFormat       string
	Transitive           bool
	FailOnMissingImports bool
}

type CreateConfigResult struct {
	RunID        string
	Changed      bool
	Warnings     []string
	Modules      []types.ModuleOutcome
	ManifestPath string
}

type FetchRequest struct {
	Device               types.DeviceConfig
	Schemas              []string
	SearchPath           string
	Transitive           bool
	FailOnMissingImports bool
}

type FetchResult struct {
	RunID        string
	Warnings     []string
	Modules      []types.ModuleOutcome
	ManifestPath string
}

type ListSchemasRequest struct {
	Device types.DeviceConfig
	// Match keeps identifiers matching any of these glob patterns; empty
	// keeps everything.
	Match []string
}

type ListSchemasResult struct {
	Schemas []types.SchemaDescriptor
}
