package ports

// DataPayloadPort loads the configuration payload handed to a run.
type DataPayloadPort interface {
	LoadData(path string) (map[string]any, error)
}
