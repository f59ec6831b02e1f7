package types

import "fmt"

// SchemaDescriptor is one entry of the schema list a device advertises in
// ietf-netconf-monitoring.  Identifiers are unique within a catalogue.
type SchemaDescriptor struct {
	Identifier string `yaml:"identifier"`
	Version    string `yaml:"version,omitempty"`
	Namespace  string `yaml:"namespace"`
	Format     string `yaml:"format"`
}

// SchemaCatalogue is the ordered list of descriptors a device returned
// for one run.
type SchemaCatalogue struct {
	Schemas []SchemaDescriptor
	index   map[string]int
}

// NewSchemaCatalogue builds a catalogue keeping the first descriptor for
// each identifier.  Device order is preserved.
func NewSchemaCatalogue(descriptors []SchemaDescriptor) SchemaCatalogue {
	catalogue := SchemaCatalogue{index: make(map[string]int, len(descriptors))}
	for _, desc := range descriptors {
		if _, dup := catalogue.index[desc.Identifier]; dup {
			continue
		}
		catalogue.index[desc.Identifier] = len(catalogue.Schemas)
		catalogue.Schemas = append(catalogue.Schemas, desc)
	}
	return catalogue
}

// Lookup performs an exact, byte-wise match on identifier.
func (c SchemaCatalogue) Lookup(identifier string) (SchemaDescriptor, bool) {
	i, ok := c.index[identifier]
	if !ok {
		return SchemaDescriptor{}, false
	}
	return c.Schemas[i], true
}

// Len returns the number of unique descriptors.
func (c SchemaCatalogue) Len() int {
	return len(c.Schemas)
}

// SchemaContent is the raw module text retrieved for a descriptor.
type SchemaContent struct {
	Descriptor SchemaDescriptor
	Text       string
}

// Identifier returns the module name the content was fetched for.
func (c SchemaContent) Identifier() string {
	return c.Descriptor.Identifier
}

// UnresolvedImport records an import that the device catalogue does not
// provide.
type UnresolvedImport struct {
	Identifier string
	ImportedBy string
}

func (u UnresolvedImport) String() string {
	return fmt.Sprintf("import %s (from %s) not advertised by device", u.Identifier, u.ImportedBy)
}

// DependencySet accumulates resolved modules in discovery order.  Entries
// are never replaced once added.
type DependencySet struct {
	order   []string
	modules map[string]SchemaContent
	parents map[string]string
}

func NewDependencySet() *DependencySet {
	return &DependencySet{
		modules: map[string]SchemaContent{},
		parents: map[string]string{},
	}
}

// Add inserts content under its identifier.  It reports false when the
// identifier is already present; the existing entry is kept.
func (s *DependencySet) Add(content SchemaContent, importedBy string) bool {
	id := content.Identifier()
	if _, ok := s.modules[id]; ok {
		return false
	}
	s.order = append(s.order, id)
	s.modules[id] = content
	s.parents[id] = importedBy
	return true
}

func (s *DependencySet) Get(identifier string) (SchemaContent, bool) {
	content, ok := s.modules[identifier]
	return content, ok
}

// ImportedBy returns the module whose import pulled identifier in.
func (s *DependencySet) ImportedBy(identifier string) string {
	return s.parents[identifier]
}

// Identifiers returns the identifiers in insertion order.
func (s *DependencySet) Identifiers() []string {
	return append([]string(nil), s.order...)
}

// Modules returns the contents in insertion order.
func (s *DependencySet) Modules() []SchemaContent {
	out := make([]SchemaContent, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.modules[id])
	}
	return out
}

func (s *DependencySet) Len() int {
	return len(s.order)
}
