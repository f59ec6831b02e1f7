package core

import "regexp"

// importStmt matches `import <name> {`.  It is the only dependency
// discovery mechanism; the YANG grammar is not parsed.
var importStmt = regexp.MustCompile(`(?m)\bimport\s+["']?([A-Za-z_][A-Za-z0-9_.\-]*)["']?\s*\{`)

// ExtractImports returns the imported module names in source order,
// without duplicates.
func ExtractImports(text string) []string {
	matches := importStmt.FindAllStringSubmatch(text, -1)
	seen := make(map[string]struct{}, len(matches))
	var names []string
	for _, m := range matches {
		name := m[1]
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	return names
}
