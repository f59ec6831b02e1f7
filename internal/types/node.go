package types

import "strings"

// Node is a decoded response element.  Names are local names; the
// namespace is kept separately.
type Node struct {
	Name      string
	Namespace string
	Attrs     map[string]string
	Text      string
	Children  []*Node
}

// Child returns the first direct child with the given local name.
func (n *Node) Child(name string) *Node {
	if n == nil {
		return nil
	}
	for _, child := range n.Children {
		if child.Name == name {
			return child
		}
	}
	return nil
}

// ChildrenNamed returns every direct child with the given local name.
func (n *Node) ChildrenNamed(name string) []*Node {
	if n == nil {
		return nil
	}
	var out []*Node
	for _, child := range n.Children {
		if child.Name == name {
			out = append(out, child)
		}
	}
	return out
}

// Lookup walks a path of child names and returns nil if any step is
// missing.
func (n *Node) Lookup(path ...string) *Node {
	current := n
	for _, name := range path {
		current = current.Child(name)
		if current == nil {
			return nil
		}
	}
	return current
}

// ChildText returns the trimmed text of the named child, or "".
func (n *Node) ChildText(name string) string {
	child := n.Child(name)
	if child == nil {
		return ""
	}
	return strings.TrimSpace(child.Text)
}
