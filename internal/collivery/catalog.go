package collivery

import "sort"

// Catalog is a bidirectional label↔id mapping built once per catalog fetch.
// The checkout UI works with labels, pricing queries with ids, so the
// reverse direction is the hot path.
type Catalog struct {
	labels map[int]string
	ids    map[string]int
}

// NewCatalog builds a Catalog from an id→label mapping.
func NewCatalog(entries map[int]string) Catalog {
	c := Catalog{
		labels: make(map[int]string, len(entries)),
		ids:    make(map[string]int, len(entries)),
	}
	for id, label := range entries {
		c.labels[id] = label
		c.ids[label] = id
	}
	return c
}

// ID resolves a label to its id. The second return is false on a miss;
// callers pass the zero id through to the pricing service unvalidated.
func (c Catalog) ID(label string) (int, bool) {
	id, ok := c.ids[label]
	return id, ok
}

// Label resolves an id to its label.
func (c Catalog) Label(id int) (string, bool) {
	label, ok := c.labels[id]
	return label, ok
}

// Labels returns all labels sorted alphabetically, for checkout selects.
func (c Catalog) Labels() []string {
	out := make([]string, 0, len(c.labels))
	for _, label := range c.labels {
		out = append(out, label)
	}
	sort.Strings(out)
	return out
}

// Len returns the number of catalog entries.
func (c Catalog) Len() int {
	return len(c.labels)
}
