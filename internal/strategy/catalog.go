package strategy

import (
	"errors"
	"strings"
)

// Catalog is the ordered, fixed list of style labels used in Styles mode.
type Catalog struct {
	labels []string
}

var defaultLabels = []string{
	"Realistic",
	"Anime",
	"Cyberpunk",
	"Watercolor",
	"Sketch",
	"Oil Painting",
	"Japanese Ukiyo-e",
}

func DefaultCatalog() Catalog {
	c, _ := NewCatalog(defaultLabels...)
	return c
}

// NewCatalog keeps the given order, trims labels and drops blanks and case-insensitive duplicates.
func NewCatalog(labels ...string) (Catalog, error) {
	out := make([]string, 0, len(labels))
	seen := make(map[string]struct{}, len(labels))
	for _, label := range labels {
		label = strings.Join(strings.Fields(label), " ")
		if label == "" {
			continue
		}
		key := strings.ToLower(label)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, label)
	}
	if len(out) == 0 {
		return Catalog{}, errors.New("style catalog is empty")
	}
	return Catalog{labels: out}, nil
}

// ParseCatalog reads a comma separated label list; an empty value yields the default catalog.
func ParseCatalog(raw string) (Catalog, error) {
	if strings.TrimSpace(raw) == "" {
		return DefaultCatalog(), nil
	}
	return NewCatalog(strings.Split(raw, ",")...)
}

func (c Catalog) Len() int {
	return len(c.labels)
}

func (c Catalog) Labels() []string {
	out := make([]string, len(c.labels))
	copy(out, c.labels)
	return out
}
