// Package script detects text written in scripts that must not reach the image renderer.
package script

import (
	"fmt"
	"strings"
	"unicode"
)

// Detector reports whether text contains any rune from a fixed set of Unicode scripts.
// The zero Detector matches nothing.
type Detector struct {
	names  []string
	tables []*unicode.RangeTable
}

// Hebrew returns the detector used by the default deployment.
func Hebrew() Detector {
	return Detector{
		names:  []string{"Hebrew"},
		tables: []*unicode.RangeTable{unicode.Hebrew},
	}
}

// New builds a detector from unicode.Scripts names such as "Hebrew", "Arabic" or "Cyrillic".
// Names are matched case-insensitively.
func New(names ...string) (Detector, error) {
	var d Detector
	for _, raw := range names {
		name := strings.TrimSpace(raw)
		if name == "" {
			continue
		}

		canonical, table, ok := lookup(name)
		if !ok {
			return Detector{}, fmt.Errorf("unknown script %q", name)
		}
		if containsString(d.names, canonical) {
			continue
		}
		d.names = append(d.names, canonical)
		d.tables = append(d.tables, table)
	}

	if len(d.tables) == 0 {
		return Detector{}, fmt.Errorf("no scripts given")
	}
	return d, nil
}

// Contains reports whether text has at least one rune of a reserved script.
func (d Detector) Contains(text string) bool {
	if len(d.tables) == 0 {
		return false
	}
	for _, r := range text {
		if r < 0x80 {
			continue
		}
		if unicode.In(r, d.tables...) {
			return true
		}
	}
	return false
}

func (d Detector) Name() string {
	return strings.Join(d.names, "+")
}

func lookup(name string) (string, *unicode.RangeTable, bool) {
	if table, ok := unicode.Scripts[name]; ok {
		return name, table, true
	}
	for key, table := range unicode.Scripts {
		if strings.EqualFold(key, name) {
			return key, table, true
		}
	}
	return "", nil, false
}

func containsString(list []string, v string) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}
