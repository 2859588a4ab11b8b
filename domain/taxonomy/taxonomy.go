// Package taxonomy holds the static functional grouping of analytes and the
// naming rules the dashboard uses to show them.
package taxonomy

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed groups.yaml
var defaultGroupsYAML []byte

const (
	// CategoryAll selects every ingested analyte
	CategoryAll = "All"
	// Uncategorized is the category of analytes no group declares
	Uncategorized = "Uncategorized"
)

// FunctionalGroup is one named class of analytes
type FunctionalGroup struct {
	Name     string   `yaml:"name" json:"name"`
	Analytes []string `yaml:"analytes" json:"analytes"`
}

type document struct {
	Groups []FunctionalGroup `yaml:"groups"`
}

// Taxonomy is the ordered set of functional groups plus a reverse index from
// analyte key to the first group that declares it.
type Taxonomy struct {
	groups  []FunctionalGroup
	byName  map[string]int
	reverse map[string]string
}

// Parse decodes a taxonomy document and builds its indexes
func Parse(data []byte) (*Taxonomy, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse taxonomy: %w", err)
	}
	if len(doc.Groups) == 0 {
		return nil, fmt.Errorf("taxonomy declares no groups")
	}
	return New(doc.Groups)
}

// New builds a taxonomy from groups in declaration order
func New(groups []FunctionalGroup) (*Taxonomy, error) {
	t := &Taxonomy{
		groups:  make([]FunctionalGroup, 0, len(groups)),
		byName:  make(map[string]int, len(groups)),
		reverse: make(map[string]string),
	}

	for _, g := range groups {
		name := strings.TrimSpace(g.Name)
		if name == "" {
			return nil, fmt.Errorf("taxonomy group with empty name")
		}
		if name == CategoryAll || name == Uncategorized {
			return nil, fmt.Errorf("taxonomy group name %q is reserved", name)
		}
		if _, dup := t.byName[name]; dup {
			return nil, fmt.Errorf("duplicate taxonomy group %q", name)
		}

		members := make([]string, 0, len(g.Analytes))
		for _, a := range g.Analytes {
			key := strings.TrimSpace(a)
			if key == "" {
				continue
			}
			members = append(members, key)
			// first declaring group wins
			if _, taken := t.reverse[key]; !taken {
				t.reverse[key] = name
			}
		}

		t.byName[name] = len(t.groups)
		t.groups = append(t.groups, FunctionalGroup{Name: name, Analytes: members})
	}

	return t, nil
}

var (
	defaultOnce sync.Once
	defaultTax  *Taxonomy
)

// Default returns the embedded five-group taxonomy
func Default() *Taxonomy {
	defaultOnce.Do(func() {
		t, err := Parse(defaultGroupsYAML)
		if err != nil {
			panic(fmt.Sprintf("embedded taxonomy is invalid: %v", err))
		}
		defaultTax = t
	})
	return defaultTax
}

// LoadFile reads a taxonomy document from disk, falling back to the embedded
// one when path is empty.
func LoadFile(path string) (*Taxonomy, error) {
	if strings.TrimSpace(path) == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("failed to read taxonomy file: %w", err)
	}
	return Parse(data)
}

// Groups returns the groups in declaration order
func (t *Taxonomy) Groups() []FunctionalGroup {
	out := make([]FunctionalGroup, len(t.groups))
	for i, g := range t.groups {
		out[i] = FunctionalGroup{Name: g.Name, Analytes: append([]string(nil), g.Analytes...)}
	}
	return out
}

// Names returns the group names in declaration order
func (t *Taxonomy) Names() []string {
	names := make([]string, len(t.groups))
	for i, g := range t.groups {
		names[i] = g.Name
	}
	return names
}

// Members returns the declared analytes of a group
func (t *Taxonomy) Members(name string) ([]string, bool) {
	i, ok := t.byName[name]
	if !ok {
		return nil, false
	}
	return append([]string(nil), t.groups[i].Analytes...), true
}

// CategoryOf returns the first group declaring the analyte, or Uncategorized
func (t *Taxonomy) CategoryOf(analyte string) string {
	if name, ok := t.reverse[strings.TrimSpace(analyte)]; ok {
		return name
	}
	return Uncategorized
}

var beadRegionSuffix = regexp.MustCompile(`\s*\(\d+\)\s*$`)

// DisplayName strips the trailing bead-region suffix: "IL-6 (57)" -> "IL-6"
func DisplayName(analyte string) string {
	return strings.TrimSpace(beadRegionSuffix.ReplaceAllString(analyte, ""))
}
