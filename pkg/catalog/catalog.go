// Package catalog provides the read-only node-type registry consumed by the
// synthesizer and the repairer. A Catalog is immutable once loaded; callers
// hold a single *Catalog for the duration of one pipeline invocation so a
// concurrent refresh can never be observed half-applied.
package catalog

import (
	"fmt"
	"io"
	"sort"

	yaml "gopkg.in/yaml.v3"
)

// FallbackType is the generic pass-through step used whenever a more
// specific node type cannot be determined.
const FallbackType = "n8n-nodes-base.noOp"

// Descriptor describes the capabilities of a single node type.
type Descriptor struct {
	Type           string         `yaml:"type"`
	DisplayName    string         `yaml:"displayName"`
	Inputs         int            `yaml:"inputs"`
	Outputs        int            `yaml:"outputs"`
	Trigger        bool           `yaml:"trigger"`
	RequiredParams []string       `yaml:"requiredParams"`
	Defaults       map[string]any `yaml:"defaults"`
}

// Catalog is an immutable lookup table of node-type descriptors plus the
// deprecation map used by the repairer's type-validity pass.
type Catalog struct {
	types      map[string]Descriptor
	deprecated map[string]string
}

// catalogFile is the YAML layout of a catalog data file.
type catalogFile struct {
	Types      []Descriptor      `yaml:"types"`
	Deprecated map[string]string `yaml:"deprecated"`
}

// Load reads a catalog from YAML. It rejects descriptors that violate the
// trigger invariant (a trigger type accepts no inputs).
func Load(r io.Reader) (*Catalog, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return Parse(data)
}

// Parse builds a Catalog from raw YAML bytes.
func Parse(data []byte) (*Catalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if len(file.Types) == 0 {
		return nil, fmt.Errorf("catalog defines no node types")
	}

	c := &Catalog{
		types:      make(map[string]Descriptor, len(file.Types)),
		deprecated: make(map[string]string, len(file.Deprecated)),
	}
	for _, d := range file.Types {
		if d.Type == "" {
			return nil, fmt.Errorf("catalog entry with empty type id")
		}
		if d.Trigger && d.Inputs != 0 {
			return nil, fmt.Errorf("trigger type %q declares %d inputs; triggers accept none", d.Type, d.Inputs)
		}
		if _, dup := c.types[d.Type]; dup {
			return nil, fmt.Errorf("duplicate catalog entry %q", d.Type)
		}
		c.types[d.Type] = d
	}
	for old, replacement := range file.Deprecated {
		if _, ok := c.types[replacement]; !ok {
			return nil, fmt.Errorf("deprecated type %q maps to unknown replacement %q", old, replacement)
		}
		c.deprecated[old] = replacement
	}
	if _, ok := c.types[FallbackType]; !ok {
		return nil, fmt.Errorf("catalog is missing the fallback type %q", FallbackType)
	}
	return c, nil
}

// Resolve looks up the descriptor for a type id.
func (c *Catalog) Resolve(typeID string) (Descriptor, bool) {
	d, ok := c.types[typeID]
	return d, ok
}

// ResolveOrGeneric looks up a type id, degrading to a generic single-input
// single-output step descriptor when the id is unknown. A catalog miss is
// recoverable everywhere in the engine.
func (c *Catalog) ResolveOrGeneric(typeID string) Descriptor {
	if d, ok := c.types[typeID]; ok {
		return d
	}
	return Descriptor{
		Type:        typeID,
		DisplayName: typeID,
		Inputs:      1,
		Outputs:     1,
	}
}

// Replacement returns the current type id for a deprecated one.
func (c *Catalog) Replacement(typeID string) (string, bool) {
	r, ok := c.deprecated[typeID]
	return r, ok
}

// Types returns all descriptors sorted by type id.
func (c *Catalog) Types() []Descriptor {
	out := make([]Descriptor, 0, len(c.types))
	for _, d := range c.types {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Type < out[j].Type })
	return out
}

// Len reports the number of known node types.
func (c *Catalog) Len() int { return len(c.types) }
