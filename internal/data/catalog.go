package data

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// UpgradeMode selects how an upgrade picks its targets.
type UpgradeMode string

const (
	UpgradeSelect UpgradeMode = "select" // one chosen not-yet-upgraded structure
	UpgradeAll    UpgradeMode = "all"    // every structure of the kind at once
)

// BuildingDef describes one buildable structure kind.
type BuildingDef struct {
	Kind         string      `yaml:"kind"`
	Label        string      `yaml:"label"` // player-facing noun used in notices
	BuildCost    int         `yaml:"build_cost"`
	UpgradeCost  int         `yaml:"upgrade_cost"`
	UpgradeMode  UpgradeMode `yaml:"upgrade_mode"`
	Size         int32       `yaml:"size"`
	UpgradedSize int32       `yaml:"upgraded_size"`
	Movable      bool        `yaml:"movable"` // may be repositioned once after building
}

type buildingListFile struct {
	Buildings []BuildingDef `yaml:"buildings"`
}

// Catalog holds building definitions indexed by kind.
type Catalog struct {
	defs  map[string]*BuildingDef
	kinds []string
}

// Get returns the definition for kind, or nil if the kind is unknown.
func (c *Catalog) Get(kind string) *BuildingDef {
	return c.defs[kind]
}

// Kinds lists the defined kinds in file order.
func (c *Catalog) Kinds() []string {
	return c.kinds
}

// Count returns the number of building kinds.
func (c *Catalog) Count() int {
	return len(c.defs)
}

// LoadCatalog loads building_list.yaml.
func LoadCatalog(path string) (*Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read building list: %w", err)
	}
	c, err := ParseCatalog(raw)
	if err != nil {
		return nil, fmt.Errorf("parse building list %s: %w", path, err)
	}
	return c, nil
}

// ParseCatalog decodes and checks a building list.
func ParseCatalog(raw []byte) (*Catalog, error) {
	var f buildingListFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, err
	}
	return NewCatalog(f.Buildings)
}

// NewCatalog indexes definitions, filling defaults and rejecting bad entries.
func NewCatalog(defs []BuildingDef) (*Catalog, error) {
	c := &Catalog{defs: make(map[string]*BuildingDef, len(defs))}
	for i := range defs {
		d := defs[i]
		if d.Kind == "" {
			return nil, fmt.Errorf("building %d: missing kind", i)
		}
		if _, dup := c.defs[d.Kind]; dup {
			return nil, fmt.Errorf("building %q defined twice", d.Kind)
		}
		if d.BuildCost < 0 || d.UpgradeCost < 0 {
			return nil, fmt.Errorf("building %q: negative cost", d.Kind)
		}
		switch d.UpgradeMode {
		case "":
			d.UpgradeMode = UpgradeSelect
		case UpgradeSelect, UpgradeAll:
		default:
			return nil, fmt.Errorf("building %q: unknown upgrade_mode %q", d.Kind, d.UpgradeMode)
		}
		if d.Size <= 0 {
			d.Size = 64
		}
		if d.UpgradedSize <= 0 {
			d.UpgradedSize = d.Size
		}
		if d.Label == "" {
			d.Label = d.Kind
		}
		c.defs[d.Kind] = &d
		c.kinds = append(c.kinds, d.Kind)
	}
	return c, nil
}
