package data

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	"github.com/ashiaomair/06-final-game-charity-water/internal/geom"
)

//go:generate go run ../../cmd/layoutschema -out schema/layout.schema.json

//go:embed schema/layout.schema.json
var layoutSchemaJSON string

// RectDef is a rectangle as written in the layout file.
type RectDef struct {
	X int32 `yaml:"x" json:"x"`
	Y int32 `yaml:"y" json:"y"`
	W int32 `yaml:"w" json:"w" jsonschema:"minimum=1"`
	H int32 `yaml:"h" json:"h" jsonschema:"minimum=1"`
}

func (r RectDef) Rect() geom.Rect { return geom.Rect{X: r.X, Y: r.Y, W: r.W, H: r.H} }

// PointDef is a position as written in the layout file.
type PointDef struct {
	X int32 `yaml:"x" json:"x"`
	Y int32 `yaml:"y" json:"y"`
}

func (p PointDef) Point() geom.Point { return geom.Point{X: p.X, Y: p.Y} }

// StructureDef is a building present when a village starts.
type StructureDef struct {
	Kind string `yaml:"kind" json:"kind" jsonschema:"enum=hut,enum=wall,enum=well"`
	X    int32  `yaml:"x" json:"x"`
	Y    int32  `yaml:"y" json:"y"`
}

// CanvasDef is the playable area size.
type CanvasDef struct {
	Width  int32 `yaml:"width" json:"width" jsonschema:"minimum=64"`
	Height int32 `yaml:"height" json:"height" jsonschema:"minimum=64"`
}

// LayoutFile is the on-disk shape of village_layout.yaml.
type LayoutFile struct {
	Canvas     CanvasDef      `yaml:"canvas" json:"canvas"`
	River      RectDef        `yaml:"river" json:"river" jsonschema:"description=Impassable zone crossed only at the bridge"`
	Bridge     RectDef        `yaml:"bridge" json:"bridge" jsonschema:"description=Crossing region that disables the river locally"`
	WallZone   RectDef        `yaml:"wall_zone" json:"wall_zone" jsonschema:"description=Area cleared of trees by the first wall upgrade"`
	TreeSize   int32          `yaml:"tree_size" json:"tree_size" jsonschema:"minimum=1"`
	Trees      []PointDef     `yaml:"trees" json:"trees"`
	Structures []StructureDef `yaml:"structures" json:"structures"`
	Villagers  []PointDef     `yaml:"villagers" json:"villagers" jsonschema:"minItems=1"`
}

// Layout is the static map of a village: bounds, river, bridge and the
// entities seeded at every reset.
type Layout struct {
	Bounds     geom.Rect
	River      geom.Rect
	Bridge     geom.Rect
	WallZone   geom.Rect
	TreeSize   int32
	Trees      []geom.Point
	Structures []StructureDef
	Villagers  []geom.Point
}

// LoadLayout loads and validates village_layout.yaml.
func LoadLayout(path string) (*Layout, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read village layout: %w", err)
	}
	l, err := ParseLayout(raw)
	if err != nil {
		return nil, fmt.Errorf("parse village layout %s: %w", path, err)
	}
	return l, nil
}

// ParseLayout validates raw YAML against the layout schema and decodes it.
func ParseLayout(raw []byte) (*Layout, error) {
	if err := validateLayout(raw); err != nil {
		return nil, err
	}
	var f LayoutFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, err
	}
	return f.build()
}

var layoutSchema = jsonschema.MustCompileString("layout.schema.json", layoutSchemaJSON)

// validateLayout runs the YAML document through the JSON schema. YAML is
// re-encoded as JSON first so the validator sees plain JSON values.
func validateLayout(raw []byte) error {
	var doc any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return err
	}
	js, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("layout is not JSON-compatible: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(js))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return err
	}
	if err := layoutSchema.Validate(v); err != nil {
		return fmt.Errorf("schema: %w", err)
	}
	return nil
}

func (f *LayoutFile) build() (*Layout, error) {
	l := &Layout{
		Bounds:     geom.Rect{W: f.Canvas.Width, H: f.Canvas.Height},
		River:      f.River.Rect(),
		Bridge:     f.Bridge.Rect(),
		WallZone:   f.WallZone.Rect(),
		TreeSize:   f.TreeSize,
		Trees:      make([]geom.Point, 0, len(f.Trees)),
		Structures: f.Structures,
		Villagers:  make([]geom.Point, 0, len(f.Villagers)),
	}
	if !geom.Overlaps(l.Bridge, l.River) {
		return nil, fmt.Errorf("bridge %v does not cross river %v", l.Bridge, l.River)
	}
	seen := make(map[geom.Point]bool, len(f.Trees))
	for _, t := range f.Trees {
		p := t.Point()
		if seen[p] {
			continue // duplicate tree positions collapse to one tree
		}
		seen[p] = true
		l.Trees = append(l.Trees, p)
	}
	for _, v := range f.Villagers {
		l.Villagers = append(l.Villagers, v.Point())
	}
	return l, nil
}

// Count returns the number of seeded entities.
func (l *Layout) Count() int {
	return len(l.Trees) + len(l.Structures) + len(l.Villagers)
}
