// Package level loads starting scenarios from YAML. Positions are given in
// grid cells and headings in degrees.
package level

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"path"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Garsondee/Fortress-Command/internal/game"
)

// CellSize is the width of one grid cell in world pixels.
const CellSize = 250.0

// ErrNotFound is returned for an unknown level name.
var ErrNotFound = errors.New("level not found")

//go:embed levels/*.yaml
var builtin embed.FS

type cellPoint struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

type fileOrder struct {
	X  float64 `yaml:"x"`
	Y  float64 `yaml:"y"`
	At float64 `yaml:"at"`
}

type fileUnit struct {
	Type  string     `yaml:"type"`
	X     float64    `yaml:"x"`
	Y     float64    `yaml:"y"`
	Angle float64    `yaml:"angle"`
	Order *fileOrder `yaml:"order"`
}

type fileLevel struct {
	Name        string     `yaml:"name"`
	Description string     `yaml:"description"`
	InitialAP   float64    `yaml:"initialAp"`
	Available   []string   `yaml:"available"`
	Blue        []fileUnit `yaml:"blue"`
	Red         []fileUnit `yaml:"red"`
}

// Loader reads <name>.yaml files from a file system.
type Loader struct {
	fsys fs.FS
	dir  string
}

var _ game.LevelLoader = (*Loader)(nil)

// Builtin returns a loader over the embedded scenarios.
func Builtin() *Loader {
	return &Loader{fsys: builtin, dir: "levels"}
}

// FromFS returns a loader over dir in fsys.
func FromFS(fsys fs.FS, dir string) *Loader {
	return &Loader{fsys: fsys, dir: dir}
}

// Names lists the available level names, sorted.
func (l *Loader) Names() ([]string, error) {
	entries, err := fs.ReadDir(l.fsys, l.dir)
	if err != nil {
		return nil, fmt.Errorf("listing levels: %w", err)
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".yaml") {
			names = append(names, strings.TrimSuffix(e.Name(), ".yaml"))
		}
	}
	sort.Strings(names)
	return names, nil
}

// Load reads and converts the named level.
func (l *Loader) Load(name string) (*game.Level, error) {
	if name == "" || strings.ContainsAny(name, `/\`) {
		return nil, fmt.Errorf("%q: %w", name, ErrNotFound)
	}
	data, err := fs.ReadFile(l.fsys, path.Join(l.dir, name+".yaml"))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%q: %w", name, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("reading level %q: %w", name, err)
	}
	return Parse(data)
}

// Parse decodes one level document. Unknown fields are rejected.
func Parse(data []byte) (*game.Level, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var fl fileLevel
	if err := dec.Decode(&fl); err != nil {
		return nil, fmt.Errorf("decoding level: %w", err)
	}
	if fl.Name == "" {
		return nil, errors.New("decoding level: missing name")
	}
	if fl.InitialAP < 0 {
		return nil, fmt.Errorf("level %q: negative initialAp", fl.Name)
	}
	for _, k := range fl.Available {
		if _, ok := game.LookupUnitType(k); !ok {
			return nil, fmt.Errorf("level %q: available: %q: %w", fl.Name, k, game.ErrUnknownType)
		}
	}
	return &game.Level{
		Name:        fl.Name,
		Description: fl.Description,
		InitialAP:   fl.InitialAP,
		Available:   fl.Available,
		Blue:        convertUnits(fl.Blue),
		Red:         convertUnits(fl.Red),
	}, nil
}

func cell(p cellPoint) game.Vec2 {
	return game.Vec2{X: p.X * CellSize, Y: p.Y * CellSize}
}

func convertUnits(in []fileUnit) []game.LevelUnit {
	out := make([]game.LevelUnit, 0, len(in))
	for _, fu := range in {
		lu := game.LevelUnit{
			Type:    fu.Type,
			Pos:     cell(cellPoint{fu.X, fu.Y}),
			Heading: fu.Angle * math.Pi / 180,
		}
		if fu.Order != nil {
			lu.Move = &game.ScheduledMove{
				Pos: cell(cellPoint{fu.Order.X, fu.Order.Y}),
				At:  fu.Order.At,
			}
		}
		out = append(out, lu)
	}
	return out
}
