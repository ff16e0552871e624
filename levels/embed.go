package levels

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"sort"
	"strings"
)

//go:embed *.json
var LevelsFS embed.FS

// Level is the on-disk map format. Each rune of a row is looked up in Legend
// to get a tile type name.
type Level struct {
	Name   string            `json:"name"`
	Legend map[string]string `json:"legend"`
	Rows   []string          `json:"rows"`
	Spawn  Cell              `json:"spawn"`
	NPCs   []Placement       `json:"npcs,omitempty"`
}

type Cell struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Placement puts one NPC of a prefab kind on a tile.
type Placement struct {
	ID   string `json:"id"`
	Kind string `json:"kind"`
	X    int    `json:"x"`
	Y    int    `json:"y"`
}

func LoadLevelFromFS(name string) (*Level, error) {
	data, err := fs.ReadFile(LevelsFS, fileName(name))
	if err != nil {
		return nil, fmt.Errorf("read level: %w", err)
	}
	var lvl Level
	if err := json.Unmarshal(data, &lvl); err != nil {
		return nil, fmt.Errorf("unmarshal level: %w", err)
	}
	if lvl.Name == "" {
		lvl.Name = strings.TrimSuffix(fileName(name), ".json")
	}
	return &lvl, nil
}

// Names lists the embedded levels without extension, sorted.
func Names() ([]string, error) {
	matches, err := fs.Glob(LevelsFS, "*.json")
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, strings.TrimSuffix(m, ".json"))
	}
	sort.Strings(out)
	return out, nil
}

func fileName(name string) string {
	name = strings.TrimPrefix(name, "levels/")
	if !strings.HasSuffix(name, ".json") {
		name += ".json"
	}
	return name
}
