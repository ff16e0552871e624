package prefabs

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// NPCKindSpec is one archetype a level can place: its body, its script and
// the script's free-form parameters.
type NPCKindSpec struct {
	Name     string         `yaml:"name"`
	Radius   float64        `yaml:"radius"`
	Speed    float64        `yaml:"speed"`
	Color    *YAMLColor     `yaml:"color"`
	Glyph    string         `yaml:"glyph"`
	Script   string         `yaml:"script"`
	Params   map[string]any `yaml:"params"`
	// Greeting is shown when the avatar walks up to the NPC.
	Greeting string         `yaml:"greeting"`
}

type NPCSetSpec struct {
	Kinds []NPCKindSpec `yaml:"kinds"`
}

func LoadNPCSetSpec() (*NPCSetSpec, error) {
	spec, err := LoadSpec[NPCSetSpec]("npcs.yaml")
	if err != nil {
		return nil, err
	}
	return &spec, nil
}

// Kind looks up an archetype by name.
func (s *NPCSetSpec) Kind(name string) (NPCKindSpec, error) {
	for _, k := range s.Kinds {
		if k.Name == name {
			return k, nil
		}
	}
	return NPCKindSpec{}, fmt.Errorf("prefabs: npc kind %q not found", name)
}

// DecodeParams re-decodes a loosely typed params block into T.
func DecodeParams[T any](raw any) (T, error) {
	var zero T
	if raw == nil {
		return zero, nil
	}
	b, err := yaml.Marshal(raw)
	if err != nil {
		return zero, err
	}
	var out T
	if err := yaml.Unmarshal(b, &out); err != nil {
		return zero, err
	}
	return out, nil
}
