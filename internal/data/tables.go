package data

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// StaticObjectEntry defines one piece of blocking scenery placed at boot.
type StaticObjectEntry struct {
	ID   int32   `yaml:"id"`
	Name string  `yaml:"name"`
	X    float64 `yaml:"x"`
	Y    float64 `yaml:"y"`
	Z    float64 `yaml:"z"`
}

// NpcSpawnEntry defines one NPC spawned at boot.
type NpcSpawnEntry struct {
	NpcID int32   `yaml:"npc_id"`
	Name  string  `yaml:"name"`
	X     float64 `yaml:"x"`
	Y     float64 `yaml:"y"`
	Z     float64 `yaml:"z"`

	Health  int32 `yaml:"health"`
	Mana    int32 `yaml:"mana"`
	Stamina int32 `yaml:"stamina"`

	Agility      int32 `yaml:"agility"`
	Strength     int32 `yaml:"strength"`
	Wisdom       int32 `yaml:"wisdom"`
	Intelligence int32 `yaml:"intelligence"`
	Charisma     int32 `yaml:"charisma"`
	Luck         int32 `yaml:"luck"`
	Endurance    int32 `yaml:"endurance"`
}

type staticObjectFile struct {
	StaticObjects []StaticObjectEntry `yaml:"static_objects"`
}

type npcSpawnFile struct {
	Spawns []NpcSpawnEntry `yaml:"spawns"`
}

// LoadStaticObjects loads the scenery table from a YAML file.
func LoadStaticObjects(path string) ([]StaticObjectEntry, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read static objects: %w", err)
	}
	var f staticObjectFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse static objects: %w", err)
	}
	return f.StaticObjects, nil
}

// LoadNpcSpawns loads the NPC spawn table from a YAML file.
func LoadNpcSpawns(path string) ([]NpcSpawnEntry, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read npc spawns: %w", err)
	}
	var f npcSpawnFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse npc spawns: %w", err)
	}
	return f.Spawns, nil
}
