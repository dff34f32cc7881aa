package config

import (
	_ "embed"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v2"

	"cryptocheck/internal/models"
)

const defaultPreset = "default"

//go:embed presets.yaml
var presetsYAML []byte

// LoadPresets — встроенные наборы порогов по имени.
func LoadPresets() (map[string]map[string]any, error) {
	var presets map[string]map[string]any
	if err := yaml.Unmarshal(presetsYAML, &presets); err != nil {
		return nil, errors.Wrap(err, "decode presets")
	}
	if _, ok := presets[defaultPreset]; !ok {
		return nil, errors.New("presets: default preset missing")
	}
	return presets, nil
}

func presetNames(presets map[string]map[string]any) []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// applyPreset кладёт значения пресета в defaults viper: явные rules.* из файла
// и env имеют приоритет выше.
func applyPreset(v *viper.Viper, name string) error {
	presets, err := LoadPresets()
	if err != nil {
		return err
	}
	if name == "" {
		name = defaultPreset
	}
	preset, ok := presets[name]
	if !ok {
		return &models.ConfigError{Field: "rules.preset", Reason: "unknown preset " + name + ", known: " + strings.Join(presetNames(presets), ", ")}
	}
	for k, val := range presets[defaultPreset] {
		v.SetDefault("rules."+k, val)
	}
	for k, val := range preset {
		v.SetDefault("rules."+k, val)
	}
	return nil
}
