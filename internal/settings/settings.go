// Package settings declares the default value and type of every known setting.
package settings

import (
	_ "embed"
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/lherron/fixq/internal/domain"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Default is one setting's default value and type.
type Default struct {
	Key   string
	Value string
	Type  domain.SettingType
}

// Defaults returns every default setting ordered by type then key.
func Defaults() ([]Default, error) {
	return parse(defaultsYAML)
}

func parse(data []byte) ([]Default, error) {
	var grouped map[string]map[string]string
	if err := yaml.Unmarshal(data, &grouped); err != nil {
		return nil, fmt.Errorf("failed to parse default settings: %w", err)
	}

	types := make([]string, 0, len(grouped))
	for typ := range grouped {
		if err := domain.ValidateSettingType(typ); err != nil {
			return nil, err
		}
		types = append(types, typ)
	}
	sort.Strings(types)

	seen := make(map[string]string)
	var defaults []Default
	for _, typ := range types {
		keys := make([]string, 0, len(grouped[typ]))
		for key := range grouped[typ] {
			keys = append(keys, key)
		}
		sort.Strings(keys)

		for _, key := range keys {
			if prev, ok := seen[key]; ok {
				return nil, fmt.Errorf("setting %q declared under both %s and %s", key, prev, typ)
			}
			seen[key] = typ
			defaults = append(defaults, Default{Key: key, Value: grouped[typ][key], Type: domain.SettingType(typ)})
		}
	}
	return defaults, nil
}

// Lookup returns the default for key.
func Lookup(key string) (Default, bool) {
	defaults, err := Defaults()
	if err != nil {
		return Default{}, false
	}
	for _, d := range defaults {
		if d.Key == key {
			return d, true
		}
	}
	return Default{}, false
}
