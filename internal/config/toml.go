package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/xvzc/lanwatch/internal/ptr"
)

func fromTomlFile(dir string) (*Config, error) {
	_ = os.Setenv("BURNTSUSHI_TOML_110", "1") // allow new lines in toml file

	var cfg Config
	if _, err := toml.DecodeFile(dir, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func searchTomlFile(customDir string, lookupDirs []string) (string, error) {
	if customDir != "" {
		if _, err := os.Stat(customDir); err != nil {
			return "", fmt.Errorf("no such file: %s", customDir)
		}
		return customDir, nil
	}

	for _, p := range lookupDirs {
		if p == "" {
			continue
		}

		if _, err := os.Stat(p); err == nil { // Path exists
			return p, nil
		}
	}

	// Don't care even if config files are not found in lookupDirs
	return "", nil
}

func findFrom[T any](
	data map[string]any,
	key string,
	parser func(any) (T, error),
	err *error,
) *T {
	if err != nil && *err != nil {
		return nil
	}

	anyVal, ok := data[key]
	if !ok {
		return nil
	}

	val, parseErr := parser(anyVal)
	if parseErr != nil {
		*err = fmt.Errorf("field %q: %w", key, parseErr)
		return nil
	}

	return ptr.FromValue(val)
}

func findStructFrom[T any, PT interface {
	*T
	toml.Unmarshaler
}](m map[string]any, key string, errPtr *error) *T {
	if errPtr != nil && *errPtr != nil {
		return nil
	}

	val, ok := m[key]
	if !ok {
		return nil
	}

	var item T
	if err := PT(&item).UnmarshalTOML(val); err != nil {
		*errPtr = fmt.Errorf("failed to decode '%s': %w", key, err)
		return nil
	}

	return &item
}
