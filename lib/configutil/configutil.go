package configutil

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"dario.cat/mergo"
	"github.com/titanous/json5"
)

// Read loads a json5 configuration file and, when present, merges
// `<name>.local.<ext>` on top of it so checked-in defaults can be
// overridden per machine without touching the tracked file.
func Read[T any](name string) (T, error) {
	var out T

	base, err := os.ReadFile(name)
	if err != nil {
		return out, err
	}
	err = json5.Unmarshal(base, &out)
	if err != nil {
		return out, fmt.Errorf("parse %s: %w", name, err)
	}

	ext := filepath.Ext(name)
	localPath := fmt.Sprintf("%s.local%s", strings.TrimSuffix(name, ext), ext)
	local, err := os.ReadFile(localPath)
	if os.IsNotExist(err) {
		return out, nil
	}
	if err != nil {
		return out, err
	}

	var override T
	err = json5.Unmarshal(local, &override)
	if err != nil {
		return out, fmt.Errorf("parse %s: %w", localPath, err)
	}
	err = mergo.Merge(&out, override, mergo.WithOverride)
	if err != nil {
		return out, err
	}
	slog.Info("merged config with local overrides", "local", localPath)

	return out, nil
}
