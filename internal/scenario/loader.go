package scenario

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	apperrors "github.com/user/webpilot/internal/errors"
)

// Load reads scenarios from path, which is either a single YAML file or
// a directory of them.
func Load(path string) ([]*Scenario, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, apperrors.NewScenarioParseError(path, err)
	}

	if info.IsDir() {
		return LoadDirectory(path)
	}

	sc, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	return []*Scenario{sc}, nil
}

// LoadFile reads one scenario from a YAML file. A scenario without an
// explicit name takes the file's base name.
func LoadFile(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.NewScenarioParseError(path, err)
	}

	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, apperrors.NewScenarioParseError(path, err)
	}

	if sc.Name == "" {
		base := filepath.Base(path)
		sc.Name = strings.TrimSuffix(base, filepath.Ext(base))
	}

	if err := sc.Validate(); err != nil {
		return nil, err
	}

	return &sc, nil
}

// LoadDirectory reads every .yaml/.yml file in dir as one scenario.
// Files load in lexical order, so scenario order is stable across runs.
func LoadDirectory(dir string) ([]*Scenario, error) {
	files, err := ListFiles(dir)
	if err != nil {
		return nil, err
	}

	var scenarios []*Scenario
	seen := make(map[string]string)

	for _, path := range files {
		sc, err := LoadFile(path)
		if err != nil {
			return nil, err
		}

		base := filepath.Base(path)
		if previous, dup := seen[sc.Name]; dup {
			return nil, apperrors.NewScenarioError(
				fmt.Sprintf("duplicate scenario name '%s' in %s (already defined in %s)", sc.Name, base, previous))
		}
		seen[sc.Name] = base

		scenarios = append(scenarios, sc)
	}

	if len(scenarios) == 0 {
		return nil, apperrors.NewScenarioError(fmt.Sprintf("no scenario files found in %s", dir))
	}

	return scenarios, nil
}

// ListFiles resolves path to the scenario files it covers: the path
// itself when it is a file, otherwise every .yaml/.yml file directly in
// the directory, in lexical order.
func ListFiles(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, apperrors.NewScenarioParseError(path, err)
	}

	if !info.IsDir() {
		return []string{path}, nil
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, apperrors.NewScenarioParseError(path, err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := filepath.Ext(entry.Name())
		if ext != ".yaml" && ext != ".yml" {
			continue
		}
		files = append(files, filepath.Join(path, entry.Name()))
	}
	return files, nil
}
