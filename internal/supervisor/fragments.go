package supervisor

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/akz4ol/baselayer/internal/config"
)

// Fragment is one service's discovered config.yaml, merged into the
// topology LoadFragments returns — the Go analogue of
// original_source/tools/setup_services.py's per-service
// supervisor.conf discovery, generalized from copying supervisor
// stanzas to merging structured config the way
// original_source/app/config.py's directory-merge does for the rest
// of the application's configuration.
type Fragment struct {
	Name   string
	Path   string
	Values map[string]any
}

// LoadFragments walks cfg.Services.Paths, treating each subdirectory of
// each path as one service, and parses that subdirectory's
// config.yaml (if present) as the service's configuration fragment.
// Two paths contributing a service of the same name is a hard error,
// matching setup_services.py's Counter-based duplicate check.
func LoadFragments(cfg config.ServicesConfig) ([]Fragment, error) {
	seen := make(map[string]string)
	var fragments []Fragment

	for _, root := range cfg.Paths {
		entries, err := os.ReadDir(root)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("supervisor: read services path %s: %w", root, err)
		}

		for _, entry := range entries {
			if !entry.IsDir() {
				continue
			}
			name := entry.Name()
			path := filepath.Join(root, name)

			if prior, ok := seen[name]; ok {
				return nil, fmt.Errorf("supervisor: duplicate service definition for %q (%s and %s)", name, prior, path)
			}
			seen[name] = path

			values, err := readFragmentYAML(filepath.Join(path, "config.yaml"))
			if err != nil {
				return nil, err
			}
			fragments = append(fragments, Fragment{Name: name, Path: path, Values: values})
		}
	}

	sort.Slice(fragments, func(i, j int) bool { return fragments[i].Name < fragments[j].Name })
	return fragments, nil
}

func readFragmentYAML(path string) (map[string]any, error) {
	body, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]any{}, nil
		}
		return nil, fmt.Errorf("supervisor: read fragment %s: %w", path, err)
	}

	var values map[string]any
	if err := yaml.Unmarshal(body, &values); err != nil {
		return nil, fmt.Errorf("supervisor: parse fragment %s: %w", path, err)
	}
	return values, nil
}

// Filter resolves the final set of services to run from the full
// discovered set plus enabled/disabled overrides, matching
// setup_services.py's set algebra: services_to_run = all - disabled +
// enabled, with "*" meaning "every discovered service" on either side,
// and a name listed in both being a hard error.
func Filter(fragments []Fragment, enabled, disabled []string) ([]Fragment, error) {
	allNames := make(map[string]struct{}, len(fragments))
	for _, f := range fragments {
		allNames[f.Name] = struct{}{}
	}

	for _, e := range enabled {
		for _, d := range disabled {
			if e == d {
				return nil, fmt.Errorf("supervisor: service %q is both enabled and disabled", e)
			}
		}
	}

	enabledSet := expandWildcard(enabled, allNames)
	disabledSet := expandWildcard(disabled, allNames)

	var out []Fragment
	for _, f := range fragments {
		_, isDisabled := disabledSet[f.Name]
		_, isEnabled := enabledSet[f.Name]
		if isEnabled || !isDisabled {
			out = append(out, f)
		}
	}
	return out, nil
}

func expandWildcard(names []string, all map[string]struct{}) map[string]struct{} {
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		if n == "*" {
			for name := range all {
				set[name] = struct{}{}
			}
			continue
		}
		set[n] = struct{}{}
	}
	return set
}
