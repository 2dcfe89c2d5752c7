package supervisor

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akz4ol/baselayer/internal/config"
)

func writeServiceDir(t *testing.T, root, name, configYAML string) {
	t.Helper()
	dir := filepath.Join(root, name)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	if configYAML != "" {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(configYAML), 0o644))
	}
}

func TestLoadFragments(t *testing.T) {
	root := t.TempDir()
	writeServiceDir(t, root, "api", "port: 8080\n")
	writeServiceDir(t, root, "broker", "")

	fragments, err := LoadFragments(config.ServicesConfig{Paths: []string{root}})
	require.NoError(t, err)
	require.Len(t, fragments, 2)

	assert.Equal(t, "api", fragments[0].Name)
	assert.Equal(t, 8080, fragments[0].Values["port"])
	assert.Equal(t, "broker", fragments[1].Name)
	assert.Empty(t, fragments[1].Values)
}

func TestLoadFragments_DuplicateAcrossPaths(t *testing.T) {
	rootA, rootB := t.TempDir(), t.TempDir()
	writeServiceDir(t, rootA, "api", "")
	writeServiceDir(t, rootB, "api", "")

	_, err := LoadFragments(config.ServicesConfig{Paths: []string{rootA, rootB}})
	assert.Error(t, err)
}

func TestLoadFragments_MissingPathIsSkipped(t *testing.T) {
	fragments, err := LoadFragments(config.ServicesConfig{Paths: []string{"/does/not/exist"}})
	require.NoError(t, err)
	assert.Empty(t, fragments)
}

func TestFilter_DefaultRunsEverything(t *testing.T) {
	fragments := []Fragment{{Name: "api"}, {Name: "broker"}, {Name: "wsserver"}}

	out, err := Filter(fragments, nil, nil)
	require.NoError(t, err)
	assert.Len(t, out, 3)
}

func TestFilter_DisabledRemoves(t *testing.T) {
	fragments := []Fragment{{Name: "api"}, {Name: "broker"}}

	out, err := Filter(fragments, nil, []string{"broker"})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "api", out[0].Name)
}

func TestFilter_WildcardDisabledPlusEnabled(t *testing.T) {
	fragments := []Fragment{{Name: "api"}, {Name: "broker"}, {Name: "wsserver"}}

	out, err := Filter(fragments, []string{"broker"}, []string{"*"})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "broker", out[0].Name)
}

func TestFilter_SameNameEnabledAndDisabledIsError(t *testing.T) {
	fragments := []Fragment{{Name: "api"}}

	_, err := Filter(fragments, []string{"api"}, []string{"api"})
	assert.Error(t, err)
}
