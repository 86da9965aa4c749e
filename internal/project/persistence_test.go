package project

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stibata/crudgen/internal/config"
	"github.com/stibata/crudgen/internal/infer"
)

func sampleConfig() *config.GenerationConfig {
	return &config.GenerationConfig{
		AppTitle:     "Inventario",
		PrimaryColor: "#336699",
		DBFilePath:   "/tmp/uploads/abc/store.db",
		DBFileName:   "store.db",
		LogoFileName: "logo.png",
		Tables: map[string]config.TableConfig{
			"product": {
				DisplayName:     "Productos",
				SelectedColumns: []string{"name", "price"},
				ColumnTitles:    map[string]string{"price": "Precio"},
				ControlTypes:    map[string]infer.ControlKind{"price": infer.ControlNumber},
			},
		},
	}
}

func TestRoundTrip(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)

	snap := FromConfig(sampleConfig(), now)
	name, err := Save(dir, snap, "", now)
	require.NoError(t, err)
	assert.Equal(t, "crud_config_2025-03-14_092653.json", name)

	loaded, err := Load(filepath.Join(dir, name))
	require.NoError(t, err)
	assert.Equal(t, snap, loaded)

	var cfg config.GenerationConfig
	loaded.ApplyTo(&cfg)
	assert.Equal(t, "Inventario", cfg.AppTitle)
	assert.Equal(t, "#336699", cfg.PrimaryColor)
	assert.Equal(t, "store.db", cfg.DBFileName)
	assert.Equal(t, sampleConfig().Tables, cfg.Tables)
	assert.Empty(t, cfg.DBFilePath, "transient upload path is never persisted")
}

func TestSave_ExplicitFilename(t *testing.T) {
	dir := t.TempDir()
	now := time.Now()
	name, err := Save(dir, FromConfig(sampleConfig(), now), "mi_proyecto.json", now)
	require.NoError(t, err)
	assert.Equal(t, "mi_proyecto.json", name)

	data, err := os.ReadFile(filepath.Join(dir, name))
	require.NoError(t, err)
	assert.Contains(t, string(data), "\n    \"app_title\"", "snapshot is pretty-printed")
}

func TestSave_RejectsPathTraversal(t *testing.T) {
	dir := t.TempDir()
	now := time.Now()
	_, err := Save(dir, FromConfig(sampleConfig(), now), "../escape.json", now)
	require.Error(t, err)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
}

func TestParse_InvalidJSON(t *testing.T) {
	_, err := Parse([]byte("{not json"))
	require.Error(t, err)
}

func TestSnapshot_SelectedTablesSorted(t *testing.T) {
	cfg := sampleConfig()
	cfg.Tables["category"] = config.TableConfig{DisplayName: "Categorías"}
	snap := FromConfig(cfg, time.Now())
	assert.Equal(t, []string{"category", "product"}, snap.SelectedTables)
}
