// Package project saves and restores wizard state as a JSON project file so
// a user can resume or replay a generation. The snapshot holds only the
// user-chosen subset of the configuration; transient upload paths are never
// persisted.
package project

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/stibata/crudgen/internal/config"
)

// Snapshot is the persisted project file.
type Snapshot struct {
	AppTitle       string                        `json:"app_title"`
	PrimaryColor   string                        `json:"primary_color"`
	SelectedTables []string                      `json:"selected_tables"`
	TablesConfig   map[string]config.TableConfig `json:"tables_config"`
	DBFileName     string                        `json:"db_filename"`
	LogoFileName   string                        `json:"logo_filename"`
	SavedAt        string                        `json:"saved_at"`
}

const savedAtLayout = "2006-01-02 15:04:05"

// FromConfig builds a snapshot from the generation config, stamping the
// current time.
func FromConfig(cfg *config.GenerationConfig, now time.Time) *Snapshot {
	selected := make([]string, 0, len(cfg.Tables))
	tablesCfg := make(map[string]config.TableConfig, len(cfg.Tables))
	for name, tc := range cfg.Tables {
		selected = append(selected, name)
		tablesCfg[name] = tc
	}
	sort.Strings(selected)

	return &Snapshot{
		AppTitle:       cfg.AppTitle,
		PrimaryColor:   cfg.PrimaryColor,
		SelectedTables: selected,
		TablesConfig:   tablesCfg,
		DBFileName:     cfg.DBFileName,
		LogoFileName:   cfg.LogoFileName,
		SavedAt:        now.Format(savedAtLayout),
	}
}

// ApplyTo copies the persisted fields back onto a generation config.
// Upload paths are left untouched; the user re-uploads those.
func (s *Snapshot) ApplyTo(cfg *config.GenerationConfig) {
	cfg.AppTitle = s.AppTitle
	cfg.PrimaryColor = s.PrimaryColor
	cfg.DBFileName = s.DBFileName
	cfg.LogoFileName = s.LogoFileName
	cfg.Tables = make(map[string]config.TableConfig, len(s.TablesConfig))
	for name, tc := range s.TablesConfig {
		cfg.Tables[name] = tc
	}
}

// DefaultFilename names a project file after the save instant.
func DefaultFilename(now time.Time) string {
	return "crud_config_" + now.Format("2006-01-02_150405") + ".json"
}

// Save writes the snapshot as pretty-printed JSON under dir and returns the
// file name used.
func Save(dir string, s *Snapshot, filename string, now time.Time) (string, error) {
	if filename == "" {
		filename = DefaultFilename(now)
	}
	if filepath.Base(filename) != filename {
		return "", fmt.Errorf("project: invalid file name %q", filename)
	}

	data, err := json.MarshalIndent(s, "", "    ")
	if err != nil {
		return "", fmt.Errorf("project: encoding snapshot: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, filename), data, 0o644); err != nil {
		return "", fmt.Errorf("project: writing %s: %w", filename, err)
	}
	return filename, nil
}

// Load reads and parses a project file. Missing files and malformed JSON
// come back as ordinary errors for the caller to report.
func Load(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("project: reading %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes a snapshot from raw JSON, as uploaded by the wizard.
func Parse(data []byte) (*Snapshot, error) {
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("project: parsing snapshot: %w", err)
	}
	return &s, nil
}
