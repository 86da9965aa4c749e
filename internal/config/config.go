// Package config defines the user-approved description of what to generate
// and validates it against the introspected schema before any emission.
package config

import (
	"fmt"

	"github.com/stibata/crudgen/internal/infer"
	"github.com/stibata/crudgen/internal/schema"
)

// TableConfig is the per-table selection built up during the wizard.
type TableConfig struct {
	DisplayName     string                       `json:"display_name"`
	SelectedColumns []string                     `json:"selected_columns"`
	ColumnTitles    map[string]string            `json:"column_titles"`
	ControlTypes    map[string]infer.ControlKind `json:"control_types"`
}

// Title returns the listing header for a column, falling back to the
// derived default when the user left it blank.
func (tc *TableConfig) Title(column string) string {
	if t := tc.ColumnTitles[column]; t != "" {
		return t
	}
	return infer.DisplayTitle(column)
}

// Control returns the user's control-type override for a column, or the
// inferred kind when none was set.
func (tc *TableConfig) Control(col schema.Column) infer.ControlKind {
	if k, ok := tc.ControlTypes[col.Name]; ok && k.Valid() {
		return k
	}
	return infer.InferControl(col.DeclaredType, col.Name)
}

// IsSelected reports whether the column appears in the listing.
func (tc *TableConfig) IsSelected(column string) bool {
	for _, c := range tc.SelectedColumns {
		if c == column {
			return true
		}
	}
	return false
}

// GenerationConfig is the sole input to the emitter. Assembled once at
// submission time; the emitter holds no state between runs.
type GenerationConfig struct {
	AppTitle     string                 `json:"app_title"`
	PrimaryColor string                 `json:"primary_color"`
	DBFilePath   string                 `json:"db_file"`
	DBFileName   string                 `json:"db_filename"`
	LogoPath     string                 `json:"logo_path,omitempty"`
	LogoFileName string                 `json:"logo_filename,omitempty"`
	Tables       map[string]TableConfig `json:"tables"`
}

// DefaultPrimaryColor matches the Bootstrap primary the wizard starts from.
const DefaultPrimaryColor = "#0d6efd"

// Normalize fills defaults the wizard may omit.
func (c *GenerationConfig) Normalize() {
	if c.PrimaryColor == "" {
		c.PrimaryColor = DefaultPrimaryColor
	}
	if c.AppTitle == "" {
		c.AppTitle = "Mi Aplicación CRUD"
	}
	for name, tc := range c.Tables {
		if tc.DisplayName == "" {
			tc.DisplayName = infer.DisplayTitle(name)
			c.Tables[name] = tc
		}
	}
}

// Validate checks every configured table and column against the introspected
// schema. Table and column names flow from wizard state into generated SQL,
// so anything not present in the schema is rejected outright.
func (c *GenerationConfig) Validate(tables []schema.Table) error {
	if len(c.Tables) == 0 {
		return fmt.Errorf("config: no tables selected")
	}
	byName := make(map[string]*schema.Table, len(tables))
	for i := range tables {
		byName[tables[i].Name] = &tables[i]
	}
	for name, tc := range c.Tables {
		tab, ok := byName[name]
		if !ok {
			return fmt.Errorf("config: table %q not present in source database", name)
		}
		for _, col := range tc.SelectedColumns {
			if tab.Column(col) == nil {
				return fmt.Errorf("config: column %q not present in table %q", col, name)
			}
		}
		for col := range tc.ColumnTitles {
			if tab.Column(col) == nil {
				return fmt.Errorf("config: title for unknown column %q in table %q", col, name)
			}
		}
		for col, kind := range tc.ControlTypes {
			if tab.Column(col) == nil {
				return fmt.Errorf("config: control type for unknown column %q in table %q", col, name)
			}
			if !kind.Valid() {
				return fmt.Errorf("config: unknown control type %q for column %q in table %q", kind, col, name)
			}
		}
	}
	return nil
}
