package gen

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stibata/crudgen/internal/config"
	"github.com/stibata/crudgen/internal/infer"
	"github.com/stibata/crudgen/internal/schema"

	_ "modernc.org/sqlite"
)

// createSourceDB builds the category/product store used across gen tests.
func createSourceDB(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "store.db")
	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close()

	stmts := []string{
		`CREATE TABLE category (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			description TEXT
		)`,
		`CREATE TABLE product (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			price REAL,
			category_id INTEGER,
			created_at DATETIME,
			FOREIGN KEY (category_id) REFERENCES category(id)
		)`,
		`CREATE TABLE user (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			username TEXT NOT NULL,
			password TEXT NOT NULL
		)`,
		`INSERT INTO category (name) VALUES ('Bebidas'), ('Lácteos')`,
		`INSERT INTO product (name, price, category_id) VALUES ('Café', 3.5, 1)`,
	}
	for _, stmt := range stmts {
		_, err := db.Exec(stmt)
		require.NoError(t, err)
	}
	return path
}

func productConfig() config.TableConfig {
	return config.TableConfig{
		DisplayName:     "Productos",
		SelectedColumns: []string{"name", "price", "category_id"},
		ColumnTitles:    map[string]string{"name": "Nombre"},
	}
}

func TestBuildCRUDPageProduct(t *testing.T) {
	ctx := context.Background()
	path := createSourceDB(t)

	in, err := schema.Open(path)
	require.NoError(t, err)
	defer in.Close()

	tab, err := in.TableSchema(ctx, "product")
	require.NoError(t, err)

	cfg := &config.GenerationConfig{AppTitle: "Tienda", PrimaryColor: "#112233"}
	data, err := buildCRUDPage(ctx, in, tab, productConfig(), cfg)
	require.NoError(t, err)

	assert.Equal(t, "product", data.TableName)
	assert.Equal(t, "Productos", data.DisplayName)
	assert.Equal(t, []string{"name", "price", "category_id"}, data.SelectedColumns)
	assert.Equal(t, []string{"Nombre", "Price", "Category id"}, data.ListHeaders)

	require.Len(t, data.RelatedFields, 1)
	rf := data.RelatedFields[0]
	assert.Equal(t, "category_id", rf.Column)
	assert.Equal(t, "category", rf.Table)
	assert.Equal(t, "id", rf.To)
	assert.Equal(t, "name", rf.Display)

	// The autoincrement primary key never appears in the form.
	names := make([]string, 0, len(data.FormFields))
	byName := map[string]FormField{}
	for _, f := range data.FormFields {
		names = append(names, f.Name)
		byName[f.Name] = f
	}
	assert.Equal(t, []string{"name", "price", "category_id", "created_at"}, names)

	assert.Equal(t, infer.ControlText, byName["name"].Control)
	assert.True(t, byName["name"].Required)
	assert.Equal(t, infer.ControlNumber, byName["price"].Control)
	assert.False(t, byName["price"].Required)
	assert.Equal(t, infer.ControlSelect, byName["category_id"].Control)
	assert.Equal(t, infer.ControlDatetime, byName["created_at"].Control)
}

func TestBuildCRUDPageControlOverride(t *testing.T) {
	ctx := context.Background()
	path := createSourceDB(t)

	in, err := schema.Open(path)
	require.NoError(t, err)
	defer in.Close()

	tab, err := in.TableSchema(ctx, "category")
	require.NoError(t, err)

	tc := config.TableConfig{
		SelectedColumns: []string{"name"},
		ControlTypes:    map[string]infer.ControlKind{"description": infer.ControlTextarea},
	}
	cfg := &config.GenerationConfig{AppTitle: "Tienda", PrimaryColor: "#112233"}
	data, err := buildCRUDPage(ctx, in, tab, tc, cfg)
	require.NoError(t, err)

	// DisplayName falls back to the derived title.
	assert.Equal(t, "Category", data.DisplayName)

	for _, f := range data.FormFields {
		if f.Name == "description" {
			assert.Equal(t, infer.ControlTextarea, f.Control)
		}
	}
}

func TestBuildCRUDPageRelatedTableMissing(t *testing.T) {
	ctx := context.Background()
	path := createSourceDB(t)

	in, err := schema.Open(path)
	require.NoError(t, err)
	defer in.Close()

	// A reference to a table that does not exist scans zero table_info
	// rows without an error, so resolution bottoms out at "id".
	tab := &schema.Table{
		Name: "orphan",
		Columns: []schema.Column{
			{Name: "id", DeclaredType: "INTEGER", PrimaryKey: true},
			{Name: "ghost_id", DeclaredType: "INTEGER"},
		},
		ForeignKeys: []schema.ForeignKey{
			{FromColumn: "ghost_id", ToTable: "ghost", ToColumn: "id"},
		},
	}
	tc := config.TableConfig{SelectedColumns: []string{"id", "ghost_id"}}
	cfg := &config.GenerationConfig{AppTitle: "Tienda", PrimaryColor: "#112233"}

	data, err := buildCRUDPage(ctx, in, tab, tc, cfg)
	require.NoError(t, err)
	require.Len(t, data.RelatedFields, 1)
	assert.Equal(t, "id", data.RelatedFields[0].Display)
}

func TestResolveDisplayFallsBackOnError(t *testing.T) {
	ctx := context.Background()
	path := createSourceDB(t)

	in, err := schema.Open(path)
	require.NoError(t, err)
	require.NoError(t, in.Close())

	// Introspection failure degrades to the conventional guess.
	assert.Equal(t, infer.FallbackDisplayField, resolveDisplay(ctx, in, "category"))
}

func TestBuildCRUDPageNoSelectedColumns(t *testing.T) {
	ctx := context.Background()
	path := createSourceDB(t)

	in, err := schema.Open(path)
	require.NoError(t, err)
	defer in.Close()

	tab, err := in.TableSchema(ctx, "category")
	require.NoError(t, err)

	cfg := &config.GenerationConfig{}
	_, err = buildCRUDPage(ctx, in, tab, config.TableConfig{}, cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no columns selected")
}

func TestRenderFormField(t *testing.T) {
	tests := []struct {
		name  string
		field FormField
		want  []string
	}{
		{
			name:  "required text input",
			field: FormField{Name: "name", Label: "Nombre", Control: infer.ControlText, Required: true},
			want: []string{
				`type="text"`, `id="field_name"`, `name="name"`, ` required`,
				`<span class="text-danger">*</span>`,
			},
		},
		{
			name:  "number gets step any",
			field: FormField{Name: "price", Label: "Precio", Control: infer.ControlNumber},
			want:  []string{`type="number"`, `step="any"`},
		},
		{
			name:  "checkbox uses form-check markup",
			field: FormField{Name: "active", Label: "Activo", Control: infer.ControlCheckbox},
			want:  []string{`type="checkbox"`, `form-check-input`, `value="1"`},
		},
		{
			name:  "textarea spans full width",
			field: FormField{Name: "notes", Label: "Notas", Control: infer.ControlTextarea},
			want:  []string{`<textarea`, `rows="3"`, `col-md-12`},
		},
		{
			name:  "select starts with placeholder option",
			field: FormField{Name: "category_id", Label: "Categoría", Control: infer.ControlSelect},
			want:  []string{`<select`, `id="field_category_id"`, `Seleccionar...`},
		},
		{
			name:  "datetime renders native picker",
			field: FormField{Name: "created_at", Label: "Creado", Control: infer.ControlDatetime},
			want:  []string{`type="datetime-local"`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := renderFormField(tt.field)
			for _, want := range tt.want {
				assert.Contains(t, got, want)
			}
		})
	}
}
