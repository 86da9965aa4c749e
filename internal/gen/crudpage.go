package gen

import (
	"context"
	"fmt"

	"github.com/stibata/crudgen/internal/config"
	"github.com/stibata/crudgen/internal/infer"
	"github.com/stibata/crudgen/internal/schema"
)

// RelatedField describes one foreign-key column of a CRUD page, with the
// display field of the parent table resolved at generation time.
type RelatedField struct {
	Column  string
	Table   string
	To      string
	Display string
}

// FormField is one input of the add/edit modal.
type FormField struct {
	Name     string
	Label    string
	Control  infer.ControlKind
	Required bool
}

type crudPageData struct {
	TableName       string
	DisplayName     string
	AppTitle        string
	PrimaryColor    string
	SelectedColumns []string
	ListHeaders     []string
	RelatedFields   []RelatedField
	FormFields      []FormField
}

// buildCRUDPage assembles everything the per-table template needs. The
// introspector must point at the database the generated page will read, so
// display fields are resolved against the shipped copy.
func buildCRUDPage(ctx context.Context, in *schema.Introspector, tab *schema.Table, tc config.TableConfig, cfg *config.GenerationConfig) (*crudPageData, error) {
	data := &crudPageData{
		TableName:    tab.Name,
		DisplayName:  tc.DisplayName,
		AppTitle:     cfg.AppTitle,
		PrimaryColor: cfg.PrimaryColor,
	}
	if data.DisplayName == "" {
		data.DisplayName = infer.DisplayTitle(tab.Name)
	}

	for _, fk := range tab.ForeignKeys {
		data.RelatedFields = append(data.RelatedFields, RelatedField{
			Column:  fk.FromColumn,
			Table:   fk.ToTable,
			To:      fk.ToColumn,
			Display: resolveDisplay(ctx, in, fk.ToTable),
		})
	}

	// Listing columns keep schema order regardless of selection order.
	for _, col := range tab.Columns {
		if !tc.IsSelected(col.Name) {
			continue
		}
		data.SelectedColumns = append(data.SelectedColumns, col.Name)
		data.ListHeaders = append(data.ListHeaders, tc.Title(col.Name))
	}
	if len(data.SelectedColumns) == 0 {
		return nil, fmt.Errorf("table %q: no columns selected", tab.Name)
	}

	for _, col := range tab.Columns {
		// The autoincrement primary key is never edited directly.
		if col.Name == "id" && col.PrimaryKey {
			continue
		}
		control := tc.Control(col)
		if tab.ForeignKeyFor(col.Name) != nil {
			control = infer.ControlSelect
		}
		data.FormFields = append(data.FormFields, FormField{
			Name:     col.Name,
			Label:    tc.Title(col.Name),
			Control:  control,
			Required: col.NotNull,
		})
	}

	return data, nil
}

// resolveDisplay picks the display field of a related table, degrading to
// the conventional fallback when the table cannot be introspected. A
// missing table scans zero rows without an error and resolves to "id".
func resolveDisplay(ctx context.Context, in *schema.Introspector, table string) string {
	cols, err := in.Columns(ctx, table)
	if err != nil {
		return infer.FallbackDisplayField
	}
	return infer.ResolveDisplayField(cols)
}

// renderFormField emits the HTML block for one modal input. Selects are
// emitted empty; their options arrive over AJAX when the modal opens.
func renderFormField(f FormField) string {
	fieldID := "field_" + f.Name
	requiredAttr := ""
	requiredStar := ""
	if f.Required {
		requiredAttr = " required"
		requiredStar = ` <span class="text-danger">*</span>`
	}

	switch f.Control {
	case infer.ControlTextarea:
		return fmt.Sprintf(`                            <div class="col-md-12 mb-3">
                                <label for="%s" class="form-label">%s%s</label>
                                <textarea class="form-control" id="%s" name="%s" rows="3"%s></textarea>
                            </div>`,
			fieldID, f.Label, requiredStar, fieldID, f.Name, requiredAttr)

	case infer.ControlCheckbox:
		return fmt.Sprintf(`                            <div class="col-md-12 mb-3">
                                <div class="form-check">
                                    <input type="checkbox" class="form-check-input" id="%s" name="%s" value="1">
                                    <label for="%s" class="form-check-label">%s</label>
                                </div>
                            </div>`,
			fieldID, f.Name, fieldID, f.Label)

	case infer.ControlSelect:
		return fmt.Sprintf(`                            <div class="col-md-6 mb-3">
                                <label for="%s" class="form-label">%s%s</label>
                                <select class="form-select" id="%s" name="%s"%s>
                                    <option value="">Seleccionar...</option>
                                </select>
                            </div>`,
			fieldID, f.Label, requiredStar, fieldID, f.Name, requiredAttr)

	default:
		stepAttr := ""
		if f.Control == infer.ControlNumber {
			stepAttr = ` step="any"`
		}
		return fmt.Sprintf(`                            <div class="col-md-6 mb-3">
                                <label for="%s" class="form-label">%s%s</label>
                                <input type="%s" class="form-control" id="%s" name="%s"%s%s>
                            </div>`,
			fieldID, f.Label, requiredStar, f.Control, fieldID, f.Name, requiredAttr, stepAttr)
	}
}
