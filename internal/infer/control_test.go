package infer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/stibata/crudgen/internal/schema"
)

func TestInferControl(t *testing.T) {
	tests := []struct {
		name       string
		typ        string
		column     string
		want       ControlKind
	}{
		{"integer type", "INTEGER", "quantity", ControlNumber},
		{"int type", "int", "quantity", ControlNumber},
		{"real type", "REAL", "price", ControlNumber},
		{"decimal type", "DECIMAL(10,2)", "amount", ControlNumber},
		{"double type", "DOUBLE", "rate", ControlNumber},
		{"boolean type", "BOOLEAN", "active", ControlCheckbox},
		{"date type", "DATE", "born_on", ControlDate},
		{"time type", "TIME", "opens_at", ControlTime},
		{"datetime wins over date", "DATETIME", "created", ControlDatetime},
		{"datetime lowercase", "datetime", "created", ControlDatetime},
		{"timestamp is time-like", "TIMESTAMP", "touched", ControlTime},
		{"email by type", "EMAIL", "contact", ControlEmail},
		{"email by column name", "TEXT", "email", ControlEmail},
		{"url by column name", "TEXT", "url", ControlURL},
		{"varchar", "VARCHAR(255)", "label", ControlText},
		{"text", "TEXT", "body", ControlText},
		{"unknown type defaults to text", "BLOB", "payload", ControlText},
		{"empty type defaults to text", "", "anything", ControlText},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, InferControl(tt.typ, tt.column))
		})
	}
}

func TestInferControl_ReferenceColumnsAlwaysSelect(t *testing.T) {
	for _, col := range []string{"category_id", "id_cliente", "parent_id", "author_id"} {
		assert.Equal(t, ControlSelect, InferControl("INTEGER", col), col)
		assert.Equal(t, ControlSelect, InferControl("TEXT", col), col)
	}
	// Plain "id" is not a reference column.
	assert.Equal(t, ControlNumber, InferControl("INTEGER", "id"))
}

func TestControlKindValid(t *testing.T) {
	assert.True(t, ControlSelect.Valid())
	assert.True(t, ControlDatetime.Valid())
	assert.False(t, ControlKind("radio").Valid())
}

func TestResolveDisplayField_PreferredNames(t *testing.T) {
	cols := []schema.Column{
		{Name: "id", DeclaredType: "INTEGER"},
		{Name: "nombre", DeclaredType: "TEXT"},
		{Name: "created_at", DeclaredType: "DATETIME"},
	}
	assert.Equal(t, "nombre", ResolveDisplayField(cols))

	cols[1].Name = "title"
	assert.Equal(t, "title", ResolveDisplayField(cols))
}

func TestResolveDisplayField_PriorityOrder(t *testing.T) {
	cols := []schema.Column{
		{Name: "description", DeclaredType: "TEXT"},
		{Name: "nombre", DeclaredType: "TEXT"},
	}
	// "nombre" outranks "description" even though it appears later.
	assert.Equal(t, "nombre", ResolveDisplayField(cols))
}

func TestResolveDisplayField_TextualFallback(t *testing.T) {
	cols := []schema.Column{
		{Name: "id", DeclaredType: "INTEGER"},
		{Name: "score", DeclaredType: "INTEGER"},
		{Name: "code", DeclaredType: "VARCHAR(10)"},
	}
	assert.Equal(t, "code", ResolveDisplayField(cols))
}

func TestResolveDisplayField_FirstNonAuditFallback(t *testing.T) {
	cols := []schema.Column{
		{Name: "id", DeclaredType: "INTEGER"},
		{Name: "score", DeclaredType: "INTEGER"},
	}
	assert.Equal(t, "score", ResolveDisplayField(cols))
}

func TestResolveDisplayField_OnlyAuditColumns(t *testing.T) {
	cols := []schema.Column{
		{Name: "id", DeclaredType: "INTEGER"},
		{Name: "created_at", DeclaredType: "DATETIME"},
		{Name: "updated_at", DeclaredType: "DATETIME"},
	}
	assert.Equal(t, "id", ResolveDisplayField(cols))
}

func TestDisplayTitle(t *testing.T) {
	assert.Equal(t, "Sales order", DisplayTitle("sales_order"))
	assert.Equal(t, "Category", DisplayTitle("category"))
	assert.Equal(t, "", DisplayTitle(""))
}
