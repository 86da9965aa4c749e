// Package infer derives form-control kinds and display fields from column
// metadata. Everything here is a pure function over introspected schema; the
// wizard lets users override the results per column.
package infer

import (
	"strings"

	"github.com/stibata/crudgen/internal/schema"
)

// ControlKind is the taxonomy of HTML form controls a column can map to.
type ControlKind string

const (
	ControlText     ControlKind = "text"
	ControlTextarea ControlKind = "textarea"
	ControlNumber   ControlKind = "number"
	ControlCheckbox ControlKind = "checkbox"
	ControlDate     ControlKind = "date"
	ControlTime     ControlKind = "time"
	ControlDatetime ControlKind = "datetime-local"
	ControlEmail    ControlKind = "email"
	ControlURL      ControlKind = "url"
	ControlSelect   ControlKind = "select"
)

// ControlKinds lists every kind the wizard offers as an override, in the
// order the column-configuration dropdown presents them.
var ControlKinds = []ControlKind{
	ControlText, ControlTextarea, ControlNumber, ControlEmail,
	ControlDate, ControlDatetime, ControlTime, ControlCheckbox,
	ControlSelect, ControlURL,
}

// Valid reports whether k is one of the known control kinds.
func (k ControlKind) Valid() bool {
	for _, known := range ControlKinds {
		if k == known {
			return true
		}
	}
	return false
}

// InferControl maps a column's declared type and name to a form control.
// First match wins:
//
//  1. Names containing "_id" or "id_" are treated as references and get a
//     select, declared type notwithstanding.
//  2. Declared-type substrings, with "datetime" checked ahead of the plain
//     "date" and "time" substrings it would otherwise also match.
//  3. Everything else falls back to a text input.
func InferControl(declaredType, columnName string) ControlKind {
	if strings.Contains(columnName, "_id") || strings.Contains(columnName, "id_") {
		return ControlSelect
	}

	typ := strings.ToLower(declaredType)
	switch {
	case strings.Contains(typ, "int"):
		return ControlNumber
	case strings.Contains(typ, "real"), strings.Contains(typ, "float"),
		strings.Contains(typ, "double"), strings.Contains(typ, "decimal"):
		return ControlNumber
	case strings.Contains(typ, "bool"):
		return ControlCheckbox
	case strings.Contains(typ, "datetime"):
		return ControlDatetime
	case strings.Contains(typ, "date"):
		return ControlDate
	case strings.Contains(typ, "time"):
		return ControlTime
	case strings.Contains(typ, "email") || columnName == "email":
		return ControlEmail
	case strings.Contains(typ, "url") || columnName == "url":
		return ControlURL
	case strings.Contains(typ, "text"), strings.Contains(typ, "char"):
		return ControlText
	default:
		return ControlText
	}
}

// displayCandidates is the priority list of column names preferred as the
// human-readable stand-in for a foreign-key id.
var displayCandidates = []string{
	"nombre", "name", "descripcion", "description",
	"title", "titulo", "label", "etiqueta",
}

// auditColumns never serve as display fields.
var auditColumns = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
}

// ResolveDisplayField picks the column of a related table shown in place of
// its raw id: an exact match from the candidate list, else the first textual
// or name-like non-audit column, else the first non-audit column, else "id".
func ResolveDisplayField(columns []schema.Column) string {
	for _, candidate := range displayCandidates {
		for _, col := range columns {
			if col.Name == candidate {
				return candidate
			}
		}
	}

	for _, col := range columns {
		if auditColumns[col.Name] {
			continue
		}
		typ := strings.ToLower(col.DeclaredType)
		name := strings.ToLower(col.Name)
		if strings.Contains(typ, "char") || strings.Contains(typ, "text") ||
			strings.Contains(name, "nombre") || strings.Contains(name, "name") ||
			strings.Contains(name, "desc") {
			return col.Name
		}
	}

	for _, col := range columns {
		if !auditColumns[col.Name] {
			return col.Name
		}
	}

	return "id"
}

// FallbackDisplayField is returned when the related table cannot be
// introspected at all. A degraded guess, not an error signal.
const FallbackDisplayField = "name"
