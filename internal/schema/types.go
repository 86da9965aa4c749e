// Package schema reads table, column, and foreign-key metadata out of a
// SQLite database file. It never touches row data.
package schema

// Column describes one column of an introspected table, in the database's
// native column order.
type Column struct {
	Name         string `json:"name"`
	DeclaredType string `json:"type"`
	NotNull      bool   `json:"not_null"`
	PrimaryKey   bool   `json:"primary_key"`
	DefaultValue string `json:"default_value,omitempty"`
}

// ForeignKey is a single-column many-to-one reference. Composite keys are
// reported one column at a time and treated independently downstream.
type ForeignKey struct {
	FromColumn string `json:"from_column"`
	ToTable    string `json:"to_table"`
	ToColumn   string `json:"to_column"`
}

// Table bundles everything known about one table.
type Table struct {
	Name        string       `json:"name"`
	Columns     []Column     `json:"columns"`
	ForeignKeys []ForeignKey `json:"foreign_keys"`
}

// Column returns the column with the given name, or nil.
func (t *Table) Column(name string) *Column {
	for i := range t.Columns {
		if t.Columns[i].Name == name {
			return &t.Columns[i]
		}
	}
	return nil
}

// ForeignKeyFor returns the foreign key originating at the given column, or nil.
func (t *Table) ForeignKeyFor(column string) *ForeignKey {
	for i := range t.ForeignKeys {
		if t.ForeignKeys[i].FromColumn == column {
			return &t.ForeignKeys[i]
		}
	}
	return nil
}
