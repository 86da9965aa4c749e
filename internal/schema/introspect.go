package schema

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"
)

// reservedTables never show up as CRUD targets. The user table backs the
// generated application's login and is queried there directly.
var reservedTables = map[string]bool{
	"user": true,
}

// IntrospectError distinguishes "the source database could not be read" from
// a database that is genuinely empty. Callers that want the original
// degrade-to-empty behavior can drop it explicitly.
type IntrospectError struct {
	Path string
	Op   string
	Err  error
}

func (e *IntrospectError) Error() string {
	return fmt.Sprintf("introspecting %s: %s: %v", e.Path, e.Op, e.Err)
}

func (e *IntrospectError) Unwrap() error { return e.Err }

// IsIntrospectError reports whether err originated in this package's
// introspection layer.
func IsIntrospectError(err error) bool {
	var ie *IntrospectError
	return errors.As(err, &ie)
}

// Introspector reads schema metadata from one SQLite file.
type Introspector struct {
	path string
	db   *sql.DB
}

// Open opens the database read-only for metadata queries.
func Open(path string) (*Introspector, error) {
	dsn := fmt.Sprintf("file:%s?mode=ro", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, &IntrospectError{Path: path, Op: "open", Err: err}
	}
	db.SetMaxOpenConns(1)
	return &Introspector{path: path, db: db}, nil
}

// Close releases the underlying connection.
func (in *Introspector) Close() error {
	return in.db.Close()
}

// Path returns the database file path this introspector reads from.
func (in *Introspector) Path() string { return in.path }

// ListTables returns the user-facing table names in sqlite_master order,
// excluding SQLite bookkeeping tables and the reserved user table.
func (in *Introspector) ListTables(ctx context.Context) ([]string, error) {
	rows, err := in.db.QueryContext(ctx,
		`SELECT name FROM sqlite_master WHERE type = 'table'`)
	if err != nil {
		return nil, &IntrospectError{Path: in.path, Op: "list tables", Err: err}
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, &IntrospectError{Path: in.path, Op: "scan table name", Err: err}
		}
		if strings.HasPrefix(name, "sqlite_") || reservedTables[name] {
			continue
		}
		tables = append(tables, name)
	}
	if err := rows.Err(); err != nil {
		return nil, &IntrospectError{Path: in.path, Op: "list tables", Err: err}
	}
	return tables, nil
}

// HasTable reports whether the named table exists, reserved tables included.
func (in *Introspector) HasTable(ctx context.Context, name string) (bool, error) {
	var n int
	err := in.db.QueryRowContext(ctx,
		`SELECT count(*) FROM sqlite_master WHERE type = 'table' AND name = ?`, name).Scan(&n)
	if err != nil {
		return false, &IntrospectError{Path: in.path, Op: "has table", Err: err}
	}
	return n > 0, nil
}

// Columns returns the columns of a table in native order via PRAGMA table_info.
func (in *Introspector) Columns(ctx context.Context, table string) ([]Column, error) {
	rows, err := in.db.QueryContext(ctx,
		fmt.Sprintf(`PRAGMA table_info(%s)`, QuoteIdent(table)))
	if err != nil {
		return nil, &IntrospectError{Path: in.path, Op: "table_info " + table, Err: err}
	}
	defer rows.Close()

	var cols []Column
	for rows.Next() {
		var (
			cid     int
			name    string
			typ     sql.NullString
			notNull int
			dflt    sql.NullString
			pk      int
		)
		if err := rows.Scan(&cid, &name, &typ, &notNull, &dflt, &pk); err != nil {
			return nil, &IntrospectError{Path: in.path, Op: "scan table_info " + table, Err: err}
		}
		cols = append(cols, Column{
			Name:         name,
			DeclaredType: typ.String,
			NotNull:      notNull != 0,
			PrimaryKey:   pk != 0,
			DefaultValue: dflt.String,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, &IntrospectError{Path: in.path, Op: "table_info " + table, Err: err}
	}
	return cols, nil
}

// ForeignKeys returns the table's outgoing references via PRAGMA foreign_key_list.
func (in *Introspector) ForeignKeys(ctx context.Context, table string) ([]ForeignKey, error) {
	rows, err := in.db.QueryContext(ctx,
		fmt.Sprintf(`PRAGMA foreign_key_list(%s)`, QuoteIdent(table)))
	if err != nil {
		return nil, &IntrospectError{Path: in.path, Op: "foreign_key_list " + table, Err: err}
	}
	defer rows.Close()

	var fks []ForeignKey
	for rows.Next() {
		var (
			id, seq          int
			toTable          string
			from             string
			to               sql.NullString
			onUpdate, onDel  string
			match            string
		)
		if err := rows.Scan(&id, &seq, &toTable, &from, &to, &onUpdate, &onDel, &match); err != nil {
			return nil, &IntrospectError{Path: in.path, Op: "scan foreign_key_list " + table, Err: err}
		}
		toCol := to.String
		if toCol == "" {
			// Implicit reference to the parent's primary key.
			toCol = "id"
		}
		fks = append(fks, ForeignKey{FromColumn: from, ToTable: toTable, ToColumn: toCol})
	}
	if err := rows.Err(); err != nil {
		return nil, &IntrospectError{Path: in.path, Op: "foreign_key_list " + table, Err: err}
	}
	return fks, nil
}

// TableSchema assembles the full Table description in one call.
func (in *Introspector) TableSchema(ctx context.Context, table string) (*Table, error) {
	cols, err := in.Columns(ctx, table)
	if err != nil {
		return nil, err
	}
	fks, err := in.ForeignKeys(ctx, table)
	if err != nil {
		return nil, err
	}
	return &Table{Name: table, Columns: cols, ForeignKeys: fks}, nil
}

// Snapshot introspects every user-facing table.
func (in *Introspector) Snapshot(ctx context.Context) ([]Table, error) {
	names, err := in.ListTables(ctx)
	if err != nil {
		return nil, err
	}
	tables := make([]Table, 0, len(names))
	for _, name := range names {
		t, err := in.TableSchema(ctx, name)
		if err != nil {
			return nil, err
		}
		tables = append(tables, *t)
	}
	return tables, nil
}

// QuoteIdent double-quotes a SQLite identifier, doubling embedded quotes.
// Identifiers still must be allow-list validated against the introspected
// schema before they reach any generated query text.
func QuoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
