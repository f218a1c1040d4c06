package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"reflect"
	"sort"

	"github.com/uptrace/bun"
)

// Row is one relation row keyed by column name.
type Row = map[string]interface{}

// Where holds equality predicates, all of which must match.
type Where map[string]interface{}

// foreignKeyer is implemented by models that declare constraints bun cannot
// derive from their relation tags.
type foreignKeyer interface {
	ForeignKeys() []string
}

// Relation gives create/insert/select access to one named table whose
// schema is declared by a bun model.
type Relation struct {
	db      *DB
	model   interface{}
	name    string
	columns []string
	pks     []string
}

// Relation binds model (a typed nil pointer such as (*models.Event)(nil)).
func (d *DB) Relation(model interface{}) *Relation {
	table := d.Bun.Table(reflect.TypeOf(model).Elem())

	r := &Relation{db: d, model: model, name: table.Name}
	for _, f := range table.Fields {
		r.columns = append(r.columns, f.Name)
	}
	for _, f := range table.PKs {
		r.pks = append(r.pks, f.Name)
	}
	return r
}

func (r *Relation) Name() string {
	return r.name
}

// Columns lists the declared columns in model order.
func (r *Relation) Columns() []string {
	return append([]string(nil), r.columns...)
}

// Create makes the relation if it is absent. An existing relation is accepted
// when it carries every declared column.
func (r *Relation) Create(ctx context.Context) error {
	if existing, err := r.storedColumns(ctx); err == nil {
		return r.compatible(existing)
	}

	q := r.db.Bun.NewCreateTable().
		Model(r.model).
		IfNotExists().
		WithForeignKeys()
	if fk, ok := r.model.(foreignKeyer); ok {
		for _, clause := range fk.ForeignKeys() {
			q = q.ForeignKey(clause)
		}
	}
	if _, err := q.Exec(ctx); err != nil {
		return fmt.Errorf("failed to create relation %s: %w", r.name, err)
	}
	r.db.Logger.LogDatabase("CREATE", r.name, "relation created")
	return nil
}

// Check verifies that the relation exists and is compatible without creating it.
func (r *Relation) Check(ctx context.Context) error {
	existing, err := r.storedColumns(ctx)
	if err != nil {
		return &SchemaError{Relation: r.name, NotFound: true, Err: err}
	}
	return r.compatible(existing)
}

func (r *Relation) Drop(ctx context.Context) error {
	_, err := r.db.Bun.NewDropTable().Model(r.model).IfExists().Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to drop relation %s: %w", r.name, err)
	}
	r.db.Logger.LogDatabase("DROP", r.name, "relation dropped")
	return nil
}

func (r *Relation) Insert(ctx context.Context, row Row) error {
	_, err := r.db.Bun.NewInsert().
		Model(&row).
		TableExpr("?", bun.Ident(r.name)).
		Exec(ctx)
	if err != nil {
		if isConstraintError(err) {
			return &ConstraintViolation{Relation: r.name, Err: err}
		}
		return fmt.Errorf("failed to insert into %s: %w", r.name, err)
	}
	return nil
}

// Select returns rows matching every predicate in where, ordered by primary key.
// With no columns the declared columns are returned.
func (r *Relation) Select(ctx context.Context, columns []string, where Where) ([]Row, error) {
	if len(columns) == 0 {
		columns = r.columns
	}

	q := r.db.Bun.NewSelect().
		TableExpr("?", bun.Ident(r.name)).
		Column(columns...)

	keys := make([]string, 0, len(where))
	for k := range where {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		q = q.Where("? = ?", bun.Ident(k), where[k])
	}
	if len(r.pks) > 0 {
		q = q.Order(r.pks...)
	}

	var rows []map[string]interface{}
	if err := q.Scan(ctx, &rows); err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to select from %s: %w", r.name, err)
	}

	for _, row := range rows {
		for k, v := range row {
			if b, ok := v.([]byte); ok {
				row[k] = string(b)
			}
		}
	}
	return rows, nil
}

func (r *Relation) storedColumns(ctx context.Context) (map[string]bool, error) {
	rows, err := r.db.Bun.QueryContext(ctx, "SELECT * FROM ? LIMIT 0", bun.Ident(r.name))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	stored := make(map[string]bool, len(cols))
	for _, c := range cols {
		stored[c] = true
	}
	return stored, nil
}

func (r *Relation) compatible(stored map[string]bool) error {
	var missing []string
	for _, c := range r.columns {
		if !stored[c] {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return &SchemaError{Relation: r.name, Missing: missing}
	}
	return nil
}
