// Package repository provides generic, policy-free document access on
// top of PostgreSQL. Domain rules (ownership, referential checks) live
// in the usecase layer; this layer only knows tables, columns and
// structural validation.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"

	"catalog_service/internal/domain"
)

// Scanner is satisfied by both *sql.Row and *sql.Rows.
type Scanner interface {
	Scan(dest ...interface{}) error
}

// ExpandFunc resolves one named relation for a batch of entities in a
// single round trip.
type ExpandFunc[T any] func(ctx context.Context, db *sql.DB, items []*T) error

// Schema describes how one entity type maps onto its table.
type Schema[T any] struct {
	Table   string
	Columns []string

	// Scan reads one row in Columns order.
	Scan func(row Scanner) (*T, error)

	// Prepare fills generated fields (id, created_at) before insert.
	Prepare func(e *T)

	// Insert returns column -> value for a new row.
	Insert func(e *T) map[string]interface{}

	// Apply merges a partial patch into the entity and returns the
	// normalized column -> value pairs that were actually patched.
	// Unknown keys are ignored; badly typed values fail with a
	// ValidationError.
	Apply func(e *T, patch map[string]interface{}) (map[string]interface{}, error)

	Expand map[string]ExpandFunc[T]
}

// Collection is a generic CRUD accessor for one entity collection.
type Collection[T any] struct {
	db      *sql.DB
	log     *logrus.Logger
	schema  Schema[T]
	allowed map[string]bool
}

func NewCollection[T any](db *sql.DB, logger *logrus.Logger, schema Schema[T]) *Collection[T] {
	allowed := make(map[string]bool, len(schema.Columns))
	for _, col := range schema.Columns {
		allowed[col] = true
	}
	return &Collection[T]{
		db:      db,
		log:     logger,
		schema:  schema,
		allowed: allowed,
	}
}

var structValidator = newStructValidator()

func newStructValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validateStruct runs structural validation and aggregates every field
// violation, not just the first.
func validateStruct(e interface{}) error {
	err := structValidator.Struct(e)
	if err == nil {
		return nil
	}
	var violations validator.ValidationErrors
	if !errors.As(err, &violations) {
		return err
	}
	fields := make(map[string]string, len(violations))
	for _, violation := range violations {
		fields[violation.Field()] = validationMessage(violation)
	}
	return &domain.ValidationError{Fields: fields}
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "gte":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "oneof":
		return "must be one of: " + fe.Param()
	default:
		return "is invalid"
	}
}

// checkID rejects identifiers that are not well-formed UUIDs before
// any query runs, so a malformed id is observable as a distinct
// failure from an absent one.
func checkID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return domain.ErrInvalidID
	}
	return nil
}

func (c *Collection[T]) FindByID(ctx context.Context, id string, expand ...string) (*T, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	return c.FindOne(ctx, Filter{Eq("id", id)}, expand...)
}

func (c *Collection[T]) FindOne(ctx context.Context, filter Filter, expand ...string) (*T, error) {
	query := fmt.Sprintf("SELECT %s FROM %s", strings.Join(c.schema.Columns, ", "), c.schema.Table)
	where, args, err := buildWhere(filter, c.allowed, 1)
	if err != nil {
		return nil, err
	}
	if where != "" {
		query += " WHERE " + where
	}
	query += " LIMIT 1"

	entity, err := c.schema.Scan(c.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		c.log.Errorf("%s: find one failed: %v", c.schema.Table, err)
		return nil, fmt.Errorf("%s: find one: %w", c.schema.Table, err)
	}

	if err := c.expandItems(ctx, []*T{entity}, expand); err != nil {
		return nil, err
	}
	return entity, nil
}

func (c *Collection[T]) FindMany(ctx context.Context, filter Filter, opts FindOptions, expand ...string) ([]*T, error) {
	query := fmt.Sprintf("SELECT %s FROM %s", strings.Join(c.schema.Columns, ", "), c.schema.Table)

	where, args, err := buildWhere(filter, c.allowed, 1)
	if err != nil {
		return nil, err
	}
	if where != "" {
		query += " WHERE " + where
	}

	orderBy, err := buildOrderBy(opts.Sort, c.allowed)
	if err != nil {
		return nil, err
	}
	if orderBy != "" {
		query += " ORDER BY " + orderBy
	}
	if opts.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", opts.Limit)
	}
	if opts.Skip > 0 {
		query += fmt.Sprintf(" OFFSET %d", opts.Skip)
	}

	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		c.log.Errorf("%s: find many failed: %v", c.schema.Table, err)
		return nil, fmt.Errorf("%s: find many: %w", c.schema.Table, err)
	}
	defer rows.Close()

	items := []*T{}
	for rows.Next() {
		entity, err := c.schema.Scan(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: scan row: %w", c.schema.Table, err)
		}
		items = append(items, entity)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: iterate rows: %w", c.schema.Table, err)
	}

	if err := c.expandItems(ctx, items, expand); err != nil {
		return nil, err
	}
	return items, nil
}

func (c *Collection[T]) Create(ctx context.Context, entity *T) (*T, error) {
	if c.schema.Prepare != nil {
		c.schema.Prepare(entity)
	}
	if err := validateStruct(entity); err != nil {
		return nil, err
	}

	values := c.schema.Insert(entity)
	columns := make([]string, 0, len(values))
	placeholders := make([]string, 0, len(values))
	args := make([]interface{}, 0, len(values))
	for _, col := range c.schema.Columns {
		value, ok := values[col]
		if !ok {
			continue
		}
		columns = append(columns, col)
		placeholders = append(placeholders, fmt.Sprintf("$%d", len(args)+1))
		args = append(args, value)
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		c.schema.Table, strings.Join(columns, ", "), strings.Join(placeholders, ", "))

	if _, err := c.db.ExecContext(ctx, query, args...); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			c.log.Warnf("%s: unique violation on insert: %s", c.schema.Table, pqErr.Constraint)
			return nil, domain.ErrDuplicate
		}
		c.log.Errorf("%s: insert failed: %v", c.schema.Table, err)
		return nil, fmt.Errorf("%s: insert: %w", c.schema.Table, err)
	}
	return entity, nil
}

// Update applies a partial patch. The merged document is revalidated
// before anything is written, so a patch that would produce an invalid
// row never reaches the store. Only patched columns are written back.
func (c *Collection[T]) Update(ctx context.Context, id string, patch map[string]interface{}) (*T, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}

	entity, err := c.FindOne(ctx, Filter{Eq("id", id)})
	if err != nil {
		return nil, err
	}

	changed, err := c.schema.Apply(entity, patch)
	if err != nil {
		return nil, err
	}
	if len(changed) == 0 {
		return entity, nil
	}
	if err := validateStruct(entity); err != nil {
		return nil, err
	}

	setClauses := make([]string, 0, len(changed))
	args := make([]interface{}, 0, len(changed)+1)
	for _, col := range c.schema.Columns {
		value, ok := changed[col]
		if !ok {
			continue
		}
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", col, len(args)+1))
		args = append(args, value)
	}
	args = append(args, id)

	query := fmt.Sprintf("UPDATE %s SET %s WHERE id = $%d",
		c.schema.Table, strings.Join(setClauses, ", "), len(args))

	result, err := c.db.ExecContext(ctx, query, args...)
	if err != nil {
		c.log.Errorf("%s: update %s failed: %v", c.schema.Table, id, err)
		return nil, fmt.Errorf("%s: update: %w", c.schema.Table, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("%s: update rows affected: %w", c.schema.Table, err)
	}
	if affected == 0 {
		// Row vanished between the read and the write.
		return nil, domain.ErrNotFound
	}
	return entity, nil
}

// Delete removes the row and returns it, or ErrNotFound when nothing
// matched. Deleting an already-deleted id is not an error beyond that.
func (c *Collection[T]) Delete(ctx context.Context, id string) (*T, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}

	query := fmt.Sprintf("DELETE FROM %s WHERE id = $1 RETURNING %s",
		c.schema.Table, strings.Join(c.schema.Columns, ", "))

	entity, err := c.schema.Scan(c.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		c.log.Errorf("%s: delete %s failed: %v", c.schema.Table, id, err)
		return nil, fmt.Errorf("%s: delete: %w", c.schema.Table, err)
	}
	return entity, nil
}

func (c *Collection[T]) Count(ctx context.Context, filter Filter) (int, error) {
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s", c.schema.Table)
	where, args, err := buildWhere(filter, c.allowed, 1)
	if err != nil {
		return 0, err
	}
	if where != "" {
		query += " WHERE " + where
	}

	var count int
	if err := c.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		c.log.Errorf("%s: count failed: %v", c.schema.Table, err)
		return 0, fmt.Errorf("%s: count: %w", c.schema.Table, err)
	}
	return count, nil
}

// GroupCount groups matching rows by one column and returns
// (key, count) pairs in grouping order.
type GroupCount struct {
	Key   string
	Count int
}

func (c *Collection[T]) GroupCount(ctx context.Context, filter Filter, column string) ([]GroupCount, error) {
	if !c.allowed[column] {
		return nil, fmt.Errorf("group: unknown column %q", column)
	}

	query := fmt.Sprintf("SELECT %s, COUNT(*) FROM %s", column, c.schema.Table)
	where, args, err := buildWhere(filter, c.allowed, 1)
	if err != nil {
		return nil, err
	}
	if where != "" {
		query += " WHERE " + where
	}
	query += " GROUP BY " + column

	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		c.log.Errorf("%s: group count failed: %v", c.schema.Table, err)
		return nil, fmt.Errorf("%s: group count: %w", c.schema.Table, err)
	}
	defer rows.Close()

	groups := []GroupCount{}
	for rows.Next() {
		var g GroupCount
		if err := rows.Scan(&g.Key, &g.Count); err != nil {
			return nil, fmt.Errorf("%s: scan group: %w", c.schema.Table, err)
		}
		groups = append(groups, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: iterate groups: %w", c.schema.Table, err)
	}
	return groups, nil
}

func (c *Collection[T]) expandItems(ctx context.Context, items []*T, names []string) error {
	for _, name := range names {
		fn, ok := c.schema.Expand[name]
		if !ok {
			return fmt.Errorf("%s: unknown expand %q", c.schema.Table, name)
		}
		if len(items) == 0 {
			continue
		}
		if err := fn(ctx, c.db, items); err != nil {
			return fmt.Errorf("%s: expand %s: %w", c.schema.Table, name, err)
		}
	}
	return nil
}
