package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tendant/simple-cms/pkg/simplecms"
)

// DBTX is an interface that allows us to use either a database connection or a transaction
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// Repository implements simplecms.Repository using PostgreSQL
type Repository struct {
	db   DBTX
	pool *pgxpool.Pool
}

// New creates a new PostgreSQL repository bound to an existing connection
// or transaction. WithTx on such a repository reuses the caller's unit.
func New(db DBTX) simplecms.Repository {
	return &Repository{db: db}
}

// NewWithPool creates a new PostgreSQL repository with connection pool
func NewWithPool(pool *pgxpool.Pool) simplecms.Repository {
	return &Repository{db: pool, pool: pool}
}

// WithTx runs fn inside a database transaction. A repository already bound
// to a transaction reuses it, so nested calls share one unit of work.
func (r *Repository) WithTx(ctx context.Context, fn func(simplecms.Repository) error) error {
	if r.pool == nil {
		return fn(r)
	}
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(&Repository{db: tx})
	})
}

// Error handling helper
func (r *Repository) handlePostgresError(operation string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			return fmt.Errorf("duplicate entry in %s", operation)
		case "23503": // foreign_key_violation
			return fmt.Errorf("referenced record not found")
		case "23502": // not_null_violation
			return fmt.Errorf("required field %s is missing", pgErr.ColumnName)
		case "42P01": // undefined_table
			return fmt.Errorf("table does not exist - database migration required")
		default:
			return fmt.Errorf("database error in %s: %s (code: %s)", operation, pgErr.Message, pgErr.Code)
		}
	}
	return fmt.Errorf("database error in %s: %w", operation, err)
}

const entityColumns = `id, kind, type, path, level, weight, is_active, is_deleted,
	       author_id, blockable_id, blockable_type, created_at, updated_at, deleted_at`

func scanEntity(row pgx.Row) (*simplecms.Entity, error) {
	var entity simplecms.Entity
	err := row.Scan(
		&entity.ID, &entity.Kind, &entity.Type, &entity.Path, &entity.Level,
		&entity.Weight, &entity.IsActive, &entity.IsDeleted, &entity.AuthorID,
		&entity.BlockableID, &entity.BlockableType, &entity.CreatedAt,
		&entity.UpdatedAt, &entity.DeletedAt)
	if err != nil {
		return nil, err
	}
	return &entity, nil
}

// Entity operations

func (r *Repository) CreateEntity(ctx context.Context, entity *simplecms.Entity) error {
	query := `
		INSERT INTO entity (
			id, kind, type, path, level, weight, is_active, is_deleted,
			author_id, blockable_id, blockable_type, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	_, err := r.db.Exec(ctx, query,
		entity.ID, entity.Kind, entity.Type, entity.Path, entity.Level,
		entity.Weight, entity.IsActive, entity.IsDeleted, entity.AuthorID,
		entity.BlockableID, entity.BlockableType, entity.CreatedAt, entity.UpdatedAt)

	if err != nil {
		return r.handlePostgresError("create entity", err)
	}
	return nil
}

func (r *Repository) GetEntity(ctx context.Context, id uuid.UUID, includeDeleted bool) (*simplecms.Entity, error) {
	query := `SELECT ` + entityColumns + ` FROM entity WHERE id = $1`
	if !includeDeleted {
		query += ` AND is_deleted = FALSE`
	}

	entity, err := scanEntity(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, simplecms.ErrEntityNotFound
		}
		return nil, err
	}
	return entity, nil
}

func (r *Repository) UpdateEntity(ctx context.Context, entity *simplecms.Entity) error {
	query := `
		UPDATE entity SET
			type = $2, path = $3, level = $4, weight = $5, is_active = $6,
			is_deleted = $7, author_id = $8, updated_at = $9, deleted_at = $10
		WHERE id = $1`

	tag, err := r.db.Exec(ctx, query,
		entity.ID, entity.Type, entity.Path, entity.Level, entity.Weight,
		entity.IsActive, entity.IsDeleted, entity.AuthorID, entity.UpdatedAt,
		entity.DeletedAt)
	if err != nil {
		return r.handlePostgresError("update entity", err)
	}
	if tag.RowsAffected() == 0 {
		return simplecms.ErrEntityNotFound
	}
	return nil
}

// DeleteEntity permanently removes the entity and its dependent rows,
// including soft-deleted ones.
func (r *Repository) DeleteEntity(ctx context.Context, id uuid.UUID) error {
	statements := []string{
		`DELETE FROM entity_file WHERE entity_id = $1`,
		`DELETE FROM entity_translation WHERE entity_id = $1`,
		`DELETE FROM blockable WHERE id = (SELECT blockable_id FROM entity WHERE id = $1)`,
		`DELETE FROM entity WHERE id = $1`,
	}
	for _, stmt := range statements {
		if _, err := r.db.Exec(ctx, stmt, id); err != nil {
			return r.handlePostgresError("delete entity", err)
		}
	}
	return nil
}

var entitySortColumns = map[string]string{
	"type":       "e.type",
	"path":       "e.path",
	"level":      "e.level",
	"weight":     "e.weight",
	"is_active":  "e.is_active",
	"is_deleted": "e.is_deleted",
	"author_id":  "e.author_id",
	"created_at": "e.created_at",
	"updated_at": "e.updated_at",
}

var translationSortColumns = map[string]string{
	"title":     "tr.title",
	"url":       "tr.url",
	"body":      "tr.body",
	"excerpt":   "tr.excerpt",
	"lang_code": "tr.lang_code",
}

func (r *Repository) ListEntities(ctx context.Context, q simplecms.EntityQuery) ([]*simplecms.Entity, error) {
	var (
		where []string
		args  []interface{}
	)
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	joinTranslations := len(q.TranslationFilters) > 0 || len(q.TranslationOrderBy) > 0

	if q.Kind != "" {
		where = append(where, "e.kind = "+arg(q.Kind))
	}
	if !q.IncludeDeleted {
		where = append(where, "e.is_deleted = FALSE")
	}
	if len(q.IDs) > 0 {
		where = append(where, "e.id = ANY("+arg(q.IDs)+")")
	}
	if q.PathEquals != "" {
		where = append(where, "e.path = "+arg(q.PathEquals))
	}
	if q.PathPrefix != "" {
		where = append(where, "e.path LIKE "+arg(q.PathPrefix+"%"))
	}
	if q.Level != nil {
		where = append(where, "e.level = "+arg(*q.Level))
	}
	if q.ExcludeID != nil {
		where = append(where, "e.id <> "+arg(*q.ExcludeID))
	}

	for _, f := range q.Filters {
		clause, err := filterClause(entitySortColumns, f, arg)
		if err != nil {
			return nil, err
		}
		where = append(where, clause)
	}
	for _, f := range q.TranslationFilters {
		clause, err := filterClause(translationSortColumns, f, arg)
		if err != nil {
			return nil, err
		}
		where = append(where, clause)
	}

	query := `SELECT ` + prefixColumns("e", entityColumns) + ` FROM entity e`
	if joinTranslations {
		query += ` JOIN entity_translation tr ON tr.entity_id = e.id AND tr.is_active AND tr.lang_code = ` + arg(q.Lang)
	}
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}

	orderClauses, err := orderClauses(q, joinTranslations)
	if err != nil {
		return nil, err
	}
	query += ` ORDER BY ` + strings.Join(orderClauses, ", ")

	if q.Limit != nil {
		query += ` LIMIT ` + arg(*q.Limit)
	}
	if q.Offset != nil {
		query += ` OFFSET ` + arg(*q.Offset)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, r.handlePostgresError("list entities", err)
	}
	defer rows.Close()

	var entities []*simplecms.Entity
	for rows.Next() {
		entity, err := scanEntity(rows)
		if err != nil {
			return nil, err
		}
		entities = append(entities, entity)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if q.WithTranslations {
		if err := r.attachTranslations(ctx, entities); err != nil {
			return nil, err
		}
	}
	if q.WithChildren {
		if err := r.attachChildren(ctx, entities); err != nil {
			return nil, err
		}
	}
	return entities, nil
}

func filterClause(columns map[string]string, f simplecms.Filter, arg func(interface{}) string) (string, error) {
	column, ok := columns[f.Field]
	if !ok {
		return "", fmt.Errorf("unknown filter field %q", f.Field)
	}
	switch f.Op {
	case simplecms.OpEq:
		return column + " = " + arg(f.Value), nil
	case simplecms.OpNeq:
		return column + " <> " + arg(f.Value), nil
	case simplecms.OpLike:
		return column + " ILIKE '%' || " + arg(f.Value) + " || '%'", nil
	case simplecms.OpIn:
		return column + " = ANY(" + arg(f.Value) + ")", nil
	case simplecms.OpGt:
		return column + " > " + arg(f.Value), nil
	case simplecms.OpGte:
		return column + " >= " + arg(f.Value), nil
	case simplecms.OpLt:
		return column + " < " + arg(f.Value), nil
	case simplecms.OpLte:
		return column + " <= " + arg(f.Value), nil
	}
	return "", fmt.Errorf("unknown filter op %q", f.Op)
}

func orderClauses(q simplecms.EntityQuery, joined bool) ([]string, error) {
	var clauses []string
	for _, o := range q.OrderBy {
		column, ok := entitySortColumns[o.Field]
		if !ok {
			return nil, fmt.Errorf("unknown sort field %q", o.Field)
		}
		clauses = append(clauses, column+" "+sqlDirection(o.Direction))
	}
	if joined {
		for _, o := range q.TranslationOrderBy {
			column, ok := translationSortColumns[o.Field]
			if !ok {
				return nil, fmt.Errorf("unknown translation sort field %q", o.Field)
			}
			clauses = append(clauses, column+" "+sqlDirection(o.Direction))
		}
	}
	// Stable fallback keeps sibling ordering deterministic.
	clauses = append(clauses, "e.weight ASC", "e.created_at ASC")
	return clauses, nil
}

func sqlDirection(d simplecms.SortDirection) string {
	if d == simplecms.SortDesc {
		return "DESC"
	}
	return "ASC"
}

func prefixColumns(alias, columns string) string {
	parts := strings.Split(columns, ",")
	for i, p := range parts {
		parts[i] = alias + "." + strings.TrimSpace(p)
	}
	return strings.Join(parts, ", ")
}

func (r *Repository) attachTranslations(ctx context.Context, entities []*simplecms.Entity) error {
	if len(entities) == 0 {
		return nil
	}
	ids := make([]uuid.UUID, len(entities))
	byID := make(map[uuid.UUID]*simplecms.Entity, len(entities))
	for i, e := range entities {
		ids[i] = e.ID
		byID[e.ID] = e
	}

	query := `
		SELECT id, entity_id, lang_code, is_active, title, url, body, excerpt, created_at, updated_at
		FROM entity_translation WHERE entity_id = ANY($1)
		ORDER BY created_at ASC`

	rows, err := r.db.Query(ctx, query, ids)
	if err != nil {
		return r.handlePostgresError("attach translations", err)
	}
	defer rows.Close()

	for rows.Next() {
		var t simplecms.Translation
		if err := rows.Scan(&t.ID, &t.EntityID, &t.LangCode, &t.IsActive, &t.Title,
			&t.URL, &t.Body, &t.Excerpt, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return err
		}
		if e, ok := byID[t.EntityID]; ok {
			e.Translations = append(e.Translations, &t)
		}
	}
	return rows.Err()
}

func (r *Repository) attachChildren(ctx context.Context, entities []*simplecms.Entity) error {
	if len(entities) == 0 {
		return nil
	}
	paths := make([]string, len(entities))
	byPath := make(map[string]*simplecms.Entity, len(entities))
	for i, e := range entities {
		childPath := simplecms.ChildrenPath(e)
		paths[i] = childPath
		byPath[childPath] = e
	}

	query := `SELECT ` + entityColumns + `
		FROM entity WHERE path = ANY($1) AND is_deleted = FALSE
		ORDER BY weight ASC, created_at ASC`

	rows, err := r.db.Query(ctx, query, paths)
	if err != nil {
		return r.handlePostgresError("attach children", err)
	}
	defer rows.Close()

	for rows.Next() {
		child, err := scanEntity(rows)
		if err != nil {
			return err
		}
		if parent, ok := byPath[child.Path]; ok {
			parent.Children = append(parent.Children, child)
		}
	}
	return rows.Err()
}

// Translation operations

func (r *Repository) CreateTranslation(ctx context.Context, t *simplecms.Translation) error {
	query := `
		INSERT INTO entity_translation (
			id, entity_id, lang_code, is_active, title, url, body, excerpt, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := r.db.Exec(ctx, query,
		t.ID, t.EntityID, t.LangCode, t.IsActive, t.Title, t.URL, t.Body,
		t.Excerpt, t.CreatedAt, t.UpdatedAt)
	if err != nil {
		return r.handlePostgresError("create translation", err)
	}
	return nil
}

func (r *Repository) GetTranslation(ctx context.Context, id uuid.UUID) (*simplecms.Translation, error) {
	query := `
		SELECT id, entity_id, lang_code, is_active, title, url, body, excerpt, created_at, updated_at
		FROM entity_translation WHERE id = $1`

	var t simplecms.Translation
	err := r.db.QueryRow(ctx, query, id).Scan(
		&t.ID, &t.EntityID, &t.LangCode, &t.IsActive, &t.Title, &t.URL,
		&t.Body, &t.Excerpt, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, simplecms.ErrTranslationNotFound
		}
		return nil, err
	}
	return &t, nil
}

func (r *Repository) GetActiveTranslation(ctx context.Context, entityID uuid.UUID, langCode string) (*simplecms.Translation, error) {
	query := `
		SELECT id, entity_id, lang_code, is_active, title, url, body, excerpt, created_at, updated_at
		FROM entity_translation
		WHERE entity_id = $1 AND lang_code = $2 AND is_active`

	var t simplecms.Translation
	err := r.db.QueryRow(ctx, query, entityID, langCode).Scan(
		&t.ID, &t.EntityID, &t.LangCode, &t.IsActive, &t.Title, &t.URL,
		&t.Body, &t.Excerpt, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, simplecms.ErrTranslationNotFound
		}
		return nil, err
	}
	return &t, nil
}

func (r *Repository) ListTranslations(ctx context.Context, entityID uuid.UUID) ([]*simplecms.Translation, error) {
	query := `
		SELECT id, entity_id, lang_code, is_active, title, url, body, excerpt, created_at, updated_at
		FROM entity_translation WHERE entity_id = $1
		ORDER BY created_at ASC`

	rows, err := r.db.Query(ctx, query, entityID)
	if err != nil {
		return nil, r.handlePostgresError("list translations", err)
	}
	defer rows.Close()

	var translations []*simplecms.Translation
	for rows.Next() {
		var t simplecms.Translation
		if err := rows.Scan(&t.ID, &t.EntityID, &t.LangCode, &t.IsActive, &t.Title,
			&t.URL, &t.Body, &t.Excerpt, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		translations = append(translations, &t)
	}
	return translations, rows.Err()
}

func (r *Repository) DeactivateTranslations(ctx context.Context, entityID uuid.UUID, langCode string) error {
	query := `
		UPDATE entity_translation SET is_active = FALSE, updated_at = NOW()
		WHERE entity_id = $1 AND lang_code = $2 AND is_active`

	if _, err := r.db.Exec(ctx, query, entityID, langCode); err != nil {
		return r.handlePostgresError("deactivate translations", err)
	}
	return nil
}

func (r *Repository) DeleteTranslation(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM entity_translation WHERE id = $1`, id)
	if err != nil {
		return r.handlePostgresError("delete translation", err)
	}
	if tag.RowsAffected() == 0 {
		return simplecms.ErrTranslationNotFound
	}
	return nil
}

// Blockable operations

func (r *Repository) CreateBlockable(ctx context.Context, b *simplecms.Blockable) error {
	query := `INSERT INTO blockable (id, type, data, created_at) VALUES ($1, $2, $3, $4)`
	if _, err := r.db.Exec(ctx, query, b.ID, b.Type, b.Data, b.CreatedAt); err != nil {
		return r.handlePostgresError("create blockable", err)
	}
	return nil
}

func (r *Repository) GetBlockable(ctx context.Context, id uuid.UUID) (*simplecms.Blockable, error) {
	query := `SELECT id, type, data, created_at FROM blockable WHERE id = $1`

	var b simplecms.Blockable
	err := r.db.QueryRow(ctx, query, id).Scan(&b.ID, &b.Type, &b.Data, &b.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, simplecms.ErrBlockableNotFound
		}
		return nil, err
	}
	return &b, nil
}

// File operations

func (r *Repository) CreateFile(ctx context.Context, f *simplecms.File) error {
	query := `
		INSERT INTO file (id, name, object_key, storage_backend, created_at)
		VALUES ($1, $2, $3, $4, $5)`
	if _, err := r.db.Exec(ctx, query, f.ID, f.Name, f.ObjectKey, f.StorageBackend, f.CreatedAt); err != nil {
		return r.handlePostgresError("create file", err)
	}
	return nil
}

func (r *Repository) AttachFile(ctx context.Context, entityID, fileID uuid.UUID) error {
	query := `
		INSERT INTO entity_file (entity_id, file_id) VALUES ($1, $2)
		ON CONFLICT (entity_id, file_id) DO NOTHING`
	if _, err := r.db.Exec(ctx, query, entityID, fileID); err != nil {
		return r.handlePostgresError("attach file", err)
	}
	return nil
}

func (r *Repository) ListFiles(ctx context.Context, entityID uuid.UUID) ([]*simplecms.File, error) {
	query := `
		SELECT f.id, f.name, f.object_key, f.storage_backend, f.created_at
		FROM file f
		JOIN entity_file ef ON ef.file_id = f.id
		WHERE ef.entity_id = $1
		ORDER BY f.created_at ASC`

	rows, err := r.db.Query(ctx, query, entityID)
	if err != nil {
		return nil, r.handlePostgresError("list files", err)
	}
	defer rows.Close()

	var files []*simplecms.File
	for rows.Next() {
		var f simplecms.File
		if err := rows.Scan(&f.ID, &f.Name, &f.ObjectKey, &f.StorageBackend, &f.CreatedAt); err != nil {
			return nil, err
		}
		files = append(files, &f)
	}
	return files, rows.Err()
}

func (r *Repository) DetachFiles(ctx context.Context, entityID uuid.UUID) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM entity_file WHERE entity_id = $1`, entityID); err != nil {
		return r.handlePostgresError("detach files", err)
	}
	return nil
}
