package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"docsearch/internal/model"
	"docsearch/internal/repository"
)

// DocumentPostgres is a PostgreSQL implementation of repository.DocumentRepository.
// It uses database/sql with parameterized queries and contains no business logic.
type DocumentPostgres struct {
	db *sql.DB
}

// NewDocumentPostgres creates a new DocumentPostgres repository.
func NewDocumentPostgres(db *sql.DB) *DocumentPostgres {
	return &DocumentPostgres{db: db}
}

var _ repository.DocumentRepository = (*DocumentPostgres)(nil)

const docColumns = `id, title, content, author, category, status, created_at, updated_at`

// sortColumns whitelists the sortable document columns. Anything not in this
// map falls back to created_at DESC.
var sortColumns = map[string]string{
	"title":      "title",
	"author":     "author",
	"category":   "category",
	"status":     "status",
	"created_at": "created_at",
	"createdat":  "created_at",
	"updated_at": "updated_at",
	"updatedat":  "updated_at",
}

// buildWhere composes the WHERE clause from the active filters. Equality and
// range predicates come first since they are more selective for the planner;
// substring predicates (author, free text across title/content/author) come
// last. An empty filter set yields an empty clause. exclude names a facet
// dimension whose own filter must be skipped, or is empty.
func buildWhere(p repository.SearchParams, exclude string) (string, []any) {
	var conds []string
	var args []any

	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if exclude != "category" {
		if c := strings.TrimSpace(p.Category); c != "" {
			conds = append(conds, "category = "+arg(c))
		}
	}
	if exclude != "status" {
		if s := strings.TrimSpace(p.Status); s != "" {
			conds = append(conds, "status = "+arg(s))
		}
	}
	if p.CreatedAfter != nil {
		conds = append(conds, "created_at >= "+arg(*p.CreatedAfter))
	}
	if p.CreatedBefore != nil {
		conds = append(conds, "created_at <= "+arg(*p.CreatedBefore))
	}
	if p.UpdatedAfter != nil {
		conds = append(conds, "updated_at >= "+arg(*p.UpdatedAfter))
	}
	if p.UpdatedBefore != nil {
		conds = append(conds, "updated_at <= "+arg(*p.UpdatedBefore))
	}
	if exclude != "author" {
		if a := strings.TrimSpace(p.Author); a != "" {
			conds = append(conds, "LOWER(author) LIKE "+arg("%"+strings.ToLower(a)+"%"))
		}
	}
	if q := strings.TrimSpace(p.Query); q != "" {
		pat := "%" + strings.ToLower(q) + "%"
		conds = append(conds, "(LOWER(title) LIKE "+arg(pat)+
			" OR LOWER(content) LIKE "+arg(pat)+
			" OR LOWER(author) LIKE "+arg(pat)+")")
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func scanDocument(row interface{ Scan(...any) error }) (*model.Document, error) {
	var d model.Document
	var content, author, category, status sql.NullString
	if err := row.Scan(
		&d.ID,
		&d.Title,
		&content,
		&author,
		&category,
		&status,
		&d.CreatedAt,
		&d.UpdatedAt,
	); err != nil {
		return nil, err
	}
	d.Content = content.String
	d.Author = author.String
	d.Category = category.String
	d.Status = status.String
	return &d, nil
}

// Create inserts a new document row. ID and timestamps come from column defaults.
func (r *DocumentPostgres) Create(ctx context.Context, doc *model.Document) (*model.Document, error) {
	const q = `
		INSERT INTO documents (title, content, author, category, status)
		VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''), NULLIF($5, ''))
		RETURNING ` + docColumns + `
	`
	row := r.db.QueryRowContext(ctx, q,
		doc.Title,
		doc.Content,
		doc.Author,
		doc.Category,
		doc.Status,
	)
	return scanDocument(row)
}

// FindByID fetches a single document by its ID.
func (r *DocumentPostgres) FindByID(ctx context.Context, id string) (*model.Document, error) {
	const q = `SELECT ` + docColumns + ` FROM documents WHERE id = $1`
	return scanDocument(r.db.QueryRowContext(ctx, q, id))
}

// FindAll returns every document, newest first.
func (r *DocumentPostgres) FindAll(ctx context.Context) ([]model.Document, error) {
	const q = `SELECT ` + docColumns + ` FROM documents ORDER BY created_at DESC, id DESC`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectDocuments(rows)
}

// Update overwrites the mutable columns and refreshes updated_at.
func (r *DocumentPostgres) Update(ctx context.Context, doc *model.Document) (*model.Document, error) {
	const q = `
		UPDATE documents
		SET title = $1,
		    content = $2,
		    author = NULLIF($3, ''),
		    category = NULLIF($4, ''),
		    status = NULLIF($5, ''),
		    updated_at = now()
		WHERE id = $6
		RETURNING ` + docColumns + `
	`
	row := r.db.QueryRowContext(ctx, q,
		doc.Title,
		doc.Content,
		doc.Author,
		doc.Category,
		doc.Status,
		doc.ID,
	)
	return scanDocument(row)
}

// Delete removes a document by ID and reports whether a row was deleted.
func (r *DocumentPostgres) Delete(ctx context.Context, id string) (bool, error) {
	const q = `DELETE FROM documents WHERE id = $1`
	res, err := r.db.ExecContext(ctx, q, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ExistsByID reports whether the given document exists.
func (r *DocumentPostgres) ExistsByID(ctx context.Context, id string) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM documents WHERE id = $1)`
	var exists bool
	if err := r.db.QueryRowContext(ctx, q, id).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// Search returns one page of matches plus the total count computed with the
// same predicate set. The count query deliberately shares buildWhere so the
// two can never drift apart.
func (r *DocumentPostgres) Search(ctx context.Context, p repository.SearchParams, page repository.PageRequest) (*repository.PageResult[model.Document], error) {
	where, args := buildWhere(p, "")

	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM documents`+where, args...).Scan(&total); err != nil {
		return nil, err
	}

	col, ok := sortColumns[strings.ToLower(strings.TrimSpace(page.SortBy))]
	dir := "ASC"
	if page.SortDesc {
		dir = "DESC"
	}
	if !ok {
		// Unrecognized sort field is not an error: fall back to newest first.
		col, dir = "created_at", "DESC"
	}

	q := fmt.Sprintf(
		`SELECT %s FROM documents%s ORDER BY %s %s LIMIT $%d OFFSET $%d`,
		docColumns, where, col, dir, len(args)+1, len(args)+2,
	)
	rows, err := r.db.QueryContext(ctx, q, append(args, page.Limit, page.Offset)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items, err := collectDocuments(rows)
	if err != nil {
		return nil, err
	}
	return &repository.PageResult[model.Document]{Items: items, Total: total}, nil
}

// CategoryFacets counts documents per category under all other active filters.
func (r *DocumentPostgres) CategoryFacets(ctx context.Context, p repository.SearchParams) ([]repository.FacetRow, error) {
	return r.facets(ctx, "category", p)
}

// StatusFacets counts documents per status under all other active filters.
func (r *DocumentPostgres) StatusFacets(ctx context.Context, p repository.SearchParams) ([]repository.FacetRow, error) {
	return r.facets(ctx, "status", p)
}

// AuthorFacets counts documents per author under all other active filters.
func (r *DocumentPostgres) AuthorFacets(ctx context.Context, p repository.SearchParams) ([]repository.FacetRow, error) {
	return r.facets(ctx, "author", p)
}

// facets runs the GROUP BY for one dimension. The dimension's own filter is
// excluded so users can still discover alternative values; NULL and empty
// grouping values are dropped.
func (r *DocumentPostgres) facets(ctx context.Context, dim string, p repository.SearchParams) ([]repository.FacetRow, error) {
	where, args := buildWhere(p, dim)
	notEmpty := fmt.Sprintf("%s IS NOT NULL AND %s <> ''", dim, dim)
	if where == "" {
		where = " WHERE " + notEmpty
	} else {
		where += " AND " + notEmpty
	}

	q := fmt.Sprintf(
		`SELECT %s, COUNT(*) FROM documents%s GROUP BY %s ORDER BY %s ASC`,
		dim, where, dim, dim,
	)
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []repository.FacetRow
	for rows.Next() {
		var f repository.FacetRow
		if err := rows.Scan(&f.Value, &f.Count); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// AutocompleteTitles returns distinct titles matching the prefix.
func (r *DocumentPostgres) AutocompleteTitles(ctx context.Context, prefix string, limit int) ([]string, error) {
	return r.autocomplete(ctx, "title", prefix, limit, false)
}

// AutocompleteAuthors returns distinct authors matching the prefix.
func (r *DocumentPostgres) AutocompleteAuthors(ctx context.Context, prefix string, limit int) ([]string, error) {
	return r.autocomplete(ctx, "author", prefix, limit, true)
}

// AutocompleteCategories returns distinct categories matching the prefix.
func (r *DocumentPostgres) AutocompleteCategories(ctx context.Context, prefix string, limit int) ([]string, error) {
	return r.autocomplete(ctx, "category", prefix, limit, true)
}

func (r *DocumentPostgres) autocomplete(ctx context.Context, column, prefix string, limit int, skipNull bool) ([]string, error) {
	cond := fmt.Sprintf("LOWER(%s) LIKE $1", column)
	if skipNull {
		cond += fmt.Sprintf(" AND %s IS NOT NULL", column)
	}
	q := fmt.Sprintf(
		`SELECT DISTINCT %s FROM documents WHERE %s ORDER BY %s ASC LIMIT $2`,
		column, cond, column,
	)
	rows, err := r.db.QueryContext(ctx, q, strings.ToLower(prefix)+"%", limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func collectDocuments(rows *sql.Rows) ([]model.Document, error) {
	items := make([]model.Document, 0)
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
