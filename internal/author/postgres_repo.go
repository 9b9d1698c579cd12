package author

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"libraryapi/internal/book"
)

type PostgresRepo struct {
	db      *pgxpool.Pool
	timeout time.Duration
}

func NewPostgresRepo(db *pgxpool.Pool, timeout time.Duration) *PostgresRepo {
	return &PostgresRepo{db: db, timeout: timeout}
}

func (r *PostgresRepo) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, r.timeout)
}

func (r *PostgresRepo) List(ctx context.Context, q Query) ([]Author, int, error) {
	clauses := []string{"1=1"}
	args := []any{}
	argn := 1

	if q.Search != "" {
		clauses = append(clauses, fmt.Sprintf("name ILIKE $%d", argn))
		args = append(args, "%"+q.Search+"%")
		argn++
	}

	where := "WHERE " + strings.Join(clauses, " AND ")
	orderBy := orderClause(q.Ordering)

	countSQL := fmt.Sprintf("SELECT COUNT(*) FROM authors %s", where)
	var total int
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	if err := r.db.QueryRow(timeoutCtx, countSQL, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	dataSQL := fmt.Sprintf(`
		SELECT id, name, created_at, updated_at
		FROM authors
		%s
		ORDER BY %s
		LIMIT $%d OFFSET $%d`,
		where, orderBy, argn, argn+1)

	argsWithPage := append([]any{}, args...)
	argsWithPage = append(argsWithPage, q.Limit, q.Offset)
	timeoutCtx2, cancel2 := r.withTimeout(ctx)
	defer cancel2()
	rows, err := r.db.Query(timeoutCtx2, dataSQL, argsWithPage...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Author
	for rows.Next() {
		var a Author
		if err := rows.Scan(&a.ID, &a.Name, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, 0, err
		}
		a.Books = []book.Book{}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	if err := r.attachBooks(ctx, out); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func orderClause(ordering string) string {
	desc := strings.HasPrefix(ordering, "-")
	col := strings.TrimPrefix(ordering, "-")

	var sortCol string
	switch col {
	case "name":
		sortCol = "name"
	case "id":
		sortCol = "id"
	default:
		return "name ASC"
	}

	if desc {
		return sortCol + " DESC"
	}
	return sortCol + " ASC"
}

// attachBooks loads the books for the given page of authors in one query.
func (r *PostgresRepo) attachBooks(ctx context.Context, authors []Author) error {
	if len(authors) == 0 {
		return nil
	}

	ids := make([]int64, 0, len(authors))
	byID := make(map[int64]*Author, len(authors))
	for i := range authors {
		ids = append(ids, authors[i].ID)
		byID[authors[i].ID] = &authors[i]
	}

	const query = `
		SELECT b.id, b.title, b.publication_year, b.author_id, a.name,
		       b.created_at, b.updated_at
		FROM books b
		JOIN authors a ON a.id = b.author_id
		WHERE b.author_id = ANY($1)
		ORDER BY b.publication_year DESC, b.title ASC
	`
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	rows, err := r.db.Query(timeoutCtx, query, ids)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var b book.Book
		if err := rows.Scan(
			&b.ID, &b.Title, &b.PublicationYear, &b.AuthorID, &b.AuthorName,
			&b.CreatedAt, &b.UpdatedAt,
		); err != nil {
			return err
		}
		if a, ok := byID[b.AuthorID]; ok {
			a.Books = append(a.Books, b)
		}
	}
	return rows.Err()
}

func (r *PostgresRepo) GetByID(ctx context.Context, id int64) (Author, error) {
	const query = `
		SELECT id, name, created_at, updated_at
		FROM authors
		WHERE id = $1
		LIMIT 1
	`
	var a Author
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	err := r.db.QueryRow(timeoutCtx, query, id).Scan(&a.ID, &a.Name, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Author{}, ErrNotFound
		}
		return Author{}, err
	}

	a.Books = []book.Book{}
	page := []Author{a}
	if err := r.attachBooks(ctx, page); err != nil {
		return Author{}, err
	}
	return page[0], nil
}

func (r *PostgresRepo) Create(ctx context.Context, a *Author) error {
	const query = `
		INSERT INTO authors (name, created_at, updated_at)
		VALUES ($1, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	if err := r.db.QueryRow(timeoutCtx, query, a.Name).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return err
	}
	if a.Books == nil {
		a.Books = []book.Book{}
	}
	return nil
}

func (r *PostgresRepo) Update(ctx context.Context, id int64, p Patch) (Author, error) {
	sets := []string{"updated_at = NOW()"}
	args := []any{}
	argn := 1

	if p.Name != nil {
		sets = append(sets, fmt.Sprintf("name = $%d", argn))
		args = append(args, *p.Name)
		argn++
	}

	query := fmt.Sprintf(`
		UPDATE authors SET %s
		WHERE id = $%d
		RETURNING id, name, created_at, updated_at`,
		strings.Join(sets, ", "), argn)
	args = append(args, id)

	var a Author
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	err := r.db.QueryRow(timeoutCtx, query, args...).Scan(&a.ID, &a.Name, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Author{}, ErrNotFound
		}
		return Author{}, err
	}

	a.Books = []book.Book{}
	page := []Author{a}
	if err := r.attachBooks(ctx, page); err != nil {
		return Author{}, err
	}
	return page[0], nil
}

// Delete removes the author; the books foreign key cascades.
func (r *PostgresRepo) Delete(ctx context.Context, id int64) error {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	tag, err := r.db.Exec(timeoutCtx, `DELETE FROM authors WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
