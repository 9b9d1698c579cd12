package book

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const fkViolation = "23503"

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

func (r *PostgresRepo) List(ctx context.Context, q Query) ([]Book, int, error) {
	clauses := []string{"1=1"}
	args := []any{}
	argn := 1

	if q.Title != "" {
		clauses = append(clauses, fmt.Sprintf("b.title ILIKE $%d", argn))
		args = append(args, "%"+q.Title+"%")
		argn++
	}

	if q.AuthorName != "" {
		clauses = append(clauses, fmt.Sprintf("a.name ILIKE $%d", argn))
		args = append(args, "%"+q.AuthorName+"%")
		argn++
	}

	if q.Year != nil {
		clauses = append(clauses, fmt.Sprintf("b.publication_year = $%d", argn))
		args = append(args, *q.Year)
		argn++
	}

	if q.YearGTE != nil {
		clauses = append(clauses, fmt.Sprintf("b.publication_year >= $%d", argn))
		args = append(args, *q.YearGTE)
		argn++
	}

	if q.YearLTE != nil {
		clauses = append(clauses, fmt.Sprintf("b.publication_year <= $%d", argn))
		args = append(args, *q.YearLTE)
		argn++
	}

	if q.Search != "" {
		clauses = append(clauses, fmt.Sprintf("(b.title ILIKE $%d OR a.name ILIKE $%d)", argn, argn+1))
		pattern := "%" + q.Search + "%"
		args = append(args, pattern, pattern)
		argn += 2
	}

	where := "WHERE " + strings.Join(clauses, " AND ")
	orderBy := orderClause(q.Ordering)

	countSQL := fmt.Sprintf("SELECT COUNT(*) FROM books b JOIN authors a ON a.id = b.author_id %s", where)
	var total int
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	if err := r.db.QueryRow(timeoutCtx, countSQL, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	dataSQL := fmt.Sprintf(`
		SELECT b.id, b.title, b.publication_year, b.author_id, a.name,
		       b.created_at, b.updated_at
		FROM books b
		JOIN authors a ON a.id = b.author_id
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

	var out []Book
	for rows.Next() {
		var b Book
		if err := rows.Scan(
			&b.ID, &b.Title, &b.PublicationYear, &b.AuthorID, &b.AuthorName,
			&b.CreatedAt, &b.UpdatedAt,
		); err != nil {
			return nil, 0, err
		}
		out = append(out, b)
	}
	return out, total, rows.Err()
}

// orderClause maps the ordering parameter to a whitelisted ORDER BY.
// Default ordering is newest publication year first, then title.
func orderClause(ordering string) string {
	desc := strings.HasPrefix(ordering, "-")
	col := strings.TrimPrefix(ordering, "-")

	var sortCol string
	switch col {
	case "title":
		sortCol = "b.title"
	case "publication_year":
		sortCol = "b.publication_year"
	case "id":
		sortCol = "b.id"
	default:
		return "b.publication_year DESC, b.title ASC"
	}

	if desc {
		return sortCol + " DESC"
	}
	return sortCol + " ASC"
}

func (r *PostgresRepo) GetByID(ctx context.Context, id int64) (Book, error) {
	const query = `
		SELECT b.id, b.title, b.publication_year, b.author_id, a.name,
		       b.created_at, b.updated_at
		FROM books b
		JOIN authors a ON a.id = b.author_id
		WHERE b.id = $1
		LIMIT 1
	`
	var b Book
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	err := r.db.QueryRow(timeoutCtx, query, id).Scan(
		&b.ID, &b.Title, &b.PublicationYear, &b.AuthorID, &b.AuthorName,
		&b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Book{}, ErrNotFound
		}
		return Book{}, err
	}
	return b, nil
}

func (r *PostgresRepo) Create(ctx context.Context, b *Book) error {
	const query = `
		INSERT INTO books (title, publication_year, author_id, created_at, updated_at)
		VALUES ($1, $2, $3, NOW(), NOW())
		RETURNING id, created_at, updated_at,
		          (SELECT name FROM authors WHERE id = $3)
	`
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	err := r.db.QueryRow(timeoutCtx, query, b.Title, b.PublicationYear, b.AuthorID).Scan(
		&b.ID, &b.CreatedAt, &b.UpdatedAt, &b.AuthorName,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == fkViolation {
			return ErrAuthorNotFound
		}
		return err
	}
	return nil
}

func (r *PostgresRepo) Update(ctx context.Context, id int64, p Patch) (Book, error) {
	sets := []string{"updated_at = NOW()"}
	args := []any{}
	argn := 1

	if p.Title != nil {
		sets = append(sets, fmt.Sprintf("title = $%d", argn))
		args = append(args, *p.Title)
		argn++
	}
	if p.PublicationYear != nil {
		sets = append(sets, fmt.Sprintf("publication_year = $%d", argn))
		args = append(args, *p.PublicationYear)
		argn++
	}
	if p.AuthorID != nil {
		sets = append(sets, fmt.Sprintf("author_id = $%d", argn))
		args = append(args, *p.AuthorID)
		argn++
	}

	query := fmt.Sprintf(`
		UPDATE books SET %s
		WHERE id = $%d
		RETURNING id, title, publication_year, author_id, created_at, updated_at,
		          (SELECT name FROM authors WHERE id = books.author_id)`,
		strings.Join(sets, ", "), argn)
	args = append(args, id)

	var b Book
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	err := r.db.QueryRow(timeoutCtx, query, args...).Scan(
		&b.ID, &b.Title, &b.PublicationYear, &b.AuthorID,
		&b.CreatedAt, &b.UpdatedAt, &b.AuthorName,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Book{}, ErrNotFound
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == fkViolation {
			return Book{}, ErrAuthorNotFound
		}
		return Book{}, err
	}
	return b, nil
}

func (r *PostgresRepo) Delete(ctx context.Context, id int64) error {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	tag, err := r.db.Exec(timeoutCtx, `DELETE FROM books WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
