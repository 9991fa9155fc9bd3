package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/MrSnakeDoc/singme/internal/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS recommendations (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	name         TEXT    NOT NULL UNIQUE,
	youtube_link TEXT    NOT NULL,
	score        INTEGER NOT NULL DEFAULT 0,
	created_at   TEXT    NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ', 'now'))
);
CREATE INDEX IF NOT EXISTS recommendations_score_idx ON recommendations (score DESC, id ASC);
`

const columns = `id, name, youtube_link, score`

// Store is the SQLite implementation of the recommendation store.
//
// The pool is pinned to a single connection: SQLite serializes writers
// anyway, and an in-memory database only exists on the connection that
// created it.
type Store struct {
	db *sql.DB
}

// New opens dsn (e.g. "file:singme.db" or ":memory:") and creates the schema.
func New(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, `PRAGMA journal_mode=WAL; PRAGMA busy_timeout=5000;`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("configure sqlite: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func scan(row interface{ Scan(...any) error }) (domain.Recommendation, error) {
	var r domain.Recommendation
	if err := row.Scan(&r.ID, &r.Name, &r.YoutubeLink, &r.Score); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Recommendation{}, domain.ErrNotFound
		}
		return domain.Recommendation{}, err
	}
	return r, nil
}

func (s *Store) Insert(ctx context.Context, in domain.NewRecommendation) (domain.Recommendation, error) {
	row := s.db.QueryRowContext(ctx,
		`INSERT INTO recommendations (name, youtube_link, score) VALUES (?, ?, ?) RETURNING `+columns,
		in.Name, in.YoutubeLink, in.Score)
	rec, err := scan(row)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.Recommendation{}, fmt.Errorf("%w: %s", domain.ErrConflict, in.Name)
		}
		return domain.Recommendation{}, fmt.Errorf("insert recommendation: %w", err)
	}
	return rec, nil
}

func (s *Store) InsertMany(ctx context.Context, ins []domain.NewRecommendation) (out []domain.Recommendation, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin insert tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO recommendations (name, youtube_link, score) VALUES (?, ?, ?) RETURNING `+columns)
	if err != nil {
		return nil, fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	out = make([]domain.Recommendation, 0, len(ins))
	for _, in := range ins {
		rec, err := scan(stmt.QueryRowContext(ctx, in.Name, in.YoutubeLink, in.Score))
		if err != nil {
			if isUniqueViolation(err) {
				return nil, fmt.Errorf("%w: %s", domain.ErrConflict, in.Name)
			}
			return nil, fmt.Errorf("insert recommendation: %w", err)
		}
		out = append(out, rec)
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit inserts: %w", err)
	}
	return out, nil
}

func (s *Store) Get(ctx context.Context, id int64) (domain.Recommendation, error) {
	rec, err := scan(s.db.QueryRowContext(ctx, `SELECT `+columns+` FROM recommendations WHERE id = ?`, id))
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return domain.Recommendation{}, fmt.Errorf("get recommendation: %w", err)
	}
	return rec, err
}

func (s *Store) ApplyVote(ctx context.Context, id int64, delta int, deleteWhen func(score int) bool) (res domain.VoteResult, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.VoteResult{}, fmt.Errorf("begin vote tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	rec, err := scan(tx.QueryRowContext(ctx,
		`UPDATE recommendations SET score = score + ? WHERE id = ? RETURNING `+columns, delta, id))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.VoteResult{}, err
		}
		return domain.VoteResult{}, fmt.Errorf("apply vote: %w", err)
	}
	res.Recommendation = rec

	if deleteWhen != nil && deleteWhen(rec.Score) {
		if _, err = tx.ExecContext(ctx, `DELETE FROM recommendations WHERE id = ?`, id); err != nil {
			return domain.VoteResult{}, fmt.Errorf("delete after vote: %w", err)
		}
		res.Deleted = true
	}

	if err = tx.Commit(); err != nil {
		return domain.VoteResult{}, fmt.Errorf("commit vote: %w", err)
	}
	return res, nil
}

func (s *Store) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM recommendations WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete recommendation: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete recommendation: %w", err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *Store) List(ctx context.Context, opts domain.ListOptions) ([]domain.Recommendation, error) {
	query, err := listQuery(opts)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list recommendations: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Recommendation, 0, max(opts.Limit, 0))
	for rows.Next() {
		rec, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan recommendation: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func listQuery(opts domain.ListOptions) (string, error) {
	if !opts.OrderBy.Valid() {
		return "", fmt.Errorf("unsupported order column %q", opts.OrderBy)
	}
	dir := "ASC"
	if opts.Desc {
		dir = "DESC"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "SELECT %s FROM recommendations ORDER BY %s %s", columns, opts.OrderBy, dir)
	if opts.OrderBy != domain.OrderByID {
		b.WriteString(", id ASC")
	}
	if opts.Limit > 0 {
		fmt.Fprintf(&b, " LIMIT %d", opts.Limit)
	}
	return b.String(), nil
}

func (s *Store) SampleRandom(ctx context.Context, filter *domain.ScoreFilter) (domain.Recommendation, error) {
	query := `SELECT ` + columns + ` FROM recommendations`
	var args []any
	if filter != nil {
		if filter.Above {
			query += ` WHERE score > ?`
		} else {
			query += ` WHERE score <= ?`
		}
		args = append(args, filter.Threshold)
	}
	query += ` ORDER BY RANDOM() LIMIT 1`

	rec, err := scan(s.db.QueryRowContext(ctx, query, args...))
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return domain.Recommendation{}, fmt.Errorf("sample recommendation: %w", err)
	}
	return rec, err
}

func (s *Store) CountByTier(ctx context.Context, threshold int) (int, int, error) {
	var above, rest int
	err := s.db.QueryRowContext(ctx, `
		SELECT
			COALESCE(SUM(CASE WHEN score >  ? THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN score <= ? THEN 1 ELSE 0 END), 0)
		FROM recommendations`, threshold, threshold).Scan(&above, &rest)
	if err != nil {
		return 0, 0, fmt.Errorf("count by tier: %w", err)
	}
	return above, rest, nil
}

// Truncate deletes every row. AUTOINCREMENT keeps the sequence, so ids are not reused.
func (s *Store) Truncate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM recommendations`); err != nil {
		return fmt.Errorf("truncate recommendations: %w", err)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var sqlErr *sqlite.Error
	return errors.As(err, &sqlErr) && sqlErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
}
