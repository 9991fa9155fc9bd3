package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/MrSnakeDoc/singme/internal/domain"
)

const uniqueViolation = "23505"

const columns = `id, name, youtube_link, score`

// Store is the PostgreSQL implementation of the recommendation store.
type Store struct {
	pool *pgxpool.Pool
}

// New connects to connStr, verifies the connection and applies pending
// migrations. maxConns <= 0 keeps the pgxpool default.
func New(ctx context.Context, connStr string, maxConns int32) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		return nil, fmt.Errorf("parse connection string: %w", err)
	}
	if maxConns > 0 {
		cfg.MaxConns = maxConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := runMigrations(ctx, pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Store{pool: pool}, nil
}

// Close closes the connection pool.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func scan(row pgx.Row) (domain.Recommendation, error) {
	var r domain.Recommendation
	if err := row.Scan(&r.ID, &r.Name, &r.YoutubeLink, &r.Score); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Recommendation{}, domain.ErrNotFound
		}
		return domain.Recommendation{}, err
	}
	return r, nil
}

func (s *Store) Insert(ctx context.Context, in domain.NewRecommendation) (domain.Recommendation, error) {
	rec, err := scan(s.pool.QueryRow(ctx,
		`INSERT INTO recommendations (name, youtube_link, score) VALUES ($1, $2, $3) RETURNING `+columns,
		in.Name, in.YoutubeLink, in.Score))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return domain.Recommendation{}, fmt.Errorf("%w: %s", domain.ErrConflict, in.Name)
		}
		return domain.Recommendation{}, fmt.Errorf("insert recommendation: %w", err)
	}
	return rec, nil
}

func (s *Store) InsertMany(ctx context.Context, ins []domain.NewRecommendation) ([]domain.Recommendation, error) {
	out := make([]domain.Recommendation, 0, len(ins))
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		for _, in := range ins {
			rec, err := scan(tx.QueryRow(ctx,
				`INSERT INTO recommendations (name, youtube_link, score) VALUES ($1, $2, $3) RETURNING `+columns,
				in.Name, in.YoutubeLink, in.Score))
			if err != nil {
				var pgErr *pgconn.PgError
				if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
					return fmt.Errorf("%w: %s", domain.ErrConflict, in.Name)
				}
				return fmt.Errorf("insert recommendation: %w", err)
			}
			out = append(out, rec)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) Get(ctx context.Context, id int64) (domain.Recommendation, error) {
	rec, err := scan(s.pool.QueryRow(ctx, `SELECT `+columns+` FROM recommendations WHERE id = $1`, id))
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return domain.Recommendation{}, fmt.Errorf("get recommendation: %w", err)
	}
	return rec, err
}

// ApplyVote updates the score with a single UPDATE, which takes the row
// lock, then deletes the row in the same transaction when it crossed the
// threshold. Concurrent voters block on the lock and see the committed score.
func (s *Store) ApplyVote(ctx context.Context, id int64, delta int, deleteWhen func(score int) bool) (domain.VoteResult, error) {
	var res domain.VoteResult
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		rec, err := scan(tx.QueryRow(ctx,
			`UPDATE recommendations SET score = score + $1 WHERE id = $2 RETURNING `+columns, delta, id))
		if err != nil {
			return err
		}
		res.Recommendation = rec

		if deleteWhen == nil || !deleteWhen(rec.Score) {
			return nil
		}
		if _, err := tx.Exec(ctx, `DELETE FROM recommendations WHERE id = $1`, id); err != nil {
			return fmt.Errorf("delete after vote: %w", err)
		}
		res.Deleted = true
		return nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.VoteResult{}, err
		}
		return domain.VoteResult{}, fmt.Errorf("apply vote: %w", err)
	}
	return res, nil
}

func (s *Store) Delete(ctx context.Context, id int64) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM recommendations WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete recommendation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *Store) List(ctx context.Context, opts domain.ListOptions) ([]domain.Recommendation, error) {
	query, err := listQuery(opts)
	if err != nil {
		return nil, err
	}

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list recommendations: %w", err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Recommendation, error) {
		return scan(row)
	})
	if err != nil {
		return nil, fmt.Errorf("scan recommendations: %w", err)
	}
	return out, nil
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
			query += ` WHERE score > $1`
		} else {
			query += ` WHERE score <= $1`
		}
		args = append(args, filter.Threshold)
	}
	query += ` ORDER BY random() LIMIT 1`

	rec, err := scan(s.pool.QueryRow(ctx, query, args...))
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return domain.Recommendation{}, fmt.Errorf("sample recommendation: %w", err)
	}
	return rec, err
}

func (s *Store) CountByTier(ctx context.Context, threshold int) (int, int, error) {
	var above, rest int
	err := s.pool.QueryRow(ctx, `
		SELECT
			COUNT(*) FILTER (WHERE score >  $1),
			COUNT(*) FILTER (WHERE score <= $1)
		FROM recommendations`, threshold).Scan(&above, &rest)
	if err != nil {
		return 0, 0, fmt.Errorf("count by tier: %w", err)
	}
	return above, rest, nil
}

// Truncate empties the table. The identity sequence is left alone so ids are never reused.
func (s *Store) Truncate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, `TRUNCATE TABLE recommendations CONTINUE IDENTITY`); err != nil {
		return fmt.Errorf("truncate recommendations: %w", err)
	}
	return nil
}
