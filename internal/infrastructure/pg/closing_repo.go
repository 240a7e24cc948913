package pg

import (
	"context"
	"errors"
	"fmt"

	"github.com/fvsutils/closings/internal/domain"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// ClosingRepo persists and reads daily closings, one row per (date, code).
type ClosingRepo struct {
	db  *DB
	log *zap.Logger
}

func NewClosingRepo(db *DB, log *zap.Logger) *ClosingRepo {
	if log == nil {
		log = zap.NewNop()
	}
	return &ClosingRepo{db: db, log: log}
}

func (r *ClosingRepo) Ping(ctx context.Context) error {
	// Trivial read rather than a protocol ping: proves the table exists too.
	var n int64
	if err := r.db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM closings`).Scan(&n); err != nil {
		return err
	}
	r.log.Info("closings store reachable", zap.Int64("records", n))
	return nil
}

// Save upserts one row per quote, in input order. Writes are not wrapped in
// a transaction: a failure partway through aborts the rest and propagates,
// leaving earlier rows committed.
func (r *ClosingRepo) Save(ctx context.Context, quotes []domain.Quote) error {
	if len(quotes) == 0 {
		r.log.Info("no quotes to save")
		return nil
	}
	const up = `
        INSERT INTO closings(date, code, value)
        VALUES ($1, $2, $3)
        ON CONFLICT (date, code) DO UPDATE
          SET value=EXCLUDED.value`
	r.log.Info("saving closings", zap.Int("count", len(quotes)))
	for _, q := range quotes {
		if _, err := r.db.Pool.Exec(ctx, up, q.Date, q.Code, q.Value); err != nil {
			return fmt.Errorf("upsert %s@%s: %w", q.Code, q.Date, err)
		}
	}
	return nil
}

// Latest returns the most recent closing per code.
func (r *ClosingRepo) Latest(ctx context.Context) ([]domain.Closing, error) {
	const q = `
        SELECT c1.id, to_char(c1.date, 'YYYY-MM-DD'), c1.code, c1.value::float8
        FROM closings c1
        INNER JOIN (
            SELECT code, MAX(date) AS max_date
            FROM closings
            GROUP BY code
        ) c2 ON c1.code = c2.code AND c1.date = c2.max_date
        ORDER BY c1.code`
	rows, err := r.db.Pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Closing
	for rows.Next() {
		var c domain.Closing
		if err := rows.Scan(&c.ID, &c.Date, &c.Code, &c.Value); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// History returns up to limit closings for one code, newest first.
func (r *ClosingRepo) History(ctx context.Context, code string, limit int) ([]domain.Closing, error) {
	const q = `
        SELECT id, to_char(date, 'YYYY-MM-DD'), code, value::float8
        FROM closings
        WHERE code = $1
        ORDER BY date DESC
        LIMIT $2`
	rows, err := r.db.Pool.Query(ctx, q, code, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Closing
	for rows.Next() {
		var c domain.Closing
		if err := rows.Scan(&c.ID, &c.Date, &c.Code, &c.Value); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, domain.ErrNotFound
	}
	return out, nil
}

// Stats aggregates the stored history of one code.
func (r *ClosingRepo) Stats(ctx context.Context, code string) (domain.Stats, error) {
	const q = `
        SELECT code,
               COUNT(*),
               MIN(value)::float8,
               MAX(value)::float8,
               AVG(value)::float8,
               to_char(MIN(date), 'YYYY-MM-DD'),
               to_char(MAX(date), 'YYYY-MM-DD')
        FROM closings
        WHERE code = $1
        GROUP BY code`
	var s domain.Stats
	err := r.db.Pool.QueryRow(ctx, q, code).Scan(
		&s.Code, &s.TotalRecords, &s.MinValue, &s.MaxValue, &s.AvgValue, &s.FirstDate, &s.LastDate,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Stats{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Stats{}, err
	}
	return s, nil
}

// Codes lists the distinct instrument codes present in the store.
func (r *ClosingRepo) Codes(ctx context.Context) ([]string, error) {
	rows, err := r.db.Pool.Query(ctx, `SELECT DISTINCT code FROM closings ORDER BY code`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
