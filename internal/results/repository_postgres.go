package results

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

const (
	createSnapshotsTable = `CREATE TABLE IF NOT EXISTS result_snapshots (
        id TEXT PRIMARY KEY,
        recommendations TEXT NOT NULL,
        "originalGoal" TEXT NOT NULL,
        "createdAt" TIMESTAMPTZ NOT NULL DEFAULT now()
    )`

	insertSnapshotQuery = `INSERT INTO result_snapshots (id, recommendations, "originalGoal", "createdAt") VALUES ($1, $2, $3, $4)`

	takeSnapshotQuery = `DELETE FROM result_snapshots WHERE id = $1 RETURNING id, recommendations, "originalGoal", "createdAt"`

	deleteExpiredQuery = `DELETE FROM result_snapshots WHERE "createdAt" < $1`
)

// PostgresRepository implements Repository using Postgres.
type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// EnsureSchema creates the snapshot table when it does not exist yet.
func (r *PostgresRepository) EnsureSchema(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, createSnapshotsTable)
	return err
}

func (r *PostgresRepository) Put(ctx context.Context, s Snapshot) error {
	_, err := r.db.ExecContext(ctx, insertSnapshotQuery, s.ID, s.Recommendations, s.OriginalGoal, s.CreatedAt)
	return err
}

// Take deletes and returns the row in a single statement, so two readers can
// never both consume the same snapshot.
func (r *PostgresRepository) Take(ctx context.Context, id string) (Snapshot, error) {
	var s Snapshot
	err := r.db.QueryRowContext(ctx, takeSnapshotQuery, id).Scan(&s.ID, &s.Recommendations, &s.OriginalGoal, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Snapshot{}, ErrNotFound
		}
		return Snapshot{}, err
	}
	return s, nil
}

func (r *PostgresRepository) DeleteExpired(ctx context.Context, before time.Time) (int, error) {
	res, err := r.db.ExecContext(ctx, deleteExpiredQuery, before)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}
