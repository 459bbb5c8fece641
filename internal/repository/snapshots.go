package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/openmars/mars-server-go/internal/game"
)

// ErrSnapshotNotFound is returned when no snapshot exists for a game.
var ErrSnapshotNotFound = errors.New("snapshot not found")

// SnapshotRepository stores match snapshots, one row per game, latest wins.
type SnapshotRepository struct {
	db *DB
}

// NewSnapshotRepository creates a snapshot repository.
func NewSnapshotRepository(db *DB) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

// EnsureSchema creates the snapshot table if it does not exist.
func (r *SnapshotRepository) EnsureSchema(ctx context.Context) error {
	_, err := r.db.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS match_snapshots (
			game_id    TEXT PRIMARY KEY,
			snapshot   JSONB NOT NULL,
			checksum   TEXT NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`)
	if err != nil {
		return fmt.Errorf("failed to create match_snapshots table: %w", err)
	}
	return nil
}

// Save upserts the snapshot for its game.
func (r *SnapshotRepository) Save(ctx context.Context, snapshot *game.MatchSnapshot) error {
	data, err := snapshot.SerializeToBytes()
	if err != nil {
		return err
	}
	_, err = r.db.pool.Exec(ctx, `
		INSERT INTO match_snapshots (game_id, snapshot, checksum, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (game_id) DO UPDATE
		SET snapshot = EXCLUDED.snapshot,
		    checksum = EXCLUDED.checksum,
		    updated_at = now()`,
		snapshot.Setup.GameID, data, snapshot.Checksum)
	if err != nil {
		return fmt.Errorf("failed to save snapshot for game %s: %w", snapshot.Setup.GameID, err)
	}
	return nil
}

// Load returns the stored snapshot for a game.
func (r *SnapshotRepository) Load(ctx context.Context, gameID string) (*game.MatchSnapshot, error) {
	var data []byte
	err := r.db.pool.QueryRow(ctx,
		`SELECT snapshot FROM match_snapshots WHERE game_id = $1`, gameID).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrSnapshotNotFound, gameID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot for game %s: %w", gameID, err)
	}
	return game.DeserializeSnapshot(data)
}

// Delete removes the snapshot for a finished game.
func (r *SnapshotRepository) Delete(ctx context.Context, gameID string) error {
	_, err := r.db.pool.Exec(ctx,
		`DELETE FROM match_snapshots WHERE game_id = $1`, gameID)
	if err != nil {
		return fmt.Errorf("failed to delete snapshot for game %s: %w", gameID, err)
	}
	return nil
}

// StoredGame is a row in the snapshot listing.
type StoredGame struct {
	GameID    string
	Checksum  string
	UpdatedAt time.Time
}

// List returns the stored games, most recently updated first.
func (r *SnapshotRepository) List(ctx context.Context) ([]StoredGame, error) {
	rows, err := r.db.pool.Query(ctx,
		`SELECT game_id, checksum, updated_at FROM match_snapshots ORDER BY updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}
	defer rows.Close()

	var out []StoredGame
	for rows.Next() {
		var g StoredGame
		if err := rows.Scan(&g.GameID, &g.Checksum, &g.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot row: %w", err)
		}
		out = append(out, g)
	}
	return out, rows.Err()
}
