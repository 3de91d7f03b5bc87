package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"guild-backend/internal/model"
)

// ErrEntryNotFound is returned when no archived entry matches a lookup.
var ErrEntryNotFound = errors.New("leaderboard entry not found")

const entryColumns = `id, week, player_id, score, kills, wins, matches, rank, created_at`

// LeaderboardRepository handles the write-once weekly archive.
type LeaderboardRepository struct {
	pool *pgxpool.Pool
}

// NewLeaderboardRepository creates a new LeaderboardRepository instance.
func NewLeaderboardRepository(pool *pgxpool.Pool) *LeaderboardRepository {
	return &LeaderboardRepository{pool: pool}
}

func scanEntry(row pgx.Row) (*model.LeaderboardEntry, error) {
	var e model.LeaderboardEntry
	err := row.Scan(
		&e.ID,
		&e.Week,
		&e.PlayerID,
		&e.Score,
		&e.Kills,
		&e.Wins,
		&e.Matches,
		&e.Rank,
		&e.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// GetEntry retrieves the archived entry for one player in one week.
func (r *LeaderboardRepository) GetEntry(ctx context.Context, week string, playerID uuid.UUID) (*model.LeaderboardEntry, error) {
	const query = `SELECT ` + entryColumns + ` FROM leaderboard_entries WHERE week = $1 AND player_id = $2`

	e, err := scanEntry(r.pool.QueryRow(ctx, query, week, playerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrEntryNotFound
		}
		return nil, fmt.Errorf("failed to get leaderboard entry: %w", err)
	}
	return e, nil
}

// ListWeek retrieves the archived entries for a week, best rank first. A
// non-positive limit falls back to 100 entries.
func (r *LeaderboardRepository) ListWeek(ctx context.Context, week string, limit int) ([]*model.LeaderboardEntry, error) {
	if limit <= 0 {
		limit = 100
	}
	const query = `
		SELECT ` + entryColumns + `
		FROM leaderboard_entries
		WHERE week = $1
		ORDER BY rank ASC
		LIMIT $2
	`

	rows, err := r.pool.Query(ctx, query, week, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list week entries: %w", err)
	}
	defer rows.Close()

	var entries []*model.LeaderboardEntry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan leaderboard entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating leaderboard entries: %w", err)
	}
	return entries, nil
}

// ArchiveAndReset snapshots every user's current weekly score, ranked by
// score descending with username as the tie-break, into entries tagged with
// the given week label, then zeroes all weekly scores. Both steps run in one
// transaction so a failure leaves neither a partial archive nor a partial
// reset. Returns the number of archived players.
func (r *LeaderboardRepository) ArchiveAndReset(ctx context.Context, week string) (int, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	const archive = `
		INSERT INTO leaderboard_entries (week, player_id, score, kills, wins, matches, rank, created_at)
		SELECT $1, id, weekly_score, kills, wins, matches,
		       ROW_NUMBER() OVER (ORDER BY weekly_score DESC, username ASC),
		       NOW()
		FROM users
	`
	res, err := tx.Exec(ctx, archive, week)
	if err != nil {
		return 0, fmt.Errorf("failed to archive weekly scores: %w", err)
	}

	if _, err := tx.Exec(ctx, `UPDATE users SET weekly_score = 0`); err != nil {
		return 0, fmt.Errorf("failed to reset weekly scores: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit weekly reset: %w", err)
	}
	return int(res.RowsAffected()), nil
}
