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

// Screenshot repository errors.
var (
	ErrScreenshotNotFound   = errors.New("screenshot not found")
	ErrScreenshotNotPending = errors.New("screenshot has already been reviewed")
)

const screenshotColumns = `id, player_id, image_url, description, kills, headshots,
	damage_dealt, survival, status, admin_comment, approved_by, created_at, approved_at`

// ScreenshotRepository handles screenshot submission persistence.
type ScreenshotRepository struct {
	pool *pgxpool.Pool
}

// NewScreenshotRepository creates a new ScreenshotRepository instance.
func NewScreenshotRepository(pool *pgxpool.Pool) *ScreenshotRepository {
	return &ScreenshotRepository{pool: pool}
}

func scanScreenshot(row pgx.Row) (*model.Screenshot, error) {
	var s model.Screenshot
	err := row.Scan(
		&s.ID,
		&s.PlayerID,
		&s.ImageURL,
		&s.Description,
		&s.Kills,
		&s.Headshots,
		&s.DamageDealt,
		&s.Survival,
		&s.Status,
		&s.AdminComment,
		&s.ApprovedBy,
		&s.CreatedAt,
		&s.ApprovedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func collectScreenshots(rows pgx.Rows) ([]*model.Screenshot, error) {
	defer rows.Close()

	var shots []*model.Screenshot
	for rows.Next() {
		s, err := scanScreenshot(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan screenshot: %w", err)
		}
		shots = append(shots, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating screenshots: %w", err)
	}
	return shots, nil
}

// Create inserts a screenshot in pending status.
func (r *ScreenshotRepository) Create(ctx context.Context, s *model.Screenshot) (*model.Screenshot, error) {
	const query = `
		INSERT INTO screenshots (id, player_id, image_url, description, kills, headshots, damage_dealt, survival, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, 'pending', NOW())
		RETURNING ` + screenshotColumns

	created, err := scanScreenshot(r.pool.QueryRow(ctx, query,
		s.ID, s.PlayerID, s.ImageURL, s.Description, s.Kills, s.Headshots, s.DamageDealt, s.Survival,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create screenshot: %w", err)
	}
	return created, nil
}

// GetByID retrieves a screenshot by ID.
func (r *ScreenshotRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Screenshot, error) {
	const query = `SELECT ` + screenshotColumns + ` FROM screenshots WHERE id = $1`

	s, err := scanScreenshot(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrScreenshotNotFound
		}
		return nil, fmt.Errorf("failed to get screenshot: %w", err)
	}
	return s, nil
}

// ListPending retrieves all pending screenshots, most recent first.
func (r *ScreenshotRepository) ListPending(ctx context.Context) ([]*model.Screenshot, error) {
	const query = `
		SELECT ` + screenshotColumns + `
		FROM screenshots
		WHERE status = 'pending'
		ORDER BY created_at DESC
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending screenshots: %w", err)
	}
	return collectScreenshots(rows)
}

// ListApproved retrieves approved screenshots, most recently approved first.
func (r *ScreenshotRepository) ListApproved(ctx context.Context, limit int) ([]*model.Screenshot, error) {
	const query = `
		SELECT ` + screenshotColumns + `
		FROM screenshots
		WHERE status = 'approved'
		ORDER BY approved_at DESC
		LIMIT $1
	`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list approved screenshots: %w", err)
	}
	return collectScreenshots(rows)
}

// ListByPlayer retrieves all of one player's submissions, most recent first.
func (r *ScreenshotRepository) ListByPlayer(ctx context.Context, playerID uuid.UUID) ([]*model.Screenshot, error) {
	const query = `
		SELECT ` + screenshotColumns + `
		FROM screenshots
		WHERE player_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.pool.Query(ctx, query, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list player screenshots: %w", err)
	}
	return collectScreenshots(rows)
}

// reviewStatusError distinguishes a missing screenshot from one that has
// already left pending.
func (r *ScreenshotRepository) reviewStatusError(ctx context.Context, id uuid.UUID) error {
	const query = `SELECT EXISTS(SELECT 1 FROM screenshots WHERE id = $1)`

	var exists bool
	if err := r.pool.QueryRow(ctx, query, id).Scan(&exists); err != nil {
		return fmt.Errorf("failed to check screenshot existence: %w", err)
	}
	if !exists {
		return ErrScreenshotNotFound
	}
	return ErrScreenshotNotPending
}

// Approve flips a pending screenshot to approved and credits the submitter's
// weekly score, both in one transaction. A screenshot that has already been
// reviewed is rejected with ErrScreenshotNotPending, so points are awarded
// exactly once.
func (r *ScreenshotRepository) Approve(ctx context.Context, id, adminID uuid.UUID, comment string, points int) (*model.Screenshot, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	const update = `
		UPDATE screenshots
		SET status = 'approved', approved_by = $2, approved_at = NOW(), admin_comment = $3
		WHERE id = $1 AND status = 'pending'
		RETURNING ` + screenshotColumns

	s, err := scanScreenshot(tx.QueryRow(ctx, update, id, adminID, comment))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, r.reviewStatusError(ctx, id)
		}
		return nil, fmt.Errorf("failed to approve screenshot: %w", err)
	}

	const credit = `UPDATE users SET weekly_score = weekly_score + $2 WHERE id = $1`
	if _, err := tx.Exec(ctx, credit, s.PlayerID, points); err != nil {
		return nil, fmt.Errorf("failed to credit weekly score: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit screenshot approval: %w", err)
	}
	return s, nil
}

// Reject flips a pending screenshot to rejected. No score effect.
func (r *ScreenshotRepository) Reject(ctx context.Context, id, adminID uuid.UUID, comment string) (*model.Screenshot, error) {
	const update = `
		UPDATE screenshots
		SET status = 'rejected', approved_by = $2, admin_comment = $3
		WHERE id = $1 AND status = 'pending'
		RETURNING ` + screenshotColumns

	s, err := scanScreenshot(r.pool.QueryRow(ctx, update, id, adminID, comment))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, r.reviewStatusError(ctx, id)
		}
		return nil, fmt.Errorf("failed to reject screenshot: %w", err)
	}
	return s, nil
}
