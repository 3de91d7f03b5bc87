package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"guild-backend/internal/model"
)

// SettingsRepository handles the single-row site settings record.
type SettingsRepository struct {
	pool *pgxpool.Pool
}

// NewSettingsRepository creates a new SettingsRepository instance.
func NewSettingsRepository(pool *pgxpool.Pool) *SettingsRepository {
	return &SettingsRepository{pool: pool}
}

// GetOrCreate returns the settings row, inserting it with the given
// defaults first if it does not exist yet. The insert is a no-op upsert so
// concurrent first reads cannot create two rows.
func (r *SettingsRepository) GetOrCreate(ctx context.Context, defaults model.Settings) (*model.Settings, error) {
	const upsert = `
		INSERT INTO settings (id, website_name, website_logo, description, updated_at)
		VALUES (1, $1, $2, $3, NOW())
		ON CONFLICT (id) DO NOTHING
	`
	if _, err := r.pool.Exec(ctx, upsert, defaults.WebsiteName, defaults.WebsiteLogo, defaults.Description); err != nil {
		return nil, fmt.Errorf("failed to initialise settings: %w", err)
	}

	const query = `SELECT website_name, website_logo, description, updated_at FROM settings WHERE id = 1`

	var s model.Settings
	err := r.pool.QueryRow(ctx, query).Scan(&s.WebsiteName, &s.WebsiteLogo, &s.Description, &s.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to get settings: %w", err)
	}
	return &s, nil
}

// Update overwrites only the supplied fields and stamps updated_at. Nil
// fields keep their current value. The row must exist; callers go through
// GetOrCreate first.
func (r *SettingsRepository) Update(ctx context.Context, websiteName, websiteLogo, description *string) (*model.Settings, error) {
	const update = `
		UPDATE settings
		SET website_name = COALESCE($1, website_name),
		    website_logo = COALESCE($2, website_logo),
		    description = COALESCE($3, description),
		    updated_at = NOW()
		WHERE id = 1
		RETURNING website_name, website_logo, description, updated_at
	`

	var s model.Settings
	err := r.pool.QueryRow(ctx, update, websiteName, websiteLogo, description).Scan(
		&s.WebsiteName, &s.WebsiteLogo, &s.Description, &s.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update settings: %w", err)
	}
	return &s, nil
}
