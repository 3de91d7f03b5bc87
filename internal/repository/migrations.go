package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

// Migrate executes the database migrations in order. Each statement is
// idempotent so the full set runs on every startup.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	log.Info().Msg("Running database migrations...")

	// Migration 1: users table.
	// squad_id carries no FK constraint: squads reference users and the
	// application clears the reference explicitly on squad removal.
	_, err := pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS users (
			id UUID PRIMARY KEY,
			username VARCHAR(50) NOT NULL UNIQUE,
			email VARCHAR(255) NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			role VARCHAR(20) NOT NULL DEFAULT 'player',
			game_id VARCHAR(100) NOT NULL,
			profile_image TEXT,
			kills INT NOT NULL DEFAULT 0,
			deaths INT NOT NULL DEFAULT 0,
			wins INT NOT NULL DEFAULT 0,
			matches INT NOT NULL DEFAULT 0,
			weekly_score INT NOT NULL DEFAULT 0,
			weekly_rank INT NOT NULL DEFAULT 0,
			squad_id UUID,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS idx_users_weekly_score ON users(weekly_score DESC);
	`)
	if err != nil {
		return err
	}
	log.Info().Msg("Migration 1: users table created")

	// Migration 2: squads table.
	_, err = pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS squads (
			id UUID PRIMARY KEY,
			name VARCHAR(50) NOT NULL,
			description VARCHAR(500) NOT NULL DEFAULT '',
			leader_id UUID NOT NULL REFERENCES users(id),
			max_members INT NOT NULL DEFAULT 4,
			status VARCHAR(20) NOT NULL DEFAULT 'pending',
			approved_by UUID REFERENCES users(id),
			admin_comment VARCHAR(500) NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			approved_at TIMESTAMPTZ,
			wins INT NOT NULL DEFAULT 0,
			losses INT NOT NULL DEFAULT 0
		);
		CREATE INDEX IF NOT EXISTS idx_squads_status ON squads(status);
		CREATE INDEX IF NOT EXISTS idx_squads_leader ON squads(leader_id);
	`)
	if err != nil {
		return err
	}
	log.Info().Msg("Migration 2: squads table created")

	// Migration 3: squad membership rows. The leader's row is inserted at
	// squad creation; deactivated squads keep their rows as history.
	_, err = pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS squad_members (
			squad_id UUID NOT NULL REFERENCES squads(id) ON DELETE CASCADE,
			user_id UUID NOT NULL REFERENCES users(id),
			joined_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			PRIMARY KEY (squad_id, user_id)
		);
		CREATE INDEX IF NOT EXISTS idx_squad_members_user ON squad_members(user_id);
	`)
	if err != nil {
		return err
	}
	log.Info().Msg("Migration 3: squad_members table created")

	// Migration 4: screenshots table.
	_, err = pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS screenshots (
			id UUID PRIMARY KEY,
			player_id UUID NOT NULL REFERENCES users(id),
			image_url TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			kills INT NOT NULL DEFAULT 0,
			headshots INT NOT NULL DEFAULT 0,
			damage_dealt INT NOT NULL DEFAULT 0,
			survival VARCHAR(100) NOT NULL DEFAULT '',
			status VARCHAR(20) NOT NULL DEFAULT 'pending',
			admin_comment TEXT NOT NULL DEFAULT '',
			approved_by UUID REFERENCES users(id),
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			approved_at TIMESTAMPTZ
		);
		CREATE INDEX IF NOT EXISTS idx_screenshots_status_time ON screenshots(status, created_at DESC);
		CREATE INDEX IF NOT EXISTS idx_screenshots_player_time ON screenshots(player_id, created_at DESC);
	`)
	if err != nil {
		return err
	}
	log.Info().Msg("Migration 4: screenshots table created")

	// Migration 5: leaderboard archive.
	_, err = pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS leaderboard_entries (
			id BIGSERIAL PRIMARY KEY,
			week VARCHAR(10) NOT NULL,
			player_id UUID NOT NULL REFERENCES users(id),
			score INT NOT NULL DEFAULT 0,
			kills INT NOT NULL DEFAULT 0,
			wins INT NOT NULL DEFAULT 0,
			matches INT NOT NULL DEFAULT 0,
			rank INT NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS idx_leaderboard_week_player ON leaderboard_entries(week, player_id);
	`)
	if err != nil {
		return err
	}
	log.Info().Msg("Migration 5: leaderboard_entries table created")

	// Migration 6: settings singleton. The CHECK pins the table to one row.
	_, err = pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS settings (
			id SMALLINT PRIMARY KEY DEFAULT 1 CHECK (id = 1),
			website_name VARCHAR(100) NOT NULL,
			website_logo TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
	`)
	if err != nil {
		return err
	}
	log.Info().Msg("Migration 6: settings table created")

	log.Info().Msg("All migrations completed successfully")
	return nil
}
