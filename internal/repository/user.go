// Package repository provides data access layer implementations.
package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"guild-backend/internal/model"
)

// Common errors for repository operations.
var (
	ErrUserNotFound  = errors.New("user not found")
	ErrDuplicateUser = errors.New("username or email already taken")
)

const userColumns = `id, username, email, password_hash, role, game_id, profile_image,
	kills, deaths, wins, matches, weekly_score, weekly_rank, squad_id, created_at`

// UserRepository handles user account persistence.
type UserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new UserRepository instance.
func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func scanUser(row pgx.Row) (*model.User, error) {
	var u model.User
	err := row.Scan(
		&u.ID,
		&u.Username,
		&u.Email,
		&u.PasswordHash,
		&u.Role,
		&u.GameID,
		&u.ProfileImage,
		&u.Kills,
		&u.Deaths,
		&u.Wins,
		&u.Matches,
		&u.WeeklyScore,
		&u.WeeklyRank,
		&u.SquadID,
		&u.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func collectUsers(rows pgx.Rows) ([]*model.User, error) {
	defer rows.Close()

	var users []*model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating users: %w", err)
	}
	return users, nil
}

// isUniqueViolation reports whether err is a unique-constraint violation.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// Create inserts a new user. Returns ErrDuplicateUser when the username or
// email is already taken.
func (r *UserRepository) Create(ctx context.Context, u *model.User) (*model.User, error) {
	const query = `
		INSERT INTO users (id, username, email, password_hash, role, game_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		RETURNING ` + userColumns

	created, err := scanUser(r.pool.QueryRow(ctx, query,
		u.ID, u.Username, u.Email, u.PasswordHash, u.Role, u.GameID,
	))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateUser
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return created, nil
}

// GetByID retrieves a user by ID. Returns ErrUserNotFound if absent.
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	u, err := scanUser(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return u, nil
}

// GetByEmail retrieves a user by lowercased email.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	u, err := scanUser(r.pool.QueryRow(ctx, query, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return u, nil
}

// ExistsByUsernameOrEmail reports whether any user holds the username or email.
func (r *UserRepository) ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error) {
	const query = `SELECT EXISTS(SELECT 1 FROM users WHERE username = $1 OR email = $2)`

	var exists bool
	if err := r.pool.QueryRow(ctx, query, username, email).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check user existence: %w", err)
	}
	return exists, nil
}

// List retrieves every user ordered by weekly score descending.
// Username ascending is the deterministic tie-break.
func (r *UserRepository) List(ctx context.Context) ([]*model.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users ORDER BY weekly_score DESC, username ASC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return collectUsers(rows)
}

// GetByIDs retrieves the users whose IDs are in ids, in the leaderboard
// ordering (weekly score desc, username asc).
func (r *UserRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*model.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	const query = `SELECT ` + userColumns + ` FROM users WHERE id = ANY($1) ORDER BY weekly_score DESC, username ASC`

	rows, err := r.pool.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to get users by ids: %w", err)
	}
	return collectUsers(rows)
}

// UpdateProfile overwrites the profile fields of a user and returns the
// updated record. No range validation is applied at this layer.
func (r *UserRepository) UpdateProfile(ctx context.Context, id uuid.UUID, username, gameID string, kills, deaths, wins, matches int) (*model.User, error) {
	const query = `
		UPDATE users
		SET username = $2, game_id = $3, kills = $4, deaths = $5, wins = $6, matches = $7
		WHERE id = $1
		RETURNING ` + userColumns

	u, err := scanUser(r.pool.QueryRow(ctx, query, id, username, gameID, kills, deaths, wins, matches))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		if isUniqueViolation(err) {
			return nil, ErrDuplicateUser
		}
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return u, nil
}

// CountWithScoreAbove counts users with a weekly score strictly greater
// than the given score. Used for the dynamic rank fallback.
func (r *UserRepository) CountWithScoreAbove(ctx context.Context, score int) (int, error) {
	const query = `SELECT COUNT(*) FROM users WHERE weekly_score > $1`

	var count int
	if err := r.pool.QueryRow(ctx, query, score).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count users above score: %w", err)
	}
	return count, nil
}
