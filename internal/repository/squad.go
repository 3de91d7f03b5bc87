package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"guild-backend/internal/model"
)

// Squad repository errors.
var (
	ErrSquadNotFound    = errors.New("squad not found")
	ErrSquadNotPending  = errors.New("squad is not pending")
	ErrSquadNotApproved = errors.New("squad is not approved")
	ErrSquadFull        = errors.New("squad is full")
	ErrAlreadyMember    = errors.New("user is already a member of this squad")
	ErrInActiveSquad    = errors.New("user already belongs to an active squad")
	ErrNotMember        = errors.New("user is not a member of this squad")
)

const squadColumns = `id, name, description, leader_id, max_members, status,
	approved_by, admin_comment, created_at, approved_at, wins, losses`

// SquadRepository handles squad persistence, including the membership rows
// and the multi-row transitions of the approval state machine.
type SquadRepository struct {
	pool *pgxpool.Pool
}

// NewSquadRepository creates a new SquadRepository instance.
func NewSquadRepository(pool *pgxpool.Pool) *SquadRepository {
	return &SquadRepository{pool: pool}
}

func scanSquad(row pgx.Row) (*model.Squad, error) {
	var s model.Squad
	err := row.Scan(
		&s.ID,
		&s.Name,
		&s.Description,
		&s.LeaderID,
		&s.MaxMembers,
		&s.Status,
		&s.ApprovedBy,
		&s.AdminComment,
		&s.CreatedAt,
		&s.ApprovedAt,
		&s.Wins,
		&s.Losses,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func collectSquads(rows pgx.Rows) ([]*model.Squad, error) {
	defer rows.Close()

	var squads []*model.Squad
	for rows.Next() {
		s, err := scanSquad(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan squad: %w", err)
		}
		squads = append(squads, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating squads: %w", err)
	}
	return squads, nil
}

// attachMemberIDs loads the rosters for the given squads in one query.
func (r *SquadRepository) attachMemberIDs(ctx context.Context, squads []*model.Squad) error {
	if len(squads) == 0 {
		return nil
	}

	ids := make([]uuid.UUID, len(squads))
	byID := make(map[uuid.UUID]*model.Squad, len(squads))
	for i, s := range squads {
		ids[i] = s.ID
		byID[s.ID] = s
	}

	const query = `
		SELECT squad_id, user_id
		FROM squad_members
		WHERE squad_id = ANY($1)
		ORDER BY joined_at ASC
	`

	rows, err := r.pool.Query(ctx, query, ids)
	if err != nil {
		return fmt.Errorf("failed to load squad members: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var squadID, userID uuid.UUID
		if err := rows.Scan(&squadID, &userID); err != nil {
			return fmt.Errorf("failed to scan squad member: %w", err)
		}
		if s, ok := byID[squadID]; ok {
			s.MemberIDs = append(s.MemberIDs, userID)
		}
	}
	return rows.Err()
}

// Create inserts a squad in pending status with the leader as its sole
// member. Both rows are written in one transaction.
func (r *SquadRepository) Create(ctx context.Context, s *model.Squad) (*model.Squad, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	const insertSquad = `
		INSERT INTO squads (id, name, description, leader_id, max_members, status, created_at)
		VALUES ($1, $2, $3, $4, $5, 'pending', NOW())
		RETURNING ` + squadColumns

	created, err := scanSquad(tx.QueryRow(ctx, insertSquad,
		s.ID, s.Name, s.Description, s.LeaderID, s.MaxMembers,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create squad: %w", err)
	}

	const insertLeader = `INSERT INTO squad_members (squad_id, user_id) VALUES ($1, $2)`
	if _, err := tx.Exec(ctx, insertLeader, s.ID, s.LeaderID); err != nil {
		return nil, fmt.Errorf("failed to add leader to squad: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit squad creation: %w", err)
	}

	created.MemberIDs = []uuid.UUID{s.LeaderID}
	return created, nil
}

// GetByID retrieves a squad and its roster. Returns ErrSquadNotFound if absent.
func (r *SquadRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Squad, error) {
	const query = `SELECT ` + squadColumns + ` FROM squads WHERE id = $1`

	s, err := scanSquad(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSquadNotFound
		}
		return nil, fmt.Errorf("failed to get squad: %w", err)
	}

	if err := r.attachMemberIDs(ctx, []*model.Squad{s}); err != nil {
		return nil, err
	}
	return s, nil
}

// HasActiveSquad reports whether the user belongs to any squad whose status
// is pending or approved. One active squad per user is a business rule, not
// a uniqueness constraint; concurrent creations can still race past it.
func (r *SquadRepository) HasActiveSquad(ctx context.Context, userID uuid.UUID) (bool, error) {
	const query = `
		SELECT EXISTS(
			SELECT 1
			FROM squad_members m
			JOIN squads s ON s.id = m.squad_id
			WHERE m.user_id = $1 AND s.status IN ('pending', 'approved')
		)
	`

	var exists bool
	if err := r.pool.QueryRow(ctx, query, userID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check active squad: %w", err)
	}
	return exists, nil
}

// ListByStatus retrieves squads in the given status, newest first.
func (r *SquadRepository) ListByStatus(ctx context.Context, status string) ([]*model.Squad, error) {
	const query = `SELECT ` + squadColumns + ` FROM squads WHERE status = $1 ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, status)
	if err != nil {
		return nil, fmt.Errorf("failed to list squads: %w", err)
	}
	squads, err := collectSquads(rows)
	if err != nil {
		return nil, err
	}
	if err := r.attachMemberIDs(ctx, squads); err != nil {
		return nil, err
	}
	return squads, nil
}

// ListApproved retrieves the approved squads sorted by wins descending,
// then creation time descending.
func (r *SquadRepository) ListApproved(ctx context.Context) ([]*model.Squad, error) {
	const query = `
		SELECT ` + squadColumns + `
		FROM squads
		WHERE status = 'approved'
		ORDER BY wins DESC, created_at DESC
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list approved squads: %w", err)
	}
	squads, err := collectSquads(rows)
	if err != nil {
		return nil, err
	}
	if err := r.attachMemberIDs(ctx, squads); err != nil {
		return nil, err
	}
	return squads, nil
}

// ListAll retrieves squads for the admin panel, optionally filtered by
// status and by a case-insensitive substring match on the name.
func (r *SquadRepository) ListAll(ctx context.Context, statusFilter, search string) ([]*model.Squad, error) {
	query := `SELECT ` + squadColumns + ` FROM squads`
	var conds []string
	var args []any

	if statusFilter != "" {
		args = append(args, statusFilter)
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}
	if search != "" {
		args = append(args, "%"+search+"%")
		conds = append(conds, fmt.Sprintf("name ILIKE $%d", len(args)))
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY created_at DESC"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list all squads: %w", err)
	}
	squads, err := collectSquads(rows)
	if err != nil {
		return nil, err
	}
	if err := r.attachMemberIDs(ctx, squads); err != nil {
		return nil, err
	}
	return squads, nil
}

// GetApprovedByUser retrieves the single approved squad the user belongs to.
func (r *SquadRepository) GetApprovedByUser(ctx context.Context, userID uuid.UUID) (*model.Squad, error) {
	const query = `
		SELECT ` + squadColumns + `
		FROM squads s
		WHERE s.status = 'approved'
		  AND EXISTS(SELECT 1 FROM squad_members m WHERE m.squad_id = s.id AND m.user_id = $1)
	`

	s, err := scanSquad(r.pool.QueryRow(ctx, query, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSquadNotFound
		}
		return nil, fmt.Errorf("failed to get user's squad: %w", err)
	}

	if err := r.attachMemberIDs(ctx, []*model.Squad{s}); err != nil {
		return nil, err
	}
	return s, nil
}

// statusError re-reads the squad to turn a zero-row conditional update into
// either a not-found or a wrong-state error.
func (r *SquadRepository) statusError(ctx context.Context, id uuid.UUID, wantErr error) error {
	const query = `SELECT EXISTS(SELECT 1 FROM squads WHERE id = $1)`

	var exists bool
	if err := r.pool.QueryRow(ctx, query, id).Scan(&exists); err != nil {
		return fmt.Errorf("failed to check squad existence: %w", err)
	}
	if !exists {
		return ErrSquadNotFound
	}
	return wantErr
}

// Approve flips a pending squad to approved and propagates the squad
// reference onto every current member, all in one transaction.
func (r *SquadRepository) Approve(ctx context.Context, id, adminID uuid.UUID, comment string) (*model.Squad, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	const update = `
		UPDATE squads
		SET status = 'approved', approved_by = $2, approved_at = NOW(), admin_comment = $3
		WHERE id = $1 AND status = 'pending'
		RETURNING ` + squadColumns

	s, err := scanSquad(tx.QueryRow(ctx, update, id, adminID, comment))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, r.statusError(ctx, id, ErrSquadNotPending)
		}
		return nil, fmt.Errorf("failed to approve squad: %w", err)
	}

	const propagate = `
		UPDATE users
		SET squad_id = $1
		WHERE id IN (SELECT user_id FROM squad_members WHERE squad_id = $1)
	`
	if _, err := tx.Exec(ctx, propagate, id); err != nil {
		return nil, fmt.Errorf("failed to propagate squad reference: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit squad approval: %w", err)
	}

	if err := r.attachMemberIDs(ctx, []*model.Squad{s}); err != nil {
		return nil, err
	}
	return s, nil
}

// Reject flips a pending squad to rejected. No membership propagation.
func (r *SquadRepository) Reject(ctx context.Context, id, adminID uuid.UUID, comment string) (*model.Squad, error) {
	const update = `
		UPDATE squads
		SET status = 'rejected', approved_by = $2, admin_comment = $3
		WHERE id = $1 AND status = 'pending'
		RETURNING ` + squadColumns

	s, err := scanSquad(r.pool.QueryRow(ctx, update, id, adminID, comment))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, r.statusError(ctx, id, ErrSquadNotPending)
		}
		return nil, fmt.Errorf("failed to reject squad: %w", err)
	}

	if err := r.attachMemberIDs(ctx, []*model.Squad{s}); err != nil {
		return nil, err
	}
	return s, nil
}

// UpdateName renames a squad.
func (r *SquadRepository) UpdateName(ctx context.Context, id uuid.UUID, name string) (*model.Squad, error) {
	const update = `UPDATE squads SET name = $2 WHERE id = $1 RETURNING ` + squadColumns

	s, err := scanSquad(r.pool.QueryRow(ctx, update, id, name))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSquadNotFound
		}
		return nil, fmt.Errorf("failed to update squad name: %w", err)
	}

	if err := r.attachMemberIDs(ctx, []*model.Squad{s}); err != nil {
		return nil, err
	}
	return s, nil
}

// AddMember appends a user to the squad roster and sets their squad
// reference. The squad row is locked for the duration of the transaction so
// two concurrent adds cannot both pass the capacity check.
func (r *SquadRepository) AddMember(ctx context.Context, squadID, userID uuid.UUID) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	const lockSquad = `SELECT max_members FROM squads WHERE id = $1 FOR UPDATE`
	var maxMembers int
	if err := tx.QueryRow(ctx, lockSquad, squadID).Scan(&maxMembers); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrSquadNotFound
		}
		return fmt.Errorf("failed to lock squad: %w", err)
	}

	const countMembers = `SELECT COUNT(*) FROM squad_members WHERE squad_id = $1`
	var count int
	if err := tx.QueryRow(ctx, countMembers, squadID).Scan(&count); err != nil {
		return fmt.Errorf("failed to count members: %w", err)
	}
	if count >= maxMembers {
		return ErrSquadFull
	}

	const alreadyMember = `SELECT EXISTS(SELECT 1 FROM squad_members WHERE squad_id = $1 AND user_id = $2)`
	var isMember bool
	if err := tx.QueryRow(ctx, alreadyMember, squadID, userID).Scan(&isMember); err != nil {
		return fmt.Errorf("failed to check membership: %w", err)
	}
	if isMember {
		return ErrAlreadyMember
	}

	const elsewhere = `
		SELECT EXISTS(
			SELECT 1
			FROM squad_members m
			JOIN squads s ON s.id = m.squad_id
			WHERE m.user_id = $2 AND s.id <> $1 AND s.status = 'approved'
		)
	`
	var inOther bool
	if err := tx.QueryRow(ctx, elsewhere, squadID, userID).Scan(&inOther); err != nil {
		return fmt.Errorf("failed to check other memberships: %w", err)
	}
	if inOther {
		return ErrInActiveSquad
	}

	if _, err := tx.Exec(ctx, `INSERT INTO squad_members (squad_id, user_id) VALUES ($1, $2)`, squadID, userID); err != nil {
		return fmt.Errorf("failed to insert member: %w", err)
	}
	if _, err := tx.Exec(ctx, `UPDATE users SET squad_id = $1 WHERE id = $2`, squadID, userID); err != nil {
		return fmt.Errorf("failed to set user squad reference: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit member addition: %w", err)
	}
	return nil
}

// RemoveMember deletes a user from the squad roster and clears their squad
// reference. Returns ErrNotMember if no roster row existed.
func (r *SquadRepository) RemoveMember(ctx context.Context, squadID, userID uuid.UUID) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	res, err := tx.Exec(ctx, `DELETE FROM squad_members WHERE squad_id = $1 AND user_id = $2`, squadID, userID)
	if err != nil {
		return fmt.Errorf("failed to remove member: %w", err)
	}
	if res.RowsAffected() == 0 {
		return ErrNotMember
	}

	if _, err := tx.Exec(ctx, `UPDATE users SET squad_id = NULL WHERE id = $1 AND squad_id = $2`, userID, squadID); err != nil {
		return fmt.Errorf("failed to clear user squad reference: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit member removal: %w", err)
	}
	return nil
}

// Deactivate flips an approved squad to inactive and clears the squad
// reference on every member. The roster rows stay as history.
func (r *SquadRepository) Deactivate(ctx context.Context, id uuid.UUID) (*model.Squad, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	const update = `
		UPDATE squads
		SET status = 'inactive'
		WHERE id = $1 AND status = 'approved'
		RETURNING ` + squadColumns

	s, err := scanSquad(tx.QueryRow(ctx, update, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, r.statusError(ctx, id, ErrSquadNotApproved)
		}
		return nil, fmt.Errorf("failed to deactivate squad: %w", err)
	}

	if _, err := tx.Exec(ctx, `UPDATE users SET squad_id = NULL WHERE squad_id = $1`, id); err != nil {
		return nil, fmt.Errorf("failed to clear member references: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit squad deactivation: %w", err)
	}

	if err := r.attachMemberIDs(ctx, []*model.Squad{s}); err != nil {
		return nil, err
	}
	return s, nil
}

// Delete permanently removes a squad from any status, clearing the squad
// reference on all current members first. Roster rows go with the squad.
func (r *SquadRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `UPDATE users SET squad_id = NULL WHERE squad_id = $1`, id); err != nil {
		return fmt.Errorf("failed to clear member references: %w", err)
	}

	res, err := tx.Exec(ctx, `DELETE FROM squads WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete squad: %w", err)
	}
	if res.RowsAffected() == 0 {
		return ErrSquadNotFound
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit squad deletion: %w", err)
	}
	return nil
}

// Stats aggregates the global squad counters for the admin dashboard.
func (r *SquadRepository) Stats(ctx context.Context) (*model.SquadStats, error) {
	const query = `
		SELECT
			COUNT(*) FILTER (WHERE status = 'pending'),
			COUNT(*) FILTER (WHERE status = 'approved'),
			COUNT(*) FILTER (WHERE status = 'rejected'),
			COUNT(*) FILTER (WHERE status = 'inactive'),
			COALESCE(SUM(wins), 0),
			COALESCE(SUM(losses), 0),
			(SELECT COUNT(*) FROM squad_members)
		FROM squads
	`

	var stats model.SquadStats
	err := r.pool.QueryRow(ctx, query).Scan(
		&stats.Pending,
		&stats.Approved,
		&stats.Rejected,
		&stats.Inactive,
		&stats.TotalWins,
		&stats.TotalLosses,
		&stats.TotalMembers,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate squad stats: %w", err)
	}
	return &stats, nil
}
