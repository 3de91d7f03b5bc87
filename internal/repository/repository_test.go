// Package repository tests use testcontainers-go to spin up a PostgreSQL
// container and exercise the real queries against the real schema.
package repository

import (
	"context"
	"fmt"
	"os/exec"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"guild-backend/internal/model"
)

// checkDockerAvailable checks if Docker is available and running
func checkDockerAvailable() bool {
	cmd := exec.Command("docker", "info")
	err := cmd.Run()
	return err == nil
}

// setupTestDB creates a PostgreSQL container, applies the migrations and
// returns a connection pool. Skips the test if Docker is not available.
func setupTestDB(t *testing.T) (*pgxpool.Pool, func()) {
	if !checkDockerAvailable() {
		t.Skip("Docker is not available, skipping integration test")
	}

	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err)

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)

	err = Migrate(ctx, pool)
	require.NoError(t, err)

	cleanup := func() {
		pool.Close()
		_ = pgContainer.Terminate(ctx)
	}

	return pool, cleanup
}

func createTestUser(t *testing.T, repo *UserRepository, name string) *model.User {
	t.Helper()
	user, err := repo.Create(context.Background(), &model.User{
		ID:           uuid.New(),
		Username:     name,
		Email:        name + "@example.com",
		PasswordHash: "$2a$04$notarealhashnotarealhashnotarea",
		Role:         model.RolePlayer,
		GameID:       "FF-" + name,
	})
	require.NoError(t, err)
	return user
}

func createTestSquad(t *testing.T, repo *SquadRepository, leader *model.User, name string, maxMembers int) *model.Squad {
	t.Helper()
	squad, err := repo.Create(context.Background(), &model.Squad{
		ID:         uuid.New(),
		Name:       name,
		LeaderID:   leader.ID,
		MaxMembers: maxMembers,
	})
	require.NoError(t, err)
	return squad
}

// ============================================================================
// UserRepository Tests
// ============================================================================

func TestUserRepository_CreateAndGet(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewUserRepository(pool)
	ctx := context.Background()

	user := createTestUser(t, repo, "shadow")
	assert.Equal(t, "shadow", user.Username)
	assert.Equal(t, model.RolePlayer, user.Role)
	assert.Zero(t, user.WeeklyScore)

	got, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	got, err = repo.GetByEmail(ctx, "shadow@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	_, err = repo.GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestUserRepository_DuplicateRejected(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewUserRepository(pool)
	ctx := context.Background()

	createTestUser(t, repo, "shadow")

	_, err := repo.Create(ctx, &model.User{
		ID:           uuid.New(),
		Username:     "shadow",
		Email:        "other@example.com",
		PasswordHash: "x",
		Role:         model.RolePlayer,
		GameID:       "FF-2",
	})
	assert.ErrorIs(t, err, ErrDuplicateUser)

	exists, err := repo.ExistsByUsernameOrEmail(ctx, "nobody", "shadow@example.com")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestUserRepository_ListOrdering(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewUserRepository(pool)
	ctx := context.Background()

	a := createTestUser(t, repo, "alpha")
	b := createTestUser(t, repo, "bravo")
	c := createTestUser(t, repo, "charlie")

	_, err := pool.Exec(ctx, `UPDATE users SET weekly_score = 20 WHERE id = $1`, b.ID)
	require.NoError(t, err)
	_, err = pool.Exec(ctx, `UPDATE users SET weekly_score = 20 WHERE id = $1`, c.ID)
	require.NoError(t, err)

	users, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, users, 3)

	// Score descending, ties broken by username ascending.
	assert.Equal(t, b.ID, users[0].ID)
	assert.Equal(t, c.ID, users[1].ID)
	assert.Equal(t, a.ID, users[2].ID)
}

// ============================================================================
// SquadRepository Tests
// ============================================================================

func TestSquadRepository_Lifecycle(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	userRepo := NewUserRepository(pool)
	squadRepo := NewSquadRepository(pool)
	ctx := context.Background()

	leader := createTestUser(t, userRepo, "leader")
	admin := createTestUser(t, userRepo, "admin")

	squad := createTestSquad(t, squadRepo, leader, "Night Raiders", 4)
	assert.Equal(t, model.SquadStatusPending, squad.Status)
	assert.Equal(t, []uuid.UUID{leader.ID}, squad.MemberIDs)

	// Leader counts as in an active squad while pending.
	active, err := squadRepo.HasActiveSquad(ctx, leader.ID)
	require.NoError(t, err)
	assert.True(t, active)

	approved, err := squadRepo.Approve(ctx, squad.ID, admin.ID, "looks good")
	require.NoError(t, err)
	assert.Equal(t, model.SquadStatusApproved, approved.Status)
	require.NotNil(t, approved.ApprovedBy)
	assert.Equal(t, admin.ID, *approved.ApprovedBy)
	assert.NotNil(t, approved.ApprovedAt)

	// Approval stamps the squad reference onto the roster.
	got, err := userRepo.GetByID(ctx, leader.ID)
	require.NoError(t, err)
	require.NotNil(t, got.SquadID)
	assert.Equal(t, squad.ID, *got.SquadID)

	// A second approval is rejected; the squad is no longer pending.
	_, err = squadRepo.Approve(ctx, squad.ID, admin.ID, "again")
	assert.ErrorIs(t, err, ErrSquadNotPending)
}

func TestSquadRepository_RejectOnlyPending(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	userRepo := NewUserRepository(pool)
	squadRepo := NewSquadRepository(pool)
	ctx := context.Background()

	leader := createTestUser(t, userRepo, "leader")
	admin := createTestUser(t, userRepo, "admin")
	squad := createTestSquad(t, squadRepo, leader, "Night Raiders", 4)

	rejected, err := squadRepo.Reject(ctx, squad.ID, admin.ID, "name policy")
	require.NoError(t, err)
	assert.Equal(t, model.SquadStatusRejected, rejected.Status)

	_, err = squadRepo.Approve(ctx, squad.ID, admin.ID, "")
	assert.ErrorIs(t, err, ErrSquadNotPending)

	_, err = squadRepo.Approve(ctx, uuid.New(), admin.ID, "")
	assert.ErrorIs(t, err, ErrSquadNotFound)
}

func TestSquadRepository_MembershipRules(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	userRepo := NewUserRepository(pool)
	squadRepo := NewSquadRepository(pool)
	ctx := context.Background()

	leader := createTestUser(t, userRepo, "leader")
	admin := createTestUser(t, userRepo, "admin")
	second := createTestUser(t, userRepo, "second")
	third := createTestUser(t, userRepo, "third")

	squad := createTestSquad(t, squadRepo, leader, "Duo Kings", 2)
	_, err := squadRepo.Approve(ctx, squad.ID, admin.ID, "")
	require.NoError(t, err)

	require.NoError(t, squadRepo.AddMember(ctx, squad.ID, second.ID))

	// Capacity is 2 and the leader occupies a slot.
	err = squadRepo.AddMember(ctx, squad.ID, third.ID)
	assert.ErrorIs(t, err, ErrSquadFull)

	err = squadRepo.AddMember(ctx, squad.ID, second.ID)
	assert.ErrorIs(t, err, ErrSquadFull)

	// A member of an approved squad cannot join another squad.
	other := createTestSquad(t, squadRepo, third, "Runner Up", 4)
	_, err = squadRepo.Approve(ctx, other.ID, admin.ID, "")
	require.NoError(t, err)
	err = squadRepo.AddMember(ctx, other.ID, second.ID)
	assert.ErrorIs(t, err, ErrInActiveSquad)

	// Removal clears the user's squad reference.
	require.NoError(t, squadRepo.RemoveMember(ctx, squad.ID, second.ID))
	got, err := userRepo.GetByID(ctx, second.ID)
	require.NoError(t, err)
	assert.Nil(t, got.SquadID)

	err = squadRepo.RemoveMember(ctx, squad.ID, second.ID)
	assert.ErrorIs(t, err, ErrNotMember)
}

func TestSquadRepository_DeactivateClearsReferences(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	userRepo := NewUserRepository(pool)
	squadRepo := NewSquadRepository(pool)
	ctx := context.Background()

	leader := createTestUser(t, userRepo, "leader")
	admin := createTestUser(t, userRepo, "admin")
	second := createTestUser(t, userRepo, "second")

	squad := createTestSquad(t, squadRepo, leader, "Night Raiders", 4)
	_, err := squadRepo.Approve(ctx, squad.ID, admin.ID, "")
	require.NoError(t, err)
	require.NoError(t, squadRepo.AddMember(ctx, squad.ID, second.ID))

	deactivated, err := squadRepo.Deactivate(ctx, squad.ID)
	require.NoError(t, err)
	assert.Equal(t, model.SquadStatusInactive, deactivated.Status)

	for _, id := range []uuid.UUID{leader.ID, second.ID} {
		u, err := userRepo.GetByID(ctx, id)
		require.NoError(t, err)
		assert.Nil(t, u.SquadID)
	}

	// Only approved squads can be deactivated.
	_, err = squadRepo.Deactivate(ctx, squad.ID)
	assert.ErrorIs(t, err, ErrSquadNotApproved)
}

func TestSquadRepository_Stats(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	userRepo := NewUserRepository(pool)
	squadRepo := NewSquadRepository(pool)
	ctx := context.Background()

	admin := createTestUser(t, userRepo, "admin")
	a := createTestUser(t, userRepo, "alpha")
	b := createTestUser(t, userRepo, "bravo")

	createTestSquad(t, squadRepo, a, "Pending Ones", 4)
	approved := createTestSquad(t, squadRepo, b, "Approved Ones", 4)
	_, err := squadRepo.Approve(ctx, approved.ID, admin.ID, "")
	require.NoError(t, err)

	stats, err := squadRepo.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Pending)
	assert.Equal(t, 1, stats.Approved)
	assert.Equal(t, 0, stats.Rejected)
	assert.Equal(t, 2, stats.TotalMembers)
}

// ============================================================================
// ScreenshotRepository Tests
// ============================================================================

func TestScreenshotRepository_ApproveCreditsOnce(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	userRepo := NewUserRepository(pool)
	shotRepo := NewScreenshotRepository(pool)
	ctx := context.Background()

	player := createTestUser(t, userRepo, "player")
	admin := createTestUser(t, userRepo, "admin")

	shot, err := shotRepo.Create(ctx, &model.Screenshot{
		ID:       uuid.New(),
		PlayerID: player.ID,
		ImageURL: "https://img.example.com/1.png",
		Kills:    9,
	})
	require.NoError(t, err)
	assert.Equal(t, model.ScreenshotStatusPending, shot.Status)

	approved, err := shotRepo.Approve(ctx, shot.ID, admin.ID, "nice one", 10)
	require.NoError(t, err)
	assert.Equal(t, model.ScreenshotStatusApproved, approved.Status)

	got, err := userRepo.GetByID(ctx, player.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, got.WeeklyScore)

	// Re-reviewing is rejected and the score stays put.
	_, err = shotRepo.Approve(ctx, shot.ID, admin.ID, "again", 10)
	assert.ErrorIs(t, err, ErrScreenshotNotPending)
	_, err = shotRepo.Reject(ctx, shot.ID, admin.ID, "changed my mind")
	assert.ErrorIs(t, err, ErrScreenshotNotPending)

	got, err = userRepo.GetByID(ctx, player.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, got.WeeklyScore)
}

func TestScreenshotRepository_RejectDoesNotCredit(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	userRepo := NewUserRepository(pool)
	shotRepo := NewScreenshotRepository(pool)
	ctx := context.Background()

	player := createTestUser(t, userRepo, "player")
	admin := createTestUser(t, userRepo, "admin")

	shot, err := shotRepo.Create(ctx, &model.Screenshot{
		ID:       uuid.New(),
		PlayerID: player.ID,
		ImageURL: "https://img.example.com/2.png",
	})
	require.NoError(t, err)

	rejected, err := shotRepo.Reject(ctx, shot.ID, admin.ID, "blurry")
	require.NoError(t, err)
	assert.Equal(t, model.ScreenshotStatusRejected, rejected.Status)

	got, err := userRepo.GetByID(ctx, player.ID)
	require.NoError(t, err)
	assert.Zero(t, got.WeeklyScore)

	pending, err := shotRepo.ListPending(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

// ============================================================================
// LeaderboardRepository Tests
// ============================================================================

func TestLeaderboardRepository_ArchiveAndReset(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	userRepo := NewUserRepository(pool)
	lbRepo := NewLeaderboardRepository(pool)
	ctx := context.Background()

	a := createTestUser(t, userRepo, "alpha")
	b := createTestUser(t, userRepo, "bravo")
	createTestUser(t, userRepo, "charlie")

	_, err := pool.Exec(ctx, `UPDATE users SET weekly_score = 30, kills = 12 WHERE id = $1`, a.ID)
	require.NoError(t, err)
	_, err = pool.Exec(ctx, `UPDATE users SET weekly_score = 10 WHERE id = $1`, b.ID)
	require.NoError(t, err)

	archived, err := lbRepo.ArchiveAndReset(ctx, "2026-W34")
	require.NoError(t, err)
	assert.Equal(t, 3, archived)

	entries, err := lbRepo.ListWeek(ctx, "2026-W34", 0)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, a.ID, entries[0].PlayerID)
	assert.Equal(t, 30, entries[0].Score)
	assert.Equal(t, 1, entries[0].Rank)
	assert.Equal(t, b.ID, entries[1].PlayerID)
	assert.Equal(t, 2, entries[1].Rank)

	// Scores are zeroed in the same transaction.
	users, err := userRepo.List(ctx)
	require.NoError(t, err)
	for _, u := range users {
		assert.Zero(t, u.WeeklyScore, fmt.Sprintf("user %s", u.Username))
	}

	entry, err := lbRepo.GetEntry(ctx, "2026-W34", a.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, entry.Rank)

	_, err = lbRepo.GetEntry(ctx, "2026-W33", a.ID)
	assert.ErrorIs(t, err, ErrEntryNotFound)
}

// ============================================================================
// SettingsRepository Tests
// ============================================================================

func TestSettingsRepository_Singleton(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewSettingsRepository(pool)
	ctx := context.Background()

	defaults := model.Settings{
		WebsiteName: "Guild",
		WebsiteLogo: "G",
		Description: "desc",
	}

	settings, err := repo.GetOrCreate(ctx, defaults)
	require.NoError(t, err)
	assert.Equal(t, "Guild", settings.WebsiteName)

	// Second read returns the same row, not a new one.
	again, err := repo.GetOrCreate(ctx, model.Settings{WebsiteName: "Other"})
	require.NoError(t, err)
	assert.Equal(t, "Guild", again.WebsiteName)

	name := "New Name"
	updated, err := repo.Update(ctx, &name, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "New Name", updated.WebsiteName)
	assert.Equal(t, "G", updated.WebsiteLogo)
	assert.Equal(t, "desc", updated.Description)
}
