package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"guild-backend/internal/apperr"
	"guild-backend/internal/model"
	"guild-backend/internal/pkg/week"
	"guild-backend/internal/repository"
)

// ResetTopPlayers is how many leading players the weekly reset reports.
const ResetTopPlayers = 5

// LeaderboardService derives the live weekly standings from user scores
// and owns the weekly archive-and-reset cycle.
type LeaderboardService struct {
	leaderboardRepo *repository.LeaderboardRepository
	userRepo        *repository.UserRepository
	now             func() time.Time
}

// NewLeaderboardService creates a new LeaderboardService instance.
func NewLeaderboardService(
	leaderboardRepo *repository.LeaderboardRepository,
	userRepo *repository.UserRepository,
) *LeaderboardService {
	return &LeaderboardService{
		leaderboardRepo: leaderboardRepo,
		userRepo:        userRepo,
		now:             time.Now,
	}
}

// BuildRows ranks users into leaderboard rows for the given week label.
// Users must already be sorted by score; ranks are assigned 1-based in
// input order.
func BuildRows(users []*model.User, weekLabel string) []*model.LeaderboardRow {
	rows := make([]*model.LeaderboardRow, 0, len(users))
	for i, u := range users {
		rows = append(rows, &model.LeaderboardRow{
			Week:    weekLabel,
			Player:  u,
			Score:   u.WeeklyScore,
			Kills:   u.Kills,
			Deaths:  u.Deaths,
			Wins:    u.Wins,
			Matches: u.Matches,
			Rank:    i + 1,
		})
	}
	return rows
}

// Weekly derives the current week's standings from the live user scores.
func (s *LeaderboardService) Weekly(ctx context.Context) ([]*model.LeaderboardRow, error) {
	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return BuildRows(users, week.Label(s.now())), nil
}

// UserRank reports one player's standing for the current week. An archived
// entry for the week wins; otherwise the rank is derived from the live
// scores.
func (s *LeaderboardService) UserRank(ctx context.Context, playerID uuid.UUID) (*model.LeaderboardRow, error) {
	user, err := s.userRepo.GetByID(ctx, playerID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, apperr.New(apperr.KindNotFound, "user not found")
		}
		return nil, apperr.Internal(err)
	}

	label := week.Label(s.now())
	row := &model.LeaderboardRow{
		Week:    label,
		Player:  user,
		Score:   user.WeeklyScore,
		Kills:   user.Kills,
		Deaths:  user.Deaths,
		Wins:    user.Wins,
		Matches: user.Matches,
	}

	entry, err := s.leaderboardRepo.GetEntry(ctx, label, playerID)
	switch {
	case err == nil:
		row.Score = entry.Score
		row.Rank = entry.Rank
		return row, nil
	case errors.Is(err, repository.ErrEntryNotFound):
		ahead, err := s.userRepo.CountWithScoreAbove(ctx, user.WeeklyScore)
		if err != nil {
			return nil, apperr.Internal(err)
		}
		row.Rank = ahead + 1
		return row, nil
	}
	return nil, apperr.Internal(err)
}

// History lists the archived entries for a past week label.
func (s *LeaderboardService) History(ctx context.Context, weekLabel string, limit int) ([]*model.LeaderboardEntry, error) {
	entries, err := s.leaderboardRepo.ListWeek(ctx, weekLabel, limit)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return entries, nil
}

// ResetResult summarizes one weekly archive-and-reset run.
type ResetResult struct {
	PreviousWeek string                  `json:"previousWeek"`
	PlayersReset int                     `json:"playersReset"`
	TopPlayers   []*model.LeaderboardRow `json:"topPlayers"`
}

// Reset archives the finished week's standings and zeroes every weekly
// score in one transaction, reporting the top finishers.
func (s *LeaderboardService) Reset(ctx context.Context) (*ResetResult, error) {
	previous := week.Previous(s.now())

	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	rows := BuildRows(users, previous)
	if len(rows) > ResetTopPlayers {
		rows = rows[:ResetTopPlayers]
	}

	archived, err := s.leaderboardRepo.ArchiveAndReset(ctx, previous)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	log.Info().
		Str("week", previous).
		Int("players_reset", archived).
		Msg("Weekly leaderboard archived and scores reset")

	return &ResetResult{
		PreviousWeek: previous,
		PlayersReset: archived,
		TopPlayers:   rows,
	}, nil
}
