package service

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"

	"guild-backend/internal/model"
)

func TestSummarizeSquad(t *testing.T) {
	leaderID := uuid.New()
	view := &model.SquadView{
		Squad: model.Squad{
			ID:         uuid.New(),
			LeaderID:   leaderID,
			MaxMembers: 4,
		},
		Members: []*model.User{
			{ID: leaderID, Kills: 10, Wins: 3},
			{ID: uuid.New(), Kills: 5, Wins: 0},
			{ID: uuid.New(), Kills: 0, Wins: 1},
		},
	}

	s := SummarizeSquad(view)
	assert.Equal(t, 15, s.TotalKills)
	assert.Equal(t, 4, s.TotalWins)
	assert.Equal(t, 5.0, s.AvgKills)
	assert.InDelta(t, 1.33, s.AvgWins, 0.001)
	assert.Equal(t, 75.0, s.FillPercentage)
}

func TestSummarizeSquadEmptyRoster(t *testing.T) {
	view := &model.SquadView{Squad: model.Squad{MaxMembers: 4}}

	s := SummarizeSquad(view)
	assert.Zero(t, s.TotalKills)
	assert.Zero(t, s.AvgKills)
	assert.Zero(t, s.FillPercentage)
}

func TestSummarizeSquadProperties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		maxMembers := rapid.IntRange(MinSquadMembers, MaxSquadMembers).Draw(t, "maxMembers")
		numMembers := rapid.IntRange(0, maxMembers).Draw(t, "numMembers")

		view := &model.SquadView{Squad: model.Squad{MaxMembers: maxMembers}}
		totalKills := 0
		for i := 0; i < numMembers; i++ {
			kills := rapid.IntRange(0, 10000).Draw(t, "kills")
			totalKills += kills
			view.Members = append(view.Members, &model.User{ID: uuid.New(), Kills: kills})
		}

		s := SummarizeSquad(view)

		if s.TotalKills != totalKills {
			t.Fatalf("total kills %d, want %d", s.TotalKills, totalKills)
		}
		if s.FillPercentage < 0 || s.FillPercentage > 100 {
			t.Fatalf("fill percentage out of range: %v", s.FillPercentage)
		}
		if numMembers > 0 {
			avg := float64(totalKills) / float64(numMembers)
			if s.AvgKills < avg-0.005 || s.AvgKills > avg+0.005 {
				t.Fatalf("avg kills %v too far from %v", s.AvgKills, avg)
			}
		}
	})
}

func TestClassifyMembers(t *testing.T) {
	leaderID := uuid.New()
	rookieID := uuid.New()
	view := &model.SquadView{
		Squad: model.Squad{LeaderID: leaderID},
		Members: []*model.User{
			{ID: leaderID, Kills: 42},
			{ID: rookieID, Kills: 0},
		},
	}

	infos := ClassifyMembers(view)
	assert.Len(t, infos, 2)
	assert.True(t, infos[0].IsLeader)
	assert.False(t, infos[0].Inactive)
	assert.False(t, infos[1].IsLeader)
	assert.True(t, infos[1].Inactive)
}
