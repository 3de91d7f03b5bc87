package service

import (
	"sort"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"

	"guild-backend/internal/model"
)

func TestBuildRows(t *testing.T) {
	users := []*model.User{
		{ID: uuid.New(), Username: "alpha", WeeklyScore: 30, Kills: 12, Wins: 2},
		{ID: uuid.New(), Username: "bravo", WeeklyScore: 20, Kills: 8, Wins: 1},
		{ID: uuid.New(), Username: "charlie", WeeklyScore: 0},
	}

	rows := BuildRows(users, "2026-W35")
	assert.Len(t, rows, 3)
	for i, row := range rows {
		assert.Equal(t, i+1, row.Rank)
		assert.Equal(t, "2026-W35", row.Week)
		assert.Equal(t, users[i].ID, row.Player.ID)
		assert.Equal(t, users[i].WeeklyScore, row.Score)
	}
}

func TestBuildRowsEmpty(t *testing.T) {
	rows := BuildRows(nil, "2026-W35")
	assert.Empty(t, rows)
}

func TestBuildRowsRankProperties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		numUsers := rapid.IntRange(0, 50).Draw(t, "numUsers")
		users := make([]*model.User, numUsers)
		for i := range users {
			users[i] = &model.User{
				ID:          uuid.New(),
				Username:    rapid.StringMatching(`[a-z]{3,10}`).Draw(t, "username"),
				WeeklyScore: rapid.IntRange(0, 100000).Draw(t, "score"),
			}
		}
		// Input arrives already ordered, the way the user listing returns it.
		sort.SliceStable(users, func(i, j int) bool {
			if users[i].WeeklyScore != users[j].WeeklyScore {
				return users[i].WeeklyScore > users[j].WeeklyScore
			}
			return users[i].Username < users[j].Username
		})

		rows := BuildRows(users, "2026-W01")

		if len(rows) != numUsers {
			t.Fatalf("got %d rows, want %d", len(rows), numUsers)
		}
		for i, row := range rows {
			if row.Rank != i+1 {
				t.Fatalf("row %d has rank %d", i, row.Rank)
			}
			if i > 0 && rows[i-1].Score < row.Score {
				t.Fatalf("scores not non-increasing at row %d", i)
			}
		}
	})
}
