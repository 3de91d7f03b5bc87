package service

import (
	"math"

	"guild-backend/internal/model"
)

// SummarizeSquad derives the admin-list analytics for one squad from its
// resolved roster. Averages are rounded to two decimals, fill percentage
// to one.
func SummarizeSquad(view *model.SquadView) *model.SquadSummary {
	summary := &model.SquadSummary{SquadView: *view}
	for _, m := range view.Members {
		summary.TotalKills += m.Kills
		summary.TotalWins += m.Wins
	}
	if n := len(view.Members); n > 0 {
		summary.AvgKills = round2(float64(summary.TotalKills) / float64(n))
		summary.AvgWins = round2(float64(summary.TotalWins) / float64(n))
	}
	if view.MaxMembers > 0 {
		summary.FillPercentage = round1(float64(len(view.Members)) / float64(view.MaxMembers) * 100)
	}
	return summary
}

// ClassifyMembers flags each roster entry with leadership and activity.
// A member with zero lifetime kills counts as inactive.
func ClassifyMembers(view *model.SquadView) []*model.SquadMemberInfo {
	infos := make([]*model.SquadMemberInfo, 0, len(view.Members))
	for _, m := range view.Members {
		infos = append(infos, &model.SquadMemberInfo{
			User:     m,
			IsLeader: m.ID == view.LeaderID,
			Inactive: m.Kills == 0,
		})
	}
	return infos
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
