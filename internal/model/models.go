// Package model defines the data models for the guild management backend.
package model

import (
	"time"

	"github.com/google/uuid"
)

// User roles.
const (
	RolePlayer = "player"
	RoleAdmin  = "admin"
)

// Squad lifecycle states. Rejected and inactive are terminal; only an
// approved squad may become inactive.
const (
	SquadStatusPending  = "pending"
	SquadStatusApproved = "approved"
	SquadStatusRejected = "rejected"
	SquadStatusInactive = "inactive"
)

// Screenshot moderation states. Both transitions out of pending are terminal.
const (
	ScreenshotStatusPending  = "pending"
	ScreenshotStatusApproved = "approved"
	ScreenshotStatusRejected = "rejected"
)

// User represents a registered guild member.
type User struct {
	ID           uuid.UUID  `db:"id" json:"id"`
	Username     string     `db:"username" json:"username"`
	Email        string     `db:"email" json:"email"`
	PasswordHash string     `db:"password_hash" json:"-"`
	Role         string     `db:"role" json:"role"`
	GameID       string     `db:"game_id" json:"gameId"`
	ProfileImage *string    `db:"profile_image" json:"profileImage,omitempty"`
	Kills        int        `db:"kills" json:"kills"`
	Deaths       int        `db:"deaths" json:"deaths"`
	Wins         int        `db:"wins" json:"wins"`
	Matches      int        `db:"matches" json:"matches"`
	WeeklyScore  int        `db:"weekly_score" json:"weeklyScore"`
	WeeklyRank   int        `db:"weekly_rank" json:"weeklyRank"`
	SquadID      *uuid.UUID `db:"squad_id" json:"squadId,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"createdAt"`
}

// UserWithSquad is a user with their squad reference resolved to the squad
// record itself.
type UserWithSquad struct {
	*User
	Squad *Squad `json:"squad,omitempty"`
}

// Squad represents a player-formed team subject to admin approval.
// MemberIDs holds the current roster; the leader is always part of it.
type Squad struct {
	ID           uuid.UUID   `db:"id" json:"id"`
	Name         string      `db:"name" json:"name"`
	Description  string      `db:"description" json:"description"`
	LeaderID     uuid.UUID   `db:"leader_id" json:"leaderId"`
	MemberIDs    []uuid.UUID `db:"-" json:"memberIds"`
	MaxMembers   int         `db:"max_members" json:"maxMembers"`
	Status       string      `db:"status" json:"status"`
	ApprovedBy   *uuid.UUID  `db:"approved_by" json:"approvedBy,omitempty"`
	AdminComment string      `db:"admin_comment" json:"adminComment"`
	CreatedAt    time.Time   `db:"created_at" json:"createdAt"`
	ApprovedAt   *time.Time  `db:"approved_at" json:"approvedAt,omitempty"`
	Wins         int         `db:"wins" json:"wins"`
	Losses       int         `db:"losses" json:"losses"`
}

// SquadView is a squad with its leader and roster resolved to user records.
type SquadView struct {
	Squad
	Leader  *User   `json:"leader"`
	Members []*User `json:"members"`
}

// SquadSummary decorates a squad with the derived analytics shown in the
// admin squad list.
type SquadSummary struct {
	SquadView
	TotalKills     int     `json:"totalKills"`
	TotalWins      int     `json:"totalWins"`
	AvgKills       float64 `json:"avgKills"`
	AvgWins        float64 `json:"avgWins"`
	FillPercentage float64 `json:"fillPercentage"`
}

// SquadMemberInfo is one roster entry in the admin analytics view.
// Inactive is a lifetime-kills heuristic, not a time-based one.
type SquadMemberInfo struct {
	User     *User `json:"user"`
	IsLeader bool  `json:"isLeader"`
	Inactive bool  `json:"inactive"`
}

// SquadStats holds the global admin counters across all squads.
type SquadStats struct {
	Pending      int `json:"pending"`
	Approved     int `json:"approved"`
	Rejected     int `json:"rejected"`
	Inactive     int `json:"inactive"`
	TotalMembers int `json:"totalMembers"`
	TotalWins    int `json:"totalWins"`
	TotalLosses  int `json:"totalLosses"`
}

// Screenshot represents a player-submitted proof-of-performance record.
type Screenshot struct {
	ID           uuid.UUID  `db:"id" json:"id"`
	PlayerID     uuid.UUID  `db:"player_id" json:"playerId"`
	Player       *User      `db:"-" json:"player,omitempty"`
	ImageURL     string     `db:"image_url" json:"imageUrl"`
	Description  string     `db:"description" json:"description"`
	Kills        int        `db:"kills" json:"kills"`
	Headshots    int        `db:"headshots" json:"headshots"`
	DamageDealt  int        `db:"damage_dealt" json:"damageDealt"`
	Survival     string     `db:"survival" json:"survival"`
	Status       string     `db:"status" json:"status"`
	AdminComment string     `db:"admin_comment" json:"adminComment"`
	ApprovedBy   *uuid.UUID `db:"approved_by" json:"approvedBy,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"createdAt"`
	ApprovedAt   *time.Time `db:"approved_at" json:"approvedAt,omitempty"`
}

// LeaderboardEntry is a write-once archival snapshot of one player's weekly
// performance, created in bulk by the weekly reset.
type LeaderboardEntry struct {
	ID        int64     `db:"id" json:"id"`
	Week      string    `db:"week" json:"week"`
	PlayerID  uuid.UUID `db:"player_id" json:"playerId"`
	Score     int       `db:"score" json:"score"`
	Kills     int       `db:"kills" json:"kills"`
	Wins      int       `db:"wins" json:"wins"`
	Matches   int       `db:"matches" json:"matches"`
	Rank      int       `db:"rank" json:"rank"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// LeaderboardRow is one entry of the live weekly leaderboard, derived on
// every read rather than persisted.
type LeaderboardRow struct {
	Week    string `json:"week"`
	Player  *User  `json:"player"`
	Score   int    `json:"score"`
	Kills   int    `json:"kills"`
	Deaths  int    `json:"deaths"`
	Wins    int    `json:"wins"`
	Matches int    `json:"matches"`
	Rank    int    `json:"rank"`
}

// Settings is the single mutable site-branding record.
type Settings struct {
	WebsiteName string    `db:"website_name" json:"websiteName"`
	WebsiteLogo string    `db:"website_logo" json:"websiteLogo"`
	Description string    `db:"description" json:"description"`
	UpdatedAt   time.Time `db:"updated_at" json:"updatedAt"`
}
