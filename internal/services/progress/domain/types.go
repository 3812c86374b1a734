// Package domain holds progression types, ports and sentinels
package domain

import (
	"time"

	"devquest/internal/core/activity"
	"devquest/internal/core/level"
)

// UserState is the persisted progression document of one user
// Level, CurrentLevelXP and XPToNextLevel are always derived from XP
type UserState struct {
	UserID         string    `json:"user_id"`
	Login          string    `json:"login,omitempty"`
	XP             int64     `json:"xp"`
	Level          int       `json:"level"`
	CurrentLevelXP int64     `json:"current_level_xp"`
	XPToNextLevel  int64     `json:"xp_to_next_level"`
	Version        int64     `json:"version"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Derive stamps the level fields from p onto s
func (s UserState) Derive(p level.Progress) UserState {
	s.XP = p.XP
	s.Level = p.Level
	s.CurrentLevelXP = p.CurrentLevelXP
	s.XPToNextLevel = p.XPToNextLevel
	return s
}

// HistoryEntry is one append only ledger row
type HistoryEntry struct {
	ID             int64                      `json:"id,string"`
	UserID         string                     `json:"user_id"`
	ActivityID     string                     `json:"activity_id"`
	EventID        string                     `json:"event_id"`
	ActivityType   activity.Type              `json:"activity_type"`
	XPChange       int64                      `json:"xp_change"`
	NewXP          int64                      `json:"new_xp"`
	NewLevel       int                        `json:"new_level"`
	CurrentLevelXP int64                      `json:"current_level_xp"`
	Breakdown      []activity.XPBreakdownItem `json:"breakdown"`
	CreatedAt      time.Time                  `json:"created_at"`
}

// Achievement is an unlocked badge
type Achievement struct {
	Code       string    `json:"code"`
	Title      string    `json:"title"`
	ActivityID string    `json:"activity_id,omitempty"`
	UnlockedAt time.Time `json:"unlocked_at"`
}

// Outcome reports what one Process call committed
// a duplicate commits nothing and leaves every other field zero
type Outcome struct {
	Duplicate bool              `json:"duplicate"`
	Activity  activity.Activity `json:"activity"`
	Before    UserState         `json:"before"`
	After     UserState         `json:"after"`
	Entry     *HistoryEntry     `json:"entry,omitempty"`
	Counter   string            `json:"counter,omitempty"`
	Count     int64             `json:"count,omitempty"`
	Unlocked  []Achievement     `json:"unlocked,omitempty"`
	Attempts  int               `json:"attempts"`
}

// LevelUp reports whether the commit raised the user level
func (o Outcome) LevelUp() bool { return !o.Duplicate && o.After.Level > o.Before.Level }

// Ledger is a replay check over a user's full history
type Ledger struct {
	Entries   int   `json:"entries"`
	SumChange int64 `json:"sum_change"`
	StateXP   int64 `json:"state_xp"`
	// Conserved is true when the entries sum to the stored xp
	Conserved bool `json:"conserved"`
	// Replayable is true when every entry's new_xp follows from the one before
	Replayable bool `json:"replayable"`
	// BrokenAt is the id of the first entry that fails replay, 0 when none
	BrokenAt int64 `json:"broken_at,omitempty,string"`
}
