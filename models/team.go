package models

import "time"

// Team is a named group of supporters with exactly one leader. The leader is
// always a member. Team totals are derived from member supporters on read,
// never stored on the team row.
type Team struct {
	ID          string       `gorm:"primaryKey;type:uuid" json:"id"`
	Name        string       `gorm:"not null" json:"name"`
	Slug        string       `gorm:"uniqueIndex" json:"slug"`
	Description string       `json:"description"`
	LeaderID    string       `gorm:"index;not null" json:"leader_id"`
	Members     []TeamMember `gorm:"foreignKey:TeamID" json:"members,omitempty"`

	Timestamps
}

// TeamMember is one membership row, ordered by join time. The unique index
// on UserID is the system-wide exclusive-membership invariant: a supporter
// can hold at most one membership row, whatever the team.
type TeamMember struct {
	ID       string    `gorm:"primaryKey;type:uuid" json:"id"`
	TeamID   string    `gorm:"index;not null" json:"team_id"`
	UserID   string    `gorm:"uniqueIndex;not null" json:"user_id"`
	JoinedAt time.Time `gorm:"autoCreateTime" json:"joined_at"`
}
