package models

// Supporter is a participant: a donor, a volunteer, or both.
//
// TotalPoints is a write-through cache of the sum of ImpactPoints across the
// supporter's contributions. The store is the only writer; it must keep the
// cached value equal to the live sum at all times.
type Supporter struct {
	ID                string  `gorm:"primaryKey;type:uuid" json:"id"`
	Email             string  `gorm:"uniqueIndex;not null" json:"email"`
	FullName          string  `json:"full_name"`
	IsAnonymous       bool    `gorm:"default:false" json:"is_anonymous"`
	PreferredLanguage string  `gorm:"type:varchar(8);default:'en'" json:"preferred_language"`
	PrimaryPath       Path    `gorm:"type:varchar(16)" json:"primary_path,omitempty"`
	TotalPoints       int64   `gorm:"default:0" json:"total_points"`
	TeamID            *string `gorm:"index" json:"team_id,omitempty"`
	ReferralCode      string  `gorm:"uniqueIndex" json:"referral_code"`

	Timestamps
}

// DisplayName is what leaderboards and public pages show. Anonymous
// supporters are always redacted regardless of the stored name.
func (s Supporter) DisplayName() string {
	if s.IsAnonymous || s.FullName == "" {
		return "Anonymous"
	}
	return s.FullName
}

// ReferralCodePrefix starts every shareable referral code.
const ReferralCodePrefix = "REF-"

// ReferralCodeFor builds the shareable code that attributes a signup back to
// a supporter.
func ReferralCodeFor(userID string) string {
	return ReferralCodePrefix + userID
}
