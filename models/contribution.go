package models

import "time"

// ContributionKind distinguishes how a contribution entered the system.
type ContributionKind string

const (
	KindDonation      ContributionKind = "donation"
	KindVolunteer     ContributionKind = "volunteer"
	KindReferralBonus ContributionKind = "referral_bonus"
)

// Contribution is an atomic act of support: a donation, a volunteer shift,
// or a referral bonus credit. ImpactPoints are computed once when the record
// is created and never recomputed, even if the amount is edited later.
type Contribution struct {
	ID           string           `gorm:"primaryKey;type:uuid" json:"id"`
	UserID       string           `gorm:"index" json:"user_id"`
	Kind         ContributionKind `gorm:"type:varchar(16);not null;default:'donation'" json:"kind"`
	Path         Path             `gorm:"type:varchar(16);index" json:"path,omitempty"` // empty for referral bonuses
	Amount       float64          `gorm:"not null;default:0" json:"amount"`
	Hours        float64          `gorm:"not null;default:0" json:"hours"`
	ImpactPoints int64            `gorm:"not null;default:0" json:"impact_points"`
	CreatedAt    time.Time        `gorm:"autoCreateTime;index" json:"created_at"`
}

// IsReal reports whether the contribution counts toward progression: a paid
// donation, or volunteer hours on the Service path. Referral bonuses carry
// points but are not real contributions.
func (c Contribution) IsReal() bool {
	return c.Amount > 0 || (c.Path == PathService && c.Hours > 0)
}
