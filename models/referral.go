package models

// Referral links a referred signup back to its referrer. HasDonated flips
// when the referred supporter makes their first donation; that is also the
// moment the referrer earns the bonus credit.
type Referral struct {
	ID         string `gorm:"primaryKey;type:uuid" json:"id"`
	ReferrerID string `gorm:"index" json:"referrer_id"` // empty until the code resolves to a supporter
	ReferredID string `gorm:"index;not null" json:"referred_id"`
	Code       string `gorm:"not null" json:"code"`
	HasDonated bool   `gorm:"default:false" json:"has_donated"`

	Timestamps
}
