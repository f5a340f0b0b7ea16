package models

import (
	"time"

	"golang.org/x/text/language"
)

// LocalizedText carries the bilingual copy shown to donors.
type LocalizedText struct {
	EN string `json:"en"`
	FR string `json:"fr"`
}

var badgeLangMatcher = language.NewMatcher([]language.Tag{
	language.English, // fallback
	language.French,
})

// In resolves the copy for a BCP 47 tag. Anything that doesn't match French
// falls back to English.
func (t LocalizedText) In(tag language.Tag) string {
	_, idx, _ := badgeLangMatcher.Match(tag)
	if idx == 1 {
		return t.FR
	}
	return t.EN
}

// RuleKind tags the condition variant a badge uses. Each kind carries its own
// typed parameters on BadgeRule and is evaluated by a single dispatcher in
// the services package, so adding a kind without handling it is a visible
// evaluation failure instead of a silent miss.
type RuleKind string

const (
	RuleFirstContribution RuleKind = "first_contribution"
	RulePathSupporter     RuleKind = "path_supporter"
	RuleAllPaths          RuleKind = "all_paths"
	RuleMinTotalPoints    RuleKind = "min_total_points"
	RuleMinReferrals      RuleKind = "min_referrals"
	RuleMinServiceHours   RuleKind = "min_service_hours"
	RuleHasTeam           RuleKind = "has_team"
	RuleTeamLeader        RuleKind = "team_leader"
)

// BadgeRule is the typed condition for one badge. Only the fields the Kind
// needs are set.
type BadgeRule struct {
	Kind       RuleKind `json:"kind"`
	Path       Path     `json:"path,omitempty"`        // path_supporter
	Min        int64    `json:"min,omitempty"`         // path_supporter, min_total_points, min_referrals
	MinHours   float64  `json:"min_hours,omitempty"`   // min_service_hours
	MinMembers int      `json:"min_members,omitempty"` // team_leader
}

// BadgeType is a static catalog entry. Conditions are monotonic in the
// supporter's history: once earned, a badge stays earned, and the engine
// never re-evaluates owned badges.
type BadgeType struct {
	ID          string        `json:"id"`
	Name        LocalizedText `json:"name"`
	Description LocalizedText `json:"description"`
	Icon        string        `json:"icon"`               // inline emoji
	IconURL     string        `json:"icon_url,omitempty"` // CDN asset, optional
	Rule        BadgeRule     `json:"rule"`
}

// BadgeAward is one earned badge. The composite unique index is what makes
// awarding idempotent: concurrent evaluations race to a single row.
type BadgeAward struct {
	ID        string    `gorm:"primaryKey;type:uuid" json:"id"`
	UserID    string    `gorm:"uniqueIndex:idx_badge_awards_user_badge;not null" json:"user_id"`
	BadgeID   string    `gorm:"uniqueIndex:idx_badge_awards_user_badge;not null" json:"badge_id"`
	AwardedAt time.Time `gorm:"autoCreateTime" json:"awarded_at"`
}

// Badge ids, stable across storage and clients.
const (
	BadgeFirstDonation       = "first_donation"
	BadgeWisdomSupporter     = "wisdom_supporter"
	BadgeCourageSupporter    = "courage_supporter"
	BadgeProtectionSupporter = "protection_supporter"
	BadgeServiceSupporter    = "service_supporter"
	BadgeAllPaths            = "all_paths"
	BadgeHundredClub         = "hundred_club"
	BadgeFiveHundredClub     = "five_hundred_club"
	BadgeCommunityLeader     = "community_leader"
	BadgeServiceVolunteer    = "service_volunteer"
	BadgeTeamPlayer          = "team_player"
	BadgeTeamLeader          = "team_leader"
)

// BadgeCatalog is the fixed badge set.
var BadgeCatalog = []BadgeType{
	{
		ID:          BadgeFirstDonation,
		Name:        LocalizedText{EN: "First Step", FR: "Premier Pas"},
		Description: LocalizedText{EN: "Made your first donation", FR: "Fait votre premier don"},
		Icon:        "🌟",
		Rule:        BadgeRule{Kind: RuleFirstContribution},
	},
	{
		ID:          BadgeWisdomSupporter,
		Name:        LocalizedText{EN: "Wisdom Keeper", FR: "Gardien de la Sagesse"},
		Description: LocalizedText{EN: "Donated to Wisdom path 5 times", FR: "Donné au parcours Sagesse 5 fois"},
		Icon:        "📞",
		Rule:        BadgeRule{Kind: RulePathSupporter, Path: PathWisdom, Min: 5},
	},
	{
		ID:          BadgeCourageSupporter,
		Name:        LocalizedText{EN: "Courage Champion", FR: "Champion du Courage"},
		Description: LocalizedText{EN: "Donated to Courage path 5 times", FR: "Donné au parcours Courage 5 fois"},
		Icon:        "❤️",
		Rule:        BadgeRule{Kind: RulePathSupporter, Path: PathCourage, Min: 5},
	},
	{
		ID:          BadgeProtectionSupporter,
		Name:        LocalizedText{EN: "Protection Guardian", FR: "Gardien de la Protection"},
		Description: LocalizedText{EN: "Donated to Protection path 5 times", FR: "Donné au parcours Protection 5 fois"},
		Icon:        "🛡️",
		Rule:        BadgeRule{Kind: RulePathSupporter, Path: PathProtection, Min: 5},
	},
	{
		ID:          BadgeServiceSupporter,
		Name:        LocalizedText{EN: "Service Star", FR: "Étoile du Service"},
		Description: LocalizedText{EN: "Contributed to Service path 5 times", FR: "Contribué au parcours Service 5 fois"},
		Icon:        "🤝",
		Rule:        BadgeRule{Kind: RulePathSupporter, Path: PathService, Min: 5},
	},
	{
		ID:          BadgeAllPaths,
		Name:        LocalizedText{EN: "Complete Supporter", FR: "Soutien Complet"},
		Description: LocalizedText{EN: "Donated to all three paths", FR: "Donné aux trois parcours"},
		Icon:        "⭐",
		Rule:        BadgeRule{Kind: RuleAllPaths},
	},
	{
		ID:          BadgeHundredClub,
		Name:        LocalizedText{EN: "Hundred Club", FR: "Club des Cent"},
		Description: LocalizedText{EN: "Reached 100 impact points", FR: "Atteint 100 points d'impact"},
		Icon:        "💯",
		Rule:        BadgeRule{Kind: RuleMinTotalPoints, Min: 100},
	},
	{
		ID:          BadgeFiveHundredClub,
		Name:        LocalizedText{EN: "Elite Supporter", FR: "Soutien d'Élite"},
		Description: LocalizedText{EN: "Reached 500 impact points", FR: "Atteint 500 points d'impact"},
		Icon:        "🏆",
		Rule:        BadgeRule{Kind: RuleMinTotalPoints, Min: 500},
	},
	{
		ID:          BadgeCommunityLeader,
		Name:        LocalizedText{EN: "Community Leader", FR: "Leader Communautaire"},
		Description: LocalizedText{EN: "Referred 5 friends", FR: "Parrainé 5 amis"},
		Icon:        "👥",
		Rule:        BadgeRule{Kind: RuleMinReferrals, Min: 5},
	},
	{
		ID:          BadgeServiceVolunteer,
		Name:        LocalizedText{EN: "Helping Hands", FR: "Mains Secourables"},
		Description: LocalizedText{EN: "Volunteered 10 hours", FR: "Fait 10 heures de bénévolat"},
		Icon:        "⏰",
		Rule:        BadgeRule{Kind: RuleMinServiceHours, MinHours: 10},
	},
	{
		ID:          BadgeTeamPlayer,
		Name:        LocalizedText{EN: "Team Player", FR: "Esprit d'Équipe"},
		Description: LocalizedText{EN: "Joined a team", FR: "Rejoint une équipe"},
		Icon:        "🫂",
		Rule:        BadgeRule{Kind: RuleHasTeam},
	},
	{
		ID:          BadgeTeamLeader,
		Name:        LocalizedText{EN: "Team Leader", FR: "Chef d'Équipe"},
		Description: LocalizedText{EN: "Leads a team of 5 or more", FR: "Dirige une équipe de 5 ou plus"},
		Icon:        "👑",
		Rule:        BadgeRule{Kind: RuleTeamLeader, MinMembers: 5},
	},
}

// BadgeByID looks up a catalog entry.
func BadgeByID(id string) (BadgeType, bool) {
	for _, b := range BadgeCatalog {
		if b.ID == id {
			return b, true
		}
	}
	return BadgeType{}, false
}
