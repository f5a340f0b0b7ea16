package store

import (
	"context"

	"donor-engage-system/models"
)

// Repository is the persistence boundary for the progression engine. The
// engine itself is pure computation over snapshots; everything stateful goes
// through this interface so the same logic runs against Postgres in
// production and Memory in tests.
//
// Implementations own three invariants:
//   - TotalPoints on a supporter always equals the live sum of their
//     contribution points (AddPoints is the only mutation path besides
//     SetTotalPoints reconciliation).
//   - AddMember enforces exclusive membership: a supporter holds at most one
//     membership system-wide, checked atomically at join time.
//   - AwardBadge is a conditional insert keyed (userID, badgeID); concurrent
//     evaluations cannot double-award.
type Repository interface {
	// Supporters
	CreateSupporter(ctx context.Context, s *models.Supporter) error
	GetSupporter(ctx context.Context, id string) (*models.Supporter, error)
	GetSupporterByReferralCode(ctx context.Context, code string) (*models.Supporter, error)
	ListSupporters(ctx context.Context) ([]models.Supporter, error)
	AddPoints(ctx context.Context, userID string, delta int64) error
	SetTotalPoints(ctx context.Context, userID string, total int64) error

	// Contributions. Records are append-only: UpsertContribution inserts
	// if absent and leaves an existing row untouched (points are a
	// point-in-time snapshot, never recomputed).
	CreateContribution(ctx context.Context, c *models.Contribution) error
	UpsertContribution(ctx context.Context, c *models.Contribution) (bool, error)
	ListContributions(ctx context.Context, userID string) ([]models.Contribution, error)
	ListAllContributions(ctx context.Context) ([]models.Contribution, error)

	// Referrals
	SaveReferral(ctx context.Context, r *models.Referral) error
	FindReferral(ctx context.Context, referredID, code string) (*models.Referral, error)
	ListReferrals(ctx context.Context, referrerID string) ([]models.Referral, error)

	// Teams
	CreateTeam(ctx context.Context, t *models.Team) error
	GetTeam(ctx context.Context, id string) (*models.Team, error)
	ListTeams(ctx context.Context) ([]models.Team, error)
	DeleteTeam(ctx context.Context, id string) error
	SetLeader(ctx context.Context, teamID, leaderID string) error
	GetMembership(ctx context.Context, userID string) (*models.TeamMember, error)
	AddMember(ctx context.Context, teamID, userID string) error
	RemoveMember(ctx context.Context, userID string) error

	// Badges
	AwardBadge(ctx context.Context, userID, badgeID string) (bool, error)
	ListBadges(ctx context.Context, userID string) ([]string, error)
}
