package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"donor-engage-system/models"
	"donor-engage-system/store"
)

type BadgeService struct {
	Repo store.Repository
}

func NewBadgeService(repo store.Repository) *BadgeService {
	return &BadgeService{Repo: repo}
}

// EvaluationResult reports one catalog sweep. Failed rules are isolated per
// badge so one broken condition never blocks the rest of the catalog.
type EvaluationResult struct {
	NewlyEarned []string
	Failed      map[string]error
}

// snapshot is everything a badge rule can look at.
type snapshot struct {
	supporter     *models.Supporter
	owned         map[string]bool
	contributions []models.Contribution
	referrals     []models.Referral
	team          *models.Team // nil when the supporter has no team
}

// Evaluate runs the full catalog against a supporter snapshot without
// touching storage. Already-owned badges are skipped, never re-checked.
func Evaluate(sup *models.Supporter, owned map[string]bool, contributions []models.Contribution, referrals []models.Referral, team *models.Team) EvaluationResult {
	return EvaluateCatalog(models.BadgeCatalog, sup, owned, contributions, referrals, team)
}

// EvaluateCatalog is Evaluate over an explicit catalog.
func EvaluateCatalog(catalog []models.BadgeType, sup *models.Supporter, owned map[string]bool, contributions []models.Contribution, referrals []models.Referral, team *models.Team) EvaluationResult {
	snap := snapshot{
		supporter:     sup,
		owned:         owned,
		contributions: contributions,
		referrals:     referrals,
		team:          team,
	}
	result := EvaluationResult{Failed: make(map[string]error)}
	for _, badge := range catalog {
		if snap.owned[badge.ID] {
			continue
		}
		met, err := ruleMet(badge.Rule, snap)
		if err != nil {
			result.Failed[badge.ID] = &models.ConditionEvaluationError{BadgeID: badge.ID, Err: err}
			continue
		}
		if met {
			result.NewlyEarned = append(result.NewlyEarned, badge.ID)
		}
	}
	return result
}

// ruleMet dispatches on the rule kind. An unknown kind is an error, not a
// silent false.
func ruleMet(rule models.BadgeRule, snap snapshot) (bool, error) {
	switch rule.Kind {
	case models.RuleFirstContribution:
		for _, c := range snap.contributions {
			if c.IsReal() {
				return true, nil
			}
		}
		return false, nil

	case models.RulePathSupporter:
		var count int64
		for _, c := range snap.contributions {
			if c.IsReal() && c.Path == rule.Path {
				count++
			}
		}
		return count >= rule.Min, nil

	case models.RuleAllPaths:
		// The three donation paths; Service does not count here.
		seen := make(map[models.Path]bool)
		for _, c := range snap.contributions {
			if c.IsReal() && c.Amount > 0 {
				seen[c.Path] = true
			}
		}
		return seen[models.PathWisdom] && seen[models.PathCourage] && seen[models.PathProtection], nil

	case models.RuleMinTotalPoints:
		return snap.supporter.TotalPoints >= rule.Min, nil

	case models.RuleMinReferrals:
		return int64(len(snap.referrals)) >= rule.Min, nil

	case models.RuleMinServiceHours:
		var hours float64
		for _, c := range snap.contributions {
			if c.Path == models.PathService {
				hours += c.Hours
			}
		}
		return hours >= rule.MinHours, nil

	case models.RuleHasTeam:
		return snap.team != nil, nil

	case models.RuleTeamLeader:
		if snap.team == nil || snap.team.LeaderID != snap.supporter.ID {
			return false, nil
		}
		return len(snap.team.Members) >= rule.MinMembers, nil
	}
	return false, fmt.Errorf("unhandled rule kind %q", rule.Kind)
}

// EvaluateAndAward loads the supporter's snapshot, evaluates the catalog and
// persists every newly earned badge. Awarding is conditional on the
// (user, badge) pair, so concurrent sweeps settle on a single award.
func (s *BadgeService) EvaluateAndAward(ctx context.Context, userID string) (EvaluationResult, error) {
	sup, err := s.Repo.GetSupporter(ctx, userID)
	if err != nil {
		return EvaluationResult{}, err
	}
	ownedIDs, err := s.Repo.ListBadges(ctx, userID)
	if err != nil {
		return EvaluationResult{}, err
	}
	owned := make(map[string]bool, len(ownedIDs))
	for _, id := range ownedIDs {
		owned[id] = true
	}
	contributions, err := s.Repo.ListContributions(ctx, userID)
	if err != nil {
		return EvaluationResult{}, err
	}
	referrals, err := s.Repo.ListReferrals(ctx, userID)
	if err != nil {
		return EvaluationResult{}, err
	}
	var team *models.Team
	if sup.TeamID != nil {
		team, err = s.Repo.GetTeam(ctx, *sup.TeamID)
		if err != nil {
			return EvaluationResult{}, err
		}
	}

	result := Evaluate(sup, owned, contributions, referrals, team)
	for badgeID, evalErr := range result.Failed {
		zap.L().Warn("badge condition failed",
			zap.String("user_id", userID),
			zap.String("badge_id", badgeID),
			zap.Error(evalErr))
	}

	awarded := result.NewlyEarned[:0]
	for _, badgeID := range result.NewlyEarned {
		inserted, err := s.Repo.AwardBadge(ctx, userID, badgeID)
		if err != nil {
			return result, err
		}
		if inserted {
			awarded = append(awarded, badgeID)
			zap.L().Info("badge awarded",
				zap.String("user_id", userID),
				zap.String("badge_id", badgeID))
		}
	}
	result.NewlyEarned = awarded
	return result, nil
}
