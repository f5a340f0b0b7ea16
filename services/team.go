package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"go.uber.org/zap"

	"donor-engage-system/models"
	"donor-engage-system/store"
)

type TeamService struct {
	Repo store.Repository
}

func NewTeamService(repo store.Repository) *TeamService {
	return &TeamService{Repo: repo}
}

// TeamSummary is the read view of a team. TotalPoints is recomputed from the
// live member supporters on every call, never stored on the team row.
type TeamSummary struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
	LeaderID    string `json:"leader_id"`
	LeaderName  string `json:"leader_name"`
	MemberCount int    `json:"member_count"`
	TotalPoints int64  `json:"total_points"`
}

// CreateTeam creates a team with the leader as its first member. The leader
// must not already belong to a team.
func (s *TeamService) CreateTeam(ctx context.Context, name, description, leaderID string) (*models.Team, error) {
	if name == "" {
		return nil, &models.ValidationError{Field: "name", Reason: "must not be empty"}
	}
	if _, err := s.Repo.GetSupporter(ctx, leaderID); err != nil {
		return nil, err
	}
	membership, err := s.Repo.GetMembership(ctx, leaderID)
	if err != nil {
		return nil, err
	}
	if membership != nil {
		return nil, &models.AlreadyMemberError{UserID: leaderID, TeamID: membership.TeamID}
	}

	team := &models.Team{
		ID:          uuid.NewString(),
		Name:        name,
		Slug:        slug.Make(name),
		Description: description,
		LeaderID:    leaderID,
	}
	if err := s.Repo.CreateTeam(ctx, team); err != nil {
		return nil, err
	}
	if err := s.Repo.AddMember(ctx, team.ID, leaderID); err != nil {
		// The leader joined another team between the membership check and
		// here. A team whose leader is not a member must not survive.
		if delErr := s.Repo.DeleteTeam(ctx, team.ID); delErr != nil {
			zap.L().Error("failed to remove team after leader join failure",
				zap.String("team_id", team.ID),
				zap.Error(delErr))
		}
		return nil, err
	}
	zap.L().Info("team created",
		zap.String("team_id", team.ID),
		zap.String("leader_id", leaderID))
	return team, nil
}

// JoinTeam adds a supporter to a team. Membership is exclusive; the store
// rejects the join atomically if the supporter already has a team.
func (s *TeamService) JoinTeam(ctx context.Context, teamID, userID string) error {
	if _, err := s.Repo.GetSupporter(ctx, userID); err != nil {
		return err
	}
	if _, err := s.Repo.GetTeam(ctx, teamID); err != nil {
		return err
	}
	return s.Repo.AddMember(ctx, teamID, userID)
}

// LeaveTeam removes the supporter from their team. A sole member leaving
// dissolves the team; a leader leaving with members left hands leadership to
// the earliest remaining member.
func (s *TeamService) LeaveTeam(ctx context.Context, userID string) error {
	membership, err := s.Repo.GetMembership(ctx, userID)
	if err != nil {
		return err
	}
	if membership == nil {
		return &models.NotAMemberError{UserID: userID}
	}

	team, err := s.Repo.GetTeam(ctx, membership.TeamID)
	if err != nil {
		return err
	}
	if err := s.Repo.RemoveMember(ctx, userID); err != nil {
		return err
	}

	remaining := make([]models.TeamMember, 0, len(team.Members))
	for _, m := range team.Members {
		if m.UserID != userID {
			remaining = append(remaining, m)
		}
	}
	if len(remaining) == 0 {
		zap.L().Info("team dissolved", zap.String("team_id", team.ID))
		return s.Repo.DeleteTeam(ctx, team.ID)
	}
	if team.LeaderID == userID {
		// Members are ordered by join time; the earliest inherits.
		next := remaining[0].UserID
		if err := s.Repo.SetLeader(ctx, team.ID, next); err != nil {
			return err
		}
		zap.L().Info("team leadership transferred",
			zap.String("team_id", team.ID),
			zap.String("leader_id", next))
	}
	return nil
}

// GetTeam returns the team summary with live-recomputed totals.
func (s *TeamService) GetTeam(ctx context.Context, teamID string) (*TeamSummary, error) {
	team, err := s.Repo.GetTeam(ctx, teamID)
	if err != nil {
		return nil, err
	}
	return s.summarize(ctx, team)
}

// ListTeams returns every team's summary in creation order.
func (s *TeamService) ListTeams(ctx context.Context) ([]TeamSummary, error) {
	teams, err := s.Repo.ListTeams(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]TeamSummary, 0, len(teams))
	for i := range teams {
		summary, err := s.summarize(ctx, &teams[i])
		if err != nil {
			return nil, err
		}
		out = append(out, *summary)
	}
	return out, nil
}

func (s *TeamService) summarize(ctx context.Context, team *models.Team) (*TeamSummary, error) {
	var total int64
	leaderName := ""
	for _, m := range team.Members {
		sup, err := s.Repo.GetSupporter(ctx, m.UserID)
		if err != nil {
			return nil, err
		}
		total += sup.TotalPoints
		if sup.ID == team.LeaderID {
			leaderName = sup.DisplayName()
		}
	}
	return &TeamSummary{
		ID:          team.ID,
		Name:        team.Name,
		Slug:        team.Slug,
		Description: team.Description,
		LeaderID:    team.LeaderID,
		LeaderName:  leaderName,
		MemberCount: len(team.Members),
		TotalPoints: total,
	}, nil
}
