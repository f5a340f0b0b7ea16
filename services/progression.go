package services

import (
	"context"
	"fmt"

	"donor-engage-system/models"
	"donor-engage-system/store"
)

// PathLevelThresholds are the XP floors for each level within a path.
// Crossing a threshold resolves upward: exactly 100 XP is level 2.
var PathLevelThresholds = []int64{0, 100, 300, 600}

// PathLevelLabels name the levels, index-aligned with the thresholds.
var PathLevelLabels = []string{"Initiate", "Ally", "Guardian", "Champion"}

// LevelInfo describes where a supporter stands on one path.
type LevelInfo struct {
	Level             int    `json:"level"` // 1-based
	Label             string `json:"label"`
	CurrentLevelMinXP int64  `json:"current_level_min_xp"`
	// NextLevelXP is nil at the top level.
	NextLevelXP *int64 `json:"next_level_xp,omitempty"`
}

// LevelFromXP maps accumulated path XP to a level.
func LevelFromXP(xp int64) (LevelInfo, error) {
	if xp < 0 {
		return LevelInfo{}, &models.ValidationError{Field: "xp", Reason: fmt.Sprintf("must not be negative, got %d", xp)}
	}
	level := 1
	for i := len(PathLevelThresholds) - 1; i >= 0; i-- {
		if xp >= PathLevelThresholds[i] {
			level = i + 1
			break
		}
	}
	info := LevelInfo{
		Level:             level,
		Label:             PathLevelLabels[level-1],
		CurrentLevelMinXP: PathLevelThresholds[level-1],
	}
	if level < len(PathLevelThresholds) {
		next := PathLevelThresholds[level]
		info.NextLevelXP = &next
	}
	return info, nil
}

// PathProgress is one path's slice of a supporter's history.
type PathProgress struct {
	// Count is donations made on the path, except for Service where it is
	// total volunteer hours.
	Count float64   `json:"count"`
	XP    int64     `json:"xp"`
	Level LevelInfo `json:"level"`
}

// PathStats folds a supporter's contributions into per-path progress. Only
// real contributions count; referral bonus credits carry points toward the
// supporter total but never advance a path.
func PathStats(contributions []models.Contribution) (map[models.Path]PathProgress, error) {
	counts := make(map[models.Path]float64)
	xp := make(map[models.Path]int64)
	for _, c := range contributions {
		if !c.IsReal() {
			continue
		}
		if c.Path == models.PathService {
			counts[c.Path] += c.Hours
		} else {
			counts[c.Path]++
		}
		xp[c.Path] += c.ImpactPoints
	}

	out := make(map[models.Path]PathProgress, len(models.Paths))
	for _, p := range models.Paths {
		info, err := LevelFromXP(xp[p])
		if err != nil {
			return nil, err
		}
		out[p] = PathProgress{Count: counts[p], XP: xp[p], Level: info}
	}
	return out, nil
}

// SupporterProgress is the full progression view for one supporter.
type SupporterProgress struct {
	UserID      string                       `json:"user_id"`
	DisplayName string                       `json:"display_name"`
	TotalPoints int64                        `json:"total_points"`
	Paths       map[models.Path]PathProgress `json:"paths"`
	Badges      []string                     `json:"badges"`
}

type ProgressionService struct {
	Repo store.Repository
}

func NewProgressionService(repo store.Repository) *ProgressionService {
	return &ProgressionService{Repo: repo}
}

// Progress assembles the supporter's levels across all paths plus their
// earned badges.
func (s *ProgressionService) Progress(ctx context.Context, userID string) (*SupporterProgress, error) {
	sup, err := s.Repo.GetSupporter(ctx, userID)
	if err != nil {
		return nil, err
	}
	contributions, err := s.Repo.ListContributions(ctx, userID)
	if err != nil {
		return nil, err
	}
	paths, err := PathStats(contributions)
	if err != nil {
		return nil, err
	}
	badges, err := s.Repo.ListBadges(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &SupporterProgress{
		UserID:      sup.ID,
		DisplayName: sup.DisplayName(),
		TotalPoints: sup.TotalPoints,
		Paths:       paths,
		Badges:      badges,
	}, nil
}
