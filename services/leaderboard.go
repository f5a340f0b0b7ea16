package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"donor-engage-system/models"
	"donor-engage-system/store"
)

// PathFilterAll disables path filtering in RankUsers.
const PathFilterAll = "ALL"

// SupporterEntry is one leaderboard row.
type SupporterEntry struct {
	UserID             string      `json:"user_id"`
	DisplayName        string      `json:"display_name"`
	TotalPoints        int64       `json:"total_points"`
	TotalContributions int         `json:"total_contributions"`
	PrimaryPath        models.Path `json:"primary_path,omitempty"`
}

// TeamEntry is one team leaderboard row.
type TeamEntry struct {
	TeamID      string `json:"team_id"`
	Name        string `json:"name"`
	TotalPoints int64  `json:"total_points"`
	MemberCount int    `json:"member_count"`
}

// RankUsers aggregates contributions into a descending leaderboard. Rankings
// come from the contribution snapshot, not the cached supporter totals, so a
// path filter stays consistent with the rows it admits.
//
// Ties keep aggregation order: supporters appear in first-contribution order
// before the sort, and the sort is stable.
func RankUsers(supporters map[string]*models.Supporter, contributions []models.Contribution, pathFilter string) []SupporterEntry {
	type agg struct {
		points     int64
		count      int
		pathCounts map[models.Path]int
		pathOrder  []models.Path
	}
	byUser := make(map[string]*agg)
	var order []string

	for _, c := range contributions {
		if pathFilter != "" && pathFilter != PathFilterAll && string(c.Path) != pathFilter {
			continue
		}
		a, ok := byUser[c.UserID]
		if !ok {
			a = &agg{pathCounts: make(map[models.Path]int)}
			byUser[c.UserID] = a
			order = append(order, c.UserID)
		}
		a.points += c.ImpactPoints
		a.count++
		if c.Path != "" {
			if _, seen := a.pathCounts[c.Path]; !seen {
				a.pathOrder = append(a.pathOrder, c.Path)
			}
			a.pathCounts[c.Path]++
		}
	}

	entries := make([]SupporterEntry, 0, len(order))
	for _, userID := range order {
		a := byUser[userID]
		entry := SupporterEntry{
			UserID:             userID,
			DisplayName:        "Anonymous",
			TotalPoints:        a.points,
			TotalContributions: a.count,
			PrimaryPath:        primaryPath(a.pathCounts, a.pathOrder),
		}
		if sup, ok := supporters[userID]; ok {
			entry.DisplayName = sup.DisplayName()
		}
		entries = append(entries, entry)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].TotalPoints > entries[j].TotalPoints
	})
	return entries
}

// primaryPath picks the most frequent path; on a tie, the path seen first.
func primaryPath(counts map[models.Path]int, order []models.Path) models.Path {
	var best models.Path
	bestCount := 0
	for _, p := range order {
		if counts[p] > bestCount {
			best = p
			bestCount = counts[p]
		}
	}
	return best
}

// RankTeams sums member totals per team, descending, stable on team order.
func RankTeams(supporters map[string]*models.Supporter, teams []models.Team) []TeamEntry {
	entries := make([]TeamEntry, 0, len(teams))
	for _, t := range teams {
		var total int64
		for _, m := range t.Members {
			if sup, ok := supporters[m.UserID]; ok {
				total += sup.TotalPoints
			}
		}
		entries = append(entries, TeamEntry{
			TeamID:      t.ID,
			Name:        t.Name,
			TotalPoints: total,
			MemberCount: len(t.Members),
		})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].TotalPoints > entries[j].TotalPoints
	})
	return entries
}

// LeaderboardService serves ranked snapshots with a short TTL cache. Rankings
// are eventually consistent; a refresh sweep or an explicit Invalidate after
// a write keeps them close to live.
type LeaderboardService struct {
	Repo store.Repository
	TTL  time.Duration

	mu    sync.RWMutex
	users map[string]cachedUsers
	teams *cachedTeams
}

type cachedUsers struct {
	entries []SupporterEntry
	at      time.Time
}

type cachedTeams struct {
	entries []TeamEntry
	at      time.Time
}

func NewLeaderboardService(repo store.Repository, ttl time.Duration) *LeaderboardService {
	return &LeaderboardService{
		Repo:  repo,
		TTL:   ttl,
		users: make(map[string]cachedUsers),
	}
}

// TopUsers returns the ranked supporter board for a path filter ("" and
// "ALL" mean unfiltered).
func (s *LeaderboardService) TopUsers(ctx context.Context, pathFilter string) ([]SupporterEntry, error) {
	if pathFilter == "" {
		pathFilter = PathFilterAll
	}
	s.mu.RLock()
	cached, ok := s.users[pathFilter]
	s.mu.RUnlock()
	if ok && time.Since(cached.at) < s.TTL {
		// Callers get their own copy; the cached slice stays pristine.
		return append([]SupporterEntry(nil), cached.entries...), nil
	}

	supporters, err := s.supporterIndex(ctx)
	if err != nil {
		return nil, err
	}
	contributions, err := s.Repo.ListAllContributions(ctx)
	if err != nil {
		return nil, err
	}
	entries := RankUsers(supporters, contributions, pathFilter)

	s.mu.Lock()
	s.users[pathFilter] = cachedUsers{entries: entries, at: time.Now()}
	s.mu.Unlock()
	return append([]SupporterEntry(nil), entries...), nil
}

// TopTeams returns the ranked team board.
func (s *LeaderboardService) TopTeams(ctx context.Context) ([]TeamEntry, error) {
	s.mu.RLock()
	cached := s.teams
	s.mu.RUnlock()
	if cached != nil && time.Since(cached.at) < s.TTL {
		return append([]TeamEntry(nil), cached.entries...), nil
	}

	supporters, err := s.supporterIndex(ctx)
	if err != nil {
		return nil, err
	}
	teams, err := s.Repo.ListTeams(ctx)
	if err != nil {
		return nil, err
	}
	entries := RankTeams(supporters, teams)

	s.mu.Lock()
	s.teams = &cachedTeams{entries: entries, at: time.Now()}
	s.mu.Unlock()
	return append([]TeamEntry(nil), entries...), nil
}

// Invalidate drops every cached board.
func (s *LeaderboardService) Invalidate() {
	s.mu.Lock()
	s.users = make(map[string]cachedUsers)
	s.teams = nil
	s.mu.Unlock()
}

func (s *LeaderboardService) supporterIndex(ctx context.Context) (map[string]*models.Supporter, error) {
	list, err := s.Repo.ListSupporters(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string]*models.Supporter, len(list))
	for i := range list {
		out[list[i].ID] = &list[i]
	}
	return out, nil
}
