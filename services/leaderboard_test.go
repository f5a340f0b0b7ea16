package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"donor-engage-system/models"
	"donor-engage-system/store"
)

func TestRankUsersOrdering(t *testing.T) {
	supporters := map[string]*models.Supporter{
		"a": {ID: "a", FullName: "Alice"},
		"b": {ID: "b", FullName: "Bob"},
	}
	contributions := []models.Contribution{
		{UserID: "a", Path: models.PathWisdom, Amount: 50, ImpactPoints: 50},
		{UserID: "b", Path: models.PathCourage, Amount: 70, ImpactPoints: 80},
		{UserID: "a", Path: models.PathCourage, Amount: 50, ImpactPoints: 60},
	}

	entries := RankUsers(supporters, contributions, PathFilterAll)
	require.Len(t, entries, 2)
	assert.Equal(t, "a", entries[0].UserID)
	assert.Equal(t, int64(110), entries[0].TotalPoints)
	assert.Equal(t, 2, entries[0].TotalContributions)
	assert.Equal(t, "b", entries[1].UserID)
	assert.Equal(t, int64(80), entries[1].TotalPoints)
}

func TestRankUsersTiesKeepAggregationOrder(t *testing.T) {
	supporters := map[string]*models.Supporter{}
	contributions := []models.Contribution{
		{UserID: "first", Path: models.PathWisdom, Amount: 100, ImpactPoints: 100},
		{UserID: "second", Path: models.PathWisdom, Amount: 100, ImpactPoints: 100},
	}
	entries := RankUsers(supporters, contributions, "")
	require.Len(t, entries, 2)
	assert.Equal(t, "first", entries[0].UserID)
	assert.Equal(t, "second", entries[1].UserID)
}

func TestRankUsersPrimaryPath(t *testing.T) {
	contributions := []models.Contribution{
		{UserID: "a", Path: models.PathCourage, Amount: 10, ImpactPoints: 12},
		{UserID: "a", Path: models.PathWisdom, Amount: 10, ImpactPoints: 10},
		{UserID: "a", Path: models.PathCourage, Amount: 10, ImpactPoints: 12},
	}
	entries := RankUsers(nil, contributions, PathFilterAll)
	require.Len(t, entries, 1)
	assert.Equal(t, models.PathCourage, entries[0].PrimaryPath)

	// Tied counts fall back to the path seen first.
	tied := []models.Contribution{
		{UserID: "a", Path: models.PathProtection, Amount: 10, ImpactPoints: 15},
		{UserID: "a", Path: models.PathWisdom, Amount: 10, ImpactPoints: 10},
	}
	entries = RankUsers(nil, tied, PathFilterAll)
	assert.Equal(t, models.PathProtection, entries[0].PrimaryPath)
}

func TestRankUsersPathFilter(t *testing.T) {
	contributions := []models.Contribution{
		{UserID: "a", Path: models.PathWisdom, Amount: 10, ImpactPoints: 10},
		{UserID: "b", Path: models.PathCourage, Amount: 10, ImpactPoints: 12},
	}
	entries := RankUsers(nil, contributions, string(models.PathCourage))
	require.Len(t, entries, 1)
	assert.Equal(t, "b", entries[0].UserID)
}

func TestRankUsersRedactsAnonymous(t *testing.T) {
	supporters := map[string]*models.Supporter{
		"a": {ID: "a", FullName: "Alice", IsAnonymous: true},
	}
	contributions := []models.Contribution{
		{UserID: "a", Path: models.PathWisdom, Amount: 10, ImpactPoints: 10},
		{UserID: "ghost", Path: models.PathWisdom, Amount: 10, ImpactPoints: 10},
	}
	entries := RankUsers(supporters, contributions, PathFilterAll)
	require.Len(t, entries, 2)
	for _, e := range entries {
		assert.Equal(t, "Anonymous", e.DisplayName)
	}
}

func TestRankTeams(t *testing.T) {
	supporters := map[string]*models.Supporter{
		"a": {ID: "a", TotalPoints: 100},
		"b": {ID: "b", TotalPoints: 50},
		"c": {ID: "c", TotalPoints: 200},
	}
	teams := []models.Team{
		{ID: "t1", Name: "One", Members: []models.TeamMember{{UserID: "a"}, {UserID: "b"}}},
		{ID: "t2", Name: "Two", Members: []models.TeamMember{{UserID: "c"}}},
	}
	entries := RankTeams(supporters, teams)
	require.Len(t, entries, 2)
	assert.Equal(t, "t2", entries[0].TeamID)
	assert.Equal(t, int64(200), entries[0].TotalPoints)
	assert.Equal(t, int64(150), entries[1].TotalPoints)
	assert.Equal(t, 2, entries[1].MemberCount)
}

func TestLeaderboardServiceCaches(t *testing.T) {
	ctx := context.Background()
	repo := store.NewMemory()
	require.NoError(t, repo.CreateSupporter(ctx, &models.Supporter{ID: "a", Email: "a@example.org"}))
	require.NoError(t, repo.CreateContribution(ctx, &models.Contribution{
		UserID: "a", Path: models.PathWisdom, Amount: 10, ImpactPoints: 10,
	}))

	svc := NewLeaderboardService(repo, time.Hour)

	entries, err := svc.TopUsers(ctx, "")
	require.NoError(t, err)
	require.Len(t, entries, 1)

	// A write behind the cache is invisible until invalidation.
	require.NoError(t, repo.CreateContribution(ctx, &models.Contribution{
		UserID: "a", Path: models.PathWisdom, Amount: 10, ImpactPoints: 10,
	}))
	entries, err = svc.TopUsers(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, int64(10), entries[0].TotalPoints)

	svc.Invalidate()
	entries, err = svc.TopUsers(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, int64(20), entries[0].TotalPoints)
}

func TestLeaderboardCacheIsImmutableToCallers(t *testing.T) {
	ctx := context.Background()
	repo := store.NewMemory()
	require.NoError(t, repo.CreateSupporter(ctx, &models.Supporter{ID: "a", Email: "a@example.org", FullName: "Alice", TotalPoints: 10}))
	require.NoError(t, repo.CreateContribution(ctx, &models.Contribution{
		UserID: "a", Path: models.PathWisdom, Amount: 10, ImpactPoints: 10,
	}))
	team := &models.Team{ID: "t1", Name: "One", LeaderID: "a"}
	require.NoError(t, repo.CreateTeam(ctx, team))
	require.NoError(t, repo.AddMember(ctx, "t1", "a"))

	svc := NewLeaderboardService(repo, time.Hour)

	users, err := svc.TopUsers(ctx, "")
	require.NoError(t, err)
	users[0].DisplayName = "Mallory"
	users[0].TotalPoints = 0

	again, err := svc.TopUsers(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, "Alice", again[0].DisplayName)
	assert.Equal(t, int64(10), again[0].TotalPoints)

	teams, err := svc.TopTeams(ctx)
	require.NoError(t, err)
	teams[0].TotalPoints = 0

	teamsAgain, err := svc.TopTeams(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(10), teamsAgain[0].TotalPoints)
}
