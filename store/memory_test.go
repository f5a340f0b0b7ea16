package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"donor-engage-system/models"
)

func TestMemorySupporters(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	sup := &models.Supporter{Email: "a@example.org", FullName: "Alice"}
	require.NoError(t, m.CreateSupporter(ctx, sup))
	assert.NotEmpty(t, sup.ID)
	assert.Equal(t, models.ReferralCodeFor(sup.ID), sup.ReferralCode)

	got, err := m.GetSupporter(ctx, sup.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alice", got.FullName)

	byCode, err := m.GetSupporterByReferralCode(ctx, sup.ReferralCode)
	require.NoError(t, err)
	assert.Equal(t, sup.ID, byCode.ID)

	var nfErr *models.NotFoundError
	_, err = m.GetSupporter(ctx, "missing")
	require.ErrorAs(t, err, &nfErr)

	require.NoError(t, m.AddPoints(ctx, sup.ID, 40))
	require.NoError(t, m.AddPoints(ctx, sup.ID, 2))
	got, err = m.GetSupporter(ctx, sup.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(42), got.TotalPoints)

	require.NoError(t, m.SetTotalPoints(ctx, sup.ID, 10))
	got, err = m.GetSupporter(ctx, sup.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(10), got.TotalPoints)
}

func TestMemoryListSupportersKeepsInsertionOrder(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	for _, email := range []string{"1@x.org", "2@x.org", "3@x.org"} {
		require.NoError(t, m.CreateSupporter(ctx, &models.Supporter{Email: email}))
	}
	list, err := m.ListSupporters(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "1@x.org", list[0].Email)
	assert.Equal(t, "3@x.org", list[2].Email)
}

func TestMemoryUpsertContribution(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	c := &models.Contribution{ID: "c1", UserID: "u1", Path: models.PathWisdom, Amount: 10, ImpactPoints: 10}
	inserted, err := m.UpsertContribution(ctx, c)
	require.NoError(t, err)
	assert.True(t, inserted)

	// Same id again: untouched, reported as existing.
	dup := &models.Contribution{ID: "c1", UserID: "u1", Amount: 999, ImpactPoints: 999}
	inserted, err = m.UpsertContribution(ctx, dup)
	require.NoError(t, err)
	assert.False(t, inserted)

	list, err := m.ListContributions(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, int64(10), list[0].ImpactPoints)
}

func TestMemoryReferrals(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	r := &models.Referral{ReferrerID: "a", ReferredID: "b", Code: "REF-a"}
	require.NoError(t, m.SaveReferral(ctx, r))

	found, err := m.FindReferral(ctx, "b", "REF-a")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.False(t, found.HasDonated)

	found.HasDonated = true
	require.NoError(t, m.SaveReferral(ctx, found))
	again, err := m.FindReferral(ctx, "b", "REF-a")
	require.NoError(t, err)
	assert.True(t, again.HasDonated)

	missing, err := m.FindReferral(ctx, "b", "REF-z")
	require.NoError(t, err)
	assert.Nil(t, missing)

	list, err := m.ListReferrals(ctx, "a")
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestMemoryExclusiveMembership(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	require.NoError(t, m.CreateSupporter(ctx, &models.Supporter{ID: "u1", Email: "u1@x.org"}))
	require.NoError(t, m.CreateTeam(ctx, &models.Team{ID: "t1", Name: "One", LeaderID: "u1"}))
	require.NoError(t, m.CreateTeam(ctx, &models.Team{ID: "t2", Name: "Two", LeaderID: "u1"}))

	require.NoError(t, m.AddMember(ctx, "t1", "u1"))

	var amErr *models.AlreadyMemberError
	require.ErrorAs(t, m.AddMember(ctx, "t2", "u1"), &amErr)
	assert.Equal(t, "t1", amErr.TeamID)

	sup, err := m.GetSupporter(ctx, "u1")
	require.NoError(t, err)
	require.NotNil(t, sup.TeamID)
	assert.Equal(t, "t1", *sup.TeamID)

	require.NoError(t, m.RemoveMember(ctx, "u1"))
	sup, err = m.GetSupporter(ctx, "u1")
	require.NoError(t, err)
	assert.Nil(t, sup.TeamID)

	var naErr *models.NotAMemberError
	require.ErrorAs(t, m.RemoveMember(ctx, "u1"), &naErr)
}

func TestMemoryDeleteTeamClearsMembers(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	require.NoError(t, m.CreateSupporter(ctx, &models.Supporter{ID: "u1", Email: "u1@x.org"}))
	require.NoError(t, m.CreateTeam(ctx, &models.Team{ID: "t1", Name: "One", LeaderID: "u1"}))
	require.NoError(t, m.AddMember(ctx, "t1", "u1"))

	require.NoError(t, m.DeleteTeam(ctx, "t1"))

	sup, err := m.GetSupporter(ctx, "u1")
	require.NoError(t, err)
	assert.Nil(t, sup.TeamID)

	membership, err := m.GetMembership(ctx, "u1")
	require.NoError(t, err)
	assert.Nil(t, membership)
}

func TestMemoryAwardBadgeConditional(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	inserted, err := m.AwardBadge(ctx, "u1", models.BadgeFirstDonation)
	require.NoError(t, err)
	assert.True(t, inserted)

	inserted, err = m.AwardBadge(ctx, "u1", models.BadgeFirstDonation)
	require.NoError(t, err)
	assert.False(t, inserted)

	badges, err := m.ListBadges(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{models.BadgeFirstDonation}, badges)
}
