package workers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"donor-engage-system/models"
	"donor-engage-system/services"
	"donor-engage-system/store"
)

func newSyncServer(t *testing.T, donations []DonationRecord, referrals []ReferralRecord) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/public/donations", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-token", r.Header.Get("X-Service-Token"))
		assert.NotEmpty(t, r.URL.Query().Get("since"))
		_ = json.NewEncoder(w).Encode(map[string]any{"donations": donations})
	})
	mux.HandleFunc("/api/v1/public/referrals", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"referrals": referrals})
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestSyncOnceImportsDonations(t *testing.T) {
	ctx := context.Background()
	repo := store.NewMemory()
	require.NoError(t, repo.CreateSupporter(ctx, &models.Supporter{ID: "u1", Email: "u1@x.org"}))

	now := time.Now().UTC()
	server := newSyncServer(t, []DonationRecord{
		{ID: "d1", UserID: "u1", Path: "COURAGE", Amount: 100, CreatedAt: now, UpdatedAt: now},
		{ID: "d2", UserID: "u1", Hours: 3, CreatedAt: now, UpdatedAt: now},
	}, nil)

	w := NewDonationSyncWorker(repo, services.NewBadgeService(repo), server.URL, "test-token", time.Minute)
	require.NoError(t, w.SyncOnce(ctx))

	contributions, err := repo.ListContributions(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, contributions, 2)
	assert.Equal(t, int64(120), contributions[0].ImpactPoints)
	assert.Equal(t, models.PathService, contributions[1].Path)
	assert.Equal(t, int64(30), contributions[1].ImpactPoints)

	// Totals reconciled from the imported history.
	sup, err := repo.GetSupporter(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(150), sup.TotalPoints)

	badges, err := repo.ListBadges(ctx, "u1")
	require.NoError(t, err)
	assert.Contains(t, badges, models.BadgeFirstDonation)
}

func TestSyncOnceIsIdempotent(t *testing.T) {
	ctx := context.Background()
	repo := store.NewMemory()
	require.NoError(t, repo.CreateSupporter(ctx, &models.Supporter{ID: "u1", Email: "u1@x.org"}))

	now := time.Now().UTC()
	server := newSyncServer(t, []DonationRecord{
		{ID: "d1", UserID: "u1", Path: "WISDOM", Amount: 50, CreatedAt: now, UpdatedAt: now},
	}, nil)

	w := NewDonationSyncWorker(repo, services.NewBadgeService(repo), server.URL, "test-token", time.Minute)
	require.NoError(t, w.SyncOnce(ctx))
	require.NoError(t, w.SyncOnce(ctx))

	contributions, err := repo.ListContributions(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, contributions, 1)

	sup, err := repo.GetSupporter(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(50), sup.TotalPoints)
}

func TestSyncOnceSkipsMalformedRecords(t *testing.T) {
	ctx := context.Background()
	repo := store.NewMemory()
	require.NoError(t, repo.CreateSupporter(ctx, &models.Supporter{ID: "u1", Email: "u1@x.org"}))

	now := time.Now().UTC()
	server := newSyncServer(t, []DonationRecord{
		{ID: "bad", UserID: "u1", Path: "MYSTERY", Amount: 10, CreatedAt: now, UpdatedAt: now},
		{ID: "good", UserID: "u1", Path: "WISDOM", Amount: 10, CreatedAt: now, UpdatedAt: now},
	}, nil)

	w := NewDonationSyncWorker(repo, services.NewBadgeService(repo), server.URL, "test-token", time.Minute)
	require.NoError(t, w.SyncOnce(ctx))

	contributions, err := repo.ListContributions(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, contributions, 1)
	assert.Equal(t, "good", contributions[0].ID)
}

func TestSyncOnceImportsReferrals(t *testing.T) {
	ctx := context.Background()
	repo := store.NewMemory()

	server := newSyncServer(t, nil, []ReferralRecord{
		{ID: "r1", ReferrerID: "a", ReferredID: "b", Code: "REF-a", HasDonated: true},
	})

	w := NewDonationSyncWorker(repo, services.NewBadgeService(repo), server.URL, "test-token", time.Minute)
	require.NoError(t, w.SyncOnce(ctx))

	referral, err := repo.FindReferral(ctx, "b", "REF-a")
	require.NoError(t, err)
	require.NotNil(t, referral)
	assert.True(t, referral.HasDonated)
}

func TestSyncOnceImportsPlatformBonusRows(t *testing.T) {
	ctx := context.Background()
	repo := store.NewMemory()
	require.NoError(t, repo.CreateSupporter(ctx, &models.Supporter{ID: "u1", Email: "u1@x.org"}))

	now := time.Now().UTC()
	server := newSyncServer(t, []DonationRecord{
		{ID: "b1", UserID: "u1", Path: "Referral Bonus", Amount: 0, CreatedAt: now, UpdatedAt: now},
	}, nil)

	w := NewDonationSyncWorker(repo, services.NewBadgeService(repo), server.URL, "test-token", time.Minute)
	require.NoError(t, w.SyncOnce(ctx))

	contributions, err := repo.ListContributions(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, contributions, 1)
	assert.Equal(t, models.KindReferralBonus, contributions[0].Kind)
	assert.Equal(t, int64(services.ReferralBonusPoints), contributions[0].ImpactPoints)
	assert.False(t, contributions[0].IsReal())

	sup, err := repo.GetSupporter(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(services.ReferralBonusPoints), sup.TotalPoints)
}

func TestSyncOnceAdvancesReferralCursor(t *testing.T) {
	ctx := context.Background()
	repo := store.NewMemory()

	updated := time.Now().UTC().Truncate(time.Second)
	var referralSinces []string
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/public/donations", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"donations": []DonationRecord{}})
	})
	mux.HandleFunc("/api/v1/public/referrals", func(w http.ResponseWriter, r *http.Request) {
		referralSinces = append(referralSinces, r.URL.Query().Get("since"))
		_ = json.NewEncoder(w).Encode(map[string]any{"referrals": []ReferralRecord{
			{ID: "r1", ReferrerID: "a", ReferredID: "b", Code: "REF-a", UpdatedAt: updated},
		}})
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	w := NewDonationSyncWorker(repo, services.NewBadgeService(repo), server.URL, "test-token", time.Minute)
	require.NoError(t, w.SyncOnce(ctx))
	require.NoError(t, w.SyncOnce(ctx))

	require.Len(t, referralSinces, 2)
	// A donation-free tick still moves the referral cursor forward.
	assert.Equal(t, time.Time{}.UTC().Format(time.RFC3339), referralSinces[0])
	assert.Equal(t, updated.Format(time.RFC3339), referralSinces[1])
}

func TestSyncOnceFailsOnServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	t.Cleanup(server.Close)

	repo := store.NewMemory()
	w := NewDonationSyncWorker(repo, services.NewBadgeService(repo), server.URL, "test-token", time.Minute)
	require.Error(t, w.SyncOnce(context.Background()))
}
