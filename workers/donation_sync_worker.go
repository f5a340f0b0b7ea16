package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"donor-engage-system/models"
	"donor-engage-system/services"
	"donor-engage-system/store"
	"donor-engage-system/utils"
)

// DonationRecord matches the JSON the donation platform exposes on its
// public sync endpoint.
type DonationRecord struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	Path         string    `json:"path"`
	Amount       float64   `json:"amount"`
	Hours        float64   `json:"hours"`
	ReferralCode string    `json:"referral_code,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type donationChangesResponse struct {
	Donations []DonationRecord `json:"donations"`
}

// ReferralRecord matches the platform's referral sync payload.
type ReferralRecord struct {
	ID         string    `json:"id"`
	ReferrerID string    `json:"referrer_id"`
	ReferredID string    `json:"referred_id"`
	Code       string    `json:"code"`
	HasDonated bool      `json:"has_donated"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type referralChangesResponse struct {
	Referrals []ReferralRecord `json:"referrals"`
}

// DonationSyncWorker polls the donation platform for new donation, volunteer
// and referral records and mirrors them into the local store. Each imported
// record runs through the same points and badge pipeline a direct write
// would.
type DonationSyncWorker struct {
	repo         store.Repository
	badges       *services.BadgeService
	interval     time.Duration
	baseURL      string
	serviceToken string
	httpClient   *http.Client
	// Cursors advance per stream, so a quiet donation feed never forces
	// referral changes to be refetched and vice versa.
	lastDonationSync time.Time
	lastReferralSync time.Time
}

func NewDonationSyncWorker(repo store.Repository, badges *services.BadgeService, baseURL, serviceToken string, interval time.Duration) *DonationSyncWorker {
	if interval <= 0 {
		interval = 1 * time.Minute
	}
	return &DonationSyncWorker{
		repo:         repo,
		badges:       badges,
		interval:     interval,
		baseURL:      baseURL,
		serviceToken: serviceToken,
		httpClient:   utils.HTTPClient,
	}
}

func (w *DonationSyncWorker) Start(ctx context.Context) {
	zap.L().Info("donation sync worker starting",
		zap.String("base_url", w.baseURL),
		zap.Duration("interval", w.interval))
	go w.run(ctx)
}

func (w *DonationSyncWorker) run(ctx context.Context) {
	// Backfill from the beginning before switching to incremental pulls.
	if err := w.SyncOnce(ctx); err != nil {
		zap.L().Warn("initial donation sync failed", zap.Error(err))
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := w.SyncOnce(ctx); err != nil {
				zap.L().Error("donation sync batch failed", zap.Error(err))
			}
		case <-ctx.Done():
			zap.L().Info("donation sync worker stopped")
			return
		}
	}
}

// SyncOnce pulls one batch of changes since the last successful sync.
func (w *DonationSyncWorker) SyncOnce(ctx context.Context) error {
	donationCursor, err := w.syncDonations(ctx, w.lastDonationSync)
	if err != nil {
		return err
	}
	referralCursor, err := w.syncReferrals(ctx, w.lastReferralSync)
	if err != nil {
		return err
	}
	if donationCursor.After(w.lastDonationSync) {
		w.lastDonationSync = donationCursor
	}
	if referralCursor.After(w.lastReferralSync) {
		w.lastReferralSync = referralCursor
	}
	return nil
}

func (w *DonationSyncWorker) syncDonations(ctx context.Context, since time.Time) (time.Time, error) {
	var response donationChangesResponse
	if err := w.fetch(ctx, "/api/v1/public/donations", since, &response); err != nil {
		return since, err
	}
	if len(response.Donations) == 0 {
		return since, nil
	}
	zap.L().Info("processing donation changes", zap.Int("count", len(response.Donations)))

	cursor := since
	affected := make(map[string]bool)
	for _, record := range response.Donations {
		contribution, err := contributionFromRecord(record)
		if err != nil {
			zap.L().Warn("skipping malformed donation record",
				zap.String("id", record.ID),
				zap.Error(err))
			continue
		}
		inserted, err := w.repo.UpsertContribution(ctx, contribution)
		if err != nil {
			zap.L().Warn("failed to upsert contribution",
				zap.String("id", record.ID),
				zap.Error(err))
			continue
		}
		if inserted {
			affected[record.UserID] = true
		}
		if record.UpdatedAt.After(cursor) {
			cursor = record.UpdatedAt
		}
	}

	for userID := range affected {
		if err := w.reconcile(ctx, userID); err != nil {
			zap.L().Warn("failed to reconcile supporter totals",
				zap.String("user_id", userID),
				zap.Error(err))
			continue
		}
		if _, err := w.badges.EvaluateAndAward(ctx, userID); err != nil {
			zap.L().Warn("badge sweep failed after sync",
				zap.String("user_id", userID),
				zap.Error(err))
		}
	}
	return cursor, nil
}

func (w *DonationSyncWorker) syncReferrals(ctx context.Context, since time.Time) (time.Time, error) {
	var response referralChangesResponse
	if err := w.fetch(ctx, "/api/v1/public/referrals", since, &response); err != nil {
		return since, err
	}
	cursor := since
	for _, record := range response.Referrals {
		referral := &models.Referral{
			ID:         record.ID,
			ReferrerID: record.ReferrerID,
			ReferredID: record.ReferredID,
			Code:       record.Code,
			HasDonated: record.HasDonated,
		}
		if err := w.repo.SaveReferral(ctx, referral); err != nil {
			zap.L().Warn("failed to save referral",
				zap.String("id", record.ID),
				zap.Error(err))
			continue
		}
		if record.UpdatedAt.After(cursor) {
			cursor = record.UpdatedAt
		}
	}
	return cursor, nil
}

// reconcile rewrites a supporter's cached total from their full contribution
// history. Imported rows bypass the incremental AddPoints path, so the sum is
// recomputed wholesale.
func (w *DonationSyncWorker) reconcile(ctx context.Context, userID string) error {
	contributions, err := w.repo.ListContributions(ctx, userID)
	if err != nil {
		return err
	}
	var total int64
	for _, c := range contributions {
		total += c.ImpactPoints
	}
	return w.repo.SetTotalPoints(ctx, userID, total)
}

func (w *DonationSyncWorker) fetch(ctx context.Context, path string, since time.Time, out any) error {
	base, err := url.Parse(w.baseURL)
	if err != nil {
		return fmt.Errorf("invalid sync base URL %q: %w", w.baseURL, err)
	}
	endpoint := base.JoinPath(path)
	q := endpoint.Query()
	q.Set("since", since.UTC().Format(time.RFC3339))
	endpoint.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return fmt.Errorf("failed to build sync request: %w", err)
	}
	req.Header.Set("X-Service-Token", w.serviceToken)

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("sync request failed: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("sync endpoint %s returned %d: %s", path, resp.StatusCode, string(body))
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// referralBonusPath is how the donation platform labels bonus credit rows.
const referralBonusPath = "Referral Bonus"

// contributionFromRecord converts a platform record into a local
// contribution, computing points the same way a live write would.
func contributionFromRecord(record DonationRecord) (*models.Contribution, error) {
	contribution := &models.Contribution{
		ID:        record.ID,
		UserID:    record.UserID,
		CreatedAt: record.CreatedAt,
	}
	switch {
	case record.Path == referralBonusPath:
		contribution.Kind = models.KindReferralBonus
		contribution.ImpactPoints = services.ReferralBonusPoints
	case record.Hours > 0:
		points, err := services.VolunteerPoints(record.Hours)
		if err != nil {
			return nil, err
		}
		contribution.Kind = models.KindVolunteer
		contribution.Path = models.PathService
		contribution.Hours = record.Hours
		contribution.ImpactPoints = points
	default:
		path, err := models.ParsePath(record.Path)
		if err != nil {
			return nil, err
		}
		points, err := services.ComputePoints(record.Amount, path)
		if err != nil {
			return nil, err
		}
		contribution.Kind = models.KindDonation
		contribution.Path = path
		contribution.Amount = record.Amount
		contribution.ImpactPoints = points
	}
	return contribution, nil
}
