package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"donor-engage-system/models"
	"donor-engage-system/store"
)

// ReferralBonusPoints is credited to a referrer when a supporter they
// referred makes their first donation.
const ReferralBonusPoints = 10

// DonationService is the write path: it turns incoming donations and
// volunteer shifts into contribution records, keeps supporter totals in step,
// settles referral bonuses and sweeps badges.
type DonationService struct {
	Repo   store.Repository
	Badges *BadgeService
	Boards *LeaderboardService
}

func NewDonationService(repo store.Repository, badges *BadgeService, boards *LeaderboardService) *DonationService {
	return &DonationService{Repo: repo, Badges: badges, Boards: boards}
}

// RecordDonation records a donation on a path, credits points and runs the
// badge sweep. referralCode, when set, is the code the donor signed up with;
// the referrer's bonus settles on the donor's first donation only.
func (s *DonationService) RecordDonation(ctx context.Context, userID string, amount float64, path models.Path, referralCode string) (*models.Contribution, error) {
	points, err := ComputePoints(amount, path)
	if err != nil {
		return nil, err
	}
	sup, err := s.Repo.GetSupporter(ctx, userID)
	if err != nil {
		return nil, err
	}

	prior, err := s.Repo.ListContributions(ctx, userID)
	if err != nil {
		return nil, err
	}
	first := true
	for _, c := range prior {
		if c.IsReal() {
			first = false
			break
		}
	}

	contribution := &models.Contribution{
		ID:           uuid.NewString(),
		UserID:       sup.ID,
		Kind:         models.KindDonation,
		Path:         path,
		Amount:       amount,
		ImpactPoints: points,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.Repo.CreateContribution(ctx, contribution); err != nil {
		return nil, err
	}
	if err := s.Repo.AddPoints(ctx, sup.ID, points); err != nil {
		return nil, err
	}
	zap.L().Info("donation recorded",
		zap.String("user_id", sup.ID),
		zap.String("path", string(path)),
		zap.Float64("amount", amount),
		zap.Int64("points", points))

	if first && contribution.IsReal() && referralCode != "" {
		if err := s.settleReferral(ctx, sup.ID, referralCode); err != nil {
			// A broken referral never fails the donation.
			zap.L().Warn("referral bonus not applied",
				zap.String("user_id", sup.ID),
				zap.String("code", referralCode),
				zap.Error(err))
		}
	}

	if _, err := s.Badges.EvaluateAndAward(ctx, sup.ID); err != nil {
		return nil, err
	}
	if s.Boards != nil {
		s.Boards.Invalidate()
	}
	return contribution, nil
}

// RecordVolunteerHours records a volunteer shift as a Service contribution.
func (s *DonationService) RecordVolunteerHours(ctx context.Context, userID string, hours float64, when time.Time) (*models.Contribution, error) {
	if hours <= 0 {
		return nil, &models.ValidationError{Field: "hours", Reason: fmt.Sprintf("must be positive, got %v", hours)}
	}
	points, err := VolunteerPoints(hours)
	if err != nil {
		return nil, err
	}
	sup, err := s.Repo.GetSupporter(ctx, userID)
	if err != nil {
		return nil, err
	}
	if when.IsZero() {
		when = time.Now().UTC()
	}

	contribution := &models.Contribution{
		ID:           uuid.NewString(),
		UserID:       sup.ID,
		Kind:         models.KindVolunteer,
		Path:         models.PathService,
		Hours:        hours,
		ImpactPoints: points,
		CreatedAt:    when,
	}
	if err := s.Repo.CreateContribution(ctx, contribution); err != nil {
		return nil, err
	}
	if err := s.Repo.AddPoints(ctx, sup.ID, points); err != nil {
		return nil, err
	}
	zap.L().Info("volunteer hours recorded",
		zap.String("user_id", sup.ID),
		zap.Float64("hours", hours),
		zap.Int64("points", points))

	if _, err := s.Badges.EvaluateAndAward(ctx, sup.ID); err != nil {
		return nil, err
	}
	if s.Boards != nil {
		s.Boards.Invalidate()
	}
	return contribution, nil
}

// settleReferral resolves the code to the referrer, marks the referral as
// donated and credits the bonus exactly once. The bonus is a zero-amount
// contribution so supporter totals stay the sum of contribution points.
func (s *DonationService) settleReferral(ctx context.Context, referredID, code string) error {
	referrerID := strings.TrimPrefix(code, models.ReferralCodePrefix)
	referrer, err := s.Repo.GetSupporter(ctx, referrerID)
	if err != nil {
		// Codes can be shared out of band; fall back to a code lookup.
		referrer, err = s.Repo.GetSupporterByReferralCode(ctx, code)
		if err != nil {
			return err
		}
	}
	if referrer.ID == referredID {
		return &models.ValidationError{Field: "referral_code", Reason: "self-referral"}
	}

	referral, err := s.Repo.FindReferral(ctx, referredID, code)
	if err != nil {
		return err
	}
	if referral != nil && referral.HasDonated {
		return nil // bonus already settled
	}
	if referral == nil {
		referral = &models.Referral{
			ID:         uuid.NewString(),
			ReferrerID: referrer.ID,
			ReferredID: referredID,
			Code:       code,
		}
	}
	referral.ReferrerID = referrer.ID
	referral.HasDonated = true
	if err := s.Repo.SaveReferral(ctx, referral); err != nil {
		return err
	}

	bonus := &models.Contribution{
		ID:           uuid.NewString(),
		UserID:       referrer.ID,
		Kind:         models.KindReferralBonus,
		ImpactPoints: ReferralBonusPoints,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.Repo.CreateContribution(ctx, bonus); err != nil {
		return err
	}
	if err := s.Repo.AddPoints(ctx, referrer.ID, ReferralBonusPoints); err != nil {
		return err
	}
	zap.L().Info("referral bonus credited",
		zap.String("referrer_id", referrer.ID),
		zap.String("referred_id", referredID))

	_, err = s.Badges.EvaluateAndAward(ctx, referrer.ID)
	return err
}

// RegisterReferral links a new signup to the referrer behind a code. Called
// at signup time; the bonus itself waits for the first donation.
func (s *DonationService) RegisterReferral(ctx context.Context, referredID, code string) error {
	referrerID := strings.TrimPrefix(code, models.ReferralCodePrefix)
	referrer, err := s.Repo.GetSupporter(ctx, referrerID)
	if err != nil {
		referrer, err = s.Repo.GetSupporterByReferralCode(ctx, code)
		if err != nil {
			return err
		}
	}
	if referrer.ID == referredID {
		return &models.ValidationError{Field: "referral_code", Reason: "self-referral"}
	}
	existing, err := s.Repo.FindReferral(ctx, referredID, code)
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}
	return s.Repo.SaveReferral(ctx, &models.Referral{
		ID:         uuid.NewString(),
		ReferrerID: referrer.ID,
		ReferredID: referredID,
		Code:       code,
	})
}
