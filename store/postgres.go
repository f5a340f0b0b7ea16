package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"donor-engage-system/models"
)

// Postgres is the production Repository on GORM. Team membership and badge
// awards lean on the schema: the unique index on team_members.user_id
// enforces exclusive membership, and the composite index on badge_awards
// makes awarding a conditional insert.
type Postgres struct {
	db *gorm.DB
}

func OpenPostgres(dsn string) (*Postgres, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}
	return &Postgres{db: db}, nil
}

func NewPostgres(db *gorm.DB) *Postgres {
	return &Postgres{db: db}
}

func (p *Postgres) AutoMigrate() error {
	return p.db.AutoMigrate(
		&models.Supporter{},
		&models.Contribution{},
		&models.Referral{},
		&models.Team{},
		&models.TeamMember{},
		&models.BadgeAward{},
	)
}

func (p *Postgres) CreateSupporter(ctx context.Context, s *models.Supporter) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	if s.ReferralCode == "" {
		s.ReferralCode = models.ReferralCodeFor(s.ID)
	}
	return p.db.WithContext(ctx).Create(s).Error
}

func (p *Postgres) GetSupporter(ctx context.Context, id string) (*models.Supporter, error) {
	var s models.Supporter
	err := p.db.WithContext(ctx).First(&s, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &models.NotFoundError{Kind: "supporter", ID: id}
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (p *Postgres) GetSupporterByReferralCode(ctx context.Context, code string) (*models.Supporter, error) {
	var s models.Supporter
	err := p.db.WithContext(ctx).First(&s, "referral_code = ?", code).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &models.NotFoundError{Kind: "supporter", ID: code}
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (p *Postgres) ListSupporters(ctx context.Context) ([]models.Supporter, error) {
	var out []models.Supporter
	err := p.db.WithContext(ctx).Order("created_at ASC").Find(&out).Error
	return out, err
}

func (p *Postgres) AddPoints(ctx context.Context, userID string, delta int64) error {
	res := p.db.WithContext(ctx).Model(&models.Supporter{}).
		Where("id = ?", userID).
		UpdateColumn("total_points", gorm.Expr("total_points + ?", delta))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return &models.NotFoundError{Kind: "supporter", ID: userID}
	}
	return nil
}

func (p *Postgres) SetTotalPoints(ctx context.Context, userID string, total int64) error {
	res := p.db.WithContext(ctx).Model(&models.Supporter{}).
		Where("id = ?", userID).
		UpdateColumn("total_points", total)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return &models.NotFoundError{Kind: "supporter", ID: userID}
	}
	return nil
}

func (p *Postgres) CreateContribution(ctx context.Context, c *models.Contribution) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return p.db.WithContext(ctx).Create(c).Error
}

func (p *Postgres) UpsertContribution(ctx context.Context, c *models.Contribution) (bool, error) {
	// Contribution rows are immutable snapshots; a conflicting id means we
	// already hold the record and must not touch its points.
	res := p.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoNothing: true,
	}).Create(c)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (p *Postgres) ListContributions(ctx context.Context, userID string) ([]models.Contribution, error) {
	var out []models.Contribution
	err := p.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&out).Error
	return out, err
}

func (p *Postgres) ListAllContributions(ctx context.Context) ([]models.Contribution, error) {
	var out []models.Contribution
	err := p.db.WithContext(ctx).Order("created_at ASC").Find(&out).Error
	return out, err
}

func (p *Postgres) SaveReferral(ctx context.Context, r *models.Referral) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return p.db.WithContext(ctx).Save(r).Error
}

func (p *Postgres) FindReferral(ctx context.Context, referredID, code string) (*models.Referral, error) {
	var r models.Referral
	err := p.db.WithContext(ctx).
		First(&r, "referred_id = ? AND code = ?", referredID, code).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (p *Postgres) ListReferrals(ctx context.Context, referrerID string) ([]models.Referral, error) {
	var out []models.Referral
	err := p.db.WithContext(ctx).
		Where("referrer_id = ?", referrerID).
		Order("created_at ASC").
		Find(&out).Error
	return out, err
}

func (p *Postgres) CreateTeam(ctx context.Context, t *models.Team) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return p.db.WithContext(ctx).Omit("Members").Create(t).Error
}

func (p *Postgres) GetTeam(ctx context.Context, id string) (*models.Team, error) {
	var t models.Team
	err := p.db.WithContext(ctx).
		Preload("Members", func(db *gorm.DB) *gorm.DB {
			return db.Order("joined_at ASC")
		}).
		First(&t, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &models.NotFoundError{Kind: "team", ID: id}
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (p *Postgres) ListTeams(ctx context.Context) ([]models.Team, error) {
	var out []models.Team
	err := p.db.WithContext(ctx).
		Preload("Members", func(db *gorm.DB) *gorm.DB {
			return db.Order("joined_at ASC")
		}).
		Order("created_at ASC").
		Find(&out).Error
	return out, err
}

func (p *Postgres) DeleteTeam(ctx context.Context, id string) error {
	return p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var memberIDs []string
		if err := tx.Model(&models.TeamMember{}).
			Where("team_id = ?", id).
			Pluck("user_id", &memberIDs).Error; err != nil {
			return err
		}
		if len(memberIDs) > 0 {
			if err := tx.Model(&models.Supporter{}).
				Where("id IN ?", memberIDs).
				UpdateColumn("team_id", nil).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("team_id = ?", id).Delete(&models.TeamMember{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Team{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return &models.NotFoundError{Kind: "team", ID: id}
		}
		return nil
	})
}

func (p *Postgres) SetLeader(ctx context.Context, teamID, leaderID string) error {
	res := p.db.WithContext(ctx).Model(&models.Team{}).
		Where("id = ?", teamID).
		UpdateColumn("leader_id", leaderID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return &models.NotFoundError{Kind: "team", ID: teamID}
	}
	return nil
}

func (p *Postgres) GetMembership(ctx context.Context, userID string) (*models.TeamMember, error) {
	var m models.TeamMember
	err := p.db.WithContext(ctx).First(&m, "user_id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (p *Postgres) AddMember(ctx context.Context, teamID, userID string) error {
	return p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Team{}).Where("id = ?", teamID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return &models.NotFoundError{Kind: "team", ID: teamID}
		}

		member := models.TeamMember{
			ID:     uuid.NewString(),
			TeamID: teamID,
			UserID: userID,
		}
		if err := tx.Create(&member).Error; err != nil {
			// The unique index on user_id catches the join race.
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
				var existing models.TeamMember
				if tx.First(&existing, "user_id = ?", userID).Error == nil {
					return &models.AlreadyMemberError{UserID: userID, TeamID: existing.TeamID}
				}
				return &models.AlreadyMemberError{UserID: userID}
			}
			return err
		}

		return tx.Model(&models.Supporter{}).
			Where("id = ?", userID).
			UpdateColumn("team_id", teamID).Error
	})
}

func (p *Postgres) RemoveMember(ctx context.Context, userID string) error {
	return p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("user_id = ?", userID).Delete(&models.TeamMember{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return &models.NotAMemberError{UserID: userID}
		}
		return tx.Model(&models.Supporter{}).
			Where("id = ?", userID).
			UpdateColumn("team_id", nil).Error
	})
}

func (p *Postgres) AwardBadge(ctx context.Context, userID, badgeID string) (bool, error) {
	award := models.BadgeAward{
		ID:      uuid.NewString(),
		UserID:  userID,
		BadgeID: badgeID,
	}
	res := p.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "badge_id"}},
		DoNothing: true,
	}).Create(&award)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (p *Postgres) ListBadges(ctx context.Context, userID string) ([]string, error) {
	var out []string
	err := p.db.WithContext(ctx).Model(&models.BadgeAward{}).
		Where("user_id = ?", userID).
		Order("awarded_at ASC").
		Pluck("badge_id", &out).Error
	return out, err
}

var _ Repository = (*Postgres)(nil)
