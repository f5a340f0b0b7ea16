package main

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"donor-engage-system/config"
	"donor-engage-system/logger"
	"donor-engage-system/models"
	"donor-engage-system/services"
	"donor-engage-system/store"
	"donor-engage-system/utils"
)

// Demo dataset for staging environments: a handful of supporters across the
// four paths, two teams, and enough history to light up most of the badge
// catalog.

type seedSupporter struct {
	email     string
	name      string
	anonymous bool
	language  string
}

type seedDonation struct {
	email  string
	path   models.Path
	amount float64
}

var seedSupporters = []seedSupporter{
	{email: "sarah.chen@example.org", name: "Sarah Chen", language: "en"},
	{email: "marie.dubois@example.org", name: "Marie Dubois", language: "fr"},
	{email: "james.wilson@example.org", name: "James Wilson", language: "en"},
	{email: "fatima.alaoui@example.org", name: "Fatima Alaoui", language: "fr"},
	{email: "anon.donor@example.org", name: "Quiet Giver", anonymous: true, language: "en"},
	{email: "david.okafor@example.org", name: "David Okafor", language: "en"},
}

var seedDonations = []seedDonation{
	{email: "sarah.chen@example.org", path: models.PathWisdom, amount: 50},
	{email: "sarah.chen@example.org", path: models.PathCourage, amount: 75},
	{email: "sarah.chen@example.org", path: models.PathProtection, amount: 120},
	{email: "marie.dubois@example.org", path: models.PathProtection, amount: 200},
	{email: "marie.dubois@example.org", path: models.PathProtection, amount: 80},
	{email: "james.wilson@example.org", path: models.PathWisdom, amount: 25},
	{email: "fatima.alaoui@example.org", path: models.PathCourage, amount: 60},
	{email: "anon.donor@example.org", path: models.PathProtection, amount: 500},
	{email: "david.okafor@example.org", path: models.PathWisdom, amount: 40},
}

var seedVolunteerHours = map[string]float64{
	"james.wilson@example.org": 12,
	"david.okafor@example.org": 4,
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, reading environment variables directly")
	}
	conf, err := config.Load()
	if err != nil {
		log.Fatal("failed to load config: ", err)
	}
	if err := logger.Init(conf.Environment); err != nil {
		log.Fatal("failed to initialize logger: ", err)
	}

	repo, err := store.OpenPostgres(conf.DatabaseURL)
	if err != nil {
		zap.L().Fatal("failed to connect to database", zap.Error(err))
	}
	if err := repo.AutoMigrate(); err != nil {
		zap.L().Fatal("failed to migrate database", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := seed(ctx, repo); err != nil {
		zap.L().Fatal("seeding failed", zap.Error(err))
	}
	if conf.R2AccessKeyID != "" {
		if err := utils.InitR2(conf); err != nil {
			zap.L().Fatal("failed to initialize R2 client", zap.Error(err))
		}
		uploadBadgeIcons(ctx)
	}
	zap.L().Info("seed complete")
}

// uploadBadgeIcons pushes any local badge icon assets to the CDN bucket.
// Missing files are skipped; icons are optional next to the inline emoji.
func uploadBadgeIcons(ctx context.Context) {
	for _, badge := range models.BadgeCatalog {
		path := filepath.Join("assets", "badges", badge.ID+".png")
		f, err := os.Open(path)
		if err != nil {
			continue
		}
		url, err := utils.UploadBadgeIcon(ctx, "badges/"+badge.ID+".png", f, "image/png")
		_ = f.Close()
		if err != nil {
			zap.L().Warn("failed to upload badge icon",
				zap.String("badge_id", badge.ID),
				zap.Error(err))
			continue
		}
		zap.L().Info("badge icon uploaded",
			zap.String("badge_id", badge.ID),
			zap.String("url", url))
	}
}

func seed(ctx context.Context, repo store.Repository) error {
	badges := services.NewBadgeService(repo)
	donations := services.NewDonationService(repo, badges, nil)
	teams := services.NewTeamService(repo)

	ids := make(map[string]string)
	for _, s := range seedSupporters {
		sup := &models.Supporter{
			Email:             s.email,
			FullName:          s.name,
			IsAnonymous:       s.anonymous,
			PreferredLanguage: s.language,
		}
		if err := repo.CreateSupporter(ctx, sup); err != nil {
			return err
		}
		ids[s.email] = sup.ID
	}

	for _, d := range seedDonations {
		if _, err := donations.RecordDonation(ctx, ids[d.email], d.amount, d.path, ""); err != nil {
			return err
		}
	}
	for email, hours := range seedVolunteerHours {
		if _, err := donations.RecordVolunteerHours(ctx, ids[email], hours, time.Time{}); err != nil {
			return err
		}
	}

	// Marie signed up with Sarah's code; her next donation settles the bonus.
	sarah, err := repo.GetSupporter(ctx, ids["sarah.chen@example.org"])
	if err != nil {
		return err
	}
	if err := donations.RegisterReferral(ctx, ids["marie.dubois@example.org"], sarah.ReferralCode); err != nil {
		return err
	}

	shelterTeam, err := teams.CreateTeam(ctx, "Shelter Builders", "Raising for emergency shelter nights", ids["sarah.chen@example.org"])
	if err != nil {
		return err
	}
	if err := teams.JoinTeam(ctx, shelterTeam.ID, ids["marie.dubois@example.org"]); err != nil {
		return err
	}
	if err := teams.JoinTeam(ctx, shelterTeam.ID, ids["fatima.alaoui@example.org"]); err != nil {
		return err
	}

	lineTeam, err := teams.CreateTeam(ctx, "Crisis Line Crew", "Keeping the line answered", ids["james.wilson@example.org"])
	if err != nil {
		return err
	}
	if err := teams.JoinTeam(ctx, lineTeam.ID, ids["david.okafor@example.org"]); err != nil {
		return err
	}

	// Joining a team can newly satisfy team badges; sweep everyone once more.
	for _, id := range ids {
		if _, err := badges.EvaluateAndAward(ctx, id); err != nil {
			return err
		}
	}
	return nil
}
