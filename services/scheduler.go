package services

import (
	"context"
	"time"

	"github.com/go-co-op/gocron/v2"
	"go.uber.org/zap"
)

// StartRefresher warms the leaderboard caches on a fixed cadence so reads
// after the TTL expires rarely pay the recompute. Returns the scheduler so
// the caller can Shutdown on exit.
func (s *LeaderboardService) StartRefresher(interval time.Duration) (gocron.Scheduler, error) {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	_, err = sched.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			s.Invalidate()
			if _, err := s.TopUsers(ctx, PathFilterAll); err != nil {
				zap.L().Warn("leaderboard refresh failed", zap.Error(err))
			}
			if _, err := s.TopTeams(ctx); err != nil {
				zap.L().Warn("team leaderboard refresh failed", zap.Error(err))
			}
		}),
	)
	if err != nil {
		return nil, err
	}

	sched.Start()
	return sched, nil
}
