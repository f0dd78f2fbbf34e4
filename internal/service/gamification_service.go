package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/ecolearn/ecolearn-api/internal/models"
	appErrors "github.com/ecolearn/ecolearn-api/pkg/errors"
)

type gamificationUserRepository interface {
	AddEcoPoints(ctx context.Context, studentID string, delta int) (int, bool, error)
	RankedStudents(ctx context.Context, minPoints, limit int) ([]models.User, error)
}

type badgeRepository interface {
	Create(ctx context.Context, badge *models.Badge) error
	ListAscending(ctx context.Context) ([]models.Badge, error)
	Grant(ctx context.Context, userID, badgeID string) error
	ListForUser(ctx context.Context, userID string) ([]models.Badge, error)
}

type leaderboardRepository interface {
	ReplaceAll(ctx context.Context, entries []models.LeaderboardEntry) error
	TopN(ctx context.Context, n int) ([]models.LeaderboardEntry, error)
}

type winnerRepository interface {
	CreateAnnouncement(ctx context.Context, ann *models.WinnerAnnouncement) error
	LatestActive(ctx context.Context) (*models.WinnerAnnouncement, error)
}

type leaderboardCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

type winnerNotifier interface {
	NotifyWinner(ctx context.Context, studentID string, position int, period models.WinnerPeriod)
}

// GamificationConfig tunes leaderboard exposure and caching.
type GamificationConfig struct {
	LeaderboardMaxLimit int
	LeaderboardCacheTTL time.Duration
}

const leaderboardCacheKeyPrefix = "leaderboard:top:"

// GamificationService owns the ecoPoints ledger, badge grants, the
// leaderboard snapshot and winner announcements.
type GamificationService struct {
	users       gamificationUserRepository
	badges      badgeRepository
	leaderboard leaderboardRepository
	winners     winnerRepository
	cache       leaderboardCache
	notifier    winnerNotifier
	metrics     *MetricsService
	validator   *validator.Validate
	logger      *zap.Logger
	config      GamificationConfig

	// recomputeMu serialises full leaderboard rebuilds so concurrent awards
	// cannot interleave a stale snapshot over a fresh one.
	recomputeMu sync.Mutex
}

// NewGamificationService constructs a GamificationService.
func NewGamificationService(
	users gamificationUserRepository,
	badges badgeRepository,
	leaderboard leaderboardRepository,
	winners winnerRepository,
	cache leaderboardCache,
	notifier winnerNotifier,
	metrics *MetricsService,
	validate *validator.Validate,
	logger *zap.Logger,
	config GamificationConfig,
) *GamificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if config.LeaderboardMaxLimit <= 0 {
		config.LeaderboardMaxLimit = 100
	}
	if config.LeaderboardCacheTTL <= 0 {
		config.LeaderboardCacheTTL = time.Minute
	}
	return &GamificationService{
		users:       users,
		badges:      badges,
		leaderboard: leaderboard,
		winners:     winners,
		cache:       cache,
		notifier:    notifier,
		metrics:     metrics,
		validator:   validate,
		logger:      logger,
		config:      config,
	}
}

// AwardPoints atomically applies delta to the student's balance (floored at
// zero), grants any newly earned badges and rebuilds the leaderboard. An
// award aimed at a missing or non-student account is logged and dropped
// rather than failing the triggering request.
func (s *GamificationService) AwardPoints(ctx context.Context, studentID string, delta int, reason string) (int, error) {
	balance, found, err := s.users.AddEcoPoints(ctx, studentID, delta)
	if err != nil {
		return 0, fmt.Errorf("award points: %w", err)
	}
	if !found {
		s.logger.Warn("dropped points award for unknown student",
			zap.String("student_id", studentID),
			zap.Int("delta", delta),
			zap.String("reason", reason))
		s.metrics.RecordAward(false, 0)
		return 0, nil
	}
	s.metrics.RecordAward(true, delta)

	s.logger.Info("eco points awarded",
		zap.String("student_id", studentID),
		zap.Int("delta", delta),
		zap.Int("balance", balance),
		zap.String("reason", reason))

	if err := s.sweepBadges(ctx, studentID, balance); err != nil {
		s.logger.Warn("badge sweep failed", zap.String("student_id", studentID), zap.Error(err))
	}

	if err := s.RecomputeLeaderboard(ctx); err != nil {
		s.logger.Warn("leaderboard recompute failed", zap.Error(err))
	}

	return balance, nil
}

// sweepBadges grants every badge whose threshold the balance now meets.
// Grants are idempotent, so re-sweeping already-held badges is harmless.
func (s *GamificationService) sweepBadges(ctx context.Context, studentID string, balance int) error {
	badges, err := s.badges.ListAscending(ctx)
	if err != nil {
		return fmt.Errorf("list badges: %w", err)
	}
	for _, badge := range badges {
		if badge.ThresholdPoints > balance {
			break
		}
		if err := s.badges.Grant(ctx, studentID, badge.ID); err != nil {
			return fmt.Errorf("grant badge %s: %w", badge.ID, err)
		}
	}
	return nil
}

// RecomputeLeaderboard rebuilds the full snapshot from current balances.
// Rebuilds are serialised; rank is dense with ties broken by ecoPoints
// descending then account id.
func (s *GamificationService) RecomputeLeaderboard(ctx context.Context) error {
	s.recomputeMu.Lock()
	defer s.recomputeMu.Unlock()

	started := time.Now()
	defer func() {
		s.metrics.ObserveLeaderboardRecompute(time.Since(started))
	}()

	students, err := s.users.RankedStudents(ctx, 0, 0)
	if err != nil {
		return fmt.Errorf("rank students: %w", err)
	}

	entries := make([]models.LeaderboardEntry, 0, len(students))
	rank := 0
	lastPoints := -1
	for _, student := range students {
		if student.EcoPoints != lastPoints {
			rank++
			lastPoints = student.EcoPoints
		}
		entries = append(entries, models.LeaderboardEntry{
			StudentID:   student.ID,
			StudentName: student.Name,
			EcoPoints:   student.EcoPoints,
			Rank:        rank,
		})
	}

	if err := s.leaderboard.ReplaceAll(ctx, entries); err != nil {
		return fmt.Errorf("replace leaderboard: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.DeleteByPattern(ctx, leaderboardCacheKeyPrefix+"*"); err != nil {
			s.logger.Warn("failed to invalidate leaderboard cache", zap.Error(err))
		}
	}
	return nil
}

// GetLeaderboard returns the top-n snapshot, capped at the configured limit
// and served from cache when fresh.
func (s *GamificationService) GetLeaderboard(ctx context.Context, limit int) ([]models.LeaderboardEntry, error) {
	if limit <= 0 || limit > s.config.LeaderboardMaxLimit {
		limit = s.config.LeaderboardMaxLimit
	}

	key := fmt.Sprintf("%s%d", leaderboardCacheKeyPrefix, limit)
	if s.cache != nil {
		var cached []models.LeaderboardEntry
		if err := s.cache.Get(ctx, key, &cached); err == nil {
			return cached, nil
		} else if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("leaderboard cache read failed", zap.Error(err))
		}
	}

	entries, err := s.leaderboard.TopN(ctx, limit)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read leaderboard")
	}
	if entries == nil {
		entries = []models.LeaderboardEntry{}
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, entries, s.config.LeaderboardCacheTTL); err != nil {
			s.logger.Warn("leaderboard cache write failed", zap.Error(err))
		}
	}
	return entries, nil
}

// ConfigureWinners publishes a new winner announcement built from the
// current balances. Any previously active announcement is deactivated in the
// same transaction.
func (s *GamificationService) ConfigureWinners(ctx context.Context, adminID string, req models.ConfigureWinnersRequest) (*models.WinnerAnnouncement, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid winners payload")
	}

	students, err := s.users.RankedStudents(ctx, req.MinPoints, req.WinnersCount)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to select winners")
	}

	ann := &models.WinnerAnnouncement{
		Period:       models.WinnerPeriod(req.Period),
		MinPoints:    req.MinPoints,
		WinnersCount: req.WinnersCount,
	}
	for i, student := range students {
		ann.Winners = append(ann.Winners, models.Winner{
			StudentID:   student.ID,
			StudentName: student.Name,
			EcoPoints:   student.EcoPoints,
			Position:    i + 1,
		})
	}

	if err := s.winners.CreateAnnouncement(ctx, ann); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to publish winners")
	}

	s.logger.Info("winner announcement published",
		zap.String("announcement_id", ann.ID),
		zap.String("admin_id", adminID),
		zap.Int("winners", len(ann.Winners)))

	if s.notifier != nil {
		for _, winner := range ann.Winners {
			s.notifier.NotifyWinner(ctx, winner.StudentID, winner.Position, ann.Period)
		}
	}
	return ann, nil
}

// LatestWinners returns the active announcement, or not-found when no
// announcement has been published yet.
func (s *GamificationService) LatestWinners(ctx context.Context) (*models.WinnerAnnouncement, error) {
	ann, err := s.winners.LatestActive(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "no active winner announcement")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load winners")
	}
	return ann, nil
}

// CreateBadge defines a new badge. Existing holders are unaffected until the
// next award sweeps their balance.
func (s *GamificationService) CreateBadge(ctx context.Context, req models.CreateBadgeRequest) (*models.Badge, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid badge payload")
	}
	badge := &models.Badge{
		Name:            req.Name,
		Description:     req.Description,
		ThresholdPoints: req.ThresholdPoints,
		IconURL:         req.IconURL,
	}
	if err := s.badges.Create(ctx, badge); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create badge")
	}
	return badge, nil
}

// ListBadges returns all badge definitions ordered by threshold.
func (s *GamificationService) ListBadges(ctx context.Context) ([]models.Badge, error) {
	badges, err := s.badges.ListAscending(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list badges")
	}
	if badges == nil {
		badges = []models.Badge{}
	}
	return badges, nil
}

// StudentBadges returns the badges a student has earned.
func (s *GamificationService) StudentBadges(ctx context.Context, studentID string) ([]models.Badge, error) {
	badges, err := s.badges.ListForUser(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list student badges")
	}
	if badges == nil {
		badges = []models.Badge{}
	}
	return badges, nil
}
