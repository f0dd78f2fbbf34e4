package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecolearn/ecolearn-api/internal/models"
	appErrors "github.com/ecolearn/ecolearn-api/pkg/errors"
)

type userRepoStub struct {
	balance    int
	found      bool
	addErr     error
	addedDelta []int
	ranked     []models.User
	rankedErr  error
}

func (s *userRepoStub) AddEcoPoints(ctx context.Context, studentID string, delta int) (int, bool, error) {
	s.addedDelta = append(s.addedDelta, delta)
	return s.balance, s.found, s.addErr
}

func (s *userRepoStub) RankedStudents(ctx context.Context, minPoints, limit int) ([]models.User, error) {
	return s.ranked, s.rankedErr
}

type badgeRepoStub struct {
	badges  []models.Badge
	granted []string
}

func (s *badgeRepoStub) Create(ctx context.Context, badge *models.Badge) error { return nil }

func (s *badgeRepoStub) ListAscending(ctx context.Context) ([]models.Badge, error) {
	return s.badges, nil
}

func (s *badgeRepoStub) Grant(ctx context.Context, userID, badgeID string) error {
	s.granted = append(s.granted, badgeID)
	return nil
}

func (s *badgeRepoStub) ListForUser(ctx context.Context, userID string) ([]models.Badge, error) {
	return nil, nil
}

type leaderboardRepoStub struct {
	replaced [][]models.LeaderboardEntry
	top      []models.LeaderboardEntry
}

func (s *leaderboardRepoStub) ReplaceAll(ctx context.Context, entries []models.LeaderboardEntry) error {
	s.replaced = append(s.replaced, entries)
	return nil
}

func (s *leaderboardRepoStub) TopN(ctx context.Context, n int) ([]models.LeaderboardEntry, error) {
	if n < len(s.top) {
		return s.top[:n], nil
	}
	return s.top, nil
}

type winnerRepoStub struct {
	created *models.WinnerAnnouncement
	latest  *models.WinnerAnnouncement
}

func (s *winnerRepoStub) CreateAnnouncement(ctx context.Context, ann *models.WinnerAnnouncement) error {
	ann.ID = "ann-1"
	ann.Active = true
	s.created = ann
	return nil
}

func (s *winnerRepoStub) LatestActive(ctx context.Context) (*models.WinnerAnnouncement, error) {
	if s.latest == nil {
		return nil, sql.ErrNoRows
	}
	return s.latest, nil
}

type cacheStub struct {
	values map[string][]byte
	sets   int
}

func (s *cacheStub) Get(ctx context.Context, key string, dest interface{}) error {
	return appErrors.ErrCacheMiss
}

func (s *cacheStub) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	s.sets++
	return nil
}

func (s *cacheStub) DeleteByPattern(ctx context.Context, pattern string) error { return nil }

type winnerNotifierStub struct {
	notified []int
}

func (s *winnerNotifierStub) NotifyWinner(ctx context.Context, studentID string, position int, period models.WinnerPeriod) {
	s.notified = append(s.notified, position)
}

func newGamificationFixture(users *userRepoStub, badges *badgeRepoStub) (*GamificationService, *leaderboardRepoStub, *winnerRepoStub, *winnerNotifierStub) {
	leaderboard := &leaderboardRepoStub{}
	winners := &winnerRepoStub{}
	notifier := &winnerNotifierStub{}
	svc := NewGamificationService(users, badges, leaderboard, winners, &cacheStub{}, notifier, nil, nil, nil, GamificationConfig{
		LeaderboardMaxLimit: 5,
		LeaderboardCacheTTL: time.Minute,
	})
	return svc, leaderboard, winners, notifier
}

func TestAwardPointsGrantsEarnedBadges(t *testing.T) {
	users := &userRepoStub{balance: 10, found: true}
	badges := &badgeRepoStub{badges: []models.Badge{
		{ID: "b-starter", Name: "Green Starter", ThresholdPoints: 10},
		{ID: "b-hero", Name: "Eco Hero", ThresholdPoints: 50},
	}}
	svc, _, _, _ := newGamificationFixture(users, badges)

	balance, err := svc.AwardPoints(context.Background(), "student-1", 10, "material")
	require.NoError(t, err)
	assert.Equal(t, 10, balance)
	// threshold met exactly earns the badge, higher thresholds stay locked
	assert.Equal(t, []string{"b-starter"}, badges.granted)
}

func TestAwardPointsIdempotentResweep(t *testing.T) {
	users := &userRepoStub{balance: 60, found: true}
	badges := &badgeRepoStub{badges: []models.Badge{
		{ID: "b-starter", ThresholdPoints: 10},
		{ID: "b-hero", ThresholdPoints: 50},
	}}
	svc, _, _, _ := newGamificationFixture(users, badges)

	_, err := svc.AwardPoints(context.Background(), "student-1", 10, "quiz")
	require.NoError(t, err)
	assert.Equal(t, []string{"b-starter", "b-hero"}, badges.granted)
}

func TestAwardPointsUnknownStudentDropped(t *testing.T) {
	users := &userRepoStub{found: false}
	badges := &badgeRepoStub{badges: []models.Badge{{ID: "b-starter", ThresholdPoints: 10}}}
	svc, leaderboard, _, _ := newGamificationFixture(users, badges)

	balance, err := svc.AwardPoints(context.Background(), "ghost", 10, "material")
	require.NoError(t, err)
	assert.Zero(t, balance)
	assert.Empty(t, badges.granted)
	assert.Empty(t, leaderboard.replaced)
}

func TestRecomputeLeaderboardDenseRank(t *testing.T) {
	users := &userRepoStub{ranked: []models.User{
		{ID: "a", Name: "Ana", EcoPoints: 50},
		{ID: "b", Name: "Ben", EcoPoints: 50},
		{ID: "c", Name: "Cem", EcoPoints: 30},
	}}
	svc, leaderboard, _, _ := newGamificationFixture(users, &badgeRepoStub{})

	require.NoError(t, svc.RecomputeLeaderboard(context.Background()))
	require.Len(t, leaderboard.replaced, 1)

	entries := leaderboard.replaced[0]
	require.Len(t, entries, 3)
	assert.Equal(t, 1, entries[0].Rank)
	assert.Equal(t, 1, entries[1].Rank)
	assert.Equal(t, 2, entries[2].Rank)
}

func TestGetLeaderboardClampsLimit(t *testing.T) {
	top := make([]models.LeaderboardEntry, 10)
	for i := range top {
		top[i] = models.LeaderboardEntry{StudentID: "s", Rank: i + 1}
	}
	svc, leaderboard, _, _ := newGamificationFixture(&userRepoStub{}, &badgeRepoStub{})
	leaderboard.top = top

	entries, err := svc.GetLeaderboard(context.Background(), 1000)
	require.NoError(t, err)
	assert.Len(t, entries, 5)
}

func TestConfigureWinnersPublishesAndNotifies(t *testing.T) {
	users := &userRepoStub{ranked: []models.User{
		{ID: "a", Name: "Ana", EcoPoints: 90},
		{ID: "b", Name: "Ben", EcoPoints: 70},
	}}
	svc, _, winners, notifier := newGamificationFixture(users, &badgeRepoStub{})

	ann, err := svc.ConfigureWinners(context.Background(), "admin-1", models.ConfigureWinnersRequest{
		Period:       "weekly",
		MinPoints:    50,
		WinnersCount: 3,
	})
	require.NoError(t, err)
	require.NotNil(t, winners.created)
	require.Len(t, ann.Winners, 2)
	assert.Equal(t, 1, ann.Winners[0].Position)
	assert.Equal(t, 2, ann.Winners[1].Position)
	assert.Equal(t, []int{1, 2}, notifier.notified)
}

func TestLatestWinnersNotFound(t *testing.T) {
	svc, _, _, _ := newGamificationFixture(&userRepoStub{}, &badgeRepoStub{})

	_, err := svc.LatestWinners(context.Background())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
