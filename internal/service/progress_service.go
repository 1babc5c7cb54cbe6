package service

import (
	"context"
	"time"

	"github.com/Shreyansh-Bordia/Leetcode-Progress-Tracker/internal/dateutil"
	"github.com/Shreyansh-Bordia/Leetcode-Progress-Tracker/internal/ledger"
	"github.com/Shreyansh-Bordia/Leetcode-Progress-Tracker/internal/models"
	"github.com/Shreyansh-Bordia/Leetcode-Progress-Tracker/internal/repository"
)

// ProgressService owns per-user daily counts and the streak/calendar
// views derived from them. All date math happens in the app's single
// fixed locale.
type ProgressService struct {
	daily *repository.DailyProgressRepository
	loc   *time.Location
	now   func() time.Time
}

// NewProgressService creates a new progress service.
func NewProgressService(daily *repository.DailyProgressRepository, loc *time.Location) *ProgressService {
	return &ProgressService{
		daily: daily,
		loc:   loc,
		now:   time.Now,
	}
}

func (s *ProgressService) today() dateutil.Date {
	return dateutil.FromTime(s.now().In(s.loc))
}

// RecordToday overwrites today's solved count and returns the refreshed
// summary.
func (s *ProgressService) RecordToday(ctx context.Context, username string, count int) (models.StreakSummary, error) {
	return s.record(ctx, username, s.today(), count)
}

// EditDay revises the count of a past day. Same validation and effect
// as RecordToday, with the date supplied by the caller.
func (s *ProgressService) EditDay(ctx context.Context, username, dateKey string, count int) (models.StreakSummary, error) {
	d, err := dateutil.Parse(dateKey)
	if err != nil {
		return models.StreakSummary{}, models.NewValidationError("date", "must be a YYYY-MM-DD date")
	}
	return s.record(ctx, username, d, count)
}

func (s *ProgressService) record(ctx context.Context, username string, d dateutil.Date, count int) (models.StreakSummary, error) {
	if err := ledger.ValidateEntry(d, count, s.today()); err != nil {
		return models.StreakSummary{}, err
	}
	if err := s.daily.SetCount(ctx, username, d, count); err != nil {
		return models.StreakSummary{}, err
	}
	return s.Summary(ctx, username)
}

// Summary recomputes the user's streak summary from the full count map.
func (s *ProgressService) Summary(ctx context.Context, username string) (models.StreakSummary, error) {
	counts, err := s.daily.LoadAll(ctx, username)
	if err != nil {
		return models.StreakSummary{}, err
	}
	return ledger.ComputeStreak(counts, s.today()), nil
}

// Calendar returns the month view for the requested month, clamped so
// navigation cannot go past the current month.
func (s *ProgressService) Calendar(ctx context.Context, username string, year int, month time.Month) (models.MonthView, error) {
	today := s.today()
	year, month = ledger.ClampMonth(year, month, today)
	counts, err := s.daily.LoadAll(ctx, username)
	if err != nil {
		return models.MonthView{}, err
	}
	return ledger.ListMonth(year, month, counts, today), nil
}
