package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Shreyansh-Bordia/Leetcode-Progress-Tracker/internal/models"
	"github.com/Shreyansh-Bordia/Leetcode-Progress-Tracker/internal/repository"
	"github.com/Shreyansh-Bordia/Leetcode-Progress-Tracker/internal/store"
)

// newProgressService pins the clock to 2024-05-04 UTC.
func newProgressService() (*ProgressService, *repository.DailyProgressRepository) {
	daily := repository.NewDailyProgressRepository(store.NewMemoryStore())
	svc := NewProgressService(daily, time.UTC)
	svc.now = func() time.Time {
		return time.Date(2024, time.May, 4, 15, 0, 0, 0, time.UTC)
	}
	return svc, daily
}

func TestRecordToday(t *testing.T) {
	ctx := context.Background()
	svc, _ := newProgressService()

	_, err := svc.EditDay(ctx, "shiwangi", "2024-05-01", 2)
	require.NoError(t, err)
	_, err = svc.EditDay(ctx, "shiwangi", "2024-05-03", 1)
	require.NoError(t, err)

	summary, err := svc.RecordToday(ctx, "shiwangi", 3)
	require.NoError(t, err)
	assert.Equal(t, models.StreakSummary{
		CurrentStreak: 2,
		LongestStreak: 2,
		MonthTotal:    6,
		AllTimeTotal:  6,
	}, summary)

	// Overwriting today replaces the count instead of adding to it.
	summary, err = svc.RecordToday(ctx, "shiwangi", 1)
	require.NoError(t, err)
	assert.Equal(t, 4, summary.MonthTotal)
}

func TestEditDayValidation(t *testing.T) {
	ctx := context.Background()
	svc, daily := newProgressService()

	_, err := svc.EditDay(ctx, "shiwangi", "05/01/2024", 2)
	var verr *models.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "date", verr.Field)

	_, err = svc.EditDay(ctx, "shiwangi", "2024-05-05", 2)
	require.ErrorAs(t, err, &verr)

	_, err = svc.EditDay(ctx, "shiwangi", "2024-05-01", -1)
	require.ErrorAs(t, err, &verr)

	// None of the rejected edits reached the store.
	counts, err := daily.LoadAll(ctx, "shiwangi")
	require.NoError(t, err)
	assert.Empty(t, counts)
}

func TestCalendarClampsToCurrentMonth(t *testing.T) {
	ctx := context.Background()
	svc, _ := newProgressService()

	view, err := svc.Calendar(ctx, "shiwangi", 2024, time.June)
	require.NoError(t, err)
	assert.Equal(t, 2024, view.Year)
	assert.Equal(t, int(time.May), view.Month)
}

func TestCalendarCarriesCounts(t *testing.T) {
	ctx := context.Background()
	svc, _ := newProgressService()

	_, err := svc.EditDay(ctx, "shiwangi", "2024-05-02", 3)
	require.NoError(t, err)

	view, err := svc.Calendar(ctx, "shiwangi", 2024, time.May)
	require.NoError(t, err)

	var found bool
	for _, cell := range view.Cells {
		if !cell.Padding && cell.Day == 2 {
			found = true
			assert.Equal(t, 3, cell.Count)
			assert.True(t, cell.IsEditable)
		}
	}
	assert.True(t, found)
}
