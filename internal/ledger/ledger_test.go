package ledger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Shreyansh-Bordia/Leetcode-Progress-Tracker/internal/dateutil"
	"github.com/Shreyansh-Bordia/Leetcode-Progress-Tracker/internal/models"
)

func day(s string) dateutil.Date {
	d, err := dateutil.Parse(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestCurrentStreak(t *testing.T) {
	today := day("2024-05-04")

	tests := []struct {
		name   string
		counts DailyCounts
		want   int
	}{
		{"no entries", DailyCounts{}, 0},
		{"today zero", DailyCounts{day("2024-05-04"): 0, day("2024-05-03"): 2}, 0},
		{"today missing breaks streak ending yesterday", DailyCounts{day("2024-05-03"): 2, day("2024-05-02"): 1}, 0},
		{"only today", DailyCounts{day("2024-05-04"): 1}, 1},
		{"three consecutive days", DailyCounts{day("2024-05-04"): 1, day("2024-05-03"): 2, day("2024-05-02"): 5}, 3},
		{"gap stops the walk", DailyCounts{day("2024-05-04"): 1, day("2024-05-02"): 5}, 1},
		{"zero stops the walk", DailyCounts{day("2024-05-04"): 1, day("2024-05-03"): 0, day("2024-05-02"): 5}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeStreak(tt.counts, today)
			assert.Equal(t, tt.want, got.CurrentStreak)
		})
	}
}

func TestLongestStreakCountsDays(t *testing.T) {
	// A single recorded day is a streak of one, not zero.
	assert.Equal(t, 1, LongestStreak(DailyCounts{day("2024-05-01"): 3}))

	// Two separate runs; the longer one wins.
	counts := DailyCounts{
		day("2024-04-01"): 1,
		day("2024-04-02"): 1,
		day("2024-04-03"): 1,
		day("2024-04-10"): 1,
		day("2024-04-11"): 1,
	}
	assert.Equal(t, 3, LongestStreak(counts))

	// Zero-count days do not extend a run.
	counts[day("2024-04-04")] = 0
	counts[day("2024-04-05")] = 2
	assert.Equal(t, 3, LongestStreak(counts))

	assert.Equal(t, 0, LongestStreak(DailyCounts{}))
	assert.Equal(t, 0, LongestStreak(DailyCounts{day("2024-05-01"): 0}))
}

func TestTotals(t *testing.T) {
	today := day("2024-05-04")
	counts := DailyCounts{
		day("2024-04-30"): 7,
		day("2024-05-01"): 2,
		day("2024-05-02"): 3,
		day("2024-05-04"): 1,
	}
	got := ComputeStreak(counts, today)
	assert.Equal(t, 6, got.MonthTotal)
	assert.Equal(t, 13, got.AllTimeTotal)
}

func TestComputeStreakScenario(t *testing.T) {
	// counts {05-01:2, 05-02:3, 05-04:1} with today = 05-04: only today
	// counts toward the current streak because 05-03 is missing.
	counts := DailyCounts{
		day("2024-05-01"): 2,
		day("2024-05-02"): 3,
		day("2024-05-04"): 1,
	}
	got := ComputeStreak(counts, day("2024-05-04"))
	assert.Equal(t, 1, got.CurrentStreak)
	assert.Equal(t, 2, got.LongestStreak)
	assert.Equal(t, 6, got.MonthTotal)
	assert.Equal(t, 6, got.AllTimeTotal)
}

func TestListMonth(t *testing.T) {
	today := day("2024-05-04")
	counts := DailyCounts{day("2024-05-02"): 3, day("2024-05-04"): 1}

	view := ListMonth(2024, time.May, counts, today)
	assert.Equal(t, 2024, view.Year)
	assert.Equal(t, 5, view.Month)

	// May 1st 2024 is a Wednesday: three padding cells, 31 days, then one
	// padding cell completing the last week row.
	require.Len(t, view.Cells, 3+31+1)
	for i := 0; i < 3; i++ {
		assert.True(t, view.Cells[i].Padding)
		assert.Zero(t, view.Cells[i].Day)
	}
	last := view.Cells[len(view.Cells)-1]
	assert.True(t, last.Padding)
	assert.Zero(t, last.Day)

	days := view.Cells[3 : 3+31]
	for i, cell := range days {
		assert.Equal(t, i+1, cell.Day)
		assert.Equal(t, cell.Date.After(today), cell.IsFuture)
		assert.Equal(t, !cell.IsFuture, cell.IsEditable)
	}
	assert.True(t, days[3].IsToday)
	assert.True(t, days[2].IsPast)
	assert.False(t, days[3].IsPast)
	assert.Equal(t, 3, days[1].Count)
	assert.Equal(t, 1, days[3].Count)
	assert.Equal(t, 0, days[0].Count)
	assert.True(t, days[4].IsFuture)
	assert.False(t, days[4].IsEditable)
}

func TestListMonthWeekAlignment(t *testing.T) {
	today := day("2026-03-15")

	// Every view is whole week rows.
	for month := time.January; month <= time.December; month++ {
		view := ListMonth(2024, month, DailyCounts{}, today)
		assert.Zero(t, len(view.Cells)%7, "month %s", month)
	}

	// February 2026 starts on a Sunday and spans exactly four weeks: no
	// padding on either side.
	view := ListMonth(2026, time.February, DailyCounts{}, today)
	require.Len(t, view.Cells, 28)
	assert.False(t, view.Cells[0].Padding)
	assert.False(t, view.Cells[27].Padding)
}

func TestClampMonth(t *testing.T) {
	today := day("2024-05-04")

	y, m := ClampMonth(2024, time.April, today)
	assert.Equal(t, 2024, y)
	assert.Equal(t, time.April, m)

	y, m = ClampMonth(2024, time.June, today)
	assert.Equal(t, 2024, y)
	assert.Equal(t, time.May, m)

	y, m = ClampMonth(2025, time.January, today)
	assert.Equal(t, 2024, y)
	assert.Equal(t, time.May, m)

	y, m = ClampMonth(2023, time.December, today)
	assert.Equal(t, 2023, y)
	assert.Equal(t, time.December, m)
}

func TestValidateEntry(t *testing.T) {
	today := day("2024-05-04")

	assert.NoError(t, ValidateEntry(today, 0, today))
	assert.NoError(t, ValidateEntry(day("2024-05-01"), 5, today))

	var verr *models.ValidationError
	err := ValidateEntry(today, -3, today)
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "count", verr.Field)

	err = ValidateEntry(day("2024-05-05"), 1, today)
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "date", verr.Field)
}
