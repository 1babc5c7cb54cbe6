// Package ledger holds the daily-progress engine: pure functions over a
// user's sparse date -> solved-count map. A date with no entry counts as
// zero. All functions take "today" explicitly so callers control the
// clock.
package ledger

import (
	"sort"
	"time"

	"github.com/Shreyansh-Bordia/Leetcode-Progress-Tracker/internal/dateutil"
	"github.com/Shreyansh-Bordia/Leetcode-Progress-Tracker/internal/models"
)

// DailyCounts maps a calendar date to the number of questions solved
// that day. Absence means zero, not unknown.
type DailyCounts map[dateutil.Date]int

// ComputeStreak derives the summary statistics from a full daily-count
// map. CurrentStreak walks backward from today, counting consecutive
// days with a positive count; a missing day breaks the walk, and a zero
// count today means the current streak is zero.
func ComputeStreak(counts DailyCounts, today dateutil.Date) models.StreakSummary {
	current := 0
	for d := today; counts[d] > 0; d = d.PrevDay() {
		current++
	}

	monthTotal, allTime := 0, 0
	for d, c := range counts {
		allTime += c
		if d.SameMonth(today) {
			monthTotal += c
		}
	}

	return models.StreakSummary{
		CurrentStreak: current,
		LongestStreak: LongestStreak(counts),
		MonthTotal:    monthTotal,
		AllTimeTotal:  allTime,
	}
}

// LongestStreak returns the length, in days, of the longest run of
// calendar-consecutive dates with a positive count. A single recorded
// day is a streak of one.
func LongestStreak(counts DailyCounts) int {
	days := make([]dateutil.Date, 0, len(counts))
	for d, c := range counts {
		if c > 0 {
			days = append(days, d)
		}
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	longest, run := 0, 0
	for i, d := range days {
		if i > 0 && days[i-1].AddDays(1) == d {
			run++
		} else {
			run = 1
		}
		if run > longest {
			longest = run
		}
	}
	return longest
}

// ListMonth produces the calendar projection for one month: padding
// cells up to the month's first weekday, one cell per day, then padding
// cells completing the final week row. Today and past days are
// editable; future days are not.
func ListMonth(year int, month time.Month, counts DailyCounts, today dateutil.Date) models.MonthView {
	first := dateutil.Date{Year: year, Month: month, Day: 1}
	days := dateutil.DaysInMonth(year, month)

	cells := make([]models.MonthCell, 0, int(first.Weekday())+days)
	for i := 0; i < int(first.Weekday()); i++ {
		cells = append(cells, models.MonthCell{Padding: true})
	}
	for day := 1; day <= days; day++ {
		d := dateutil.Date{Year: year, Month: month, Day: day}
		future := d.After(today)
		cells = append(cells, models.MonthCell{
			Date:       d,
			Day:        day,
			Count:      counts[d],
			IsToday:    d == today,
			IsPast:     d.Before(today),
			IsFuture:   future,
			IsEditable: !future,
		})
	}
	for len(cells)%7 != 0 {
		cells = append(cells, models.MonthCell{Padding: true})
	}

	return models.MonthView{Year: year, Month: int(month), Cells: cells}
}

// ClampMonth keeps calendar navigation from going past the current
// month. Months after today's are clamped to today's.
func ClampMonth(year int, month time.Month, today dateutil.Date) (int, time.Month) {
	if year > today.Year || (year == today.Year && month > today.Month) {
		return today.Year, today.Month
	}
	return year, month
}

// ValidateEntry checks a recordDay/editDay request. The count must be a
// non-negative integer and the date must not be in the future.
func ValidateEntry(d dateutil.Date, count int, today dateutil.Date) error {
	if count < 0 {
		return models.NewValidationError("count", "must be zero or a positive number")
	}
	if d.After(today) {
		return models.NewValidationError("date", "cannot record progress for a future day")
	}
	return nil
}
