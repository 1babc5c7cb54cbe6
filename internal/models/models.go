package models

import (
	"time"

	"github.com/Shreyansh-Bordia/Leetcode-Progress-Tracker/internal/dateutil"
)

// Difficulty of a practice question.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "Easy"
	DifficultyMedium Difficulty = "Medium"
	DifficultyHard   Difficulty = "Hard"
)

// Valid reports whether d is one of the known difficulty levels.
func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

// Role of an authenticated principal.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// Question is one shared practice question. Identity is the store-assigned
// ID; questions are immutable once created except for deletion.
type Question struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Link         string     `json:"link"`
	AddedBy      string     `json:"addedBy"`
	AddedDate    time.Time  `json:"addedDate"`
	Difficulty   Difficulty `json:"difficulty"`
	Tags         []string   `json:"tags,omitempty"`
	VideoLink    string     `json:"videoLink,omitempty"`
	NotesLink    string     `json:"notesLink,omitempty"`
	SolutionLink string     `json:"solutionLink,omitempty"`
}

// User is a known principal from the credential table.
type User struct {
	Username    string     `json:"username" db:"username"`
	DisplayName string     `json:"displayName" db:"display_name"`
	Role        Role       `json:"role" db:"role"`
	LastLoginAt *time.Time `json:"lastLoginAt,omitempty" db:"last_login_at"`
}

// Session identifies an authenticated principal for the duration of a
// login. Persisted client-side; not a security boundary.
type Session struct {
	Identity    string `json:"identity"`
	Role        Role   `json:"role"`
	DisplayName string `json:"displayName"`
}

// StreakSummary is derived from a user's full daily-count map. Never
// persisted; recomputed on demand.
type StreakSummary struct {
	CurrentStreak int `json:"currentStreak"`
	LongestStreak int `json:"longestStreak"`
	MonthTotal    int `json:"monthTotal"`
	AllTimeTotal  int `json:"allTimeTotal"`
}

// MonthCell is one calendar cell in a month view. Padding cells fill the
// slots before the month's first weekday and carry no data.
type MonthCell struct {
	Date       dateutil.Date `json:"date"`
	Day        int           `json:"day"`
	Count      int           `json:"count"`
	IsToday    bool          `json:"isToday"`
	IsPast     bool          `json:"isPast"`
	IsFuture   bool          `json:"isFuture"`
	IsEditable bool          `json:"isEditable"`
	Padding    bool          `json:"padding,omitempty"`
}

// MonthView is the calendar projection for one month.
type MonthView struct {
	Year  int         `json:"year"`
	Month int         `json:"month"`
	Cells []MonthCell `json:"cells"`
}

// UserProgress is one row of the admin progress overview.
type UserProgress struct {
	Username  string   `json:"username"`
	Completed int      `json:"completed"`
	Total     int      `json:"total"`
	Done      []string `json:"done"`
}
