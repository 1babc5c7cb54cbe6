package service

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/Shreyansh-Bordia/Leetcode-Progress-Tracker/internal/models"
	"github.com/Shreyansh-Bordia/Leetcode-Progress-Tracker/internal/repository"
)

// CatalogService owns the shared question catalog and the per-user
// completion sets derived from it.
type CatalogService struct {
	questions *repository.QuestionRepository
	progress  *repository.ProgressRepository
	now       func() time.Time
}

// NewCatalogService creates a new catalog service.
func NewCatalogService(questions *repository.QuestionRepository, progress *repository.ProgressRepository) *CatalogService {
	return &CatalogService{
		questions: questions,
		progress:  progress,
		now:       time.Now,
	}
}

// AddQuestionInput carries the admin's add-question form fields.
type AddQuestionInput struct {
	Name         string            `json:"name"`
	Link         string            `json:"link"`
	Difficulty   models.Difficulty `json:"difficulty"`
	Tags         []string          `json:"tags"`
	VideoLink    string            `json:"videoLink"`
	NotesLink    string            `json:"notesLink"`
	SolutionLink string            `json:"solutionLink"`
}

// AddQuestion validates and stores a new question. On a validation
// failure nothing is written.
func (s *CatalogService) AddQuestion(ctx context.Context, input AddQuestionInput, addedBy string) (*models.Question, error) {
	name := strings.TrimSpace(input.Name)
	link := strings.TrimSpace(input.Link)
	if name == "" {
		return nil, models.NewValidationError("name", "question name is required")
	}
	if link == "" {
		return nil, models.NewValidationError("link", "question link is required")
	}
	if !strings.HasPrefix(link, "http") {
		return nil, models.NewValidationError("link", "must be a valid URL")
	}

	difficulty := input.Difficulty
	if difficulty == "" {
		difficulty = models.DifficultyEasy
	}
	if !difficulty.Valid() {
		return nil, models.NewValidationError("difficulty", "must be Easy, Medium or Hard")
	}

	var tags []string
	for _, tag := range input.Tags {
		if t := strings.TrimSpace(tag); t != "" {
			tags = append(tags, t)
		}
	}

	q := models.Question{
		Name:         name,
		Link:         link,
		AddedBy:      addedBy,
		AddedDate:    s.now().UTC(),
		Difficulty:   difficulty,
		Tags:         tags,
		VideoLink:    strings.TrimSpace(input.VideoLink),
		NotesLink:    strings.TrimSpace(input.NotesLink),
		SolutionLink: strings.TrimSpace(input.SolutionLink),
	}
	id, err := s.questions.Create(ctx, q)
	if err != nil {
		return nil, err
	}
	q.ID = id
	return &q, nil
}

// ListQuestions returns the catalog in canonical display order.
func (s *CatalogService) ListQuestions(ctx context.Context) ([]models.Question, error) {
	return s.questions.List(ctx)
}

// DeleteQuestion removes a question, then removes its id from every
// user's completion set. The cascade is best-effort: a cleanup failure
// leaves a dangling id and is only logged.
func (s *CatalogService) DeleteQuestion(ctx context.Context, id string) error {
	if err := s.questions.Delete(ctx, id); err != nil {
		return err
	}

	all, err := s.progress.All(ctx)
	if err != nil {
		log.Printf("Failed to read progress sets while cleaning up question %s: %v", id, err)
		return nil
	}
	changed := make(map[string][]string)
	for username, ids := range all {
		filtered := ids[:0]
		for _, qid := range ids {
			if qid != id {
				filtered = append(filtered, qid)
			}
		}
		if len(filtered) != len(ids) {
			changed[username] = filtered
		}
	}
	if len(changed) == 0 {
		return nil
	}
	if err := s.progress.ReplaceAll(ctx, changed); err != nil {
		log.Printf("Failed to clean up question %s from progress sets: %v", id, err)
	}
	return nil
}

// Partition splits the catalog into todo and completed subsequences for
// one user, both in catalog order.
func (s *CatalogService) Partition(questions []models.Question, completedIDs []string) (todo, completed []models.Question) {
	done := make(map[string]struct{}, len(completedIDs))
	for _, id := range completedIDs {
		done[id] = struct{}{}
	}
	todo = make([]models.Question, 0, len(questions))
	completed = make([]models.Question, 0, len(completedIDs))
	for _, q := range questions {
		if _, ok := done[q.ID]; ok {
			completed = append(completed, q)
		} else {
			todo = append(todo, q)
		}
	}
	return todo, completed
}

// ToggleCompletion marks a question done or not done for one user and
// returns the updated completion set. Setting an already-set state is a
// no-op.
func (s *CatalogService) ToggleCompletion(ctx context.Context, username, questionID string, completed bool) ([]string, error) {
	if questionID == "" {
		return nil, models.NewValidationError("questionId", "question id is required")
	}
	ids, err := s.progress.Get(ctx, username)
	if err != nil {
		return nil, err
	}

	has := false
	for _, id := range ids {
		if id == questionID {
			has = true
			break
		}
	}
	if completed == has {
		return ids, nil
	}

	var updated []string
	if completed {
		updated = append(append([]string{}, ids...), questionID)
	} else {
		updated = make([]string, 0, len(ids))
		for _, id := range ids {
			if id != questionID {
				updated = append(updated, id)
			}
		}
	}
	if err := s.progress.Set(ctx, username, updated); err != nil {
		return nil, err
	}
	return updated, nil
}

// Completion returns the user's completion set; a read failure degrades
// to an empty set.
func (s *CatalogService) Completion(ctx context.Context, username string) []string {
	ids, err := s.progress.Get(ctx, username)
	if err != nil {
		log.Printf("Failed to read progress for %s: %v", username, err)
		return []string{}
	}
	return ids
}

// Overview builds the admin panel's per-user progress rows.
func (s *CatalogService) Overview(ctx context.Context, questions []models.Question, usernames []string) []models.UserProgress {
	rows := make([]models.UserProgress, 0, len(usernames))
	for _, username := range usernames {
		ids := s.Completion(ctx, username)
		rows = append(rows, models.UserProgress{
			Username:  username,
			Completed: len(ids),
			Total:     len(questions),
			Done:      ids,
		})
	}
	return rows
}
