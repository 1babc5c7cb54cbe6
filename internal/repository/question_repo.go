package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Shreyansh-Bordia/Leetcode-Progress-Tracker/internal/models"
	"github.com/Shreyansh-Bordia/Leetcode-Progress-Tracker/internal/store"
)

// QuestionsPath is the store path holding the shared question catalog.
const QuestionsPath = "questions"

// QuestionRepository reads and writes the shared question catalog in
// the real-time store.
type QuestionRepository struct {
	store store.Store
}

// NewQuestionRepository creates a new question repository.
func NewQuestionRepository(s store.Store) *QuestionRepository {
	return &QuestionRepository{store: s}
}

// List returns all questions in store insertion order. The store's
// order is the canonical display order and is never re-sorted.
func (r *QuestionRepository) List(ctx context.Context) ([]models.Question, error) {
	entries, err := r.store.Children(ctx, QuestionsPath)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	return DecodeQuestions(entries)
}

// Get returns one question by id, or nil if absent.
func (r *QuestionRepository) Get(ctx context.Context, id string) (*models.Question, error) {
	raw, err := r.store.Get(ctx, QuestionsPath+"/"+id)
	if err != nil {
		return nil, fmt.Errorf("get question %s: %w", id, err)
	}
	if raw == nil {
		return nil, nil
	}
	var q models.Question
	if err := json.Unmarshal(raw, &q); err != nil {
		return nil, fmt.Errorf("decode question %s: %w", id, err)
	}
	q.ID = id
	return &q, nil
}

// Create pushes a new question and returns the store-assigned id.
func (r *QuestionRepository) Create(ctx context.Context, q models.Question) (string, error) {
	q.ID = "" // identity lives in the path, not the record
	id, err := r.store.Push(ctx, QuestionsPath, q)
	if err != nil {
		return "", fmt.Errorf("create question: %w", err)
	}
	return id, nil
}

// Delete removes a question from the catalog.
func (r *QuestionRepository) Delete(ctx context.Context, id string) error {
	if err := r.store.Delete(ctx, QuestionsPath+"/"+id); err != nil {
		return fmt.Errorf("delete question %s: %w", id, err)
	}
	return nil
}

// DecodeQuestions converts raw store entries to questions, preserving
// entry order. Entries that fail to decode are skipped.
func DecodeQuestions(entries []store.Entry) ([]models.Question, error) {
	questions := make([]models.Question, 0, len(entries))
	for _, e := range entries {
		var q models.Question
		if err := json.Unmarshal(e.Value, &q); err != nil {
			continue
		}
		q.ID = e.ID
		questions = append(questions, q)
	}
	return questions, nil
}
