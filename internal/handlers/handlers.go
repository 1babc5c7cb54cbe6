package handlers

import (
	"context"
	"errors"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/Shreyansh-Bordia/Leetcode-Progress-Tracker/internal/models"
	"github.com/Shreyansh-Bordia/Leetcode-Progress-Tracker/internal/service"
)

// UserDirectory lists the known users for the admin overview.
type UserDirectory interface {
	List(ctx context.Context) ([]models.User, error)
}

// DashboardHandlers contains the HTTP handlers for the dashboard API.
type DashboardHandlers struct {
	authService     *service.AuthService
	catalogService  *service.CatalogService
	progressService *service.ProgressService
	watcher         *service.Watcher
	users           UserDirectory
}

// NewDashboardHandlers creates a new dashboard handlers instance.
func NewDashboardHandlers(
	authService *service.AuthService,
	catalogService *service.CatalogService,
	progressService *service.ProgressService,
	watcher *service.Watcher,
	users UserDirectory,
) *DashboardHandlers {
	return &DashboardHandlers{
		authService:     authService,
		catalogService:  catalogService,
		progressService: progressService,
		watcher:         watcher,
		users:           users,
	}
}

// HandleLogin handles POST /v1/auth/login
func (h *DashboardHandlers) HandleLogin(c *fiber.Ctx) error {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if req.Username == "" || req.Password == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "username and password are required",
		})
	}

	sess, err := h.authService.Authenticate(c.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrUnknownUser) || errors.Is(err, service.ErrWrongSecret) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid username or password",
			})
		}
		log.Printf("Error authenticating %s: %v", req.Username, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to log in",
		})
	}

	token, err := h.authService.IssueToken(sess)
	if err != nil {
		log.Printf("Error issuing token for %s: %v", sess.Identity, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to log in",
		})
	}

	// Live watches follow the session: attach on login, detach on logout.
	if err := h.watcher.AttachUser(context.Background(), sess.Identity); err != nil {
		log.Printf("Failed to attach watches for %s: %v", sess.Identity, err)
	}

	return c.JSON(fiber.Map{
		"token":       token,
		"identity":    sess.Identity,
		"role":        sess.Role,
		"displayName": sess.DisplayName,
	})
}

// HandleLogout handles POST /v1/auth/logout
func (h *DashboardHandlers) HandleLogout(c *fiber.Ctx) error {
	sess := SessionFrom(c)
	h.watcher.DetachUser(sess.Identity)
	return c.SendStatus(fiber.StatusNoContent)
}

// HandleListQuestions handles GET /v1/questions
func (h *DashboardHandlers) HandleListQuestions(c *fiber.Ctx) error {
	questions, notice := h.loadQuestions(c)
	resp := fiber.Map{"questions": questions}
	if notice != "" {
		resp["notice"] = notice
	}
	return c.JSON(resp)
}

// HandleAddQuestion handles POST /v1/questions (admin only)
func (h *DashboardHandlers) HandleAddQuestion(c *fiber.Ctx) error {
	var input service.AddQuestionInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	sess := SessionFrom(c)
	question, err := h.catalogService.AddQuestion(c.Context(), input, sess.DisplayName)
	if err != nil {
		if resp := validationResponse(c, err); resp != nil {
			return resp
		}
		log.Printf("Error adding question: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to add question",
		})
	}
	return c.Status(fiber.StatusCreated).JSON(question)
}

// HandleDeleteQuestion handles DELETE /v1/questions/:id (admin only)
func (h *DashboardHandlers) HandleDeleteQuestion(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.catalogService.DeleteQuestion(c.Context(), id); err != nil {
		log.Printf("Error deleting question %s: %v", id, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to delete question",
		})
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// HandleToggleCompletion handles PUT /v1/progress/:questionId
func (h *DashboardHandlers) HandleToggleCompletion(c *fiber.Ctx) error {
	var req struct {
		Completed bool `json:"completed"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	sess := SessionFrom(c)
	ids, err := h.catalogService.ToggleCompletion(c.Context(), sess.Identity, c.Params("questionId"), req.Completed)
	if err != nil {
		if resp := validationResponse(c, err); resp != nil {
			return resp
		}
		log.Printf("Error toggling completion for %s: %v", sess.Identity, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to update progress",
		})
	}
	return c.JSON(fiber.Map{"completed": ids})
}

// HandleRecordToday handles POST /v1/progress/daily
func (h *DashboardHandlers) HandleRecordToday(c *fiber.Ctx) error {
	count, resp := parseCountBody(c)
	if resp != nil {
		return resp
	}
	sess := SessionFrom(c)
	summary, err := h.progressService.RecordToday(c.Context(), sess.Identity, count)
	if err != nil {
		return h.progressError(c, sess.Identity, err)
	}
	return c.JSON(summary)
}

// HandleEditDay handles PUT /v1/progress/daily/:date
func (h *DashboardHandlers) HandleEditDay(c *fiber.Ctx) error {
	count, resp := parseCountBody(c)
	if resp != nil {
		return resp
	}
	sess := SessionFrom(c)
	summary, err := h.progressService.EditDay(c.Context(), sess.Identity, c.Params("date"), count)
	if err != nil {
		return h.progressError(c, sess.Identity, err)
	}
	return c.JSON(summary)
}

// HandleSummary handles GET /v1/progress/summary
func (h *DashboardHandlers) HandleSummary(c *fiber.Ctx) error {
	sess := SessionFrom(c)
	summary, err := h.progressService.Summary(c.Context(), sess.Identity)
	if err != nil {
		return h.progressError(c, sess.Identity, err)
	}
	return c.JSON(summary)
}

// HandleCalendar handles GET /v1/calendar/:year/:month
func (h *DashboardHandlers) HandleCalendar(c *fiber.Ctx) error {
	year, err1 := strconv.Atoi(c.Params("year"))
	month, err2 := strconv.Atoi(c.Params("month"))
	if err1 != nil || err2 != nil || month < 1 || month > 12 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "year and month must be numbers, month 1-12",
		})
	}
	sess := SessionFrom(c)
	view, err := h.progressService.Calendar(c.Context(), sess.Identity, year, time.Month(month))
	if err != nil {
		return h.progressError(c, sess.Identity, err)
	}
	return c.JSON(view)
}

// HandleDashboard handles GET /v1/dashboard: the role-appropriate
// projection the frontend renders from.
func (h *DashboardHandlers) HandleDashboard(c *fiber.Ctx) error {
	sess := SessionFrom(c)
	questions, notice := h.loadQuestions(c)

	if sess.Role == models.RoleAdmin {
		usernames := h.memberUsernames(c)
		overview := h.catalogService.Overview(c.Context(), questions, usernames)
		resp := fiber.Map{
			"questions": questions,
			"progress":  overview,
		}
		if notice != "" {
			resp["notice"] = notice
		}
		return c.JSON(resp)
	}

	completed, ok := h.watcher.Completion(sess.Identity)
	if !ok {
		completed = h.catalogService.Completion(c.Context(), sess.Identity)
	}
	todo, done := h.catalogService.Partition(questions, completed)

	summary, err := h.progressService.Summary(c.Context(), sess.Identity)
	if err != nil {
		log.Printf("Error computing summary for %s: %v", sess.Identity, err)
	}

	resp := fiber.Map{
		"todo":      todo,
		"completed": done,
		"summary":   summary,
	}
	if notice != "" {
		resp["notice"] = notice
	}
	return c.JSON(resp)
}

// loadQuestions reads the catalog from the live watch when synced,
// falling back to a direct store read. Read failures degrade to an
// empty catalog with a notice instead of blocking the view.
func (h *DashboardHandlers) loadQuestions(c *fiber.Ctx) ([]models.Question, string) {
	if questions, ok := h.watcher.Questions(); ok {
		return questions, ""
	}
	questions, err := h.catalogService.ListQuestions(c.Context())
	if err != nil {
		log.Printf("Error listing questions: %v", err)
		return []models.Question{}, "question list temporarily unavailable"
	}
	return questions, ""
}

// memberUsernames returns the non-admin usernames for the overview.
func (h *DashboardHandlers) memberUsernames(c *fiber.Ctx) []string {
	users, err := h.users.List(c.Context())
	if err != nil {
		log.Printf("Error listing users: %v", err)
		return nil
	}
	var usernames []string
	for _, u := range users {
		if u.Role != models.RoleAdmin {
			usernames = append(usernames, u.Username)
		}
	}
	return usernames
}

// progressError maps a progress failure to a response: validation
// errors come back as 422, everything else as a write failure the user
// must retry by repeating the action.
func (h *DashboardHandlers) progressError(c *fiber.Ctx, username string, err error) error {
	if resp := validationResponse(c, err); resp != nil {
		return resp
	}
	log.Printf("Error updating progress for %s: %v", username, err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": "Failed to update progress",
	})
}

// validationResponse renders a ValidationError as 422, or returns nil
// for other errors.
func validationResponse(c *fiber.Ctx, err error) error {
	var verr *models.ValidationError
	if !errors.As(err, &verr) {
		return nil
	}
	return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
		"error": verr.Message,
		"field": verr.Field,
	})
}

// parseCountBody reads {"count": ...} accepting a number or a numeric
// string. Non-numeric input defaults to 0 rather than erroring, which
// matches the dashboard's permissive input handling.
func parseCountBody(c *fiber.Ctx) (int, error) {
	var req struct {
		Count any `json:"count"`
	}
	if err := c.BodyParser(&req); err != nil {
		return 0, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	return CoerceCount(req.Count), nil
}

// CoerceCount converts loosely-typed count input to an integer.
// Numbers are truncated; numeric strings are parsed; anything else is 0.
func CoerceCount(v any) int {
	switch n := v.(type) {
	case float64:
		return int(n)
	case int:
		return n
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(n))
		if err != nil {
			return 0
		}
		return i
	default:
		return 0
	}
}
