package api

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"quizhub/internal/cache"
	"quizhub/internal/middleware"
	"quizhub/internal/models"
	"quizhub/internal/repository"
)

// QuizHandler covers quiz and question CRUD plus the attempt flow.
type QuizHandler struct {
	repos  *Repos
	cache  *cache.Cache
	logger *zap.Logger
}

func NewQuizHandler(repos *Repos, cache *cache.Cache, logger *zap.Logger) *QuizHandler {
	return &QuizHandler{repos: repos, cache: cache, logger: logger}
}

// List returns the quizzes of a chapter.
func (h *QuizHandler) List(c echo.Context) error {
	chpID := c.Param("chp_id")
	ctx := c.Request().Context()
	quizzes, err := cache.Cached(ctx, h.cache, subjectsTTL, cache.PrefixQuizzes, "by-chapter", func() ([]models.Quiz, error) {
		return h.repos.Quiz.FindByChapter(chpID)
	}, chpID)
	if err != nil {
		h.logger.Error("quiz list failed", zap.Error(err))
		return errorJSON(c, http.StatusInternalServerError, "Failed to load quizzes")
	}
	return c.JSON(http.StatusOK, quizzes)
}

type quizRequest struct {
	ID         string `json:"q_id"`
	Name       string `json:"q_name"`
	SubjectID  string `json:"sub_id"`
	DateOfQuiz string `json:"date_of_quiz"`
	Duration   string `json:"time_dur"`
	Remarks    string `json:"remarks"`
}

const quizDateLayout = "2006-01-02"

// Create inserts a quiz under a chapter. Admin only.
func (h *QuizHandler) Create(c echo.Context) error {
	chpID := c.Param("chp_id")
	var req quizRequest
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "Invalid request body")
	}
	if req.ID == "" || req.Name == "" || req.SubjectID == "" || req.DateOfQuiz == "" || req.Duration == "" {
		return errorJSON(c, http.StatusBadRequest, "Missing required fields")
	}
	date, err := time.Parse(quizDateLayout, req.DateOfQuiz)
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, "date_of_quiz must be YYYY-MM-DD")
	}

	exists, err := h.repos.Quiz.Exists(req.ID)
	if err != nil {
		return errorJSON(c, http.StatusInternalServerError, "Failed to create quiz")
	}
	if exists {
		return errorJSON(c, http.StatusBadRequest, "Quiz already exists")
	}

	quiz := &models.Quiz{
		ID:         req.ID,
		Name:       req.Name,
		ChapterID:  chpID,
		SubjectID:  req.SubjectID,
		DateOfQuiz: date,
		Duration:   req.Duration,
		Remarks:    req.Remarks,
	}
	if err := h.repos.Quiz.Create(quiz); err != nil {
		h.logger.Error("quiz create failed", zap.Error(err))
		return errorJSON(c, http.StatusInternalServerError, "Failed to create quiz")
	}

	ctx := c.Request().Context()
	h.cache.InvalidatePrefix(ctx, cache.PrefixQuizzes)
	h.cache.InvalidatePrefix(ctx, cache.PrefixDashboard)
	return messageJSON(c, http.StatusCreated, "Quiz created")
}

// Update modifies a quiz. Admin only.
func (h *QuizHandler) Update(c echo.Context) error {
	id := c.Param("q_id")
	quiz, err := h.repos.Quiz.FindByID(id)
	if err != nil {
		if repository.IsNotFound(err) {
			return notFound(c, "Quiz")
		}
		return errorJSON(c, http.StatusInternalServerError, "Failed to update quiz")
	}

	var req quizRequest
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "Invalid request body")
	}
	updates := map[string]interface{}{}
	if req.Name != "" {
		updates["name"] = req.Name
	}
	if req.DateOfQuiz != "" {
		date, err := time.Parse(quizDateLayout, req.DateOfQuiz)
		if err != nil {
			return errorJSON(c, http.StatusBadRequest, "date_of_quiz must be YYYY-MM-DD")
		}
		updates["date_of_quiz"] = date
	}
	if req.Duration != "" {
		updates["duration"] = req.Duration
	}
	if req.Remarks != "" {
		updates["remarks"] = req.Remarks
	}
	if len(updates) > 0 {
		if err := h.repos.Quiz.Update(quiz.ID, updates); err != nil {
			h.logger.Error("quiz update failed", zap.Error(err))
			return errorJSON(c, http.StatusInternalServerError, "Failed to update quiz")
		}
	}

	h.cache.InvalidatePrefix(c.Request().Context(), cache.PrefixQuizzes)
	return messageJSON(c, http.StatusOK, "Quiz updated")
}

// Delete removes a quiz and its questions. Admin only.
func (h *QuizHandler) Delete(c echo.Context) error {
	id := c.Param("q_id")
	exists, err := h.repos.Quiz.Exists(id)
	if err != nil {
		return errorJSON(c, http.StatusInternalServerError, "Failed to delete quiz")
	}
	if !exists {
		return notFound(c, "Quiz")
	}

	if err := h.repos.Quiz.Delete(id); err != nil {
		h.logger.Error("quiz delete failed", zap.Error(err))
		return errorJSON(c, http.StatusInternalServerError, "Failed to delete quiz")
	}

	ctx := c.Request().Context()
	h.cache.InvalidatePrefix(ctx, cache.PrefixQuizzes)
	h.cache.InvalidatePrefix(ctx, cache.PrefixDashboard)
	return messageJSON(c, http.StatusOK, "Quiz deleted")
}

// ListQuestions returns a quiz's questions with answers. Admin only.
func (h *QuizHandler) ListQuestions(c echo.Context) error {
	questions, err := h.repos.Question.FindByQuiz(c.Param("q_id"))
	if err != nil {
		h.logger.Error("question list failed", zap.Error(err))
		return errorJSON(c, http.StatusInternalServerError, "Failed to load questions")
	}
	return c.JSON(http.StatusOK, questions)
}

type questionRequest struct {
	ID        string   `json:"ques_id"`
	SubjectID string   `json:"sub_id"`
	ChapterID string   `json:"chp_id"`
	Statement string   `json:"statement"`
	Options   []string `json:"options"`
	Answer    string   `json:"answer"`
}

// CreateQuestion inserts a question into a quiz. Admin only.
func (h *QuizHandler) CreateQuestion(c echo.Context) error {
	qID := c.Param("q_id")
	var req questionRequest
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "Invalid request body")
	}
	if req.ID == "" || req.SubjectID == "" || req.ChapterID == "" || req.Statement == "" ||
		len(req.Options) == 0 || req.Answer == "" {
		return errorJSON(c, http.StatusBadRequest, "Missing required fields")
	}

	exists, err := h.repos.Question.Exists(req.ID)
	if err != nil {
		return errorJSON(c, http.StatusInternalServerError, "Failed to create question")
	}
	if exists {
		return errorJSON(c, http.StatusBadRequest, "Question already exists")
	}

	question := &models.Question{
		ID:        req.ID,
		SubjectID: req.SubjectID,
		ChapterID: req.ChapterID,
		QuizID:    qID,
		Statement: req.Statement,
		Options:   req.Options,
		Answer:    req.Answer,
	}
	if err := h.repos.Question.Create(question); err != nil {
		h.logger.Error("question create failed", zap.Error(err))
		return errorJSON(c, http.StatusInternalServerError, "Failed to create question")
	}

	// Question counts appear in the subject listing.
	ctx := c.Request().Context()
	h.cache.InvalidatePrefix(ctx, cache.PrefixSubjects)
	return messageJSON(c, http.StatusCreated, "Question created")
}

// UpdateQuestion modifies a question. Admin only.
func (h *QuizHandler) UpdateQuestion(c echo.Context) error {
	id := c.Param("ques_id")
	question, err := h.repos.Question.FindByID(id)
	if err != nil {
		if repository.IsNotFound(err) {
			return notFound(c, "Question")
		}
		return errorJSON(c, http.StatusInternalServerError, "Failed to update question")
	}

	var req questionRequest
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "Invalid request body")
	}
	updates := map[string]interface{}{}
	if req.Statement != "" {
		updates["statement"] = req.Statement
	}
	if len(req.Options) > 0 {
		updates["options"] = models.StringList(req.Options)
	}
	if req.Answer != "" {
		updates["answer"] = req.Answer
	}
	if len(updates) > 0 {
		if err := h.repos.Question.Update(question.ID, updates); err != nil {
			h.logger.Error("question update failed", zap.Error(err))
			return errorJSON(c, http.StatusInternalServerError, "Failed to update question")
		}
	}

	return messageJSON(c, http.StatusOK, "Question updated")
}

// DeleteQuestion removes a question. Admin only.
func (h *QuizHandler) DeleteQuestion(c echo.Context) error {
	id := c.Param("ques_id")
	exists, err := h.repos.Question.Exists(id)
	if err != nil {
		return errorJSON(c, http.StatusInternalServerError, "Failed to delete question")
	}
	if !exists {
		return notFound(c, "Question")
	}

	if err := h.repos.Question.Delete(id); err != nil {
		h.logger.Error("question delete failed", zap.Error(err))
		return errorJSON(c, http.StatusInternalServerError, "Failed to delete question")
	}

	ctx := c.Request().Context()
	h.cache.InvalidatePrefix(ctx, cache.PrefixSubjects)
	return messageJSON(c, http.StatusOK, "Question deleted")
}

type attemptQuestion struct {
	ID        string   `json:"ques_id"`
	Statement string   `json:"statement"`
	Options   []string `json:"options"`
}

// Start returns a quiz with its questions stripped of answers.
func (h *QuizHandler) Start(c echo.Context) error {
	id := c.Param("q_id")
	quiz, err := h.repos.Quiz.FindByID(id)
	if err != nil {
		if repository.IsNotFound(err) {
			return notFound(c, "Quiz")
		}
		return errorJSON(c, http.StatusInternalServerError, "Failed to load quiz")
	}

	questions, err := h.repos.Question.FindByQuiz(id)
	if err != nil {
		return errorJSON(c, http.StatusInternalServerError, "Failed to load quiz")
	}

	stripped := make([]attemptQuestion, 0, len(questions))
	for _, q := range questions {
		stripped = append(stripped, attemptQuestion{
			ID:        q.ID,
			Statement: q.Statement,
			Options:   q.Options,
		})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"q_id":         quiz.ID,
		"q_name":       quiz.Name,
		"date_of_quiz": quiz.DateOfQuiz.Format(quizDateLayout),
		"time_dur":     quiz.Duration,
		"remarks":      quiz.Remarks,
		"questions":    stripped,
	})
}

type submitRequest struct {
	// Answers maps question ID to the selected option.
	Answers map[string]string `json:"answers"`
}

// Submit scores an attempt server-side and records it. Only the aggregate
// score is persisted; per-question answer records are not kept.
func (h *QuizHandler) Submit(c echo.Context) error {
	id := c.Param("q_id")
	exists, err := h.repos.Quiz.Exists(id)
	if err != nil {
		return errorJSON(c, http.StatusInternalServerError, "Failed to submit quiz")
	}
	if !exists {
		return notFound(c, "Quiz")
	}

	var req submitRequest
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "Invalid request body")
	}
	if len(req.Answers) == 0 {
		return errorJSON(c, http.StatusBadRequest, "No answers submitted")
	}

	questions, err := h.repos.Question.FindByQuiz(id)
	if err != nil {
		return errorJSON(c, http.StatusInternalServerError, "Failed to submit quiz")
	}

	correct := 0
	for _, q := range questions {
		if answer, ok := req.Answers[q.ID]; ok && answer == q.Answer {
			correct++
		}
	}
	scoreValue := 0.0
	if len(questions) > 0 {
		scoreValue = float64(correct) / float64(len(questions)) * 100
	}

	score := &models.Score{
		ID:         uuid.NewString(),
		QuizID:     id,
		UserID:     middleware.UserID(c),
		Timestamp:  time.Now().UTC(),
		TotalScore: scoreValue,
	}
	if err := h.repos.Score.Create(score); err != nil {
		h.logger.Error("score insert failed", zap.Error(err))
		return errorJSON(c, http.StatusInternalServerError, "Failed to submit quiz")
	}

	// Dashboard aggregates depend on scores.
	h.cache.InvalidatePrefix(c.Request().Context(), cache.PrefixDashboard)

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "Quiz submitted",
		"score":   scoreValue,
		"correct": correct,
		"total":   len(questions),
	})
}
