package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"quizhub/internal/cache"
	"quizhub/internal/models"
	"quizhub/internal/repository"
)

// SubjectHandler covers subject and chapter CRUD. The subject listing is the
// hottest read in the system and is memoized; every write below invalidates
// the covering prefix before responding.
type SubjectHandler struct {
	repos  *Repos
	cache  *cache.Cache
	logger *zap.Logger
}

func NewSubjectHandler(repos *Repos, cache *cache.Cache, logger *zap.Logger) *SubjectHandler {
	return &SubjectHandler{repos: repos, cache: cache, logger: logger}
}

type chapterSummary struct {
	ID            string `json:"chp_id"`
	Name          string `json:"chp_name"`
	Description   string `json:"chp_desc"`
	QuestionCount int64  `json:"questionCount"`
}

type subjectSummary struct {
	ID          string           `json:"sub_id"`
	Name        string           `json:"sub_name"`
	Description string           `json:"sub_desc"`
	Chapters    []chapterSummary `json:"chapters"`
}

// List returns all subjects with their chapters and per-chapter question
// counts.
func (h *SubjectHandler) List(c echo.Context) error {
	ctx := c.Request().Context()
	result, err := cache.Cached(ctx, h.cache, subjectsTTL, cache.PrefixSubjects, "list", func() ([]subjectSummary, error) {
		return h.listSubjects()
	})
	if err != nil {
		h.logger.Error("subject list failed", zap.Error(err))
		return errorJSON(c, http.StatusInternalServerError, "Failed to load subjects")
	}
	return c.JSON(http.StatusOK, result)
}

func (h *SubjectHandler) listSubjects() ([]subjectSummary, error) {
	subjects, err := h.repos.Subject.FindAll()
	if err != nil {
		return nil, err
	}

	result := make([]subjectSummary, 0, len(subjects))
	for _, s := range subjects {
		chapters, err := h.repos.Chapter.FindBySubject(s.ID)
		if err != nil {
			return nil, err
		}
		summaries := make([]chapterSummary, 0, len(chapters))
		for _, ch := range chapters {
			count, err := h.repos.Chapter.CountQuestions(ch.ID)
			if err != nil {
				return nil, err
			}
			summaries = append(summaries, chapterSummary{
				ID:            ch.ID,
				Name:          ch.Name,
				Description:   ch.Description,
				QuestionCount: count,
			})
		}
		result = append(result, subjectSummary{
			ID:          s.ID,
			Name:        s.Name,
			Description: s.Description,
			Chapters:    summaries,
		})
	}
	return result, nil
}

type subjectRequest struct {
	ID          string `json:"sub_id"`
	Name        string `json:"sub_name"`
	Description string `json:"sub_desc"`
}

// Create inserts a subject. Admin only.
func (h *SubjectHandler) Create(c echo.Context) error {
	var req subjectRequest
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "Invalid request body")
	}
	if req.ID == "" || req.Name == "" {
		return errorJSON(c, http.StatusBadRequest, "sub_id and sub_name required")
	}

	exists, err := h.repos.Subject.Exists(req.ID)
	if err != nil {
		return errorJSON(c, http.StatusInternalServerError, "Failed to create subject")
	}
	if exists {
		return errorJSON(c, http.StatusBadRequest, "Subject already exists")
	}

	subject := &models.Subject{ID: req.ID, Name: req.Name, Description: req.Description}
	if err := h.repos.Subject.Create(subject); err != nil {
		h.logger.Error("subject create failed", zap.Error(err))
		return errorJSON(c, http.StatusInternalServerError, "Failed to create subject")
	}

	ctx := c.Request().Context()
	h.cache.InvalidatePrefix(ctx, cache.PrefixSubjects)
	h.cache.InvalidatePrefix(ctx, cache.PrefixDashboard)
	return messageJSON(c, http.StatusCreated, "Subject created")
}

// Update modifies a subject's name or description. Admin only.
func (h *SubjectHandler) Update(c echo.Context) error {
	id := c.Param("sub_id")
	subject, err := h.repos.Subject.FindByID(id)
	if err != nil {
		if repository.IsNotFound(err) {
			return notFound(c, "Subject")
		}
		return errorJSON(c, http.StatusInternalServerError, "Failed to update subject")
	}

	var req subjectRequest
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "Invalid request body")
	}
	updates := map[string]interface{}{}
	if req.Name != "" {
		updates["name"] = req.Name
	}
	if req.Description != "" {
		updates["description"] = req.Description
	}
	if len(updates) > 0 {
		if err := h.repos.Subject.Update(subject.ID, updates); err != nil {
			h.logger.Error("subject update failed", zap.Error(err))
			return errorJSON(c, http.StatusInternalServerError, "Failed to update subject")
		}
	}

	h.cache.InvalidatePrefix(c.Request().Context(), cache.PrefixSubjects)
	return messageJSON(c, http.StatusOK, "Subject updated")
}

// Delete removes a subject and everything under it. Admin only.
func (h *SubjectHandler) Delete(c echo.Context) error {
	id := c.Param("sub_id")
	exists, err := h.repos.Subject.Exists(id)
	if err != nil {
		return errorJSON(c, http.StatusInternalServerError, "Failed to delete subject")
	}
	if !exists {
		return notFound(c, "Subject")
	}

	if err := h.repos.Subject.Delete(id); err != nil {
		h.logger.Error("subject delete failed", zap.Error(err))
		return errorJSON(c, http.StatusInternalServerError, "Failed to delete subject")
	}

	ctx := c.Request().Context()
	h.cache.InvalidatePrefix(ctx, cache.PrefixSubjects)
	h.cache.InvalidatePrefix(ctx, cache.PrefixChapters)
	h.cache.InvalidatePrefix(ctx, cache.PrefixQuizzes)
	h.cache.InvalidatePrefix(ctx, cache.PrefixDashboard)
	return messageJSON(c, http.StatusOK, "Subject deleted")
}

// ListChapters returns the chapters of a subject.
func (h *SubjectHandler) ListChapters(c echo.Context) error {
	subID := c.Param("sub_id")
	ctx := c.Request().Context()
	chapters, err := cache.Cached(ctx, h.cache, subjectsTTL, cache.PrefixChapters, "by-subject", func() ([]models.Chapter, error) {
		return h.repos.Chapter.FindBySubject(subID)
	}, subID)
	if err != nil {
		h.logger.Error("chapter list failed", zap.Error(err))
		return errorJSON(c, http.StatusInternalServerError, "Failed to load chapters")
	}
	return c.JSON(http.StatusOK, chapters)
}

type chapterRequest struct {
	ID          string `json:"chp_id"`
	Name        string `json:"chp_name"`
	Description string `json:"chp_desc"`
}

// CreateChapter inserts a chapter under a subject. Admin only.
func (h *SubjectHandler) CreateChapter(c echo.Context) error {
	subID := c.Param("sub_id")
	var req chapterRequest
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "Invalid request body")
	}
	if req.ID == "" || req.Name == "" {
		return errorJSON(c, http.StatusBadRequest, "chp_id and chp_name required")
	}

	exists, err := h.repos.Chapter.Exists(req.ID)
	if err != nil {
		return errorJSON(c, http.StatusInternalServerError, "Failed to create chapter")
	}
	if exists {
		return errorJSON(c, http.StatusBadRequest, "Chapter already exists")
	}

	chapter := &models.Chapter{
		ID:          req.ID,
		Name:        req.Name,
		Description: req.Description,
		SubjectID:   subID,
	}
	if err := h.repos.Chapter.Create(chapter); err != nil {
		h.logger.Error("chapter create failed", zap.Error(err))
		return errorJSON(c, http.StatusInternalServerError, "Failed to create chapter")
	}

	ctx := c.Request().Context()
	h.cache.InvalidatePrefix(ctx, cache.PrefixSubjects)
	h.cache.InvalidatePrefix(ctx, cache.PrefixChapters)
	return messageJSON(c, http.StatusCreated, "Chapter created")
}

// UpdateChapter modifies a chapter. Admin only.
func (h *SubjectHandler) UpdateChapter(c echo.Context) error {
	id := c.Param("chp_id")
	chapter, err := h.repos.Chapter.FindByID(id)
	if err != nil {
		if repository.IsNotFound(err) {
			return notFound(c, "Chapter")
		}
		return errorJSON(c, http.StatusInternalServerError, "Failed to update chapter")
	}

	var req chapterRequest
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "Invalid request body")
	}
	updates := map[string]interface{}{}
	if req.Name != "" {
		updates["name"] = req.Name
	}
	if req.Description != "" {
		updates["description"] = req.Description
	}
	if len(updates) > 0 {
		if err := h.repos.Chapter.Update(chapter.ID, updates); err != nil {
			h.logger.Error("chapter update failed", zap.Error(err))
			return errorJSON(c, http.StatusInternalServerError, "Failed to update chapter")
		}
	}

	ctx := c.Request().Context()
	h.cache.InvalidatePrefix(ctx, cache.PrefixSubjects)
	h.cache.InvalidatePrefix(ctx, cache.PrefixChapters)
	return messageJSON(c, http.StatusOK, "Chapter updated")
}

// DeleteChapter removes a chapter and its quizzes and questions. Admin only.
func (h *SubjectHandler) DeleteChapter(c echo.Context) error {
	id := c.Param("chp_id")
	exists, err := h.repos.Chapter.Exists(id)
	if err != nil {
		return errorJSON(c, http.StatusInternalServerError, "Failed to delete chapter")
	}
	if !exists {
		return notFound(c, "Chapter")
	}

	if err := h.repos.Chapter.Delete(id); err != nil {
		h.logger.Error("chapter delete failed", zap.Error(err))
		return errorJSON(c, http.StatusInternalServerError, "Failed to delete chapter")
	}

	ctx := c.Request().Context()
	h.cache.InvalidatePrefix(ctx, cache.PrefixSubjects)
	h.cache.InvalidatePrefix(ctx, cache.PrefixChapters)
	h.cache.InvalidatePrefix(ctx, cache.PrefixQuizzes)
	h.cache.InvalidatePrefix(ctx, cache.PrefixDashboard)
	return messageJSON(c, http.StatusOK, "Chapter deleted")
}
