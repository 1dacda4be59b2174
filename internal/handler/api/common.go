package api

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"quizhub/internal/models"
	"quizhub/internal/repository"
)

// Cache TTLs for the memoized read endpoints.
const (
	subjectsTTL  = 5 * time.Minute
	dashboardTTL = 2 * time.Minute
)

// Repos bundles all repositories needed by API handlers.
type Repos struct {
	User     *repository.UserRepository
	Subject  *repository.SubjectRepository
	Chapter  *repository.ChapterRepository
	Quiz     *repository.QuizRepository
	Question *repository.QuestionRepository
	Score    *repository.ScoreRepository
}

func errorJSON(c echo.Context, status int, msg string) error {
	return c.JSON(status, models.APIResponse{Error: msg})
}

func messageJSON(c echo.Context, status int, msg string) error {
	return c.JSON(status, models.APIResponse{Message: msg})
}

func notFound(c echo.Context, what string) error {
	return errorJSON(c, http.StatusNotFound, what+" not found")
}
