package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"quizhub/internal/cache"
	"quizhub/internal/middleware"
	"quizhub/internal/models"
	"quizhub/internal/repository"
)

// ScoreHandler covers score history and dashboards.
type ScoreHandler struct {
	repos  *Repos
	cache  *cache.Cache
	logger *zap.Logger
}

func NewScoreHandler(repos *Repos, cache *cache.Cache, logger *zap.Logger) *ScoreHandler {
	return &ScoreHandler{repos: repos, cache: cache, logger: logger}
}

type scoreView struct {
	ID         string  `json:"score_id"`
	QuizID     string  `json:"q_id"`
	QuizName   string  `json:"q_name"`
	TotalScore float64 `json:"total_scored"`
	Timestamp  string  `json:"time_stamp_of_attempt"`
}

func (h *ScoreHandler) scoreViews(scores []models.Score) ([]scoreView, error) {
	// Quiz names resolve through a small local cache so a long history does
	// not turn into one lookup per row.
	names := map[string]string{}
	views := make([]scoreView, 0, len(scores))
	for _, s := range scores {
		name, ok := names[s.QuizID]
		if !ok {
			var err error
			name, err = h.repos.Quiz.NameByID(s.QuizID)
			if err != nil {
				return nil, err
			}
			names[s.QuizID] = name
		}
		views = append(views, scoreView{
			ID:         s.ID,
			QuizID:     s.QuizID,
			QuizName:   name,
			TotalScore: s.TotalScore,
			Timestamp:  s.Timestamp.Format(time.RFC3339),
		})
	}
	return views, nil
}

// List returns the caller's full attempt history, oldest first.
func (h *ScoreHandler) List(c echo.Context) error {
	scores, err := h.repos.Score.FindByUser(middleware.UserID(c))
	if err != nil {
		h.logger.Error("score list failed", zap.Error(err))
		return errorJSON(c, http.StatusInternalServerError, "Failed to load scores")
	}
	views, err := h.scoreViews(scores)
	if err != nil {
		return errorJSON(c, http.StatusInternalServerError, "Failed to load scores")
	}
	return c.JSON(http.StatusOK, views)
}

// Latest returns the caller's most recent score on one quiz.
func (h *ScoreHandler) Latest(c echo.Context) error {
	qID := c.Param("q_id")
	score, err := h.repos.Score.LatestForUserQuiz(middleware.UserID(c), qID)
	if err != nil {
		if repository.IsNotFound(err) {
			return errorJSON(c, http.StatusNotFound, "No score found for this quiz")
		}
		h.logger.Error("score lookup failed", zap.Error(err))
		return errorJSON(c, http.StatusInternalServerError, "Failed to load score")
	}

	name, err := h.repos.Quiz.NameByID(score.QuizID)
	if err != nil {
		return errorJSON(c, http.StatusInternalServerError, "Failed to load score")
	}
	return c.JSON(http.StatusOK, scoreView{
		ID:         score.ID,
		QuizID:     score.QuizID,
		QuizName:   name,
		TotalScore: score.TotalScore,
		Timestamp:  score.Timestamp.Format(time.RFC3339),
	})
}

type userDashboard struct {
	AttemptCount int     `json:"attempt_count"`
	AverageScore float64 `json:"average_score"`
	BestScore    float64 `json:"best_score"`
	LastAttempt  string  `json:"last_attempt,omitempty"`
}

// Dashboard summarizes the caller's attempt history.
func (h *ScoreHandler) Dashboard(c echo.Context) error {
	scores, err := h.repos.Score.FindByUser(middleware.UserID(c))
	if err != nil {
		h.logger.Error("dashboard load failed", zap.Error(err))
		return errorJSON(c, http.StatusInternalServerError, "Failed to load dashboard")
	}

	d := userDashboard{AttemptCount: len(scores)}
	if len(scores) > 0 {
		total := 0.0
		best := scores[0].TotalScore
		for _, s := range scores {
			total += s.TotalScore
			if s.TotalScore > best {
				best = s.TotalScore
			}
		}
		d.AverageScore = total / float64(len(scores))
		d.BestScore = best
		d.LastAttempt = scores[len(scores)-1].Timestamp.Format(time.RFC3339)
	}
	return c.JSON(http.StatusOK, d)
}

type adminDashboard struct {
	UserCount    int64   `json:"user_count"`
	SubjectCount int64   `json:"subject_count"`
	QuizCount    int64   `json:"quiz_count"`
	AttemptCount int64   `json:"attempt_count"`
	AverageScore float64 `json:"average_score"`
}

// AdminDashboard returns site-wide aggregates. Memoized; score submissions
// invalidate it.
func (h *ScoreHandler) AdminDashboard(c echo.Context) error {
	ctx := c.Request().Context()
	d, err := cache.Cached(ctx, h.cache, dashboardTTL, cache.PrefixDashboard, "admin", func() (adminDashboard, error) {
		return h.adminDashboard()
	})
	if err != nil {
		h.logger.Error("admin dashboard failed", zap.Error(err))
		return errorJSON(c, http.StatusInternalServerError, "Failed to load dashboard")
	}
	return c.JSON(http.StatusOK, d)
}

func (h *ScoreHandler) adminDashboard() (adminDashboard, error) {
	var d adminDashboard
	var err error
	if d.UserCount, err = h.repos.User.Count(); err != nil {
		return d, err
	}
	if d.SubjectCount, err = h.repos.Subject.Count(); err != nil {
		return d, err
	}
	if d.QuizCount, err = h.repos.Quiz.Count(); err != nil {
		return d, err
	}
	if d.AttemptCount, err = h.repos.Score.Count(); err != nil {
		return d, err
	}
	if d.AverageScore, err = h.repos.Score.Average(); err != nil {
		return d, err
	}
	return d, nil
}

// SearchUsers lists users matching ?q=, everyone when absent. Admin only.
func (h *ScoreHandler) SearchUsers(c echo.Context) error {
	users, err := h.repos.User.Search(c.QueryParam("q"))
	if err != nil {
		h.logger.Error("user search failed", zap.Error(err))
		return errorJSON(c, http.StatusInternalServerError, "Failed to load users")
	}
	return c.JSON(http.StatusOK, users)
}

// SearchQuizzes lists quizzes matching ?q=. Admin only.
func (h *ScoreHandler) SearchQuizzes(c echo.Context) error {
	quizzes, err := h.repos.Quiz.Search(c.QueryParam("q"))
	if err != nil {
		h.logger.Error("quiz search failed", zap.Error(err))
		return errorJSON(c, http.StatusInternalServerError, "Failed to load quizzes")
	}
	return c.JSON(http.StatusOK, quizzes)
}

// AllScores lists every attempt, optionally filtered by ?user_id= and
// ?quiz_id=. Admin only.
func (h *ScoreHandler) AllScores(c echo.Context) error {
	var userID uint
	if raw := c.QueryParam("user_id"); raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return errorJSON(c, http.StatusBadRequest, "user_id must be numeric")
		}
		userID = uint(parsed)
	}

	scores, err := h.repos.Score.Filter(userID, c.QueryParam("quiz_id"))
	if err != nil {
		h.logger.Error("score filter failed", zap.Error(err))
		return errorJSON(c, http.StatusInternalServerError, "Failed to load scores")
	}
	views, err := h.scoreViews(scores)
	if err != nil {
		return errorJSON(c, http.StatusInternalServerError, "Failed to load scores")
	}
	return c.JSON(http.StatusOK, views)
}
