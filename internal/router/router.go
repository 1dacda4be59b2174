package router

import (
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"quizhub/internal/cache"
	"quizhub/internal/config"
	"quizhub/internal/handler/api"
	"quizhub/internal/jobs"
	"quizhub/internal/middleware"
	"quizhub/internal/repository"
)

// Setup configures all routes for the Echo server.
func Setup(
	e *echo.Echo,
	db *gorm.DB,
	cacheClient *cache.Cache,
	queue *jobs.Queue,
	cfg *config.Config,
	logger *zap.Logger,
) {
	// Global middleware
	e.Use(echomw.Recover())
	e.Use(middleware.CORS())

	// Repositories
	repos := &api.Repos{
		User:     repository.NewUserRepository(db),
		Subject:  repository.NewSubjectRepository(db),
		Chapter:  repository.NewChapterRepository(db),
		Quiz:     repository.NewQuizRepository(db),
		Question: repository.NewQuestionRepository(db),
		Score:    repository.NewScoreRepository(db),
	}

	// Handlers
	authHandler := api.NewAuthHandler(repos, &cfg.JWT, logger)
	subjectHandler := api.NewSubjectHandler(repos, cacheClient, logger)
	quizHandler := api.NewQuizHandler(repos, cacheClient, logger)
	scoreHandler := api.NewScoreHandler(repos, cacheClient, logger)
	exportHandler := api.NewExportHandler(queue, cfg.Export.Dir, logger)

	// Public routes
	e.POST("/api/register", authHandler.Register)
	e.POST("/api/login", authHandler.Login)
	e.POST("/api/admin/login", authHandler.AdminLogin)

	// Authenticated routes
	auth := e.Group("/api")
	auth.Use(middleware.JWTAuth(cfg.JWT.Secret))

	auth.POST("/logout", authHandler.Logout)
	auth.GET("/profile", authHandler.Profile)

	auth.GET("/subjects", subjectHandler.List)
	auth.GET("/subjects/:sub_id/chapters", subjectHandler.ListChapters)
	auth.GET("/chapters/:chp_id/quizzes", quizHandler.List)

	auth.GET("/quizzes/:q_id/start", quizHandler.Start)
	auth.POST("/quizzes/:q_id/submit", quizHandler.Submit)

	auth.GET("/scores", scoreHandler.List)
	auth.GET("/scores/:q_id", scoreHandler.Latest)
	auth.GET("/dashboard", scoreHandler.Dashboard)

	auth.POST("/export/user-scores", exportHandler.SubmitUserExport)
	auth.GET("/export/status/:task_id", exportHandler.Status)
	auth.GET("/export/download/:filename", exportHandler.Download)

	// Admin routes
	admin := e.Group("/api")
	admin.Use(middleware.JWTAuth(cfg.JWT.Secret))
	admin.Use(middleware.RequireAdmin())

	admin.POST("/subjects", subjectHandler.Create)
	admin.PUT("/subjects/:sub_id", subjectHandler.Update)
	admin.DELETE("/subjects/:sub_id", subjectHandler.Delete)

	admin.POST("/subjects/:sub_id/chapters", subjectHandler.CreateChapter)
	admin.PUT("/chapters/:chp_id", subjectHandler.UpdateChapter)
	admin.DELETE("/chapters/:chp_id", subjectHandler.DeleteChapter)

	admin.POST("/chapters/:chp_id/quizzes", quizHandler.Create)
	admin.PUT("/quizzes/:q_id", quizHandler.Update)
	admin.DELETE("/quizzes/:q_id", quizHandler.Delete)

	admin.GET("/quizzes/:q_id/questions", quizHandler.ListQuestions)
	admin.POST("/quizzes/:q_id/questions", quizHandler.CreateQuestion)
	admin.PUT("/questions/:ques_id", quizHandler.UpdateQuestion)
	admin.DELETE("/questions/:ques_id", quizHandler.DeleteQuestion)

	admin.GET("/admin/dashboard", scoreHandler.AdminDashboard)
	admin.GET("/admin/users", scoreHandler.SearchUsers)
	admin.GET("/admin/quizzes", scoreHandler.SearchQuizzes)
	admin.GET("/admin/scores", scoreHandler.AllScores)
	admin.POST("/export/all-scores", exportHandler.SubmitAllExport)
}
