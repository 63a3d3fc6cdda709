package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sekolahkita/siakad-backend/internal/config"
	"github.com/sekolahkita/siakad-backend/internal/handler"
	"github.com/sekolahkita/siakad-backend/internal/middleware"
	"github.com/sekolahkita/siakad-backend/internal/response"
	"github.com/sekolahkita/siakad-backend/internal/service"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth         *handler.AuthHandler
	AcademicYear *handler.AcademicYearHandler
	Classroom    *handler.ClassroomHandler
	Subject      *handler.SubjectHandler
	Student      *handler.StudentHandler
	Exam         *handler.ExamHandler
	Task         *handler.TaskHandler
	Payment      *handler.PaymentHandler
	Dashboard    *handler.DashboardHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(
	authService *service.AuthService,
	handlers *Handlers,
	cfg *config.Config,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	// Rate limiter for auth routes (30 requests per minute per IP).
	authLimiter := middleware.NewRateLimiter(30, time.Minute)

	auth := router.Group("/api/v1/auth")
	auth.Use(authLimiter.Middleware())
	{
		auth.POST("/login", handlers.Auth.Login)
		auth.GET("/me", middleware.RequireAdminJWT(authService), handlers.Auth.Me)
	}

	adminAPI := router.Group("/api/v1/admin")
	adminAPI.Use(middleware.RequireAdminJWT(authService))
	{
		adminAPI.GET("/dashboard", handlers.Dashboard.Summary)

		adminAPI.GET("/academic-years", handlers.AcademicYear.List)
		adminAPI.GET("/academic-years/active", handlers.AcademicYear.GetActive)
		adminAPI.POST("/academic-years", handlers.AcademicYear.Create)
		adminAPI.PUT("/academic-years/:id", handlers.AcademicYear.Update)
		adminAPI.POST("/academic-years/:id/activate", handlers.AcademicYear.Activate)
		adminAPI.DELETE("/academic-years/:id", handlers.AcademicYear.Delete)

		adminAPI.GET("/classrooms", handlers.Classroom.List)
		adminAPI.GET("/classrooms/:id", handlers.Classroom.Get)
		adminAPI.POST("/classrooms", handlers.Classroom.Create)
		adminAPI.PUT("/classrooms/:id", handlers.Classroom.Update)
		adminAPI.DELETE("/classrooms/:id", handlers.Classroom.Delete)

		adminAPI.GET("/subjects", handlers.Subject.List)
		adminAPI.POST("/subjects", handlers.Subject.Create)
		adminAPI.PUT("/subjects/:id", handlers.Subject.Update)
		adminAPI.DELETE("/subjects/:id", handlers.Subject.Delete)

		adminAPI.GET("/students", handlers.Student.List)
		adminAPI.GET("/students/:id", handlers.Student.Get)
		adminAPI.POST("/students", handlers.Student.Create)
		adminAPI.PUT("/students/:id", handlers.Student.Update)
		adminAPI.DELETE("/students/:id", handlers.Student.Delete)

		adminAPI.GET("/exams", handlers.Exam.List)
		adminAPI.GET("/exams/:id", handlers.Exam.Get)
		adminAPI.POST("/exams", handlers.Exam.Create)
		adminAPI.PUT("/exams/:id", handlers.Exam.Update)
		adminAPI.DELETE("/exams/:id", handlers.Exam.Delete)
		adminAPI.PUT("/exams/:id/assignments/:assignment_id/score", handlers.Exam.UpdateScore)
		adminAPI.PUT("/exams/:id/scores/bulk", handlers.Exam.BulkScores)

		adminAPI.GET("/tasks", handlers.Task.List)
		adminAPI.GET("/tasks/:id", handlers.Task.Get)
		adminAPI.POST("/tasks", handlers.Task.Create)
		adminAPI.PUT("/tasks/:id", handlers.Task.Update)
		adminAPI.DELETE("/tasks/:id", handlers.Task.Delete)
		adminAPI.PUT("/tasks/:id/assignments/:assignment_id/score", handlers.Task.UpdateScore)
		adminAPI.PUT("/tasks/:id/scores/bulk", handlers.Task.BulkScores)

		adminAPI.GET("/payments", handlers.Payment.List)
		adminAPI.GET("/payments/:id", handlers.Payment.Get)
		adminAPI.POST("/payments", handlers.Payment.Create)
		adminAPI.PUT("/payments/:id", handlers.Payment.Update)
		adminAPI.DELETE("/payments/:id", handlers.Payment.Delete)
		adminAPI.PUT("/payments/:id/assignments/:assignment_id/status", handlers.Payment.UpdateStatus)
		adminAPI.PUT("/payments/:id/statuses/bulk", handlers.Payment.BulkStatuses)
	}

	return router
}
