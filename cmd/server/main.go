package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/sekolahkita/siakad-backend/internal/config"
	"github.com/sekolahkita/siakad-backend/internal/database"
	"github.com/sekolahkita/siakad-backend/internal/handler"
	"github.com/sekolahkita/siakad-backend/internal/logger"
	"github.com/sekolahkita/siakad-backend/internal/repository"
	"github.com/sekolahkita/siakad-backend/internal/router"
	"github.com/sekolahkita/siakad-backend/internal/service"
	"github.com/sekolahkita/siakad-backend/internal/validator"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("log_level", cfg.LogLevel).
		Msg("Starting SIAKAD Backend")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	// ─── Connect to Redis ──────────────────────────────────────────────
	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	// ─── Initialize Repositories ───────────────────────────────────────
	adminRepo := repository.NewAdminRepository(pool)
	yearRepo := repository.NewAcademicYearRepository(pool)
	classroomRepo := repository.NewClassroomRepository(pool)
	subjectRepo := repository.NewSubjectRepository(pool)
	studentRepo := repository.NewStudentRepository(pool)
	examRepo := repository.NewExamRepository(pool)
	taskRepo := repository.NewTaskRepository(pool)
	paymentRepo := repository.NewPaymentRepository(pool)
	dashboardRepo := repository.NewDashboardRepository(pool)

	// ─── Initialize Services ──────────────────────────────────────────
	authService := service.NewAuthService(cfg, adminRepo)
	yearService := service.NewAcademicYearService(yearRepo, rdb, log)
	classroomService := service.NewClassroomService(classroomRepo)
	subjectService := service.NewSubjectService(subjectRepo, log)
	studentService := service.NewStudentService(studentRepo)
	examService := service.NewExamService(examRepo, studentRepo, classroomRepo, yearService, log)
	taskService := service.NewTaskService(taskRepo, studentRepo, classroomRepo, yearService, log)
	paymentService := service.NewPaymentService(paymentRepo, studentRepo, classroomRepo, yearService, log)
	dashboardService := service.NewDashboardService(dashboardRepo, yearService, rdb, log)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Auth:         handler.NewAuthHandler(authService, log),
		AcademicYear: handler.NewAcademicYearHandler(yearService, log),
		Classroom:    handler.NewClassroomHandler(classroomService, log),
		Subject:      handler.NewSubjectHandler(subjectService, log),
		Student:      handler.NewStudentHandler(studentService, log),
		Exam:         handler.NewExamHandler(examService, log),
		Task:         handler.NewTaskHandler(taskService, log),
		Payment:      handler.NewPaymentHandler(paymentService, log),
		Dashboard:    handler.NewDashboardHandler(dashboardService, log),
	}

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(authService, handlers, cfg)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: r,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
