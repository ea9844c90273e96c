// cmd/main.go
package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/lmittmann/tint"
	"github.com/rs/cors"

	"learnkeep/internal/config"
	"learnkeep/internal/handlers"
	"learnkeep/internal/middleware"
	"learnkeep/internal/model"
	"learnkeep/internal/repository"
	"learnkeep/internal/service"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

func main() {
	// 設定ファイル読み込み用の一時的なロガー設定
	tempLogger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(tempLogger)
	log.Println("Log Config Loading...")

	if err := config.LoadConfig("./configs"); err != nil {
		slog.Error("Error loading configuration", slog.Any("error", err))
		os.Exit(1)
	}

	// === 設定に基づいて slog ロガーを初期化 ===
	logLevel := new(slog.LevelVar)
	switch strings.ToLower(config.Cfg.Log.Level) {
	case "debug":
		logLevel.Set(slog.LevelDebug)
	case "info":
		logLevel.Set(slog.LevelInfo)
	case "warn", "warning":
		logLevel.Set(slog.LevelWarn)
	case "error":
		logLevel.Set(slog.LevelError)
	default:
		logLevel.Set(slog.LevelInfo)
		slog.Warn("Unknown log level specified in config, defaulting to INFO", slog.String("level", config.Cfg.Log.Level))
	}

	var handler slog.Handler
	appEnv := os.Getenv("APP_ENV")
	if strings.ToLower(appEnv) == "dev" {
		tintOpts := &tint.Options{
			Level:      logLevel,
			TimeFormat: time.RFC3339,
		}
		handler = tint.NewHandler(os.Stderr, tintOpts)
		tempLogger.Info("Using TINT log handler", slog.String("APP_ENV", appEnv))
	} else {
		jsonOpts := &slog.HandlerOptions{
			Level:     logLevel,
			AddSource: true,
		}
		handler = slog.NewJSONHandler(os.Stderr, jsonOpts)
		tempLogger.Info("Using JSON log handler", slog.String("APP_ENV", appEnv))
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)

	slog.Info("Application starting...", slog.String("app", config.Cfg.App.Name))

	// 2. Initialize Database Connection (GORM)
	db, err := repository.NewDB(config.Cfg.Database.URL, logger)
	if err != nil {
		slog.Error("Error initializing database", slog.Any("error", err))
		os.Exit(1)
	}
	sqlDB, err := db.DB()
	if err != nil {
		slog.Error("Error getting underlying sql.DB from GORM", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := sqlDB.Close(); err != nil {
			slog.Error("Error closing database connection", slog.Any("error", err))
		} else {
			slog.Info("Database connection closed.")
		}
	}()

	// スキーマのマイグレーション
	if err := db.AutoMigrate(
		&model.User{},
		&model.UserVerificationToken{},
		&model.PasswordResetToken{},
		&model.Course{},
		&model.Enrollment{},
		&model.Lesson{},
		&model.Quiz{},
		&model.QuizQuestion{},
		&model.QuizAttempt{},
		&model.Progress{},
		&model.LessonCompletion{},
		&model.QuizResult{},
	); err != nil {
		slog.Error("Error migrating database schema", slog.Any("error", err))
		os.Exit(1)
	}

	// 3. Dependency Injection
	userRepo := repository.NewGormUserRepository()
	tokenRepo := repository.NewGormTokenRepository()
	courseRepo := repository.NewGormCourseRepository()
	lessonRepo := repository.NewGormLessonRepository()
	quizRepo := repository.NewGormQuizRepository()
	progressRepo := repository.NewGormProgressRepository()

	var mailer service.Mailer
	if config.Cfg.Mailer.Type == "ses" {
		mailer = service.NewSESMailer(&config.Cfg)
	} else {
		slog.Info("Using LogMailer (emails are written to the log only)")
		mailer = &service.LogMailer{}
	}

	authService := service.NewAuthService(db, userRepo, tokenRepo, mailer, &config.Cfg)
	courseService := service.NewCourseService(db, courseRepo, progressRepo)
	lessonService := service.NewLessonService(db, lessonRepo, courseRepo)
	progressService := service.NewProgressService(db, courseRepo, progressRepo, &config.Cfg)
	quizService := service.NewQuizService(db, quizRepo, courseRepo, progressService)

	authHandler := handlers.NewAuthHandler(authService, logger)
	courseHandler := handlers.NewCourseHandler(courseService, logger)
	lessonHandler := handlers.NewLessonHandler(lessonService, logger)
	quizHandler := handlers.NewQuizHandler(quizService, logger)
	progressHandler := handlers.NewProgressHandler(progressService, logger)

	// 4. Setup Router
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewStructuredLogger(logger))

	corsOptions := cors.Options{
		AllowedOrigins:   config.Cfg.CORS.AllowedOrigins,
		AllowedMethods:   config.Cfg.CORS.AllowedMethods,
		AllowedHeaders:   config.Cfg.CORS.AllowedHeaders,
		ExposedHeaders:   config.Cfg.CORS.ExposedHeaders,
		AllowCredentials: config.Cfg.CORS.AllowCredentials,
		MaxAge:           config.Cfg.CORS.MaxAge,
		Debug:            false,
	}
	corsHandler := cors.New(corsOptions)
	r.Use(corsHandler.Handler)

	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(60 * time.Second))

	// API Routes
	r.Route("/api/v1", func(r chi.Router) {
		// --- Public routes ---
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authHandler.Register)
			r.Get("/verify", authHandler.Verify)
			r.Post("/login", authHandler.Login)
			r.Post("/forgot-password", authHandler.ForgotPassword)
			r.Post("/reset-password", authHandler.ResetPassword)
		})
		r.Get("/courses", courseHandler.GetCourses)
		r.Get("/courses/{course_id}", courseHandler.GetCourse)
		r.Get("/courses/{course_id}/lessons", lessonHandler.GetLessons)

		// --- Protected routes (require JWT) ---
		r.Group(func(r chi.Router) {
			r.Use(middleware.JWTAuthMiddleware(&config.Cfg))

			r.Get("/auth/me", authHandler.GetMe)

			// 自分に関するリソース
			r.Route("/me", func(r chi.Router) {
				r.Get("/courses", courseHandler.GetEnrolledCourses)
				r.Get("/progress", progressHandler.GetMyProgressList)
			})

			// 受講者の操作
			r.Post("/courses/{course_id}/enrollments", courseHandler.PostEnrollment)
			r.Post("/courses/{course_id}/lessons/{lesson_id}/complete", progressHandler.PostLessonCompletion)
			r.Get("/courses/{course_id}/progress", progressHandler.GetMyProgress)
			r.Get("/lessons/{lesson_id}", lessonHandler.GetLesson)
			r.Get("/courses/{course_id}/quizzes", quizHandler.GetQuizzes)
			r.Get("/quizzes/{quiz_id}", quizHandler.GetQuiz)
			r.Post("/quizzes/{quiz_id}/submissions", quizHandler.PostSubmission)
			r.Get("/quizzes/{quiz_id}/attempts", quizHandler.GetAttempts)

			// 講師・管理者の操作
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(model.RoleInstructor, model.RoleAdmin))

				r.Post("/courses", courseHandler.PostCourse)
				r.Patch("/courses/{course_id}", courseHandler.PatchCourse)
				r.Delete("/courses/{course_id}", courseHandler.DeleteCourse)
				r.Get("/me/teaching", courseHandler.GetInstructorCourses)

				r.Post("/courses/{course_id}/lessons", lessonHandler.PostLesson)
				r.Patch("/lessons/{lesson_id}", lessonHandler.PatchLesson)
				r.Delete("/lessons/{lesson_id}", lessonHandler.DeleteLesson)

				r.Post("/courses/{course_id}/quizzes", quizHandler.PostQuiz)
				r.Delete("/quizzes/{quiz_id}", quizHandler.DeleteQuiz)

				r.Get("/courses/{course_id}/progress/{student_id}", progressHandler.GetStudentProgress)
				r.Get("/courses/{course_id}/stats", progressHandler.GetCourseStats)
			})
		})
	})

	// Health Check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if err := sqlDB.PingContext(ctx); err != nil {
			slog.ErrorContext(ctx, "Health check failed: could not ping DB", slog.Any("error", err))
			http.Error(w, "Health check failed", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// 5. Start Server
	server := &http.Server{
		Addr:         config.Cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		slog.Info("Server listening", slog.String("port", config.Cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Could not listen on port", slog.String("port", config.Cfg.Server.Port), slog.Any("error", err))
			os.Exit(1)
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		slog.Error("Server forced to shutdown", slog.Any("error", err))
	}

	log.Println("Server exiting")
}
