// internal/handlers/quiz_handler.go
package handlers

import (
	"log/slog"
	"net/http"

	"learnkeep/internal/middleware"
	"learnkeep/internal/model"
	"learnkeep/internal/service"
	"learnkeep/internal/webutil"
)

type QuizHandler struct {
	service service.QuizService
	logger  *slog.Logger
}

func NewQuizHandler(s service.QuizService, logger *slog.Logger) *QuizHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &QuizHandler{
		service: s,
		logger:  logger,
	}
}

// PostQuiz はコースにクイズを追加するハンドラ (講師のみ)
func (h *QuizHandler) PostQuiz(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "PostQuiz"))

	instructorID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	role, err := middleware.GetRoleFromContext(r.Context())
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	courseID, ok := parseUUIDParam(w, r, logger, "course_id")
	if !ok {
		return
	}

	var req model.PostQuizRequest
	if !decodeAndValidate(w, r, logger, &req) {
		return
	}

	quiz, err := h.service.CreateQuiz(r.Context(), instructorID, role, courseID, &req)
	if err != nil {
		logger.Warn("Error creating quiz in service", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}

	logger.Info("Quiz created successfully", slog.String("quiz_id", quiz.QuizID.String()))
	webutil.RespondWithJSON(w, http.StatusCreated, quiz, logger)
}

// GetQuizzes はコースのクイズ一覧を返すハンドラ (受講者・講師)
func (h *QuizHandler) GetQuizzes(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "GetQuizzes"))

	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	role, err := middleware.GetRoleFromContext(r.Context())
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	courseID, ok := parseUUIDParam(w, r, logger, "course_id")
	if !ok {
		return
	}

	quizzes, err := h.service.ListQuizzes(r.Context(), userID, role, courseID)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	if quizzes == nil {
		quizzes = []*model.Quiz{}
	}
	webutil.RespondWithJSON(w, http.StatusOK, quizzes, logger)
}

// GetQuiz はクイズ詳細を返すハンドラ。正解番号はJSONに含まれない
func (h *QuizHandler) GetQuiz(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "GetQuiz"))

	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	role, err := middleware.GetRoleFromContext(r.Context())
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	quizID, ok := parseUUIDParam(w, r, logger, "quiz_id")
	if !ok {
		return
	}

	quiz, err := h.service.GetQuiz(r.Context(), userID, role, quizID)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	webutil.RespondWithJSON(w, http.StatusOK, quiz, logger)
}

// DeleteQuiz はクイズを削除するハンドラ (講師のみ)
func (h *QuizHandler) DeleteQuiz(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "DeleteQuiz"))

	instructorID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	role, err := middleware.GetRoleFromContext(r.Context())
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	quizID, ok := parseUUIDParam(w, r, logger, "quiz_id")
	if !ok {
		return
	}

	if err := h.service.DeleteQuiz(r.Context(), instructorID, role, quizID); err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// PostSubmission は回答を提出して採点結果を返すハンドラ (受講者)
func (h *QuizHandler) PostSubmission(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "PostSubmission"))

	studentID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	logger = logger.With(slog.String("student_id", studentID.String()))

	quizID, ok := parseUUIDParam(w, r, logger, "quiz_id")
	if !ok {
		return
	}

	var req model.SubmitQuizRequest
	if !decodeAndValidate(w, r, logger, &req) {
		return
	}

	graded, err := h.service.Submit(r.Context(), studentID, quizID, &req)
	if err != nil {
		logger.Warn("Error submitting quiz in service", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}

	logger.Info("Quiz submission graded",
		slog.String("quiz_id", quizID.String()),
		slog.Float64("score", graded.Score),
		slog.Bool("passed", graded.Passed),
	)
	webutil.RespondWithJSON(w, http.StatusCreated, graded, logger)
}

// GetAttempts はログイン中の受講者の受験履歴を返すハンドラ
func (h *QuizHandler) GetAttempts(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "GetAttempts"))

	studentID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	quizID, ok := parseUUIDParam(w, r, logger, "quiz_id")
	if !ok {
		return
	}

	attempts, err := h.service.ListAttempts(r.Context(), studentID, quizID)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	if attempts == nil {
		attempts = []*model.QuizAttempt{}
	}
	webutil.RespondWithJSON(w, http.StatusOK, attempts, logger)
}
