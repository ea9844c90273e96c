// internal/handlers/progress_handler.go
package handlers

import (
	"log/slog"
	"net/http"

	"learnkeep/internal/middleware"
	"learnkeep/internal/model"
	"learnkeep/internal/service"
	"learnkeep/internal/webutil"
)

type ProgressHandler struct {
	service service.ProgressService
	logger  *slog.Logger
}

func NewProgressHandler(s service.ProgressService, logger *slog.Logger) *ProgressHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ProgressHandler{
		service: s,
		logger:  logger,
	}
}

// PostLessonCompletion はレッスン完了を記録するハンドラ (受講者)。
// 同じレッスンを二度完了しても結果は変わらない
func (h *ProgressHandler) PostLessonCompletion(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "PostLessonCompletion"))

	studentID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	logger = logger.With(slog.String("student_id", studentID.String()))

	courseID, ok := parseUUIDParam(w, r, logger, "course_id")
	if !ok {
		return
	}
	lessonID, ok := parseUUIDParam(w, r, logger, "lesson_id")
	if !ok {
		return
	}

	progress, err := h.service.CompleteLesson(r.Context(), studentID, courseID, lessonID)
	if err != nil {
		logger.Warn("Error completing lesson in service", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}

	logger.Info("Lesson completion recorded",
		slog.String("lesson_id", lessonID.String()),
		slog.Float64("percentage", progress.Percentage),
	)
	webutil.RespondWithJSON(w, http.StatusOK, progress, logger)
}

// GetMyProgress はログイン中の受講者のコース進捗を返すハンドラ
func (h *ProgressHandler) GetMyProgress(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "GetMyProgress"))

	studentID, err := middleware.GetUserIDFromContext(r.Context())
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

	progress, err := h.service.GetProgress(r.Context(), studentID, role, studentID, courseID)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	webutil.RespondWithJSON(w, http.StatusOK, progress, logger)
}

// GetStudentProgress は指定した受講者の進捗を返すハンドラ (講師・管理者)
func (h *ProgressHandler) GetStudentProgress(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "GetStudentProgress"))

	requesterID, err := middleware.GetUserIDFromContext(r.Context())
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
	studentID, ok := parseUUIDParam(w, r, logger, "student_id")
	if !ok {
		return
	}

	progress, err := h.service.GetProgress(r.Context(), requesterID, role, studentID, courseID)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	webutil.RespondWithJSON(w, http.StatusOK, progress, logger)
}

// GetMyProgressList はログイン中の受講者の全コースの進捗を返すハンドラ
func (h *ProgressHandler) GetMyProgressList(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "GetMyProgressList"))

	studentID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	progresses, err := h.service.ListMyProgress(r.Context(), studentID)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	if progresses == nil {
		progresses = []*model.Progress{}
	}
	webutil.RespondWithJSON(w, http.StatusOK, progresses, logger)
}

// GetCourseStats はコースの進捗統計を返すハンドラ (講師・管理者)
func (h *ProgressHandler) GetCourseStats(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "GetCourseStats"))

	requesterID, err := middleware.GetUserIDFromContext(r.Context())
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

	stats, err := h.service.GetCourseStats(r.Context(), requesterID, role, courseID)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	webutil.RespondWithJSON(w, http.StatusOK, stats, logger)
}
