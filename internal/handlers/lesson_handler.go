// internal/handlers/lesson_handler.go
package handlers

import (
	"log/slog"
	"net/http"

	"learnkeep/internal/middleware"
	"learnkeep/internal/model"
	"learnkeep/internal/service"
	"learnkeep/internal/webutil"
)

type LessonHandler struct {
	service service.LessonService
	logger  *slog.Logger
}

func NewLessonHandler(s service.LessonService, logger *slog.Logger) *LessonHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &LessonHandler{
		service: s,
		logger:  logger,
	}
}

// PostLesson はコースにレッスンを追加するハンドラ (講師のみ)
func (h *LessonHandler) PostLesson(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "PostLesson"))

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

	var req model.PostLessonRequest
	if !decodeAndValidate(w, r, logger, &req) {
		return
	}

	lesson, err := h.service.CreateLesson(r.Context(), instructorID, role, courseID, &req)
	if err != nil {
		logger.Warn("Error creating lesson in service", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}

	logger.Info("Lesson created successfully", slog.String("lesson_id", lesson.LessonID.String()))
	webutil.RespondWithJSON(w, http.StatusCreated, lesson, logger)
}

// GetLessons はコースのレッスン一覧を表示順で返すハンドラ
func (h *LessonHandler) GetLessons(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "GetLessons"))

	courseID, ok := parseUUIDParam(w, r, logger, "course_id")
	if !ok {
		return
	}

	lessons, err := h.service.ListLessons(r.Context(), courseID)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	if lessons == nil {
		lessons = []*model.Lesson{}
	}
	webutil.RespondWithJSON(w, http.StatusOK, lessons, logger)
}

// GetLesson はレッスン詳細を返すハンドラ
func (h *LessonHandler) GetLesson(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "GetLesson"))

	lessonID, ok := parseUUIDParam(w, r, logger, "lesson_id")
	if !ok {
		return
	}

	lesson, err := h.service.GetLesson(r.Context(), lessonID)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	webutil.RespondWithJSON(w, http.StatusOK, lesson, logger)
}

// PatchLesson はレッスンを部分更新するハンドラ (講師のみ)
func (h *LessonHandler) PatchLesson(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "PatchLesson"))

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
	lessonID, ok := parseUUIDParam(w, r, logger, "lesson_id")
	if !ok {
		return
	}

	var req model.PatchLessonRequest
	if !decodeAndValidate(w, r, logger, &req) {
		return
	}

	lesson, err := h.service.UpdateLesson(r.Context(), instructorID, role, lessonID, &req)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	webutil.RespondWithJSON(w, http.StatusOK, lesson, logger)
}

// DeleteLesson はレッスンを削除するハンドラ (講師のみ)
func (h *LessonHandler) DeleteLesson(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "DeleteLesson"))

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
	lessonID, ok := parseUUIDParam(w, r, logger, "lesson_id")
	if !ok {
		return
	}

	if err := h.service.DeleteLesson(r.Context(), instructorID, role, lessonID); err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
