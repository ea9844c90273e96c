// internal/handlers/course_handler.go
package handlers

import (
	"log/slog"
	"net/http"

	"learnkeep/internal/middleware"
	"learnkeep/internal/model"
	"learnkeep/internal/service"
	"learnkeep/internal/webutil"
)

type CourseHandler struct {
	service service.CourseService
	logger  *slog.Logger
}

func NewCourseHandler(s service.CourseService, logger *slog.Logger) *CourseHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &CourseHandler{
		service: s,
		logger:  logger,
	}
}

// PostCourse は新しいコースを作成するハンドラ (講師のみ)
func (h *CourseHandler) PostCourse(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "PostCourse"))

	instructorID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	logger = logger.With(slog.String("instructor_id", instructorID.String()))

	var req model.PostCourseRequest
	if !decodeAndValidate(w, r, logger, &req) {
		return
	}

	course, err := h.service.CreateCourse(r.Context(), instructorID, &req)
	if err != nil {
		logger.Warn("Error creating course in service", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}

	logger.Info("Course created successfully", slog.String("course_id", course.CourseID.String()))
	webutil.RespondWithJSON(w, http.StatusCreated, course, logger)
}

// GetCourses は公開中のコース一覧を返すハンドラ (認証不要)
func (h *CourseHandler) GetCourses(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "GetCourses"))

	filter := model.CourseFilter{
		Category: r.URL.Query().Get("category"),
		Level:    r.URL.Query().Get("level"),
		Search:   r.URL.Query().Get("search"),
	}

	courses, err := h.service.ListCourses(r.Context(), filter)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	if courses == nil {
		courses = []*model.Course{}
	}
	webutil.RespondWithJSON(w, http.StatusOK, courses, logger)
}

// GetCourse はコース詳細を返すハンドラ (認証不要)
func (h *CourseHandler) GetCourse(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "GetCourse"))

	courseID, ok := parseUUIDParam(w, r, logger, "course_id")
	if !ok {
		return
	}

	course, err := h.service.GetCourse(r.Context(), courseID)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	webutil.RespondWithJSON(w, http.StatusOK, course, logger)
}

// PatchCourse はコースを部分更新するハンドラ (講師のみ)
func (h *CourseHandler) PatchCourse(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "PatchCourse"))

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

	var req model.PatchCourseRequest
	if !decodeAndValidate(w, r, logger, &req) {
		return
	}

	course, err := h.service.UpdateCourse(r.Context(), instructorID, role, courseID, &req)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	webutil.RespondWithJSON(w, http.StatusOK, course, logger)
}

// DeleteCourse はコースを削除するハンドラ (講師のみ)
func (h *CourseHandler) DeleteCourse(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "DeleteCourse"))

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

	if err := h.service.DeleteCourse(r.Context(), instructorID, role, courseID); err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// GetInstructorCourses はログイン中の講師のコース一覧を返すハンドラ
func (h *CourseHandler) GetInstructorCourses(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "GetInstructorCourses"))

	instructorID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	courses, err := h.service.ListInstructorCourses(r.Context(), instructorID)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	if courses == nil {
		courses = []*model.Course{}
	}
	webutil.RespondWithJSON(w, http.StatusOK, courses, logger)
}

// PostEnrollment は受講登録するハンドラ (受講者)
func (h *CourseHandler) PostEnrollment(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "PostEnrollment"))

	studentID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	courseID, ok := parseUUIDParam(w, r, logger, "course_id")
	if !ok {
		return
	}

	enrollment, err := h.service.Enroll(r.Context(), studentID, courseID)
	if err != nil {
		logger.Warn("Error enrolling in service", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}

	logger.Info("Enrollment created successfully",
		slog.String("student_id", studentID.String()),
		slog.String("course_id", courseID.String()),
	)
	webutil.RespondWithJSON(w, http.StatusCreated, enrollment, logger)
}

// GetEnrolledCourses はログイン中の受講者が登録しているコース一覧を返すハンドラ
func (h *CourseHandler) GetEnrolledCourses(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "GetEnrolledCourses"))

	studentID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	courses, err := h.service.ListEnrolledCourses(r.Context(), studentID)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	if courses == nil {
		courses = []*model.Course{}
	}
	webutil.RespondWithJSON(w, http.StatusOK, courses, logger)
}
