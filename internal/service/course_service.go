// internal/service/course_service.go
package service

import (
	"context"
	"errors"
	"time"

	"learnkeep/internal/middleware"
	"learnkeep/internal/model"
	"learnkeep/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CourseService interface {
	CreateCourse(ctx context.Context, instructorID uuid.UUID, req *model.PostCourseRequest) (*model.Course, error)
	GetCourse(ctx context.Context, courseID uuid.UUID) (*model.Course, error)
	ListCourses(ctx context.Context, filter model.CourseFilter) ([]*model.Course, error)
	ListInstructorCourses(ctx context.Context, instructorID uuid.UUID) ([]*model.Course, error)
	UpdateCourse(ctx context.Context, instructorID uuid.UUID, role string, courseID uuid.UUID, req *model.PatchCourseRequest) (*model.Course, error)
	DeleteCourse(ctx context.Context, instructorID uuid.UUID, role string, courseID uuid.UUID) error
	// Enroll は受講登録と同時に空のレジャーを起こします（同一トランザクション）。
	Enroll(ctx context.Context, studentID, courseID uuid.UUID) (*model.Enrollment, error)
	ListEnrolledCourses(ctx context.Context, studentID uuid.UUID) ([]*model.Course, error)
}

type courseService struct {
	db           *gorm.DB // トランザクション用にDB接続を持つ
	courseRepo   repository.CourseRepository
	progressRepo repository.ProgressRepository
}

func NewCourseService(db *gorm.DB, courseRepo repository.CourseRepository, progressRepo repository.ProgressRepository) CourseService {
	return &courseService{
		db:           db,
		courseRepo:   courseRepo,
		progressRepo: progressRepo,
	}
}

func (s *courseService) CreateCourse(ctx context.Context, instructorID uuid.UUID, req *model.PostCourseRequest) (*model.Course, error) {
	logger := middleware.GetLogger(ctx)

	level := req.Level
	if level == "" {
		level = "Beginner"
	}
	progressUnit := model.ProgressUnitLessonsOnly
	if req.ProgressUnit != "" {
		progressUnit = model.ProgressUnit(req.ProgressUnit)
	}
	if !progressUnit.Valid() {
		return nil, model.NewAppError("INVALID_PROGRESS_UNIT", "不明な進捗単位です。", "progress_unit", model.ErrInvalidInput)
	}

	course := &model.Course{
		CourseID:     uuid.New(),
		InstructorID: instructorID,
		Title:        req.Title,
		Description:  req.Description,
		Category:     req.Category,
		Level:        level,
		Price:        req.Price,
		Thumbnail:    req.Thumbnail,
		IsPublished:  false,
		ProgressUnit: progressUnit,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.courseRepo.Create(ctx, tx, course)
	})
	if err != nil {
		logger.Error("Failed to create course", "error", err, "instructor_id", instructorID.String())
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "コースの作成に失敗しました。", "", err)
	}

	logger.Info("Course created", "course_id", course.CourseID.String(), "instructor_id", instructorID.String())
	return course, nil
}

func (s *courseService) GetCourse(ctx context.Context, courseID uuid.UUID) (*model.Course, error) {
	course, err := s.courseRepo.FindByID(ctx, s.db, courseID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, model.NewAppError("COURSE_NOT_FOUND", "コースが見つかりません。", "", model.ErrNotFound)
		}
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "サーバー内部エラー", "", err)
	}
	return course, nil
}

func (s *courseService) ListCourses(ctx context.Context, filter model.CourseFilter) ([]*model.Course, error) {
	courses, err := s.courseRepo.FindPublished(ctx, s.db, filter)
	if err != nil {
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "サーバー内部エラー", "", err)
	}
	return courses, nil
}

func (s *courseService) ListInstructorCourses(ctx context.Context, instructorID uuid.UUID) ([]*model.Course, error) {
	courses, err := s.courseRepo.FindByInstructor(ctx, s.db, instructorID)
	if err != nil {
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "サーバー内部エラー", "", err)
	}
	return courses, nil
}

func (s *courseService) UpdateCourse(ctx context.Context, instructorID uuid.UUID, role string, courseID uuid.UUID, req *model.PatchCourseRequest) (*model.Course, error) {
	logger := middleware.GetLogger(ctx)

	course, err := s.courseRepo.FindByID(ctx, s.db, courseID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, model.NewAppError("COURSE_NOT_FOUND", "コースが見つかりません。", "", model.ErrNotFound)
		}
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "サーバー内部エラー", "", err)
	}
	if role != model.RoleAdmin && course.InstructorID != instructorID {
		return nil, model.NewAppError("FORBIDDEN", "このコースを編集する権限がありません。", "", model.ErrForbidden)
	}

	updates := map[string]interface{}{}
	if req.Title != nil {
		updates["title"] = *req.Title
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Category != nil {
		updates["category"] = *req.Category
	}
	if req.Level != nil {
		updates["level"] = *req.Level
	}
	if req.Price != nil {
		updates["price"] = *req.Price
	}
	if req.Thumbnail != nil {
		updates["thumbnail"] = *req.Thumbnail
	}
	if req.IsPublished != nil {
		updates["is_published"] = *req.IsPublished
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.courseRepo.Update(ctx, tx, courseID, updates)
	})
	if err != nil {
		logger.Error("Failed to update course", "error", err, "course_id", courseID.String())
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "コースの更新に失敗しました。", "", err)
	}

	return s.courseRepo.FindByID(ctx, s.db, courseID)
}

func (s *courseService) DeleteCourse(ctx context.Context, instructorID uuid.UUID, role string, courseID uuid.UUID) error {
	logger := middleware.GetLogger(ctx)

	course, err := s.courseRepo.FindByID(ctx, s.db, courseID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.NewAppError("COURSE_NOT_FOUND", "コースが見つかりません。", "", model.ErrNotFound)
		}
		return model.NewAppError("INTERNAL_SERVER_ERROR", "サーバー内部エラー", "", err)
	}
	if role != model.RoleAdmin && course.InstructorID != instructorID {
		return model.NewAppError("FORBIDDEN", "このコースを削除する権限がありません。", "", model.ErrForbidden)
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.courseRepo.Delete(ctx, tx, courseID)
	})
	if err != nil {
		logger.Error("Failed to delete course", "error", err, "course_id", courseID.String())
		return model.NewAppError("INTERNAL_SERVER_ERROR", "コースの削除に失敗しました。", "", err)
	}
	return nil
}

func (s *courseService) Enroll(ctx context.Context, studentID, courseID uuid.UUID) (*model.Enrollment, error) {
	logger := middleware.GetLogger(ctx)

	course, err := s.courseRepo.FindByID(ctx, s.db, courseID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, model.NewAppError("COURSE_NOT_FOUND", "コースが見つかりません。", "", model.ErrNotFound)
		}
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "サーバー内部エラー", "", err)
	}
	if !course.IsPublished {
		return nil, model.NewAppError("COURSE_NOT_PUBLISHED", "このコースはまだ公開されていません。", "", model.ErrForbidden)
	}

	now := time.Now()
	enrollment := &model.Enrollment{
		EnrollmentID: uuid.New(),
		CourseID:     courseID,
		StudentID:    studentID,
		EnrolledAt:   now,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.courseRepo.CreateEnrollment(ctx, tx, enrollment); err != nil {
			return err
		}
		// 登録と同時にレジャーを起こしておく: 以後の進捗APIは常にレジャー前提で動ける
		progress := &model.Progress{
			ProgressID:   uuid.New(),
			StudentID:    studentID,
			CourseID:     courseID,
			Percentage:   0,
			Status:       model.StatusNotStarted,
			LastAccessed: now,
		}
		return s.progressRepo.Create(ctx, tx, progress)
	})
	if err != nil {
		if errors.Is(err, model.ErrConflict) {
			logger.Warn("Duplicate enrollment", "student_id", studentID.String(), "course_id", courseID.String())
			return nil, model.NewAppError("ALREADY_ENROLLED", "すでにこのコースに受講登録されています。", "", model.ErrConflict)
		}
		logger.Error("Failed to enroll", "error", err, "course_id", courseID.String())
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "受講登録に失敗しました。", "", err)
	}

	logger.Info("Student enrolled", "student_id", studentID.String(), "course_id", courseID.String())
	return enrollment, nil
}

func (s *courseService) ListEnrolledCourses(ctx context.Context, studentID uuid.UUID) ([]*model.Course, error) {
	courses, err := s.courseRepo.FindEnrolledCourses(ctx, s.db, studentID)
	if err != nil {
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "サーバー内部エラー", "", err)
	}
	return courses, nil
}
