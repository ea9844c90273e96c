// internal/service/lesson_service.go
package service

import (
	"context"
	"errors"

	"learnkeep/internal/middleware"
	"learnkeep/internal/model"
	"learnkeep/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type LessonService interface {
	CreateLesson(ctx context.Context, instructorID uuid.UUID, role string, courseID uuid.UUID, req *model.PostLessonRequest) (*model.Lesson, error)
	GetLesson(ctx context.Context, lessonID uuid.UUID) (*model.Lesson, error)
	ListLessons(ctx context.Context, courseID uuid.UUID) ([]*model.Lesson, error)
	UpdateLesson(ctx context.Context, instructorID uuid.UUID, role string, lessonID uuid.UUID, req *model.PatchLessonRequest) (*model.Lesson, error)
	DeleteLesson(ctx context.Context, instructorID uuid.UUID, role string, lessonID uuid.UUID) error
}

type lessonService struct {
	db         *gorm.DB
	lessonRepo repository.LessonRepository
	courseRepo repository.CourseRepository
}

func NewLessonService(db *gorm.DB, lessonRepo repository.LessonRepository, courseRepo repository.CourseRepository) LessonService {
	return &lessonService{
		db:         db,
		lessonRepo: lessonRepo,
		courseRepo: courseRepo,
	}
}

func (s *lessonService) authorizeCourseEdit(ctx context.Context, instructorID uuid.UUID, role string, courseID uuid.UUID) (*model.Course, error) {
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
	return course, nil
}

func (s *lessonService) CreateLesson(ctx context.Context, instructorID uuid.UUID, role string, courseID uuid.UUID, req *model.PostLessonRequest) (*model.Lesson, error) {
	logger := middleware.GetLogger(ctx)

	if _, err := s.authorizeCourseEdit(ctx, instructorID, role, courseID); err != nil {
		return nil, err
	}

	var lesson *model.Lesson
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		orderIndex := 0
		if req.OrderIndex != nil {
			orderIndex = *req.OrderIndex
		} else {
			// 未指定なら末尾に追加
			max, err := s.lessonRepo.MaxOrderIndex(ctx, tx, courseID)
			if err != nil {
				return err
			}
			orderIndex = max + 1
		}

		lesson = &model.Lesson{
			LessonID:    uuid.New(),
			CourseID:    courseID,
			OrderIndex:  orderIndex,
			Title:       req.Title,
			Description: req.Description,
			VideoURL:    req.VideoURL,
			Duration:    req.Duration,
		}
		return s.lessonRepo.Create(ctx, tx, lesson)
	})
	if err != nil {
		if errors.Is(err, model.ErrConflict) {
			return nil, model.NewAppError("DUPLICATE_ORDER_INDEX", "同じ並び順のレッスンが既に存在します。", "order_index", model.ErrConflict)
		}
		logger.Error("Failed to create lesson", "error", err, "course_id", courseID.String())
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "レッスンの作成に失敗しました。", "", err)
	}

	logger.Info("Lesson created", "lesson_id", lesson.LessonID.String(), "course_id", courseID.String())
	return lesson, nil
}

func (s *lessonService) GetLesson(ctx context.Context, lessonID uuid.UUID) (*model.Lesson, error) {
	lesson, err := s.lessonRepo.FindByID(ctx, s.db, lessonID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, model.NewAppError("LESSON_NOT_FOUND", "レッスンが見つかりません。", "", model.ErrNotFound)
		}
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "サーバー内部エラー", "", err)
	}
	return lesson, nil
}

func (s *lessonService) ListLessons(ctx context.Context, courseID uuid.UUID) ([]*model.Lesson, error) {
	lessons, err := s.lessonRepo.FindByCourse(ctx, s.db, courseID)
	if err != nil {
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "サーバー内部エラー", "", err)
	}
	return lessons, nil
}

func (s *lessonService) UpdateLesson(ctx context.Context, instructorID uuid.UUID, role string, lessonID uuid.UUID, req *model.PatchLessonRequest) (*model.Lesson, error) {
	logger := middleware.GetLogger(ctx)

	lesson, err := s.lessonRepo.FindByID(ctx, s.db, lessonID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, model.NewAppError("LESSON_NOT_FOUND", "レッスンが見つかりません。", "", model.ErrNotFound)
		}
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "サーバー内部エラー", "", err)
	}
	if _, err := s.authorizeCourseEdit(ctx, instructorID, role, lesson.CourseID); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if req.Title != nil {
		updates["title"] = *req.Title
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.VideoURL != nil {
		updates["video_url"] = *req.VideoURL
	}
	if req.Duration != nil {
		updates["duration"] = *req.Duration
	}
	if req.OrderIndex != nil {
		updates["order_index"] = *req.OrderIndex
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.lessonRepo.Update(ctx, tx, lessonID, updates)
	})
	if err != nil {
		logger.Error("Failed to update lesson", "error", err, "lesson_id", lessonID.String())
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "レッスンの更新に失敗しました。", "", err)
	}

	return s.lessonRepo.FindByID(ctx, s.db, lessonID)
}

func (s *lessonService) DeleteLesson(ctx context.Context, instructorID uuid.UUID, role string, lessonID uuid.UUID) error {
	logger := middleware.GetLogger(ctx)

	lesson, err := s.lessonRepo.FindByID(ctx, s.db, lessonID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.NewAppError("LESSON_NOT_FOUND", "レッスンが見つかりません。", "", model.ErrNotFound)
		}
		return model.NewAppError("INTERNAL_SERVER_ERROR", "サーバー内部エラー", "", err)
	}
	if _, err := s.authorizeCourseEdit(ctx, instructorID, role, lesson.CourseID); err != nil {
		return err
	}

	// レッスンを消しても既存レジャーの完了記録は残す。
	// 進捗率の分子は生の完了数なので、削除で率が下がることはない
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.lessonRepo.Delete(ctx, tx, lessonID)
	})
	if err != nil {
		logger.Error("Failed to delete lesson", "error", err, "lesson_id", lessonID.String())
		return model.NewAppError("INTERNAL_SERVER_ERROR", "レッスンの削除に失敗しました。", "", err)
	}
	return nil
}
