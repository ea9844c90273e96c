package repository

import (
	"context"
	"errors"
	"fmt"

	"learnkeep/internal/middleware"
	"learnkeep/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type LessonRepository interface {
	Create(ctx context.Context, tx *gorm.DB, lesson *model.Lesson) error
	FindByID(ctx context.Context, db *gorm.DB, lessonID uuid.UUID) (*model.Lesson, error)
	FindByCourse(ctx context.Context, db *gorm.DB, courseID uuid.UUID) ([]*model.Lesson, error)
	Update(ctx context.Context, tx *gorm.DB, lessonID uuid.UUID, updates map[string]interface{}) error
	Delete(ctx context.Context, tx *gorm.DB, lessonID uuid.UUID) error
	MaxOrderIndex(ctx context.Context, db *gorm.DB, courseID uuid.UUID) (int, error)
}

type gormLessonRepository struct{}

func NewGormLessonRepository() LessonRepository {
	return &gormLessonRepository{}
}

func (r *gormLessonRepository) Create(ctx context.Context, tx *gorm.DB, lesson *model.Lesson) error {
	logger := middleware.GetLogger(ctx)
	if err := tx.WithContext(ctx).Create(lesson).Error; err != nil {
		// (course_id, order_index) の複合ユニーク制約違反
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return model.ErrConflict
		}
		logger.Error("Error creating lesson in DB", "error", err, "course_id", lesson.CourseID.String())
		return fmt.Errorf("gormLessonRepository.Create: %w", err)
	}
	return nil
}

func (r *gormLessonRepository) FindByID(ctx context.Context, db *gorm.DB, lessonID uuid.UUID) (*model.Lesson, error) {
	logger := middleware.GetLogger(ctx)
	var lesson model.Lesson
	result := db.WithContext(ctx).Where("lesson_id = ?", lessonID).First(&lesson)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, model.ErrNotFound
		}
		logger.Error("Error finding lesson by ID in DB", "error", result.Error, "lesson_id", lessonID.String())
		return nil, fmt.Errorf("gormLessonRepository.FindByID: %w", result.Error)
	}
	return &lesson, nil
}

func (r *gormLessonRepository) FindByCourse(ctx context.Context, db *gorm.DB, courseID uuid.UUID) ([]*model.Lesson, error) {
	logger := middleware.GetLogger(ctx)
	var lessons []*model.Lesson
	result := db.WithContext(ctx).Where("course_id = ?", courseID).Order("order_index ASC").Find(&lessons)
	if result.Error != nil {
		logger.Error("Error finding lessons by course in DB", "error", result.Error, "course_id", courseID.String())
		return nil, fmt.Errorf("gormLessonRepository.FindByCourse: %w", result.Error)
	}
	return lessons, nil
}

func (r *gormLessonRepository) Update(ctx context.Context, tx *gorm.DB, lessonID uuid.UUID, updates map[string]interface{}) error {
	logger := middleware.GetLogger(ctx)
	if len(updates) == 0 {
		return nil
	}
	result := tx.WithContext(ctx).Model(&model.Lesson{}).Where("lesson_id = ?", lessonID).Updates(updates)
	if result.Error != nil {
		logger.Error("Error updating lesson in DB", "error", result.Error, "lesson_id", lessonID.String())
		return fmt.Errorf("gormLessonRepository.Update: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (r *gormLessonRepository) Delete(ctx context.Context, tx *gorm.DB, lessonID uuid.UUID) error {
	logger := middleware.GetLogger(ctx)
	result := tx.WithContext(ctx).Where("lesson_id = ?", lessonID).Delete(&model.Lesson{})
	if result.Error != nil {
		logger.Error("Error deleting lesson in DB", "error", result.Error, "lesson_id", lessonID.String())
		return fmt.Errorf("gormLessonRepository.Delete: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (r *gormLessonRepository) MaxOrderIndex(ctx context.Context, db *gorm.DB, courseID uuid.UUID) (int, error) {
	logger := middleware.GetLogger(ctx)
	var max *int
	// レッスンが1件もない場合は COALESCE で -1 を返す (次の採番が0になる)
	result := db.WithContext(ctx).Model(&model.Lesson{}).
		Select("COALESCE(MAX(order_index), -1)").
		Where("course_id = ?", courseID).
		Scan(&max)
	if result.Error != nil {
		logger.Error("Error finding max order index in DB", "error", result.Error, "course_id", courseID.String())
		return 0, fmt.Errorf("gormLessonRepository.MaxOrderIndex: %w", result.Error)
	}
	if max == nil {
		return -1, nil
	}
	return *max, nil
}
