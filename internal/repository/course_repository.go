//go:generate mockery --name CourseRepository --output ./mocks --outpkg mocks --case=underscore
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

type CourseRepository interface {
	Create(ctx context.Context, tx *gorm.DB, course *model.Course) error
	// FindByID はレッスン・クイズ・受講登録をPreloadした完全なCourseを返す。
	// Enrollment Guard と進捗の再計算はこのスナップショットを前提とする。
	FindByID(ctx context.Context, db *gorm.DB, courseID uuid.UUID) (*model.Course, error)
	FindPublished(ctx context.Context, db *gorm.DB, filter model.CourseFilter) ([]*model.Course, error)
	FindByInstructor(ctx context.Context, db *gorm.DB, instructorID uuid.UUID) ([]*model.Course, error)
	Update(ctx context.Context, tx *gorm.DB, courseID uuid.UUID, updates map[string]interface{}) error
	Delete(ctx context.Context, tx *gorm.DB, courseID uuid.UUID) error
	CreateEnrollment(ctx context.Context, tx *gorm.DB, enrollment *model.Enrollment) error
	FindEnrolledCourses(ctx context.Context, db *gorm.DB, studentID uuid.UUID) ([]*model.Course, error)
}

type gormCourseRepository struct{}

func NewGormCourseRepository() CourseRepository {
	return &gormCourseRepository{}
}

func (r *gormCourseRepository) Create(ctx context.Context, tx *gorm.DB, course *model.Course) error {
	logger := middleware.GetLogger(ctx)
	if err := tx.WithContext(ctx).Create(course).Error; err != nil {
		logger.Error("Error creating course in DB", "error", err, "instructor_id", course.InstructorID.String())
		return fmt.Errorf("gormCourseRepository.Create: %w", err)
	}
	return nil
}

func (r *gormCourseRepository) FindByID(ctx context.Context, db *gorm.DB, courseID uuid.UUID) (*model.Course, error) {
	logger := middleware.GetLogger(ctx)
	var course model.Course
	result := db.WithContext(ctx).
		Preload("Lessons", func(db *gorm.DB) *gorm.DB { return db.Order("lessons.order_index ASC") }).
		Preload("Quizzes").
		Preload("Enrollments").
		Where("course_id = ?", courseID).
		First(&course)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, model.ErrNotFound
		}
		logger.Error("Error finding course by ID in DB", "error", result.Error, "course_id", courseID.String())
		return nil, fmt.Errorf("gormCourseRepository.FindByID: %w", result.Error)
	}
	return &course, nil
}

func (r *gormCourseRepository) FindPublished(ctx context.Context, db *gorm.DB, filter model.CourseFilter) ([]*model.Course, error) {
	logger := middleware.GetLogger(ctx)
	var courses []*model.Course

	query := db.WithContext(ctx).Where("is_published = ?", true)
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.Level != "" {
		query = query.Where("level = ?", filter.Level)
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("title ILIKE ? OR description ILIKE ?", pattern, pattern)
	}

	result := query.Order("created_at DESC").Find(&courses)
	if result.Error != nil {
		logger.Error("Error finding published courses in DB", "error", result.Error)
		return nil, fmt.Errorf("gormCourseRepository.FindPublished: %w", result.Error)
	}
	return courses, nil
}

func (r *gormCourseRepository) FindByInstructor(ctx context.Context, db *gorm.DB, instructorID uuid.UUID) ([]*model.Course, error) {
	logger := middleware.GetLogger(ctx)
	var courses []*model.Course
	result := db.WithContext(ctx).Where("instructor_id = ?", instructorID).Order("created_at DESC").Find(&courses)
	if result.Error != nil {
		logger.Error("Error finding courses by instructor in DB", "error", result.Error, "instructor_id", instructorID.String())
		return nil, fmt.Errorf("gormCourseRepository.FindByInstructor: %w", result.Error)
	}
	return courses, nil
}

func (r *gormCourseRepository) Update(ctx context.Context, tx *gorm.DB, courseID uuid.UUID, updates map[string]interface{}) error {
	logger := middleware.GetLogger(ctx)
	if len(updates) == 0 {
		return nil
	}
	result := tx.WithContext(ctx).Model(&model.Course{}).Where("course_id = ?", courseID).Updates(updates)
	if result.Error != nil {
		logger.Error("Error updating course in DB", "error", result.Error, "course_id", courseID.String())
		return fmt.Errorf("gormCourseRepository.Update: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (r *gormCourseRepository) Delete(ctx context.Context, tx *gorm.DB, courseID uuid.UUID) error {
	logger := middleware.GetLogger(ctx)
	result := tx.WithContext(ctx).Where("course_id = ?", courseID).Delete(&model.Course{})
	if result.Error != nil {
		logger.Error("Error deleting course in DB", "error", result.Error, "course_id", courseID.String())
		return fmt.Errorf("gormCourseRepository.Delete: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (r *gormCourseRepository) CreateEnrollment(ctx context.Context, tx *gorm.DB, enrollment *model.Enrollment) error {
	logger := middleware.GetLogger(ctx)
	if err := tx.WithContext(ctx).Create(enrollment).Error; err != nil {
		// (course_id, student_id) の複合ユニーク制約違反 = 二重登録
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return model.ErrConflict
		}
		logger.Error("Error creating enrollment in DB",
			"error", err,
			"course_id", enrollment.CourseID.String(),
			"student_id", enrollment.StudentID.String(),
		)
		return fmt.Errorf("gormCourseRepository.CreateEnrollment: %w", err)
	}
	return nil
}

func (r *gormCourseRepository) FindEnrolledCourses(ctx context.Context, db *gorm.DB, studentID uuid.UUID) ([]*model.Course, error) {
	logger := middleware.GetLogger(ctx)
	var courses []*model.Course
	result := db.WithContext(ctx).
		Joins("JOIN enrollments ON enrollments.course_id = courses.course_id").
		Where("enrollments.student_id = ?", studentID).
		Order("enrollments.enrolled_at DESC").
		Find(&courses)
	if result.Error != nil {
		logger.Error("Error finding enrolled courses in DB", "error", result.Error, "student_id", studentID.String())
		return nil, fmt.Errorf("gormCourseRepository.FindEnrolledCourses: %w", result.Error)
	}
	return courses, nil
}
