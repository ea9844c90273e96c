//go:generate mockery --name ProgressRepository --output ./mocks --outpkg mocks --case=underscore
package repository

import (
	"context"
	"errors"
	"fmt"

	"learnkeep/internal/middleware"
	"learnkeep/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProgressRepository interface {
	Create(ctx context.Context, tx *gorm.DB, progress *model.Progress) error
	// FindByStudentAndCourse は完了レッスン・クイズ結果をPreloadしたレジャーを返す。
	FindByStudentAndCourse(ctx context.Context, db *gorm.DB, studentID, courseID uuid.UUID) (*model.Progress, error)
	FindByStudent(ctx context.Context, db *gorm.DB, studentID uuid.UUID) ([]*model.Progress, error)
	FindByCourse(ctx context.Context, db *gorm.DB, courseID uuid.UUID) ([]*model.Progress, error)
	// UpdateWithRevision は読み取った時点のrevisionを条件にUPDATEする。
	// 他の書き込みが先行していた場合は1行も更新されず ErrConflict を返す。
	UpdateWithRevision(ctx context.Context, tx *gorm.DB, progress *model.Progress, readRevision int64) error
	AppendLessonCompletion(ctx context.Context, tx *gorm.DB, completion *model.LessonCompletion) error
	AppendQuizResult(ctx context.Context, tx *gorm.DB, result *model.QuizResult) error
}

type gormProgressRepository struct{}

func NewGormProgressRepository() ProgressRepository {
	return &gormProgressRepository{}
}

func (r *gormProgressRepository) Create(ctx context.Context, tx *gorm.DB, progress *model.Progress) error {
	logger := middleware.GetLogger(ctx)
	if err := tx.WithContext(ctx).Create(progress).Error; err != nil {
		// (student_id, course_id) の複合ユニーク制約違反 = レジャー二重作成
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return model.ErrConflict
		}
		logger.Error("Error creating progress in DB",
			"error", err,
			"student_id", progress.StudentID.String(),
			"course_id", progress.CourseID.String(),
		)
		return fmt.Errorf("gormProgressRepository.Create: %w", err)
	}
	return nil
}

func (r *gormProgressRepository) FindByStudentAndCourse(ctx context.Context, db *gorm.DB, studentID, courseID uuid.UUID) (*model.Progress, error) {
	logger := middleware.GetLogger(ctx)
	var progress model.Progress
	result := db.WithContext(ctx).
		Preload("CompletedLessons").
		Preload("QuizResults", func(db *gorm.DB) *gorm.DB { return db.Order("quiz_results.completed_at ASC") }).
		Where("student_id = ? AND course_id = ?", studentID, courseID).
		First(&progress)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, model.ErrNotFound
		}
		logger.Error("Error finding progress in DB",
			"error", result.Error,
			"student_id", studentID.String(),
			"course_id", courseID.String(),
		)
		return nil, fmt.Errorf("gormProgressRepository.FindByStudentAndCourse: %w", result.Error)
	}
	return &progress, nil
}

func (r *gormProgressRepository) FindByStudent(ctx context.Context, db *gorm.DB, studentID uuid.UUID) ([]*model.Progress, error) {
	logger := middleware.GetLogger(ctx)
	var progresses []*model.Progress
	result := db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Order("last_accessed DESC").
		Find(&progresses)
	if result.Error != nil {
		logger.Error("Error finding progress by student in DB", "error", result.Error, "student_id", studentID.String())
		return nil, fmt.Errorf("gormProgressRepository.FindByStudent: %w", result.Error)
	}
	return progresses, nil
}

func (r *gormProgressRepository) FindByCourse(ctx context.Context, db *gorm.DB, courseID uuid.UUID) ([]*model.Progress, error) {
	logger := middleware.GetLogger(ctx)
	var progresses []*model.Progress
	result := db.WithContext(ctx).
		Where("course_id = ?", courseID).
		Order("last_accessed DESC").
		Find(&progresses)
	if result.Error != nil {
		logger.Error("Error finding progress by course in DB", "error", result.Error, "course_id", courseID.String())
		return nil, fmt.Errorf("gormProgressRepository.FindByCourse: %w", result.Error)
	}
	return progresses, nil
}

func (r *gormProgressRepository) UpdateWithRevision(ctx context.Context, tx *gorm.DB, progress *model.Progress, readRevision int64) error {
	logger := middleware.GetLogger(ctx)
	result := tx.WithContext(ctx).Model(&model.Progress{}).
		Where("progress_id = ? AND revision = ?", progress.ProgressID, readRevision).
		Updates(map[string]interface{}{
			"percentage":    progress.Percentage,
			"status":        progress.Status,
			"last_accessed": progress.LastAccessed,
			"revision":      readRevision + 1,
		})
	if result.Error != nil {
		logger.Error("Error updating progress in DB", "error", result.Error, "progress_id", progress.ProgressID.String())
		return fmt.Errorf("gormProgressRepository.UpdateWithRevision: %w", result.Error)
	}
	// 0行更新 = 読み取り後に別の書き込みがrevisionを進めた
	if result.RowsAffected == 0 {
		return model.ErrConflict
	}
	progress.Revision = readRevision + 1
	return nil
}

// AppendLessonCompletion は完了レッスンを追記します。
// (progress_id, lesson_id) の一意制約に当たった場合は何もしない (再完了は冪等)。
func (r *gormProgressRepository) AppendLessonCompletion(ctx context.Context, tx *gorm.DB, completion *model.LessonCompletion) error {
	logger := middleware.GetLogger(ctx)
	result := tx.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "progress_id"}, {Name: "lesson_id"}},
			DoNothing: true,
		}).
		Create(completion)
	if result.Error != nil {
		logger.Error("Error appending lesson completion in DB",
			"error", result.Error,
			"lesson_id", completion.LessonID.String(),
		)
		return fmt.Errorf("gormProgressRepository.AppendLessonCompletion: %w", result.Error)
	}
	return nil
}

func (r *gormProgressRepository) AppendQuizResult(ctx context.Context, tx *gorm.DB, quizResult *model.QuizResult) error {
	logger := middleware.GetLogger(ctx)
	if err := tx.WithContext(ctx).Create(quizResult).Error; err != nil {
		logger.Error("Error appending quiz result in DB",
			"error", err,
			"quiz_id", quizResult.QuizID.String(),
		)
		return fmt.Errorf("gormProgressRepository.AppendQuizResult: %w", err)
	}
	return nil
}
