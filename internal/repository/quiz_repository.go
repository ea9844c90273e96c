//go:generate mockery --name QuizRepository --output ./mocks --outpkg mocks --case=underscore
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

type QuizRepository interface {
	Create(ctx context.Context, tx *gorm.DB, quiz *model.Quiz) error
	// FindByID は設問をorder_index昇順でPreloadしたQuizを返す。
	// 採点は設問の並び順に依存するため、並び替えはここで保証する。
	FindByID(ctx context.Context, db *gorm.DB, quizID uuid.UUID) (*model.Quiz, error)
	FindByCourse(ctx context.Context, db *gorm.DB, courseID uuid.UUID) ([]*model.Quiz, error)
	Delete(ctx context.Context, tx *gorm.DB, quizID uuid.UUID) error
	CreateAttempt(ctx context.Context, tx *gorm.DB, attempt *model.QuizAttempt) error
	FindAttempts(ctx context.Context, db *gorm.DB, quizID, studentID uuid.UUID) ([]*model.QuizAttempt, error)
}

type gormQuizRepository struct{}

func NewGormQuizRepository() QuizRepository {
	return &gormQuizRepository{}
}

func (r *gormQuizRepository) Create(ctx context.Context, tx *gorm.DB, quiz *model.Quiz) error {
	logger := middleware.GetLogger(ctx)
	if err := tx.WithContext(ctx).Create(quiz).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return model.ErrConflict
		}
		logger.Error("Error creating quiz in DB", "error", err, "course_id", quiz.CourseID.String())
		return fmt.Errorf("gormQuizRepository.Create: %w", err)
	}
	return nil
}

func (r *gormQuizRepository) FindByID(ctx context.Context, db *gorm.DB, quizID uuid.UUID) (*model.Quiz, error) {
	logger := middleware.GetLogger(ctx)
	var quiz model.Quiz
	result := db.WithContext(ctx).
		Preload("Questions", func(db *gorm.DB) *gorm.DB { return db.Order("quiz_questions.order_index ASC") }).
		Where("quiz_id = ?", quizID).
		First(&quiz)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, model.ErrNotFound
		}
		logger.Error("Error finding quiz by ID in DB", "error", result.Error, "quiz_id", quizID.String())
		return nil, fmt.Errorf("gormQuizRepository.FindByID: %w", result.Error)
	}
	return &quiz, nil
}

func (r *gormQuizRepository) FindByCourse(ctx context.Context, db *gorm.DB, courseID uuid.UUID) ([]*model.Quiz, error) {
	logger := middleware.GetLogger(ctx)
	var quizzes []*model.Quiz
	result := db.WithContext(ctx).
		Preload("Questions", func(db *gorm.DB) *gorm.DB { return db.Order("quiz_questions.order_index ASC") }).
		Where("course_id = ?", courseID).
		Order("created_at ASC").
		Find(&quizzes)
	if result.Error != nil {
		logger.Error("Error finding quizzes by course in DB", "error", result.Error, "course_id", courseID.String())
		return nil, fmt.Errorf("gormQuizRepository.FindByCourse: %w", result.Error)
	}
	return quizzes, nil
}

func (r *gormQuizRepository) Delete(ctx context.Context, tx *gorm.DB, quizID uuid.UUID) error {
	logger := middleware.GetLogger(ctx)
	result := tx.WithContext(ctx).Where("quiz_id = ?", quizID).Delete(&model.Quiz{})
	if result.Error != nil {
		logger.Error("Error deleting quiz in DB", "error", result.Error, "quiz_id", quizID.String())
		return fmt.Errorf("gormQuizRepository.Delete: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return model.ErrNotFound
	}
	return nil
}

// CreateAttempt は受験履歴を追記します。履歴はUPDATE/DELETEしない前提です。
func (r *gormQuizRepository) CreateAttempt(ctx context.Context, tx *gorm.DB, attempt *model.QuizAttempt) error {
	logger := middleware.GetLogger(ctx)
	if err := tx.WithContext(ctx).Create(attempt).Error; err != nil {
		logger.Error("Error creating quiz attempt in DB",
			"error", err,
			"quiz_id", attempt.QuizID.String(),
			"student_id", attempt.StudentID.String(),
		)
		return fmt.Errorf("gormQuizRepository.CreateAttempt: %w", err)
	}
	return nil
}

func (r *gormQuizRepository) FindAttempts(ctx context.Context, db *gorm.DB, quizID, studentID uuid.UUID) ([]*model.QuizAttempt, error) {
	logger := middleware.GetLogger(ctx)
	var attempts []*model.QuizAttempt
	result := db.WithContext(ctx).
		Where("quiz_id = ? AND student_id = ?", quizID, studentID).
		Order("completed_at ASC").
		Find(&attempts)
	if result.Error != nil {
		logger.Error("Error finding quiz attempts in DB", "error", result.Error, "quiz_id", quizID.String())
		return nil, fmt.Errorf("gormQuizRepository.FindAttempts: %w", result.Error)
	}
	return attempts, nil
}
