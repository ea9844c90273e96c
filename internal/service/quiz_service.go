// internal/service/quiz_service.go
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"learnkeep/internal/middleware"
	"learnkeep/internal/model"
	"learnkeep/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type QuizService interface {
	CreateQuiz(ctx context.Context, instructorID uuid.UUID, role string, courseID uuid.UUID, req *model.PostQuizRequest) (*model.Quiz, error)
	GetQuiz(ctx context.Context, requesterID uuid.UUID, role string, quizID uuid.UUID) (*model.Quiz, error)
	ListQuizzes(ctx context.Context, requesterID uuid.UUID, role string, courseID uuid.UUID) ([]*model.Quiz, error)
	DeleteQuiz(ctx context.Context, instructorID uuid.UUID, role string, quizID uuid.UUID) error
	// Submit は回答を採点し、受験履歴に追記してレジャーへ反映します。
	// 再受験は常に許可。過去の受験結果が書き換わることはない。
	Submit(ctx context.Context, studentID, quizID uuid.UUID, req *model.SubmitQuizRequest) (*model.GradedAttempt, error)
	ListAttempts(ctx context.Context, studentID, quizID uuid.UUID) ([]*model.QuizAttempt, error)
}

type quizService struct {
	db              *gorm.DB
	quizRepo        repository.QuizRepository
	courseRepo      repository.CourseRepository
	progressService ProgressService
}

func NewQuizService(db *gorm.DB, quizRepo repository.QuizRepository, courseRepo repository.CourseRepository, progressService ProgressService) QuizService {
	return &quizService{
		db:              db,
		quizRepo:        quizRepo,
		courseRepo:      courseRepo,
		progressService: progressService,
	}
}

func (s *quizService) CreateQuiz(ctx context.Context, instructorID uuid.UUID, role string, courseID uuid.UUID, req *model.PostQuizRequest) (*model.Quiz, error) {
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

	strategy := model.ScoringPercentageNormalized
	if req.ScoringStrategy != "" {
		strategy = model.ScoringStrategy(req.ScoringStrategy)
	}
	if !strategy.Valid() {
		return nil, model.NewAppError("INVALID_SCORING_STRATEGY", "不明な採点方式です。", "scoring_strategy", model.ErrInvalidInput)
	}

	var totalPoints int
	questions := make([]model.QuizQuestion, 0, len(req.Questions))
	quizID := uuid.New()
	for i, q := range req.Questions {
		if q.CorrectAnswer >= len(q.Options) {
			return nil, model.NewAppError("INVALID_CORRECT_ANSWER",
				fmt.Sprintf("設問%dの正解番号が選択肢の範囲外です。", i+1),
				"correct_answer", model.ErrInvalidInput)
		}
		points := 1
		if q.Points != nil {
			points = *q.Points
		}
		totalPoints += points

		optionsJSON, err := json.Marshal(q.Options)
		if err != nil {
			return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "設問データの保存に失敗しました。", "", err)
		}
		questions = append(questions, model.QuizQuestion{
			QuestionID:    uuid.New(),
			QuizID:        quizID,
			OrderIndex:    i,
			Text:          q.Text,
			Options:       optionsJSON,
			CorrectAnswer: q.CorrectAnswer,
			Points:        points,
			Explanation:   q.Explanation,
		})
	}

	// 合格点は採点方式と同じ尺度で検証する
	passingScore := 70.0
	if req.PassingScore != nil {
		passingScore = *req.PassingScore
	}
	switch strategy {
	case model.ScoringPercentageNormalized:
		if passingScore > 100 {
			return nil, model.NewAppError("INVALID_PASSING_SCORE", "合格点は100以下で指定してください。", "passing_score", model.ErrInvalidInput)
		}
	case model.ScoringPointWeighted:
		if passingScore > float64(totalPoints) {
			return nil, model.NewAppError("INVALID_PASSING_SCORE",
				fmt.Sprintf("合格点が満点(%d点)を超えています。", totalPoints),
				"passing_score", model.ErrInvalidInput)
		}
	}

	timeLimit := 30
	if req.TimeLimit != nil {
		timeLimit = *req.TimeLimit
	}

	quiz := &model.Quiz{
		QuizID:          quizID,
		CourseID:        courseID,
		Title:           req.Title,
		ScoringStrategy: strategy,
		PassingScore:    passingScore,
		TimeLimit:       timeLimit,
		Questions:       questions,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.quizRepo.Create(ctx, tx, quiz)
	})
	if err != nil {
		logger.Error("Failed to create quiz", "error", err, "course_id", courseID.String())
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "クイズの作成に失敗しました。", "", err)
	}

	logger.Info("Quiz created", "quiz_id", quiz.QuizID.String(), "course_id", courseID.String())
	return quiz, nil
}

func (s *quizService) GetQuiz(ctx context.Context, requesterID uuid.UUID, role string, quizID uuid.UUID) (*model.Quiz, error) {
	quiz, err := s.quizRepo.FindByID(ctx, s.db, quizID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, model.NewAppError("QUIZ_NOT_FOUND", "クイズが見つかりません。", "", model.ErrNotFound)
		}
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "サーバー内部エラー", "", err)
	}

	course, err := s.courseRepo.FindByID(ctx, s.db, quiz.CourseID)
	if err != nil {
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "サーバー内部エラー", "", err)
	}
	if !CanViewProgress(course, requesterID, role) {
		return nil, model.NewAppError("NOT_ENROLLED", "このコースに受講登録されていません。", "", model.ErrNotEnrolled)
	}
	return quiz, nil
}

func (s *quizService) ListQuizzes(ctx context.Context, requesterID uuid.UUID, role string, courseID uuid.UUID) ([]*model.Quiz, error) {
	course, err := s.courseRepo.FindByID(ctx, s.db, courseID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, model.NewAppError("COURSE_NOT_FOUND", "コースが見つかりません。", "", model.ErrNotFound)
		}
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "サーバー内部エラー", "", err)
	}
	if !CanViewProgress(course, requesterID, role) {
		return nil, model.NewAppError("NOT_ENROLLED", "このコースに受講登録されていません。", "", model.ErrNotEnrolled)
	}
	quizzes, err := s.quizRepo.FindByCourse(ctx, s.db, courseID)
	if err != nil {
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "サーバー内部エラー", "", err)
	}
	return quizzes, nil
}

func (s *quizService) DeleteQuiz(ctx context.Context, instructorID uuid.UUID, role string, quizID uuid.UUID) error {
	logger := middleware.GetLogger(ctx)

	quiz, err := s.quizRepo.FindByID(ctx, s.db, quizID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.NewAppError("QUIZ_NOT_FOUND", "クイズが見つかりません。", "", model.ErrNotFound)
		}
		return model.NewAppError("INTERNAL_SERVER_ERROR", "サーバー内部エラー", "", err)
	}
	course, err := s.courseRepo.FindByID(ctx, s.db, quiz.CourseID)
	if err != nil {
		return model.NewAppError("INTERNAL_SERVER_ERROR", "サーバー内部エラー", "", err)
	}
	if role != model.RoleAdmin && course.InstructorID != instructorID {
		return model.NewAppError("FORBIDDEN", "このクイズを削除する権限がありません。", "", model.ErrForbidden)
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.quizRepo.Delete(ctx, tx, quizID)
	})
	if err != nil {
		logger.Error("Failed to delete quiz", "error", err, "quiz_id", quizID.String())
		return model.NewAppError("INTERNAL_SERVER_ERROR", "クイズの削除に失敗しました。", "", err)
	}
	return nil
}

func (s *quizService) Submit(ctx context.Context, studentID, quizID uuid.UUID, req *model.SubmitQuizRequest) (*model.GradedAttempt, error) {
	logger := middleware.GetLogger(ctx)

	quiz, err := s.quizRepo.FindByID(ctx, s.db, quizID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, model.NewAppError("QUIZ_NOT_FOUND", "クイズが見つかりません。", "", model.ErrNotFound)
		}
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "サーバー内部エラー", "", err)
	}

	course, err := s.courseRepo.FindByID(ctx, s.db, quiz.CourseID)
	if err != nil {
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "サーバー内部エラー", "", err)
	}
	if err := AssertEnrolled(course, studentID); err != nil {
		return nil, err
	}

	// 採点は純粋な計算。ここで失敗したら何も書き込まない
	graded, err := GradeQuiz(quiz, studentID, req.Answers, time.Now())
	if err != nil {
		return nil, err
	}

	verdictsJSON, err := json.Marshal(graded.Verdicts)
	if err != nil {
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "採点結果の保存に失敗しました。", "", err)
	}
	attempt := &model.QuizAttempt{
		AttemptID:   uuid.New(),
		QuizID:      quizID,
		StudentID:   studentID,
		Score:       graded.Score,
		Passed:      graded.Passed,
		Answers:     verdictsJSON,
		CompletedAt: graded.CompletedAt,
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.quizRepo.CreateAttempt(ctx, tx, attempt)
	})
	if err != nil {
		logger.Error("Failed to persist quiz attempt", "error", err, "quiz_id", quizID.String())
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "受験結果の保存に失敗しました。", "", err)
	}

	// レジャーへの反映。履歴は保存済みなので、ここで失敗しても受験自体は残る
	if _, err := s.progressService.RecordQuizResult(ctx, course.CourseID, attempt.AttemptID, graded); err != nil {
		logger.Error("Failed to fold quiz result into ledger", "error", err, "attempt_id", attempt.AttemptID.String())
		return nil, err
	}

	logger.Info("Quiz submitted",
		"quiz_id", quizID.String(),
		"student_id", studentID.String(),
		"score", graded.Score,
		"passed", graded.Passed,
	)
	return graded, nil
}

func (s *quizService) ListAttempts(ctx context.Context, studentID, quizID uuid.UUID) ([]*model.QuizAttempt, error) {
	attempts, err := s.quizRepo.FindAttempts(ctx, s.db, quizID, studentID)
	if err != nil {
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "サーバー内部エラー", "", err)
	}
	return attempts, nil
}
