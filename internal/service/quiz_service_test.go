// internal/service/quiz_service_test.go
package service

import (
	"context"
	"errors"
	"testing"

	"learnkeep/internal/model"
	"learnkeep/internal/repository/mocks"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func floatPtr(v float64) *float64 { return &v }
func intPtr(v int) *int           { return &v }

// --- Test CreateQuiz ---

func Test_quizService_CreateQuiz(t *testing.T) {
	ctx := context.Background()
	db := setupTestDBProgress()
	instructorID := uuid.New()

	newCourse := func() *model.Course {
		course := buildCourse(2)
		course.InstructorID = instructorID
		return course
	}

	validQuestions := []model.PostQuestionRequest{
		{Text: "q1", Options: []string{"a", "b", "c"}, CorrectAnswer: 0},
		{Text: "q2", Options: []string{"a", "b", "c"}, CorrectAnswer: 2},
	}

	t.Run("正常系: 省略した項目にはデフォルト値が入る", func(t *testing.T) {
		quizRepo := mocks.NewQuizRepository(t)
		courseRepo := mocks.NewCourseRepository(t)
		svc := NewQuizService(db, quizRepo, courseRepo, nil)

		course := newCourse()
		courseRepo.On("FindByID", ctx, mock.AnythingOfType("*gorm.DB"), course.CourseID).
			Return(course, nil).Once()
		quizRepo.On("Create", ctx, mock.AnythingOfType("*gorm.DB"), mock.AnythingOfType("*model.Quiz")).
			Return(nil).Once()

		req := &model.PostQuizRequest{Title: "理解度チェック", Questions: validQuestions}
		quiz, err := svc.CreateQuiz(ctx, instructorID, model.RoleInstructor, course.CourseID, req)
		require.NoError(t, err)
		assert.Equal(t, model.ScoringPercentageNormalized, quiz.ScoringStrategy)
		assert.Equal(t, 70.0, quiz.PassingScore)
		assert.Equal(t, 30, quiz.TimeLimit)
		require.Len(t, quiz.Questions, 2)
		assert.Equal(t, 1, quiz.Questions[0].Points) // 未指定の配点は1
		assert.Equal(t, 0, quiz.Questions[0].OrderIndex)
		assert.Equal(t, 1, quiz.Questions[1].OrderIndex)
	})

	t.Run("異常系: 正解番号が選択肢の範囲外", func(t *testing.T) {
		quizRepo := mocks.NewQuizRepository(t)
		courseRepo := mocks.NewCourseRepository(t)
		svc := NewQuizService(db, quizRepo, courseRepo, nil)

		course := newCourse()
		courseRepo.On("FindByID", ctx, mock.AnythingOfType("*gorm.DB"), course.CourseID).
			Return(course, nil).Once()

		req := &model.PostQuizRequest{
			Title: "t",
			Questions: []model.PostQuestionRequest{
				{Text: "q1", Options: []string{"a", "b"}, CorrectAnswer: 2},
			},
		}
		_, err := svc.CreateQuiz(ctx, instructorID, model.RoleInstructor, course.CourseID, req)
		require.Error(t, err)
		assert.True(t, errors.Is(err, model.ErrInvalidInput))
	})

	t.Run("異常系: percentage_normalizedで合格点が100を超える", func(t *testing.T) {
		quizRepo := mocks.NewQuizRepository(t)
		courseRepo := mocks.NewCourseRepository(t)
		svc := NewQuizService(db, quizRepo, courseRepo, nil)

		course := newCourse()
		courseRepo.On("FindByID", ctx, mock.AnythingOfType("*gorm.DB"), course.CourseID).
			Return(course, nil).Once()

		req := &model.PostQuizRequest{
			Title:        "t",
			PassingScore: floatPtr(101),
			Questions:    validQuestions,
		}
		_, err := svc.CreateQuiz(ctx, instructorID, model.RoleInstructor, course.CourseID, req)
		require.Error(t, err)
		assert.True(t, errors.Is(err, model.ErrInvalidInput))
	})

	t.Run("異常系: point_weightedで合格点が満点を超える", func(t *testing.T) {
		quizRepo := mocks.NewQuizRepository(t)
		courseRepo := mocks.NewCourseRepository(t)
		svc := NewQuizService(db, quizRepo, courseRepo, nil)

		course := newCourse()
		courseRepo.On("FindByID", ctx, mock.AnythingOfType("*gorm.DB"), course.CourseID).
			Return(course, nil).Once()

		// 満点は 2 + 3 = 5点
		req := &model.PostQuizRequest{
			Title:           "t",
			ScoringStrategy: string(model.ScoringPointWeighted),
			PassingScore:    floatPtr(6),
			Questions: []model.PostQuestionRequest{
				{Text: "q1", Options: []string{"a", "b"}, CorrectAnswer: 0, Points: intPtr(2)},
				{Text: "q2", Options: []string{"a", "b"}, CorrectAnswer: 1, Points: intPtr(3)},
			},
		}
		_, err := svc.CreateQuiz(ctx, instructorID, model.RoleInstructor, course.CourseID, req)
		require.Error(t, err)
		assert.True(t, errors.Is(err, model.ErrInvalidInput))
	})

	t.Run("正常系: point_weightedで満点ちょうどの合格点は許可", func(t *testing.T) {
		quizRepo := mocks.NewQuizRepository(t)
		courseRepo := mocks.NewCourseRepository(t)
		svc := NewQuizService(db, quizRepo, courseRepo, nil)

		course := newCourse()
		courseRepo.On("FindByID", ctx, mock.AnythingOfType("*gorm.DB"), course.CourseID).
			Return(course, nil).Once()
		quizRepo.On("Create", ctx, mock.AnythingOfType("*gorm.DB"), mock.AnythingOfType("*model.Quiz")).
			Return(nil).Once()

		req := &model.PostQuizRequest{
			Title:           "t",
			ScoringStrategy: string(model.ScoringPointWeighted),
			PassingScore:    floatPtr(5),
			Questions: []model.PostQuestionRequest{
				{Text: "q1", Options: []string{"a", "b"}, CorrectAnswer: 0, Points: intPtr(2)},
				{Text: "q2", Options: []string{"a", "b"}, CorrectAnswer: 1, Points: intPtr(3)},
			},
		}
		quiz, err := svc.CreateQuiz(ctx, instructorID, model.RoleInstructor, course.CourseID, req)
		require.NoError(t, err)
		assert.Equal(t, 5.0, quiz.PassingScore)
	})

	t.Run("異常系: 他の講師のコースにはクイズを作れない", func(t *testing.T) {
		quizRepo := mocks.NewQuizRepository(t)
		courseRepo := mocks.NewCourseRepository(t)
		svc := NewQuizService(db, quizRepo, courseRepo, nil)

		course := newCourse()
		courseRepo.On("FindByID", ctx, mock.AnythingOfType("*gorm.DB"), course.CourseID).
			Return(course, nil).Once()

		req := &model.PostQuizRequest{Title: "t", Questions: validQuestions}
		_, err := svc.CreateQuiz(ctx, uuid.New(), model.RoleInstructor, course.CourseID, req)
		require.Error(t, err)
		assert.True(t, errors.Is(err, model.ErrForbidden))
	})
}

// --- Test Submit ---

func Test_quizService_Submit(t *testing.T) {
	ctx := context.Background()
	db := setupTestDBProgress()
	studentID := uuid.New()

	t.Run("正常系: 採点・履歴追記・レジャー反映まで通る", func(t *testing.T) {
		quizRepo := mocks.NewQuizRepository(t)
		courseRepo := mocks.NewCourseRepository(t)
		progressRepo := mocks.NewProgressRepository(t)
		progressSvc := NewProgressService(db, courseRepo, progressRepo, testConfig())
		svc := NewQuizService(db, quizRepo, courseRepo, progressSvc)

		course := buildCourse(2, studentID)
		quiz := buildQuiz(t, model.ScoringPercentageNormalized, 50, []questionSpec{
			{options: threeChoices(), correctAnswer: 0, points: 1},
			{options: threeChoices(), correctAnswer: 1, points: 1},
		})
		quiz.CourseID = course.CourseID
		ledger := buildLedger(studentID, course.CourseID, 0)

		quizRepo.On("FindByID", ctx, mock.AnythingOfType("*gorm.DB"), quiz.QuizID).
			Return(quiz, nil).Once()
		// Submit本体とレジャー反映で2回読む
		courseRepo.On("FindByID", ctx, mock.AnythingOfType("*gorm.DB"), course.CourseID).
			Return(course, nil).Twice()
		quizRepo.On("CreateAttempt", ctx, mock.AnythingOfType("*gorm.DB"), mock.AnythingOfType("*model.QuizAttempt")).
			Run(func(args mock.Arguments) {
				attempt := args.Get(2).(*model.QuizAttempt)
				assert.Equal(t, quiz.QuizID, attempt.QuizID)
				assert.Equal(t, studentID, attempt.StudentID)
				assert.Equal(t, 50.0, attempt.Score)
				assert.True(t, attempt.Passed)
			}).Return(nil).Once()

		progressRepo.On("FindByStudentAndCourse", ctx, mock.AnythingOfType("*gorm.DB"), studentID, course.CourseID).
			Return(ledger, nil).Once()
		progressRepo.On("AppendQuizResult", ctx, mock.AnythingOfType("*gorm.DB"), mock.AnythingOfType("*model.QuizResult")).
			Return(nil).Once()
		progressRepo.On("UpdateWithRevision", ctx, mock.AnythingOfType("*gorm.DB"), mock.AnythingOfType("*model.Progress"), int64(0)).
			Return(nil).Once()
		progressRepo.On("FindByStudentAndCourse", ctx, mock.AnythingOfType("*gorm.DB"), studentID, course.CourseID).
			Return(ledger, nil).Once()

		graded, err := svc.Submit(ctx, studentID, quiz.QuizID, &model.SubmitQuizRequest{Answers: []int{0, 2}})
		require.NoError(t, err)
		assert.Equal(t, 50.0, graded.Score)
		assert.True(t, graded.Passed)
		require.Len(t, graded.Verdicts, 2)
		assert.True(t, graded.Verdicts[0].IsCorrect)
		assert.False(t, graded.Verdicts[1].IsCorrect)
	})

	t.Run("異常系: 未登録の学生は受験できない (履歴も残らない)", func(t *testing.T) {
		quizRepo := mocks.NewQuizRepository(t)
		courseRepo := mocks.NewCourseRepository(t)
		svc := NewQuizService(db, quizRepo, courseRepo, nil)

		course := buildCourse(2)
		quiz := buildQuiz(t, model.ScoringPercentageNormalized, 50, []questionSpec{
			{options: threeChoices(), correctAnswer: 0, points: 1},
		})
		quiz.CourseID = course.CourseID

		quizRepo.On("FindByID", ctx, mock.AnythingOfType("*gorm.DB"), quiz.QuizID).
			Return(quiz, nil).Once()
		courseRepo.On("FindByID", ctx, mock.AnythingOfType("*gorm.DB"), course.CourseID).
			Return(course, nil).Once()

		_, err := svc.Submit(ctx, studentID, quiz.QuizID, &model.SubmitQuizRequest{Answers: []int{0}})
		require.Error(t, err)
		assert.True(t, errors.Is(err, model.ErrNotEnrolled))
	})

	t.Run("異常系: 回答セットが無効なら何も書き込まれない", func(t *testing.T) {
		quizRepo := mocks.NewQuizRepository(t)
		courseRepo := mocks.NewCourseRepository(t)
		svc := NewQuizService(db, quizRepo, courseRepo, nil)

		course := buildCourse(2, studentID)
		quiz := buildQuiz(t, model.ScoringPercentageNormalized, 50, []questionSpec{
			{options: threeChoices(), correctAnswer: 0, points: 1},
			{options: threeChoices(), correctAnswer: 1, points: 1},
		})
		quiz.CourseID = course.CourseID

		quizRepo.On("FindByID", ctx, mock.AnythingOfType("*gorm.DB"), quiz.QuizID).
			Return(quiz, nil).Once()
		courseRepo.On("FindByID", ctx, mock.AnythingOfType("*gorm.DB"), course.CourseID).
			Return(course, nil).Once()

		// 範囲外の選択肢番号は回答セット全体を無効にする
		_, err := svc.Submit(ctx, studentID, quiz.QuizID, &model.SubmitQuizRequest{Answers: []int{0, 3}})
		require.Error(t, err)
		assert.True(t, errors.Is(err, model.ErrInvalidInput))
	})

	t.Run("異常系: 存在しないクイズ", func(t *testing.T) {
		quizRepo := mocks.NewQuizRepository(t)
		courseRepo := mocks.NewCourseRepository(t)
		svc := NewQuizService(db, quizRepo, courseRepo, nil)

		quizID := uuid.New()
		quizRepo.On("FindByID", ctx, mock.AnythingOfType("*gorm.DB"), quizID).
			Return(nil, model.ErrNotFound).Once()

		_, err := svc.Submit(ctx, studentID, quizID, &model.SubmitQuizRequest{Answers: []int{0}})
		require.Error(t, err)
		assert.True(t, errors.Is(err, model.ErrNotFound))
		_ = courseRepo
	})
}
