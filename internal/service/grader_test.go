// internal/service/grader_test.go
package service

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"learnkeep/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- テストヘルパー関数 ---

type questionSpec struct {
	options       []string
	correctAnswer int
	points        int
}

func buildQuiz(t *testing.T, strategy model.ScoringStrategy, passingScore float64, specs []questionSpec) *model.Quiz {
	t.Helper()
	quizID := uuid.New()
	questions := make([]model.QuizQuestion, 0, len(specs))
	for i, spec := range specs {
		optionsJSON, err := json.Marshal(spec.options)
		require.NoError(t, err)
		questions = append(questions, model.QuizQuestion{
			QuestionID:    uuid.New(),
			QuizID:        quizID,
			OrderIndex:    i,
			Text:          "q",
			Options:       optionsJSON,
			CorrectAnswer: spec.correctAnswer,
			Points:        spec.points,
		})
	}
	return &model.Quiz{
		QuizID:          quizID,
		CourseID:        uuid.New(),
		Title:           "test quiz",
		ScoringStrategy: strategy,
		PassingScore:    passingScore,
		Questions:       questions,
	}
}

func threeChoices() []string { return []string{"a", "b", "c"} }

func TestGradeQuiz_PercentageNormalized(t *testing.T) {
	studentID := uuid.New()
	now := time.Now()

	tests := []struct {
		name         string
		passingScore float64
		answers      []int
		wantScore    float64
		wantPassed   bool
	}{
		{
			name:         "正常系: 3問中2問正解は66.67点で不合格(合格点70)",
			passingScore: 70,
			answers:      []int{0, 1, 0}, // 正解は全て0
			wantScore:    66.67,
			wantPassed:   false,
		},
		{
			name:         "正常系: 全問正解で100点",
			passingScore: 70,
			answers:      []int{0, 0, 0},
			wantScore:    100,
			wantPassed:   true,
		},
		{
			name:         "正常系: 未回答(-1)は不正解扱い",
			passingScore: 70,
			answers:      []int{0, -1, -1},
			wantScore:    33.33,
			wantPassed:   false,
		},
		{
			name:         "正常系: 合格点ちょうどは合格",
			passingScore: 66.67,
			answers:      []int{0, 1, 0},
			wantScore:    66.67,
			wantPassed:   true,
		},
		{
			name:         "正常系: 全問不正解は0点",
			passingScore: 70,
			answers:      []int{2, 2, 2},
			wantScore:    0,
			wantPassed:   false,
		},
		{
			name:         "正常系: 回答数が足りない分は未回答として採点",
			passingScore: 70,
			answers:      []int{0},
			wantScore:    33.33,
			wantPassed:   false,
		},
		{
			name:         "正常系: 回答が空なら全問未回答で0点",
			passingScore: 70,
			answers:      []int{},
			wantScore:    0,
			wantPassed:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			quiz := buildQuiz(t, model.ScoringPercentageNormalized, tt.passingScore, []questionSpec{
				{options: threeChoices(), correctAnswer: 0, points: 1},
				{options: threeChoices(), correctAnswer: 0, points: 1},
				{options: threeChoices(), correctAnswer: 0, points: 1},
			})

			graded, err := GradeQuiz(quiz, studentID, tt.answers, now)
			require.NoError(t, err)
			assert.Equal(t, tt.wantScore, graded.Score)
			assert.Equal(t, float64(100), graded.MaxScore)
			assert.Equal(t, tt.wantPassed, graded.Passed)
			assert.Equal(t, quiz.QuizID, graded.QuizID)
			assert.Equal(t, studentID, graded.StudentID)
			assert.Equal(t, now, graded.CompletedAt)
			assert.Len(t, graded.Verdicts, 3)
		})
	}
}

func TestGradeQuiz_PointWeighted(t *testing.T) {
	studentID := uuid.New()
	now := time.Now()

	quiz := buildQuiz(t, model.ScoringPointWeighted, 4, []questionSpec{
		{options: threeChoices(), correctAnswer: 0, points: 1},
		{options: threeChoices(), correctAnswer: 1, points: 2},
		{options: threeChoices(), correctAnswer: 2, points: 3},
	})

	tests := []struct {
		name       string
		answers    []int
		wantScore  float64
		wantPassed bool
	}{
		{
			name:       "正常系: 1問目と3問目に正解で4点、合格点ちょうど",
			answers:    []int{0, 0, 2},
			wantScore:  4,
			wantPassed: true,
		},
		{
			name:       "正常系: 配点の低い設問だけ正解では不合格",
			answers:    []int{0, 0, 0},
			wantScore:  1,
			wantPassed: false,
		},
		{
			name:       "正常系: 全問正解で満点",
			answers:    []int{0, 1, 2},
			wantScore:  6,
			wantPassed: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			graded, err := GradeQuiz(quiz, studentID, tt.answers, now)
			require.NoError(t, err)
			assert.Equal(t, tt.wantScore, graded.Score)
			assert.Equal(t, float64(6), graded.MaxScore)
			assert.Equal(t, tt.wantPassed, graded.Passed)
		})
	}
}

func TestGradeQuiz_InvalidAnswerSet(t *testing.T) {
	studentID := uuid.New()
	now := time.Now()
	quiz := buildQuiz(t, model.ScoringPercentageNormalized, 70, []questionSpec{
		{options: threeChoices(), correctAnswer: 0, points: 1},
		{options: threeChoices(), correctAnswer: 1, points: 1},
	})

	tests := []struct {
		name    string
		answers []int
	}{
		{name: "異常系: 回答数が設問数より多い", answers: []int{0, 1, 2}},
		{name: "異常系: 選択肢番号が範囲外", answers: []int{0, 3}},
		{name: "異常系: -1以外の負数", answers: []int{0, -2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			graded, err := GradeQuiz(quiz, studentID, tt.answers, now)
			assert.Nil(t, graded)
			require.Error(t, err)
			// 回答セット全体が無効: 部分的に採点されることはない
			assert.True(t, errors.Is(err, model.ErrInvalidInput))
		})
	}
}

func TestGradeQuiz_Verdicts(t *testing.T) {
	studentID := uuid.New()
	quiz := buildQuiz(t, model.ScoringPercentageNormalized, 70, []questionSpec{
		{options: threeChoices(), correctAnswer: 0, points: 1},
		{options: threeChoices(), correctAnswer: 1, points: 1},
		{options: threeChoices(), correctAnswer: 2, points: 1},
	})

	graded, err := GradeQuiz(quiz, studentID, []int{0, -1, 1}, time.Now())
	require.NoError(t, err)

	want := []model.AnswerVerdict{
		{QuestionIndex: 0, SelectedOption: 0, IsCorrect: true},
		{QuestionIndex: 1, SelectedOption: -1, IsCorrect: false},
		{QuestionIndex: 2, SelectedOption: 1, IsCorrect: false},
	}
	assert.Equal(t, want, graded.Verdicts)
}

func TestGradeQuiz_ShortAnswerList(t *testing.T) {
	studentID := uuid.New()
	quiz := buildQuiz(t, model.ScoringPercentageNormalized, 70, []questionSpec{
		{options: threeChoices(), correctAnswer: 0, points: 1},
		{options: threeChoices(), correctAnswer: 1, points: 1},
		{options: threeChoices(), correctAnswer: 2, points: 1},
	})

	// 足りない回答は未回答として補われ、判定結果は設問数ぶん返る
	graded, err := GradeQuiz(quiz, studentID, []int{0}, time.Now())
	require.NoError(t, err)

	want := []model.AnswerVerdict{
		{QuestionIndex: 0, SelectedOption: 0, IsCorrect: true},
		{QuestionIndex: 1, SelectedOption: -1, IsCorrect: false},
		{QuestionIndex: 2, SelectedOption: -1, IsCorrect: false},
	}
	assert.Equal(t, want, graded.Verdicts)
	assert.Equal(t, 33.33, graded.Score)
	assert.False(t, graded.Passed)
}

func TestRoundHalfUp(t *testing.T) {
	assert.Equal(t, 66.67, roundHalfUp(2.0/3.0*100))
	assert.Equal(t, 33.33, roundHalfUp(1.0/3.0*100))
	assert.Equal(t, 50.0, roundHalfUp(50.0))
	assert.Equal(t, 0.13, roundHalfUp(0.125))
}
