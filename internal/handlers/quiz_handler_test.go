// internal/handlers/quiz_handler_test.go
package handlers_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"learnkeep/internal/handlers"
	"learnkeep/internal/model"
	"learnkeep/internal/service/mocks"
)

func TestQuizHandler_PostSubmission(t *testing.T) {
	studentID := uuid.New()
	quizID := uuid.New()

	validReqBody := model.SubmitQuizRequest{Answers: []int{0, 1, -1}}
	gradedResult := &model.GradedAttempt{
		QuizID:    quizID,
		StudentID: studentID,
		Score:     66.67,
		MaxScore:  100,
		Passed:    false,
		Verdicts: []model.AnswerVerdict{
			{QuestionIndex: 0, SelectedOption: 0, IsCorrect: true},
			{QuestionIndex: 1, SelectedOption: 1, IsCorrect: true},
			{QuestionIndex: 2, SelectedOption: -1, IsCorrect: false},
		},
		CompletedAt: time.Now(),
	}

	tests := []struct {
		name           string
		quizIDParam    string
		body           interface{}
		setupMock      func(m *mocks.MockQuizService)
		expectedStatus int
		expectedCode   string
	}{
		{
			name:        "正常系: 採点結果が201で返る",
			quizIDParam: quizID.String(),
			body:        validReqBody,
			setupMock: func(m *mocks.MockQuizService) {
				m.On("Submit", mock.AnythingOfType("*context.valueCtx"), studentID, quizID, &validReqBody).
					Return(gradedResult, nil).Once()
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:        "異常系: 無効な回答セットは400",
			quizIDParam: quizID.String(),
			body:        validReqBody,
			setupMock: func(m *mocks.MockQuizService) {
				m.On("Submit", mock.AnythingOfType("*context.valueCtx"), studentID, quizID, &validReqBody).
					Return(nil, model.NewAppError("INVALID_ANSWER_SET", "設問2の回答が選択肢の範囲外です。", "answers", model.ErrInvalidInput)).Once()
			},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   "INVALID_ANSWER_SET",
		},
		{
			name:        "異常系: 未登録の学生は403",
			quizIDParam: quizID.String(),
			body:        validReqBody,
			setupMock: func(m *mocks.MockQuizService) {
				m.On("Submit", mock.AnythingOfType("*context.valueCtx"), studentID, quizID, &validReqBody).
					Return(nil, model.NewAppError("NOT_ENROLLED", "このコースに受講登録されていません。", "", model.ErrNotEnrolled)).Once()
			},
			expectedStatus: http.StatusForbidden,
			expectedCode:   "NOT_ENROLLED",
		},
		{
			name:           "異常系: 壊れたJSONは400",
			quizIDParam:    quizID.String(),
			body:           `{"answers": [0, 1`,
			setupMock:      func(m *mocks.MockQuizService) { /* Serviceは呼ばれない */ },
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "異常系: 回答が空のリクエストは400",
			quizIDParam:    quizID.String(),
			body:           model.SubmitQuizRequest{},
			setupMock:      func(m *mocks.MockQuizService) { /* バリデーションで弾かれる */ },
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "異常系: クイズIDがUUIDでない場合は400",
			quizIDParam:    "not-a-uuid",
			body:           validReqBody,
			setupMock:      func(m *mocks.MockQuizService) { /* Serviceは呼ばれない */ },
			expectedStatus: http.StatusBadRequest,
			expectedCode:   "INVALID_URL_PARAM",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			mockService := mocks.NewMockQuizService(t)
			tc.setupMock(mockService)

			handler := handlers.NewQuizHandler(mockService, nil)
			router := chi.NewRouter()
			router.Use(testAuth(studentID, model.RoleStudent))
			router.Post("/api/v1/quizzes/{quiz_id}/submissions", handler.PostSubmission)

			url := fmt.Sprintf("/api/v1/quizzes/%s/submissions", tc.quizIDParam)
			req := createRequest(t, "POST", url, tc.body)
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, req)

			assert.Equal(t, tc.expectedStatus, rr.Code)

			if tc.expectedStatus == http.StatusCreated {
				var resp model.GradedAttempt
				assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
				assert.Equal(t, gradedResult.Score, resp.Score)
				assert.Equal(t, gradedResult.Passed, resp.Passed)
				assert.Len(t, resp.Verdicts, 3)
			} else {
				assertErrorResponse(t, rr, tc.expectedCode)
			}
		})
	}
}

func TestQuizHandler_PostQuiz(t *testing.T) {
	instructorID := uuid.New()
	courseID := uuid.New()

	validReqBody := model.PostQuizRequest{
		Title: "理解度チェック",
		Questions: []model.PostQuestionRequest{
			{Text: "q1", Options: []string{"a", "b", "c"}, CorrectAnswer: 0},
		},
	}
	createdQuiz := &model.Quiz{
		QuizID:          uuid.New(),
		CourseID:        courseID,
		Title:           validReqBody.Title,
		ScoringStrategy: model.ScoringPercentageNormalized,
		PassingScore:    70,
		TimeLimit:       30,
	}

	tests := []struct {
		name           string
		body           interface{}
		setupMock      func(m *mocks.MockQuizService)
		expectedStatus int
		expectedCode   string
	}{
		{
			name: "正常系: クイズ作成は201",
			body: validReqBody,
			setupMock: func(m *mocks.MockQuizService) {
				m.On("CreateQuiz", mock.AnythingOfType("*context.valueCtx"), instructorID, model.RoleInstructor, courseID, &validReqBody).
					Return(createdQuiz, nil).Once()
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "異常系: タイトルなしはバリデーションで400",
			body:           model.PostQuizRequest{Questions: validReqBody.Questions},
			setupMock:      func(m *mocks.MockQuizService) { /* Serviceは呼ばれない */ },
			expectedStatus: http.StatusBadRequest,
			expectedCode:   "VALIDATION_ERROR",
		},
		{
			name:           "異常系: 設問なしはバリデーションで400",
			body:           model.PostQuizRequest{Title: "t"},
			setupMock:      func(m *mocks.MockQuizService) { /* Serviceは呼ばれない */ },
			expectedStatus: http.StatusBadRequest,
			expectedCode:   "VALIDATION_ERROR",
		},
		{
			name: "異常系: 合格点が尺度に合わない場合は400",
			body: validReqBody,
			setupMock: func(m *mocks.MockQuizService) {
				m.On("CreateQuiz", mock.AnythingOfType("*context.valueCtx"), instructorID, model.RoleInstructor, courseID, &validReqBody).
					Return(nil, model.NewAppError("INVALID_PASSING_SCORE", "合格点は100以下で指定してください。", "passing_score", model.ErrInvalidInput)).Once()
			},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   "INVALID_PASSING_SCORE",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			mockService := mocks.NewMockQuizService(t)
			tc.setupMock(mockService)

			handler := handlers.NewQuizHandler(mockService, nil)
			router := chi.NewRouter()
			router.Use(testAuth(instructorID, model.RoleInstructor))
			router.Post("/api/v1/courses/{course_id}/quizzes", handler.PostQuiz)

			url := fmt.Sprintf("/api/v1/courses/%s/quizzes", courseID)
			req := createRequest(t, "POST", url, tc.body)
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, req)

			assert.Equal(t, tc.expectedStatus, rr.Code)

			if tc.expectedStatus == http.StatusCreated {
				var resp model.Quiz
				assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
				assert.Equal(t, createdQuiz.QuizID, resp.QuizID)
				assert.Equal(t, model.ScoringPercentageNormalized, resp.ScoringStrategy)
			} else {
				assertErrorResponse(t, rr, tc.expectedCode)
			}
		})
	}
}
