// internal/service/grader.go
package service

import (
	"encoding/json"
	"fmt"
	"math"
	"time"

	"learnkeep/internal/model"

	"github.com/google/uuid"
)

// UnansweredOption は「未回答」を表す回答値です
const UnansweredOption = -1

// GradeQuiz はクイズへの回答を採点し、不変の採点結果を返します。
// 副作用はなし: 受験履歴の保存とレジャーへの反映は呼び出し側が行う。
//
// answers[i] は questions[i] (order_index昇順) への選択肢番号。-1 は未回答として
// 不正解扱い。回答数が設問数より少ない場合、足りない分は未回答として採点する。
// 回答数が設問数を超える、または選択肢番号が範囲外の場合は回答セット全体を
// 無効として採点しない。
func GradeQuiz(quiz *model.Quiz, studentID uuid.UUID, answers []int, now time.Time) (*model.GradedAttempt, error) {
	if len(quiz.Questions) == 0 {
		return nil, model.NewAppError("EMPTY_QUIZ", "このクイズには設問がありません。", "", model.ErrInvalidInput)
	}
	if len(answers) > len(quiz.Questions) {
		return nil, model.NewAppError("INVALID_ANSWER_SET",
			fmt.Sprintf("回答数が設問数を超えています（設問%d件に対して回答%d件）。", len(quiz.Questions), len(answers)),
			"answers", model.ErrInvalidInput)
	}

	verdicts := make([]model.AnswerVerdict, 0, len(quiz.Questions))
	var earnedPoints, totalPoints int
	var correctCount int

	for i, q := range quiz.Questions {
		var options []string
		if err := json.Unmarshal(q.Options, &options); err != nil {
			return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "設問データの読み込みに失敗しました。", "", err)
		}

		selected := UnansweredOption
		if i < len(answers) {
			selected = answers[i]
		}
		if selected != UnansweredOption && (selected < 0 || selected >= len(options)) {
			return nil, model.NewAppError("INVALID_ANSWER_SET",
				fmt.Sprintf("設問%dの回答が選択肢の範囲外です。", i+1),
				"answers", model.ErrInvalidInput)
		}

		correct := selected != UnansweredOption && selected == q.CorrectAnswer
		if correct {
			correctCount++
			earnedPoints += q.Points
		}
		totalPoints += q.Points

		verdicts = append(verdicts, model.AnswerVerdict{
			QuestionIndex:  i,
			SelectedOption: selected,
			IsCorrect:      correct,
		})
	}

	var score, maxScore float64
	switch quiz.ScoringStrategy {
	case model.ScoringPointWeighted:
		score = float64(earnedPoints)
		maxScore = float64(totalPoints)
	case model.ScoringPercentageNormalized:
		score = roundHalfUp(float64(correctCount) / float64(len(quiz.Questions)) * 100)
		maxScore = 100
	default:
		return nil, model.NewAppError("INVALID_SCORING_STRATEGY", "不明な採点方式です。", "scoring_strategy", model.ErrInvalidInput)
	}

	return &model.GradedAttempt{
		QuizID:      quiz.QuizID,
		StudentID:   studentID,
		Score:       score,
		MaxScore:    maxScore,
		Passed:      score >= quiz.PassingScore,
		Verdicts:    verdicts,
		CompletedAt: now,
	}, nil
}

// roundHalfUp は小数第2位までの四捨五入 (2/3 → 66.67)
func roundHalfUp(v float64) float64 {
	return math.Floor(v*100+0.5) / 100
}
