// internal/model/quiz.go
package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ScoringStrategy は採点スコアの尺度を表します。
// クイズごとに明示的に1つ選ぶ（リクエストの形から推測しない）。
type ScoringStrategy string

const (
	// 正解した設問の配点を合計する (100点満点とは限らない)
	ScoringPointWeighted ScoringStrategy = "point_weighted"
	// 正解数 / 設問数 × 100 (常に0〜100)
	ScoringPercentageNormalized ScoringStrategy = "percentage_normalized"
)

func (s ScoringStrategy) Valid() bool {
	return s == ScoringPointWeighted || s == ScoringPercentageNormalized
}

// Quiz はコースに属するクイズを表します。
// PassingScore は ScoringStrategy と同じ尺度で解釈される。
type Quiz struct {
	QuizID          uuid.UUID       `gorm:"type:uuid;primaryKey" json:"quiz_id"`
	CourseID        uuid.UUID       `gorm:"type:uuid;not null;index" json:"course_id"`
	Title           string          `gorm:"not null" json:"title"`
	ScoringStrategy ScoringStrategy `gorm:"type:varchar(30);not null;default:'percentage_normalized'" json:"scoring_strategy"`
	PassingScore    float64         `gorm:"not null;default:70" json:"passing_score"`
	TimeLimit       int             `gorm:"not null;default:30" json:"time_limit"` // 分単位。クライアント側で表示するだけの参考値
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
	DeletedAt       gorm.DeletedAt  `gorm:"index" json:"-"`

	// 関連 (Preload用)
	Questions []QuizQuestion `gorm:"foreignKey:QuizID;references:QuizID" json:"questions,omitempty"`
}

func (Quiz) TableName() string {
	return "quizzes"
}

// QuizQuestion はクイズの1設問を表します。
// Options は選択肢テキストの配列をJSONカラムで保持する。
type QuizQuestion struct {
	QuestionID    uuid.UUID      `gorm:"type:uuid;primaryKey" json:"question_id"`
	QuizID        uuid.UUID      `gorm:"type:uuid;not null;index:idx_quiz_question_order,unique" json:"-"`
	OrderIndex    int            `gorm:"not null;index:idx_quiz_question_order,unique" json:"order_index"`
	Text          string         `gorm:"not null" json:"text"`
	Options       datatypes.JSON `gorm:"not null" json:"options"` // []string
	CorrectAnswer int            `gorm:"not null" json:"-"`       // 0始まりの正解選択肢。受講者には返さない
	Points        int            `gorm:"not null;default:1" json:"points"`
	Explanation   string         `json:"explanation,omitempty"`
}

func (QuizQuestion) TableName() string {
	return "quiz_questions"
}

// クイズ作成リクエストDTO
type PostQuizRequest struct {
	Title           string                `json:"title" validate:"required,min=1,max=200"`
	ScoringStrategy string                `json:"scoring_strategy" validate:"omitempty,oneof=point_weighted percentage_normalized"`
	PassingScore    *float64              `json:"passing_score" validate:"omitempty,gte=0"`
	TimeLimit       *int                  `json:"time_limit" validate:"omitempty,gt=0"`
	Questions       []PostQuestionRequest `json:"questions" validate:"required,min=1,dive"`
}

type PostQuestionRequest struct {
	Text          string   `json:"text" validate:"required"`
	Options       []string `json:"options" validate:"required,min=2"`
	CorrectAnswer int      `json:"correct_answer" validate:"gte=0"`
	Points        *int     `json:"points" validate:"omitempty,gt=0"` // 未指定なら1
	Explanation   string   `json:"explanation"`
}

// クイズ回答送信リクエストDTO。
// answers[i] は questions[i] に対応する選択肢番号。-1 は未回答。
type SubmitQuizRequest struct {
	Answers []int `json:"answers" validate:"required"`
}
