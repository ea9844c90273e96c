// internal/model/attempt.go
package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// AnswerVerdict は1設問分の採点結果です
type AnswerVerdict struct {
	QuestionIndex  int  `json:"question_index"`
	SelectedOption int  `json:"selected_option"` // -1 は未回答
	IsCorrect      bool `json:"is_correct"`
}

// QuizAttempt はクイズへの1回の提出（採点済み）を表します。
// 追記専用: 再提出しても過去の行は決して上書きしない。
type QuizAttempt struct {
	AttemptID   uuid.UUID      `gorm:"type:uuid;primaryKey" json:"attempt_id"`
	QuizID      uuid.UUID      `gorm:"type:uuid;not null;index" json:"quiz_id"`
	StudentID   uuid.UUID      `gorm:"type:uuid;not null;index" json:"student_id"`
	Score       float64        `gorm:"not null" json:"score"`
	Passed      bool           `gorm:"not null" json:"passed"`
	Answers     datatypes.JSON `gorm:"not null" json:"answers"` // []AnswerVerdict
	CompletedAt time.Time      `gorm:"not null" json:"completed_at"`
}

func (QuizAttempt) TableName() string {
	return "quiz_attempts"
}

// GradedAttempt は採点直後の不変の結果オブジェクトです。
// 永続化とレジャーへの反映は呼び出し側の責務（採点自体は副作用なし）。
type GradedAttempt struct {
	QuizID      uuid.UUID       `json:"quiz_id"`
	StudentID   uuid.UUID       `json:"student_id"`
	Score       float64         `json:"score"`
	MaxScore    float64         `json:"max_score"` // 選択した尺度での満点
	Passed      bool            `json:"passed"`
	Verdicts    []AnswerVerdict `json:"answers"`
	CompletedAt time.Time       `json:"completed_at"`
}
