// internal/model/progress.go
package model

import (
	"time"

	"github.com/google/uuid"
)

// ProgressStatus は進捗率から導出されるステータスです。
// 常に percentage から再計算し、単独で保存・更新しない。
type ProgressStatus string

const (
	StatusNotStarted ProgressStatus = "not_started"
	StatusInProgress ProgressStatus = "in_progress"
	StatusCompleted  ProgressStatus = "completed"
)

// Progress は受講者×コースごとの完了台帳（レジャー）を表します。
// (StudentID, CourseID) の組で高々1件。更新は必ず ProgressService 経由で行い、
// Revision による楽観ロックで同時書き込みの取りこぼしを防ぐ。
type Progress struct {
	ProgressID   uuid.UUID      `gorm:"type:uuid;primaryKey" json:"progress_id"`
	StudentID    uuid.UUID      `gorm:"type:uuid;not null;index:idx_student_course,unique" json:"student_id"`
	CourseID     uuid.UUID      `gorm:"type:uuid;not null;index:idx_student_course,unique" json:"course_id"`
	Percentage   float64        `gorm:"not null;default:0" json:"percentage"` // 0〜100。完了アイテム数から導出
	Status       ProgressStatus `gorm:"type:varchar(20);not null;default:'not_started'" json:"status"`
	LastAccessed time.Time      `gorm:"not null" json:"last_accessed"`
	Revision     int64          `gorm:"not null;default:0" json:"-"` // 楽観ロック用
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`

	// 関連 (Preload用)
	CompletedLessons []LessonCompletion `gorm:"foreignKey:ProgressID;references:ProgressID" json:"completed_lessons"`
	QuizResults      []QuizResult       `gorm:"foreignKey:ProgressID;references:ProgressID" json:"quiz_results"`
}

func (Progress) TableName() string {
	return "progress"
}

// LessonCompletion は完了済みレッスンの1エントリです。
// (ProgressID, LessonID) で一意: 同じレッスンを再完了しても行は増えない。
type LessonCompletion struct {
	ID          uint      `gorm:"primaryKey" json:"-"`
	ProgressID  uuid.UUID `gorm:"type:uuid;not null;index:idx_progress_lesson,unique" json:"-"`
	LessonID    uuid.UUID `gorm:"type:uuid;not null;index:idx_progress_lesson,unique" json:"lesson_id"`
	CompletedAt time.Time `gorm:"not null" json:"completed_at"`
}

func (LessonCompletion) TableName() string {
	return "lesson_completions"
}

// QuizResult はレジャーに記録されたクイズ結果の1エントリです。
// 再受験のたびに追記されるため QuizID は重複しうる。
type QuizResult struct {
	ID          uint      `gorm:"primaryKey" json:"-"`
	ProgressID  uuid.UUID `gorm:"type:uuid;not null;index" json:"-"`
	QuizID      uuid.UUID `gorm:"type:uuid;not null" json:"quiz_id"`
	AttemptID   uuid.UUID `gorm:"type:uuid;not null" json:"attempt_id"`
	Score       float64   `gorm:"not null" json:"score"`
	Passed      bool      `gorm:"not null" json:"passed"`
	CompletedAt time.Time `gorm:"not null" json:"completed_at"`
}

func (QuizResult) TableName() string {
	return "quiz_results"
}

// CourseStats は講師向けのコース統計レスポンスDTO
type CourseStats struct {
	TotalStudents   int              `json:"total_students"`
	AverageProgress float64          `json:"average_progress"`
	CompletionRate  float64          `json:"completion_rate"` // status=completed の割合 (%)
	Students        []StudentOutline `json:"students"`
}

type StudentOutline struct {
	StudentID    uuid.UUID      `json:"student_id"`
	Percentage   float64        `json:"percentage"`
	Status       ProgressStatus `json:"status"`
	LastAccessed time.Time      `json:"last_accessed"`
}
