// internal/model/lesson.go
package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Lesson はコース内の1レッスンを表します。
// OrderIndex はコース内で一意で、表示順と前後関係を決める。
type Lesson struct {
	LessonID    uuid.UUID      `gorm:"type:uuid;primaryKey" json:"lesson_id"`
	CourseID    uuid.UUID      `gorm:"type:uuid;not null;index:idx_course_order,unique" json:"course_id"`
	Title       string         `gorm:"not null" json:"title"`
	Description string         `json:"description"`
	VideoURL    string         `json:"video_url,omitempty"`
	Duration    int            `json:"duration"` // 分単位
	OrderIndex  int            `gorm:"not null;index:idx_course_order,unique" json:"order_index"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Lesson) TableName() string {
	return "lessons"
}

// レッスン作成リクエストDTO
type PostLessonRequest struct {
	Title       string `json:"title" validate:"required,min=1,max=200"`
	Description string `json:"description"`
	VideoURL    string `json:"video_url" validate:"omitempty,url"`
	Duration    int    `json:"duration" validate:"omitempty,gte=0"`
	OrderIndex  *int   `json:"order_index" validate:"omitempty,gte=0"` // 未指定なら末尾に追加
}

// レッスン更新（部分）リクエストDTO
type PatchLessonRequest struct {
	Title       *string `json:"title,omitempty" validate:"omitempty,min=1,max=200"`
	Description *string `json:"description,omitempty"`
	VideoURL    *string `json:"video_url,omitempty" validate:"omitempty,url"`
	Duration    *int    `json:"duration,omitempty" validate:"omitempty,gte=0"`
	OrderIndex  *int    `json:"order_index,omitempty" validate:"omitempty,gte=0"`
}
