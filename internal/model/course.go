// internal/model/course.go
package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProgressUnit は進捗率の分母に何を数えるかを表します。
// コースごとに固定し、再計算のたびに揺れないようにする。
type ProgressUnit string

const (
	ProgressUnitLessonsOnly       ProgressUnit = "lessons_only"
	ProgressUnitLessonsAndQuizzes ProgressUnit = "lessons_and_quizzes"
)

func (u ProgressUnit) Valid() bool {
	return u == ProgressUnitLessonsOnly || u == ProgressUnitLessonsAndQuizzes
}

// Course はコース情報を表します
type Course struct {
	CourseID     uuid.UUID      `gorm:"type:uuid;primaryKey" json:"course_id"`
	InstructorID uuid.UUID      `gorm:"type:uuid;not null;index" json:"instructor_id"`
	Title        string         `gorm:"not null" json:"title"`
	Description  string         `gorm:"not null" json:"description"`
	Category     string         `gorm:"not null;index" json:"category"`
	Level        string         `gorm:"type:varchar(20);default:'Beginner'" json:"level"`
	Price        float64        `gorm:"default:0" json:"price"`
	Thumbnail    string         `json:"thumbnail,omitempty"`
	IsPublished  bool           `gorm:"default:false;index" json:"is_published"`
	ProgressUnit ProgressUnit   `gorm:"type:varchar(30);not null;default:'lessons_only'" json:"progress_unit"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`

	// 関連 (Preload用)
	Lessons     []Lesson     `gorm:"foreignKey:CourseID;references:CourseID" json:"lessons,omitempty"`
	Quizzes     []Quiz       `gorm:"foreignKey:CourseID;references:CourseID" json:"quizzes,omitempty"`
	Enrollments []Enrollment `gorm:"foreignKey:CourseID;references:CourseID" json:"-"`
}

func (Course) TableName() string {
	return "courses"
}

// Enrollment はコースへの受講登録を表します (student と course の組で一意)
type Enrollment struct {
	EnrollmentID uuid.UUID `gorm:"type:uuid;primaryKey" json:"enrollment_id"`
	CourseID     uuid.UUID `gorm:"type:uuid;not null;index:idx_course_student,unique" json:"course_id"`
	StudentID    uuid.UUID `gorm:"type:uuid;not null;index:idx_course_student,unique" json:"student_id"`
	EnrolledAt   time.Time `gorm:"not null" json:"enrolled_at"`
}

func (Enrollment) TableName() string {
	return "enrollments"
}

// コース作成リクエストDTO
type PostCourseRequest struct {
	Title        string  `json:"title" validate:"required,min=1,max=200"`
	Description  string  `json:"description" validate:"required"`
	Category     string  `json:"category" validate:"required"`
	Level        string  `json:"level" validate:"omitempty,oneof=Beginner Intermediate Advanced"`
	Price        float64 `json:"price" validate:"omitempty,gte=0"`
	Thumbnail    string  `json:"thumbnail" validate:"omitempty,url"`
	ProgressUnit string  `json:"progress_unit" validate:"omitempty,oneof=lessons_only lessons_and_quizzes"`
}

// コース更新（部分）リクエストDTO
type PatchCourseRequest struct {
	Title       *string  `json:"title,omitempty" validate:"omitempty,min=1,max=200"`
	Description *string  `json:"description,omitempty" validate:"omitempty,min=1"`
	Category    *string  `json:"category,omitempty" validate:"omitempty,min=1"`
	Level       *string  `json:"level,omitempty" validate:"omitempty,oneof=Beginner Intermediate Advanced"`
	Price       *float64 `json:"price,omitempty" validate:"omitempty,gte=0"`
	Thumbnail   *string  `json:"thumbnail,omitempty" validate:"omitempty,url"`
	IsPublished *bool    `json:"is_published,omitempty"`
}

// コース一覧の絞り込み条件
type CourseFilter struct {
	Category string
	Level    string
	Search   string
}
