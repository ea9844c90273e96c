// internal/service/enrollment.go
package service

import (
	"learnkeep/internal/model"

	"github.com/google/uuid"
)

// IsEnrolled はコースのスナップショット（Enrollments がPreload済みであること）から
// 受講登録の有無を判定します。DBアクセスはしない。
func IsEnrolled(course *model.Course, studentID uuid.UUID) bool {
	for _, e := range course.Enrollments {
		if e.StudentID == studentID {
			return true
		}
	}
	return false
}

// AssertEnrolled は受講登録がない場合に ErrNotEnrolled を返します。
// レジャーへの書き込み（レッスン完了・クイズ提出）は必ずこの関門を通す。
func AssertEnrolled(course *model.Course, studentID uuid.UUID) error {
	if !IsEnrolled(course, studentID) {
		return model.NewAppError("NOT_ENROLLED", "このコースに受講登録されていません。", "", model.ErrNotEnrolled)
	}
	return nil
}

// CanViewProgress は進捗の閲覧可否を判定します。
// 本人（受講登録済み）のほか、コースの講師と管理者は読み取りのみ許可される。
func CanViewProgress(course *model.Course, userID uuid.UUID, role string) bool {
	if role == model.RoleAdmin {
		return true
	}
	if role == model.RoleInstructor && course.InstructorID == userID {
		return true
	}
	return IsEnrolled(course, userID)
}
