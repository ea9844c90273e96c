// internal/service/course_service_test.go
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

// --- Test Enroll ---

func Test_courseService_Enroll(t *testing.T) {
	ctx := context.Background()
	db := setupTestDBProgress()
	studentID := uuid.New()

	t.Run("正常系: 受講登録と同時に空のレジャーが作られる", func(t *testing.T) {
		courseRepo := mocks.NewCourseRepository(t)
		progressRepo := mocks.NewProgressRepository(t)
		svc := NewCourseService(db, courseRepo, progressRepo)

		course := buildCourse(3)
		course.IsPublished = true

		courseRepo.On("FindByID", ctx, mock.AnythingOfType("*gorm.DB"), course.CourseID).
			Return(course, nil).Once()
		courseRepo.On("CreateEnrollment", ctx, mock.AnythingOfType("*gorm.DB"), mock.AnythingOfType("*model.Enrollment")).
			Run(func(args mock.Arguments) {
				enrollment := args.Get(2).(*model.Enrollment)
				assert.Equal(t, studentID, enrollment.StudentID)
				assert.Equal(t, course.CourseID, enrollment.CourseID)
			}).Return(nil).Once()
		progressRepo.On("Create", ctx, mock.AnythingOfType("*gorm.DB"), mock.AnythingOfType("*model.Progress")).
			Run(func(args mock.Arguments) {
				progress := args.Get(2).(*model.Progress)
				assert.Equal(t, studentID, progress.StudentID)
				assert.Equal(t, 0.0, progress.Percentage)
				assert.Equal(t, model.StatusNotStarted, progress.Status)
				assert.Equal(t, int64(0), progress.Revision)
			}).Return(nil).Once()

		enrollment, err := svc.Enroll(ctx, studentID, course.CourseID)
		require.NoError(t, err)
		require.NotNil(t, enrollment)
	})

	t.Run("異常系: 未公開コースには登録できない", func(t *testing.T) {
		courseRepo := mocks.NewCourseRepository(t)
		progressRepo := mocks.NewProgressRepository(t)
		svc := NewCourseService(db, courseRepo, progressRepo)

		course := buildCourse(3) // IsPublished=true はヘルパーのデフォルトなので明示的に落とす
		course.IsPublished = false

		courseRepo.On("FindByID", ctx, mock.AnythingOfType("*gorm.DB"), course.CourseID).
			Return(course, nil).Once()

		_, err := svc.Enroll(ctx, studentID, course.CourseID)
		require.Error(t, err)
		assert.True(t, errors.Is(err, model.ErrForbidden))
		_ = progressRepo // レジャーは作られない
	})

	t.Run("異常系: 二重登録はConflict", func(t *testing.T) {
		courseRepo := mocks.NewCourseRepository(t)
		progressRepo := mocks.NewProgressRepository(t)
		svc := NewCourseService(db, courseRepo, progressRepo)

		course := buildCourse(3)
		course.IsPublished = true

		courseRepo.On("FindByID", ctx, mock.AnythingOfType("*gorm.DB"), course.CourseID).
			Return(course, nil).Once()
		courseRepo.On("CreateEnrollment", ctx, mock.AnythingOfType("*gorm.DB"), mock.AnythingOfType("*model.Enrollment")).
			Return(model.ErrConflict).Once()

		_, err := svc.Enroll(ctx, studentID, course.CourseID)
		require.Error(t, err)
		assert.True(t, errors.Is(err, model.ErrConflict))

		var appErr *model.AppError
		require.True(t, errors.As(err, &appErr))
		assert.Equal(t, "ALREADY_ENROLLED", appErr.Detail.Code)
	})

	t.Run("異常系: 存在しないコース", func(t *testing.T) {
		courseRepo := mocks.NewCourseRepository(t)
		progressRepo := mocks.NewProgressRepository(t)
		svc := NewCourseService(db, courseRepo, progressRepo)

		courseID := uuid.New()
		courseRepo.On("FindByID", ctx, mock.AnythingOfType("*gorm.DB"), courseID).
			Return(nil, model.ErrNotFound).Once()

		_, err := svc.Enroll(ctx, studentID, courseID)
		require.Error(t, err)
		assert.True(t, errors.Is(err, model.ErrNotFound))
		_ = progressRepo
	})
}

// --- Test CreateCourse ---

func Test_courseService_CreateCourse(t *testing.T) {
	ctx := context.Background()
	db := setupTestDBProgress()
	instructorID := uuid.New()

	t.Run("正常系: デフォルト値が適用され未公開で作成される", func(t *testing.T) {
		courseRepo := mocks.NewCourseRepository(t)
		progressRepo := mocks.NewProgressRepository(t)
		svc := NewCourseService(db, courseRepo, progressRepo)

		courseRepo.On("Create", ctx, mock.AnythingOfType("*gorm.DB"), mock.AnythingOfType("*model.Course")).
			Return(nil).Once()

		req := &model.PostCourseRequest{Title: "Go入門", Description: "d", Category: "programming"}
		course, err := svc.CreateCourse(ctx, instructorID, req)
		require.NoError(t, err)
		assert.Equal(t, "Beginner", course.Level)
		assert.Equal(t, model.ProgressUnitLessonsOnly, course.ProgressUnit)
		assert.False(t, course.IsPublished)
		assert.Equal(t, instructorID, course.InstructorID)
		_ = progressRepo
	})

	t.Run("異常系: 不明な進捗単位", func(t *testing.T) {
		courseRepo := mocks.NewCourseRepository(t)
		progressRepo := mocks.NewProgressRepository(t)
		svc := NewCourseService(db, courseRepo, progressRepo)

		req := &model.PostCourseRequest{Title: "t", Description: "d", Category: "c", ProgressUnit: "everything"}
		_, err := svc.CreateCourse(ctx, instructorID, req)
		require.Error(t, err)
		assert.True(t, errors.Is(err, model.ErrInvalidInput))
		_ = progressRepo
	})
}

// --- Test UpdateCourse / DeleteCourse の権限 ---

func Test_courseService_UpdateCourse(t *testing.T) {
	ctx := context.Background()
	db := setupTestDBProgress()

	t.Run("異常系: 他の講師のコースは編集できない", func(t *testing.T) {
		courseRepo := mocks.NewCourseRepository(t)
		progressRepo := mocks.NewProgressRepository(t)
		svc := NewCourseService(db, courseRepo, progressRepo)

		course := buildCourse(0)
		courseRepo.On("FindByID", ctx, mock.AnythingOfType("*gorm.DB"), course.CourseID).
			Return(course, nil).Once()

		title := "hijack"
		_, err := svc.UpdateCourse(ctx, uuid.New(), model.RoleInstructor, course.CourseID, &model.PatchCourseRequest{Title: &title})
		require.Error(t, err)
		assert.True(t, errors.Is(err, model.ErrForbidden))
		_ = progressRepo
	})

	t.Run("正常系: adminは任意のコースを編集できる", func(t *testing.T) {
		courseRepo := mocks.NewCourseRepository(t)
		progressRepo := mocks.NewProgressRepository(t)
		svc := NewCourseService(db, courseRepo, progressRepo)

		course := buildCourse(0)
		published := true
		courseRepo.On("FindByID", ctx, mock.AnythingOfType("*gorm.DB"), course.CourseID).
			Return(course, nil).Twice() // 権限確認と更新後の再取得
		courseRepo.On("Update", ctx, mock.AnythingOfType("*gorm.DB"), course.CourseID, mock.Anything).
			Run(func(args mock.Arguments) {
				updates := args.Get(3).(map[string]interface{})
				assert.Equal(t, true, updates["is_published"])
				assert.NotContains(t, updates, "title") // 指定していない項目は触らない
			}).Return(nil).Once()

		_, err := svc.UpdateCourse(ctx, uuid.New(), model.RoleAdmin, course.CourseID, &model.PatchCourseRequest{IsPublished: &published})
		require.NoError(t, err)
		_ = progressRepo
	})
}
