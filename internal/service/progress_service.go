// internal/service/progress_service.go
package service

import (
	"context"
	"errors"
	"time"

	"learnkeep/internal/config"
	"learnkeep/internal/middleware"
	"learnkeep/internal/model"
	"learnkeep/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProgressService interface {
	// CompleteLesson はレッスン完了をレジャーに記録し、進捗を再計算します。
	// 同じレッスンの再完了は冪等（完了セットは増えないが last_accessed は更新）。
	CompleteLesson(ctx context.Context, studentID, courseID, lessonID uuid.UUID) (*model.Progress, error)
	// RecordQuizResult は採点済みの結果をレジャーに追記し、進捗を再計算します。
	RecordQuizResult(ctx context.Context, courseID, attemptID uuid.UUID, graded *model.GradedAttempt) (*model.Progress, error)
	GetProgress(ctx context.Context, requesterID uuid.UUID, role string, studentID, courseID uuid.UUID) (*model.Progress, error)
	ListMyProgress(ctx context.Context, studentID uuid.UUID) ([]*model.Progress, error)
	GetCourseStats(ctx context.Context, requesterID uuid.UUID, role string, courseID uuid.UUID) (*model.CourseStats, error)
}

type progressService struct {
	db           *gorm.DB // トランザクション用にDB接続を持つ
	courseRepo   repository.CourseRepository
	progressRepo repository.ProgressRepository
	cfg          *config.Config
}

func NewProgressService(db *gorm.DB, courseRepo repository.CourseRepository, progressRepo repository.ProgressRepository, cfg *config.Config) ProgressService {
	return &progressService{
		db:           db,
		courseRepo:   courseRepo,
		progressRepo: progressRepo,
		cfg:          cfg,
	}
}

func (s *progressService) CompleteLesson(ctx context.Context, studentID, courseID, lessonID uuid.UUID) (*model.Progress, error) {
	logger := middleware.GetLogger(ctx)

	course, err := s.courseRepo.FindByID(ctx, s.db, courseID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, model.NewAppError("COURSE_NOT_FOUND", "コースが見つかりません。", "", model.ErrNotFound)
		}
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "サーバー内部エラー", "", err)
	}

	// レッスンがこのコースに属しているか
	found := false
	for _, l := range course.Lessons {
		if l.LessonID == lessonID {
			found = true
			break
		}
	}
	if !found {
		return nil, model.NewAppError("LESSON_NOT_FOUND", "レッスンが見つかりません。", "", model.ErrNotFound)
	}

	// 受講登録していない学生の書き込みは拒否。レジャーには一切触れない
	if err := AssertEnrolled(course, studentID); err != nil {
		return nil, err
	}

	now := time.Now()
	apply := func(tx *gorm.DB, progress *model.Progress) error {
		completion := &model.LessonCompletion{
			ProgressID:  progress.ProgressID,
			LessonID:    lessonID,
			CompletedAt: now,
		}
		if err := s.progressRepo.AppendLessonCompletion(ctx, tx, completion); err != nil {
			return err
		}
		// 完了セットは一意制約で守られているので、追記後のサイズを手元で求める
		completed := make(map[uuid.UUID]struct{}, len(progress.CompletedLessons)+1)
		for _, c := range progress.CompletedLessons {
			completed[c.LessonID] = struct{}{}
		}
		completed[lessonID] = struct{}{}

		progress.Percentage, progress.Status = recomputeLedger(course, len(completed), countPassedQuizzes(progress.QuizResults))
		progress.LastAccessed = now
		return nil
	}

	if err := s.applyWithRetry(ctx, studentID, courseID, apply); err != nil {
		return nil, err
	}

	logger.Info("Lesson completed", "student_id", studentID.String(), "course_id", courseID.String(), "lesson_id", lessonID.String())
	return s.progressRepo.FindByStudentAndCourse(ctx, s.db, studentID, courseID)
}

func (s *progressService) RecordQuizResult(ctx context.Context, courseID, attemptID uuid.UUID, graded *model.GradedAttempt) (*model.Progress, error) {
	logger := middleware.GetLogger(ctx)

	course, err := s.courseRepo.FindByID(ctx, s.db, courseID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, model.NewAppError("COURSE_NOT_FOUND", "コースが見つかりません。", "", model.ErrNotFound)
		}
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "サーバー内部エラー", "", err)
	}
	if err := AssertEnrolled(course, graded.StudentID); err != nil {
		return nil, err
	}

	apply := func(tx *gorm.DB, progress *model.Progress) error {
		result := &model.QuizResult{
			ProgressID:  progress.ProgressID,
			QuizID:      graded.QuizID,
			AttemptID:   attemptID,
			Score:       graded.Score,
			Passed:      graded.Passed,
			CompletedAt: graded.CompletedAt,
		}
		if err := s.progressRepo.AppendQuizResult(ctx, tx, result); err != nil {
			return err
		}

		results := append(progress.QuizResults, *result)
		progress.Percentage, progress.Status = recomputeLedger(course, distinctLessonCount(progress.CompletedLessons), countPassedQuizzes(results))
		progress.LastAccessed = graded.CompletedAt
		return nil
	}

	if err := s.applyWithRetry(ctx, graded.StudentID, courseID, apply); err != nil {
		return nil, err
	}

	logger.Info("Quiz result recorded",
		"student_id", graded.StudentID.String(),
		"quiz_id", graded.QuizID.String(),
		"passed", graded.Passed,
	)
	return s.progressRepo.FindByStudentAndCourse(ctx, s.db, graded.StudentID, courseID)
}

// applyWithRetry はレジャーの読み取り→追記→再計算→条件付きUPDATEを1トランザクションで行い、
// 楽観ロック競合時は最新のレジャーを読み直して適用をやり直します。
// 追記は集合への加算なので、やり直しても結果は同じになる。
func (s *progressService) applyWithRetry(ctx context.Context, studentID, courseID uuid.UUID, apply func(tx *gorm.DB, progress *model.Progress) error) error {
	logger := middleware.GetLogger(ctx)

	for attempt := 0; attempt < s.cfg.App.LedgerRetryLimit; attempt++ {
		err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			progress, err := s.progressRepo.FindByStudentAndCourse(ctx, tx, studentID, courseID)
			if err != nil {
				if !errors.Is(err, model.ErrNotFound) {
					return err
				}
				// 受講登録時に作られるはずだが、欠けていればここで起こす
				progress = &model.Progress{
					ProgressID:   uuid.New(),
					StudentID:    studentID,
					CourseID:     courseID,
					Status:       model.StatusNotStarted,
					LastAccessed: time.Now(),
				}
				if err := s.progressRepo.Create(ctx, tx, progress); err != nil {
					return err
				}
			}

			readRevision := progress.Revision
			if err := apply(tx, progress); err != nil {
				return err
			}
			return s.progressRepo.UpdateWithRevision(ctx, tx, progress, readRevision)
		})
		if err == nil {
			return nil
		}
		if errors.Is(err, model.ErrConflict) {
			logger.Warn("Ledger revision conflict, retrying", "attempt", attempt+1, "student_id", studentID.String())
			continue
		}
		var appErr *model.AppError
		if errors.As(err, &appErr) {
			return err
		}
		logger.Error("Ledger transaction failed", "error", err)
		return model.NewAppError("INTERNAL_SERVER_ERROR", "進捗の更新に失敗しました。", "", err)
	}
	return model.NewAppError("LEDGER_CONFLICT", "進捗の更新が混み合っています。時間をおいて再度お試しください。", "", model.ErrConflict)
}

func (s *progressService) GetProgress(ctx context.Context, requesterID uuid.UUID, role string, studentID, courseID uuid.UUID) (*model.Progress, error) {
	course, err := s.courseRepo.FindByID(ctx, s.db, courseID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, model.NewAppError("COURSE_NOT_FOUND", "コースが見つかりません。", "", model.ErrNotFound)
		}
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "サーバー内部エラー", "", err)
	}

	// 他人の進捗を読めるのはコースの講師と管理者だけ
	if requesterID != studentID && !(role == model.RoleAdmin || (role == model.RoleInstructor && course.InstructorID == requesterID)) {
		return nil, model.NewAppError("FORBIDDEN", "この進捗を閲覧する権限がありません。", "", model.ErrForbidden)
	}
	if requesterID == studentID {
		if err := AssertEnrolled(course, studentID); err != nil {
			return nil, err
		}
	}

	progress, err := s.progressRepo.FindByStudentAndCourse(ctx, s.db, studentID, courseID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, model.NewAppError("PROGRESS_NOT_FOUND", "進捗が見つかりません。", "", model.ErrNotFound)
		}
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "サーバー内部エラー", "", err)
	}
	return progress, nil
}

func (s *progressService) ListMyProgress(ctx context.Context, studentID uuid.UUID) ([]*model.Progress, error) {
	progresses, err := s.progressRepo.FindByStudent(ctx, s.db, studentID)
	if err != nil {
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "サーバー内部エラー", "", err)
	}
	return progresses, nil
}

func (s *progressService) GetCourseStats(ctx context.Context, requesterID uuid.UUID, role string, courseID uuid.UUID) (*model.CourseStats, error) {
	course, err := s.courseRepo.FindByID(ctx, s.db, courseID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, model.NewAppError("COURSE_NOT_FOUND", "コースが見つかりません。", "", model.ErrNotFound)
		}
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "サーバー内部エラー", "", err)
	}
	if role != model.RoleAdmin && course.InstructorID != requesterID {
		return nil, model.NewAppError("FORBIDDEN", "このコースの統計を閲覧する権限がありません。", "", model.ErrForbidden)
	}

	progresses, err := s.progressRepo.FindByCourse(ctx, s.db, courseID)
	if err != nil {
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "サーバー内部エラー", "", err)
	}

	stats := &model.CourseStats{
		TotalStudents: len(progresses),
		Students:      make([]model.StudentOutline, 0, len(progresses)),
	}
	var sum float64
	var completed int
	for _, p := range progresses {
		sum += p.Percentage
		if p.Status == model.StatusCompleted {
			completed++
		}
		stats.Students = append(stats.Students, model.StudentOutline{
			StudentID:    p.StudentID,
			Percentage:   p.Percentage,
			Status:       p.Status,
			LastAccessed: p.LastAccessed,
		})
	}
	if len(progresses) > 0 {
		stats.AverageProgress = roundHalfUp(sum / float64(len(progresses)))
		stats.CompletionRate = roundHalfUp(float64(completed) / float64(len(progresses)) * 100)
	}
	return stats, nil
}

// --- 集計ヘルパー ---

// recomputeLedger は完了数から進捗率とステータスを導出します。
// 分子は完了セットの生のサイズ: コースからレッスンが削除されても進捗率は下がらない
// (100%超は100にクランプ)。分母0のコースは常に0% / not_started。
func recomputeLedger(course *model.Course, completedLessons, passedQuizzes int) (float64, model.ProgressStatus) {
	denominator := len(course.Lessons)
	numerator := completedLessons
	if course.ProgressUnit == model.ProgressUnitLessonsAndQuizzes {
		denominator += len(course.Quizzes)
		numerator += passedQuizzes
	}
	if denominator == 0 {
		return 0, model.StatusNotStarted
	}

	pct := roundHalfUp(float64(numerator) / float64(denominator) * 100)
	if pct > 100 {
		pct = 100
	}

	switch {
	case pct == 0:
		return pct, model.StatusNotStarted
	case pct >= 100:
		return pct, model.StatusCompleted
	default:
		return pct, model.StatusInProgress
	}
}

func distinctLessonCount(completions []model.LessonCompletion) int {
	seen := make(map[uuid.UUID]struct{}, len(completions))
	for _, c := range completions {
		seen[c.LessonID] = struct{}{}
	}
	return len(seen)
}

// countPassedQuizzes は一度でも合格したクイズの数を数えます。
// 再受験で不合格になっても、過去の合格は取り消さない。
func countPassedQuizzes(results []model.QuizResult) int {
	passed := make(map[uuid.UUID]struct{})
	for _, r := range results {
		if r.Passed {
			passed[r.QuizID] = struct{}{}
		}
	}
	return len(passed)
}
