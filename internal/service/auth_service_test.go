// internal/service/auth_service_test.go
package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"learnkeep/internal/config"
	"learnkeep/internal/model"
	"learnkeep/internal/repository/mocks"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// fakeMailer は送信内容を記録するだけのMailer実装
type fakeMailer struct {
	sentTo      []string
	sentSubject []string
	sentBody    []string
	err         error
}

func (m *fakeMailer) Send(ctx context.Context, to, subject, body string) error {
	if m.err != nil {
		return m.err
	}
	m.sentTo = append(m.sentTo, to)
	m.sentSubject = append(m.sentSubject, subject)
	m.sentBody = append(m.sentBody, body)
	return nil
}

func authTestConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{
			Name:        "LearnKeep",
			FrontendURL: "http://localhost:3000",
		},
		JWT: config.JWTConfig{
			SecretKey:      "test-secret-key",
			AccessTokenTTL: time.Hour,
		},
	}
}

// --- Test Register ---

func Test_authService_Register(t *testing.T) {
	ctx := context.Background()
	db := setupTestDBProgress()

	t.Run("正常系: ユーザー作成と有効化メール送信", func(t *testing.T) {
		userRepo := mocks.NewUserRepository(t)
		tokenRepo := mocks.NewTokenRepository(t)
		mailer := &fakeMailer{}
		svc := NewAuthService(db, userRepo, tokenRepo, mailer, authTestConfig())

		req := &model.RegisterRequest{Name: "山田太郎", Email: "taro@example.com", Password: "password123"}

		userRepo.On("FindByEmail", ctx, mock.AnythingOfType("*gorm.DB"), req.Email).
			Return(nil, model.ErrNotFound).Once()
		userRepo.On("Create", ctx, mock.AnythingOfType("*gorm.DB"), mock.AnythingOfType("*model.User")).
			Run(func(args mock.Arguments) {
				user := args.Get(2).(*model.User)
				assert.Equal(t, req.Email, user.Email)
				assert.Equal(t, model.RoleStudent, user.Role) // 未指定ならstudent
				assert.False(t, user.IsActive)
				// 平文パスワードを保存していないこと
				assert.NotEqual(t, req.Password, user.PasswordHash)
				assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)))
			}).Return(nil).Once()
		tokenRepo.On("CreateVerificationToken", ctx, mock.AnythingOfType("*gorm.DB"), mock.AnythingOfType("*model.UserVerificationToken")).
			Return(nil).Once()

		user, err := svc.Register(ctx, req)
		require.NoError(t, err)
		require.NotNil(t, user)

		require.Len(t, mailer.sentTo, 1)
		assert.Equal(t, req.Email, mailer.sentTo[0])
		assert.Contains(t, mailer.sentBody[0], "http://localhost:3000/verify-email?token=")
	})

	t.Run("異常系: メールアドレス重複", func(t *testing.T) {
		userRepo := mocks.NewUserRepository(t)
		tokenRepo := mocks.NewTokenRepository(t)
		mailer := &fakeMailer{}
		svc := NewAuthService(db, userRepo, tokenRepo, mailer, authTestConfig())

		existing := &model.User{UserID: uuid.New(), Email: "taro@example.com"}
		userRepo.On("FindByEmail", ctx, mock.AnythingOfType("*gorm.DB"), existing.Email).
			Return(existing, nil).Once()

		_, err := svc.Register(ctx, &model.RegisterRequest{Name: "n", Email: existing.Email, Password: "password123"})
		require.Error(t, err)
		assert.True(t, errors.Is(err, model.ErrConflict))
		assert.Empty(t, mailer.sentTo)
	})

	t.Run("正常系: instructorロールを指定して登録できる", func(t *testing.T) {
		userRepo := mocks.NewUserRepository(t)
		tokenRepo := mocks.NewTokenRepository(t)
		svc := NewAuthService(db, userRepo, tokenRepo, &fakeMailer{}, authTestConfig())

		req := &model.RegisterRequest{Name: "講師", Email: "sensei@example.com", Password: "password123", Role: model.RoleInstructor}

		userRepo.On("FindByEmail", ctx, mock.AnythingOfType("*gorm.DB"), req.Email).
			Return(nil, model.ErrNotFound).Once()
		userRepo.On("Create", ctx, mock.AnythingOfType("*gorm.DB"), mock.AnythingOfType("*model.User")).
			Run(func(args mock.Arguments) {
				assert.Equal(t, model.RoleInstructor, args.Get(2).(*model.User).Role)
			}).Return(nil).Once()
		tokenRepo.On("CreateVerificationToken", ctx, mock.AnythingOfType("*gorm.DB"), mock.AnythingOfType("*model.UserVerificationToken")).
			Return(nil).Once()

		user, err := svc.Register(ctx, req)
		require.NoError(t, err)
		assert.Equal(t, model.RoleInstructor, user.Role)
	})
}

// --- Test VerifyAccount ---

func Test_authService_VerifyAccount(t *testing.T) {
	ctx := context.Background()
	db := setupTestDBProgress()

	t.Run("正常系: アカウント有効化とトークン削除", func(t *testing.T) {
		userRepo := mocks.NewUserRepository(t)
		tokenRepo := mocks.NewTokenRepository(t)
		svc := NewAuthService(db, userRepo, tokenRepo, &fakeMailer{}, authTestConfig())

		userID := uuid.New()
		tokenStr := strings.Repeat("a", 64)
		tokenRepo.On("FindVerificationToken", ctx, mock.AnythingOfType("*gorm.DB"), tokenStr).
			Return(&model.UserVerificationToken{
				Token:     tokenStr,
				UserID:    userID,
				ExpiresAt: time.Now().Add(time.Hour),
			}, nil).Once()
		userRepo.On("Activate", ctx, mock.AnythingOfType("*gorm.DB"), userID).Return(nil).Once()
		tokenRepo.On("DeleteVerificationToken", ctx, mock.AnythingOfType("*gorm.DB"), tokenStr).Return(nil).Once()

		err := svc.VerifyAccount(ctx, tokenStr)
		require.NoError(t, err)
	})

	t.Run("異常系: 期限切れトークンは削除して拒否", func(t *testing.T) {
		userRepo := mocks.NewUserRepository(t)
		tokenRepo := mocks.NewTokenRepository(t)
		svc := NewAuthService(db, userRepo, tokenRepo, &fakeMailer{}, authTestConfig())

		tokenStr := strings.Repeat("b", 64)
		tokenRepo.On("FindVerificationToken", ctx, mock.AnythingOfType("*gorm.DB"), tokenStr).
			Return(&model.UserVerificationToken{
				Token:     tokenStr,
				UserID:    uuid.New(),
				ExpiresAt: time.Now().Add(-time.Minute),
			}, nil).Once()
		tokenRepo.On("DeleteVerificationToken", ctx, mock.AnythingOfType("*gorm.DB"), tokenStr).Return(nil).Once()

		err := svc.VerifyAccount(ctx, tokenStr)
		require.Error(t, err)
		assert.True(t, errors.Is(err, model.ErrInvalidInput))
		_ = userRepo // Activateは呼ばれない
	})

	t.Run("異常系: 存在しないトークン", func(t *testing.T) {
		userRepo := mocks.NewUserRepository(t)
		tokenRepo := mocks.NewTokenRepository(t)
		svc := NewAuthService(db, userRepo, tokenRepo, &fakeMailer{}, authTestConfig())

		tokenRepo.On("FindVerificationToken", ctx, mock.AnythingOfType("*gorm.DB"), "unknown").
			Return(nil, model.ErrNotFound).Once()

		err := svc.VerifyAccount(ctx, "unknown")
		require.Error(t, err)
		assert.True(t, errors.Is(err, model.ErrInvalidInput))
		_ = userRepo
	})
}

// --- Test Login ---

func Test_authService_Login(t *testing.T) {
	ctx := context.Background()
	db := setupTestDBProgress()
	cfg := authTestConfig()

	password := "password123"
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)

	activeUser := &model.User{
		UserID:       uuid.New(),
		Email:        "taro@example.com",
		PasswordHash: string(hash),
		Role:         model.RoleStudent,
		IsActive:     true,
	}

	t.Run("正常系: 正しい認証情報でJWTが返る", func(t *testing.T) {
		userRepo := mocks.NewUserRepository(t)
		tokenRepo := mocks.NewTokenRepository(t)
		svc := NewAuthService(db, userRepo, tokenRepo, &fakeMailer{}, cfg)

		userRepo.On("FindByEmail", ctx, mock.AnythingOfType("*gorm.DB"), activeUser.Email).
			Return(activeUser, nil).Once()

		res, err := svc.Login(ctx, &model.LoginRequest{Email: activeUser.Email, Password: password})
		require.NoError(t, err)
		require.NotEmpty(t, res.AccessToken)

		// 発行したJWTを検証
		claims := &model.JWTCustomClaims{}
		parsed, err := jwt.ParseWithClaims(res.AccessToken, claims, func(token *jwt.Token) (interface{}, error) {
			return []byte(cfg.JWT.SecretKey), nil
		})
		require.NoError(t, err)
		assert.True(t, parsed.Valid)
		assert.Equal(t, activeUser.UserID.String(), claims.Subject)
		assert.Equal(t, model.RoleStudent, claims.Role)
		assert.Equal(t, cfg.App.Name, claims.Issuer)
	})

	t.Run("異常系: パスワード不一致", func(t *testing.T) {
		userRepo := mocks.NewUserRepository(t)
		tokenRepo := mocks.NewTokenRepository(t)
		svc := NewAuthService(db, userRepo, tokenRepo, &fakeMailer{}, cfg)

		userRepo.On("FindByEmail", ctx, mock.AnythingOfType("*gorm.DB"), activeUser.Email).
			Return(activeUser, nil).Once()

		_, err := svc.Login(ctx, &model.LoginRequest{Email: activeUser.Email, Password: "wrong-password"})
		require.Error(t, err)
		assert.True(t, errors.Is(err, model.ErrInvalidInput))
	})

	t.Run("異常系: 存在しないユーザーでも同じエラーメッセージ", func(t *testing.T) {
		userRepo := mocks.NewUserRepository(t)
		tokenRepo := mocks.NewTokenRepository(t)
		svc := NewAuthService(db, userRepo, tokenRepo, &fakeMailer{}, cfg)

		userRepo.On("FindByEmail", ctx, mock.AnythingOfType("*gorm.DB"), "nobody@example.com").
			Return(nil, model.ErrNotFound).Once()

		_, err := svc.Login(ctx, &model.LoginRequest{Email: "nobody@example.com", Password: password})
		require.Error(t, err)

		var appErr *model.AppError
		require.True(t, errors.As(err, &appErr))
		assert.Equal(t, "AUTHENTICATION_FAILED", appErr.Detail.Code)
	})

	t.Run("異常系: 未有効化アカウントはログイン不可", func(t *testing.T) {
		userRepo := mocks.NewUserRepository(t)
		tokenRepo := mocks.NewTokenRepository(t)
		svc := NewAuthService(db, userRepo, tokenRepo, &fakeMailer{}, cfg)

		inactive := &model.User{
			UserID:       uuid.New(),
			Email:        "pending@example.com",
			PasswordHash: string(hash),
			Role:         model.RoleStudent,
			IsActive:     false,
		}
		userRepo.On("FindByEmail", ctx, mock.AnythingOfType("*gorm.DB"), inactive.Email).
			Return(inactive, nil).Once()

		_, err := svc.Login(ctx, &model.LoginRequest{Email: inactive.Email, Password: password})
		require.Error(t, err)
		assert.True(t, errors.Is(err, model.ErrForbidden))
	})
}

// --- Test RequestPasswordReset ---

func Test_authService_RequestPasswordReset(t *testing.T) {
	ctx := context.Background()
	db := setupTestDBProgress()

	t.Run("正常系: リセットメールが送信される", func(t *testing.T) {
		userRepo := mocks.NewUserRepository(t)
		tokenRepo := mocks.NewTokenRepository(t)
		mailer := &fakeMailer{}
		svc := NewAuthService(db, userRepo, tokenRepo, mailer, authTestConfig())

		user := &model.User{UserID: uuid.New(), Email: "taro@example.com", IsActive: true}
		userRepo.On("FindByEmail", ctx, mock.AnythingOfType("*gorm.DB"), user.Email).
			Return(user, nil).Once()
		tokenRepo.On("CreatePasswordResetToken", ctx, mock.AnythingOfType("*gorm.DB"), mock.AnythingOfType("*model.PasswordResetToken")).
			Return(nil).Once()

		err := svc.RequestPasswordReset(ctx, user.Email)
		require.NoError(t, err)
		require.Len(t, mailer.sentTo, 1)
		assert.Contains(t, mailer.sentBody[0], "/reset-password?token=")
	})

	t.Run("正常系: 存在しないメールアドレスでも成功として扱う", func(t *testing.T) {
		userRepo := mocks.NewUserRepository(t)
		tokenRepo := mocks.NewTokenRepository(t)
		mailer := &fakeMailer{}
		svc := NewAuthService(db, userRepo, tokenRepo, mailer, authTestConfig())

		userRepo.On("FindByEmail", ctx, mock.AnythingOfType("*gorm.DB"), "nobody@example.com").
			Return(nil, model.ErrNotFound).Once()

		err := svc.RequestPasswordReset(ctx, "nobody@example.com")
		require.NoError(t, err)
		assert.Empty(t, mailer.sentTo)
		_ = tokenRepo
	})
}
