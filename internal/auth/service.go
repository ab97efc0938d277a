// Package auth は資格情報の発行と検証を提供する。
// パスワードのargon2idハッシュ化、ログイン検証、HS256署名付き
// JWTの発行・検証を担う。
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/hitoshi/taskman/internal/model"
	"github.com/hitoshi/taskman/internal/repository"
)

// MetricsRecorder は認証イベントのメトリクス記録インターフェース。
// metrics.Collectorの部分集合として定義する。
type MetricsRecorder interface {
	RecordRegistration()
	RecordLoginSuccess()
	RecordLoginFailure()
}

// ServiceConfig は認証サービスの設定。
type ServiceConfig struct {
	// Secret はJWTのHMAC署名鍵。起動時にConfigから一度だけ注入され、
	// ログや永続化に出してはならない。
	Secret []byte
	// TokenTTL は発行するトークンの有効期間。
	TokenTTL time.Duration
}

// Service は資格情報に関するビジネスロジックを提供する。
type Service struct {
	userRepo repository.UserRepository
	config   ServiceConfig
	metrics  MetricsRecorder
}

// NewService はServiceを生成する。
func NewService(userRepo repository.UserRepository, config ServiceConfig, metrics MetricsRecorder) *Service {
	return &Service{
		userRepo: userRepo,
		config:   config,
		metrics:  metrics,
	}
}

// tokenClaims はJWTのクレームを表す。
// UserIDはsubクレームとして数値のままエンコードされる。
type tokenClaims struct {
	UserID int64 `json:"sub"`
	jwt.RegisteredClaims
}

// Register は新規アカウントを作成する。
// パスワードはargon2idでハッシュ化してから保存する。
// ユーザー名が既に存在する場合はUSERNAME_TAKENエラーを返す。
func (s *Service) Register(ctx context.Context, username, password string) (*model.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, model.NewInvalidRequestError("ユーザー名が空です")
	}
	if password == "" {
		return nil, model.NewInvalidRequestError("パスワードが空です")
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := s.userRepo.Create(ctx, username, hash)
	if err != nil {
		if errors.Is(err, repository.ErrUsernameTaken) {
			return nil, model.NewUsernameTakenError(username)
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.metrics.RecordRegistration()
	slog.Info("user registered",
		slog.Int64("user_id", user.ID),
		slog.String("username", user.Username),
	)

	return user, nil
}

// Login は資格情報を検証し、署名付きトークンを発行する。
// ユーザー名の存在有無を区別させないため、未知のユーザーと
// パスワード不一致で同一のLOGIN_FAILエラーを返す。
func (s *Service) Login(ctx context.Context, username, password string) (string, error) {
	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		return "", fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		s.metrics.RecordLoginFailure()
		return "", model.NewLoginFailError()
	}

	verified, err := VerifyPassword(password, user.PasswordHash)
	if err != nil {
		return "", fmt.Errorf("failed to verify password: %w", err)
	}
	if !verified {
		s.metrics.RecordLoginFailure()
		return "", model.NewLoginFailError()
	}

	token, err := s.mintToken(user.ID)
	if err != nil {
		slog.Error("failed to sign token", slog.String("error", err.Error()))
		return "", model.NewAuthFailError()
	}

	s.metrics.RecordLoginSuccess()
	slog.Info("user logged in", slog.Int64("user_id", user.ID))

	return token, nil
}

// VerifyToken はトークンの署名と有効期限を検証し、subクレームの
// ユーザーIDを返す。純粋なCPU処理でI/Oは行わない。
// 署名方式はHS256のみを受理し、いかなる検証失敗もAUTH_FAILに潰す。
func (s *Service) VerifyToken(tokenString string) (int64, error) {
	claims := &tokenClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.config.Secret, nil
	})
	if err != nil || !token.Valid {
		return 0, model.NewAuthFailError()
	}

	return claims.UserID, nil
}

// mintToken はsub=userID、exp=now+TTLのHS256署名付きJWTを生成する。
func (s *Service) mintToken(userID int64) (string, error) {
	now := time.Now()
	claims := &tokenClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.config.TokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.config.Secret)
}
