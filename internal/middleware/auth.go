// Package middleware はHTTPミドルウェアを提供する。
package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/hitoshi/taskman/internal/model"
)

const bearerPrefix = "Bearer "

// contextKey はコンテキストに値を格納するための型安全なキー。
type contextKey string

// principalContextKey はリクエストコンテキストにPrincipalを格納するためのキー。
var principalContextKey = contextKey("principal")

// TokenVerifier はトークン検証のインターフェース。
// auth.Serviceの部分集合として定義する。
type TokenVerifier interface {
	VerifyToken(token string) (int64, error)
}

// UserFinder はユーザー再取得のインターフェース。
// repository.UserRepositoryの部分集合として定義する。
type UserFinder interface {
	FindByID(ctx context.Context, id int64) (*model.User, error)
}

// AuthMetricsRecorder は認証拒否のメトリクス記録インターフェース。
type AuthMetricsRecorder interface {
	RecordAuthFailure()
}

// NewAuthMiddleware はAuthorizationヘッダーのBearerトークンを検証し、
// 認証済みPrincipalをリクエストコンテキストに注入するミドルウェアを返す。
//
// リクエストごとにsubクレームのユーザーをDBから再取得するため、削除された
// アカウントは次のリクエストから即座にアクセスを失う（キャッシュしない）。
// ヘッダー欠落・形式不正・署名/期限の検証失敗・ユーザー不在のいずれも
// ハンドラー実行前に401で遮断する（フェイルクローズ）。
func NewAuthMiddleware(verifier TokenVerifier, users UserFinder, metrics AuthMetricsRecorder) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// 1. AuthorizationヘッダーからBearerトークンを取得
			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, bearerPrefix) {
				rejectUnauthenticated(w, metrics)
				return
			}
			tokenString := strings.TrimPrefix(header, bearerPrefix)
			if tokenString == "" {
				rejectUnauthenticated(w, metrics)
				return
			}

			// 2. 署名と有効期限を検証
			userID, err := verifier.VerifyToken(tokenString)
			if err != nil {
				rejectUnauthenticated(w, metrics)
				return
			}

			// 3. subクレームのユーザーをDBから再取得
			user, err := users.FindByID(r.Context(), userID)
			if err != nil {
				slog.Error("failed to reload user for auth",
					slog.Int64("user_id", userID),
					slog.String("error", err.Error()),
				)
				rejectUnauthenticated(w, metrics)
				return
			}
			if user == nil {
				rejectUnauthenticated(w, metrics)
				return
			}

			// 4. Principalをコンテキストに注入
			principal := model.Principal{UserID: user.ID, Username: user.Username}
			ctx := context.WithValue(r.Context(), principalContextKey, principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// rejectUnauthenticated は401を書き込み、認証失敗を記録する。
func rejectUnauthenticated(w http.ResponseWriter, metrics AuthMetricsRecorder) {
	metrics.RecordAuthFailure()
	WriteErrorResponse(w, http.StatusUnauthorized, model.NewAuthFailError())
}

// PrincipalFromContext はリクエストコンテキストからPrincipalを取得する。
// 認証ミドルウェアを通過したリクエストでのみ有効。未設定の場合は
// エラーを返す（フェイルクローズ）。ルーティング層が当該ルートで
// ミドルウェアを必ず通すことを前提とした防御的契約であり、
// それ自体がセキュリティ境界ではない。
func PrincipalFromContext(ctx context.Context) (model.Principal, error) {
	principal, ok := ctx.Value(principalContextKey).(model.Principal)
	if !ok || principal.UserID == 0 {
		return model.Principal{}, fmt.Errorf("principal not found in context")
	}
	return principal, nil
}

// ContextWithPrincipal はコンテキストにPrincipalを注入する。
// テストやミドルウェア以外のコンテキスト生成で使用する。
func ContextWithPrincipal(ctx context.Context, principal model.Principal) context.Context {
	return context.WithValue(ctx, principalContextKey, principal)
}
