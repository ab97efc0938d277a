// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// Codeはハンドラー層でHTTPステータスへのマッピングに使用し、
// クライアントにはMessageのみを返す。
type APIError struct {
	Code    string // エラーコード
	Message string // エラーメッセージ
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeLoginFail           = "LOGIN_FAIL"
	ErrCodeAuthFail            = "AUTH_FAIL"
	ErrCodeUsernameTaken       = "USERNAME_TAKEN"
	ErrCodeProjectNotFound     = "PROJECT_NOT_FOUND"
	ErrCodeProjectUnauthorized = "PROJECT_UNAUTHORIZED"
	ErrCodeTaskNotFound        = "TASK_NOT_FOUND"
	ErrCodeTaskUnauthorized    = "TASK_UNAUTHORIZED"
	ErrCodeInvalidRequest      = "INVALID_REQUEST"
	ErrCodeInvalidStatus       = "INVALID_STATUS"
	ErrCodeInvalidPagination   = "INVALID_PAGINATION"
)

// NewLoginFailError はログイン失敗エラーを生成する。
// ユーザー名の存在有無を区別させないため、未知のユーザーと
// パスワード不一致で同一のエラーを返す。
func NewLoginFailError() *APIError {
	return &APIError{
		Code:    ErrCodeLoginFail,
		Message: "ユーザー名またはパスワードが正しくありません。",
	}
}

// NewAuthFailError は認証失敗エラーを生成する。
// トークンの欠落・不正・期限切れ、およびユーザーが存在しない場合に使用する。
func NewAuthFailError() *APIError {
	return &APIError{
		Code:    ErrCodeAuthFail,
		Message: "認証に失敗しました。",
	}
}

// NewUsernameTakenError はユーザー名重複エラーを生成する。
func NewUsernameTakenError(username string) *APIError {
	return &APIError{
		Code:    ErrCodeUsernameTaken,
		Message: fmt.Sprintf("このユーザー名は既に使用されています: %s", username),
	}
}

// NewProjectNotFoundError はプロジェクト未検出エラーを生成する。
func NewProjectNotFoundError(projectID int64) *APIError {
	return &APIError{
		Code:    ErrCodeProjectNotFound,
		Message: fmt.Sprintf("指定されたプロジェクトが見つかりません: %d", projectID),
	}
}

// NewProjectUnauthorizedError はプロジェクトへのアクセス拒否エラーを生成する。
func NewProjectUnauthorizedError() *APIError {
	return &APIError{
		Code:    ErrCodeProjectUnauthorized,
		Message: "このプロジェクトに対する操作は許可されていません。",
	}
}

// NewTaskNotFoundError はタスク未検出エラーを生成する。
func NewTaskNotFoundError(taskID int64) *APIError {
	return &APIError{
		Code:    ErrCodeTaskNotFound,
		Message: fmt.Sprintf("指定されたタスクが見つかりません: %d", taskID),
	}
}

// NewTaskUnauthorizedError はタスクへのアクセス拒否エラーを生成する。
func NewTaskUnauthorizedError() *APIError {
	return &APIError{
		Code:    ErrCodeTaskUnauthorized,
		Message: "このタスクに対する操作は許可されていません。",
	}
}

// NewInvalidRequestError はリクエスト不正エラーを生成する。
func NewInvalidRequestError(reason string) *APIError {
	return &APIError{
		Code:    ErrCodeInvalidRequest,
		Message: fmt.Sprintf("リクエストが不正です: %s", reason),
	}
}

// NewInvalidStatusError は無効なタスクステータスエラーを生成する。
func NewInvalidStatusError(status string) *APIError {
	return &APIError{
		Code:    ErrCodeInvalidStatus,
		Message: fmt.Sprintf("無効なステータスです: %s。Pending、InProgress、Completed のいずれかを指定してください。", status),
	}
}

// NewInvalidPaginationError は無効なページネーションパラメータエラーを生成する。
func NewInvalidPaginationError(reason string) *APIError {
	return &APIError{
		Code:    ErrCodeInvalidPagination,
		Message: fmt.Sprintf("無効なページネーションパラメータです: %s", reason),
	}
}
