// Package model はドメインモデルを定義する。
package model

import "time"

// User はサービス利用ユーザーの認証情報を表す。
// PasswordHashはargon2idのPHC形式文字列で、クライアントには返さない。
type User struct {
	ID           int64
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}

// Principal は認証済みリクエストに紐づくユーザーの読み取り専用ビュー。
// 認証ミドルウェアがリクエストごとにDBから再構築してコンテキストに注入する。
// 永続化されず、生存期間は1リクエスト。
type Principal struct {
	UserID   int64
	Username string
}
