// Package model はドメインモデルを定義する。
package model

import "time"

// Project はタスクを束ねるプロジェクトを表す。
// OwnerIDは作成後に変更されない。タスクの所有権はこのフィールドから導出される。
type Project struct {
	ID          int64
	OwnerID     int64
	Name        string
	Description *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
