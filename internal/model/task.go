// Package model はドメインモデルを定義する。
package model

import (
	"fmt"
	"time"
)

// TaskStatus はタスクの進行状態を表す閉じた列挙型。
// DBにはそのまま文字列として保存される。
type TaskStatus string

const (
	// TaskStatusPending は未着手の状態。
	TaskStatusPending TaskStatus = "Pending"
	// TaskStatusInProgress は進行中の状態。
	TaskStatusInProgress TaskStatus = "InProgress"
	// TaskStatusCompleted は完了した状態。
	TaskStatusCompleted TaskStatus = "Completed"
)

// ParseTaskStatus は文字列をTaskStatusに変換する。
// 未知の文字列は暗黙にデフォルトへ倒さず、エラーとして拒否する。
func ParseTaskStatus(s string) (TaskStatus, error) {
	switch TaskStatus(s) {
	case TaskStatusPending, TaskStatusInProgress, TaskStatusCompleted:
		return TaskStatus(s), nil
	default:
		return "", fmt.Errorf("unknown task status: %q", s)
	}
}

// Task はプロジェクト配下のタスクを表す。
// 所有者はTask自身には保存されず、親プロジェクトのOwnerIDから導出される。
type Task struct {
	ID          int64
	ProjectID   int64
	Title       string
	Description *string
	Status      TaskStatus
	DueDate     *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
