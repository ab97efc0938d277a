// Package task はタスクのCRUDと親プロジェクト経由の所有権認可を提供する。
package task

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/hitoshi/taskman/internal/model"
	"github.com/hitoshi/taskman/internal/pagination"
	"github.com/hitoshi/taskman/internal/repository"
)

// Service はタスクのビジネスロジックを提供する。
// タスク自体は所有者を持たず、所有権は常に親プロジェクトから導出される。
type Service struct {
	taskRepo    repository.TaskRepository
	projectRepo repository.ProjectRepository
}

// NewService は新しいServiceを生成する。
func NewService(taskRepo repository.TaskRepository, projectRepo repository.ProjectRepository) *Service {
	return &Service{taskRepo: taskRepo, projectRepo: projectRepo}
}

// Create は指定プロジェクト配下にタスクを作成する。プロジェクトが
// 存在しない場合は404、所有者が異なる場合は403を返す。事前チェックの
// 後にプロジェクトが削除される競合に備え、挿入自体も所有権条件付きで行う。
func (s *Service) Create(ctx context.Context, principal model.Principal, projectID int64, title string, description *string, dueDate *time.Time) (*model.Task, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, model.NewInvalidRequestError("titleは必須です")
	}

	project, err := s.projectRepo.FindByID(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to find project: %w", err)
	}
	if project == nil {
		return nil, model.NewProjectNotFoundError(projectID)
	}
	if project.OwnerID != principal.UserID {
		return nil, model.NewProjectUnauthorizedError()
	}

	task, err := s.taskRepo.CreateOwned(ctx, projectID, principal.UserID, title, description, dueDate)
	if err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}
	if task == nil {
		// 事前チェック通過後にプロジェクトが消えた場合
		return nil, model.NewProjectUnauthorizedError()
	}

	slog.Info("task created",
		slog.Int64("task_id", task.ID),
		slog.Int64("project_id", projectID),
		slog.Int64("user_id", principal.UserID),
	)

	return task, nil
}

// List はPrincipalの全プロジェクト配下のタスク一覧をページネーション付きで返す。
// statusFilterが非空の場合はそのステータスのみに絞り込む。不正なステータス
// 文字列は400を返す。
func (s *Service) List(ctx context.Context, principal model.Principal, statusFilter string, params pagination.Params) ([]*model.Task, pagination.Meta, error) {
	var status model.TaskStatus
	if statusFilter != "" {
		parsed, err := model.ParseTaskStatus(statusFilter)
		if err != nil {
			return nil, pagination.Meta{}, model.NewInvalidStatusError(statusFilter)
		}
		status = parsed
	}

	tasks, err := s.taskRepo.ListByOwner(ctx, principal.UserID, status, params.Limit, params.Offset())
	if err != nil {
		return nil, pagination.Meta{}, fmt.Errorf("failed to list tasks: %w", err)
	}

	total, err := s.taskRepo.CountByOwner(ctx, principal.UserID, status)
	if err != nil {
		return nil, pagination.Meta{}, fmt.Errorf("failed to count tasks: %w", err)
	}

	return tasks, pagination.NewMeta(total, params), nil
}

// Get は指定IDのタスクを取得する。存在しない場合は404、親プロジェクトの
// 所有者が異なる場合は403を区別して返す。
func (s *Service) Get(ctx context.Context, principal model.Principal, id int64) (*model.Task, error) {
	task, ownerID, err := s.taskRepo.FindByIDWithOwner(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	if task == nil {
		return nil, model.NewTaskNotFoundError(id)
	}
	if ownerID != principal.UserID {
		return nil, model.NewTaskUnauthorizedError()
	}
	return task, nil
}

// Update は指定IDのタスクを部分更新する。nilフィールドは変更しない。
// 所有権チェックと更新は単一SQL文で原子的に行われ、存在しない場合と
// 所有者が異なる場合はいずれも403に収斂する。
func (s *Service) Update(ctx context.Context, principal model.Principal, id int64, title, description *string, status *model.TaskStatus, dueDate *time.Time) (*model.Task, error) {
	if title != nil {
		trimmed := strings.TrimSpace(*title)
		if trimmed == "" {
			return nil, model.NewInvalidRequestError("titleを空にはできません")
		}
		title = &trimmed
	}

	task, err := s.taskRepo.Update(ctx, id, principal.UserID, title, description, status, dueDate)
	if err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}
	if task == nil {
		return nil, model.NewTaskUnauthorizedError()
	}

	slog.Info("task updated",
		slog.Int64("task_id", id),
		slog.Int64("user_id", principal.UserID),
	)

	return task, nil
}

// Delete は指定IDのタスクを削除する。Updateと同様、存在しない場合と
// 所有者が異なる場合は403に収斂する。
func (s *Service) Delete(ctx context.Context, principal model.Principal, id int64) error {
	deleted, err := s.taskRepo.Delete(ctx, id, principal.UserID)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	if !deleted {
		return model.NewTaskUnauthorizedError()
	}

	slog.Info("task deleted",
		slog.Int64("task_id", id),
		slog.Int64("user_id", principal.UserID),
	)

	return nil
}
