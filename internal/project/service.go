// Package project はプロジェクトのCRUDと所有権認可を提供する。
package project

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/hitoshi/taskman/internal/model"
	"github.com/hitoshi/taskman/internal/pagination"
	"github.com/hitoshi/taskman/internal/repository"
)

// Service はプロジェクトのビジネスロジックを提供する。
// すべての操作は認証済みPrincipalを起点に所有権で認可される。
type Service struct {
	projectRepo repository.ProjectRepository
}

// NewService は新しいServiceを生成する。
func NewService(projectRepo repository.ProjectRepository) *Service {
	return &Service{projectRepo: projectRepo}
}

// Create はPrincipalを所有者とするプロジェクトを作成する。
func (s *Service) Create(ctx context.Context, principal model.Principal, name string, description *string) (*model.Project, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, model.NewInvalidRequestError("nameは必須です")
	}

	project, err := s.projectRepo.Create(ctx, principal.UserID, name, description)
	if err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}

	slog.Info("project created",
		slog.Int64("project_id", project.ID),
		slog.Int64("user_id", principal.UserID),
	)

	return project, nil
}

// List はPrincipalが所有するプロジェクトの一覧をページネーション付きで返す。
// 他者のプロジェクトはクエリの時点で除外されるため結果に現れない。
func (s *Service) List(ctx context.Context, principal model.Principal, params pagination.Params) ([]*model.Project, pagination.Meta, error) {
	projects, err := s.projectRepo.ListByOwner(ctx, principal.UserID, params.Limit, params.Offset())
	if err != nil {
		return nil, pagination.Meta{}, fmt.Errorf("failed to list projects: %w", err)
	}

	total, err := s.projectRepo.CountByOwner(ctx, principal.UserID)
	if err != nil {
		return nil, pagination.Meta{}, fmt.Errorf("failed to count projects: %w", err)
	}

	return projects, pagination.NewMeta(total, params), nil
}

// Get は指定IDのプロジェクトを取得する。存在しない場合は404、
// 存在するが所有者が異なる場合は403を区別して返す。
func (s *Service) Get(ctx context.Context, principal model.Principal, id int64) (*model.Project, error) {
	project, err := s.projectRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to find project: %w", err)
	}
	if project == nil {
		return nil, model.NewProjectNotFoundError(id)
	}
	if project.OwnerID != principal.UserID {
		return nil, model.NewProjectUnauthorizedError()
	}
	return project, nil
}

// Update は指定IDのプロジェクトを部分更新する。nilフィールドは変更しない。
// 所有権チェックと更新は単一SQL文で原子的に行われ、存在しない場合と
// 所有者が異なる場合はいずれも403に収斂する。
func (s *Service) Update(ctx context.Context, principal model.Principal, id int64, name, description *string) (*model.Project, error) {
	if name != nil {
		trimmed := strings.TrimSpace(*name)
		if trimmed == "" {
			return nil, model.NewInvalidRequestError("nameを空にはできません")
		}
		name = &trimmed
	}

	project, err := s.projectRepo.Update(ctx, id, principal.UserID, name, description)
	if err != nil {
		return nil, fmt.Errorf("failed to update project: %w", err)
	}
	if project == nil {
		return nil, model.NewProjectUnauthorizedError()
	}

	slog.Info("project updated",
		slog.Int64("project_id", id),
		slog.Int64("user_id", principal.UserID),
	)

	return project, nil
}

// Delete は指定IDのプロジェクトを削除する。配下のタスクも連鎖削除される。
// Updateと同様、存在しない場合と所有者が異なる場合は403に収斂する。
func (s *Service) Delete(ctx context.Context, principal model.Principal, id int64) error {
	deleted, err := s.projectRepo.Delete(ctx, id, principal.UserID)
	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	if !deleted {
		return model.NewProjectUnauthorizedError()
	}

	slog.Info("project deleted",
		slog.Int64("project_id", id),
		slog.Int64("user_id", principal.UserID),
	)

	return nil
}
