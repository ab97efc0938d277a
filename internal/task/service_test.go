package task

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hitoshi/taskman/internal/model"
	"github.com/hitoshi/taskman/internal/pagination"
)

// mockTaskRepo はrepository.TaskRepositoryのモック実装。
type mockTaskRepo struct {
	createOwnedFunc       func(ctx context.Context, projectID, ownerID int64, title string, description *string, dueDate *time.Time) (*model.Task, error)
	findByIDWithOwnerFunc func(ctx context.Context, id int64) (*model.Task, int64, error)
	listByOwnerFunc       func(ctx context.Context, ownerID int64, status model.TaskStatus, limit, offset int) ([]*model.Task, error)
	countByOwnerFunc      func(ctx context.Context, ownerID int64, status model.TaskStatus) (int64, error)
	updateFunc            func(ctx context.Context, id, ownerID int64, title, description *string, status *model.TaskStatus, dueDate *time.Time) (*model.Task, error)
	deleteFunc            func(ctx context.Context, id, ownerID int64) (bool, error)
}

func (m *mockTaskRepo) CreateOwned(ctx context.Context, projectID, ownerID int64, title string, description *string, dueDate *time.Time) (*model.Task, error) {
	return m.createOwnedFunc(ctx, projectID, ownerID, title, description, dueDate)
}

func (m *mockTaskRepo) FindByIDWithOwner(ctx context.Context, id int64) (*model.Task, int64, error) {
	return m.findByIDWithOwnerFunc(ctx, id)
}

func (m *mockTaskRepo) ListByOwner(ctx context.Context, ownerID int64, status model.TaskStatus, limit, offset int) ([]*model.Task, error) {
	return m.listByOwnerFunc(ctx, ownerID, status, limit, offset)
}

func (m *mockTaskRepo) CountByOwner(ctx context.Context, ownerID int64, status model.TaskStatus) (int64, error) {
	return m.countByOwnerFunc(ctx, ownerID, status)
}

func (m *mockTaskRepo) Update(ctx context.Context, id, ownerID int64, title, description *string, status *model.TaskStatus, dueDate *time.Time) (*model.Task, error) {
	return m.updateFunc(ctx, id, ownerID, title, description, status, dueDate)
}

func (m *mockTaskRepo) Delete(ctx context.Context, id, ownerID int64) (bool, error) {
	return m.deleteFunc(ctx, id, ownerID)
}

// mockProjectRepo はrepository.ProjectRepositoryのモック実装。
// タスクサービスが使うFindByIDのみ関数フィールドを持つ。
type mockProjectRepo struct {
	findByIDFunc func(ctx context.Context, id int64) (*model.Project, error)
}

func (m *mockProjectRepo) Create(ctx context.Context, ownerID int64, name string, description *string) (*model.Project, error) {
	panic("not implemented")
}

func (m *mockProjectRepo) FindByID(ctx context.Context, id int64) (*model.Project, error) {
	return m.findByIDFunc(ctx, id)
}

func (m *mockProjectRepo) ListByOwner(ctx context.Context, ownerID int64, limit, offset int) ([]*model.Project, error) {
	panic("not implemented")
}

func (m *mockProjectRepo) CountByOwner(ctx context.Context, ownerID int64) (int64, error) {
	panic("not implemented")
}

func (m *mockProjectRepo) Update(ctx context.Context, id, ownerID int64, name, description *string) (*model.Project, error) {
	panic("not implemented")
}

func (m *mockProjectRepo) Delete(ctx context.Context, id, ownerID int64) (bool, error) {
	panic("not implemented")
}

var alice = model.Principal{UserID: 1, Username: "alice"}

func TestService_Create(t *testing.T) {
	projectRepo := &mockProjectRepo{
		findByIDFunc: func(ctx context.Context, id int64) (*model.Project, error) {
			return &model.Project{ID: 10, OwnerID: 1, Name: "仕事"}, nil
		},
	}
	taskRepo := &mockTaskRepo{
		createOwnedFunc: func(ctx context.Context, projectID, ownerID int64, title string, description *string, dueDate *time.Time) (*model.Task, error) {
			if projectID != 10 || ownerID != 1 {
				t.Errorf("projectID, ownerID = %d, %d, want 10, 1", projectID, ownerID)
			}
			return &model.Task{ID: 100, ProjectID: projectID, Title: title, Status: model.TaskStatusPending}, nil
		},
	}
	service := NewService(taskRepo, projectRepo)

	task, err := service.Create(context.Background(), alice, 10, "レビュー対応", nil, nil)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if task.ID != 100 {
		t.Errorf("task.ID = %d, want 100", task.ID)
	}
	if task.Status != model.TaskStatusPending {
		t.Errorf("task.Status = %q, want %q", task.Status, model.TaskStatusPending)
	}
}

func TestService_Create_ProjectAccess(t *testing.T) {
	tests := []struct {
		name     string
		project  *model.Project
		wantCode string
	}{
		{
			name:     "プロジェクトが存在しない場合は404",
			project:  nil,
			wantCode: "PROJECT_NOT_FOUND",
		},
		{
			name:     "他者のプロジェクトには403",
			project:  &model.Project{ID: 10, OwnerID: 2, Name: "theirs"},
			wantCode: "PROJECT_UNAUTHORIZED",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			projectRepo := &mockProjectRepo{
				findByIDFunc: func(ctx context.Context, id int64) (*model.Project, error) {
					return tt.project, nil
				},
			}
			taskRepo := &mockTaskRepo{
				createOwnedFunc: func(ctx context.Context, projectID, ownerID int64, title string, description *string, dueDate *time.Time) (*model.Task, error) {
					t.Error("CreateOwned should not be called")
					return nil, nil
				},
			}
			service := NewService(taskRepo, projectRepo)

			_, err := service.Create(context.Background(), alice, 10, "t", nil, nil)

			var apiErr *model.APIError
			if !errors.As(err, &apiErr) || apiErr.Code != tt.wantCode {
				t.Errorf("error = %v, want %s", err, tt.wantCode)
			}
		})
	}
}

func TestService_Create_RaceWithProjectDeletion(t *testing.T) {
	projectRepo := &mockProjectRepo{
		findByIDFunc: func(ctx context.Context, id int64) (*model.Project, error) {
			return &model.Project{ID: 10, OwnerID: 1, Name: "mine"}, nil
		},
	}
	taskRepo := &mockTaskRepo{
		createOwnedFunc: func(ctx context.Context, projectID, ownerID int64, title string, description *string, dueDate *time.Time) (*model.Task, error) {
			// 事前チェック後にプロジェクトが削除されたケース
			return nil, nil
		},
	}
	service := NewService(taskRepo, projectRepo)

	_, err := service.Create(context.Background(), alice, 10, "t", nil, nil)

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != "PROJECT_UNAUTHORIZED" {
		t.Errorf("error = %v, want PROJECT_UNAUTHORIZED", err)
	}
}

func TestService_Create_EmptyTitle(t *testing.T) {
	service := NewService(&mockTaskRepo{}, &mockProjectRepo{})

	_, err := service.Create(context.Background(), alice, 10, "  ", nil, nil)

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != "INVALID_REQUEST" {
		t.Errorf("error = %v, want INVALID_REQUEST", err)
	}
}

func TestService_List_StatusFilter(t *testing.T) {
	taskRepo := &mockTaskRepo{
		listByOwnerFunc: func(ctx context.Context, ownerID int64, status model.TaskStatus, limit, offset int) ([]*model.Task, error) {
			if status != model.TaskStatusInProgress {
				t.Errorf("status = %q, want %q", status, model.TaskStatusInProgress)
			}
			return []*model.Task{{ID: 100, Status: model.TaskStatusInProgress}}, nil
		},
		countByOwnerFunc: func(ctx context.Context, ownerID int64, status model.TaskStatus) (int64, error) {
			return 1, nil
		},
	}
	service := NewService(taskRepo, &mockProjectRepo{})

	tasks, meta, err := service.List(context.Background(), alice, "InProgress", pagination.Params{Page: 1, Limit: 10})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(tasks) != 1 {
		t.Errorf("len(tasks) = %d, want 1", len(tasks))
	}
	if meta.TotalPages != 1 {
		t.Errorf("meta.TotalPages = %d, want 1", meta.TotalPages)
	}
}

func TestService_List_InvalidStatus(t *testing.T) {
	service := NewService(&mockTaskRepo{}, &mockProjectRepo{})

	_, _, err := service.List(context.Background(), alice, "Done", pagination.Params{Page: 1, Limit: 10})

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != "INVALID_STATUS" {
		t.Errorf("error = %v, want INVALID_STATUS", err)
	}
}

func TestService_Get(t *testing.T) {
	tests := []struct {
		name     string
		task     *model.Task
		ownerID  int64
		wantCode string
	}{
		{
			name:    "所有タスクは取得できる",
			task:    &model.Task{ID: 100, ProjectID: 10, Title: "t"},
			ownerID: 1,
		},
		{
			name:     "存在しない場合は404",
			task:     nil,
			wantCode: "TASK_NOT_FOUND",
		},
		{
			name:     "他者のタスクは403",
			task:     &model.Task{ID: 100, ProjectID: 20, Title: "t"},
			ownerID:  2,
			wantCode: "TASK_UNAUTHORIZED",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			taskRepo := &mockTaskRepo{
				findByIDWithOwnerFunc: func(ctx context.Context, id int64) (*model.Task, int64, error) {
					return tt.task, tt.ownerID, nil
				},
			}
			service := NewService(taskRepo, &mockProjectRepo{})

			task, err := service.Get(context.Background(), alice, 100)
			if tt.wantCode == "" {
				if err != nil {
					t.Fatalf("Get() error = %v", err)
				}
				if task.ID != 100 {
					t.Errorf("task.ID = %d, want 100", task.ID)
				}
				return
			}

			var apiErr *model.APIError
			if !errors.As(err, &apiErr) || apiErr.Code != tt.wantCode {
				t.Errorf("error = %v, want %s", err, tt.wantCode)
			}
		})
	}
}

func TestService_Update_NoRowCollapsesToUnauthorized(t *testing.T) {
	taskRepo := &mockTaskRepo{
		updateFunc: func(ctx context.Context, id, ownerID int64, title, description *string, status *model.TaskStatus, dueDate *time.Time) (*model.Task, error) {
			return nil, nil
		},
	}
	service := NewService(taskRepo, &mockProjectRepo{})

	completed := model.TaskStatusCompleted
	_, err := service.Update(context.Background(), alice, 100, nil, nil, &completed, nil)

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != "TASK_UNAUTHORIZED" {
		t.Errorf("error = %v, want TASK_UNAUTHORIZED", err)
	}
}

func TestService_Update_PartialFields(t *testing.T) {
	taskRepo := &mockTaskRepo{
		updateFunc: func(ctx context.Context, id, ownerID int64, title, description *string, status *model.TaskStatus, dueDate *time.Time) (*model.Task, error) {
			if title != nil || description != nil || dueDate != nil {
				t.Error("unset fields should stay nil")
			}
			if status == nil || *status != model.TaskStatusCompleted {
				t.Errorf("status = %v, want Completed", status)
			}
			return &model.Task{ID: id, Status: *status}, nil
		},
	}
	service := NewService(taskRepo, &mockProjectRepo{})

	completed := model.TaskStatusCompleted
	task, err := service.Update(context.Background(), alice, 100, nil, nil, &completed, nil)
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if task.Status != model.TaskStatusCompleted {
		t.Errorf("task.Status = %q, want Completed", task.Status)
	}
}

func TestService_Delete(t *testing.T) {
	tests := []struct {
		name     string
		deleted  bool
		wantCode string
	}{
		{name: "所有タスクは削除できる", deleted: true},
		{name: "該当行なしは403", deleted: false, wantCode: "TASK_UNAUTHORIZED"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			taskRepo := &mockTaskRepo{
				deleteFunc: func(ctx context.Context, id, ownerID int64) (bool, error) {
					return tt.deleted, nil
				},
			}
			service := NewService(taskRepo, &mockProjectRepo{})

			err := service.Delete(context.Background(), alice, 100)
			if tt.wantCode == "" {
				if err != nil {
					t.Fatalf("Delete() error = %v", err)
				}
				return
			}

			var apiErr *model.APIError
			if !errors.As(err, &apiErr) || apiErr.Code != tt.wantCode {
				t.Errorf("error = %v, want %s", err, tt.wantCode)
			}
		})
	}
}
