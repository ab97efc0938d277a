package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/hitoshi/taskman/internal/middleware"
	"github.com/hitoshi/taskman/internal/model"
	"github.com/hitoshi/taskman/internal/pagination"
)

// TaskServiceInterface はタスクハンドラーが必要とするサービスインターフェース。
type TaskServiceInterface interface {
	Create(ctx context.Context, principal model.Principal, projectID int64, title string, description *string, dueDate *time.Time) (*model.Task, error)
	List(ctx context.Context, principal model.Principal, statusFilter string, params pagination.Params) ([]*model.Task, pagination.Meta, error)
	Get(ctx context.Context, principal model.Principal, id int64) (*model.Task, error)
	Update(ctx context.Context, principal model.Principal, id int64, title, description *string, status *model.TaskStatus, dueDate *time.Time) (*model.Task, error)
	Delete(ctx context.Context, principal model.Principal, id int64) error
}

// TaskHandler はタスク管理のHTTPハンドラー。
type TaskHandler struct {
	service TaskServiceInterface
}

// NewTaskHandler はTaskHandlerを生成する。
func NewTaskHandler(service TaskServiceInterface) *TaskHandler {
	return &TaskHandler{service: service}
}

// createTaskRequest はタスク作成リクエストのボディ。
type createTaskRequest struct {
	ProjectID   int64      `json:"project_id"`
	Title       string     `json:"title"`
	Description *string    `json:"description"`
	DueDate     *time.Time `json:"due_date"`
}

// updateTaskRequest はタスク更新リクエストのボディ。
// 省略されたフィールドは変更しない。
type updateTaskRequest struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	Status      *string    `json:"status"`
	DueDate     *time.Time `json:"due_date"`
}

// taskResponse はタスク情報のAPIレスポンス。
type taskResponse struct {
	ID          int64      `json:"id"`
	ProjectID   int64      `json:"project_id"`
	Title       string     `json:"title"`
	Description *string    `json:"description"`
	Status      string     `json:"status"`
	DueDate     *time.Time `json:"due_date"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// taskEnvelope は単一タスクをtaskキーの下にネストしたレスポンス。
type taskEnvelope struct {
	Task taskResponse `json:"task"`
}

// taskListResponse はタスク一覧のAPIレスポンス。
type taskListResponse struct {
	Tasks      []taskResponse  `json:"tasks"`
	Pagination pagination.Meta `json:"pagination"`
}

func toTaskResponse(task *model.Task) taskResponse {
	return taskResponse{
		ID:          task.ID,
		ProjectID:   task.ProjectID,
		Title:       task.Title,
		Description: task.Description,
		Status:      string(task.Status),
		DueDate:     task.DueDate,
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
	}
}

// Create はタスク作成を処理する。
// POST /tasks
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalOr401(w, r)
	if !ok {
		return
	}

	var req createTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteErrorResponse(w, http.StatusBadRequest,
			model.NewInvalidRequestError("リクエストボディの解析に失敗しました"))
		return
	}

	task, err := h.service.Create(r.Context(), principal, req.ProjectID, req.Title, req.Description, req.DueDate)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeSuccess(w, http.StatusCreated, taskEnvelope{Task: toTaskResponse(task)})
}

// List はタスク一覧を処理する。statusクエリでステータス絞り込みができる。
// GET /tasks?status=S&page=N&limit=M
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalOr401(w, r)
	if !ok {
		return
	}

	params, err := pagination.Parse(r.URL.Query())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	tasks, meta, err := h.service.List(r.Context(), principal, r.URL.Query().Get("status"), params)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	items := make([]taskResponse, 0, len(tasks))
	for _, task := range tasks {
		items = append(items, toTaskResponse(task))
	}

	writeSuccess(w, http.StatusOK, taskListResponse{
		Tasks:      items,
		Pagination: meta,
	})
}

// Get はタスク詳細を処理する。
// GET /tasks/{id}
func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalOr401(w, r)
	if !ok {
		return
	}

	id, ok := idParamOr400(w, r)
	if !ok {
		return
	}

	task, err := h.service.Get(r.Context(), principal, id)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, taskEnvelope{Task: toTaskResponse(task)})
}

// Update はタスク更新を処理する。
// PUT /tasks/{id}
func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalOr401(w, r)
	if !ok {
		return
	}

	id, ok := idParamOr400(w, r)
	if !ok {
		return
	}

	var req updateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteErrorResponse(w, http.StatusBadRequest,
			model.NewInvalidRequestError("リクエストボディの解析に失敗しました"))
		return
	}

	var status *model.TaskStatus
	if req.Status != nil {
		parsed, err := model.ParseTaskStatus(*req.Status)
		if err != nil {
			middleware.WriteErrorResponse(w, http.StatusBadRequest,
				model.NewInvalidStatusError(*req.Status))
			return
		}
		status = &parsed
	}

	task, err := h.service.Update(r.Context(), principal, id, req.Title, req.Description, status, req.DueDate)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, taskEnvelope{Task: toTaskResponse(task)})
}

// Delete はタスク削除を処理する。
// DELETE /tasks/{id}
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalOr401(w, r)
	if !ok {
		return
	}

	id, ok := idParamOr400(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), principal, id); err != nil {
		handleServiceError(w, err)
		return
	}

	writeSuccessMessage(w, http.StatusOK, "タスクを削除しました")
}
