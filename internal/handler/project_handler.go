package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/taskman/internal/middleware"
	"github.com/hitoshi/taskman/internal/model"
	"github.com/hitoshi/taskman/internal/pagination"
)

// ProjectServiceInterface はプロジェクトハンドラーが必要とするサービスインターフェース。
type ProjectServiceInterface interface {
	Create(ctx context.Context, principal model.Principal, name string, description *string) (*model.Project, error)
	List(ctx context.Context, principal model.Principal, params pagination.Params) ([]*model.Project, pagination.Meta, error)
	Get(ctx context.Context, principal model.Principal, id int64) (*model.Project, error)
	Update(ctx context.Context, principal model.Principal, id int64, name, description *string) (*model.Project, error)
	Delete(ctx context.Context, principal model.Principal, id int64) error
}

// ProjectHandler はプロジェクト管理のHTTPハンドラー。
type ProjectHandler struct {
	service ProjectServiceInterface
}

// NewProjectHandler はProjectHandlerを生成する。
func NewProjectHandler(service ProjectServiceInterface) *ProjectHandler {
	return &ProjectHandler{service: service}
}

// createProjectRequest はプロジェクト作成リクエストのボディ。
type createProjectRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
}

// updateProjectRequest はプロジェクト更新リクエストのボディ。
// 省略されたフィールドは変更しない。
type updateProjectRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

// projectResponse はプロジェクト情報のAPIレスポンス。
type projectResponse struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// projectEnvelope は単一プロジェクトをprojectキーの下にネストしたレスポンス。
type projectEnvelope struct {
	Project projectResponse `json:"project"`
}

// projectListResponse はプロジェクト一覧のAPIレスポンス。
type projectListResponse struct {
	Projects   []projectResponse `json:"projects"`
	Pagination pagination.Meta   `json:"pagination"`
}

func toProjectResponse(project *model.Project) projectResponse {
	return projectResponse{
		ID:          project.ID,
		Name:        project.Name,
		Description: project.Description,
		CreatedAt:   project.CreatedAt,
		UpdatedAt:   project.UpdatedAt,
	}
}

// principalOr401 はコンテキストからPrincipalを取得する。
// 取得できない場合は401を書き込みfalseを返す。
func principalOr401(w http.ResponseWriter, r *http.Request) (model.Principal, bool) {
	principal, err := middleware.PrincipalFromContext(r.Context())
	if err != nil {
		middleware.WriteErrorResponse(w, http.StatusUnauthorized, model.NewAuthFailError())
		return model.Principal{}, false
	}
	return principal, true
}

// idParamOr400 はURLパラメーターidをint64として取得する。
// 解析できない場合は400を書き込みfalseを返す。
func idParamOr400(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		middleware.WriteErrorResponse(w, http.StatusBadRequest,
			model.NewInvalidRequestError("idが数値ではありません: "+raw))
		return 0, false
	}
	return id, true
}

// Create はプロジェクト作成を処理する。
// POST /projects
func (h *ProjectHandler) Create(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalOr401(w, r)
	if !ok {
		return
	}

	var req createProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteErrorResponse(w, http.StatusBadRequest,
			model.NewInvalidRequestError("リクエストボディの解析に失敗しました"))
		return
	}

	project, err := h.service.Create(r.Context(), principal, req.Name, req.Description)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeSuccess(w, http.StatusCreated, projectEnvelope{Project: toProjectResponse(project)})
}

// List はプロジェクト一覧を処理する。
// GET /projects?page=N&limit=M
func (h *ProjectHandler) List(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalOr401(w, r)
	if !ok {
		return
	}

	params, err := pagination.Parse(r.URL.Query())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	projects, meta, err := h.service.List(r.Context(), principal, params)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	items := make([]projectResponse, 0, len(projects))
	for _, p := range projects {
		items = append(items, toProjectResponse(p))
	}

	writeSuccess(w, http.StatusOK, projectListResponse{
		Projects:   items,
		Pagination: meta,
	})
}

// Get はプロジェクト詳細を処理する。
// GET /projects/{id}
func (h *ProjectHandler) Get(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalOr401(w, r)
	if !ok {
		return
	}

	id, ok := idParamOr400(w, r)
	if !ok {
		return
	}

	project, err := h.service.Get(r.Context(), principal, id)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, projectEnvelope{Project: toProjectResponse(project)})
}

// Update はプロジェクト更新を処理する。
// PUT /projects/{id}
func (h *ProjectHandler) Update(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalOr401(w, r)
	if !ok {
		return
	}

	id, ok := idParamOr400(w, r)
	if !ok {
		return
	}

	var req updateProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteErrorResponse(w, http.StatusBadRequest,
			model.NewInvalidRequestError("リクエストボディの解析に失敗しました"))
		return
	}

	project, err := h.service.Update(r.Context(), principal, id, req.Name, req.Description)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, projectEnvelope{Project: toProjectResponse(project)})
}

// Delete はプロジェクト削除を処理する。
// DELETE /projects/{id}
func (h *ProjectHandler) Delete(w http.ResponseWriter, r *http.Request) {
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

	writeSuccessMessage(w, http.StatusOK, "プロジェクトを削除しました")
}
