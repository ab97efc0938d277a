package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/taskman/internal/model"
	"github.com/hitoshi/taskman/internal/pagination"
)

// mockProjectService はProjectServiceInterfaceのモック実装。
type mockProjectService struct {
	createFn func(ctx context.Context, principal model.Principal, name string, description *string) (*model.Project, error)
	listFn   func(ctx context.Context, principal model.Principal, params pagination.Params) ([]*model.Project, pagination.Meta, error)
	getFn    func(ctx context.Context, principal model.Principal, id int64) (*model.Project, error)
	updateFn func(ctx context.Context, principal model.Principal, id int64, name, description *string) (*model.Project, error)
	deleteFn func(ctx context.Context, principal model.Principal, id int64) error
}

func (m *mockProjectService) Create(ctx context.Context, principal model.Principal, name string, description *string) (*model.Project, error) {
	if m.createFn != nil {
		return m.createFn(ctx, principal, name, description)
	}
	return nil, nil
}

func (m *mockProjectService) List(ctx context.Context, principal model.Principal, params pagination.Params) ([]*model.Project, pagination.Meta, error) {
	if m.listFn != nil {
		return m.listFn(ctx, principal, params)
	}
	return nil, pagination.Meta{}, nil
}

func (m *mockProjectService) Get(ctx context.Context, principal model.Principal, id int64) (*model.Project, error) {
	if m.getFn != nil {
		return m.getFn(ctx, principal, id)
	}
	return nil, nil
}

func (m *mockProjectService) Update(ctx context.Context, principal model.Principal, id int64, name, description *string) (*model.Project, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, principal, id, name, description)
	}
	return nil, nil
}

func (m *mockProjectService) Delete(ctx context.Context, principal model.Principal, id int64) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, principal, id)
	}
	return nil
}

// withChiURLParam はテスト用にchiのURLパラメータを注入するヘルパー。
func withChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	ctx := context.WithValue(r.Context(), chi.RouteCtxKey, rctx)
	return r.WithContext(ctx)
}

func TestProjectHandler_Create_Success(t *testing.T) {
	svc := &mockProjectService{
		createFn: func(ctx context.Context, principal model.Principal, name string, description *string) (*model.Project, error) {
			if principal.UserID != 1 {
				t.Errorf("principal.UserID = %d, want 1", principal.UserID)
			}
			return &model.Project{ID: 10, OwnerID: 1, Name: name, CreatedAt: time.Now(), UpdatedAt: time.Now()}, nil
		},
	}
	h := NewProjectHandler(svc)

	body := bytes.NewBufferString(`{"name":"仕事","description":"業務タスク"}`)
	req := httptest.NewRequest(http.MethodPost, "/projects", body)
	req = withPrincipal(req, model.Principal{UserID: 1, Username: "alice"})
	w := httptest.NewRecorder()

	h.Create(w, req)

	if w.Code != http.StatusCreated {
		t.Errorf("status = %d, want %d", w.Code, http.StatusCreated)
	}

	envelope := parseEnvelope(t, w)
	data := envelope["data"].(map[string]any)
	project, ok := data["project"].(map[string]any)
	if !ok {
		t.Fatalf("data.project missing: %v", data)
	}
	if project["name"] != "仕事" {
		t.Errorf("data.project.name = %v, want 仕事", project["name"])
	}
}

func TestProjectHandler_Create_NoPrincipal(t *testing.T) {
	h := NewProjectHandler(&mockProjectService{})

	body := bytes.NewBufferString(`{"name":"p"}`)
	req := httptest.NewRequest(http.MethodPost, "/projects", body)
	w := httptest.NewRecorder()

	h.Create(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}

func TestProjectHandler_List_WithPagination(t *testing.T) {
	svc := &mockProjectService{
		listFn: func(ctx context.Context, principal model.Principal, params pagination.Params) ([]*model.Project, pagination.Meta, error) {
			if params.Page != 3 || params.Limit != 10 {
				t.Errorf("params = %+v, want Page=3 Limit=10", params)
			}
			return []*model.Project{{ID: 21, OwnerID: 1, Name: "p"}}, pagination.NewMeta(25, params), nil
		},
	}
	h := NewProjectHandler(svc)

	req := httptest.NewRequest(http.MethodGet, "/projects?page=3&limit=10", nil)
	req = withPrincipal(req, model.Principal{UserID: 1, Username: "alice"})
	w := httptest.NewRecorder()

	h.List(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}

	envelope := parseEnvelope(t, w)
	data := envelope["data"].(map[string]any)
	pg := data["pagination"].(map[string]any)
	if pg["total"] != float64(25) || pg["total_pages"] != float64(3) {
		t.Errorf("pagination = %v, want total=25 total_pages=3", pg)
	}
}

func TestProjectHandler_List_InvalidPagination(t *testing.T) {
	h := NewProjectHandler(&mockProjectService{})

	req := httptest.NewRequest(http.MethodGet, "/projects?page=0", nil)
	req = withPrincipal(req, model.Principal{UserID: 1, Username: "alice"})
	w := httptest.NewRecorder()

	h.List(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestProjectHandler_Get_NotFoundAndForbidden(t *testing.T) {
	tests := []struct {
		name       string
		serviceErr error
		wantStatus int
	}{
		{name: "存在しない場合は404", serviceErr: model.NewProjectNotFoundError(99), wantStatus: http.StatusNotFound},
		{name: "他者の所有は403", serviceErr: model.NewProjectUnauthorizedError(), wantStatus: http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockProjectService{
				getFn: func(ctx context.Context, principal model.Principal, id int64) (*model.Project, error) {
					return nil, tt.serviceErr
				},
			}
			h := NewProjectHandler(svc)

			req := httptest.NewRequest(http.MethodGet, "/projects/99", nil)
			req = withPrincipal(req, model.Principal{UserID: 1, Username: "alice"})
			req = withChiURLParam(req, "id", "99")
			w := httptest.NewRecorder()

			h.Get(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}

			envelope := parseEnvelope(t, w)
			if envelope["status"] != "error" {
				t.Errorf("status = %v, want error", envelope["status"])
			}
			if _, hasCode := envelope["code"]; hasCode {
				t.Error("error response should not expose internal error code")
			}
		})
	}
}

func TestProjectHandler_Get_InvalidID(t *testing.T) {
	h := NewProjectHandler(&mockProjectService{})

	req := httptest.NewRequest(http.MethodGet, "/projects/abc", nil)
	req = withPrincipal(req, model.Principal{UserID: 1, Username: "alice"})
	req = withChiURLParam(req, "id", "abc")
	w := httptest.NewRecorder()

	h.Get(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestProjectHandler_Update_PartialBody(t *testing.T) {
	svc := &mockProjectService{
		updateFn: func(ctx context.Context, principal model.Principal, id int64, name, description *string) (*model.Project, error) {
			if name == nil || *name != "renamed" {
				t.Errorf("name = %v, want renamed", name)
			}
			if description != nil {
				t.Error("description should stay nil when omitted")
			}
			return &model.Project{ID: id, OwnerID: 1, Name: *name}, nil
		},
	}
	h := NewProjectHandler(svc)

	body := bytes.NewBufferString(`{"name":"renamed"}`)
	req := httptest.NewRequest(http.MethodPut, "/projects/10", body)
	req = withPrincipal(req, model.Principal{UserID: 1, Username: "alice"})
	req = withChiURLParam(req, "id", "10")
	w := httptest.NewRecorder()

	h.Update(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
}

func TestProjectHandler_Delete_Success(t *testing.T) {
	deleted := false
	svc := &mockProjectService{
		deleteFn: func(ctx context.Context, principal model.Principal, id int64) error {
			deleted = true
			return nil
		},
	}
	h := NewProjectHandler(svc)

	req := httptest.NewRequest(http.MethodDelete, "/projects/10", nil)
	req = withPrincipal(req, model.Principal{UserID: 1, Username: "alice"})
	req = withChiURLParam(req, "id", "10")
	w := httptest.NewRecorder()

	h.Delete(w, req)

	if !deleted {
		t.Error("service.Delete should be called")
	}
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}

	var envelope successResponse
	if err := json.NewDecoder(w.Body).Decode(&envelope); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if envelope.Status != "success" || envelope.Message == "" {
		t.Errorf("envelope = %+v, want success with message", envelope)
	}
}
