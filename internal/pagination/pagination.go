// Package pagination は一覧APIのページネーションを提供する。
package pagination

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/hitoshi/taskman/internal/model"
)

const (
	defaultPage  = 1
	defaultLimit = 10
	maxLimit     = 100
)

// Params は検証済みのページネーションパラメーター。
type Params struct {
	Page  int
	Limit int
}

// Meta は一覧レスポンスに含めるページネーションメタデータ。
type Meta struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int64 `json:"total_pages"`
}

// Parse はクエリパラメーターからページネーションパラメーターを取得し検証する。
// page・limitの省略時はそれぞれ1・10。数値として解釈できない、
// page < 1、limit < 1、limit > 100 のいずれかの場合はエラーを返す。
func Parse(query url.Values) (Params, error) {
	page := defaultPage
	if raw := query.Get("page"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return Params{}, model.NewInvalidPaginationError(fmt.Sprintf("pageが数値ではありません: %s", raw))
		}
		page = parsed
	}
	if page < 1 {
		return Params{}, model.NewInvalidPaginationError(fmt.Sprintf("pageは1以上である必要があります: %d", page))
	}

	limit := defaultLimit
	if raw := query.Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return Params{}, model.NewInvalidPaginationError(fmt.Sprintf("limitが数値ではありません: %s", raw))
		}
		limit = parsed
	}
	if limit < 1 {
		return Params{}, model.NewInvalidPaginationError(fmt.Sprintf("limitは1以上である必要があります: %d", limit))
	}
	if limit > maxLimit {
		return Params{}, model.NewInvalidPaginationError(fmt.Sprintf("limitは%d以下である必要があります: %d", maxLimit, limit))
	}

	return Params{Page: page, Limit: limit}, nil
}

// Offset はSQLのOFFSET句に渡す値を返す。
func (p Params) Offset() int {
	return (p.Page - 1) * p.Limit
}

// NewMeta は総件数からページネーションメタデータを構築する。
// TotalPagesは切り上げ（total=0なら0）。
func NewMeta(total int64, p Params) Meta {
	totalPages := (total + int64(p.Limit) - 1) / int64(p.Limit)
	return Meta{
		Total:      total,
		Page:       p.Page,
		Limit:      p.Limit,
		TotalPages: totalPages,
	}
}
