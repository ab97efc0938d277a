// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/hitoshi/taskman/internal/model"
)

// ErrUsernameTaken はユーザー名の一意制約違反を表す。
// PostgresUserRepo.Createがunique_violationを検出した際に返す。
var ErrUsernameTaken = errors.New("username already taken")

// UserRepository は認証情報の永続化インターフェース。
type UserRepository interface {
	// Create はユーザーを作成する。ユーザー名が既に存在する場合は
	// ErrUsernameTakenをラップしたエラーを返す。
	Create(ctx context.Context, username, passwordHash string) (*model.User, error)

	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id int64) (*model.User, error)

	// FindByUsername はユーザー名でユーザーを検索する。見つからない場合はnilを返す。
	FindByUsername(ctx context.Context, username string) (*model.User, error)
}

// ProjectRepository はプロジェクトデータの永続化インターフェース。
type ProjectRepository interface {
	// Create はプロジェクトを作成する。
	Create(ctx context.Context, ownerID int64, name string, description *string) (*model.Project, error)

	// FindByID は指定IDのプロジェクトを所有者に関わらず取得する。
	// 見つからない場合はnilを返す。所有権の判定は呼び出し側で行う。
	FindByID(ctx context.Context, id int64) (*model.Project, error)

	// ListByOwner は指定所有者のプロジェクト一覧をcreated_at降順で返す。
	// クエリ自体がowner_idで絞り込むため、他者の行は到達不能。
	ListByOwner(ctx context.Context, ownerID int64, limit, offset int) ([]*model.Project, error)

	// CountByOwner は指定所有者のプロジェクト総数を返す。
	CountByOwner(ctx context.Context, ownerID int64) (int64, error)

	// Update はid AND owner_idの複合条件でプロジェクトを部分更新する。
	// nilフィールドは変更しない。該当行がない（存在しないか所有者が異なる）
	// 場合はnilを返す。チェックと更新は単一文で原子的に行われる。
	Update(ctx context.Context, id, ownerID int64, name, description *string) (*model.Project, error)

	// Delete はid AND owner_idの複合条件でプロジェクトを削除する。
	// 配下のタスクはCASCADE削除される。削除された場合はtrueを返す。
	Delete(ctx context.Context, id, ownerID int64) (bool, error)
}

// TaskRepository はタスクデータの永続化インターフェース。
// タスクの所有権は親プロジェクトへのJOINで導出される。
type TaskRepository interface {
	// CreateOwned は対象プロジェクトをownerIDが所有している場合にのみ
	// タスクを挿入する。所有権チェックと挿入はWHERE EXISTSで単一文に
	// まとめられ、チェック後のプロジェクト削除・移譲と競合しない。
	// 挿入されなかった場合はnilを返す。
	CreateOwned(ctx context.Context, projectID, ownerID int64, title string, description *string, dueDate *time.Time) (*model.Task, error)

	// FindByIDWithOwner は指定IDのタスクと、親プロジェクトから導出した
	// 所有者IDを返す。見つからない場合は(nil, 0, nil)を返す。
	FindByIDWithOwner(ctx context.Context, id int64) (*model.Task, int64, error)

	// ListByOwner は指定所有者のタスク一覧を親プロジェクトへのJOINで
	// 絞り込み、created_at降順で返す。statusが空文字列の場合は全件。
	ListByOwner(ctx context.Context, ownerID int64, status model.TaskStatus, limit, offset int) ([]*model.Task, error)

	// CountByOwner は指定所有者のタスク総数を返す。statusが空文字列の場合は全件。
	CountByOwner(ctx context.Context, ownerID int64, status model.TaskStatus) (int64, error)

	// Update は親プロジェクトの所有者がownerIDである場合にのみタスクを
	// 部分更新する。nilフィールドは変更しない。該当行がない場合はnilを返す。
	Update(ctx context.Context, id, ownerID int64, title, description *string, status *model.TaskStatus, dueDate *time.Time) (*model.Task, error)

	// Delete は親プロジェクトの所有者がownerIDである場合にのみタスクを
	// 削除する。削除された場合はtrueを返す。
	Delete(ctx context.Context, id, ownerID int64) (bool, error)
}
