package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/hitoshi/taskman/internal/model"
)

// PostgresTaskRepo はPostgreSQLを使用したタスクリポジトリ。
// タスクの所有権は常に親プロジェクトへのJOINで導出する。
type PostgresTaskRepo struct {
	db *sql.DB
}

// NewPostgresTaskRepo はPostgresTaskRepoを生成する。
func NewPostgresTaskRepo(db *sql.DB) *PostgresTaskRepo {
	return &PostgresTaskRepo{db: db}
}

// scanTask は1行分のタスクカラムを読み取る。
// DB上のstatus文字列は閉じた列挙型として検証し、未知の値は
// デフォルトに倒さずエラーにする。
func scanTask(scan func(dest ...any) error) (*model.Task, error) {
	task := &model.Task{}
	var status string
	if err := scan(&task.ID, &task.ProjectID, &task.Title, &task.Description,
		&status, &task.DueDate, &task.CreatedAt, &task.UpdatedAt); err != nil {
		return nil, err
	}

	parsed, err := model.ParseTaskStatus(status)
	if err != nil {
		return nil, fmt.Errorf("invalid status stored for task %d: %w", task.ID, err)
	}
	task.Status = parsed

	return task, nil
}

// CreateOwned は対象プロジェクトをownerIDが所有している場合にのみタスクを挿入する。
// 所有権チェックと挿入はWHERE EXISTSで単一文に収め、原子的に行う。
// 挿入されなかった場合はnilを返す。
func (r *PostgresTaskRepo) CreateOwned(ctx context.Context, projectID, ownerID int64, title string, description *string, dueDate *time.Time) (*model.Task, error) {
	row := r.db.QueryRowContext(ctx,
		`INSERT INTO tasks (project_id, title, description, due_date)
		 SELECT $1, $2, $3, $4
		 WHERE EXISTS (
		     SELECT 1 FROM projects
		     WHERE id = $1 AND user_id = $5
		 )
		 RETURNING id, project_id, title, description, status, due_date, created_at, updated_at`,
		projectID, title, description, dueDate, ownerID,
	)

	task, err := scanTask(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to insert task: %w", err)
	}

	return task, nil
}

// FindByIDWithOwner は指定IDのタスクと親プロジェクトの所有者IDを返す。
// 見つからない場合は(nil, 0, nil)を返す。
func (r *PostgresTaskRepo) FindByIDWithOwner(ctx context.Context, id int64) (*model.Task, int64, error) {
	task := &model.Task{}
	var status string
	var ownerID int64
	err := r.db.QueryRowContext(ctx,
		`SELECT t.id, t.project_id, t.title, t.description, t.status, t.due_date,
		        t.created_at, t.updated_at, p.user_id
		 FROM tasks t
		 JOIN projects p ON t.project_id = p.id
		 WHERE t.id = $1`,
		id,
	).Scan(&task.ID, &task.ProjectID, &task.Title, &task.Description,
		&status, &task.DueDate, &task.CreatedAt, &task.UpdatedAt, &ownerID)

	if err == sql.ErrNoRows {
		return nil, 0, nil
	}
	if err != nil {
		return nil, 0, fmt.Errorf("failed to find task by ID: %w", err)
	}

	parsed, err := model.ParseTaskStatus(status)
	if err != nil {
		return nil, 0, fmt.Errorf("invalid status stored for task %d: %w", task.ID, err)
	}
	task.Status = parsed

	return task, ownerID, nil
}

// ListByOwner は指定所有者のタスク一覧を返す。statusが空文字列の場合は全件。
func (r *PostgresTaskRepo) ListByOwner(ctx context.Context, ownerID int64, status model.TaskStatus, limit, offset int) ([]*model.Task, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT t.id, t.project_id, t.title, t.description, t.status, t.due_date,
		        t.created_at, t.updated_at
		 FROM tasks t
		 JOIN projects p ON t.project_id = p.id
		 WHERE p.user_id = $1 AND ($2 = '' OR t.status = $2)
		 ORDER BY t.created_at DESC
		 LIMIT $3 OFFSET $4`,
		ownerID, string(status), limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []*model.Task
	for rows.Next() {
		task, err := scanTask(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task row: %w", err)
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate task rows: %w", err)
	}

	return tasks, nil
}

// CountByOwner は指定所有者のタスク総数を返す。statusが空文字列の場合は全件。
func (r *PostgresTaskRepo) CountByOwner(ctx context.Context, ownerID int64, status model.TaskStatus) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(t.id)
		 FROM tasks t
		 JOIN projects p ON t.project_id = p.id
		 WHERE p.user_id = $1 AND ($2 = '' OR t.status = $2)`,
		ownerID, string(status),
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count tasks: %w", err)
	}

	return count, nil
}

// Update は親プロジェクトの所有者がownerIDである場合にのみタスクを部分更新する。
// 該当行がない場合はnilを返す。
func (r *PostgresTaskRepo) Update(ctx context.Context, id, ownerID int64, title, description *string, status *model.TaskStatus, dueDate *time.Time) (*model.Task, error) {
	var statusStr *string
	if status != nil {
		s := string(*status)
		statusStr = &s
	}

	row := r.db.QueryRowContext(ctx,
		`UPDATE tasks t
		 SET
		     title = COALESCE($1, t.title),
		     description = COALESCE($2, t.description),
		     status = COALESCE($3, t.status),
		     due_date = COALESCE($4, t.due_date),
		     updated_at = CURRENT_TIMESTAMP
		 FROM projects p
		 WHERE
		     t.id = $5 AND
		     t.project_id = p.id AND
		     p.user_id = $6
		 RETURNING t.id, t.project_id, t.title, t.description, t.status, t.due_date,
		           t.created_at, t.updated_at`,
		title, description, statusStr, dueDate, id, ownerID,
	)

	task, err := scanTask(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	return task, nil
}

// Delete は親プロジェクトの所有者がownerIDである場合にのみタスクを削除する。
// 削除された場合はtrueを返す。
func (r *PostgresTaskRepo) Delete(ctx context.Context, id, ownerID int64) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM tasks t
		 USING projects p
		 WHERE
		     t.id = $1 AND
		     t.project_id = p.id AND
		     p.user_id = $2`,
		id, ownerID,
	)
	if err != nil {
		return false, fmt.Errorf("failed to delete task: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get affected rows: %w", err)
	}

	return affected > 0, nil
}
