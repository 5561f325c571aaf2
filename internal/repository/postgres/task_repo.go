package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/NordCoder/crmdesk/internal/domain/task"
	"github.com/jackc/pgx/v5"
)

var _ task.Repo = (*TaskRepo)(nil)

type TaskRepo struct{ db *DB }

func NewTaskRepo(db *DB) *TaskRepo { return &TaskRepo{db: db} }

const (
	qTaskTypeInsert = `SELECT insert_task_type($1, $2, $3, $4);`

	qTaskTypesSetActive = `SELECT set_active_task_types($1, $2);`

	qTaskInsert = `
SELECT task_id FROM insert_task(
  $1, $2, $3, $4, $5, $6,
  $7, $8, $9,
  $10, $11, $12
);`

	qTaskUpdate = `
SELECT update_task($1, $2, $3, $4, $5, $6, $7, $8, $9);`

	qTaskCommentAdd = `SELECT add_task_comment($1, $2, $3) AS comment_id;`

	qTaskComments = `SELECT * FROM get_task_comments($1);`

	qTasksUnassigned = `SELECT * FROM get_unassigned_tasks();`

	qTasksMine = `SELECT * FROM get_my_tasks($1);`

	qTasksMyStats = `SELECT * FROM get_my_tasks_stats($1);`

	qTasksFilter = `
SELECT * FROM filter_tasks($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);`

	qTasksSearch = `
SELECT * FROM search_tasks($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13);`

	qTaskClientsForForm = `SELECT * FROM get_clients_for_task_form($1);`
)

func (r *TaskRepo) InsertType(ctx context.Context, t task.TaskType) (int, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	var id int
	if err := r.db.execQueryer(ctx).QueryRow(ctx, qTaskTypeInsert,
		t.TaskTypeID, t.TaskTypeName, t.TaskTypeCode, t.IsActive).Scan(&id); err != nil {
		return 0, fmt.Errorf("insert task type: %w", classify(err))
	}
	return id, nil
}

func (r *TaskRepo) SetActiveTypes(ctx context.Context, in task.SetActiveTypes) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	if _, err := r.db.execQueryer(ctx).Exec(ctx, qTaskTypesSetActive, in.ActiveTaskTypeIDs, in.UpdatedByUserID); err != nil {
		return fmt.Errorf("set active task types: %w", err)
	}
	return nil
}

func (r *TaskRepo) Insert(ctx context.Context, in task.Insert) (int64, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	var id int64
	err := r.db.execQueryer(ctx).QueryRow(ctx, qTaskInsert,
		in.TaskTypeID, in.TransactionID, in.Status, in.HandledByUserID, in.Subject, in.Description,
		in.AssignedToUserID, in.Priority, in.Reminder,
		in.CallDurationSeconds, in.Location, in.ChainID,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert task: %w", classify(err))
	}
	return id, nil
}

func (r *TaskRepo) Update(ctx context.Context, in task.Update) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	_, err := r.db.execQueryer(ctx).Exec(ctx, qTaskUpdate,
		in.TaskID, in.Status, in.Subject, in.Description, in.AssignedToUserID,
		in.Priority, in.Reminder, in.CallDurationSeconds, in.Location,
	)
	if err != nil {
		if raisedNotFound(err, "task") {
			return task.ErrNotFound
		}
		return fmt.Errorf("update task: %w", classify(err))
	}
	return nil
}

func (r *TaskRepo) AddComment(ctx context.Context, in task.Comment) (int64, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	var id int64
	err := r.db.execQueryer(ctx).QueryRow(ctx, qTaskCommentAdd, in.TaskID, in.UserID, in.Comment).Scan(&id)
	if err != nil {
		if raisedNotFound(err, "task") || errors.Is(classify(err), ErrConstraint) {
			return 0, task.ErrNotFound
		}
		return 0, fmt.Errorf("add task comment: %w", err)
	}
	return id, nil
}

func (r *TaskRepo) Comments(ctx context.Context, taskID int64) ([]task.CommentRow, error) {
	return collect[task.CommentRow](ctx, r.db, "task comments", qTaskComments, taskID)
}

func (r *TaskRepo) Unassigned(ctx context.Context) ([]task.Unassigned, error) {
	return collect[task.Unassigned](ctx, r.db, "unassigned tasks", qTasksUnassigned)
}

func (r *TaskRepo) Mine(ctx context.Context, userID int64) ([]task.Mine, error) {
	return collect[task.Mine](ctx, r.db, "my tasks", qTasksMine, userID)
}

func (r *TaskRepo) MyStats(ctx context.Context, userID int64) (task.MyStats, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	rows, err := r.db.execQueryer(ctx).Query(ctx, qTasksMyStats, userID)
	if err != nil {
		return task.MyStats{}, fmt.Errorf("my tasks stats: %w", err)
	}
	st, err := pgx.CollectOneRow(rows, pgx.RowToStructByNameLax[task.MyStats])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return task.MyStats{}, nil
		}
		return task.MyStats{}, fmt.Errorf("my tasks stats: %w", err)
	}
	return st, nil
}

func (r *TaskRepo) Filter(ctx context.Context, f task.Filter) ([]task.Filtered, error) {
	return collect[task.Filtered](ctx, r.db, "filter tasks", qTasksFilter,
		f.TaskID, f.TaskTypeID, f.DateFrom, f.DateTo, f.Priority, f.Status,
		f.ClientCodePrefix, f.ClientNamePrefix, f.ClientTimPrefix, f.ClientEmailPrefix)
}

func (r *TaskRepo) Search(ctx context.Context, s task.Search, userID int64) ([]task.Found, error) {
	return collect[task.Found](ctx, r.db, "search tasks", qTasksSearch,
		string(s.Scope), s.Search, s.TaskID, s.TaskTypeID, s.DateFrom, s.DateTo, s.Priority, s.Status,
		s.ClientCodePrefix, s.ClientNamePrefix, s.ClientTimPrefix, s.ClientEmailPrefix, userID)
}

func (r *TaskRepo) ClientsForForm(ctx context.Context, search *string) ([]task.ClientOption, error) {
	return collect[task.ClientOption](ctx, r.db, "clients for task form", qTaskClientsForForm, search)
}
