package task

import (
	"context"
	"fmt"
	"time"

	"github.com/NordCoder/crmdesk/internal/domain/outbox"
	"github.com/NordCoder/crmdesk/internal/domain/task"
	intoutbox "github.com/NordCoder/crmdesk/internal/outbox"
	"github.com/NordCoder/crmdesk/internal/repository/postgres"
)

const entity = "task"

type Usecase struct {
	repo   task.Repo
	tx     postgres.Transactor
	events outbox.Enqueuer
	clk    func() time.Time
}

func New(repo task.Repo, tx postgres.Transactor, events outbox.Enqueuer, clk func() time.Time) *Usecase {
	if clk == nil {
		clk = func() time.Time { return time.Now().UTC() }
	}
	return &Usecase{repo: repo, tx: tx, events: events, clk: clk}
}

func (u *Usecase) InsertType(ctx context.Context, t task.TaskType) (int, error) {
	return u.repo.InsertType(ctx, t)
}

func (u *Usecase) SetActiveTypes(ctx context.Context, actorID int64, ids []int) error {
	return u.repo.SetActiveTypes(ctx, task.SetActiveTypes{ActiveTaskTypeIDs: ids, UpdatedByUserID: actorID})
}

// Insert records the caller as the handling user.
func (u *Usecase) Insert(ctx context.Context, actorID int64, in task.Insert) (int64, error) {
	in.HandledByUserID = actorID
	var id int64
	err := u.tx.WithTx(ctx, func(txCtx context.Context) error {
		var err error
		if id, err = u.repo.Insert(txCtx, in); err != nil {
			return err
		}
		return intoutbox.Emit(txCtx, u.events, outbox.KindTaskCreated, entity, id, actorID, u.clk())
	})
	if err != nil {
		return 0, fmt.Errorf("insert task: %w", err)
	}
	return id, nil
}

func (u *Usecase) Update(ctx context.Context, actorID int64, in task.Update) error {
	err := u.tx.WithTx(ctx, func(txCtx context.Context) error {
		if err := u.repo.Update(txCtx, in); err != nil {
			return err
		}
		return intoutbox.Emit(txCtx, u.events, outbox.KindTaskUpdated, entity, in.TaskID, actorID, u.clk())
	})
	if err != nil {
		return fmt.Errorf("update task %d: %w", in.TaskID, err)
	}
	return nil
}

func (u *Usecase) AddComment(ctx context.Context, actorID, taskID int64, text string) (int64, error) {
	var id int64
	err := u.tx.WithTx(ctx, func(txCtx context.Context) error {
		var err error
		id, err = u.repo.AddComment(txCtx, task.Comment{TaskID: taskID, UserID: actorID, Comment: text})
		if err != nil {
			return err
		}
		return intoutbox.Emit(txCtx, u.events, outbox.KindTaskCommentAdded, entity, taskID, actorID, u.clk())
	})
	if err != nil {
		return 0, fmt.Errorf("comment task %d: %w", taskID, err)
	}
	return id, nil
}

func (u *Usecase) Comments(ctx context.Context, taskID int64) ([]task.CommentRow, error) {
	return u.repo.Comments(ctx, taskID)
}

func (u *Usecase) Unassigned(ctx context.Context) ([]task.Unassigned, error) {
	return u.repo.Unassigned(ctx)
}

func (u *Usecase) Mine(ctx context.Context, userID int64) ([]task.Mine, error) {
	return u.repo.Mine(ctx, userID)
}

func (u *Usecase) MyStats(ctx context.Context, userID int64) (task.MyStats, error) {
	return u.repo.MyStats(ctx, userID)
}

func (u *Usecase) Filter(ctx context.Context, f task.Filter) ([]task.Filtered, error) {
	return u.repo.Filter(ctx, f)
}

func (u *Usecase) Search(ctx context.Context, userID int64, s task.Search) ([]task.Found, error) {
	if s.Scope == "" {
		s.Scope = task.ScopeAll
	}
	return u.repo.Search(ctx, s, userID)
}

func (u *Usecase) ClientsForForm(ctx context.Context, search *string) ([]task.ClientOption, error) {
	return u.repo.ClientsForForm(ctx, search)
}
