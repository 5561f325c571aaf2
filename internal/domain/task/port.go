package task

import "context"

type Repo interface {
	InsertType(ctx context.Context, t TaskType) (int, error)
	SetActiveTypes(ctx context.Context, in SetActiveTypes) error
	Insert(ctx context.Context, in Insert) (int64, error)
	Update(ctx context.Context, in Update) error
	AddComment(ctx context.Context, in Comment) (int64, error)
	Comments(ctx context.Context, taskID int64) ([]CommentRow, error)
	Unassigned(ctx context.Context) ([]Unassigned, error)
	Mine(ctx context.Context, userID int64) ([]Mine, error)
	MyStats(ctx context.Context, userID int64) (MyStats, error)
	Filter(ctx context.Context, f Filter) ([]Filtered, error)
	Search(ctx context.Context, s Search, userID int64) ([]Found, error)
	ClientsForForm(ctx context.Context, search *string) ([]ClientOption, error)
}
