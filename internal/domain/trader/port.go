package trader

import "context"

type Repo interface {
	Insert(ctx context.Context, in Insert) (int64, error)
	Update(ctx context.Context, in Update) error
	Delete(ctx context.Context, id int64) error
	ListActive(ctx context.Context) ([]Trader, error)
	Stats(ctx context.Context) ([]Stats, error)
	FilterWithSearch(ctx context.Context, f Filter) ([]Summary, error)
	Filter(ctx context.Context, f Filter) ([]Summary, error)
}
