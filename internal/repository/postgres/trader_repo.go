package postgres

import (
	"context"
	"fmt"

	"github.com/NordCoder/crmdesk/internal/domain/trader"
	"github.com/jackc/pgx/v5"
)

var _ trader.Repo = (*TraderRepo)(nil)

type TraderRepo struct{ db *DB }

func NewTraderRepo(db *DB) *TraderRepo { return &TraderRepo{db: db} }

const (
	qTraderInsert = `
SELECT insert_client($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11) AS trader_id;`

	qTraderUpdate = `
SELECT update_trader($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12);`

	qTraderDelete = `SELECT delete_trader($1);`

	qTradersActive = `SELECT * FROM get_all_active_clients();`

	qTraderStats = `SELECT * FROM get_client_stats();`

	qTradersFilterSearch = `
SELECT * FROM filter_clients_with_search($1, $2, $3, $4, $5, $6, $7, $8, $9);`

	qTradersFilter = `
SELECT * FROM filter_clients($1, $2, $3, $4, $5, $6, $7, $8);`
)

func (r *TraderRepo) Insert(ctx context.Context, in trader.Insert) (int64, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	var id int64
	err := r.db.execQueryer(ctx).QueryRow(ctx, qTraderInsert,
		in.CompanyName, in.AccountType, in.TimNumber, in.Language, in.Phone, in.Email,
		in.Address, in.City, in.StateCountry, in.ZipCode, in.CreatedByUserID,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert client: %w", classify(err))
	}
	return id, nil
}

func (r *TraderRepo) Update(ctx context.Context, in trader.Update) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	_, err := r.db.execQueryer(ctx).Exec(ctx, qTraderUpdate,
		in.TraderID, in.CompanyName, in.TimNumber, in.Phone, in.Email, in.Address,
		in.City, in.StateCountry, in.ZipCode, in.Language, in.AccountType, in.Status,
	)
	if err != nil {
		if raisedNotFound(err, "trader") {
			return trader.ErrNotFound
		}
		return fmt.Errorf("update trader: %w", classify(err))
	}
	return nil
}

func (r *TraderRepo) Delete(ctx context.Context, id int64) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	if _, err := r.db.execQueryer(ctx).Exec(ctx, qTraderDelete, id); err != nil {
		if raisedNotFound(err, "trader") {
			return trader.ErrNotFound
		}
		return fmt.Errorf("delete trader: %w", err)
	}
	return nil
}

func (r *TraderRepo) ListActive(ctx context.Context) ([]trader.Trader, error) {
	return collect[trader.Trader](ctx, r.db, "active clients", qTradersActive)
}

func (r *TraderRepo) Stats(ctx context.Context) ([]trader.Stats, error) {
	return collect[trader.Stats](ctx, r.db, "client stats", qTraderStats)
}

func (r *TraderRepo) FilterWithSearch(ctx context.Context, f trader.Filter) ([]trader.Summary, error) {
	return collect[trader.Summary](ctx, r.db, "filter clients with search", qTradersFilterSearch,
		f.Search, f.CodePrefix, f.NamePrefix, f.TimPrefix, f.EmailPrefix, f.PhonePrefix,
		f.Status, f.Limit, f.Offset)
}

func (r *TraderRepo) Filter(ctx context.Context, f trader.Filter) ([]trader.Summary, error) {
	return collect[trader.Summary](ctx, r.db, "filter clients", qTradersFilter,
		f.CodePrefix, f.NamePrefix, f.TimPrefix, f.EmailPrefix, f.PhonePrefix,
		f.Status, f.Limit, f.Offset)
}

// collect runs a set-returning function and maps rows onto T by column name.
// Columns without a matching field are an error; fields without a column are not.
func collect[T any](ctx context.Context, db *DB, what, sql string, args ...any) ([]T, error) {
	ctx, cancel := db.withTimeout(ctx)
	defer cancel()

	rows, err := db.execQueryer(ctx).Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", what, err)
	}
	out, err := pgx.CollectRows(rows, pgx.RowToStructByNameLax[T])
	if err != nil {
		return nil, fmt.Errorf("%s: %w", what, err)
	}
	if out == nil {
		out = []T{}
	}
	return out, nil
}
