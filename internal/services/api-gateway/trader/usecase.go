package trader

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/NordCoder/crmdesk/internal/domain/outbox"
	"github.com/NordCoder/crmdesk/internal/domain/trader"
	intoutbox "github.com/NordCoder/crmdesk/internal/outbox"
	"github.com/NordCoder/crmdesk/internal/repository/postgres"
)

const entity = "trader"

type Usecase struct {
	repo   trader.Repo
	tx     postgres.Transactor
	events outbox.Enqueuer
	clk    func() time.Time
}

func New(repo trader.Repo, tx postgres.Transactor, events outbox.Enqueuer, clk func() time.Time) *Usecase {
	if clk == nil {
		clk = func() time.Time { return time.Now().UTC() }
	}
	return &Usecase{repo: repo, tx: tx, events: events, clk: clk}
}

func (u *Usecase) Insert(ctx context.Context, actorID int64, in trader.Insert) (int64, error) {
	in.CreatedByUserID = actorID
	var id int64
	err := u.tx.WithTx(ctx, func(txCtx context.Context) error {
		var err error
		if id, err = u.repo.Insert(txCtx, in); err != nil {
			return err
		}
		return intoutbox.Emit(txCtx, u.events, outbox.KindTraderCreated, entity, id, actorID, u.clk())
	})
	if err != nil {
		return 0, fmt.Errorf("insert trader: %w", err)
	}
	return id, nil
}

func (u *Usecase) Update(ctx context.Context, actorID int64, in trader.Update) error {
	err := u.tx.WithTx(ctx, func(txCtx context.Context) error {
		if err := u.repo.Update(txCtx, in); err != nil {
			return err
		}
		return intoutbox.Emit(txCtx, u.events, outbox.KindTraderUpdated, entity, in.TraderID, actorID, u.clk())
	})
	if err != nil {
		return fmt.Errorf("update trader %d: %w", in.TraderID, err)
	}
	return nil
}

func (u *Usecase) Delete(ctx context.Context, actorID, id int64) error {
	err := u.tx.WithTx(ctx, func(txCtx context.Context) error {
		if err := u.repo.Delete(txCtx, id); err != nil {
			return err
		}
		return intoutbox.Emit(txCtx, u.events, outbox.KindTraderDeleted, entity, id, actorID, u.clk())
	})
	if err != nil {
		return fmt.Errorf("delete trader %d: %w", id, err)
	}
	return nil
}

func (u *Usecase) ListActive(ctx context.Context) ([]trader.Trader, error) {
	return u.repo.ListActive(ctx)
}

func (u *Usecase) Stats(ctx context.Context) ([]trader.Stats, error) {
	return u.repo.Stats(ctx)
}

// Filter fills the defaults of the filter functions and calls the search
// variant when withSearch is set.
func (u *Usecase) Filter(ctx context.Context, f trader.Filter, withSearch bool) ([]trader.Summary, error) {
	f.Status = strings.ToUpper(strings.TrimSpace(f.Status))
	if f.Status == "" {
		f.Status = trader.DefaultFilterStatus
	}
	if f.Limit <= 0 {
		f.Limit = trader.DefaultFilterLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	if withSearch {
		return u.repo.FilterWithSearch(ctx, f)
	}
	f.Search = nil
	return u.repo.Filter(ctx, f)
}
