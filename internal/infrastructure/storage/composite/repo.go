package composite

import (
	"context"

	"mmaker/internal/application/port"
	"mmaker/internal/domain/model"
)

// Repo 写扇出到所有仓库，读只走第一个（主存储）
type Repo struct {
	repos []port.Repository
}

func New(repos ...port.Repository) *Repo {
	// nil repos are allowed; filter in constructor for safety
	out := make([]port.Repository, 0, len(repos))
	for _, r := range repos {
		if r != nil {
			out = append(out, r)
		}
	}
	return &Repo{repos: out}
}

func (r *Repo) LoadPositions(ctx context.Context) ([]model.Position, error) {
	if len(r.repos) == 0 {
		return nil, nil
	}
	return r.repos[0].LoadPositions(ctx)
}

func (r *Repo) UpsertPosition(ctx context.Context, pos model.Position) error {
	var firstErr error
	for _, repo := range r.repos {
		if err := repo.UpsertPosition(ctx, pos); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (r *Repo) DeletePosition(ctx context.Context, ticker string) error {
	var firstErr error
	for _, repo := range r.repos {
		if err := repo.DeletePosition(ctx, ticker); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (r *Repo) AppendTrade(ctx context.Context, t model.Trade) error {
	var firstErr error
	for _, repo := range r.repos {
		if err := repo.AppendTrade(ctx, t); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (r *Repo) UpsertLatestPrice(ctx context.Context, ticker string, price float64, ts int64) error {
	var firstErr error
	for _, repo := range r.repos {
		if err := repo.UpsertLatestPrice(ctx, ticker, price, ts); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (r *Repo) InsertSnapshot(ctx context.Context, ts int64, payload string) error {
	var firstErr error
	for _, repo := range r.repos {
		if err := repo.InsertSnapshot(ctx, ts, payload); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (r *Repo) Close() error {
	var firstErr error
	for _, repo := range r.repos {
		if err := repo.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

var _ port.Repository = (*Repo)(nil)
