package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cloo-solutions/shopmate/internal/service"
)

// TxRunner provides transactional repositories using a pgx pool.
type TxRunner struct {
	pool *pgxpool.Pool
}

func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

func (r *TxRunner) WithTx(ctx context.Context, fn func(repos service.TxRepositories) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}

	repos := &txRepos{tx: tx}
	if err := fn(repos); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}

	return tx.Commit(ctx)
}

type txRepos struct {
	tx pgx.Tx
}

func (r *txRepos) Products() service.ProductRepositoryInterface {
	return NewProductRepositoryWithTx(r.tx)
}

func (r *txRepos) Offers() service.OfferRepositoryInterface {
	return NewOfferRepositoryWithTx(r.tx)
}

func (r *txRepos) Reviews() service.ReviewRepositoryInterface {
	return NewReviewRepositoryWithTx(r.tx)
}

func (r *txRepos) Insights() service.InsightRepositoryInterface {
	return NewInsightRepositoryWithTx(r.tx)
}

func (r *txRepos) AnalysisJobs() service.AnalysisJobRepositoryInterface {
	return NewAnalysisJobRepositoryWithTx(r.tx)
}
