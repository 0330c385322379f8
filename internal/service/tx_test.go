package service

import "context"

type testTxRepos struct {
	products     ProductRepositoryInterface
	offers       OfferRepositoryInterface
	reviews      ReviewRepositoryInterface
	insights     InsightRepositoryInterface
	analysisJobs AnalysisJobRepositoryInterface
}

func (t *testTxRepos) Products() ProductRepositoryInterface {
	return t.products
}

func (t *testTxRepos) Offers() OfferRepositoryInterface {
	return t.offers
}

func (t *testTxRepos) Reviews() ReviewRepositoryInterface {
	return t.reviews
}

func (t *testTxRepos) Insights() InsightRepositoryInterface {
	return t.insights
}

func (t *testTxRepos) AnalysisJobs() AnalysisJobRepositoryInterface {
	return t.analysisJobs
}

type testTxRunner struct {
	repos  TxRepositories
	called bool
}

func (t *testTxRunner) WithTx(ctx context.Context, fn func(repos TxRepositories) error) error {
	t.called = true
	return fn(t.repos)
}
