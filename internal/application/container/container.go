package container

import (
	"mmaker/internal/application/port"
	"mmaker/internal/application/service"
)

// Container 应用服务的延迟构造，共享同一个账本仓储
type Container struct {
	repo port.Repository
	pub  port.DecisionPublisher

	symbols       []string
	budget        float64
	bullSentiment float64
	bearSentiment float64

	allocator *service.Allocator
	portfolio *service.PortfolioService
}

func New(repo port.Repository, pub port.DecisionPublisher, symbols []string, budget, bullSentiment, bearSentiment float64) *Container {
	return &Container{
		repo:          repo,
		pub:           pub,
		symbols:       symbols,
		budget:        budget,
		bullSentiment: bullSentiment,
		bearSentiment: bearSentiment,
	}
}

func (c *Container) Repository() port.Repository {
	return c.repo
}

func (c *Container) Allocator() *service.Allocator {
	if c.allocator == nil {
		c.allocator = service.NewAllocator(c.budget)
	}
	return c.allocator
}

func (c *Container) Portfolio() *service.PortfolioService {
	if c.portfolio == nil {
		c.portfolio = service.NewPortfolioService(c.repo, c.symbols, c.bullSentiment, c.bearSentiment, c.pub)
	}
	return c.portfolio
}

func (c *Container) Close() error {
	return c.repo.Close()
}
