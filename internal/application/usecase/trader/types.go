package trader

import "mmaker/internal/application/port"

type PriceFeed = port.PriceFeed
type Repository = port.Repository

// for repos needing Close()
type RepositoryCloser interface {
	port.Repository
	Close() error
}
