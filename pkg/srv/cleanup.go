package srv

import (
	"context"
	"sync"
)

// cleanupService runs a release func on shutdown, e.g. closing the stats database.
// The func runs at most once; later shutdowns report the first result.
type cleanupService struct {
	once    sync.Once
	cleanup func() error
	err     error
}

func (c *cleanupService) Start(ctx context.Context) error {
	return nil
}

func (c *cleanupService) Shutdown(ctx context.Context) error {
	c.once.Do(func() {
		if c.cleanup != nil {
			c.err = c.cleanup()
		}
	})
	return c.err
}

func NewCleanup(fn func() error) Service {
	return &cleanupService{cleanup: fn}
}
