package srv

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sandevgo/aquabot/pkg/log"
)

const defaultShutdownTimeout = 10 * time.Second

type Service interface {
	Start(ctx context.Context) error
	Shutdown(ctx context.Context) error
}

// Run starts every service and blocks until ctx is done or one of them fails to
// start, then shuts all of them down in reverse order.
func Run(ctx context.Context, services ...Service) error {
	logger := log.FromCtx(ctx)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	errc := make(chan error, len(services))
	for _, service := range services {
		go func(service Service) {
			if err := service.Start(runCtx); err != nil {
				errc <- fmt.Errorf("%T failed to start: %w", service, err)
			}
		}(service)
	}

	var startErr error
	select {
	case <-ctx.Done():
		logger.Info().Msg("shutting down")
	case startErr = <-errc:
		logger.Error().Err(startErr).Msg("service failed")
	}
	cancel()

	shutdownCtx, stop := context.WithTimeout(context.WithoutCancel(ctx), defaultShutdownTimeout)
	defer stop()
	return errors.Join(startErr, ShutdownServices(shutdownCtx, services))
}

// ShutdownServices stops services in reverse start order and joins their errors.
func ShutdownServices(ctx context.Context, services []Service) error {
	var errs []error
	for i := len(services) - 1; i >= 0; i-- {
		if err := services[i].Shutdown(ctx); err != nil {
			log.FromCtx(ctx).Error().Err(err).Msgf("%T failed to shutdown", services[i])
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
