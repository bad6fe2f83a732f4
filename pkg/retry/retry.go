package retry

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"
)

// ErrExhausted is returned (wrapping the last attempt error) once every attempt has failed.
var ErrExhausted = errors.New("retries exhausted")

type Operation = func() error

type Config struct {
	MaxRetries    int
	BackoffFactor float64
	InitialDelay  time.Duration
	MaxDelay      time.Duration
	Jitter        time.Duration
}

func NewDefaultConfig() *Config {
	return &Config{
		MaxRetries:    3,
		BackoffFactor: 2,
		InitialDelay:  time.Second,
		MaxDelay:      30 * time.Second,
	}
}

type permanentError struct {
	err error
}

func (p *permanentError) Error() string { return p.err.Error() }
func (p *permanentError) Unwrap() error { return p.err }

// Permanent marks err as not worth retrying. Do returns the unwrapped error immediately.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

type Retrier struct {
	config  *Config
	onRetry func(attempt int, delay time.Duration, err error)
}

func NewRetrier(config *Config) *Retrier {
	if config == nil {
		config = NewDefaultConfig()
	}
	return &Retrier{
		config: config,
	}
}

// OnRetry registers a hook called before each backoff sleep.
// attempt is the number of the attempt that just failed, starting at 1.
func (r *Retrier) OnRetry(fn func(attempt int, delay time.Duration, err error)) *Retrier {
	r.onRetry = fn
	return r
}

// Do runs op until it succeeds, returns a permanent error, or MaxRetries+1 attempts
// have failed. A negative MaxRetries still runs op once.
func (r *Retrier) Do(ctx context.Context, op Operation) error {
	var err error
	maxRetries := max(r.config.MaxRetries, 0)
	delay := r.config.InitialDelay
	factor := r.config.BackoffFactor
	if factor <= 0 {
		factor = 1
	}

	var rnd *rand.Rand
	if r.config.Jitter > 0 {
		rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	for attempt := 0; attempt <= maxRetries; attempt++ {
		err = op()
		if err == nil {
			return nil
		}

		var perm *permanentError
		if errors.As(err, &perm) {
			return perm.err
		}

		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		if attempt == maxRetries {
			break
		}

		nextDelay := delay
		if r.config.MaxDelay > 0 && nextDelay > r.config.MaxDelay {
			nextDelay = r.config.MaxDelay
		}
		if rnd != nil {
			nextDelay += time.Duration(rnd.Float64() * float64(r.config.Jitter))
		}

		if r.onRetry != nil {
			r.onRetry(attempt+1, nextDelay, err)
		}

		timer := time.NewTimer(nextDelay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}

		delay = time.Duration(float64(delay) * factor)
		if r.config.MaxDelay > 0 && delay > r.config.MaxDelay {
			delay = r.config.MaxDelay
		}
	}
	return fmt.Errorf("%w after %d attempts: %w", ErrExhausted, maxRetries+1, err)
}
