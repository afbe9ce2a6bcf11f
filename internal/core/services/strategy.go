package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/custodia-labs/clusterlink/internal/logger"
)

// Strategy is one way of producing a value. Strategies are tried in order
// until one succeeds; a failing strategy never aborts the chain.
type Strategy[T any] struct {
	Name string
	Try  func(ctx context.Context) (T, error)
}

// ErrNoStrategy is returned when every strategy in a chain failed.
var ErrNoStrategy = errors.New("no strategy succeeded")

// RunStrategies returns the value of the first successful strategy and
// its name. Failures are logged and joined into the final error if all
// strategies fail.
func RunStrategies[T any](ctx context.Context, strategies ...Strategy[T]) (T, string, error) {
	var zero T
	var errs []error
	for _, s := range strategies {
		v, err := s.Try(ctx)
		if err == nil {
			return v, s.Name, nil
		}
		logger.Warn("Strategy %s failed: %v", s.Name, err)
		errs = append(errs, fmt.Errorf("%s: %w", s.Name, err))
	}
	if len(errs) == 0 {
		return zero, "", ErrNoStrategy
	}
	return zero, "", fmt.Errorf("%w: %w", ErrNoStrategy, errors.Join(errs...))
}
