// Package distance resolves travel distances between cities.
//
// This package contains:
//   - Service: the contract of an external, unreliable distance lookup
//   - SimulatedService, HTTPService, GRPCService: Service implementations
//   - BreakerService: circuit breaker around any Service
//   - Cache / MemoryCache: memoization of unordered city pairs
//   - Resolver: cached, retrying lookup that never fails its caller
package distance

import (
	"context"
	"errors"
	"strings"

	"github.com/sony/gobreaker/v2"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var (
	// ErrUnavailable is returned by services that could not answer.
	ErrUnavailable = errors.New("distance service unavailable")
	// ErrRateLimited is returned when the remote service throttles us.
	ErrRateLimited = errors.New("distance service rate limited")
	// ErrInvalidDistance is returned for answers that are not a usable distance.
	ErrInvalidDistance = errors.New("invalid distance")
)

// Service returns the travel distance between two cities. It may fail
// intermittently.
type Service interface {
	QueryDistance(ctx context.Context, from, to string) (int, error)
}

// ServiceFunc adapts a function to Service.
type ServiceFunc func(ctx context.Context, from, to string) (int, error)

func (f ServiceFunc) QueryDistance(ctx context.Context, from, to string) (int, error) {
	return f(ctx, from, to)
}

// ClassifyError returns a short label for a failed lookup, used for metrics
// and logs. Every class is retried the same way.
func ClassifyError(err error) string {
	switch {
	case err == nil:
		return "none"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return "circuit_open"
	case errors.Is(err, ErrRateLimited):
		return "rate_limited"
	case errors.Is(err, ErrInvalidDistance):
		return "invalid"
	case errors.Is(err, ErrUnavailable):
		return "unavailable"
	}

	if st, ok := status.FromError(err); ok && st.Code() != codes.Unknown {
		return "grpc_" + strings.ToLower(st.Code().String())
	}
	return "other"
}
