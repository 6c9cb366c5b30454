// Package ratelimit provides the per-source token bucket described in spec
// §4.2 (each Source declares a RateSpec; the collector wraps every fetch in
// a limiter sized from it), grounded on
// RajChodisetti-Trading-app/internal/adapters/alphavantage.go's use of
// golang.org/x/time/rate.
package ratelimit

import (
	"context"

	"golang.org/x/time/rate"
)

// RateSpec is a source's declared rate limit (spec §4.2: source_name() /
// source_tier() / rate_limit() capability set).
type RateSpec struct {
	RequestsPerMinute int
	Burst             int
}

// Limiter wraps a token bucket sized from a RateSpec.
type Limiter struct {
	rl *rate.Limiter
}

// New builds a Limiter from a RateSpec, defaulting burst to 1 when unset.
func New(spec RateSpec) *Limiter {
	burst := spec.Burst
	if burst <= 0 {
		burst = 1
	}
	perSecond := float64(spec.RequestsPerMinute) / 60.0
	if perSecond <= 0 {
		perSecond = 1
	}
	return &Limiter{rl: rate.NewLimiter(rate.Limit(perSecond), burst)}
}

// Wait blocks until a token is available or ctx is done.
func (l *Limiter) Wait(ctx context.Context) error {
	return l.rl.Wait(ctx)
}

// Allow reports whether a token is immediately available, consuming it if
// so, without blocking.
func (l *Limiter) Allow() bool {
	return l.rl.Allow()
}
