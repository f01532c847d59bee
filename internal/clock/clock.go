package clock

import (
	"context"

	"github.com/benbjohnson/clock"
)

type Clock = clock.Clock
type Mock = clock.Mock

type clockKeyType struct{}

var (
	clockKey  = clockKeyType{}
	realClock = clock.New()
)

// NewMock returns an instance of a mock clock.
// The current time of the mock clock on initialization is the Unix epoch.
func NewMock() *Mock {
	return clock.NewMock()
}

// WithMockClock embeds a new mock clock in the context and returns it.
func WithMockClock(ctx context.Context) (context.Context, *Mock) {
	clk := clock.NewMock()
	return WithClock(ctx, clk), clk
}

// WithClock embeds the given clock in the context. Components that obtain their
// time via GetClock will then observe it instead of the realtime clock.
func WithClock(ctx context.Context, clk Clock) context.Context {
	return context.WithValue(ctx, clockKey, clk)
}

// GetClock either retrieves the clock embedded in the context or returns a
// realtime clock.
func GetClock(ctx context.Context) Clock {
	if clk, ok := ctx.Value(clockKey).(Clock); ok {
		return clk
	}
	return realClock
}
