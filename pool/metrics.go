package pool

import "context"

// Metrics is an interface for collection of the statistics of a [Factory].
type Metrics interface {
	// IncrementAcquired is called on every acquisition.  reused is false when
	// a new element had to be instantiated.
	IncrementAcquired(ctx context.Context, reused bool)

	// IncrementReleased is called with the number of elements a release
	// moved to the disabled sequence.
	IncrementReleased(ctx context.Context, n int)

	// SetElements is called with the sequence sizes after every change.
	SetElements(ctx context.Context, enabled, disabled int)
}

// EmptyMetrics is the implementation of the [Metrics] interface that does
// nothing.
type EmptyMetrics struct{}

var _ Metrics = EmptyMetrics{}

// IncrementAcquired implements the [Metrics] interface for EmptyMetrics.
func (EmptyMetrics) IncrementAcquired(_ context.Context, _ bool) {}

// IncrementReleased implements the [Metrics] interface for EmptyMetrics.
func (EmptyMetrics) IncrementReleased(_ context.Context, _ int) {}

// SetElements implements the [Metrics] interface for EmptyMetrics.
func (EmptyMetrics) SetElements(_ context.Context, _, _ int) {}
