// Package metrics contains the Prometheus implementations of the metrics
// interfaces of other packages.
package metrics

import (
	"context"
	"fmt"

	"github.com/AdguardTeam/golibs/errors"
	"github.com/hxkhan/scenepool/pool"
	"github.com/prometheus/client_golang/prometheus"
)

// Namespace is the default namespace of all metrics.
const Namespace = "scenepool"

const subsystemPool = "pool"

// Pool is the Prometheus-based implementation of the [pool.Metrics]
// interface for a single factory.
type Pool struct {
	acquiredReused prometheus.Counter
	acquiredNew    prometheus.Counter
	released       prometheus.Counter
	enabled        prometheus.Gauge
	disabled       prometheus.Gauge
}

var _ pool.Metrics = (*Pool)(nil)

// NewPool registers the metrics of the factory called name in reg and returns
// a properly initialized *Pool.
func NewPool(namespace, name string, reg prometheus.Registerer) (m *Pool, err error) {
	const (
		acquiredTotal = "acquired_total"
		releasedTotal = "released_total"
		elements      = "elements"
	)

	labels := prometheus.Labels{"pool": name}

	acquired := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        acquiredTotal,
		Subsystem:   subsystemPool,
		Namespace:   namespace,
		Help:        "The total number of acquired elements by whether they were reused.",
		ConstLabels: labels,
	}, []string{"reused"})

	released := prometheus.NewCounter(prometheus.CounterOpts{
		Name:        releasedTotal,
		Subsystem:   subsystemPool,
		Namespace:   namespace,
		Help:        "The total number of released elements.",
		ConstLabels: labels,
	})

	elems := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name:        elements,
		Subsystem:   subsystemPool,
		Namespace:   namespace,
		Help:        "The current number of elements by state.",
		ConstLabels: labels,
	}, []string{"state"})

	m = &Pool{
		acquiredReused: acquired.WithLabelValues("1"),
		acquiredNew:    acquired.WithLabelValues("0"),
		released:       released,
		enabled:        elems.WithLabelValues("enabled"),
		disabled:       elems.WithLabelValues("disabled"),
	}

	collectors := []struct {
		c    prometheus.Collector
		name string
	}{
		{c: acquired, name: acquiredTotal},
		{c: released, name: releasedTotal},
		{c: elems, name: elements},
	}

	var errs []error
	var registered []prometheus.Collector
	for _, col := range collectors {
		err = reg.Register(col.c)
		if err != nil {
			errs = append(errs, fmt.Errorf("registering metrics %q: %w", col.name, err))
		} else {
			registered = append(registered, col.c)
		}
	}

	err = errors.Join(errs...)
	if err != nil {
		// Leave reg as it was.
		for _, c := range registered {
			reg.Unregister(c)
		}

		return nil, fmt.Errorf("pool %q: %w", name, err)
	}

	return m, nil
}

// IncrementAcquired implements the [pool.Metrics] interface for *Pool.
func (m *Pool) IncrementAcquired(_ context.Context, reused bool) {
	if reused {
		m.acquiredReused.Inc()
	} else {
		m.acquiredNew.Inc()
	}
}

// IncrementReleased implements the [pool.Metrics] interface for *Pool.
func (m *Pool) IncrementReleased(_ context.Context, n int) {
	m.released.Add(float64(n))
}

// SetElements implements the [pool.Metrics] interface for *Pool.
func (m *Pool) SetElements(_ context.Context, enabled, disabled int) {
	m.enabled.Set(float64(enabled))
	m.disabled.Set(float64(disabled))
}
