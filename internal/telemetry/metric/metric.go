// Package metric provides Prometheus metrics for memory resources.
package metric

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/nvalden/memres-go/pkg/memres"
)

const namespace = "memres"

// Instrument wraps a memory resource and records its activity.
type Instrument struct {
	inner memres.Resource

	allocs   prometheus.Counter
	deallocs prometheus.Counter
	failures prometheus.Counter
	inUse    prometheus.Gauge
	sizes    prometheus.Histogram
}

// New returns an instrumented decorator around inner, registering its
// metrics with reg under the given resource name.
func New(inner memres.Resource, name string, reg prometheus.Registerer) (*Instrument, error) {
	if inner == nil {
		panic("metric: nil inner resource")
	}

	labels := prometheus.Labels{"resource": name}

	m := &Instrument{
		inner: inner,
		allocs: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "allocations_total",
			Help:        "Total number of successful allocations.",
			ConstLabels: labels,
		}),
		deallocs: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "deallocations_total",
			Help:        "Total number of deallocations.",
			ConstLabels: labels,
		}),
		failures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "allocation_failures_total",
			Help:        "Total number of failed allocation requests.",
			ConstLabels: labels,
		}),
		inUse: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   namespace,
			Name:        "bytes_in_use",
			Help:        "Requested bytes currently allocated and not yet deallocated.",
			ConstLabels: labels,
		}),
		sizes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace:   namespace,
			Name:        "allocation_size_bytes",
			Help:        "Distribution of requested allocation sizes.",
			Buckets:     prometheus.ExponentialBuckets(16, 4, 10),
			ConstLabels: labels,
		}),
	}

	for _, c := range []prometheus.Collector{m.allocs, m.deallocs, m.failures, m.inUse, m.sizes} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Allocate forwards to the wrapped resource and records the outcome.
func (m *Instrument) Allocate(size, align int) ([]byte, error) {
	buf, err := m.inner.Allocate(size, align)
	if err != nil {
		m.failures.Inc()
		return nil, err
	}
	m.allocs.Inc()
	m.inUse.Add(float64(size))
	m.sizes.Observe(float64(size))
	return buf, nil
}

// Deallocate forwards to the wrapped resource and records the release.
func (m *Instrument) Deallocate(buf []byte, size, align int) {
	m.inner.Deallocate(buf, size, align)
	m.deallocs.Inc()
	m.inUse.Sub(float64(size))
}

// NeedsRelease reports the wrapped resource's deallocation requirement.
func (m *Instrument) NeedsRelease() bool {
	return m.inner.NeedsRelease()
}

// Release forwards teardown to the wrapped resource if it supports it and
// zeroes the in-use gauge: arena-style resources reclaim everything at once.
func (m *Instrument) Release() {
	if r, ok := m.inner.(memres.Releaser); ok {
		r.Release()
	}
	m.inUse.Set(0)
}

// Unwrap returns the decorated resource.
func (m *Instrument) Unwrap() memres.Resource {
	return m.inner
}
