package prometheus

import (
	"bytes"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"

	"github.com/taskpoolio/taskpool/pkg/pool"
)

var (
	// DefaultRegistry is the default Prometheus registry
	DefaultRegistry = prometheus.NewRegistry()

	// DefaultRegisterer is the default Prometheus registerer
	DefaultRegisterer = prometheus.WrapRegistererWith(prometheus.Labels{"service": "taskpool"}, DefaultRegistry)
)

// PoolCollector exposes pool activity as Prometheus metrics. It samples
// Pool.Stats on every scrape, so it needs no hooks inside the pool itself.
type PoolCollector struct {
	pool *pool.Pool

	workers   *prometheus.Desc
	busy      *prometheus.Desc
	depth     *prometheus.Desc
	submitted *prometheus.Desc
	rejected  *prometheus.Desc
	completed *prometheus.Desc
	faults    *prometheus.Desc
}

// NewPoolCollector creates a collector for the given pool
func NewPoolCollector(p *pool.Pool) *PoolCollector {
	return &PoolCollector{
		pool: p,
		workers: prometheus.NewDesc(
			"taskpool_workers",
			"Configured number of worker goroutines",
			nil, nil,
		),
		busy: prometheus.NewDesc(
			"taskpool_busy_workers",
			"Number of workers currently executing a task",
			nil, nil,
		),
		depth: prometheus.NewDesc(
			"taskpool_queue_depth",
			"Number of tasks pending in the queue",
			nil, nil,
		),
		submitted: prometheus.NewDesc(
			"taskpool_tasks_submitted_total",
			"Total number of tasks accepted by Submit",
			nil, nil,
		),
		rejected: prometheus.NewDesc(
			"taskpool_tasks_rejected_total",
			"Total number of submissions rejected while intake was closed",
			nil, nil,
		),
		completed: prometheus.NewDesc(
			"taskpool_tasks_completed_total",
			"Total number of task executions finished",
			nil, nil,
		),
		faults: prometheus.NewDesc(
			"taskpool_task_faults_total",
			"Total number of task executions that returned an error or panicked",
			nil, nil,
		),
	}
}

// Describe implements prometheus.Collector
func (c *PoolCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.workers
	ch <- c.busy
	ch <- c.depth
	ch <- c.submitted
	ch <- c.rejected
	ch <- c.completed
	ch <- c.faults
}

// Collect implements prometheus.Collector
func (c *PoolCollector) Collect(ch chan<- prometheus.Metric) {
	stats := c.pool.Stats()

	ch <- prometheus.MustNewConstMetric(c.workers, prometheus.GaugeValue, float64(stats.Workers))
	ch <- prometheus.MustNewConstMetric(c.busy, prometheus.GaugeValue, float64(stats.BusyWorkers))
	ch <- prometheus.MustNewConstMetric(c.depth, prometheus.GaugeValue, float64(stats.QueueDepth))
	ch <- prometheus.MustNewConstMetric(c.submitted, prometheus.CounterValue, float64(stats.Submitted))
	ch <- prometheus.MustNewConstMetric(c.rejected, prometheus.CounterValue, float64(stats.Rejected))
	ch <- prometheus.MustNewConstMetric(c.completed, prometheus.CounterValue, float64(stats.Completed))
	ch <- prometheus.MustNewConstMetric(c.faults, prometheus.CounterValue, float64(stats.Faults))
}

// Register registers a collector for p on the default registerer
func Register(p *pool.Pool) error {
	return DefaultRegisterer.Register(NewPoolCollector(p))
}

// Render gathers g and renders it in the Prometheus text exposition
// format, for serving from transports that cannot mount promhttp.
func Render(g prometheus.Gatherer) ([]byte, error) {
	families, err := g.Gather()
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	enc := expfmt.NewEncoder(&buf, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, mf := range families {
		if err := enc.Encode(mf); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}
