// Package metrics exports Prometheus counters for RPCs and domain events.
package metrics

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"google.golang.org/grpc"
	"google.golang.org/grpc/status"

	"github.com/and161185/secret-santa/internal/draw"
	"github.com/and161185/secret-santa/internal/repository"
	"github.com/and161185/secret-santa/internal/service"
)

const namespace = "santa"

// Collector owns a private registry so tests and multiple servers never collide.
type Collector struct {
	reg       *prometheus.Registry
	rpcs      *prometheus.CounterVec
	draws     *prometheus.HistogramVec
	conflicts *prometheus.CounterVec
}

var _ service.Metrics = (*Collector)(nil)

// New builds a collector with Go runtime and process metrics included.
func New() *Collector {
	c := &Collector{
		reg: prometheus.NewRegistry(),
		rpcs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "grpc_requests_total",
			Help:      "Unary RPCs handled, by method and status code.",
		}, []string{"method", "code"}),
		draws: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "draw_attempts",
			Help:      "Shuffles needed to find a derangement.",
			Buckets:   []float64{1, 2, 3, 5, 8, 13, 21, 50, draw.MaxAttempts},
		}, []string{"outcome"}),
		conflicts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_version_conflicts_total",
			Help:      "Saves rejected because another writer got there first.",
		}, []string{"collection"}),
	}
	c.reg.MustRegister(
		c.rpcs, c.draws, c.conflicts,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return c
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.reg, promhttp.HandlerOpts{Registry: c.reg})
}

// UnaryServerInterceptor counts every unary call by method and resulting code.
func (c *Collector) UnaryServerInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, next grpc.UnaryHandler) (any, error) {
		resp, err := next(ctx, req)
		c.rpcs.WithLabelValues(info.FullMethod, status.Code(err).String()).Inc()
		return resp, err
	}
}

// ObserveDraw records a draw outcome.
func (c *Collector) ObserveDraw(attempts int, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	c.draws.WithLabelValues(outcome).Observe(float64(attempts))
}

// VersionConflict counts a lost compare-and-swap race.
func (c *Collector) VersionConflict(coll repository.Collection) {
	c.conflicts.WithLabelValues(string(coll)).Inc()
}

// Serve runs a metrics-only HTTP server until ctx is done.
func (c *Collector) Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", c.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	select {
	case <-ctx.Done():
		return srv.Shutdown(context.Background())
	case err := <-errCh:
		return err
	}
}
