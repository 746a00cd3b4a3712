package middleware

import (
	"postboard/internal/observability"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// InitMetrics builds the HTTP metrics collector on a fresh registry that also
// exposes the runtime collectors and the application's own metrics. A private
// registry lets several servers coexist in one process.
func InitMetrics(serviceName string) *fiberprometheus.FiberPrometheus {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	registry.MustRegister(observability.Collectors()...)
	return fiberprometheus.NewWithRegistry(registry, serviceName, "postboard", "http", nil)
}

// MetricsMiddleware records request counts and latencies, skipping the scrape endpoint itself.
func MetricsMiddleware(p *fiberprometheus.FiberPrometheus) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Path() == "/metrics" {
			return c.Next()
		}
		return p.Middleware(c)
	}
}
