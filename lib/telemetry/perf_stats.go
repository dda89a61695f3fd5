package telemetry

import (
	"context"
	"log/slog"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

type perfGauges struct {
	cpu         metric.Float64Gauge
	allocatedMb metric.Int64Gauge
	liveObjects metric.Int64Gauge
	goroutines  metric.Int64Gauge
}

// InstrumentPerfStats samples process health every 30 seconds until
// the context is cancelled.
func InstrumentPerfStats(ctx context.Context) {
	meter := otel.Meter("go.perf_stats")

	var gauges perfGauges
	gauges.cpu, _ = meter.Float64Gauge("cpu_usage")
	gauges.allocatedMb, _ = meter.Int64Gauge("allocated_mb")
	gauges.liveObjects, _ = meter.Int64Gauge("live_objects")
	gauges.goroutines, _ = meter.Int64Gauge("goroutine_count")

	go func() {
		ticker := time.NewTicker(time.Second * 30)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				gauges.sample(ctx)
			case <-ctx.Done():
				return
			}
		}
	}()
}

func (g perfGauges) sample(ctx context.Context) {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	usage, err := cpu.Percent(time.Minute, false)
	if err == nil {
		g.cpu.Record(ctx, usage[0])
	} else {
		slog.Warn("failed to read cpu usage", "err", err)
	}

	g.allocatedMb.Record(ctx, int64(memStats.Alloc/1_000_000))
	g.liveObjects.Record(ctx, int64(memStats.Mallocs)-int64(memStats.Frees))
	g.goroutines.Record(ctx, int64(runtime.NumGoroutine()))
}
