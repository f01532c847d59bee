package lossy

import (
	"github.com/filecoin-project/go-lossy/internal/measurements"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

var meter = otel.Meter("lossy")
var metrics = struct {
	decisions metric.Int64Counter
	released  metric.Int64Counter
	holdTime  metric.Int64Histogram
	queued    metric.Int64UpDownCounter
}{
	decisions: measurements.Must(meter.Int64Counter("lossy_decisions",
		metric.WithDescription("Number of impairment decisions made, labelled by direction and decision."))),
	released: measurements.Must(meter.Int64Counter("lossy_released",
		metric.WithDescription("Number of datagrams released after their delay, labelled by direction and status."))),
	holdTime: measurements.Must(meter.Int64Histogram("lossy_hold_time_ms",
		metric.WithDescription("Histogram of time datagrams spent queued before release in milliseconds"),
		metric.WithExplicitBucketBoundaries(0, 1, 5, 10, 25, 50, 100, 150, 200, 300, 500, 1000, 2000, 5000),
		metric.WithUnit("ms"),
	)),
	queued: measurements.Must(meter.Int64UpDownCounter("lossy_queued",
		metric.WithDescription("Number of datagrams currently held, labelled by direction."))),
}
