package metrics

import (
	// Std
	"time"

	// Momentum
	"github.com/momentum-xyz/media-placer/internal/config"
	"github.com/momentum-xyz/media-placer/internal/logger"

	// Third-Party
	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	influx_write "github.com/influxdata/influxdb-client-go/v2/api/write"
)

const measurement = "placement"

var log = logger.L().With("package", "metrics")

type pointWriter interface {
	WritePoint(point *influx_write.Point)
	Flush()
}

// Reporter writes one point per placement attempt.
type Reporter struct {
	write pointWriter
	close func()
}

func NewInflux(cfg *config.Influx) *Reporter {
	client := influxdb2.NewClient(cfg.URL, cfg.TOKEN)
	write := client.WriteAPI(cfg.ORG, cfg.BUCKET)
	go func() {
		for err := range write.Errors() {
			log.Warnf("influx write failed: %v", err)
		}
	}()
	return &Reporter{write: write, close: client.Close}
}

func Point(kind, status string, latency time.Duration, ts time.Time) *influx_write.Point {
	return influxdb2.NewPoint(
		measurement,
		map[string]string{"kind": kind, "status": status},
		map[string]interface{}{"latency_ms": float64(latency) / float64(time.Millisecond)},
		ts,
	)
}

func (r *Reporter) Placement(kind, status string, latency time.Duration) {
	r.write.WritePoint(Point(kind, status, latency, time.Now()))
}

func (r *Reporter) Close() {
	r.write.Flush()
	if r.close != nil {
		r.close()
	}
}
