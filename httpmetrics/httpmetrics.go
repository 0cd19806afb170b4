// Package httpmetrics wraps an http.Handler with OpenCensus request
// accounting.
package httpmetrics

import (
	"net/http"
	"time"

	"github.com/golang/glog"
	"go.opencensus.io/stats"
	"go.opencensus.io/stats/view"
	"go.opencensus.io/tag"
)

var pathKey = tag.MustNewKey("path")

type Wrapper struct {
	requestCount     *stats.Int64Measure
	requestCountView *view.View

	requestLatency     *stats.Float64Measure
	requestLatencyView *view.View

	inner http.Handler
}

func New(inner http.Handler) *Wrapper {
	w := &Wrapper{}

	w.requestCount = stats.Int64("requests", "", stats.UnitDimensionless)
	w.requestCountView = &view.View{
		Name:        "requests",
		Description: "Counter of requests that have been handled",

		TagKeys: []tag.Key{pathKey},

		Measure:     w.requestCount,
		Aggregation: view.Count(),
	}

	w.requestLatency = stats.Float64("request_latency", "", stats.UnitMilliseconds)
	w.requestLatencyView = &view.View{
		Name:        "request_latency",
		Description: "Latency of handled requests",

		TagKeys: []tag.Key{pathKey},

		Measure:     w.requestLatency,
		Aggregation: view.Distribution(1, 5, 10, 50, 100, 500, 1000, 5000),
	}

	w.inner = inner

	return w
}

func (h *Wrapper) RegisterMetrics() {
	view.Register(h.requestCountView, h.requestLatencyView)
}

func (h *Wrapper) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	begin := time.Now()
	h.inner.ServeHTTP(w, r)
	elapsed := time.Since(begin)

	glog.Infof("Served path=%q remoteaddr=%q elapsed=%v", r.URL.Path, r.RemoteAddr, elapsed)

	stats.RecordWithOptions(
		r.Context(),
		stats.WithTags(
			tag.Insert(pathKey, r.URL.Path),
		),
		stats.WithMeasurements(
			h.requestCount.M(1),
			h.requestLatency.M(float64(elapsed)/float64(time.Millisecond)),
		))
}
