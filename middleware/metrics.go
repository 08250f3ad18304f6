package middleware

import (
	"log"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
	"github.com/gorilla/mux"
)

// RouteStats is the latency summary of one route, in milliseconds.
type RouteStats struct {
	Route string  `json:"route"`
	Count int64   `json:"count"`
	Mean  float64 `json:"mean_ms"`
	P50   float64 `json:"p50_ms"`
	P95   float64 `json:"p95_ms"`
	P99   float64 `json:"p99_ms"`
	Max   float64 `json:"max_ms"`
}

// Metrics records per-route request latency in HDR histograms.
type Metrics struct {
	mu     sync.Mutex
	routes map[string]*hdrhistogram.Histogram
}

// NewMetrics creates an empty Metrics
func NewMetrics() *Metrics {
	return &Metrics{routes: make(map[string]*hdrhistogram.Histogram)}
}

// Record adds one observation for route.
func (m *Metrics) Record(route string, d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	h, ok := m.routes[route]
	if !ok {
		// 1µs to 60s, 3 significant figures
		h = hdrhistogram.New(1, int64(time.Minute/time.Microsecond), 3)
		m.routes[route] = h
	}
	v := d.Microseconds()
	if limit := h.HighestTrackableValue(); v > limit {
		// Slower requests count at the ceiling rather than going missing.
		v = limit
	}
	if err := h.RecordValue(v); err != nil {
		log.Printf("metrics: record %s: %v", route, err)
	}
}

// Middleware times each request under its mux path template.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)

		route := r.URL.Path
		if cur := mux.CurrentRoute(r); cur != nil {
			if tpl, err := cur.GetPathTemplate(); err == nil {
				route = tpl
			}
		}
		m.Record(r.Method+" "+route, time.Since(start))
	})
}

// Snapshot returns the stats of every route sorted by name.
func (m *Metrics) Snapshot() []RouteStats {
	m.mu.Lock()
	defer m.mu.Unlock()
	ms := func(us int64) float64 { return float64(us) / 1000 }
	out := make([]RouteStats, 0, len(m.routes))
	for route, h := range m.routes {
		out = append(out, RouteStats{
			Route: route,
			Count: h.TotalCount(),
			Mean:  h.Mean() / 1000,
			P50:   ms(h.ValueAtQuantile(50)),
			P95:   ms(h.ValueAtQuantile(95)),
			P99:   ms(h.ValueAtQuantile(99)),
			Max:   ms(h.Max()),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Route < out[j].Route })
	return out
}
