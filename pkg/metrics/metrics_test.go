package metrics

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/kass/go-rrt-planner/pkg/models"
	"github.com/kass/go-rrt-planner/pkg/rrt"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserve(t *testing.T) {
	c := New()

	c.Observe(rrt.Result{Status: rrt.Succeeded, Iterations: 12, TreeSize: 9, Elapsed: 3 * time.Millisecond,
		Waypoints: []models.Location{{Lat: 1, Lon: 1}}})
	c.Observe(rrt.Result{Status: rrt.Exhausted, Iterations: 500, TreeSize: 120})
	c.Observe(rrt.Result{Status: rrt.Exhausted, Iterations: 500, TreeSize: 98})

	assert.Equal(t, 1.0, testutil.ToFloat64(c.SearchesTotal.WithLabelValues("succeeded")))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.SearchesTotal.WithLabelValues("exhausted")))
	assert.Equal(t, 0.0, testutil.ToFloat64(c.SearchesTotal.WithLabelValues("blocked")))
}

func TestHandler(t *testing.T) {
	c := New()
	c.Observe(rrt.Result{Status: rrt.Blocked})

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `rrtplan_searches_total{status="blocked"} 1`)
	assert.Contains(t, string(body), "rrtplan_search_duration_ms")
}

func TestCollectorsAreIndependent(t *testing.T) {
	a, b := New(), New()
	a.Observe(rrt.Result{Status: rrt.Succeeded})
	assert.Equal(t, 0.0, testutil.ToFloat64(b.SearchesTotal.WithLabelValues("succeeded")))
}
