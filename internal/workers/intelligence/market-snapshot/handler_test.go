// internal/workers/intelligence/market-snapshot/handler_test.go
package marketsnapshot

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"staffing-workers/internal/common/logger"
	"staffing-workers/internal/common/metrics"
	"staffing-workers/internal/workers/intelligence/market-snapshot/queries"

	"github.com/alicebob/miniredis/v2"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestConfig() *Config {
	return &Config{
		Timeout:       30 * time.Second,
		TicketIndex:   "tickets",
		ProfilerIndex: "profilers",
		SnapshotTTL:   15 * time.Minute,
		SkillLimit:    20,
	}
}

type testLogger struct {
	t *testing.T
}

func (tl *testLogger) Debug(msg string, fields map[string]interface{}) {
	tl.t.Logf("DEBUG: %s %v", msg, fields)
}

func (tl *testLogger) Info(msg string, fields map[string]interface{}) {
	tl.t.Logf("INFO: %s %v", msg, fields)
}

func (tl *testLogger) Warn(msg string, fields map[string]interface{}) {
	tl.t.Logf("WARN: %s %v", msg, fields)
}

func (tl *testLogger) Error(msg string, fields map[string]interface{}) {
	tl.t.Logf("ERROR: %s %v", msg, fields)
}

func (tl *testLogger) WithFields(fields map[string]interface{}) logger.Logger {
	return tl
}

func (tl *testLogger) WithError(err error) logger.Logger {
	return tl.WithFields(map[string]interface{}{"error": err})
}

func (tl *testLogger) With(fields map[string]interface{}) logger.Logger {
	return tl
}

func newTestLogger(t *testing.T) logger.Logger {
	return &testLogger{t: t}
}

func setupMiniRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	srv, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(srv.Close)

	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { client.Close() })

	return srv, client
}

// newESClient points a real client at an httptest server. The v8 client
// checks the product header on every response.
func newESClient(t *testing.T, handlerFunc http.HandlerFunc) *elasticsearch.Client {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		handlerFunc(w, r)
	}))
	t.Cleanup(server.Close)

	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{server.URL},
	})
	require.NoError(t, err)
	return client
}

func aggregationBody(buckets []map[string]interface{}) string {
	body := map[string]interface{}{
		"aggregations": map[string]interface{}{
			"skills": map[string]interface{}{
				"buckets": buckets,
			},
		},
	}
	data, _ := json.Marshal(body)
	return string(data)
}

func demandBuckets() []map[string]interface{} {
	return []map[string]interface{}{
		{"key": "Go", "doc_count": 12},
		{"key": "PostgreSQL", "doc_count": 8},
		{"key": "Terraform", "doc_count": 5},
	}
}

func supplyBuckets() []map[string]interface{} {
	return []map[string]interface{}{
		{"key": "Go", "doc_count": 4, "avg_rate": map[string]interface{}{"value": 95.0}},
		{"key": "PostgreSQL", "doc_count": 10, "avg_rate": map[string]interface{}{"value": 80.0}},
		{"key": "Java", "doc_count": 15, "avg_rate": map[string]interface{}{"value": 70.0}},
	}
}

func TestHandler_Execute_GeneratesSnapshot(t *testing.T) {
	esClient := newESClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/tickets/_search":
			w.Write([]byte(aggregationBody(demandBuckets())))
		case "/profilers/_search":
			w.Write([]byte(aggregationBody(supplyBuckets())))
		default:
			t.Errorf("unexpected request path: %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	})
	srv, redisClient := setupMiniRedis(t)

	handler := NewHandler(createTestConfig(), esClient, redisClient, newTestLogger(t))

	output, err := handler.Execute(context.Background(), &Input{Region: "emea"})

	require.NoError(t, err)
	require.NotNil(t, output)
	assert.Equal(t, "emea", output.Region)
	assert.False(t, output.FromCache)
	require.Len(t, output.Skills, 4)

	// Sorted by demand desc, supply-only skills last.
	assert.Equal(t, "Go", output.Skills[0].Skill)
	assert.Equal(t, int64(12), output.Skills[0].DemandCount)
	assert.Equal(t, int64(4), output.Skills[0].SupplyCount)
	assert.Equal(t, 95.0, output.Skills[0].AvgHourlyRate)
	assert.Equal(t, 3.0, output.Skills[0].ScarcityRatio)

	assert.Equal(t, "PostgreSQL", output.Skills[1].Skill)
	assert.Equal(t, 0.8, output.Skills[1].ScarcityRatio)

	assert.Equal(t, "Terraform", output.Skills[2].Skill)
	assert.Equal(t, int64(0), output.Skills[2].SupplyCount)
	assert.Equal(t, 5.0, output.Skills[2].ScarcityRatio)

	assert.Equal(t, "Java", output.Skills[3].Skill)
	assert.Equal(t, int64(0), output.Skills[3].DemandCount)
	assert.Equal(t, 0.0, output.Skills[3].ScarcityRatio)

	assert.True(t, srv.Exists("market:snapshot:emea"))
}

func TestHandler_Execute_CacheHit(t *testing.T) {
	esClient := newESClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("Elasticsearch should not be queried on cache hit: %s", r.URL.Path)
	})
	srv, redisClient := setupMiniRedis(t)

	cached := &Output{
		Region:      "emea",
		GeneratedAt: "2026-08-30T10:00:00Z",
		Skills:      []SkillStat{{Skill: "Go", DemandCount: 12, SupplyCount: 4, ScarcityRatio: 3.0}},
	}
	data, err := json.Marshal(cached)
	require.NoError(t, err)
	require.NoError(t, srv.Set("market:snapshot:emea", string(data)))

	handler := NewHandler(createTestConfig(), esClient, redisClient, newTestLogger(t))

	hitsBefore := testutil.ToFloat64(metrics.MarketSnapshotCache.WithLabelValues("hit"))

	output, err := handler.Execute(context.Background(), &Input{Region: "emea"})

	require.NoError(t, err)
	assert.True(t, output.FromCache)
	assert.Equal(t, hitsBefore+1, testutil.ToFloat64(metrics.MarketSnapshotCache.WithLabelValues("hit")))
	assert.Equal(t, "2026-08-30T10:00:00Z", output.GeneratedAt)
	require.Len(t, output.Skills, 1)
	assert.Equal(t, "Go", output.Skills[0].Skill)
}

func TestHandler_Execute_ForceRefreshBypassesCache(t *testing.T) {
	esQueried := false
	esClient := newESClient(t, func(w http.ResponseWriter, _ *http.Request) {
		esQueried = true
		w.Write([]byte(aggregationBody(demandBuckets())))
	})
	srv, redisClient := setupMiniRedis(t)
	require.NoError(t, srv.Set("market:snapshot:global", `{"region":"global","skills":[]}`))

	handler := NewHandler(createTestConfig(), esClient, redisClient, newTestLogger(t))

	output, err := handler.Execute(context.Background(), &Input{ForceRefresh: true})

	require.NoError(t, err)
	assert.True(t, esQueried)
	assert.False(t, output.FromCache)
	assert.Equal(t, "global", output.Region)
}

func TestHandler_Execute_IndexNotFound(t *testing.T) {
	esClient := newESClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	_, redisClient := setupMiniRedis(t)

	handler := NewHandler(createTestConfig(), esClient, redisClient, newTestLogger(t))

	output, err := handler.Execute(context.Background(), &Input{Region: "emea"})

	require.Error(t, err)
	assert.Nil(t, output)
	assert.ErrorIs(t, err, ErrIndexNotFound)
	assert.Equal(t, "INDEX_NOT_FOUND", handler.mapErrorToCode(err))
	assert.Equal(t, int32(0), handler.getRetryCount(err))
}

func TestHandler_Execute_QueryFailure(t *testing.T) {
	esClient := newESClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":"shard failure"}`))
	})
	_, redisClient := setupMiniRedis(t)

	handler := NewHandler(createTestConfig(), esClient, redisClient, newTestLogger(t))

	output, err := handler.Execute(context.Background(), &Input{Region: "emea"})

	require.Error(t, err)
	assert.Nil(t, output)
	assert.ErrorIs(t, err, ErrSearchQueryFailed)
	assert.Equal(t, int32(3), handler.getRetryCount(err))
}

func TestComposeStats_SupplyOnlySkillsLast(t *testing.T) {
	demand := []queries.SkillBucket{
		{Skill: "Go", Count: 10},
		{Skill: "Rust", Count: 10},
	}
	supply := []queries.SkillBucket{
		{Skill: "Java", Count: 5, AvgHourlyRate: 70},
	}

	stats := composeStats(demand, supply)

	require.Len(t, stats, 3)
	// Equal demand, alphabetical tiebreak.
	assert.Equal(t, "Go", stats[0].Skill)
	assert.Equal(t, "Rust", stats[1].Skill)
	assert.Equal(t, "Java", stats[2].Skill)
	// No supply means the ratio divides by one.
	assert.Equal(t, 10.0, stats[0].ScarcityRatio)
}

func TestBuildDemandQuery_RequiresIndex(t *testing.T) {
	_, err := queries.BuildDemandQuery("", "emea", 20)
	assert.ErrorIs(t, err, queries.ErrMissingIndex)
}
