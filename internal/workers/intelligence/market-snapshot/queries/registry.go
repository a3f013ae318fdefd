// internal/workers/intelligence/market-snapshot/queries/registry.go
package queries

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

// SkillBucket is one skill aggregation bucket.
type SkillBucket struct {
	Skill         string
	Count         int64
	AvgHourlyRate float64
}

// Run executes an aggregation request and flattens the skill buckets.
func Run(ctx context.Context, esClient *elasticsearch.Client, req *esapi.SearchRequest) ([]SkillBucket, error) {
	res, err := req.Do(ctx, esClient)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		return nil, ErrIndexMissing
	}
	if res.IsError() {
		return nil, fmt.Errorf("aggregation query failed: %s", res.String())
	}

	var r map[string]interface{}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return nil, err
	}

	aggs, ok := r["aggregations"].(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("response has no aggregations")
	}
	skills, ok := aggs["skills"].(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("response has no skills aggregation")
	}
	rawBuckets, ok := skills["buckets"].([]interface{})
	if !ok {
		return nil, fmt.Errorf("skills aggregation has no buckets")
	}

	buckets := make([]SkillBucket, 0, len(rawBuckets))
	for _, raw := range rawBuckets {
		bucket, ok := raw.(map[string]interface{})
		if !ok {
			continue
		}
		sb := SkillBucket{}
		if key, ok := bucket["key"].(string); ok {
			sb.Skill = key
		}
		if count, ok := bucket["doc_count"].(float64); ok {
			sb.Count = int64(count)
		}
		if avg, ok := bucket["avg_rate"].(map[string]interface{}); ok {
			if value, ok := avg["value"].(float64); ok {
				sb.AvgHourlyRate = value
			}
		}
		buckets = append(buckets, sb)
	}

	return buckets, nil
}
