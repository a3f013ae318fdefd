// internal/workers/intelligence/market-snapshot/queries/builders.go
package queries

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/elastic/go-elasticsearch/v8/esapi"
)

var (
	ErrMissingIndex = errors.New("index name is required")
	ErrIndexMissing = errors.New("index not found")
)

// AggregationQuery defines one skill aggregation over an index.
type AggregationQuery struct {
	Index      string
	Region     string
	SkillField string
	RateField  string
	SkillLimit int
	Filters    []map[string]interface{}
}

// BuildDemandQuery aggregates required skills over open tickets.
func BuildDemandQuery(index, region string, skillLimit int) (*esapi.SearchRequest, error) {
	return buildSkillAggregation(AggregationQuery{
		Index:      index,
		Region:     region,
		SkillField: "required_skills",
		SkillLimit: skillLimit,
		Filters: []map[string]interface{}{
			{"term": map[string]interface{}{"status": "open"}},
		},
	})
}

// BuildSupplyQuery aggregates skills over available profilers, with an
// average hourly rate per skill bucket.
func BuildSupplyQuery(index, region string, skillLimit int) (*esapi.SearchRequest, error) {
	return buildSkillAggregation(AggregationQuery{
		Index:      index,
		Region:     region,
		SkillField: "skills",
		RateField:  "hourly_rate",
		SkillLimit: skillLimit,
		Filters: []map[string]interface{}{
			{"term": map[string]interface{}{"availability_status": "available"}},
		},
	})
}

func buildSkillAggregation(aq AggregationQuery) (*esapi.SearchRequest, error) {
	if aq.Index == "" {
		return nil, ErrMissingIndex
	}
	if aq.SkillLimit < 1 {
		aq.SkillLimit = 20
	}

	filterClauses := append([]map[string]interface{}{}, aq.Filters...)
	if aq.Region != "" && aq.Region != "global" {
		filterClauses = append(filterClauses, map[string]interface{}{
			"term": map[string]interface{}{"region": aq.Region},
		})
	}

	skillsAgg := map[string]interface{}{
		"terms": map[string]interface{}{
			"field": aq.SkillField,
			"size":  aq.SkillLimit,
		},
	}
	if aq.RateField != "" {
		skillsAgg["aggs"] = map[string]interface{}{
			"avg_rate": map[string]interface{}{
				"avg": map[string]interface{}{"field": aq.RateField},
			},
		}
	}

	queryBody := map[string]interface{}{
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"filter": filterClauses,
			},
		},
		"aggs": map[string]interface{}{
			"skills": skillsAgg,
		},
	}

	body, _ := json.Marshal(queryBody)
	size := 0

	req := esapi.SearchRequest{
		Index: []string{aq.Index},
		Body:  strings.NewReader(string(body)),
		Size:  &size,
	}

	return &req, nil
}
