// internal/workers/intelligence/market-snapshot/handler.go
package marketsnapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/redis/go-redis/v9"

	"staffing-workers/internal/common/logger"
	"staffing-workers/internal/common/metrics"
	"staffing-workers/internal/workers/intelligence/market-snapshot/queries"
)

const (
	TaskType = "market-snapshot"

	cacheKeyPrefix = "market:snapshot:"
)

var (
	ErrElasticsearchConnectionFailed = errors.New("ELASTICSEARCH_CONNECTION_FAILED")
	ErrSearchQueryFailed             = errors.New("SEARCH_QUERY_FAILED")
	ErrSearchTimeout                 = errors.New("SEARCH_TIMEOUT")
	ErrIndexNotFound                 = errors.New("INDEX_NOT_FOUND")
)

type Handler struct {
	config *Config
	client *elasticsearch.Client
	redis  *redis.Client
	logger logger.Logger
}

func NewHandler(config *Config, client *elasticsearch.Client, redisClient *redis.Client, log logger.Logger) *Handler {
	return &Handler{
		config: config,
		client: client,
		redis:  redisClient,
		logger: log.WithFields(map[string]interface{}{"taskType": TaskType}),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.failJob(client, job, "PARSE_ERROR", fmt.Sprintf("parse input: %v", err), 0)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		errorCode := h.mapErrorToCode(err)
		retries := h.getRetryCount(err)
		h.failJob(client, job, errorCode, err.Error(), retries)
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	region := input.Region
	if region == "" {
		region = "global"
	}
	skillLimit := input.SkillLimit
	if skillLimit < 1 {
		skillLimit = h.config.SkillLimit
	}

	cacheKey := cacheKeyPrefix + region

	if !input.ForceRefresh {
		if cached, err := h.redis.Get(ctx, cacheKey).Result(); err == nil {
			var output Output
			if err := json.Unmarshal([]byte(cached), &output); err == nil {
				metrics.MarketSnapshotCache.WithLabelValues("hit").Inc()
				output.FromCache = true
				return &output, nil
			}
			h.logger.Warn("discarding unreadable cached snapshot", map[string]interface{}{
				"cacheKey": cacheKey,
			})
		}
	}
	metrics.MarketSnapshotCache.WithLabelValues("miss").Inc()

	demandReq, err := queries.BuildDemandQuery(h.config.TicketIndex, region, skillLimit)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSearchQueryFailed, err)
	}
	demand, err := queries.Run(ctx, h.client, demandReq)
	if err != nil {
		return nil, h.mapQueryError(ctx, err)
	}

	supplyReq, err := queries.BuildSupplyQuery(h.config.ProfilerIndex, region, skillLimit)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSearchQueryFailed, err)
	}
	supply, err := queries.Run(ctx, h.client, supplyReq)
	if err != nil {
		return nil, h.mapQueryError(ctx, err)
	}

	output := &Output{
		Region:      region,
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		Skills:      composeStats(demand, supply),
	}

	if data, err := json.Marshal(output); err == nil {
		if err := h.redis.Set(ctx, cacheKey, data, h.config.SnapshotTTL).Err(); err != nil {
			h.logger.Warn("failed to cache snapshot", map[string]interface{}{
				"cacheKey": cacheKey,
				"error":    err,
			})
		}
	}

	h.logger.Info("market snapshot generated", map[string]interface{}{
		"region":     region,
		"skillCount": len(output.Skills),
	})

	return output, nil
}

func (h *Handler) mapQueryError(ctx context.Context, err error) error {
	if ctx.Err() == context.DeadlineExceeded {
		return ErrSearchTimeout
	}
	if errors.Is(err, queries.ErrIndexMissing) {
		return ErrIndexNotFound
	}
	return fmt.Errorf("%w: %v", ErrSearchQueryFailed, err)
}

// composeStats joins demand and supply buckets on skill name. Skills are
// ordered by demand, then name, so snapshots stay stable across runs.
func composeStats(demand, supply []queries.SkillBucket) []SkillStat {
	supplyBySkill := make(map[string]queries.SkillBucket, len(supply))
	for _, s := range supply {
		supplyBySkill[s.Skill] = s
	}

	seen := make(map[string]bool, len(demand))
	stats := make([]SkillStat, 0, len(demand)+len(supply))

	for _, d := range demand {
		s := supplyBySkill[d.Skill]
		stats = append(stats, newSkillStat(d.Skill, d.Count, s.Count, s.AvgHourlyRate))
		seen[d.Skill] = true
	}
	for _, s := range supply {
		if seen[s.Skill] {
			continue
		}
		stats = append(stats, newSkillStat(s.Skill, 0, s.Count, s.AvgHourlyRate))
	}

	sort.SliceStable(stats, func(i, j int) bool {
		if stats[i].DemandCount != stats[j].DemandCount {
			return stats[i].DemandCount > stats[j].DemandCount
		}
		return stats[i].Skill < stats[j].Skill
	})

	return stats
}

func newSkillStat(skill string, demandCount, supplyCount int64, avgRate float64) SkillStat {
	divisor := supplyCount
	if divisor < 1 {
		divisor = 1
	}
	return SkillStat{
		Skill:         skill,
		DemandCount:   demandCount,
		SupplyCount:   supplyCount,
		AvgHourlyRate: avgRate,
		ScarcityRatio: float64(demandCount) / float64(divisor),
	}
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err,
		})
		return
	}
	_, err = cmd.Send(context.Background())
	if err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err,
		})
	}
}

func (h *Handler) failJob(client worker.JobClient, job entities.Job, errorCode, errorMessage string, retries int32) {
	h.logger.Error("job failed", map[string]interface{}{
		"jobKey":       job.Key,
		"errorCode":    errorCode,
		"errorMessage": errorMessage,
		"retries":      retries,
	})

	_, err := client.NewThrowErrorCommand().
		JobKey(job.Key).
		ErrorCode(errorCode).
		ErrorMessage(errorMessage).
		Send(context.Background())
	if err != nil {
		h.logger.Error("failed to throw error", map[string]interface{}{
			"error": err,
		})
	}
}

func (h *Handler) mapErrorToCode(err error) string {
	if errors.Is(err, ErrIndexNotFound) {
		return "INDEX_NOT_FOUND"
	} else if errors.Is(err, ErrSearchTimeout) {
		return "SEARCH_TIMEOUT"
	} else if errors.Is(err, ErrSearchQueryFailed) {
		return "SEARCH_QUERY_FAILED"
	} else if errors.Is(err, ErrElasticsearchConnectionFailed) {
		return "ELASTICSEARCH_CONNECTION_FAILED"
	}
	return "UNKNOWN_ERROR"
}

func (h *Handler) getRetryCount(err error) int32 {
	if errors.Is(err, ErrElasticsearchConnectionFailed) || errors.Is(err, ErrSearchQueryFailed) {
		return 3
	} else if errors.Is(err, ErrSearchTimeout) {
		return 2
	}
	return 0
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
