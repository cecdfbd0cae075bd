package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/google/uuid"

	"github.com/vitae-social/vitae-api/internal/domain"
)

var ErrViewStatsUnavailable = errors.New("post view stats unavailable")

type PostViewStatsConfig struct {
	LogIndex       string
	CacheTTL       time.Duration
	RequestTimeout time.Duration
}

// PostViewStatsService aggregates post page hits from the request-log index
// in Elasticsearch. Results are cached in memory per range so Explore
// ranking does not hammer the cluster.
type PostViewStatsService struct {
	es             *elasticsearch.Client
	logIndex       string
	cacheTTL       time.Duration
	requestTimeout time.Duration

	mu    sync.Mutex
	cache map[domain.PostViewRange]cachedRangeStats
}

type cachedRangeStats struct {
	values    map[uuid.UUID]domain.PostViewStatValue
	fetchedAt time.Time
}

func NewPostViewStatsService(es *elasticsearch.Client, cfg PostViewStatsConfig) *PostViewStatsService {
	cacheTTL := cfg.CacheTTL
	if cacheTTL <= 0 {
		cacheTTL = 15 * time.Minute
	}
	return &PostViewStatsService{
		es:             es,
		logIndex:       cfg.LogIndex,
		cacheTTL:       cacheTTL,
		requestTimeout: cfg.RequestTimeout,
		cache:          make(map[domain.PostViewRange]cachedRangeStats),
	}
}

// GetViewStats returns the per-range view aggregates for one post.
func (s *PostViewStatsService) GetViewStats(ctx context.Context, postID uuid.UUID) (domain.PostViewStats, error) {
	result := domain.PostViewStats{
		PostID: postID,
		Ranges: make(map[domain.PostViewRange]domain.PostViewStatValue, len(domain.PostViewRangesOrdered)),
	}
	for _, rangeKey := range domain.PostViewRangesOrdered {
		values, err := s.rangeStats(ctx, rangeKey, []uuid.UUID{postID})
		if err != nil {
			return domain.PostViewStats{}, err
		}
		result.Ranges[rangeKey] = values[postID]
	}
	return result, nil
}

// PopularityByPost scores posts by 7-day view totals for Explore ranking.
func (s *PostViewStatsService) PopularityByPost(ctx context.Context, postIDs []uuid.UUID) (map[uuid.UUID]int, error) {
	values, err := s.rangeStats(ctx, domain.PostViewRange7d, postIDs)
	if err != nil {
		return nil, err
	}
	scores := make(map[uuid.UUID]int, len(postIDs))
	for _, id := range postIDs {
		scores[id] = values[id].TotalViews
	}
	return scores, nil
}

func (s *PostViewStatsService) rangeStats(ctx context.Context, rangeKey domain.PostViewRange, postIDs []uuid.UUID) (map[uuid.UUID]domain.PostViewStatValue, error) {
	if len(postIDs) == 0 {
		return map[uuid.UUID]domain.PostViewStatValue{}, nil
	}

	if cached, ok := s.cachedRange(rangeKey, postIDs); ok {
		return cached, nil
	}

	fetched, err := s.fetchRangeStats(ctx, postIDs, rangeKey, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	s.storeRange(rangeKey, fetched)
	return fetched, nil
}

func (s *PostViewStatsService) cachedRange(rangeKey domain.PostViewRange, postIDs []uuid.UUID) (map[uuid.UUID]domain.PostViewStatValue, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.cache[rangeKey]
	if !ok || time.Since(entry.fetchedAt) > s.cacheTTL {
		return nil, false
	}
	out := make(map[uuid.UUID]domain.PostViewStatValue, len(postIDs))
	for _, id := range postIDs {
		value, ok := entry.values[id]
		if !ok {
			return nil, false
		}
		out[id] = value
	}
	return out, true
}

func (s *PostViewStatsService) storeRange(rangeKey domain.PostViewRange, values map[uuid.UUID]domain.PostViewStatValue) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.cache[rangeKey]
	if !ok || time.Since(entry.fetchedAt) > s.cacheTTL {
		entry = cachedRangeStats{
			values:    make(map[uuid.UUID]domain.PostViewStatValue, len(values)),
			fetchedAt: time.Now(),
		}
	}
	for id, value := range values {
		entry.values[id] = value
	}
	s.cache[rangeKey] = entry
}

func (s *PostViewStatsService) fetchRangeStats(ctx context.Context, postIDs []uuid.UUID, rangeKey domain.PostViewRange, now time.Time) (map[uuid.UUID]domain.PostViewStatValue, error) {
	result := make(map[uuid.UUID]domain.PostViewStatValue, len(postIDs))
	if s.es == nil {
		return nil, fmt.Errorf("%w: elasticsearch client not configured", ErrViewStatsUnavailable)
	}

	ids := make([]string, 0, len(postIDs))
	for _, id := range postIDs {
		ids = append(ids, id.String())
	}

	mustFilters := []map[string]any{
		{"term": map[string]any{"request.method.keyword": "GET"}},
		{"term": map[string]any{"response.status": 200}},
		{"prefix": map[string]any{"request.uri.keyword": "/api/v1/post/"}},
		{"terms": map[string]any{"response.body.post.id.keyword": ids}},
	}
	mustNotFilters := []map[string]any{
		{"prefix": map[string]any{"ip.keyword": "10."}},
	}

	if duration, ok := rangeKey.Duration(); ok && duration > 0 {
		gte := now.Add(-duration).UTC().Format(time.RFC3339)
		mustFilters = append(mustFilters, map[string]any{
			"range": map[string]any{
				"@timestamp": map[string]any{"gte": gte},
			},
		})
	}

	body := map[string]any{
		"size": 0,
		"query": map[string]any{
			"bool": map[string]any{
				"must":     mustFilters,
				"must_not": mustNotFilters,
			},
		},
		"aggs": map[string]any{
			"posts": map[string]any{
				"terms": map[string]any{
					"field": "response.body.post.id.keyword",
					"size":  len(postIDs),
				},
				"aggs": map[string]any{
					"unique_users": map[string]any{"cardinality": map[string]any{"field": "user_uuid.keyword"}},
					"unique_ips":   map[string]any{"cardinality": map[string]any{"field": "ip.keyword"}},
				},
			},
		},
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	reqCtx := ctx
	var cancel context.CancelFunc
	if s.requestTimeout > 0 {
		reqCtx, cancel = context.WithTimeout(ctx, s.requestTimeout)
		defer cancel()
	}

	resp, err := s.es.Search(
		s.es.Search.WithContext(reqCtx),
		s.es.Search.WithIndex(s.logIndex),
		s.es.Search.WithBody(bytes.NewReader(payload)),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrViewStatsUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.IsError() {
		return nil, fmt.Errorf("%w: elasticsearch search error: %s", ErrViewStatsUnavailable, resp.String())
	}

	var parsed esSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrViewStatsUnavailable, err)
	}

	for _, bucket := range parsed.Aggregations.Posts.Buckets {
		id, err := uuid.Parse(bucket.Key)
		if err != nil {
			continue
		}
		result[id] = domain.PostViewStatValue{
			TotalViews:  int(bucket.DocCount),
			UniqueUsers: int(bucket.UniqueUsers.Value),
			UniqueIPs:   int(bucket.UniqueIPs.Value),
			BucketEnd:   now,
		}
	}
	for _, id := range postIDs {
		if _, ok := result[id]; !ok {
			result[id] = domain.PostViewStatValue{BucketEnd: now}
		}
	}
	return result, nil
}

type esSearchResponse struct {
	Aggregations struct {
		Posts struct {
			Buckets []struct {
				Key         string `json:"key"`
				DocCount    int64  `json:"doc_count"`
				UniqueUsers struct {
					Value float64 `json:"value"`
				} `json:"unique_users"`
				UniqueIPs struct {
					Value float64 `json:"value"`
				} `json:"unique_ips"`
			} `json:"buckets"`
		} `json:"posts"`
	} `json:"aggregations"`
}
