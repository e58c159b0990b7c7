package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"slotbook/internal/config"
	"slotbook/internal/logger"
	"slotbook/internal/models"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

// ElasticsearchClient - полнотекстовый индекс расписания
type ElasticsearchClient struct {
	client *elasticsearch.Client
	config config.ElasticsearchConfig
}

// NewElasticsearchClient создает клиент и индекс рейсов
func NewElasticsearchClient(cfg config.ElasticsearchConfig) (*ElasticsearchClient, error) {
	es, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses:     []string{cfg.URL},
		Username:      cfg.Username,
		Password:      cfg.Password,
		RetryOnStatus: []int{502, 503, 504, 429},
		MaxRetries:    cfg.MaxRetries,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Elasticsearch client: %w", err)
	}

	client := &ElasticsearchClient{client: es, config: cfg}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := client.ensureIndex(ctx); err != nil {
		return nil, fmt.Errorf("failed to ensure index exists: %w", err)
	}

	return client, nil
}

func keyword() map[string]any { return map[string]any{"type": "keyword"} }

// flightMapping: codes are keywords, names and route are analyzed text
func flightMapping() map[string]any {
	text := map[string]any{
		"type":     "text",
		"analyzer": "code_analyzer",
		"fields":   map[string]any{"keyword": map[string]any{"type": "keyword", "ignore_above": 256}},
	}

	return map[string]any{
		"settings": map[string]any{
			"number_of_shards":   1,
			"number_of_replicas": 0,
			"analysis": map[string]any{
				"analyzer": map[string]any{
					"code_analyzer": map[string]any{
						"type":      "custom",
						"tokenizer": "standard",
						"filter":    []string{"lowercase", "asciifolding"},
					},
				},
			},
		},
		"mappings": map[string]any{
			"properties": map[string]any{
				"id":                  map[string]any{"type": "long"},
				"flight_number":       text,
				"airline_name":        text,
				"airline_iata":        keyword(),
				"airline_icao":        keyword(),
				"aircraft":            keyword(),
				"origin_icao":         keyword(),
				"origin_name":         text,
				"destination_icao":    keyword(),
				"destination_name":    text,
				"departure_time_zulu": keyword(),
				"route":               map[string]any{"type": "text"},
				"gate":                keyword(),
				"category":            keyword(),
				"source":              keyword(),
				"created_at":          map[string]any{"type": "date"},
			},
		},
	}
}

func (c *ElasticsearchClient) ensureIndex(ctx context.Context) error {
	req := esapi.IndicesExistsRequest{Index: []string{c.config.Index}}

	res, err := req.Do(ctx, c.client)
	if err != nil {
		return fmt.Errorf("failed to check index existence: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusOK {
		logger.Get().Info("Elasticsearch index already exists", "index", c.config.Index)
		return nil
	}

	body, err := json.Marshal(flightMapping())
	if err != nil {
		return fmt.Errorf("failed to marshal mapping: %w", err)
	}

	createRes, err := esapi.IndicesCreateRequest{
		Index: c.config.Index,
		Body:  bytes.NewReader(body),
	}.Do(ctx, c.client)
	if err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}
	defer createRes.Body.Close()

	if createRes.IsError() {
		return fmt.Errorf("failed to create index: %s", createRes.String())
	}

	logger.Get().Info("Created Elasticsearch index", "index", c.config.Index)
	return nil
}

// buildSearchQuery: текстовый поиск по коду рейса, авиакомпании и аэропортам
func buildSearchQuery(query, category string, limit int) map[string]any {
	must := []map[string]any{}
	if query != "" {
		must = append(must, map[string]any{
			"multi_match": map[string]any{
				"query": query,
				"fields": []string{
					"flight_number^3", "airline_name^2",
					"origin_icao^2", "destination_icao^2",
					"origin_name", "destination_name",
					"airline_iata", "airline_icao", "aircraft",
				},
				"lenient":   true,
				"fuzziness": "AUTO",
			},
		})
	}

	boolQuery := map[string]any{}
	if len(must) == 0 {
		boolQuery["must"] = []map[string]any{{"match_all": map[string]any{}}}
	} else {
		boolQuery["must"] = must
	}
	if category != "" {
		boolQuery["filter"] = []map[string]any{{"term": map[string]any{"category": category}}}
	}

	if limit <= 0 {
		limit = 50
	}

	return map[string]any{
		"query": map[string]any{"bool": boolQuery},
		"sort": []map[string]any{
			{"_score": map[string]any{"order": "desc"}},
			{"departure_time_zulu": map[string]any{"order": "asc"}},
		},
		"size": limit,
	}
}

func (c *ElasticsearchClient) SearchFlights(ctx context.Context, query, category string, limit int) ([]models.Flight, error) {
	body, err := json.Marshal(buildSearchQuery(query, category, limit))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal search query: %w", err)
	}

	res, err := esapi.SearchRequest{
		Index: []string{c.config.Index},
		Body:  bytes.NewReader(body),
	}.Do(ctx, c.client)
	if err != nil {
		return nil, fmt.Errorf("failed to execute search: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("search error: %s", res.String())
	}

	var response struct {
		Hits struct {
			Hits []struct {
				Source models.Flight `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}

	flights := make([]models.Flight, len(response.Hits.Hits))
	for i, hit := range response.Hits.Hits {
		flights[i] = hit.Source
	}
	return flights, nil
}

func (c *ElasticsearchClient) IndexFlight(ctx context.Context, f *models.Flight) error {
	body, err := json.Marshal(f)
	if err != nil {
		return fmt.Errorf("failed to marshal flight: %w", err)
	}

	res, err := esapi.IndexRequest{
		Index:      c.config.Index,
		DocumentID: strconv.FormatInt(f.ID, 10),
		Body:       bytes.NewReader(body),
	}.Do(ctx, c.client)
	if err != nil {
		return fmt.Errorf("failed to index flight: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("indexing error: %s", res.String())
	}
	return nil
}

// DeleteFlight ignores flights that were never indexed
func (c *ElasticsearchClient) DeleteFlight(ctx context.Context, id int64) error {
	res, err := esapi.DeleteRequest{
		Index:      c.config.Index,
		DocumentID: strconv.FormatInt(id, 10),
	}.Do(ctx, c.client)
	if err != nil {
		return fmt.Errorf("failed to delete flight: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() && res.StatusCode != http.StatusNotFound {
		return fmt.Errorf("delete error: %s", res.String())
	}
	return nil
}

func (c *ElasticsearchClient) DeleteAll(ctx context.Context) error {
	refresh := true
	res, err := esapi.DeleteByQueryRequest{
		Index:     []string{c.config.Index},
		Body:      bytes.NewReader([]byte(`{"query":{"match_all":{}}}`)),
		Conflicts: "proceed",
		Refresh:   &refresh,
	}.Do(ctx, c.client)
	if err != nil {
		return fmt.Errorf("failed to clear index: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("clear error: %s", res.String())
	}
	return nil
}

// HealthCheck проверяет состояние Elasticsearch
func (c *ElasticsearchClient) HealthCheck(ctx context.Context) error {
	res, err := esapi.ClusterHealthRequest{
		WaitForStatus: "yellow",
		Timeout:       10 * time.Second,
	}.Do(ctx, c.client)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("health check error: %s", res.String())
	}
	return nil
}
