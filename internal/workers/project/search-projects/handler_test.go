// internal/workers/project/search-projects/handler_test.go
package searchprojects

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"carbon-workers/internal/common/logger"
)

func createTestConfig() *Config {
	return &Config{
		Timeout: 30 * time.Second,
	}
}

func createTestLogger(t *testing.T) logger.Logger {
	return logger.NewZapAdapter(zaptest.NewLogger(t))
}

func createRealElasticsearchClient(t *testing.T) *elasticsearch.Client {
	cfg := elasticsearch.Config{
		Addresses: []string{"http://localhost:9200"},
	}

	esClient, err := elasticsearch.NewClient(cfg)
	if err != nil {
		t.Skipf("Skipping test: Failed to create Elasticsearch client: %v", err)
		return nil
	}

	res, err := esClient.Info()
	if err != nil {
		t.Skipf("Skipping test: Elasticsearch container not responding: %v", err)
		return nil
	}
	defer res.Body.Close()

	if res.IsError() {
		t.Skipf("Skipping test: Elasticsearch error: %s", res.String())
		return nil
	}

	return esClient
}

func setupRealTestData(t *testing.T, esClient *elasticsearch.Client) {
	esClient.Indices.Delete([]string{"projects"}, esClient.Indices.Delete.WithIgnoreUnavailable(true))

	time.Sleep(2 * time.Second)

	indexBody := `{
		"mappings": {
			"properties": {
				"name": {"type": "text"},
				"description": {"type": "text"},
				"technology": {"type": "keyword"},
				"country": {"type": "keyword"},
				"capacity_mw": {"type": "float"},
				"eligibility_score": {"type": "integer"}
			}
		}
	}`

	res, err := esClient.Indices.Create(
		"projects",
		esClient.Indices.Create.WithBody(strings.NewReader(indexBody)),
	)
	require.NoError(t, err, "Failed to create index")
	res.Body.Close()

	docs := []map[string]interface{}{
		{
			"name":              "Rajasthan Solar Park Phase II",
			"description":       "Utility scale solar with long term utility PPA",
			"technology":        "SOLAR",
			"country":           "IN",
			"capacity_mw":       120.5,
			"eligibility_score": 75,
		},
		{
			"name":              "Mekong Delta Wind",
			"description":       "Coastal wind cluster",
			"technology":        "WIND",
			"country":           "VN",
			"capacity_mw":       80.0,
			"eligibility_score": 50,
		},
		{
			"name":              "Minas Gerais Hydro",
			"description":       "Run of river hydro",
			"technology":        "HYDRO",
			"country":           "BR",
			"capacity_mw":       200.0,
			"eligibility_score": 30,
		},
	}

	for i, doc := range docs {
		body, _ := json.Marshal(doc)
		res, err := esClient.Index("projects", strings.NewReader(string(body)),
			esClient.Index.WithDocumentID(string(rune('a'+i))),
			esClient.Index.WithRefresh("true"),
		)
		require.NoError(t, err)
		res.Body.Close()
	}

	time.Sleep(1 * time.Second)
}

func TestHandler_Execute_RealElasticsearch(t *testing.T) {
	esClient := createRealElasticsearchClient(t)
	setupRealTestData(t, esClient)

	handler := NewHandler(createTestConfig(), esClient, createTestLogger(t))

	t.Run("match all returns every project", func(t *testing.T) {
		output, err := handler.Execute(context.Background(), &Input{
			IndexName: "projects",
			QueryType: "project_index",
			Filters:   map[string]interface{}{},
		})
		require.NoError(t, err)
		assert.Equal(t, int64(3), output.TotalHits)
	})

	t.Run("technology filter narrows results", func(t *testing.T) {
		output, err := handler.Execute(context.Background(), &Input{
			IndexName: "projects",
			QueryType: "project_index",
			Filters: map[string]interface{}{
				"technologies": []interface{}{"SOLAR"},
			},
		})
		require.NoError(t, err)
		assert.Equal(t, int64(1), output.TotalHits)
		assert.Equal(t, "SOLAR", output.Data[0]["technology"])
	})

	t.Run("min score filter", func(t *testing.T) {
		output, err := handler.Execute(context.Background(), &Input{
			IndexName: "projects",
			QueryType: "project_index",
			Filters: map[string]interface{}{
				"minScore": 40.0,
			},
		})
		require.NoError(t, err)
		assert.Equal(t, int64(2), output.TotalHits)
	})

	t.Run("keyword search ranks matches", func(t *testing.T) {
		output, err := handler.Execute(context.Background(), &Input{
			IndexName: "projects",
			QueryType: "project_index",
			Filters: map[string]interface{}{
				"keywords": "solar",
			},
		})
		require.NoError(t, err)
		require.GreaterOrEqual(t, output.TotalHits, int64(1))
		assert.Greater(t, output.MaxScore, 0.0)
	})
}

func TestHandler_Execute_MissingIndex(t *testing.T) {
	handler := NewHandler(createTestConfig(), nil, logger.NewTestLogger(t))
	output, err := handler.Execute(context.Background(), &Input{
		QueryType: "project_index",
		Filters:   map[string]interface{}{},
	})

	assert.Nil(t, output)
	assert.True(t, errors.Is(err, ErrIndexNotFound))
}

func TestHandler_ErrorMapping(t *testing.T) {
	handler := &Handler{}

	tests := []struct {
		err     error
		code    string
		retries int32
	}{
		{ErrIndexNotFound, "INDEX_NOT_FOUND", 0},
		{ErrSearchTimeout, "SEARCH_TIMEOUT", 2},
		{ErrSearchQueryFailed, "SEARCH_QUERY_FAILED", 3},
		{ErrElasticsearchConnectionFailed, "ELASTICSEARCH_CONNECTION_FAILED", 3},
		{errors.New("mystery"), "UNKNOWN_ERROR", 0},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.code, handler.mapErrorToCode(tt.err))
			assert.Equal(t, tt.retries, handler.getRetryCount(tt.err))
		})
	}
}

func TestHandler_Execute_NilInput(t *testing.T) {
	handler := NewHandler(createTestConfig(), nil, logger.NewTestLogger(t))
	output, err := handler.Execute(context.Background(), nil)
	assert.Nil(t, output)
	assert.Error(t, err)
}
