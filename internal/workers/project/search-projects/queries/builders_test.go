package queries

import (
	"encoding/json"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeBody(t *testing.T, body io.Reader) map[string]interface{} {
	t.Helper()
	var decoded map[string]interface{}
	require.NoError(t, json.NewDecoder(body).Decode(&decoded))
	return decoded
}

func TestBuildQuery_MissingIndex(t *testing.T) {
	_, err := BuildQuery(nil, ProjectQuery{QueryType: "project_index"})
	assert.True(t, errors.Is(err, ErrMissingIndex))
}

func TestBuildQuery_UnknownQueryType(t *testing.T) {
	_, err := BuildQuery(nil, ProjectQuery{Index: "projects", QueryType: "franchise_index"})
	assert.True(t, errors.Is(err, ErrUnknownQueryType))
}

func TestBuildQuery_ProjectIndex(t *testing.T) {
	t.Run("no filters falls back to match_all", func(t *testing.T) {
		req, err := BuildQuery(nil, ProjectQuery{
			Index:     "projects",
			QueryType: "project_index",
			Filters:   map[string]interface{}{},
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"projects"}, req.Index)

		body := decodeBody(t, req.Body)
		boolQuery := body["query"].(map[string]interface{})["bool"].(map[string]interface{})
		must := boolQuery["must"].([]interface{})
		require.Len(t, must, 1)
		assert.Contains(t, must[0].(map[string]interface{}), "match_all")
		assert.NotContains(t, boolQuery, "filter")
	})

	t.Run("keywords become a multi_match clause", func(t *testing.T) {
		req, err := BuildQuery(nil, ProjectQuery{
			Index:     "projects",
			QueryType: "project_index",
			Filters: map[string]interface{}{
				"keywords": "rooftop solar",
			},
		})
		require.NoError(t, err)

		body := decodeBody(t, req.Body)
		boolQuery := body["query"].(map[string]interface{})["bool"].(map[string]interface{})
		must := boolQuery["must"].([]interface{})
		require.Len(t, must, 1)
		mm := must[0].(map[string]interface{})["multi_match"].(map[string]interface{})
		assert.Equal(t, "rooftop solar", mm["query"])
	})

	t.Run("all filters produce filter clauses", func(t *testing.T) {
		req, err := BuildQuery(nil, ProjectQuery{
			Index:     "projects",
			QueryType: "project_index",
			Filters: map[string]interface{}{
				"technologies": []interface{}{"SOLAR", "WIND"},
				"countries":    []interface{}{"IN"},
				"capacityRange": map[string]interface{}{
					"minMw": 10.0,
					"maxMw": 500.0,
				},
				"minScore": 40.0,
			},
		})
		require.NoError(t, err)

		body := decodeBody(t, req.Body)
		boolQuery := body["query"].(map[string]interface{})["bool"].(map[string]interface{})
		filters := boolQuery["filter"].([]interface{})
		assert.Len(t, filters, 4)
	})

	t.Run("sort options map to ES sort clauses", func(t *testing.T) {
		for sortBy, field := range map[string]string{
			"capacity_mw":       "capacity_mw",
			"eligibility_score": "eligibility_score",
			"name":              "name",
		} {
			req, err := BuildQuery(nil, ProjectQuery{
				Index:     "projects",
				QueryType: "project_index",
				Filters:   map[string]interface{}{"sortBy": sortBy},
			})
			require.NoError(t, err)

			body := decodeBody(t, req.Body)
			sort := body["sort"].([]interface{})
			require.Len(t, sort, 1)
			assert.Contains(t, sort[0].(map[string]interface{}), field)
		}
	})

	t.Run("relevance sort adds no sort clause", func(t *testing.T) {
		req, err := BuildQuery(nil, ProjectQuery{
			Index:     "projects",
			QueryType: "project_index",
			Filters:   map[string]interface{}{"sortBy": "relevance"},
		})
		require.NoError(t, err)

		body := decodeBody(t, req.Body)
		assert.NotContains(t, body, "sort")
	})
}

func TestBuildQuery_SimilarProjects(t *testing.T) {
	t.Run("with project ID builds more_like_this", func(t *testing.T) {
		pq := ProjectQuery{
			Index:     "projects",
			QueryType: "similar_projects",
			ProjectID: "proj-1",
		}
		req, err := BuildQuery(nil, pq)
		require.NoError(t, err)

		body := decodeBody(t, req.Body)
		mlt := body["query"].(map[string]interface{})["more_like_this"].(map[string]interface{})
		like := mlt["like"].([]interface{})[0].(map[string]interface{})
		assert.Equal(t, "proj-1", like["_id"])
		assert.Equal(t, "projects", like["_index"])
	})

	t.Run("without project ID matches nothing", func(t *testing.T) {
		req, err := BuildQuery(nil, ProjectQuery{
			Index:     "projects",
			QueryType: "similar_projects",
		})
		require.NoError(t, err)

		body := decodeBody(t, req.Body)
		assert.Contains(t, body["query"].(map[string]interface{}), "match_none")
	})
}
