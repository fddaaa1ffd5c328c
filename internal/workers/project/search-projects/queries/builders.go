package queries

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"carbon-workers/internal/models"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

var (
	ErrUnknownQueryType = errors.New("unknown query type")
	ErrMissingIndex     = errors.New("index name is required")
)

// ProjectQuery defines the structure of a search request
type ProjectQuery struct {
	Index      string
	QueryType  string
	Filters    map[string]interface{}
	ProjectID  string
	Pagination struct {
		From int
		Size int
	}
}

// BuildQuery builds an Elasticsearch search request based on query type and filters
func BuildQuery(esClient *elasticsearch.Client, pq ProjectQuery) (*esapi.SearchRequest, error) {
	if pq.Index == "" {
		return nil, ErrMissingIndex
	}

	var queryBody map[string]interface{}

	switch models.QueryType(pq.QueryType) {
	case models.QueryTypeProjectIndex:
		queryBody = buildProjectSearchQuery(pq)
	case models.QueryTypeSimilarProjects:
		queryBody = buildSimilarProjectsQuery(pq)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownQueryType, pq.QueryType)
	}

	body, _ := json.Marshal(queryBody)

	req := esapi.SearchRequest{
		Index:  []string{pq.Index},
		Body:   strings.NewReader(string(body)),
		From:   &pq.Pagination.From,
		Size:   &pq.Pagination.Size,
		Pretty: true,
	}

	return &req, nil
}

// buildProjectSearchQuery builds the marketplace project search dynamically
func buildProjectSearchQuery(pq ProjectQuery) map[string]interface{} {
	boolQuery := make(map[string]interface{})
	mustClauses := []interface{}{}
	filterClauses := []interface{}{}

	// Keyword search
	if keywords, ok := pq.Filters["keywords"].(string); ok && keywords != "" {
		mustClauses = append(mustClauses, map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":  keywords,
				"fields": []string{"name^3", "description^2", "technology"},
				"type":   "best_fields",
			},
		})
	}

	// Technology filter
	if technologies := stringTerms(pq.Filters["technologies"]); len(technologies) > 0 {
		filterClauses = append(filterClauses, map[string]interface{}{
			"terms": map[string]interface{}{"technology": technologies},
		})
	}

	// Country filter
	if countries := stringTerms(pq.Filters["countries"]); len(countries) > 0 {
		filterClauses = append(filterClauses, map[string]interface{}{
			"terms": map[string]interface{}{"country": countries},
		})
	}

	// Capacity range filter on a single numeric field
	if capRange, ok := pq.Filters["capacityRange"].(map[string]interface{}); ok {
		rangeClause := map[string]interface{}{}
		if min := numeric(capRange["minMw"]); min > 0 {
			rangeClause["gte"] = min
		}
		if max := numeric(capRange["maxMw"]); max > 0 {
			rangeClause["lte"] = max
		}
		if len(rangeClause) > 0 {
			filterClauses = append(filterClauses, map[string]interface{}{
				"range": map[string]interface{}{"capacity_mw": rangeClause},
			})
		}
	}

	// Minimum eligibility score
	if minScore := numeric(pq.Filters["minScore"]); minScore > 0 {
		filterClauses = append(filterClauses, map[string]interface{}{
			"range": map[string]interface{}{
				"eligibility_score": map[string]interface{}{"gte": minScore},
			},
		})
	}

	// Default match_all if no keyword
	if len(mustClauses) == 0 {
		mustClauses = append(mustClauses, map[string]interface{}{"match_all": map[string]interface{}{}})
	}

	boolQuery["must"] = mustClauses
	if len(filterClauses) > 0 {
		boolQuery["filter"] = filterClauses
	}

	query := map[string]interface{}{
		"query": map[string]interface{}{
			"bool": boolQuery,
		},
	}

	// Sorting logic
	if sortBy, ok := pq.Filters["sortBy"].(string); ok {
		switch sortBy {
		case "capacity_mw":
			query["sort"] = []map[string]interface{}{{"capacity_mw": "desc"}}
		case "eligibility_score":
			query["sort"] = []map[string]interface{}{{"eligibility_score": "desc"}}
		case "name":
			query["sort"] = []map[string]interface{}{{"name": "asc"}}
		}
	}

	return query
}

// buildSimilarProjectsQuery builds the "projects like this one" query
func buildSimilarProjectsQuery(pq ProjectQuery) map[string]interface{} {
	if pq.ProjectID == "" {
		return map[string]interface{}{
			"query": map[string]interface{}{
				"match_none": map[string]interface{}{},
			},
		}
	}

	return map[string]interface{}{
		"query": map[string]interface{}{
			"more_like_this": map[string]interface{}{
				"fields": []string{"name", "description", "technology"},
				"like": []map[string]interface{}{
					{"_index": pq.Index, "_id": pq.ProjectID},
				},
				"min_term_freq":   1,
				"max_query_terms": 12,
				"min_doc_freq":    1,
				"min_word_length": 3,
			},
		},
	}
}

func stringTerms(raw interface{}) []string {
	var terms []string
	switch v := raw.(type) {
	case []interface{}:
		for _, item := range v {
			if s, ok := item.(string); ok && s != "" {
				terms = append(terms, s)
			}
		}
	case []string:
		for _, s := range v {
			if s != "" {
				terms = append(terms, s)
			}
		}
	}
	return terms
}

func numeric(raw interface{}) float64 {
	switch v := raw.(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	}
	return 0
}
