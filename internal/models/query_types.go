// internal/models/query_types.go
package models

// QueryType selects the shape of an Elasticsearch query against the
// project index.
type QueryType string

const (
	// QueryTypeProjectIndex is the marketplace search over listed projects.
	QueryTypeProjectIndex QueryType = "project_index"
	// QueryTypeSimilarProjects finds projects similar to a reference project.
	QueryTypeSimilarProjects QueryType = "similar_projects"
)
