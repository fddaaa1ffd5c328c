// internal/workers/project/parse-search-filters/models.go
package parsesearchfilters

type Input struct {
	RawFilters map[string]interface{} `json:"rawFilters"`
}

type Output struct {
	ParsedFilters ParsedFilters `json:"parsedFilters"`
}

type ParsedFilters struct {
	Technologies  []string      `json:"technologies"`
	Countries     []string      `json:"countries"`
	CapacityRange CapacityRange `json:"capacityRange"`
	MinScore      int           `json:"minScore"`
	Keywords      string        `json:"keywords"`
	SortBy        string        `json:"sortBy"`
	Pagination    Pagination    `json:"pagination"`
}

type CapacityRange struct {
	MinMW float64 `json:"minMw"`
	MaxMW float64 `json:"maxMw"`
}

type Pagination struct {
	Page int `json:"page"`
	Size int `json:"size"`
}
