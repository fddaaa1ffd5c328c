// internal/workers/project/parse-search-filters/handler.go
package parsesearchfilters

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"carbon-workers/internal/common/logger"
	"carbon-workers/internal/common/metrics"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = "parse-search-filters"

const maxCapacityMW = 5000.0

var (
	ErrInvalidFilterFormat = errors.New("INVALID_FILTER_FORMAT")
)

var validTechnologies = map[string]bool{
	"SOLAR": true, "WIND": true, "HYDRO": true, "BIOMASS": true, "GEOTHERMAL": true,
}

var validSortOptions = map[string]bool{
	"relevance": true, "capacity_mw": true, "eligibility_score": true, "name": true,
}

type Handler struct {
	config *Config
	logger logger.Logger
}

func NewHandler(config *Config, log logger.Logger) *Handler {
	return &Handler{
		config: config,
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
		h.failJob(client, job, "PARSE_ERROR", fmt.Sprintf("parse input: %v", err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		h.failJob(client, job, "INVALID_FILTER_FORMAT", err.Error())
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(_ context.Context, input *Input) (*Output, error) {
	if input.RawFilters == nil {
		input.RawFilters = make(map[string]interface{})
	}

	parsed := ParsedFilters{
		Technologies:  []string{},
		Countries:     []string{},
		Keywords:      "",
		SortBy:        "relevance",
		Pagination:    Pagination{Page: 1, Size: 20},
		CapacityRange: CapacityRange{MinMW: 0, MaxMW: maxCapacityMW},
	}

	if technologiesRaw, ok := input.RawFilters["technologies"]; ok {
		parsed.Technologies = h.parseStringArray(technologiesRaw, strings.ToUpper)
		for _, tech := range parsed.Technologies {
			if !validTechnologies[tech] {
				return nil, fmt.Errorf("%w: invalid technology '%s'", ErrInvalidFilterFormat, tech)
			}
		}
	}

	if countriesRaw, ok := input.RawFilters["countries"]; ok {
		parsed.Countries = h.parseStringArray(countriesRaw, strings.ToUpper)
		for _, country := range parsed.Countries {
			if len(country) != 2 {
				return nil, fmt.Errorf("%w: country must be an ISO 3166-1 alpha-2 code, got '%s'", ErrInvalidFilterFormat, country)
			}
		}
	}

	if capRangeRaw, ok := input.RawFilters["capacityRange"]; ok {
		if capMap, ok := capRangeRaw.(map[string]interface{}); ok {
			if minRaw, exists := capMap["min"]; exists {
				if min, err := h.parseFloat(minRaw); err == nil && min >= 0 {
					parsed.CapacityRange.MinMW = min
				}
			}
			if maxRaw, exists := capMap["max"]; exists {
				if max, err := h.parseFloat(maxRaw); err == nil && max > 0 && max <= maxCapacityMW {
					parsed.CapacityRange.MaxMW = max
				}
			}
			if parsed.CapacityRange.MinMW > parsed.CapacityRange.MaxMW {
				return nil, fmt.Errorf("%w: capacity min (%f) > max (%f)",
					ErrInvalidFilterFormat, parsed.CapacityRange.MinMW, parsed.CapacityRange.MaxMW)
			}
		}
	}

	if minScoreRaw, ok := input.RawFilters["minScore"]; ok {
		if score, err := h.parseFloat(minScoreRaw); err == nil {
			if score < 0 || score > 100 {
				return nil, fmt.Errorf("%w: minScore must be 0-100, got %v", ErrInvalidFilterFormat, score)
			}
			parsed.MinScore = int(score)
		}
	}

	if keywordsRaw, ok := input.RawFilters["keywords"]; ok {
		if s, ok := keywordsRaw.(string); ok {
			parsed.Keywords = strings.TrimSpace(s)
		}
	}

	if sortByRaw, ok := input.RawFilters["sortBy"]; ok {
		if s, ok := sortByRaw.(string); ok {
			s = strings.TrimSpace(s)
			if validSortOptions[s] {
				parsed.SortBy = s
			} else {
				return nil, fmt.Errorf("%w: invalid sortBy '%s'", ErrInvalidFilterFormat, s)
			}
		}
	}

	if paginationRaw, ok := input.RawFilters["pagination"]; ok {
		if pgMap, ok := paginationRaw.(map[string]interface{}); ok {
			if pageRaw, exists := pgMap["page"]; exists {
				if page, err := h.parseFloat(pageRaw); err == nil && page >= 1 {
					parsed.Pagination.Page = int(page)
				}
			}
			if sizeRaw, exists := pgMap["size"]; exists {
				if size, err := h.parseFloat(sizeRaw); err == nil && size >= 1 {
					if size <= 100 {
						parsed.Pagination.Size = int(size)
					} else {
						parsed.Pagination.Size = 100
					}
				}
			}
		}
	}

	h.logger.Info("filters parsed successfully", map[string]interface{}{
		"technologies":  parsed.Technologies,
		"countries":     parsed.Countries,
		"capacityRange": parsed.CapacityRange,
		"minScore":      parsed.MinScore,
		"keywords":      parsed.Keywords,
		"sortBy":        parsed.SortBy,
		"pagination":    parsed.Pagination,
	})

	return &Output{ParsedFilters: parsed}, nil
}

func (h *Handler) parseStringArray(raw interface{}, canon func(string) string) []string {
	// Always return non-nil slice
	result := []string{}

	if raw == nil {
		return result
	}

	seen := make(map[string]bool)

	add := func(s string) {
		trimmed := canon(strings.TrimSpace(s))
		if trimmed != "" && !seen[trimmed] {
			result = append(result, trimmed)
			seen[trimmed] = true
		}
	}

	switch v := raw.(type) {
	case string:
		for _, s := range strings.Split(v, ",") {
			add(s)
		}
	case []interface{}:
		for _, item := range v {
			if s, ok := item.(string); ok {
				add(s)
			}
		}
	case []string:
		for _, s := range v {
			add(s)
		}
	}

	return result
}

func (h *Handler) parseFloat(raw interface{}) (float64, error) {
	switch v := raw.(type) {
	case float64:
		return v, nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case string:
		cleaned := strings.TrimSpace(strings.ReplaceAll(v, ",", ""))
		if cleaned == "" {
			return 0, errors.New("not a number")
		}
		return strconv.ParseFloat(cleaned, 64)
	default:
		return 0, fmt.Errorf("cannot parse %T as number", raw)
	}
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) {
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()

	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}
	if _, err := cmd.Send(context.Background()); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err.Error(),
		})
	}
}

func (h *Handler) failJob(client worker.JobClient, job entities.Job, errorCode, errorMessage string) {
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, errorCode).Inc()

	h.logger.Error("job failed", map[string]interface{}{
		"jobKey":       job.Key,
		"errorCode":    errorCode,
		"errorMessage": errorMessage,
	})

	_, err := client.NewThrowErrorCommand().
		JobKey(job.Key).
		ErrorCode(errorCode).
		ErrorMessage(errorMessage).
		Send(context.Background())
	if err != nil {
		h.logger.Error("failed to throw error", map[string]interface{}{
			"error": err.Error(),
		})
	}
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
