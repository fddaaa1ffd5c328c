// internal/workers/project/validate-project-data/handler.go
package validateprojectdata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"carbon-workers/internal/common/logger"
	"carbon-workers/internal/common/metrics"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/xeipuuv/gojsonschema"
)

const TaskType = "validate-project-data"

var (
	ErrValidationFailed = errors.New("PROJECT_VALIDATION_FAILED")
)

// projectSchema is the intake contract for the estimation wizard payload.
// Every field is optional at draft stage except the identifying trio; the
// eligibility evaluator deals with absence itself.
var projectSchema = map[string]interface{}{
	"type":     "object",
	"required": []interface{}{"developerId", "name", "technology"},
	"properties": map[string]interface{}{
		"developerId": map[string]interface{}{"type": "string", "minLength": 1},
		"name":        map[string]interface{}{"type": "string", "minLength": 3, "maxLength": 200},
		"technology": map[string]interface{}{
			"type": "string",
			"enum": []interface{}{"SOLAR", "WIND", "HYDRO", "BIOMASS", "GEOTHERMAL"},
		},
		"country":             map[string]interface{}{"type": "string", "pattern": "^[A-Z]{2}$"},
		"installedCapacityDC": map[string]interface{}{"type": "number", "minimum": 0},
		"installedCapacityAC": map[string]interface{}{"type": "number", "minimum": 0},
		"installedCapacity":   map[string]interface{}{"type": "number", "minimum": 0},
		"ppaDuration":         map[string]interface{}{"type": "number", "minimum": 0, "maximum": 50},
		"offtakeType": map[string]interface{}{
			"type": "string",
			"enum": []interface{}{"PPA", "CAPTIVE", "OPEN_ACCESS", "MERCHANT"},
		},
		"offtakerType": map[string]interface{}{
			"type": "string",
			"enum": []interface{}{"GOVERNMENT", "UTILITY", "PRIVATE", "OTHER"},
		},
		"carbonRegistrationIntent": map[string]interface{}{
			"type": "string",
			"enum": []interface{}{"BEFORE_COMMISSIONING", "WITHIN_2_YEARS", "AFTER_2_YEARS", "NOT_DECIDED"},
		},
		"hostCountryArticle6Status": map[string]interface{}{
			"type": "string",
			"enum": []interface{}{"CLEAR", "AMBIGUOUS", "HIGH_RISK"},
		},
		"isPolicyDriven":             map[string]interface{}{"type": "boolean"},
		"isMerchant":                 map[string]interface{}{"type": "boolean"},
		"carbonRevenueMaterial":      map[string]interface{}{"type": "boolean"},
		"additionalityJustification": map[string]interface{}{"type": "string", "maxLength": 10000},
		"commissioningDate":          map[string]interface{}{"type": "string"},
		"creditingPeriodStart":       map[string]interface{}{"type": "string"},
	},
	"additionalProperties": false,
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
		h.failJob(client, job, "PROJECT_VALIDATION_FAILED", err.Error())
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(_ context.Context, input *Input) (*Output, error) {
	if input.ProjectData == nil {
		return nil, fmt.Errorf("%w: projectData missing", ErrValidationFailed)
	}

	schemaLoader := gojsonschema.NewGoLoader(projectSchema)
	documentLoader := gojsonschema.NewGoLoader(input.ProjectData)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}

	if !result.Valid() {
		errs := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			errs[i] = desc.String()
		}
		h.logger.Info("project data rejected", map[string]interface{}{
			"errorCount": len(errs),
		})
		return &Output{IsValid: false, Errors: errs}, nil
	}

	return &Output{IsValid: true}, nil
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
