// internal/workers/estimation/evaluate-eligibility/handler.go
package evaluateeligibility

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"carbon-workers/internal/common/logger"
	"carbon-workers/internal/common/metrics"
	"carbon-workers/internal/eligibility"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/redis/go-redis/v9"
)

const (
	TaskType = "evaluate-eligibility"
)

var (
	ErrProjectNotFound    = errors.New("PROJECT_NOT_FOUND")
	ErrDraftLoadFailed    = errors.New("QUERY_EXECUTION_FAILED")
	ErrDraftDataCorrupted = errors.New("PROJECT_VALIDATION_FAILED")
)

type Handler struct {
	config *Config
	db     *sql.DB
	redis  *redis.Client
	logger logger.Logger
}

func NewHandler(config *Config, db *sql.DB, redisClient *redis.Client, log logger.Logger) *Handler {
	return &Handler{
		config: config,
		db:     db,
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
		errorCode := "UNKNOWN_ERROR"
		retries := int32(0)
		switch {
		case errors.Is(err, ErrProjectNotFound), errors.Is(err, ErrDraftDataCorrupted):
			errorCode = err.Error()
		case errors.Is(err, ErrDraftLoadFailed):
			errorCode = "QUERY_EXECUTION_FAILED"
			retries = 3
		}
		h.failJob(client, job, errorCode, err.Error(), retries)
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	data := input.ProjectData
	if data == nil {
		if input.ProjectID == "" {
			// Nothing supplied at all still gets a verdict: every field absent.
			data = &eligibility.ProjectData{}
		} else {
			loaded, err := h.loadDraft(ctx, input.ProjectID)
			if err != nil {
				return nil, err
			}
			data = loaded
		}
	}

	result := eligibility.Evaluate(*data)

	verdict := "eligible"
	if result.HardFailTriggered {
		verdict = "hard_fail"
	}
	metrics.EligibilityEvaluations.WithLabelValues(verdict, string(result.ConfidenceLevel)).Inc()

	h.logger.Info("eligibility evaluated", map[string]interface{}{
		"projectId":         input.ProjectID,
		"hardFailTriggered": result.HardFailTriggered,
		"confidenceScore":   result.ConfidenceScore,
		"confidenceLevel":   string(result.ConfidenceLevel),
	})

	return &Output{
		HardFailTriggered: result.HardFailTriggered,
		HardFailReasons:   result.HardFailReasons,
		SoftSignals:       result.SoftSignals,
		RiskWarnings:      result.RiskWarnings,
		ConfidenceScore:   result.ConfidenceScore,
		ConfidenceLevel:   result.ConfidenceLevel,
		Recommendation:    result.Recommendation,
	}, nil
}

// loadDraft fetches the wizard draft JSON, cache first then Postgres.
func (h *Handler) loadDraft(ctx context.Context, projectID string) (*eligibility.ProjectData, error) {
	cacheKey := "draft:" + projectID
	if val, err := h.redis.Get(ctx, cacheKey).Result(); err == nil {
		var data eligibility.ProjectData
		if err := json.Unmarshal([]byte(val), &data); err == nil {
			return &data, nil
		}
	}

	var raw []byte
	query := `SELECT draft_data FROM project_drafts WHERE project_id = $1`
	err := h.db.QueryRowContext(ctx, query, projectID).Scan(&raw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: project %s", ErrProjectNotFound, projectID)
		}
		return nil, fmt.Errorf("%w: %v", ErrDraftLoadFailed, err)
	}

	var data eligibility.ProjectData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("%w: draft for %s is not valid JSON: %v", ErrDraftDataCorrupted, projectID, err)
	}

	h.redis.Set(ctx, cacheKey, raw, h.config.CacheTTL)

	return &data, nil
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
	_, err = cmd.Send(context.Background())
	if err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err.Error(),
		})
	}
}

func (h *Handler) failJob(client worker.JobClient, job entities.Job, errorCode, errorMessage string, _ int32) {
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
