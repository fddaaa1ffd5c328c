// internal/workers/project/fetch-project-record/handler.go
package fetchprojectrecord

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"carbon-workers/internal/common/logger"
	"carbon-workers/internal/common/metrics"
	"carbon-workers/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/redis/go-redis/v9"
)

const TaskType = "fetch-project-record"

var (
	ErrProjectNotFound = errors.New("PROJECT_NOT_FOUND")
	ErrQueryFailed     = errors.New("QUERY_EXECUTION_FAILED")
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
		if errors.Is(err, ErrProjectNotFound) {
			errorCode = "PROJECT_NOT_FOUND"
		} else if errors.Is(err, ErrQueryFailed) {
			errorCode = "QUERY_EXECUTION_FAILED"
			retries = 3
		}
		h.failJob(client, job, errorCode, err.Error(), retries)
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input.ProjectID == "" {
		return nil, fmt.Errorf("%w: projectId missing", ErrProjectNotFound)
	}

	cacheKey := "project:" + input.ProjectID
	if val, err := h.redis.Get(ctx, cacheKey).Result(); err == nil {
		var project models.Project
		if err := json.Unmarshal([]byte(val), &project); err == nil {
			return &Output{Project: &project, FromCache: true}, nil
		}
	}

	var project models.Project
	var score sql.NullInt64
	query := `SELECT id, developer_id, name, technology, country, capacity_mw,
		commissioning_date, offtake_type, offtaker_type, additionality_justification,
		status, eligibility_score, created_at, updated_at
		FROM projects WHERE id = $1`
	err := h.db.QueryRowContext(ctx, query, input.ProjectID).Scan(
		&project.ID, &project.DeveloperID, &project.Name, &project.Technology,
		&project.Country, &project.CapacityMW, &project.CommissioningDate,
		&project.OfftakeType, &project.OfftakerType, &project.AdditionalityJustification,
		&project.Status, &score, &project.CreatedAt, &project.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: project %s", ErrProjectNotFound, input.ProjectID)
		}
		return nil, fmt.Errorf("%w: %v", ErrQueryFailed, err)
	}

	if score.Valid {
		s := int(score.Int64)
		project.EligibilityScore = &s
	}

	if data, err := json.Marshal(&project); err == nil {
		h.redis.Set(ctx, cacheKey, data, h.config.CacheTTL)
	}

	return &Output{Project: &project, FromCache: false}, nil
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
