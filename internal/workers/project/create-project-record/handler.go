// internal/workers/project/create-project-record/handler.go
package createprojectrecord

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"carbon-workers/internal/common/logger"
	"carbon-workers/internal/common/metrics"
	"carbon-workers/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"
)

const TaskType = "create-project-record"

var (
	ErrDuplicateProject = errors.New("DUPLICATE_PROJECT")
	ErrValidationFailed = errors.New("PROJECT_VALIDATION_FAILED")
	ErrInsertFailed     = errors.New("DATABASE_INSERT_FAILED")
)

type Handler struct {
	config *Config
	db     *sql.DB
	logger logger.Logger
}

func NewHandler(config *Config, db *sql.DB, log logger.Logger) *Handler {
	return &Handler{
		config: config,
		db:     db,
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
		case errors.Is(err, ErrDuplicateProject), errors.Is(err, ErrValidationFailed):
			errorCode = unwrapCode(err)
		case errors.Is(err, ErrInsertFailed):
			errorCode = "DATABASE_INSERT_FAILED"
			retries = 3
		}
		h.failJob(client, job, errorCode, err.Error(), retries)
		return
	}

	h.completeJob(client, job, output)
}

func unwrapCode(err error) string {
	switch {
	case errors.Is(err, ErrDuplicateProject):
		return ErrDuplicateProject.Error()
	case errors.Is(err, ErrValidationFailed):
		return ErrValidationFailed.Error()
	default:
		return "UNKNOWN_ERROR"
	}
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	now := time.Now().UTC()

	project := models.Project{
		ID:                         uuid.NewString(),
		DeveloperID:                input.DeveloperID,
		Name:                       input.Name,
		Technology:                 input.Technology,
		Country:                    input.Country,
		CapacityMW:                 input.CapacityMW,
		CommissioningDate:          input.CommissioningDate,
		OfftakeType:                input.OfftakeType,
		OfftakerType:               input.OfftakerType,
		AdditionalityJustification: input.AdditionalityJustification,
		Status:                     models.ProjectStatusDraft,
		EligibilityScore:           input.EligibilityScore,
		CreatedAt:                  now,
		UpdatedAt:                  now,
	}

	if err := project.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}

	// One project name per developer
	var existing int
	dupQuery := `SELECT COUNT(1) FROM projects WHERE developer_id = $1 AND LOWER(name) = LOWER($2)`
	if err := h.db.QueryRowContext(ctx, dupQuery, project.DeveloperID, project.Name).Scan(&existing); err != nil {
		return nil, fmt.Errorf("%w: duplicate check: %v", ErrInsertFailed, err)
	}
	if existing > 0 {
		return nil, fmt.Errorf("%w: developer %s already has a project named %q", ErrDuplicateProject, project.DeveloperID, project.Name)
	}

	insert := `INSERT INTO projects
		(id, developer_id, name, technology, country, capacity_mw, commissioning_date,
		 offtake_type, offtaker_type, additionality_justification, status, eligibility_score,
		 created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`
	_, err := h.db.ExecContext(ctx, insert,
		project.ID, project.DeveloperID, project.Name, project.Technology, project.Country,
		project.CapacityMW, project.CommissioningDate, project.OfftakeType, project.OfftakerType,
		project.AdditionalityJustification, string(project.Status), project.EligibilityScore,
		project.CreatedAt, project.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInsertFailed, err)
	}

	h.logger.Info("project created", map[string]interface{}{
		"projectId":   project.ID,
		"developerId": project.DeveloperID,
	})

	return &Output{
		ProjectID: project.ID,
		Status:    string(project.Status),
		CreatedAt: now.Format(time.RFC3339),
	}, nil
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
