// internal/workers/registry/submit-registration/handler.go
package submitregistration

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"carbon-workers/internal/common/logger"
	"carbon-workers/internal/common/metrics"
	"carbon-workers/internal/common/registry"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = "submit-registration"

var (
	ErrDossierIncomplete  = errors.New("DOSSIER_INCOMPLETE")
	ErrProjectNotEligible = errors.New("PROJECT_NOT_ELIGIBLE")
	ErrRegistryRejected   = errors.New("REGISTRY_REJECTED")
	ErrRegistryTimeout    = errors.New("REGISTRY_API_TIMEOUT")
	ErrSubmissionFailed   = errors.New("REGISTRY_SUBMISSION_FAILED")
)

// RegistryClient is the slice of the registry API this worker needs.
type RegistryClient interface {
	Name() string
	SubmitDossier(ctx context.Context, dossier *registry.Dossier) (string, error)
}

type Handler struct {
	config *Config
	client RegistryClient
	logger logger.Logger
}

func NewHandler(config *Config, client RegistryClient, log logger.Logger) *Handler {
	return &Handler{
		config: config,
		client: client,
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
		h.failJob(client, job, h.mapErrorToCode(err), err.Error(), h.getRetryCount(err))
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if err := validateDossier(input); err != nil {
		return nil, err
	}

	dossier := &registry.Dossier{
		ProjectID:                  input.ProjectID,
		ProjectName:                input.ProjectName,
		Technology:                 input.Technology,
		Country:                    input.Country,
		CapacityMW:                 input.CapacityMW,
		CommissioningDate:          input.CommissioningDate,
		AdditionalityJustification: input.AdditionalityJustification,
		EligibilityScore:           *input.EligibilityScore,
		SupportingDocuments:        input.SupportingDocuments,
	}

	submissionID, err := h.client.SubmitDossier(ctx, dossier)
	if err != nil {
		metrics.RegistrySubmissions.WithLabelValues(h.client.Name(), "failure").Inc()
		return nil, h.classifySubmitError(ctx, err)
	}

	metrics.RegistrySubmissions.WithLabelValues(h.client.Name(), "success").Inc()

	h.logger.Info("dossier submitted", map[string]interface{}{
		"projectId":    input.ProjectID,
		"registry":     h.client.Name(),
		"submissionId": submissionID,
	})

	return &Output{
		SubmissionID: submissionID,
		Registry:     h.client.Name(),
		SubmittedAt:  time.Now().UTC().Format(time.RFC3339),
	}, nil
}

func validateDossier(input *Input) error {
	if input.HardFailTriggered {
		return fmt.Errorf("%w: project has a disqualifying condition", ErrProjectNotEligible)
	}
	if input.EligibilityScore == nil {
		return fmt.Errorf("%w: project has not been evaluated", ErrProjectNotEligible)
	}

	var missing []string
	if input.ProjectID == "" {
		missing = append(missing, "projectId")
	}
	if input.ProjectName == "" {
		missing = append(missing, "projectName")
	}
	if input.Technology == "" {
		missing = append(missing, "technology")
	}
	if input.Country == "" {
		missing = append(missing, "country")
	}
	if input.CapacityMW <= 0 {
		missing = append(missing, "capacityMw")
	}
	if input.AdditionalityJustification == "" {
		missing = append(missing, "additionalityJustification")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrDossierIncomplete, strings.Join(missing, ", "))
	}
	return nil
}

func (h *Handler) classifySubmitError(ctx context.Context, err error) error {
	if ctx.Err() == context.DeadlineExceeded {
		return fmt.Errorf("%w: %v", ErrRegistryTimeout, err)
	}
	if strings.Contains(err.Error(), "rejected") {
		return fmt.Errorf("%w: %v", ErrRegistryRejected, err)
	}
	return fmt.Errorf("%w: %v", ErrSubmissionFailed, err)
}

func (h *Handler) mapErrorToCode(err error) string {
	switch {
	case errors.Is(err, ErrDossierIncomplete):
		return "DOSSIER_INCOMPLETE"
	case errors.Is(err, ErrProjectNotEligible):
		return "PROJECT_NOT_ELIGIBLE"
	case errors.Is(err, ErrRegistryRejected):
		return "REGISTRY_REJECTED"
	case errors.Is(err, ErrRegistryTimeout):
		return "REGISTRY_API_TIMEOUT"
	case errors.Is(err, ErrSubmissionFailed):
		return "REGISTRY_SUBMISSION_FAILED"
	}
	return "UNKNOWN_ERROR"
}

func (h *Handler) getRetryCount(err error) int32 {
	switch {
	case errors.Is(err, ErrSubmissionFailed):
		return 3
	case errors.Is(err, ErrRegistryTimeout):
		return 2
	}
	return 0
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
