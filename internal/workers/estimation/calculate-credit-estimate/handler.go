// internal/workers/estimation/calculate-credit-estimate/handler.go
package calculatecreditestimate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"carbon-workers/internal/common/logger"
	"carbon-workers/internal/common/metrics"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "calculate-credit-estimate"

	hoursPerYear = 8760
)

var (
	ErrEstimateFailed = errors.New("ESTIMATE_CALCULATION_FAILED")
)

// Capacity factors by technology, conservative fleet averages.
var capacityFactors = map[string]float64{
	"SOLAR":      0.18,
	"WIND":       0.30,
	"HYDRO":      0.45,
	"BIOMASS":    0.70,
	"GEOTHERMAL": 0.80,
}

// Grid emission factors in tCO2/MWh by host country. Countries not listed
// fall back to the IFI harmonized default.
var emissionFactors = map[string]float64{
	"IN": 0.71,
	"VN": 0.68,
	"ID": 0.77,
	"ZA": 0.95,
	"BR": 0.12,
	"DE": 0.35,
	"US": 0.38,
}

const defaultEmissionFactor = 0.475

// Price bands in EUR per credit, keyed by eligibility confidence. Lower
// confidence widens the band downward since weak projects clear at a discount.
var priceBands = map[string][2]float64{
	"HIGH":   {3.0, 6.5},
	"MEDIUM": {2.0, 4.5},
	"LOW":    {1.0, 2.5},
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
		h.failJob(client, job, "ESTIMATE_CALCULATION_FAILED", err.Error())
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(_ context.Context, input *Input) (*Output, error) {
	if input.HardFailTriggered {
		return nil, fmt.Errorf("%w: project failed eligibility screening, no estimate produced", ErrEstimateFailed)
	}
	if input.CapacityMW <= 0 {
		return nil, fmt.Errorf("%w: capacity must be positive, got %f", ErrEstimateFailed, input.CapacityMW)
	}

	tech := strings.ToUpper(strings.TrimSpace(input.Technology))
	cf, ok := capacityFactors[tech]
	if !ok {
		return nil, fmt.Errorf("%w: unsupported technology %q", ErrEstimateFailed, input.Technology)
	}

	ef, ok := emissionFactors[strings.ToUpper(strings.TrimSpace(input.Country))]
	if !ok {
		ef = defaultEmissionFactor
	}

	band, ok := priceBands[strings.ToUpper(input.ConfidenceLevel)]
	if !ok {
		band = priceBands["LOW"]
	}

	annualMWh := input.CapacityMW * hoursPerYear * cf
	credits := int(math.Round(annualMWh * ef))

	output := &Output{
		AnnualGenerationMWh: math.Round(annualMWh*100) / 100,
		AnnualCredits:       credits,
		RevenueEstimate: RevenueBand{
			LowEUR:  math.Round(float64(credits)*band[0]*100) / 100,
			HighEUR: math.Round(float64(credits)*band[1]*100) / 100,
		},
		Assumptions: Assumptions{
			CapacityFactor:     cf,
			EmissionFactor:     ef,
			PriceLowEURPerTon:  band[0],
			PriceHighEURPerTon: band[1],
		},
	}

	h.logger.Info("credit estimate calculated", map[string]interface{}{
		"projectId":     input.ProjectID,
		"annualCredits": credits,
	})

	return output, nil
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
