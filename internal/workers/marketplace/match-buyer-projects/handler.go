// internal/workers/marketplace/match-buyer-projects/handler.go
package matchbuyerprojects

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"carbon-workers/internal/common/logger"
	"carbon-workers/internal/common/metrics"
	"carbon-workers/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/lib/pq"
	"github.com/redis/go-redis/v9"
)

const TaskType = "match-buyer-projects"

var (
	ErrProjectNotFound    = errors.New("PROJECT_NOT_FOUND")
	ErrMandateQueryFailed = errors.New("QUERY_EXECUTION_FAILED")
)

const activeMandatesQuery = `SELECT id, buyer_id, technologies, countries,
	min_capacity_mw, max_capacity_mw, min_eligibility_score, price_ceiling_eur,
	active, created_at, updated_at
	FROM buyer_mandates WHERE active = true`

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
		} else if errors.Is(err, ErrMandateQueryFailed) {
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

	project, err := h.loadProject(ctx, input.ProjectID)
	if err != nil {
		return nil, err
	}

	mandates, err := h.loadActiveMandates(ctx)
	if err != nil {
		return nil, err
	}

	matches := make([]MandateMatch, 0)
	for _, m := range mandates {
		if !m.Matches(project) {
			continue
		}
		matches = append(matches, MandateMatch{
			MandateID:       m.ID,
			BuyerID:         m.BuyerID,
			MatchScore:      scoreMatch(m, project),
			PriceCeilingEUR: m.PriceCeilingEUR,
		})
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].MatchScore != matches[j].MatchScore {
			return matches[i].MatchScore > matches[j].MatchScore
		}
		return matches[i].MandateID < matches[j].MandateID
	})

	h.logger.Info("mandate matching complete", map[string]interface{}{
		"projectId":  input.ProjectID,
		"mandates":   len(mandates),
		"matchCount": len(matches),
	})

	return &Output{
		ProjectID:  input.ProjectID,
		Matches:    matches,
		MatchCount: len(matches),
	}, nil
}

func (h *Handler) loadProject(ctx context.Context, projectID string) (*models.Project, error) {
	cacheKey := "project:" + projectID
	if val, err := h.redis.Get(ctx, cacheKey).Result(); err == nil {
		var project models.Project
		if err := json.Unmarshal([]byte(val), &project); err == nil {
			return &project, nil
		}
	}

	var project models.Project
	var score sql.NullInt64
	query := `SELECT id, developer_id, name, technology, country, capacity_mw,
		commissioning_date, offtake_type, offtaker_type, additionality_justification,
		status, eligibility_score, created_at, updated_at
		FROM projects WHERE id = $1`
	err := h.db.QueryRowContext(ctx, query, projectID).Scan(
		&project.ID, &project.DeveloperID, &project.Name, &project.Technology,
		&project.Country, &project.CapacityMW, &project.CommissioningDate,
		&project.OfftakeType, &project.OfftakerType, &project.AdditionalityJustification,
		&project.Status, &score, &project.CreatedAt, &project.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: project %s", ErrProjectNotFound, projectID)
		}
		return nil, fmt.Errorf("%w: %v", ErrMandateQueryFailed, err)
	}

	if score.Valid {
		s := int(score.Int64)
		project.EligibilityScore = &s
	}

	if data, err := json.Marshal(&project); err == nil {
		h.redis.Set(ctx, cacheKey, data, h.config.CacheTTL)
	}

	return &project, nil
}

func (h *Handler) loadActiveMandates(ctx context.Context) ([]models.BuyerMandate, error) {
	rows, err := h.db.QueryContext(ctx, activeMandatesQuery)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMandateQueryFailed, err)
	}
	defer rows.Close()

	var mandates []models.BuyerMandate
	for rows.Next() {
		var m models.BuyerMandate
		err := rows.Scan(
			&m.ID, &m.BuyerID, pq.Array(&m.Technologies), pq.Array(&m.Countries),
			&m.MinCapacityMW, &m.MaxCapacityMW, &m.MinEligibilityScore, &m.PriceCeilingEUR,
			&m.Active, &m.CreatedAt, &m.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMandateQueryFailed, err)
		}
		mandates = append(mandates, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMandateQueryFailed, err)
	}

	return mandates, nil
}

// scoreMatch rates a qualifying match from 50 to 100. The margin by which
// the project clears the mandate's minimum eligibility score contributes up
// to 30 points, and an explicit country preference hit adds 20.
func scoreMatch(m models.BuyerMandate, p *models.Project) int {
	score := 50

	if p.EligibilityScore != nil {
		margin := *p.EligibilityScore - m.MinEligibilityScore
		if margin > 30 {
			margin = 30
		}
		score += margin
	}

	if len(m.Countries) > 0 {
		score += 20
	}

	if score > 100 {
		score = 100
	}
	return score
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
