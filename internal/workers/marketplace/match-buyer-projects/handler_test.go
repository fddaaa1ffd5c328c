// internal/workers/marketplace/match-buyer-projects/handler_test.go
package matchbuyerprojects

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"carbon-workers/internal/common/logger"
	"carbon-workers/internal/models"
)

const (
	projectQueryPattern = `(?s)SELECT id, developer_id, name.+FROM projects WHERE id = \$1`
	mandateQueryPattern = `(?s)SELECT id, buyer_id, technologies.+FROM buyer_mandates WHERE active = true`
)

func createTestConfig() *Config {
	return &Config{
		Timeout:  5 * time.Second,
		CacheTTL: 5 * time.Minute,
	}
}

func createTestHandler(t *testing.T) (*Handler, sqlmock.Sqlmock, *miniredis.Miniredis) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	mr := miniredis.RunT(t)
	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	handler := NewHandler(createTestConfig(), db, redisClient, logger.NewTestLogger(t))
	return handler, mock, mr
}

func createProject(score int) *models.Project {
	return &models.Project{
		ID:          "a1b2c3d4-0000-4000-8000-000000000001",
		DeveloperID: "dev-1",
		Name:        "Thar Desert Solar",
		Technology:  "SOLAR",
		Country:     "IN",
		CapacityMW:  120.0,
		Status:      models.ProjectStatusActive,
		EligibilityScore: func() *int {
			s := score
			return &s
		}(),
	}
}

func cacheProject(t *testing.T, mr *miniredis.Miniredis, p *models.Project) {
	data, err := json.Marshal(p)
	require.NoError(t, err)
	require.NoError(t, mr.Set("project:"+p.ID, string(data)))
}

func mandateRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "buyer_id", "technologies", "countries",
		"min_capacity_mw", "max_capacity_mw", "min_eligibility_score", "price_ceiling_eur",
		"active", "created_at", "updated_at",
	})
}

func TestHandler_Execute_MatchesAndRanks(t *testing.T) {
	handler, mock, mr := createTestHandler(t)

	project := createProject(75)
	cacheProject(t, mr, project)

	now := time.Now()
	mock.ExpectQuery(mandateQueryPattern).WillReturnRows(mandateRows().
		AddRow("mandate-a", "buyer-a", "{SOLAR,WIND}", "{IN,VN}", 50.0, 500.0, 60, 4.5, true, now, now).
		AddRow("mandate-b", "buyer-b", "{SOLAR}", "{}", 0.0, 0.0, 50, 3.0, true, now, now).
		AddRow("mandate-c", "buyer-c", "{SOLAR}", "{}", 0.0, 0.0, 90, 6.0, true, now, now).
		AddRow("mandate-d", "buyer-d", "{WIND}", "{}", 0.0, 0.0, 0, 2.0, true, now, now))

	output, err := handler.Execute(context.Background(), &Input{ProjectID: project.ID})
	require.NoError(t, err)

	assert.Equal(t, project.ID, output.ProjectID)
	assert.Equal(t, 2, output.MatchCount)
	require.Len(t, output.Matches, 2)

	// mandate-a clears its minimum by 15 and names the country: 50+15+20
	assert.Equal(t, "mandate-a", output.Matches[0].MandateID)
	assert.Equal(t, 85, output.Matches[0].MatchScore)
	assert.Equal(t, 4.5, output.Matches[0].PriceCeilingEUR)

	// mandate-b clears its minimum by 25 with no country preference: 50+25
	assert.Equal(t, "mandate-b", output.Matches[1].MandateID)
	assert.Equal(t, 75, output.Matches[1].MatchScore)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_Execute_ProjectFromDatabase(t *testing.T) {
	handler, mock, mr := createTestHandler(t)

	project := createProject(80)
	now := time.Now()

	mock.ExpectQuery(projectQueryPattern).
		WithArgs(project.ID).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "developer_id", "name", "technology", "country", "capacity_mw",
			"commissioning_date", "offtake_type", "offtaker_type", "additionality_justification",
			"status", "eligibility_score", "created_at", "updated_at",
		}).AddRow(
			project.ID, project.DeveloperID, project.Name, project.Technology,
			project.Country, project.CapacityMW, "2026-06-01", "PPA", "UTILITY", "",
			string(project.Status), int64(80), now, now,
		))
	mock.ExpectQuery(mandateQueryPattern).WillReturnRows(mandateRows().
		AddRow("mandate-a", "buyer-a", "{SOLAR}", "{}", 0.0, 0.0, 70, 5.0, true, now, now))

	output, err := handler.Execute(context.Background(), &Input{ProjectID: project.ID})
	require.NoError(t, err)
	assert.Equal(t, 1, output.MatchCount)
	assert.True(t, mr.Exists("project:"+project.ID))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_Execute_NoMatches(t *testing.T) {
	handler, mock, mr := createTestHandler(t)

	project := createProject(40)
	cacheProject(t, mr, project)

	now := time.Now()
	mock.ExpectQuery(mandateQueryPattern).WillReturnRows(mandateRows().
		AddRow("mandate-a", "buyer-a", "{WIND}", "{}", 0.0, 0.0, 0, 3.0, true, now, now))

	output, err := handler.Execute(context.Background(), &Input{ProjectID: project.ID})
	require.NoError(t, err)
	assert.Equal(t, 0, output.MatchCount)
	assert.Empty(t, output.Matches)
	assert.NotNil(t, output.Matches)
}

func TestHandler_Execute_UnscoredProjectNeverMatches(t *testing.T) {
	handler, mock, mr := createTestHandler(t)

	project := createProject(0)
	project.EligibilityScore = nil
	cacheProject(t, mr, project)

	now := time.Now()
	mock.ExpectQuery(mandateQueryPattern).WillReturnRows(mandateRows().
		AddRow("mandate-a", "buyer-a", "{SOLAR}", "{}", 0.0, 0.0, 0, 3.0, true, now, now))

	output, err := handler.Execute(context.Background(), &Input{ProjectID: project.ID})
	require.NoError(t, err)
	assert.Equal(t, 0, output.MatchCount)
}

func TestHandler_Execute_ProjectNotFound(t *testing.T) {
	handler, mock, _ := createTestHandler(t)

	mock.ExpectQuery(projectQueryPattern).
		WithArgs("missing-id").
		WillReturnError(sql.ErrNoRows)

	output, err := handler.Execute(context.Background(), &Input{ProjectID: "missing-id"})
	assert.Nil(t, output)
	assert.True(t, errors.Is(err, ErrProjectNotFound))
}

func TestHandler_Execute_MissingProjectID(t *testing.T) {
	handler, _, _ := createTestHandler(t)

	output, err := handler.Execute(context.Background(), &Input{})
	assert.Nil(t, output)
	assert.True(t, errors.Is(err, ErrProjectNotFound))
}

func TestHandler_Execute_MandateQueryFailure(t *testing.T) {
	handler, mock, mr := createTestHandler(t)

	project := createProject(75)
	cacheProject(t, mr, project)

	mock.ExpectQuery(mandateQueryPattern).WillReturnError(errors.New("connection reset"))

	output, err := handler.Execute(context.Background(), &Input{ProjectID: project.ID})
	assert.Nil(t, output)
	assert.True(t, errors.Is(err, ErrMandateQueryFailed))
}

func TestScoreMatch_Capped(t *testing.T) {
	p := createProject(100)
	m := models.BuyerMandate{
		Countries:           []string{"IN"},
		MinEligibilityScore: 0,
	}

	assert.Equal(t, 100, scoreMatch(m, p))
}
