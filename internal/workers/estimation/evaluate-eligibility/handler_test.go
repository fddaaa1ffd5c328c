// internal/workers/estimation/evaluate-eligibility/handler_test.go
package evaluateeligibility

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"carbon-workers/internal/common/logger"
	"carbon-workers/internal/eligibility"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

func createTestHandler(t *testing.T, db *sql.DB, redisClient *redis.Client) *Handler {
	config := &Config{
		Timeout:  10 * time.Second,
		CacheTTL: 10 * time.Minute,
	}
	return NewHandler(config, db, redisClient, logger.NewTestLogger(t))
}

func f64(v float64) *float64 { return &v }

func strPtr(v string) *string { return &v }

func boolPtr(v bool) *bool { return &v }

func strongDraft() *eligibility.ProjectData {
	offtake := eligibility.OfftakePPA
	offtaker := eligibility.OfftakerUtility
	intent := eligibility.IntentBeforeCommissioning
	a6 := eligibility.Article6Clear
	justification := "The project would not proceed without carbon finance because merchant tariffs in the region " +
		"do not cover the capital recovery period, grid curtailment risk remains unpriced, and the sponsor's " +
		"investment committee requires the carbon revenue stream to clear its hurdle rate. Historical auction " +
		"results in the host country confirm that comparable projects stalled without supplementary revenue."
	return &eligibility.ProjectData{
		InstalledCapacityDC:        f64(120),
		PPADuration:                f64(15),
		OfftakeType:                &offtake,
		OfftakerType:               &offtaker,
		IsMerchant:                 boolPtr(false),
		CarbonRevenueMaterial:      boolPtr(true),
		CarbonRegistrationIntent:   &intent,
		AdditionalityJustification: &justification,
		HostCountryArticle6Status:  &a6,
		CommissioningDate:          strPtr(time.Now().AddDate(0, -3, 0).Format("2006-01-02")),
	}
}

const draftQuery = `SELECT draft_data FROM project_drafts WHERE project_id = \$1`

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute_InlineData(t *testing.T) {
	t.Run("strong project scores high without touching storage", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		redisClient, redisMock := redismock.NewClientMock()

		handler := createTestHandler(t, db, redisClient)
		output, err := handler.Execute(context.Background(), &Input{ProjectData: strongDraft()})

		require.NoError(t, err)
		assert.False(t, output.HardFailTriggered)
		assert.Equal(t, 100, output.ConfidenceScore)
		assert.Equal(t, eligibility.ConfidenceHigh, output.ConfidenceLevel)
		assert.NotEmpty(t, output.Recommendation)

		assert.NoError(t, mock.ExpectationsWereMet())
		assert.NoError(t, redisMock.ExpectationsWereMet())
	})

	t.Run("empty input yields a low-confidence verdict, not an error", func(t *testing.T) {
		db, _, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		redisClient, _ := redismock.NewClientMock()

		handler := createTestHandler(t, db, redisClient)
		output, err := handler.Execute(context.Background(), &Input{})

		require.NoError(t, err)
		assert.False(t, output.HardFailTriggered)
		assert.Equal(t, 0, output.ConfidenceScore)
		assert.Equal(t, eligibility.ConfidenceLow, output.ConfidenceLevel)
		assert.NotEmpty(t, output.RiskWarnings)
	})

	t.Run("hard fail surfaces in output", func(t *testing.T) {
		db, _, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		redisClient, _ := redismock.NewClientMock()

		data := strongDraft()
		a6 := eligibility.Article6HighRisk
		data.HostCountryArticle6Status = &a6

		handler := createTestHandler(t, db, redisClient)
		output, err := handler.Execute(context.Background(), &Input{ProjectData: data})

		require.NoError(t, err)
		assert.True(t, output.HardFailTriggered)
		assert.Equal(t, 0, output.ConfidenceScore)
		assert.Equal(t, eligibility.ConfidenceLow, output.ConfidenceLevel)
		assert.Contains(t, output.Recommendation, "not currently advisable")
	})
}

func TestHandler_Execute_LoadFromStorage(t *testing.T) {
	t.Run("cache miss falls back to Postgres and caches the draft", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		redisClient, redisMock := redismock.NewClientMock()

		draft := strongDraft()
		raw, err := json.Marshal(draft)
		require.NoError(t, err)

		redisMock.ExpectGet("draft:proj-1").RedisNil()
		mock.ExpectQuery(draftQuery).
			WithArgs("proj-1").
			WillReturnRows(sqlmock.NewRows([]string{"draft_data"}).AddRow(raw))
		redisMock.ExpectSet("draft:proj-1", raw, 10*time.Minute).SetVal("OK")

		handler := createTestHandler(t, db, redisClient)
		output, err := handler.Execute(context.Background(), &Input{ProjectID: "proj-1"})

		require.NoError(t, err)
		assert.False(t, output.HardFailTriggered)
		assert.Equal(t, 100, output.ConfidenceScore)

		assert.NoError(t, mock.ExpectationsWereMet())
		assert.NoError(t, redisMock.ExpectationsWereMet())
	})

	t.Run("cache hit skips Postgres", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		redisClient, redisMock := redismock.NewClientMock()

		raw, err := json.Marshal(strongDraft())
		require.NoError(t, err)
		redisMock.ExpectGet("draft:proj-2").SetVal(string(raw))

		handler := createTestHandler(t, db, redisClient)
		output, err := handler.Execute(context.Background(), &Input{ProjectID: "proj-2"})

		require.NoError(t, err)
		assert.Equal(t, 100, output.ConfidenceScore)

		assert.NoError(t, mock.ExpectationsWereMet())
		assert.NoError(t, redisMock.ExpectationsWereMet())
	})

	t.Run("missing project maps to PROJECT_NOT_FOUND", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		redisClient, redisMock := redismock.NewClientMock()

		redisMock.ExpectGet("draft:ghost").RedisNil()
		mock.ExpectQuery(draftQuery).
			WithArgs("ghost").
			WillReturnError(sql.ErrNoRows)

		handler := createTestHandler(t, db, redisClient)
		output, err := handler.Execute(context.Background(), &Input{ProjectID: "ghost"})

		assert.Nil(t, output)
		assert.True(t, errors.Is(err, ErrProjectNotFound))
	})

	t.Run("database failure maps to retryable load error", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		redisClient, redisMock := redismock.NewClientMock()

		redisMock.ExpectGet("draft:proj-3").RedisNil()
		mock.ExpectQuery(draftQuery).
			WithArgs("proj-3").
			WillReturnError(errors.New("connection reset"))

		handler := createTestHandler(t, db, redisClient)
		output, err := handler.Execute(context.Background(), &Input{ProjectID: "proj-3"})

		assert.Nil(t, output)
		assert.True(t, errors.Is(err, ErrDraftLoadFailed))
	})

	t.Run("corrupted draft maps to validation error", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		redisClient, redisMock := redismock.NewClientMock()

		redisMock.ExpectGet("draft:proj-4").RedisNil()
		mock.ExpectQuery(draftQuery).
			WithArgs("proj-4").
			WillReturnRows(sqlmock.NewRows([]string{"draft_data"}).AddRow([]byte("{not json")))

		handler := createTestHandler(t, db, redisClient)
		output, err := handler.Execute(context.Background(), &Input{ProjectID: "proj-4"})

		assert.Nil(t, output)
		assert.True(t, errors.Is(err, ErrDraftDataCorrupted))
	})

	t.Run("inline data wins over project ID", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		redisClient, redisMock := redismock.NewClientMock()

		handler := createTestHandler(t, db, redisClient)
		output, err := handler.Execute(context.Background(), &Input{
			ProjectID:   "proj-5",
			ProjectData: strongDraft(),
		})

		require.NoError(t, err)
		assert.Equal(t, 100, output.ConfidenceScore)

		// Neither store was touched
		assert.NoError(t, mock.ExpectationsWereMet())
		assert.NoError(t, redisMock.ExpectationsWereMet())
	})
}
