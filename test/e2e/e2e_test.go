// test/e2e/e2e_test.go
package e2e

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"carbon-workers/internal/common/config"
	"carbon-workers/internal/common/database"
	"carbon-workers/internal/common/logger"
	"carbon-workers/internal/eligibility"

	matchbuyerprojects "carbon-workers/internal/workers/marketplace/match-buyer-projects"
	createprojectrecord "carbon-workers/internal/workers/project/create-project-record"
	fetchprojectrecord "carbon-workers/internal/workers/project/fetch-project-record"

	evaluateeligibility "carbon-workers/internal/workers/estimation/evaluate-eligibility"
	validatesubscription "carbon-workers/internal/workers/infrastructure/validate-subscription"
)

// TestFullE2E exercises the worker pipeline against real local services.
// Run with RUN_E2E=1 and Postgres, Redis, Elasticsearch and Zeebe on their
// default local ports.
func TestFullE2E(t *testing.T) {
	if os.Getenv("RUN_E2E") == "" {
		t.Skip("Skipping E2E test: set RUN_E2E=1 to run against local services")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	cfg, err := config.Load()
	require.NoError(t, err)

	cfg.Database.Postgres.Host = "localhost"
	cfg.Database.Redis.Address = "localhost:6379"
	cfg.Database.Elasticsearch.URL = "http://localhost:9200"

	t.Log("🚀 Starting E2E test with real services...")

	pg, rdb := assertServicesConnectivity(t, ctx, cfg)
	defer pg.Close()
	defer rdb.Close()

	createDatabaseTables(t, ctx, pg)

	log := logger.NewTestLogger(t)
	developerID := "e2e-dev-" + uuid.NewString()[:8]

	// 1. Subscription gate
	seedSubscription(t, ctx, pg, developerID)
	subHandler := validatesubscription.NewHandler(
		&validatesubscription.Config{Timeout: 10 * time.Second, CacheTTL: time.Minute},
		pg.DB, rdb.Client, log,
	)
	subOut, err := subHandler.Execute(ctx, &validatesubscription.Input{DeveloperID: developerID})
	require.NoError(t, err)
	assert.True(t, subOut.IsValid)
	t.Log("✅ validate-subscription passed")

	// 2. Create and fetch a project record
	createHandler := createprojectrecord.NewHandler(
		&createprojectrecord.Config{Timeout: 10 * time.Second},
		pg.DB, log,
	)
	createOut, err := createHandler.Execute(ctx, &createprojectrecord.Input{
		DeveloperID: developerID,
		Name:        "E2E Rajasthan Solar " + uuid.NewString()[:8],
		Technology:  "SOLAR",
		Country:     "IN",
		CapacityMW:  120.5,
	})
	require.NoError(t, err)
	require.NotEmpty(t, createOut.ProjectID)
	t.Log("✅ create-project-record passed")

	fetchHandler := fetchprojectrecord.NewHandler(
		&fetchprojectrecord.Config{Timeout: 10 * time.Second, CacheTTL: time.Minute},
		pg.DB, rdb.Client, log,
	)
	fetchOut, err := fetchHandler.Execute(ctx, &fetchprojectrecord.Input{ProjectID: createOut.ProjectID})
	require.NoError(t, err)
	assert.Equal(t, "SOLAR", fetchOut.Project.Technology)
	assert.False(t, fetchOut.FromCache)

	cachedOut, err := fetchHandler.Execute(ctx, &fetchprojectrecord.Input{ProjectID: createOut.ProjectID})
	require.NoError(t, err)
	assert.True(t, cachedOut.FromCache)
	t.Log("✅ fetch-project-record passed (cold and cached)")

	// 3. Eligibility evaluation on inline project data
	evalHandler := evaluateeligibility.NewHandler(
		&evaluateeligibility.Config{Timeout: 10 * time.Second, CacheTTL: time.Minute},
		pg.DB, rdb.Client, log,
	)
	evalOut, err := evalHandler.Execute(ctx, &evaluateeligibility.Input{
		ProjectData: &eligibility.ProjectData{},
	})
	require.NoError(t, err)
	assert.False(t, evalOut.HardFailTriggered)
	assert.Equal(t, string(eligibility.ConfidenceLow), string(evalOut.ConfidenceLevel))
	t.Log("✅ evaluate-eligibility passed")

	// 4. Mandate matching against the created project
	seedMandate(t, ctx, pg)
	setProjectScore(t, ctx, pg, createOut.ProjectID, 80)
	require.NoError(t, rdb.Client.Del(ctx, "project:"+createOut.ProjectID).Err())

	matchHandler := matchbuyerprojects.NewHandler(
		&matchbuyerprojects.Config{Timeout: 10 * time.Second, CacheTTL: time.Minute},
		pg.DB, rdb.Client, log,
	)
	matchOut, err := matchHandler.Execute(ctx, &matchbuyerprojects.Input{ProjectID: createOut.ProjectID})
	require.NoError(t, err)
	assert.GreaterOrEqual(t, matchOut.MatchCount, 1)
	t.Log("✅ match-buyer-projects passed")

	t.Log("✅ ALL E2E CHECKS PASSED")
}

func assertServicesConnectivity(t *testing.T, ctx context.Context, cfg *config.Config) (*database.PostgresClient, *database.RedisClient) {
	t.Log("🔍 Checking service connectivity...")

	pg, err := database.NewPostgres(cfg.Database.Postgres)
	require.NoError(t, err, "PostgreSQL connection failed")
	require.NoError(t, pg.Ping(ctx), "PostgreSQL ping failed")
	t.Log("✅ PostgreSQL connected")

	rdb, err := database.NewRedis(cfg.Database.Redis)
	require.NoError(t, err, "Redis client creation failed")
	require.NoError(t, rdb.Ping(ctx), "Redis ping failed")
	t.Log("✅ Redis connected")

	es, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{cfg.Database.Elasticsearch.GetURL()},
	})
	require.NoError(t, err, "Elasticsearch client creation failed")
	res, err := es.Info()
	require.NoError(t, err, "Elasticsearch info request failed")
	assert.False(t, res.IsError(), "Elasticsearch returned error")
	res.Body.Close()
	t.Log("✅ Elasticsearch connected")

	zeebeClient, err := zbc.NewClient(&zbc.ClientConfig{
		GatewayAddress:         cfg.Camunda.BrokerAddress,
		UsePlaintextConnection: true,
	})
	require.NoError(t, err, "Zeebe client creation failed")
	_, err = zeebeClient.NewTopologyCommand().Send(ctx)
	assert.NoError(t, err, "Zeebe topology request failed")
	zeebeClient.Close()
	t.Log("✅ Zeebe connected")

	return pg, rdb
}

func createDatabaseTables(t *testing.T, ctx context.Context, pg *database.PostgresClient) {
	t.Log("🔧 Creating database tables...")

	queries := []string{
		`CREATE TABLE IF NOT EXISTS developer_subscriptions (
			developer_id VARCHAR(255) PRIMARY KEY,
			plan VARCHAR(50) NOT NULL,
			valid_until VARCHAR(50),
			is_active BOOLEAN DEFAULT true,
			project_quota INTEGER DEFAULT 5
		)`,
		`CREATE TABLE IF NOT EXISTS projects (
			id VARCHAR(255) PRIMARY KEY,
			developer_id VARCHAR(255) NOT NULL,
			name VARCHAR(255) NOT NULL,
			technology VARCHAR(50) NOT NULL,
			country VARCHAR(2) NOT NULL,
			capacity_mw DOUBLE PRECISION DEFAULT 0,
			commissioning_date VARCHAR(50) DEFAULT '',
			offtake_type VARCHAR(50) DEFAULT '',
			offtaker_type VARCHAR(50) DEFAULT '',
			additionality_justification TEXT DEFAULT '',
			status VARCHAR(50) NOT NULL,
			eligibility_score INTEGER,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS project_drafts (
			project_id VARCHAR(255) PRIMARY KEY,
			draft_data JSONB NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS buyer_mandates (
			id VARCHAR(255) PRIMARY KEY,
			buyer_id VARCHAR(255) NOT NULL,
			technologies TEXT[] NOT NULL,
			countries TEXT[] DEFAULT '{}',
			min_capacity_mw DOUBLE PRECISION DEFAULT 0,
			max_capacity_mw DOUBLE PRECISION DEFAULT 0,
			min_eligibility_score INTEGER DEFAULT 0,
			price_ceiling_eur DOUBLE PRECISION DEFAULT 0,
			active BOOLEAN DEFAULT true,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
	}

	for _, q := range queries {
		_, err := pg.DB.ExecContext(ctx, q)
		require.NoError(t, err)
	}
}

func seedSubscription(t *testing.T, ctx context.Context, pg *database.PostgresClient, developerID string) {
	validUntil := time.Now().AddDate(1, 0, 0).Format(time.RFC3339)
	_, err := pg.DB.ExecContext(ctx,
		`INSERT INTO developer_subscriptions (developer_id, plan, valid_until, is_active, project_quota)
		 VALUES ($1, 'growth', $2, true, 10)
		 ON CONFLICT (developer_id) DO NOTHING`,
		developerID, validUntil,
	)
	require.NoError(t, err)
}

func seedMandate(t *testing.T, ctx context.Context, pg *database.PostgresClient) {
	id := "e2e-mandate-" + uuid.NewString()[:8]
	_, err := pg.DB.ExecContext(ctx,
		`INSERT INTO buyer_mandates (id, buyer_id, technologies, countries, min_capacity_mw, max_capacity_mw, min_eligibility_score, price_ceiling_eur, active)
		 VALUES ($1, 'e2e-buyer', '{SOLAR}', '{IN}', 50, 500, 60, 4.5, true)`,
		id,
	)
	require.NoError(t, err)
}

func setProjectScore(t *testing.T, ctx context.Context, pg *database.PostgresClient, projectID string, score int) {
	res, err := pg.DB.ExecContext(ctx,
		`UPDATE projects SET eligibility_score = $1 WHERE id = $2`, score, projectID)
	require.NoError(t, err)
	affected, err := res.RowsAffected()
	require.NoError(t, err)
	require.Equal(t, int64(1), affected, fmt.Sprintf("project %s not found", projectID))
}
