// internal/workers/registry/submit-registration/handler_test.go
package submitregistration

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"carbon-workers/internal/common/logger"
	"carbon-workers/internal/common/registry"
)

type fakeRegistryClient struct {
	submissionID string
	err          error
	lastDossier  *registry.Dossier
	delay        time.Duration
}

func (f *fakeRegistryClient) Name() string {
	return "verra"
}

func (f *fakeRegistryClient) SubmitDossier(ctx context.Context, dossier *registry.Dossier) (string, error) {
	f.lastDossier = dossier
	if f.delay > 0 {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(f.delay):
		}
	}
	if f.err != nil {
		return "", f.err
	}
	return f.submissionID, nil
}

func createTestHandler(t *testing.T, client RegistryClient) *Handler {
	return NewHandler(&Config{Timeout: 5 * time.Second}, client, logger.NewTestLogger(t))
}

func createInput() *Input {
	score := 75
	return &Input{
		ProjectID:                  "a1b2c3d4-0000-4000-8000-000000000001",
		ProjectName:                "Thar Desert Solar",
		Technology:                 "SOLAR",
		Country:                    "IN",
		CapacityMW:                 120.0,
		CommissioningDate:          "2026-06-01",
		AdditionalityJustification: "Carbon revenue is a decisive input to the project financial model.",
		EligibilityScore:           &score,
		SupportingDocuments:        []string{"ppa.pdf", "financial-model.xlsx"},
	}
}

func TestHandler_Execute_Success(t *testing.T) {
	fake := &fakeRegistryClient{submissionID: "SUB-2026-001"}
	handler := createTestHandler(t, fake)

	output, err := handler.Execute(context.Background(), createInput())
	require.NoError(t, err)

	assert.Equal(t, "SUB-2026-001", output.SubmissionID)
	assert.Equal(t, "verra", output.Registry)

	submittedAt, err := time.Parse(time.RFC3339, output.SubmittedAt)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now(), submittedAt, time.Minute)

	require.NotNil(t, fake.lastDossier)
	assert.Equal(t, "Thar Desert Solar", fake.lastDossier.ProjectName)
	assert.Equal(t, 75, fake.lastDossier.EligibilityScore)
	assert.Len(t, fake.lastDossier.SupportingDocuments, 2)
}

func TestHandler_Execute_HardFailedProject(t *testing.T) {
	fake := &fakeRegistryClient{submissionID: "SUB-2026-001"}
	handler := createTestHandler(t, fake)

	input := createInput()
	input.HardFailTriggered = true

	output, err := handler.Execute(context.Background(), input)
	assert.Nil(t, output)
	assert.True(t, errors.Is(err, ErrProjectNotEligible))
	assert.Nil(t, fake.lastDossier, "dossier should not reach the registry")
}

func TestHandler_Execute_UnevaluatedProject(t *testing.T) {
	handler := createTestHandler(t, &fakeRegistryClient{})

	input := createInput()
	input.EligibilityScore = nil

	_, err := handler.Execute(context.Background(), input)
	assert.True(t, errors.Is(err, ErrProjectNotEligible))
}

func TestHandler_Execute_IncompleteDossier(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Input)
		field  string
	}{
		{"missing project ID", func(i *Input) { i.ProjectID = "" }, "projectId"},
		{"missing name", func(i *Input) { i.ProjectName = "" }, "projectName"},
		{"missing technology", func(i *Input) { i.Technology = "" }, "technology"},
		{"missing country", func(i *Input) { i.Country = "" }, "country"},
		{"zero capacity", func(i *Input) { i.CapacityMW = 0 }, "capacityMw"},
		{"missing justification", func(i *Input) { i.AdditionalityJustification = "" }, "additionalityJustification"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := createTestHandler(t, &fakeRegistryClient{})

			input := createInput()
			tt.mutate(input)

			output, err := handler.Execute(context.Background(), input)
			assert.Nil(t, output)
			require.True(t, errors.Is(err, ErrDossierIncomplete))
			assert.Contains(t, err.Error(), tt.field)
		})
	}
}

func TestHandler_Execute_RegistryRejection(t *testing.T) {
	fake := &fakeRegistryClient{err: errors.New("dossier rejected: additionality evidence insufficient")}
	handler := createTestHandler(t, fake)

	output, err := handler.Execute(context.Background(), createInput())
	assert.Nil(t, output)
	assert.True(t, errors.Is(err, ErrRegistryRejected))
}

func TestHandler_Execute_RegistryUnavailable(t *testing.T) {
	fake := &fakeRegistryClient{err: errors.New("failed to execute request: connection refused")}
	handler := createTestHandler(t, fake)

	_, err := handler.Execute(context.Background(), createInput())
	assert.True(t, errors.Is(err, ErrSubmissionFailed))
}

func TestHandler_Execute_RegistryTimeout(t *testing.T) {
	fake := &fakeRegistryClient{delay: 200 * time.Millisecond}
	handler := NewHandler(&Config{Timeout: 50 * time.Millisecond}, fake, logger.NewTestLogger(t))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := handler.Execute(ctx, createInput())
	assert.True(t, errors.Is(err, ErrRegistryTimeout))
}

func TestHandler_ErrorMapping(t *testing.T) {
	handler := &Handler{}

	tests := []struct {
		err     error
		code    string
		retries int32
	}{
		{ErrDossierIncomplete, "DOSSIER_INCOMPLETE", 0},
		{ErrProjectNotEligible, "PROJECT_NOT_ELIGIBLE", 0},
		{ErrRegistryRejected, "REGISTRY_REJECTED", 0},
		{ErrRegistryTimeout, "REGISTRY_API_TIMEOUT", 2},
		{ErrSubmissionFailed, "REGISTRY_SUBMISSION_FAILED", 3},
		{errors.New("mystery"), "UNKNOWN_ERROR", 0},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.code, handler.mapErrorToCode(tt.err))
			assert.Equal(t, tt.retries, handler.getRetryCount(tt.err))
		})
	}
}
