// internal/common/registry/client.go
package registry

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	commonhttp "carbon-workers/internal/common/http"
)

// Client talks to an external carbon credit registry (e.g. Verra, Gold Standard)
// over its REST API.
type Client struct {
	registryName string
	apiKey       string
	accountID    string
	baseURL      string
	httpClient   *commonhttp.Client
}

// Dossier is the registration package submitted to the registry.
type Dossier struct {
	ProjectID                  string   `json:"project_id"`
	ProjectName                string   `json:"project_name"`
	Technology                 string   `json:"technology"`
	Country                    string   `json:"country"`
	CapacityMW                 float64  `json:"capacity_mw"`
	CommissioningDate          string   `json:"commissioning_date,omitempty"`
	AdditionalityJustification string   `json:"additionality_justification"`
	EligibilityScore           int      `json:"eligibility_score"`
	SupportingDocuments        []string `json:"supporting_documents,omitempty"`
}

// SubmissionResponse is the registry's acknowledgement of a dossier submission.
type SubmissionResponse struct {
	SubmissionID string `json:"submission_id"`
	Status       string `json:"status"`
	Message      string `json:"message,omitempty"`
}

// SubmissionStatus describes the current review state of a submission.
type SubmissionStatus struct {
	SubmissionID string `json:"submission_id"`
	ProjectID    string `json:"project_id"`
	Status       string `json:"status"`
	ReviewerNote string `json:"reviewer_note,omitempty"`
	UpdatedAt    string `json:"updated_at,omitempty"`
}

func NewClient(registryName, baseURL, apiKey, accountID string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		registryName: registryName,
		apiKey:       apiKey,
		accountID:    accountID,
		baseURL:      baseURL,
		httpClient:   commonhttp.NewClient(timeout),
	}
}

// Name returns the configured registry name.
func (c *Client) Name() string {
	return c.registryName
}

// SubmitDossier submits a registration dossier and returns the registry's
// submission ID.
func (c *Client) SubmitDossier(ctx context.Context, dossier *Dossier) (string, error) {
	url := fmt.Sprintf("%s/v1/accounts/%s/submissions", c.baseURL, c.accountID)

	jsonData, err := json.Marshal(dossier)
	if err != nil {
		return "", fmt.Errorf("failed to marshal dossier: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("failed to submit dossier (status %d): %s", resp.StatusCode, string(body))
	}

	var submitResp SubmissionResponse
	if err := json.Unmarshal(body, &submitResp); err != nil {
		return "", fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if submitResp.SubmissionID == "" {
		return "", fmt.Errorf("no submission ID in response")
	}

	if submitResp.Status == "REJECTED" {
		return "", fmt.Errorf("dossier rejected: %s", submitResp.Message)
	}

	return submitResp.SubmissionID, nil
}

// GetSubmissionStatus fetches the review state of a previous submission.
func (c *Client) GetSubmissionStatus(ctx context.Context, submissionID string) (*SubmissionStatus, error) {
	url := fmt.Sprintf("%s/v1/accounts/%s/submissions/%s", c.baseURL, c.accountID, submissionID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("submission not found")
	}

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("failed to get submission (status %d): %s", resp.StatusCode, string(body))
	}

	var status SubmissionStatus
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &status, nil
}

// WithdrawSubmission withdraws a pending submission from review.
func (c *Client) WithdrawSubmission(ctx context.Context, submissionID string) error {
	url := fmt.Sprintf("%s/v1/accounts/%s/submissions/%s", c.baseURL, c.accountID, submissionID)

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("failed to withdraw submission (status %d): %s", resp.StatusCode, string(body))
	}

	return nil
}
