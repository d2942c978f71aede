package sec

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client is the interface for SEC Thailand FundFactsheet lookups.
// It exists so services can be tested with a mock implementation.
type Client interface {
	FetchInvestment(projID string) ([]InvestmentInfo, error)
	FetchDividend(projID string) ([]DividendInfo, error)
}

// APIClient provides methods for fetching fund factsheet data from the SEC
// Thailand API. It wraps an HTTP client and sets the subscription-key header
// the API requires.
type APIClient struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

// NewAPIClient creates a new SEC API client.
//
// Parameters:
//   - baseURL: API base, e.g. "https://api.sec.or.th"
//   - apiKey: Fund Factsheet subscription key
func NewAPIClient(baseURL, apiKey string) *APIClient {
	return &APIClient{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    baseURL,
		apiKey:     apiKey,
	}
}

// FetchInvestment fetches the investment-constraint entries for a fund.
// The response carries one entry per share class, including the minimum
// subscription/redemption currency codes used for peer classification.
func (c *APIClient) FetchInvestment(projID string) ([]InvestmentInfo, error) {
	url := fmt.Sprintf("%s/FundFactsheet/fund/%s/investment", c.baseURL, projID)

	var result []InvestmentInfo
	if err := c.querySEC(url, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// FetchDividend fetches the dividend-policy entries for a fund, one entry
// per share class.
func (c *APIClient) FetchDividend(projID string) ([]DividendInfo, error) {
	url := fmt.Sprintf("%s/FundFactsheet/fund/%s/dividend", c.baseURL, projID)

	var result []DividendInfo
	if err := c.querySEC(url, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// querySEC is an internal helper that executes HTTP requests against the SEC
// API and decodes the JSON response into out.
func (c *APIClient) querySEC(url string, out any) error {
	req, err := http.NewRequest("GET", url, nil)
	if err != nil {
		return err
	}

	req.Header.Set("Ocp-Apim-Subscription-Key", c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	// The API answers 204 when a fund has no data for the endpoint.
	if resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("sec api returned status %d for %s", resp.StatusCode, url)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode sec api response: %w", err)
	}

	return nil
}
