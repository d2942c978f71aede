package testutil

import (
	"sync"

	"github.com/nattapongd/Fund-Compare-Backend/internal/sec"
)

// MockSECClient is a mock implementation of sec.Client for testing.
// It returns predefined data per project ID instead of calling the SEC
// Thailand API, and counts lookups for assertions on call volume.
type MockSECClient struct {
	// InvestmentData maps project ID to canned investment info rows.
	InvestmentData map[string][]sec.InvestmentInfo
	// DividendData maps project ID to canned dividend info rows.
	DividendData map[string][]sec.DividendInfo
	// InvestmentError is returned from every FetchInvestment call when set.
	InvestmentError error
	// DividendError is returned from every FetchDividend call when set.
	DividendError error
	// InvestmentCalls counts FetchInvestment invocations.
	InvestmentCalls int
	// DividendCalls counts FetchDividend invocations.
	DividendCalls int

	// mu guards the call counters; classification runs lookups concurrently.
	mu sync.Mutex
}

// NewMockSECClient creates a mock SEC client with no canned data. Lookups
// for unknown project IDs return empty slices, which the classifier treats
// the same as missing upstream data.
func NewMockSECClient() *MockSECClient {
	return &MockSECClient{
		InvestmentData: map[string][]sec.InvestmentInfo{},
		DividendData:   map[string][]sec.DividendInfo{},
	}
}

// FetchInvestment returns the canned investment rows for the project ID.
func (m *MockSECClient) FetchInvestment(projID string) ([]sec.InvestmentInfo, error) {
	m.mu.Lock()
	m.InvestmentCalls++
	m.mu.Unlock()
	if m.InvestmentError != nil {
		return nil, m.InvestmentError
	}
	return m.InvestmentData[projID], nil
}

// FetchDividend returns the canned dividend rows for the project ID.
func (m *MockSECClient) FetchDividend(projID string) ([]sec.DividendInfo, error) {
	m.mu.Lock()
	m.DividendCalls++
	m.mu.Unlock()
	if m.DividendError != nil {
		return nil, m.DividendError
	}
	return m.DividendData[projID], nil
}

// WithInvestment adds canned investment data for a project ID.
func (m *MockSECClient) WithInvestment(projID string, rows ...sec.InvestmentInfo) *MockSECClient {
	m.InvestmentData[projID] = rows
	return m
}

// WithDividend adds canned dividend data for a project ID.
func (m *MockSECClient) WithDividend(projID string, rows ...sec.DividendInfo) *MockSECClient {
	m.DividendData[projID] = rows
	return m
}

// WithErrors configures both lookups to fail with the given error.
func (m *MockSECClient) WithErrors(err error) *MockSECClient {
	m.InvestmentError = err
	m.DividendError = err
	return m
}
