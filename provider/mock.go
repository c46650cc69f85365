package provider

import (
	"context"
	"sync"
	"time"
)

// MockClient is a Client implementation for testing.
// It records every request and returns canned responses, cycling through
// them when more than one is configured.
type MockClient struct {
	mu sync.Mutex

	// Calls records every request received, in order.
	Calls []Request

	responses []mockResponse
	next      int
	err       error
}

type mockResponse struct {
	content string
	tokens  int
}

// NewMockClient creates a mock that always returns the given content.
func NewMockClient(content string) *MockClient {
	return &MockClient{
		responses: []mockResponse{{content: content}},
	}
}

// WithResponses replaces the canned responses. Calls cycle through them.
func (m *MockClient) WithResponses(contents ...string) *MockClient {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.responses = make([]mockResponse, len(contents))
	for i, c := range contents {
		m.responses[i] = mockResponse{content: c}
	}
	m.next = 0
	return m
}

// WithTokens sets the token count reported with every response.
func (m *MockClient) WithTokens(tokens int) *MockClient {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.responses {
		m.responses[i].tokens = tokens
	}
	return m
}

// WithResponseTokens sets per-response token counts, positionally matching
// the responses configured via WithResponses.
func (m *MockClient) WithResponseTokens(tokens ...int) *MockClient {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, n := range tokens {
		if i < len(m.responses) {
			m.responses[i].tokens = n
		}
	}
	return m
}

// WithError makes every Complete call fail with err.
func (m *MockClient) WithError(err error) *MockClient {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.err = err
	return m
}

// Complete implements Client.
func (m *MockClient) Complete(ctx context.Context, req Request) (*Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, req)

	if m.err != nil {
		return nil, m.err
	}
	if len(m.responses) == 0 {
		return &Response{Model: req.Model}, nil
	}

	resp := m.responses[m.next]
	m.next = (m.next + 1) % len(m.responses)

	return &Response{
		Content:    resp.content,
		TokensUsed: resp.tokens,
		Model:      req.Model,
		Duration:   time.Millisecond,
	}, nil
}

// CallCount returns the number of Complete calls received.
func (m *MockClient) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

// LastCall returns the most recent request, or nil if none were made.
func (m *MockClient) LastCall() *Request {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.Calls) == 0 {
		return nil
	}
	req := m.Calls[len(m.Calls)-1]
	return &req
}

// Reset clears recorded calls and rewinds the response cycle.
func (m *MockClient) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = nil
	m.next = 0
}
