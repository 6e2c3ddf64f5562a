package test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/2beens/routinestats/internal/routine"

	"github.com/stretchr/testify/require"
)

func (s *IntegrationTestSuite) do(ctx context.Context, method, path, token string, body any) (int, []byte) {
	t := s.T()

	var reqBody io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reqBody = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, serverEndpoint+path, reqBody)
	require.NoError(t, err)
	req.Header.Set("User-Agent", "test-agent")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := s.httpClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return resp.StatusCode, respBytes
}

func (s *IntegrationTestSuite) logEvent(ctx context.Context, eventType routine.EventType, ts time.Time) routine.EventRecord {
	t := s.T()
	status, body := s.do(ctx, "POST", "/events", testToken, routine.EventRecord{Type: eventType, Timestamp: ts})
	require.Equal(t, http.StatusCreated, status, string(body))

	var added routine.EventRecord
	require.NoError(t, json.Unmarshal(body, &added))
	return added
}

func (s *IntegrationTestSuite) clearEvents(ctx context.Context) {
	status, body := s.do(ctx, "DELETE", "/events", testToken, nil)
	require.Equal(s.T(), http.StatusOK, status, string(body))
}

// daysAgo returns the clock time hour:minute, n days before today in UTC.
func daysAgo(n, hour, minute int) time.Time {
	now := time.Now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day()-n, hour, minute, 0, 0, time.UTC)
}
