package test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/2beens/routinestats/internal/analytics"
	"github.com/2beens/routinestats/internal/eventlog"
	"github.com/2beens/routinestats/internal/routine"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (s *IntegrationTestSuite) TestHealthAndAuth() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	t := s.T()

	status, body := s.do(ctx, "GET", "/health", "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", string(body))

	status, _ = s.do(ctx, "GET", "/routine/dashboard", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = s.do(ctx, "GET", "/routine/dashboard", "not-the-token", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func (s *IntegrationTestSuite) TestEventsAndInsights() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	t := s.T()
	s.clearEvents(ctx)

	for d := 1; d <= 4; d++ {
		s.logEvent(ctx, routine.EventTypeWakeUp, daysAgo(d, 7, d))
		s.logEvent(ctx, routine.EventTypeLeavingHome, daysAgo(d, 8, 0))
	}

	status, body := s.do(ctx, "GET", "/events?type=wake_up", testToken, nil)
	require.Equal(t, http.StatusOK, status, string(body))
	var events []routine.EventRecord
	require.NoError(t, json.Unmarshal(body, &events))
	assert.Len(t, events, 4)

	status, body = s.do(ctx, "GET", "/routine/insights/wake_up?days=7", testToken, nil)
	require.Equal(t, http.StatusOK, status, string(body))
	var insight routine.EventInsight
	require.NoError(t, json.Unmarshal(body, &insight))
	assert.Equal(t, 4, insight.OccurrenceCount)
	assert.Equal(t, 7, insight.AverageTimeOfDay.Hour)

	status, body = s.do(ctx, "GET", "/routine/durations/wake_up/leaving_home?days=7", testToken, nil)
	require.Equal(t, http.StatusOK, status, string(body))
	var duration routine.DurationInsight
	require.NoError(t, json.Unmarshal(body, &duration))
	assert.Equal(t, routine.EventTypeWakeUp, duration.FromEvent)

	// an event far from the usual wake up time
	late := s.logEvent(ctx, routine.EventTypeWakeUp, daysAgo(0, 0, 30))
	status, body = s.do(ctx, "GET", fmt.Sprintf(
		"/routine/outlier/wake_up?timestamp=%s&threshold=30&baseline_days=7",
		url.QueryEscape(late.Timestamp.Format(time.RFC3339)),
	), testToken, nil)
	require.Equal(t, http.StatusOK, status, string(body))
	var outlier routine.OutlierInfo
	require.NoError(t, json.Unmarshal(body, &outlier))
	assert.True(t, outlier.IsOutlier)

	status, body = s.do(ctx, "DELETE", "/events/"+late.ID, testToken, nil)
	require.Equal(t, http.StatusOK, status, string(body))
	status, _ = s.do(ctx, "DELETE", "/events/"+late.ID, testToken, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func (s *IntegrationTestSuite) TestInvalidEventType() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	status, _ := s.do(ctx, "POST", "/events", testToken, map[string]any{
		"type":      "training_started",
		"timestamp": time.Now().UTC(),
	})
	assert.Equal(s.T(), http.StatusBadRequest, status)
}

func (s *IntegrationTestSuite) TestFeedbackAndDashboard() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	t := s.T()

	for i, success := range []bool{true, false, false, false} {
		status, body := s.do(ctx, "POST", "/feedback", testToken, routine.FeedbackRecord{
			EventType:     routine.EventTypeBoardingBus,
			Timestamp:     daysAgo(i+1, 8, 15),
			WasSuccessful: success,
		})
		require.Equal(t, http.StatusCreated, status, string(body))
	}

	status, body := s.do(ctx, "GET", "/feedback?type=boarding_bus", testToken, nil)
	require.Equal(t, http.StatusOK, status, string(body))
	var feedback []routine.FeedbackRecord
	require.NoError(t, json.Unmarshal(body, &feedback))
	assert.Len(t, feedback, 4)

	status, body = s.do(ctx, "GET", "/routine/feedback/boarding_bus?days=30", testToken, nil)
	require.Equal(t, http.StatusOK, status, string(body))
	var summary routine.FeedbackSummary
	require.NoError(t, json.Unmarshal(body, &summary))
	assert.Equal(t, 4, summary.TotalAttempts)
	assert.Equal(t, 1, summary.SuccessCount)

	status, body = s.do(ctx, "GET", "/routine/adjustment/boarding_bus?days=7", testToken, nil)
	require.Equal(t, http.StatusOK, status, string(body))
	var adjustment routine.AdaptiveAdjustment
	require.NoError(t, json.Unmarshal(body, &adjustment))
	assert.Equal(t, -10, adjustment.AdjustmentMinutes)

	status, body = s.do(ctx, "GET", "/routine/dashboard", testToken, nil)
	require.Equal(t, http.StatusOK, status, string(body))
	var dashboard analytics.Dashboard
	require.NoError(t, json.Unmarshal(body, &dashboard))
	assert.NotEmpty(t, dashboard.FeedbackSummaries)
}

func (s *IntegrationTestSuite) TestClearEvents() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	t := s.T()
	s.clearEvents(ctx)
	s.logEvent(ctx, routine.EventTypeBedtime, daysAgo(1, 23, 0))

	status, body := s.do(ctx, "DELETE", "/events", testToken, nil)
	require.Equal(t, http.StatusOK, status, string(body))
	var cleared eventlog.ClearEventsResponse
	require.NoError(t, json.Unmarshal(body, &cleared))
	assert.Equal(t, int64(1), cleared.Deleted)
}
