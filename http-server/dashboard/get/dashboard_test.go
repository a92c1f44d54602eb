package get

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"of-tracker/internal/service/analytics"
)

type MockDashboard struct {
	mock.Mock
}

func (m *MockDashboard) Overview(ctx context.Context, q analytics.Query) (analytics.OverviewResponse, error) {
	args := m.Called(ctx, q)
	return args.Get(0).(analytics.OverviewResponse), args.Error(1)
}

func (m *MockDashboard) StatusAnalysis(ctx context.Context, q analytics.Query) (analytics.StatusAnalysisResponse, error) {
	args := m.Called(ctx, q)
	return args.Get(0).(analytics.StatusAnalysisResponse), args.Error(1)
}

func (m *MockDashboard) PerformanceAnalytics(ctx context.Context, q analytics.Query) (analytics.PerformanceResponse, error) {
	args := m.Called(ctx, q)
	return args.Get(0).(analytics.PerformanceResponse), args.Error(1)
}

func (m *MockDashboard) SourceComparison(ctx context.Context, q analytics.Query) (analytics.SourceComparisonResponse, error) {
	args := m.Called(ctx, q)
	return args.Get(0).(analytics.SourceComparisonResponse), args.Error(1)
}

func (m *MockDashboard) HistoricalAnalysis(ctx context.Context, q analytics.Query) (analytics.HistoricalAnalysisResponse, error) {
	args := m.Called(ctx, q)
	return args.Get(0).(analytics.HistoricalAnalysisResponse), args.Error(1)
}

func (m *MockDashboard) DynamicStatuses(ctx context.Context, includeHistorical bool) (analytics.DynamicStatuses, error) {
	args := m.Called(ctx, includeHistorical)
	return args.Get(0).(analytics.DynamicStatuses), args.Error(1)
}

func TestOverview_Success(t *testing.T) {
	d := new(MockDashboard)
	d.On("Overview", mock.Anything, mock.MatchedBy(func(q analytics.Query) bool {
		return q.IncludeHistorical && q.Family == "FAM1" && q.Range.From != nil
	})).Return(analytics.OverviewResponse{
		KPIs: analytics.OverviewKPIs{TotalOrders: 3, ActiveOrders: 2, HistoricalOrders: 1},
	}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/dashboard/overview?include_historical=true&family=FAM1&from=2025-01-01", nil)
	rr := httptest.NewRecorder()

	Overview(slog.Default(), d).ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var body struct {
		KPIs struct {
			TotalOrders      int `json:"total_orders"`
			HistoricalOrders int `json:"historical_orders"`
		} `json:"kpis"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, 3, body.KPIs.TotalOrders)
	assert.Equal(t, 1, body.KPIs.HistoricalOrders)
	d.AssertExpectations(t)
}

func TestOverview_BadParams(t *testing.T) {
	d := new(MockDashboard)

	req := httptest.NewRequest(http.MethodGet, "/api/dashboard/overview?from=yesterday", nil)
	rr := httptest.NewRecorder()

	Overview(slog.Default(), d).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), `"error"`)
	d.AssertNotCalled(t, "Overview", mock.Anything, mock.Anything)
}

func TestOverview_QueryLayerFailure(t *testing.T) {
	d := new(MockDashboard)
	d.On("Overview", mock.Anything, mock.Anything).
		Return(analytics.OverviewResponse{}, fmt.Errorf("service.analytics.Overview: %w", errors.New("db down")))

	req := httptest.NewRequest(http.MethodGet, "/api/dashboard/overview", nil)
	rr := httptest.NewRecorder()

	Overview(slog.Default(), d).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	assert.Contains(t, rr.Body.String(), "db down")
}

func TestViews_Success(t *testing.T) {
	d := new(MockDashboard)
	d.On("StatusAnalysis", mock.Anything, mock.Anything).Return(analytics.StatusAnalysisResponse{}, nil)
	d.On("PerformanceAnalytics", mock.Anything, mock.Anything).Return(analytics.PerformanceResponse{}, nil)
	d.On("SourceComparison", mock.Anything, mock.Anything).Return(analytics.SourceComparisonResponse{}, nil)
	d.On("HistoricalAnalysis", mock.Anything, mock.Anything).
		Return(analytics.HistoricalAnalysisResponse{HasData: false, Message: "no data available for historical analysis"}, nil)

	tests := []struct {
		name    string
		handler http.HandlerFunc
		path    string
	}{
		{name: "status", handler: StatusAnalysis(slog.Default(), d), path: "/api/dashboard/status-analysis"},
		{name: "performance", handler: PerformanceAnalytics(slog.Default(), d), path: "/api/dashboard/performance-analytics"},
		{name: "comparison", handler: SourceComparison(slog.Default(), d), path: "/api/dashboard/data-source-comparison"},
		{name: "historical", handler: HistoricalAnalysis(slog.Default(), d), path: "/api/dashboard/historical-analysis"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			tt.handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, tt.path, nil))

			assert.Equal(t, http.StatusOK, rr.Code)
			assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
		})
	}

	d.AssertExpectations(t)
}

func TestDynamicStatuses_PassesIncludeHistorical(t *testing.T) {
	d := new(MockDashboard)
	d.On("DynamicStatuses", mock.Anything, true).Return(analytics.DynamicStatuses{
		ActiveStatuses:     []analytics.StatusCode{"C"},
		HistoricalStatuses: []analytics.StatusCode{"T"},
		AllStatuses:        []analytics.StatusCode{"C", "T"},
		Descriptions:       map[analytics.StatusCode]string{"C": "In progress", "T": "Completed"},
	}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/dashboard/dynamic-statuses?include_historical=true", nil)
	rr := httptest.NewRecorder()

	DynamicStatuses(slog.Default(), d).ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"all_statuses":["C","T"]`)
	d.AssertExpectations(t)
}
