package health

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockPinger struct {
	mock.Mock
}

func (m *MockPinger) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func TestHealth(t *testing.T) {
	tests := []struct {
		name     string
		pingErr  error
		wantCode int
		contains string
	}{
		{name: "база доступна", wantCode: http.StatusOK, contains: `"status":"healthy"`},
		{name: "база недоступна", pingErr: errors.New("connection refused"), wantCode: http.StatusServiceUnavailable, contains: `"database":"disconnected"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := new(MockPinger)
			db.On("Ping", mock.Anything).Return(tt.pingErr)

			rr := httptest.NewRecorder()
			Health(slog.Default(), db).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/health", nil))

			assert.Equal(t, tt.wantCode, rr.Code)
			assert.Contains(t, rr.Body.String(), tt.contains)
			db.AssertExpectations(t)
		})
	}
}
