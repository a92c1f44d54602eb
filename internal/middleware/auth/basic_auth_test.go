package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func protected(user, pass string) http.Handler {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	return BasicAuth("Export", user, pass)(ok)
}

func TestBasicAuth(t *testing.T) {
	tests := []struct {
		name     string
		setAuth  bool
		user     string
		pass     string
		wantCode int
	}{
		{name: "без заголовка", wantCode: http.StatusUnauthorized},
		{name: "верные данные", setAuth: true, user: "admin", pass: "secret", wantCode: http.StatusOK},
		{name: "неверный пароль", setAuth: true, user: "admin", pass: "wrong", wantCode: http.StatusUnauthorized},
		{name: "неверный логин", setAuth: true, user: "root", pass: "secret", wantCode: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/export/excel", nil)
			if tt.setAuth {
				req.SetBasicAuth(tt.user, tt.pass)
			}
			rr := httptest.NewRecorder()

			protected("admin", "secret").ServeHTTP(rr, req)

			assert.Equal(t, tt.wantCode, rr.Code)
			if tt.wantCode == http.StatusUnauthorized {
				assert.Equal(t, `Basic realm="Export"`, rr.Header().Get("WWW-Authenticate"))
			}
		})
	}
}

func TestBasicAuth_EmptyConfiguredUserDeniesAll(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/export/excel", nil)
	req.SetBasicAuth("", "")
	rr := httptest.NewRecorder()

	protected("", "").ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}
