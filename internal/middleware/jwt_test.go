package myMiddleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeValidator struct{}

func (fakeValidator) ValidateToken(token string) (string, string, error) {
	if token == "valid-token" {
		return "user-123", "alice", nil
	}
	return "", "", errors.New("invalid token")
}

func TestAuthMiddleware(t *testing.T) {
	am := NewAuthMiddleware(fakeValidator{})

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, _ := r.Context().Value(UserKey).(string)
		username, _ := r.Context().Value(UsernameKey).(string)
		assert.Equal(t, "user-123", userID)
		assert.Equal(t, "alice", username)
		w.WriteHeader(http.StatusOK)
	})

	tests := []struct {
		name           string
		setup          func(r *http.Request)
		expectedStatus int
	}{
		{
			name: "bearer header",
			setup: func(r *http.Request) {
				r.Header.Set("Authorization", "Bearer valid-token")
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "query param fallback",
			setup: func(r *http.Request) {
				q := r.URL.Query()
				q.Set("token", "valid-token")
				r.URL.RawQuery = q.Encode()
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "invalid token",
			setup: func(r *http.Request) {
				r.Header.Set("Authorization", "Bearer bogus")
			},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "missing token",
			setup:          func(r *http.Request) {},
			expectedStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			tt.setup(req)
			rr := httptest.NewRecorder()

			am.Handle(next).ServeHTTP(rr, req)

			require.Equal(t, tt.expectedStatus, rr.Code)
		})
	}
}
