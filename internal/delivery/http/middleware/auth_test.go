package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"meetingscheduler/internal/delivery/http/helpers"
	"meetingscheduler/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))

// fakeTokenVerifier implements domain.TokenVerifier for tests.
type fakeTokenVerifier struct {
	actor domain.Actor
	err   error
}

func (f *fakeTokenVerifier) Verify(_ string) (domain.Actor, error) {
	if f.err != nil {
		return domain.Actor{}, f.err
	}
	return f.actor, nil
}

func TestRequireAuth(t *testing.T) {
	speaker := domain.NewActor("user-123", domain.RoleAdmin)

	tests := []struct {
		name         string
		authHeader   string
		verifier     domain.TokenVerifier
		wantStatus   int
		wantBodyCode string
		nextCalled   bool
	}{
		{"valid token sets context and calls next", "Bearer valid-token", &fakeTokenVerifier{actor: speaker}, http.StatusOK, "", true},
		{"missing authorization header", "", &fakeTokenVerifier{actor: speaker}, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, false},
		{"no Bearer prefix", "Basic abc", &fakeTokenVerifier{actor: speaker}, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, false},
		{"empty token after Bearer", "Bearer ", &fakeTokenVerifier{actor: speaker}, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, false},
		{"verifier returns error", "Bearer bad-token", &fakeTokenVerifier{err: errors.New("expired")}, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nextCalled := false
			var captured domain.Actor
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				nextCalled = true
				captured, _ = ActorFromContext(r.Context())
				w.WriteHeader(http.StatusOK)
			})
			handler := RequireAuth(tt.verifier, testLogger)(next)

			req := httptest.NewRequest(http.MethodGet, "http://test/me/quota", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			rr := httptest.NewRecorder()
			handler(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code, "status code")
			assert.Equal(t, tt.nextCalled, nextCalled, "next handler called")
			if tt.nextCalled {
				assert.Equal(t, speaker, captured)
			}
			if tt.wantBodyCode != "" {
				var envelope helpers.APIResponse
				require.NoError(t, json.NewDecoder(rr.Body).Decode(&envelope))
				require.NotNil(t, envelope.Error)
				assert.Equal(t, tt.wantBodyCode, envelope.Error.Code)
			}
		})
	}
}

func TestActorFromContext_Empty(t *testing.T) {
	_, ok := ActorFromContext(context.Background())
	assert.False(t, ok)
	_, ok = ActorFromContext(SetActor(context.Background(), domain.Actor{}))
	assert.False(t, ok)
}
