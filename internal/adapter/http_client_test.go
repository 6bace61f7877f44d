// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 The Momentum

package adapter

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/the-momentum/open-wearables-sync/models"
)

func newTestAdapter(t *testing.T, handler http.HandlerFunc) RemoteAdapter {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewHTTPRemoteAdapter(HTTPClientConfig{BaseURL: srv.URL})
}

func TestSendRaw_SetsBearerHeader(t *testing.T) {
	var gotAuth, gotBody string
	a := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		assert.Equal(t, "/api/v1/sync", r.URL.Path)
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		gotBody = string(body)
		w.WriteHeader(http.StatusOK)
	})
	a.SetCredential(models.Credential{UserKey: "u", AccessToken: "the-token"})

	err := a.SendRaw(context.Background(), []byte(`{"data":{"records":[]}}`))

	require.NoError(t, err)
	assert.Equal(t, "Bearer the-token", gotAuth)
	assert.Equal(t, `{"data":{"records":[]}}`, gotBody, "staged bytes must be delivered untouched")
}

func TestSendRaw_SetsAPIKeyHeader(t *testing.T) {
	var gotKey, gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("X-Custom-Key")
		gotAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusAccepted)
	}))
	t.Cleanup(srv.Close)

	a := NewHTTPRemoteAdapter(HTTPClientConfig{BaseURL: srv.URL, APIKeyHeader: "X-Custom-Key"})
	a.SetCredential(models.Credential{UserKey: "u", APIKey: "sekret"})

	err := a.SendRaw(context.Background(), []byte(`{"data":{}}`))

	require.NoError(t, err)
	assert.Equal(t, "sekret", gotKey)
	assert.Empty(t, gotAuth, "API-key mode must not send a bearer header")
}

func TestSendRaw_StatusMapping(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		wantErr error
	}{
		{"200 is success", http.StatusOK, nil},
		{"202 is success", http.StatusAccepted, nil},
		{"401 is unauthorized", http.StatusUnauthorized, ErrUnauthorized},
		{"422 is rejected", http.StatusUnprocessableEntity, ErrRejected},
		{"400 is rejected", http.StatusBadRequest, ErrRejected},
		{"500 is unavailable", http.StatusInternalServerError, ErrRemoteUnavailable},
		{"503 is unavailable", http.StatusServiceUnavailable, ErrRemoteUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			})
			a.SetCredential(models.Credential{UserKey: "u", AccessToken: "t"})

			err := a.SendRaw(context.Background(), []byte(`{}`))

			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestSendRaw_ConnectionRefusedIsUnavailable(t *testing.T) {
	// Nothing listens here.
	a := NewHTTPRemoteAdapter(HTTPClientConfig{BaseURL: "http://127.0.0.1:1"})
	a.SetCredential(models.Credential{UserKey: "u", AccessToken: "t"})

	err := a.SendRaw(context.Background(), []byte(`{}`))

	assert.ErrorIs(t, err, ErrRemoteUnavailable)
}

func TestRefreshToken(t *testing.T) {
	a := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/token/refresh", r.URL.Path)

		var req models.TokenRefreshRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "old-rt", req.RefreshToken)

		_ = json.NewEncoder(w).Encode(models.TokenRefreshResponse{
			AccessToken:  "new-at",
			RefreshToken: "new-rt",
		})
	})

	pair, err := a.RefreshToken(context.Background(), "old-rt")

	require.NoError(t, err)
	assert.Equal(t, "new-at", pair.AccessToken)
	assert.Equal(t, "new-rt", pair.RefreshToken)
}

func TestRefreshToken_Unauthorized(t *testing.T) {
	a := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "refresh token expired", http.StatusUnauthorized)
	})

	_, err := a.RefreshToken(context.Background(), "dead-rt")

	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestRefreshToken_MissingAccessTokenIsRejected(t *testing.T) {
	a := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	})

	_, err := a.RefreshToken(context.Background(), "rt")

	assert.ErrorIs(t, err, ErrRejected)
}
