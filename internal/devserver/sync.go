package devserver

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/the-momentum/open-wearables-sync/internal/logger"
	"github.com/the-momentum/open-wearables-sync/models"
)

func (h *Handler) acceptSync(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)

	if h.failEvery > 0 && h.requests.Add(1)%h.failEvery == 0 {
		log.Warn().Msg("injected failure")
		http.Error(w, "injected failure", http.StatusServiceUnavailable)
		return
	}

	var req models.SyncRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Err(err).Msg("invalid sync payload")
		http.Error(w, "invalid JSON was passed", http.StatusBadRequest)
		return
	}

	userKey := userKeyFromContext(r.Context())
	accepted := req.Size()
	h.record(userKey, accepted, len(req.Data.Deleted))

	log.Info().
		Str("user", userKey).
		Int("accepted", accepted).
		Int("deleted", len(req.Data.Deleted)).
		Bool("full_export", req.FullExport).
		Msg("chunk accepted")

	writeJSON(w, http.StatusOK, models.SyncResponse{Accepted: accepted})
}

// issueToken mints an initial token pair for a user. Dev convenience
// only; a real backend authenticates first.
func (h *Handler) issueToken(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)

	var req struct {
		UserKey string `json:"user_key"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.UserKey == "" {
		http.Error(w, "user_key is required", http.StatusBadRequest)
		return
	}

	pair, err := h.tokens.Issue(req.UserKey)
	if err != nil {
		log.Err(err).Msg("token issue failed")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, pair)
}

func (h *Handler) refreshToken(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)

	var req models.TokenRefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RefreshToken == "" {
		http.Error(w, "refresh_token is required", http.StatusBadRequest)
		return
	}

	pair, err := h.tokens.Rotate(req.RefreshToken)
	if err != nil {
		if errors.Is(err, ErrTokenExpired) || errors.Is(err, ErrTokenInvalid) {
			log.Err(err).Msg("refresh token rejected")
			http.Error(w, err.Error(), http.StatusUnauthorized)
			return
		}
		log.Err(err).Msg("token rotation failed")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, models.TokenRefreshResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	})
}

func (h *Handler) stats(w http.ResponseWriter, r *http.Request) {
	userKey := userKeyFromContext(r.Context())

	h.mu.Lock()
	resp := struct {
		UserKey  string `json:"user_key"`
		Received int    `json:"received"`
		Deleted  int    `json:"deleted"`
	}{userKey, h.received[userKey], h.deleted[userKey]}
	h.mu.Unlock()

	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
