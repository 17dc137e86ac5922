package token

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"
)

type Handler struct {
	issuer *Issuer
	logger *zap.SugaredLogger
}

func NewHandler(issuer *Issuer, logger *zap.SugaredLogger) *Handler {
	return &Handler{issuer: issuer, logger: logger}
}

// Introspect follows the RFC 7662 response shape. Access tokens carry an exp
// claim; anything else signed by this service is reported as opaque.
// Inactive tokens answer 200 with {"active": false}.
func (h *Handler) Introspect(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid_request", http.StatusBadRequest)
		return
	}
	raw := r.Form.Get("token")
	if raw == "" {
		http.Error(w, "invalid_request", http.StatusBadRequest)
		return
	}

	claims, err := h.issuer.Verify(raw)
	if err != nil {
		h.logger.Debugw("introspect inactive token", "expired", errors.Is(err, ErrExpired))
		writeJSON(w, map[string]any{"active": false})
		return
	}

	out := map[string]any{"active": true, "token_type": "opaque"}
	if _, ok := claims["exp"]; ok {
		out["token_type"] = "access_token"
	}
	for _, k := range []string{"sub", "email", "iss", "exp", "iat", "jti"} {
		if v, ok := claims[k]; ok {
			out[k] = v
		}
	}
	writeJSON(w, out)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
