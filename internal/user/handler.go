package user

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

// Handler exposes the Service over HTTP. Responses use the envelope
// {"data": ..., "message": ...} with the status of the Result.
type Handler struct {
	svc    *Service
	logger *zap.SugaredLogger
}

func NewHandler(svc *Service, logger *zap.SugaredLogger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

type envelope struct {
	Data    any    `json:"data"`
	Message string `json:"message"`
}

func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	var req SignupInput
	if !h.decode(w, r, &req) {
		return
	}
	h.write(w, h.svc.Create(r.Context(), &req))
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginInput
	if !h.decode(w, r, &req) {
		return
	}
	h.write(w, h.svc.Authenticate(r.Context(), &req))
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	h.write(w, h.svc.GetList(r.Context()))
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	h.write(w, h.svc.GetByID(r.Context(), r.PathValue("id")))
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var req UpdateInput
	if !h.decode(w, r, &req) {
		return
	}
	h.write(w, h.svc.UpdateByID(r.Context(), r.PathValue("id"), &req))
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	h.write(w, h.svc.DeleteByID(r.Context(), r.PathValue("id")))
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		h.logger.Debugw("invalid user payload", "path", r.URL.Path, "err", err)
		h.writeJSON(w, http.StatusBadRequest, envelope{Data: FailurePayload{}, Message: "invalid payload"})
		return false
	}
	return true
}

func (h *Handler) write(w http.ResponseWriter, res Result) {
	h.writeJSON(w, res.Status, envelope{Data: res.Data, Message: res.Message})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
