package user

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"
)

type wireResponse struct {
	Data    map[string]any `json:"data"`
	Message string         `json:"message"`
}

func serve(t *testing.T, h http.HandlerFunc, method, target, body string, pathID string) (int, wireResponse) {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if pathID != "" {
		req.SetPathValue("id", pathID)
	}
	rec := httptest.NewRecorder()
	h(rec, req)

	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("content type = %q", ct)
	}
	var out wireResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %s: %v", rec.Body.String(), err)
	}
	return rec.Code, out
}

func TestHandlerSignupAndLogin(t *testing.T) {
	f := newFixture(t)
	h := NewHandler(f.svc, zap.NewNop().Sugar())

	code, out := serve(t, h.Signup, http.MethodPost, "/api/auth/signup",
		`{"name":"Ana","last_name":"Diaz","email":"a@x.com","password":"secret1"}`, "")
	if code != http.StatusCreated || out.Message != msgCreated {
		t.Fatalf("signup: %d %q", code, out.Message)
	}
	item, ok := out.Data["item"].(map[string]any)
	if !ok {
		t.Fatalf("missing item: %v", out.Data)
	}
	for _, k := range []string{"password", "secure_password", "password_salt", "token_email_verification"} {
		if _, ok := item[k]; ok {
			t.Fatalf("response leaks %s", k)
		}
	}

	code, out = serve(t, h.Signup, http.MethodPost, "/api/auth/signup",
		`{"name":"Ana","last_name":"Diaz","email":"a@x.com","password":"secret1"}`, "")
	if code != http.StatusBadRequest || out.Data["success"] != false {
		t.Fatalf("duplicate signup: %d %v", code, out.Data)
	}

	code, out = serve(t, h.Login, http.MethodPost, "/api/auth/login", `{"email":"a@x.com","password":"secret1"}`, "")
	if code != http.StatusOK || out.Data["access_token"] != item["access_token"] || out.Data["refresh_token"] != item["refresh_token"] {
		t.Fatalf("login: %d %v", code, out.Data)
	}

	code, out = serve(t, h.Login, http.MethodPost, "/api/auth/login", `{"email":"a@x.com","password":"nope"}`, "")
	if code != http.StatusBadRequest || out.Message != msgPasswordNotValid {
		t.Fatalf("bad login: %d %q", code, out.Message)
	}
}

func TestHandlerInvalidPayload(t *testing.T) {
	f := newFixture(t)
	h := NewHandler(f.svc, zap.NewNop().Sugar())

	for _, fn := range []http.HandlerFunc{h.Signup, h.Login, h.Update} {
		code, out := serve(t, fn, http.MethodPost, "/", `{"name":`, "1")
		if code != http.StatusBadRequest || out.Message != "invalid payload" {
			t.Fatalf("got %d %q", code, out.Message)
		}
	}
	if f.store.checkCount() != 0 {
		t.Fatal("malformed payloads must not reach the service")
	}
}

func TestHandlerUserRoutes(t *testing.T) {
	f := newFixture(t)
	h := NewHandler(f.svc, zap.NewNop().Sugar())

	code, _ := serve(t, h.List, http.MethodGet, "/api/users", "", "")
	if code != http.StatusNotFound {
		t.Fatalf("empty list: %d", code)
	}

	created := mustItem(t, f.svc.Create(t.Context(), signupAna()))

	code, out := serve(t, h.Get, http.MethodGet, "/api/users/"+created.ID, "", created.ID)
	if code != http.StatusOK || out.Data["item"].(map[string]any)["email"] != "a@x.com" {
		t.Fatalf("get: %d %v", code, out.Data)
	}

	body := `{"business_type_id":1,"name":"Ana","last_name":"Diaz","email":"a@x.com","phone":"999",
		"business_name":"Riqra","fiscal_name":"Riqra SAC","fiscal_address":"Av. Lima","ruc":"20",
		"dni":"12","photo":"p.png","password":"x"}`
	code, out = serve(t, h.Update, http.MethodPut, "/api/users/"+created.ID, body, created.ID)
	if code != http.StatusOK || out.Data["item"].(map[string]any)["business_name"] != "Riqra" {
		t.Fatalf("update: %d %v", code, out.Data)
	}

	code, out = serve(t, h.Delete, http.MethodDelete, "/api/users/"+created.ID, "", created.ID)
	if code != http.StatusOK || out.Data["id"] != created.ID {
		t.Fatalf("delete: %d %v", code, out.Data)
	}

	code, _ = serve(t, h.Get, http.MethodGet, "/api/users/"+created.ID, "", created.ID)
	if code != http.StatusNotFound {
		t.Fatalf("get after delete: %d", code)
	}
}

func TestHandlerUpdateAcceptsNumericIdentifiers(t *testing.T) {
	f := newFixture(t)
	h := NewHandler(f.svc, zap.NewNop().Sugar())
	created := mustItem(t, f.svc.Create(t.Context(), signupAna()))

	body := `{"business_type_id":"retail","name":"Ana","last_name":"Diaz","email":"a@x.com","phone":999111222,
		"business_name":"Riqra","fiscal_name":"Riqra SAC","fiscal_address":"Av. Lima","ruc":20123456789,
		"dni":12345678,"photo":"p.png","password":"x"}`
	code, out := serve(t, h.Update, http.MethodPut, "/api/users/"+created.ID, body, created.ID)
	if code != http.StatusOK {
		t.Fatalf("update: %d %q", code, out.Message)
	}
	item := out.Data["item"].(map[string]any)
	if item["ruc"] != "20123456789" || item["dni"] != "12345678" || item["phone"] != "999111222" {
		t.Fatalf("numeric identifiers not stored as text: %v", item)
	}
}
