package users_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"patta-backend/internal/bootstrap"
	"patta-backend/internal/shared/config"
)

func buildApp(t *testing.T) *bootstrap.App {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := config.Config{
		Port:                 "0",
		CORSAllowOrigin:      []string{"http://localhost:5173"},
		LocalStoreDir:        t.TempDir(),
		Env:                  "dev",
		ObjectStoreType:      "local",
		SeedMinistryEmail:    "ministry@fra.gov.in",
		SeedMinistryPassword: "ministry-secret",
	}

	app, err := bootstrap.Build(cfg)
	if err != nil {
		t.Fatalf("bootstrap build: %v", err)
	}
	return app
}

func doJSON(t *testing.T, router *gin.Engine, method, path, token string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	var body *bytes.Buffer
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		body = bytes.NewBuffer(raw)
	} else {
		body = &bytes.Buffer{}
	}
	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func loginToken(t *testing.T, router *gin.Engine, email, password string) string {
	t.Helper()
	resp := doJSON(t, router, http.MethodPost, "/api/auth/login", "", gin.H{
		"email":    email,
		"password": password,
	})
	if resp.Code != http.StatusOK {
		t.Fatalf("login %s: status %d, body %s", email, resp.Code, resp.Body.String())
	}
	var out struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode login response: %v", err)
	}
	if out.Token == "" {
		t.Fatal("expected login token")
	}
	return out.Token
}

func TestNGORegistrationApprovalFlow(t *testing.T) {
	app := buildApp(t)
	router := app.Router

	// Public NGO registration. No token is issued before approval.
	resp := doJSON(t, router, http.MethodPost, "/api/ngo/register", "", gin.H{
		"email":        "vanseva@example.org",
		"password":     "field-work-1",
		"organization": "Van Seva Sansthan",
		"district":     "Bastar",
	})
	if resp.Code != http.StatusCreated {
		t.Fatalf("register: status %d, body %s", resp.Code, resp.Body.String())
	}
	var registered struct {
		Token string `json:"token"`
		User  struct {
			ID         string `json:"id"`
			IsApproved bool   `json:"isApproved"`
		} `json:"user"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&registered); err != nil {
		t.Fatalf("decode register response: %v", err)
	}
	if registered.Token != "" {
		t.Fatal("unapproved NGO received a token")
	}
	if registered.User.IsApproved {
		t.Fatal("NGO approved at registration")
	}

	// Login is blocked until the ministry approves.
	resp = doJSON(t, router, http.MethodPost, "/api/auth/login", "", gin.H{
		"email":    "vanseva@example.org",
		"password": "field-work-1",
	})
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("pre-approval login: status %d, want 401", resp.Code)
	}

	ministryToken := loginToken(t, router, "ministry@fra.gov.in", "ministry-secret")

	resp = doJSON(t, router, http.MethodPut, "/api/ngo/approve/"+registered.User.ID, ministryToken, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("approve: status %d, body %s", resp.Code, resp.Body.String())
	}

	ngoToken := loginToken(t, router, "vanseva@example.org", "field-work-1")

	resp = doJSON(t, router, http.MethodGet, "/api/ngo/dashboard", ngoToken, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("dashboard: status %d, body %s", resp.Code, resp.Body.String())
	}
	var dash struct {
		IsApproved bool `json:"isApproved"`
		Stats      struct {
			Total int `json:"total"`
		} `json:"stats"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&dash); err != nil {
		t.Fatalf("decode dashboard: %v", err)
	}
	if !dash.IsApproved {
		t.Fatal("dashboard shows unapproved after approval")
	}
}

func TestNGOListRequiresMinistryRole(t *testing.T) {
	app := buildApp(t)
	router := app.Router

	// No token at all.
	resp := doJSON(t, router, http.MethodGet, "/api/ngo/list", "", nil)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous list: status %d, want 401", resp.Code)
	}

	// Register and approve an NGO so it has a valid token.
	resp = doJSON(t, router, http.MethodPost, "/api/ngo/register", "", gin.H{
		"email":        "gram@example.org",
		"password":     "secret-1",
		"organization": "Gram Vikas",
	})
	if resp.Code != http.StatusCreated {
		t.Fatalf("register: status %d", resp.Code)
	}
	var registered struct {
		User struct {
			ID string `json:"id"`
		} `json:"user"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&registered); err != nil {
		t.Fatalf("decode register response: %v", err)
	}

	ministryToken := loginToken(t, router, "ministry@fra.gov.in", "ministry-secret")
	resp = doJSON(t, router, http.MethodPut, "/api/ngo/approve/"+registered.User.ID, ministryToken, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("approve: status %d", resp.Code)
	}
	ngoToken := loginToken(t, router, "gram@example.org", "secret-1")

	resp = doJSON(t, router, http.MethodGet, "/api/ngo/list", ngoToken, nil)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("ngo-role list: status %d, want 403", resp.Code)
	}

	resp = doJSON(t, router, http.MethodGet, "/api/ngo/list", ministryToken, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("ministry list: status %d, body %s", resp.Code, resp.Body.String())
	}
	var listed struct {
		NGOs       []json.RawMessage `json:"ngos"`
		Pagination struct {
			Total int `json:"total"`
		} `json:"pagination"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&listed); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if listed.Pagination.Total != 1 || len(listed.NGOs) != 1 {
		t.Fatalf("list = %+v", listed)
	}
}

func TestRejectFreesEmailForReuse(t *testing.T) {
	app := buildApp(t)
	router := app.Router

	resp := doJSON(t, router, http.MethodPost, "/api/ngo/register", "", gin.H{
		"email":        "retry@example.org",
		"password":     "secret-1",
		"organization": "First Attempt",
	})
	if resp.Code != http.StatusCreated {
		t.Fatalf("register: status %d", resp.Code)
	}
	var registered struct {
		User struct {
			ID string `json:"id"`
		} `json:"user"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&registered); err != nil {
		t.Fatalf("decode register response: %v", err)
	}

	ministryToken := loginToken(t, router, "ministry@fra.gov.in", "ministry-secret")
	resp = doJSON(t, router, http.MethodPut, "/api/ngo/reject/"+registered.User.ID, ministryToken, gin.H{
		"reason": "incomplete paperwork",
	})
	if resp.Code != http.StatusOK {
		t.Fatalf("reject: status %d, body %s", resp.Code, resp.Body.String())
	}

	resp = doJSON(t, router, http.MethodPost, "/api/ngo/register", "", gin.H{
		"email":        "retry@example.org",
		"password":     "secret-2",
		"organization": "Second Attempt",
	})
	if resp.Code != http.StatusCreated {
		t.Fatalf("re-register after reject: status %d, body %s", resp.Code, resp.Body.String())
	}
}

func TestDuplicateEmailConflicts(t *testing.T) {
	app := buildApp(t)
	router := app.Router

	payload := gin.H{
		"email":        "dup@example.org",
		"password":     "secret-1",
		"organization": "Dup Org",
	}
	if resp := doJSON(t, router, http.MethodPost, "/api/ngo/register", "", payload); resp.Code != http.StatusCreated {
		t.Fatalf("first register: status %d", resp.Code)
	}
	if resp := doJSON(t, router, http.MethodPost, "/api/ngo/register", "", payload); resp.Code != http.StatusConflict {
		t.Fatalf("second register: status %d, want 409", resp.Code)
	}
}
