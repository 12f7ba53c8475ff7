package assignments_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

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
	return out.Token
}

// approvedNGO registers an NGO, approves it with the ministry token and
// returns its id and token.
func approvedNGO(t *testing.T, router *gin.Engine, ministryToken string) (string, string) {
	t.Helper()
	resp := doJSON(t, router, http.MethodPost, "/api/ngo/register", "", gin.H{
		"email":        "vanseva@example.org",
		"password":     "field-work-1",
		"organization": "Van Seva Sansthan",
		"district":     "Bastar",
	})
	if resp.Code != http.StatusCreated {
		t.Fatalf("register NGO: status %d, body %s", resp.Code, resp.Body.String())
	}
	var registered struct {
		User struct {
			ID string `json:"id"`
		} `json:"user"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&registered); err != nil {
		t.Fatalf("decode register response: %v", err)
	}

	resp = doJSON(t, router, http.MethodPut, "/api/ngo/approve/"+registered.User.ID, ministryToken, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("approve NGO: status %d, body %s", resp.Code, resp.Body.String())
	}
	return registered.User.ID, loginToken(t, router, "vanseva@example.org", "field-work-1")
}

func TestAssignmentStatsEndpoint(t *testing.T) {
	app := buildApp(t)
	router := app.Router

	ministryToken := loginToken(t, router, "ministry@fra.gov.in", "ministry-secret")
	ngoID, ngoToken := approvedNGO(t, router, ministryToken)

	resp := doJSON(t, router, http.MethodPost, "/api/assignment/create", ministryToken, gin.H{
		"assignedTo":   ngoID,
		"title":        "Verify pattas in Bastar block",
		"area":         gin.H{"district": "Bastar"},
		"instructions": "Visit each village and verify land records",
		"deadline":     time.Now().UTC().Add(72 * time.Hour).Format(time.RFC3339),
		"priority":     "high",
	})
	if resp.Code != http.StatusCreated {
		t.Fatalf("create assignment: status %d, body %s", resp.Code, resp.Body.String())
	}

	resp = doJSON(t, router, http.MethodGet, "/api/assignment/stats", ministryToken, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("stats: status %d, body %s", resp.Code, resp.Body.String())
	}
	var stats struct {
		Total      int            `json:"total"`
		Active     int            `json:"active"`
		ByPriority map[string]int `json:"priorityDistribution"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&stats); err != nil {
		t.Fatalf("decode stats: %v", err)
	}
	if stats.Total != 1 || stats.Active != 1 {
		t.Fatalf("stats = %+v", stats)
	}
	if stats.ByPriority["high"] != 1 {
		t.Fatalf("priorityDistribution = %+v", stats.ByPriority)
	}

	// Ministry-only surface.
	resp = doJSON(t, router, http.MethodGet, "/api/assignment/stats", ngoToken, nil)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("ngo stats: status %d, want 403", resp.Code)
	}
}
