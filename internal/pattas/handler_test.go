package pattas_test

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
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

func ministryToken(t *testing.T, router *gin.Engine) string {
	t.Helper()
	payload, _ := json.Marshal(gin.H{
		"email":    "ministry@fra.gov.in",
		"password": "ministry-secret",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("ministry login: status %d, body %s", resp.Code, resp.Body.String())
	}
	var out struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode login: %v", err)
	}
	return out.Token
}

// addPart writes one multipart file with an explicit content type.
func addPart(t *testing.T, writer *multipart.Writer, field, fileName, contentType, content string) {
	t.Helper()
	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", `form-data; name="`+field+`"; filename="`+fileName+`"`)
	header.Set("Content-Type", contentType)
	part, err := writer.CreatePart(header)
	if err != nil {
		t.Fatalf("create part: %v", err)
	}
	if _, err := part.Write([]byte(content)); err != nil {
		t.Fatalf("write part: %v", err)
	}
}

func TestPattaUploadExtractsFields(t *testing.T) {
	app := buildApp(t)
	router := app.Router
	token := ministryToken(t, router)

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	addPart(t, writer, "document", "patta.txt", "text/plain",
		"Name: Ram Kumar Singh, District: Bastar, Village: Kondagaon, State: Chhattisgarh")
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/patta/upload", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("upload: status %d, body %s", resp.Code, resp.Body.String())
	}
	var created struct {
		ID           string `json:"id"`
		ClaimantName string `json:"claimantName"`
		District     string `json:"district"`
		IsVerified   bool   `json:"isVerified"`
		FileName     string `json:"fileName"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if created.ClaimantName != "Ram Kumar Singh" {
		t.Fatalf("claimantName = %q", created.ClaimantName)
	}
	if created.District != "Bastar" {
		t.Fatalf("district = %q", created.District)
	}
	if created.IsVerified {
		t.Fatal("fresh upload marked verified")
	}
	if created.FileName != "patta.txt" {
		t.Fatalf("fileName = %q", created.FileName)
	}
}

func TestPattaBatchUploadIsolatesFailures(t *testing.T) {
	app := buildApp(t)
	router := app.Router
	token := ministryToken(t, router)

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	addPart(t, writer, "documents", "one.txt", "text/plain", "Name: Ram Kumar, District: Raipur")
	addPart(t, writer, "documents", "photo.png", "image/png", "not a document")
	addPart(t, writer, "documents", "two.txt", "text/plain", "Name: Shyam Lal, District: Kanker")
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/patta/upload-multiple", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("batch upload: status %d, body %s", resp.Code, resp.Body.String())
	}
	var out struct {
		Results []struct {
			FileName string `json:"fileName"`
			Status   string `json:"status"`
			Error    string `json:"error"`
		} `json:"results"`
		Processed int `json:"processed"`
		Failed    int `json:"failed"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if out.Processed != 2 || out.Failed != 1 {
		t.Fatalf("processed = %d, failed = %d", out.Processed, out.Failed)
	}
	if len(out.Results) != 3 {
		t.Fatalf("results = %d, want 3", len(out.Results))
	}
	if out.Results[1].FileName != "photo.png" || out.Results[1].Status != "error" || out.Results[1].Error == "" {
		t.Fatalf("rejected entry = %+v", out.Results[1])
	}
}

func TestPattaUploadRequiresMinistry(t *testing.T) {
	app := buildApp(t)
	router := app.Router

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	addPart(t, writer, "document", "patta.txt", "text/plain", "Name: Ram Kumar")
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/patta/upload", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous upload: status %d, want 401", resp.Code)
	}
}

func TestPattaStatsAndMapData(t *testing.T) {
	app := buildApp(t)
	router := app.Router
	token := ministryToken(t, router)

	addRecord := func(name, district string, withCoords bool) string {
		body := gin.H{
			"claimantName": name,
			"district":     district,
			"village":      "Charama",
			"state":        "Chhattisgarh",
		}
		if withCoords {
			body["coordinates"] = gin.H{"latitude": 19.07, "longitude": 81.95}
		}
		payload, _ := json.Marshal(body)
		req := httptest.NewRequest(http.MethodPost, "/api/patta/manual-add", bytes.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+token)
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)
		if resp.Code != http.StatusCreated {
			t.Fatalf("manual add %s: status %d, body %s", name, resp.Code, resp.Body.String())
		}
		var created struct {
			ID string `json:"id"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		return created.ID
	}

	withCoordsID := addRecord("Ram Kumar", "Bastar", true)
	addRecord("Shyam Lal", "Kanker", false)

	req := httptest.NewRequest(http.MethodPut, "/api/patta/"+withCoordsID+"/verify", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("verify: status %d, body %s", resp.Code, resp.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/api/patta/stats", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("stats: status %d, body %s", resp.Code, resp.Body.String())
	}
	var stats struct {
		Total      int `json:"total"`
		Verified   int `json:"verified"`
		Pending    int `json:"pending"`
		ByDistrict []struct {
			District string `json:"district"`
			Count    int    `json:"count"`
		} `json:"districtDistribution"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&stats); err != nil {
		t.Fatalf("decode stats: %v", err)
	}
	if stats.Total != 2 || stats.Verified != 1 || stats.Pending != 1 {
		t.Fatalf("stats = %+v", stats)
	}
	if len(stats.ByDistrict) != 2 {
		t.Fatalf("districtDistribution = %+v", stats.ByDistrict)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/patta/map-data", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("map data: status %d, body %s", resp.Code, resp.Body.String())
	}
	var mapOut struct {
		Pattas []struct {
			ID         string  `json:"id"`
			Latitude   float64 `json:"latitude"`
			Longitude  float64 `json:"longitude"`
			IsVerified bool    `json:"isVerified"`
		} `json:"pattas"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&mapOut); err != nil {
		t.Fatalf("decode map data: %v", err)
	}
	if len(mapOut.Pattas) != 1 {
		t.Fatalf("map points = %d, want 1", len(mapOut.Pattas))
	}
	point := mapOut.Pattas[0]
	if point.ID != withCoordsID || point.Latitude != 19.07 || point.Longitude != 81.95 || !point.IsVerified {
		t.Fatalf("map point = %+v", point)
	}
}

func TestPattaManualAddVerifyAndList(t *testing.T) {
	app := buildApp(t)
	router := app.Router
	token := ministryToken(t, router)

	payload, _ := json.Marshal(gin.H{
		"claimantName": "Shyam Lal",
		"district":     "Kanker",
		"village":      "Charama",
		"state":        "Chhattisgarh",
		"landArea":     1.2,
		"approvalDate": "2023-03-05",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/patta/manual-add", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("manual add: status %d, body %s", resp.Code, resp.Body.String())
	}
	var created struct {
		ID         string `json:"id"`
		IsVerified bool   `json:"isVerified"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	req = httptest.NewRequest(http.MethodPut, "/api/patta/"+created.ID+"/verify", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("verify: status %d, body %s", resp.Code, resp.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/api/patta?verified=true", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("list: status %d, body %s", resp.Code, resp.Body.String())
	}
	var listed struct {
		Pattas []struct {
			ID         string `json:"id"`
			IsVerified bool   `json:"isVerified"`
		} `json:"pattas"`
		Pagination struct {
			Total int `json:"total"`
		} `json:"pagination"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&listed); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if listed.Pagination.Total != 1 || len(listed.Pattas) != 1 {
		t.Fatalf("list = %+v", listed)
	}
	if listed.Pattas[0].ID != created.ID || !listed.Pattas[0].IsVerified {
		t.Fatalf("entry = %+v", listed.Pattas[0])
	}
}
